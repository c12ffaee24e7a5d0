package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Bizimana-jeanluc/moviesBox/models"
	metadatapkg "github.com/Bizimana-jeanluc/moviesBox/services/metadata"
)

//go:embed page_templates/*
var pageTemplateFS embed.FS

const siteName = "MoviesBox"

var pageFuncs = template.FuncMap{
	"truncate": func(s string, n int) string {
		runes := []rune(s)
		if len(runes) <= n {
			return s
		}
		return strings.TrimSpace(string(runes[:n])) + "..."
	},
	"orDefault": func(v, fallback string) string {
		if strings.TrimSpace(v) == "" {
			return fallback
		}
		return v
	},
	"rating": func(v float64) string {
		if v <= 0 {
			return "N/A"
		}
		return fmt.Sprintf("%.1f", v)
	},
	"searchURL": func(q string, page int) string {
		return "/search?q=" + url.QueryEscape(q) + fmt.Sprintf("&page=%d", page)
	},
}

// pageTemplates holds one template set per page, each parsed on top of base.html.
var pageTemplates = parsePageTemplates("home.html", "search.html", "movie.html", "not_found.html", "download_failed.html")

func parsePageTemplates(pages ...string) map[string]*template.Template {
	base, err := pageTemplateFS.ReadFile("page_templates/base.html")
	if err != nil {
		panic(fmt.Sprintf("read base template: %v", err))
	}
	set := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		content, err := pageTemplateFS.ReadFile("page_templates/" + name)
		if err != nil {
			panic(fmt.Sprintf("read %s: %v", name, err))
		}
		tmpl := template.Must(template.New("page").Funcs(pageFuncs).Parse(string(base)))
		set[name] = template.Must(tmpl.Parse(string(content)))
	}
	return set
}

// PageData is the view model shared by every HTML page.
type PageData struct {
	SiteName          string
	Title             string
	Query             string
	Featured          *models.EnrichedRecord
	Movies            []models.EnrichedRecord
	Movie             *models.EnrichedRecord
	AvailableCount    int
	DownloadableCount int
	Page              int
	PrevPage          int
	NextPage          int
	Message           string
}

// renderPage executes the named page into a buffer before writing status and body.
func renderPage(w http.ResponseWriter, status int, name string, data PageData) {
	data.SiteName = siteName
	tmpl, ok := pageTemplates[name]
	if !ok {
		http.Error(w, "unknown page "+name, http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		log.Printf("[pages] %s template error: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// PagesHandler serves the server-rendered browsing pages.
type PagesHandler struct {
	Service metadataService
}

func NewPagesHandler(s metadataService) *PagesHandler {
	return &PagesHandler{Service: s}
}

func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	featured, others := metadatapkg.SelectFeatured(h.Service.ListTrending(r.Context()))
	renderPage(w, http.StatusOK, "home.html", PageData{
		Title:          "Trending Movies",
		Featured:       featured,
		Movies:         others,
		AvailableCount: h.Service.AvailableCount(),
	})
}

func (h *PagesHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	page := parsePage(r.URL.Query().Get("page"))

	results := h.Service.Search(r.Context(), query, page)
	data := PageData{
		Title:             fmt.Sprintf("Search: %s", query),
		Query:             query,
		Movies:            results,
		DownloadableCount: countDownloadable(results),
		Page:              page,
	}
	if page > 1 {
		data.PrevPage = page - 1
	}
	if len(results) > 0 {
		data.NextPage = page + 1
	}
	renderPage(w, http.StatusOK, "search.html", data)
}

func (h *PagesHandler) Movie(w http.ResponseWriter, r *http.Request) {
	record, ok := h.Service.GetDetails(r.Context(), mux.Vars(r)["id"])
	if !ok {
		h.NotFound(w, r)
		return
	}
	renderPage(w, http.StatusOK, "movie.html", PageData{
		Title: record.Title,
		Movie: &record,
	})
}

func (h *PagesHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusNotFound, "not_found.html", PageData{
		Title:   "Movie Not Found",
		Message: "The movie you're looking for doesn't exist or couldn't be loaded.",
	})
}

// PageNotFound is served for unknown routes.
func (h *PagesHandler) PageNotFound(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusNotFound, "not_found.html", PageData{
		Title:   "Page Not Found",
		Message: "There is nothing here. Head back home to keep browsing.",
	})
}

func countDownloadable(records []models.EnrichedRecord) int {
	n := 0
	for _, r := range records {
		if r.CanDownload {
			n++
		}
	}
	return n
}
