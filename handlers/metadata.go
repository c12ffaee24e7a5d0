package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Bizimana-jeanluc/moviesBox/models"
	metadatapkg "github.com/Bizimana-jeanluc/moviesBox/services/metadata"
	"github.com/Bizimana-jeanluc/moviesBox/services/transfer"
)

type metadataService interface {
	ListTrending(context.Context) []models.EnrichedRecord
	Search(ctx context.Context, query string, page int) []models.EnrichedRecord
	GetDetails(ctx context.Context, id string) (models.EnrichedRecord, bool)
	AvailableCount() int
}

var _ metadataService = (*metadatapkg.Service)(nil)

type MetadataHandler struct {
	Service metadataService
}

func NewMetadataHandler(s metadataService) *MetadataHandler {
	return &MetadataHandler{Service: s}
}

// TrendingResponse carries the hero title separately from the rest of the listing.
type TrendingResponse struct {
	Featured *models.EnrichedRecord `json:"featured"`
	Items    []models.EnrichedRecord `json:"items"`
}

type SearchResponse struct {
	Results []models.EnrichedRecord `json:"results"`
	Page    int                     `json:"page"`
}

// PlayResponse is what the player needs to start a title.
type PlayResponse struct {
	Sources     []models.VideoSource `json:"sources"`
	Movie       any                  `json:"movie"`
	CanDownload bool                 `json:"canDownload"`
}

func (h *MetadataHandler) Trending(w http.ResponseWriter, r *http.Request) {
	featured, others := metadatapkg.SelectFeatured(h.Service.ListTrending(r.Context()))
	writeJSON(w, http.StatusOK, TrendingResponse{Featured: featured, Items: others})
}

func (h *MetadataHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	page := parsePage(r.URL.Query().Get("page"))

	results := h.Service.Search(r.Context(), query, page)
	writeJSON(w, http.StatusOK, SearchResponse{Results: results, Page: page})
}

func (h *MetadataHandler) MovieDetails(w http.ResponseWriter, r *http.Request) {
	record, ok := h.Service.GetDetails(r.Context(), mux.Vars(r)["id"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "movie not found"})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *MetadataHandler) Play(w http.ResponseWriter, r *http.Request) {
	record, ok := h.Service.GetDetails(r.Context(), mux.Vars(r)["id"])
	if !ok {
		writeJSON(w, http.StatusOK, PlayResponse{Sources: []models.VideoSource{}, Movie: struct{}{}})
		return
	}
	writeJSON(w, http.StatusOK, PlayResponse{
		Sources:     transfer.Sources(record.Availability),
		Movie:       record,
		CanDownload: record.CanDownload,
	})
}

// parsePage reads a 1-based page number. Anything unparsable is page 1.
func parsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
