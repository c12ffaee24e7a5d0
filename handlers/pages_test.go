package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bizimana-jeanluc/moviesBox/models"
)

func parseHTML(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestHomePageRendersFeaturedAndGrid(t *testing.T) {
	svc := &fakeMetadataService{
		trending:  []models.EnrichedRecord{unavailable("1", "Alpha"), playable("2", "Bravo"), playable("3", "Charlie")},
		available: 8,
	}
	rec := serve(t, newTestRouter(svc), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	doc := parseHTML(t, rec.Body.String())
	assert.Equal(t, "Bravo", strings.TrimSpace(doc.Find(".featured h1").Text()))

	var gridIDs []string
	doc.Find(".grid.trending .card").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-id")
		gridIDs = append(gridIDs, id)
	})
	assert.Equal(t, []string{"1", "3"}, gridIDs)
	assert.Contains(t, doc.Find(".section-subtitle").Text(), "8 titles")

	alpha := doc.Find(`.card[data-id="1"]`)
	assert.Equal(t, 0, alpha.Find(".play-btn").Length())
	assert.Equal(t, "NOT AVAILABLE", strings.TrimSpace(alpha.Find(".badge").Text()))

	charlie := doc.Find(`.card[data-id="3"]`)
	onclick, ok := charlie.Find(".play-btn").Attr("onclick")
	require.True(t, ok)
	assert.Contains(t, onclick, "/api/stream/3")
}

func TestHomePageEmptyListing(t *testing.T) {
	rec := serve(t, newTestRouter(&fakeMetadataService{}), "/")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec.Body.String())
	assert.Equal(t, 0, doc.Find(".featured").Length())
	assert.Equal(t, 1, doc.Find(".empty").Length())
}

func TestSearchPageRedirectsOnEmptyQuery(t *testing.T) {
	svc := &fakeMetadataService{}
	for _, target := range []string{"/search", "/search?q=", "/search?q=%20%20"} {
		rec := serve(t, newTestRouter(svc), target)
		assert.Equal(t, http.StatusFound, rec.Code, target)
		assert.Equal(t, "/", rec.Header().Get("Location"), target)
	}
	assert.Empty(t, svc.lastQuery)
}

func TestSearchPageListsResults(t *testing.T) {
	svc := &fakeMetadataService{results: []models.EnrichedRecord{playable("2", "Bravo"), unavailable("9", "<Zulu>")}}
	rec := serve(t, newTestRouter(svc), "/search?q=br%C3%A1vo&page=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "brávo", svc.lastQuery)
	assert.Equal(t, 2, svc.lastPage)

	doc := parseHTML(t, rec.Body.String())
	assert.Equal(t, 2, doc.Find(".grid.results .card").Length())
	assert.Contains(t, doc.Find(".section-subtitle").Text(), "Found 2 results")
	assert.Contains(t, doc.Find(".section-subtitle").Text(), "1 available for download")
	assert.Equal(t, "<Zulu>", strings.TrimSpace(doc.Find(`.card[data-id="9"] .card-title`).Text()))

	prev, _ := doc.Find(".pagination .prev").Attr("href")
	next, _ := doc.Find(".pagination .next").Attr("href")
	assert.Equal(t, "/search?q=br%C3%A1vo&page=1", prev)
	assert.Equal(t, "/search?q=br%C3%A1vo&page=3", next)
}

func TestSearchPageNoResults(t *testing.T) {
	rec := serve(t, newTestRouter(&fakeMetadataService{}), "/search?q=nothing")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec.Body.String())
	assert.Equal(t, 1, doc.Find(".empty").Length())
	assert.Equal(t, 0, doc.Find(".pagination .next").Length())
	assert.Equal(t, 0, doc.Find(".pagination .prev").Length())
}

func TestMoviePage(t *testing.T) {
	movie := playable("2", "Bravo")
	movie.Director = "Jane Doe"
	svc := &fakeMetadataService{details: map[string]models.EnrichedRecord{
		"2": movie,
		"5": unavailable("5", "Echo"),
	}}
	router := newTestRouter(svc)

	rec := serve(t, router, "/movie/2")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.String())
	assert.Equal(t, "Bravo", strings.TrimSpace(doc.Find(".movie h1").Text()))
	assert.Contains(t, doc.Find(".movie dl").Text(), "Jane Doe")
	assert.Equal(t, 1, doc.Find(".movie .btn-play").Length())

	rec = serve(t, router, "/movie/5")
	require.Equal(t, http.StatusOK, rec.Code)
	doc = parseHTML(t, rec.Body.String())
	assert.Equal(t, 0, doc.Find(".movie .btn-play").Length())
	assert.Equal(t, 1, doc.Find(".movie .unavailable").Length())
}

func TestMoviePageNotFound(t *testing.T) {
	rec := serve(t, newTestRouter(&fakeMetadataService{}), "/movie/404")
	require.Equal(t, http.StatusNotFound, rec.Code)

	doc := parseHTML(t, rec.Body.String())
	assert.Equal(t, "Movie Not Found", strings.TrimSpace(doc.Find(".not-found h1").Text()))
}

func TestTruncate(t *testing.T) {
	truncate := pageFuncs["truncate"].(func(string, int) string)
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...", truncate("abc def", 4))
	assert.Equal(t, "éé...", truncate("ééé", 2))
}
