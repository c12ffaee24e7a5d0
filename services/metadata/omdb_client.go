package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Bizimana-jeanluc/moviesBox/models"
)

type omdbClient struct {
	apiKey  string
	baseURL string
	opts    ClientOptions
}

// NewOMDbClient returns a Provider backed by the OMDb API. OMDb has no trending
// feed, so the returned client does not implement TrendingProvider.
func NewOMDbClient(apiKey, baseURL string, opts ClientOptions) Provider {
	return &omdbClient{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimSpace(baseURL),
		opts:    opts.withDefaults(),
	}
}

func (c *omdbClient) Name() string { return "omdb" }

type omdbSummary struct {
	IMDBID string `json:"imdbID"`
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type omdbSearchResponse struct {
	Search       []omdbSummary `json:"Search"`
	TotalResults string        `json:"totalResults"`
	Response     string        `json:"Response"`
	Error        string        `json:"Error"`
}

type omdbDetailResponse struct {
	omdbSummary
	Plot       string `json:"Plot"`
	Genre      string `json:"Genre"`
	Runtime    string `json:"Runtime"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	IMDBRating string `json:"imdbRating"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

func (c *omdbClient) endpoint(params url.Values) string {
	params.Set("apikey", c.apiKey)
	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + params.Encode()
}

func (c *omdbClient) Search(ctx context.Context, query string, page int) ([]models.MetadataRecord, error) {
	params := url.Values{}
	params.Set("s", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("type", "movie")

	var payload omdbSearchResponse
	if err := getJSON(ctx, c.opts, "omdb", c.endpoint(params), &payload); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
		return nil, err
	}
	if !strings.EqualFold(payload.Response, "True") {
		if isOMDbNoResults(payload.Error) {
			return []models.MetadataRecord{}, nil
		}
		return nil, fmt.Errorf("%w: omdb: %s", ErrUpstreamUnavailable, omdbErrorText(payload.Error))
	}

	records := make([]models.MetadataRecord, 0, len(payload.Search))
	for _, s := range payload.Search {
		records = append(records, summaryToRecord(s))
	}
	return records, nil
}

func (c *omdbClient) FetchByID(ctx context.Context, id string) (*models.MetadataRecord, error) {
	params := url.Values{}
	params.Set("i", id)
	params.Set("plot", "full")

	var payload omdbDetailResponse
	if err := getJSON(ctx, c.opts, "omdb", c.endpoint(params), &payload); err != nil {
		return nil, err
	}
	if !strings.EqualFold(payload.Response, "True") {
		if isOMDbMissingTitle(payload.Error) {
			return nil, fmt.Errorf("%w: omdb %s: %s", ErrNotFound, id, payload.Error)
		}
		return nil, fmt.Errorf("%w: omdb: %s", ErrUpstreamUnavailable, omdbErrorText(payload.Error))
	}

	record := summaryToRecord(payload.omdbSummary)
	record.Overview = omdbValue(payload.Plot)
	record.Genre = omdbValue(payload.Genre)
	record.Runtime = omdbValue(payload.Runtime)
	record.Director = omdbValue(payload.Director)
	record.Actors = omdbValue(payload.Actors)
	if rating, err := strconv.ParseFloat(omdbValue(payload.IMDBRating), 64); err == nil {
		record.Rating = rating
	}
	return &record, nil
}

func summaryToRecord(s omdbSummary) models.MetadataRecord {
	mediaType := omdbValue(s.Type)
	if mediaType == "" {
		mediaType = "movie"
	}
	return models.MetadataRecord{
		ID:        s.IMDBID,
		Title:     s.Title,
		Year:      omdbValue(s.Year),
		Poster:    omdbValue(s.Poster),
		MediaType: mediaType,
	}
}

// omdbValue maps OMDb's "N/A" placeholder to an empty string.
func omdbValue(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "N/A") {
		return ""
	}
	return v
}

func isOMDbNoResults(msg string) bool {
	return strings.EqualFold(strings.TrimSpace(msg), "Movie not found!")
}

func isOMDbMissingTitle(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "incorrect imdb id") || strings.Contains(lower, "not found")
}

func omdbErrorText(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return "failure flag without message"
	}
	return msg
}
