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

const (
	// Posters are rendered as ~300px cards, w500 is plenty.
	tmdbPosterSize   = "w500"
	tmdbBackdropSize = "w1280"

	// status_code TMDB uses for "The resource you requested could not be found."
	tmdbStatusNotFound = 34
)

type tmdbClient struct {
	apiKey    string
	baseURL   string
	imageBase string
	language  string
	opts      ClientOptions
}

// NewTMDBClient returns a Provider backed by The Movie Database v3 API.
func NewTMDBClient(apiKey, baseURL, imageBaseURL, language string, opts ClientOptions) Provider {
	return &tmdbClient{
		apiKey:    strings.TrimSpace(apiKey),
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		imageBase: strings.TrimRight(strings.TrimSpace(imageBaseURL), "/"),
		language:  strings.TrimSpace(language),
		opts:      opts.withDefaults(),
	}
}

func (c *tmdbClient) Name() string { return "tmdb" }

type tmdbMovie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	Runtime      int     `json:"runtime"`
	Genres       []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

// tmdbListResponse also carries TMDB's error envelope (success/status_code).
type tmdbListResponse struct {
	Page          int         `json:"page"`
	Results       []tmdbMovie `json:"results"`
	Success       *bool       `json:"success"`
	StatusCode    int         `json:"status_code"`
	StatusMessage string      `json:"status_message"`
}

type tmdbDetailResponse struct {
	tmdbMovie
	Success       *bool  `json:"success"`
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

func (c *tmdbClient) endpoint(params url.Values, elem ...string) (string, error) {
	endpoint, err := url.JoinPath(c.baseURL, elem...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	return endpoint + "?" + params.Encode(), nil
}

func (c *tmdbClient) Trending(ctx context.Context) ([]models.MetadataRecord, error) {
	endpoint, err := c.endpoint(url.Values{}, "trending", "movie", "week")
	if err != nil {
		return nil, err
	}
	return c.list(ctx, endpoint)
}

func (c *tmdbClient) Search(ctx context.Context, query string, page int) ([]models.MetadataRecord, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", "false")
	endpoint, err := c.endpoint(params, "search", "movie")
	if err != nil {
		return nil, err
	}
	return c.list(ctx, endpoint)
}

func (c *tmdbClient) list(ctx context.Context, endpoint string) ([]models.MetadataRecord, error) {
	var payload tmdbListResponse
	if err := getJSON(ctx, c.opts, "tmdb", endpoint, &payload); err != nil {
		if errors.Is(err, ErrNotFound) {
			// A listing endpoint that 404s is a broken upstream, not a missing title.
			return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
		return nil, err
	}
	if payload.Success != nil && !*payload.Success {
		return nil, fmt.Errorf("%w: tmdb status %d: %s", ErrUpstreamUnavailable, payload.StatusCode, payload.StatusMessage)
	}

	records := make([]models.MetadataRecord, 0, len(payload.Results))
	for _, m := range payload.Results {
		records = append(records, c.toRecord(m))
	}
	return records, nil
}

func (c *tmdbClient) FetchByID(ctx context.Context, id string) (*models.MetadataRecord, error) {
	endpoint, err := c.endpoint(url.Values{}, "movie", id)
	if err != nil {
		return nil, err
	}

	var payload tmdbDetailResponse
	if err := getJSON(ctx, c.opts, "tmdb", endpoint, &payload); err != nil {
		return nil, err
	}
	if payload.Success != nil && !*payload.Success {
		if payload.StatusCode == tmdbStatusNotFound {
			return nil, fmt.Errorf("%w: tmdb movie %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: tmdb status %d: %s", ErrUpstreamUnavailable, payload.StatusCode, payload.StatusMessage)
	}
	if payload.ID == 0 {
		return nil, fmt.Errorf("%w: tmdb movie %s: empty payload", ErrUpstreamUnavailable, id)
	}

	record := c.toRecord(payload.tmdbMovie)
	return &record, nil
}

func (c *tmdbClient) toRecord(m tmdbMovie) models.MetadataRecord {
	record := models.MetadataRecord{
		ID:        strconv.FormatInt(m.ID, 10),
		Title:     m.Title,
		Year:      parseTMDBYear(m.ReleaseDate),
		Rating:    m.VoteAverage,
		Overview:  m.Overview,
		Poster:    c.image(m.PosterPath, tmdbPosterSize),
		Backdrop:  c.image(m.BackdropPath, tmdbBackdropSize),
		MediaType: "movie",
	}
	if m.Runtime > 0 {
		record.Runtime = fmt.Sprintf("%d min", m.Runtime)
	}
	if len(m.Genres) > 0 {
		names := make([]string, 0, len(m.Genres))
		for _, g := range m.Genres {
			names = append(names, g.Name)
		}
		record.Genre = strings.Join(names, ", ")
	}
	return record
}

func (c *tmdbClient) image(path, size string) string {
	path = strings.TrimSpace(path)
	if path == "" || c.imageBase == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.imageBase + "/" + size + path
}

func parseTMDBYear(releaseDate string) string {
	releaseDate = strings.TrimSpace(releaseDate)
	if len(releaseDate) < 4 {
		return ""
	}
	if _, err := strconv.Atoi(releaseDate[:4]); err != nil {
		return ""
	}
	return releaseDate[:4]
}
