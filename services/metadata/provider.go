package metadata

//go:generate mockgen -source=provider.go -destination=mock_provider_test.go -package=metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/Bizimana-jeanluc/moviesBox/models"
)

var (
	// ErrUpstreamUnavailable covers network errors, timeouts, non-2xx statuses,
	// malformed payloads and provider failure flags.
	ErrUpstreamUnavailable = errors.New("metadata provider unavailable")
	// ErrNotFound means the provider answered and has no such title.
	ErrNotFound = errors.New("title not found")
)

// Provider is a remote metadata API. Inputs are passed through unvalidated.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, page int) ([]models.MetadataRecord, error)
	FetchByID(ctx context.Context, id string) (*models.MetadataRecord, error)
}

// TrendingProvider is implemented by providers with a native trending feed.
type TrendingProvider interface {
	Trending(ctx context.Context) ([]models.MetadataRecord, error)
}

// ClientOptions configures the HTTP behavior shared by the provider clients.
type ClientOptions struct {
	HTTPClient  *http.Client
	Timeout     time.Duration // per attempt
	MaxAttempts int           // 1 = single attempt
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 1
	}
	return o
}

// statusError is a non-2xx upstream status.
type statusError struct {
	status int
	text   string
}

func (e *statusError) Error() string { return "unexpected status " + e.text }

// getJSON performs the GET and decodes the JSON body into v. Every failure
// is wrapped in ErrUpstreamUnavailable except a 404, which is reported as
// ErrNotFound so callers can decide how to read it.
func getJSON(ctx context.Context, opts ClientOptions, tag, endpoint string, v any) error {
	attempt := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
		if err != nil {
			return retry.Unrecoverable(fmt.Errorf("%w: build request: %v", ErrUpstreamUnavailable, err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := opts.HTTPClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			_, _ = io.Copy(io.Discard, resp.Body)
			return retry.Unrecoverable(fmt.Errorf("%w: %s", ErrNotFound, resp.Status))
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, &statusError{status: resp.StatusCode, text: resp.Status})
		}
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return retry.Unrecoverable(fmt.Errorf("%w: decode payload: %v", ErrUpstreamUnavailable, err))
		}
		return nil
	}

	return retry.Do(attempt,
		retry.Context(ctx),
		retry.Attempts(uint(opts.MaxAttempts)),
		retry.Delay(250*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[%s] request failed (attempt %d/%d): %v", tag, n+1, opts.MaxAttempts, err)
		}),
	)
}
