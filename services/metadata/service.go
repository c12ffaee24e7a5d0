package metadata

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/singleflight"

	"github.com/Bizimana-jeanluc/moviesBox/models"
)

const (
	defaultListTTL    = 600 * time.Second
	defaultDetailsTTL = 3600 * time.Second

	defaultHydrateWorkers = 4

	trendingKey = "trending"
)

// TTLPolicy holds the time-to-live of each cached operation.
type TTLPolicy struct {
	Trending time.Duration
	Search   time.Duration
	Details  time.Duration
}

// Options configures a Service. Zero values fall back to sensible defaults.
type Options struct {
	TTL        TTLPolicy
	Now        func() time.Time // clock used for cache expiry
	MaxEntries int

	// SingleFlight collapses concurrent misses on the same fingerprint into one
	// upstream call. Off by default: duplicate work on a stampede is accepted.
	SingleFlight bool

	// TrendingSeeds are searched when the provider has no trending feed.
	TrendingSeeds []string
	// PickSeed returns an index in [0, n). Defaults to a random pick.
	PickSeed func(n int) int
	// Fallback is the listing served when trending cannot be fetched.
	Fallback []models.MetadataRecord

	// HydrateSearch replaces every search hit with its detailed record.
	HydrateSearch  bool
	HydrateWorkers int
}

// Service aggregates provider metadata with the availability overlay and
// memoizes the results.
type Service struct {
	provider Provider
	table    AvailabilityTable
	cache    *memoryCache
	ttl      TTLPolicy

	seeds    []string
	pickSeed func(n int) int
	fallback []models.MetadataRecord

	flight *singleflight.Group // nil unless single-flight is enabled

	hydrate        bool
	hydrateWorkers int
}

func NewService(provider Provider, table AvailabilityTable, opts Options) *Service {
	ttl := opts.TTL
	if ttl.Trending <= 0 {
		ttl.Trending = defaultListTTL
	}
	if ttl.Search <= 0 {
		ttl.Search = defaultListTTL
	}
	if ttl.Details <= 0 {
		ttl.Details = defaultDetailsTTL
	}

	pick := opts.PickSeed
	if pick == nil {
		pick = rand.IntN
	}
	workers := opts.HydrateWorkers
	if workers <= 0 {
		workers = defaultHydrateWorkers
	}

	s := &Service{
		provider:       provider,
		table:          table,
		cache:          newMemoryCache(opts.MaxEntries, opts.Now),
		ttl:            ttl,
		seeds:          append([]string(nil), opts.TrendingSeeds...),
		pickSeed:       pick,
		fallback:       copyRecords(opts.Fallback),
		hydrate:        opts.HydrateSearch,
		hydrateWorkers: workers,
	}
	if opts.SingleFlight {
		s.flight = &singleflight.Group{}
	}
	return s
}

// ListTrending returns the enriched trending listing. It never fails: when the
// provider is unavailable the configured fallback listing is returned instead
// and nothing is cached.
func (s *Service) ListTrending(ctx context.Context) []models.EnrichedRecord {
	v, err := s.load(ctx, cacheKey(trendingKey), s.ttl.Trending, func(ctx context.Context) (any, error) {
		records, err := s.fetchTrending(ctx)
		if err != nil {
			return nil, err
		}
		return EnrichAll(records, s.table), nil
	})
	if err != nil {
		log.Printf("[metadata] trending via %s failed, serving %d fallback titles: %v", s.provider.Name(), len(s.fallback), err)
		return EnrichAll(copyRecords(s.fallback), s.table)
	}
	return cloneRecords(v.([]models.EnrichedRecord))
}

func (s *Service) fetchTrending(ctx context.Context) ([]models.MetadataRecord, error) {
	if tp, ok := s.provider.(TrendingProvider); ok {
		return tp.Trending(ctx)
	}
	if len(s.seeds) == 0 {
		return nil, fmt.Errorf("%w: %s has no trending feed and no seeds are configured", ErrUpstreamUnavailable, s.provider.Name())
	}
	seed := s.seeds[s.pickSeed(len(s.seeds))]
	return s.searchRecords(ctx, seed, 1)
}

// Search returns the enriched results for query and page, or an empty slice
// when the provider is unavailable. A blank query yields no results.
func (s *Service) Search(ctx context.Context, query string, page int) []models.EnrichedRecord {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return []models.EnrichedRecord{}
	}
	upstreamQuery := strings.Join(strings.Fields(query), " ")

	key := cacheKey("search", normalized, strconv.Itoa(page))
	v, err := s.load(ctx, key, s.ttl.Search, func(ctx context.Context) (any, error) {
		records, err := s.searchRecords(ctx, upstreamQuery, page)
		if err != nil {
			return nil, err
		}
		return EnrichAll(records, s.table), nil
	})
	if err != nil {
		log.Printf("[metadata] search %q page %d via %s failed: %v", upstreamQuery, page, s.provider.Name(), err)
		return []models.EnrichedRecord{}
	}
	return cloneRecords(v.([]models.EnrichedRecord))
}

func (s *Service) searchRecords(ctx context.Context, query string, page int) ([]models.MetadataRecord, error) {
	records, err := s.provider.Search(ctx, query, page)
	if err != nil {
		return nil, err
	}
	if s.hydrate && len(records) > 0 {
		s.hydrateRecords(ctx, records)
		// A cancelled hydration leaves summaries behind; they must not be cached.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// hydrateRecords swaps each summary record for its detailed version in place.
// Records whose details cannot be fetched keep their summary.
func (s *Service) hydrateRecords(ctx context.Context, records []models.MetadataRecord) {
	p := pool.New().WithMaxGoroutines(s.hydrateWorkers)
	for i := range records {
		idx := i
		p.Go(func() {
			if details, ok := s.GetDetails(ctx, records[idx].ID); ok {
				records[idx] = details.MetadataRecord
			}
		})
	}
	p.Wait()
}

// GetDetails returns the enriched record for a provider id. The second result
// is false when the title does not exist or the provider is unavailable.
func (s *Service) GetDetails(ctx context.Context, id string) (models.EnrichedRecord, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.EnrichedRecord{}, false
	}

	v, err := s.load(ctx, cacheKey("movie", id), s.ttl.Details, func(ctx context.Context) (any, error) {
		record, err := s.provider.FetchByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return Enrich(*record, s.table), nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Printf("[metadata] %s has no title %q", s.provider.Name(), id)
		} else {
			log.Printf("[metadata] details %q via %s failed: %v", id, s.provider.Name(), err)
		}
		return models.EnrichedRecord{}, false
	}
	return cloneRecord(v.(models.EnrichedRecord)), true
}

// AvailableCount is the number of titles in the availability overlay.
func (s *Service) AvailableCount() int {
	if s.table == nil {
		return 0
	}
	return s.table.Len()
}

// load returns the live cache entry for key or runs fetch and stores its
// result. Only a successful fetch is committed.
func (s *Service) load(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) (any, error)) (any, error) {
	if v, ok := s.cache.get(key); ok {
		return v, nil
	}
	if s.flight == nil {
		return s.fetchAndStore(ctx, key, ttl, fetch)
	}

	// The shared fetch outlives the caller that started it so other waiters
	// still get a result. Provider timeouts bound it.
	shared := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (any, error) {
		if v, ok := s.cache.get(key); ok {
			return v, nil
		}
		return s.fetchAndStore(shared, key, ttl, fetch)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) fetchAndStore(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) (any, error)) (any, error) {
	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.set(key, v, ttl)
	return v, nil
}

func cloneRecord(r models.EnrichedRecord) models.EnrichedRecord {
	if r.Availability != nil {
		desc := *r.Availability
		r.Availability = &desc
	}
	return r
}

func cloneRecords(records []models.EnrichedRecord) []models.EnrichedRecord {
	out := make([]models.EnrichedRecord, len(records))
	for i, r := range records {
		out[i] = cloneRecord(r)
	}
	return out
}
