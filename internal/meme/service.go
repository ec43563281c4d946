package meme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/memehub/meme-api/internal/cache"
)

// Service runs the fetch pipeline: cache lookup, then the ordered source
// chain on a miss, then cache store. Concurrent misses for the same
// parameters collapse into a single outbound fetch.
type Service struct {
	logger  *slog.Logger
	cache   cache.Store
	sources []Source
	ttl     time.Duration
	sgroup  singleflight.Group
}

// NewService wires the pipeline. Sources are tried in the given order.
func NewService(logger *slog.Logger, store cache.Store, ttl time.Duration, sources ...Source) *Service {
	return &Service{
		logger:  logger.With(slog.String("component", "meme-service")),
		cache:   store,
		sources: sources,
		ttl:     ttl,
	}
}

// Fetch returns the marshaled ResultSet for the given parameters. The bytes
// come straight from the cache on a hit, so repeated requests within the TTL
// window are byte-identical.
func (s *Service) Fetch(ctx context.Context, p Params) ([]byte, error) {
	key := p.CacheKey()

	if entry, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache get failed", slog.String("key", key), slog.String("error", err.Error()))
	} else if ok {
		return entry.Payload, nil
	}

	res, err, _ := s.sgroup.Do(key, func() (any, error) {
		// Detached from the caller's cancellation: one client's disconnect
		// must not fail every collapsed waiter. Outbound calls stay bounded
		// by the transport client's timeout.
		ctx := context.WithoutCancel(ctx)

		set, err := s.fetchFromSources(ctx, p)
		if err != nil {
			return nil, err
		}

		if set.Count == 0 {
			// Empty results are not cached; the subreddit may fill up
			// before the TTL would have lapsed.
			return nil, ErrNoResults
		}

		payload, err := json.Marshal(set)
		if err != nil {
			return nil, fmt.Errorf("encode result set: %w", err)
		}

		if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
			s.logger.Warn("cache store failed", slog.String("key", key), slog.String("error", err.Error()))
		}

		return payload, nil
	})
	if err != nil {
		return nil, err
	}

	return res.([]byte), nil
}

// fetchFromSources walks the chain in order. Any source error redirects to
// the next source; a success short-circuits even when the set is empty. On
// exhaustion the returned error carries every source's failure.
func (s *Service) fetchFromSources(ctx context.Context, p Params) (ResultSet, error) {
	var errs []error
	for _, src := range s.sources {
		set, err := src.Fetch(ctx, p)
		if err != nil {
			s.logger.Warn("source fetch failed",
				slog.String("source", src.Name()),
				slog.String("subreddit", p.Subreddit),
				slog.Int("count", p.Count),
				slog.String("error", err.Error()))
			errs = append(errs, err)
			continue
		}
		return set, nil
	}

	if len(errs) == 0 {
		return ResultSet{}, ErrAllSourcesFailed
	}
	return ResultSet{}, fmt.Errorf("%w: %w", ErrAllSourcesFailed, errors.Join(errs...))
}
