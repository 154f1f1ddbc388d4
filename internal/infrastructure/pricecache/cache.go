package pricecache

import (
	"context"
	"sync"
	"time"

	"github.com/precolista/backend/internal/domain"
	"github.com/precolista/backend/internal/usecase"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Service is the in-process price cache. Snapshots live in memory keyed by
// "source|term"; an optional SnapshotStore persists them across restarts.
// Concurrent fetches for the same key coalesce into a single in-flight
// call via singleflight.
type Service struct {
	mu         sync.RWMutex
	snapshots  map[string]domain.PriceSnapshot
	lastUpdate *time.Time

	flight singleflight.Group
	store  domain.SnapshotStore
	log    zerolog.Logger
}

// New creates a cache service. store may be nil for a purely in-memory
// cache (tests, ephemeral deployments).
func New(store domain.SnapshotStore, logger zerolog.Logger) *Service {
	return &Service{
		snapshots: make(map[string]domain.PriceSnapshot),
		store:     store,
		log:       logger.With().Str("component", "pricecache").Logger(),
	}
}

func cacheKey(source domain.Source, term string) string {
	return string(source) + "|" + term
}

// Init warms the cache from the snapshot store. Safe to call with no
// store; a load failure leaves the cache empty but usable.
func (s *Service) Init(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	snapshots, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not load persisted snapshots, starting empty")
		return err
	}
	lastUpdate, err := s.store.LastUpdate(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not load last update timestamp")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snapshot := range snapshots {
		s.snapshots[cacheKey(snapshot.Source, snapshot.Term)] = snapshot
	}
	s.lastUpdate = lastUpdate
	s.log.Info().Int("snapshots", len(snapshots)).Msg("cache warmed from store")
	return nil
}

// GetOrFetch returns the cached offers for (source, term), or runs fetch
// exactly once no matter how many callers ask concurrently. Successful
// fetch results are cached and persisted; failed fetches cache nothing.
func (s *Service) GetOrFetch(ctx context.Context, source domain.Source, term string, fetch usecase.FetchFunc) ([]domain.Offer, error) {
	key := cacheKey(source, term)

	s.mu.RLock()
	snapshot, ok := s.snapshots[key]
	s.mu.RUnlock()
	if ok {
		return snapshot.Offers, nil
	}

	result, err, _ := s.flight.Do(key, func() (interface{}, error) {
		// A concurrent caller may have filled the cache while this call
		// waited its turn.
		s.mu.RLock()
		snapshot, ok := s.snapshots[key]
		s.mu.RUnlock()
		if ok {
			return snapshot.Offers, nil
		}

		offers, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		if putErr := s.Put(ctx, domain.PriceSnapshot{
			Source:    source,
			Term:      term,
			Offers:    offers,
			FetchedAt: time.Now().UTC(),
		}); putErr != nil {
			s.log.Error().Err(putErr).Str("source", string(source)).Str("term", term).Msg("failed to persist snapshot")
		}
		return offers, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Offer), nil
}

// Put stores a snapshot in memory and, when a store is configured, on
// disk. The in-memory cache is updated even if persistence fails.
func (s *Service) Put(ctx context.Context, snapshot domain.PriceSnapshot) error {
	s.mu.Lock()
	s.snapshots[cacheKey(snapshot.Source, snapshot.Term)] = snapshot
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.Save(ctx, snapshot)
}

// Snapshots returns a copy of every cached snapshot.
func (s *Service) Snapshots() []domain.PriceSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := make([]domain.PriceSnapshot, 0, len(s.snapshots))
	for _, snapshot := range s.snapshots {
		snapshots = append(snapshots, snapshot)
	}
	return snapshots
}

// Size returns the number of cached (source, term) snapshots.
func (s *Service) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// SetLastUpdate records when the cache was last fully refreshed.
func (s *Service) SetLastUpdate(ctx context.Context, at time.Time) error {
	s.mu.Lock()
	s.lastUpdate = &at
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.SaveLastUpdate(ctx, at)
}

// LastUpdate returns the recorded refresh timestamp, or nil.
func (s *Service) LastUpdate() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}
