package usecase

import (
	"context"
	"time"

	"github.com/precolista/backend/internal/domain"
	"github.com/rs/zerolog"
)

// RefreshService re-fetches every cached (source, term) snapshot. Used by
// the manual refresh endpoint and the monthly scheduler.
type RefreshService struct {
	cache    OfferCache
	clients  map[domain.Source]domain.SourceClient
	fallback domain.FallbackProvider
	log      zerolog.Logger
}

func NewRefreshService(cache OfferCache, clients []domain.SourceClient, fallback domain.FallbackProvider, logger zerolog.Logger) *RefreshService {
	bySource := make(map[domain.Source]domain.SourceClient, len(clients))
	for _, client := range clients {
		bySource[client.Source()] = client
	}
	return &RefreshService{
		cache:    cache,
		clients:  bySource,
		fallback: fallback,
		log:      logger.With().Str("component", "refresh_service").Logger(),
	}
}

// RefreshAll re-fetches all cached snapshots sequentially. A failing
// source keeps its previous snapshot; the run itself never fails because
// of one source.
func (s *RefreshService) RefreshAll(ctx context.Context) (domain.RefreshResult, error) {
	snapshots := s.cache.Snapshots()

	for _, snapshot := range snapshots {
		client, ok := s.clients[snapshot.Source]
		if !ok {
			s.log.Warn().Str("source", string(snapshot.Source)).Msg("no client for cached source, skipping")
			continue
		}

		offers, err := fetchAndBuild(client, s.fallback, snapshot.Term)(ctx)
		if err != nil {
			s.log.Warn().Err(err).
				Str("source", string(snapshot.Source)).
				Str("term", snapshot.Term).
				Msg("refresh fetch failed, keeping previous snapshot")
			continue
		}

		snapshot.Offers = offers
		snapshot.FetchedAt = time.Now().UTC()
		if err := s.cache.Put(ctx, snapshot); err != nil {
			s.log.Error().Err(err).Str("term", snapshot.Term).Msg("failed to store refreshed snapshot")
		}
	}

	now := time.Now().UTC()
	if err := s.cache.SetLastUpdate(ctx, now); err != nil {
		s.log.Error().Err(err).Msg("failed to record last update")
	}

	updated := len(snapshots)
	estimated := updated * 2
	if estimated < 6 {
		estimated = 6
	}
	return domain.RefreshResult{Updated: updated, EstimatedSeconds: estimated}, nil
}

// LastUpdate returns when the cache was last fully refreshed, or nil.
func (s *RefreshService) LastUpdate() *time.Time {
	return s.cache.LastUpdate()
}
