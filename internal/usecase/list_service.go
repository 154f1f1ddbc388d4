package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/precolista/backend/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// FetchFunc produces offers for one (source, term) pair.
type FetchFunc func(ctx context.Context) ([]domain.Offer, error)

// OfferCache coalesces and caches offer fetches keyed by (source, term).
// At most one fetch per key runs at a time; concurrent callers share its
// result.
type OfferCache interface {
	GetOrFetch(ctx context.Context, source domain.Source, term string, fetch FetchFunc) ([]domain.Offer, error)
	Put(ctx context.Context, snapshot domain.PriceSnapshot) error
	Snapshots() []domain.PriceSnapshot
	SetLastUpdate(ctx context.Context, at time.Time) error
	LastUpdate() *time.Time
}

// ListService orchestrates normalization, per-item offer retrieval and
// aggregation into a full shopping list summary.
type ListService struct {
	cache    OfferCache
	clients  []domain.SourceClient
	fallback domain.FallbackProvider
	log      zerolog.Logger
}

// NewListService creates a list service. fallback may be nil when no
// synthetic reference prices are wanted.
func NewListService(cache OfferCache, clients []domain.SourceClient, fallback domain.FallbackProvider, logger zerolog.Logger) *ListService {
	return &ListService{
		cache:    cache,
		clients:  clients,
		fallback: fallback,
		log:      logger.With().Str("component", "list_service").Logger(),
	}
}

// CalculateListPrices builds the price report for a shopping list. Items
// with empty names or non-positive quantities are filtered out, never
// rejected. Items are processed sequentially; sources for one item are
// fetched concurrently.
func (s *ListService) CalculateListPrices(ctx context.Context, cep string, rawItems []domain.ShoppingItemInput) (domain.CalculationResponse, error) {
	items := make([]domain.ShoppingItemInput, 0, len(rawItems))
	for _, item := range rawItems {
		if strings.TrimSpace(item.Name) == "" || !isFinitePositive(item.Quantity) {
			continue
		}
		items = append(items, domain.ShoppingItemInput{
			Name:     NormalizeItemName(item.Name),
			Quantity: item.Quantity,
		})
	}

	summaries := make([]domain.ItemPriceSummary, 0, len(items))
	for _, item := range items {
		offers := s.fetchOffersForItem(ctx, item.Name)
		summaries = append(summaries, SummarizeItem(item, offers))
	}

	summary := domain.ListSummary{ItemsCount: len(summaries)}
	for _, item := range summaries {
		summary.LowestTotalListPrice += item.LowestTotalPrice
		summary.AverageTotalListPrice += item.AverageTotalPrice
	}

	return domain.CalculationResponse{
		CEP:         cep,
		GeneratedAt: time.Now().UTC(),
		Items:       summaries,
		Summary:     summary,
	}, nil
}

// fetchOffersForItem fans out to every source concurrently and joins the
// results. A failing source contributes zero offers and never aborts the
// other sources.
func (s *ListService) fetchOffersForItem(ctx context.Context, normalizedTerm string) []domain.Offer {
	results := make([][]domain.Offer, len(s.clients))

	var g errgroup.Group
	for i, client := range s.clients {
		i, client := i, client
		g.Go(func() error {
			offers, err := s.cache.GetOrFetch(ctx, client.Source(), normalizedTerm, fetchAndBuild(client, s.fallback, normalizedTerm))
			if err != nil {
				s.log.Warn().Err(err).
					Str("source", string(client.Source())).
					Str("term", normalizedTerm).
					Msg("source fetch failed, using zero offers")
				return nil
			}
			results[i] = offers
			return nil
		})
	}
	_ = g.Wait()

	var offers []domain.Offer
	for _, sourceOffers := range results {
		offers = append(offers, sourceOffers...)
	}
	return offers
}

// fetchAndBuild wraps one source fetch into a FetchFunc: raw candidates are
// normalized into offers, and the fallback provider fills in synthetic
// reference prices when the source fails or yields nothing relevant.
func fetchAndBuild(client domain.SourceClient, fallback domain.FallbackProvider, normalizedTerm string) FetchFunc {
	return func(ctx context.Context) ([]domain.Offer, error) {
		candidates, err := client.FetchCandidates(ctx, normalizedTerm)
		if err != nil {
			if fallback != nil {
				if offers := fallback.Offers(client.Source(), normalizedTerm); len(offers) > 0 {
					return offers, nil
				}
			}
			return nil, err
		}

		offers := BuildOffers(client.Source(), normalizedTerm, candidates)
		if len(offers) == 0 && fallback != nil {
			if synthetic := fallback.Offers(client.Source(), normalizedTerm); len(synthetic) > 0 {
				return synthetic, nil
			}
		}
		return offers, nil
	}
}
