package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/precolista/backend/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const maxSuggestions = 5

// SearchService answers "what items match this term" by fanning out to
// every retailer, deduplicating the offers and ranking suggestions.
// Searches bypass the price cache so users see live catalog data.
type SearchService struct {
	clients []domain.SourceClient
	log     zerolog.Logger
}

func NewSearchService(clients []domain.SourceClient, logger zerolog.Logger) *SearchService {
	return &SearchService{
		clients: clients,
		log:     logger.With().Str("component", "search_service").Logger(),
	}
}

// Search looks a term up across all sources. Per-source failures are
// reported in the response, never propagated.
func (s *SearchService) Search(ctx context.Context, term string) (domain.SearchResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return domain.SearchResponse{}, domain.ErrInvalidRequest
	}
	normalizedTerm := NormalizeItemName(term)

	type sourceResult struct {
		status domain.SourceStatus
		offers []domain.Offer
	}
	results := make([]sourceResult, len(s.clients))

	var g errgroup.Group
	for i, client := range s.clients {
		i, client := i, client
		g.Go(func() error {
			candidates, err := client.FetchCandidates(ctx, normalizedTerm)
			if err != nil {
				s.log.Warn().Err(err).Str("source", string(client.Source())).Msg("search fetch failed")
				message := err.Error()
				results[i] = sourceResult{status: domain.SourceStatus{Source: client.Source(), Error: &message}}
				return nil
			}
			offers := BuildOffers(client.Source(), normalizedTerm, candidates)
			results[i] = sourceResult{
				status: domain.SourceStatus{Source: client.Source(), OK: true, Offers: len(offers)},
				offers: offers,
			}
			return nil
		})
	}
	_ = g.Wait()

	var offers []domain.Offer
	statuses := make([]domain.SourceStatus, 0, len(results))
	for _, result := range results {
		statuses = append(statuses, result.status)
		for _, offer := range result.offers {
			if !offer.IsFallback {
				offers = append(offers, offer)
			}
		}
	}

	return domain.SearchResponse{
		Term:           term,
		NormalizedTerm: normalizedTerm,
		Suggestions:    buildSuggestions(normalizedTerm, offers),
		OffersCount:    len(offers),
		CheckedSources: statuses,
	}, nil
}

// relevanceScore ranks how well a product name answers the query: exact
// match first, then prefix, then word prefix, then substring. Returns
// ok=false when the name does not contain the query at all.
func relevanceScore(query, name string) (int, bool) {
	switch {
	case name == query:
		return 0, true
	case strings.HasPrefix(name, query):
		return 1, true
	case wordHasPrefix(name, query):
		return 2, true
	case strings.Contains(name, query):
		return 3, true
	}
	return 0, false
}

func wordHasPrefix(name, query string) bool {
	for _, word := range strings.Fields(name) {
		if strings.HasPrefix(word, query) {
			return true
		}
	}
	return false
}

// buildSuggestions dedupes offers by normalized product name, keeping the
// cheapest package per name, then ranks by relevance, price, name length
// and finally name.
func buildSuggestions(normalizedQuery string, offers []domain.Offer) []domain.SearchSuggestion {
	bestByKey := make(map[string]domain.SearchSuggestion)

	for _, offer := range offers {
		name := strings.TrimSpace(offer.ProductTitle)
		if name == "" {
			name = strings.TrimSpace(offer.ItemName)
		}
		if name == "" {
			continue
		}
		if _, ok := relevanceScore(normalizedQuery, strings.ToLower(name)); !ok {
			continue
		}

		key := NormalizeItemName(name)
		current, exists := bestByKey[key]
		if exists && offer.PackagePrice >= current.MinPrice {
			continue
		}

		suggestion := domain.SearchSuggestion{
			ID:       key,
			Name:     name,
			Unit:     offer.PackageUnit,
			MinPrice: offer.PackagePrice,
			Source:   offer.Source,
		}
		if offer.ProductURL != "" {
			url := offer.ProductURL
			suggestion.ProductURL = &url
		}
		bestByKey[key] = suggestion
	}

	suggestions := make([]domain.SearchSuggestion, 0, len(bestByKey))
	for _, suggestion := range bestByKey {
		suggestions = append(suggestions, suggestion)
	}

	sort.Slice(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		aScore, _ := relevanceScore(normalizedQuery, strings.ToLower(a.Name))
		bScore, _ := relevanceScore(normalizedQuery, strings.ToLower(b.Name))
		if aScore != bScore {
			return aScore < bScore
		}
		if a.MinPrice != b.MinPrice {
			return a.MinPrice < b.MinPrice
		}
		if len(a.Name) != len(b.Name) {
			return len(a.Name) < len(b.Name)
		}
		return a.Name < b.Name
	})

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}
