package usecase

import (
	"math"
	"regexp"
	"time"

	"github.com/precolista/backend/internal/domain"
)

// perHundredGramThreshold flags butcher cards whose per-kg price is
// implausibly low: some retailers display fresh meat as price per 100g.
// Policy constant tied to observed retailer behavior, not a universal law.
const perHundredGramThreshold = 15.0

// Explicit per-measure price markers inside a product card, e.g. "4,59/kg".
// These are authoritative over package info parsed from the title.
var cardUnitPricePatterns = []struct {
	regex *regexp.Regexp
	unit  domain.Unit
}{
	{regexp.MustCompile(`(\d+[.,]\d{2})\s*/\s*kg\b`), domain.UnitKg},
	{regexp.MustCompile(`(\d+[.,]\d{2})\s*/\s*g\b`), domain.UnitG},
	{regexp.MustCompile(`(\d+[.,]\d{2})\s*/\s*l\b`), domain.UnitL},
	{regexp.MustCompile(`(\d+[.,]\d{2})\s*/\s*ml\b`), domain.UnitMl},
}

// cardUnitPrice is an explicit price-per-measure found on a product card.
type cardUnitPrice struct {
	Price float64
	Unit  domain.Unit
}

// extractCardUnitPrice scans raw card text for an explicit price-per-measure
// marker. Returns nil when the card carries none.
func extractCardUnitPrice(rawText string) *cardUnitPrice {
	normalized := normalizeLoose(rawText)
	for _, pattern := range cardUnitPricePatterns {
		match := pattern.regex.FindStringSubmatch(normalized)
		if match == nil {
			continue
		}
		price := parseDecimal(match[1])
		if price > 0 {
			return &cardUnitPrice{Price: price, Unit: pattern.unit}
		}
	}
	return nil
}

// BuildOffers converts one source's raw candidates into normalized offers
// for a search term. Irrelevant and malformed candidates are silently
// dropped; this is a pure transform with no side effects.
func BuildOffers(source domain.Source, term string, candidates []domain.RawCandidate) []domain.Offer {
	normalizedTerm := NormalizeItemName(term)
	now := time.Now().UTC()

	offers := make([]domain.Offer, 0, len(candidates))
	for _, candidate := range candidates {
		if offer, ok := buildOffer(source, normalizedTerm, term, candidate, now); ok {
			offers = append(offers, offer)
		}
	}
	return offers
}

func buildOffer(source domain.Source, normalizedTerm, term string, candidate domain.RawCandidate, now time.Time) (domain.Offer, bool) {
	if candidate.Title == "" || !isFinitePositive(candidate.Price) {
		return domain.Offer{}, false
	}
	if !isRelevantForTerm(normalizedTerm, candidate.Title) {
		return domain.Offer{}, false
	}

	pkg := ParsePackageFromTitle(candidate.Title)
	if pkg.Quantity <= 0 {
		return domain.Offer{}, false
	}

	weighted := isWeightSoldItem(term, candidate.Title)

	var cardPrice *cardUnitPrice
	if candidate.RawText != "" {
		cardPrice = extractCardUnitPrice(candidate.RawText)
	}

	// Weight-sold goods are priced per kg regardless of packaging labels.
	if weighted && pkg.Unit == domain.UnitUn {
		pkg = domain.PackageInfo{Quantity: 1, Unit: domain.UnitKg}
	} else if weighted && pkg.Unit == domain.UnitG {
		pkg = domain.PackageInfo{Quantity: pkg.Quantity / 1000, Unit: domain.UnitKg}
	}

	// Catalog APIs may report the package directly (unitMultiplier +
	// measurementUnit); that data beats title parsing except when it would
	// replace a measured unit with "un".
	if candidate.UnitMultiplier > 0 && domain.IsValidUnit(candidate.MeasurementUnit) {
		catalogUnit := domain.Unit(candidate.MeasurementUnit)
		if catalogUnit != domain.UnitUn || pkg.Unit == domain.UnitUn {
			pkg = domain.PackageInfo{Quantity: candidate.UnitMultiplier, Unit: catalogUnit}
		}
	}

	// A size in the title ("arroz 1kg") without a per-measure price on the
	// card means one discrete package, not bulk pricing.
	if !weighted && cardPrice == nil && pkg.Unit != domain.UnitUn {
		pkg = domain.PackageInfo{Quantity: 1, Unit: domain.UnitUn}
	}

	if pkg.Quantity <= 0 {
		return domain.Offer{}, false
	}

	finalPrice := candidate.Price
	if cardPrice != nil && (weighted || cardPrice.Unit == pkg.Unit) {
		pkg = domain.PackageInfo{Quantity: 1, Unit: cardPrice.Unit}
		finalPrice = cardPrice.Price
	}

	// Some storefronts show butcher cards priced per 100g.
	if weighted && pkg.Unit == domain.UnitKg && finalPrice < perHundredGramThreshold {
		finalPrice = math.Round(finalPrice*10*100) / 100
	}

	if !isFinitePositive(finalPrice) {
		return domain.Offer{}, false
	}

	return domain.Offer{
		Source:           source,
		ItemName:         normalizedTerm,
		ProductTitle:     candidate.Title,
		PackageQuantity:  pkg.Quantity,
		PackageUnit:      pkg.Unit,
		PackagePrice:     finalPrice,
		PricePerUserUnit: finalPrice / pkg.Quantity,
		ProductURL:       candidate.URL,
		IsFallback:       false,
		CollectedAt:      now,
	}, true
}

func isFinitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
