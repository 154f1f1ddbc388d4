package usecase

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/precolista/backend/internal/domain"
)

// pickReferenceUnit chooses the measurement unit used to compare offers
// for one item: the most frequent unit, with ties broken by priority
// (kg > g > l > ml > un). Zero offers default to "un".
func pickReferenceUnit(offers []domain.Offer) domain.Unit {
	if len(offers) == 0 {
		return domain.UnitUn
	}

	countByUnit := make(map[domain.Unit]int, len(domain.UnitsByPriority))
	for _, offer := range offers {
		countByUnit[offer.PackageUnit]++
	}

	winner := domain.UnitUn
	best := -1
	for _, unit := range domain.UnitsByPriority {
		if countByUnit[unit] > best {
			best = countByUnit[unit]
			winner = unit
		}
	}
	return winner
}

// decimalPlaces counts the decimal digits of v in its shortest
// representation.
func decimalPlaces(v float64) int {
	text := strconv.FormatFloat(v, 'f', -1, 64)
	dot := strings.IndexByte(text, '.')
	if dot < 0 {
		return 0
	}
	return len(text) - dot - 1
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

func gcdInt(a, b int64) int64 {
	x, y := a, b
	if x < 0 {
		x = -x
	}
	if y < 0 {
		y = -y
	}
	for y != 0 {
		x, y = y, x%y
	}
	if x == 0 {
		return 1
	}
	return x
}

// inferQuantityRule derives the allowed purchase quantities from the
// distinct package sizes observed. For measured units the step is the GCD
// of the sizes scaled to integers at the maximum observed precision.
func inferQuantityRule(unit domain.Unit, offers []domain.Offer) domain.QuantityRule {
	if unit == domain.UnitUn {
		return domain.QuantityRule{Min: 1, Step: 1}
	}

	seen := make(map[float64]bool)
	var quantities []float64
	for _, offer := range offers {
		q := offer.PackageQuantity
		if !isFinitePositive(q) {
			continue
		}
		q = roundTo(q, 3)
		if !seen[q] {
			seen[q] = true
			quantities = append(quantities, q)
		}
	}
	sort.Float64s(quantities)

	if len(quantities) == 0 {
		return domain.QuantityRule{Min: 1, Step: 1}
	}
	if len(quantities) == 1 {
		return domain.QuantityRule{Min: quantities[0], Step: quantities[0]}
	}

	maxDecimals := 0
	for _, q := range quantities {
		if d := decimalPlaces(q); d > maxDecimals {
			maxDecimals = d
		}
	}
	factor := math.Pow(10, float64(maxDecimals))

	divisor := int64(math.Round(quantities[0] * factor))
	for _, q := range quantities[1:] {
		divisor = gcdInt(divisor, int64(math.Round(q*factor)))
	}

	step := roundTo(float64(divisor)/factor, maxDecimals)
	if step <= 0 {
		step = quantities[0]
	}
	return domain.QuantityRule{Min: quantities[0], Step: step}
}

// applyQuantityRule snaps a requested quantity onto the rule grid: never
// below min, and always min plus a whole number of steps, rounded at the
// rule's own precision.
func applyQuantityRule(quantity float64, rule domain.QuantityRule) float64 {
	safe := quantity
	if !isFinitePositive(safe) {
		safe = rule.Min
	}
	if safe <= rule.Min {
		return rule.Min
	}

	steps := math.Round((safe - rule.Min) / rule.Step)
	snapped := rule.Min + steps*rule.Step
	precision := decimalPlaces(rule.Min)
	if p := decimalPlaces(rule.Step); p > precision {
		precision = p
	}
	return roundTo(snapped, precision)
}

// SummarizeItem aggregates one item's offers into a price summary. Offers
// outside the reference unit are excluded; fallback offers are used only
// when no real offer exists in that unit.
func SummarizeItem(input domain.ShoppingItemInput, offers []domain.Offer) domain.ItemPriceSummary {
	referenceUnit := pickReferenceUnit(offers)

	var inUnit []domain.Offer
	for _, offer := range offers {
		if offer.PackageUnit != referenceUnit || offer.PackageQuantity <= 0 {
			continue
		}
		offer.PricePerUserUnit = offer.PackagePrice / offer.PackageQuantity
		inUnit = append(inUnit, offer)
	}

	var realOffers []domain.Offer
	for _, offer := range inUnit {
		if !offer.IsFallback {
			realOffers = append(realOffers, offer)
		}
	}

	baseOffers := inUnit
	if len(realOffers) > 0 {
		baseOffers = realOffers
	}

	rule := inferQuantityRule(referenceUnit, inUnit)
	normalizedQuantity := applyQuantityRule(input.Quantity, rule)

	var lowest, sum float64
	for i, offer := range baseOffers {
		price := offer.PricePerUserUnit
		if i == 0 || price < lowest {
			lowest = price
		}
		sum += price
	}
	var average float64
	if len(baseOffers) > 0 {
		average = sum / float64(len(baseOffers))
	}

	var bestOffer *domain.Offer
	for i := range baseOffers {
		if baseOffers[i].PricePerUserUnit == lowest {
			bestOffer = &baseOffers[i]
			break
		}
	}

	summary := domain.ItemPriceSummary{
		ItemName:          NormalizeItemName(input.Name),
		Quantity:          normalizedQuantity,
		Unit:              referenceUnit,
		QuantityRule:      rule,
		LowestUnitPrice:   lowest,
		AverageUnitPrice:  average,
		LowestTotalPrice:  lowest * normalizedQuantity,
		AverageTotalPrice: average * normalizedQuantity,
		HasRealOffers:     len(realOffers) > 0,
		Offers:            inUnit,
	}

	if bestOffer != nil {
		source := bestOffer.Source
		title := bestOffer.ProductTitle
		summary.BestSource = &source
		summary.BestOfferTitle = &title
		if !bestOffer.IsFallback && bestOffer.ProductURL != "" {
			url := bestOffer.ProductURL
			summary.BestOfferURL = &url
		}
	}

	return summary
}
