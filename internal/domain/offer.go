package domain

import "time"

// Unit is a package measurement unit. "un" means a discrete unit/package.
type Unit string

const (
	UnitUn Unit = "un"
	UnitG  Unit = "g"
	UnitKg Unit = "kg"
	UnitMl Unit = "ml"
	UnitL  Unit = "l"
)

// UnitsByPriority orders units for reference-unit selection. Weight and
// volume units are preferred over count-based "un" when offer counts tie.
var UnitsByPriority = []Unit{UnitKg, UnitG, UnitL, UnitMl, UnitUn}

// IsValidUnit reports whether s is one of the known package units.
func IsValidUnit(s string) bool {
	switch Unit(s) {
	case UnitUn, UnitG, UnitKg, UnitMl, UnitL:
		return true
	}
	return false
}

// Source identifies the retailer a candidate or offer came from.
type Source string

const (
	SourcePrezunic            Source = "prezunic"
	SourceZonaSul             Source = "zonasul"
	SourceExtra               Source = "extra"
	SourceSupermarketDelivery Source = "supermarketdelivery"
)

// AllSources lists every retailer in fan-out order.
var AllSources = []Source{
	SourcePrezunic,
	SourceZonaSul,
	SourceExtra,
	SourceSupermarketDelivery,
}

// RawCandidate is one loosely-shaped product record as returned by a
// retailer search. Optional fields are zero-valued when the source did not
// provide them; validation happens in the offer builder.
type RawCandidate struct {
	Title           string  `json:"title"`
	Price           float64 `json:"price"`
	ListPrice       float64 `json:"listPrice,omitempty"`
	UnitMultiplier  float64 `json:"unitMultiplier,omitempty"`
	MeasurementUnit string  `json:"measurementUnit,omitempty"`
	RawText         string  `json:"rawText,omitempty"`
	URL             string  `json:"url,omitempty"`
}

// PackageInfo is a quantity/unit pair parsed from free text.
type PackageInfo struct {
	Quantity float64
	Unit     Unit
}

// Offer is one retailer's priced, unit-normalized package answering a
// search term. Offers are never mutated after creation.
type Offer struct {
	Source           Source    `json:"source"`
	ItemName         string    `json:"itemName"`
	ProductTitle     string    `json:"productTitle"`
	PackageQuantity  float64   `json:"packageQuantity"`
	PackageUnit      Unit      `json:"packageUnit"`
	PackagePrice     float64   `json:"packagePrice"`
	PricePerUserUnit float64   `json:"normalizedPricePerUserUnit"`
	ProductURL       string    `json:"productUrl,omitempty"`
	IsFallback       bool      `json:"isFallback"`
	CollectedAt      time.Time `json:"collectedAt"`
}

// QuantityRule describes the smallest purchasable amount and the increment
// by which a purchase quantity may grow, in PackageUnit terms.
type QuantityRule struct {
	Min  float64 `json:"min"`
	Step float64 `json:"step"`
}

// ShoppingItemInput is one requested shopping list entry.
type ShoppingItemInput struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// ItemPriceSummary is the per-item aggregation result.
type ItemPriceSummary struct {
	ItemName          string       `json:"itemName"`
	Quantity          float64      `json:"quantity"`
	Unit              Unit         `json:"unit"`
	QuantityRule      QuantityRule `json:"quantityRule"`
	LowestUnitPrice   float64      `json:"lowestUnitPrice"`
	AverageUnitPrice  float64      `json:"averageUnitPrice"`
	LowestTotalPrice  float64      `json:"lowestTotalPrice"`
	AverageTotalPrice float64      `json:"averageTotalPrice"`
	BestSource        *Source      `json:"bestSource"`
	BestOfferURL      *string      `json:"bestOfferUrl"`
	BestOfferTitle    *string      `json:"bestOfferTitle"`
	HasRealOffers     bool         `json:"hasRealOffers"`
	Offers            []Offer      `json:"offers"`
}

// ListSummary aggregates totals across every item in a calculation.
type ListSummary struct {
	ItemsCount            int     `json:"itemsCount"`
	LowestTotalListPrice  float64 `json:"lowestTotalListPrice"`
	AverageTotalListPrice float64 `json:"averageTotalListPrice"`
}

// CalculationResponse is the full shopping list price report.
type CalculationResponse struct {
	CEP         string             `json:"cep"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Items       []ItemPriceSummary `json:"items"`
	Summary     ListSummary        `json:"summary"`
}

// PriceSnapshot is one cached fetch result keyed by (source, term).
type PriceSnapshot struct {
	Source    Source    `json:"source"`
	Term      string    `json:"term"`
	Offers    []Offer   `json:"offers"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// SearchSuggestion is one deduplicated product suggestion for a search term.
type SearchSuggestion struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Unit       Unit    `json:"unit"`
	MinPrice   float64 `json:"minPrice"`
	Source     Source  `json:"source"`
	ProductURL *string `json:"productUrl"`
}

// SourceStatus reports the outcome of one source during a search fan-out.
type SourceStatus struct {
	Source Source  `json:"source"`
	OK     bool    `json:"ok"`
	Offers int     `json:"offers"`
	Error  *string `json:"error"`
}

// SearchResponse is the payload of a search term lookup.
type SearchResponse struct {
	Term           string             `json:"term"`
	NormalizedTerm string             `json:"normalizedTerm"`
	Suggestions    []SearchSuggestion `json:"suggestions"`
	OffersCount    int                `json:"offersCount"`
	CheckedSources []SourceStatus     `json:"checkedSources"`
}

// RefreshResult summarizes a full cache refresh run.
type RefreshResult struct {
	Updated          int `json:"updated"`
	EstimatedSeconds int `json:"estimatedSeconds"`
}
