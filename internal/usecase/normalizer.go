package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/precolista/backend/internal/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper decomposes characters and drops combining marks, so
// "pão francês" and "pao frances" normalize to the same string.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// itemSynonyms maps stripped item names to their canonical form. Keys are
// already lowercase and diacritic-free because lookup happens after
// stripping.
var itemSynonyms = map[string]string{
	"tomate":         "tomate",
	"tomatinho":      "tomate",
	"banana":         "banana",
	"banana prata":   "banana",
	"leite":          "leite",
	"leite integral": "leite",
	"arroz":          "arroz",
	"arroz branco":   "arroz",
	"feijao":         "feijão",
	"cafe":           "café",
	"acucar":         "açúcar",
	"pao":            "pão",
	"pao frances":    "pão",
}

// stripDiacritics removes combining marks from s. Falls back to the input
// when the transform fails (it cannot for valid UTF-8).
func stripDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeItemName canonicalizes a shopping item name: trims, lowercases,
// strips diacritics and substitutes known synonyms. Idempotent.
func NormalizeItemName(name string) string {
	normalized := stripDiacritics(strings.ToLower(strings.TrimSpace(name)))
	if canonical, ok := itemSynonyms[normalized]; ok {
		return canonical
	}
	return normalized
}

// normalizeLoose lowercases and strips diacritics without synonym
// substitution. Used for relevance and category matching.
func normalizeLoose(s string) string {
	return stripDiacritics(strings.ToLower(s))
}

// Ordered package patterns: a numeric-prefixed match always wins over a
// bare unit word, and kg is checked before g so "1kg" never half-matches.
var numericPackagePatterns = []struct {
	regex *regexp.Regexp
	unit  domain.Unit
}{
	{regexp.MustCompile(`(\d+[.,]?\d*)\s?(kg|quilo|quilos)\b`), domain.UnitKg},
	{regexp.MustCompile(`(\d+[.,]?\d*)\s?(g|grama|gramas)\b`), domain.UnitG},
	{regexp.MustCompile(`(\d+[.,]?\d*)\s?(l|litro|litros)\b`), domain.UnitL},
	{regexp.MustCompile(`(\d+[.,]?\d*)\s?(ml|mililitro|mililitros)\b`), domain.UnitMl},
}

var barePackagePatterns = []struct {
	regex *regexp.Regexp
	unit  domain.Unit
}{
	{regexp.MustCompile(`\b(kg|quilo|quilos)\b`), domain.UnitKg},
	{regexp.MustCompile(`\b(g|grama|gramas)\b`), domain.UnitG},
	{regexp.MustCompile(`\b(l|litro|litros)\b`), domain.UnitL},
	{regexp.MustCompile(`\b(ml|mililitro|mililitros)\b`), domain.UnitMl},
}

// ParsePackageFromTitle extracts a package quantity/unit pair from a raw
// product title. Decimal comma and dot are both accepted. Titles without
// any unit marker yield {1, un}; this function never fails.
func ParsePackageFromTitle(title string) domain.PackageInfo {
	lower := strings.ToLower(title)

	for _, pattern := range numericPackagePatterns {
		match := pattern.regex.FindStringSubmatch(lower)
		if match == nil {
			continue
		}
		quantity := parseDecimal(match[1])
		if quantity > 0 {
			return domain.PackageInfo{Quantity: quantity, Unit: pattern.unit}
		}
	}

	for _, pattern := range barePackagePatterns {
		if pattern.regex.MatchString(lower) {
			return domain.PackageInfo{Quantity: 1, Unit: pattern.unit}
		}
	}

	return domain.PackageInfo{Quantity: 1, Unit: domain.UnitUn}
}

// parseDecimal parses a number that may use a decimal comma. Returns 0 for
// anything unparseable.
func parseDecimal(s string) float64 {
	value, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0
	}
	return value
}
