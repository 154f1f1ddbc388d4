package usecase

import (
	"regexp"
	"strings"
)

// Category rule tables. All patterns run against loose-normalized text
// (lowercase, diacritics stripped), so only de-accented forms appear here.
var (
	// weightItemRegex marks terms/titles sold by weight (fresh meat,
	// poultry and fish cuts), conventionally priced per kilogram.
	weightItemRegex = regexp.MustCompile(
		`\b(ancho|bife|contra|file|picanha|alcatra|maminha|fraldinha|patinho|acem|costela|cupim|musculo|coxao|lagarto|linguica|carne|frango|coxa|sobrecoxa|asa|peixe|salmao|tilapia|suin|porco)\b`)

	// butcherCategoryRegex restricts butcher-term searches to butcher
	// results, so "carne" never matches cookware or cleaning products.
	butcherCategoryRegex = regexp.MustCompile(
		`\b(ancho|bife|contra|file|picanha|alcatra|maminha|fraldinha|patinho|acem|costela|cupim|musculo|coxao|lagarto|linguica|carne|frango|coxa|sobrecoxa|asa|peixe|salmao|tilapia|suin|porco|bovino|resfriado)\b`)

	// negativeMilkRegex lists derivative or unrelated products where
	// "leite" shows up in the title (candy, soap, desserts, ...).
	negativeMilkRegex = regexp.MustCompile(
		`\b(doce|condensado|coco|fermentado|po|chocolate|biscoito|sabonete|desodorante|creme|pudim|whey|bala|sorvete|licor|pao|sonho|fondant|bombom|cookies?)\b`)

	// positiveMilkRegex requires an actual liquid-milk indicator.
	positiveMilkRegex = regexp.MustCompile(
		`\b(uht|longa vida|integral|desnatado|semidesnatado|zero lactose|lactose|a2|liquido|liquida|litro|[0-9]+l)\b`)

	milkWordRegex   = regexp.MustCompile(`\bleite\b`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// containsTokenAsWord reports whether token appears in text delimited by
// non-alphanumeric characters (or string boundaries).
func containsTokenAsWord(text, token string) bool {
	safe := regexp.QuoteMeta(strings.TrimSpace(token))
	if safe == "" {
		return false
	}
	pattern, err := regexp.Compile(`(^|[^a-z0-9])` + safe + `([^a-z0-9]|$)`)
	if err != nil {
		return false
	}
	return pattern.MatchString(text)
}

// isRelevantForTerm decides whether a product title is a true match for a
// search term. Tokens of 3+ chars must appear as whole words; shorter
// tokens only need substring containment. Butcher and milk terms carry
// extra category rules.
func isRelevantForTerm(term, title string) bool {
	normalizedTerm := strings.TrimSpace(normalizeLoose(term))
	normalizedTitle := normalizeLoose(title)
	if normalizedTerm == "" || normalizedTitle == "" {
		return false
	}

	tokens := whitespaceRegex.Split(normalizedTerm, -1)
	if len(tokens) > 1 {
		for _, token := range tokens {
			if len(token) >= 3 {
				if !containsTokenAsWord(normalizedTitle, token) {
					return false
				}
			} else if !strings.Contains(normalizedTitle, token) {
				return false
			}
		}
	} else {
		token := tokens[0]
		if len(token) >= 3 {
			if !containsTokenAsWord(normalizedTitle, token) {
				return false
			}
		} else if !strings.Contains(normalizedTitle, normalizedTerm) {
			return false
		}
	}

	// Butcher terms must stay inside the butcher category.
	if butcherCategoryRegex.MatchString(normalizedTerm) && !butcherCategoryRegex.MatchString(normalizedTitle) {
		return false
	}

	// "leite" keeps only liquid/UHT milk and rejects derivatives.
	if normalizedTerm == "leite" {
		if !milkWordRegex.MatchString(normalizedTitle) {
			return false
		}
		if negativeMilkRegex.MatchString(normalizedTitle) {
			return false
		}
		return positiveMilkRegex.MatchString(normalizedTitle)
	}

	return true
}

// isWeightSoldItem reports whether the term/title pair describes a product
// sold by weight.
func isWeightSoldItem(term, title string) bool {
	return weightItemRegex.MatchString(normalizeLoose(term + " " + title))
}
