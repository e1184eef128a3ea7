package engine

import (
	"storefront-catalog-api/internal/models"
)

// SelectVariant resolves a partial (color, size) selection to a single
// purchasable variant. Hints are exact, case-sensitive matches; an empty
// hint matches anything. With no hints at all the first purchasable
// variant in insertion order wins, so re-selecting is idempotent. Returns
// nil when nothing purchasable matches; callers must treat that as
// "selection currently invalid", never substitute an unrelated variant.
func SelectVariant(entry models.CatalogEntry, colorHint, sizeHint string) *models.Variant {
	for i := range entry.Variants {
		v := entry.Variants[i]
		if !v.Purchasable() {
			continue
		}
		if colorHint != "" && v.Color() != colorHint {
			continue
		}
		if sizeHint != "" && v.Size() != sizeHint {
			continue
		}
		copied := v
		return &copied
	}
	return nil
}

// AvailableColors lists the distinct colors among purchasable variants in
// first-seen order. Display order follows catalog authoring order, not
// the alphabet.
func AvailableColors(entry models.CatalogEntry) []string {
	seen := make(map[string]struct{})
	colors := make([]string, 0)
	for _, v := range entry.Variants {
		if !v.Purchasable() {
			continue
		}
		c := v.Color()
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		colors = append(colors, c)
	}
	return colors
}

// AvailableSizes lists the distinct sizes among purchasable variants in
// first-seen order, restricted to colorFilter when given.
func AvailableSizes(entry models.CatalogEntry, colorFilter string) []string {
	seen := make(map[string]struct{})
	sizes := make([]string, 0)
	for _, v := range entry.Variants {
		if !v.Purchasable() {
			continue
		}
		if colorFilter != "" && v.Color() != colorFilter {
			continue
		}
		s := v.Size()
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		sizes = append(sizes, s)
	}
	return sizes
}
