package engine

import (
	"strings"

	"storefront-catalog-api/internal/models"
)

// ListOptions narrows a listability check.
type ListOptions struct {
	// CollectionSlug, when non-empty, requires the entry to belong to the
	// named collection (case-insensitive).
	CollectionSlug string
}

// IsListable decides whether an entry qualifies for listing. The filter
// is a client-side safety net over a backend expected to have already
// excluded unavailable items, so every absent signal is treated as
// passing (default-open): only an explicit negative hides an entry.
func IsListable(entry models.CatalogEntry, opts ListOptions) bool {
	if entry.Flags.IsActive != nil && !*entry.Flags.IsActive {
		return false
	}
	if entry.Flags.CategoryActive != nil && !*entry.Flags.CategoryActive {
		return false
	}

	if opts.CollectionSlug != "" {
		if !inCollection(entry.Flags.Collections, opts.CollectionSlug) {
			return false
		}
	}

	// Stock: an explicit totalStock is authoritative; otherwise fall back
	// to inventoryQuantity; no signal at all means in stock.
	if entry.Flags.TotalStock != nil {
		return *entry.Flags.TotalStock > 0
	}
	if entry.Flags.InventoryQuantity != nil {
		return *entry.Flags.InventoryQuantity > 0
	}
	return true
}

func inCollection(collections []string, slug string) bool {
	for _, c := range collections {
		if strings.EqualFold(c, slug) {
			return true
		}
	}
	return false
}
