package engine

import (
	"github.com/shopspring/decimal"
	"storefront-catalog-api/internal/models"
)

// GroupResult is the outcome of one grouping pass.
type GroupResult struct {
	Entries []models.CatalogEntry
	// Skipped counts records dropped for lacking any usable base id.
	Skipped int
	// BadAttributes counts variants whose attribute blob failed to decode.
	BadAttributes int
}

// groupingTable is the insertion-ordered baseId -> entry mapping. Owned by
// a single Group call; never shared, so concurrent Group calls cannot
// interfere.
type groupingTable struct {
	order   []string
	entries map[string]*models.CatalogEntry
	seen    map[string]map[string]struct{} // baseId -> variantIds present
}

func newGroupingTable() *groupingTable {
	return &groupingTable{
		entries: make(map[string]*models.CatalogEntry),
		seen:    make(map[string]map[string]struct{}),
	}
}

// Group merges raw product records into canonical catalog entries, one
// per base id, preserving first-appearance order. Duplicate variant ids
// resolve first-seen-wins so a later, possibly stale copy never
// overwrites earlier data. Records with no base id are skipped and
// counted, never fatal.
func Group(records []models.RawRecord) GroupResult {
	table := newGroupingTable()
	result := GroupResult{}

	for _, rec := range records {
		baseID := StringField(rec, productIDAliases, "")
		if baseID == "" {
			result.Skipped++
			continue
		}

		variants := make([]models.Variant, 0)
		for _, rawVar := range rawVariantList(rec) {
			v, ok := ParseVariant(rawVar)
			if !ok {
				result.BadAttributes++
			}
			variants = append(variants, v)
		}

		entry, exists := table.entries[baseID]
		if !exists {
			seeded := seedEntry(baseID, rec)
			entry = &seeded
			table.entries[baseID] = entry
			table.order = append(table.order, baseID)
			table.seen[baseID] = make(map[string]struct{})
		}

		ids := table.seen[baseID]
		for _, v := range variants {
			if _, dup := ids[v.VariantID]; dup {
				continue
			}
			ids[v.VariantID] = struct{}{}
			entry.Variants = append(entry.Variants, v)
		}
		entry.VariantCount = len(entry.Variants)
		recomputeDisplayPrices(entry)
	}

	result.Entries = make([]models.CatalogEntry, 0, len(table.order))
	for _, baseID := range table.order {
		result.Entries = append(result.Entries, *table.entries[baseID])
	}
	return result
}

// seedEntry builds the entry skeleton from the first record seen for a
// base id. The flat product-level price fields become the display prices
// until a purchasable variant says otherwise.
func seedEntry(baseID string, rec models.RawRecord) models.CatalogEntry {
	price := DecimalField(rec, priceAliases, decimal.Zero)
	// The MRP chain ends on sellingPrice so an entry with no explicit
	// original price falls back to its own selling price.
	mrp := DecimalField(rec, mrpAliases, price)
	categoryName, categoryActive := categoryInfo(rec)

	return models.CatalogEntry{
		BaseID:               baseID,
		Name:                 StringField(rec, productNameAliases, DefaultProductName),
		Brand:                StringField(rec, brandAliases, ""),
		Category:             categoryName,
		Image:                imageURL(rec),
		Variants:             make([]models.Variant, 0),
		DisplayPrice:         price,
		DisplayOriginalPrice: mrp,
		Flags: models.RawFlags{
			IsActive:          optionalBool(rec, "isActive"),
			CategoryActive:    categoryActive,
			TotalStock:        optionalInt(rec, "totalStock"),
			InventoryQuantity: optionalInt(rec, "inventoryQuantity"),
			Collections:       collectionSlugs(rec),
		},
	}
}

// recomputeDisplayPrices derives displayPrice (min price) and
// displayOriginalPrice (max MRP) over the purchasable variants. With no
// purchasable variant the seeded flat prices stand untouched.
func recomputeDisplayPrices(entry *models.CatalogEntry) {
	var minPrice, maxMRP decimal.Decimal
	found := false
	for _, v := range entry.Variants {
		if !v.Purchasable() {
			continue
		}
		if !found {
			minPrice, maxMRP = v.Price, v.MRP
			found = true
			continue
		}
		if v.Price.LessThan(minPrice) {
			minPrice = v.Price
		}
		if v.MRP.GreaterThan(maxMRP) {
			maxMRP = v.MRP
		}
	}
	if found {
		entry.DisplayPrice = minPrice
		entry.DisplayOriginalPrice = maxMRP
	}
}

// MergeCatalogs reduces independently grouped batches into one catalog
// under the same first-seen-wins rules, so grouping a batch whole or in
// shards yields identical entries. Intended as the single-writer reduce
// step when callers shard grouping across goroutines.
func MergeCatalogs(batches ...[]models.CatalogEntry) []models.CatalogEntry {
	table := newGroupingTable()

	for _, batch := range batches {
		for _, incoming := range batch {
			entry, exists := table.entries[incoming.BaseID]
			if !exists {
				merged := incoming
				merged.Variants = append([]models.Variant(nil), incoming.Variants...)
				table.entries[incoming.BaseID] = &merged
				table.order = append(table.order, incoming.BaseID)
				ids := make(map[string]struct{}, len(incoming.Variants))
				for _, v := range incoming.Variants {
					ids[v.VariantID] = struct{}{}
				}
				table.seen[incoming.BaseID] = ids
				continue
			}

			ids := table.seen[incoming.BaseID]
			for _, v := range incoming.Variants {
				if _, dup := ids[v.VariantID]; dup {
					continue
				}
				ids[v.VariantID] = struct{}{}
				entry.Variants = append(entry.Variants, v)
			}
			entry.VariantCount = len(entry.Variants)
			recomputeDisplayPrices(entry)
		}
	}

	out := make([]models.CatalogEntry, 0, len(table.order))
	for _, baseID := range table.order {
		out = append(out, *table.entries[baseID])
	}
	return out
}
