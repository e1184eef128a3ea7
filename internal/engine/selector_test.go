package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"storefront-catalog-api/internal/models"
)

func selectorEntry() models.CatalogEntry {
	mk := func(id, color, size string, stock int, price int64, active bool) models.Variant {
		return models.Variant{
			VariantID:  id,
			Price:      decimal.NewFromInt(price),
			Stock:      stock,
			IsActive:   active,
			Attributes: map[string]string{"color": color, "size": size},
		}
	}
	return models.CatalogEntry{
		BaseID: "42",
		Variants: []models.Variant{
			mk("v1", "Red", "M", 3, 100, true),
			mk("v2", "Blue", "M", 0, 90, true),
			mk("v3", "Red", "L", 5, 110, true),
			mk("v4", "Green", "S", 9, 80, false),
		},
	}
}

func TestSelectVariantNoHintsReturnsFirstPurchasable(t *testing.T) {
	t.Parallel()

	v := SelectVariant(selectorEntry(), "", "")
	require.NotNil(t, v)
	require.Equal(t, "v1", v.VariantID)
}

func TestSelectVariantHintsMatchExactly(t *testing.T) {
	t.Parallel()

	entry := selectorEntry()

	v := SelectVariant(entry, "Red", "L")
	require.NotNil(t, v)
	require.Equal(t, "v3", v.VariantID)

	// Color alone: first purchasable Red in insertion order, never the
	// cheapest or best stocked.
	v = SelectVariant(entry, "Red", "")
	require.NotNil(t, v)
	require.Equal(t, "v1", v.VariantID)

	// Size alone.
	v = SelectVariant(entry, "", "L")
	require.NotNil(t, v)
	require.Equal(t, "v3", v.VariantID)
}

func TestSelectVariantNonPurchasableHintReturnsNil(t *testing.T) {
	t.Parallel()

	entry := selectorEntry()

	// Blue exists but has zero stock: selection is invalid, never a
	// best-effort substitute.
	require.Nil(t, SelectVariant(entry, "Blue", ""))

	// Green exists but is inactive.
	require.Nil(t, SelectVariant(entry, "Green", ""))

	// Hint matches nothing at all.
	require.Nil(t, SelectVariant(entry, "Purple", ""))

	// Case-sensitive exact match.
	require.Nil(t, SelectVariant(entry, "red", ""))
}

func TestSelectVariantDeterministic(t *testing.T) {
	t.Parallel()

	entry := selectorEntry()
	first := SelectVariant(entry, "Red", "")
	second := SelectVariant(entry, "Red", "")
	require.NotNil(t, first)
	require.NotNil(t, second)
	require.Equal(t, first.VariantID, second.VariantID)
}

func TestSelectVariantEmptyEntry(t *testing.T) {
	t.Parallel()

	require.Nil(t, SelectVariant(models.CatalogEntry{}, "", ""))
}

func TestAvailableColorsInsertionOrder(t *testing.T) {
	t.Parallel()

	// Purchasable variants only; first-seen order, no sorting, no
	// duplicates. Blue (out of stock) and Green (inactive) never appear.
	colors := AvailableColors(selectorEntry())
	require.Equal(t, []string{"Red"}, colors)

	entry := selectorEntry()
	entry.Variants = append(entry.Variants, models.Variant{
		VariantID:  "v5",
		Stock:      1,
		IsActive:   true,
		Attributes: map[string]string{"color": "Zinc", "size": "M"},
	}, models.Variant{
		VariantID:  "v6",
		Stock:      1,
		IsActive:   true,
		Attributes: map[string]string{"color": "Amber", "size": "M"},
	})
	colors = AvailableColors(entry)
	require.Equal(t, []string{"Red", "Zinc", "Amber"}, colors)
}

func TestAvailableSizesWithColorFilter(t *testing.T) {
	t.Parallel()

	entry := selectorEntry()

	sizes := AvailableSizes(entry, "")
	require.Equal(t, []string{"M", "L"}, sizes)

	sizes = AvailableSizes(entry, "Red")
	require.Equal(t, []string{"M", "L"}, sizes)

	sizes = AvailableSizes(entry, "Blue")
	require.Empty(t, sizes)
}
