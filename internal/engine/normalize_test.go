package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"storefront-catalog-api/internal/models"
)

func TestStringFieldAliasOrder(t *testing.T) {
	t.Parallel()

	rec := models.RawRecord{
		"productsId": float64(42),
		"productId":  "p-should-lose",
		"id":         "also-loses",
	}
	require.Equal(t, "42", StringField(rec, productIDAliases, ""))

	// Empty strings count as absent; the chain moves on.
	rec = models.RawRecord{"productsId": "", "productId": "p-77"}
	require.Equal(t, "p-77", StringField(rec, productIDAliases, ""))

	require.Equal(t, DefaultProductName, StringField(models.RawRecord{}, productNameAliases, DefaultProductName))
	require.Equal(t, DefaultProductName, StringField(nil, productNameAliases, DefaultProductName))
}

func TestDecimalFieldAliasOrderAndDefault(t *testing.T) {
	t.Parallel()

	rec := models.RawRecord{
		"sellingPrice": float64(499.5),
		"productPrice": float64(999),
		"price":        float64(1999),
	}
	require.True(t, DecimalField(rec, priceAliases, decimal.Zero).Equal(decimal.NewFromFloat(499.5)))

	// Numeric zero is present, not absent.
	rec = models.RawRecord{"sellingPrice": float64(0), "price": float64(250)}
	require.True(t, DecimalField(rec, priceAliases, decimal.Zero).Equal(decimal.Zero))

	require.True(t, DecimalField(models.RawRecord{}, priceAliases, decimal.Zero).Equal(decimal.Zero))

	// Price strings with currency noise still resolve.
	rec = models.RawRecord{"price": "₹1,299.00"}
	require.True(t, DecimalField(rec, priceAliases, decimal.Zero).Equal(decimal.NewFromInt(1299)))
}

func TestImageURLResolution(t *testing.T) {
	t.Parallel()

	// productImages array wins, bare string form.
	rec := models.RawRecord{
		"productImages":   []interface{}{"https://cdn.example/a.jpg", "https://cdn.example/b.jpg"},
		"productImageUrl": "https://cdn.example/flat.jpg",
	}
	require.Equal(t, "https://cdn.example/a.jpg", imageURL(rec))

	// Object form keyed imageUrl/url.
	rec = models.RawRecord{
		"productImages": []interface{}{
			map[string]interface{}{"imageUrl": "https://cdn.example/obj.jpg"},
		},
	}
	require.Equal(t, "https://cdn.example/obj.jpg", imageURL(rec))

	// Empty array falls through to the flat aliases.
	rec = models.RawRecord{
		"productImages": []interface{}{},
		"imageUrl":      "https://cdn.example/fallback.jpg",
	}
	require.Equal(t, "https://cdn.example/fallback.jpg", imageURL(rec))

	require.Equal(t, "", imageURL(models.RawRecord{}))
}

func TestOptionalFlagsStayAbsent(t *testing.T) {
	t.Parallel()

	rec := models.RawRecord{"isActive": false, "totalStock": float64(5)}
	active := optionalBool(rec, "isActive")
	require.NotNil(t, active)
	require.False(t, *active)

	stock := optionalInt(rec, "totalStock")
	require.NotNil(t, stock)
	require.Equal(t, 5, *stock)

	require.Nil(t, optionalBool(rec, "categoryActive"))
	require.Nil(t, optionalInt(rec, "inventoryQuantity"))
	require.Nil(t, optionalBool(nil, "isActive"))
}

func TestCollectionSlugs(t *testing.T) {
	t.Parallel()

	rec := models.RawRecord{
		"collections": []interface{}{
			map[string]interface{}{"slug": "summer-sale"},
			map[string]interface{}{"name": "New Arrivals"},
			"bare-slug",
			map[string]interface{}{"collectionName": "Clearance"},
		},
	}
	require.Equal(t, []string{"summer-sale", "New Arrivals", "bare-slug", "Clearance"}, collectionSlugs(rec))

	require.Nil(t, collectionSlugs(models.RawRecord{}))
}

func TestCategoryInfo(t *testing.T) {
	t.Parallel()

	rec := models.RawRecord{
		"category": map[string]interface{}{"name": "Shirts", "isActive": true},
	}
	name, active := categoryInfo(rec)
	require.Equal(t, "Shirts", name)
	require.NotNil(t, active)
	require.True(t, *active)

	// Flat categoryActive is the fallback when the object carries no flag.
	rec = models.RawRecord{
		"category":       map[string]interface{}{"name": "Shoes"},
		"categoryActive": false,
	}
	name, active = categoryInfo(rec)
	require.Equal(t, "Shoes", name)
	require.NotNil(t, active)
	require.False(t, *active)

	name, active = categoryInfo(models.RawRecord{})
	require.Equal(t, "", name)
	require.Nil(t, active)
}
