package engine

import (
	"github.com/shopspring/decimal"
	"storefront-catalog-api/internal/models"
	"storefront-catalog-api/pkg/utils"
)

// Named defaults used when every alias in a chain is absent. Explicit so
// tests can assert on them directly.
const (
	DefaultProductName = "Product"
)

// Alias chains for the backend payload. Order matters: the first present,
// non-empty key wins. This table is the single place the alias policy
// lives; nothing else in the engine reaches into a raw record by key.
var (
	productIDAliases   = []string{"productsId", "productId", "id"}
	productNameAliases = []string{"productName", "name"}
	brandAliases       = []string{"brand", "brandName"}
	priceAliases       = []string{"sellingPrice", "productPrice", "price"}
	mrpAliases         = []string{"mrp", "productOriginalPrice", "originalPrice", "sellingPrice"}
	imageURLAliases    = []string{"productImageUrl", "imageUrl", "image"}

	variantIDAliases    = []string{"variantId", "id"}
	variantPriceAliases = []string{"sellingPrice", "price"}
	variantMRPAliases   = []string{"mrp", "originalPrice"}
	variantStockAliases = []string{"stock", "inventoryQuantity"}
	variantSKUAliases   = []string{"sku", "customSku"}
)

// firstPresent returns the first alias whose value is present and
// non-empty. nil and "" count as absent; numeric zero counts as present.
func firstPresent(rec models.RawRecord, aliases []string) (interface{}, bool) {
	if rec == nil {
		return nil, false
	}
	for _, key := range aliases {
		v, ok := rec[key]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// StringField resolves an alias chain to a string, falling back to def.
// Total: never errors, regardless of the record's shape.
func StringField(rec models.RawRecord, aliases []string, def string) string {
	v, ok := firstPresent(rec, aliases)
	if !ok {
		return def
	}
	if s := utils.ToString(v); s != "" {
		return s
	}
	return def
}

// DecimalField resolves an alias chain to a decimal amount.
func DecimalField(rec models.RawRecord, aliases []string, def decimal.Decimal) decimal.Decimal {
	v, ok := firstPresent(rec, aliases)
	if !ok {
		return def
	}
	d, ok := utils.ToDecimal(v)
	if !ok {
		return def
	}
	return d
}

// IntField resolves an alias chain to an int.
func IntField(rec models.RawRecord, aliases []string, def int) int {
	v, ok := firstPresent(rec, aliases)
	if !ok {
		return def
	}
	n, ok := utils.ToInt(v)
	if !ok {
		return def
	}
	return n
}

// BoolField resolves an alias chain to a bool.
func BoolField(rec models.RawRecord, aliases []string, def bool) bool {
	v, ok := firstPresent(rec, aliases)
	if !ok {
		return def
	}
	b, ok := utils.ToBool(v)
	if !ok {
		return def
	}
	return b
}

// optionalBool reads a single key as a tri-state flag: nil when absent or
// unreadable, so visibility checks can apply the default-open policy.
func optionalBool(rec models.RawRecord, key string) *bool {
	if rec == nil {
		return nil
	}
	v, ok := rec[key]
	if !ok || v == nil {
		return nil
	}
	b, ok := utils.ToBool(v)
	if !ok {
		return nil
	}
	return &b
}

func optionalInt(rec models.RawRecord, key string) *int {
	if rec == nil {
		return nil
	}
	v, ok := rec[key]
	if !ok || v == nil {
		return nil
	}
	n, ok := utils.ToInt(v)
	if !ok {
		return nil
	}
	return &n
}

// imageURL resolves the product image: first element of productImages if
// the array is non-empty, else the flat URL aliases, else "".
func imageURL(rec models.RawRecord) string {
	if rec != nil {
		if arr, ok := rec["productImages"].([]interface{}); ok && len(arr) > 0 {
			if u := imageString(arr[0]); u != "" {
				return u
			}
		}
	}
	return StringField(rec, imageURLAliases, "")
}

// imageString extracts a URL from an image element, which may be a bare
// string or an object keyed imageUrl/url.
func imageString(v interface{}) string {
	switch img := v.(type) {
	case string:
		return img
	case map[string]interface{}:
		return StringField(img, []string{"imageUrl", "url"}, "")
	default:
		return ""
	}
}

// imageList flattens an images array to URL strings, preserving order.
func imageList(rec models.RawRecord, keys ...string) []string {
	if rec == nil {
		return nil
	}
	for _, key := range keys {
		arr, ok := rec[key].([]interface{})
		if !ok || len(arr) == 0 {
			continue
		}
		urls := make([]string, 0, len(arr))
		for _, el := range arr {
			if u := imageString(el); u != "" {
				urls = append(urls, u)
			}
		}
		if len(urls) > 0 {
			return urls
		}
	}
	return nil
}

// collectionSlugs extracts the collection membership list. Elements may be
// bare strings or objects keyed slug/name/collectionName.
func collectionSlugs(rec models.RawRecord) []string {
	if rec == nil {
		return nil
	}
	arr, ok := rec["collections"].([]interface{})
	if !ok {
		return nil
	}
	slugs := make([]string, 0, len(arr))
	for _, el := range arr {
		switch c := el.(type) {
		case string:
			if c != "" {
				slugs = append(slugs, c)
			}
		case map[string]interface{}:
			if s := StringField(c, []string{"slug", "name", "collectionName"}, ""); s != "" {
				slugs = append(slugs, s)
			}
		}
	}
	if len(slugs) == 0 {
		return nil
	}
	return slugs
}

// categoryInfo reads the category name and active flag. The flag may live
// on the nested category object or as a flat categoryActive key.
func categoryInfo(rec models.RawRecord) (name string, active *bool) {
	if rec == nil {
		return "", nil
	}
	if cat, ok := rec["category"].(map[string]interface{}); ok {
		name = StringField(cat, []string{"name", "categoryName"}, "")
		active = optionalBool(cat, "isActive")
	}
	if name == "" {
		name = StringField(rec, []string{"categoryName"}, "")
	}
	if active == nil {
		active = optionalBool(rec, "categoryActive")
	}
	return name, active
}
