package engine

import (
	"encoding/json"
	"log"

	"github.com/shopspring/decimal"
	"storefront-catalog-api/internal/models"
	"storefront-catalog-api/pkg/utils"
)

// ParseVariant turns one raw variant record into a canonical Variant. It
// is total: dirty input degrades field by field, it never fails the whole
// variant. The second return is false when an attributes blob was present
// but undecodable (the variant is still returned, with empty attributes).
//
// isActive defaults to true when absent: a missing "inactive" flag must
// not hide a variant.
func ParseVariant(raw models.RawRecord) (models.Variant, bool) {
	attrs, attrsOK := parseAttributes(raw)
	return models.Variant{
		VariantID:  StringField(raw, variantIDAliases, ""),
		Price:      DecimalField(raw, variantPriceAliases, decimal.Zero),
		MRP:        DecimalField(raw, variantMRPAliases, decimal.Zero),
		Stock:      IntField(raw, variantStockAliases, 0),
		IsActive:   BoolField(raw, []string{"isActive"}, true),
		Attributes: attrs,
		SKU:        StringField(raw, variantSKUAliases, ""),
		HSNCode:    StringField(raw, []string{"hsnCode"}, ""),
		Images:     imageList(raw, "images", "productImages"),
	}, attrsOK
}

// parseAttributes decodes the variant's attribute mapping, preferring the
// JSON-encoded attributesJson blob, then an already-structured attributes
// object. Unknown or unparseable input yields an empty mapping and false,
// never an error.
func parseAttributes(raw models.RawRecord) (map[string]string, bool) {
	attrs := map[string]string{}
	if raw == nil {
		return attrs, true
	}

	if blob, ok := raw["attributesJson"].(string); ok && blob != "" {
		var decoded map[string]interface{}
		if err := json.Unmarshal([]byte(blob), &decoded); err != nil {
			log.Printf("Variant %s: undecodable attributes blob: %v",
				StringField(raw, variantIDAliases, "?"), err)
			return attrs, false
		}
		for k, v := range decoded {
			if s := utils.ToString(v); s != "" {
				attrs[k] = s
			}
		}
		return attrs, true
	}

	if structured, ok := raw["attributes"].(map[string]interface{}); ok {
		for k, v := range structured {
			if s := utils.ToString(v); s != "" {
				attrs[k] = s
			}
		}
	}
	return attrs, true
}

// rawVariantList pulls the embedded variant records off a product record.
func rawVariantList(rec models.RawRecord) []models.RawRecord {
	if rec == nil {
		return nil
	}
	for _, key := range []string{"variants", "productVariants"} {
		arr, ok := rec[key].([]interface{})
		if !ok {
			continue
		}
		out := make([]models.RawRecord, 0, len(arr))
		for _, el := range arr {
			if m, ok := el.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}
