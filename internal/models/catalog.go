package models

import (
	"github.com/shopspring/decimal"
)

// RawRecord is the backend's untrusted product payload shape: a mapping
// with optional, aliased keys. The engine only reads it.
type RawRecord = map[string]interface{}

// Variant is the canonical unit of purchase.
type Variant struct {
	VariantID  string            `json:"variantId"`
	Price      decimal.Decimal   `json:"price"`
	MRP        decimal.Decimal   `json:"mrp"`
	Stock      int               `json:"stock"`
	IsActive   bool              `json:"isActive"`
	Attributes map[string]string `json:"attributes"`
	SKU        string            `json:"sku,omitempty"`
	HSNCode    string            `json:"hsnCode,omitempty"`
	Images     []string          `json:"images,omitempty"`
}

// Purchasable reports whether the variant can actually be bought.
// Inactive or zero-stock variants stay in the entry for out-of-stock
// display but never feed price aggregation or selection.
func (v Variant) Purchasable() bool {
	return v.IsActive && v.Stock > 0
}

func (v Variant) Color() string {
	return v.Attributes["color"]
}

func (v Variant) Size() string {
	return v.Attributes["size"]
}

// RawFlags carries passthrough visibility signals. Pointer fields keep
// "absent" distinct from "false"/"zero" so the default-open policy can
// tell the two apart.
type RawFlags struct {
	IsActive          *bool    `json:"isActive,omitempty"`
	CategoryActive    *bool    `json:"categoryActive,omitempty"`
	TotalStock        *int     `json:"totalStock,omitempty"`
	InventoryQuantity *int     `json:"inventoryQuantity,omitempty"`
	Collections       []string `json:"collections,omitempty"`
}

// CatalogEntry is the canonical, de-duplicated product. All raw records
// sharing BaseID merge into one entry. Immutable once grouped.
type CatalogEntry struct {
	BaseID               string          `json:"baseId"`
	Name                 string          `json:"name"`
	Brand                string          `json:"brand,omitempty"`
	Category             string          `json:"category,omitempty"`
	Image                string          `json:"image,omitempty"`
	Variants             []Variant       `json:"variants"`
	DisplayPrice         decimal.Decimal `json:"displayPrice"`
	DisplayOriginalPrice decimal.Decimal `json:"displayOriginalPrice"`
	VariantCount         int             `json:"variantCount"`
	Flags                RawFlags        `json:"rawFlags"`
}

// ListParams are the query parameters for the listing endpoint.
type ListParams struct {
	Collection string `json:"collection"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

// CatalogResponse is the listing envelope returned to callers.
type CatalogResponse struct {
	Entries    []CatalogEntry `json:"entries"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Skipped    int            `json:"skipped,omitempty"`
	Collection string         `json:"collection,omitempty"`
	Duration   string         `json:"duration"`
}

// VariantOptions lists the selectable attribute values of an entry.
type VariantOptions struct {
	BaseID string   `json:"baseId"`
	Colors []string `json:"colors"`
	Sizes  []string `json:"sizes"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
