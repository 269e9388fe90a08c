package variations

import "github.com/google/uuid"

// VariationStatus mirrors the storefront's active/inactive toggle.
type VariationStatus string

const (
	StatusActive   VariationStatus = "active"
	StatusInactive VariationStatus = "inactive"
)

// DefaultLowStockThreshold is applied to newly synthesized variations.
const DefaultLowStockThreshold = 5

// Variation is a single purchasable SKU for one attribute combination. ID is
// nil until the backend has persisted it.
type Variation struct {
	ID                *uuid.UUID      `json:"id,omitempty"`
	SKU               string          `json:"sku"`
	Price             string          `json:"price"`
	SalePrice         string          `json:"salePrice"`
	Quantity          int             `json:"quantity"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	Status            VariationStatus `json:"status"`
	Image             *string         `json:"image,omitempty"`
	Attributes        Combination     `json:"attributes"`
}

// Key returns the combination identity of the variation.
func (v Variation) Key() CombinationKey {
	return v.Attributes.Key()
}

// Persisted reports whether the variation already exists on the backend.
func (v Variation) Persisted() bool {
	return v.ID != nil
}

func (v Variation) clone() Variation {
	out := v
	if v.ID != nil {
		id := *v.ID
		out.ID = &id
	}
	if v.Image != nil {
		image := *v.Image
		out.Image = &image
	}
	out.Attributes = v.Attributes.clone()
	return out
}

// VariationPatch carries a partial edit of the editable fields. Nil fields
// are left untouched.
type VariationPatch struct {
	SKU               *string          `json:"sku,omitempty"`
	Price             *string          `json:"price,omitempty"`
	SalePrice         *string          `json:"salePrice,omitempty"`
	Quantity          *int             `json:"quantity,omitempty"`
	LowStockThreshold *int             `json:"lowStockThreshold,omitempty"`
	Status            *VariationStatus `json:"status,omitempty"`
	Image             *string          `json:"image,omitempty"`
}

func (p VariationPatch) apply(v *Variation) {
	if p.SKU != nil {
		v.SKU = *p.SKU
	}
	if p.Price != nil {
		v.Price = *p.Price
	}
	if p.SalePrice != nil {
		v.SalePrice = *p.SalePrice
	}
	if p.Quantity != nil {
		v.Quantity = *p.Quantity
	}
	if p.LowStockThreshold != nil {
		v.LowStockThreshold = *p.LowStockThreshold
	}
	if p.Status != nil {
		v.Status = *p.Status
	}
	if p.Image != nil {
		image := *p.Image
		v.Image = &image
	}
}
