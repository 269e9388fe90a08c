package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"variations-service/internal/variations"
)

// ProductVariation is the persisted form of one attribute-combination SKU.
// CombinationKey is denormalized from Attributes so the unique index can
// enforce one variation per combination per product.
type ProductVariation struct {
	ID                uuid.UUID                  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID          string                     `json:"tenantId" gorm:"not null;index:idx_variations_tenant_product;index:idx_variations_tenant_sku,unique"`
	ProductID         uuid.UUID                  `json:"productId" gorm:"type:uuid;not null;index:idx_variations_tenant_product;index:idx_variations_product_combo,unique"`
	SKU               string                     `json:"sku" gorm:"not null;index:idx_variations_tenant_sku,unique"`
	Price             string                     `json:"price" gorm:"not null;default:''"`
	SalePrice         string                     `json:"salePrice" gorm:"not null;default:''"`
	Quantity          int                        `json:"quantity" gorm:"not null;default:0"`
	LowStockThreshold int                        `json:"lowStockThreshold" gorm:"not null;default:5"`
	Status            variations.VariationStatus `json:"status" gorm:"not null;default:'active'"`
	ImageURL          *string                    `json:"imageUrl,omitempty" gorm:"column:image_url"`
	Attributes        JSONArray                  `json:"attributes" gorm:"type:jsonb"`
	CombinationKey    string                     `json:"combinationKey" gorm:"not null;index:idx_variations_product_combo,unique"`
	CreatedAt         time.Time                  `json:"createdAt"`
	UpdatedAt         time.Time                  `json:"updatedAt"`
	DeletedAt         *gorm.DeletedAt            `json:"deletedAt,omitempty" gorm:"index"`
}

// ProductAttributeSelection persists one attribute row of the product's edit
// form: which attribute is attached, which values are ticked and the two
// flags. Position preserves attach order across sessions.
type ProductAttributeSelection struct {
	ID                uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID          string          `json:"tenantId" gorm:"not null;index:idx_selections_tenant_product"`
	ProductID         uuid.UUID       `json:"productId" gorm:"type:uuid;not null;index:idx_selections_tenant_product;index:idx_selections_product_attribute,unique"`
	AttributeID       uuid.UUID       `json:"attributeId" gorm:"type:uuid;not null;index:idx_selections_product_attribute,unique"`
	Name              string          `json:"name" gorm:"not null"`
	SelectedValueIDs  JSONArray       `json:"selectedValueIds" gorm:"type:jsonb"`
	UsedForVariations bool            `json:"usedForVariations" gorm:"not null;default:false"`
	VisibleOnProduct  bool            `json:"visibleOnProduct" gorm:"not null;default:true"`
	Position          int             `json:"position" gorm:"not null;default:1"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	DeletedAt         *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// AttachAttributeRequest adds an attribute to the edit session.
type AttachAttributeRequest struct {
	AttributeID string   `json:"attributeId" binding:"required"`
	ValueIDs    []string `json:"valueIds,omitempty"`
}

// SetSelectedValuesRequest replaces the selected-value set for one attribute.
type SetSelectedValuesRequest struct {
	ValueIDs []string `json:"valueIds"`
}

// SetSelectionFlagsRequest toggles the per-attribute flags. Nil fields are
// left unchanged.
type SetSelectionFlagsRequest struct {
	UsedForVariations *bool `json:"usedForVariations,omitempty"`
	VisibleOnProduct  *bool `json:"visibleOnProduct,omitempty"`
}

// UpdateSessionVariationRequest edits one working variation's editable fields.
type UpdateSessionVariationRequest struct {
	SKU               *string                     `json:"sku,omitempty"`
	Price             *string                     `json:"price,omitempty"`
	SalePrice         *string                     `json:"salePrice,omitempty"`
	Quantity          *int                        `json:"quantity,omitempty"`
	LowStockThreshold *int                        `json:"lowStockThreshold,omitempty"`
	Status            *variations.VariationStatus `json:"status,omitempty"`
	Image             *string                     `json:"image,omitempty"`
}

// SessionState is the full edit-session view returned to the UI form.
type SessionState struct {
	ProductID          string                          `json:"productId"`
	Attributes         []variations.AttributeSelection `json:"attributes"`
	Variations         []variations.Variation          `json:"variations"`
	DeleteVariationIDs []uuid.UUID                     `json:"deleteVariationIds"`
}

type SessionStateResponse struct {
	Success bool          `json:"success"`
	Data    *SessionState `json:"data"`
	Message *string       `json:"message,omitempty"`
}

// GenerateResponse reports the outcome of a generation pass plus the
// resulting working list.
type GenerateResponse struct {
	Success    bool                        `json:"success"`
	Summary    *variations.GenerateSummary `json:"summary"`
	Variations []variations.Variation      `json:"variations"`
}

// SaveVariationsResponse reports what the save pass persisted.
type SaveVariationsResponse struct {
	Success      bool               `json:"success"`
	Data         []ProductVariation `json:"data"`
	DeletedCount int                `json:"deletedCount"`
	Message      *string            `json:"message,omitempty"`
}

type VariationListResponse struct {
	Success    bool               `json:"success"`
	Data       []ProductVariation `json:"data"`
	Pagination *PaginationInfo    `json:"pagination"`
}

// TableName returns the table name for the ProductVariation model
func (ProductVariation) TableName() string {
	return "product_variations"
}

// TableName returns the table name for the ProductAttributeSelection model
func (ProductAttributeSelection) TableName() string {
	return "product_attribute_selections"
}
