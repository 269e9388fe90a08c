package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attribute represents a product property dimension (e.g. Size, Color) with
// a catalog of possible values.
type Attribute struct {
	ID          uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string           `json:"tenantId" gorm:"not null;index:idx_attributes_tenant_id;index:idx_attributes_tenant_slug,unique"`
	Name        string           `json:"name" gorm:"not null"`
	Slug        string           `json:"slug" gorm:"not null;index:idx_attributes_tenant_slug,unique"`
	Description *string          `json:"description,omitempty"`
	Position    int              `json:"position" gorm:"not null;default:1"`
	IsActive    *bool            `json:"isActive" gorm:"column:is_active;default:true"`
	Values      []AttributeValue `json:"values,omitempty" gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	DeletedAt   *gorm.DeletedAt  `json:"deletedAt,omitempty" gorm:"index"`
	CreatedBy   *string          `json:"createdBy,omitempty"`
	UpdatedBy   *string          `json:"updatedBy,omitempty"`
}

// AttributeValue is one entry in an attribute's value catalog.
type AttributeValue struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string          `json:"tenantId" gorm:"not null;index"`
	AttributeID uuid.UUID       `json:"attributeId" gorm:"type:uuid;not null;index"`
	Value       string          `json:"value" gorm:"not null"`
	Position    int             `json:"position" gorm:"not null;default:1"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// CreateAttributeRequest represents a request to create an attribute
type CreateAttributeRequest struct {
	Name        string   `json:"name" binding:"required"`
	Slug        *string  `json:"slug,omitempty"`
	Description *string  `json:"description,omitempty"`
	Position    *int     `json:"position,omitempty"`
	Values      []string `json:"values,omitempty"`
}

// UpdateAttributeRequest represents a request to update an attribute
type UpdateAttributeRequest struct {
	Name        *string `json:"name,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	Position    *int    `json:"position,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// CreateAttributeValueRequest represents a request to add a value to an attribute
type CreateAttributeValueRequest struct {
	Value    string `json:"value" binding:"required"`
	Position *int   `json:"position,omitempty"`
}

// UpdateAttributeValueRequest represents a request to update an attribute value
type UpdateAttributeValueRequest struct {
	Value    *string `json:"value,omitempty"`
	Position *int    `json:"position,omitempty"`
}

// BulkDeleteAttributesRequest represents bulk delete request
type BulkDeleteAttributesRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=100"`
}

// BulkDeleteAttributesResponse represents bulk delete response
type BulkDeleteAttributesResponse struct {
	Success      bool     `json:"success"`
	TotalCount   int      `json:"totalCount"`
	DeletedCount int      `json:"deletedCount"`
	FailedIDs    []string `json:"failedIds,omitempty"`
}

type AttributeResponse struct {
	Success bool       `json:"success"`
	Data    *Attribute `json:"data"`
	Message *string    `json:"message,omitempty"`
}

type AttributeListResponse struct {
	Success    bool            `json:"success"`
	Data       []Attribute     `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

type AttributeValueResponse struct {
	Success bool            `json:"success"`
	Data    *AttributeValue `json:"data"`
	Message *string         `json:"message,omitempty"`
}

// TableName returns the table name for the Attribute model
func (Attribute) TableName() string {
	return "attributes"
}

// TableName returns the table name for the AttributeValue model
func (AttributeValue) TableName() string {
	return "attribute_values"
}
