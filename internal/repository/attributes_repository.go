package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"variations-service/internal/models"
)

var ErrNotFound = errors.New("not found")

// Cache TTL constants
const (
	AttributeCacheTTL     = 30 * time.Minute // Attribute catalogs rarely change
	AttributeListCacheTTL = 5 * time.Minute
)

// AttributesRepositoryInterface defines the catalog operations handlers
// depend on (mockable in tests).
type AttributesRepositoryInterface interface {
	CreateAttribute(ctx context.Context, tenantID string, attribute *models.Attribute) error
	GetAttributes(ctx context.Context, tenantID string, page, limit int, includeValues bool) ([]models.Attribute, int64, error)
	GetAttributeByID(ctx context.Context, tenantID string, attributeID uuid.UUID) (*models.Attribute, error)
	UpdateAttribute(ctx context.Context, tenantID string, attributeID uuid.UUID, updates *models.UpdateAttributeRequest) (*models.Attribute, error)
	DeleteAttribute(ctx context.Context, tenantID string, attributeID uuid.UUID) error
	BulkDeleteAttributes(ctx context.Context, tenantID string, attributeIDs []uuid.UUID) (int64, []string, error)
	CreateValue(ctx context.Context, tenantID string, attributeID uuid.UUID, value *models.AttributeValue) error
	UpdateValue(ctx context.Context, tenantID string, valueID uuid.UUID, updates *models.UpdateAttributeValueRequest) (*models.AttributeValue, error)
	DeleteValue(ctx context.Context, tenantID string, valueID uuid.UUID) error
	GetValueIDs(ctx context.Context, tenantID string, attributeID uuid.UUID) ([]uuid.UUID, error)
}

type AttributesRepository struct {
	db    *gorm.DB
	redis *redis.Client
	cache *cache.CacheLayer
}

var _ AttributesRepositoryInterface = (*AttributesRepository)(nil)

func NewAttributesRepository(db *gorm.DB, redisClient *redis.Client) *AttributesRepository {
	repo := &AttributesRepository{
		db:    db,
		redis: redisClient,
	}

	if redisClient != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 2000,
			L1TTL:      30 * time.Second,
			DefaultTTL: AttributeCacheTTL,
			KeyPrefix:  "tesseract:variations:",
		}
		repo.cache = cache.NewCacheLayerFromClient(redisClient, cacheConfig)
	}

	return repo
}

// invalidateAttributeCaches invalidates all caches related to an attribute
func (r *AttributesRepository) invalidateAttributeCaches(ctx context.Context, tenantID string, attributeID uuid.UUID) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, fmt.Sprintf("attribute:%s:%s", tenantID, attributeID.String()))
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("attributes:list:%s:*", tenantID))
}

// CreateAttribute creates a new attribute, including any initial values.
func (r *AttributesRepository) CreateAttribute(ctx context.Context, tenantID string, attribute *models.Attribute) error {
	attribute.TenantID = tenantID
	attribute.CreatedAt = time.Now()
	attribute.UpdatedAt = time.Now()

	if attribute.ID == uuid.Nil {
		attribute.ID = uuid.New()
	}
	if attribute.Slug == "" {
		// Append first 8 chars of the id so slugs stay unique per tenant
		attribute.Slug = fmt.Sprintf("%s-%s", generateSlug(attribute.Name), attribute.ID.String()[:8])
	}
	for i := range attribute.Values {
		attribute.Values[i].TenantID = tenantID
		attribute.Values[i].AttributeID = attribute.ID
		if attribute.Values[i].ID == uuid.Nil {
			attribute.Values[i].ID = uuid.New()
		}
		if attribute.Values[i].Position == 0 {
			attribute.Values[i].Position = i + 1
		}
	}

	err := r.db.WithContext(ctx).Create(attribute).Error
	if err == nil {
		r.invalidateAttributeCaches(ctx, tenantID, attribute.ID)
	}
	return err
}

// GetAttributes retrieves attributes for a tenant with pagination and caching
func (r *AttributesRepository) GetAttributes(ctx context.Context, tenantID string, page, limit int, includeValues bool) ([]models.Attribute, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("attributes:list:%s:%d:%d:%v", tenantID, page, limit, includeValues)
	type cachedList struct {
		Attributes []models.Attribute `json:"attributes"`
		Total      int64              `json:"total"`
	}
	if r.redis != nil {
		if val, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached cachedList
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached.Attributes, cached.Total, nil
			}
		}
	}

	var attributes []models.Attribute
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Attribute{}).Where("tenant_id = ?", tenantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("position ASC, created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit)
	if includeValues {
		query = query.Preload("Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("attribute_values.position ASC")
		})
	}
	if err := query.Find(&attributes).Error; err != nil {
		return nil, 0, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(cachedList{Attributes: attributes, Total: total}); err == nil {
			r.redis.Set(ctx, cacheKey, data, AttributeListCacheTTL)
		}
	}

	return attributes, total, nil
}

// GetAttributeByID retrieves an attribute with its ordered value list.
func (r *AttributesRepository) GetAttributeByID(ctx context.Context, tenantID string, attributeID uuid.UUID) (*models.Attribute, error) {
	cacheKey := fmt.Sprintf("attribute:%s:%s", tenantID, attributeID.String())

	if r.redis != nil {
		if val, err := r.redis.Get(ctx, "tesseract:variations:"+cacheKey).Result(); err == nil {
			var attribute models.Attribute
			if err := json.Unmarshal([]byte(val), &attribute); err == nil {
				return &attribute, nil
			}
		}
	}

	var attribute models.Attribute
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, attributeID).
		Preload("Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("attribute_values.position ASC")
		}).
		First(&attribute).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(attribute); err == nil {
			r.redis.Set(ctx, "tesseract:variations:"+cacheKey, data, AttributeCacheTTL)
		}
	}

	return &attribute, nil
}

// UpdateAttribute applies a partial update and returns the refreshed record.
func (r *AttributesRepository) UpdateAttribute(ctx context.Context, tenantID string, attributeID uuid.UUID, updates *models.UpdateAttributeRequest) (*models.Attribute, error) {
	var attribute models.Attribute
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, attributeID).First(&attribute).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{"updated_at": time.Now()}
	if updates.Name != nil {
		fields["name"] = *updates.Name
	}
	if updates.Slug != nil {
		fields["slug"] = *updates.Slug
	}
	if updates.Description != nil {
		fields["description"] = *updates.Description
	}
	if updates.Position != nil {
		fields["position"] = *updates.Position
	}
	if updates.IsActive != nil {
		fields["is_active"] = *updates.IsActive
	}

	if err := r.db.WithContext(ctx).Model(&attribute).Updates(fields).Error; err != nil {
		return nil, err
	}
	r.invalidateAttributeCaches(ctx, tenantID, attributeID)

	return r.GetAttributeByID(ctx, tenantID, attributeID)
}

// DeleteAttribute soft-deletes an attribute and its values.
func (r *AttributesRepository) DeleteAttribute(ctx context.Context, tenantID string, attributeID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, attributeID).Delete(&models.Attribute{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("tenant_id = ? AND attribute_id = ?", tenantID, attributeID).Delete(&models.AttributeValue{}).Error; err != nil {
			return err
		}
		r.invalidateAttributeCaches(ctx, tenantID, attributeID)
		return nil
	})
}

// BulkDeleteAttributes deletes multiple attributes with tenant isolation.
// Returns the number deleted and the ids that were not found or failed.
func (r *AttributesRepository) BulkDeleteAttributes(ctx context.Context, tenantID string, attributeIDs []uuid.UUID) (int64, []string, error) {
	failedIDs := make([]string, 0)
	var totalDeleted int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range attributeIDs {
			result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.Attribute{})
			if result.Error != nil || result.RowsAffected == 0 {
				failedIDs = append(failedIDs, id.String())
				continue
			}
			if err := tx.Where("tenant_id = ? AND attribute_id = ?", tenantID, id).Delete(&models.AttributeValue{}).Error; err != nil {
				return err
			}
			totalDeleted += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}

	if totalDeleted > 0 {
		for _, id := range attributeIDs {
			r.invalidateAttributeCaches(ctx, tenantID, id)
		}
	}

	return totalDeleted, failedIDs, nil
}

// CreateValue appends a value to an attribute's catalog.
func (r *AttributesRepository) CreateValue(ctx context.Context, tenantID string, attributeID uuid.UUID, value *models.AttributeValue) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Attribute{}).
		Where("tenant_id = ? AND id = ?", tenantID, attributeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	value.TenantID = tenantID
	value.AttributeID = attributeID
	if value.ID == uuid.Nil {
		value.ID = uuid.New()
	}
	if value.Position == 0 {
		var maxPosition int
		r.db.WithContext(ctx).Model(&models.AttributeValue{}).
			Where("tenant_id = ? AND attribute_id = ?", tenantID, attributeID).
			Select("COALESCE(MAX(position), 0)").Scan(&maxPosition)
		value.Position = maxPosition + 1
	}
	value.CreatedAt = time.Now()
	value.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).Create(value).Error
	if err == nil {
		r.invalidateAttributeCaches(ctx, tenantID, attributeID)
	}
	return err
}

// UpdateValue applies a partial update to a single value.
func (r *AttributesRepository) UpdateValue(ctx context.Context, tenantID string, valueID uuid.UUID, updates *models.UpdateAttributeValueRequest) (*models.AttributeValue, error) {
	var value models.AttributeValue
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, valueID).First(&value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{"updated_at": time.Now()}
	if updates.Value != nil {
		fields["value"] = *updates.Value
	}
	if updates.Position != nil {
		fields["position"] = *updates.Position
	}

	if err := r.db.WithContext(ctx).Model(&value).Updates(fields).Error; err != nil {
		return nil, err
	}
	r.invalidateAttributeCaches(ctx, tenantID, value.AttributeID)
	return &value, nil
}

// DeleteValue soft-deletes a single value from an attribute's catalog.
func (r *AttributesRepository) DeleteValue(ctx context.Context, tenantID string, valueID uuid.UUID) error {
	var value models.AttributeValue
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, valueID).First(&value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&value).Error; err != nil {
		return err
	}
	r.invalidateAttributeCaches(ctx, tenantID, value.AttributeID)
	return nil
}

// GetValueIDs returns the full defined value id list for an attribute. This
// is the lookup edit sessions validate selected values against.
func (r *AttributesRepository) GetValueIDs(ctx context.Context, tenantID string, attributeID uuid.UUID) ([]uuid.UUID, error) {
	attribute, err := r.GetAttributeByID(ctx, tenantID, attributeID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(attribute.Values))
	for i, v := range attribute.Values {
		ids[i] = v.ID
	}
	return ids, nil
}

func generateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	var result strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
