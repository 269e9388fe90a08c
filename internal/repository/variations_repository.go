package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"variations-service/internal/models"
	"variations-service/internal/variations"
)

// VariationsRepositoryInterface defines the persistence operations the edit
// session handlers depend on.
type VariationsRepositoryInterface interface {
	GetSelections(ctx context.Context, tenantID string, productID uuid.UUID) ([]models.ProductAttributeSelection, error)
	GetVariations(ctx context.Context, tenantID string, productID uuid.UUID, page, limit int) ([]models.ProductVariation, int64, error)
	SaveVariations(ctx context.Context, tenantID string, productID uuid.UUID, payload variations.SavePayload, selections []variations.AttributeSelection) ([]models.ProductVariation, error)
}

type VariationsRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

var _ VariationsRepositoryInterface = (*VariationsRepository)(nil)

func NewVariationsRepository(db *gorm.DB, redisClient *redis.Client) *VariationsRepository {
	return &VariationsRepository{db: db, redis: redisClient}
}

// GetSelections loads the persisted attribute selections for a product in
// attach order.
func (r *VariationsRepository) GetSelections(ctx context.Context, tenantID string, productID uuid.UUID) ([]models.ProductAttributeSelection, error) {
	var selections []models.ProductAttributeSelection
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("position ASC").
		Find(&selections).Error
	return selections, err
}

// GetVariations loads persisted variations for a product with pagination.
// Pass limit <= 0 to load everything (the edit session path).
func (r *VariationsRepository) GetVariations(ctx context.Context, tenantID string, productID uuid.UUID, page, limit int) ([]models.ProductVariation, int64, error) {
	var list []models.ProductVariation
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ProductVariation{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at ASC")
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * limit).Limit(limit)
	}
	if err := query.Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// SaveVariations persists one finished edit session in a single transaction:
// replace the stored selections, upsert the variation list and delete the ids
// the session's ledger named. The backend never diffs - the payload is taken
// literally.
func (r *VariationsRepository) SaveVariations(ctx context.Context, tenantID string, productID uuid.UUID, payload variations.SavePayload, selections []variations.AttributeSelection) ([]models.ProductVariation, error) {
	var saved []models.ProductVariation

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Explicit deletes first so a regenerated combination can reuse the slot
		if len(payload.DeleteVariationIDs) > 0 {
			if err := tx.Where("tenant_id = ? AND product_id = ? AND id IN ?", tenantID, productID, payload.DeleteVariationIDs).
				Delete(&models.ProductVariation{}).Error; err != nil {
				return err
			}
		}

		// Replace stored selections wholesale
		if err := tx.Unscoped().Where("tenant_id = ? AND product_id = ?", tenantID, productID).
			Delete(&models.ProductAttributeSelection{}).Error; err != nil {
			return err
		}
		for i, sel := range selections {
			row := models.ProductAttributeSelection{
				ID:                uuid.New(),
				TenantID:          tenantID,
				ProductID:         productID,
				AttributeID:       sel.AttributeID,
				Name:              sel.Name,
				SelectedValueIDs:  uuidsToJSONArray(sel.SelectedValueIDs),
				UsedForVariations: sel.UsedForVariations,
				VisibleOnProduct:  sel.VisibleOnProduct,
				Position:          i + 1,
				CreatedAt:         time.Now(),
				UpdatedAt:         time.Now(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		for _, v := range payload.Variations {
			combo := make(variations.Combination, len(v.Attributes))
			for i, p := range v.Attributes {
				combo[i] = variations.AttributePair{AttributeID: p.AttributeID, ValueID: p.ValueID}
			}

			row := models.ProductVariation{
				TenantID:          tenantID,
				ProductID:         productID,
				SKU:               v.SKU,
				Price:             v.Price,
				SalePrice:         v.SalePrice,
				Quantity:          v.Quantity,
				LowStockThreshold: v.LowStockThreshold,
				Status:            v.Status,
				ImageURL:          v.Image,
				Attributes:        pairsToJSONArray(v.Attributes),
				CombinationKey:    string(combo.Key()),
				UpdatedAt:         time.Now(),
			}

			if v.ID != nil {
				row.ID = *v.ID
				result := tx.Model(&models.ProductVariation{}).
					Where("tenant_id = ? AND product_id = ? AND id = ?", tenantID, productID, *v.ID).
					Updates(map[string]interface{}{
						"sku":                 row.SKU,
						"price":               row.Price,
						"sale_price":          row.SalePrice,
						"quantity":            row.Quantity,
						"low_stock_threshold": row.LowStockThreshold,
						"status":              row.Status,
						"image_url":           row.ImageURL,
						"attributes":          row.Attributes,
						"combination_key":     row.CombinationKey,
						"updated_at":          row.UpdatedAt,
					})
				if result.Error != nil {
					return result.Error
				}
				if result.RowsAffected == 0 {
					return fmt.Errorf("variation %s: %w", v.ID, ErrNotFound)
				}
			} else {
				row.ID = uuid.New()
				row.CreatedAt = time.Now()
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
			saved = append(saved, row)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.invalidateVariationCaches(ctx, tenantID, productID)
	return saved, nil
}

func (r *VariationsRepository) invalidateVariationCaches(ctx context.Context, tenantID string, productID uuid.UUID) {
	if r.redis == nil {
		return
	}
	r.redis.Del(ctx, fmt.Sprintf("tesseract:variations:product:%s:%s", tenantID, productID.String()))
}

// SelectionsToEngine converts persisted selection rows into engine selections.
func SelectionsToEngine(rows []models.ProductAttributeSelection) ([]variations.AttributeSelection, error) {
	out := make([]variations.AttributeSelection, len(rows))
	for i, row := range rows {
		ids, err := jsonArrayToUUIDs(row.SelectedValueIDs)
		if err != nil {
			return nil, fmt.Errorf("selection %s: %w", row.ID, err)
		}
		out[i] = variations.AttributeSelection{
			AttributeID:       row.AttributeID,
			Name:              row.Name,
			SelectedValueIDs:  ids,
			UsedForVariations: row.UsedForVariations,
			VisibleOnProduct:  row.VisibleOnProduct,
		}
	}
	return out, nil
}

// VariationsToEngine converts persisted variation rows into engine variations.
func VariationsToEngine(rows []models.ProductVariation) ([]variations.Variation, error) {
	out := make([]variations.Variation, len(rows))
	for i, row := range rows {
		combo, err := jsonArrayToCombination(row.Attributes)
		if err != nil {
			return nil, fmt.Errorf("variation %s: %w", row.ID, err)
		}
		id := row.ID
		out[i] = variations.Variation{
			ID:                &id,
			SKU:               row.SKU,
			Price:             row.Price,
			SalePrice:         row.SalePrice,
			Quantity:          row.Quantity,
			LowStockThreshold: row.LowStockThreshold,
			Status:            row.Status,
			Image:             row.ImageURL,
			Attributes:        combo,
		}
	}
	return out, nil
}

func uuidsToJSONArray(ids []uuid.UUID) models.JSONArray {
	out := make(models.JSONArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func pairsToJSONArray(pairs []variations.PairPayload) models.JSONArray {
	out := make(models.JSONArray, len(pairs))
	for i, p := range pairs {
		out[i] = map[string]interface{}{
			"attribute_id":       p.AttributeID.String(),
			"attribute_value_id": p.ValueID.String(),
		}
	}
	return out
}

func jsonArrayToUUIDs(arr models.JSONArray) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, errors.New("expected string id in jsonb array")
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func jsonArrayToCombination(arr models.JSONArray) (variations.Combination, error) {
	// Round-trip through json so both map[string]interface{} rows (fresh from
	// the driver) and typed rows (from tests) decode the same way.
	data, err := json.Marshal(arr)
	if err != nil {
		return nil, err
	}
	var pairs []struct {
		AttributeID string `json:"attribute_id"`
		ValueID     string `json:"attribute_value_id"`
	}
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, err
	}
	combo := make(variations.Combination, len(pairs))
	for i, p := range pairs {
		attrID, err := uuid.Parse(p.AttributeID)
		if err != nil {
			return nil, err
		}
		valueID, err := uuid.Parse(p.ValueID)
		if err != nil {
			return nil, err
		}
		combo[i] = variations.AttributePair{AttributeID: attrID, ValueID: valueID}
	}
	return combo, nil
}
