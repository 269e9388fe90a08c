package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"variations-service/internal/clients"
	"variations-service/internal/events"
	"variations-service/internal/models"
	"variations-service/internal/repository"
	"variations-service/internal/session"
	"variations-service/internal/variations"
)

// VariationsHandler serves the edit-session endpoints: the UI form opens a
// session, mutates attribute selections, triggers generation, edits single
// variations and finally saves the whole snapshot.
type VariationsHandler struct {
	attributesRepo repository.AttributesRepositoryInterface
	variationsRepo repository.VariationsRepositoryInterface
	sessions       *session.Manager
	productsClient *clients.ProductsClient
	publisher      *events.Publisher
}

func NewVariationsHandler(
	attributesRepo repository.AttributesRepositoryInterface,
	variationsRepo repository.VariationsRepositoryInterface,
	sessions *session.Manager,
	productsClient *clients.ProductsClient,
	publisher *events.Publisher,
) *VariationsHandler {
	return &VariationsHandler{
		attributesRepo: attributesRepo,
		variationsRepo: variationsRepo,
		sessions:       sessions,
		productsClient: productsClient,
		publisher:      publisher,
	}
}

// tenantCatalog adapts the attributes repository to the engine's Catalog
// interface, bound to one tenant.
type tenantCatalog struct {
	repo     repository.AttributesRepositoryInterface
	tenantID string
}

func (c *tenantCatalog) ValueIDs(ctx context.Context, attributeID uuid.UUID) ([]uuid.UUID, error) {
	return c.repo.GetValueIDs(ctx, c.tenantID, attributeID)
}

// engineError maps engine error types onto the API error envelope.
func engineError(c *gin.Context, err error) {
	var (
		dupAttr  *variations.DuplicateAttributeError
		unknown  *variations.UnknownValueError
		incompl  *variations.IncompleteAttributeError
		noAttrs  *variations.NoVariationAttributesError
		dupCombo *variations.DuplicateCombinationError
		notFound *variations.NotFoundError
	)

	switch {
	case errors.As(err, &dupAttr):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "DUPLICATE_ATTRIBUTE", Message: err.Error(), Field: dupAttr.AttributeID.String()},
		})
	case errors.As(err, &unknown):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "UNKNOWN_VALUE", Message: err.Error(), Field: unknown.AttributeID.String()},
		})
	case errors.As(err, &incompl):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INCOMPLETE_ATTRIBUTE", Message: err.Error(), Field: incompl.AttributeID.String()},
		})
	case errors.As(err, &noAttrs):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "NO_VARIATION_ATTRIBUTES", Message: err.Error()},
		})
	case errors.As(err, &dupCombo):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "DUPLICATE_COMBINATION", Message: err.Error(), Field: string(dupCombo.Key)},
		})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "NOT_FOUND", Message: err.Error()},
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INTERNAL_ERROR", Message: err.Error()},
		})
	}
}

func parseProductID(c *gin.Context) (uuid.UUID, bool) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid product ID"},
		})
		return uuid.Nil, false
	}
	return productID, true
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, len(raw))
	for i, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

func sessionState(s *variations.Session) *models.SessionState {
	return &models.SessionState{
		ProductID:          s.ProductID.String(),
		Attributes:         s.Selections(),
		Variations:         s.Variations(),
		DeleteVariationIDs: s.DeletedVariationIDs(),
	}
}

// GetVariations lists the persisted variations for a product
func (h *VariationsHandler) GetVariations(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	page := 1
	limit := 100
	if pageStr := c.Query("page"); pageStr != "" {
		page, _ = strconv.Atoi(pageStr)
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, _ = strconv.Atoi(limitStr)
	}

	list, total, err := h.variationsRepo.GetVariations(c.Request.Context(), tenantID, productID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "LIST_FAILED", Message: err.Error()},
		})
		return
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, models.VariationListResponse{
		Success: true,
		Data:    list,
		Pagination: &models.PaginationInfo{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1,
		},
	})
}

// OpenSession starts an edit session for a product, seeded with its
// persisted selections and variations. Only one session per product may be
// open at a time.
func (h *VariationsHandler) OpenSession(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	if h.productsClient != nil {
		if _, err := h.productsClient.GetProductByID(tenantID, productID.String()); err != nil {
			if errors.Is(err, clients.ErrProductNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse{
					Success: false,
					Error:   models.Error{Code: "PRODUCT_NOT_FOUND", Message: "Product not found"},
				})
				return
			}
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "PRODUCT_LOOKUP_FAILED", Message: err.Error()},
			})
			return
		}
	}

	selectionRows, err := h.variationsRepo.GetSelections(c.Request.Context(), tenantID, productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "LOAD_FAILED", Message: err.Error()},
		})
		return
	}
	variationRows, _, err := h.variationsRepo.GetVariations(c.Request.Context(), tenantID, productID, 0, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "LOAD_FAILED", Message: err.Error()},
		})
		return
	}

	selections, err := repository.SelectionsToEngine(selectionRows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "LOAD_FAILED", Message: err.Error()},
		})
		return
	}
	existing, err := repository.VariationsToEngine(variationRows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "LOAD_FAILED", Message: err.Error()},
		})
		return
	}

	catalog := &tenantCatalog{repo: h.attributesRepo, tenantID: tenantID}
	handle, err := h.sessions.Open(c.Request.Context(), tenantID, productID, catalog)
	if err != nil {
		if errors.Is(err, session.ErrSessionExists) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "SESSION_EXISTS", Message: err.Error()},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "SESSION_OPEN_FAILED", Message: err.Error()},
		})
		return
	}

	var state *models.SessionState
	err = handle.Do(func(s *variations.Session) error {
		if err := s.Load(selections, existing); err != nil {
			return err
		}
		state = sessionState(s)
		return nil
	})
	if err != nil {
		h.sessions.Close(c.Request.Context(), tenantID, productID)
		engineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.SessionStateResponse{Success: true, Data: state})
}

// GetSession returns the current edit-session state
func (h *VariationsHandler) GetSession(c *gin.Context) {
	h.withSession(c, func(s *variations.Session) error {
		c.JSON(http.StatusOK, models.SessionStateResponse{Success: true, Data: sessionState(s)})
		return nil
	})
}

// CloseSession discards the edit session without saving
func (h *VariationsHandler) CloseSession(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	h.sessions.Close(c.Request.Context(), tenantID, productID)
	message := "Edit session discarded"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}

// AttachAttribute adds an attribute to the session's selection set
func (h *VariationsHandler) AttachAttribute(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var req models.AttachAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	attributeID, err := uuid.Parse(req.AttributeID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid attribute ID"},
		})
		return
	}
	valueIDs, err := parseUUIDs(req.ValueIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid value ID"},
		})
		return
	}

	// The attribute definition supplies the denormalized display name and the
	// value list the initial selection is checked against.
	attribute, err := h.attributesRepo.GetAttributeByID(c.Request.Context(), tenantID, attributeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Attribute not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "GET_FAILED", Message: err.Error()},
		})
		return
	}

	known := make(map[uuid.UUID]struct{}, len(attribute.Values))
	for _, v := range attribute.Values {
		known[v.ID] = struct{}{}
	}
	var unknown []uuid.UUID
	for _, id := range valueIDs {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		engineError(c, &variations.UnknownValueError{AttributeID: attributeID, Name: attribute.Name, ValueIDs: unknown})
		return
	}

	h.withSession(c, func(s *variations.Session) error {
		if err := s.AttachAttribute(attributeID, attribute.Name, valueIDs); err != nil {
			return err
		}
		c.JSON(http.StatusOK, models.SessionStateResponse{Success: true, Data: sessionState(s)})
		return nil
	})
}

// DetachAttribute removes an attribute from the session's selection set.
// Variations referencing it stay until the next generation pass.
func (h *VariationsHandler) DetachAttribute(c *gin.Context) {
	attributeID, err := uuid.Parse(c.Param("attributeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid attribute ID"},
		})
		return
	}

	h.withSession(c, func(s *variations.Session) error {
		if err := s.DetachAttribute(attributeID); err != nil {
			return err
		}
		c.JSON(http.StatusOK, models.SessionStateResponse{Success: true, Data: sessionState(s)})
		return nil
	})
}

// SetSelectedValues replaces the selected-value set for one attribute
func (h *VariationsHandler) SetSelectedValues(c *gin.Context) {
	attributeID, err := uuid.Parse(c.Param("attributeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid attribute ID"},
		})
		return
	}

	var req models.SetSelectedValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}
	valueIDs, err := parseUUIDs(req.ValueIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid value ID"},
		})
		return
	}

	ctx := c.Request.Context()
	h.withSession(c, func(s *variations.Session) error {
		if err := s.SetSelectedValues(ctx, attributeID, valueIDs); err != nil {
			return err
		}
		c.JSON(http.StatusOK, models.SessionStateResponse{Success: true, Data: sessionState(s)})
		return nil
	})
}

// SetSelectionFlags toggles usedForVariations / visibleOnProduct
func (h *VariationsHandler) SetSelectionFlags(c *gin.Context) {
	attributeID, err := uuid.Parse(c.Param("attributeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid attribute ID"},
		})
		return
	}

	var req models.SetSelectionFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	h.withSession(c, func(s *variations.Session) error {
		if req.UsedForVariations != nil {
			if err := s.SetUsedForVariations(attributeID, *req.UsedForVariations); err != nil {
				return err
			}
		}
		if req.VisibleOnProduct != nil {
			if err := s.SetVisibleOnProduct(attributeID, *req.VisibleOnProduct); err != nil {
				return err
			}
		}
		c.JSON(http.StatusOK, models.SessionStateResponse{Success: true, Data: sessionState(s)})
		return nil
	})
}

// GenerateVariations runs a generation pass: Cartesian product of the
// current selections reconciled against the working variation list.
func (h *VariationsHandler) GenerateVariations(c *gin.Context) {
	h.withSession(c, func(s *variations.Session) error {
		summary, err := s.GenerateVariations()
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, models.GenerateResponse{
			Success:    true,
			Summary:    summary,
			Variations: s.Variations(),
		})
		return nil
	})
}

// UpdateVariation edits one working variation's editable fields
func (h *VariationsHandler) UpdateVariation(c *gin.Context) {
	key := variations.CombinationKey(c.Param("key"))

	var req models.UpdateSessionVariationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	patch := variations.VariationPatch{
		SKU:               req.SKU,
		Price:             req.Price,
		SalePrice:         req.SalePrice,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
		Status:            req.Status,
		Image:             req.Image,
	}

	h.withSession(c, func(s *variations.Session) error {
		updated, err := s.UpdateVariation(key, patch)
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: updated})
		return nil
	})
}

// RemoveVariation removes one working variation directly
func (h *VariationsHandler) RemoveVariation(c *gin.Context) {
	key := variations.CombinationKey(c.Param("key"))

	h.withSession(c, func(s *variations.Session) error {
		if err := s.RemoveVariation(key); err != nil {
			return err
		}
		c.JSON(http.StatusOK, models.SessionStateResponse{Success: true, Data: sessionState(s)})
		return nil
	})
}

// SaveVariations persists the session snapshot (variations plus explicit
// delete instructions) and closes the session.
func (h *VariationsHandler) SaveVariations(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	userID := c.GetString("user_id")
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	handle, err := h.sessions.Get(c.Request.Context(), tenantID, productID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "NO_SESSION", Message: err.Error()},
		})
		return
	}

	var payload variations.SavePayload
	var selections []variations.AttributeSelection
	handle.Do(func(s *variations.Session) error {
		payload = s.BuildSavePayload()
		selections = s.Selections()
		return nil
	})

	saved, err := h.variationsRepo.SaveVariations(c.Request.Context(), tenantID, productID, payload, selections)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "SAVE_FAILED", Message: err.Error()},
		})
		return
	}

	h.sessions.Close(c.Request.Context(), tenantID, productID)

	if h.publisher != nil {
		h.publisher.PublishVariationsSaved(context.Background(), productID, len(saved), len(payload.DeleteVariationIDs), tenantID, userID)
	}

	c.JSON(http.StatusOK, models.SaveVariationsResponse{
		Success:      true,
		Data:         saved,
		DeletedCount: len(payload.DeleteVariationIDs),
	})
}

// withSession resolves the open session for the product in the URL and runs
// fn under its lock, translating engine errors on the way out.
func (h *VariationsHandler) withSession(c *gin.Context, fn func(s *variations.Session) error) {
	tenantID := c.GetString("tenant_id")
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	handle, err := h.sessions.Get(c.Request.Context(), tenantID, productID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "NO_SESSION", Message: err.Error()},
		})
		return
	}

	if err := handle.Do(fn); err != nil {
		engineError(c, err)
	}
}
