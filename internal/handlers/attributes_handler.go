package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"variations-service/internal/events"
	"variations-service/internal/models"
	"variations-service/internal/repository"
)

// AttributesHandler serves the attribute/value catalog CRUD.
type AttributesHandler struct {
	repo            repository.AttributesRepositoryInterface
	eventsPublisher *events.Publisher
}

func NewAttributesHandler(repo repository.AttributesRepositoryInterface, eventsPublisher *events.Publisher) *AttributesHandler {
	return &AttributesHandler{
		repo:            repo,
		eventsPublisher: eventsPublisher,
	}
}

// CreateAttribute creates a new attribute with an optional initial value list
// @Summary Create attribute
// @Description Create a new attribute with its value catalog
// @Tags Attributes
// @Accept json
// @Produce json
// @Param attribute body models.CreateAttributeRequest true "Attribute data"
// @Success 201 {object} models.AttributeResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /attributes [post]
func (h *AttributesHandler) CreateAttribute(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	userID := c.GetString("user_id")

	var req models.CreateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	attribute := models.Attribute{
		Name: req.Name,
	}
	if req.Slug != nil {
		attribute.Slug = *req.Slug
	}
	if req.Description != nil {
		attribute.Description = req.Description
	}
	if req.Position != nil {
		attribute.Position = *req.Position
	}
	if userID != "" {
		attribute.CreatedBy = &userID
	}
	for i, value := range req.Values {
		attribute.Values = append(attribute.Values, models.AttributeValue{
			Value:    value,
			Position: i + 1,
		})
	}

	if err := h.repo.CreateAttribute(c.Request.Context(), tenantID, &attribute); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CREATE_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	if h.eventsPublisher != nil {
		h.eventsPublisher.PublishAttributeChanged(context.Background(), "created", &attribute, tenantID, userID)
	}

	c.JSON(http.StatusCreated, models.AttributeResponse{Success: true, Data: &attribute})
}

// GetAttributes lists attributes with pagination
// @Summary Get attributes
// @Description Get all attributes for the tenant with pagination
// @Tags Attributes
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param includeValues query bool false "Include value catalogs" default(true)
// @Success 200 {object} models.AttributeListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /attributes [get]
func (h *AttributesHandler) GetAttributes(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	page := 1
	limit := 20
	if pageStr := c.Query("page"); pageStr != "" {
		page, _ = strconv.Atoi(pageStr)
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, _ = strconv.Atoi(limitStr)
	}
	includeValues := c.DefaultQuery("includeValues", "true") == "true"

	attributes, total, err := h.repo.GetAttributes(c.Request.Context(), tenantID, page, limit, includeValues)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "LIST_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, models.AttributeListResponse{
		Success: true,
		Data:    attributes,
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

// GetAttribute returns a single attribute with its value catalog
func (h *AttributesHandler) GetAttribute(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	attributeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid attribute ID"},
		})
		return
	}

	attribute, err := h.repo.GetAttributeByID(c.Request.Context(), tenantID, attributeID)
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

	c.JSON(http.StatusOK, models.AttributeResponse{Success: true, Data: attribute})
}

// UpdateAttribute applies a partial update
func (h *AttributesHandler) UpdateAttribute(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	userID := c.GetString("user_id")

	attributeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid attribute ID"},
		})
		return
	}

	var req models.UpdateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	attribute, err := h.repo.UpdateAttribute(c.Request.Context(), tenantID, attributeID, &req)
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
			Error:   models.Error{Code: "UPDATE_FAILED", Message: err.Error()},
		})
		return
	}

	if h.eventsPublisher != nil {
		h.eventsPublisher.PublishAttributeChanged(context.Background(), "updated", attribute, tenantID, userID)
	}

	c.JSON(http.StatusOK, models.AttributeResponse{Success: true, Data: attribute})
}

// DeleteAttribute soft-deletes an attribute and its value catalog
func (h *AttributesHandler) DeleteAttribute(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	userID := c.GetString("user_id")

	attributeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid attribute ID"},
		})
		return
	}

	attribute, err := h.repo.GetAttributeByID(c.Request.Context(), tenantID, attributeID)
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
			Error:   models.Error{Code: "DELETE_FAILED", Message: err.Error()},
		})
		return
	}

	if err := h.repo.DeleteAttribute(c.Request.Context(), tenantID, attributeID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "DELETE_FAILED", Message: err.Error()},
		})
		return
	}

	if h.eventsPublisher != nil {
		h.eventsPublisher.PublishAttributeChanged(context.Background(), "deleted", attribute, tenantID, userID)
	}

	message := "Attribute deleted successfully"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}

// BulkDeleteAttributes deletes multiple attributes in one request
func (h *AttributesHandler) BulkDeleteAttributes(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var req models.BulkDeleteAttributesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: "Invalid request format: " + err.Error()},
		})
		return
	}

	deletedCount, failedIDs, err := h.repo.BulkDeleteAttributes(c.Request.Context(), tenantID, req.IDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "BULK_DELETE_FAILED", Message: err.Error()},
		})
		return
	}

	status := http.StatusOK
	if deletedCount == 0 {
		status = http.StatusNotFound
	} else if len(failedIDs) > 0 {
		status = http.StatusMultiStatus
	}

	c.JSON(status, models.BulkDeleteAttributesResponse{
		Success:      deletedCount > 0,
		TotalCount:   len(req.IDs),
		DeletedCount: int(deletedCount),
		FailedIDs:    failedIDs,
	})
}

// CreateValue appends a value to an attribute's catalog
func (h *AttributesHandler) CreateValue(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	attributeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid attribute ID"},
		})
		return
	}

	var req models.CreateAttributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	value := models.AttributeValue{Value: req.Value}
	if req.Position != nil {
		value.Position = *req.Position
	}

	if err := h.repo.CreateValue(c.Request.Context(), tenantID, attributeID, &value); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Attribute not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "CREATE_FAILED", Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusCreated, models.AttributeValueResponse{Success: true, Data: &value})
}

// UpdateValue applies a partial update to a value
func (h *AttributesHandler) UpdateValue(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	valueID, err := uuid.Parse(c.Param("valueId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid value ID"},
		})
		return
	}

	var req models.UpdateAttributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	value, err := h.repo.UpdateValue(c.Request.Context(), tenantID, valueID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Attribute value not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "UPDATE_FAILED", Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, models.AttributeValueResponse{Success: true, Data: value})
}

// DeleteValue removes a value from an attribute's catalog
func (h *AttributesHandler) DeleteValue(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	valueID, err := uuid.Parse(c.Param("valueId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid value ID"},
		})
		return
	}

	if err := h.repo.DeleteValue(c.Request.Context(), tenantID, valueID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Attribute value not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "DELETE_FAILED", Message: err.Error()},
		})
		return
	}

	message := "Attribute value deleted successfully"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}
