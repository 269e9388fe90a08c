package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"variations-service/internal/models"
)

func setupImportTest() (*gin.Engine, *MockAttributesRepository) {
	gin.SetMode(gin.TestMode)

	repo := new(MockAttributesRepository)
	handler := NewImportHandler(repo)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("tenant_id", "tenant-123")
		c.Set("user_id", uuid.New().String())
		c.Next()
	})
	router.GET("/api/v1/attributes/import/template", handler.GetImportTemplate)
	router.POST("/api/v1/attributes/import", handler.ImportAttributes)

	return router, repo
}

func uploadCSV(router *gin.Engine, csvContent string, fields map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "attributes.csv")
	part.Write([]byte(csvContent))
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()

	req, _ := http.NewRequest("POST", "/api/v1/attributes/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ===========================================
// Template Tests
// ===========================================

func TestGetImportTemplate_JSON(t *testing.T) {
	router, _ := setupImportTest()

	req, _ := http.NewRequest("GET", "/api/v1/attributes/import/template", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success  bool                  `json:"success"`
		Template models.ImportTemplate `json:"template"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "attributes", resp.Template.Entity)
	assert.NotEmpty(t, resp.Template.Columns)
}

func TestGetImportTemplate_CSV(t *testing.T) {
	router, _ := setupImportTest()

	req, _ := http.NewRequest("GET", "/api/v1/attributes/import/template?format=csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "name")
	assert.Contains(t, w.Body.String(), "values")
}

// ===========================================
// Import Tests
// ===========================================

func TestImportAttributes_Success(t *testing.T) {
	router, repo := setupImportTest()

	repo.On("GetAttributes", mock.Anything, "tenant-123", 1, 200, false).
		Return([]models.Attribute{}, int64(0), nil)
	repo.On("CreateAttribute", mock.Anything, "tenant-123", mock.Anything).
		Run(func(args mock.Arguments) {
			attribute := args.Get(2).(*models.Attribute)
			attribute.ID = uuid.New()
		}).
		Return(nil).Twice()

	csv := "name,description,values,position,isActive\n" +
		"Color,Primary color,Red|Blue|Green,1,true\n" +
		"Size,,S|M|L,2,\n"
	w := uploadCSV(router, csv, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var result models.ImportResult
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.CreatedCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.Len(t, result.CreatedIDs, 2)
	repo.AssertExpectations(t)
}

func TestImportAttributes_ValidationErrors(t *testing.T) {
	router, repo := setupImportTest()

	repo.On("GetAttributes", mock.Anything, "tenant-123", 1, 200, false).
		Return([]models.Attribute{}, int64(0), nil)
	repo.On("CreateAttribute", mock.Anything, "tenant-123", mock.Anything).
		Return(nil).Once()

	csv := "name,values\n" +
		",Red|Blue\n" + // missing name
		"Size,\n" + // missing values
		"Color,Red|Blue\n"
	w := uploadCSV(router, csv, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var result models.ImportResult
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 1, result.CreatedCount)
	assert.Equal(t, 2, result.FailedCount)
	assert.Len(t, result.Errors, 2)
}

func TestImportAttributes_SkipDuplicates(t *testing.T) {
	router, repo := setupImportTest()

	existing := []models.Attribute{{ID: uuid.New(), TenantID: "tenant-123", Name: "Color"}}
	repo.On("GetAttributes", mock.Anything, "tenant-123", 1, 200, false).
		Return(existing, int64(1), nil)
	repo.On("CreateAttribute", mock.Anything, "tenant-123", mock.Anything).
		Return(nil).Once()

	csv := "name,values\n" +
		"Color,Red|Blue\n" +
		"Size,S|M\n"
	w := uploadCSV(router, csv, map[string]string{"skipDuplicates": "true"})

	assert.Equal(t, http.StatusOK, w.Code)
	var result models.ImportResult
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.CreatedCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, 0, result.FailedCount)
	repo.AssertExpectations(t)
}

func TestImportAttributes_ValidateOnly(t *testing.T) {
	router, repo := setupImportTest()

	repo.On("GetAttributes", mock.Anything, "tenant-123", 1, 200, false).
		Return([]models.Attribute{}, int64(0), nil)

	csv := "name,values\nColor,Red|Blue\n"
	w := uploadCSV(router, csv, map[string]string{"validateOnly": "true"})

	assert.Equal(t, http.StatusOK, w.Code)
	var result models.ImportResult
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 0, result.CreatedCount)
	repo.AssertNotCalled(t, "CreateAttribute", mock.Anything, mock.Anything, mock.Anything)
}

func TestImportAttributes_RejectsUnknownExtension(t *testing.T) {
	router, _ := setupImportTest()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "attributes.txt")
	part.Write([]byte("name,values\nColor,Red\n"))
	writer.Close()

	req, _ := http.NewRequest("POST", "/api/v1/attributes/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp models.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_FORMAT", resp.Error.Code)
}

// ===========================================
// Value Parsing Tests
// ===========================================

func TestParseValues(t *testing.T) {
	assert.Equal(t, []string{"Red", "Blue"}, parseValues("Red|Blue"))
	assert.Equal(t, []string{"Red", "Blue"}, parseValues(" Red | Blue "))
	assert.Equal(t, []string{"Red"}, parseValues("Red|red|RED"))
	assert.Equal(t, []string{"Red"}, parseValues("Red||"))
	assert.Nil(t, parseValues(""))
}
