package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"variations-service/internal/models"
	"variations-service/internal/repository"
)

type ImportHandler struct {
	repo repository.AttributesRepositoryInterface
}

func NewImportHandler(repo repository.AttributesRepositoryInterface) *ImportHandler {
	return &ImportHandler{repo: repo}
}

// GetImportTemplate returns the import template definition or file
// GET /api/v1/attributes/import/template
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	template := models.AttributeImportTemplate()

	switch format {
	case "csv":
		h.generateCSVTemplate(c, template)
	case "xlsx":
		h.generateXLSXTemplate(c, template)
	default:
		// Return JSON template definition
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": template,
		})
	}
}

// generateCSVTemplate generates and downloads a CSV template (headers only)
func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template models.ImportTemplate) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=attributes_import_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	writer.Write(headers)
}

// generateXLSXTemplate generates and downloads an Excel template
func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template models.ImportTemplate) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Attributes"
	f.SetSheetName("Sheet1", sheetName)

	// Style for header row
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	// Style for required columns
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := col.Name
		if col.Required {
			headerText = col.Name + " *"
		}
		f.SetCellValue(sheetName, cell, headerText)

		if col.Required {
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	// Add Instructions sheet
	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Attribute Import Instructions")

	f.SetCellValue("Instructions", "A3", "Each row creates one attribute with its value catalog.")
	f.SetCellValue("Instructions", "A4", "Separate values with the pipe character, e.g. Red|Blue|Green.")
	f.SetCellValue("Instructions", "A5", "Duplicate value entries within a row are ignored.")

	f.SetCellValue("Instructions", "A7", "Column Definitions:")
	f.SetCellValue("Instructions", "A8", "Column")
	f.SetCellValue("Instructions", "B8", "Description")
	f.SetCellValue("Instructions", "C8", "Required")
	f.SetCellValue("Instructions", "D8", "Type")
	f.SetCellValue("Instructions", "E8", "Example")

	for i, col := range template.Columns {
		row := i + 9
		f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue("Instructions", fmt.Sprintf("B%d", row), col.Description)
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		f.SetCellValue("Instructions", fmt.Sprintf("C%d", row), required)
		f.SetCellValue("Instructions", fmt.Sprintf("D%d", row), col.Type)
		f.SetCellValue("Instructions", fmt.Sprintf("E%d", row), col.Example)
	}

	f.SetColWidth("Instructions", "A", "A", 25)
	f.SetColWidth("Instructions", "B", "B", 60)
	f.SetColWidth("Instructions", "C", "C", 15)
	f.SetColWidth("Instructions", "D", "D", 15)
	f.SetColWidth("Instructions", "E", "E", 40)

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=attributes_import_template.xlsx")

	f.Write(c.Writer)
}

// ImportAttributes imports attributes from a CSV or Excel file
// POST /api/v1/attributes/import
func (h *ImportHandler) ImportAttributes(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	userID := c.GetString("user_id")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FILE_REQUIRED",
				Message: "Please upload a CSV or Excel file",
			},
		})
		return
	}
	defer file.Close()

	skipDuplicates := c.DefaultPostForm("skipDuplicates", "false") == "true"
	validateOnly := c.DefaultPostForm("validateOnly", "false") == "true"

	filename := strings.ToLower(header.Filename)
	var rows []map[string]string
	var parseErr error

	switch {
	case strings.HasSuffix(filename, ".csv"):
		rows, parseErr = h.parseCSV(file)
	case strings.HasSuffix(filename, ".xlsx"):
		rows, parseErr = h.parseXLSX(file)
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_FORMAT",
				Message: "Only CSV and XLSX files are supported",
			},
		})
		return
	}

	if parseErr != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "PARSE_ERROR",
				Message: parseErr.Error(),
			},
		})
		return
	}

	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "EMPTY_FILE",
				Message: "The file contains no data rows",
			},
		})
		return
	}

	result := h.processImport(c.Request.Context(), tenantID, userID, rows, skipDuplicates, validateOnly)
	c.JSON(http.StatusOK, result)
}

// processImport validates all rows, then creates one attribute per valid row
func (h *ImportHandler) processImport(ctx context.Context, tenantID, userID string, rows []map[string]string, skipDuplicates, validateOnly bool) *models.ImportResult {
	result := &models.ImportResult{
		TotalRows:  len(rows),
		Errors:     make([]models.ImportRowError, 0),
		CreatedIDs: make([]string, 0),
	}

	existing, err := h.existingNames(ctx, tenantID)
	if err != nil {
		result.Errors = append(result.Errors, models.ImportRowError{
			Row:     0,
			Code:    "DB_ERROR",
			Message: err.Error(),
		})
		result.FailedCount = result.TotalRows
		return result
	}

	seen := make(map[string]struct{})

	for _, row := range rows {
		rowNum, _ := strconv.Atoi(row["_row"])

		name := row["name"]
		if name == "" {
			h.addError(result, rowNum, "name", "REQUIRED", "Attribute name is required")
			continue
		}
		values := parseValues(row["values"])
		if len(values) == 0 {
			h.addError(result, rowNum, "values", "REQUIRED", "At least one value is required")
			continue
		}

		nameKey := strings.ToLower(name)
		if _, dup := seen[nameKey]; dup {
			h.addError(result, rowNum, "name", "DUPLICATE_ROW", fmt.Sprintf("Attribute '%s' appears more than once in the file", name))
			continue
		}
		seen[nameKey] = struct{}{}

		if _, exists := existing[nameKey]; exists {
			if skipDuplicates {
				result.SkippedCount++
				continue
			}
			h.addError(result, rowNum, "name", "DUPLICATE", fmt.Sprintf("Attribute '%s' already exists", name))
			continue
		}

		if validateOnly {
			result.SuccessCount++
			continue
		}

		attribute := &models.Attribute{
			Name:        name,
			Description: optionalString(row["description"]),
			CreatedBy:   stringPtr(userID),
			UpdatedBy:   stringPtr(userID),
		}
		if pos := parseOptionalInt(row["position"]); pos != nil {
			attribute.Position = *pos
		}
		if active := parseOptionalBool(row["isactive"]); active != nil {
			attribute.IsActive = active
		}
		for i, v := range values {
			attribute.Values = append(attribute.Values, models.AttributeValue{
				Value:    v,
				Position: i + 1,
			})
		}

		if err := h.repo.CreateAttribute(ctx, tenantID, attribute); err != nil {
			h.addError(result, rowNum, "", "CREATE_FAILED", err.Error())
			continue
		}

		result.CreatedIDs = append(result.CreatedIDs, attribute.ID.String())
		result.CreatedCount++
		result.SuccessCount++
	}

	result.FailedCount = result.TotalRows - result.SuccessCount - result.SkippedCount
	result.Success = result.SuccessCount > 0 || result.SkippedCount > 0
	return result
}

// existingNames loads all attribute names for the tenant, lowercased
func (h *ImportHandler) existingNames(ctx context.Context, tenantID string) (map[string]struct{}, error) {
	names := make(map[string]struct{})
	page := 1
	for {
		attributes, total, err := h.repo.GetAttributes(ctx, tenantID, page, 200, false)
		if err != nil {
			return nil, err
		}
		for _, a := range attributes {
			names[strings.ToLower(a.Name)] = struct{}{}
		}
		if int64(len(names)) >= total || len(attributes) == 0 {
			return names, nil
		}
		page++
	}
}

// parseCSV parses a CSV file into rows
func (h *ImportHandler) parseCSV(file io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}

	var rows []map[string]string
	lineNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", lineNum+1, err)
		}

		row := make(map[string]string)
		for i, value := range record {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(lineNum + 1) // Track row number for error reporting
		rows = append(rows, row)
		lineNum++
	}

	return rows, nil
}

// parseXLSX parses an Excel file into rows
func (h *ImportHandler) parseXLSX(file io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, "Attributes") {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row")
	}

	headers := excelRows[0]
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}

	var rows []map[string]string
	for rowIdx, excelRow := range excelRows[1:] {
		row := make(map[string]string)
		for i, value := range excelRow {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(rowIdx + 2) // Track row number (1-indexed, +1 for header)
		rows = append(rows, row)
	}

	return rows, nil
}

// addError is a helper to add an error to the result
func (h *ImportHandler) addError(result *models.ImportResult, rowNum int, column, code, message string) {
	result.Errors = append(result.Errors, models.ImportRowError{
		Row:     rowNum,
		Column:  column,
		Code:    code,
		Message: message,
	})
}

// parseValues splits a pipe-separated value list, dropping empties and
// duplicates while preserving order
func parseValues(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// optionalString returns nil for empty strings, pointer otherwise
func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// parseOptionalInt parses an optional integer from a row field
func parseOptionalInt(value string) *int {
	if value == "" {
		return nil
	}
	if num, err := strconv.Atoi(value); err == nil {
		return &num
	}
	return nil
}

func stringPtr(value string) *string {
	return &value
}

// parseOptionalBool parses an optional boolean from a row field
func parseOptionalBool(value string) *bool {
	if value == "" {
		return nil
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return &b
	}
	return nil
}
