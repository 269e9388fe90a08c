package models

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number, boolean
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity  string                 `json:"entity"`
	Version string                 `json:"version"`
	Columns []ImportTemplateColumn `json:"columns"`
}

// ImportRowError represents an error for a specific row
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Success      bool             `json:"success"`
	TotalRows    int              `json:"totalRows"`
	SuccessCount int              `json:"successCount"`
	CreatedCount int              `json:"createdCount"`
	FailedCount  int              `json:"failedCount"`
	SkippedCount int              `json:"skippedCount"`
	Errors       []ImportRowError `json:"errors,omitempty"`
	CreatedIDs   []string         `json:"createdIds,omitempty"`
}

// AttributeImportTemplate returns the import template definition for
// attributes and their value catalogs.
func AttributeImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "attributes",
		Version: "1.0",
		Columns: []ImportTemplateColumn{
			{Name: "name", Description: "Attribute display name", Required: true, Type: "string", Example: "Color"},
			{Name: "description", Description: "Optional description", Required: false, Type: "string", Example: "Primary color of the item"},
			{Name: "values", Description: "Pipe-separated value list", Required: true, Type: "string", Example: "Red|Blue|Green"},
			{Name: "position", Description: "Sort position (1-based)", Required: false, Type: "number", Example: "1"},
			{Name: "isActive", Description: "Whether the attribute is selectable", Required: false, Type: "boolean", Example: "true"},
		},
	}
}
