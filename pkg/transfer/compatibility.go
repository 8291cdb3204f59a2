package transfer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Issue messages reported by ValidateFormCompatibility.
const (
	IssueMissingTitle   = "Missing form title"
	IssueFieldsNotArray = "fields must be an array"
	IssueRowsNotArray   = "rows must be an array"
	IssueNotObject      = "form data must be a JSON object"
)

// CompatibilityReport is the dry-run result shown before an import.
type CompatibilityReport struct {
	IsValid   bool     `json:"isValid"`
	Version   string   `json:"version"`
	Issues    []string `json:"issues"`
	CanImport bool     `json:"canImport"`
}

// ValidateFormCompatibility inspects data without importing it. A missing
// title is reported but does not block CanImport; anything else does.
func ValidateFormCompatibility(data []byte) CompatibilityReport {
	report := CompatibilityReport{Version: "unknown", Issues: []string{}}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("Invalid JSON: %v", err))
		return report
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		report.Issues = append(report.Issues, IssueNotObject)
		return report
	}

	payload := obj
	if inner, wrapped := obj["formData"]; wrapped {
		if version, ok := obj["version"].(string); ok && version != "" {
			report.Version = version
			if !supportedVersion(version) {
				report.Issues = append(report.Issues, fmt.Sprintf("Unsupported version %s", version))
			}
		}
		payload, ok = inner.(map[string]any)
		if !ok {
			report.Issues = append(report.Issues, "formData: "+IssueNotObject)
			return report
		}
	} else {
		report.Version = "legacy"
	}

	blocking := len(report.Issues)
	if title, _ := payload["title"].(string); strings.TrimSpace(title) == "" {
		report.Issues = append(report.Issues, IssueMissingTitle)
	}

	_, fieldsOK := payload["fields"].([]any)
	if !fieldsOK {
		report.Issues = append(report.Issues, IssueFieldsNotArray)
		blocking++
	}
	_, rowsOK := payload["rows"].([]any)
	if !rowsOK {
		report.Issues = append(report.Issues, IssueRowsNotArray)
		blocking++
	}

	if fieldsOK && rowsOK {
		if validator, err := DefaultValidator(); err == nil {
			issues := validator.Validate(SchemaInput, payload)
			report.Issues = append(report.Issues, issues...)
			blocking += len(issues)
		}
	}

	report.IsValid = len(report.Issues) == 0
	report.CanImport = blocking == 0 && fieldsOK && rowsOK
	return report
}
