package issue

import "strings"

const (
	ImportMissingTitle       = "Missing title"
	ImportMissingDescription = "Missing description"
	ImportInvalidStatus      = "Invalid status"
)

// ImportRow is one data row of a tabular import, already trimmed.
type ImportRow struct {
	Row         int
	Title       string
	Description string
	Status      string
}

// NewImportRow trims raw cell values. A blank status cell stays blank and fails Check;
// only a source without a status column defaults to OPEN, which the caller decides.
func NewImportRow(row int, title, description, status string) ImportRow {
	return ImportRow{
		Row:         row,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      strings.TrimSpace(status),
	}
}

// Check returns the first failing rule's message, or "" when the row can be created.
// Rules run in a fixed order: title, description, status.
func (r ImportRow) Check() (Status, string) {
	if r.Title == "" {
		return "", ImportMissingTitle
	}
	if r.Description == "" {
		return "", ImportMissingDescription
	}
	status := Status(r.Status)
	if !status.Valid() {
		return "", ImportInvalidStatus
	}
	return status, ""
}
