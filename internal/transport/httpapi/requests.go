package httpapi

import (
	"github.com/invopop/jsonschema"
)

// CreateIssueRequest is the body of POST /issues.
type CreateIssueRequest struct {
	Title       string   `json:"title" jsonschema:"required,minLength=1"`
	Description string   `json:"description" jsonschema:"required,minLength=1"`
	Status      string   `json:"status,omitempty" jsonschema:"enum=OPEN,enum=IN_PROGRESS,enum=CLOSED,default=OPEN"`
	LabelIDs    []uint64 `json:"label_ids,omitempty"`
	AssigneeID  *uint64  `json:"assignee_id,omitempty"`
}

// UpdateIssueRequest documents the body of PATCH /issues/{id}. The handler decodes key
// presence itself; omitted fields are left unchanged.
type UpdateIssueRequest struct {
	Title       *string `json:"title,omitempty" jsonschema:"minLength=1"`
	Description *string `json:"description,omitempty" jsonschema:"minLength=1"`
	Status      *string `json:"status,omitempty" jsonschema:"enum=OPEN,enum=IN_PROGRESS,enum=CLOSED"`
	Version     int64   `json:"version" jsonschema:"required,minimum=1"`
}

// SetLabelsRequest is the body of PUT /issues/{id}/labels.
type SetLabelsRequest struct {
	LabelIDs *[]uint64 `json:"label_ids" jsonschema:"required"`
}

// BulkUpdateRequest is the body of POST /issues/bulk-update.
type BulkUpdateRequest struct {
	IssueIDs *[]uint64 `json:"issue_ids" jsonschema:"required"`
	Status   *string   `json:"status,omitempty" jsonschema:"enum=OPEN,enum=IN_PROGRESS,enum=CLOSED"`
	LabelIDs *[]uint64 `json:"label_ids,omitempty"`
}

// CommentRequest is the body of POST /issues/{id}/comments.
type CommentRequest struct {
	Body string `json:"body" jsonschema:"required,minLength=1"`
}

// PayloadSchemas returns the JSON schema of every request body, keyed by payload name.
func PayloadSchemas() map[string]*jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	return map[string]*jsonschema.Schema{
		"create_issue": reflector.Reflect(&CreateIssueRequest{}),
		"update_issue": reflector.Reflect(&UpdateIssueRequest{}),
		"set_labels":   reflector.Reflect(&SetLabelsRequest{}),
		"bulk_update":  reflector.Reflect(&BulkUpdateRequest{}),
		"comment":      reflector.Reflect(&CommentRequest{}),
	}
}
