package issue

import "issuetracker/internal/errs"

var (
	ErrIssueNotFound   = errs.NotFoundf("issue not found")
	ErrUserNotFound    = errs.NotFoundf("user not found")
	ErrVersionConflict = errs.Conflictf("version conflict")

	ErrInvalidStatus       = errs.Validationf("invalid status")
	ErrTitleRequired       = errs.Validationf("title is required")
	ErrDescriptionRequired = errs.Validationf("description is required")
	ErrBodyRequired        = errs.Validationf("comment body is required")
	ErrUnknownAssignee     = errs.Validationf("assignee not found")

	// Bulk path is strict about unresolved references.
	ErrSomeIssuesNotFound = errs.Validationf("some issues not found")
	ErrInvalidLabelID     = errs.Validationf("invalid label id")
)
