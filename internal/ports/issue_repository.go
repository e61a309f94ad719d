package ports

import (
	"context"
	"encoding/json"
	"time"

	"issuetracker/internal/domain/issue"
)

type IssueFilter struct {
	Status   issue.Status
	LabelIDs []uint64
}

type IssueCreate struct {
	Title       string
	Description string
	Status      issue.Status
	AssigneeID  *uint64
	LabelIDs    []uint64
	CreatedAt   time.Time
}

// IssueFieldsUpdate is the full set of mutable columns written by a versioned update.
type IssueFieldsUpdate struct {
	Title       string
	Description string
	Status      issue.Status
	ClosedAt    *time.Time
}

type CommentCreate struct {
	IssueID   uint64
	Body      string
	CreatedAt time.Time
}

type AuditCreate struct {
	IssueID   uint64
	Action    issue.AuditAction
	Details   json.RawMessage
	CreatedAt time.Time
}

type IssueReadRepository interface {
	GetIssue(ctx context.Context, issueID uint64) (issue.Issue, error)
	ListIssues(ctx context.Context, filter IssueFilter) ([]issue.Issue, error)
	ListComments(ctx context.Context, issueID uint64) ([]issue.Comment, error)
	ListAuditEntries(ctx context.Context, issueID uint64) ([]issue.AuditEntry, error)
	ListLabels(ctx context.Context) ([]issue.Label, error)
	FindLabels(ctx context.Context, labelIDs []uint64) ([]issue.Label, error)
	ListUsers(ctx context.Context) ([]issue.User, error)
	GetUser(ctx context.Context, userID uint64) (issue.User, error)
	// ExistingIssueIDs returns the subset of issueIDs that are stored.
	ExistingIssueIDs(ctx context.Context, issueIDs []uint64) ([]uint64, error)
}

type IssueRepository interface {
	IssueReadRepository
	CreateIssue(ctx context.Context, input IssueCreate) (issue.Issue, error)
	// UpdateIssueFields writes fields and bumps version only if the stored version still
	// equals expectedVersion; otherwise it returns issue.ErrVersionConflict.
	UpdateIssueFields(ctx context.Context, issueID uint64, expectedVersion int64, fields IssueFieldsUpdate) error
	// BumpIssues increments version on every issue in issueIDs and, when status is set,
	// overwrites their status. It returns the number of rows touched.
	BumpIssues(ctx context.Context, issueIDs []uint64, status *issue.Status) (int64, error)
	ReplaceIssueLabels(ctx context.Context, issueIDs []uint64, labelIDs []uint64) error
	CreateComment(ctx context.Context, input CommentCreate) (issue.Comment, error)
	AppendAuditEntry(ctx context.Context, input AuditCreate) (issue.AuditEntry, error)
	UpsertLabel(ctx context.Context, name string) (issue.Label, error)
	UpsertUser(ctx context.Context, name string) (issue.User, error)
}
