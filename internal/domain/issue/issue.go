package issue

import (
	"encoding/json"
	"time"
)

type User struct {
	UserID uint64 `json:"id"`
	Name   string `json:"name"`
}

type Label struct {
	LabelID uint64 `json:"id"`
	Name    string `json:"name"`
}

// Issue is a snapshot of a stored issue with its assignee and label set resolved.
type Issue struct {
	IssueID     uint64     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	AssigneeID  *uint64    `json:"-"`
	Assignee    *User      `json:"assignee"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	ClosedAt    *time.Time `json:"closed_at"`
	Labels      []Label    `json:"labels"`
}

func (i Issue) LabelIDs() []uint64 {
	ids := make([]uint64, 0, len(i.Labels))
	for _, label := range i.Labels {
		ids = append(ids, label.LabelID)
	}
	return ids
}

type Comment struct {
	CommentID uint64    `json:"id"`
	IssueID   uint64    `json:"-"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditAction string

const (
	AuditCreateIssue AuditAction = "CREATE_ISSUE"
	AuditUpdate      AuditAction = "UPDATE"
	AuditLabelUpdate AuditAction = "LABEL_UPDATE"
	AuditComment     AuditAction = "COMMENT"
)

// AuditEntry is an immutable record of one state-changing operation on an issue.
type AuditEntry struct {
	AuditID   uint64          `json:"id"`
	IssueID   uint64          `json:"issue_id"`
	Action    AuditAction     `json:"action"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}
