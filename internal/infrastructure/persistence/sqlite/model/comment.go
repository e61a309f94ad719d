package model

import "time"

type Comment struct {
	CommentID uint64    `gorm:"column:comment_id;primaryKey;autoIncrement"`
	IssueID   uint64    `gorm:"column:issue_id;not null;index"`
	Body      string    `gorm:"column:body;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (Comment) TableName() string {
	return "comments"
}

// AuditLog rows are append-only. DetailsJSON holds the action-specific before/after document.
type AuditLog struct {
	AuditID     uint64    `gorm:"column:audit_id;primaryKey;autoIncrement"`
	IssueID     uint64    `gorm:"column:issue_id;not null;index"`
	Action      string    `gorm:"column:action;type:varchar(50);not null"`
	DetailsJSON string    `gorm:"column:details;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// All returns every table model in dependency order, for schema migration.
func All() []any {
	return []any{
		&User{},
		&Label{},
		&Issue{},
		&IssueLabel{},
		&Comment{},
		&AuditLog{},
		&Meta{},
	}
}
