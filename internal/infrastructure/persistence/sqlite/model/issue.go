package model

import "time"

// Issue owns its label links, comments and audit rows; deleting an issue cascades to them.
type Issue struct {
	IssueID     uint64       `gorm:"column:issue_id;primaryKey;autoIncrement"`
	Title       string       `gorm:"column:title;type:varchar(255);not null"`
	Description string       `gorm:"column:description;type:text;not null"`
	Status      string       `gorm:"column:status;type:varchar(50);not null;default:'OPEN';index"`
	AssigneeID  *uint64      `gorm:"column:assignee_id;index"`
	Assignee    *User        `gorm:"foreignKey:AssigneeID;references:UserID"`
	Version     int64        `gorm:"column:version;not null;default:1"`
	CreatedAt   time.Time    `gorm:"column:created_at;not null;index"`
	ClosedAt    *time.Time   `gorm:"column:closed_at"`
	IssueLabels []IssueLabel `gorm:"foreignKey:IssueID;references:IssueID;constraint:OnDelete:CASCADE"`
	Comments    []Comment    `gorm:"foreignKey:IssueID;references:IssueID;constraint:OnDelete:CASCADE"`
	AuditLogs   []AuditLog   `gorm:"foreignKey:IssueID;references:IssueID;constraint:OnDelete:CASCADE"`
}

func (Issue) TableName() string {
	return "issues"
}
