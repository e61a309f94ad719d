package model

type IssueLabel struct {
	IssueID uint64 `gorm:"column:issue_id;not null;primaryKey"`
	LabelID uint64 `gorm:"column:label_id;not null;primaryKey;index"`
}

func (IssueLabel) TableName() string {
	return "issue_labels"
}
