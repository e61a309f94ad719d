package model

type Label struct {
	LabelID     uint64       `gorm:"column:label_id;primaryKey;autoIncrement"`
	Name        string       `gorm:"column:name;type:varchar(50);not null;uniqueIndex"`
	IssueLabels []IssueLabel `gorm:"foreignKey:LabelID;references:LabelID;constraint:OnDelete:CASCADE"`
}

func (Label) TableName() string {
	return "labels"
}

type User struct {
	UserID uint64 `gorm:"column:user_id;primaryKey;autoIncrement"`
	Name   string `gorm:"column:name;type:varchar(100);not null;uniqueIndex"`
}

func (User) TableName() string {
	return "users"
}
