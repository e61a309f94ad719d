package model

import "time"

// SchemaVersion is bumped whenever a migration changes the shape of existing tables.
const SchemaVersion = "1"

// Meta is a key/value table describing the database itself.
type Meta struct {
	Key       string    `gorm:"column:key;type:text;primaryKey"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (Meta) TableName() string {
	return "tracker_meta"
}
