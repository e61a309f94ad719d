package meta

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"issuetracker/internal/errs"
	"issuetracker/internal/infrastructure/persistence/sqlite/model"
)

const (
	KeySchemaVersion    = "schema_version"
	KeySchemaMigratedAt = "schema_migrated_at"
)

// Store reads and writes database metadata such as the schema version.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if ctx == nil {
		return "", false, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", false, errs.Wrap(err, "check context")
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return "", false, errors.New("key is required")
	}

	var row model.Meta
	if err := s.db.WithContext(ctx).Where("key = ?", trimmedKey).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "query meta by key")
	}
	return row.Value, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return errors.New("key is required")
	}

	row := model.Meta{Key: trimmedKey, Value: value, UpdatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      row.Value,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert meta key")
	}
	return nil
}
