package uow

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"issuetracker/internal/ports"
)

// UnitOfWork implements ports.UnitOfWork with gorm.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithTx opens a transaction, or a savepoint when ctx already carries one.
func (u *UnitOfWork) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if outer := ports.TxFromContext(ctx); outer != nil {
		gormTx, ok := outer.(*gorm.DB)
		if !ok || gormTx == nil {
			return fmt.Errorf("invalid tx in context: %T", outer)
		}
		return gormTx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(ports.WithTxContext(ctx, tx))
		})
	}

	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ports.WithTxContext(ctx, tx))
	})
}
