package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	domainRepos "hmr-builders.backend/internal/domain/repositories"
)

type contextKey string

const (
	txKey contextKey = "tx_db"
)

var (
	commitTx = func(tx *gorm.DB) error { return tx.Commit().Error }
)

// UnitOfWorkImpl implements UnitOfWork using GORM
type UnitOfWorkImpl struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

var _ domainRepos.UnitOfWork = (*UnitOfWorkImpl)(nil)

// NewUnitOfWork creates a new UnitOfWork. On PostgreSQL every transaction waits
// at most lockTimeout for row locks; zero leaves the server default.
func NewUnitOfWork(db *gorm.DB, lockTimeout time.Duration) *UnitOfWorkImpl {
	return &UnitOfWorkImpl{db: db, lockTimeout: lockTimeout}
}

// Do executes the given function within a transaction scope
func (u *UnitOfWorkImpl) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	// Nested calls join the outer transaction.
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := u.applyLockTimeout(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	txCtx := context.WithValue(ctx, txKey, tx)
	if err := fn(txCtx); err != nil {
		tx.Rollback()
		return translateError(err)
	}

	if err := commitTx(tx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", translateError(err))
	}
	return nil
}

func (u *UnitOfWorkImpl) applyLockTimeout(tx *gorm.DB) error {
	if u.lockTimeout <= 0 || tx.Dialector.Name() != "postgres" {
		return nil
	}
	// SET does not accept bind parameters.
	stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", u.lockTimeout.Milliseconds())
	return tx.Exec(stmt).Error
}

// GetDB returns the transaction from ctx, or the base handle.
func (u *UnitOfWorkImpl) GetDB(ctx context.Context) *gorm.DB {
	return GetDB(ctx, u.db)
}

// GetDB is used by every repository in this package so calls made inside
// UnitOfWork.Do share its transaction.
func GetDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
