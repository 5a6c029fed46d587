package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/infrastructure/models"
	"hmr-builders.backend/pkg/utils"
)

type WalletTransactionRepository struct {
	db *gorm.DB
}

func NewWalletTransactionRepository(db *gorm.DB) *WalletTransactionRepository {
	return &WalletTransactionRepository{db: db}
}

func (r *WalletTransactionRepository) Create(ctx context.Context, tx *entities.WalletTransaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	m := &models.WalletTransaction{
		ID:              tx.ID,
		UserID:          tx.UserID,
		PaymentMethodID: tx.PaymentMethodID,
		TransactionType: string(tx.TransactionType),
		Amount:          tx.Amount,
		Currency:        tx.Currency,
		ExchangeRate:    tx.ExchangeRate,
		AmountInBase:    tx.AmountInBase,
		Description:     tx.Description,
		Status:          string(tx.Status),
		OTPVerified:     tx.OTPVerified,
		ProcessedAt:     tx.ProcessedAt.Ptr(),
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *WalletTransactionRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entities.WalletTransaction, error) {
	var m models.WalletTransaction
	if err := GetDB(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toWalletTransactionEntity(&m), nil
}

func (r *WalletTransactionRepository) List(ctx context.Context, userID uuid.UUID, filter entities.WalletTransactionFilter, page utils.PaginationParams) ([]*entities.WalletTransaction, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.WalletTransaction{}).Where("user_id = ?", userID)
	if filter.Type != "" {
		query = query.Where("transaction_type = ?", string(filter.Type))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var rows []models.WalletTransaction
	if err := query.Session(&gorm.Session{}).
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.CalculateOffset()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*entities.WalletTransaction, 0, len(rows))
	for i := range rows {
		items = append(items, toWalletTransactionEntity(&rows[i]))
	}
	return items, total, nil
}

// Settle is guarded by status = pending so a transaction settles at most once.
func (r *WalletTransactionRepository) Settle(ctx context.Context, id uuid.UUID, status entities.TransactionStatus, otpVerified bool, at time.Time) error {
	result := GetDB(ctx, r.db).Model(&models.WalletTransaction{}).
		Where("id = ? AND status = ?", id, string(entities.TransactionPending)).
		Updates(map[string]interface{}{
			"status":       string(status),
			"otp_verified": otpVerified,
			"processed_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidState
	}
	return nil
}

func (r *WalletTransactionRepository) ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	var ids []uuid.UUID
	if err := GetDB(ctx, r.db).Model(&models.WalletTransaction{}).
		Where("status = ? AND created_at < ?", string(entities.TransactionPending), cutoff).
		Order("created_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	now := time.Now()
	result := GetDB(ctx, r.db).Model(&models.WalletTransaction{}).
		Where("id IN ? AND status = ?", ids, string(entities.TransactionPending)).
		Updates(map[string]interface{}{
			"status":       string(entities.TransactionExpired),
			"processed_at": now,
			"updated_at":   now,
		})
	return result.RowsAffected, result.Error
}

func toWalletTransactionEntity(m *models.WalletTransaction) *entities.WalletTransaction {
	return &entities.WalletTransaction{
		ID:              m.ID,
		UserID:          m.UserID,
		PaymentMethodID: m.PaymentMethodID,
		TransactionType: entities.TransactionType(m.TransactionType),
		Amount:          m.Amount,
		Currency:        m.Currency,
		ExchangeRate:    m.ExchangeRate,
		AmountInBase:    m.AmountInBase,
		Description:     m.Description,
		Status:          entities.TransactionStatus(m.Status),
		OTPVerified:     m.OTPVerified,
		ProcessedAt:     null.TimeFromPtr(m.ProcessedAt),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
