package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/infrastructure/models"
	"hmr-builders.backend/pkg/utils"
)

// WalletRepository implements wallet data operations
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

var userIDConflict = []clause.Column{{Name: "user_id"}}

func newWalletRow(userID uuid.UUID) models.UserWallet {
	now := time.Now()
	return models.UserWallet{
		ID:               utils.GenerateUUIDv7(),
		UserID:           userID,
		AvailableBalance: decimal.Zero,
		TotalInvestment:  decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// GetOrCreate inserts with ON CONFLICT DO NOTHING, so concurrent first calls
// converge on the same row.
func (r *WalletRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	row := newWalletRow(userID)
	if err := GetDB(ctx, r.db).
		Clauses(clause.OnConflict{Columns: userIDConflict, DoNothing: true}).
		Create(&row).Error; err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, userID)
}

// GetByUserID gets the wallet of a user
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	var m models.UserWallet
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toWalletEntity(&m), nil
}

// AddInvestment applies a purchase (positive) or a reversal (negative) to the counters.
func (r *WalletRepository) AddInvestment(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, tokens int64) error {
	now := time.Now()
	if amount.IsNegative() || tokens < 0 {
		// Reversals clamp at zero; the reconciliation job repairs any drift.
		return GetDB(ctx, r.db).Model(&models.UserWallet{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"total_investment": gorm.Expr("CASE WHEN total_investment + ? < 0 THEN 0 ELSE total_investment + ? END", amount, amount),
				"total_tokens":     gorm.Expr("CASE WHEN total_tokens + ? < 0 THEN 0 ELSE total_tokens + ? END", tokens, tokens),
				"updated_at":       now,
			}).Error
	}

	row := newWalletRow(userID)
	row.TotalInvestment = amount
	row.TotalTokens = tokens
	return GetDB(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns: userIDConflict,
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_investment": gorm.Expr("user_wallets.total_investment + ?", amount),
				"total_tokens":     gorm.Expr("user_wallets.total_tokens + ?", tokens),
				"updated_at":       now,
			}),
		}).
		Create(&row).Error
}

// Credit adds to the available balance, creating the wallet if needed.
func (r *WalletRepository) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domainerrors.ErrInvalidInput
	}
	row := newWalletRow(userID)
	row.AvailableBalance = amount
	return GetDB(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns: userIDConflict,
			DoUpdates: clause.Assignments(map[string]interface{}{
				"available_balance": gorm.Expr("user_wallets.available_balance + ?", amount),
				"updated_at":        time.Now(),
			}),
		}).
		Create(&row).Error
}

// Debit is guarded by available_balance >= amount.
func (r *WalletRepository) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domainerrors.ErrInvalidInput
	}
	result := GetDB(ctx, r.db).Model(&models.UserWallet{}).
		Where("user_id = ? AND available_balance >= ?", userID, amount).
		Updates(map[string]interface{}{
			"available_balance": gorm.Expr("available_balance - ?", amount),
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		if isCheckViolation(result.Error) {
			return domainerrors.ErrInsufficientBalance
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInsufficientBalance
	}
	return nil
}

// SetCounters overwrites the investment counters, compare-and-set against
// the counters held by current.
func (r *WalletRepository) SetCounters(ctx context.Context, current *entities.Wallet, invested decimal.Decimal, tokens int64) error {
	db := GetDB(ctx, r.db)
	result := db.Model(&models.UserWallet{}).
		Where("user_id = ? AND total_investment = ? AND total_tokens = ?", current.UserID, current.TotalInvestment, current.TotalTokens).
		Updates(map[string]interface{}{
			"total_investment": invested,
			"total_tokens":     tokens,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.UserWallet{}).Where("user_id = ?", current.UserID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.ErrNotFound
	}
	return domainerrors.ErrStaleCounters
}

func (r *WalletRepository) List(ctx context.Context) ([]*entities.Wallet, error) {
	var rows []models.UserWallet
	if err := GetDB(ctx, r.db).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	wallets := make([]*entities.Wallet, 0, len(rows))
	for i := range rows {
		wallets = append(wallets, toWalletEntity(&rows[i]))
	}
	return wallets, nil
}

func (r *WalletRepository) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	if err := GetDB(ctx, r.db).Model(&models.UserWallet{}).
		Select("COALESCE(SUM(available_balance), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

func toWalletEntity(m *models.UserWallet) *entities.Wallet {
	return &entities.Wallet{
		ID:               m.ID,
		UserID:           m.UserID,
		AvailableBalance: m.AvailableBalance,
		TotalInvestment:  m.TotalInvestment,
		TotalTokens:      m.TotalTokens,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
