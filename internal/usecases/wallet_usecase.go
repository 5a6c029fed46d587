package usecases

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"hmr-builders.backend/internal/domain/entities"
	"hmr-builders.backend/internal/domain/repositories"
	"hmr-builders.backend/pkg/logger"
)

// WalletUsecase serves wallet balances with investment aggregates derived from
// active investments.
type WalletUsecase struct {
	walletRepo     repositories.WalletRepository
	investmentRepo repositories.InvestmentRepository
	cache          SummaryCache
	baseCurrency   string
}

func NewWalletUsecase(
	walletRepo repositories.WalletRepository,
	investmentRepo repositories.InvestmentRepository,
	cache SummaryCache,
	baseCurrency string,
) *WalletUsecase {
	if baseCurrency == "" {
		baseCurrency = DefaultInvestCurrency
	}
	return &WalletUsecase{
		walletRepo:     walletRepo,
		investmentRepo: investmentRepo,
		cache:          cache,
		baseCurrency:   baseCurrency,
	}
}

// GetSummary returns the user's wallet, creating it on first access.
func (u *WalletUsecase) GetSummary(ctx context.Context, userID uuid.UUID) (*entities.WalletSummary, error) {
	if u.cache != nil {
		var cached entities.WalletSummary
		found, err := u.cache.Get(ctx, userID.String(), &cached)
		if err != nil {
			logger.Warn(ctx, "Wallet summary cache read failed", zap.Error(err))
		} else if found {
			return &cached, nil
		}
	}

	wallet, err := u.walletRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	agg, err := u.investmentRepo.AggregateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet.Drifted(agg) {
		logger.Warn(ctx, "Wallet counters differ from active investments",
			zap.String("user_id", userID.String()),
			zap.String("stored_investment", wallet.TotalInvestment.StringFixed(2)),
			zap.String("derived_investment", agg.InvestedAmount.StringFixed(2)),
		)
	}

	summary := &entities.WalletSummary{
		WalletID:          wallet.ID,
		UserID:            userID,
		Currency:          u.baseCurrency,
		AvailableBalance:  wallet.AvailableBalance,
		InvestedAmount:    agg.InvestedAmount,
		TotalTokens:       agg.TotalTokens,
		ActiveInvestments: agg.ActiveInvestments,
		TotalValue:        wallet.AvailableBalance.Add(agg.InvestedAmount),
		UpdatedAt:         wallet.UpdatedAt,
	}

	if u.cache != nil {
		if err := u.cache.Set(ctx, userID.String(), summary); err != nil {
			logger.Warn(ctx, "Wallet summary cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

// Invalidate drops the cached summary of userID.
func (u *WalletUsecase) Invalidate(ctx context.Context, userID uuid.UUID) {
	invalidateSummary(ctx, u.cache, userID)
}
