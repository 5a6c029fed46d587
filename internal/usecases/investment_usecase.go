package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/domain/repositories"
	"hmr-builders.backend/pkg/logger"
	"hmr-builders.backend/pkg/metrics"
	"hmr-builders.backend/pkg/utils"
)

// InvestmentUsecase runs token purchases and cancellations.
type InvestmentUsecase struct {
	investmentRepo repositories.InvestmentRepository
	propertyRepo   repositories.PropertyRepository
	walletRepo     repositories.WalletRepository
	uow            repositories.UnitOfWork
	cache          SummaryCache
}

func NewInvestmentUsecase(
	investmentRepo repositories.InvestmentRepository,
	propertyRepo repositories.PropertyRepository,
	walletRepo repositories.WalletRepository,
	uow repositories.UnitOfWork,
	cache SummaryCache,
) *InvestmentUsecase {
	return &InvestmentUsecase{
		investmentRepo: investmentRepo,
		propertyRepo:   propertyRepo,
		walletRepo:     walletRepo,
		uow:            uow,
		cache:          cache,
	}
}

// validatePurchase checks the request before any storage call.
func validatePurchase(input *entities.CreateInvestmentInput) (entities.PaymentMethodKind, error) {
	if input == nil {
		return "", domainerrors.BadRequest("request body is required")
	}
	var details []domainerrors.FieldError
	if strings.TrimSpace(input.PropertyID) == "" {
		details = append(details, domainerrors.FieldError{Field: "propertyId", Message: "property id is required"})
	}
	if input.TokensPurchased <= 0 {
		details = append(details, domainerrors.FieldError{Field: "tokensPurchased", Message: "must be a positive integer"})
	}
	if !input.InvestmentAmount.IsPositive() {
		details = append(details, domainerrors.FieldError{Field: "investmentAmount", Message: "must be a positive amount"})
	} else if !wholeCents(input.InvestmentAmount) {
		details = append(details, domainerrors.FieldError{Field: "investmentAmount", Message: "must have at most 2 decimal places"})
	}
	method := entities.PaymentMethodKind(strings.TrimSpace(input.PaymentMethod))
	if method == "" {
		method = entities.PayByBankTransfer
	}
	if !method.Valid() {
		details = append(details, domainerrors.FieldError{Field: "paymentMethod", Message: "unsupported payment method"})
	}
	if len(details) > 0 {
		return "", domainerrors.Validation("Invalid investment request", details...)
	}
	return method, nil
}

// Purchase buys tokens of one property. The property row stays locked from
// the availability check until commit, so concurrent buyers never oversell.
func (u *InvestmentUsecase) Purchase(ctx context.Context, user *entities.User, input *entities.CreateInvestmentInput) (*entities.Investment, error) {
	start := time.Now()
	method, err := validatePurchase(input)
	if err != nil {
		metrics.ObservePurchase(purchaseInvalid, 0, time.Since(start))
		return nil, err
	}

	n := input.TokensPurchased
	amount := input.InvestmentAmount
	var investment *entities.Investment

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		property, err := u.propertyRepo.GetByRefForUpdate(txCtx, strings.TrimSpace(input.PropertyID))
		if err != nil {
			return err
		}
		if property.Tokenization.AvailableTokens < n {
			return domainerrors.ErrInsufficientTokens
		}

		now := timeNow()
		investment = &entities.Investment{
			ID:               utils.GenerateUUIDv7(),
			UserID:           user.ID,
			PropertyID:       property.ID,
			TokensPurchased:  n,
			InvestmentAmount: amount,
			PricePerToken:    amount.DivRound(decimal.NewFromInt(n), entities.PricePerTokenScale),
			PaymentMethod:    method,
			PaymentStatus:    entities.PaymentCompleted,
			Status:           entities.InvestmentActive,
			ConfirmedAt:      null.TimeFrom(now),
			ActivatedAt:      null.TimeFrom(now),
			CreatedAt:        now,
		}
		if err := u.investmentRepo.Create(txCtx, investment); err != nil {
			return err
		}
		if err := u.propertyRepo.DecrementAvailable(txCtx, property.ID, n); err != nil {
			return err
		}
		if err := u.walletRepo.AddInvestment(txCtx, user.ID, amount, n); err != nil {
			return err
		}
		if method == entities.PayByWallet {
			if err := u.walletRepo.Debit(txCtx, user.ID, amount); err != nil {
				return err
			}
		}

		investment.Property = propertySummary(property)
		return nil
	})

	if err != nil {
		metrics.ObservePurchase(purchaseResult(err), 0, time.Since(start))
		return nil, u.purchaseError(ctx, user.ID, input, err)
	}

	metrics.ObservePurchase(purchaseSuccess, n, time.Since(start))
	invalidateSummary(ctx, u.cache, user.ID)
	logger.Info(ctx, "Investment created",
		zap.String("investment_id", investment.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("property_id", investment.PropertyID.String()),
		zap.Int64("tokens", n),
		zap.String("amount", amount.StringFixed(2)),
	)
	return investment, nil
}

func purchaseResult(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return purchaseNotFound
	case errors.Is(err, domainerrors.ErrInsufficientTokens):
		return purchaseInsufficientTokens
	case errors.Is(err, domainerrors.ErrInsufficientBalance):
		return purchaseInsufficientBalance
	case errors.Is(err, domainerrors.ErrLockTimeout):
		return purchaseConflict
	default:
		return purchaseError
	}
}

func (u *InvestmentUsecase) purchaseError(ctx context.Context, userID uuid.UUID, input *entities.CreateInvestmentInput, err error) error {
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return domainerrors.NotFound("Property not found")
	case errors.Is(err, domainerrors.ErrInsufficientTokens):
		return domainerrors.BusinessRule(domainerrors.CodeInsufficientTokens, "Not enough tokens available", err)
	case errors.Is(err, domainerrors.ErrInsufficientBalance):
		return domainerrors.BusinessRule(domainerrors.CodeInsufficientBalance, "Insufficient wallet balance", err)
	case errors.Is(err, domainerrors.ErrLockTimeout):
		logger.Warn(ctx, "Investment purchase conflicted", zap.String("property", input.PropertyID), zap.Error(err))
		return domainerrors.Retryable("The property is busy, please retry", err)
	default:
		logger.Error(ctx, "Investment purchase failed",
			zap.String("user_id", userID.String()),
			zap.String("property", input.PropertyID),
			zap.Error(err),
		)
		return err
	}
}

// Cancel reverses an investment: tokens go back to the property, wallet
// counters are reduced and wallet-funded purchases are refunded.
func (u *InvestmentUsecase) Cancel(ctx context.Context, user *entities.User, id uuid.UUID) (*entities.Investment, error) {
	current, err := u.investmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Investment not found")
		}
		return nil, err
	}
	if current.UserID != user.ID && !user.IsAdmin() {
		return nil, domainerrors.NotFound("Investment not found")
	}

	var cancelled *entities.Investment
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		// property first, same lock order as Purchase
		if _, err := u.propertyRepo.GetByIDForUpdate(txCtx, current.PropertyID); err != nil {
			return err
		}
		inv, err := u.investmentRepo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if !inv.Status.Cancellable() {
			return domainerrors.ErrInvalidState
		}

		paymentStatus := inv.PaymentStatus
		refund := inv.PaymentMethod == entities.PayByWallet
		if refund {
			paymentStatus = entities.PaymentRefunded
		}
		now := timeNow()
		if err := u.investmentRepo.MarkCancelled(txCtx, inv.ID, paymentStatus, now); err != nil {
			return err
		}
		if err := u.propertyRepo.IncrementAvailable(txCtx, inv.PropertyID, inv.TokensPurchased); err != nil {
			return err
		}
		if err := u.walletRepo.AddInvestment(txCtx, inv.UserID, inv.InvestmentAmount.Neg(), -inv.TokensPurchased); err != nil {
			return err
		}
		if refund {
			if err := u.walletRepo.Credit(txCtx, inv.UserID, inv.InvestmentAmount); err != nil {
				return err
			}
		}

		inv.Status = entities.InvestmentCancelled
		inv.PaymentStatus = paymentStatus
		inv.CancelledAt = null.TimeFrom(now)
		cancelled = inv
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrInvalidState):
			return nil, domainerrors.BusinessRule(domainerrors.CodeInvalidState, "Only active or pending investments can be cancelled", err)
		case errors.Is(err, domainerrors.ErrSupplyExceeded):
			logger.Error(ctx, "Cancellation would exceed property supply",
				zap.String("investment_id", id.String()), zap.String("property_id", current.PropertyID.String()))
			return nil, domainerrors.Conflict(domainerrors.CodeSupplyExceeded, "Restoring these tokens would exceed the property's total supply", err)
		case errors.Is(err, domainerrors.ErrLockTimeout):
			return nil, domainerrors.Retryable("The property is busy, please retry", err)
		}
		return nil, err
	}

	invalidateSummary(ctx, u.cache, cancelled.UserID)
	logger.Info(ctx, "Investment cancelled",
		zap.String("investment_id", cancelled.ID.String()),
		zap.String("user_id", cancelled.UserID.String()),
		zap.Int64("tokens", cancelled.TokensPurchased),
	)
	return cancelled, nil
}

// ListMine lists the user's investments, newest first.
func (u *InvestmentUsecase) ListMine(ctx context.Context, userID uuid.UUID, status entities.InvestmentStatus, page utils.PaginationParams) ([]*entities.Investment, int64, error) {
	return u.investmentRepo.List(ctx, entities.InvestmentFilter{UserID: &userID, Status: status}, page)
}

// Get returns one of the user's investments. Other users' ids look missing.
func (u *InvestmentUsecase) Get(ctx context.Context, userID, id uuid.UUID) (*entities.Investment, error) {
	inv, err := u.investmentRepo.GetByIDForUser(ctx, id, userID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.NotFound("Investment not found")
	}
	return inv, err
}

// Portfolio summarises the user's investments and values holdings at current token prices.
func (u *InvestmentUsecase) Portfolio(ctx context.Context, userID uuid.UUID) (*entities.PortfolioSummary, error) {
	summary, err := u.investmentRepo.Portfolio(ctx, userID)
	if err != nil {
		return nil, err
	}
	holdings, err := u.investmentRepo.Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}
	value := decimal.Zero
	for _, h := range holdings {
		value = value.Add(h.CurrentValue)
	}
	summary.CurrentValue = value
	return summary, nil
}

func propertySummary(p *entities.Property) *entities.PropertySummary {
	summary := &entities.PropertySummary{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		City:          p.Location.City,
		Status:        p.Status,
		PricePerToken: p.Tokenization.PricePerToken,
	}
	if len(p.Images) > 0 {
		summary.Image = p.Images[0]
	}
	return summary
}
