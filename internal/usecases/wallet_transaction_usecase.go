package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/domain/repositories"
	"hmr-builders.backend/internal/infrastructure/fx"
	"hmr-builders.backend/pkg/logger"
	"hmr-builders.backend/pkg/metrics"
	"hmr-builders.backend/pkg/utils"
)

// WalletTransactionUsecase handles deposits and the wallet ledger.
type WalletTransactionUsecase struct {
	txRepo       repositories.WalletTransactionRepository
	walletRepo   repositories.WalletRepository
	methodRepo   repositories.PaymentMethodRepository
	uow          repositories.UnitOfWork
	rates        RateTable
	otp          OTPStore
	sender       OTPSender
	cache        SummaryCache
	otpThreshold decimal.Decimal
}

func NewWalletTransactionUsecase(
	txRepo repositories.WalletTransactionRepository,
	walletRepo repositories.WalletRepository,
	methodRepo repositories.PaymentMethodRepository,
	uow repositories.UnitOfWork,
	rates RateTable,
	otp OTPStore,
	sender OTPSender,
	cache SummaryCache,
	otpThreshold decimal.Decimal,
) *WalletTransactionUsecase {
	return &WalletTransactionUsecase{
		txRepo:       txRepo,
		walletRepo:   walletRepo,
		methodRepo:   methodRepo,
		uow:          uow,
		rates:        rates,
		otp:          otp,
		sender:       sender,
		cache:        cache,
		otpThreshold: otpThreshold,
	}
}

// Deposit converts the amount into the base currency and credits the wallet.
// Deposits at or above the OTP threshold stay pending until VerifyOTP.
func (u *WalletTransactionUsecase) Deposit(ctx context.Context, userID uuid.UUID, input *entities.DepositInput) (*entities.DepositResult, error) {
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))

	var details []domainerrors.FieldError
	methodID, ok := utils.ParseUUID(input.PaymentMethodID)
	if !ok {
		details = append(details, domainerrors.FieldError{Field: "paymentMethodId", Message: "invalid payment method id"})
	}
	if !input.Amount.IsPositive() {
		details = append(details, domainerrors.FieldError{Field: "amount", Message: "must be a positive amount"})
	} else if !wholeCents(input.Amount) {
		details = append(details, domainerrors.FieldError{Field: "amount", Message: "must have at most 2 decimal places"})
	}
	if len(details) > 0 {
		metrics.ObserveDeposit(currency, "invalid")
		return nil, domainerrors.Validation("Invalid deposit request", details...)
	}

	conv, err := u.rates.Convert(input.Amount, currency)
	if err != nil {
		metrics.ObserveDeposit(currency, "invalid")
		if errors.Is(err, fx.ErrUnsupportedCurrency) {
			return nil, domainerrors.ErrUnsupportedCurrency
		}
		return nil, err
	}

	method, err := u.methodRepo.GetByIDForUser(ctx, methodID, userID)
	if err != nil {
		metrics.ObserveDeposit(currency, "invalid")
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Payment method not found")
		}
		return nil, err
	}
	if !method.Usable() {
		metrics.ObserveDeposit(currency, "invalid")
		return nil, domainerrors.ErrPaymentMethodState
	}

	tx := &entities.WalletTransaction{
		ID:              utils.GenerateUUIDv7(),
		UserID:          userID,
		PaymentMethodID: method.ID,
		TransactionType: entities.TransactionDeposit,
		Amount:          input.Amount,
		Currency:        conv.Currency,
		ExchangeRate:    conv.Rate,
		AmountInBase:    conv.AmountInBase,
		Description:     strings.TrimSpace(input.Description),
		CreatedAt:       timeNow(),
	}

	if u.otpThreshold.IsPositive() && conv.AmountInBase.GreaterThanOrEqual(u.otpThreshold) {
		return u.pendingDeposit(ctx, tx)
	}

	var wallet *entities.Wallet
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		tx.Status = entities.TransactionCompleted
		tx.ProcessedAt = null.TimeFrom(tx.CreatedAt)
		if err := u.txRepo.Create(txCtx, tx); err != nil {
			return err
		}
		if err := u.walletRepo.Credit(txCtx, userID, conv.AmountInBase); err != nil {
			return err
		}
		var err error
		wallet, err = u.walletRepo.GetByUserID(txCtx, userID)
		return err
	})
	if err != nil {
		metrics.ObserveDeposit(conv.Currency, "error")
		logger.Error(ctx, "Deposit failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, err
	}

	metrics.ObserveDeposit(conv.Currency, "completed")
	invalidateSummary(ctx, u.cache, userID)
	logger.Info(ctx, "Deposit completed",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("amount_in_base", conv.AmountInBase.StringFixed(2)),
	)
	return &entities.DepositResult{Transaction: tx, Wallet: wallet}, nil
}

func (u *WalletTransactionUsecase) pendingDeposit(ctx context.Context, tx *entities.WalletTransaction) (*entities.DepositResult, error) {
	tx.Status = entities.TransactionPending
	if err := u.txRepo.Create(ctx, tx); err != nil {
		metrics.ObserveDeposit(tx.Currency, "error")
		return nil, err
	}

	result := &entities.DepositResult{Transaction: tx, RequiresOTP: true}
	code, err := u.otp.Issue(ctx, OTPPurposeDeposit, tx.ID.String())
	if err != nil {
		// RequestOTP can re-issue the code until the expiry job expires the transaction
		logger.Warn(ctx, "Failed to issue deposit OTP", zap.String("transaction_id", tx.ID.String()), zap.Error(err))
	} else {
		if u.sender != nil {
			if err := u.sender.Send(ctx, tx.UserID, OTPPurposeDeposit, code); err != nil {
				logger.Warn(ctx, "Failed to send deposit OTP", zap.String("transaction_id", tx.ID.String()), zap.Error(err))
			}
		}
		result.OTP = &entities.OTPChallenge{Purpose: OTPPurposeDeposit, ExpiresAt: timeNow().Add(u.otp.TTL())}
	}

	metrics.ObserveDeposit(tx.Currency, "pending")
	logger.Info(ctx, "Deposit awaiting OTP", zap.String("transaction_id", tx.ID.String()), zap.String("user_id", tx.UserID.String()))
	return result, nil
}

// RequestOTP re-issues the code for a pending deposit.
func (u *WalletTransactionUsecase) RequestOTP(ctx context.Context, userID, id uuid.UUID) (*entities.OTPChallenge, error) {
	tx, err := u.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if tx.Status != entities.TransactionPending {
		return nil, domainerrors.BusinessRule(domainerrors.CodeInvalidState, "Transaction is not awaiting verification", domainerrors.ErrInvalidState)
	}

	code, err := u.otp.Issue(ctx, OTPPurposeDeposit, id.String())
	if err != nil {
		return nil, mapOTPError(err)
	}
	if u.sender != nil {
		if err := u.sender.Send(ctx, userID, OTPPurposeDeposit, code); err != nil {
			return nil, err
		}
	}
	logger.Info(ctx, "Deposit OTP re-issued", zap.String("transaction_id", id.String()), zap.String("user_id", userID.String()))
	return &entities.OTPChallenge{Purpose: OTPPurposeDeposit, ExpiresAt: timeNow().Add(u.otp.TTL())}, nil
}

// VerifyOTP settles a pending deposit and credits the wallet.
func (u *WalletTransactionUsecase) VerifyOTP(ctx context.Context, userID, id uuid.UUID, code string) (*entities.DepositResult, error) {
	tx, err := u.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if tx.Status != entities.TransactionPending {
		return nil, domainerrors.BusinessRule(domainerrors.CodeInvalidState, "Transaction is not awaiting verification", domainerrors.ErrInvalidState)
	}
	if err := mapOTPError(u.otp.Verify(ctx, OTPPurposeDeposit, id.String(), code)); err != nil {
		return nil, err
	}

	var wallet *entities.Wallet
	now := timeNow()
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.txRepo.Settle(txCtx, id, entities.TransactionCompleted, true, now); err != nil {
			return err
		}
		if err := u.walletRepo.Credit(txCtx, userID, tx.AmountInBase); err != nil {
			return err
		}
		var err error
		wallet, err = u.walletRepo.GetByUserID(txCtx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidState) {
			// expired or settled concurrently
			return nil, domainerrors.BusinessRule(domainerrors.CodeInvalidState, "Transaction is not awaiting verification", err)
		}
		return nil, err
	}

	tx.Status = entities.TransactionCompleted
	tx.OTPVerified = true
	tx.ProcessedAt = null.TimeFrom(now)
	metrics.ObserveDeposit(tx.Currency, "completed")
	invalidateSummary(ctx, u.cache, userID)
	logger.Info(ctx, "Deposit verified", zap.String("transaction_id", id.String()), zap.String("user_id", userID.String()))
	return &entities.DepositResult{Transaction: tx, Wallet: wallet}, nil
}

func (u *WalletTransactionUsecase) List(ctx context.Context, userID uuid.UUID, filter entities.WalletTransactionFilter, page utils.PaginationParams) ([]*entities.WalletTransaction, int64, error) {
	return u.txRepo.List(ctx, userID, filter, page)
}

// Get returns one of the user's transactions.
func (u *WalletTransactionUsecase) Get(ctx context.Context, userID, id uuid.UUID) (*entities.WalletTransaction, error) {
	tx, err := u.txRepo.GetByIDForUser(ctx, id, userID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.NotFound("Transaction not found")
	}
	return tx, err
}

// Balance returns the user's wallet, creating it when missing.
func (u *WalletTransactionUsecase) Balance(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	return u.walletRepo.GetOrCreate(ctx, userID)
}
