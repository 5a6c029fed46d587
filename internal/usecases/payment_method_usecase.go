package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/domain/repositories"
	"hmr-builders.backend/internal/infrastructure/fx"
	"hmr-builders.backend/pkg/card"
	"hmr-builders.backend/pkg/crypto"
	"hmr-builders.backend/pkg/logger"
	"hmr-builders.backend/pkg/utils"
)

// RateTable converts amounts into the base currency.
type RateTable interface {
	Rate(currency string) (decimal.Decimal, error)
	Convert(amount decimal.Decimal, currency string) (fx.Conversion, error)
}

var (
	timeNow    = time.Now
	hashSecret = crypto.HashSecret
)

// PaymentMethodUsecase manages stored cards.
type PaymentMethodUsecase struct {
	repo           repositories.PaymentMethodRepository
	uow            repositories.UnitOfWork
	otp            OTPStore
	sender         OTPSender
	rates          RateTable
	fingerprintKey string
}

func NewPaymentMethodUsecase(
	repo repositories.PaymentMethodRepository,
	uow repositories.UnitOfWork,
	otp OTPStore,
	sender OTPSender,
	rates RateTable,
	fingerprintKey string,
) *PaymentMethodUsecase {
	return &PaymentMethodUsecase{
		repo:           repo,
		uow:            uow,
		otp:            otp,
		sender:         sender,
		rates:          rates,
		fingerprintKey: fingerprintKey,
	}
}

// Add validates and stores a card, then sends a verification code for it.
func (u *PaymentMethodUsecase) Add(ctx context.Context, userID uuid.UUID, input *entities.AddPaymentMethodInput) (*entities.AddPaymentMethodResult, error) {
	var method *entities.PaymentMethod
	add := func(txCtx context.Context) error {
		var err error
		method, err = u.create(txCtx, userID, input)
		return err
	}
	err := u.uow.Do(ctx, add)
	if errors.Is(err, domainerrors.ErrDefaultCardTaken) {
		// a concurrent add claimed the default; the rerun sees that card and counts it
		logger.Debug(ctx, "Default card taken concurrently, retrying add", zap.String("user_id", userID.String()))
		err = u.uow.Do(ctx, add)
	}
	if err != nil {
		return nil, err
	}

	result := &entities.AddPaymentMethodResult{PaymentMethod: method}
	challenge, err := u.issue(ctx, userID, method.ID)
	if err != nil {
		// the card is stored; the client can request a new code
		logger.Warn(ctx, "Failed to issue payment method OTP", zap.String("payment_method_id", method.ID.String()), zap.Error(err))
	} else {
		result.OTP = challenge
	}
	return result, nil
}

// create runs inside the caller's unit of work so registration can attach a card.
func (u *PaymentMethodUsecase) create(ctx context.Context, userID uuid.UUID, input *entities.AddPaymentMethodInput) (*entities.PaymentMethod, error) {
	if input == nil {
		return nil, domainerrors.BadRequest("payment method is required")
	}
	digits, brand, currency, err := u.validateCard(input)
	if err != nil {
		return nil, err
	}

	fingerprint := crypto.Fingerprint(u.fingerprintKey, digits)
	exists, err := u.repo.FingerprintExists(ctx, userID, fingerprint)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domainerrors.Conflict(domainerrors.CodeCardExists, "This card is already added to your account", domainerrors.ErrAlreadyExists)
	}

	cvvHash, err := hashSecret(input.CVV)
	if err != nil {
		return nil, err
	}

	active, err := u.repo.CountActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	isDefault := active == 0 || input.SetAsDefault
	if isDefault && active > 0 {
		if err := u.repo.ClearDefault(ctx, userID); err != nil {
			return nil, err
		}
	}

	method := &entities.PaymentMethod{
		ID:               utils.GenerateUUIDv7(),
		UserID:           userID,
		CardType:         entities.CardType(brand),
		CardNumberMasked: card.Mask(digits),
		CardFingerprint:  fingerprint,
		CardHolderName:   strings.TrimSpace(input.CardHolderName),
		ExpiryMonth:      input.ExpiryMonth,
		ExpiryYear:       input.ExpiryYear,
		CVVHash:          cvvHash,
		Currency:         currency,
		BillingAddress:   input.BillingAddress,
		IsDefault:        isDefault,
		Status:           entities.PaymentMethodActive,
	}
	if err := u.repo.Create(ctx, method); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.Conflict(domainerrors.CodeCardExists, "This card is already added to your account", err)
		}
		return nil, err
	}
	return method, nil
}

func (u *PaymentMethodUsecase) validateCard(input *entities.AddPaymentMethodInput) (string, card.Brand, string, error) {
	var details []domainerrors.FieldError

	digits, brand, err := card.ValidateNumber(input.CardNumber)
	if err != nil {
		details = append(details, domainerrors.FieldError{Field: "cardNumber", Message: err.Error()})
	}
	if err := card.ValidateExpiry(input.ExpiryMonth, input.ExpiryYear, timeNow()); err != nil {
		details = append(details, domainerrors.FieldError{Field: "expiryYear", Message: err.Error()})
	}
	if err := card.ValidateCVV(input.CVV); err != nil {
		details = append(details, domainerrors.FieldError{Field: "cvv", Message: err.Error()})
	}
	if len(strings.TrimSpace(input.CardHolderName)) < 2 {
		details = append(details, domainerrors.FieldError{Field: "cardHolderName", Message: "card holder name is required"})
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = DefaultInvestCurrency
	}
	if u.rates != nil {
		if _, err := u.rates.Rate(currency); err != nil {
			details = append(details, domainerrors.FieldError{Field: "currency", Message: "unsupported currency"})
		}
	}

	if len(details) > 0 {
		return "", "", "", domainerrors.Validation("Invalid card details", details...)
	}
	return digits, brand, currency, nil
}

func (u *PaymentMethodUsecase) List(ctx context.Context, userID uuid.UUID) ([]*entities.PaymentMethod, error) {
	return u.repo.ListActiveByUser(ctx, userID)
}

// SetDefault clears the current default and sets id in one unit of work.
func (u *PaymentMethodUsecase) SetDefault(ctx context.Context, userID, id uuid.UUID) (*entities.PaymentMethod, error) {
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := u.repo.GetByIDForUser(txCtx, id, userID); err != nil {
			return err
		}
		if err := u.repo.ClearDefault(txCtx, userID); err != nil {
			return err
		}
		return u.repo.SetDefault(txCtx, id, userID)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Payment method not found")
		}
		return nil, err
	}
	return u.repo.GetByIDForUser(ctx, id, userID)
}

// Delete deactivates a card. A removed default is handed to the newest remaining card.
func (u *PaymentMethodUsecase) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		method, err := u.repo.GetByIDForUser(txCtx, id, userID)
		if err != nil {
			return err
		}
		if method.Status != entities.PaymentMethodActive {
			return domainerrors.ErrNotFound
		}
		if err := u.repo.Deactivate(txCtx, id, userID); err != nil {
			return err
		}
		if !method.IsDefault {
			return nil
		}
		next, err := u.repo.NewestActive(txCtx, userID)
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return u.repo.SetDefault(txCtx, next.ID, userID)
	})
	if errors.Is(err, domainerrors.ErrNotFound) {
		return domainerrors.NotFound("Payment method not found")
	}
	return err
}

// RequestOTP sends a fresh verification code for an unverified card.
func (u *PaymentMethodUsecase) RequestOTP(ctx context.Context, userID, id uuid.UUID) (*entities.OTPChallenge, error) {
	method, err := u.repo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Payment method not found")
		}
		return nil, err
	}
	if method.Status != entities.PaymentMethodActive {
		return nil, domainerrors.ErrPaymentMethodState
	}
	if method.IsVerified {
		return nil, domainerrors.BusinessRule(domainerrors.CodeInvalidState, "Payment method is already verified", domainerrors.ErrInvalidState)
	}
	return u.issue(ctx, userID, id)
}

// Verify consumes the code issued for the card and marks it verified.
func (u *PaymentMethodUsecase) Verify(ctx context.Context, userID, id uuid.UUID, code string) (*entities.PaymentMethod, error) {
	method, err := u.repo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Payment method not found")
		}
		return nil, err
	}
	if method.Status != entities.PaymentMethodActive {
		return nil, domainerrors.ErrPaymentMethodState
	}
	if method.IsVerified {
		return method, nil
	}

	if err := mapOTPError(u.otp.Verify(ctx, OTPPurposePaymentMethod, id.String(), code)); err != nil {
		return nil, err
	}
	if err := u.repo.MarkVerified(ctx, id, userID); err != nil {
		return nil, err
	}
	method.IsVerified = true
	return method, nil
}

func (u *PaymentMethodUsecase) issue(ctx context.Context, userID, id uuid.UUID) (*entities.OTPChallenge, error) {
	code, err := u.otp.Issue(ctx, OTPPurposePaymentMethod, id.String())
	if err != nil {
		return nil, mapOTPError(err)
	}
	if u.sender != nil {
		if err := u.sender.Send(ctx, userID, OTPPurposePaymentMethod, code); err != nil {
			return nil, err
		}
	}
	return &entities.OTPChallenge{Purpose: OTPPurposePaymentMethod, ExpiresAt: timeNow().Add(u.otp.TTL())}, nil
}
