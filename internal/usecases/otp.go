package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/pkg/logger"
	"hmr-builders.backend/pkg/redis"
)

// OTPStore issues and consumes one-time codes.
type OTPStore interface {
	Issue(ctx context.Context, purpose, subject string) (string, error)
	Verify(ctx context.Context, purpose, subject, code string) error
	TTL() time.Duration
}

// OTPSender delivers a code to the user.
type OTPSender interface {
	Send(ctx context.Context, userID uuid.UUID, purpose, code string) error
}

// LogOTPSender writes codes to the log in development and drops them otherwise.
type LogOTPSender struct {
	env string
}

func NewLogOTPSender(env string) *LogOTPSender {
	return &LogOTPSender{env: env}
}

func (s *LogOTPSender) Send(ctx context.Context, userID uuid.UUID, purpose, code string) error {
	if s.env != "development" {
		logger.Info(ctx, "OTP issued", zap.String("user_id", userID.String()), zap.String("purpose", purpose))
		return nil
	}
	logger.Info(ctx, "OTP issued (development delivery)",
		zap.String("user_id", userID.String()),
		zap.String("purpose", purpose),
		zap.String("otp", code),
	)
	return nil
}

// mapOTPError converts store errors into domain errors.
func mapOTPError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.ErrOTPNotFound), errors.Is(err, redis.ErrOTPMismatch):
		return domainerrors.ErrOTPInvalid
	case errors.Is(err, redis.ErrOTPAttemptsExceeded):
		return domainerrors.ErrOTPLocked
	case errors.Is(err, redis.ErrOTPCooldown):
		return domainerrors.ErrOTPCooldown
	default:
		return err
	}
}
