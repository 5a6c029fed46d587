package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountDeactivated  = errors.New("account deactivated")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrKYCRequired         = errors.New("kyc verification required")
	ErrInsufficientTokens  = errors.New("insufficient tokens")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrSupplyExceeded      = errors.New("available tokens would exceed total supply")
	ErrStaleCounters       = errors.New("wallet counters changed concurrently")
	ErrPaymentMethodState  = errors.New("payment method not usable")
	ErrDefaultCardTaken    = errors.New("another default payment method was stored concurrently")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrOTPInvalid          = errors.New("invalid or expired otp")
	ErrOTPLocked           = errors.New("too many otp attempts")
	ErrOTPCooldown         = errors.New("otp recently sent")
	ErrLockTimeout         = errors.New("lock wait timed out")
	ErrRateLimited         = errors.New("rate limit exceeded")
)

// Category is the coarse error class reported in the "error" field of responses.
type Category string

const (
	CategoryValidation    Category = "ValidationError"
	CategoryAuth          Category = "AuthError"
	CategoryAuthorization Category = "AuthorizationError"
	CategoryNotFound      Category = "NotFoundError"
	CategoryBusinessRule  Category = "BusinessRuleError"
	CategoryConflict      Category = "ConflictError"
	CategoryRateLimit     Category = "RateLimitError"
	CategoryInternal      Category = "InternalError"
)

// Machine readable codes
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeTokenMissing        = "TOKEN_MISSING"
	CodeTokenMalformed      = "TOKEN_MALFORMED"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeAccountDeactivated  = "ACCOUNT_DEACTIVATED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeForbidden           = "FORBIDDEN"
	CodeKYCRequired         = "KYC_REQUIRED"
	CodeNotFound            = "NOT_FOUND"
	CodeUserExists          = "USER_ALREADY_EXISTS"
	CodeInsufficientTokens  = "INSUFFICIENT_TOKENS"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInvalidState        = "INVALID_STATE"
	CodeSupplyExceeded      = "SUPPLY_EXCEEDED"
	CodePaymentMethod       = "PAYMENT_METHOD_UNUSABLE"
	CodeUnsupportedCurrency = "UNSUPPORTED_CURRENCY"
	CodeOTPInvalid          = "OTP_INVALID"
	CodeOTPLocked           = "OTP_LOCKED"
	CodeOTPCooldown         = "OTP_COOLDOWN"
	CodeConflict            = "CONFLICT"
	CodeCardExists          = "CARD_ALREADY_EXISTS"
	CodeTransactionConflict = "TRANSACTION_CONFLICT"
	CodeIdempotencyConflict = "IDEMPOTENCY_CONFLICT"
	CodeRateLimited         = "RATE_LIMITED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError represents application error with HTTP status
type AppError struct {
	Status    int          `json:"-"`
	Category  Category     `json:"error"`
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Details   []FieldError `json:"details,omitempty"`
	Retryable bool         `json:"retryable,omitempty"`
	Err       error        `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, category Category, code, message string, err error) *AppError {
	return &AppError{
		Status:   status,
		Category: category,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}

// Validation reports invalid input, optionally per field.
func Validation(message string, details ...FieldError) *AppError {
	e := NewAppError(http.StatusBadRequest, CategoryValidation, CodeValidation, message, ErrInvalidInput)
	e.Details = details
	return e
}

// BadRequest is a validation error without field details.
func BadRequest(message string) *AppError {
	return Validation(message)
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CategoryNotFound, CodeNotFound, message, ErrNotFound)
}

func Unauthorized(code, message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CategoryAuth, code, message, ErrUnauthorized)
}

func Forbidden(code, message string) *AppError {
	return NewAppError(http.StatusForbidden, CategoryAuthorization, code, message, ErrForbidden)
}

func BusinessRule(code, message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, CategoryBusinessRule, code, message, err)
}

func Conflict(code, message string, err error) *AppError {
	return NewAppError(http.StatusConflict, CategoryConflict, code, message, err)
}

// Retryable marks a conflict the client may safely repeat.
func Retryable(message string, err error) *AppError {
	e := Conflict(CodeTransactionConflict, message, err)
	e.Retryable = true
	return e
}

func TooManyRequests(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, CategoryRateLimit, CodeRateLimited, message, ErrRateLimited)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CategoryInternal, CodeInternalError, "internal server error", err)
}

// FromError maps err onto the response taxonomy. AppErrors pass through,
// known sentinels get their category, anything else is internal.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NotFound("Resource not found")
	case errors.Is(err, ErrInvalidInput):
		return Validation(err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return NewAppError(http.StatusUnauthorized, CategoryAuth, CodeInvalidCredentials, "Invalid email or password", err)
	case errors.Is(err, ErrAccountDeactivated):
		return NewAppError(http.StatusUnauthorized, CategoryAuth, CodeAccountDeactivated, "Account is deactivated", err)
	case errors.Is(err, ErrTokenRevoked), errors.Is(err, ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, CategoryAuth, CodeUnauthorized, "Invalid or expired token", err)
	case errors.Is(err, ErrKYCRequired):
		return NewAppError(http.StatusForbidden, CategoryAuthorization, CodeKYCRequired, "KYC verification required", err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, CategoryAuthorization, CodeForbidden, "Insufficient permissions", err)
	case errors.Is(err, ErrAlreadyExists):
		return Conflict(CodeConflict, "Resource already exists", err)
	case errors.Is(err, ErrInsufficientTokens):
		return BusinessRule(CodeInsufficientTokens, "Insufficient tokens available", err)
	case errors.Is(err, ErrInsufficientBalance):
		return BusinessRule(CodeInsufficientBalance, "Insufficient wallet balance", err)
	case errors.Is(err, ErrInvalidState):
		return BusinessRule(CodeInvalidState, "Operation not allowed in the current state", err)
	case errors.Is(err, ErrSupplyExceeded):
		return Conflict(CodeSupplyExceeded, "Token supply is inconsistent with this operation", err)
	case errors.Is(err, ErrStaleCounters):
		return Retryable("The wallet changed concurrently, please retry", err)
	case errors.Is(err, ErrDefaultCardTaken):
		return Retryable("The default payment method changed concurrently, please retry", err)
	case errors.Is(err, ErrPaymentMethodState):
		return BusinessRule(CodePaymentMethod, "Payment method must be active and verified", err)
	case errors.Is(err, ErrUnsupportedCurrency):
		return BusinessRule(CodeUnsupportedCurrency, "Unsupported currency", err)
	case errors.Is(err, ErrOTPInvalid):
		return BusinessRule(CodeOTPInvalid, "Invalid or expired OTP", err)
	case errors.Is(err, ErrOTPLocked):
		return BusinessRule(CodeOTPLocked, "Too many OTP attempts, request a new code", err)
	case errors.Is(err, ErrOTPCooldown):
		return TooManyRequests("OTP was sent recently, try again shortly")
	case errors.Is(err, ErrLockTimeout):
		return Retryable("The resource is busy, please retry", err)
	case errors.Is(err, ErrRateLimited):
		return TooManyRequests("Too many requests")
	default:
		return InternalError(err)
	}
}
