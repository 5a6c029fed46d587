package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"hmr-builders.backend/internal/domain/entities"
	"hmr-builders.backend/internal/interfaces/http/response"
	"hmr-builders.backend/internal/usecases"
)

type paymentMethodService interface {
	Add(ctx context.Context, userID uuid.UUID, input *entities.AddPaymentMethodInput) (*entities.AddPaymentMethodResult, error)
	List(ctx context.Context, userID uuid.UUID) ([]*entities.PaymentMethod, error)
	SetDefault(ctx context.Context, userID, id uuid.UUID) (*entities.PaymentMethod, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	RequestOTP(ctx context.Context, userID, id uuid.UUID) (*entities.OTPChallenge, error)
	Verify(ctx context.Context, userID, id uuid.UUID, code string) (*entities.PaymentMethod, error)
}

// PaymentMethodHandler manages stored cards
type PaymentMethodHandler struct {
	paymentMethodUsecase paymentMethodService
}

// NewPaymentMethodHandler creates a new payment method handler
func NewPaymentMethodHandler(paymentMethodUsecase *usecases.PaymentMethodUsecase) *PaymentMethodHandler {
	return &PaymentMethodHandler{paymentMethodUsecase: paymentMethodUsecase}
}

// ListPaymentMethods
// GET /api/payment-methods
func (h *PaymentMethodHandler) ListPaymentMethods(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	methods, err := h.paymentMethodUsecase.List(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if methods == nil {
		methods = []*entities.PaymentMethod{}
	}
	response.Success(c, http.StatusOK, "Payment methods retrieved successfully", gin.H{"data": methods})
}

// AddPaymentMethod stores a card and sends its verification code
// POST /api/payment-methods
func (h *PaymentMethodHandler) AddPaymentMethod(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var input entities.AddPaymentMethodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.paymentMethodUsecase.Add(c.Request.Context(), user.ID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{"data": result.PaymentMethod}
	if result.OTP != nil {
		payload["otp"] = result.OTP
	}
	response.Success(c, http.StatusCreated, "Payment method added successfully", payload)
}

// SetDefaultPaymentMethod
// PUT /api/payment-methods/:id/default
func (h *PaymentMethodHandler) SetDefaultPaymentMethod(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "payment method")
	if !ok {
		return
	}

	method, err := h.paymentMethodUsecase.SetDefault(c.Request.Context(), user.ID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Default payment method updated", gin.H{"data": method})
}

// DeletePaymentMethod deactivates a card
// DELETE /api/payment-methods/:id
func (h *PaymentMethodHandler) DeletePaymentMethod(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "payment method")
	if !ok {
		return
	}

	if err := h.paymentMethodUsecase.Delete(c.Request.Context(), user.ID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Payment method removed successfully", nil)
}

// RequestVerificationOTP sends a fresh verification code
// POST /api/payment-methods/:id/otp
func (h *PaymentMethodHandler) RequestVerificationOTP(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "payment method")
	if !ok {
		return
	}

	challenge, err := h.paymentMethodUsecase.RequestOTP(c.Request.Context(), user.ID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Verification code sent", gin.H{"otp": challenge})
}

// VerifyPaymentMethod consumes a verification code
// POST /api/payment-methods/:id/verify
func (h *PaymentMethodHandler) VerifyPaymentMethod(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "payment method")
	if !ok {
		return
	}
	var input entities.VerifyOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	method, err := h.paymentMethodUsecase.Verify(c.Request.Context(), user.ID, id, input.OTP)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Payment method verified successfully", gin.H{"data": method})
}
