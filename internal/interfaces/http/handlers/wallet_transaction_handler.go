package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/interfaces/http/response"
	"hmr-builders.backend/internal/usecases"
	"hmr-builders.backend/pkg/utils"
)

type walletTransactionService interface {
	Deposit(ctx context.Context, userID uuid.UUID, input *entities.DepositInput) (*entities.DepositResult, error)
	RequestOTP(ctx context.Context, userID, id uuid.UUID) (*entities.OTPChallenge, error)
	VerifyOTP(ctx context.Context, userID, id uuid.UUID, code string) (*entities.DepositResult, error)
	List(ctx context.Context, userID uuid.UUID, filter entities.WalletTransactionFilter, page utils.PaginationParams) ([]*entities.WalletTransaction, int64, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*entities.WalletTransaction, error)
	Balance(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
}

// WalletTransactionHandler handles deposits and the transaction history
type WalletTransactionHandler struct {
	walletTransactionUsecase walletTransactionService
}

// NewWalletTransactionHandler creates a new wallet transaction handler
func NewWalletTransactionHandler(walletTransactionUsecase *usecases.WalletTransactionUsecase) *WalletTransactionHandler {
	return &WalletTransactionHandler{walletTransactionUsecase: walletTransactionUsecase}
}

func depositPayload(result *entities.DepositResult) gin.H {
	payload := gin.H{
		"data":        result.Transaction,
		"requiresOtp": result.RequiresOTP,
	}
	if result.Wallet != nil {
		payload["wallet"] = result.Wallet
	}
	if result.OTP != nil {
		payload["otp"] = result.OTP
	}
	return payload
}

// Deposit credits the wallet, or holds the deposit pending OTP verification
// POST /api/wallet-transactions/deposit
func (h *WalletTransactionHandler) Deposit(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var input entities.DepositInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.walletTransactionUsecase.Deposit(c.Request.Context(), user.ID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Deposit successful"
	if result.RequiresOTP {
		message = "OTP verification required to complete the deposit"
	}
	response.Success(c, http.StatusCreated, message, depositPayload(result))
}

// RequestDepositOTP re-sends the code for a pending deposit
// POST /api/wallet-transactions/:id/otp
func (h *WalletTransactionHandler) RequestDepositOTP(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "transaction")
	if !ok {
		return
	}

	challenge, err := h.walletTransactionUsecase.RequestOTP(c.Request.Context(), user.ID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Verification code sent", gin.H{"otp": challenge})
}

// VerifyDepositOTP settles a pending deposit
// POST /api/wallet-transactions/:id/verify-otp
func (h *WalletTransactionHandler) VerifyDepositOTP(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "transaction")
	if !ok {
		return
	}
	var input entities.VerifyOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.walletTransactionUsecase.VerifyOTP(c.Request.Context(), user.ID, id, input.OTP)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "OTP verified successfully", depositPayload(result))
}

// ListTransactions
// GET /api/wallet-transactions
func (h *WalletTransactionHandler) ListTransactions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	filter := entities.WalletTransactionFilter{
		Type:   entities.TransactionType(c.Query("type")),
		Status: entities.TransactionStatus(c.Query("status")),
	}
	switch filter.Type {
	case "", entities.TransactionDeposit, entities.TransactionWithdrawal:
	default:
		response.Error(c, domainerrors.Validation("Invalid filter",
			domainerrors.FieldError{Field: "type", Message: "must be one of: deposit withdrawal"}))
		return
	}
	switch filter.Status {
	case "", entities.TransactionPending, entities.TransactionCompleted, entities.TransactionFailed, entities.TransactionExpired:
	default:
		response.Error(c, domainerrors.Validation("Invalid filter",
			domainerrors.FieldError{Field: "status", Message: "must be one of: pending completed failed expired"}))
		return
	}

	items, total, err := h.walletTransactionUsecase.List(c.Request.Context(), user.ID, filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []*entities.WalletTransaction{}
	}
	response.Success(c, http.StatusOK, "Transactions retrieved successfully", paginated("data", items, total, page))
}

// GetTransaction
// GET /api/wallet-transactions/:id
func (h *WalletTransactionHandler) GetTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "transaction")
	if !ok {
		return
	}

	tx, err := h.walletTransactionUsecase.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Transaction retrieved successfully", gin.H{"data": tx})
}

// GetBalance
// GET /api/wallet-transactions/balance/current
func (h *WalletTransactionHandler) GetBalance(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	wallet, err := h.walletTransactionUsecase.Balance(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Balance retrieved successfully", gin.H{"data": wallet})
}
