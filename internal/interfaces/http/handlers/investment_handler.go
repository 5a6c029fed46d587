package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"hmr-builders.backend/internal/domain/entities"
	"hmr-builders.backend/internal/interfaces/http/response"
	"hmr-builders.backend/internal/usecases"
	"hmr-builders.backend/pkg/utils"
)

type investmentService interface {
	Purchase(ctx context.Context, user *entities.User, input *entities.CreateInvestmentInput) (*entities.Investment, error)
	Cancel(ctx context.Context, user *entities.User, id uuid.UUID) (*entities.Investment, error)
	ListMine(ctx context.Context, userID uuid.UUID, status entities.InvestmentStatus, page utils.PaginationParams) ([]*entities.Investment, int64, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*entities.Investment, error)
	Portfolio(ctx context.Context, userID uuid.UUID) (*entities.PortfolioSummary, error)
}

// InvestmentHandler handles token purchases
type InvestmentHandler struct {
	investmentUsecase investmentService
}

// NewInvestmentHandler creates a new investment handler
func NewInvestmentHandler(investmentUsecase *usecases.InvestmentUsecase) *InvestmentHandler {
	return &InvestmentHandler{investmentUsecase: investmentUsecase}
}

// CreateInvestment purchases property tokens
// POST /api/investments
func (h *InvestmentHandler) CreateInvestment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input entities.CreateInvestmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	investment, err := h.investmentUsecase.Purchase(c.Request.Context(), user, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Investment created successfully", gin.H{"investment": investment})
}

// ListMyInvestments lists the caller's investments
// GET /api/investments/my-investments
func (h *InvestmentHandler) ListMyInvestments(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	status, ok := investmentStatusQuery(c)
	if !ok {
		return
	}

	items, total, err := h.investmentUsecase.ListMine(c.Request.Context(), user.ID, status, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []*entities.Investment{}
	}

	response.Success(c, http.StatusOK, "Investments retrieved successfully", paginated("data", items, total, page))
}

// GetInvestment returns one of the caller's investments
// GET /api/investments/:id
func (h *InvestmentHandler) GetInvestment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "investment")
	if !ok {
		return
	}

	investment, err := h.investmentUsecase.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Investment retrieved successfully", gin.H{"investment": investment})
}

// CancelInvestment cancels an investment and releases its tokens
// PATCH /api/investments/:id/cancel
func (h *InvestmentHandler) CancelInvestment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "investment")
	if !ok {
		return
	}

	investment, err := h.investmentUsecase.Cancel(c.Request.Context(), user, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Investment cancelled successfully", gin.H{"investment": investment})
}

// GetPortfolioSummary summarises the caller's investments
// GET /api/investments/portfolio/summary
func (h *InvestmentHandler) GetPortfolioSummary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := h.investmentUsecase.Portfolio(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Portfolio summary retrieved successfully", gin.H{"summary": summary})
}
