package usecases_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/usecases"
)

func decEq(s string) interface{} {
	want := decimal.RequireFromString(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

type investmentMocks struct {
	investments *MockInvestmentRepository
	properties  *MockPropertyRepository
	wallets     *MockWalletRepository
	uow         *MockUnitOfWork
	cache       *MockSummaryCache
}

func newInvestmentUsecaseForTest() (*usecases.InvestmentUsecase, investmentMocks) {
	m := investmentMocks{
		investments: new(MockInvestmentRepository),
		properties:  new(MockPropertyRepository),
		wallets:     new(MockWalletRepository),
		uow:         new(MockUnitOfWork),
		cache:       new(MockSummaryCache),
	}
	m.uow.On("Do", mock.Anything, mock.Anything).Return(nil)
	uc := usecases.NewInvestmentUsecase(m.investments, m.properties, m.wallets, m.uow, m.cache)
	return uc, m
}

func activeProperty(available int64) *entities.Property {
	return &entities.Property{
		ID:     uuid.New(),
		Title:  "HMR Waterfront",
		Slug:   "hmr-waterfront",
		Status: entities.PropertyActive,
		Tokenization: entities.Tokenization{
			TotalTokens:     1000,
			AvailableTokens: available,
			PricePerToken:   decimal.NewFromInt(1000),
		},
		Images:   []string{"https://cdn.hmr.pk/waterfront.jpg"},
		IsActive: true,
	}
}

func TestInvestmentUsecase_Purchase_ValidationBeforeStorage(t *testing.T) {
	uc, m := newInvestmentUsecaseForTest()
	user := &entities.User{ID: uuid.New()}

	cases := []*entities.CreateInvestmentInput{
		{PropertyID: "hmr-waterfront", TokensPurchased: 0, InvestmentAmount: decimal.NewFromInt(1000)},
		{PropertyID: "hmr-waterfront", TokensPurchased: 1, InvestmentAmount: decimal.NewFromInt(-5)},
		{PropertyID: "", TokensPurchased: 1, InvestmentAmount: decimal.NewFromInt(1000)},
		{PropertyID: "hmr-waterfront", TokensPurchased: 1, InvestmentAmount: decimal.NewFromInt(1000), PaymentMethod: "cash"},
	}
	for i, input := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			_, err := uc.Purchase(context.Background(), user, input)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
		})
	}

	m.uow.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
	m.properties.AssertNotCalled(t, "GetByRefForUpdate", mock.Anything, mock.Anything)
}

func TestInvestmentUsecase_Purchase_RejectsSubCentAmounts(t *testing.T) {
	uc, m := newInvestmentUsecaseForTest()
	user := &entities.User{ID: uuid.New()}

	for _, amount := range []string{"0.004", "100.005"} {
		t.Run(amount, func(t *testing.T) {
			_, err := uc.Purchase(context.Background(), user, &entities.CreateInvestmentInput{
				PropertyID:       "hmr-waterfront",
				TokensPurchased:  1,
				InvestmentAmount: decimal.RequireFromString(amount),
			})
			var appErr *domainerrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, 400, appErr.Status)
			require.Len(t, appErr.Details, 1)
			assert.Equal(t, "investmentAmount", appErr.Details[0].Field)
		})
	}

	m.uow.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
	m.properties.AssertNotCalled(t, "GetByRefForUpdate", mock.Anything, mock.Anything)
}

func TestInvestmentUsecase_Purchase_PriceMatchesStoredAmount(t *testing.T) {
	uc, m := newInvestmentUsecaseForTest()
	user := &entities.User{ID: uuid.New()}
	p := activeProperty(10)

	m.properties.On("GetByRefForUpdate", mock.Anything, "hmr-waterfront").Return(p, nil).Once()
	m.investments.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	m.properties.On("DecrementAvailable", mock.Anything, p.ID, int64(1)).Return(nil).Once()
	m.wallets.On("AddInvestment", mock.Anything, user.ID, decEq("100.01"), int64(1)).Return(nil).Once()
	m.cache.On("Invalidate", mock.Anything, user.ID.String()).Return(nil).Once()

	// trailing zeros beyond the cent are not extra precision
	inv, err := uc.Purchase(context.Background(), user, &entities.CreateInvestmentInput{
		PropertyID:       "hmr-waterfront",
		TokensPurchased:  1,
		InvestmentAmount: decimal.RequireFromString("100.0100"),
	})
	require.NoError(t, err)
	assert.True(t, inv.PricePerToken.Equal(inv.InvestmentAmount))
	assert.Equal(t, "100.01", inv.InvestmentAmount.StringFixed(2))
}

func TestInvestmentUsecase_Purchase_Success(t *testing.T) {
	uc, m := newInvestmentUsecaseForTest()
	user := &entities.User{ID: uuid.New()}
	p := activeProperty(10)

	m.properties.On("GetByRefForUpdate", mock.Anything, "hmr-waterfront").Return(p, nil).Once()
	m.investments.On("Create", mock.Anything, mock.AnythingOfType("*entities.Investment")).Return(nil).Once()
	m.properties.On("DecrementAvailable", mock.Anything, p.ID, int64(3)).Return(nil).Once()
	m.wallets.On("AddInvestment", mock.Anything, user.ID, decEq("2500"), int64(3)).Return(nil).Once()
	m.cache.On("Invalidate", mock.Anything, user.ID.String()).Return(nil).Once()

	inv, err := uc.Purchase(context.Background(), user, &entities.CreateInvestmentInput{
		PropertyID:       "hmr-waterfront",
		TokensPurchased:  3,
		InvestmentAmount: decimal.NewFromInt(2500),
	})
	require.NoError(t, err)
	assert.Equal(t, entities.InvestmentActive, inv.Status)
	assert.Equal(t, entities.PaymentCompleted, inv.PaymentStatus)
	assert.Equal(t, entities.PayByBankTransfer, inv.PaymentMethod)
	assert.Equal(t, "833.33333333", inv.PricePerToken.String())
	assert.True(t, inv.ConfirmedAt.Valid)
	assert.Equal(t, "https://cdn.hmr.pk/waterfront.jpg", inv.Property.Image)

	m.wallets.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything)
	m.investments.AssertExpectations(t)
	m.properties.AssertExpectations(t)
	m.wallets.AssertExpectations(t)
	m.cache.AssertExpectations(t)
}

func TestInvestmentUsecase_Purchase_WalletPaymentDebits(t *testing.T) {
	uc, m := newInvestmentUsecaseForTest()
	user := &entities.User{ID: uuid.New()}
	p := activeProperty(10)

	m.properties.On("GetByRefForUpdate", mock.Anything, p.ID.String()).Return(p, nil).Once()
	m.investments.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	m.properties.On("DecrementAvailable", mock.Anything, p.ID, int64(2)).Return(nil).Once()
	m.wallets.On("AddInvestment", mock.Anything, user.ID, decEq("2000"), int64(2)).Return(nil).Once()
	m.wallets.On("Debit", mock.Anything, user.ID, decEq("2000")).Return(domainerrors.ErrInsufficientBalance).Once()

	_, err := uc.Purchase(context.Background(), user, &entities.CreateInvestmentInput{
		PropertyID:       p.ID.String(),
		TokensPurchased:  2,
		InvestmentAmount: decimal.NewFromInt(2000),
		PaymentMethod:    "wallet",
	})
	require.Error(t, err)
	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.CodeInsufficientBalance, appErr.Code)
	m.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestInvestmentUsecase_Purchase_Failures(t *testing.T) {
	t.Run("insufficient tokens", func(t *testing.T) {
		uc, m := newInvestmentUsecaseForTest()
		m.properties.On("GetByRefForUpdate", mock.Anything, "hmr-waterfront").Return(activeProperty(2), nil).Once()

		_, err := uc.Purchase(context.Background(), &entities.User{ID: uuid.New()}, &entities.CreateInvestmentInput{
			PropertyID: "hmr-waterfront", TokensPurchased: 3, InvestmentAmount: decimal.NewFromInt(3000),
		})
		require.ErrorIs(t, err, domainerrors.ErrInsufficientTokens)
		var appErr *domainerrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, domainerrors.CodeInsufficientTokens, appErr.Code)
		m.investments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing property", func(t *testing.T) {
		uc, m := newInvestmentUsecaseForTest()
		m.properties.On("GetByRefForUpdate", mock.Anything, "nope").Return(nil, domainerrors.ErrNotFound).Once()

		_, err := uc.Purchase(context.Background(), &entities.User{ID: uuid.New()}, &entities.CreateInvestmentInput{
			PropertyID: "nope", TokensPurchased: 1, InvestmentAmount: decimal.NewFromInt(1000),
		})
		var appErr *domainerrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 404, appErr.Status)
	})

	t.Run("lock timeout is retryable", func(t *testing.T) {
		uc, m := newInvestmentUsecaseForTest()
		m.properties.On("GetByRefForUpdate", mock.Anything, "hmr-waterfront").
			Return(nil, fmt.Errorf("%w: canceling statement due to lock timeout", domainerrors.ErrLockTimeout)).Once()

		_, err := uc.Purchase(context.Background(), &entities.User{ID: uuid.New()}, &entities.CreateInvestmentInput{
			PropertyID: "hmr-waterfront", TokensPurchased: 1, InvestmentAmount: decimal.NewFromInt(1000),
		})
		var appErr *domainerrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.True(t, appErr.Retryable)
		assert.Equal(t, domainerrors.CodeTransactionConflict, appErr.Code)
		assert.Equal(t, 409, appErr.Status)
	})
}

func TestInvestmentUsecase_Cancel(t *testing.T) {
	owner := &entities.User{ID: uuid.New()}
	inv := &entities.Investment{
		ID:               uuid.New(),
		UserID:           owner.ID,
		PropertyID:       uuid.New(),
		TokensPurchased:  4,
		InvestmentAmount: decimal.NewFromInt(4000),
		PaymentMethod:    entities.PayByWallet,
		PaymentStatus:    entities.PaymentCompleted,
		Status:           entities.InvestmentActive,
	}

	t.Run("compensates tokens and wallet", func(t *testing.T) {
		uc, m := newInvestmentUsecaseForTest()
		locked := *inv
		m.investments.On("GetByID", mock.Anything, inv.ID).Return(inv, nil).Once()
		m.properties.On("GetByIDForUpdate", mock.Anything, inv.PropertyID).Return(&entities.Property{ID: inv.PropertyID}, nil).Once()
		m.investments.On("GetByIDForUpdate", mock.Anything, inv.ID).Return(&locked, nil).Once()
		m.investments.On("MarkCancelled", mock.Anything, inv.ID, entities.PaymentRefunded, mock.Anything).Return(nil).Once()
		m.properties.On("IncrementAvailable", mock.Anything, inv.PropertyID, int64(4)).Return(nil).Once()
		m.wallets.On("AddInvestment", mock.Anything, owner.ID, decEq("-4000"), int64(-4)).Return(nil).Once()
		m.wallets.On("Credit", mock.Anything, owner.ID, decEq("4000")).Return(nil).Once()
		m.cache.On("Invalidate", mock.Anything, owner.ID.String()).Return(nil).Once()

		got, err := uc.Cancel(context.Background(), owner, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.InvestmentCancelled, got.Status)
		assert.Equal(t, entities.PaymentRefunded, got.PaymentStatus)
		assert.True(t, got.CancelledAt.Valid)
		m.investments.AssertExpectations(t)
		m.properties.AssertExpectations(t)
		m.wallets.AssertExpectations(t)
	})

	t.Run("other users see not found", func(t *testing.T) {
		uc, m := newInvestmentUsecaseForTest()
		m.investments.On("GetByID", mock.Anything, inv.ID).Return(inv, nil).Once()

		_, err := uc.Cancel(context.Background(), &entities.User{ID: uuid.New(), Role: entities.UserRoleUser}, inv.ID)
		require.ErrorIs(t, err, domainerrors.ErrNotFound)
		m.uow.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
	})

	t.Run("already cancelled", func(t *testing.T) {
		uc, m := newInvestmentUsecaseForTest()
		cancelled := *inv
		cancelled.Status = entities.InvestmentCancelled
		m.investments.On("GetByID", mock.Anything, inv.ID).Return(&cancelled, nil).Once()
		m.properties.On("GetByIDForUpdate", mock.Anything, inv.PropertyID).Return(&entities.Property{ID: inv.PropertyID}, nil).Once()
		m.investments.On("GetByIDForUpdate", mock.Anything, inv.ID).Return(&cancelled, nil).Once()

		_, err := uc.Cancel(context.Background(), owner, inv.ID)
		require.ErrorIs(t, err, domainerrors.ErrInvalidState)
		m.properties.AssertNotCalled(t, "IncrementAvailable", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("restoring past total supply", func(t *testing.T) {
		uc, m := newInvestmentUsecaseForTest()
		locked := *inv
		m.investments.On("GetByID", mock.Anything, inv.ID).Return(inv, nil).Once()
		m.properties.On("GetByIDForUpdate", mock.Anything, inv.PropertyID).Return(&entities.Property{ID: inv.PropertyID}, nil).Once()
		m.investments.On("GetByIDForUpdate", mock.Anything, inv.ID).Return(&locked, nil).Once()
		m.investments.On("MarkCancelled", mock.Anything, inv.ID, entities.PaymentRefunded, mock.Anything).Return(nil).Once()
		m.properties.On("IncrementAvailable", mock.Anything, inv.PropertyID, int64(4)).Return(domainerrors.ErrSupplyExceeded).Once()

		_, err := uc.Cancel(context.Background(), owner, inv.ID)
		var appErr *domainerrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, domainerrors.CodeSupplyExceeded, appErr.Code)
		assert.Equal(t, 409, appErr.Status)
		assert.NotErrorIs(t, err, domainerrors.ErrInvalidState)
		m.wallets.AssertNotCalled(t, "AddInvestment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestInvestmentUsecase_Portfolio(t *testing.T) {
	uc, m := newInvestmentUsecaseForTest()
	userID := uuid.New()

	m.investments.On("Portfolio", mock.Anything, userID).Return(&entities.PortfolioSummary{TotalInvestments: 2}, nil).Once()
	m.investments.On("Holdings", mock.Anything, userID).Return([]*entities.Holding{
		{CurrentValue: decimal.NewFromInt(1500)},
		{CurrentValue: decimal.RequireFromString("250.50")},
	}, nil).Once()

	summary, err := uc.Portfolio(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalInvestments)
	assert.True(t, summary.CurrentValue.Equal(decimal.RequireFromString("1750.50")))
}
