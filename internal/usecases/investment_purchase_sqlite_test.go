package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/infrastructure/repositories"
	"hmr-builders.backend/internal/usecases"
)

func newLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, ddl := range []string{
		`CREATE TABLE properties (
			id TEXT PRIMARY KEY, title TEXT NOT NULL, slug TEXT NOT NULL UNIQUE, description TEXT NOT NULL,
			short_description TEXT, address TEXT, city TEXT, state TEXT, country TEXT,
			property_type TEXT NOT NULL, status TEXT NOT NULL,
			total_value NUMERIC NOT NULL DEFAULT 0, market_value NUMERIC NOT NULL DEFAULT 0,
			expected_roi NUMERIC NOT NULL DEFAULT 0, min_investment NUMERIC NOT NULL DEFAULT 0,
			total_tokens INTEGER NOT NULL CHECK (total_tokens > 0),
			available_tokens INTEGER NOT NULL CHECK (available_tokens >= 0 AND available_tokens <= total_tokens),
			price_per_token NUMERIC NOT NULL, images TEXT, features TEXT,
			is_featured BOOLEAN NOT NULL DEFAULT 0, is_active BOOLEAN NOT NULL, sort_order INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME, updated_at DATETIME)`,
		`CREATE TABLE investments (
			id TEXT PRIMARY KEY, user_id TEXT NOT NULL, property_id TEXT NOT NULL,
			tokens_purchased INTEGER NOT NULL CHECK (tokens_purchased > 0),
			investment_amount NUMERIC NOT NULL CHECK (investment_amount > 0),
			price_per_token NUMERIC NOT NULL, payment_method TEXT NOT NULL, payment_status TEXT NOT NULL,
			status TEXT NOT NULL, confirmed_at DATETIME, activated_at DATETIME, cancelled_at DATETIME,
			created_at DATETIME, updated_at DATETIME)`,
		`CREATE TABLE user_wallets (
			id TEXT PRIMARY KEY, user_id TEXT NOT NULL UNIQUE,
			available_balance NUMERIC NOT NULL DEFAULT 0 CHECK (available_balance >= 0),
			total_investment NUMERIC NOT NULL DEFAULT 0 CHECK (total_investment >= 0),
			total_tokens INTEGER NOT NULL DEFAULT 0 CHECK (total_tokens >= 0),
			created_at DATETIME, updated_at DATETIME)`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

type ledger struct {
	uc          *usecases.InvestmentUsecase
	properties  *repositories.PropertyRepository
	wallets     *repositories.WalletRepository
	investments *repositories.InvestmentRepository
}

func newLedger(t *testing.T) ledger {
	db := newLedgerDB(t)
	l := ledger{
		properties:  repositories.NewPropertyRepository(db),
		wallets:     repositories.NewWalletRepository(db),
		investments: repositories.NewInvestmentRepository(db),
	}
	l.uc = usecases.NewInvestmentUsecase(l.investments, l.properties, l.wallets, repositories.NewUnitOfWork(db, 0), nil)
	return l
}

func (l ledger) seedProperty(t *testing.T, slug string, tokens int64) *entities.Property {
	t.Helper()
	p := &entities.Property{
		ID:           uuid.New(),
		Title:        "Tower " + slug,
		Slug:         slug,
		Description:  "Residential tower",
		PropertyType: entities.PropertyResidential,
		Status:       entities.PropertyActive,
		Tokenization: entities.Tokenization{TotalTokens: tokens, AvailableTokens: tokens, PricePerToken: decimal.NewFromInt(1000)},
		IsActive:     true,
	}
	require.NoError(t, l.properties.Create(context.Background(), p))
	return p
}

func TestPurchase_ConcurrentBuyersNeverOversell(t *testing.T) {
	l := newLedger(t)
	p := l.seedProperty(t, "concurrent", 10)

	const buyers = 8
	var ok, short int32
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.uc.Purchase(context.Background(), &entities.User{ID: uuid.New()}, &entities.CreateInvestmentInput{
				PropertyID:       "concurrent",
				TokensPurchased:  2,
				InvestmentAmount: decimal.NewFromInt(2000),
			})
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, domainerrors.ErrInsufficientTokens):
				atomic.AddInt32(&short, 1)
			default:
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), ok)
	assert.Equal(t, int32(3), short)

	got, err := l.properties.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Tokenization.AvailableTokens)

	totals, err := l.investments.PropertyTotals(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), totals.TokensSold)
}

func TestPurchase_ExactSupplyBoundary(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	user := &entities.User{ID: uuid.New()}
	p := l.seedProperty(t, "boundary", 5)

	_, err := l.uc.Purchase(ctx, user, &entities.CreateInvestmentInput{
		PropertyID: "boundary", TokensPurchased: 6, InvestmentAmount: decimal.NewFromInt(6000),
	})
	require.ErrorIs(t, err, domainerrors.ErrInsufficientTokens)

	_, err = l.wallets.GetByUserID(ctx, user.ID)
	require.ErrorIs(t, err, domainerrors.ErrNotFound, "failed purchase must not create a wallet")

	inv, err := l.uc.Purchase(ctx, user, &entities.CreateInvestmentInput{
		PropertyID: p.ID.String(), TokensPurchased: 5, InvestmentAmount: decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	assert.True(t, inv.PricePerToken.Equal(decimal.NewFromInt(1000)))

	got, err := l.properties.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Tokenization.AvailableTokens)

	w, err := l.wallets.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), w.TotalTokens)
	assert.True(t, w.TotalInvestment.Equal(decimal.NewFromInt(5000)))

	// cancelling gives the supply back
	_, err = l.uc.Cancel(ctx, user, inv.ID)
	require.NoError(t, err)

	got, err = l.properties.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Tokenization.AvailableTokens)

	w, err = l.wallets.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, w.TotalTokens)
	assert.True(t, w.TotalInvestment.IsZero())
}
