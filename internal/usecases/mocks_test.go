package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"hmr-builders.backend/internal/domain/entities"
	"hmr-builders.backend/internal/domain/repositories"
	"hmr-builders.backend/pkg/utils"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	args := m.Called(ctx, id, isActive)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateKYCStatus(ctx context.Context, id uuid.UUID, status entities.KYCStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockUserRepository) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, filter entities.UserFilter, page utils.PaginationParams) ([]*entities.User, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Count(ctx context.Context, filter entities.UserFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// Mock PropertyRepository
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Create(ctx context.Context, property *entities.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Property), args.Error(1)
}

func (m *MockPropertyRepository) GetByRef(ctx context.Context, ref string, includeInactive bool) (*entities.Property, error) {
	args := m.Called(ctx, ref, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Property), args.Error(1)
}

func (m *MockPropertyRepository) GetByRefForUpdate(ctx context.Context, ref string) (*entities.Property, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Property), args.Error(1)
}

func (m *MockPropertyRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Property), args.Error(1)
}

func (m *MockPropertyRepository) List(ctx context.Context, filter entities.PropertyFilter, page utils.PaginationParams) ([]*entities.Property, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Property), args.Get(1).(int64), args.Error(2)
}

func (m *MockPropertyRepository) ListFeatured(ctx context.Context, limit int) ([]*entities.Property, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Property), args.Error(1)
}

func (m *MockPropertyRepository) Update(ctx context.Context, property *entities.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) DecrementAvailable(ctx context.Context, id uuid.UUID, n int64) error {
	args := m.Called(ctx, id, n)
	return args.Error(0)
}

func (m *MockPropertyRepository) IncrementAvailable(ctx context.Context, id uuid.UUID, n int64) error {
	args := m.Called(ctx, id, n)
	return args.Error(0)
}

func (m *MockPropertyRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPropertyRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockPropertyRepository) Counts(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// Mock InvestmentRepository
type MockInvestmentRepository struct {
	mock.Mock
}

func (m *MockInvestmentRepository) Create(ctx context.Context, investment *entities.Investment) error {
	args := m.Called(ctx, investment)
	return args.Error(0)
}

func (m *MockInvestmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Investment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entities.Investment, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Investment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) List(ctx context.Context, filter entities.InvestmentFilter, page utils.PaginationParams) ([]*entities.Investment, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Investment), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvestmentRepository) MarkCancelled(ctx context.Context, id uuid.UUID, paymentStatus entities.PaymentStatus, at time.Time) error {
	args := m.Called(ctx, id, paymentStatus, at)
	return args.Error(0)
}

func (m *MockInvestmentRepository) AggregateByUser(ctx context.Context, userID uuid.UUID) (entities.WalletAggregate, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(entities.WalletAggregate), args.Error(1)
}

func (m *MockInvestmentRepository) AggregateAll(ctx context.Context) (map[uuid.UUID]entities.WalletAggregate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]entities.WalletAggregate), args.Error(1)
}

func (m *MockInvestmentRepository) Holdings(ctx context.Context, userID uuid.UUID) ([]*entities.Holding, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Holding), args.Error(1)
}

func (m *MockInvestmentRepository) Portfolio(ctx context.Context, userID uuid.UUID) (*entities.PortfolioSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PortfolioSummary), args.Error(1)
}

func (m *MockInvestmentRepository) PropertyTotals(ctx context.Context, propertyID uuid.UUID) (repositories.InvestmentTotals, error) {
	args := m.Called(ctx, propertyID)
	return args.Get(0).(repositories.InvestmentTotals), args.Error(1)
}

func (m *MockInvestmentRepository) Totals(ctx context.Context) (repositories.InvestmentTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(repositories.InvestmentTotals), args.Error(1)
}

// Mock WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) AddInvestment(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, tokens int64) error {
	args := m.Called(ctx, userID, amount, tokens)
	return args.Error(0)
}

func (m *MockWalletRepository) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) SetCounters(ctx context.Context, current *entities.Wallet, invested decimal.Decimal, tokens int64) error {
	args := m.Called(ctx, current, invested, tokens)
	return args.Error(0)
}

func (m *MockWalletRepository) List(ctx context.Context) ([]*entities.Wallet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// Mock PaymentMethodRepository
type MockPaymentMethodRepository struct {
	mock.Mock
}

func (m *MockPaymentMethodRepository) Create(ctx context.Context, method *entities.PaymentMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}

func (m *MockPaymentMethodRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entities.PaymentMethod, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entities.PaymentMethod, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodRepository) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentMethodRepository) FingerprintExists(ctx context.Context, userID uuid.UUID, fingerprint string) (bool, error) {
	args := m.Called(ctx, userID, fingerprint)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentMethodRepository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockPaymentMethodRepository) SetDefault(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockPaymentMethodRepository) MarkVerified(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockPaymentMethodRepository) Deactivate(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockPaymentMethodRepository) NewestActive(ctx context.Context, userID uuid.UUID) (*entities.PaymentMethod, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PaymentMethod), args.Error(1)
}

// Mock WalletTransactionRepository
type MockWalletTransactionRepository struct {
	mock.Mock
}

func (m *MockWalletTransactionRepository) Create(ctx context.Context, tx *entities.WalletTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockWalletTransactionRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entities.WalletTransaction, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WalletTransaction), args.Error(1)
}

func (m *MockWalletTransactionRepository) List(ctx context.Context, userID uuid.UUID, filter entities.WalletTransactionFilter, page utils.PaginationParams) ([]*entities.WalletTransaction, int64, error) {
	args := m.Called(ctx, userID, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.WalletTransaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockWalletTransactionRepository) Settle(ctx context.Context, id uuid.UUID, status entities.TransactionStatus, otpVerified bool, at time.Time) error {
	args := m.Called(ctx, id, status, otpVerified, at)
	return args.Error(0)
}

func (m *MockWalletTransactionRepository) ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	args := m.Called(ctx, cutoff, limit)
	return args.Get(0).(int64), args.Error(1)
}

// Mock OTPStore
type MockOTPStore struct {
	mock.Mock
}

func (m *MockOTPStore) Issue(ctx context.Context, purpose, subject string) (string, error) {
	args := m.Called(ctx, purpose, subject)
	return args.String(0), args.Error(1)
}

func (m *MockOTPStore) Verify(ctx context.Context, purpose, subject, code string) error {
	args := m.Called(ctx, purpose, subject, code)
	return args.Error(0)
}

func (m *MockOTPStore) TTL() time.Duration {
	return 5 * time.Minute
}

// Mock OTPSender
type MockOTPSender struct {
	mock.Mock
}

func (m *MockOTPSender) Send(ctx context.Context, userID uuid.UUID, purpose, code string) error {
	args := m.Called(ctx, userID, purpose, code)
	return args.Error(0)
}

// Mock SummaryCache
type MockSummaryCache struct {
	mock.Mock
}

func (m *MockSummaryCache) Get(ctx context.Context, id string, dest interface{}) (bool, error) {
	args := m.Called(ctx, id, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockSummaryCache) Set(ctx context.Context, id string, value interface{}) error {
	args := m.Called(ctx, id, value)
	return args.Error(0)
}

func (m *MockSummaryCache) Invalidate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock TokenDenylist
type MockTokenDenylist struct {
	mock.Mock
}

func (m *MockTokenDenylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	args := m.Called(ctx, jti, expiresAt)
	return args.Error(0)
}

func (m *MockTokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}
