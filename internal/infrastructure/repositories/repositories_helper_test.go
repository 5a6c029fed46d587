package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"hmr-builders.backend/internal/domain/entities"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")

	// One connection serialises transactions the way row locks do on PostgreSQL.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		first_name TEXT,
		last_name TEXT,
		password_hash TEXT NOT NULL,
		phone TEXT,
		profile_image TEXT,
		role TEXT NOT NULL DEFAULT 'user',
		is_active BOOLEAN NOT NULL,
		kyc_status TEXT NOT NULL DEFAULT 'unverified',
		is_email_verified BOOLEAN NOT NULL DEFAULT 0,
		last_login_at DATETIME,
		last_activity_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createPropertyTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE properties (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL,
		short_description TEXT,
		address TEXT,
		city TEXT,
		state TEXT,
		country TEXT,
		property_type TEXT NOT NULL,
		status TEXT NOT NULL,
		total_value NUMERIC NOT NULL DEFAULT 0,
		market_value NUMERIC NOT NULL DEFAULT 0,
		expected_roi NUMERIC NOT NULL DEFAULT 0,
		min_investment NUMERIC NOT NULL DEFAULT 0,
		total_tokens INTEGER NOT NULL CHECK (total_tokens > 0),
		available_tokens INTEGER NOT NULL CHECK (available_tokens >= 0 AND available_tokens <= total_tokens),
		price_per_token NUMERIC NOT NULL,
		images TEXT,
		features TEXT,
		is_featured BOOLEAN NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createInvestmentTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE investments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		tokens_purchased INTEGER NOT NULL CHECK (tokens_purchased > 0),
		investment_amount NUMERIC NOT NULL CHECK (investment_amount > 0),
		price_per_token NUMERIC NOT NULL,
		payment_method TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		status TEXT NOT NULL,
		confirmed_at DATETIME,
		activated_at DATETIME,
		cancelled_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createWalletTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE user_wallets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		available_balance NUMERIC NOT NULL DEFAULT 0 CHECK (available_balance >= 0),
		total_investment NUMERIC NOT NULL DEFAULT 0 CHECK (total_investment >= 0),
		total_tokens INTEGER NOT NULL DEFAULT 0 CHECK (total_tokens >= 0),
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createPaymentMethodTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE payment_methods (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		card_type TEXT NOT NULL,
		card_number_masked TEXT NOT NULL,
		card_fingerprint TEXT NOT NULL,
		card_holder_name TEXT NOT NULL,
		expiry_month INTEGER NOT NULL,
		expiry_year INTEGER NOT NULL,
		cvv_hash TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT 'PKR',
		billing_address TEXT,
		is_default BOOLEAN NOT NULL DEFAULT 0,
		is_verified BOOLEAN NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createWalletTransactionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE wallet_transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		payment_method_id TEXT NOT NULL,
		transaction_type TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		currency TEXT NOT NULL,
		exchange_rate NUMERIC NOT NULL,
		amount_in_pkr NUMERIC NOT NULL,
		description TEXT,
		status TEXT NOT NULL,
		otp_verified BOOLEAN NOT NULL DEFAULT 0,
		processed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createAllTables(t *testing.T, db *gorm.DB) {
	createUserTable(t, db)
	createPropertyTable(t, db)
	createInvestmentTable(t, db)
	createWalletTable(t, db)
	createPaymentMethodTable(t, db)
	createWalletTransactionTable(t, db)
}

func seedUser(t *testing.T, db *gorm.DB, email string) *entities.User {
	t.Helper()
	u := &entities.User{
		Email:        email,
		Name:         "Ayesha Khan",
		FirstName:    "Ayesha",
		LastName:     "Khan",
		PasswordHash: "hash",
		Role:         entities.UserRoleUser,
		IsActive:     true,
		KYCStatus:    entities.KYCVerified,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func seedProperty(t *testing.T, db *gorm.DB, slug string, totalTokens int64) *entities.Property {
	t.Helper()
	p := &entities.Property{
		ID:           uuid.New(),
		Title:        "Tower " + slug,
		Slug:         slug,
		Description:  "Mixed-use tower",
		Location:     entities.Location{City: "Lahore", Country: "Pakistan"},
		PropertyType: entities.PropertyMixedUse,
		Status:       entities.PropertyActive,
		Pricing:      entities.Pricing{TotalValue: decimal.NewFromInt(totalTokens * 1000)},
		Tokenization: entities.Tokenization{
			TotalTokens:     totalTokens,
			AvailableTokens: totalTokens,
			PricePerToken:   decimal.NewFromInt(1000),
		},
		Images:   []string{"https://cdn.hmr.pk/" + slug + ".jpg"},
		IsActive: true,
	}
	require.NoError(t, NewPropertyRepository(db).Create(context.Background(), p))
	return p
}
