package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration values
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Security   SecurityConfig
	Wallet     WalletConfig
	Investment InvestmentConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	LockTimeout  time.Duration
	AutoMigrate  bool
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	Issuer        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// SecurityConfig holds keys used to protect card data
type SecurityConfig struct {
	CardFingerprintKey string
}

// WalletConfig holds deposit, FX and OTP settings
type WalletConfig struct {
	BaseCurrency        string
	FXRates             map[string]decimal.Decimal
	OTPTTL              time.Duration
	OTPMaxAttempts      int
	OTPResendCooldown   time.Duration
	DepositOTPThreshold decimal.Decimal
	PendingDepositTTL   time.Duration
	ExpirySweepInterval time.Duration
	SummaryCacheTTL     time.Duration
	ReconcileCron       string
}

// InvestmentConfig holds purchase settings
type InvestmentConfig struct {
	RequireKYC bool
}

// RateLimitConfig holds per-client limits for the auth endpoints
type RateLimitConfig struct {
	AuthRequestsPerMinute int
	AuthBurst             int
}

// DefaultFXRates are units of base currency (PKR) per unit of foreign currency.
func DefaultFXRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"PKR": decimal.NewFromInt(1),
		"USD": decimal.RequireFromString("278.50"),
		"EUR": decimal.RequireFromString("305.20"),
		"GBP": decimal.RequireFromString("352.80"),
	}
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "5000"),
			Env:            getEnv("SERVER_ENV", "development"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			DBName:       getEnv("DB_NAME", "hmr_builders"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			LockTimeout:  getEnvAsDuration("DB_LOCK_TIMEOUT", 5*time.Second),
			AutoMigrate:  getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			Issuer:        getEnv("JWT_ISSUER", "hmr-builders"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			CardFingerprintKey: getEnv("CARD_FINGERPRINT_KEY", "change-this-in-production"),
		},
		Wallet: WalletConfig{
			BaseCurrency:        "PKR",
			FXRates:             getEnvAsRates("FX_RATES", DefaultFXRates()),
			OTPTTL:              getEnvAsDuration("OTP_TTL", 5*time.Minute),
			OTPMaxAttempts:      getEnvAsInt("OTP_MAX_ATTEMPTS", 5),
			OTPResendCooldown:   getEnvAsDuration("OTP_RESEND_COOLDOWN", 30*time.Second),
			DepositOTPThreshold: getEnvAsDecimal("DEPOSIT_OTP_THRESHOLD", decimal.Zero),
			PendingDepositTTL:   getEnvAsDuration("PENDING_DEPOSIT_TTL", 15*time.Minute),
			ExpirySweepInterval: getEnvAsDuration("PENDING_DEPOSIT_SWEEP_INTERVAL", 30*time.Second),
			SummaryCacheTTL:     getEnvAsDuration("WALLET_SUMMARY_CACHE_TTL", time.Minute),
			ReconcileCron:       getEnv("WALLET_RECONCILE_CRON", "@every 15m"),
		},
		Investment: InvestmentConfig{
			RequireKYC: getEnvAsBool("INVESTMENT_REQUIRE_KYC", true),
		},
		RateLimit: RateLimitConfig{
			AuthRequestsPerMinute: getEnvAsInt("AUTH_RATE_LIMIT_PER_MINUTE", 20),
			AuthBurst:             getEnvAsInt("AUTH_RATE_LIMIT_BURST", 5),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvAsRates parses "USD=278.5,EUR=305.2" on top of defaults. Malformed
// or non-positive entries are skipped.
func getEnvAsRates(key string, defaults map[string]decimal.Decimal) map[string]decimal.Decimal {
	rates := make(map[string]decimal.Decimal, len(defaults))
	for k, v := range defaults {
		rates[k] = v
	}
	value := os.Getenv(key)
	if value == "" {
		return rates
	}
	for _, pair := range strings.Split(value, ",") {
		code, raw, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil || !rate.IsPositive() {
			continue
		}
		rates[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return rates
}
