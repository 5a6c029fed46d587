package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hmr-builders.backend/internal/config"
	"hmr-builders.backend/internal/infrastructure/datasources/postgres"
	"hmr-builders.backend/internal/infrastructure/fx"
	"hmr-builders.backend/internal/infrastructure/jobs"
	"hmr-builders.backend/internal/infrastructure/repositories"
	"hmr-builders.backend/internal/interfaces/http/handlers"
	"hmr-builders.backend/internal/interfaces/http/middleware"
	"hmr-builders.backend/internal/usecases"
	"hmr-builders.backend/pkg/jwt"
	"hmr-builders.backend/pkg/logger"
	"hmr-builders.backend/pkg/redis"
)

var (
	loadDotenv    = godotenv.Load
	loadCfg       = config.Load
	initLog       = logger.Init
	initRedis     = redis.Init
	openDB        = postgres.NewConnection
	runMigrations = postgres.Migrate
	runServer     = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB      = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()
	logger.Info(ctx, "Connected to PostgreSQL")

	if cfg.Database.AutoMigrate {
		if err := runMigrations(sqlDB, postgres.Up); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info(ctx, "Database migrations applied")
	}

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	propertyRepo := repositories.NewPropertyRepository(db)
	investmentRepo := repositories.NewInvestmentRepository(db)
	paymentMethodRepo := repositories.NewPaymentMethodRepository(db)
	walletTxRepo := repositories.NewWalletTransactionRepository(db)
	uow := repositories.NewUnitOfWork(db, cfg.Database.LockTimeout)

	// Redis-backed stores
	otpStore := redis.NewOTPStore(cfg.Wallet.OTPTTL, cfg.Wallet.OTPMaxAttempts, cfg.Wallet.OTPResendCooldown)
	denylist := redis.NewTokenDenylist("auth:revoked")
	summaryCache := redis.NewJSONCache("wallet:summary", cfg.Wallet.SummaryCacheTTL)

	rates := fx.NewRateTable(cfg.Wallet.BaseCurrency, cfg.Wallet.FXRates)
	otpSender := usecases.NewLogOTPSender(cfg.Server.Env)

	// Usecases
	paymentMethodUsecase := usecases.NewPaymentMethodUsecase(paymentMethodRepo, uow, otpStore, otpSender, rates, cfg.Security.CardFingerprintKey)
	authUsecase := usecases.NewAuthUsecase(userRepo, walletRepo, uow, jwtService, denylist, paymentMethodUsecase)
	propertyUsecase := usecases.NewPropertyUsecase(propertyRepo, investmentRepo)
	investmentUsecase := usecases.NewInvestmentUsecase(investmentRepo, propertyRepo, walletRepo, uow, summaryCache)
	userUsecase := usecases.NewUserUsecase(userRepo, investmentRepo)
	walletUsecase := usecases.NewWalletUsecase(walletRepo, investmentRepo, summaryCache, cfg.Wallet.BaseCurrency)
	walletTxUsecase := usecases.NewWalletTransactionUsecase(
		walletTxRepo, walletRepo, paymentMethodRepo, uow, rates, otpStore, otpSender, summaryCache, cfg.Wallet.DepositOTPThreshold,
	)
	adminUsecase := usecases.NewAdminUsecase(userRepo, propertyRepo, investmentRepo, walletRepo)

	// Background jobs
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	expiryJob := jobs.NewPendingDepositExpiryJob(walletTxRepo, cfg.Wallet.PendingDepositTTL, cfg.Wallet.ExpirySweepInterval)
	go expiryJob.Start(jobCtx)

	reconcileJob := jobs.NewWalletReconcileJob(walletRepo, investmentRepo, summaryCache, cfg.Wallet.ReconcileCron)
	if err := reconcileJob.Start(jobCtx); err != nil {
		return err
	}

	authLimiter := middleware.NewRateLimiter(cfg.RateLimit.AuthRequestsPerMinute, cfg.RateLimit.AuthBurst)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.TimeoutMiddleware(cfg.Server.RequestTimeout))

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins...)
	registerHealthRoute(r, sqlDB)
	registerMetricsRoute(r)
	registerAPIRoutes(r, routeDeps{
		authHandler:              handlers.NewAuthHandler(authUsecase),
		propertyHandler:          handlers.NewPropertyHandler(propertyUsecase),
		investmentHandler:        handlers.NewInvestmentHandler(investmentUsecase),
		userHandler:              handlers.NewUserHandler(userUsecase, walletUsecase),
		paymentMethodHandler:     handlers.NewPaymentMethodHandler(paymentMethodUsecase),
		walletTransactionHandler: handlers.NewWalletTransactionHandler(walletTxUsecase),
		adminHandler:             handlers.NewAdminHandler(adminUsecase),
		docsHandler:              handlers.NewDocsHandler(serviceVersion),
		authMiddleware:           middleware.AuthMiddleware(jwtService, authUsecase),
		optionalAuthMiddleware:   middleware.OptionalAuthMiddleware(jwtService, authUsecase),
		authRateLimit:            authLimiter.Handler(),
		requireKYC:               cfg.Investment.RequireKYC,
	})

	logger.Debug(ctx, "Routes registered", zap.Int("count", len(r.Routes())))

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info(ctx, "Shutting down server")
		expiryJob.Stop()
		reconcileJob.Stop()
		cancel()
		_ = redis.Close()
		os.Exit(0)
	}()

	logger.Info(ctx, "HMR Builders backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("api", "/api"),
		zap.String("health", "/health"),
	)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
