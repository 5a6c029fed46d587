package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"hmr-builders.backend/internal/config"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	domainrepo "hmr-builders.backend/internal/domain/repositories"
	"hmr-builders.backend/internal/infrastructure/datasources/postgres"
	"hmr-builders.backend/internal/infrastructure/repositories"
	"hmr-builders.backend/internal/usecases"
	"hmr-builders.backend/pkg/crypto"
	"hmr-builders.backend/pkg/logger"
)

const minAdminPasswordLength = 8

type seedRuntime interface {
	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
	CreateAdmin(ctx context.Context, user *entities.User) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	CreateProperty(ctx context.Context, input *entities.CreatePropertyInput) (*entities.Property, error)
}

type seedDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (seedRuntime, io.Closer, error)
	hash    func(password string) (string, error)
	out     io.Writer
}

type seedRuntimeImpl struct {
	userRepo     domainrepo.UserRepository
	walletRepo   domainrepo.WalletRepository
	propertyRepo domainrepo.PropertyRepository
	uow          domainrepo.UnitOfWork
	properties   *usecases.PropertyUsecase
}

func (r seedRuntimeImpl) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.userRepo.GetByEmail(ctx, email)
}

func (r seedRuntimeImpl) CreateAdmin(ctx context.Context, user *entities.User) error {
	return r.uow.Do(ctx, func(txCtx context.Context) error {
		if err := r.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		_, err := r.walletRepo.GetOrCreate(txCtx, user.ID)
		return err
	})
}

func (r seedRuntimeImpl) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.propertyRepo.SlugExists(ctx, slug)
}

func (r seedRuntimeImpl) CreateProperty(ctx context.Context, input *entities.CreatePropertyInput) (*entities.Property, error) {
	return r.properties.Create(ctx, input)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultSeedDeps() seedDeps {
	return seedDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (seedRuntime, io.Closer, error) {
			db, err := postgres.NewConnection(cfg.Database)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}
			sqlDB, err := db.DB()
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}
			propertyRepo := repositories.NewPropertyRepository(db)
			return seedRuntimeImpl{
				userRepo:     repositories.NewUserRepository(db),
				walletRepo:   repositories.NewWalletRepository(db),
				propertyRepo: propertyRepo,
				uow:          repositories.NewUnitOfWork(db, cfg.Database.LockTimeout),
				properties:   usecases.NewPropertyUsecase(propertyRepo, repositories.NewInvestmentRepository(db)),
			}, sqlDB, nil
		},
		hash: crypto.HashPassword,
		out:  os.Stdout,
	}
}

type seedOptions struct {
	adminEmail    string
	adminPassword string
	adminName     string
	demo          bool
}

func parseSeedFlags(args []string) (seedOptions, error) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	email := fs.String("admin-email", os.Getenv("SEED_ADMIN_EMAIL"), "admin account email")
	password := fs.String("admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "admin account password")
	name := fs.String("admin-name", "Administrator", "admin display name")
	demo := fs.Bool("demo", true, "insert the demo property catalogue")
	if err := fs.Parse(args); err != nil {
		return seedOptions{}, err
	}

	opts := seedOptions{
		adminEmail:    entities.NormalizeEmail(*email),
		adminPassword: *password,
		adminName:     strings.TrimSpace(*name),
		demo:          *demo,
	}
	if opts.adminEmail == "" {
		if opts.adminPassword != "" {
			return seedOptions{}, fmt.Errorf("--admin-password given without --admin-email")
		}
		return opts, nil
	}
	if len(opts.adminPassword) < minAdminPasswordLength {
		return seedOptions{}, fmt.Errorf("--admin-password must be at least %d characters", minAdminPasswordLength)
	}
	return opts, nil
}

func demoProperties() []entities.CreatePropertyInput {
	return []entities.CreatePropertyInput{
		{
			Title:            "Skyline Residency",
			Slug:             "skyline-residency",
			Description:      "Twenty-storey residential tower with two and three bedroom apartments.",
			ShortDescription: "Residential tower in Gulberg",
			Location:         entities.Location{Address: "Main Boulevard", City: "Lahore", State: "Punjab", Country: "Pakistan"},
			PropertyType:     entities.PropertyResidential,
			Status:           entities.PropertyConstruction,
			TotalValue:       decimal.NewFromInt(500000000),
			MarketValue:      decimal.NewFromInt(520000000),
			ExpectedROI:      decimal.NewFromInt(12),
			MinInvestment:    decimal.NewFromInt(10000),
			TotalTokens:      50000,
			PricePerToken:    decimal.NewFromInt(10000),
			Features:         []string{"Parking", "Gym", "Rooftop garden"},
			IsFeatured:       true,
			SortOrder:        1,
		},
		{
			Title:            "Harbour Trade Centre",
			Slug:             "harbour-trade-centre",
			Description:      "Grade A office and retail space near the port.",
			ShortDescription: "Commercial complex in Clifton",
			Location:         entities.Location{Address: "Shahrah-e-Firdousi", City: "Karachi", State: "Sindh", Country: "Pakistan"},
			PropertyType:     entities.PropertyCommercial,
			Status:           entities.PropertyActive,
			TotalValue:       decimal.NewFromInt(800000000),
			MarketValue:      decimal.NewFromInt(850000000),
			ExpectedROI:      decimal.NewFromInt(15),
			MinInvestment:    decimal.NewFromInt(20000),
			TotalTokens:      40000,
			PricePerToken:    decimal.NewFromInt(20000),
			Features:         []string{"Central cooling", "Backup power"},
			SortOrder:        2,
		},
		{
			Title:            "Margalla Villas",
			Slug:             "margalla-villas",
			Description:      "Gated community of twelve villas at the foot of the hills.",
			ShortDescription: "Villas in Islamabad",
			Location:         entities.Location{Address: "Sector E-11", City: "Islamabad", State: "ICT", Country: "Pakistan"},
			PropertyType:     entities.PropertyResidential,
			Status:           entities.PropertyPlanning,
			TotalValue:       decimal.NewFromInt(300000000),
			MarketValue:      decimal.NewFromInt(300000000),
			ExpectedROI:      decimal.NewFromInt(10),
			MinInvestment:    decimal.NewFromInt(5000),
			TotalTokens:      60000,
			PricePerToken:    decimal.NewFromInt(5000),
			SortOrder:        3,
		},
	}
}

func seedAdmin(ctx context.Context, rt seedRuntime, opts seedOptions, hash func(string) (string, error), out io.Writer) error {
	existing, err := rt.FindUserByEmail(ctx, opts.adminEmail)
	switch {
	case err == nil:
		if existing.Role != entities.UserRoleAdmin {
			return fmt.Errorf("user %s exists but is not an admin (role=%s)", opts.adminEmail, existing.Role)
		}
		_, _ = fmt.Fprintf(out, "admin %s already present\n", opts.adminEmail)
		return nil
	case !errors.Is(err, domainerrors.ErrNotFound):
		return fmt.Errorf("failed to look up %s: %w", opts.adminEmail, err)
	}

	passwordHash, err := hash(opts.adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &entities.User{
		Email:           opts.adminEmail,
		Name:            opts.adminName,
		PasswordHash:    passwordHash,
		Role:            entities.UserRoleAdmin,
		IsActive:        true,
		KYCStatus:       entities.KYCVerified,
		IsEmailVerified: true,
	}
	if err := rt.CreateAdmin(ctx, admin); err != nil {
		return fmt.Errorf("failed creating admin: %w", err)
	}
	_, _ = fmt.Fprintf(out, "admin_id=%s\n", admin.ID)
	return nil
}

func seedProperties(ctx context.Context, rt seedRuntime, out io.Writer) (int, error) {
	created := 0
	for _, input := range demoProperties() {
		exists, err := rt.SlugExists(ctx, input.Slug)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		p, err := rt.CreateProperty(ctx, &input)
		if err != nil {
			return created, fmt.Errorf("failed creating %s: %w", input.Slug, err)
		}
		_, _ = fmt.Fprintf(out, "property %s id=%s\n", p.Slug, p.ID)
		created++
	}
	return created, nil
}

func runSeed(args []string, deps seedDeps) error {
	def := defaultSeedDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.hash == nil {
		deps.hash = def.hash
	}
	if deps.out == nil {
		deps.out = def.out
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	opts, err := parseSeedFlags(args)
	if err != nil {
		return err
	}
	if opts.adminEmail == "" && !opts.demo {
		return fmt.Errorf("nothing to seed: pass --admin-email or --demo")
	}

	cfg := deps.loadCfg()
	logger.Init(cfg.Server.Env)
	defer logger.Sync()

	rt, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	ctx := context.Background()
	if opts.adminEmail != "" {
		if err := seedAdmin(ctx, rt, opts, deps.hash, deps.out); err != nil {
			return err
		}
	}
	if opts.demo {
		n, err := seedProperties(ctx, rt, deps.out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(deps.out, "demo properties created=%d\n", n)
	}
	return nil
}

func main() {
	if err := runSeed(os.Args[1:], defaultSeedDeps()); err != nil {
		log.Fatal(err)
	}
}
