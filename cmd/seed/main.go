package main

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/aera-issue-service/internal/auth"
	"github.com/spec-kit/aera-issue-service/internal/config"
	"github.com/spec-kit/aera-issue-service/internal/domain"
	"github.com/spec-kit/aera-issue-service/internal/observability"
	"github.com/spec-kit/aera-issue-service/internal/persistence"
	"github.com/spec-kit/aera-issue-service/internal/repository"
)

type seedAccount struct {
	FullName  string
	Email     string
	Username  string
	Password  string
	Role      domain.Role
	Specialty string
}

var seedAccounts = []seedAccount{
	{FullName: "Alice Morgan", Email: "alice.morgan@aera.local", Username: "manager_alice", Password: "manager123", Role: domain.RoleManager},
	{FullName: "Bob Rivera", Email: "bob.rivera@aera.local", Username: "tech_water_bob", Password: "tech123", Role: domain.RoleTechnician, Specialty: "water"},
	{FullName: "Charlie Osei", Email: "charlie.osei@aera.local", Username: "tech_elec_charlie", Password: "tech123", Role: domain.RoleTechnician, Specialty: "electricity"},
	{FullName: "Diana Petrov", Email: "diana.petrov@aera.local", Username: "tech_clean_diana", Password: "tech123", Role: domain.RoleTechnician, Specialty: "cleaning"},
	{FullName: "Evan Castillo", Email: "evan.castillo@aera.local", Username: "tech_others_evan", Password: "tech123", Role: domain.RoleTechnician, Specialty: "others"},
	{FullName: "Frank Njoroge", Email: "frank.njoroge@aera.local", Username: "dc_frank", Password: "collector123", Role: domain.RoleDataCollector},
	{FullName: "Grace Lindqvist", Email: "grace.lindqvist@aera.local", Username: "dc_grace", Password: "collector123", Role: domain.RoleDataCollector},
	{FullName: "Henry Abara", Email: "henry.abara@aera.local", Username: "dc_henry", Password: "collector123", Role: domain.RoleDataCollector},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	users := repository.NewUserRepository(pg.PoolHandle())

	for _, account := range seedAccounts {
		if err := seedUser(ctx, users, cfg.Auth.BcryptCost, account, logger); err != nil {
			logger.Fatal("seed failed", zap.String("username", account.Username), zap.Error(err))
		}
	}

	logger.Info("seed complete", zap.Int("accounts", len(seedAccounts)))
}

func seedUser(ctx context.Context, users repository.UserRepository, bcryptCost int, account seedAccount, logger *zap.Logger) error {
	_, err := users.GetByUsername(ctx, account.Username)
	if err == nil {
		logger.Info("account exists, skipping", zap.String("username", account.Username))
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(account.Password, bcryptCost)
	if err != nil {
		return err
	}

	user := &domain.User{
		FullName:     account.FullName,
		Email:        account.Email,
		Username:     account.Username,
		PasswordHash: hash,
		Role:         account.Role,
	}
	if account.Specialty != "" {
		specialty := account.Specialty
		user.Specialty = &specialty
	}

	if err := users.Create(ctx, user); err != nil {
		return err
	}

	logger.Info("account created",
		zap.String("username", account.Username),
		zap.String("role", string(account.Role)),
	)
	return nil
}
