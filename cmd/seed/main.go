package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"ai-tutor-backend/internal/config"
	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/model"
	pg "ai-tutor-backend/internal/infra/db/postgres"
	"ai-tutor-backend/internal/infra/logging"
	"ai-tutor-backend/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	email := flag.String("email", "demo@example.com", "demo user email")
	password := flag.String("password", "demo-password", "demo user password")
	flag.Parse()

	// ---- Config ----
	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		logging.New(config.LogConfig{}, true).Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect Postgres
	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	userUC := usecase.NewUserUseCase(pg.NewPostgresUserRepo(pool), logger)

	u, err := userUC.Register(ctx, *email, "demo", *password)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		u, err = userUC.Authenticate(ctx, *email, *password)
		if err != nil {
			logger.Fatal().Err(err).Msg("demo user exists with a different password")
		}
		fmt.Printf("demo user already present (id=%s)\n", u.ID)
	case err != nil:
		logger.Fatal().Err(err).Msg("register demo user")
	default:
		fmt.Printf("seeded demo user (id=%s, email=%s)\n", u.ID, u.Email)
	}

	if _, err := userUC.UpdateProfile(ctx, u.ID, model.Profile{
		Year:           "1st year",
		SkillLevel:     "beginner",
		CommonMistakes: []string{"sign errors when expanding brackets", "forgetting the chain rule"},
	}); err != nil {
		logger.Fatal().Err(err).Msg("update profile")
	}
	if _, err := userUC.SetPremium(ctx, u.ID, true); err != nil {
		logger.Fatal().Err(err).Msg("set premium")
	}

	fmt.Println("✅ Seeding complete.")
}
