// cmd/seed/main.go
// Tạo tài khoản redaktur đầu tiên. Không làm gì nếu đã có redaktur.
//
//	go run ./cmd/seed -email chief@newsroom.local -password '...' [-migrate]
package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"newsroom-backend/internal/config"
	"newsroom-backend/internal/domains/user"
	userRepo "newsroom-backend/internal/domains/user/repository"
	userService "newsroom-backend/internal/domains/user/service"
	"newsroom-backend/internal/infrastructure/database"
	"newsroom-backend/migrations"
	"newsroom-backend/pkg/jwt"
	"newsroom-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("[Seed] Failed to load config")
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)

	email := flag.String("email", cfg.Seed.Email, "redaktur e-mail")
	password := flag.String("password", cfg.Seed.Password, "redaktur password (min 8)")
	name := flag.String("name", cfg.Seed.FullName, "redaktur full name")
	migrate := flag.Bool("migrate", false, "apply migrations first")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("[Seed] Invalid database config")
	}
	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("[Seed] Failed to connect")
	}
	defer db.Close()

	if *migrate {
		applied, err := database.NewMigrator(db.Pool, migrations.FS).Up(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("[Seed] Migration failed")
		}
		log.Info().Int("applied", applied).Msg("[Seed] Migrations applied")
	}

	// Không cần cache/queue: seed chạy một lần, ngoài request path
	svc := userService.NewUserService(
		userRepo.NewPostgresRepository(db.Pool, nil),
		jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL()),
		nil,
		nil,
	)

	dto, created, err := svc.Bootstrap(ctx, user.CreateUserRequest{
		Email:    *email,
		Password: *password,
		FullName: *name,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("[Seed] Failed to create redaktur")
	}
	if !created {
		log.Info().Msg("[Seed] A redaktur already exists, nothing to do")
		return
	}
	log.Info().
		Str("user_id", dto.ID.String()).
		Str("email", dto.Email).
		Msg("[Seed] ✓ Redaktur created")
}
