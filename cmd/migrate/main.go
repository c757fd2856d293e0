// cmd/migrate/main.go
package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"newsroom-backend/internal/config"
	"newsroom-backend/internal/infrastructure/database"
	"newsroom-backend/migrations"
	"newsroom-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	logger.Init("development", "info")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := connect(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("[Migrate] Failed to connect")
	}
	defer db.Close()

	applied, err := database.NewMigrator(db.Pool, migrations.FS).Up(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("[Migrate] Failed")
	}
	log.Info().Int("applied", applied).Msg("[Migrate] ✓ Schema up to date")
}

func connect(ctx context.Context) (*database.PostgresDB, error) {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, err
	}
	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		return nil, err
	}
	return db, nil
}
