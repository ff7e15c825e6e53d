package main

import (
	"context"
	"log"
	"os"

	"github.com/godilite/qa-scorecard/internal/app"
	"github.com/godilite/qa-scorecard/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	flags := pflag.NewFlagSet("scorecard-server", pflag.ExitOnError)
	envFile := flags.String("env-file", ".env", "dotenv file loaded before reading the environment")
	catalog := flags.String("catalog", "", "rubric catalog YAML; overrides CATALOG_PATH")
	_ = flags.Parse(os.Args[1:])

	if err := godotenv.Load(*envFile); err != nil && flags.Changed("env-file") {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}

	cfg := config.LoadFromEnv()
	if *catalog != "" {
		cfg.CatalogPath = *catalog
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	application, err := app.NewApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	if err := application.Run(); err != nil {
		logger.Fatal("Application exited with error", zap.Error(err))
	}
}
