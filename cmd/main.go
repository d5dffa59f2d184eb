package main

import (
	"context"
	"errors"
	"os"

	"github.com/Sittravell/MalTrackarr/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "maltrackarr.toml"

func main() {
	logger := shared.NewLogger(nil)

	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded environment from .env")
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(defaultConfigPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(defaultConfigPath); err == nil {
			config = loadedConfig
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "maltrackarr",
		Usage:    "Serve a MyAnimeList watch-list enriched with TVDB/IMDB ids",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrMissingConfig) {
			logger.Fatalf("credentials file missing, run `maltrackarr setup` first: %v", err)
		}
		logger.Fatalf("application error: %v", err)
	}
}
