package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/kairadc/poker-standings/internal/app"
)

func main() {
	// Optional .env for local development; real deployments set POKER_*
	// variables directly.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env file")
	}

	application, err := app.NewApplication()
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
