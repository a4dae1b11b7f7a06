package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tokensale/internal/cli"
	"tokensale/internal/config"

	"github.com/joho/godotenv"
)

// The worker drives the time-based stage transitions so an idle sale still
// ends on schedule without anyone calling the API. It is a plain client of
// the API's refresh endpoint: the API process stays the sole writer of the
// sale config.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found")
	}

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}
	if !cfg.AutoAdvance {
		logger.Info("auto stage advance disabled, worker exiting")
		return
	}

	client := cli.NewClient(cfg.APIBaseURL)

	runOnce := strings.EqualFold(strings.TrimSpace(os.Getenv("PRESALE_WORKER_RUN_ONCE")), "true")
	if runOnce {
		if err := refresh(ctx, client, cfg.AdminToken, logger); err != nil {
			logger.Error("stage refresh failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}

	ticker := time.NewTicker(cfg.RefreshEvery)
	defer ticker.Stop()

	logger.Info("worker started", "api", cfg.APIBaseURL, "refresh_every", cfg.RefreshEvery.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			if err := refresh(ctx, client, cfg.AdminToken, logger); err != nil {
				logger.Error("stage refresh failed", "err", err)
				continue
			}
		}
	}
}

// refresh asks the API to recompute the stage from the clock. A 404 means
// no sale has been initialized yet, which is not a failure.
func refresh(ctx context.Context, client *cli.Client, token string, logger *slog.Logger) error {
	out, err := client.RefreshStage(ctx, token)
	if err != nil {
		var apiErr *cli.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			logger.Info("no sale initialized yet")
			return nil
		}
		return err
	}
	stage, _ := out["stage"].(string)
	logger.Info("stage refresh complete", "stage", stage)
	return nil
}
