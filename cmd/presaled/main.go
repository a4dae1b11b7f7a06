package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tokensale/internal/api"
	"tokensale/internal/auth"
	"tokensale/internal/config"
	"tokensale/internal/db"
	"tokensale/internal/sale"
	"tokensale/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found")
	}

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	pg := store.NewPG(pool)
	if err := pg.Migrate(ctx); err != nil {
		logger.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	authority := sale.NewAuthority(cfg.AuthorityKey)
	vault := store.NewVault(pool, authority)
	verifier := auth.NewAdminVerifier(cfg.AdminToken, cfg.AdminWallet)

	engine := sale.NewEngine(vault, pg, pg, authority, logger)
	restored, err := engine.Restore(ctx)
	if err != nil {
		logger.Error("restore sale failed", "err", err)
		os.Exit(1)
	}
	if restored {
		logger.Info("sale restored from store")
	} else {
		logger.Info("no sale initialized yet")
	}

	server := api.New(cfg, logger, verifier, engine)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("presale api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
