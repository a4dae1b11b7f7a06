package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type APIConfig struct {
	Addr         string
	DatabaseURL  string
	AdminToken   string
	AdminWallet  string
	AuthorityKey string

	// StableMints is the default stable-asset allow-list applied when an
	// initialize request does not carry its own.
	StableMints []string

	// RequireTimeGate makes admin stage advances respect the configured
	// stage durations.
	RequireTimeGate bool

	// Postgres pool sizing. The API is the only process holding a pool,
	// so these bound its whole connection footprint.
	DBMaxConns int32
	DBMinConns int32
}

type CLIConfig struct {
	APIBaseURL string
}

// WorkerConfig drives the stage-refresh worker. The worker is a plain
// API client; all sale state mutations stay in the API process.
type WorkerConfig struct {
	APIBaseURL   string
	AdminToken   string
	AutoAdvance  bool
	RefreshEvery time.Duration
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("PRESALE_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:             addr,
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AdminToken:       strings.TrimSpace(os.Getenv("PRESALE_ADMIN_TOKEN")),
		AdminWallet:      strings.TrimSpace(os.Getenv("PRESALE_ADMIN_WALLET")),
		AuthorityKey:     strings.TrimSpace(os.Getenv("PRESALE_AUTHORITY_KEY")),
		StableMints:     envList("PRESALE_STABLE_MINTS"),
		RequireTimeGate: envBoolDefault("PRESALE_REQUIRE_TIME_GATE", true),
		DBMaxConns:      envInt32Default("PRESALE_DB_MAX_CONNS", 10),
		DBMinConns:      envInt32Default("PRESALE_DB_MIN_CONNS", 1),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AdminToken == "" {
		return cfg, fmt.Errorf("PRESALE_ADMIN_TOKEN is required")
	}
	if cfg.AdminWallet == "" {
		return cfg, fmt.Errorf("PRESALE_ADMIN_WALLET is required")
	}
	if cfg.AuthorityKey == "" {
		return cfg, fmt.Errorf("PRESALE_AUTHORITY_KEY is required")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("PRESALE_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	cfg := WorkerConfig{
		APIBaseURL:   strings.TrimRight(envDefault("PRESALE_API_BASE_URL", "http://localhost:8080"), "/"),
		AdminToken:   strings.TrimSpace(os.Getenv("PRESALE_ADMIN_TOKEN")),
		AutoAdvance:  envBoolDefault("PRESALE_AUTO_ADVANCE", false),
		RefreshEvery: envDurationDefault("PRESALE_REFRESH_EVERY", time.Minute),
	}
	if cfg.AdminToken == "" {
		return cfg, fmt.Errorf("PRESALE_ADMIN_TOKEN is required")
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt32Default(key string, fallback int32) int32 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n <= 0 {
		return fallback
	}
	return int32(n)
}

func envList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
