// Package store persists the sale engine's durable state in Postgres: the
// single sale config snapshot, the append-only audit stream, and the
// custodial wallet balances.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tokensale/internal/sale"
)

// Namespace is the fixed addressing constant the config record is keyed
// under, alongside the admin identity.
const Namespace = "presale"

// ErrStaleSnapshot means another writer committed a newer config between
// this process's load and its save. Reload before retrying.
var ErrStaleSnapshot = errors.New("sale config changed since it was loaded")

type PG struct {
	db *pgxpool.Pool
}

func NewPG(db *pgxpool.Pool) *PG {
	return &PG{db: db}
}

// Migrate creates the schema. Idempotent.
func (p *PG) Migrate(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
		CREATE SCHEMA IF NOT EXISTS presale;
		CREATE TABLE IF NOT EXISTS presale.config (
			namespace  text PRIMARY KEY,
			admin      text NOT NULL,
			data       jsonb NOT NULL,
			version    bigint NOT NULL DEFAULT 0,
			updated_at timestamptz NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS presale.audit_events (
			id      uuid PRIMARY KEY,
			at      timestamptz NOT NULL,
			kind    text NOT NULL,
			actor   text NOT NULL,
			payload jsonb NOT NULL
		);
		CREATE TABLE IF NOT EXISTS presale.wallets (
			wallet  text NOT NULL,
			mint    text NOT NULL,
			balance bigint NOT NULL DEFAULT 0 CHECK (balance >= 0),
			PRIMARY KEY (wallet, mint)
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate presale schema: %w", err)
	}
	return nil
}

func (p *PG) Load(ctx context.Context) (*sale.Config, bool, error) {
	var raw []byte
	var version int64
	err := p.db.QueryRow(ctx, `
		SELECT data, version
		FROM presale.config
		WHERE namespace = $1
	`, Namespace).Scan(&raw, &version)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var cfg sale.Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, false, fmt.Errorf("decode sale config: %w", err)
	}
	if cfg.RewardCredits == nil {
		cfg.RewardCredits = map[string]int64{}
	}
	cfg.Version = version
	return &cfg, true, nil
}

// Save commits cfg only if the stored row still carries the version cfg
// was loaded with, then advances both. A concurrent writer therefore
// gets ErrStaleSnapshot instead of silently clobbering newer state.
func (p *PG) Save(ctx context.Context, cfg *sale.Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode sale config: %w", err)
	}
	if cfg.Version == 0 {
		ct, err := p.db.Exec(ctx, `
			INSERT INTO presale.config (namespace, admin, data, version, updated_at)
			VALUES ($1, $2, $3::jsonb, 1, now())
			ON CONFLICT (namespace) DO NOTHING
		`, Namespace, cfg.Admin, string(raw))
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return ErrStaleSnapshot
		}
		cfg.Version = 1
		return nil
	}
	ct, err := p.db.Exec(ctx, `
		UPDATE presale.config
		SET admin = $2, data = $3::jsonb, version = version + 1, updated_at = now()
		WHERE namespace = $1 AND version = $4
	`, Namespace, cfg.Admin, string(raw), cfg.Version)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrStaleSnapshot
	}
	cfg.Version++
	return nil
}

func (p *PG) Append(ctx context.Context, e sale.Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("encode audit payload: %w", err)
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO presale.audit_events (id, at, kind, actor, payload)
		VALUES ($1, $2, $3, $4, $5::jsonb)
	`, e.ID, e.At, e.Kind, e.Actor, string(payload))
	return err
}
