package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tokensale/internal/sale"
)

// MintNative is the pseudo-mint the native payment asset is booked under.
const MintNative = "native"

var ErrVaultInsufficient = errors.New("insufficient wallet balance")

// Vault is the Postgres-backed custodian. Each movement runs in a
// serializable transaction with both rows locked, retried on conflict.
type Vault struct {
	db   *pgxpool.Pool
	auth sale.Authority
}

// NewVault provisions the custodian with the authority that system-owned
// wallets accept.
func NewVault(db *pgxpool.Pool, auth sale.Authority) *Vault {
	return &Vault{db: db, auth: auth}
}

func (v *Vault) Balance(ctx context.Context, wallet string) (int64, error) {
	return v.balance(ctx, wallet, "token")
}

func (v *Vault) TransferNative(ctx context.Context, from, to string, amount int64) error {
	return v.move(ctx, MintNative, from, to, amount)
}

func (v *Vault) Transfer(ctx context.Context, auth sale.Authority, from, to string, amount int64) error {
	if auth != v.auth {
		return sale.ErrUnauthorized
	}
	return v.move(ctx, "token", from, to, amount)
}

func (v *Vault) TransferStable(ctx context.Context, mint, from, to string, amount int64) error {
	return v.move(ctx, mint, from, to, amount)
}

// Mint books newly issued sale tokens. Rows for the sale token are always
// keyed under the fixed "token" mint, whatever its external address.
func (v *Vault) Mint(ctx context.Context, auth sale.Authority, _, to string, amount int64) error {
	if auth != v.auth {
		return sale.ErrUnauthorized
	}
	if amount <= 0 {
		return fmt.Errorf("mint amount must be positive")
	}
	_, err := v.db.Exec(ctx, `
		INSERT INTO presale.wallets (wallet, mint, balance)
		VALUES ($1, 'token', $2)
		ON CONFLICT (wallet, mint) DO UPDATE
		SET balance = presale.wallets.balance + $2
	`, to, amount)
	return err
}

// Credit seeds a wallet balance directly. Used by provisioning tooling.
func (v *Vault) Credit(ctx context.Context, mint, wallet string, amount int64) error {
	if mint == "" {
		mint = "token"
	}
	_, err := v.db.Exec(ctx, `
		INSERT INTO presale.wallets (wallet, mint, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (wallet, mint) DO UPDATE
		SET balance = presale.wallets.balance + $3
	`, wallet, mint, amount)
	return err
}

func (v *Vault) balance(ctx context.Context, wallet, mint string) (int64, error) {
	var out int64
	err := v.db.QueryRow(ctx, `
		SELECT balance
		FROM presale.wallets
		WHERE wallet = $1 AND mint = $2
	`, wallet, mint).Scan(&out)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return out, err
}

func (v *Vault) move(ctx context.Context, mint, from, to string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive")
	}

	const maxAttempts = 8
	retryDelay := 75 * time.Millisecond
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := v.moveTx(ctx, mint, from, to, amount)
		if err == nil {
			return nil
		}
		if !isSerializationError(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			return err
		}
		if err := sleepWithContext(ctx, retryDelay); err != nil {
			return err
		}
		if retryDelay < 1200*time.Millisecond {
			retryDelay *= 2
		}
	}
	return nil
}

func (v *Vault) moveTx(ctx context.Context, mint, from, to string, amount int64) error {
	tx, err := v.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var balance int64
	err = tx.QueryRow(ctx, `
		SELECT balance
		FROM presale.wallets
		WHERE wallet = $1 AND mint = $2
		FOR UPDATE
	`, from, mint).Scan(&balance)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("%w: %s has no %s balance", ErrVaultInsufficient, from, mint)
	}
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrVaultInsufficient, from, balance, amount)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE presale.wallets
		SET balance = balance - $1
		WHERE wallet = $2 AND mint = $3
	`, amount, from, mint); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO presale.wallets (wallet, mint, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (wallet, mint) DO UPDATE
		SET balance = presale.wallets.balance + $3
	`, to, mint, amount); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
