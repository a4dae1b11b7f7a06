package sale

import "context"

// Authority is the capability a system-owned wallet presents to the
// custodian. Only the engine constructs one; collaborators compare it
// against the authority they were provisioned with.
type Authority struct {
	key string
}

func NewAuthority(key string) Authority {
	return Authority{key: key}
}

func (a Authority) Key() string { return a.key }

// Custodian is the external asset-transfer collaborator. All amounts are in
// smallest units. A failed transfer must leave both sides unchanged.
type Custodian interface {
	// Balance returns the token balance of a system wallet.
	Balance(ctx context.Context, wallet string) (int64, error)

	// TransferNative moves the native payment asset between accounts on
	// the buyer's authority.
	TransferNative(ctx context.Context, from, to string, amount int64) error

	// Transfer moves sale tokens out of a system-owned wallet. The
	// authority must match the one the custodian was provisioned with.
	Transfer(ctx context.Context, auth Authority, from, to string, amount int64) error

	// TransferStable moves an allow-listed stable asset between accounts
	// on the buyer's authority.
	TransferStable(ctx context.Context, mint, from, to string, amount int64) error

	// Mint issues new sale tokens into a system wallet.
	Mint(ctx context.Context, auth Authority, mint, to string, amount int64) error
}

// AuditSink receives the append-only audit stream. Append is synchronous:
// an operation does not report success until its events are written.
type AuditSink interface {
	Append(ctx context.Context, e Event) error
}

// Store persists the sale config snapshot. Save must be atomic: a failed
// save leaves the previous snapshot intact.
type Store interface {
	Load(ctx context.Context) (*Config, bool, error)
	Save(ctx context.Context, cfg *Config) error
}
