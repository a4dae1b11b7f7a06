package sale

import "time"

// PaymentMethod distinguishes the native floating-price asset from the
// pegged-value stable assets.
type PaymentMethod string

const (
	PaymentNative PaymentMethod = "native"
	PaymentStable PaymentMethod = "stable_asset"

	// PaymentExternal marks a purchase settled off-system; the engine
	// records the sale without moving the payment asset itself.
	PaymentExternal PaymentMethod = "external"
)

// Config is the durable record for one deployed sale. It is created once by
// Initialize and mutated only under the engine's lock for the rest of the
// sale's life; it is never deleted, only marked finalized.
type Config struct {
	Admin           string `json:"admin"`
	MerchantWallet  string `json:"merchant_wallet"`
	SupplyWallet    string `json:"supply_wallet"`
	RewardWallet    string `json:"reward_wallet"`
	LiquidityWallet string `json:"liquidity_wallet"`
	TokenMint       string `json:"token_mint"`

	PrivatePrice int64 `json:"private_price"`
	PublicPrice  int64 `json:"public_price"`
	CurrentPrice int64 `json:"current_price"`

	Stage           Stage `json:"sale_stage"`
	PresaleStart    int64 `json:"presale_start"`
	PrivateDuration int64 `json:"private_duration"`
	PublicDuration  int64 `json:"public_duration"`

	TotalSold       int64 `json:"total_sold"`
	ReferralCharged int64 `json:"referral_charged"`

	RegularRate    int64 `json:"regular_referral_rate"`
	InfluencerRate int64 `json:"influencer_referral_rate"`

	// RewardCredits tracks the accrued, not-yet-withdrawn reward balance
	// per referrer, in whole tokens. Sums to ReferralCharged.
	RewardCredits map[string]int64 `json:"reward_credits"`

	TotalMinted int64 `json:"total_minted"`
	SupplyCap   int64 `json:"supply_cap"`

	// StableMints is the allow-list for stable-asset purchases.
	StableMints []string `json:"stable_mints"`

	// RequireTimeGate makes the admin advance path enforce the stage
	// duration boundaries.
	RequireTimeGate bool `json:"require_time_gate"`

	Finalized bool `json:"pool_finalized"`

	// Version is the optimistic-concurrency stamp maintained by the
	// store. A save presenting a stale version fails instead of
	// overwriting state committed by another writer.
	Version int64 `json:"-"`
}

func (c *Config) stableAllowed(mint string) bool {
	for _, m := range c.StableMints {
		if m == mint {
			return true
		}
	}
	return false
}

// clone deep-copies the config so a failed operation never leaves a
// half-mutated record behind.
func (c *Config) clone() *Config {
	next := *c
	next.RewardCredits = make(map[string]int64, len(c.RewardCredits))
	for k, v := range c.RewardCredits {
		next.RewardCredits[k] = v
	}
	next.StableMints = append([]string(nil), c.StableMints...)
	return &next
}

type InitializeInput struct {
	Admin           string
	MerchantWallet  string
	SupplyWallet    string
	RewardWallet    string
	LiquidityWallet string
	TokenMint       string

	PrivatePrice        int64
	PublicPrice         int64
	PrivateDurationDays int64
	PublicDurationDays  int64
	RegularRate         int64
	InfluencerRate      int64

	SupplyCap       int64
	StableMints     []string
	RequireTimeGate bool

	// LaunchAt, when set to a future time, places the sale in PreLaunch
	// until the clock reaches it. Zero means "starts on stage advance".
	LaunchAt int64
}

type BuyInput struct {
	Buyer         string
	Method        PaymentMethod
	PaymentAmount int64
	UnitPriceUSD  int64
	Referrer      string
	IsInfluencer  bool
}

type BuyStableInput struct {
	Buyer        string
	StableMint   string
	StableAmount int64
	Referrer     string
	IsInfluencer bool
}

// Receipt is the ephemeral purchase record: created and fully consumed
// within a single purchase operation, surviving only as audit events.
type Receipt struct {
	Buyer          string        `json:"buyer"`
	Method         PaymentMethod `json:"payment_method"`
	PaymentAmount  int64         `json:"payment_amount"`
	USDAmount      int64         `json:"usd_amount"`
	Tokens         int64         `json:"tokens"`
	PriceMicros    int64         `json:"price_micros"`
	Referrer       string        `json:"referrer,omitempty"`
	RewardTokens   int64         `json:"reward_tokens"`
	RewardCredited bool          `json:"reward_credited"`
	RewardDeclined string        `json:"reward_declined,omitempty"`
}

// SweepResult reports the one-shot finalization totals, in smallest units.
type SweepResult struct {
	UnsoldTokens  int64 `json:"unsold_tokens"`
	UnsoldRewards int64 `json:"unsold_rewards"`
}

// Balances is the read-only remaining-supply view, in smallest units.
type Balances struct {
	Sellable int64 `json:"sellable"`
	Rewards  int64 `json:"rewards"`
}

// Event is one append-only audit record. Every mutating operation emits at
// least one before returning success.
type Event struct {
	ID      string         `json:"id"`
	At      time.Time      `json:"at"`
	Kind    string         `json:"kind"`
	Actor   string         `json:"actor"`
	Payload map[string]any `json:"payload"`
}

const (
	EventInitialized     = "sale_initialized"
	EventStageChanged    = "stage_changed"
	EventStageForced     = "stage_forced"
	EventPeriodUpdated   = "period_updated"
	EventPriceUpdated    = "price_updated"
	EventRatesUpdated    = "referral_rates_updated"
	EventPurchase        = "purchase"
	EventRewardCredited  = "referral_reward_credited"
	EventRewardDeclined  = "referral_reward_declined"
	EventRewardWithdrawn = "referral_reward_withdrawn"
	EventTreasuryRefill  = "treasury_refilled"
	EventFinalized       = "pool_finalized"
)
