package sale

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Engine owns one sale instance. Every mutating operation runs under mu, so
// the supply check and the total_sold increment are a single atomic unit
// with respect to concurrently arriving purchases. Separate sales are
// separate engines and proceed independently.
type Engine struct {
	mu    sync.Mutex
	cfg   *Config
	cust  Custodian
	store Store
	audit AuditSink
	auth  Authority
	log   *slog.Logger
	now   func() time.Time
}

func NewEngine(cust Custodian, store Store, audit AuditSink, auth Authority, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cust:  cust,
		store: store,
		audit: audit,
		auth:  auth,
		log:   logger,
		now:   time.Now,
	}
}

// Restore loads a previously initialized sale from the store. Returns false
// when no sale exists yet.
func (e *Engine) Restore(ctx context.Context) (bool, error) {
	cfg, ok, err := e.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load sale config: %w", err)
	}
	if !ok {
		return false, nil
	}
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
	return true, nil
}

func (e *Engine) Initialize(ctx context.Context, in InitializeInput) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg != nil {
		return ErrAlreadyInitialized
	}
	if !validRate(in.RegularRate) || !validRate(in.InfluencerRate) {
		return ErrInvalidRate
	}
	if in.PrivatePrice <= 0 || in.PublicPrice <= 0 {
		return ErrInvalidPrice
	}
	if in.PrivateDurationDays < 0 || in.PublicDurationDays < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidPrice)
	}

	now := e.now().Unix()
	cfg := &Config{
		Admin:           in.Admin,
		MerchantWallet:  in.MerchantWallet,
		SupplyWallet:    in.SupplyWallet,
		RewardWallet:    in.RewardWallet,
		LiquidityWallet: in.LiquidityWallet,
		TokenMint:       in.TokenMint,
		PrivatePrice:    in.PrivatePrice,
		PublicPrice:     in.PublicPrice,
		CurrentPrice:    in.PrivatePrice,
		Stage:           StageNotStarted,
		PrivateDuration: in.PrivateDurationDays * SecondsPerDay,
		PublicDuration:  in.PublicDurationDays * SecondsPerDay,
		RegularRate:     in.RegularRate,
		InfluencerRate:  in.InfluencerRate,
		RewardCredits:   map[string]int64{},
		SupplyCap:       in.SupplyCap,
		StableMints:     append([]string(nil), in.StableMints...),
		RequireTimeGate: in.RequireTimeGate,
	}
	switch {
	case in.LaunchAt > now:
		cfg.Stage = StagePreLaunch
		cfg.PresaleStart = in.LaunchAt
	case in.LaunchAt > 0:
		cfg.Stage = StagePrivate
		cfg.PresaleStart = in.LaunchAt
	}

	return e.commit(ctx, cfg, Event{
		Kind:  EventInitialized,
		Actor: in.Admin,
		Payload: map[string]any{
			"private_price":     in.PrivatePrice,
			"public_price":      in.PublicPrice,
			"regular_rate":      in.RegularRate,
			"influencer_rate":   in.InfluencerRate,
			"stage":             cfg.Stage.String(),
			"require_time_gate": in.RequireTimeGate,
		},
	})
}

// AdvanceStage moves the lifecycle one step forward. When the sale is
// configured with a time gate, the Private and Public boundaries must have
// elapsed first.
func (e *Engine) AdvanceStage(ctx context.Context, caller string) (Stage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return StageNotStarted, err
	}
	next := e.cfg.clone()
	now := e.now().Unix()

	switch next.Stage {
	case StageNotStarted, StagePreLaunch:
		next.PresaleStart = now
		next.CurrentPrice = next.PrivatePrice
		next.Stage = StagePrivate
	case StagePrivate:
		if next.RequireTimeGate && now < next.PresaleStart+next.PrivateDuration {
			return next.Stage, ErrPrivateSaleNotOver
		}
		next.CurrentPrice = next.PublicPrice
		next.Stage = StagePublic
	case StagePublic:
		if next.RequireTimeGate && now < next.PresaleStart+next.PrivateDuration+next.PublicDuration {
			return next.Stage, ErrPublicSaleNotOver
		}
		next.Stage = StageEnded
	default:
		return next.Stage, ErrSaleAlreadyEnded
	}

	err := e.commit(ctx, next, Event{
		Kind:  EventStageChanged,
		Actor: caller,
		Payload: map[string]any{
			"stage":         next.Stage.String(),
			"current_price": next.CurrentPrice,
		},
	})
	if err != nil {
		return e.cfg.Stage, err
	}
	e.log.Info("sale stage advanced", "stage", next.Stage.String(), "at", now)
	return next.Stage, nil
}

// SetStage forces an explicit stage value. This is the only path that may
// move the lifecycle backward; a regression is always logged.
func (e *Engine) SetStage(ctx context.Context, caller string, stage Stage) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	next := e.cfg.clone()
	if stage < next.Stage {
		e.log.Warn("sale stage forced backward", "from", next.Stage.String(), "to", stage.String(), "admin", caller)
	}
	next.Stage = stage
	if p := priceForStage(stage, next.PrivatePrice, next.PublicPrice); p > 0 {
		next.CurrentPrice = p
	}
	if stage == StagePrivate && next.PresaleStart == 0 {
		next.PresaleStart = e.now().Unix()
	}

	return e.commit(ctx, next, Event{
		Kind:  EventStageForced,
		Actor: caller,
		Payload: map[string]any{
			"stage":         stage.String(),
			"current_price": next.CurrentPrice,
		},
	})
}

// RefreshStage recomputes the stage purely from wall-clock time. It is
// idempotent and never moves the lifecycle backward.
func (e *Engine) RefreshStage(ctx context.Context) (Stage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg == nil {
		return StageNotStarted, ErrSaleNotInitialized
	}
	if e.cfg.PresaleStart == 0 {
		// Not launched yet and no scheduled start; nothing to compute.
		return e.cfg.Stage, nil
	}
	computed := stageForTime(e.now().Unix(), e.cfg.PresaleStart, e.cfg.PrivateDuration, e.cfg.PublicDuration)
	if computed <= e.cfg.Stage {
		return e.cfg.Stage, nil
	}
	next := e.cfg.clone()
	next.Stage = computed
	if p := priceForStage(computed, next.PrivatePrice, next.PublicPrice); p > 0 {
		next.CurrentPrice = p
	}
	err := e.commit(ctx, next, Event{
		Kind:  EventStageChanged,
		Actor: "clock",
		Payload: map[string]any{
			"stage":         computed.String(),
			"current_price": next.CurrentPrice,
		},
	})
	if err != nil {
		return e.cfg.Stage, err
	}
	return computed, nil
}

func (e *Engine) UpdateSalePeriod(ctx context.Context, caller string, privateDays, publicDays int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if e.cfg.Stage == StageEnded {
		return ErrSaleAlreadyEnded
	}
	if privateDays < 0 || publicDays < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidPrice)
	}
	next := e.cfg.clone()
	next.PrivateDuration = privateDays * SecondsPerDay
	next.PublicDuration = publicDays * SecondsPerDay

	return e.commit(ctx, next, Event{
		Kind:  EventPeriodUpdated,
		Actor: caller,
		Payload: map[string]any{
			"private_days": privateDays,
			"public_days":  publicDays,
		},
	})
}

// UpdateSalePrice updates the price bound to the active stage.
func (e *Engine) UpdateSalePrice(ctx context.Context, caller string, newPrice int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if newPrice <= 0 {
		return ErrInvalidPrice
	}
	next := e.cfg.clone()
	switch next.Stage {
	case StagePrivate:
		next.PrivatePrice = newPrice
		next.CurrentPrice = newPrice
	case StagePublic:
		next.PublicPrice = newPrice
		next.CurrentPrice = newPrice
	default:
		return ErrPresaleNotActive
	}

	return e.commit(ctx, next, Event{
		Kind:  EventPriceUpdated,
		Actor: caller,
		Payload: map[string]any{
			"new_price": newPrice,
			"stage":     next.Stage.String(),
		},
	})
}

func (e *Engine) SetReferralRate(ctx context.Context, caller string, regular, influencer int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if !validRate(regular) || !validRate(influencer) {
		return ErrInvalidRate
	}
	next := e.cfg.clone()
	next.RegularRate = regular
	next.InfluencerRate = influencer

	return e.commit(ctx, next, Event{
		Kind:  EventRatesUpdated,
		Actor: caller,
		Payload: map[string]any{
			"regular_rate":    regular,
			"influencer_rate": influencer,
		},
	})
}

// Buy validates and records a native-payment purchase. The supply check,
// the payment transfer and the total_sold increment form one atomic unit
// under the engine lock; a failed transfer leaves the ledger untouched.
func (e *Engine) Buy(ctx context.Context, in BuyInput) (Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var rcpt Receipt
	if e.cfg == nil {
		return rcpt, ErrSaleNotInitialized
	}
	if !e.cfg.Stage.Active() {
		if e.cfg.Stage == StageEnded {
			return rcpt, ErrSaleAlreadyEnded
		}
		return rcpt, ErrPresaleNotActive
	}
	method := in.Method
	if method == "" {
		method = PaymentNative
	}
	if method != PaymentNative && method != PaymentExternal {
		return rcpt, ErrInvalidPaymentType
	}
	if in.PaymentAmount <= 0 {
		return rcpt, fmt.Errorf("%w: payment amount must be positive", ErrInvalidPrice)
	}

	usd, err := ConvertPaymentToUSD(in.PaymentAmount, in.UnitPriceUSD)
	if err != nil {
		return rcpt, err
	}
	if usd < MinPurchaseUSD {
		return rcpt, fmt.Errorf("%w: payment is worth less than $%d", ErrInvalidPrice, MinPurchaseUSD)
	}
	tokens, err := ConvertUSDToTokens(usd, e.cfg.CurrentPrice)
	if err != nil {
		return rcpt, err
	}
	if tokens <= 0 {
		return rcpt, fmt.Errorf("%w: amount buys no whole token", ErrInvalidPrice)
	}

	remaining, err := e.remainingSupply(ctx)
	if err != nil {
		return rcpt, err
	}
	needed, err := checkedMul(tokens, TokenDecimals)
	if err != nil {
		return rcpt, err
	}
	if remaining < needed {
		return rcpt, ErrInsufficientTokens
	}

	// Externally settled purchases are recorded on the admin's word; only
	// native payments move funds here.
	if method == PaymentNative {
		cost, err := nativeCostFor(tokens, e.cfg.CurrentPrice, in.UnitPriceUSD)
		if err != nil {
			return rcpt, err
		}
		if in.PaymentAmount < cost {
			return rcpt, fmt.Errorf("%w: need at least %d payment units", ErrInsufficientFunds, cost)
		}
		if err := e.cust.TransferNative(ctx, in.Buyer, e.cfg.MerchantWallet, in.PaymentAmount); err != nil {
			return rcpt, fmt.Errorf("payment transfer: %w", err)
		}
	}

	next := e.cfg.clone()
	next.TotalSold += tokens

	rcpt = Receipt{
		Buyer:         in.Buyer,
		Method:        method,
		PaymentAmount: in.PaymentAmount,
		USDAmount:     usd,
		Tokens:        tokens,
		PriceMicros:   next.CurrentPrice,
		Referrer:      in.Referrer,
	}
	events := []Event{purchaseEvent(rcpt)}
	events = e.applyReferral(ctx, next, &rcpt, in.Referrer, in.IsInfluencer, events)

	if err := e.commit(ctx, next, events...); err != nil {
		return Receipt{}, err
	}
	e.log.Info("tokens purchased",
		"buyer", in.Buyer, "tokens", tokens, "usd", usd, "method", method)
	return rcpt, nil
}

// BuyStable records a stable-asset purchase. When the request exceeds the
// remaining supply it is clamped down to the deliverable whole-token amount
// and the charge recomputed proportionally; the seller never oversells.
func (e *Engine) BuyStable(ctx context.Context, in BuyStableInput) (Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var rcpt Receipt
	if e.cfg == nil {
		return rcpt, ErrSaleNotInitialized
	}
	if !e.cfg.Stage.Active() {
		if e.cfg.Stage == StageEnded {
			return rcpt, ErrSaleAlreadyEnded
		}
		return rcpt, ErrPresaleNotActive
	}
	if !e.cfg.stableAllowed(in.StableMint) {
		return rcpt, ErrInvalidStableToken
	}
	if in.StableAmount <= 0 {
		return rcpt, fmt.Errorf("%w: stable amount must be positive", ErrInvalidPrice)
	}

	tokens, err := tokensForStable(in.StableAmount, e.cfg.CurrentPrice)
	if err != nil {
		return rcpt, err
	}
	remaining, err := e.remainingSupply(ctx)
	if err != nil {
		return rcpt, err
	}
	needed, err := checkedMul(tokens, TokenDecimals)
	if err != nil {
		return rcpt, err
	}
	charge := in.StableAmount
	if remaining < needed {
		tokens = remaining / TokenDecimals
		charge, err = stableChargeFor(tokens, e.cfg.CurrentPrice)
		if err != nil {
			return rcpt, err
		}
	}
	if tokens <= 0 {
		return rcpt, ErrInsufficientTokens
	}

	chargeUnits, err := checkedMul(charge, StableScale)
	if err != nil {
		return rcpt, err
	}
	if err := e.cust.TransferStable(ctx, in.StableMint, in.Buyer, e.cfg.MerchantWallet, chargeUnits); err != nil {
		return rcpt, fmt.Errorf("stable transfer: %w", err)
	}

	next := e.cfg.clone()
	next.TotalSold += tokens

	rcpt = Receipt{
		Buyer:         in.Buyer,
		Method:        PaymentStable,
		PaymentAmount: charge,
		USDAmount:     charge,
		Tokens:        tokens,
		PriceMicros:   next.CurrentPrice,
		Referrer:      in.Referrer,
	}
	events := []Event{purchaseEvent(rcpt)}
	events = e.applyReferral(ctx, next, &rcpt, in.Referrer, in.IsInfluencer, events)

	if err := e.commit(ctx, next, events...); err != nil {
		return Receipt{}, err
	}
	e.log.Info("tokens purchased",
		"buyer", in.Buyer, "tokens", tokens, "stable", charge, "method", PaymentStable)
	return rcpt, nil
}

// applyReferral books the referral reward against the reward pool. A pool
// shortfall declines only the reward, never the purchase already recorded
// on next.
func (e *Engine) applyReferral(ctx context.Context, next *Config, rcpt *Receipt, referrer string, influencer bool, events []Event) []Event {
	if referrer == "" {
		return events
	}
	rate := next.RegularRate
	if influencer {
		rate = next.InfluencerRate
	}
	reward, err := referralReward(rcpt.Tokens, rate)
	if err != nil || reward <= 0 {
		return events
	}
	rcpt.RewardTokens = reward

	poolBalance, err := e.cust.Balance(ctx, next.RewardWallet)
	if err != nil {
		rcpt.RewardDeclined = fmt.Sprintf("reward pool unavailable: %v", err)
		e.log.Warn("referral reward skipped", "referrer", referrer, "err", err)
		return append(events, rewardDeclinedEvent(*rcpt))
	}
	charged, err := checkedMul(next.ReferralCharged+reward, TokenDecimals)
	if err != nil || charged > poolBalance {
		rcpt.RewardDeclined = ErrInsufficientRewardTokens.Error()
		e.log.Warn("referral reward declined",
			"referrer", referrer, "reward", reward, "pool_balance", poolBalance)
		return append(events, rewardDeclinedEvent(*rcpt))
	}

	next.ReferralCharged += reward
	next.RewardCredits[referrer] += reward
	rcpt.RewardCredited = true
	return append(events, Event{
		Kind:  EventRewardCredited,
		Actor: rcpt.Buyer,
		Payload: map[string]any{
			"referrer":      referrer,
			"reward_tokens": reward,
			"is_influencer": influencer,
		},
	})
}

// WithdrawRewards consumes accrued referral credit and moves the tokens to
// the referrer. Callable by the referrer only.
func (e *Engine) WithdrawRewards(ctx context.Context, caller, referrer string, amount int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg == nil {
		return ErrSaleNotInitialized
	}
	if caller != referrer {
		return ErrUnauthorizedReferrer
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidPrice)
	}
	if e.cfg.RewardCredits[referrer] < amount {
		return ErrInsufficientRewardTokens
	}
	units, err := checkedMul(amount, TokenDecimals)
	if err != nil {
		return err
	}
	poolBalance, err := e.cust.Balance(ctx, e.cfg.RewardWallet)
	if err != nil {
		return fmt.Errorf("reward pool balance: %w", err)
	}
	if units > poolBalance {
		return ErrInsufficientRewardTokens
	}
	if err := e.cust.Transfer(ctx, e.auth, e.cfg.RewardWallet, referrer, units); err != nil {
		return fmt.Errorf("reward transfer: %w", err)
	}

	next := e.cfg.clone()
	next.RewardCredits[referrer] -= amount
	if next.RewardCredits[referrer] == 0 {
		delete(next.RewardCredits, referrer)
	}
	next.ReferralCharged -= amount

	return e.commit(ctx, next, Event{
		Kind:  EventRewardWithdrawn,
		Actor: referrer,
		Payload: map[string]any{
			"referrer": referrer,
			"tokens":   amount,
		},
	})
}

// RefillTreasury mints additional reward-pool inventory, bounded by the
// supply cap.
func (e *Engine) RefillTreasury(ctx context.Context, caller string, amount int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidPrice)
	}
	if e.cfg.SupplyCap > 0 && e.cfg.TotalMinted+amount > e.cfg.SupplyCap {
		return ErrInsufficientMintBalance
	}
	units, err := checkedMul(amount, TokenDecimals)
	if err != nil {
		return err
	}
	if err := e.cust.Mint(ctx, e.auth, e.cfg.TokenMint, e.cfg.RewardWallet, units); err != nil {
		return fmt.Errorf("treasury mint: %w", err)
	}

	next := e.cfg.clone()
	next.TotalMinted += amount

	return e.commit(ctx, next, Event{
		Kind:  EventTreasuryRefill,
		Actor: caller,
		Payload: map[string]any{
			"tokens": amount,
		},
	})
}

// Finalize sweeps unsold sellable and reward inventory to the liquidity
// wallet, exactly once, after the sale has ended.
func (e *Engine) Finalize(ctx context.Context, caller string) (SweepResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out SweepResult
	if err := e.requireAdmin(caller); err != nil {
		return out, err
	}
	if e.cfg.Stage != StageEnded {
		return out, ErrPresaleActive
	}
	if e.cfg.Finalized {
		return out, ErrPoolAlreadyCreated
	}

	supplyBalance, err := e.cust.Balance(ctx, e.cfg.SupplyWallet)
	if err != nil {
		return out, fmt.Errorf("supply balance: %w", err)
	}
	rewardBalance, err := e.cust.Balance(ctx, e.cfg.RewardWallet)
	if err != nil {
		return out, fmt.Errorf("reward balance: %w", err)
	}
	sold, err := checkedMul(e.cfg.TotalSold, TokenDecimals)
	if err != nil {
		return out, err
	}
	charged, err := checkedMul(e.cfg.ReferralCharged, TokenDecimals)
	if err != nil {
		return out, err
	}
	out.UnsoldTokens = max(0, supplyBalance-sold)
	out.UnsoldRewards = max(0, rewardBalance-charged)

	if out.UnsoldTokens > 0 {
		if err := e.cust.Transfer(ctx, e.auth, e.cfg.SupplyWallet, e.cfg.LiquidityWallet, out.UnsoldTokens); err != nil {
			return SweepResult{}, fmt.Errorf("sweep unsold tokens: %w", err)
		}
	}
	if out.UnsoldRewards > 0 {
		if err := e.cust.Transfer(ctx, e.auth, e.cfg.RewardWallet, e.cfg.LiquidityWallet, out.UnsoldRewards); err != nil {
			return SweepResult{}, fmt.Errorf("sweep unsold rewards: %w", err)
		}
	}

	next := e.cfg.clone()
	next.Finalized = true

	err = e.commit(ctx, next, Event{
		Kind:  EventFinalized,
		Actor: caller,
		Payload: map[string]any{
			"unsold_tokens":  out.UnsoldTokens,
			"unsold_rewards": out.UnsoldRewards,
		},
	})
	if err != nil {
		return SweepResult{}, err
	}
	e.log.Info("sale finalized",
		"unsold_tokens", out.UnsoldTokens, "unsold_rewards", out.UnsoldRewards)
	return out, nil
}

// PresaleTokenBalance returns the remaining sellable supply in smallest units.
func (e *Engine) PresaleTokenBalance(ctx context.Context) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg == nil {
		return 0, ErrSaleNotInitialized
	}
	return e.remainingSupply(ctx)
}

// RewardTokenBalance returns the uncommitted reward-pool supply in smallest
// units.
func (e *Engine) RewardTokenBalance(ctx context.Context) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg == nil {
		return 0, ErrSaleNotInitialized
	}
	balance, err := e.cust.Balance(ctx, e.cfg.RewardWallet)
	if err != nil {
		return 0, err
	}
	charged, err := checkedMul(e.cfg.ReferralCharged, TokenDecimals)
	if err != nil {
		return 0, err
	}
	return max(0, balance-charged), nil
}

// Snapshot returns a copy of the current sale config.
func (e *Engine) Snapshot() (Config, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg == nil {
		return Config{}, ErrSaleNotInitialized
	}
	return *e.cfg.clone(), nil
}

func (e *Engine) remainingSupply(ctx context.Context) (int64, error) {
	balance, err := e.cust.Balance(ctx, e.cfg.SupplyWallet)
	if err != nil {
		return 0, fmt.Errorf("supply balance: %w", err)
	}
	sold, err := checkedMul(e.cfg.TotalSold, TokenDecimals)
	if err != nil {
		return 0, err
	}
	return max(0, balance-sold), nil
}

func (e *Engine) requireAdmin(caller string) error {
	if e.cfg == nil {
		return ErrSaleNotInitialized
	}
	if caller != e.cfg.Admin {
		return ErrUnauthorized
	}
	return nil
}

// commit appends the audit events, persists the new snapshot, then swaps it
// in. Failure at any step leaves the in-memory state untouched, so a caller
// never observes a partial mutation.
func (e *Engine) commit(ctx context.Context, next *Config, events ...Event) error {
	now := e.now()
	for i := range events {
		events[i].ID = uuid.NewString()
		events[i].At = now
	}
	for _, ev := range events {
		if err := e.audit.Append(ctx, ev); err != nil {
			return fmt.Errorf("audit append: %w", err)
		}
	}
	if err := e.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save sale config: %w", err)
	}
	e.cfg = next
	return nil
}

func purchaseEvent(r Receipt) Event {
	return Event{
		Kind:  EventPurchase,
		Actor: r.Buyer,
		Payload: map[string]any{
			"buyer":          r.Buyer,
			"tokens":         r.Tokens,
			"payment_amount": r.PaymentAmount,
			"usd_amount":     r.USDAmount,
			"price_micros":   r.PriceMicros,
			"method":         string(r.Method),
		},
	}
}

func rewardDeclinedEvent(r Receipt) Event {
	return Event{
		Kind:  EventRewardDeclined,
		Actor: r.Buyer,
		Payload: map[string]any{
			"referrer":      r.Referrer,
			"reward_tokens": r.RewardTokens,
			"reason":        r.RewardDeclined,
		},
	}
}
