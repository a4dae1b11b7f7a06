package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tokensale/internal/auth"
	"tokensale/internal/config"
	"tokensale/internal/sale"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const adminContextKey contextKey = "admin"

type Server struct {
	cfg    config.APIConfig
	log    *slog.Logger
	auth   *auth.AdminVerifier
	engine *sale.Engine
	mux    *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, verifier *auth.AdminVerifier, engine *sale.Engine) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		log:    logger,
		auth:   verifier,
		engine: engine,
		mux:    chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/sale", s.handleSaleStatus)
		r.Get("/sale/balances", s.handleSaleBalances)

		r.Group(func(r chi.Router) {
			r.Use(s.adminMiddleware)
			r.Post("/sale/initialize", s.handleInitialize)
			r.Post("/sale/stage/advance", s.handleStageAdvance)
			r.Post("/sale/stage", s.handleStageSet)
			r.Post("/sale/stage/refresh", s.handleStageRefresh)
			r.Post("/sale/period", s.handlePeriodUpdate)
			r.Post("/sale/price", s.handlePriceUpdate)
			r.Post("/sale/referral-rates", s.handleReferralRates)
			r.Post("/sale/finalize", s.handleFinalize)
			r.Post("/treasury/refill", s.handleTreasuryRefill)

			r.Post("/purchases", s.handleBuy)
			r.Post("/purchases/stable", s.handleBuyStable)
			r.Post("/rewards/withdraw", s.handleWithdrawRewards)
		})
	})
}

// adminMiddleware gates every mutating route behind the service bearer
// token. Purchase and withdrawal requests arrive through the same gate: the
// upstream gateway that holds the token is responsible for verifying wallet
// ownership before forwarding.
func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		wallet, err := s.auth.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, fmt.Sprintf("invalid token: %v", err))
			return
		}
		ctx := context.WithValue(r.Context(), adminContextKey, wallet)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func adminFromContext(ctx context.Context) (string, error) {
	wallet, ok := ctx.Value(adminContextKey).(string)
	if !ok || wallet == "" {
		return "", errors.New("missing auth context")
	}
	return wallet, nil
}

func (s *Server) handleSaleStatus(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.engine.Snapshot()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleSaleBalances(w http.ResponseWriter, r *http.Request) {
	sellable, err := s.engine.PresaleTokenBalance(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rewards, err := s.engine.RewardTokenBalance(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sale.Balances{Sellable: sellable, Rewards: rewards})
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	admin, err := adminFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in struct {
		MerchantWallet      string   `json:"merchant_wallet"`
		SupplyWallet        string   `json:"supply_wallet"`
		RewardWallet        string   `json:"reward_wallet"`
		LiquidityWallet     string   `json:"liquidity_wallet"`
		TokenMint           string   `json:"token_mint"`
		PrivatePrice        int64    `json:"private_price"`
		PublicPrice         int64    `json:"public_price"`
		PrivateDurationDays int64    `json:"private_duration_days"`
		PublicDurationDays  int64    `json:"public_duration_days"`
		RegularRate         int64    `json:"regular_rate"`
		InfluencerRate      int64    `json:"influencer_rate"`
		SupplyCap           int64    `json:"supply_cap"`
		StableMints         []string `json:"stable_mints"`
		LaunchAt            int64    `json:"launch_at"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mints := in.StableMints
	if len(mints) == 0 {
		mints = s.cfg.StableMints
	}
	err = s.engine.Initialize(r.Context(), sale.InitializeInput{
		Admin:               admin,
		MerchantWallet:      in.MerchantWallet,
		SupplyWallet:        in.SupplyWallet,
		RewardWallet:        in.RewardWallet,
		LiquidityWallet:     in.LiquidityWallet,
		TokenMint:           in.TokenMint,
		PrivatePrice:        in.PrivatePrice,
		PublicPrice:         in.PublicPrice,
		PrivateDurationDays: in.PrivateDurationDays,
		PublicDurationDays:  in.PublicDurationDays,
		RegularRate:         in.RegularRate,
		InfluencerRate:      in.InfluencerRate,
		SupplyCap:           in.SupplyCap,
		StableMints:         mints,
		RequireTimeGate:     s.cfg.RequireTimeGate,
		LaunchAt:            in.LaunchAt,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	cfg, err := s.engine.Snapshot()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

func (s *Server) handleStageAdvance(w http.ResponseWriter, r *http.Request) {
	admin, err := adminFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	stage, err := s.engine.AdvanceStage(r.Context(), admin)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stage": stage.String()})
}

func (s *Server) handleStageSet(w http.ResponseWriter, r *http.Request) {
	admin, err := adminFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in struct {
		Stage string `json:"stage"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stage, err := sale.ParseStage(in.Stage)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.engine.SetStage(r.Context(), admin, stage); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stage": stage.String()})
}

func (s *Server) handleStageRefresh(w http.ResponseWriter, r *http.Request) {
	stage, err := s.engine.RefreshStage(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stage": stage.String()})
}

func (s *Server) handlePeriodUpdate(w http.ResponseWriter, r *http.Request) {
	admin, err := adminFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in struct {
		PrivateDays int64 `json:"private_days"`
		PublicDays  int64 `json:"public_days"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.engine.UpdateSalePeriod(r.Context(), admin, in.PrivateDays, in.PublicDays); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"private_days": in.PrivateDays, "public_days": in.PublicDays})
}

func (s *Server) handlePriceUpdate(w http.ResponseWriter, r *http.Request) {
	admin, err := adminFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in struct {
		PriceMicros int64 `json:"price_micros"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.engine.UpdateSalePrice(r.Context(), admin, in.PriceMicros); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"price_micros": in.PriceMicros})
}

func (s *Server) handleReferralRates(w http.ResponseWriter, r *http.Request) {
	admin, err := adminFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in struct {
		RegularRate    int64 `json:"regular_rate"`
		InfluencerRate int64 `json:"influencer_rate"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.engine.SetReferralRate(r.Context(), admin, in.RegularRate, in.InfluencerRate); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"regular_rate": in.RegularRate, "influencer_rate": in.InfluencerRate})
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Buyer         string `json:"buyer"`
		PaymentMethod string `json:"payment_method"`
		PaymentAmount int64  `json:"payment_amount"`
		UnitPriceUSD  int64  `json:"unit_price_usd"`
		Referrer      string `json:"referrer"`
		IsInfluencer  bool   `json:"is_influencer"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rcpt, err := s.engine.Buy(r.Context(), sale.BuyInput{
		Buyer:         strings.TrimSpace(in.Buyer),
		Method:        sale.PaymentMethod(in.PaymentMethod),
		PaymentAmount: in.PaymentAmount,
		UnitPriceUSD:  in.UnitPriceUSD,
		Referrer:      strings.TrimSpace(in.Referrer),
		IsInfluencer:  in.IsInfluencer,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rcpt)
}

func (s *Server) handleBuyStable(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Buyer        string `json:"buyer"`
		StableMint   string `json:"stable_mint"`
		StableAmount int64  `json:"stable_amount"`
		Referrer     string `json:"referrer"`
		IsInfluencer bool   `json:"is_influencer"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rcpt, err := s.engine.BuyStable(r.Context(), sale.BuyStableInput{
		Buyer:        strings.TrimSpace(in.Buyer),
		StableMint:   strings.TrimSpace(in.StableMint),
		StableAmount: in.StableAmount,
		Referrer:     strings.TrimSpace(in.Referrer),
		IsInfluencer: in.IsInfluencer,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rcpt)
}

func (s *Server) handleWithdrawRewards(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Referrer string `json:"referrer"`
		Tokens   int64  `json:"tokens"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// The gateway holding the service token has already verified the
	// referrer owns this wallet, so it acts as the caller here.
	referrer := strings.TrimSpace(in.Referrer)
	if err := s.engine.WithdrawRewards(r.Context(), referrer, referrer, in.Tokens); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"referrer": referrer, "tokens": in.Tokens})
}

func (s *Server) handleTreasuryRefill(w http.ResponseWriter, r *http.Request) {
	admin, err := adminFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in struct {
		Tokens int64 `json:"tokens"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.engine.RefillTreasury(r.Context(), admin, in.Tokens); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tokens": in.Tokens})
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	admin, err := adminFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	result, err := s.engine.Finalize(r.Context(), admin)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sale.ErrUnauthorized), errors.Is(err, sale.ErrUnauthorizedReferrer):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, sale.ErrInvalidRate),
		errors.Is(err, sale.ErrInvalidPrice),
		errors.Is(err, sale.ErrDivisionByZero),
		errors.Is(err, sale.ErrArithmeticOverflow),
		errors.Is(err, sale.ErrInvalidStableToken),
		errors.Is(err, sale.ErrInvalidPaymentType),
		errors.Is(err, sale.ErrInsufficientFunds):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, sale.ErrSaleNotInitialized):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sale.ErrAlreadyInitialized),
		errors.Is(err, sale.ErrPresaleNotActive),
		errors.Is(err, sale.ErrPresaleActive),
		errors.Is(err, sale.ErrSaleAlreadyEnded),
		errors.Is(err, sale.ErrPrivateSaleNotOver),
		errors.Is(err, sale.ErrPublicSaleNotOver),
		errors.Is(err, sale.ErrPoolAlreadyCreated),
		errors.Is(err, sale.ErrInsufficientTokens),
		errors.Is(err, sale.ErrInsufficientRewardTokens),
		errors.Is(err, sale.ErrInsufficientMintBalance):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
