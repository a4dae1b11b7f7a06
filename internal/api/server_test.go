package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tokensale/internal/auth"
	"tokensale/internal/config"
	"tokensale/internal/sale"
)

type fakeVault struct {
	auth   sale.Authority
	tokens map[string]int64
}

func (f *fakeVault) Balance(_ context.Context, wallet string) (int64, error) {
	return f.tokens[wallet], nil
}

func (f *fakeVault) TransferNative(context.Context, string, string, int64) error { return nil }

func (f *fakeVault) Transfer(_ context.Context, a sale.Authority, from, to string, amount int64) error {
	if a != f.auth {
		return sale.ErrUnauthorized
	}
	f.tokens[from] -= amount
	f.tokens[to] += amount
	return nil
}

func (f *fakeVault) TransferStable(context.Context, string, string, string, int64) error { return nil }

func (f *fakeVault) Mint(_ context.Context, a sale.Authority, _ string, to string, amount int64) error {
	f.tokens[to] += amount
	return nil
}

type fakeStore struct {
	cfg    *sale.Config
	events []sale.Event
}

func (s *fakeStore) Load(context.Context) (*sale.Config, bool, error) {
	return s.cfg, s.cfg != nil, nil
}

func (s *fakeStore) Save(_ context.Context, cfg *sale.Config) error {
	s.cfg = cfg
	return nil
}

func (s *fakeStore) Append(_ context.Context, e sale.Event) error {
	s.events = append(s.events, e)
	return nil
}

const testToken = "service-token"

func newTestServer(t *testing.T) (*httptest.Server, *fakeVault) {
	t.Helper()
	authority := sale.NewAuthority("authority")
	vault := &fakeVault{auth: authority, tokens: map[string]int64{}}
	store := &fakeStore{}
	engine := sale.NewEngine(vault, store, store, authority, slog.New(slog.NewTextHandler(io.Discard, nil)))

	cfg := config.APIConfig{
		AdminToken:  testToken,
		AdminWallet: "admin-wallet",
		StableMints: []string{"USDC"},
	}
	verifier := auth.NewAdminVerifier(cfg.AdminToken, cfg.AdminWallet)
	srv := httptest.NewServer(New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), verifier, engine).Handler())
	t.Cleanup(srv.Close)
	return srv, vault
}

func doJSON(t *testing.T, method, url, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func initializeSale(t *testing.T, srv *httptest.Server) {
	t.Helper()
	resp, out := doJSON(t, http.MethodPost, srv.URL+"/v1/sale/initialize", testToken, `{
		"merchant_wallet": "merchant",
		"supply_wallet": "supply",
		"reward_wallet": "reward",
		"liquidity_wallet": "liquidity",
		"token_mint": "mint",
		"private_price": 500000,
		"public_price": 1000000,
		"private_duration_days": 10,
		"public_duration_days": 5,
		"regular_rate": 10,
		"influencer_rate": 20,
		"supply_cap": 10000
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("initialize status %d: %v", resp.StatusCode, out)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, out := doJSON(t, http.MethodGet, srv.URL+"/healthz", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if out["ok"] != true {
		t.Fatalf("unexpected body: %v", out)
	}
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/sale/stage/advance", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/sale/stage/advance", "wrong-token", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d", resp.StatusCode)
	}
}

func TestSaleLifecycleOverHTTP(t *testing.T) {
	srv, vault := newTestServer(t)

	// Reads 404 before the sale exists.
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/sale", "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("uninitialized read: status %d", resp.StatusCode)
	}

	initializeSale(t, srv)

	// Double initialize conflicts.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/sale/initialize", testToken, `{"private_price": 1, "public_price": 1, "regular_rate": 1, "influencer_rate": 1}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second initialize: status %d", resp.StatusCode)
	}

	resp, out := doJSON(t, http.MethodPost, srv.URL+"/v1/sale/stage/advance", testToken, "")
	if resp.StatusCode != http.StatusOK || out["stage"] != "private" {
		t.Fatalf("advance: status %d body %v", resp.StatusCode, out)
	}

	vault.tokens["supply"] = 1000 * sale.TokenDecimals
	resp, out = doJSON(t, http.MethodPost, srv.URL+"/v1/purchases", testToken, `{
		"buyer": "buyer-1",
		"payment_amount": 200000000,
		"unit_price_usd": 100
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("purchase: status %d body %v", resp.StatusCode, out)
	}
	if out["tokens"] != float64(40) {
		t.Fatalf("purchase tokens: %v", out["tokens"])
	}

	resp, out = doJSON(t, http.MethodGet, srv.URL+"/v1/sale/balances", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("balances: status %d", resp.StatusCode)
	}
	if out["sellable"] != float64(960*sale.TokenDecimals) {
		t.Fatalf("sellable: %v", out["sellable"])
	}
}

func TestDomainErrorMapping(t *testing.T) {
	srv, _ := newTestServer(t)
	initializeSale(t, srv)

	// Purchase while not active is a lifecycle conflict.
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/purchases", testToken, `{
		"buyer": "buyer-1",
		"payment_amount": 200000000,
		"unit_price_usd": 100
	}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("inactive purchase: status %d", resp.StatusCode)
	}

	// Unknown request fields are rejected.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/purchases", testToken, `{"nope": 1}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown field: status %d", resp.StatusCode)
	}

	// Bad stage value is a validation error.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/sale/stage", testToken, `{"stage": "launchpad"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad stage: status %d", resp.StatusCode)
	}

	// Price updates outside an active stage conflict.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/sale/price", testToken, `{"price_micros": 700000}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("inactive price update: status %d", resp.StatusCode)
	}
}
