package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// APIError carries the HTTP status of a rejected request so callers can
// branch on it.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) SaleStatus(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/sale", "", nil, &out)
	return out, err
}

func (c *Client) SaleBalances(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/sale/balances", "", nil, &out)
	return out, err
}

func (c *Client) Initialize(ctx context.Context, token string, body map[string]any) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/sale/initialize", token, body, &out)
	return out, err
}

func (c *Client) AdvanceStage(ctx context.Context, token string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/sale/stage/advance", token, map[string]any{}, &out)
	return out, err
}

func (c *Client) SetStage(ctx context.Context, token, stage string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/sale/stage", token, map[string]any{
		"stage": stage,
	}, &out)
	return out, err
}

func (c *Client) RefreshStage(ctx context.Context, token string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/sale/stage/refresh", token, map[string]any{}, &out)
	return out, err
}

func (c *Client) UpdatePeriod(ctx context.Context, token string, privateDays, publicDays int64) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/sale/period", token, map[string]any{
		"private_days": privateDays,
		"public_days":  publicDays,
	}, &out)
	return out, err
}

func (c *Client) UpdatePrice(ctx context.Context, token string, priceMicros int64) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/sale/price", token, map[string]any{
		"price_micros": priceMicros,
	}, &out)
	return out, err
}

func (c *Client) SetReferralRates(ctx context.Context, token string, regular, influencer int64) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/sale/referral-rates", token, map[string]any{
		"regular_rate":    regular,
		"influencer_rate": influencer,
	}, &out)
	return out, err
}

func (c *Client) Buy(ctx context.Context, token string, body map[string]any) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/purchases", token, body, &out)
	return out, err
}

func (c *Client) BuyStable(ctx context.Context, token string, body map[string]any) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/purchases/stable", token, body, &out)
	return out, err
}

func (c *Client) WithdrawRewards(ctx context.Context, token, referrer string, tokens int64) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/rewards/withdraw", token, map[string]any{
		"referrer": referrer,
		"tokens":   tokens,
	}, &out)
	return out, err
}

func (c *Client) RefillTreasury(ctx context.Context, token string, tokens int64) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/treasury/refill", token, map[string]any{
		"tokens": tokens,
	}, &out)
	return out, err
}

func (c *Client) Finalize(ctx context.Context, token string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/sale/finalize", token, map[string]any{}, &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path, token string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
