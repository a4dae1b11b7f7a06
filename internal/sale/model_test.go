package sale

import (
	"errors"
	"math"
	"testing"
)

func TestConvertPaymentToUSD(t *testing.T) {
	// 0.2 native at $100/unit is worth $20.
	usd, err := ConvertPaymentToUSD(200_000_000, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usd != 20 {
		t.Fatalf("got %d want 20", usd)
	}

	// Sub-dollar remainders floor, never round up.
	usd, err = ConvertPaymentToUSD(1_999_999_999, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usd != 1 {
		t.Fatalf("got %d want 1", usd)
	}

	if _, err := ConvertPaymentToUSD(1_000_000_000, 0); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected division by zero, got %v", err)
	}
}

func TestConvertUSDToTokens(t *testing.T) {
	tests := []struct {
		usd   int64
		price int64
		want  int64
	}{
		{usd: 20, price: 500_000, want: 40},
		{usd: 1, price: 600_000, want: 1},   // 1.66 floors
		{usd: 1, price: 1_500_000, want: 0}, // below one whole token
		{usd: 1000, price: 1_000_000, want: 1000},
	}
	for _, tc := range tests {
		got, err := ConvertUSDToTokens(tc.usd, tc.price)
		if err != nil {
			t.Fatalf("usd=%d price=%d: %v", tc.usd, tc.price, err)
		}
		if got != tc.want {
			t.Fatalf("usd=%d price=%d got=%d want=%d", tc.usd, tc.price, got, tc.want)
		}
	}

	if _, err := ConvertUSDToTokens(10, 0); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected division by zero, got %v", err)
	}
}

func TestNativeCostFor(t *testing.T) {
	// 40 tokens at $0.50 is $20, which is 0.2 native at $100/unit.
	cost, err := nativeCostFor(40, 500_000, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cost != 200_000_000 {
		t.Fatalf("got %d want 200000000", cost)
	}

	// The cost round-trips: paying exactly the cost yields at least the
	// same token quantity.
	usd, err := ConvertPaymentToUSD(cost, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tokens, err := ConvertUSDToTokens(usd, 500_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens < 40 {
		t.Fatalf("cost %d buys only %d tokens", cost, tokens)
	}
}

func TestStablePricing(t *testing.T) {
	// 25 stable at $0.40/token floors to 62 tokens.
	tokens, err := tokensForStable(25, 400_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens != 62 {
		t.Fatalf("got %d want 62", tokens)
	}

	// Charging back for the floored quantity never exceeds the original
	// payment.
	charge, err := stableChargeFor(tokens, 400_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if charge > 25 {
		t.Fatalf("charge %d exceeds payment", charge)
	}
	if charge != 24 {
		t.Fatalf("got %d want 24", charge)
	}
}

func TestReferralReward(t *testing.T) {
	reward, err := referralReward(400, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reward != 40 {
		t.Fatalf("got %d want 40", reward)
	}

	reward, err = referralReward(5, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reward != 0 {
		t.Fatalf("fractional reward should floor to 0, got %d", reward)
	}

	if validRate(101) || validRate(-1) {
		t.Fatalf("rates outside 0..100 should be invalid")
	}
	if !validRate(0) || !validRate(100) {
		t.Fatalf("boundary rates should be valid")
	}
}

func TestCheckedOverflow(t *testing.T) {
	if _, err := checkedMul(math.MaxInt64, 2); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := checkedMulDiv(math.MaxInt64, math.MaxInt64, 2); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	// Large but representable values pass.
	got, err := checkedMulDiv(math.MaxInt64, 2, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != math.MaxInt64/2 {
		t.Fatalf("got %d want %d", got, math.MaxInt64/2)
	}
}

func TestStageForTime(t *testing.T) {
	const start = int64(1_000_000)
	const privateDur = int64(10 * 86400)
	const publicDur = int64(5 * 86400)

	tests := []struct {
		now  int64
		want Stage
	}{
		{now: start - 1, want: StagePreLaunch},
		{now: start, want: StagePrivate},
		{now: start + privateDur - 1, want: StagePrivate},
		{now: start + privateDur, want: StagePublic},
		{now: start + privateDur + publicDur - 1, want: StagePublic},
		{now: start + privateDur + publicDur, want: StageEnded},
	}
	for _, tc := range tests {
		got := stageForTime(tc.now, start, privateDur, publicDur)
		if got != tc.want {
			t.Fatalf("now=%d got=%s want=%s", tc.now, got, tc.want)
		}
	}
}

func TestParseStage(t *testing.T) {
	for _, s := range []Stage{StageNotStarted, StagePreLaunch, StagePrivate, StagePublic, StageEnded} {
		got, err := ParseStage(s.String())
		if err != nil {
			t.Fatalf("round trip %s: %v", s, err)
		}
		if got != s {
			t.Fatalf("got %s want %s", got, s)
		}
	}
	if _, err := ParseStage("presale"); err == nil {
		t.Fatalf("expected unknown stage to fail")
	}
}
