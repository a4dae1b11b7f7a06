package sale

import (
	"errors"
	"math/big"
)

const (
	// TokenDecimals separates whole-token counters from smallest-unit
	// wallet balances.
	TokenDecimals = int64(1_000_000_000)

	// PaymentScale is the smallest-unit-to-whole-unit ratio of the native
	// payment asset.
	PaymentScale = int64(1_000_000_000)

	// PriceScale: prices are stored as USD-micros per whole token.
	PriceScale = int64(1_000_000)

	// StableScale is the smallest-unit-to-whole-unit ratio of the
	// allow-listed stable assets.
	StableScale = int64(1_000_000)

	// MinPurchaseUSD is the smallest accepted purchase, in whole USD.
	MinPurchaseUSD = int64(1)

	// SecondsPerDay converts the day-denominated admin inputs.
	SecondsPerDay = int64(86400)
)

var (
	ErrInvalidRate              = errors.New("invalid rate: percentage must be between 0 and 100")
	ErrInvalidPrice             = errors.New("invalid price or amount")
	ErrDivisionByZero           = errors.New("division by zero: price must be nonzero")
	ErrArithmeticOverflow       = errors.New("arithmetic overflow in price computation")
	ErrPrivateSaleNotOver       = errors.New("private sale period is not over yet")
	ErrPublicSaleNotOver        = errors.New("public sale period is not over yet")
	ErrSaleAlreadyEnded         = errors.New("the presale has already ended")
	ErrPresaleNotActive         = errors.New("presale is not active")
	ErrPresaleActive            = errors.New("presale is still active")
	ErrInsufficientTokens       = errors.New("not enough tokens available for purchase")
	ErrInsufficientFunds        = errors.New("insufficient payment sent for purchase")
	ErrInvalidStableToken       = errors.New("stable asset is not allow-listed")
	ErrInvalidPaymentType       = errors.New("invalid payment type")
	ErrInsufficientRewardTokens = errors.New("not enough tokens left in the reward pool")
	ErrInsufficientMintBalance  = errors.New("minting this amount would exceed the supply cap")
	ErrUnauthorized             = errors.New("unauthorized: only the presale admin can perform this action")
	ErrUnauthorizedReferrer     = errors.New("caller is not the referrer for this reward")
	ErrPoolAlreadyCreated       = errors.New("liquidity pool already created")
	ErrSaleNotInitialized       = errors.New("sale is not initialized")
	ErrAlreadyInitialized       = errors.New("sale is already initialized")
)

// checkedMulDiv computes floor(a*b/div) with overflow detection.
func checkedMulDiv(a, b, div int64) (int64, error) {
	if div == 0 {
		return 0, ErrDivisionByZero
	}
	if a < 0 || b < 0 || div < 0 {
		return 0, ErrArithmeticOverflow
	}
	v := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	v.Quo(v, big.NewInt(div))
	if !v.IsInt64() {
		return 0, ErrArithmeticOverflow
	}
	return v.Int64(), nil
}

// checkedMul computes a*b with overflow detection.
func checkedMul(a, b int64) (int64, error) {
	return checkedMulDiv(a, b, 1)
}

// ConvertPaymentToUSD resolves a native payment amount (smallest units) to
// whole USD at the supplied unit price. Floor division; remainders are
// dropped, never rounded up.
func ConvertPaymentToUSD(paymentAmount, unitPriceUSD int64) (int64, error) {
	if unitPriceUSD == 0 {
		return 0, ErrDivisionByZero
	}
	return checkedMulDiv(paymentAmount, unitPriceUSD, PaymentScale)
}

// ConvertUSDToTokens resolves a whole-USD amount to whole tokens at the
// given USD-micros token price.
func ConvertUSDToTokens(usdAmount, currentPrice int64) (int64, error) {
	if currentPrice == 0 {
		return 0, ErrDivisionByZero
	}
	return checkedMulDiv(usdAmount, PriceScale, currentPrice)
}

// nativeCostFor returns the minimum native payment (smallest units) that
// covers the given whole-token purchase.
func nativeCostFor(tokens, currentPrice, unitPriceUSD int64) (int64, error) {
	if unitPriceUSD == 0 {
		return 0, ErrDivisionByZero
	}
	usdMicros, err := checkedMul(tokens, currentPrice)
	if err != nil {
		return 0, err
	}
	div, err := checkedMul(PriceScale, unitPriceUSD)
	if err != nil {
		return 0, err
	}
	return checkedMulDiv(usdMicros, PaymentScale, div)
}

// tokensForStable resolves a whole-unit stable amount to whole tokens.
func tokensForStable(stableAmount, currentPrice int64) (int64, error) {
	if currentPrice == 0 {
		return 0, ErrDivisionByZero
	}
	return checkedMulDiv(stableAmount, PriceScale, currentPrice)
}

// stableChargeFor is the inverse of tokensForStable: the whole-unit stable
// amount charged for the given whole-token quantity.
func stableChargeFor(tokens, currentPrice int64) (int64, error) {
	return checkedMulDiv(tokens, currentPrice, PriceScale)
}

// referralReward computes floor(tokens * rate / 100).
func referralReward(tokens, rate int64) (int64, error) {
	return checkedMulDiv(tokens, rate, 100)
}

func validRate(rate int64) bool {
	return rate >= 0 && rate <= 100
}
