package registry

import (
	"math/big"

	"github.com/shopspring/decimal"

	"paygate/internal/errors"
)

// ParsePositiveDecimal parses s as a positive decimal string, the public
// amount format used by Session.Amount and Chain.TargetAmount.
func ParsePositiveDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errors.NewInvalidAmountError(s)
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, errors.NewInvalidAmountError(s)
	}
	return d, nil
}

// ToSmallestUnit converts a decimal-string amount into the token's
// smallest-unit integer representation (*big.Int), per tokenDecimals.
func ToSmallestUnit(amount string, decimals uint8) (*big.Int, error) {
	d, err := ParsePositiveDecimal(amount)
	if err != nil {
		return nil, err
	}
	return d.Shift(int32(decimals)).BigInt(), nil
}

// FromSmallestUnit converts a smallest-unit integer value into its
// decimal-string representation, per tokenDecimals.
func FromSmallestUnit(rawValue *big.Int, decimals uint8) string {
	return decimal.NewFromBigInt(rawValue, -int32(decimals)).String()
}

// toleranceFloor computes target - 5%*target using pure integer
// arithmetic, per §9's ban on floating-point amount comparisons.
func toleranceFloor(target *big.Int) *big.Int {
	fivePercent := new(big.Int).Mul(target, big.NewInt(5))
	fivePercent.Div(fivePercent, big.NewInt(100))
	return new(big.Int).Sub(target, fivePercent)
}

// meetsAmountPolicy reports whether rawValue satisfies the -5% tolerance
// band against target, with no upper bound.
func meetsAmountPolicy(rawValue, target *big.Int) bool {
	return rawValue.Cmp(toleranceFloor(target)) >= 0
}
