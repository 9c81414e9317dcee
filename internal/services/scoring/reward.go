package scoring

import (
	"math/big"
	"strconv"
)

// CoinsForScore returns floor((score / 10) * multiplier). The multiplier is
// taken as the exact decimal it prints as, so the floor never suffers from
// binary rounding (1000 at 0.57 is 57, where float64 math lands on 56.99...).
func CoinsForScore(score int, multiplier float64) int {
	if score <= 0 {
		return 0
	}
	m, ok := new(big.Rat).SetString(strconv.FormatFloat(multiplier, 'f', -1, 64))
	if !ok || m.Sign() <= 0 {
		return 0
	}

	r := new(big.Rat).SetFrac64(int64(score), 10)
	r.Mul(r, m)

	// Non-negative, so truncation is the floor
	q := new(big.Int).Quo(r.Num(), r.Denom())
	return int(q.Int64())
}
