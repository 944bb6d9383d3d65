package types

import (
	"math/big"
)

// BpsDenom is the denominator of all basis-point quantities.
const BpsDenom = 10000

// Mul64 multiplies two int64 values, reporting whether the result fits.
func Mul64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (c < 0) == ((a < 0) != (b < 0)) {
		if c/b == a {
			return c, true
		}
	}
	return c, false
}

// MulDiv64 computes a*b/c with a big.Int intermediate when a*b would
// overflow int64. Panics if c is zero or the quotient itself overflows.
func MulDiv64(a, b, c int64) int64 {
	if c == 0 {
		panic("division by zero")
	}
	if r, ok := Mul64(a, b); ok {
		return r / c
	}
	var bi big.Int
	bi.Div(bi.Mul(big.NewInt(a), big.NewInt(b)), big.NewInt(c))
	if !bi.IsInt64() {
		panic("int64 overflow")
	}
	return bi.Int64()
}

// BpsOf returns amount*bps/BpsDenom, rounded down.
func BpsOf(amount, bps int64) int64 {
	return MulDiv64(amount, bps, BpsDenom)
}

// BpsGTE reports whether part is at least bps basis points of whole,
// comparing part*BpsDenom >= whole*bps without intermediate rounding.
func BpsGTE(part, whole, bps int64) bool {
	lhs, lok := Mul64(part, BpsDenom)
	rhs, rok := Mul64(whole, bps)
	if lok && rok {
		return lhs >= rhs
	}
	var l, r big.Int
	l.Mul(big.NewInt(part), big.NewInt(BpsDenom))
	r.Mul(big.NewInt(whole), big.NewInt(bps))
	return l.Cmp(&r) >= 0
}

// BpsLTE reports whether part is at most bps basis points of whole.
func BpsLTE(part, whole, bps int64) bool {
	lhs, lok := Mul64(part, BpsDenom)
	rhs, rok := Mul64(whole, bps)
	if lok && rok {
		return lhs <= rhs
	}
	var l, r big.Int
	l.Mul(big.NewInt(part), big.NewInt(BpsDenom))
	r.Mul(big.NewInt(whole), big.NewInt(bps))
	return l.Cmp(&r) <= 0
}

func MinInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func MaxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
