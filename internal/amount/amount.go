// Package amount implements the fixed-point money type used by the ledger.
// Values are non-negative and scaled by 10^4, so the last four decimal
// digits of the backing integer are the fractional part.
package amount

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Decimals is the number of fractional digits every Amount carries.
const Decimals = 4

const multiplier uint64 = 10_000

var (
	ErrMalformedAmount = errors.New("malformed amount")
	ErrOverflow        = errors.New("amount overflow")
	ErrUnderflow       = errors.New("amount underflow")
)

// Amount is a monetary value scaled by 10^4.
type Amount uint64

// Zero is the empty balance.
const Zero Amount = 0

// Parse reads a non-negative decimal with at most four fractional digits.
// "10" and "10.0" are both valid, ".5" and "5." are not.
func Parse(text string) (Amount, error) {
	dot := strings.IndexByte(text, '.')
	if dot < 0 {
		whole, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return Zero, errors.Wrapf(ErrMalformedAmount, "%q is not a number", text)
		}
		scaled, ok := mul(whole, multiplier)
		if !ok {
			return Zero, errors.Wrapf(ErrMalformedAmount, "%q is too large", text)
		}
		return Amount(scaled), nil
	}

	if dot == 0 || dot == len(text)-1 {
		return Zero, errors.Wrapf(ErrMalformedAmount, "%q is not a decimal number", text)
	}

	fraction := text[dot+1:]
	if len(fraction) > Decimals {
		return Zero, errors.Wrapf(ErrMalformedAmount, "%q has more than %d decimal places", text, Decimals)
	}

	whole, err := strconv.ParseUint(text[:dot], 10, 64)
	if err != nil {
		return Zero, errors.Wrapf(ErrMalformedAmount, "%q has an invalid integer part", text)
	}
	frac, err := strconv.ParseUint(fraction, 10, 64)
	if err != nil {
		return Zero, errors.Wrapf(ErrMalformedAmount, "%q has an invalid decimal part", text)
	}

	// "0.15" -> 15 * 10^(4-2) -> 1500
	for i := len(fraction); i < Decimals; i++ {
		frac *= 10
	}

	scaled, ok := mul(whole, multiplier)
	if !ok {
		return Zero, errors.Wrapf(ErrMalformedAmount, "%q is too large", text)
	}
	total, ok := add(scaled, frac)
	if !ok {
		return Zero, errors.Wrapf(ErrMalformedAmount, "%q is too large", text)
	}

	return Amount(total), nil
}

// MustParse is Parse for constants and tests. It panics on malformed input.
func MustParse(text string) Amount {
	a, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return a
}

// String renders the amount with exactly four fractional digits.
func (a Amount) String() string {
	return fmt.Sprintf("%d.%04d", uint64(a)/multiplier, uint64(a)%multiplier)
}

// Add returns a+b or ErrOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	sum, ok := add(uint64(a), uint64(b))
	if !ok {
		return Zero, errors.Wrapf(ErrOverflow, "%s + %s", a, b)
	}
	return Amount(sum), nil
}

// Sub returns a-b or ErrUnderflow when b is larger than a.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b > a {
		return Zero, errors.Wrapf(ErrUnderflow, "%s - %s", a, b)
	}
	return a - b, nil
}

func (a Amount) IsZero() bool {
	return a == Zero
}

// Decimal converts the amount for sinks that speak shopspring/decimal.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(a)), -Decimals)
}

// FromDecimal is the inverse of Decimal. Negative values, values with more
// than four fractional digits and values beyond the backing width are rejected.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Zero, errors.Wrapf(ErrMalformedAmount, "%s is negative", d)
	}
	scaled := d.Shift(Decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return Zero, errors.Wrapf(ErrMalformedAmount, "%s has more than %d decimal places", d, Decimals)
	}
	bi := scaled.BigInt()
	if !bi.IsUint64() {
		return Zero, errors.Wrapf(ErrMalformedAmount, "%s is too large", d)
	}
	return Amount(bi.Uint64()), nil
}

func add(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum >= a
}

func mul(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product := a * b
	return product, product/b == a
}
