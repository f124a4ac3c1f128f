// Package types holds the numeric types the valuation code is built
// on: arbitrary-precision Money and fixed-point Quantity.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount. Decimal arithmetic keeps ledger sums
// exact.
type Money = decimal.Decimal

// NewMoney converts a float. Prefer NewMoneyFromString where the
// source value is textual.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney panics on a malformed literal. For constants only.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func Zero() Money {
	return decimal.Zero
}

// Quantity is a stock quantity stored as an integer scaled by 1e4,
// matching Postgres NUMERIC(15,4). It marshals to a JSON number with
// four fractional digits.
type Quantity int64

const QuantityScale int64 = 10_000

func NewQuantityFromFloat64(v float64) Quantity {
	return Quantity(math.Round(v * float64(QuantityScale)))
}

func NewQuantityFromInt64Scaled(v int64) Quantity { return Quantity(v) }

func (q Quantity) Int64Scaled() int64 { return int64(q) }

func (q Quantity) Float64() float64 { return float64(q) / float64(QuantityScale) }

func (q Quantity) IsZero() bool { return q == 0 }

func (q Quantity) IsPositive() bool { return q > 0 }

func (q Quantity) IsNegative() bool { return q < 0 }

func (q Quantity) Neg() Quantity { return -q }

func (q Quantity) Abs() Quantity {
	if q < 0 {
		return -q
	}
	return q
}

// Decimal converts to decimal.Decimal exactly.
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.New(int64(q), -4)
}

// Mul multiplies two fixed-point quantities. Used for unit-of-measure
// conversion (quantity entered times base units per entered unit).
func (q Quantity) Mul(r Quantity) Quantity {
	return Quantity(int64(q) * int64(r) / QuantityScale)
}

// String renders the quantity with exactly four fractional digits.
func (q Quantity) String() string {
	sign := ""
	v := q
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%04d", sign, int64(v)/QuantityScale, int64(v)%QuantityScale)
}

// MarshalJSON emits a bare number, not a string.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts a number token or a quoted string. Null means
// zero.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}

	token := string(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		if err := json.Unmarshal(data, &token); err != nil {
			return err
		}
	}

	parsed, err := parseQuantityString(token)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// parseQuantityString parses a plain decimal literal into fixed
// point. Digits past the fourth are truncated, not rounded. Exponent
// form goes through float parsing.
func parseQuantityString(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}

	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parse quantity: %w", err)
		}
		return NewQuantityFromFloat64(f), nil
	}

	sign := int64(1)
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	intStr, fracStr, _ := strings.Cut(s, ".")
	if intStr == "" {
		intStr = "0"
	}
	intPart, err := strconv.ParseInt(intStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse quantity integer part: %w", err)
	}

	if len(fracStr) > 4 {
		fracStr = fracStr[:4]
	}
	for len(fracStr) < 4 {
		fracStr += "0"
	}
	frac, err := strconv.ParseInt(fracStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse quantity fractional part: %w", err)
	}

	return Quantity(sign * (intPart*QuantityScale + frac)), nil
}

// Valuation helpers. Unit costs and stock values are Money,
// quantities are fixed-point Quantity. The weighted-average division
// is the one place the ledger divides, so the zero-quantity guard
// lives here once.

// AverageCost returns value/quantity, or zero when quantity is zero.
func AverageCost(value Money, quantity Quantity) Money {
	if quantity.IsZero() {
		return decimal.Zero
	}
	return value.Div(quantity.Decimal())
}

// CostValue returns cost*quantity as Money.
func CostValue(cost Money, quantity Quantity) Money {
	return cost.Mul(quantity.Decimal())
}
