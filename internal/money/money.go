// Package money converts currency amounts to exact two-decimal display values.
//
// Amounts are parsed into base-10 decimals and rounded half away from zero
// (2.675 -> 2.68, -2.675 -> -2.68). No step goes through binary floating point
// except when the caller already hands in a float64, which is first rendered to
// its shortest decimal form.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of fractional digits shown for a currency amount.
const DisplayPlaces = 2

var ErrInvalidAmount = errors.New("invalid monetary amount")

// Parse converts v into an exact decimal. Accepted inputs are decimal strings,
// json.Number, decimal.Decimal, Go integers and finite floats.
func Parse(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case string:
		return parseString(t)
	case json.Number:
		return parseString(t.String())
	case decimal.Decimal:
		return t, nil
	case *decimal.Decimal:
		if t == nil {
			return decimal.Zero, fmt.Errorf("%w: nil", ErrInvalidAmount)
		}
		return *t, nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int32:
		return decimal.NewFromInt32(t), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case float32:
		return parseFloat(float64(t), 32)
	case float64:
		return parseFloat(t, 64)
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, v)
	}
}

func parseString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// parseFloat uses the shortest decimal that round-trips to f, so 2.675 is
// read as "2.675" and not as its binary expansion 2.67499999...
func parseFloat(f float64, bits int) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, f)
	}
	if bits == 32 {
		return decimal.NewFromFloat32(float32(f)), nil
	}
	return decimal.NewFromFloat(f), nil
}

// Canonical renders d without losing precision, using at least two decimals:
// 1000 -> "1000.00", 2.675 -> "2.675", 1000.000 -> "1000.000".
func Canonical(d decimal.Decimal) string {
	places := int32(DisplayPlaces)
	if -d.Exponent() > places {
		places = -d.Exponent()
	}
	return d.StringFixed(places)
}

// Amount is a display value with exactly two decimals.
type Amount struct{ d decimal.Decimal }

// RoundDisplay rounds v to two decimals, half away from zero.
func RoundDisplay(v any) (Amount, error) {
	d, err := Parse(v)
	if err != nil {
		return Amount{}, err
	}
	return Amount{d: d.Round(DisplayPlaces)}, nil
}

func (a Amount) Decimal() decimal.Decimal { return a.d }

func (a Amount) String() string { return a.d.StringFixed(DisplayPlaces) }

// MarshalJSON writes the amount as a bare JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	d, err := parseString(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	a.d = d.Round(DisplayPlaces)
	return nil
}
