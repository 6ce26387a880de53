// Package sats converts between satoshis and millisatoshis and validates
// payment amounts against sendable bounds.
//
// Callers work in whole satoshis; the LNURL wire format always carries
// millisatoshis. Externally supplied bounds are assumed to be multiples of
// 1000 msat, so floor division is sufficient when converting them back.
package sats

import "fmt"

// MillisatsPerSat is the number of millisatoshis in one satoshi.
const MillisatsPerSat = 1000

// DefaultBounds is used for any side of the range an upstream omits.
// Min 1 sat, max 1,000,000,000 sats (1e12 msat).
var DefaultBounds = Bounds{Min: 1, Max: 1_000_000_000}

// Bounds is an inclusive [Min, Max] range in satoshis.
type Bounds struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// ToMillisats converts satoshis to millisatoshis.
func ToMillisats(sats int64) int64 {
	return sats * MillisatsPerSat
}

// FromMillisats converts millisatoshis to satoshis, flooring any remainder.
func FromMillisats(msat int64) int64 {
	q := msat / MillisatsPerSat
	// Go truncates toward zero; keep floor semantics for negative inputs.
	if msat%MillisatsPerSat != 0 && msat < 0 {
		q--
	}
	return q
}

// BoundsFromMillisats builds sat bounds from optional millisat values,
// substituting fallback for each side that is nil.
func BoundsFromMillisats(minMsat, maxMsat *int64, fallback Bounds) Bounds {
	b := fallback
	if minMsat != nil {
		b.Min = FromMillisats(*minMsat)
	}
	if maxMsat != nil {
		b.Max = FromMillisats(*maxMsat)
	}
	return b
}

// RangeError reports an amount outside its allowed bounds. Min and Max echo
// the bounds it was checked against so callers can re-prompt with them.
type RangeError struct {
	Amount int64
	Min    int64
	Max    int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("amount %d sats outside allowed range [%d, %d]", e.Amount, e.Min, e.Max)
}

// ValidateRange returns a *RangeError when amount < b.Min or amount > b.Max.
func ValidateRange(amount int64, b Bounds) error {
	if amount < b.Min || amount > b.Max {
		return &RangeError{Amount: amount, Min: b.Min, Max: b.Max}
	}
	return nil
}

// ValidateAmountInRange is ValidateRange with explicit bounds.
func ValidateAmountInRange(amount, min, max int64) error {
	return ValidateRange(amount, Bounds{Min: min, Max: max})
}
