// Package ether converts between ether denominated decimal strings and the
// wei fixed-point integers used by the pool.
package ether

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Decimals is the number of decimals between ether and wei.
const Decimals = 18

// Parse converts a decimal ether value like "1.5" into wei.
func Parse(value string) (*uint256.Int, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", value, err)
	}

	if d.IsNegative() {
		return nil, fmt.Errorf("parsing %q: negative value", value)
	}

	wei := d.Shift(Decimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, fmt.Errorf("parsing %q: more than %d decimals", value, Decimals)
	}

	amount, overflow := uint256.FromBig(wei.BigInt())
	if overflow {
		return nil, fmt.Errorf("parsing %q: %w", value, errors.New("value exceeds 256 bits"))
	}

	return amount, nil
}

// MustParse is like Parse but panics if the value can't be parsed. It
// exists for tests and constants.
func MustParse(value string) *uint256.Int {
	amount, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return amount
}

// Format converts wei into a decimal ether string without trailing zeros.
func Format(wei *uint256.Int) string {
	if wei == nil {
		return "0"
	}

	return decimal.NewFromBigInt(wei.ToBig(), -Decimals).String()
}

// Float converts wei into an approximate ether value for gauges and charts.
func Float(wei *uint256.Int) float64 {
	if wei == nil {
		return 0
	}

	return decimal.NewFromBigInt(wei.ToBig(), -Decimals).InexactFloat64()
}
