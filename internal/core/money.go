// Package core provides money parsing and handling utilities.
//
// Amounts are decimal.Decimal values kept at the precision they were entered
// with. Parsing accepts both dot (12.34) and comma (12,34) decimal separators.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user supplied string into a strictly positive amount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("0.01")   -> 0.01, nil
//	ParseAmount("0.001")  -> 0.001, nil
//	ParseAmount("0")      -> ErrInvalidAmount
//	ParseAmount("-5")     -> ErrInvalidAmount
//	ParseAmount("twelve") -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// FormatAmount renders an amount with two decimals for display.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
