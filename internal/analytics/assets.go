package analytics

import (
	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// Rates maps a currency to its value in the base currency (AED). The table is
// a fixed approximation, not a live rate feed.
type Rates map[core.Currency]decimal.Decimal

// DefaultRates is used when configuration does not override the table.
var DefaultRates = Rates{
	core.AED: decimal.NewFromInt(1),
	core.INR: decimal.RequireFromString("0.043"),
	core.USD: decimal.RequireFromString("3.67"),
}

// Rate returns the conversion rate for c, or 1 for an unknown currency.
func (r Rates) Rate(c core.Currency) decimal.Decimal {
	if rate, ok := r[c]; ok {
		return rate
	}
	return decimal.NewFromInt(1)
}

// Total converts and sums the asset amounts.
func (r Rates) Total(assets []core.Asset) decimal.Decimal {
	total := decimal.Zero
	for _, a := range assets {
		total = total.Add(a.Amount.Mul(r.Rate(a.Currency)))
	}
	return total
}

// TotalAssetsInBaseCurrency sums assets using DefaultRates.
func TotalAssetsInBaseCurrency(assets []core.Asset) decimal.Decimal {
	return DefaultRates.Total(assets)
}
