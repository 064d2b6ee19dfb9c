package analytics

import (
	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// MethodBreakdown sums income and expenditure for one payment method.
type MethodBreakdown struct {
	Method      string          `json:"method"`
	Income      decimal.Decimal `json:"income"`
	Expenditure decimal.Decimal `json:"expenditure"`
}

// BreakdownByMethod groups transactions by method, sorted by method name.
func BreakdownByMethod(transactions []core.Transaction) []MethodBreakdown {
	index := make(map[string]int)
	out := make([]MethodBreakdown, 0)
	for _, t := range transactions {
		i, ok := index[t.Method]
		if !ok {
			i = len(out)
			index[t.Method] = i
			out = append(out, MethodBreakdown{Method: t.Method})
		}
		if t.Type.IsIncome() {
			out[i].Income = out[i].Income.Add(t.Amount)
		} else {
			out[i].Expenditure = out[i].Expenditure.Add(t.Amount)
		}
	}
	sortByLabel(out, func(m MethodBreakdown) string { return m.Method })
	return out
}
