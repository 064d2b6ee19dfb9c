package analytics

import (
	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// CategoryComparison is one row of the budget-versus-spend table.
type CategoryComparison struct {
	Category        string          `json:"category"`
	BudgetAmount    decimal.Decimal `json:"budget_amount"`
	SpentAmount     decimal.Decimal `json:"spent_amount"`
	Difference      decimal.Decimal `json:"difference"`
	HasBudget       bool            `json:"has_budget"`
	HasTransactions bool            `json:"has_transactions"`
	IsOverBudget    bool            `json:"is_over_budget"`
	IsUnderBudget   bool            `json:"is_under_budget"`
}

// CompareBudgetToSpend returns one entry per category found in either the
// budgets or the non-income transactions, sorted by category.
// Duplicate budgets for a category are summed.
func CompareBudgetToSpend(budgets []core.Budget, transactions []core.Transaction) []CategoryComparison {
	spent := make(map[string]decimal.Decimal)
	for _, t := range transactions {
		if t.Type.IsIncome() {
			continue
		}
		spent[t.Category] = spent[t.Category].Add(t.Amount)
	}

	budgeted := make(map[string]decimal.Decimal)
	for _, b := range budgets {
		budgeted[b.Category] = budgeted[b.Category].Add(b.Amount)
	}

	out := make([]CategoryComparison, 0, len(spent)+len(budgeted))
	seen := make(map[string]bool, len(spent)+len(budgeted))
	add := func(category string) {
		if seen[category] {
			return
		}
		seen[category] = true

		budget, hasBudget := budgeted[category]
		spentAmount, hasTx := spent[category]
		diff := budget.Sub(spentAmount)
		out = append(out, CategoryComparison{
			Category:        category,
			BudgetAmount:    budget,
			SpentAmount:     spentAmount,
			Difference:      diff,
			HasBudget:       hasBudget,
			HasTransactions: hasTx,
			IsOverBudget:    diff.IsNegative(),
			IsUnderBudget:   diff.IsPositive(),
		})
	}
	for _, b := range budgets {
		add(b.Category)
	}
	for _, t := range transactions {
		if !t.Type.IsIncome() {
			add(t.Category)
		}
	}

	sortByLabel(out, func(c CategoryComparison) string { return c.Category })
	return out
}

// TotalBudget sums the budgets whose month and year match p.
func TotalBudget(budgets []core.Budget, p core.Period) decimal.Decimal {
	total := decimal.Zero
	for _, b := range budgets {
		if b.Month == p.MonthName() && b.Year == p.YearString() {
			total = total.Add(b.Amount)
		}
	}
	return total
}
