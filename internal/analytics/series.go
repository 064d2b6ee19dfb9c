package analytics

import (
	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// CategorySeries holds twelve monthly totals for one category, January first.
type CategorySeries struct {
	Category string              `json:"category"`
	Values   [12]decimal.Decimal `json:"values"`
}

// YearlySeries is the month by category matrix behind the yearly chart.
type YearlySeries struct {
	Year   int                  `json:"year"`
	Type   core.TransactionType `json:"type"`
	Labels [12]string           `json:"labels"`
	Series []CategorySeries     `json:"series"`
}

// SeriesByMonthAndCategory keeps the transactions of the given year and type
// (Income, or everything else for Expenditure) and totals them per month and
// category. Months without activity are zero.
func SeriesByMonthAndCategory(transactions []core.Transaction, year int, typ core.TransactionType) YearlySeries {
	wantIncome := typ.IsIncome()
	byCategory := make(map[string]*CategorySeries)
	for _, t := range transactions {
		if t.Date.Year() != year || t.Type.IsIncome() != wantIncome {
			continue
		}
		s, ok := byCategory[t.Category]
		if !ok {
			s = &CategorySeries{Category: t.Category}
			for i := range s.Values {
				s.Values[i] = decimal.Zero
			}
			byCategory[t.Category] = s
		}
		m := int(t.Date.Month()) - 1
		s.Values[m] = s.Values[m].Add(t.Amount)
	}

	series := make([]CategorySeries, 0, len(byCategory))
	for _, s := range byCategory {
		series = append(series, *s)
	}
	sortByLabel(series, func(s CategorySeries) string { return s.Category })

	return YearlySeries{
		Year:   year,
		Type:   typ,
		Labels: core.MonthNames,
		Series: series,
	}
}

// MonthlyBalance sets income against expenditure for each month of a year.
type MonthlyBalance struct {
	Year        int                 `json:"year"`
	Labels      [12]string          `json:"labels"`
	Income      [12]decimal.Decimal `json:"income"`
	Expenditure [12]decimal.Decimal `json:"expenditure"`
}

// Net is income minus expenditure for month index m (0 is January).
func (b MonthlyBalance) Net(m int) decimal.Decimal {
	return b.Income[m].Sub(b.Expenditure[m])
}

// MonthlyTotals sums income and expenditure for each month of year. Every
// non-Income transaction counts as expenditure.
func MonthlyTotals(transactions []core.Transaction, year int) MonthlyBalance {
	b := MonthlyBalance{Year: year, Labels: core.MonthNames}
	for i := 0; i < 12; i++ {
		b.Income[i] = decimal.Zero
		b.Expenditure[i] = decimal.Zero
	}
	for _, t := range transactions {
		if t.Date.Year() != year {
			continue
		}
		m := int(t.Date.Month()) - 1
		if t.Type.IsIncome() {
			b.Income[m] = b.Income[m].Add(t.Amount)
		} else {
			b.Expenditure[m] = b.Expenditure[m].Add(t.Amount)
		}
	}
	return b
}
