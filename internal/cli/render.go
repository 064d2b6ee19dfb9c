package cli

import (
	"fmt"
	"strings"

	"fintrack/internal/analytics"
	"fintrack/internal/core"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

var (
	colorBorder = lipgloss.Color("#575653")
	colorMuted  = lipgloss.Color("#6F6E69")
	colorText   = lipgloss.Color("#FFFCF0")
	colorAccent = lipgloss.Color("#3AA99F")
	colorGreen  = lipgloss.Color("#879A39")
	colorRed    = lipgloss.Color("#D14D41")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	overStyle   = numberStyle.Foreground(colorRed)
	underStyle  = numberStyle.Foreground(colorGreen)
)

// Table is a report table. Columns from NumericFrom on are right-aligned.
type Table struct {
	Headers     []string
	Rows        [][]string
	NumericFrom int
	// Style overrides the style of one body cell; nil keeps the default.
	Style func(row, col int) *lipgloss.Style
}

// RenderTitle renders a title in a rounded box.
func RenderTitle(title string) string {
	return titleStyle.Render(title)
}

// RenderTable renders t with rounded borders.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 {
		return mutedStyle.Render("  no data") + "\n"
	}
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if t.Style != nil {
				if s := t.Style(row, col); s != nil {
					return *s
				}
			}
			if t.NumericFrom > 0 && col >= t.NumericFrom {
				return numberStyle
			}
			return cellStyle
		})
	return tbl.Render() + "\n"
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// budgetTable renders the budget versus spend comparison.
func budgetTable(rows []analytics.CategoryComparison) Table {
	t := Table{
		Headers:     []string{"Category", "Budget", "Spent", "Difference", "Status"},
		NumericFrom: 1,
	}
	for _, r := range rows {
		status := "on budget"
		switch {
		case !r.HasBudget:
			status = "no budget"
		case r.IsOverBudget:
			status = "over"
		case r.IsUnderBudget:
			status = "under"
		}
		t.Rows = append(t.Rows, []string{r.Category, amount(r.BudgetAmount), amount(r.SpentAmount), amount(r.Difference), status})
	}
	t.Style = func(row, col int) *lipgloss.Style {
		if col != 3 || row < 0 || row >= len(rows) {
			return nil
		}
		switch {
		case rows[row].IsOverBudget:
			return &overStyle
		case rows[row].IsUnderBudget:
			return &underStyle
		}
		return nil
	}
	return t
}

func methodTable(rows []analytics.MethodBreakdown) Table {
	t := Table{Headers: []string{"Method", "Income", "Expenditure"}, NumericFrom: 1}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Method, amount(r.Income), amount(r.Expenditure)})
	}
	return t
}

// yearlyTable lays the series out with one row per category and a column
// per month.
func yearlyTable(s analytics.YearlySeries) Table {
	headers := []string{"Category"}
	for _, label := range s.Labels {
		headers = append(headers, shortMonth(label))
	}
	t := Table{Headers: headers, NumericFrom: 1}
	for _, cs := range s.Series {
		row := []string{cs.Category}
		for _, v := range cs.Values {
			if v.IsZero() {
				row = append(row, "-")
			} else {
				row = append(row, v.StringFixed(0))
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// balanceTable lists the months that saw any activity.
func balanceTable(b analytics.MonthlyBalance) Table {
	t := Table{Headers: []string{"Month", "Income", "Expenditure", "Net"}, NumericFrom: 1}
	var nets []decimal.Decimal
	for m, label := range b.Labels {
		if b.Income[m].IsZero() && b.Expenditure[m].IsZero() {
			continue
		}
		net := b.Net(m)
		nets = append(nets, net)
		t.Rows = append(t.Rows, []string{label, amount(b.Income[m]), amount(b.Expenditure[m]), amount(net)})
	}
	t.Style = func(row, col int) *lipgloss.Style {
		if col != 3 || row < 0 || row >= len(nets) {
			return nil
		}
		if nets[row].IsNegative() {
			return &overStyle
		}
		return &underStyle
	}
	return t
}

func shortMonth(label string) string {
	if len(label) > 3 {
		return label[:3]
	}
	return label
}

func assetTable(assets []core.Asset) Table {
	t := Table{Headers: []string{"Name", "Amount", "Currency", "Notes"}}
	for _, a := range assets {
		t.Rows = append(t.Rows, []string{a.Name, amount(a.Amount), core.CurrencyLabel(a.Currency), a.Notes})
	}
	t.Style = func(_, col int) *lipgloss.Style {
		if col == 1 {
			return &numberStyle
		}
		return nil
	}
	return t
}

// totalLine renders a labelled total under a table.
func totalLine(label string, d decimal.Decimal) string {
	return fmt.Sprintf("  %s %s\n", mutedStyle.Render(label), headerStyle.UnsetPadding().Render(amount(d)))
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}
