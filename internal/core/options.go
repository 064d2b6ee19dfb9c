package core

// Suggested values offered by forms. Categories and methods stay free text;
// these lists only seed pickers.
var (
	DefaultCategories = []string{
		"Food", "Transportation", "Shopping", "Entertainment", "Health", "Utilities", "Rent",
		"Leisure", "Grocery", "Transport", "Education", "Insurance", "Savings", "Other",
	}
	DefaultMethods = []string{
		"Cash", "RAK Bank", "ADCB", "Emirates NBD", "FAB", "Credit Card", "Other",
	}
	TransactionTypes = []TransactionType{Income, Expenditure}
	Currencies       = []Currency{AED, INR, USD}
)

// CurrencyLabel returns the display label for a stored currency code.
func CurrencyLabel(c Currency) string {
	if c == USD {
		return "USD"
	}
	return string(c)
}
