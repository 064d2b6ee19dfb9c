package tui

// Column sets of the four record kinds. Keys are the record field keys.
var (
	TransactionColumns = []Column{
		{Key: "date", Title: "Date", Width: 10},
		{Key: "type", Title: "Type", Width: 11},
		{Key: "name", Title: "Name", Width: 20},
		{Key: "category", Title: "Category", Width: 14},
		{Key: "method", Title: "Method", Width: 12},
		{Key: "amount", Title: "Amount", Width: 12},
	}

	BudgetColumns = []Column{
		{Key: "category", Title: "Category", Width: 16},
		{Key: "amount", Title: "Amount", Width: 12},
		{Key: "month", Title: "Month", Width: 10},
		{Key: "year", Title: "Year", Width: 6},
	}

	NoteColumns = []Column{
		{Key: "heading", Title: "Heading", Width: 24},
		{Key: "content", Title: "Content", Width: 48},
		{Key: "created_at", Title: "Created", Width: 20},
	}

	AssetColumns = []Column{
		{Key: "name", Title: "Name", Width: 20},
		{Key: "amount", Title: "Amount", Width: 14},
		{Key: "currency", Title: "Currency", Width: 8},
		{Key: "notes", Title: "Notes", Width: 30},
	}
)
