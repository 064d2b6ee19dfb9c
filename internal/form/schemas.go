package form

import (
	"fmt"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

func typeNames() []string {
	out := make([]string, len(core.TransactionTypes))
	for i, t := range core.TransactionTypes {
		out[i] = string(t)
	}
	return out
}

func currencyNames() []string {
	out := make([]string, len(core.Currencies))
	for i, c := range core.Currencies {
		out[i] = string(c)
	}
	return out
}

var amountField = Field{Name: "amount", Label: "Amount", Kind: KindAmount, Required: true, Validators: []Validator{PositiveAmount}}

// TransactionSchema describes the transaction form.
var TransactionSchema = Schema[core.TransactionFields]{
	Type:  "transaction",
	Title: "Transaction",
	Fields: []Field{
		{Name: "date", Label: "Date", Kind: KindDate, Required: true, Validators: []Validator{ValidDate},
			defaultFn: func() string { return core.Today().String() }},
		{Name: "type", Label: "Type", Kind: KindSelect, Required: true, Options: typeNames(), Validators: []Validator{OneOf(typeNames()...)}},
		{Name: "name", Label: "Name", Kind: KindText, Required: true},
		{Name: "category", Label: "Category", Kind: KindText, Required: true, Suggestions: core.DefaultCategories},
		{Name: "method", Label: "Method", Kind: KindText, Required: true, Suggestions: core.DefaultMethods},
		amountField,
	},
	Bind: func(p Payload) (core.TransactionFields, error) {
		date, err := core.ParseDate(p.String("date"))
		if err != nil {
			return core.TransactionFields{}, err
		}
		return core.TransactionFields{
			Date:     date,
			Type:     core.TransactionType(p.String("type")),
			Name:     p.String("name"),
			Category: p.String("category"),
			Method:   p.String("method"),
			Amount:   p.Amount("amount"),
		}, nil
	},
}

// BudgetSchema describes the budget form. Month and year default to the
// current period; callers showing another period override them on open.
var BudgetSchema = Schema[core.BudgetFields]{
	Type:  "budget",
	Title: "Budget",
	Fields: []Field{
		{Name: "category", Label: "Category", Kind: KindText, Required: true, Suggestions: core.DefaultCategories},
		amountField,
		{Name: "month", Label: "Month", Kind: KindSelect, Required: true, Options: core.MonthNames[:], Validators: []Validator{OneOf(core.MonthNames[:]...)},
			defaultFn: func() string { return core.CurrentPeriod().MonthName() }},
		{Name: "year", Label: "Year", Kind: KindText, Required: true, Validators: []Validator{ValidYear},
			defaultFn: func() string { return core.CurrentPeriod().YearString() }},
	},
	Bind: func(p Payload) (core.BudgetFields, error) {
		return core.BudgetFields{
			Category: p.String("category"),
			Amount:   p.Amount("amount"),
			Month:    p.String("month"),
			Year:     p.String("year"),
		}, nil
	},
}

// NoteSchema describes the note form.
var NoteSchema = Schema[core.NoteFields]{
	Type:  "note",
	Title: "Note",
	Fields: []Field{
		{Name: "heading", Label: "Note title", Kind: KindText, Required: true},
		{Name: "content", Label: "Note content", Kind: KindTextArea, Required: true},
	},
	Bind: func(p Payload) (core.NoteFields, error) {
		return core.NoteFields{Heading: p.String("heading"), Content: p.String("content")}, nil
	},
}

// AssetSchema describes the asset form.
var AssetSchema = Schema[core.AssetFields]{
	Type:  "asset",
	Title: "Asset",
	Fields: []Field{
		{Name: "name", Label: "Asset name", Kind: KindText, Required: true},
		{Name: "currency", Label: "Currency", Kind: KindSelect, Required: true, Default: string(core.AED),
			Options: currencyNames(), Validators: []Validator{OneOf(currencyNames()...)}},
		amountField,
		{Name: "notes", Label: "Notes", Kind: KindTextArea},
	},
	Bind: func(p Payload) (core.AssetFields, error) {
		return core.AssetFields{
			Name:     p.String("name"),
			Currency: core.Currency(p.String("currency")),
			Amount:   p.Amount("amount"),
			Notes:    p.String("notes"),
		}, nil
	},
}

// String returns a text value, or "" when the key was dropped.
func (p Payload) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Amount returns a coerced amount, or zero when absent.
func (p Payload) Amount(key string) decimal.Decimal {
	if v, ok := p[key].(decimal.Decimal); ok {
		return v
	}
	return decimal.Zero
}

// ID returns the record id carried by edit submissions.
func (p Payload) ID() string {
	return p.String("id")
}

// TransactionValues flattens a stored transaction into form values.
func TransactionValues(t core.Transaction) map[string]string {
	return map[string]string{
		"date":     t.Date.String(),
		"type":     string(t.Type),
		"name":     t.Name,
		"category": t.Category,
		"method":   t.Method,
		"amount":   amountText(t.Amount),
	}
}

func BudgetValues(b core.Budget) map[string]string {
	return map[string]string{
		"category": b.Category,
		"amount":   amountText(b.Amount),
		"month":    b.Month,
		"year":     b.Year,
	}
}

func NoteValues(n core.Note) map[string]string {
	return map[string]string{"heading": n.Heading, "content": n.Content}
}

func AssetValues(a core.Asset) map[string]string {
	return map[string]string{
		"name":     a.Name,
		"currency": string(a.Currency),
		"amount":   amountText(a.Amount),
		"notes":    a.Notes,
	}
}

func amountText(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

// ErrUnknownType is returned for a record type with no schema.
type ErrUnknownType string

func (e ErrUnknownType) Error() string { return fmt.Sprintf("unknown record type %q", string(e)) }

// Schemas is the set of record schemas one process serves.
type Schemas struct {
	Transaction Schema[core.TransactionFields]
	Budget      Schema[core.BudgetFields]
	Note        Schema[core.NoteFields]
	Asset       Schema[core.AssetFields]
}

// DefaultSchemas returns the built-in schemas.
func DefaultSchemas() Schemas {
	return Schemas{
		Transaction: TransactionSchema,
		Budget:      BudgetSchema,
		Note:        NoteSchema,
		Asset:       AssetSchema,
	}
}

// NewSchemas returns the built-in schemas with configured category and
// method suggestions.
func NewSchemas(categories, methods []string) Schemas {
	s := DefaultSchemas()
	s.Transaction = s.Transaction.
		WithSuggestions("category", categories).
		WithSuggestions("method", methods)
	s.Budget = s.Budget.WithSuggestions("category", categories)
	return s
}

// Describe returns the serialisable schema for a record type name.
func (s Schemas) Describe(recordType string) (any, error) {
	switch recordType {
	case "transaction", "transactions":
		return s.Transaction.Describe(), nil
	case "budget", "budgets":
		return s.Budget.Describe(), nil
	case "note", "notes":
		return s.Note.Describe(), nil
	case "asset", "assets":
		return s.Asset.Describe(), nil
	}
	return nil, ErrUnknownType(recordType)
}

// Describe looks up recordType in the built-in schemas.
func Describe(recordType string) (any, error) {
	return DefaultSchemas().Describe(recordType)
}
