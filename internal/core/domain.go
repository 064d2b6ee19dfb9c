package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income      TransactionType = "Income"
	Expenditure TransactionType = "Expenditure"
)

const (
	AED Currency = "AED"
	INR Currency = "INR"
	USD Currency = "$"
)

// DateLayout is the calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	Currency string

	// Date is a calendar date without a time of day.
	Date struct {
		time.Time
	}

	TransactionFields struct {
		Date     Date            `json:"date"`
		Type     TransactionType `json:"type"`
		Name     string          `json:"name"`
		Category string          `json:"category"`
		Method   string          `json:"method"`
		Amount   decimal.Decimal `json:"amount"`
	}

	Transaction struct {
		ID    string `json:"id"`
		Owner string `json:"user_id"`
		TransactionFields
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	BudgetFields struct {
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
		Month    string          `json:"month"` // full English month name
		Year     string          `json:"year"`  // four digits
	}

	Budget struct {
		ID    string `json:"id"`
		Owner string `json:"user_id"`
		BudgetFields
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	NoteFields struct {
		Heading string `json:"heading"`
		Content string `json:"content"`
	}

	Note struct {
		ID    string `json:"id"`
		Owner string `json:"user_id"`
		NoteFields
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	AssetFields struct {
		Name     string          `json:"name"`
		Amount   decimal.Decimal `json:"amount"`
		Currency Currency        `json:"currency"`
		Notes    string          `json:"notes,omitempty"`
	}

	Asset struct {
		ID    string `json:"id"`
		Owner string `json:"user_id"`
		AssetFields
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidYear     = errors.New("invalid year")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrEmptyField      = errors.New("empty field")
	ErrNotFound        = errors.New("record not found")
)

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expenditure
}

// IsIncome reports whether the transaction counts as income. Every other
// value, valid or not, is treated as expenditure by the aggregations.
func (t TransactionType) IsIncome() bool {
	return t == Income
}

func (c Currency) Valid() bool {
	switch c {
	case AED, INR, USD:
		return true
	}
	return false
}

// ValidateAmount enforces the amount > 0 invariant shared by every entity.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func requireText(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyField, name)
	}
	return nil
}

func (f TransactionFields) Validate() error {
	if err := f.Date.Validate(); err != nil {
		return err
	}
	if !f.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, f.Type)
	}
	for _, c := range []struct{ name, v string }{
		{"name", f.Name}, {"category", f.Category}, {"method", f.Method},
	} {
		if err := requireText(c.name, c.v); err != nil {
			return err
		}
	}
	return ValidateAmount(f.Amount)
}

func (f BudgetFields) Validate() error {
	if err := requireText("category", f.Category); err != nil {
		return err
	}
	if err := ValidateAmount(f.Amount); err != nil {
		return err
	}
	if _, err := ParseMonthName(f.Month); err != nil {
		return err
	}
	return ValidateYear(f.Year)
}

func (f NoteFields) Validate() error {
	if err := requireText("heading", f.Heading); err != nil {
		return err
	}
	return requireText("content", f.Content)
}

func (f AssetFields) Validate() error {
	if err := requireText("name", f.Name); err != nil {
		return err
	}
	if !f.Currency.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, f.Currency)
	}
	return ValidateAmount(f.Amount)
}
