package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	if err := NewDate(2025, time.January, 1).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Date{}).Validate(); err == nil {
		t.Fatalf("expected error for zero date")
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, time.March, 9)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-03-09"` {
		t.Fatalf("marshal = %s", b)
	}
	var back Date
	if err := json.Unmarshal([]byte(`"2024-12-31"`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.String() != "2024-12-31" {
		t.Fatalf("unmarshal = %s", back)
	}
	if err := json.Unmarshal([]byte(`"31/12/2024"`), &back); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := TransactionFields{
		Date:     NewDate(2025, time.July, 1),
		Type:     Expenditure,
		Name:     "Lunch",
		Category: "Food",
		Method:   "Cash",
		Amount:   decimal.RequireFromString("12.50"),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []func(*TransactionFields){
		func(f *TransactionFields) { f.Date = Date{} },
		func(f *TransactionFields) { f.Type = "Refund" },
		func(f *TransactionFields) { f.Name = "  " },
		func(f *TransactionFields) { f.Category = "" },
		func(f *TransactionFields) { f.Method = "" },
		func(f *TransactionFields) { f.Amount = decimal.Zero },
		func(f *TransactionFields) { f.Amount = decimal.NewFromInt(-3) },
	}
	for i, mutate := range bads {
		f := good
		mutate(&f)
		if err := f.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	good := BudgetFields{Category: "Food", Amount: decimal.NewFromInt(500), Month: "July", Year: "2025"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	for i, b := range []BudgetFields{
		{Category: "Food", Amount: decimal.NewFromInt(500), Month: "july", Year: "2025"},
		{Category: "Food", Amount: decimal.NewFromInt(500), Month: "July", Year: "25"},
		{Category: "", Amount: decimal.NewFromInt(500), Month: "July", Year: "2025"},
		{Category: "Food", Amount: decimal.Zero, Month: "July", Year: "2025"},
	} {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestAssetAndNoteValidate(t *testing.T) {
	if err := (AssetFields{Name: "Gold", Amount: decimal.NewFromInt(1), Currency: USD}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (AssetFields{Name: "Gold", Amount: decimal.NewFromInt(1), Currency: "EUR"}).Validate(); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
	if err := (NoteFields{Heading: "h", Content: " "}).Validate(); !errors.Is(err, ErrEmptyField) {
		t.Fatalf("expected ErrEmptyField, got %v", err)
	}
}

func TestResult(t *testing.T) {
	ok := Ok(3)
	if v, err := ok.Unwrap(); err != nil || v != 3 {
		t.Fatalf("Unwrap = %v, %v", v, err)
	}
	failed := Fail[int](ErrNotFound)
	if failed.Success || failed.Error != "record not found" {
		t.Fatalf("Fail = %+v", failed)
	}
	b, _ := json.Marshal(Fail[Empty](errors.New("boom")))
	if string(b) != `{"success":false,"data":{},"error":"boom"}` {
		t.Fatalf("json = %s", b)
	}
}
