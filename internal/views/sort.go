package views

import (
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps anything other than "desc" to ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// SortState is the active column sort. A zero Key means the load order is
// kept.
type SortState struct {
	Key       string    `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Toggle flips the direction when key is already sorted ascending and starts
// a fresh ascending sort otherwise.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key && s.Direction == Asc {
		return SortState{Key: key, Direction: Desc}
	}
	return SortState{Key: key, Direction: Asc}
}

// Compare orders two records by the sort key. Equal keys compare as 0 so a
// stable sort keeps their load order.
func (s SortState) Compare(a, b core.Record) int {
	c := compareValues(a.Field(s.Key), b.Field(s.Key))
	if s.Direction == Desc {
		return -c
	}
	return c
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case decimal.Decimal:
		if bv, ok := b.(decimal.Decimal); ok {
			return av.Cmp(bv)
		}
	case core.Date:
		if bv, ok := b.(core.Date); ok {
			return av.Compare(bv.Time)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(strings.ToLower(av), strings.ToLower(bv))
		}
	}
	return 0
}

// Search is a case-insensitive substring filter on one column.
type Search struct {
	Column string `json:"column,omitempty"`
	Term   string `json:"term,omitempty"`
}

func (s Search) Active() bool { return s.Term != "" }

// Match reports whether r passes the filter. An empty term matches all.
func (s Search) Match(r core.Record) bool {
	if s.Term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(columnText(r.Field(s.Column))), strings.ToLower(s.Term))
}

// FieldText is the display text of a record column, the same text a search
// matches against.
func FieldText(r core.Record, key string) string {
	return columnText(r.Field(key))
}

func columnText(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case decimal.Decimal:
		return tv.String()
	case core.Date:
		return tv.String()
	case time.Time:
		return tv.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}
