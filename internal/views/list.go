package views

import (
	"slices"

	"fintrack/internal/core"
)

type Status int

const (
	Loading Status = iota
	Ready
)

// List is the local state of one record list. Records change only after a
// confirmed gateway success; failures set the error banner instead.
type List[T core.Record] struct {
	records []T
	status  Status
	err     string

	Sort    SortState
	Search  Search
	Menu    MenuState
	Confirm Confirm
}

// NewList returns a list in the loading state.
func NewList[T core.Record]() *List[T] {
	return &List[T]{}
}

func (l *List[T]) Status() Status { return l.status }

// Err is the current banner message, empty when there is none.
func (l *List[T]) Err() string { return l.err }

func (l *List[T]) Len() int { return len(l.records) }

// Records returns the records in load order.
func (l *List[T]) Records() []T {
	return slices.Clone(l.records)
}

// Find returns the record with id.
func (l *List[T]) Find(id string) (T, bool) {
	for _, r := range l.records {
		if r.RecordID() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Reload puts the list back into loading, for example after the owner or the
// selected period changed. Records are kept until the next load lands.
func (l *List[T]) Reload() {
	l.status = Loading
}

// Loaded applies a load result. A failed load still leaves the list ready so
// it stays interactive.
func (l *List[T]) Loaded(res core.Result[[]T]) {
	l.status = Ready
	if !res.Success {
		l.err = res.Error
		return
	}
	l.records = slices.Clone(res.Data)
	l.err = ""
}

// Created prepends a newly created record.
func (l *List[T]) Created(res core.Result[T]) bool {
	if !res.Success {
		l.err = res.Error
		return false
	}
	l.records = append([]T{res.Data}, l.records...)
	return true
}

// Updated replaces the record sharing the returned record's id.
func (l *List[T]) Updated(res core.Result[T]) bool {
	if !res.Success {
		l.err = res.Error
		return false
	}
	id := res.Data.RecordID()
	for i, r := range l.records {
		if r.RecordID() == id {
			l.records[i] = res.Data
		}
	}
	return true
}

// Deleted removes id after a successful delete and closes any confirmation
// pending on it.
func (l *List[T]) Deleted(id string, res core.Result[core.Empty]) bool {
	if !res.Success {
		l.err = res.Error
		return false
	}
	l.records = slices.DeleteFunc(l.records, func(r T) bool { return r.RecordID() == id })
	if pending, ok := l.Confirm.Pending(); ok && pending == id {
		l.Confirm = l.Confirm.Cancel()
	}
	if open, ok := l.Menu.OpenID(); ok && open == id {
		l.Menu = l.Menu.Close()
	}
	return true
}

// Fail sets the banner for an error that did not come from a Result.
func (l *List[T]) Fail(msg string) {
	l.err = msg
}

func (l *List[T]) DismissError() {
	l.err = ""
}

// Visible returns the filtered and sorted view. scope, when given, narrows
// the records first, for example to the selected budget period.
func (l *List[T]) Visible(scope ...func(T) bool) []T {
	out := make([]T, 0, len(l.records))
	for _, r := range l.records {
		if !l.Search.Match(r) {
			continue
		}
		if !inScope(r, scope) {
			continue
		}
		out = append(out, r)
	}
	if l.Sort.Key != "" {
		slices.SortStableFunc(out, func(a, b T) int { return l.Sort.Compare(a, b) })
	}
	return out
}

func inScope[T any](r T, scope []func(T) bool) bool {
	for _, keep := range scope {
		if keep != nil && !keep(r) {
			return false
		}
	}
	return true
}

// Apply is the stateless form of Visible used by request handlers.
func Apply[T core.Record](records []T, sort SortState, search Search) []T {
	l := List[T]{records: records, Sort: sort, Search: search}
	return l.Visible()
}
