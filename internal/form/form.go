package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// Mode is the steady state of a form.
type Mode int

const (
	Closed Mode = iota
	Create
	Edit
)

func (m Mode) String() string {
	switch m {
	case Create:
		return "create"
	case Edit:
		return "edit"
	}
	return "closed"
}

// SubmitErrorKey is the error map key of a failed submission.
const SubmitErrorKey = "submit"

// SubmitErrorMessage is the single message shown when the submit handler fails.
const SubmitErrorMessage = "Failed to save. Please try again."

var (
	ErrNotOpen = errors.New("form is not open")
	ErrInvalid = errors.New("form has validation errors")
	ErrBusy    = errors.New("form is already submitting")
)

// Submission is what a submit handler receives.
type Submission[F any] struct {
	ID      string // set in Edit mode
	Payload Payload
	Fields  F
}

// Handler persists a submission. Returning an error keeps the form open.
type Handler[F any] func(ctx context.Context, s Submission[F]) error

// Form is the editing state of one record form. It is not safe for
// concurrent use.
type Form[F any] struct {
	schema     Schema[F]
	mode       Mode
	id         string
	values     map[string]string
	errors     map[string]string
	submitting bool
}

func New[F any](schema Schema[F]) *Form[F] {
	return &Form[F]{schema: schema, values: map[string]string{}, errors: map[string]string{}}
}

// OpenCreate seeds the form from the schema defaults. overrides replaces
// individual defaults, for example the budget period currently on screen.
func (f *Form[F]) OpenCreate(overrides map[string]string) {
	f.reset()
	f.mode = Create
	f.values = f.schema.Defaults()
	for k, v := range overrides {
		if _, ok := f.schema.Field(k); ok {
			f.values[k] = v
		}
	}
}

// OpenEdit seeds the form from an existing record. Empty seed values fall
// back to the schema defaults.
func (f *Form[F]) OpenEdit(id string, seed map[string]string) {
	f.reset()
	f.mode = Edit
	f.id = id
	f.values = f.schema.Defaults()
	for k, v := range seed {
		if _, ok := f.schema.Field(k); ok && v != "" {
			f.values[k] = v
		}
	}
}

// Close resets every piece of state, whatever the outcome that led here.
func (f *Form[F]) Close() {
	f.reset()
}

func (f *Form[F]) reset() {
	f.mode = Closed
	f.id = ""
	f.values = map[string]string{}
	f.errors = map[string]string{}
	f.submitting = false
}

func (f *Form[F]) Mode() Mode { return f.mode }

// ID is the record being edited, empty in Create mode.
func (f *Form[F]) ID() string { return f.id }

func (f *Form[F]) Schema() Schema[F] { return f.schema }

func (f *Form[F]) Submitting() bool { return f.submitting }

func (f *Form[F]) Value(name string) string { return f.values[name] }

// Values returns a copy of the current field values.
func (f *Form[F]) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Errors returns a copy of the field-keyed error map.
func (f *Form[F]) Errors() map[string]string {
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Set updates a field value and clears that field's error.
func (f *Form[F]) Set(name, value string) error {
	if f.mode == Closed {
		return ErrNotOpen
	}
	if _, ok := f.schema.Field(name); !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	f.values[name] = value
	delete(f.errors, name)
	return nil
}

// Validate checks every field and replaces the error map. It reports
// whether the form is valid.
func (f *Form[F]) Validate() bool {
	f.errors = ValidateValues(f.schema, f.values)
	return len(f.errors) == 0
}

// Submit validates, shapes the payload and hands it to h. On success the
// form closes. On handler failure the form stays open with its values and a
// single generic error.
func (f *Form[F]) Submit(ctx context.Context, h Handler[F]) error {
	if f.mode == Closed {
		return ErrNotOpen
	}
	if f.submitting {
		return ErrBusy
	}
	if !f.Validate() {
		return ErrInvalid
	}

	payload := Shape(f.schema, f.values)
	if f.mode == Edit && f.id != "" {
		payload["id"] = f.id
	}
	fields, err := f.schema.Bind(payload)
	if err != nil {
		f.errors = map[string]string{SubmitErrorKey: SubmitErrorMessage}
		return fmt.Errorf("bind %s: %w", f.schema.Type, err)
	}

	f.submitting = true
	err = h(ctx, Submission[F]{ID: f.id, Payload: payload, Fields: fields})
	f.submitting = false
	if err != nil {
		f.errors = map[string]string{SubmitErrorKey: SubmitErrorMessage}
		return fmt.Errorf("submit %s: %w", f.schema.Type, err)
	}

	f.Close()
	return nil
}

// ValidateValues applies a schema's rules to raw values and returns the
// failing fields. It is used directly by stateless callers such as the API.
func ValidateValues[F any](schema Schema[F], values map[string]string) map[string]string {
	errs := map[string]string{}
	for _, field := range schema.Fields {
		if msg := field.Check(values[field.Name]); msg != "" {
			errs[field.Name] = msg
		}
	}
	return errs
}

// Shape builds the submission payload: values are trimmed, amounts become
// decimals, and empty values are dropped.
func Shape[F any](schema Schema[F], values map[string]string) Payload {
	payload := Payload{}
	for _, field := range schema.Fields {
		v := strings.TrimSpace(values[field.Name])
		if v == "" {
			continue
		}
		if field.Kind == KindAmount {
			if d, err := core.ParseAmount(v); err == nil {
				payload[field.Name] = d
			}
			continue
		}
		payload[field.Name] = v
	}
	return payload
}

// Parse validates raw values and binds them in one step, for callers that
// do not keep form state between requests.
func Parse[F any](schema Schema[F], values map[string]string) (F, map[string]string, error) {
	var zero F
	if errs := ValidateValues(schema, values); len(errs) > 0 {
		return zero, errs, ErrInvalid
	}
	fields, err := schema.Bind(Shape(schema, values))
	if err != nil {
		return zero, map[string]string{SubmitErrorKey: err.Error()}, ErrInvalid
	}
	return fields, nil, nil
}
