// Package form implements the record form shared by the four entity kinds.
//
// A Schema declares the fields of one record type. A Form holds the editing
// state for one schema and moves between Closed, Create and Edit.
package form

import (
	"strings"

	"fintrack/internal/core"
)

// Kind tells renderers which input to show for a field.
type Kind string

const (
	KindText     Kind = "text"
	KindTextArea Kind = "textarea"
	KindDate     Kind = "date"
	KindSelect   Kind = "select"
	KindAmount   Kind = "amount"
)

// Validator returns an error message for an invalid value, or "".
type Validator func(value string) string

// Field describes one input.
type Field struct {
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Kind        Kind        `json:"kind"`
	Required    bool        `json:"required"`
	Options     []string    `json:"options,omitempty"`     // closed choice
	Suggestions []string    `json:"suggestions,omitempty"` // free text with hints
	Default     string      `json:"default,omitempty"`
	Validators  []Validator `json:"-"`

	defaultFn func() string
}

// Payload is the shaped submission: strings, decimal amounts, and the
// record id when editing.
type Payload map[string]any

// Schema is the declarative description of one record type.
type Schema[F any] struct {
	Type   string  `json:"type"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`

	// Bind converts a validated payload into the entity's field struct.
	Bind func(Payload) (F, error) `json:"-"`
}

// Defaults returns the initial values of a Create form.
func (s Schema[F]) Defaults() map[string]string {
	values := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		values[f.Name] = f.defaultValue()
	}
	return values
}

// Field looks up a field descriptor by name.
func (s Schema[F]) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Describe returns a copy of the schema with computed defaults filled in,
// ready to be serialised for clients.
func (s Schema[F]) Describe() Schema[F] {
	out := s
	out.Fields = make([]Field, len(s.Fields))
	for i, f := range s.Fields {
		f.Default = f.defaultValue()
		out.Fields[i] = f
	}
	return out
}

// WithSuggestions returns a copy of the schema whose named field suggests
// values instead of its built-in list. An empty list keeps the built-in one.
func (s Schema[F]) WithSuggestions(name string, values []string) Schema[F] {
	if len(values) == 0 {
		return s
	}
	out := s
	out.Fields = make([]Field, len(s.Fields))
	copy(out.Fields, s.Fields)
	for i := range out.Fields {
		if out.Fields[i].Name == name {
			out.Fields[i].Suggestions = append([]string(nil), values...)
		}
	}
	return out
}

func (f Field) defaultValue() string {
	if f.defaultFn != nil {
		return f.defaultFn()
	}
	return f.Default
}

// Check runs the required check and then the field's own validators.
// The first failing rule wins.
func (f Field) Check(value string) string {
	if f.Required && strings.TrimSpace(value) == "" {
		return f.Label + " is required"
	}
	if strings.TrimSpace(value) == "" {
		return ""
	}
	for _, v := range f.Validators {
		if msg := v(value); msg != "" {
			return msg
		}
	}
	return ""
}

// PositiveAmount is the shared amount rule: a number strictly above zero.
func PositiveAmount(value string) string {
	if _, err := core.ParseAmount(value); err != nil {
		return "Amount must be a positive number"
	}
	return ""
}

// OneOf accepts only the given options.
func OneOf(options ...string) Validator {
	return func(value string) string {
		for _, o := range options {
			if value == o {
				return ""
			}
		}
		return "Choose one of: " + strings.Join(options, ", ")
	}
}

// ValidDate accepts YYYY-MM-DD.
func ValidDate(value string) string {
	if _, err := core.ParseDate(value); err != nil {
		return "Date must be in YYYY-MM-DD format"
	}
	return ""
}

// ValidYear accepts a four digit year.
func ValidYear(value string) string {
	if err := core.ValidateYear(value); err != nil {
		return "Year must have four digits"
	}
	return ""
}
