package tui

import (
	"errors"

	"fintrack/internal/form"

	"github.com/charmbracelet/huh"
)

// NewFieldsForm builds a one-group huh form over the schema fields, seeded
// with values. Field rules run as huh validators. collect returns the
// answers as they stand.
func NewFieldsForm(fields []form.Field, values map[string]string) (f *huh.Form, collect func() map[string]string) {
	answers := make(map[string]*string, len(fields))
	group := make([]huh.Field, 0, len(fields))
	for _, field := range fields {
		v := values[field.Name]
		answers[field.Name] = &v
		validate := func(s string) error {
			if msg := field.Check(s); msg != "" {
				return errors.New(msg)
			}
			return nil
		}

		switch field.Kind {
		case form.KindSelect:
			group = append(group, huh.NewSelect[string]().
				Title(field.Label).
				Options(huh.NewOptions(field.Options...)...).
				Value(&v))
		case form.KindTextArea:
			group = append(group, huh.NewText().Title(field.Label).Value(&v).Validate(validate))
		default:
			in := huh.NewInput().Title(field.Label).Value(&v).Validate(validate)
			if len(field.Suggestions) > 0 {
				in = in.Suggestions(field.Suggestions)
			}
			group = append(group, in)
		}
	}

	collect = func() map[string]string {
		out := make(map[string]string, len(answers))
		for name, v := range answers {
			out[name] = *v
		}
		return out
	}
	return huh.NewForm(huh.NewGroup(group...)), collect
}
