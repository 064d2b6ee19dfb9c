package tui

import (
	"context"
	"errors"

	"fintrack/internal/core"
	"fintrack/internal/form"
)

// Gateway is the write side of a record gateway.
type Gateway[T core.Record, F any] interface {
	Create(ctx context.Context, fields F, owner string) core.Result[T]
	Update(ctx context.Context, id string, fields F, owner string) core.Result[T]
}

// submitFunc sends form values through the record form. Field errors are
// returned when the values do not pass the schema.
type submitFunc[T core.Record] func(ctx context.Context, values map[string]string, owner string) (core.Result[T], map[string]string)

// Editor opens the add and edit forms of one record type for a Browser.
type Editor[T core.Record] struct {
	title  string
	fields []form.Field
	open   func(rec *T) (map[string]string, submitFunc[T])
}

// NewEditor binds schema to gw. seed flattens a stored record into field
// values for editing. overrides replace schema defaults on create, such as
// the budget period on screen.
func NewEditor[T core.Record, F any](schema form.Schema[F], gw Gateway[T, F], seed func(T) map[string]string, overrides map[string]string) *Editor[T] {
	return &Editor[T]{
		title:  schema.Title,
		fields: schema.Fields,
		open: func(rec *T) (map[string]string, submitFunc[T]) {
			f := form.New(schema)
			if rec == nil {
				f.OpenCreate(overrides)
			} else {
				f.OpenEdit((*rec).RecordID(), seed(*rec))
			}
			return f.Values(), func(ctx context.Context, values map[string]string, owner string) (core.Result[T], map[string]string) {
				return submitForm(ctx, f, gw, values, owner)
			}
		},
	}
}

func submitForm[T core.Record, F any](ctx context.Context, f *form.Form[F], gw Gateway[T, F], values map[string]string, owner string) (core.Result[T], map[string]string) {
	for name, v := range values {
		if err := f.Set(name, v); err != nil {
			return core.Fail[T](err), nil
		}
	}

	var res core.Result[T]
	err := f.Submit(ctx, func(ctx context.Context, s form.Submission[F]) error {
		if s.ID != "" {
			res = gw.Update(ctx, s.ID, s.Fields, owner)
		} else {
			res = gw.Create(ctx, s.Fields, owner)
		}
		if !res.Success {
			return errors.New(res.Error)
		}
		return nil
	})
	switch {
	case errors.Is(err, form.ErrInvalid):
		return core.Result[T]{Error: err.Error()}, f.Errors()
	case err != nil && res.Error == "":
		return core.Result[T]{Error: form.SubmitErrorMessage}, nil
	}
	return res, nil
}
