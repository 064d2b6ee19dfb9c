package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/form"
	"fintrack/internal/services"
	"fintrack/internal/tui"

	"github.com/spf13/cobra"
)

func newAddCommand(opts *rootOptions) *cobra.Command {
	var set map[string]string
	cmd := &cobra.Command{
		Use:       "add <transaction|budget|note|asset>",
		Short:     "Create a record",
		Long:      "Create a record through the record form. Without --set the form is interactive.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: recordTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := opts.openApp(ctx, "")
			if err != nil {
				return err
			}
			defer app.Close()

			session, err := opts.signIn(ctx, app)
			if err != nil {
				return err
			}

			// --set skips the prompt, for scripts.
			var fill filler = promptFiller{}
			if len(set) > 0 {
				fill = valuesFiller(set)
			}

			owner := session.UserID
			switch normalizeType(args[0]) {
			case "transaction":
				return addRecord(ctx, opts.out, app.Schemas.Transaction, app.Gateways.Transactions, owner, fill)
			case "budget":
				return addRecord(ctx, opts.out, app.Schemas.Budget, app.Gateways.Budgets, owner, fill)
			case "note":
				return addRecord(ctx, opts.out, app.Schemas.Note, app.Gateways.Notes, owner, fill)
			case "asset":
				return addRecord(ctx, opts.out, app.Schemas.Asset, app.Gateways.Assets, owner, fill)
			}
			return form.ErrUnknownType(args[0])
		},
	}
	cmd.Flags().StringToStringVar(&set, "set", nil, "field values, e.g. --set name=Rent,amount=1200")
	return cmd
}

var recordTypes = []string{"transaction", "budget", "note", "asset"}

// normalizeType accepts singular and plural record type names.
func normalizeType(s string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
}

// filler supplies field values to an open form.
type filler interface {
	fill(fields []form.Field, values map[string]string) (map[string]string, error)
}

type valuesFiller map[string]string

func (v valuesFiller) fill(_ []form.Field, values map[string]string) (map[string]string, error) {
	for k, val := range v {
		values[k] = val
	}
	return values, nil
}

type promptFiller struct{}

func (promptFiller) fill(fields []form.Field, values map[string]string) (map[string]string, error) {
	f, collect := tui.NewFieldsForm(fields, values)
	if err := runPrompt(f); err != nil {
		return nil, err
	}
	for name, v := range collect() {
		values[name] = v
	}
	return values, nil
}

// addRecord opens a create form for schema, fills it and submits it through
// the gateway.
func addRecord[T core.Record, F services.Validator](ctx context.Context, out io.Writer, schema form.Schema[F], gw *services.Gateway[T, F], owner string, fill filler) error {
	f := form.New(schema)
	f.OpenCreate(nil)

	values, err := fill.fill(schema.Fields, f.Values())
	if err != nil {
		return err
	}
	for name, v := range values {
		if err := f.Set(name, v); err != nil {
			return err
		}
	}

	var created T
	err = f.Submit(ctx, func(ctx context.Context, s form.Submission[F]) error {
		res := gw.Create(ctx, s.Fields, owner)
		if !res.Success {
			return errors.New(res.Error)
		}
		created = res.Data
		return nil
	})
	if errors.Is(err, form.ErrInvalid) {
		return fieldErrors(f.Errors())
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Created %s %s\n", schema.Type, created.RecordID())
	return nil
}

// fieldErrors joins a form error map into one error, in field order.
func fieldErrors(errs map[string]string) error {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("%s: %s", name, errs[name])
	}
	return fmt.Errorf("invalid record:\n  %s", strings.Join(lines, "\n  "))
}
