package cli

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/form"
	"fintrack/internal/tui"

	"github.com/spf13/cobra"
)

func newBrowseCommand(opts *rootOptions) *cobra.Command {
	var pf periodFlags
	cmd := &cobra.Command{
		Use:       "browse <transactions|budgets|notes|assets>",
		Short:     "Browse, sort, search, edit and delete records in the terminal",
		Long:      "Browse records full screen. --month and --year narrow transactions and budgets to one period.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"transactions", "budgets", "notes", "assets"},
		RunE: func(cmd *cobra.Command, args []string) error {
			scoped := cmd.Flags().Changed("month") || cmd.Flags().Changed("year")
			var p core.Period
			if scoped {
				var err error
				if p, err = pf.period(); err != nil {
					return err
				}
			}

			return opts.withOwner(cmd.Context(), func(ctx context.Context, app *App, owner string) error {
				switch normalizeType(args[0]) {
				case "transaction":
					o := tui.Options[core.Transaction]{
						Title:   "Transactions",
						Owner:   owner,
						Columns: tui.TransactionColumns,
						Editor:  tui.NewEditor[core.Transaction, core.TransactionFields](app.Schemas.Transaction, app.Gateways.Transactions, form.TransactionValues, nil),
					}
					if scoped {
						o.Title += " " + p.MonthName() + " " + p.YearString()
						o.Scope = func(t core.Transaction) bool { return p.Contains(t.Date) }
					}
					return tui.Run(tui.NewBrowser[core.Transaction](ctx, app.Gateways.Transactions, o))
				case "budget":
					o := tui.Options[core.Budget]{Title: "Budgets", Owner: owner, Columns: tui.BudgetColumns}
					var period map[string]string
					if scoped {
						o.Title += " " + p.MonthName() + " " + p.YearString()
						o.Scope = func(b core.Budget) bool { return b.Month == p.MonthName() && b.Year == p.YearString() }
						period = map[string]string{"month": p.MonthName(), "year": p.YearString()}
					}
					o.Editor = tui.NewEditor[core.Budget, core.BudgetFields](app.Schemas.Budget, app.Gateways.Budgets, form.BudgetValues, period)
					return tui.Run(tui.NewBrowser[core.Budget](ctx, app.Gateways.Budgets, o))
				case "note":
					return tui.Run(tui.NewBrowser[core.Note](ctx, app.Gateways.Notes, tui.Options[core.Note]{
						Title:   "Notes",
						Owner:   owner,
						Columns: tui.NoteColumns,
						Editor:  tui.NewEditor[core.Note, core.NoteFields](app.Schemas.Note, app.Gateways.Notes, form.NoteValues, nil),
					}))
				case "asset":
					return tui.Run(tui.NewBrowser[core.Asset](ctx, app.Gateways.Assets, tui.Options[core.Asset]{
						Title:   "Assets",
						Owner:   owner,
						Columns: tui.AssetColumns,
						Editor:  tui.NewEditor[core.Asset, core.AssetFields](app.Schemas.Asset, app.Gateways.Assets, form.AssetValues, nil),
					}))
				}
				return form.ErrUnknownType(args[0])
			})
		},
	}
	pf.register(cmd)
	return cmd
}
