package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/core"

	"github.com/spf13/cobra"
)

type periodFlags struct {
	month string
	year  string
}

func (p *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.month, "month", "", "month name or number (default current month)")
	cmd.Flags().StringVar(&p.year, "year", "", "four-digit year (default current year)")
}

// period resolves the flags; both empty is the current period.
func (p periodFlags) period() (core.Period, error) {
	if strings.TrimSpace(p.month) == "" && strings.TrimSpace(p.year) == "" {
		return core.CurrentPeriod(), nil
	}
	return core.ParsePeriod(p.month, p.year)
}

func newReportCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print dashboard reports",
	}

	var budgetPeriod, methodPeriod periodFlags
	budget := &cobra.Command{
		Use:   "budget",
		Short: "Budget versus spending for a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := budgetPeriod.period()
			if err != nil {
				return err
			}
			return opts.withOwner(cmd.Context(), func(ctx context.Context, app *App, owner string) error {
				rows, err := app.Dashboard.BudgetComparison(ctx, owner, p).Unwrap()
				if err != nil {
					return err
				}
				total, err := app.Dashboard.BudgetTotal(ctx, owner, p).Unwrap()
				if err != nil {
					return err
				}
				fmt.Fprintln(opts.out, RenderTitle(fmt.Sprintf("BUDGET  %s %d", p.MonthName(), p.Year)))
				fmt.Fprint(opts.out, indent(RenderTable(budgetTable(rows))))
				fmt.Fprint(opts.out, totalLine("Total budget", total))
				return nil
			})
		},
	}
	budgetPeriod.register(budget)

	methods := &cobra.Command{
		Use:   "methods",
		Short: "Income and spending per payment method for a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := methodPeriod.period()
			if err != nil {
				return err
			}
			return opts.withOwner(cmd.Context(), func(ctx context.Context, app *App, owner string) error {
				rows, err := app.Dashboard.Methods(ctx, owner, p).Unwrap()
				if err != nil {
					return err
				}
				fmt.Fprintln(opts.out, RenderTitle(fmt.Sprintf("PAYMENT METHODS  %s %d", p.MonthName(), p.Year)))
				fmt.Fprint(opts.out, indent(RenderTable(methodTable(rows))))
				return nil
			})
		},
	}
	methodPeriod.register(methods)

	var year int
	var typ string
	yearly := &cobra.Command{
		Use:   "yearly",
		Short: "Monthly totals per category for a year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if year == 0 {
				year = core.CurrentPeriod().Year
			}
			if err := core.ValidateYear(strconv.Itoa(year)); err != nil {
				return err
			}
			t := core.TransactionType(typ)
			if !t.Valid() {
				return fmt.Errorf("%w: %q", core.ErrInvalidType, typ)
			}
			return opts.withOwner(cmd.Context(), func(ctx context.Context, app *App, owner string) error {
				series, err := app.Dashboard.Yearly(ctx, owner, year, t).Unwrap()
				if err != nil {
					return err
				}
				fmt.Fprintln(opts.out, RenderTitle(fmt.Sprintf("%s  %d", strings.ToUpper(string(t)), year)))
				fmt.Fprint(opts.out, indent(RenderTable(yearlyTable(series))))
				return nil
			})
		},
	}
	yearly.Flags().IntVar(&year, "year", 0, "year (default current year)")
	yearly.Flags().StringVar(&typ, "type", string(core.Expenditure), "Income or Expenditure")

	var balanceYear int
	monthly := &cobra.Command{
		Use:   "monthly",
		Short: "Income against spending for each month of a year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if balanceYear == 0 {
				balanceYear = core.CurrentPeriod().Year
			}
			if err := core.ValidateYear(strconv.Itoa(balanceYear)); err != nil {
				return err
			}
			return opts.withOwner(cmd.Context(), func(ctx context.Context, app *App, owner string) error {
				balance, err := app.Dashboard.Monthly(ctx, owner, balanceYear).Unwrap()
				if err != nil {
					return err
				}
				fmt.Fprintln(opts.out, RenderTitle(fmt.Sprintf("MONTHLY BALANCE  %d", balanceYear)))
				fmt.Fprint(opts.out, indent(RenderTable(balanceTable(balance))))
				return nil
			})
		},
	}
	monthly.Flags().IntVar(&balanceYear, "year", 0, "year (default current year)")

	assets := &cobra.Command{
		Use:   "assets",
		Short: "Assets and their total in the base currency",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withOwner(cmd.Context(), func(ctx context.Context, app *App, owner string) error {
				list, err := app.Gateways.Assets.List(ctx, owner).Unwrap()
				if err != nil {
					return err
				}
				total, err := app.Dashboard.AssetsTotal(ctx, owner).Unwrap()
				if err != nil {
					return err
				}
				fmt.Fprintln(opts.out, RenderTitle("ASSETS"))
				fmt.Fprint(opts.out, indent(RenderTable(assetTable(list))))
				fmt.Fprint(opts.out, totalLine("Total ("+string(core.AED)+")", total))
				return nil
			})
		},
	}

	cmd.AddCommand(budget, methods, yearly, monthly, assets)
	return cmd
}

// withOwner opens the app, signs in and runs fn as that user.
func (o *rootOptions) withOwner(ctx context.Context, fn func(ctx context.Context, app *App, owner string) error) (err error) {
	app, err := o.openApp(ctx, "")
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, app.Close())
	}()

	session, err := o.signIn(ctx, app)
	if err != nil {
		return err
	}
	return fn(ctx, app, session.UserID)
}
