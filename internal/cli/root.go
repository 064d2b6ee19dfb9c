package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"fintrack/internal/config"
	"fintrack/internal/log"

	"github.com/spf13/cobra"
)

// rootOptions carries the persistent flags and what PersistentPreRunE
// derives from them.
type rootOptions struct {
	configPath string
	email      string

	cfg    *config.Config
	logger *log.Logger
	out    io.Writer

	// openApp builds the App for a command; tests replace it.
	openApp func(ctx context.Context, instanceID string) (*App, error)
}

// NewRootCommand builds the fintrack command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{out: os.Stdout}
	opts.openApp = func(ctx context.Context, instanceID string) (*App, error) {
		return NewApp(ctx, opts.cfg, opts.logger, instanceID)
	}
	return newRootCommand(opts)
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "fintrack",
		Short:         "Personal finance tracker",
		Long:          "Track transactions, monthly budgets, notes and assets, over an HTTP API or from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			LoadEnvFile()
			cfg, err := LoadAndValidateConfig(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = SetupLogger(cfg)
			opts.out = cmd.OutOrStdout()
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "TOML configuration file (default $CONFIG_FILE)")
	root.PersistentFlags().StringVar(&opts.email, "email", "", "account email for local commands (default $FINTRACK_EMAIL)")

	root.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newSignUpCommand(opts),
		newAddCommand(opts),
		newReportCommand(opts),
		newBrowseCommand(opts),
	)
	return root
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
