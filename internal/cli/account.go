package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"fintrack/internal/auth"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// errAborted is returned when the user leaves a prompt.
var errAborted = errors.New("aborted")

func newSignUpCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.openApp(cmd.Context(), "")
			if err != nil {
				return err
			}
			defer app.Close()

			email := opts.accountEmail()
			var password, confirm string
			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Email").Value(&email),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
				huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&confirm),
			))
			if err := runPrompt(form); err != nil {
				return err
			}

			session, err := app.Auth.SignUpConfirmed(cmd.Context(), email, password, confirm)
			if err != nil {
				return errors.New(auth.Message(err))
			}
			fmt.Fprintf(opts.out, "Account created for %s\n", session.Email)
			return nil
		},
	}
}

func (o *rootOptions) accountEmail() string {
	if o.email != "" {
		return o.email
	}
	return os.Getenv("FINTRACK_EMAIL")
}

// signIn resolves the owner for local commands. Email and password come from
// --email, FINTRACK_EMAIL and FINTRACK_PASSWORD, with a prompt for whatever
// is missing.
func (o *rootOptions) signIn(ctx context.Context, app *App) (auth.Session, error) {
	email := o.accountEmail()
	password := os.Getenv("FINTRACK_PASSWORD")

	var fields []huh.Field
	if strings.TrimSpace(email) == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&email))
	}
	if password == "" {
		fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password))
	}
	if len(fields) > 0 {
		if err := runPrompt(huh.NewForm(huh.NewGroup(fields...))); err != nil {
			return auth.Session{}, err
		}
	}

	session, err := app.Auth.SignIn(ctx, email, password)
	if err != nil {
		return auth.Session{}, errors.New(auth.Message(err))
	}
	return session, nil
}

func runPrompt(form *huh.Form) error {
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errAborted
		}
		return err
	}
	return nil
}
