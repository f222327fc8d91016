package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/platform/generationapi"
)

// errNoAccounts is returned by the auth commands when no backend is configured.
var errNoAccounts = errors.New("no generation backend configured for accounts")

func newAuthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage your account and login session",
	}

	cmd.AddCommand(newAuthLoginCmd(app, "register", "Create an account and log in"))
	cmd.AddCommand(newAuthLoginCmd(app, "login", "Log in to an existing account"))
	cmd.AddCommand(newAuthLogoutCmd(app))
	cmd.AddCommand(newAuthStatusCmd(app))

	return cmd
}

func newAuthLoginCmd(app *App, use, short string) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  short + ". The password is read from standard input when --password is not given.",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			if app.accounts == nil {
				return errNoAccounts
			}
			if app.sessions == nil {
				return errors.New("no session file configured")
			}
			if strings.TrimSpace(email) == "" {
				return domain.NewValidationError("email", "is required", domain.ErrEmptyField)
			}
			if password == "" {
				var err error
				if password, err = readLine(app, "Password: "); err != nil {
					return err
				}
			}

			login := app.accounts.Login
			if use == "register" {
				login = app.accounts.Register
			}
			creds, err := login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := app.sessions.Save(creds); err != nil {
				return err
			}

			fmt.Fprintf(app.out, "Logged in as %s (session valid until %s)\n",
				creds.UserID, creds.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")

	return cmd
}

func newAuthLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored login session",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(_ *cobra.Command, _ []string) error {
			if app.sessions == nil {
				return nil
			}
			if err := app.sessions.Remove(); err != nil {
				return err
			}
			fmt.Fprintln(app.out, "Logged out")
			return nil
		}),
	}
}

func newAuthStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is logged in",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(_ *cobra.Command, _ []string) error {
			var (
				creds generationapi.Credentials
				err   = ErrNotLoggedIn
			)
			if app.sessions != nil {
				creds, err = app.sessions.Load()
			}
			switch {
			case err == nil:
				fmt.Fprintf(app.out, "Logged in as %s until %s\n",
					creds.UserID, creds.ExpiresAt.Local().Format("2006-01-02 15:04"))
			case errors.Is(err, ErrNotLoggedIn) && app.localSession:
				fmt.Fprintf(app.out, "Not logged in; using local user %q\n", LocalUserID)
			case errors.Is(err, ErrNotLoggedIn):
				fmt.Fprintln(app.out, "Not logged in")
			default:
				return err
			}
			return nil
		}),
	}
}

// readLine prompts on stderr and reads one line from the app's input. The
// shell reads its commands through the same reader.
func readLine(app *App, prompt string) (string, error) {
	fmt.Fprint(app.errOut, prompt)
	line, err := app.lines.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return line, nil
}
