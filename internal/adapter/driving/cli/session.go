package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
)

func (a *app) loginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the admin API",
		Long: `Sign in with an admin username and password. The password is read
without echo. On success the session is stored locally and reused by later
commands until 'detectpanel logout' or until the server rejects the token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			username, _ := cmd.Flags().GetString("username")

			if username == "" {
				answer, ok, err := a.term.Prompt(ctx, "Username:")
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("no username given")
				}
				username = strings.TrimSpace(answer)
			}
			password, err := a.term.ReadSecret("Password:")
			if err != nil {
				return err
			}

			a.console.SetLoginForm(model.LoginForm{Username: username, Password: password})
			if err := a.console.Login(ctx); err != nil {
				fmt.Fprintln(a.opts.Err, "Error: "+a.console.State().LoginError)
				return err
			}

			fmt.Fprintf(a.out(), "Logged in as %s.\n", username)
			return nil
		},
	}
	cmd.Flags().StringP("username", "u", "", "admin username (prompted when empty)")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.console.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out(), "Logged out.")
			return nil
		},
	}
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			w := a.out()
			fmt.Fprintf(w, "API:      %s\n", a.cfg.APIBase)

			s := a.console.State()
			if !s.Authenticated() {
				fmt.Fprintln(w, "Session:  not logged in")
				return nil
			}
			fmt.Fprintf(w, "Session:  logged in as %s\n", s.Session.Username)

			if exp, expired, ok := a.console.SessionExpiry(); ok {
				rel := humanize.RelTime(exp, a.opts.Clock.Now(), "ago", "from now")
				state := "expires"
				if expired {
					state = "expired"
				}
				fmt.Fprintf(w, "Token:    %s %s\n", state, rel)
			}
			if !a.cfg.HasSecretKey() {
				fmt.Fprintln(w, "Storage:  unencrypted (set DETECTPANEL_SECRET_KEY to encrypt)")
			}
			return nil
		},
	}
}
