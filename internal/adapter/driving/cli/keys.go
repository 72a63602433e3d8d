package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
)

func (a *app) keysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keys",
		Aliases: []string{"key"},
		Short:   "Manage API keys (list, create, toggle, renew, delete, copy)",
		Long: `The 'keys' command group manages the API keys consumers use to call
the detection endpoint:
  - List keys with status, expiry and usage
  - Create keys that never expire, expire after N days or at a fixed date
  - Enable/disable, renew and delete keys
  - Copy a key's secret to the clipboard`,
	}
	cmd.AddCommand(
		a.keysListCommand(),
		a.keysExpiringCommand(),
		a.keysCreateCommand(),
		a.keysToggleCommand(),
		a.keysRenewCommand(),
		a.keysDeleteCommand(),
		a.keysCopyCommand(),
	)
	return cmd
}

func (a *app) keysListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			if status, _ := cmd.Flags().GetString("status"); status != "" {
				a.console.SetCredentialFilter(status)
				if err := a.console.RefreshCredentials(cmd.Context()); err != nil {
					return fmt.Errorf("failed to list keys: %w", err)
				}
			}
			renderCredentials(a.out(), a.console.State().Credentials, a.opts.Clock.Now())
			return nil
		},
	}
	cmd.Flags().String("status", "", "only keys with this status: active, inactive, expiring, expired, never")
	return cmd
}

func (a *app) keysExpiringCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "List API keys expiring soon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			days, _ := cmd.Flags().GetInt("days")
			if days <= 0 {
				return fmt.Errorf("invalid --days %d: must be positive", days)
			}
			creds, err := a.console.ListExpiringCredentials(cmd.Context(), days)
			if err != nil {
				return fmt.Errorf("failed to list expiring keys: %w", err)
			}
			renderCredentials(a.out(), creds, a.opts.Clock.Now())
			return nil
		},
	}
	cmd.Flags().Int("days", 7, "look-ahead window in days")
	return cmd
}

func (a *app) keysCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an API key",
		Long: `Create an API key. --expiration picks the policy:
  never     the key does not expire (default)
  duration  the key expires --days days from now
  date      the key expires at --expires-at (e.g. 2026-12-31 or 2026-12-31T18:00)
A --daily-limit of 0 or a non-number means unlimited.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			flags := cmd.Flags()
			draft := model.NewCredentialDraft()
			draft.Name, _ = flags.GetString("name")
			draft.ExpirationType, _ = flags.GetString("expiration")
			draft.DurationDays, _ = flags.GetString("days")
			draft.ExpiresAt, _ = flags.GetString("expires-at")
			draft.DailyLimit, _ = flags.GetString("daily-limit")

			a.console.OpenCreateCredential()
			a.console.SetCredentialDraft(draft)

			created, err := a.console.CreateCredential(cmd.Context())
			if err != nil {
				return err
			}
			renderCredentialDetail(a.out(), created)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.String("name", "", "key name")
	flags.String("expiration", string(model.ExpirationKindNever), "expiration policy: never, duration or date")
	flags.String("days", "30", "days until expiry for --expiration duration")
	flags.String("expires-at", "", "expiry date for --expiration date")
	flags.String("daily-limit", "0", "maximum requests per day, 0 for unlimited")
	return cmd
}

func (a *app) keysToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Enable or disable an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.authedID(args[0])
			if err != nil {
				return err
			}
			return a.console.ToggleCredential(cmd.Context(), id)
		},
	}
}

func (a *app) keysRenewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "renew ID",
		Short: "Extend an API key by a number of days",
		Long: `Renew an API key so it expires the given number of days from now.
The key's policy becomes 'duration' even if it never expired before. The
number of days is prompted for unless --days is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.authedID(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("days") {
				days, _ := cmd.Flags().GetString("days")
				a.term.Answer(days)
			}
			return a.console.RenewCredential(cmd.Context(), id)
		},
	}
	cmd.Flags().String("days", "", "days to extend by (prompted when omitted)")
	return cmd
}

func (a *app) keysDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.authedID(args[0])
			if err != nil {
				return err
			}
			return a.console.DeleteCredential(cmd.Context(), id)
		},
	}
}

func (a *app) keysCopyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "copy ID",
		Short: "Copy an API key's secret to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.authedID(args[0])
			if err != nil {
				return err
			}
			return a.console.CopyKey(cmd.Context(), id)
		},
	}
}

// authedID checks the session and parses an ID argument.
func (a *app) authedID(raw string) (int64, error) {
	if err := a.requireAuth(); err != nil {
		return 0, err
	}
	return parseID(raw)
}
