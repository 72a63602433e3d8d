package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
)

func (a *app) logsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent detection requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			flags := cmd.Flags()
			var q model.RequestLogQuery
			q.Skip, _ = flags.GetInt("skip")
			q.Limit, _ = flags.GetInt("limit")
			q.CredentialID, _ = flags.GetInt64("key")

			logs, err := a.console.RequestLogs(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("failed to load request logs: %w", err)
			}
			renderLogs(a.out(), logs)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.Int("skip", 0, "number of entries to skip")
	flags.Int("limit", 50, "maximum number of entries")
	flags.Int64("key", 0, "only requests made with this API key ID")
	return cmd
}

func (a *app) detectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect --key ID FILE",
		Short: "Run a test detection with an API key",
		Long: `Send an image to the detection endpoint authenticated as the given
API key, exactly as a consumer would, and print the JSON result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			keyID, _ := cmd.Flags().GetInt64("key")
			output, _ := cmd.Flags().GetString("output")

			draft := model.DetectionDraft{CredentialID: keyID}
			if args[0] != "" {
				if _, err := os.Stat(args[0]); err != nil {
					return fmt.Errorf("image file: %w", err)
				}
				f := model.LocalFile(args[0])
				draft.File = &f
			}
			a.console.SetDetectionDraft(draft)

			result, err := a.console.TestDetection(cmd.Context())
			if err != nil {
				return err
			}

			pretty, err := json.MarshalIndent(json.RawMessage(result), "", "  ")
			if err != nil {
				return fmt.Errorf("format result: %w", err)
			}
			pretty = append(pretty, '\n')
			if output == "" {
				_, err = a.out().Write(pretty)
				return err
			}
			if err := os.WriteFile(output, pretty, 0o644); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
			fmt.Fprintf(a.opts.Err, "Saved %s.\n", output)
			return nil
		},
	}
	cmd.Flags().Int64("key", 0, "API key ID to authenticate with")
	cmd.Flags().StringP("output", "o", "", "write the JSON result to a file")
	return cmd
}
