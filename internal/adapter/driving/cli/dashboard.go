package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/detectpanel/internal/adapter/driving/report"
	"github.com/ericfisherdev/detectpanel/internal/application"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

func (a *app) dashboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show statistics, API keys and models",
		Long: `Show the dashboard loaded at startup. With --watch the dashboard is
reloaded every --interval until interrupted. With --html a standalone
HTML snapshot is written instead; key secrets are never included.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			watch, _ := cmd.Flags().GetBool("watch")
			interval, _ := cmd.Flags().GetDuration("interval")
			if path, _ := cmd.Flags().GetString("html"); path != "" {
				return a.writeReport(path)
			}

			a.drawDashboard(false)
			if !watch {
				return nil
			}
			if interval <= 0 {
				return fmt.Errorf("invalid --interval %s: must be positive", interval)
			}

			r := application.NewRefresher(a.console, interval, a.opts.Clock, a.logger)
			r.OnReload(func(context.Context) { a.drawDashboard(true) })
			r.Start(cmd.Context())
			return nil
		},
	}
	cmd.Flags().BoolP("watch", "w", false, "keep reloading until interrupted")
	cmd.Flags().Duration("interval", 30*time.Second, "reload interval for --watch")
	cmd.Flags().String("html", "", "write an HTML snapshot to this file instead of printing")
	cmd.MarkFlagsMutuallyExclusive("watch", "html")
	return cmd
}

func (a *app) drawDashboard(clear bool) {
	s := a.console.State()
	if clear {
		fmt.Fprint(a.out(), clearScreen)
	}
	if !s.Authenticated() {
		fmt.Fprintln(a.out(), "Session ended; run 'detectpanel login'.")
		return
	}
	renderDashboard(a.out(), s, a.opts.Clock.Now())
}

func (a *app) writeReport(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.WriteDashboard(f, a.console.State(), a.opts.Clock.Now()); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(a.opts.Err, "Saved %s.\n", path)
	return nil
}
