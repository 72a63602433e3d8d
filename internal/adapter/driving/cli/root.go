// Package cli is the command-line driving adapter. Every command restores
// the stored session and loads the dashboard before doing its own work, the
// same way the web console does on page load.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ericfisherdev/detectpanel/internal/application"
	"github.com/ericfisherdev/detectpanel/internal/config"
	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
	"github.com/ericfisherdev/detectpanel/internal/logging"
)

// Setup builds the console for one command run from the loaded
// configuration. The returned closer releases whatever Setup opened.
type Setup func(ctx context.Context, cfg *config.Config, ui driven.Interaction, logger *slog.Logger) (*application.Console, io.Closer, error)

// Options are the process-level dependencies of the CLI.
type Options struct {
	In    io.Reader
	Out   io.Writer
	Err   io.Writer
	Setup Setup
	// Clock is used for relative times in tables. Nil means the real clock.
	Clock clockwork.Clock
}

var errNotLoggedIn = errors.New("not logged in; run 'detectpanel login' first")

// app carries the per-run state shared by all commands.
type app struct {
	opts    Options
	v       *viper.Viper
	cfg     *config.Config
	logger  *slog.Logger
	term    *Terminal
	console *application.Console
	closer  io.Closer
}

// NewRootCommand builds the detectpanel command tree.
func NewRootCommand(opts Options) *cobra.Command {
	root, _ := newRoot(opts)
	return root
}

func newRoot(opts Options) (*cobra.Command, *app) {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	a := &app{opts: opts, v: viper.New()}

	root := &cobra.Command{
		Use:   "detectpanel",
		Short: "Administer a detection service from the terminal",
		Long: `detectpanel signs in to a detection service's admin API and manages
its API keys and detector models:
  - Show dashboard statistics, optionally refreshing on an interval
  - Create, renew, enable/disable and delete API keys
  - Upload, activate, download and delete models
  - Run a test detection with any API key`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.teardown()
		},
	}
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	flags := root.PersistentFlags()
	flags.String("config", "", "path to a YAML config file")
	flags.String("api-base", "", "detection service base URL (default http://localhost:8000)")
	flags.String("db-path", "", "session database path (default in the user config directory)")
	flags.String("http-timeout", "", "per-request timeout, e.g. 30s (default none)")
	flags.Bool("http-cache", true, "revalidate GET responses with ETags")
	flags.String("log-level", "", "log level: debug, info, warn, error (default warn)")
	flags.String("log-format", "", "log format: text or json (default text)")
	flags.BoolP("yes", "y", false, "answer yes to confirmations")

	for key, flag := range map[string]string{
		config.KeyConfigFile:  "config",
		config.KeyAPIBase:     "api-base",
		config.KeyDBPath:      "db-path",
		config.KeyHTTPTimeout: "http-timeout",
		config.KeyHTTPCache:   "http-cache",
		config.KeyLogLevel:    "log-level",
		config.KeyLogFormat:   "log-format",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.statusCommand(),
		a.dashboardCommand(),
		a.keysCommand(),
		a.modelsCommand(),
		a.logsCommand(),
		a.detectCommand(),
		a.pingCommand(),
	)
	return root, a
}

// setup loads configuration, starts logging, builds the console and
// restores the session. It runs before every command.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.Init(cfg.LogLevel, cfg.LogFormat, a.opts.Err)

	ctx := logging.WithCorrelationID(cmd.Context(), logging.NewCorrelationID())
	cmd.SetContext(ctx)

	a.term = NewTerminal(a.opts.In, a.opts.Out, a.opts.Err)
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		a.term.AssumeYes()
	}

	console, closer, err := a.opts.Setup(ctx, cfg, a.term, a.logger)
	if err != nil {
		return err
	}
	a.console, a.closer = console, closer

	a.console.Init(ctx)
	return nil
}

func (a *app) teardown() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

// requireAuth fails when Init found no stored session.
func (a *app) requireAuth() error {
	if !a.console.State().Authenticated() {
		return errNotLoggedIn
	}
	return nil
}

func (a *app) out() io.Writer {
	return a.opts.Out
}

// Execute runs the command tree and returns the process exit status.
// Outcomes the console already reported as notices are not printed again.
func Execute(ctx context.Context, opts Options, args []string) int {
	root, a := newRoot(opts)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when RunE fails.
	if cerr := a.teardown(); cerr != nil && err == nil {
		err = cerr
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, application.ErrCancelled):
		fmt.Fprintln(opts.Err, "Cancelled.")
		return 0
	case errors.Is(err, application.ErrActionFailed),
		errors.Is(err, application.ErrValidation),
		errors.Is(err, application.ErrNotAuthenticated):
		return 1
	default:
		fmt.Fprintln(opts.Err, "Error: "+err.Error())
		return 1
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q: must be a positive integer", raw)
	}
	return id, nil
}
