package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for minimal images

	"github.com/ericfisherdev/detectpanel/internal/adapter/driven/adminapi"
	"github.com/ericfisherdev/detectpanel/internal/adapter/driven/clipboard"
	sqliteadapter "github.com/ericfisherdev/detectpanel/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/detectpanel/internal/adapter/driving/cli"
	"github.com/ericfisherdev/detectpanel/internal/application"
	"github.com/ericfisherdev/detectpanel/internal/config"
	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
)

func main() {
	// Setup signal-based context (SIGINT, SIGTERM) so --watch and
	// in-flight requests stop cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.Options{
		In:    os.Stdin,
		Out:   os.Stdout,
		Err:   os.Stderr,
		Setup: setup,
	}, os.Args[1:])
	stop()
	os.Exit(code)
}

// setup wires the adapters for one command run. Configuration and logging
// are already loaded by the CLI.
func setup(ctx context.Context, cfg *config.Config, ui driven.Interaction, logger *slog.Logger) (*application.Console, io.Closer, error) {
	// 1. Open the session database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	logger.DebugContext(ctx, "database opened", "path", db.Path())

	// 2. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	// 3. Wire adapters.
	sessionStore := sqliteadapter.NewSessionRepo(db, cfg.SecretKey, logger)

	api, err := adminapi.NewClient(cfg.APIBase, adminapi.Options{
		Timeout: cfg.HTTPTimeout,
		Cache:   cfg.HTTPCache,
		Logger:  logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	// 4. Create the console.
	console := application.NewConsole(api, sessionStore, ui, clipboard.System{}, logger)

	logger.DebugContext(ctx, "detectpanel ready",
		"api_base", cfg.APIBase,
		"http_cache", cfg.HTTPCache,
		"encrypted_session", cfg.HasSecretKey(),
	)
	return console, db, nil
}
