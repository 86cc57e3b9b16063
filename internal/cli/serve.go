package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/kombucha-eln/internal/api"
	"github.com/terraincognita07/kombucha-eln/internal/config"
	"github.com/terraincognita07/kombucha-eln/internal/db"
	"github.com/terraincognita07/kombucha-eln/internal/elabftw"
	"github.com/terraincognita07/kombucha-eln/internal/logging"
	"github.com/terraincognita07/kombucha-eln/internal/metrics"
	"github.com/terraincognita07/kombucha-eln/internal/report"
)

const (
	minSecretKeyLength = 32
	shutdownTimeout    = 10 * time.Second
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if err := checkSecretKey(*cfg); err != nil {
				if cfg.Logging.Mode == logging.ModeProduction {
					return err
				}
				logger.Warn("insecure secret key, do not use this configuration in production", "reason", err.Error())
			}
			time.Local = cfg.Location()

			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			app, err := newServer(*cfg, logger, store)
			if err != nil {
				return err
			}

			logger.Info("Kombucha ELN listening", "port", cfg.Server.Port, "db", cfg.Database.Path, "tz", cfg.Location().String())
			return runServer(cmd.Context(), app, ":"+cfg.Server.Port, logger)
		},
	}
}

func checkSecretKey(cfg config.Config) error {
	if cfg.UsesDefaultSecret() {
		return errors.New("server.secret_key uses the insecure placeholder")
	}
	if len(cfg.Server.SecretKey) < minSecretKeyLength {
		return fmt.Errorf("server.secret_key must be at least %d characters", minSecretKeyLength)
	}
	return nil
}

func newServer(cfg config.Config, logger *logging.Logger, store *db.Store) (*fiber.App, error) {
	workflow := metrics.NewWorkflow()
	remote := elabftw.New(logger, elabftw.Config{
		BaseURL:    cfg.Elab.BaseURL,
		Timeout:    cfg.ElabTimeout(),
		CategoryID: cfg.Elab.CategoryID,
	})

	handler, err := api.NewHandler(cfg.Server.SecretKey, cfg.Server.CookieSecure, api.Dependencies{
		Store:          store,
		Logger:         logger,
		Metrics:        workflow,
		MetricsHandler: workflow.Handler(),
		Remote:         remote,
		Render:         report.Render,
		SyncTags:       cfg.Elab.Tags,
		Location:       cfg.Location(),
	})
	if err != nil {
		return nil, fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Kombucha ELN",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(api.RequestID())
	app.Use(api.RequestLogger(logger))
	app.Use(compress.New())
	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app, nil
}

// runServer serves until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func runServer(ctx context.Context, app *fiber.App, addr string, logger *logging.Logger) error {
	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("server exited: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return <-listenErr
}
