package cli

import (
	"fmt"

	"github.com/terraincognita07/kombucha-eln/internal/config"
	"github.com/terraincognita07/kombucha-eln/internal/db"
	"github.com/terraincognita07/kombucha-eln/internal/logging"
)

// commandContext loads config, logger and store once per invocation.
type commandContext struct {
	configFlag *string

	cfg    *config.Config
	logger *logging.Logger
	store  *db.Store
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (ctx *commandContext) ensureConfig() (*config.Config, error) {
	if ctx.cfg != nil {
		return ctx.cfg, nil
	}
	path := ""
	if ctx.configFlag != nil {
		path = *ctx.configFlag
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	ctx.cfg = &cfg
	return ctx.cfg, nil
}

func (ctx *commandContext) ensureLogger() (*logging.Logger, error) {
	if ctx.logger != nil {
		return ctx.logger, nil
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging.Mode)
	if err != nil {
		return nil, err
	}
	ctx.logger = logger
	return logger, nil
}

// ensureStore opens the database, applying pending migrations.
func (ctx *commandContext) ensureStore() (*db.Store, error) {
	if ctx.store != nil {
		return ctx.store, nil
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	database, err := db.OpenSQLite(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	ctx.store = db.NewStore(database)
	return ctx.store, nil
}

func (ctx *commandContext) close() {
	if ctx.store != nil {
		_ = ctx.store.Close()
		ctx.store = nil
	}
	if ctx.logger != nil {
		ctx.logger.Sync()
	}
}
