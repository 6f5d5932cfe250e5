package reload

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flemzord/chatlist/internal/config"
	"github.com/flemzord/chatlist/internal/core"
)

// Handler re-reads the configuration file and hands the new module
// settings to every core.Reloader.
type Handler struct {
	app        *core.App
	logger     *slog.Logger
	dataDir    string
	configPath string

	// OnConfig, when set, runs with every validated configuration before
	// modules are reloaded. The application uses it to apply log.level.
	OnConfig func(*config.Config)
}

// NewHandler creates a reload handler for the configuration at configPath.
func NewHandler(app *core.App, logger *slog.Logger, dataDir, configPath string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		app:        app,
		logger:     logger,
		dataDir:    dataDir,
		configPath: configPath,
	}
}

// Reload loads the configuration from disk, validates it and reloads
// modules. The running modules are left untouched when the file is invalid.
func (h *Handler) Reload(ctx context.Context) error {
	cfg, err := config.Load(h.configPath)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return h.Apply(ctx, cfg)
}

// Apply reloads modules from an already validated configuration.
func (h *Handler) Apply(ctx context.Context, cfg *config.Config) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("reload: context cancelled: %w", err)
	}
	if h.OnConfig != nil {
		h.OnConfig(cfg)
	}

	appCtx := core.NewAppContext(h.logger, h.dataDir).
		WithConfigPath(h.configPath).
		WithModuleConfigs(cfg.Modules)

	if err := h.app.ReloadModules(appCtx); err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	h.logger.Info("configuration reloaded", "path", h.configPath)
	return nil
}
