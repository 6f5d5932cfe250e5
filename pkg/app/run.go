// Package app provides the shared entry point for the chatlist commands:
// configuration loading, logging and tracing setup, module lifecycle and the
// signal/reload loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/flemzord/chatlist/internal/config"
	"github.com/flemzord/chatlist/internal/conversation"
	"github.com/flemzord/chatlist/internal/core"
	"github.com/flemzord/chatlist/internal/gateway"
	"github.com/flemzord/chatlist/internal/redact"
	"github.com/flemzord/chatlist/internal/reload"
)

// RunParams configures the application.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, config.ResolvePath is used.
	ConfigPath string

	// Version is injected at build time via ldflags.
	Version string

	// DataDir overrides data_dir from the configuration and the default.
	DataDir string

	// LogLevel overrides log.level from the configuration.
	LogLevel string

	// LogOutput receives log lines. Defaults to stderr.
	LogOutput io.Writer

	// Skip lists module IDs that are configured but must not be loaded,
	// e.g. the gateway when the process serves MCP on stdio.
	Skip []string

	// WatchInterval is the config file poll interval. Zero means the
	// watcher default.
	WatchInterval time.Duration
}

// Runtime is a loaded, not yet started application.
type Runtime struct {
	App        *core.App
	Context    *core.AppContext
	Config     *config.Config
	ConfigPath string
	DataDir    string
	Logger     *slog.Logger

	level         *slog.LevelVar
	levelOverride bool
	redactor      *redact.Redactor
	stopTracing   func(context.Context) error
}

// Load resolves, reads and validates the configuration, sets up logging and
// tracing, then loads every configured module.
func Load(ctx context.Context, params RunParams) (*Runtime, error) {
	cfgPath, err := config.ResolvePath(params.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logCfg := cfg.Log
	if params.LogLevel != "" {
		logCfg.Level = params.LogLevel
	}
	out := params.LogOutput
	if out == nil {
		out = os.Stderr
	}
	redactor := redact.New()
	redactor.SetLiterals(redact.Secrets(cfg.Modules))
	logger, level, err := NewLogger(out, logCfg, redactor)
	if err != nil {
		return nil, err
	}

	stopTracing, err := setupTracing(ctx, cfg.Telemetry, params.Version)
	if err != nil {
		return nil, err
	}

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	appCtx := core.NewAppContext(logger, dataDir).
		WithConfigPath(cfgPath).
		WithModuleConfigs(cfg.Modules)

	application := core.NewApp(appCtx)
	ids := slices.DeleteFunc(config.Resolve(cfg), func(id string) bool {
		return slices.Contains(params.Skip, id)
	})
	if err := application.LoadModules(ids); err != nil {
		_ = stopTracing(ctx)
		return nil, err
	}

	return &Runtime{
		App:           application,
		Context:       appCtx,
		Config:        cfg,
		ConfigPath:    cfgPath,
		DataDir:       dataDir,
		Logger:        logger,
		level:         level,
		levelOverride: params.LogLevel != "",
		redactor:      redactor,
		stopTracing:   stopTracing,
	}, nil
}

// Manager returns the conversation manager, if the conversation.lists
// module is loaded.
func (rt *Runtime) Manager() (*conversation.Manager, bool) {
	return core.ServiceAs[*conversation.Manager](rt.Context, conversation.ServiceName)
}

// ReloadHandler builds the reload handler and registers it for the
// gateway. It must be called before Start.
func (rt *Runtime) ReloadHandler() *reload.Handler {
	h := reload.NewHandler(rt.App, rt.Logger, rt.DataDir, rt.ConfigPath)
	h.OnConfig = rt.applyConfig
	rt.Context.RegisterService(gateway.ReloadServiceName, h)
	return h
}

// applyConfig picks up the secrets and log level of a reloaded
// configuration.
func (rt *Runtime) applyConfig(cfg *config.Config) {
	rt.redactor.SetLiterals(redact.Secrets(cfg.Modules))
	if rt.levelOverride {
		return
	}
	lvl, err := ParseLevel(cfg.Log.Level)
	if err != nil {
		rt.Logger.Warn("ignoring log level", "error", err)
		return
	}
	if lvl != rt.level.Level() {
		rt.Logger.Info("log level changed", "level", lvl.String())
		rt.level.Set(lvl)
	}
}

// Shutdown stops every started module and flushes traces.
func (rt *Runtime) Shutdown(ctx context.Context) error {
	err := rt.App.Stop(ctx)
	if terr := rt.stopTracing(ctx); terr != nil {
		err = errors.Join(err, fmt.Errorf("app: flush traces: %w", terr))
	}
	return err
}

// Run loads and starts the application and blocks until ctx is done or a
// shutdown signal arrives. SIGHUP, and changes to the configuration file or
// the .env next to it, trigger a live reload.
func Run(ctx context.Context, params RunParams) error {
	rt, err := Load(ctx, params)
	if err != nil {
		return err
	}
	handler := rt.ReloadHandler()

	if err := rt.App.Start(); err != nil {
		_ = rt.stopTracing(ctx)
		return err
	}
	rt.Logger.Info("chatlist started",
		"version", params.Version,
		"config", rt.ConfigPath,
		"data_dir", rt.DataDir,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	watcher := reload.NewWatcher(params.WatchInterval,
		rt.ConfigPath,
		filepath.Join(filepath.Dir(rt.ConfigPath), ".env"),
	)
	events := watcher.Watch(watchCtx)

	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				rt.Logger.Info("SIGHUP received, reloading configuration")
				if err := handler.Reload(watchCtx); err != nil {
					rt.Logger.Error("reload failed", "error", err)
				}
				continue
			}
			rt.Logger.Info("shutdown signal received", "signal", sig.String())
			return rt.shutdown()
		case evt, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			rt.Logger.Info("configuration changed, reloading", "path", evt.Path)
			if err := handler.Reload(watchCtx); err != nil {
				rt.Logger.Error("reload failed", "error", err)
			}
		case <-ctx.Done():
			rt.Logger.Info("shutdown requested", "reason", context.Cause(ctx))
			return rt.shutdown()
		}
	}
}

func (rt *Runtime) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := rt.Shutdown(ctx)
	rt.Logger.Info("shutdown complete")
	return err
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/chatlist if set, otherwise ~/.local/share/chatlist.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok && dir != "" {
		return filepath.Join(dir, "chatlist")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "chatlist")
}
