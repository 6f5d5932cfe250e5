package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// App owns the modules of one process, in load order.
type App struct {
	ctx     *AppContext
	logger  *slog.Logger
	loaded  []*loadedModule
	started bool
}

type loadedModule struct {
	id      ModuleID
	mod     Module
	running bool
}

// NewApp returns an App that loads modules with ctx.
func NewApp(ctx *AppContext) *App {
	return &App{ctx: ctx, logger: ctx.Logger.With("component", "core")}
}

// LoadModules loads ids in order. On failure the modules loaded so far are
// stopped and dropped, so a failed App holds nothing.
func (a *App) LoadModules(ids []string) error {
	for _, id := range ids {
		mod, err := a.ctx.LoadModule(id)
		if err != nil {
			a.discard()
			return err
		}
		a.loaded = append(a.loaded, &loadedModule{id: mod.ModuleInfo().ID, mod: mod})
		a.logger.Debug("module loaded", "module", id)
	}
	return nil
}

// Start runs the Start hook of each module in load order. If one fails, the
// modules already started are stopped again before the error is returned.
func (a *App) Start() error {
	a.started = true
	for i, lm := range a.loaded {
		s, ok := lm.mod.(Starter)
		if !ok {
			// Modules without a Start hook still hold what Provision
			// opened and are stopped with the rest.
			lm.running = true
			continue
		}
		if err := s.Start(); err != nil {
			a.logger.Error("module failed to start", "module", string(lm.id), "error", err)
			_ = a.stopRange(context.Background(), i)
			return phaseErr(lm.id, PhaseStart, err)
		}
		lm.running = true
		a.logger.Debug("module started", "module", string(lm.id))
	}
	a.logger.Info("modules started", "count", len(a.loaded))
	return nil
}

// Stop runs the Stop hook of every started module, newest first. Every
// module gets its turn even when an earlier one fails or ctx expires. An
// App that was loaded but never started stops all of its modules, so
// commands that only inspect the configuration still close what
// provisioning opened.
func (a *App) Stop(ctx context.Context) error {
	if !a.started {
		a.started = true
		for _, lm := range a.loaded {
			lm.running = true
		}
	}
	return a.stopRange(ctx, len(a.loaded))
}

// stopRange stops the started modules among the first n, in reverse.
func (a *App) stopRange(ctx context.Context, n int) error {
	var errs []error
	for i := n - 1; i >= 0; i-- {
		lm := a.loaded[i]
		if !lm.running {
			continue
		}
		lm.running = false
		s, ok := lm.mod.(Stopper)
		if !ok {
			continue
		}
		if err := s.Stop(ctx); err != nil {
			a.logger.Warn("module did not stop cleanly", "module", string(lm.id), "error", err)
			errs = append(errs, phaseErr(lm.id, PhaseStop, err))
		}
	}
	return errors.Join(errs...)
}

// discard releases modules that were provisioned but never started.
func (a *App) discard() {
	for i := len(a.loaded) - 1; i >= 0; i-- {
		if s, ok := a.loaded[i].mod.(Stopper); ok {
			_ = s.Stop(context.Background())
		}
	}
	a.loaded = nil
}

// ReloadModules hands ctx to every Reloader. All of them are tried; the
// failures come back joined.
func (a *App) ReloadModules(ctx *AppContext) error {
	var errs []error
	reloaded := 0
	for _, lm := range a.loaded {
		r, ok := lm.mod.(Reloader)
		if !ok {
			continue
		}
		if err := r.Reload(ctx.ForModule(lm.id)); err != nil {
			a.logger.Error("module reload failed", "module", string(lm.id), "error", err)
			errs = append(errs, phaseErr(lm.id, PhaseReload, err))
			continue
		}
		reloaded++
	}
	a.logger.Debug("modules reloaded", "count", reloaded, "failed", len(errs))
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d reloadable modules failed: %w", len(errs), reloaded+len(errs), errors.Join(errs...))
	}
	return nil
}

// Modules lists the loaded module IDs in load order.
func (a *App) Modules() []ModuleID {
	ids := make([]ModuleID, 0, len(a.loaded))
	for _, lm := range a.loaded {
		ids = append(ids, lm.id)
	}
	return ids
}
