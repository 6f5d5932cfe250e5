// Package core is the module system of chatlist: a registry of modules,
// the context they are loaded with, and the App that drives them through
// their lifecycle.
package core

import (
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"
)

// AppContext is handed to modules while they are provisioned and reloaded.
// Derived contexts share one service registry.
type AppContext struct {
	// Logger is tagged with the module ID on scoped contexts.
	Logger *slog.Logger

	// DataDir holds persistent module data such as the message store.
	DataDir string

	// ConfigPath is the file the configuration was read from, or empty
	// for in-memory configurations.
	ConfigPath string

	module   ModuleID
	base     *slog.Logger
	sections map[string]yaml.Node
	services *serviceRegistry
}

// NewAppContext returns a root context. A nil logger means slog.Default.
func NewAppContext(logger *slog.Logger, dataDir string) *AppContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppContext{
		Logger:   logger,
		DataDir:  dataDir,
		base:     logger,
		services: newServiceRegistry(),
	}
}

func (ctx *AppContext) clone() *AppContext {
	cp := *ctx
	return &cp
}

// WithConfigPath records the configuration file on a copy of ctx.
func (ctx *AppContext) WithConfigPath(path string) *AppContext {
	cp := ctx.clone()
	cp.ConfigPath = path
	return cp
}

// WithModuleConfigs attaches the raw modules map, keyed by module ID, to a
// copy of ctx.
func (ctx *AppContext) WithModuleConfigs(sections map[string]yaml.Node) *AppContext {
	cp := ctx.clone()
	cp.sections = sections
	return cp
}

// ForModule scopes a copy of ctx to one module.
func (ctx *AppContext) ForModule(id ModuleID) *AppContext {
	cp := ctx.clone()
	cp.module = id
	cp.Logger = ctx.base.With("module", string(id))
	return cp
}

// ModuleConfig returns the section of the module ctx is scoped to.
func (ctx *AppContext) ModuleConfig() (*yaml.Node, bool) {
	if ctx.module == "" {
		return nil, false
	}
	return ctx.section(ctx.module)
}

func (ctx *AppContext) section(id ModuleID) (*yaml.Node, bool) {
	node, ok := ctx.sections[string(id)]
	if !ok {
		return nil, false
	}
	return &node, true
}

// LoadModule builds the module registered under id and takes it through
// configure, provision and validate. Failures are reported as *PhaseError.
func (ctx *AppContext) LoadModule(id string) (Module, error) {
	info, ok := GetModule(id)
	if !ok {
		return nil, fmt.Errorf("unknown module: %s", id)
	}
	mod := info.New()

	if c, ok := mod.(Configurable); ok {
		if node, present := ctx.section(info.ID); present {
			if err := c.Configure(node); err != nil {
				return nil, phaseErr(info.ID, PhaseConfigure, err)
			}
		}
	}
	if p, ok := mod.(Provisioner); ok {
		if err := p.Provision(ctx.ForModule(info.ID)); err != nil {
			return nil, phaseErr(info.ID, PhaseProvision, err)
		}
	}
	if v, ok := mod.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, phaseErr(info.ID, PhaseValidate, err)
		}
	}
	return mod, nil
}
