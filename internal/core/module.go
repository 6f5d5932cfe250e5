package core

import (
	"context"
	"strings"

	"gopkg.in/yaml.v3"
)

// ModuleID names a module as "<namespace>.<name>", for example
// "conversation.lists". The namespace groups interchangeable
// implementations of one concern.
type ModuleID string

// Namespace is everything before the first dot.
func (id ModuleID) Namespace() string {
	ns, _, _ := strings.Cut(string(id), ".")
	return ns
}

// Name is everything after the first dot. An ID without a dot is its own
// name.
func (id ModuleID) Name() string {
	if _, name, ok := strings.Cut(string(id), "."); ok {
		return name
	}
	return string(id)
}

// ModuleInfo is what a module contributes to the registry.
type ModuleInfo struct {
	ID ModuleID

	// New builds an unconfigured instance. It is called once per load and
	// by the config validator to probe which hooks a module has.
	New func() Module
}

// Module is the only interface every module must satisfy. The hooks below
// are optional and discovered by type assertion.
type Module interface {
	ModuleInfo() ModuleInfo
}

// Configurable modules receive their section of the modules map. Configure
// is skipped when the section is absent.
type Configurable interface {
	Configure(node *yaml.Node) error
}

// Provisioner modules apply defaults, open resources and publish services.
type Provisioner interface {
	Provision(ctx *AppContext) error
}

// Validator modules check their provisioned state. Validate must not have
// side effects.
type Validator interface {
	Validate() error
}

// Starter modules launch background work once every module is loaded.
// Services registered by other modules during provisioning are available.
type Starter interface {
	Start() error
}

// Stopper modules release what Start acquired.
type Stopper interface {
	Stop(ctx context.Context) error
}

// Reloader modules apply a new configuration without a restart.
type Reloader interface {
	Reload(ctx *AppContext) error
}
