package core

import "sync"

// serviceRegistry is how modules find each other. A module publishes a value
// during Provision; others look it up by name in Start.
type serviceRegistry struct {
	mu     sync.RWMutex
	byName map[string]any
}

func newServiceRegistry() *serviceRegistry {
	return &serviceRegistry{byName: map[string]any{}}
}

// RegisterService publishes svc under name, replacing any earlier value.
func (ctx *AppContext) RegisterService(name string, svc any) {
	ctx.services.mu.Lock()
	ctx.services.byName[name] = svc
	ctx.services.mu.Unlock()
}

// Service looks up a published value.
func (ctx *AppContext) Service(name string) (any, bool) {
	ctx.services.mu.RLock()
	defer ctx.services.mu.RUnlock()
	svc, ok := ctx.services.byName[name]
	return svc, ok
}

// ServiceAs is Service with a type check. A value of the wrong type is
// reported as missing.
func ServiceAs[T any](ctx *AppContext, name string) (T, bool) {
	svc, _ := ctx.Service(name)
	v, ok := svc.(T)
	return v, ok
}
