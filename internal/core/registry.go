package core

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// registry maps module IDs to their info. Modules add themselves from
// init functions, so the process-wide instance is filled before main runs.
type registry struct {
	mu    sync.RWMutex
	infos map[ModuleID]ModuleInfo
}

var modules = &registry{infos: map[ModuleID]ModuleInfo{}}

func (r *registry) add(info ModuleInfo) error {
	if ns, name, ok := strings.Cut(string(info.ID), "."); !ok || ns == "" || name == "" {
		return fmt.Errorf("module ID %q is not of the form namespace.name", info.ID)
	}
	if info.New == nil {
		return fmt.Errorf("module %s has no constructor", info.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.infos[info.ID]; dup {
		return fmt.Errorf("module %s registered twice", info.ID)
	}
	r.infos[info.ID] = info
	return nil
}

func (r *registry) lookup(id ModuleID) (ModuleInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.infos[id]
	return info, ok
}

// sorted returns the infos accepted by keep, ordered by ID.
func (r *registry) sorted(keep func(ModuleID) bool) []ModuleInfo {
	r.mu.RLock()
	ids := slices.Collect(maps.Keys(r.infos))
	out := make([]ModuleInfo, 0, len(ids))
	for _, id := range ids {
		if keep(id) {
			out = append(out, r.infos[id])
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b ModuleInfo) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// RegisterModule adds a module to the registry. It panics on a malformed or
// duplicate ID, which is a programming error in an init function.
func RegisterModule(m Module) {
	if err := modules.add(m.ModuleInfo()); err != nil {
		panic("core: " + err.Error())
	}
}

// GetModule looks a module up by ID.
func GetModule(id string) (ModuleInfo, bool) {
	return modules.lookup(ModuleID(id))
}

// GetModules lists every registered module, ordered by ID.
func GetModules() []ModuleInfo {
	return modules.sorted(func(ModuleID) bool { return true })
}

// GetModulesByNamespace lists the modules of one namespace, so "store"
// yields "store.sqlite" but not "storefront.x".
func GetModulesByNamespace(namespace string) []ModuleInfo {
	return modules.sorted(func(id ModuleID) bool { return id.Namespace() == namespace && id != ModuleID(namespace) })
}

func resetRegistry() {
	modules.mu.Lock()
	defer modules.mu.Unlock()
	clear(modules.infos)
}
