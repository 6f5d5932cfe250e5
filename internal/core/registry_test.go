package core

import (
	"strings"
	"testing"
)

func TestModuleID(t *testing.T) {
	tests := []struct {
		id        ModuleID
		namespace string
		name      string
	}{
		{"store.sqlite", "store", "sqlite"},
		{"conversation.lists", "conversation", "lists"},
		{"gateway.http.v2", "gateway", "http.v2"},
		{"plain", "plain", "plain"},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			if got := tt.id.Namespace(); got != tt.namespace {
				t.Errorf("Namespace() = %q, want %q", got, tt.namespace)
			}
			if got := tt.id.Name(); got != tt.name {
				t.Errorf("Name() = %q, want %q", got, tt.name)
			}
		})
	}
}

func TestRegistry_Listing(t *testing.T) {
	t.Cleanup(resetRegistry)

	for _, id := range []ModuleID{"store.b", "store.a", "gateway.http", "storefront.x"} {
		RegisterModule(bare{id: id})
	}

	var ids []string
	for _, info := range GetModules() {
		ids = append(ids, string(info.ID))
	}
	if got := strings.Join(ids, ","); got != "gateway.http,store.a,store.b,storefront.x" {
		t.Errorf("GetModules = %s", got)
	}

	stores := GetModulesByNamespace("store")
	if len(stores) != 2 || stores[0].ID != "store.a" || stores[1].ID != "store.b" {
		t.Errorf("GetModulesByNamespace(store) = %v", stores)
	}
	if _, ok := GetModule("store.a"); !ok {
		t.Error("GetModule(store.a) not found")
	}
	if _, ok := GetModule("store.c"); ok {
		t.Error("GetModule(store.c) found")
	}
}

func TestRegisterModule_Panics(t *testing.T) {
	t.Cleanup(resetRegistry)
	RegisterModule(bare{id: "store.a"})

	tests := []struct {
		name string
		mod  Module
		want string
	}{
		{"duplicate", bare{id: "store.a"}, "registered twice"},
		{"no namespace", bare{id: "sqlite"}, "namespace.name"},
		{"empty name", bare{id: "store."}, "namespace.name"},
		{"empty", bare{}, "namespace.name"},
		{"no constructor", noCtor{}, "no constructor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				msg, _ := r.(string)
				if !strings.Contains(msg, tt.want) {
					t.Errorf("panic = %v, want it to mention %q", r, tt.want)
				}
			}()
			RegisterModule(tt.mod)
		})
	}
}

type noCtor struct{}

func (noCtor) ModuleInfo() ModuleInfo { return ModuleInfo{ID: "store.noctor"} }

func TestPhase_String(t *testing.T) {
	if PhaseProvision.String() != "provision" || PhaseReload.String() != "reload" {
		t.Error("phase names")
	}
	if got := Phase(42).String(); got != "phase(42)" {
		t.Errorf("unknown phase = %q", got)
	}
}
