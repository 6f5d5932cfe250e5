package core

import (
	"errors"
	"slices"
	"testing"
)

func TestLoadModule_RunsHooksInOrder(t *testing.T) {
	t.Cleanup(resetRegistry)
	j := &journal{}
	RegisterModule(&probe{id: "test.order", j: j})

	ctx := NewAppContext(nil, "/data").WithModuleConfigs(sections(t, "test.order:\n  label: hello\n"))
	mod, err := ctx.LoadModule("test.order")
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}

	want := []string{"configure test.order", "provision test.order", "validate test.order"}
	if got := j.list(); !slices.Equal(got, want) {
		t.Errorf("hooks = %v, want %v", got, want)
	}
	p := mod.(*probe)
	if p.configured != "hello" {
		t.Errorf("label = %q, want hello", p.configured)
	}
	if p.appCtx.DataDir != "/data" {
		t.Errorf("provision DataDir = %q", p.appCtx.DataDir)
	}
	if _, ok := p.appCtx.ModuleConfig(); !ok {
		t.Error("provision context should be scoped to the module")
	}
}

func TestLoadModule_SkipsConfigureWithoutSection(t *testing.T) {
	t.Cleanup(resetRegistry)
	j := &journal{}
	RegisterModule(&probe{id: "test.nocfg", j: j})

	if _, err := NewAppContext(nil, "/data").LoadModule("test.nocfg"); err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if got := j.list(); got[0] != "provision test.nocfg" {
		t.Errorf("first hook = %q, configure should be skipped", got[0])
	}
}

func TestLoadModule_IgnoresSectionForPlainModule(t *testing.T) {
	t.Cleanup(resetRegistry)
	RegisterModule(bare{id: "test.bare"})

	ctx := NewAppContext(nil, "/data").WithModuleConfigs(sections(t, "test.bare:\n  label: x\n"))
	if _, err := ctx.LoadModule("test.bare"); err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
}

func TestLoadModule_Errors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name  string
		phase Phase
	}{
		{"configure", PhaseConfigure},
		{"provision", PhaseProvision},
		{"validate", PhaseValidate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(resetRegistry)
			RegisterModule(&probe{id: "test.fail", errs: hookErrs{tt.phase: boom}})

			ctx := NewAppContext(nil, "/data").WithModuleConfigs(sections(t, "test.fail: {}\n"))
			_, err := ctx.LoadModule("test.fail")

			var pe *PhaseError
			if !errors.As(err, &pe) {
				t.Fatalf("err = %v, want *PhaseError", err)
			}
			if pe.Phase != tt.phase || pe.Module != "test.fail" {
				t.Errorf("PhaseError = %+v", pe)
			}
			if !errors.Is(err, boom) {
				t.Error("cause should be unwrappable")
			}
		})
	}
}

func TestLoadModule_Unknown(t *testing.T) {
	t.Cleanup(resetRegistry)
	if _, err := NewAppContext(nil, "/data").LoadModule("does.not.exist"); err == nil {
		t.Fatal("expected error for unknown module")
	}
}

func TestAppContext_Scoping(t *testing.T) {
	root := NewAppContext(nil, "/data").
		WithConfigPath("/etc/chatlist.yaml").
		WithModuleConfigs(sections(t, "conversation.lists:\n  gap: 5m\n"))

	if _, ok := root.ModuleConfig(); ok {
		t.Error("unscoped context should not return a module config")
	}
	if _, ok := root.ForModule("store.sqlite").ModuleConfig(); ok {
		t.Error("store.sqlite has no section")
	}

	scoped := root.ForModule("conversation.lists")
	if scoped.ConfigPath != "/etc/chatlist.yaml" || scoped.DataDir != "/data" {
		t.Errorf("scoped context lost paths: %q %q", scoped.ConfigPath, scoped.DataDir)
	}
	node, ok := scoped.ModuleConfig()
	if !ok {
		t.Fatal("expected config for conversation.lists")
	}
	var cfg struct {
		Gap string `yaml:"gap"`
	}
	if err := node.Decode(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Gap != "5m" {
		t.Errorf("gap = %q, want 5m", cfg.Gap)
	}

	// Scoping twice keeps a single module tag.
	if again := scoped.ForModule("store.sqlite"); again.module != "store.sqlite" {
		t.Errorf("module = %q", again.module)
	}
}
