package core

import (
	"context"
	"sync"

	"gopkg.in/yaml.v3"
)

// journal collects hook calls across module instances.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, s)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// hookErrs makes the named hook fail.
type hookErrs map[Phase]error

// probe implements every lifecycle hook and writes "<phase> <id>" to its
// journal. New returns a copy so registered probes act as templates.
type probe struct {
	id   ModuleID
	j    *journal
	errs hookErrs

	configured string
	appCtx     *AppContext
}

func (p *probe) ModuleInfo() ModuleInfo {
	return ModuleInfo{ID: p.id, New: func() Module {
		cp := *p
		return &cp
	}}
}

func (p *probe) hook(ph Phase) error {
	if p.j != nil {
		p.j.add(ph.String() + " " + string(p.id))
	}
	return p.errs[ph]
}

func (p *probe) Configure(node *yaml.Node) error {
	var cfg struct {
		Label string `yaml:"label"`
	}
	if err := node.Decode(&cfg); err != nil {
		return err
	}
	p.configured = cfg.Label
	return p.hook(PhaseConfigure)
}

func (p *probe) Provision(ctx *AppContext) error {
	p.appCtx = ctx
	return p.hook(PhaseProvision)
}

func (p *probe) Validate() error              { return p.hook(PhaseValidate) }
func (p *probe) Start() error                 { return p.hook(PhaseStart) }
func (p *probe) Stop(context.Context) error   { return p.hook(PhaseStop) }
func (p *probe) Reload(ctx *AppContext) error { p.appCtx = ctx; return p.hook(PhaseReload) }

// bare implements Module and nothing else.
type bare struct{ id ModuleID }

func (b bare) ModuleInfo() ModuleInfo {
	return ModuleInfo{ID: b.id, New: func() Module { return b }}
}

func sections(t interface{ Fatal(...any) }, src string) map[string]yaml.Node {
	var out map[string]yaml.Node
	if err := yaml.Unmarshal([]byte(src), &out); err != nil {
		t.Fatal(err)
	}
	return out
}
