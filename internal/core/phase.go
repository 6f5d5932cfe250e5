package core

import "fmt"

// Phase is one step in a module's life.
type Phase int

const (
	PhaseConfigure Phase = iota
	PhaseProvision
	PhaseValidate
	PhaseStart
	PhaseStop
	PhaseReload
)

var phaseNames = [...]string{
	PhaseConfigure: "configure",
	PhaseProvision: "provision",
	PhaseValidate:  "validate",
	PhaseStart:     "start",
	PhaseStop:      "stop",
	PhaseReload:    "reload",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// PhaseError reports the module and step that failed.
type PhaseError struct {
	Module ModuleID
	Phase  Phase
	Err    error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("module %s: %s: %v", e.Module, e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

func phaseErr(id ModuleID, p Phase, err error) error {
	if err == nil {
		return nil
	}
	return &PhaseError{Module: id, Phase: p, Err: err}
}
