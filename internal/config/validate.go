package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/chatlist/internal/core"
)

const supportedVersion = "1"

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// problems accumulates validation failures under a common prefix.
type problems []error

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Errorf("config: "+format, args...))
}

// Validate reports every structural problem in cfg at once: the format
// version, the module IDs against the registry, the shape of each module
// section, and the log and telemetry settings. Module-specific settings
// are left to the modules.
func Validate(cfg *Config) error {
	var p problems

	switch cfg.Version {
	case supportedVersion:
	case "":
		p.addf("version field is required")
	default:
		p.addf("unsupported version %q (supported: %q)", cfg.Version, supportedVersion)
	}

	if len(cfg.Modules) == 0 {
		p.addf("at least one module must be configured")
	}
	for _, id := range Resolve(cfg) {
		validateModule(&p, id, cfg.Modules[id])
	}

	if lvl := cfg.Log.Level; lvl != "" && !slices.Contains(logLevels, lvl) {
		p.addf("log.level %q is not one of %s", lvl, strings.Join(logLevels, ", "))
	}
	if f := cfg.Log.Format; f != "" && !slices.Contains(logFormats, f) {
		p.addf("log.format %q is not one of %s", f, strings.Join(logFormats, ", "))
	}
	if r := cfg.Telemetry.SampleRatio; r < 0 || r > 1 {
		p.addf("telemetry.sample_ratio %v is outside [0, 1]", r)
	}

	return errors.Join(p...)
}

// validateModule checks that id is registered and, for modules that take
// configuration, that the section is a mapping. An empty or null section
// means defaults.
func validateModule(p *problems, id string, section yaml.Node) {
	info, ok := core.GetModule(id)
	if !ok {
		p.addf("unknown module %q", id)
		return
	}
	if _, takesConfig := info.New().(core.Configurable); !takesConfig {
		return
	}
	switch {
	case section.Kind == 0, section.Kind == yaml.MappingNode:
	case section.Kind == yaml.ScalarNode && section.Tag == "!!null":
	default:
		p.addf("module %q requires configuration as a mapping", id)
	}
}
