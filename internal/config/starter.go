package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Starter holds the answers needed to write a first configuration file.
type Starter struct {
	LogLevel        string
	DatabasePath    string
	Bind            string
	AuthToken       string
	TimestampLayout string
	Location        string
	RelabelSchedule string
	OTLPEndpoint    string
}

type starterFile struct {
	Version   string          `yaml:"version"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
	Modules   map[string]any  `yaml:"modules"`
}

// Render produces a configuration file for s. Empty answers are left out so
// module defaults apply.
func (s Starter) Render() ([]byte, error) {
	lists := map[string]any{}
	putIf(lists, "timestamp_layout", s.TimestampLayout)
	putIf(lists, "location", s.Location)
	putIf(lists, "relabel_schedule", s.RelabelSchedule)

	store := map[string]any{}
	putIf(store, "path", s.DatabasePath)

	modules := map[string]any{
		"conversation.lists": lists,
		"store.sqlite":       store,
	}
	if s.Bind != "" {
		gw := map[string]any{"bind": s.Bind}
		if s.AuthToken != "" {
			gw["auth"] = map[string]any{"bearer_token": s.AuthToken}
		}
		modules["gateway.http"] = gw
	}

	out, err := yaml.Marshal(starterFile{
		Version:   "1",
		Log:       LogConfig{Level: s.LogLevel, Format: "text"},
		Telemetry: TelemetryConfig{OTLPEndpoint: s.OTLPEndpoint},
		Modules:   modules,
	})
	if err != nil {
		return nil, fmt.Errorf("config: rendering starter: %w", err)
	}
	return out, nil
}

func putIf(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}
