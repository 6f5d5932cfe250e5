package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flemzord/chatlist/internal/config"
	"github.com/flemzord/chatlist/internal/core"
	"github.com/flemzord/chatlist/internal/gateway"

	_ "github.com/flemzord/chatlist/modules/store/sqlite"
)

const testConfig = `version: "1"
log:
  level: warn
modules:
  conversation.lists: {}
  store.sqlite: {}
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chatlist.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, level, err := NewLogger(&buf, config.LogConfig{Level: "warn", Format: "json"}, nil)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output %q is not a single JSON line: %v", buf.String(), err)
	}
	if line["msg"] != "shown" || line["k"] != "v" {
		t.Errorf("line = %v", line)
	}

	level.Set(slog.LevelDebug)
	buf.Reset()
	logger.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Error("LevelVar change not applied")
	}
}

func TestNewLogger_UnknownFormat(t *testing.T) {
	t.Parallel()
	if _, _, err := NewLogger(&bytes.Buffer{}, config.LogConfig{Format: "xml"}, nil); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSampler(t *testing.T) {
	t.Parallel()
	for _, ratio := range []float64{0, 0.25, 1} {
		if s := sampler(ratio); s == nil || s.Description() == "" {
			t.Errorf("sampler(%v) = %v", ratio, s)
		}
	}
	if !strings.Contains(sampler(0.25).Description(), "TraceIDRatioBased") {
		t.Errorf("sampler(0.25) = %s", sampler(0.25).Description())
	}
}

func TestSetupTracing_Disabled(t *testing.T) {
	t.Parallel()
	stop, err := setupTracing(context.Background(), config.TelemetryConfig{}, "dev")
	if err != nil {
		t.Fatalf("setupTracing: %v", err)
	}
	if err := stop(context.Background()); err != nil {
		t.Errorf("stop: %v", err)
	}
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	if got := DefaultDataDir(); got != "/custom/data/chatlist" {
		t.Errorf("got %q", got)
	}

	t.Setenv("XDG_DATA_HOME", "")
	home, _ := os.UserHomeDir()
	if got, want := DefaultDataDir(), filepath.Join(home, ".local", "share", "chatlist"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "not: valid: yaml: ["},
		{"no version", "modules:\n  conversation.lists: {}\n"},
		{"unknown module", "version: \"1\"\nmodules:\n  nope.nope: {}\n"},
		{"bad log level", "version: \"1\"\nlog:\n  level: loud\nmodules:\n  conversation.lists: {}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(context.Background(), RunParams{ConfigPath: path}); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Load(context.Background(), RunParams{ConfigPath: "/nonexistent/chatlist.yaml"}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_ModulesAndManager(t *testing.T) {
	path := writeConfig(t, testConfig)
	dataDir := t.TempDir()

	rt, err := Load(context.Background(), RunParams{ConfigPath: path, DataDir: dataDir, LogOutput: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { _ = rt.Shutdown(context.Background()) })

	want := []core.ModuleID{"store.sqlite", "conversation.lists"}
	got := rt.App.Modules()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("modules = %v, want %v", got, want)
	}
	if rt.DataDir != dataDir || rt.ConfigPath != path {
		t.Errorf("runtime paths = %q %q", rt.DataDir, rt.ConfigPath)
	}
	if _, ok := rt.Manager(); !ok {
		t.Error("conversation manager not registered")
	}
}

func TestLoad_Skip(t *testing.T) {
	path := writeConfig(t, testConfig+"  gateway.http:\n    bind: 127.0.0.1:0\n")

	rt, err := Load(context.Background(), RunParams{
		ConfigPath: path,
		DataDir:    t.TempDir(),
		LogOutput:  &bytes.Buffer{},
		Skip:       []string{"gateway.http"},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { _ = rt.Shutdown(context.Background()) })

	for _, id := range rt.App.Modules() {
		if id == "gateway.http" {
			t.Error("skipped module was loaded")
		}
	}
}

func TestRuntime_ReloadAppliesLogLevel(t *testing.T) {
	path := writeConfig(t, testConfig)
	var logs bytes.Buffer

	rt, err := Load(context.Background(), RunParams{ConfigPath: path, DataDir: t.TempDir(), LogOutput: &logs})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { _ = rt.Shutdown(context.Background()) })

	handler := rt.ReloadHandler()
	if _, ok := core.ServiceAs[gateway.Reloader](rt.Context, gateway.ReloadServiceName); !ok {
		t.Fatal("reload handler not registered for the gateway")
	}
	if err := rt.App.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	updated := strings.Replace(testConfig, "level: warn", "level: debug", 1)
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := handler.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if rt.level.Level() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", rt.level.Level())
	}
}

func TestRuntime_LogLevelOverrideWins(t *testing.T) {
	path := writeConfig(t, testConfig)

	rt, err := Load(context.Background(), RunParams{ConfigPath: path, DataDir: t.TempDir(), LogOutput: &bytes.Buffer{}, LogLevel: "error"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { _ = rt.Shutdown(context.Background()) })

	rt.applyConfig(&config.Config{Log: config.LogConfig{Level: "debug"}})
	if rt.level.Level() != slog.LevelError {
		t.Errorf("level = %v, want error", rt.level.Level())
	}
}

func TestRun_StopsWhenContextDone(t *testing.T) {
	path := writeConfig(t, testConfig)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, RunParams{ConfigPath: path, DataDir: t.TempDir(), LogOutput: &bytes.Buffer{}})
	if err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}

func TestLoad_RedactsConfiguredSecrets(t *testing.T) {
	path := writeConfig(t, testConfig+"  gateway.http:\n    auth:\n      bearer_token: tok-super-secret\n")
	var logs bytes.Buffer

	rt, err := Load(context.Background(), RunParams{ConfigPath: path, DataDir: t.TempDir(), LogOutput: &logs, LogLevel: "info"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { _ = rt.Shutdown(context.Background()) })

	rt.Logger.Info("checking", "token", "tok-super-secret")
	if strings.Contains(logs.String(), "tok-super-secret") {
		t.Errorf("bearer token leaked into logs: %s", logs.String())
	}
}
