package config

import (
	"strings"
	"testing"
)

func TestStarter_Render(t *testing.T) {
	out, err := Starter{
		LogLevel:        "info",
		DatabasePath:    "/tmp/chatlist.db",
		Bind:            "127.0.0.1:8080",
		AuthToken:       "${CHATLIST_TOKEN}",
		TimestampLayout: "2006-01-02T15:04:05Z07:00",
	}.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	t.Setenv("CHATLIST_TOKEN", "secret")
	cfg, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse rendered config: %v\n%s", err, out)
	}
	if cfg.Version != "1" {
		t.Errorf("version = %q", cfg.Version)
	}
	for _, id := range []string{"conversation.lists", "store.sqlite", "gateway.http"} {
		if _, ok := cfg.Modules[id]; !ok {
			t.Errorf("missing module %s", id)
		}
	}

	var gw struct {
		Bind string `yaml:"bind"`
		Auth struct {
			BearerToken string `yaml:"bearer_token"`
		} `yaml:"auth"`
	}
	node := cfg.Modules["gateway.http"]
	if err := node.Decode(&gw); err != nil {
		t.Fatal(err)
	}
	if gw.Bind != "127.0.0.1:8080" || gw.Auth.BearerToken != "secret" {
		t.Errorf("gateway = %+v", gw)
	}
	if strings.Contains(string(out), "telemetry") {
		t.Errorf("empty telemetry should be omitted:\n%s", out)
	}
}

func TestStarter_RenderWithoutGateway(t *testing.T) {
	out, err := Starter{}.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(string(out), "gateway.http") {
		t.Errorf("gateway should be omitted without a bind address:\n%s", out)
	}
}
