// Package sqlite persists conversations in a single SQLite file through the
// pure Go modernc.org/sqlite driver. The store.sqlite module publishes it as
// the "store" service.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/chatlist/internal/core"
	"github.com/flemzord/chatlist/internal/store"
)

func init() {
	core.RegisterModule(&Module{})
}

var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Module provides the SQLite store to other modules.
type Module struct {
	config Config
	logger *slog.Logger
	store  *Store
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "store.sqlite",
		New: func() core.Module { return &Module{} },
	}
}

func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("sqlite: decode config: %w", err)
	}
	return nil
}

// Provision opens the database so that the conversation module can load
// its history during its own Start.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger
	m.config.defaults()
	if m.config.Path == "" {
		m.config.Path = filepath.Join(ctx.DataDir, defaultDBFile)
	}

	s, err := Open(context.Background(), m.config)
	if err != nil {
		return err
	}
	m.store = s
	ctx.RegisterService(store.ServiceName, s)

	version, _ := schemaVersion(context.Background(), s.db)
	m.logger.Info("sqlite store opened", "path", m.config.Path, "journal", m.config.Journal, "schema", version)
	return nil
}

// Validate checks that the database answers.
func (m *Module) Validate() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.config.BusyTimeout+time.Second)
	defer cancel()
	if err := m.store.DB().PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

func (m *Module) Stop(context.Context) error {
	if m.store == nil {
		return nil
	}
	err := m.store.Close()
	m.store = nil
	return err
}

// Store returns the provisioned store.
func (m *Module) Store() *Store {
	return m.store
}
