package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/chatlist/internal/core"
	"github.com/flemzord/chatlist/internal/cron"
	"github.com/flemzord/chatlist/internal/grouping"
	"github.com/flemzord/chatlist/internal/store"
	"github.com/flemzord/chatlist/internal/timefmt"
)

// ServiceName is the core service name the Manager is registered under.
const ServiceName = "conversation.manager"

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
	_ core.Reloader     = (*Module)(nil)
)

// ModuleConfig configures the conversation.lists module.
type ModuleConfig struct {
	// TimestampLayout is the Go layout raw timestamps are parsed with.
	// Defaults to timefmt.DefaultLayout.
	TimestampLayout string `yaml:"timestamp_layout"`

	// Location is the IANA zone labels are computed in. Defaults to the
	// local zone.
	Location string `yaml:"location"`

	// Gap is the silence after which a new time header is shown.
	// Defaults to ten minutes.
	Gap time.Duration `yaml:"gap"`

	// RelabelSchedule refreshes "Today"/"Yesterday" labels. Defaults to
	// midnight.
	RelabelSchedule string `yaml:"relabel_schedule"`

	// CompactionSchedule compacts stores that support it. Defaults to
	// Sunday 03:30.
	CompactionSchedule string `yaml:"compaction_schedule"`

	// SubscriberBuffer is the per-subscriber event buffer.
	SubscriberBuffer int `yaml:"subscriber_buffer"`
}

func (c *ModuleConfig) defaults() {
	if c.Gap == 0 {
		c.Gap = grouping.DefaultGap
	}
}

// Module exposes a Manager to the rest of the application, rehydrates it
// from the store on start and keeps relative labels fresh.
type Module struct {
	config    ModuleConfig
	location  *time.Location
	appCtx    *core.AppContext
	logger    *slog.Logger
	manager   *Manager
	scheduler *cron.Scheduler
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "conversation.lists",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("conversation: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.appCtx = ctx
	m.logger = ctx.Logger

	loc, err := loadLocation(m.config.Location)
	if err != nil {
		return err
	}
	m.location = loc

	m.manager = NewManager(ManagerOptions{
		Engine:           grouping.Engine{Gap: m.config.Gap},
		Formatter:        timefmt.New(m.config.TimestampLayout, loc),
		Logger:           ctx.Logger,
		SubscriberBuffer: m.config.SubscriberBuffer,
	})
	if err := m.manager.Metrics().Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("conversation: register metrics: %w", err)
	}

	ctx.RegisterService(ServiceName, m.manager)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	return m.config.validate()
}

func (c *ModuleConfig) validate() error {
	if c.Gap < 0 {
		return fmt.Errorf("conversation: gap must be non-negative, got %s", c.Gap)
	}
	if c.SubscriberBuffer < 0 {
		return fmt.Errorf("conversation: subscriber_buffer must be non-negative, got %d", c.SubscriberBuffer)
	}
	for name, expr := range map[string]string{
		"relabel_schedule":    c.RelabelSchedule,
		"compaction_schedule": c.CompactionSchedule,
	} {
		if expr == "" {
			continue
		}
		if err := cron.ValidateSchedule(expr); err != nil {
			return fmt.Errorf("conversation: %s %q: %w", name, expr, err)
		}
	}
	return nil
}

// Start implements core.Starter. A store registered by another module is
// attached and loaded before the scheduler starts.
func (m *Module) Start() error {
	ctx := context.Background()

	var compactor cron.Compactor
	if s, ok := core.ServiceAs[store.Store](m.appCtx, store.ServiceName); ok {
		m.manager.SetStore(s)
		if err := m.manager.Load(ctx); err != nil {
			return err
		}
		compactor, _ = s.(cron.Compactor)
	} else {
		m.logger.Warn("no store configured, conversations are kept in memory only")
	}

	m.scheduler = m.newScheduler(compactor)
	if err := m.scheduler.Start(); err != nil {
		return err
	}
	if next, ok := m.scheduler.Next("relabel"); ok {
		m.logger.Debug("relabel scheduled", "next", next)
	}
	return nil
}

func (m *Module) newScheduler(compactor cron.Compactor) *cron.Scheduler {
	s := cron.NewScheduler(m.logger, m.location)
	// Names are fixed and distinct and schedules were checked by Validate
	// or Reload, so Add cannot fail.
	_ = s.Add(&cron.RelabelJob{
		Relabeler:    m.manager,
		Logger:       m.logger,
		ScheduleExpr: m.config.RelabelSchedule,
	})
	if compactor != nil {
		_ = s.Add(&cron.StoreCompactionJob{
			Store:        compactor,
			Logger:       m.logger,
			ScheduleExpr: m.config.CompactionSchedule,
		})
	}
	return s
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	if m.scheduler != nil {
		_ = m.scheduler.Stop(ctx)
	}
	if m.manager != nil {
		m.manager.Close()
		m.manager.Metrics().Unregister(prometheus.DefaultRegisterer)
	}
	return nil
}

// Reload implements core.Reloader. Schedules take effect immediately. The
// gap, layout and location shape every stamped record and need a restart.
func (m *Module) Reload(ctx *core.AppContext) error {
	var next ModuleConfig
	if node, ok := ctx.ModuleConfig(); ok {
		if err := node.Decode(&next); err != nil {
			return fmt.Errorf("conversation: decode config: %w", err)
		}
	}
	next.defaults()
	if err := next.validate(); err != nil {
		return err
	}

	if next.Gap != m.config.Gap || next.TimestampLayout != m.config.TimestampLayout || next.Location != m.config.Location {
		m.logger.Warn("gap, timestamp_layout and location changes apply after restart")
	}
	if next.RelabelSchedule == m.config.RelabelSchedule && next.CompactionSchedule == m.config.CompactionSchedule {
		return nil
	}

	m.config.RelabelSchedule = next.RelabelSchedule
	m.config.CompactionSchedule = next.CompactionSchedule

	var compactor cron.Compactor
	if m.manager.store != nil {
		compactor, _ = m.manager.store.(cron.Compactor)
	}
	if m.scheduler != nil {
		_ = m.scheduler.Stop(context.Background())
	}
	m.scheduler = m.newScheduler(compactor)
	if err := m.scheduler.Start(); err != nil {
		return err
	}
	m.logger.Info("schedules reloaded", "jobs", m.scheduler.Jobs())
	return nil
}

// Manager returns the provisioned manager.
func (m *Module) Manager() *Manager {
	return m.manager
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("conversation: location %q: %w", name, err)
	}
	return loc, nil
}
