package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/chatlist/internal/grouping"
	"github.com/flemzord/chatlist/internal/store"
	"github.com/flemzord/chatlist/internal/timefmt"
	"github.com/flemzord/chatlist/pkg/message"
)

const tracerName = "github.com/flemzord/chatlist/internal/conversation"

// ManagerOptions configures a Manager. The zero value is usable: lists live
// in memory only and spans go to the global tracer provider.
type ManagerOptions struct {
	Engine    grouping.Engine
	Formatter *timefmt.Formatter

	// Store persists every mutation after it has been applied to the list.
	// Optional.
	Store store.Store

	Logger         *slog.Logger
	TracerProvider trace.TracerProvider

	// SubscriberBuffer is the per-subscriber event buffer. Defaults to 64.
	SubscriberBuffer int
}

// Summary describes one conversation.
type Summary struct {
	ID  string `json:"id"`
	Len int    `json:"len"`
}

type entry struct {
	// write serializes list mutation and the matching store write, so the
	// store sees mutations in list order.
	write sync.Mutex
	list  *List
	hub   *hub
}

// Manager owns a keyed set of lists. It writes every mutation through to
// the store and fans changes out to subscribers. It is safe for concurrent
// use.
type Manager struct {
	engine    grouping.Engine
	formatter *timefmt.Formatter
	store     store.Store
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *Metrics
	buffer    int

	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
}

// NewManager creates an empty manager.
func NewManager(opts ManagerOptions) *Manager {
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	formatter := opts.Formatter
	if formatter == nil {
		formatter = &timefmt.Formatter{}
	}

	m := &Manager{
		engine:    opts.Engine,
		formatter: formatter,
		store:     opts.Store,
		logger:    logger,
		tracer:    tp.Tracer(tracerName),
		buffer:    opts.SubscriberBuffer,
		entries:   make(map[string]*entry),
	}
	m.metrics = newMetrics(m)
	return m
}

// SetStore attaches a store. It must be called before the manager is used
// concurrently, typically right before Load.
func (m *Manager) SetStore(s store.Store) {
	m.store = s
}

// Metrics returns the manager's Prometheus collectors.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

func (m *Manager) newEntry(id string) *entry {
	h := newHub(id, m.buffer, m.metrics.DroppedEvents.Inc)
	list := NewList(Options{
		Engine:    m.engine,
		Formatter: m.formatter,
		Logger:    m.logger.With("conversation", id),
		Observer: ObserverFunc(func(c Change) {
			m.metrics.observe(c)
			h.Notify(c)
		}),
	})
	return &entry{list: list, hub: h}
}

func (m *Manager) lookup(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

func (m *Manager) start(ctx context.Context, op, id string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "conversation."+op,
		trace.WithAttributes(attribute.String("conversation.id", id)))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// persist runs write against the store, if any. Failures are counted,
// logged and returned; the in-memory list keeps the mutation.
func (m *Manager) persist(ctx context.Context, span trace.Span, op, id string, write func(context.Context, store.Store) error) error {
	if m.store == nil {
		return nil
	}
	if err := write(ctx, m.store); err != nil {
		m.metrics.StoreErrors.Inc()
		m.logger.Error("store write failed", "op", op, "conversation", id, "error", err)
		return fail(span, fmt.Errorf("conversation: %s %s: %w", op, id, err))
	}
	return nil
}

// Create opens a new empty conversation. An empty id is replaced by a
// random UUID. The resulting ID is returned.
func (m *Manager) Create(ctx context.Context, id string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	ctx, span := m.start(ctx, "Create", id)
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; ok {
		return "", fail(span, fmt.Errorf("%w: %s", ErrExists, id))
	}
	if err := m.persist(ctx, span, "create", id, func(ctx context.Context, s store.Store) error {
		return s.Create(ctx, id)
	}); err != nil {
		return "", err
	}

	m.entries[id] = m.newEntry(id)
	m.order = append(m.order, id)
	m.logger.Debug("conversation created", "conversation", id)
	return id, nil
}

// Delete drops a conversation, its stored records and its subscriptions.
func (m *Manager) Delete(ctx context.Context, id string) error {
	ctx, span := m.start(ctx, "Delete", id)
	defer span.End()

	m.mu.Lock()
	e, ok := m.entries[id]
	if ok {
		delete(m.entries, id)
		m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	}
	m.mu.Unlock()

	if !ok {
		return fail(span, fmt.Errorf("%w: %s", ErrNotFound, id))
	}
	e.hub.close()

	return m.persist(ctx, span, "delete", id, func(ctx context.Context, s store.Store) error {
		if err := s.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return nil
	})
}

// Get returns the list of a conversation.
func (m *Manager) Get(id string) (*List, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.list, nil
}

// IDs returns conversation IDs in creation order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.order)
}

// Summaries returns every conversation with its length, in creation order.
func (m *Manager) Summaries() []Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, Summary{ID: id, Len: m.entries[id].list.Len()})
	}
	return out
}

func (m *Manager) totalMessages() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.entries {
		n += e.list.Len()
	}
	return n
}

// Append adds rec at the end of a conversation and returns the stamped
// record.
func (m *Manager) Append(ctx context.Context, id string, rec message.Record) (message.Record, error) {
	ctx, span := m.start(ctx, "Append", id)
	defer span.End()

	e, err := m.lookup(id)
	if err != nil {
		return message.Record{}, fail(span, err)
	}

	e.write.Lock()
	defer e.write.Unlock()

	stamped := e.list.Append(rec)
	span.SetAttributes(attribute.String("message.kind", stamped.Kind().String()))

	err = m.persist(ctx, span, "append", id, func(ctx context.Context, s store.Store) error {
		return s.Append(ctx, id, stamped)
	})
	return stamped, err
}

// ReplaceAll swaps the whole sequence of a conversation.
func (m *Manager) ReplaceAll(ctx context.Context, id string, recs []message.Record) error {
	ctx, span := m.start(ctx, "ReplaceAll", id)
	defer span.End()
	span.SetAttributes(attribute.Int("message.count", len(recs)))

	e, err := m.lookup(id)
	if err != nil {
		return fail(span, err)
	}

	e.write.Lock()
	defer e.write.Unlock()

	e.list.ReplaceAll(recs)
	stamped := e.list.Records()
	return m.persist(ctx, span, "replace", id, func(ctx context.Context, s store.Store) error {
		return s.Replace(ctx, id, stamped)
	})
}

// RemoveAt removes the record at position. It returns ErrOutOfRange when
// the position does not exist.
func (m *Manager) RemoveAt(ctx context.Context, id string, position int) error {
	ctx, span := m.start(ctx, "RemoveAt", id)
	defer span.End()
	span.SetAttributes(attribute.Int("message.position", position))

	e, err := m.lookup(id)
	if err != nil {
		return fail(span, err)
	}

	e.write.Lock()
	defer e.write.Unlock()

	if !e.list.RemoveAt(position) {
		return fail(span, fmt.Errorf("%w: %s[%d]", ErrOutOfRange, id, position))
	}
	return m.persist(ctx, span, "remove", id, func(ctx context.Context, s store.Store) error {
		return s.RemoveAt(ctx, id, position)
	})
}

// ClearAll empties a conversation. It reports whether anything was removed.
func (m *Manager) ClearAll(ctx context.Context, id string) (bool, error) {
	ctx, span := m.start(ctx, "ClearAll", id)
	defer span.End()

	e, err := m.lookup(id)
	if err != nil {
		return false, fail(span, err)
	}

	e.write.Lock()
	defer e.write.Unlock()

	if !e.list.ClearAll() {
		return false, nil
	}
	err = m.persist(ctx, span, "clear", id, func(ctx context.Context, s store.Store) error {
		return s.Clear(ctx, id)
	})
	return true, err
}

// Load rehydrates every stored conversation. Derived display state is
// recomputed by ingesting the stored records in order. Conversations that
// are already open are replaced.
func (m *Manager) Load(ctx context.Context) error {
	ctx, span := m.start(ctx, "Load", "*")
	defer span.End()

	if m.store == nil {
		return nil
	}
	ids, err := m.store.Conversations(ctx)
	if err != nil {
		return fail(span, fmt.Errorf("conversation: list stored conversations: %w", err))
	}

	total := 0
	for _, id := range ids {
		n, err := m.load(ctx, id)
		if err != nil {
			return fail(span, err)
		}
		total += n
	}

	span.SetAttributes(attribute.Int("conversation.count", len(ids)))
	m.logger.Info("conversations loaded", "conversations", len(ids), "messages", total)
	return nil
}

// load replaces one conversation with its stored records. The read and the
// replace happen under the entry's write lock, so a concurrent mutation is
// either in the stored records or applied after them.
func (m *Manager) load(ctx context.Context, id string) (int, error) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok {
		e = m.newEntry(id)
		m.entries[id] = e
		m.order = append(m.order, id)
	}
	m.mu.Unlock()

	e.write.Lock()
	defer e.write.Unlock()

	recs, err := m.store.Load(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("conversation: load %s: %w", id, err)
	}
	e.list.ReplaceAll(recs)
	return len(recs), nil
}

// RelabelAll refreshes the time labels of every conversation and returns
// the number of rows whose label changed.
func (m *Manager) RelabelAll(ctx context.Context) (int, error) {
	_, span := m.start(ctx, "RelabelAll", "*")
	defer span.End()

	changed := 0
	for _, id := range m.IDs() {
		if err := ctx.Err(); err != nil {
			return changed, fail(span, fmt.Errorf("conversation: relabel cancelled: %w", err))
		}
		e, err := m.lookup(id)
		if err != nil {
			continue // deleted meanwhile
		}
		changed += e.list.Relabel()
	}
	span.SetAttributes(attribute.Int("message.relabeled", changed))
	return changed, nil
}

// Subscribe streams the changes of a conversation. The channel is closed
// when cancel is called or the conversation is deleted.
func (m *Manager) Subscribe(id string) (<-chan Event, func(), error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := e.hub.subscribe()
	return ch, cancel, nil
}

// SubscribeSnapshot is Subscribe plus the rows at the moment the
// subscription starts. Mutations made through the manager are either in the
// rows or on the channel, never both.
func (m *Manager) SubscribeSnapshot(id string) ([]Row, <-chan Event, func(), error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, nil, nil, err
	}
	e.write.Lock()
	defer e.write.Unlock()
	ch, cancel := e.hub.subscribe()
	return e.list.Rows(), ch, cancel, nil
}

// Close ends every subscription.
func (m *Manager) Close() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		e.hub.close()
	}
}
