// Package conversation owns ordered message lists and keeps their derived
// display state (timestamp headers, sender names, time labels) consistent
// across mutations. Every structural change is reported to an Observer so a
// presentation layer can re-render incrementally.
package conversation

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/flemzord/chatlist/internal/grouping"
	"github.com/flemzord/chatlist/internal/timefmt"
	"github.com/flemzord/chatlist/pkg/message"
)

// Options configures a List. The zero value is usable.
type Options struct {
	// Engine holds the grouping threshold.
	Engine grouping.Engine

	// Formatter parses timestamps and renders time labels.
	Formatter *timefmt.Formatter

	// Observer receives structural changes. Optional.
	Observer Observer

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Row is a record together with its position and resolved kind.
type Row struct {
	Position int
	Kind     message.Kind
	Record   message.Record
}

// List is an ordered conversation. All methods serialize on a single lock,
// so derived state always advances in call order.
type List struct {
	mu        sync.Mutex
	records   []message.Record
	kinds     []message.Kind
	cache     *grouping.Cache
	formatter *timefmt.Formatter
	observer  Observer
	logger    *slog.Logger

	showProfileImages bool

	onClick     ClickListener
	onLongClick LongClickListener
	swipe       SwipeListener
}

// NewList creates an empty list.
func NewList(opts Options) *List {
	l := &List{
		cache:             grouping.NewCache(opts.Engine),
		formatter:         opts.Formatter,
		observer:          opts.Observer,
		logger:            opts.Logger,
		showProfileImages: true,
	}
	if l.formatter == nil {
		l.formatter = &timefmt.Formatter{}
	}
	if l.observer == nil {
		l.observer = nopObserver{}
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// SetObserver replaces the observer. A nil observer discards changes.
func (l *List) SetObserver(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if o == nil {
		o = nopObserver{}
	}
	l.observer = o
}

// ingest stamps rec against the current cache tail and returns its kind.
// Unparsable timestamps count as 0 ms and keep their raw text as label.
func (l *List) ingest(rec *message.Record) message.Kind {
	millis, err := l.formatter.Parse(rec.TimestampRaw)
	if err != nil {
		l.logger.Debug("timestamp not parsable, grouping as 0", "timestamp", rec.TimestampRaw)
		rec.TimeLabel = rec.TimestampRaw
	} else {
		rec.TimeLabel = l.formatter.Format(millis)
	}
	l.cache.Stamp(rec, millis)
	return rec.Kind()
}

// ReplaceAll discards the current contents and ingests records in order.
// The caller's slice is not modified.
func (l *List) ReplaceAll(records []message.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cache.Reset()
	l.records = slices.Clone(records)
	l.kinds = make([]message.Kind, len(l.records))
	l.showProfileImages = true
	for i := range l.records {
		l.kinds[i] = l.ingest(&l.records[i])
		if !l.records[i].HasProfileImage() {
			l.showProfileImages = false
		}
	}

	l.observer.Notify(Change{Op: OpReset})
}

// Append stamps rec against the current last record, adds it at the end and
// returns the stamped copy. Records with neither text nor image are logged
// and appended anyway.
func (l *List) Append(rec message.Record) message.Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.IsEmpty() {
		l.logger.Warn("appending message without text or image", "id", rec.ID)
	}

	kind := l.ingest(&rec)
	l.records = append(l.records, rec)
	l.kinds = append(l.kinds, kind)
	l.showProfileImages = rec.HasProfileImage()

	l.observer.Notify(Change{Op: OpInsert, Index: len(l.records) - 1})
	return rec
}

// RemoveAt removes the record at position and repairs the record that moves
// into its place: it inherits a timestamp header the removed record showed
// and its sender name is compared against its new neighbour. RemoveAt
// reports false, and changes nothing, when position is out of range.
func (l *List) RemoveAt(position int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if position < 0 || position >= len(l.records) {
		return false
	}

	removed := l.records[position]
	l.records = slices.Delete(l.records, position, position+1)
	l.kinds = slices.Delete(l.kinds, position, position+1)
	l.cache.RemoveAt(position)

	l.observer.Notify(Change{Op: OpRemove, Index: position})

	if position < len(l.records) {
		if l.cache.Repair(&l.records[position], position, removed.TimeVisible) {
			l.observer.Notify(Change{Op: OpChange, Index: position})
		}
	}
	return true
}

// ClearAll removes every record. It reports false, and notifies nothing,
// when the list is already empty.
func (l *List) ClearAll() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.records)
	if n == 0 {
		return false
	}
	l.records = nil
	l.kinds = nil
	l.cache.Reset()

	l.observer.Notify(Change{Op: OpRemoveRange, Index: 0, Count: n})
	return true
}

// Relabel recomputes every time label against the formatter's clock and
// reports a change for each row whose label moved (e.g. "Today" becoming
// "Yesterday" after midnight). It returns the number of changed rows.
func (l *List) Relabel() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	changed := 0
	for i := range l.records {
		rec := &l.records[i]
		label := l.formatter.Label(rec.TimestampRaw)
		if label == rec.TimeLabel {
			continue
		}
		rec.TimeLabel = label
		changed++
		l.observer.Notify(Change{Op: OpChange, Index: i})
	}
	return changed
}

// Len returns the number of records.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// At returns the record at position i.
func (l *List) At(i int) (message.Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.at(i)
}

// Records returns a copy of the sequence. Payload byte slices are shared.
func (l *List) Records() []message.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.records)
}

// Rows returns every record with its position and kind.
func (l *List) Rows() []Row {
	l.mu.Lock()
	defer l.mu.Unlock()
	rows := make([]Row, len(l.records))
	for i, rec := range l.records {
		rows[i] = Row{Position: i, Kind: l.kinds[i], Record: rec}
	}
	return rows
}

// ShowProfileImages reports whether the presentation layer should reserve
// room for avatars. After ReplaceAll it is true when every record has a
// profile image; after Append it follows the appended record.
func (l *List) ShowProfileImages() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.showProfileImages
}
