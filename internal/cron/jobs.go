package cron

import (
	"context"
	"fmt"
	"log/slog"
)

// Relabeler is the subset of conversation.Manager needed by RelabelJob.
// Defined here to avoid a dependency on the conversation package.
type Relabeler interface {
	RelabelAll(ctx context.Context) (int, error)
}

// Compactor is implemented by stores that can reclaim space.
type Compactor interface {
	Compact(ctx context.Context) error
}

// RelabelJob refreshes relative time labels ("Today", "Yesterday") after
// the calendar day changes.
type RelabelJob struct {
	Relabeler    Relabeler
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "0 0 * * *"
}

// Compile-time interface check.
var _ Job = (*RelabelJob)(nil)

// Name implements Job.
func (j *RelabelJob) Name() string {
	return "relabel"
}

// Schedule implements Job.
func (j *RelabelJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 0 * * *"
}

// Run relabels every open conversation.
func (j *RelabelJob) Run(ctx context.Context) error {
	changed, err := j.Relabeler.RelabelAll(ctx)
	if err != nil {
		return fmt.Errorf("cron: relabel: %w", err)
	}
	if changed > 0 {
		j.Logger.Info("cron: relabeled messages", "count", changed)
	}
	return nil
}

// StoreCompactionJob periodically compacts the message store.
type StoreCompactionJob struct {
	Store        Compactor
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "30 3 * * 0"
}

// Compile-time interface check.
var _ Job = (*StoreCompactionJob)(nil)

// Name implements Job.
func (j *StoreCompactionJob) Name() string {
	return "store_compaction"
}

// Schedule implements Job.
func (j *StoreCompactionJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "30 3 * * 0"
}

// Run compacts the store.
func (j *StoreCompactionJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: store compaction cancelled: %w", ctx.Err())
	}
	if err := j.Store.Compact(ctx); err != nil {
		return fmt.Errorf("cron: store compaction: %w", err)
	}
	j.Logger.Debug("cron: store compacted")
	return nil
}
