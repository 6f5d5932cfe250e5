// Package crontest holds doubles for the cron package.
package crontest

import (
	"context"
	"sync/atomic"

	"github.com/flemzord/chatlist/internal/cron"
)

var (
	_ cron.Job       = (*Job)(nil)
	_ cron.Relabeler = (*Relabeler)(nil)
	_ cron.Compactor = (*Compactor)(nil)
)

// Job runs Fn, or does nothing when Fn is nil, and counts its runs.
type Job struct {
	ID   string
	Spec string
	Fn   func(ctx context.Context) error

	runs atomic.Int32
}

func (j *Job) Name() string     { return j.ID }
func (j *Job) Schedule() string { return j.Spec }

func (j *Job) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.Fn == nil {
		return nil
	}
	return j.Fn(ctx)
}

// Runs is the number of completed or in-flight runs.
func (j *Job) Runs() int { return int(j.runs.Load()) }

// Relabeler reports Changed relabeled rows, or Err.
type Relabeler struct {
	Changed int
	Err     error
	Calls   atomic.Int32
}

func (r *Relabeler) RelabelAll(context.Context) (int, error) {
	r.Calls.Add(1)
	if r.Err != nil {
		return 0, r.Err
	}
	return r.Changed, nil
}

// Compactor fails with Err when it is set.
type Compactor struct {
	Err   error
	Calls atomic.Int32
}

func (c *Compactor) Compact(context.Context) error {
	c.Calls.Add(1)
	return c.Err
}
