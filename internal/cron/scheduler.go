package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs jobs on their schedules in one time zone. A job never
// overlaps itself: a tick that arrives while the previous run is still
// going is dropped. Panics in a job are logged and contained.
//
// A Scheduler runs once. After Stop, build a new one.
type Scheduler struct {
	logger *slog.Logger
	loc    *time.Location
	chain  cron.Chain

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries []*entry
	runner  *cron.Cron
}

type entry struct {
	job     Job
	guarded cron.Job
	id      cron.EntryID
}

// NewScheduler returns a scheduler evaluating schedules in loc, or the
// local zone when loc is nil.
func NewScheduler(logger *slog.Logger, loc *time.Location) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	adapter := slogAdapter{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger: logger,
		loc:    loc,
		chain:  cron.NewChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers j. Names must be unique and schedules valid; both are
// checked here so Start cannot fail on a bad job.
func (s *Scheduler) Add(j Job) error {
	if err := ValidateSchedule(j.Schedule()); err != nil {
		return fmt.Errorf("cron: job %q: %w", j.Name(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runner != nil {
		return fmt.Errorf("cron: job %q added after start", j.Name())
	}
	for _, e := range s.entries {
		if e.job.Name() == j.Name() {
			return fmt.Errorf("cron: duplicate job name %q", j.Name())
		}
	}

	e := &entry{job: j}
	e.guarded = s.chain.Then(cron.FuncJob(func() { s.run(e.job) }))
	s.entries = append(s.entries, e)
	return nil
}

func (s *Scheduler) run(j Job) {
	start := time.Now()
	if err := j.Run(s.ctx); err != nil {
		s.logger.Error("cron: job failed", "job", j.Name(), "error", err)
		return
	}
	s.logger.Debug("cron: job done", "job", j.Name(), "took", time.Since(start))
}

// Jobs lists the job names in the order they were added.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		names = append(names, e.job.Name())
	}
	return names
}

// Start begins ticking.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.ctx.Err() != nil:
		return errors.New("cron: scheduler already stopped")
	case s.runner != nil:
		return errors.New("cron: scheduler already started")
	}

	runner := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(s.loc),
		cron.WithLogger(slogAdapter{logger: s.logger}),
	)
	for _, e := range s.entries {
		id, err := runner.AddJob(e.job.Schedule(), e.guarded)
		if err != nil {
			return fmt.Errorf("cron: job %q: %w", e.job.Name(), err)
		}
		e.id = id
	}
	runner.Start()
	s.runner = runner
	s.logger.Info("cron: scheduler started", "jobs", len(s.entries), "location", s.loc.String())
	return nil
}

// Next reports when the named job fires next. It is false before Start
// and for unknown names.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runner == nil {
		return time.Time{}, false
	}
	for _, e := range s.entries {
		if e.job.Name() == name {
			return s.runner.Entry(e.id).Next, true
		}
	}
	return time.Time{}, false
}

// Trigger runs the named job now, through the same overlap guard as
// scheduled ticks, and waits for it. It reports false for unknown names.
func (s *Scheduler) Trigger(name string) bool {
	s.mu.Lock()
	var guarded cron.Job
	for _, e := range s.entries {
		if e.job.Name() == name {
			guarded = e.guarded
		}
	}
	s.mu.Unlock()

	if guarded == nil {
		return false
	}
	guarded.Run()
	return true
}

// Stop cancels the context handed to running jobs and waits for them, up
// to the deadline of ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	runner := s.runner
	s.mu.Unlock()
	if runner == nil {
		return nil
	}

	select {
	case <-runner.Stop().Done():
		s.logger.Info("cron: scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cron: waiting for running jobs: %w", ctx.Err())
	}
}
