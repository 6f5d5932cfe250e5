// Package cron runs the periodic maintenance of chatlist: refreshing
// relative time labels after midnight and compacting the message store.
package cron

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Job is a named task on a 5-field cron schedule.
type Job interface {
	Name() string
	Schedule() string
	Run(ctx context.Context) error
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a 5-field cron expression such as "0 0 * * *".
// Descriptors like "@daily" are not accepted.
func ValidateSchedule(expr string) error {
	_, err := parser.Parse(expr)
	return err
}

// slogAdapter feeds robfig/cron's internal logging into slog. Its chatter
// goes to debug, except for skipped ticks.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Info(msg string, keysAndValues ...any) {
	if msg == "skip" {
		a.logger.Warn("cron: previous run still active, tick skipped", keysAndValues...)
		return
	}
	a.logger.Debug("cron: "+msg, keysAndValues...)
}

func (a slogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
