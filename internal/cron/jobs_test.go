package cron_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/flemzord/chatlist/internal/cron"
	"github.com/flemzord/chatlist/internal/cron/crontest"
)

func TestRelabelJob_Defaults(t *testing.T) {
	t.Parallel()
	j := &cron.RelabelJob{Logger: slog.Default()}
	if j.Name() != "relabel" {
		t.Errorf("name = %q, want %q", j.Name(), "relabel")
	}
	if j.Schedule() != "0 0 * * *" {
		t.Errorf("schedule = %q, want %q", j.Schedule(), "0 0 * * *")
	}
}

func TestRelabelJob_CustomSchedule(t *testing.T) {
	t.Parallel()
	j := &cron.RelabelJob{ScheduleExpr: "*/15 * * * *"}
	if j.Schedule() != "*/15 * * * *" {
		t.Errorf("schedule = %q, want %q", j.Schedule(), "*/15 * * * *")
	}
}

func TestRelabelJob_Run(t *testing.T) {
	t.Parallel()

	r := &crontest.Relabeler{Changed: 4}
	j := &cron.RelabelJob{Relabeler: r, Logger: slog.Default()}

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Calls.Load() != 1 {
		t.Errorf("relabel calls = %d, want 1", r.Calls.Load())
	}
}

func TestRelabelJob_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := &crontest.Relabeler{Err: boom}
	j := &cron.RelabelJob{Relabeler: r, Logger: slog.Default()}

	if err := j.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestStoreCompactionJob_Defaults(t *testing.T) {
	t.Parallel()
	j := &cron.StoreCompactionJob{Logger: slog.Default()}
	if j.Name() != "store_compaction" {
		t.Errorf("name = %q, want %q", j.Name(), "store_compaction")
	}
	if err := cron.ValidateSchedule(j.Schedule()); err != nil {
		t.Errorf("default schedule invalid: %v", err)
	}
}

func TestStoreCompactionJob_Run(t *testing.T) {
	t.Parallel()
	c := &crontest.Compactor{}
	j := &cron.StoreCompactionJob{Store: c, Logger: slog.Default()}
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Calls.Load() != 1 {
		t.Errorf("compact calls = %d, want 1", c.Calls.Load())
	}
}

func TestStoreCompactionJob_CancelledContext(t *testing.T) {
	t.Parallel()
	c := &crontest.Compactor{}
	j := &cron.StoreCompactionJob{Store: c, Logger: slog.Default()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := j.Run(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if c.Calls.Load() != 0 {
		t.Error("store should not be compacted after cancellation")
	}
}

func TestValidateSchedule(t *testing.T) {
	t.Parallel()
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"0 0 * * *", false},
		{"*/5 * * * *", false},
		{"invalid", true},
		{"", true},
		{"0 25 * * *", true},
		{"0 0 0 * * *", true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			err := cron.ValidateSchedule(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSchedule(%q) err = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
		})
	}
}
