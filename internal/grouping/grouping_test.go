package grouping

import (
	"testing"
	"time"
)

func TestEngine_TimeVisible(t *testing.T) {
	t.Parallel()

	const minute = int64(60_000)
	tests := []struct {
		name     string
		gap      time.Duration
		position int
		millis   int64
		prev     int64
		want     bool
	}{
		{"first record", 0, 0, 0, 0, true},
		{"first record ignores prev", 0, 0, 5, 1_000_000, true},
		{"within gap", 0, 1, 5 * minute, 0, false},
		{"exact gap", 0, 1, 10 * minute, 0, false},
		{"one past gap", 0, 1, 10*minute + 1, 0, true},
		{"unparsable after valid", 0, 1, 0, 1_700_000_000_000, false},
		{"valid after unparsable", 0, 1, 1_700_000_000_000, 0, true},
		{"both unparsable", 0, 3, 0, 0, false},
		{"custom gap", time.Minute, 1, 2 * minute, 0, true},
		{"negative gap uses default", -time.Second, 1, 5 * minute, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Engine{Gap: tt.gap}
			if got := e.TimeVisible(tt.position, tt.millis, tt.prev); got != tt.want {
				t.Errorf("TimeVisible(%d, %d, %d) = %v, want %v", tt.position, tt.millis, tt.prev, got, tt.want)
			}
		})
	}
}

func TestNameVisible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		position int
		isSender bool
		cur      string
		prev     string
		want     bool
	}{
		{"sent never shows", 0, true, "Alice", "", false},
		{"empty name never shows", 0, false, "", "", false},
		{"first received", 0, false, "Alice", "", true},
		{"same sender", 1, false, "Alice", "Alice", false},
		{"same sender different case", 1, false, "ALICE", "alice", false},
		{"unicode fold", 1, false, "ÉLODIE", "élodie", false},
		{"different sender", 1, false, "Bob", "Alice", true},
		{"after empty name", 1, false, "Alice", "", true},
		{"sent after received", 1, true, "Alice", "Bob", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NameVisible(tt.position, tt.isSender, tt.cur, tt.prev); got != tt.want {
				t.Errorf("NameVisible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngine_Evaluate(t *testing.T) {
	t.Parallel()

	var e Engine
	got := e.Evaluate(Input{
		Position:   2,
		Millis:     20 * 60_000,
		PrevMillis: 5 * 60_000,
		Name:       "Bob",
		PrevName:   "Alice",
	})
	want := Flags{TimeVisible: true, NameVisible: true}
	if got != want {
		t.Errorf("Evaluate = %+v, want %+v", got, want)
	}
}
