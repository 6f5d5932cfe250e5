package sqlite

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	defaultBusyTimeout = 5 * time.Second
	defaultDBFile      = "chatlist.db"
	defaultJournal     = "wal"
)

var journalModes = []string{"wal", "delete", "truncate", "persist"}

// Config is the store.sqlite section.
type Config struct {
	// Path defaults to chatlist.db in the data directory.
	Path string `yaml:"path"`

	// Journal is the SQLite journal mode. WAL lets readers proceed while
	// a write is in progress.
	Journal string `yaml:"journal"`

	// BusyTimeout bounds the wait for a lock held by another process.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

func (c *Config) defaults() {
	c.Journal = strings.ToLower(cmp.Or(c.Journal, defaultJournal))
	c.BusyTimeout = cmp.Or(c.BusyTimeout, defaultBusyTimeout)
}

func (c *Config) validate() error {
	switch {
	case c.BusyTimeout < 0:
		return fmt.Errorf("sqlite: busy_timeout must be non-negative, got %s", c.BusyTimeout)
	case !slices.Contains(journalModes, c.Journal):
		return fmt.Errorf("sqlite: journal %q is not one of %s", c.Journal, strings.Join(journalModes, ", "))
	}
	return nil
}

// dsn carries the pragmas in the connection string so every pooled
// connection gets them, not just the first.
func (c *Config) dsn() string {
	q := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", c.BusyTimeout.Milliseconds()),
		fmt.Sprintf("_pragma=journal_mode(%s)", c.Journal),
		"_pragma=foreign_keys(1)",
		"_txlock=immediate",
	}
	return "file:" + c.Path + "?" + strings.Join(q, "&")
}
