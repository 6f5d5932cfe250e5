package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flemzord/chatlist/internal/store"
	"github.com/flemzord/chatlist/pkg/message"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store implements store.Store on SQLite. Records keep their list position
// through a per-conversation seq column.
type Store struct {
	db *sql.DB
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func notFound(conversationID string) error {
	return fmt.Errorf("conversation %s: %w", conversationID, store.ErrNotFound)
}

func ensureExists(ctx context.Context, q querier, conversationID string) error {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM conversations WHERE id = ?", conversationID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(conversationID)
	}
	if err != nil {
		return fmt.Errorf("sqlite: lookup conversation: %w", err)
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Create registers an empty conversation.
func (s *Store) Create(ctx context.Context, conversationID string) error {
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO conversations (id) VALUES (?)", conversationID); err != nil {
		return fmt.Errorf("sqlite: create conversation: %w", err)
	}
	return nil
}

// Conversations returns all conversation IDs in creation order.
func (s *Store) Conversations(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM conversations ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("sqlite: list conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scan conversation: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list conversations rows: %w", err)
	}
	return ids, nil
}

// Delete removes a conversation and all its records.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", conversationID)
		if err != nil {
			return fmt.Errorf("sqlite: delete conversation: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound(conversationID)
		}
		// Messages go with the conversation through ON DELETE CASCADE.
		return nil
	})
}

const insertMessage = `
	INSERT INTO messages (conversation_id, seq, uid, sender_name, profile_image, text, image,
	                      timestamp_raw, is_sender, time_visible)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func insert(ctx context.Context, tx *sql.Tx, conversationID string, seq int64, rec message.Record) error {
	_, err := tx.ExecContext(ctx, insertMessage,
		conversationID, seq, rec.ID, rec.SenderName, nullBlob(rec.ProfileImage),
		rec.Text(), nullBlob(rec.Image()), rec.TimestampRaw,
		boolInt(rec.IsSender), boolInt(rec.TimeVisible),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert message: %w", err)
	}
	return nil
}

// Append adds a record at the end of a conversation.
func (s *Store) Append(ctx context.Context, conversationID string, rec message.Record) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureExists(ctx, tx, conversationID); err != nil {
			return err
		}
		var seq int64
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE conversation_id = ?",
			conversationID).Scan(&seq); err != nil {
			return fmt.Errorf("sqlite: next seq: %w", err)
		}
		return insert(ctx, tx, conversationID, seq, rec)
	})
}

// RemoveAt removes the record at position. Positions are ranks in seq
// order, so gaps left by earlier removals are harmless.
func (s *Store) RemoveAt(ctx context.Context, conversationID string, position int) error {
	if position < 0 {
		return fmt.Errorf("conversation %s position %d: %w", conversationID, position, store.ErrNotFound)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureExists(ctx, tx, conversationID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			DELETE FROM messages
			WHERE conversation_id = ? AND seq = (
				SELECT seq FROM messages WHERE conversation_id = ?
				ORDER BY seq LIMIT 1 OFFSET ?
			)`,
			conversationID, conversationID, position,
		)
		if err != nil {
			return fmt.Errorf("sqlite: remove message: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("conversation %s position %d: %w", conversationID, position, store.ErrNotFound)
		}
		return nil
	})
}

// Clear removes every record but keeps the conversation.
func (s *Store) Clear(ctx context.Context, conversationID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureExists(ctx, tx, conversationID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = ?", conversationID); err != nil {
			return fmt.Errorf("sqlite: clear messages: %w", err)
		}
		return nil
	})
}

// Replace swaps the whole record sequence of a conversation.
func (s *Store) Replace(ctx context.Context, conversationID string, recs []message.Record) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureExists(ctx, tx, conversationID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = ?", conversationID); err != nil {
			return fmt.Errorf("sqlite: clear messages: %w", err)
		}
		for i, rec := range recs {
			if err := insert(ctx, tx, conversationID, int64(i+1), rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load returns the records of a conversation in order. NameVisible and
// TimeLabel are not stored and come back zero.
func (s *Store) Load(ctx context.Context, conversationID string) ([]message.Record, error) {
	if err := ensureExists(ctx, s.db, conversationID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT uid, sender_name, profile_image, text, image, timestamp_raw, is_sender, time_visible
		FROM messages
		WHERE conversation_id = ?
		ORDER BY seq`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recs []message.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: load messages rows: %w", err)
	}
	return recs, nil
}

// Len returns the number of records in a conversation.
func (s *Store) Len(ctx context.Context, conversationID string) (int, error) {
	if err := ensureExists(ctx, s.db, conversationID); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM messages WHERE conversation_id = ?", conversationID).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count messages: %w", err)
	}
	return n, nil
}

// Compact reclaims free pages and refreshes the query planner statistics.
func (s *Store) Compact(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		return fmt.Errorf("sqlite: optimize: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("sqlite: vacuum: %w", err)
	}
	return nil
}

func scanRecord(rows *sql.Rows) (message.Record, error) {
	var (
		rec         message.Record
		profile     []byte
		text        string
		image       []byte
		isSender    int
		timeVisible int
	)
	if err := rows.Scan(&rec.ID, &rec.SenderName, &profile, &text, &image,
		&rec.TimestampRaw, &isSender, &timeVisible); err != nil {
		return message.Record{}, fmt.Errorf("sqlite: scan message: %w", err)
	}

	if len(profile) > 0 {
		rec.ProfileImage = profile
	}
	if len(image) > 0 {
		rec.SetImage(image)
	} else {
		rec.SetText(text)
	}
	rec.IsSender = isSender != 0
	rec.TimeVisible = timeVisible != 0
	return rec, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullBlob stores absent byte payloads as NULL rather than an empty blob.
func nullBlob(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
