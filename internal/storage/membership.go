// Package storage provides the sqlite-backed participant-membership source
// the authorization gate reads. The relay itself never writes rows during
// signaling; the write helpers exist for provisioning and tests.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/driftapp/callrelay/internal/domain"
)

type Store struct {
	db *sql.DB
}

// Open opens or creates the membership database at path and bootstraps the
// schema. Pass ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL and a busy timeout for concurrency with the writer that owns
	// these tables in production.
	if _, err := db.Exec(`
		PRAGMA foreign_keys = ON;
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS calls (
			id              TEXT PRIMARY KEY,
			host_id         TEXT NOT NULL,
			conversation_id TEXT DEFAULT '',
			created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS call_participants (
			call_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			PRIMARY KEY (call_id, user_id)
		);
		CREATE TABLE IF NOT EXISTS conversation_participants (
			conversation_id TEXT NOT NULL,
			user_id         TEXT NOT NULL,
			PRIMARY KEY (conversation_id, user_id)
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create membership tables: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) IsCallParticipant(ctx context.Context, callID string, userID domain.UserID) (bool, error) {
	return s.exists(ctx,
		`SELECT EXISTS(SELECT 1 FROM call_participants WHERE call_id = ? AND user_id = ?)`,
		callID, string(userID))
}

func (s *Store) IsConversationParticipant(ctx context.Context, conversationID string, userID domain.UserID) (bool, error) {
	return s.exists(ctx,
		`SELECT EXISTS(SELECT 1 FROM conversation_participants WHERE conversation_id = ? AND user_id = ?)`,
		conversationID, string(userID))
}

func (s *Store) CallInfo(ctx context.Context, callID string) (domain.UserID, string, bool, error) {
	var host, conv string
	err := s.db.QueryRowContext(ctx,
		`SELECT host_id, conversation_id FROM calls WHERE id = ?`, callID,
	).Scan(&host, &conv)
	if err == sql.ErrNoRows {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("call lookup: %w", err)
	}
	return domain.UserID(host), conv, true, nil
}

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("membership lookup: %w", err)
	}
	return n == 1, nil
}

// UpsertCall records a call with its host and optional conversation.
func (s *Store) UpsertCall(ctx context.Context, callID string, host domain.UserID, conversationID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calls (id, host_id, conversation_id) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET host_id = excluded.host_id, conversation_id = excluded.conversation_id`,
		callID, string(host), conversationID)
	return err
}

func (s *Store) AddCallParticipant(ctx context.Context, callID string, userID domain.UserID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO call_participants (call_id, user_id) VALUES (?, ?)`,
		callID, string(userID))
	return err
}

func (s *Store) AddConversationParticipant(ctx context.Context, conversationID string, userID domain.UserID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO conversation_participants (conversation_id, user_id) VALUES (?, ?)`,
		conversationID, string(userID))
	return err
}
