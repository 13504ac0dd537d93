// Package storage provides the SQLite audit trail for confirmed and
// denied write operations.
//
// Conversation state itself is process-memory-resident by design; the
// audit log records only confirmation decisions and their outcomes so
// mutations to the spreadsheet can be reviewed after the fact.
//
// Information Hiding:
// - SQLite connection management hidden behind the type
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Decision records how a pending write was resolved.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionDenied   Decision = "denied"
)

// Entry is one resolved write invocation.
type Entry struct {
	ID             string
	ConversationID string
	InvocationID   string
	Tool           string
	Input          string
	Decision       Decision
	Outcome        string
	IsError        bool
	CreatedAt      int64
}

// NewEntry creates an audit entry with a fresh id and timestamp.
func NewEntry(conversationID, invocationID, tool, input string, decision Decision, outcome string, isError bool) Entry {
	return Entry{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		InvocationID:   invocationID,
		Tool:           tool,
		Input:          input,
		Decision:       decision,
		Outcome:        outcome,
		IsError:        isError,
		CreatedAt:      time.Now().Unix(),
	}
}

// AuditLog stores resolved write operations in a SQLite database file.
type AuditLog struct {
	db *sql.DB
}

// OpenAuditLog opens or creates the audit database at the given path.
// Creates parent directories if they don't exist.
func OpenAuditLog(path string) (*AuditLog, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create audit log directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	log := &AuditLog{db: db}
	if err := log.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}
	return log, nil
}

// NewAuditLogInMemory creates an in-memory audit log (useful for testing).
func NewAuditLogInMemory() (*AuditLog, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory audit log: %w", err)
	}

	log := &AuditLog{db: db}
	if err := log.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}
	return log, nil
}

// Close closes the database connection.
func (l *AuditLog) Close() error {
	return l.db.Close()
}

func (l *AuditLog) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS write_audit (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			invocation_id TEXT NOT NULL,
			tool TEXT NOT NULL,
			input TEXT NOT NULL,
			decision TEXT NOT NULL,
			outcome TEXT NOT NULL,
			is_error INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_write_audit_conversation
		ON write_audit(conversation_id, created_at DESC);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Record stores one resolved write operation.
func (l *AuditLog) Record(ctx context.Context, entry Entry) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO write_audit
			(id, conversation_id, invocation_id, tool, input, decision, outcome, is_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ConversationID, entry.InvocationID, entry.Tool,
		entry.Input, string(entry.Decision), entry.Outcome,
		boolToInt(entry.IsError), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// Recent returns the most recent entries for a conversation, newest first.
func (l *AuditLog) Recent(ctx context.Context, conversationID string, limit int) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, conversation_id, invocation_id, tool, input, decision, outcome, is_error, created_at
		FROM write_audit
		WHERE conversation_id = ?
		ORDER BY created_at DESC, id
		LIMIT ?`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var decision string
		var isError int
		if err := rows.Scan(&e.ID, &e.ConversationID, &e.InvocationID, &e.Tool,
			&e.Input, &decision, &e.Outcome, &isError, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Decision = Decision(decision)
		e.IsError = isError != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
