// ABOUTME: Session persistence operations
// ABOUTME: Insert, read, and the single permitted status mutation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateSession inserts a new session. A missing ID is generated, status
// defaults to active, created_by to "user", and started_at to now. The
// prompt is required and the status must be in its declared domain.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.Status == "" {
		session.Status = SessionActive
	}
	if session.CreatedBy == "" {
		session.CreatedBy = "user"
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}

	if session.Prompt == "" {
		return constraintErr("session %s: prompt is required", session.ID)
	}
	if !session.Status.valid() {
		return constraintErr("session %s: invalid status %q", session.ID, session.Status)
	}

	query := `
		INSERT INTO sessions (id, name, prompt, status, agents_requested, started_at, completed_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		nullString(session.Name),
		session.Prompt,
		string(session.Status),
		session.AgentsRequested,
		formatTime(session.StartedAt),
		nullTime(session.CompletedAt),
		session.CreatedBy,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return constraintErr("inserting session %s: %v", session.ID, err)
		}
		return fmt.Errorf("inserting session: %w", err)
	}

	s.logger.Debug("created session", "id", session.ID, "status", session.Status)
	return nil
}

// GetSession retrieves a session by ID.
// Returns ErrNotFound if the session doesn't exist.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	query := `
		SELECT id, name, prompt, status, agents_requested, started_at, completed_at, created_by
		FROM sessions
		WHERE id = ?
	`

	session, err := scanSession(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return session, nil
}

// ListSessions retrieves sessions ordered by most recently started.
// If limit is 0 or negative, a default limit of 100 is used.
func (s *SQLiteStore) ListSessions(ctx context.Context, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, name, prompt, status, agents_requested, started_at, completed_at, created_by
		FROM sessions
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session rows: %w", err)
	}
	return sessions, nil
}

// UpdateSessionStatus changes a session's status. On the first transition
// into completed or failed, completed_at is set; it is never overwritten.
// Returns ErrNotFound if the session doesn't exist.
func (s *SQLiteStore) UpdateSessionStatus(ctx context.Context, id string, status SessionStatus) error {
	if !status.valid() {
		return constraintErr("session %s: invalid status %q", id, status)
	}

	query := `
		UPDATE sessions
		SET status = ?,
		    completed_at = CASE
		        WHEN ? AND completed_at IS NULL THEN ?
		        ELSE completed_at
		    END
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		string(status),
		status.terminal(),
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return fmt.Errorf("updating session status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated session status", "id", id, "status", status)
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var session Session
	var name, completedAt sql.NullString
	var status, startedAt string

	err := row.Scan(
		&session.ID,
		&name,
		&session.Prompt,
		&status,
		&session.AgentsRequested,
		&startedAt,
		&completedAt,
		&session.CreatedBy,
	)
	if err != nil {
		return nil, err
	}

	session.Name = name.String
	session.Status = SessionStatus(status)

	session.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	session.CompletedAt, err = parseNullTime(completedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing completed_at: %w", err)
	}

	return &session, nil
}
