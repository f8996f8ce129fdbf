// ABOUTME: Interaction persistence operations
// ABOUTME: Append agent events, list them, and mark questions responded

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RecordInteraction appends an agent-reported event. The agent and session
// references, type, and content are validated before the write. The row's
// generated ID is written back into in.ID.
func (s *SQLiteStore) RecordInteraction(ctx context.Context, in *Interaction) error {
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now().UTC()
	}

	if in.AgentID == "" || in.SessionID == "" {
		return constraintErr("interaction: agent_id and session_id are required")
	}
	if !in.Type.valid() {
		return constraintErr("interaction: invalid type %q", in.Type)
	}
	if in.Content == "" {
		return constraintErr("interaction: content is required")
	}

	query := `
		INSERT INTO interactions (agent_id, session_id, type, content, metadata,
		                          requires_response, responded_at, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		in.AgentID,
		in.SessionID,
		string(in.Type),
		in.Content,
		nullString(in.Metadata),
		in.RequiresResponse,
		nullTime(in.RespondedAt),
		formatTime(in.Timestamp),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return constraintErr("inserting interaction for agent %s: %v", in.AgentID, err)
		}
		return fmt.Errorf("inserting interaction: %w", err)
	}

	in.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting interaction id: %w", err)
	}

	s.logger.Debug("recorded interaction", "id", in.ID, "agent_id", in.AgentID, "type", in.Type)
	return nil
}

// ListAgentInteractions returns an agent's interactions in chronological
// order. If limit is 0 or negative, all interactions are returned.
func (s *SQLiteStore) ListAgentInteractions(ctx context.Context, agentID string, limit int) ([]*Interaction, error) {
	query := `
		SELECT id, agent_id, session_id, type, content, metadata,
		       requires_response, responded_at, timestamp
		FROM interactions
		WHERE agent_id = ?
		ORDER BY timestamp ASC, id ASC
	`
	args := []any{agentID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return s.queryInteractions(ctx, query, args...)
}

// ListPendingQuestions returns a session's unanswered questions: type
// question, requires_response set, responded_at unset.
func (s *SQLiteStore) ListPendingQuestions(ctx context.Context, sessionID string) ([]*Interaction, error) {
	query := `
		SELECT id, agent_id, session_id, type, content, metadata,
		       requires_response, responded_at, timestamp
		FROM interactions
		WHERE session_id = ? AND type = 'question' AND requires_response = TRUE AND responded_at IS NULL
		ORDER BY timestamp ASC, id ASC
	`
	return s.queryInteractions(ctx, query, sessionID)
}

// MarkResponded records the response time on an interaction. It is the only
// post-creation mutation an interaction supports, and it is set once: marking
// an already-responded interaction is a no-op for responded_at's value.
// Returns ErrNotFound if the interaction doesn't exist.
func (s *SQLiteStore) MarkResponded(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE interactions SET responded_at = ? WHERE id = ? AND responded_at IS NULL`,
		formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("marking interaction responded: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Distinguish a missing row from an already-responded one.
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM interactions WHERE id = ?`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("checking interaction: %w", err)
		}
		return nil
	}

	s.logger.Debug("marked interaction responded", "id", id)
	return nil
}

func (s *SQLiteStore) queryInteractions(ctx context.Context, query string, args ...any) ([]*Interaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying interactions: %w", err)
	}
	defer rows.Close()

	var interactions []*Interaction
	for rows.Next() {
		in, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning interaction row: %w", err)
		}
		interactions = append(interactions, in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating interaction rows: %w", err)
	}
	return interactions, nil
}

func scanInteraction(row scanner) (*Interaction, error) {
	var in Interaction
	var inType, timestamp string
	var metadata, respondedAt sql.NullString

	err := row.Scan(
		&in.ID,
		&in.AgentID,
		&in.SessionID,
		&inType,
		&in.Content,
		&metadata,
		&in.RequiresResponse,
		&respondedAt,
		&timestamp,
	)
	if err != nil {
		return nil, err
	}

	in.Type = InteractionType(inType)
	in.Metadata = metadata.String

	in.RespondedAt, err = parseNullTime(respondedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing responded_at: %w", err)
	}
	in.Timestamp, err = parseTime(timestamp)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp: %w", err)
	}

	return &in, nil
}
