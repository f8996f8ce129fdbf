// ABOUTME: FileChange persistence operations
// ABOUTME: Append-only records of filesystem modifications attributed to agents

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RecordFileChange appends a file change record. Rows are immutable once
// written. The agent and session references, change type, and line counts
// are validated before the write. The generated ID is written back into fc.ID.
func (s *SQLiteStore) RecordFileChange(ctx context.Context, fc *FileChange) error {
	if fc.Timestamp.IsZero() {
		fc.Timestamp = time.Now().UTC()
	}

	if fc.AgentID == "" || fc.SessionID == "" {
		return constraintErr("file change: agent_id and session_id are required")
	}
	if fc.FilePath == "" {
		return constraintErr("file change: file_path is required")
	}
	if !fc.Type.valid() {
		return constraintErr("file change %s: invalid change_type %q", fc.FilePath, fc.Type)
	}
	if fc.LinesAdded < 0 || fc.LinesRemoved < 0 {
		return constraintErr("file change %s: line counts must be non-negative", fc.FilePath)
	}

	query := `
		INSERT INTO file_changes (agent_id, session_id, file_path, change_type,
		                          lines_added, lines_removed, commit_hash, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		fc.AgentID,
		fc.SessionID,
		fc.FilePath,
		string(fc.Type),
		fc.LinesAdded,
		fc.LinesRemoved,
		nullString(fc.CommitHash),
		formatTime(fc.Timestamp),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return constraintErr("inserting file change for agent %s: %v", fc.AgentID, err)
		}
		return fmt.Errorf("inserting file change: %w", err)
	}

	fc.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting file change id: %w", err)
	}

	s.logger.Debug("recorded file change", "id", fc.ID, "agent_id", fc.AgentID,
		"path", fc.FilePath, "type", fc.Type)
	return nil
}

// ListSessionFileChanges returns a session's file changes in chronological order.
func (s *SQLiteStore) ListSessionFileChanges(ctx context.Context, sessionID string) ([]*FileChange, error) {
	query := `
		SELECT id, agent_id, session_id, file_path, change_type,
		       lines_added, lines_removed, commit_hash, timestamp
		FROM file_changes
		WHERE session_id = ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying file changes: %w", err)
	}
	defer rows.Close()

	var changes []*FileChange
	for rows.Next() {
		fc, err := scanFileChange(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning file change row: %w", err)
		}
		changes = append(changes, fc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating file change rows: %w", err)
	}
	return changes, nil
}

func scanFileChange(row scanner) (*FileChange, error) {
	var fc FileChange
	var changeType, timestamp string
	var commitHash sql.NullString

	err := row.Scan(
		&fc.ID,
		&fc.AgentID,
		&fc.SessionID,
		&fc.FilePath,
		&changeType,
		&fc.LinesAdded,
		&fc.LinesRemoved,
		&commitHash,
		&timestamp,
	)
	if err != nil {
		return nil, err
	}

	fc.Type = ChangeType(changeType)
	fc.CommitHash = commitHash.String

	fc.Timestamp, err = parseTime(timestamp)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp: %w", err)
	}

	return &fc, nil
}
