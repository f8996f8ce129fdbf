// ABOUTME: Agent persistence operations
// ABOUTME: Insert, read, and the permitted status/progress/activity mutations

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateAgent inserts a new agent under an existing session. A missing ID is
// generated and status defaults to initializing. The session reference, type,
// status, instance number, and progress range are all validated; a failing
// write leaves the store unchanged.
func (s *SQLiteStore) CreateAgent(ctx context.Context, agent *Agent) error {
	if agent.ID == "" {
		agent.ID = uuid.New().String()
	}
	if agent.Status == "" {
		agent.Status = AgentInitializing
	}
	now := time.Now().UTC()
	if agent.StartedAt.IsZero() {
		agent.StartedAt = now
	}
	if agent.LastActivity.IsZero() {
		agent.LastActivity = now
	}

	if agent.SessionID == "" {
		return constraintErr("agent %s: session_id is required", agent.ID)
	}
	if !agent.Type.valid() {
		return constraintErr("agent %s: invalid agent_type %q", agent.ID, agent.Type)
	}
	if !agent.Status.valid() {
		return constraintErr("agent %s: invalid status %q", agent.ID, agent.Status)
	}
	if agent.InstanceNumber < 1 {
		return constraintErr("agent %s: instance_number %d must be positive", agent.ID, agent.InstanceNumber)
	}
	if agent.Progress < 0 || agent.Progress > 100 {
		return constraintErr("agent %s: progress %d out of range [0,100]", agent.ID, agent.Progress)
	}

	query := `
		INSERT INTO agents (id, session_id, agent_type, instance_number, worktree_path,
		                    status, progress, started_at, last_activity, process_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var processID any
	if agent.ProcessID != nil {
		processID = *agent.ProcessID
	}

	_, err := s.db.ExecContext(ctx, query,
		agent.ID,
		agent.SessionID,
		string(agent.Type),
		agent.InstanceNumber,
		nullString(agent.WorktreePath),
		string(agent.Status),
		agent.Progress,
		formatTime(agent.StartedAt),
		formatTime(agent.LastActivity),
		processID,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return constraintErr("inserting agent %s under session %s: %v", agent.ID, agent.SessionID, err)
		}
		return fmt.Errorf("inserting agent: %w", err)
	}

	s.logger.Debug("created agent", "id", agent.ID, "session_id", agent.SessionID,
		"type", agent.Type, "instance", agent.InstanceNumber)
	return nil
}

// GetAgent retrieves an agent by ID.
// Returns ErrNotFound if the agent doesn't exist.
func (s *SQLiteStore) GetAgent(ctx context.Context, id string) (*Agent, error) {
	query := `
		SELECT id, session_id, agent_type, instance_number, worktree_path,
		       status, progress, started_at, last_activity, process_id
		FROM agents
		WHERE id = ?
	`

	agent, err := scanAgent(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying agent: %w", err)
	}
	return agent, nil
}

// ListSessionAgents returns all agents belonging to a session, ordered by
// type and instance number.
func (s *SQLiteStore) ListSessionAgents(ctx context.Context, sessionID string) ([]*Agent, error) {
	query := `
		SELECT id, session_id, agent_type, instance_number, worktree_path,
		       status, progress, started_at, last_activity, process_id
		FROM agents
		WHERE session_id = ?
		ORDER BY agent_type, instance_number
	`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session agents: %w", err)
	}
	defer rows.Close()

	var agents []*Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning agent row: %w", err)
		}
		agents = append(agents, agent)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating agent rows: %w", err)
	}
	return agents, nil
}

// UpdateAgentStatus changes an agent's status and refreshes last_activity.
// Returns ErrNotFound if the agent doesn't exist.
func (s *SQLiteStore) UpdateAgentStatus(ctx context.Context, id string, status AgentStatus) error {
	if !status.valid() {
		return constraintErr("agent %s: invalid status %q", id, status)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE agents SET status = ?, last_activity = ? WHERE id = ?`,
		string(status), formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("updating agent status: %w", err)
	}
	return requireRow(result, id, s, "updated agent status", "status", string(status))
}

// UpdateAgentProgress sets an agent's progress and refreshes last_activity.
// Returns ErrNotFound if the agent doesn't exist.
func (s *SQLiteStore) UpdateAgentProgress(ctx context.Context, id string, progress int) error {
	if progress < 0 || progress > 100 {
		return constraintErr("agent %s: progress %d out of range [0,100]", id, progress)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE agents SET progress = ?, last_activity = ? WHERE id = ?`,
		progress, formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("updating agent progress: %w", err)
	}
	return requireRow(result, id, s, "updated agent progress", "progress", fmt.Sprint(progress))
}

// TouchAgent refreshes an agent's last_activity timestamp.
// Returns ErrNotFound if the agent doesn't exist.
func (s *SQLiteStore) TouchAgent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE agents SET last_activity = ? WHERE id = ?`,
		formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("touching agent: %w", err)
	}
	return requireRow(result, id, s, "touched agent")
}

// requireRow maps a zero-row UPDATE to ErrNotFound and logs the mutation
func requireRow(result sql.Result, id string, s *SQLiteStore, msg string, attrs ...string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	args := []any{"id", id}
	for i := 0; i+1 < len(attrs); i += 2 {
		args = append(args, attrs[i], attrs[i+1])
	}
	s.logger.Debug(msg, args...)
	return nil
}

func scanAgent(row scanner) (*Agent, error) {
	var agent Agent
	var agentType, status, startedAt, lastActivity string
	var worktreePath sql.NullString
	var processID sql.NullInt64

	err := row.Scan(
		&agent.ID,
		&agent.SessionID,
		&agentType,
		&agent.InstanceNumber,
		&worktreePath,
		&status,
		&agent.Progress,
		&startedAt,
		&lastActivity,
		&processID,
	)
	if err != nil {
		return nil, err
	}

	agent.Type = AgentType(agentType)
	agent.Status = AgentStatus(status)
	agent.WorktreePath = worktreePath.String
	if processID.Valid {
		pid := int(processID.Int64)
		agent.ProcessID = &pid
	}

	agent.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	agent.LastActivity, err = parseTime(lastActivity)
	if err != nil {
		return nil, fmt.Errorf("parsing last_activity: %w", err)
	}

	return &agent, nil
}
