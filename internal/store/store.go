// ABOUTME: Store interface and data types for agentcrew session persistence
// ABOUTME: Defines Session, Agent, Interaction, FileChange and their status domains

package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrConstraintViolation is returned when a write references a missing parent,
// uses a value outside a declared enum domain, or fails a numeric range check.
// The write performs no partial change.
var ErrConstraintViolation = errors.New("constraint violation")

// SessionStatus is the lifecycle state of an orchestration session
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
	SessionPaused    SessionStatus = "paused"
)

func (s SessionStatus) valid() bool {
	switch s {
	case SessionActive, SessionCompleted, SessionFailed, SessionPaused:
		return true
	}
	return false
}

// terminal reports whether the status ends a session's lifecycle.
func (s SessionStatus) terminal() bool {
	return s == SessionCompleted || s == SessionFailed
}

// AgentType identifies which kind of agent a worker instance runs
type AgentType string

const (
	AgentClaude AgentType = "claude"
	AgentGPT    AgentType = "gpt"
	AgentJules  AgentType = "jules"
)

func (t AgentType) valid() bool {
	switch t {
	case AgentClaude, AgentGPT, AgentJules:
		return true
	}
	return false
}

// AgentStatus is the lifecycle state of a single agent instance
type AgentStatus string

const (
	AgentInitializing AgentStatus = "initializing"
	AgentRunning      AgentStatus = "running"
	AgentWaiting      AgentStatus = "waiting"
	AgentCompleted    AgentStatus = "completed"
	AgentFailed       AgentStatus = "failed"
	AgentPaused       AgentStatus = "paused"
)

func (s AgentStatus) valid() bool {
	switch s {
	case AgentInitializing, AgentRunning, AgentWaiting, AgentCompleted, AgentFailed, AgentPaused:
		return true
	}
	return false
}

// InteractionType classifies an agent-reported event
type InteractionType string

const (
	InteractionQuestion   InteractionType = "question"
	InteractionResponse   InteractionType = "response"
	InteractionStatus     InteractionType = "status"
	InteractionLog        InteractionType = "log"
	InteractionError      InteractionType = "error"
	InteractionCheckpoint InteractionType = "checkpoint"
)

func (t InteractionType) valid() bool {
	switch t {
	case InteractionQuestion, InteractionResponse, InteractionStatus,
		InteractionLog, InteractionError, InteractionCheckpoint:
		return true
	}
	return false
}

// ChangeType classifies a recorded filesystem modification
type ChangeType string

const (
	ChangeCreated  ChangeType = "created"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
	ChangeRenamed  ChangeType = "renamed"
)

func (t ChangeType) valid() bool {
	switch t {
	case ChangeCreated, ChangeModified, ChangeDeleted, ChangeRenamed:
		return true
	}
	return false
}

// Session represents one unit of orchestrated multi-agent work
type Session struct {
	ID              string
	Name            string // optional display name
	Prompt          string
	Status          SessionStatus
	AgentsRequested string // opaque serialized mapping, e.g. {"claude": 2, "gpt": 1}
	StartedAt       time.Time
	CompletedAt     *time.Time
	CreatedBy       string
}

// Agent represents one worker instance within a session
type Agent struct {
	ID             string
	SessionID      string
	Type           AgentType
	InstanceNumber int // disambiguates claude-1, claude-2, ...
	WorktreePath   string
	Status         AgentStatus
	Progress       int // 0..100
	StartedAt      time.Time
	LastActivity   time.Time
	ProcessID      *int
}

// Interaction is a timestamped event reported by an agent
type Interaction struct {
	ID               int64
	AgentID          string
	SessionID        string
	Type             InteractionType
	Content          string
	Metadata         string // opaque serialized mapping, never parsed by the store
	RequiresResponse bool
	RespondedAt      *time.Time
	Timestamp        time.Time
}

// FileChange is a recorded filesystem modification attributed to an agent
type FileChange struct {
	ID           int64
	AgentID      string
	SessionID    string
	FilePath     string
	Type         ChangeType
	LinesAdded   int
	LinesRemoved int
	CommitHash   string
	Timestamp    time.Time
}

// Stats is a read-only diagnostic snapshot of the store. The individual
// counts are not taken atomically.
type Stats struct {
	Sessions          int64
	ActiveAgents      int64
	PendingQuestions  int64
	TotalInteractions int64
	SchemaVersion     int
}

// CleanupResult reports what a retention pass deleted
type CleanupResult struct {
	SessionsDeleted int64
	OrphansDeleted  int64
}

// Store defines the persistence interface consumed by the orchestration layer
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	ListSessions(ctx context.Context, limit int) ([]*Session, error)
	UpdateSessionStatus(ctx context.Context, id string, status SessionStatus) error

	// Agents
	CreateAgent(ctx context.Context, agent *Agent) error
	GetAgent(ctx context.Context, id string) (*Agent, error)
	ListSessionAgents(ctx context.Context, sessionID string) ([]*Agent, error)
	UpdateAgentStatus(ctx context.Context, id string, status AgentStatus) error
	UpdateAgentProgress(ctx context.Context, id string, progress int) error
	TouchAgent(ctx context.Context, id string) error

	// Interactions
	RecordInteraction(ctx context.Context, in *Interaction) error
	ListAgentInteractions(ctx context.Context, agentID string, limit int) ([]*Interaction, error)
	ListPendingQuestions(ctx context.Context, sessionID string) ([]*Interaction, error)
	MarkResponded(ctx context.Context, id int64) error

	// File changes
	RecordFileChange(ctx context.Context, fc *FileChange) error
	ListSessionFileChanges(ctx context.Context, sessionID string) ([]*FileChange, error)

	// Maintenance
	Cleanup(ctx context.Context, retainDays int) (*CleanupResult, error)
	Stats(ctx context.Context) (*Stats, error)

	// Close releases any resources held by the store. No operation may be
	// issued afterward.
	Close() error
}

func constraintErr(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConstraintViolation)
}
