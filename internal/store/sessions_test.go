// ABOUTME: Tests for session persistence operations
// ABOUTME: Covers defaults, validation, reads, and the completed_at transition

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession_Defaults(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	session := &Session{
		Prompt:          "implement feature",
		AgentsRequested: `{"claude": 1}`,
	}
	require.NoError(t, s.CreateSession(ctx, session))

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, SessionActive, session.Status)
	assert.Equal(t, "user", session.CreatedBy)
	assert.False(t, session.StartedAt.IsZero())

	got, err := s.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, "implement feature", got.Prompt)
	assert.Equal(t, `{"claude": 1}`, got.AgentsRequested)
	assert.Equal(t, SessionActive, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestCreateSession_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	started := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)
	session := &Session{
		ID:              "session-123",
		Name:            "parser work",
		Prompt:          "refactor the parser",
		Status:          SessionPaused,
		AgentsRequested: `{"gpt": 2}`,
		StartedAt:       started,
		CreatedBy:       "scheduler",
	}
	require.NoError(t, s.CreateSession(ctx, session))

	got, err := s.GetSession(ctx, "session-123")
	require.NoError(t, err)
	assert.Equal(t, "parser work", got.Name)
	assert.Equal(t, SessionPaused, got.Status)
	assert.Equal(t, "scheduler", got.CreatedBy)
	assert.True(t, got.StartedAt.Equal(started))
}

func TestCreateSession_RequiresPrompt(t *testing.T) {
	s := setupTestStore(t)

	err := s.CreateSession(context.Background(), &Session{AgentsRequested: `{}`})
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestCreateSession_RejectsUnknownStatus(t *testing.T) {
	s := setupTestStore(t)

	err := s.CreateSession(context.Background(), &Session{
		Prompt:          "x",
		Status:          SessionStatus("cancelled"),
		AgentsRequested: `{}`,
	})
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestGetSession_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetSession(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSessions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	older := createTestSession(t, s, func(sess *Session) {
		sess.StartedAt = time.Now().UTC().Add(-2 * time.Hour)
	})
	newer := createTestSession(t, s, func(sess *Session) {
		sess.StartedAt = time.Now().UTC().Add(-time.Hour)
	})

	sessions, err := s.ListSessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, newer.ID, sessions[0].ID)
	assert.Equal(t, older.ID, sessions[1].ID)

	limited, err := s.ListSessions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestUpdateSessionStatus_SetsCompletedAtOnce(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	session := createTestSession(t, s)

	require.NoError(t, s.UpdateSessionStatus(ctx, session.ID, SessionCompleted))

	got, err := s.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	completedAt := *got.CompletedAt

	// A later terminal transition must not move completed_at.
	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, s.UpdateSessionStatus(ctx, session.ID, SessionFailed))

	got, err = s.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, SessionFailed, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(completedAt))
}

func TestUpdateSessionStatus_NonTerminalLeavesCompletedAtUnset(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	session := createTestSession(t, s)
	require.NoError(t, s.UpdateSessionStatus(ctx, session.ID, SessionPaused))

	got, err := s.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, SessionPaused, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestUpdateSessionStatus_NotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.UpdateSessionStatus(context.Background(), "nonexistent", SessionCompleted)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSessionStatus_RejectsUnknownStatus(t *testing.T) {
	s := setupTestStore(t)
	session := createTestSession(t, s)

	err := s.UpdateSessionStatus(context.Background(), session.ID, SessionStatus("done"))
	assert.ErrorIs(t, err, ErrConstraintViolation)
}
