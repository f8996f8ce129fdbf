// ABOUTME: Tests for file change persistence operations
// ABOUTME: Covers validation, enum and sign checks, and session listing

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFileChange_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	session := createTestSession(t, s)
	agent := createTestAgent(t, s, session.ID)

	fc := &FileChange{
		AgentID:      agent.ID,
		SessionID:    session.ID,
		FilePath:     "internal/parser/lexer.go",
		Type:         ChangeModified,
		LinesAdded:   42,
		LinesRemoved: 7,
		CommitHash:   "deadbeef",
	}
	require.NoError(t, s.RecordFileChange(ctx, fc))
	assert.Positive(t, fc.ID)

	changes, err := s.ListSessionFileChanges(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	got := changes[0]
	assert.Equal(t, "internal/parser/lexer.go", got.FilePath)
	assert.Equal(t, ChangeModified, got.Type)
	assert.Equal(t, 42, got.LinesAdded)
	assert.Equal(t, 7, got.LinesRemoved)
	assert.Equal(t, "deadbeef", got.CommitHash)
}

func TestRecordFileChange_Validation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	session := createTestSession(t, s)
	agent := createTestAgent(t, s, session.ID)

	cases := map[string]*FileChange{
		"missing path": {
			AgentID: agent.ID, SessionID: session.ID, Type: ChangeCreated,
		},
		"unknown change type": {
			AgentID: agent.ID, SessionID: session.ID, FilePath: "a.go", Type: ChangeType("touched"),
		},
		"negative lines added": {
			AgentID: agent.ID, SessionID: session.ID, FilePath: "a.go", Type: ChangeCreated, LinesAdded: -1,
		},
		"negative lines removed": {
			AgentID: agent.ID, SessionID: session.ID, FilePath: "a.go", Type: ChangeCreated, LinesRemoved: -3,
		},
		"missing agent": {
			AgentID: "ghost", SessionID: session.ID, FilePath: "a.go", Type: ChangeCreated,
		},
	}

	for name, fc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.RecordFileChange(ctx, fc), ErrConstraintViolation)
		})
	}
}

func TestListSessionFileChanges_ChronologicalOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	session := createTestSession(t, s)
	agent := createTestAgent(t, s, session.ID)

	base := time.Now().UTC().Add(-time.Hour)
	paths := []string{"first.go", "second.go", "third.go"}
	for i, p := range paths {
		require.NoError(t, s.RecordFileChange(ctx, &FileChange{
			AgentID:   agent.ID,
			SessionID: session.ID,
			FilePath:  p,
			Type:      ChangeCreated,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	changes, err := s.ListSessionFileChanges(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, changes, 3)
	for i, p := range paths {
		assert.Equal(t, p, changes[i].FilePath)
	}
}
