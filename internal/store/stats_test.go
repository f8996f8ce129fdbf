// ABOUTME: Tests for the read-only stats snapshot
// ABOUTME: Covers the empty-store baseline and the active-agent status filter

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_FreshStoreIsEmpty(t *testing.T) {
	s := setupTestStore(t)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.Sessions)
	assert.EqualValues(t, 0, stats.ActiveAgents)
	assert.EqualValues(t, 0, stats.PendingQuestions)
	assert.EqualValues(t, 0, stats.TotalInteractions)
	assert.Equal(t, latestVersion(migrations), stats.SchemaVersion)
}

func TestStats_ActiveAgentStatuses(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	session := createTestSession(t, s)

	active := []AgentStatus{AgentInitializing, AgentRunning, AgentWaiting}
	inactive := []AgentStatus{AgentCompleted, AgentFailed, AgentPaused}

	instance := 1
	for _, status := range append(active, inactive...) {
		st := status
		createTestAgent(t, s, session.ID, func(a *Agent) {
			a.Status = st
			a.InstanceNumber = instance
		})
		instance++
	}

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(active), stats.ActiveAgents)
	assert.EqualValues(t, 1, stats.Sessions)
}

func TestStats_CountsAllInteractions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	session := createTestSession(t, s)
	agent := createTestAgent(t, s, session.ID)

	types := []InteractionType{
		InteractionQuestion, InteractionResponse, InteractionStatus,
		InteractionLog, InteractionError, InteractionCheckpoint,
	}
	for _, typ := range types {
		require.NoError(t, s.RecordInteraction(ctx, &Interaction{
			AgentID:   agent.ID,
			SessionID: session.ID,
			Type:      typ,
			Content:   "event",
		}))
	}

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(types), stats.TotalInteractions)
	// Questions only count as pending when they require a response.
	assert.EqualValues(t, 0, stats.PendingQuestions)
}
