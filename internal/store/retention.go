// ABOUTME: Transactional retention cleanup for old terminal sessions
// ABOUTME: Cascading session deletion plus a defensive orphaned-interaction sweep

package store

import (
	"context"
	"fmt"
	"time"
)

// Cleanup deletes every completed or failed session whose started_at is older
// than retainDays days, along with all of its agents, interactions, and file
// changes via cascade. A second pass removes interactions older than the
// cutoff whose session no longer exists; under correct cascade behavior this
// pass affects zero rows, but it guards against rows written through a path
// that bypassed the foreign-key constraints (for example data created before
// cascading was in effect). Both passes run in one transaction: a failure
// partway rolls back everything. Zero counts are a normal outcome.
func (s *SQLiteStore) Cleanup(ctx context.Context, retainDays int) (*CleanupResult, error) {
	if retainDays < 0 {
		return nil, constraintErr("cleanup: retain days %d must be non-negative", retainDays)
	}

	cutoff := formatTime(time.Now().AddDate(0, 0, -retainDays))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning cleanup transaction: %w", err)
	}
	defer tx.Rollback()

	sessions, err := tx.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE status IN ('completed', 'failed')
		AND started_at < ?
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("deleting old sessions: %w", err)
	}
	sessionsDeleted, err := sessions.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("counting deleted sessions: %w", err)
	}

	orphans, err := tx.ExecContext(ctx, `
		DELETE FROM interactions
		WHERE timestamp < ?
		AND session_id NOT IN (SELECT id FROM sessions)
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("deleting orphaned interactions: %w", err)
	}
	orphansDeleted, err := orphans.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("counting deleted orphans: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing cleanup: %w", err)
	}

	result := &CleanupResult{
		SessionsDeleted: sessionsDeleted,
		OrphansDeleted:  orphansDeleted,
	}

	if result.SessionsDeleted > 0 || result.OrphansDeleted > 0 {
		s.logger.Info("cleanup removed old data",
			"retain_days", retainDays,
			"sessions_deleted", result.SessionsDeleted,
			"orphans_deleted", result.OrphansDeleted,
		)
	} else {
		s.logger.Debug("cleanup found nothing to remove", "retain_days", retainDays)
	}

	return result, nil
}
