// ABOUTME: Read-only aggregate statistics over the store
// ABOUTME: Used by the status command for diagnostic reporting

package store

import (
	"context"
	"fmt"
)

// Stats returns aggregate counts over the four entities plus the current
// schema version. The counts are issued as independent queries with no
// cross-count atomicity; under concurrent writers the individual numbers may
// reflect slightly different points in time.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats

	counts := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM sessions`, &stats.Sessions},
		{`SELECT COUNT(*) FROM agents WHERE status IN ('initializing', 'running', 'waiting')`, &stats.ActiveAgents},
		{`SELECT COUNT(*) FROM interactions WHERE type = 'question' AND requires_response = TRUE AND responded_at IS NULL`, &stats.PendingQuestions},
		{`SELECT COUNT(*) FROM interactions`, &stats.TotalInteractions},
	}

	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("computing store stats: %w", err)
		}
	}

	version, err := schemaVersion(s.db)
	if err != nil {
		return nil, fmt.Errorf("computing store stats: %w", err)
	}
	stats.SchemaVersion = version

	return &stats, nil
}
