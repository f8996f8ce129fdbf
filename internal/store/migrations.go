// ABOUTME: Versioned schema migration engine with a static, append-only registry
// ABOUTME: Applies each migration and its version bump inside one transaction

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// migration is one versioned, one-time schema change. Released versions must
// never be renumbered or removed: the version number is the compatibility
// contract with existing database files.
type migration struct {
	version     int
	description string
	script      string
}

// MigrationError reports a migration whose transaction failed. The database
// remains at the last successfully committed version.
type MigrationError struct {
	Version int
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("applying migration %d: %v", e.Version, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// migrations is the ordered registry of all schema versions, built once at
// process start. Append only; versions are strictly increasing.
var migrations = []migration{
	{
		version:     1,
		description: "initial schema with sessions, agents, interactions, and file_changes",
		script: `
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);

			CREATE TABLE sessions (
				id TEXT PRIMARY KEY,
				name TEXT,
				prompt TEXT NOT NULL,
				status TEXT NOT NULL CHECK (status IN ('active', 'completed', 'failed', 'paused')),
				agents_requested TEXT NOT NULL, -- opaque serialized mapping, e.g. {"claude": 2, "gpt": 1}
				started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				completed_at DATETIME,
				created_by TEXT DEFAULT 'user'
			);

			CREATE TABLE agents (
				id TEXT PRIMARY KEY,
				session_id TEXT NOT NULL,
				agent_type TEXT NOT NULL CHECK (agent_type IN ('claude', 'gpt', 'jules')),
				instance_number INTEGER NOT NULL, -- claude-1, claude-2, ...
				worktree_path TEXT,
				status TEXT NOT NULL CHECK (status IN ('initializing', 'running', 'waiting', 'completed', 'failed', 'paused')),
				progress INTEGER DEFAULT 0 CHECK (progress >= 0 AND progress <= 100),
				started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				last_activity DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				process_id INTEGER,
				FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
			);

			CREATE TABLE interactions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				agent_id TEXT NOT NULL,
				session_id TEXT NOT NULL,
				type TEXT NOT NULL CHECK (type IN ('question', 'response', 'status', 'log', 'error', 'checkpoint')),
				content TEXT NOT NULL,
				metadata TEXT, -- opaque serialized mapping
				requires_response BOOLEAN DEFAULT FALSE,
				responded_at DATETIME,
				timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY(agent_id) REFERENCES agents(id) ON DELETE CASCADE,
				FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
			);

			CREATE TABLE file_changes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				agent_id TEXT NOT NULL,
				session_id TEXT NOT NULL,
				file_path TEXT NOT NULL,
				change_type TEXT NOT NULL CHECK (change_type IN ('created', 'modified', 'deleted', 'renamed')),
				lines_added INTEGER DEFAULT 0,
				lines_removed INTEGER DEFAULT 0,
				commit_hash TEXT,
				timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY(agent_id) REFERENCES agents(id) ON DELETE CASCADE,
				FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
			);

			CREATE INDEX idx_agents_session_id ON agents(session_id);
			CREATE INDEX idx_agents_status ON agents(status);
			CREATE INDEX idx_interactions_agent_id ON interactions(agent_id);
			CREATE INDEX idx_interactions_session_id ON interactions(session_id);
			CREATE INDEX idx_interactions_type ON interactions(type);
			CREATE INDEX idx_interactions_requires_response ON interactions(requires_response);
			CREATE INDEX idx_file_changes_agent_id ON file_changes(agent_id);
			CREATE INDEX idx_file_changes_session_id ON file_changes(session_id);
			CREATE INDEX idx_sessions_status ON sessions(status);
			CREATE INDEX idx_sessions_started_at ON sessions(started_at);
		`,
	},
}

// latestVersion returns the highest version in a registry, 0 if empty.
func latestVersion(registry []migration) int {
	if len(registry) == 0 {
		return 0
	}
	return registry[len(registry)-1].version
}

// schemaVersion reads the current schema version of the database. A database
// without a schema_version table is at version 0.
func schemaVersion(db *sql.DB) (int, error) {
	var tableCount int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`,
	).Scan(&tableCount)
	if err != nil {
		return 0, fmt.Errorf("checking schema_version table: %w", err)
	}
	if tableCount == 0 {
		return 0, nil
	}

	var version sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return int(version.Int64), nil
}

// applyMigrations applies every registered migration newer than the database's
// current version, in ascending order. Each migration's schema change and its
// version bump commit or roll back together. The first failure aborts the run;
// no later migration is attempted. Running against an up-to-date database
// applies nothing and returns 0.
func applyMigrations(db *sql.DB, logger *slog.Logger, registry []migration) (int, error) {
	current, err := schemaVersion(db)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range registry {
		if m.version <= current {
			continue
		}

		if err := applyOne(db, m); err != nil {
			return applied, &MigrationError{Version: m.version, Err: err}
		}

		logger.Info("applied migration", "version", m.version, "description", m.description)
		current = m.version
		applied++
	}

	return applied, nil
}

func applyOne(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.script); err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO schema_version (version, applied_at) VALUES (?, ?)`,
		m.version, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("recording version: %w", err)
	}

	return tx.Commit()
}
