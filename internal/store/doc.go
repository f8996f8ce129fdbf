// Package store provides the embedded SQLite metadata store for agentcrew.
//
// # Data Model
//
// Four linked entities describe one orchestration run:
//
//   - Session: one unit of orchestrated multi-agent work
//   - Agent: one worker instance within a session (type + instance number)
//   - Interaction: a timestamped event reported by an agent
//   - FileChange: a filesystem modification attributed to an agent
//
// Agents belong to sessions; interactions and file changes belong to both an
// agent and a session. All three dependent tables cascade on session (and
// agent) deletion, so no entity outlives its parent session.
//
// # Schema Versioning
//
// Migrations are a static, append-only registry applied in ascending version
// order on every open. Each migration's schema change and its version-table
// bump commit in one transaction; a failure leaves the database at the last
// good version and aborts the open. A database without a schema_version
// table is at version 0. Opening an up-to-date database applies nothing.
//
// # SQLite Configuration
//
// The store uses modernc.org/sqlite with per-connection pragmas in the DSN:
//
//	journal_mode=WAL
//	foreign_keys=ON
//	busy_timeout=5000
//
// Independent inserts may run concurrently from multiple goroutines; the
// engine's transaction isolation is the only concurrency control. Retention
// cleanup and migration application each run as a single transaction.
//
// # Error Handling
//
//   - ErrNotFound: requested entity does not exist
//   - ErrConstraintViolation: missing parent reference, out-of-domain enum
//     value, or numeric range violation; nothing was written
//   - MigrationError: a migration's transaction failed; the store is unusable
//
// Enumerated fields are validated in Go before every write; the schema's
// CHECK and FOREIGN KEY constraints back that up at the storage boundary.
//
// # Retention
//
// Cleanup deletes completed/failed sessions older than the retention window,
// cascading to all dependents, then sweeps orphaned interactions older than
// the cutoff whose session no longer exists. Both passes share a transaction.
package store
