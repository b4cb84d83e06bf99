// Package store provides SQLite-backed durable storage for teamkit users
// and projects.
//
// # Tables
//
//   - users: accounts, their password hash and the pending verification token
//   - projects: one saved TeamConfig per row, owned by exactly one user
//
// # Ownership
//
// Every project query filters on (id, user_id). A project that exists but
// belongs to someone else is indistinguishable from one that does not
// exist: both surface as ErrNotFound.
//
// # Ordering
//
// Project lists are ordered by updated_at DESC, seq DESC. seq is bumped on
// every insert and update, so the most recently written project is first
// even when two writes share a timestamp.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
