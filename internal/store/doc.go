// Package store provides SQLite-backed durable storage for induction runs.
//
// Each run records its configuration (k, end-of-episode marker, alphabet,
// first rule id), its input, the final sequence and every minted rule, plus
// the content-addressed grammar hash used to verify replays.
//
// # Ordering
//
// Runs are ordered by seq, a logical counter assigned inside the write
// transaction. Every multi-row query uses ORDER BY seq ASC, id ASC COLLATE
// BINARY (rules: ORDER BY rule_id ASC) so results are identical across
// processes.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000ms: wait for locks instead of failing immediately
//   - foreign_keys=ON: rules cascade with their run
//
// Schema changes are tracked with PRAGMA user_version.
package store
