// Package ir provides the canonical intermediate representation types for kseq.
//
// This package contains type definitions and their serialization only. All
// other internal packages import ir; ir imports nothing internal. This keeps
// IR the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Symbol is a closed sum type: a raw terminal or a rule reference, never both
//   - Rule right-hand sides are immutable once inserted into a RuleTable
//   - NO float types anywhere - raw terminals are ints, counts are ints
//   - All JSON tags use snake_case
//   - Canonical JSON (RFC 8785) is the only serialization used for hashing
package ir
