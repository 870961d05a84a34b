package engine

import "github.com/roach88/kseq/internal/ir"

// RuleCounter mints monotonically increasing rule ids.
//
// The first id handed out by a fresh counter is R0. A counter belongs to one
// Engine and is not safe for concurrent use.
type RuleCounter struct {
	next ir.RuleID
}

// NewRuleCounter creates a counter whose first id is R0.
func NewRuleCounter() *RuleCounter {
	return &RuleCounter{}
}

// NewRuleCounterAt creates a counter whose first id is start.
// Used by replay to reproduce the ids of a recorded run.
func NewRuleCounterAt(start ir.RuleID) *RuleCounter {
	return &RuleCounter{next: start}
}

// Next returns the next unused id and advances the counter.
func (c *RuleCounter) Next() ir.RuleID {
	id := c.next
	c.next++
	return id
}

// Peek returns the id the next call to Next will return.
func (c *RuleCounter) Peek() ir.RuleID {
	return c.next
}

// Issued reports whether id was already handed out by this counter.
// Counters started with NewRuleCounterAt treat every id below the start
// as issued.
func (c *RuleCounter) Issued(id ir.RuleID) bool {
	return id >= 0 && id < c.next
}
