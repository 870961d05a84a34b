package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/kseq/internal/engine"
	"github.com/roach88/kseq/internal/ir"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun induces a grammar over input with k=2 and wraps it in a run.
func createTestRun(t *testing.T, id string, input ...int) ir.Run {
	t.Helper()
	eng := engine.New()
	base := eng.NextRuleID()
	res, err := eng.Induce(input, 2)
	if err != nil {
		t.Fatalf("Induce() failed: %v", err)
	}
	g, err := res.Grammar()
	if err != nil {
		t.Fatalf("Grammar() failed: %v", err)
	}
	run, err := ir.NewRun(id, g, base)
	if err != nil {
		t.Fatalf("NewRun() failed: %v", err)
	}
	return run
}
