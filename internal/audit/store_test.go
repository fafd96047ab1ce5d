package audit

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)

	runID, err := store.CreateRun("nightly")
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := store.RecordDecision(runID, "p1", "exact", 1, ""); err != nil {
		t.Fatalf("RecordDecision: %v", err)
	}
	if err := store.RecordDecision(runID, "p2", "fuzzy", 0.91, ""); err != nil {
		t.Fatalf("RecordDecision: %v", err)
	}
	if err := store.RecordDecision(runID, "p3", "fallback", 0, "no candidates matched"); err != nil {
		t.Fatalf("RecordDecision: %v", err)
	}
	if err := store.CompleteRun(runID, 3, 3, 0); err != nil {
		t.Fatalf("CompleteRun: %v", err)
	}

	runs, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs", len(runs))
	}
	run := runs[0]
	if run.Label != "nightly" || run.Processed != 3 || run.Resolved != 3 {
		t.Errorf("run = %+v", run)
	}
	if run.CompletedAt == nil {
		t.Error("completed run should carry a completion time")
	}

	decisions, err := store.ListDecisions(runID)
	if err != nil {
		t.Fatalf("ListDecisions: %v", err)
	}
	if len(decisions) != 3 {
		t.Fatalf("got %d decisions", len(decisions))
	}
	if decisions[0].ParcelID != "p1" || decisions[0].Method != "exact" {
		t.Errorf("decision order: %+v", decisions[0])
	}
	if decisions[2].Note != "no candidates matched" {
		t.Errorf("note = %q", decisions[2].Note)
	}
}

func TestStats(t *testing.T) {
	store := openTestStore(t)
	runID, err := store.CreateRun("")
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	for _, d := range []struct {
		parcel string
		method string
		score  float64
	}{
		{"p1", "fuzzy", 0.9},
		{"p2", "fuzzy", 1.0},
		{"p3", "exact", 1.0},
	} {
		if err := store.RecordDecision(runID, d.parcel, d.method, d.score, ""); err != nil {
			t.Fatalf("RecordDecision: %v", err)
		}
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d stats", len(stats))
	}
	if stats[0].Method != "fuzzy" || stats[0].Count != 2 {
		t.Errorf("top stat = %+v", stats[0])
	}
	if stats[0].AvgScore < 0.949 || stats[0].AvgScore > 0.951 {
		t.Errorf("avg score = %v", stats[0].AvgScore)
	}
}

func TestIncompleteRunHasNoCompletion(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.CreateRun("in-flight"); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	runs, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if runs[0].CompletedAt != nil {
		t.Error("unfinished run should have null completion time")
	}
}
