package distribution

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"crosswarped.com/valence/pkg/ruleset"
)

func compile(t *testing.T, modules ...ruleset.Module) *ruleset.Compiled {
	t.Helper()
	r := ruleset.NewRuleset("t").AddLayer("main", "a")
	for _, m := range modules {
		r.AddModule(m)
	}
	if !r.CompileWithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))) {
		t.Fatalf("Compile() failed: %v", r.CompileErr())
	}
	return r.Compiled()
}

func TestTrackerInitialize(t *testing.T) {
	c := compile(t,
		ruleset.NewModule("free"),
		ruleset.NewModule("needy").WithSpawns(2, ruleset.Unlimited),
		ruleset.NewModule("never").WithSpawns(0, 0),
	)
	tr := NewTracker(c)

	if diff := cmp.Diff([]int{1}, tr.PendingMinimums()); diff != "" {
		t.Errorf("PendingMinimums mismatch (-want +got):\n%s", diff)
	}
	if tr.NeedsMinimum(0) {
		t.Error("module with MinSpawns 0 needs a minimum")
	}
	if tr.AreMinimumsSatisfied() {
		t.Error("AreMinimumsSatisfied() = true with a pending minimum")
	}
	if tr.CanSpawn(2) {
		t.Error("module with MaxSpawns 0 can spawn")
	}
	if tr.RecordSpawn(2) || tr.SpawnCount(2) != 0 {
		t.Error("RecordSpawn succeeded for a module with MaxSpawns 0")
	}
}

func TestTrackerMinimum(t *testing.T) {
	tr := NewTracker(compile(t, ruleset.NewModule("needy").WithSpawns(3, ruleset.Unlimited)))

	for i := range 2 {
		if !tr.RecordSpawn(0) {
			t.Fatalf("RecordSpawn #%d failed", i)
		}
		if !tr.NeedsMinimum(0) {
			t.Fatalf("left needs-minimum after %d spawns", i+1)
		}
	}
	tr.RecordSpawn(0)
	if tr.NeedsMinimum(0) || !tr.AreMinimumsSatisfied() {
		t.Error("minimum still pending after 3 spawns")
	}
	// Further spawns keep it satisfied and never hit a maximum.
	for range 100 {
		tr.RecordSpawn(0)
	}
	if tr.IsAtMaximum(0) || !tr.CanSpawn(0) {
		t.Error("unlimited module reached a maximum")
	}
	if got := tr.SpawnCount(0); got != 103 {
		t.Errorf("SpawnCount = %d, want 103", got)
	}
}

func TestTrackerMaximumIsSticky(t *testing.T) {
	tr := NewTracker(compile(t, ruleset.NewModule("rare").WithSpawns(0, 2)))

	if !tr.RecordSpawn(0) || !tr.RecordSpawn(0) {
		t.Fatal("RecordSpawn failed below maximum")
	}
	if !tr.IsAtMaximum(0) || tr.CanSpawn(0) {
		t.Fatal("module not at maximum after 2 spawns")
	}
	for range 5 {
		if tr.RecordSpawn(0) {
			t.Error("RecordSpawn succeeded at maximum")
		}
	}
	if got := tr.SpawnCount(0); got != 2 {
		t.Errorf("SpawnCount = %d, want 2", got)
	}
}

func TestTrackerUnknownModule(t *testing.T) {
	tr := NewTracker(compile(t, ruleset.NewModule("a")))
	for _, m := range []int{-1, 1, 42} {
		if tr.CanSpawn(m) || tr.RecordSpawn(m) || tr.NeedsMinimum(m) {
			t.Errorf("module %d treated as known", m)
		}
	}
}

func TestTrackerNilRuleset(t *testing.T) {
	tr := NewTracker(nil)
	if !tr.AreMinimumsSatisfied() {
		t.Error("empty tracker reports pending minimums")
	}
	if tr.RecordSpawn(0) {
		t.Error("RecordSpawn succeeded on an empty tracker")
	}
}
