package lattice

import (
	"testing"

	"github.com/stvadams-research/voynichMS-sub006/internal/corpus"
	"github.com/stvadams-research/voynichMS-sub006/internal/vocab"
	"github.com/stvadams-research/voynichMS-sub006/internal/window"
)

func lineOf(tokens ...string) []corpus.Record {
	records := make([]corpus.Record, 0, len(tokens))
	for _, token := range tokens {
		records = append(records, corpus.Record{Token: token, Section: "f1r", Line: "f1r.P.1"})
	}
	return records
}

// partitionFor pins home windows by explicit assignment, bypassing the
// clustering step so map-building is tested in isolation.
func partitionFor(k int, home ...int) *window.Partition {
	return &window.Partition{K: k, Home: home}
}

func TestBuildMap_SuccessorMode(t *testing.T) {
	t.Parallel()

	// Corpus [a,b,a,b,a,c]: successors of a are b,b,c. With a,b in window 0
	// and c in window 1, the mode resolves a's target to window 0, 2-to-1.
	records := lineOf("a", "b", "a", "b", "a", "c")
	v, err := vocab.Clamp(records, 3)
	if err != nil {
		t.Fatalf("Clamp: %v", err)
	}

	ranks := map[string]int{}
	for _, token := range []string{"a", "b", "c"} {
		rank, ok := v.Rank(token)
		if !ok {
			t.Fatalf("token %q missing from vocabulary", token)
		}
		ranks[token] = rank
	}

	home := make([]int, 3)
	home[ranks["a"]] = 0
	home[ranks["b"]] = 0
	home[ranks["c"]] = 1
	part := partitionFor(2, home...)

	target := BuildMap(v, part, records)
	if target[ranks["a"]] != 0 {
		t.Fatalf("target(a) = %d, want 0", target[ranks["a"]])
	}
	// b is always followed by a (window 0).
	if target[ranks["b"]] != 0 {
		t.Fatalf("target(b) = %d, want 0", target[ranks["b"]])
	}
	// c is line-terminal: self-loop on its home window.
	if target[ranks["c"]] != 1 {
		t.Fatalf("target(c) = %d, want 1 (self-loop)", target[ranks["c"]])
	}
}

func TestBuildMap_TieBreakLowestWindow(t *testing.T) {
	t.Parallel()

	// Successors of x split 1-1 between windows 2 and 1; the tie resolves to
	// the lowest window id.
	records := lineOf("x", "hi", "x", "lo")
	v, err := vocab.Clamp(records, 3)
	if err != nil {
		t.Fatalf("Clamp: %v", err)
	}

	home := make([]int, 3)
	rankX, _ := v.Rank("x")
	rankHi, _ := v.Rank("hi")
	rankLo, _ := v.Rank("lo")
	home[rankX] = 0
	home[rankHi] = 2
	home[rankLo] = 1
	part := partitionFor(3, home...)

	target := BuildMap(v, part, records)
	if target[rankX] != 1 {
		t.Fatalf("target(x) = %d, want 1", target[rankX])
	}
}

func TestStartCounts(t *testing.T) {
	t.Parallel()

	records := append(lineOf("a", "b"), corpus.Record{Token: "c", Section: "f1r", Line: "f1r.P.2"})
	v, err := vocab.Clamp(records, 3)
	if err != nil {
		t.Fatalf("Clamp: %v", err)
	}

	home := make([]int, 3)
	rankA, _ := v.Rank("a")
	rankC, _ := v.Rank("c")
	home[rankA] = 0
	home[rankC] = 1
	part := partitionFor(2, home...)

	counts := StartCounts(v, part, records)
	// Line starts: a (window 0) and c (window 1).
	if counts[0] != 1 || counts[1] != 1 {
		t.Fatalf("start counts = %v", counts)
	}
}

func TestModel_PredictedWrapsMask(t *testing.T) {
	t.Parallel()

	records := lineOf("a", "b", "a")
	v, err := vocab.Clamp(records, 2)
	if err != nil {
		t.Fatalf("Clamp: %v", err)
	}
	part := partitionFor(2, 0, 1)
	m := New(v, part, BuildMap(v, part, records), StartCounts(v, part, records))

	rankA, _ := v.Rank("a")
	base := m.Predicted(rankA, 0)
	if got := m.Predicted(rankA, 2); got != base {
		t.Fatalf("mask of K should be identity: %d vs %d", got, base)
	}
	if got := m.Predicted(rankA, -1); got < 0 || got >= m.K {
		t.Fatalf("negative mask must stay in range, got %d", got)
	}
}

func TestWithOffsets_DoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	records := lineOf("a", "b", "a")
	v, err := vocab.Clamp(records, 2)
	if err != nil {
		t.Fatalf("Clamp: %v", err)
	}
	part := partitionFor(2, 0, 1)
	m := New(v, part, BuildMap(v, part, records), StartCounts(v, part, records))

	calibrated := m.WithOffsets([]int{1, 0}, []bool{false, true})
	if m.Offsets[0] != 0 {
		t.Fatalf("receiver offsets mutated: %v", m.Offsets)
	}
	if calibrated.Offsets[0] != 1 || !calibrated.LowConfidence[1] {
		t.Fatalf("calibrated copy wrong: %v %v", calibrated.Offsets, calibrated.LowConfidence)
	}
}
