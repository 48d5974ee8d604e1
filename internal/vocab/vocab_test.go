package vocab

import (
	"errors"
	"testing"

	"github.com/stvadams-research/voynichMS-sub006/internal/corpus"
)

func recordsFor(tokens ...string) []corpus.Record {
	records := make([]corpus.Record, 0, len(tokens))
	for _, token := range tokens {
		records = append(records, corpus.Record{Token: token, Section: "f1r", Line: "f1r.P.1"})
	}
	return records
}

func TestClamp_RankOrder(t *testing.T) {
	t.Parallel()

	// chedy x3, daiin x2, shedy x1; otedy x1 appears later than shedy.
	records := recordsFor("daiin", "chedy", "shedy", "chedy", "daiin", "chedy", "otedy")

	v, err := Clamp(records, 4)
	if err != nil {
		t.Fatalf("Clamp: %v", err)
	}

	want := []string{"chedy", "daiin", "shedy", "otedy"}
	for i, token := range want {
		if v.Token(i) != token {
			t.Fatalf("rank %d = %q, want %q", i, v.Token(i), token)
		}
	}
	if v.Count(0) != 3 {
		t.Fatalf("Count(0) = %d, want 3", v.Count(0))
	}
	if rank, ok := v.Rank("daiin"); !ok || rank != 1 {
		t.Fatalf("Rank(daiin) = %d, %v", rank, ok)
	}
	if _, ok := v.Rank("missing"); ok {
		t.Fatal("Rank(missing) should not be in vocabulary")
	}
}

func TestClamp_TieBreakByFirstOccurrence(t *testing.T) {
	t.Parallel()

	records := recordsFor("b", "a", "b", "a")
	v, err := Clamp(records, 2)
	if err != nil {
		t.Fatalf("Clamp: %v", err)
	}
	// Equal counts: b occurred first, so b outranks a.
	if v.Token(0) != "b" || v.Token(1) != "a" {
		t.Fatalf("tokens = %v", v.Tokens())
	}
}

func TestClamp_InsufficientCorpus(t *testing.T) {
	t.Parallel()

	records := recordsFor("a", "b", "a")
	_, err := Clamp(records, 3)
	if !errors.Is(err, ErrInsufficientCorpus) {
		t.Fatalf("err = %v, want ErrInsufficientCorpus", err)
	}
}

func TestClampCoverage(t *testing.T) {
	t.Parallel()

	// a covers 6/10, a+b covers 9/10.
	records := recordsFor("a", "a", "a", "a", "a", "a", "b", "b", "b", "c")

	v, err := ClampCoverage(records, 0.9)
	if err != nil {
		t.Fatalf("ClampCoverage: %v", err)
	}
	if v.Size() != 2 {
		t.Fatalf("size = %d, want 2", v.Size())
	}
	if got := v.Coverage(); got < 0.89 || got > 0.91 {
		t.Fatalf("coverage = %v", got)
	}
	if v.TotalOccurrences() != 10 {
		t.Fatalf("total = %d", v.TotalOccurrences())
	}
}
