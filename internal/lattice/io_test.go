package lattice

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stvadams-research/voynichMS-sub006/internal/vocab"
	"github.com/stvadams-research/voynichMS-sub006/internal/window"
)

func TestModelStore_RoundTrip(t *testing.T) {
	t.Parallel()

	records := lineOf("a", "b", "a", "c")
	v, err := vocab.Clamp(records, 3)
	if err != nil {
		t.Fatalf("Clamp: %v", err)
	}
	part := &window.Partition{K: 2, Home: []int{0, 0, 1}}
	m := New(v, part, BuildMap(v, part, records), StartCounts(v, part, records))
	m = m.WithOffsets([]int{1, 0}, []bool{false, true})

	path := filepath.Join(t.TempDir(), "model.json")
	if err := WriteModel(path, m); err != nil {
		t.Fatalf("WriteModel: %v", err)
	}
	loaded, err := ReadModel(path)
	if err != nil {
		t.Fatalf("ReadModel: %v", err)
	}

	if !reflect.DeepEqual(m.Tokens, loaded.Tokens) ||
		!reflect.DeepEqual(m.Home, loaded.Home) ||
		!reflect.DeepEqual(m.Target, loaded.Target) ||
		!reflect.DeepEqual(m.Offsets, loaded.Offsets) {
		t.Fatal("loaded model differs from written model")
	}
	if rank, ok := loaded.Rank("a"); !ok || rank != m.mustRank("a") {
		t.Fatalf("token index not rebuilt on load: %d %v", rank, ok)
	}
}

func TestReadModel_RejectsCorruptTables(t *testing.T) {
	t.Parallel()

	records := lineOf("a", "b", "a")
	v, err := vocab.Clamp(records, 2)
	if err != nil {
		t.Fatalf("Clamp: %v", err)
	}
	part := &window.Partition{K: 2, Home: []int{0, 1}}
	m := New(v, part, BuildMap(v, part, records), StartCounts(v, part, records))
	m.Home[0] = 7 // out of range

	path := filepath.Join(t.TempDir(), "model.json")
	if err := WriteModel(path, m); err != nil {
		t.Fatalf("WriteModel: %v", err)
	}
	if _, err := ReadModel(path); err == nil {
		t.Fatal("expected validation error for out-of-range home window")
	}
}

func (m *Model) mustRank(token string) int {
	rank, ok := m.Rank(token)
	if !ok {
		panic("token not in model: " + token)
	}
	return rank
}
