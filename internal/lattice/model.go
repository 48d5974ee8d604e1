// Package lattice derives the target-window map and assembles the frozen
// Model consumed by the scorer and the generator.
package lattice

import (
	"fmt"

	"github.com/stvadams-research/voynichMS-sub006/internal/corpus"
	"github.com/stvadams-research/voynichMS-sub006/internal/vocab"
	"github.com/stvadams-research/voynichMS-sub006/internal/window"
)

// Model is the immutable calibrated engine model: vocabulary, home windows,
// target-window map, and the per-window offset table. Built once per corpus
// version and never mutated afterwards; concurrent readers need no locking.
type Model struct {
	K             int
	Tokens        []string
	Counts        []int
	Home          []int
	Target        []int
	Offsets       []int
	LowConfidence []bool
	StartCounts   []int
	Total         int

	ranks map[string]int
}

// New assembles an uncalibrated model (all offsets zero) from the
// vocabulary, its partition, and the target map.
func New(voc *vocab.Vocabulary, part *window.Partition, target []int, startCounts []int) *Model {
	m := &Model{
		K:             part.K,
		Tokens:        voc.Tokens(),
		Counts:        make([]int, voc.Size()),
		Home:          make([]int, voc.Size()),
		Target:        make([]int, voc.Size()),
		Offsets:       make([]int, part.K),
		LowConfidence: make([]bool, part.K),
		StartCounts:   make([]int, part.K),
		Total:         voc.TotalOccurrences(),
	}
	for rank := 0; rank < voc.Size(); rank++ {
		m.Counts[rank] = voc.Count(rank)
	}
	copy(m.Home, part.Home)
	copy(m.Target, target)
	copy(m.StartCounts, startCounts)
	m.index()
	return m
}

// WithOffsets returns a copy of the model carrying the calibrated offset
// table. The receiver is left untouched.
func (m *Model) WithOffsets(offsets []int, lowConfidence []bool) *Model {
	out := &Model{
		K:             m.K,
		Tokens:        append([]string(nil), m.Tokens...),
		Counts:        append([]int(nil), m.Counts...),
		Home:          append([]int(nil), m.Home...),
		Target:        append([]int(nil), m.Target...),
		Offsets:       append([]int(nil), offsets...),
		LowConfidence: append([]bool(nil), lowConfidence...),
		StartCounts:   append([]int(nil), m.StartCounts...),
		Total:         m.Total,
	}
	out.index()
	return out
}

// Rank returns the vocabulary rank of a token and whether it is in palette.
func (m *Model) Rank(token string) (int, bool) {
	rank, ok := m.ranks[token]
	return rank, ok
}

// Size returns the vocabulary size.
func (m *Model) Size() int { return len(m.Tokens) }

// Predicted returns the offset-corrected predicted successor window for the
// token at the given rank, rotated by mask.
func (m *Model) Predicted(rank int, mask int) int {
	p := (m.Target[rank] + m.Offsets[m.Home[rank]] + mask) % m.K
	return (p + m.K) % m.K
}

func (m *Model) index() {
	m.ranks = make(map[string]int, len(m.Tokens))
	for rank, token := range m.Tokens {
		m.ranks[token] = rank
	}
}

func (m *Model) validate() error {
	n := len(m.Tokens)
	if m.K < 2 {
		return fmt.Errorf("model: window count %d out of range", m.K)
	}
	if len(m.Home) != n || len(m.Target) != n || len(m.Counts) != n {
		return fmt.Errorf("model: table lengths disagree with vocabulary size %d", n)
	}
	if len(m.Offsets) != m.K || len(m.LowConfidence) != m.K || len(m.StartCounts) != m.K {
		return fmt.Errorf("model: per-window table lengths disagree with K=%d", m.K)
	}
	for rank, home := range m.Home {
		if home < 0 || home >= m.K {
			return fmt.Errorf("model: home window %d out of range for rank %d", home, rank)
		}
		if m.Target[rank] < 0 || m.Target[rank] >= m.K {
			return fmt.Errorf("model: target window %d out of range for rank %d", m.Target[rank], rank)
		}
	}
	return nil
}

// BuildMap derives each vocabulary token's target window: the most frequent
// home window among its observed within-line successors, ties broken by
// lowest window id. Tokens that never appear non-terminally keep their own
// home window as a self-loop.
func BuildMap(voc *vocab.Vocabulary, part *window.Partition, records []corpus.Record) []int {
	successors := make([][]int, voc.Size())
	for rank := range successors {
		successors[rank] = make([]int, part.K)
	}

	for _, pair := range corpus.Pairs(records) {
		cur, ok := voc.Rank(pair.Current.Token)
		if !ok {
			continue
		}
		next, ok := voc.Rank(pair.Next.Token)
		if !ok {
			continue
		}
		successors[cur][part.Home[next]]++
	}

	target := make([]int, voc.Size())
	for rank := range successors {
		best, bestCount := -1, 0
		for w, count := range successors[rank] {
			if count > bestCount {
				best = w
				bestCount = count
			}
		}
		if best < 0 {
			target[rank] = part.Home[rank]
			continue
		}
		target[rank] = best
	}
	return target
}

// StartCounts tallies the home windows of line-initial in-vocabulary tokens.
// The generator samples its starting window from this distribution.
func StartCounts(voc *vocab.Vocabulary, part *window.Partition, records []corpus.Record) []int {
	counts := make([]int, part.K)
	for i, record := range records {
		if i > 0 && records[i-1].Section == record.Section && records[i-1].Line == record.Line {
			continue
		}
		rank, ok := voc.Rank(record.Token)
		if !ok {
			continue
		}
		counts[part.Home[rank]]++
	}
	return counts
}
