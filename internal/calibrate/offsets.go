// Package calibrate learns the per-window drift corrections and validates
// them by leave-one-section-out cross-validation.
package calibrate

import (
	"errors"
	"sort"

	"github.com/stvadams-research/voynichMS-sub006/internal/corpus"
	"github.com/stvadams-research/voynichMS-sub006/internal/lattice"
	"github.com/stvadams-research/voynichMS-sub006/internal/window"
)

// ErrInsufficientFoldData is returned when a held-out section carries too
// few transitions for a stable mode estimate. The calibration report is
// still returned alongside the error so diagnostics are not discarded.
var ErrInsufficientFoldData = errors.New("calibrate: insufficient fold data")

const defaultMinFoldTransitions = 25

// Options controls calibration thresholds.
type Options struct {
	// MinFoldTransitions is the minimum transition count required both for
	// a window's offset mode to be trusted and for a held-out section to
	// make a valid fold.
	MinFoldTransitions int
}

func (o Options) minFold() int {
	if o.MinFoldTransitions < 1 {
		return defaultMinFoldTransitions
	}
	return o.MinFoldTransitions
}

// transition is one observed drift sample: the home window of the current
// token and the signed circular distance from its uncorrected target to the
// successor's actual home window.
type transition struct {
	window int
	drift  int
}

// collectTransitions extracts drift samples from all within-line in-palette
// pairs. The uncorrected target is used: offsets are what calibration is
// solving for.
func collectTransitions(m *lattice.Model, records []corpus.Record) []transition {
	transitions := make([]transition, 0, len(records))
	for _, pair := range corpus.Pairs(records) {
		cur, ok := m.Rank(pair.Current.Token)
		if !ok {
			continue
		}
		next, ok := m.Rank(pair.Next.Token)
		if !ok {
			continue
		}
		transitions = append(transitions, transition{
			window: m.Home[cur],
			drift:  window.SignedDistance(m.Target[cur], m.Home[next], m.K),
		})
	}
	return transitions
}

// offsetsFromTransitions computes the per-window drift mode. Windows with
// fewer than minTransitions samples keep offset 0 and are flagged low
// confidence. Mode ties resolve to the smallest absolute drift, negative
// before positive at equal magnitude, so the result is total-ordered.
func offsetsFromTransitions(transitions []transition, k int, minTransitions int) (offsets []int, lowConfidence []bool, counts []int) {
	driftCounts := make([]map[int]int, k)
	counts = make([]int, k)
	for i := range driftCounts {
		driftCounts[i] = make(map[int]int)
	}
	for _, tr := range transitions {
		driftCounts[tr.window][tr.drift]++
		counts[tr.window]++
	}

	offsets = make([]int, k)
	lowConfidence = make([]bool, k)
	for w := 0; w < k; w++ {
		if counts[w] < minTransitions {
			lowConfidence[w] = true
			continue
		}
		offsets[w] = driftMode(driftCounts[w])
	}
	return offsets, lowConfidence, counts
}

func driftMode(counts map[int]int) int {
	drifts := make([]int, 0, len(counts))
	for drift := range counts {
		drifts = append(drifts, drift)
	}
	sort.Slice(drifts, func(i, j int) bool {
		a, b := drifts[i], drifts[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		if abs(a) != abs(b) {
			return abs(a) < abs(b)
		}
		return a < b
	})
	if len(drifts) == 0 {
		return 0
	}
	return drifts[0]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
