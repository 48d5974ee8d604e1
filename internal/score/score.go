// Package score classifies the transitions of a token sequence against a
// calibrated model. Scoring is a pure function of (model, sequence,
// options): no state survives a call and identical inputs always produce
// identical results.
package score

import (
	"github.com/stvadams-research/voynichMS-sub006/internal/corpus"
	"github.com/stvadams-research/voynichMS-sub006/internal/lattice"
	"github.com/stvadams-research/voynichMS-sub006/internal/window"
)

// Category is the drift classification of one transition.
type Category string

// Drift categories. Every (predicted, actual) pair plus the out-of-palette
// case maps to exactly one of the five.
const (
	CategoryAdmissibleStrict   Category = "admissible-strict"   // distance <= 1
	CategoryAdmissibleExtended Category = "admissible-extended" // distance 2-3
	CategoryMechanicalSlip     Category = "mechanical-slip"     // distance 4-10
	CategoryExtremeJump        Category = "extreme-jump"        // distance > 10
	CategoryOutOfPalette       Category = "out-of-palette"      // either token unranked
)

// AllCategories returns the five categories in report order.
func AllCategories() []Category {
	return []Category{
		CategoryAdmissibleStrict,
		CategoryAdmissibleExtended,
		CategoryMechanicalSlip,
		CategoryExtremeJump,
		CategoryOutOfPalette,
	}
}

// categoryFor buckets a circular distance between predicted and actual
// windows.
func categoryFor(distance int) Category {
	switch {
	case distance <= 1:
		return CategoryAdmissibleStrict
	case distance <= 3:
		return CategoryAdmissibleExtended
	case distance <= 10:
		return CategoryMechanicalSlip
	default:
		return CategoryExtremeJump
	}
}

// Options controls one scoring run. Mask is a global rotation applied to
// every prediction, used to probe whole-document rotations without
// rebuilding the model. Diagnostics enables per-transition rows.
type Options struct {
	Mask        int
	Diagnostics bool
}

// Diagnostic is one transition's classification, for interactive
// inspection. Predicted and Actual are -1 for out-of-palette transitions.
type Diagnostic struct {
	Section   string   `json:"section"`
	Line      string   `json:"line"`
	Index     int      `json:"index"`
	Current   string   `json:"current"`
	Next      string   `json:"next"`
	Predicted int      `json:"predicted"`
	Actual    int      `json:"actual"`
	Distance  int      `json:"distance"`
	Offset    int      `json:"offset"`
	Category  Category `json:"category"`
}

// Result aggregates one scoring run. The per-category counts always sum to
// TotalPairs.
type Result struct {
	Counts      map[Category]int `json:"counts"`
	TotalPairs  int              `json:"total_pairs"`
	Diagnostics []Diagnostic     `json:"diagnostics,omitempty"`
}

// AdmissibilityRate is the share of transitions classified strict or
// extended, over all scored transitions.
func (r Result) AdmissibilityRate() float64 {
	if r.TotalPairs == 0 {
		return 0
	}
	admissible := r.Counts[CategoryAdmissibleStrict] + r.Counts[CategoryAdmissibleExtended]
	return float64(admissible) / float64(r.TotalPairs)
}

// CoverageRate is the share of transitions with both tokens in palette.
func (r Result) CoverageRate() float64 {
	if r.TotalPairs == 0 {
		return 0
	}
	covered := r.TotalPairs - r.Counts[CategoryOutOfPalette]
	return float64(covered) / float64(r.TotalPairs)
}

// Score classifies every within-line transition of the sequence. Line
// boundaries come from the records themselves; crossing one never produces
// a transition, and no model state carries across lines.
func Score(m *lattice.Model, records []corpus.Record, opts Options) Result {
	result := Result{Counts: make(map[Category]int)}
	for _, category := range AllCategories() {
		result.Counts[category] = 0
	}

	for i, pair := range corpus.Pairs(records) {
		result.TotalPairs++

		cur, curOK := m.Rank(pair.Current.Token)
		next, nextOK := m.Rank(pair.Next.Token)
		if !curOK || !nextOK {
			result.Counts[CategoryOutOfPalette]++
			if opts.Diagnostics {
				result.Diagnostics = append(result.Diagnostics, Diagnostic{
					Section:   pair.Current.Section,
					Line:      pair.Current.Line,
					Index:     i,
					Current:   pair.Current.Token,
					Next:      pair.Next.Token,
					Predicted: -1,
					Actual:    -1,
					Distance:  -1,
					Category:  CategoryOutOfPalette,
				})
			}
			continue
		}

		predicted := m.Predicted(cur, opts.Mask)
		actual := m.Home[next]
		distance := window.Distance(predicted, actual, m.K)
		category := categoryFor(distance)
		result.Counts[category]++

		if opts.Diagnostics {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Section:   pair.Current.Section,
				Line:      pair.Current.Line,
				Index:     i,
				Current:   pair.Current.Token,
				Next:      pair.Next.Token,
				Predicted: predicted,
				Actual:    actual,
				Distance:  distance,
				Offset:    m.Offsets[m.Home[cur]],
				Category:  category,
			})
		}
	}
	return result
}
