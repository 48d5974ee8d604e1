// Package output renders scoring reports for humans and machines.
package output

import (
	"io"

	"github.com/stvadams-research/voynichMS-sub006/internal/score"
)

// Report is one scoring run, ready for rendering: the run identity plus the
// scored result and its derived rates.
type Report struct {
	RunID             string           `json:"run_id"`
	Model             string           `json:"model"`
	Mask              int              `json:"mask"`
	TotalPairs        int              `json:"total_pairs"`
	Counts            map[score.Category]int `json:"counts"`
	AdmissibilityRate float64          `json:"admissibility_rate"`
	CoverageRate      float64          `json:"coverage_rate"`
	Diagnostics       []score.Diagnostic `json:"diagnostics,omitempty"`
}

// NewReport derives a renderable report from a scoring result.
func NewReport(runID string, model string, mask int, result score.Result) Report {
	return Report{
		RunID:             runID,
		Model:             model,
		Mask:              mask,
		TotalPairs:        result.TotalPairs,
		Counts:            result.Counts,
		AdmissibilityRate: result.AdmissibilityRate(),
		CoverageRate:      result.CoverageRate(),
		Diagnostics:       result.Diagnostics,
	}
}

// Formatter defines the interface for rendering a scoring report.
type Formatter interface {
	Format(w io.Writer, report Report) error
}
