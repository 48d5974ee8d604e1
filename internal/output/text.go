package output

import (
	"fmt"
	"io"

	"github.com/stvadams-research/voynichMS-sub006/internal/score"
)

// TextFormatter renders a report in human-readable text.
type TextFormatter struct{}

// Format writes category counts, rates, and any per-transition diagnostics.
func (f *TextFormatter) Format(w io.Writer, report Report) error {
	if _, err := fmt.Fprintf(w, "model: %s  run: %s  mask: %d\n", report.Model, report.RunID, report.Mask); err != nil {
		return err
	}
	for _, category := range score.AllCategories() {
		if _, err := fmt.Fprintf(w, "  %-20s %6d\n", category, report.Counts[category]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "pairs: %d  admissibility: %.4f  coverage: %.4f\n",
		report.TotalPairs, report.AdmissibilityRate, report.CoverageRate); err != nil {
		return err
	}

	for _, d := range report.Diagnostics {
		if _, err := fmt.Fprintf(w, "%s:%d %s->%s predicted=%d actual=%d distance=%d %s\n",
			d.Line, d.Index, d.Current, d.Next, d.Predicted, d.Actual, d.Distance, d.Category); err != nil {
			return err
		}
	}
	return nil
}
