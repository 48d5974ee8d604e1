package calibrate

import (
	"fmt"
	"sync"

	"github.com/stvadams-research/voynichMS-sub006/internal/corpus"
	"github.com/stvadams-research/voynichMS-sub006/internal/lattice"
	"github.com/stvadams-research/voynichMS-sub006/internal/score"
)

// FoldResult is one leave-one-section-out fold: offsets trained on every
// other section, evaluated on the held-out one.
type FoldResult struct {
	Section              string  `json:"section"`
	HeldOutPairs         int     `json:"held_out_pairs"`
	BaselineRate         float64 `json:"baseline_rate"`
	CalibratedRate       float64 `json:"calibrated_rate"`
	Delta                float64 `json:"delta"`
	LowConfidenceWindows int     `json:"low_confidence_windows"`
	Insufficient         bool    `json:"insufficient,omitempty"`
}

// Report is the calibration output: the final offset table trained on the
// full corpus plus the cross-validation evidence for it.
type Report struct {
	Folds             []FoldResult `json:"folds"`
	MeanDelta         float64      `json:"mean_delta"`
	DeltaVariance     float64      `json:"delta_variance"`
	Overfit           bool         `json:"overfit"`
	NegativeFolds     []string     `json:"negative_folds,omitempty"`
	Offsets           []int        `json:"offsets"`
	LowConfidence     []bool       `json:"low_confidence"`
	WindowTransitions []int        `json:"window_transitions"`
}

// Calibrate trains the final offset table on the whole corpus and validates
// it by leave-one-section-out cross-validation. It returns the calibrated
// model and the report. On ErrInsufficientFoldData the report (and the
// model, calibrated from the folds that were valid) is still returned.
func Calibrate(m *lattice.Model, records []corpus.Record, opts Options) (*lattice.Model, Report, error) {
	minFold := opts.minFold()

	all := collectTransitions(m, records)
	offsets, lowConfidence, counts := offsetsFromTransitions(all, m.K, minFold)

	report := Report{
		Offsets:           offsets,
		LowConfidence:     lowConfidence,
		WindowTransitions: counts,
	}

	sections := corpus.Sections(records)
	if len(sections) >= 2 {
		report.Folds = runFolds(m, records, sections, minFold)
		summarize(&report)
	}

	calibrated := m.WithOffsets(offsets, lowConfidence)

	for _, fold := range report.Folds {
		if fold.Insufficient {
			return calibrated, report, fmt.Errorf("%w: section %s has %d transitions, need %d",
				ErrInsufficientFoldData, fold.Section, fold.HeldOutPairs, minFold)
		}
	}
	return calibrated, report, nil
}

// runFolds evaluates every fold. Folds are independent pure computations:
// they fan out over goroutines and each writes only its own slot, so the
// result order (and therefore the report) is deterministic.
func runFolds(m *lattice.Model, records []corpus.Record, sections []string, minFold int) []FoldResult {
	folds := make([]FoldResult, len(sections))

	var wg sync.WaitGroup
	for i, section := range sections {
		wg.Add(1)
		go func(i int, section string) {
			defer wg.Done()
			folds[i] = runFold(m, records, section, minFold)
		}(i, section)
	}
	wg.Wait()
	return folds
}

func runFold(m *lattice.Model, records []corpus.Record, heldOut string, minFold int) FoldResult {
	train := make([]corpus.Record, 0, len(records))
	held := make([]corpus.Record, 0)
	for _, record := range records {
		if record.Section == heldOut {
			held = append(held, record)
			continue
		}
		train = append(train, record)
	}

	offsets, lowConfidence, _ := offsetsFromTransitions(collectTransitions(m, train), m.K, minFold)
	calibrated := m.WithOffsets(offsets, lowConfidence)

	baseline := score.Score(m, held, score.Options{})
	corrected := score.Score(calibrated, held, score.Options{})

	lowCount := 0
	for _, low := range lowConfidence {
		if low {
			lowCount++
		}
	}

	return FoldResult{
		Section:              heldOut,
		HeldOutPairs:         baseline.TotalPairs,
		BaselineRate:         baseline.AdmissibilityRate(),
		CalibratedRate:       corrected.AdmissibilityRate(),
		Delta:                corrected.AdmissibilityRate() - baseline.AdmissibilityRate(),
		LowConfidenceWindows: lowCount,
		Insufficient:         baseline.TotalPairs < minFold,
	}
}

// summarize reduces fold results sequentially: mean, population variance,
// and the overfitting flags. A negative mean improvement is reported, never
// hidden.
func summarize(report *Report) {
	if len(report.Folds) == 0 {
		return
	}

	sum := 0.0
	for _, fold := range report.Folds {
		sum += fold.Delta
		if fold.Delta < 0 {
			report.NegativeFolds = append(report.NegativeFolds, fold.Section)
		}
	}
	mean := sum / float64(len(report.Folds))

	variance := 0.0
	for _, fold := range report.Folds {
		d := fold.Delta - mean
		variance += d * d
	}
	variance /= float64(len(report.Folds))

	report.MeanDelta = mean
	report.DeltaVariance = variance
	report.Overfit = mean < 0
}
