// Package engine drives the model-build pipeline: vocabulary clamp, window
// partition, lattice map, offset calibration. The result is a frozen Model
// plus a build report.
package engine

import (
	"github.com/stvadams-research/voynichMS-sub006/internal/calibrate"
	"github.com/stvadams-research/voynichMS-sub006/internal/config"
	"github.com/stvadams-research/voynichMS-sub006/internal/corpus"
	"github.com/stvadams-research/voynichMS-sub006/internal/lattice"
	"github.com/stvadams-research/voynichMS-sub006/internal/log"
	"github.com/stvadams-research/voynichMS-sub006/internal/score"
	"github.com/stvadams-research/voynichMS-sub006/internal/vocab"
	"github.com/stvadams-research/voynichMS-sub006/internal/window"
)

// BuildReport captures corpus, partition, and calibration statistics for
// one model build.
type BuildReport struct {
	TotalTokens         int              `json:"total_tokens"`
	DistinctTokens      int              `json:"distinct_tokens"`
	Lines               int              `json:"lines"`
	Sections            int              `json:"sections"`
	VocabularySize      int              `json:"vocabulary_size"`
	Coverage            float64          `json:"coverage"`
	WindowCount         int              `json:"window_count"`
	OrderingInitialCost int64            `json:"ordering_initial_cost"`
	OrderingFinalCost   int64            `json:"ordering_final_cost"`
	SelfAdmissibility   float64          `json:"self_admissibility_rate"`
	SelfCoverage        float64          `json:"self_coverage_rate"`
	Calibration         calibrate.Report `json:"calibration"`
}

// Build constructs a calibrated model from the corpus. On a calibration
// data shortfall the partially calibrated model and the report are still
// returned alongside the error so the caller can inspect the folds that
// succeeded.
func Build(cfg config.Engine, records []corpus.Record, logger *log.Logger) (*lattice.Model, BuildReport, error) {
	report := BuildReport{
		TotalTokens: len(records),
		Sections:    len(corpus.Sections(records)),
		Lines:       countLines(records),
		WindowCount: cfg.WindowCount,
	}
	report.DistinctTokens = countDistinct(records)

	voc, err := clamp(cfg, records)
	if err != nil {
		return nil, report, err
	}
	report.VocabularySize = voc.Size()
	report.Coverage = voc.Coverage()
	logger.Printf("vocabulary: %d tokens covering %.1f%% of %d occurrences",
		voc.Size(), voc.Coverage()*100, voc.TotalOccurrences())

	part, stats, err := window.Build(voc, records, window.Options{
		K:                cfg.WindowCount,
		Seed:             cfg.Seed,
		NeighborhoodSpan: cfg.NeighborhoodSpan,
		KMeansIterations: cfg.KMeansIterations,
		OrderingRestarts: cfg.OrderingRestarts,
	})
	if err != nil {
		return nil, report, err
	}
	report.OrderingInitialCost = stats.InitialCost
	report.OrderingFinalCost = stats.FinalCost
	logger.Printf("partition: %d windows, ordering cost %d -> %d",
		part.K, stats.InitialCost, stats.FinalCost)

	target := lattice.BuildMap(voc, part, records)
	starts := lattice.StartCounts(voc, part, records)
	model := lattice.New(voc, part, target, starts)

	calibrated, calReport, calErr := calibrate.Calibrate(model, records, calibrate.Options{
		MinFoldTransitions: cfg.MinFoldTransitions,
	})
	report.Calibration = calReport
	logger.Printf("calibration: mean fold delta %+.4f over %d folds",
		calReport.MeanDelta, len(calReport.Folds))

	self := score.Score(calibrated, records, score.Options{})
	report.SelfAdmissibility = self.AdmissibilityRate()
	report.SelfCoverage = self.CoverageRate()

	if calErr != nil {
		return calibrated, report, calErr
	}
	return calibrated, report, nil
}

func clamp(cfg config.Engine, records []corpus.Record) (*vocab.Vocabulary, error) {
	if cfg.CoverageTarget > 0 {
		return vocab.ClampCoverage(records, cfg.CoverageTarget)
	}
	return vocab.Clamp(records, cfg.VocabularySize)
}

func countDistinct(records []corpus.Record) int {
	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		seen[record.Token] = struct{}{}
	}
	return len(seen)
}

func countLines(records []corpus.Record) int {
	seen := make(map[string]struct{})
	for _, record := range records {
		seen[record.Section+"\x00"+record.Line] = struct{}{}
	}
	return len(seen)
}
