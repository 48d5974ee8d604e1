// Package generate produces synthetic token sequences by constrained
// stochastic traversal of a calibrated model. Output is a pure function of
// (model, seed, parameters); the seed is required and never defaulted.
package generate

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/stvadams-research/voynichMS-sub006/internal/lattice"
	"github.com/stvadams-research/voynichMS-sub006/internal/window"
)

// ErrMissingSeed is returned when generation is requested without an
// explicit seed.
var ErrMissingSeed = errors.New("generate: missing seed")

// ErrEmptyCandidateSet is returned when the drift tolerance admits no
// candidate token. The run aborts rather than emit an out-of-model token.
var ErrEmptyCandidateSet = errors.New("generate: empty candidate set")

// Tolerance selects the drift radius for candidate tokens.
type Tolerance string

// Supported tolerances, mirroring the admissible scoring buckets.
const (
	ToleranceStrict   Tolerance = "strict"   // candidates within distance 1
	ToleranceExtended Tolerance = "extended" // candidates within distance 3
)

func (t Tolerance) radius() (int, error) {
	switch t {
	case "", ToleranceStrict:
		return 1, nil
	case ToleranceExtended:
		return 3, nil
	default:
		return 0, fmt.Errorf("generate: unknown tolerance %q", t)
	}
}

// Bias selects the scribal-preference weighting over in-window candidates.
type Bias string

// Supported bias functions.
const (
	BiasFrequency Bias = "frequency" // weight by corpus frequency
	BiasUniform   Bias = "uniform"   // all candidates equal
	BiasRank      Bias = "rank"      // harmonic decay by vocabulary rank
)

func (b Bias) weight(m *lattice.Model, rank int) (float64, error) {
	switch b {
	case "", BiasFrequency:
		return float64(m.Counts[rank]), nil
	case BiasUniform:
		return 1, nil
	case BiasRank:
		return 1 / float64(rank+1), nil
	default:
		return 0, fmt.Errorf("generate: unknown bias %q", b)
	}
}

// Params controls one generation run. Seed is required. StartWindow nil
// means sample each line's start from the model's start distribution.
type Params struct {
	Seed             *int64
	Lines            int
	MinTokensPerLine int
	MaxTokensPerLine int
	StartWindow      *int
	Tolerance        Tolerance
	Bias             Bias
}

func (p Params) validate(m *lattice.Model) error {
	if p.Seed == nil {
		return fmt.Errorf("%w: generation requires an explicit seed", ErrMissingSeed)
	}
	if p.Lines < 1 {
		return fmt.Errorf("generate: line count %d out of range", p.Lines)
	}
	if p.MinTokensPerLine < 1 || p.MaxTokensPerLine < p.MinTokensPerLine {
		return fmt.Errorf("generate: token range [%d, %d] invalid", p.MinTokensPerLine, p.MaxTokensPerLine)
	}
	if p.StartWindow != nil && (*p.StartWindow < 0 || *p.StartWindow >= m.K) {
		return fmt.Errorf("generate: start window %d out of [0, %d)", *p.StartWindow, m.K)
	}
	return nil
}

// Line is one generated token line.
type Line []string

// Run generates lines from the model. Identical (model, params) inputs with
// the same seed always reproduce the same output.
func Run(m *lattice.Model, params Params) ([]Line, error) {
	if err := params.validate(m); err != nil {
		return nil, err
	}
	radius, err := params.Tolerance.radius()
	if err != nil {
		return nil, err
	}
	if _, err := params.Bias.weight(m, 0); err != nil {
		return nil, err
	}

	byWindow := tokensByWindow(m)
	rng := rand.New(rand.NewSource(*params.Seed))

	lines := make([]Line, 0, params.Lines)
	for lineNo := 0; lineNo < params.Lines; lineNo++ {
		length := params.MinTokensPerLine
		if params.MaxTokensPerLine > params.MinTokensPerLine {
			length += rng.Intn(params.MaxTokensPerLine - params.MinTokensPerLine + 1)
		}

		line, err := emitLine(m, params, byWindow, radius, length, rng)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// emitLine walks one line: pick a start window, then repeatedly sample a
// candidate within drift tolerance of the predicted window and advance the
// prediction through the emitted token's lattice entry. The predicted
// window is local state; nothing survives the line boundary.
func emitLine(m *lattice.Model, params Params, byWindow [][]int, radius int, length int, rng *rand.Rand) (Line, error) {
	predicted := startWindow(m, params, rng)

	line := make(Line, 0, length)
	for len(line) < length {
		rank, err := sampleCandidate(m, byWindow, predicted, radius, params.Bias, rng)
		if err != nil {
			return nil, err
		}
		line = append(line, m.Tokens[rank])
		predicted = m.Predicted(rank, 0)
	}
	return line, nil
}

func startWindow(m *lattice.Model, params Params, rng *rand.Rand) int {
	if params.StartWindow != nil {
		return *params.StartWindow
	}

	total := 0
	for _, count := range m.StartCounts {
		total += count
	}
	if total == 0 {
		return rng.Intn(m.K)
	}

	draw := rng.Intn(total)
	for w, count := range m.StartCounts {
		draw -= count
		if draw < 0 {
			return w
		}
	}
	return m.K - 1
}

// sampleCandidate draws one token whose home window lies within radius of
// the predicted window, weighted by the bias function.
func sampleCandidate(m *lattice.Model, byWindow [][]int, predicted int, radius int, bias Bias, rng *rand.Rand) (int, error) {
	candidates := make([]int, 0)
	weights := make([]float64, 0)
	total := 0.0
	for w := 0; w < m.K; w++ {
		if window.Distance(predicted, w, m.K) > radius {
			continue
		}
		for _, rank := range byWindow[w] {
			weight, err := bias.weight(m, rank)
			if err != nil {
				return 0, err
			}
			if weight <= 0 {
				continue
			}
			candidates = append(candidates, rank)
			weights = append(weights, weight)
			total += weight
		}
	}
	if len(candidates) == 0 {
		return 0, fmt.Errorf("%w: no token within distance %d of window %d", ErrEmptyCandidateSet, radius, predicted)
	}

	draw := rng.Float64() * total
	for i, weight := range weights {
		draw -= weight
		if draw < 0 {
			return candidates[i], nil
		}
	}
	return candidates[len(candidates)-1], nil
}

// tokensByWindow indexes vocabulary ranks by home window, in rank order so
// sampling order is total.
func tokensByWindow(m *lattice.Model) [][]int {
	byWindow := make([][]int, m.K)
	for rank, home := range m.Home {
		byWindow[home] = append(byWindow[home], rank)
	}
	return byWindow
}
