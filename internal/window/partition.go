package window

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/stvadams-research/voynichMS-sub006/internal/corpus"
	"github.com/stvadams-research/voynichMS-sub006/internal/vocab"
)

// ErrDegenerateWindowing is returned when the window count is too large (or
// too small) relative to the vocabulary for drift semantics to hold.
var ErrDegenerateWindowing = errors.New("window: degenerate windowing")

// ErrMissingSeed is returned when a partition is requested without an
// explicit seed. Determinism is a caller contract; there is no time-based
// default.
var ErrMissingSeed = errors.New("window: missing seed")

const (
	defaultNeighborhoodSpan = 2
	defaultKMeansIterations = 12
	defaultOrderingRestarts = 4
	maxOrderingPasses       = 100
	contextDimensions       = 64
)

// Options controls partitioning. Seed is required.
type Options struct {
	K                int
	Seed             *int64
	NeighborhoodSpan int
	KMeansIterations int
	OrderingRestarts int
}

// Partition maps every vocabulary rank to its home window. The mapping is
// total and disjoint: each rank has exactly one window, and every window id
// in [0, K) holds at least one token.
type Partition struct {
	K    int
	Home []int
}

// Stats reports the ring-ordering travel cost before and after local search,
// summed over all training transitions.
type Stats struct {
	InitialCost int64
	FinalCost   int64
}

// Build clusters the vocabulary into K groups by co-occurrence and assigns
// ring positions minimizing the circular distance traversed by the training
// corpus. Identical (vocabulary, corpus, options) always yields an identical
// partition.
func Build(voc *vocab.Vocabulary, records []corpus.Record, opts Options) (*Partition, Stats, error) {
	if opts.Seed == nil {
		return nil, Stats{}, fmt.Errorf("%w: partitioning requires an explicit seed", ErrMissingSeed)
	}
	if opts.K < 2 || opts.K >= voc.Size() {
		return nil, Stats{}, fmt.Errorf("%w: %d windows over %d tokens", ErrDegenerateWindowing, opts.K, voc.Size())
	}

	span := opts.NeighborhoodSpan
	if span < 1 {
		span = defaultNeighborhoodSpan
	}
	iterations := opts.KMeansIterations
	if iterations < 1 {
		iterations = defaultKMeansIterations
	}
	restarts := opts.OrderingRestarts
	if restarts < 1 {
		restarts = defaultOrderingRestarts
	}

	embeddings := contextEmbeddings(voc, records, span)
	clusters := kmeans(embeddings, opts.K, iterations, rngFromSeed(deriveSeed(*opts.Seed, 1)))

	transitions := clusterTransitions(voc, records, clusters, opts.K)
	positions, stats := orderRing(transitions, opts.K, restarts, *opts.Seed)

	home := make([]int, voc.Size())
	for rank, cluster := range clusters {
		home[rank] = positions[cluster]
	}
	return &Partition{K: opts.K, Home: home}, stats, nil
}

// contextEmbeddings builds one L2-normalized co-occurrence vector per
// vocabulary rank, counting neighbors within span positions on the same
// line, restricted to the most frequent context tokens.
func contextEmbeddings(voc *vocab.Vocabulary, records []corpus.Record, span int) [][]float64 {
	dims := contextDimensions
	if voc.Size() < dims {
		dims = voc.Size()
	}

	embeddings := make([][]float64, voc.Size())
	for rank := range embeddings {
		embeddings[rank] = make([]float64, dims)
	}

	for i, record := range records {
		rank, ok := voc.Rank(record.Token)
		if !ok {
			continue
		}
		for j := i - span; j <= i+span; j++ {
			if j == i || j < 0 || j >= len(records) {
				continue
			}
			if records[j].Section != record.Section || records[j].Line != record.Line {
				continue
			}
			ctx, ok := voc.Rank(records[j].Token)
			if !ok || ctx >= dims {
				continue
			}
			embeddings[rank][ctx]++
		}
	}

	for rank := range embeddings {
		norm := 0.0
		for _, v := range embeddings[rank] {
			norm += v * v
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for d := range embeddings[rank] {
			embeddings[rank][d] /= norm
		}
	}
	return embeddings
}

// kmeans assigns each embedding row to one of k clusters. All tie-breaks are
// total-ordered: rows iterate by vocabulary rank, equidistant centroids
// resolve to the lowest cluster id, and empty-cluster repair always picks
// the farthest row with the lowest rank. Only the centroid initialization
// consumes randomness.
func kmeans(rows [][]float64, k int, iterations int, rng *rand.Rand) []int {
	n := len(rows)
	dims := len(rows[0])

	perm := shuffledRange(n, rng)
	centroids := make([][]float64, k)
	for c := 0; c < k; c++ {
		centroids[c] = make([]float64, dims)
		copy(centroids[c], rows[perm[c]])
	}

	assignment := make([]int, n)
	for iter := 0; iter < iterations; iter++ {
		changed := assignRows(rows, centroids, assignment)
		repairEmptyClusters(rows, centroids, assignment, k)
		updateCentroids(rows, centroids, assignment)
		if !changed && iter > 0 {
			break
		}
	}

	// Final pass keeps assignment consistent with the last centroid update
	// and guarantees no empty cluster survives.
	assignRows(rows, centroids, assignment)
	repairEmptyClusters(rows, centroids, assignment, k)
	return assignment
}

func assignRows(rows [][]float64, centroids [][]float64, assignment []int) bool {
	changed := false
	for rank, row := range rows {
		best := 0
		bestDist := squaredDistance(row, centroids[0])
		for c := 1; c < len(centroids); c++ {
			d := squaredDistance(row, centroids[c])
			if d < bestDist {
				best = c
				bestDist = d
			}
		}
		if assignment[rank] != best {
			assignment[rank] = best
			changed = true
		}
	}
	return changed
}

func repairEmptyClusters(rows [][]float64, centroids [][]float64, assignment []int, k int) {
	counts := make([]int, k)
	for _, c := range assignment {
		counts[c]++
	}
	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			continue
		}
		// Steal the row farthest from its centroid among clusters that can
		// spare one; ties resolve to the lowest rank.
		donor := -1
		donorDist := -1.0
		for rank, cur := range assignment {
			if counts[cur] <= 1 {
				continue
			}
			d := squaredDistance(rows[rank], centroids[cur])
			if d > donorDist {
				donor = rank
				donorDist = d
			}
		}
		if donor < 0 {
			continue
		}
		counts[assignment[donor]]--
		assignment[donor] = c
		counts[c]++
		copy(centroids[c], rows[donor])
	}
}

func updateCentroids(rows [][]float64, centroids [][]float64, assignment []int) {
	k := len(centroids)
	dims := len(centroids[0])
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := 0; c < k; c++ {
		sums[c] = make([]float64, dims)
	}
	for rank, c := range assignment {
		counts[c]++
		for d, v := range rows[rank] {
			sums[c][d] += v
		}
	}
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			continue
		}
		for d := 0; d < dims; d++ {
			centroids[c][d] = sums[c][d] / float64(counts[c])
		}
	}
}

func squaredDistance(a []float64, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// clusterTransitions counts cluster-to-cluster transitions over all
// within-line adjacent in-vocabulary pairs.
func clusterTransitions(voc *vocab.Vocabulary, records []corpus.Record, clusters []int, k int) [][]int64 {
	transitions := make([][]int64, k)
	for i := range transitions {
		transitions[i] = make([]int64, k)
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
		transitions[clusters[cur]][clusters[next]]++
	}
	return transitions
}

// orderRing finds a ring placement of the k clusters minimizing total
// traversed circular distance. Local search swaps cluster positions until a
// full pass yields no strict improvement; seeded restarts escape shallow
// local minima. The first placement reaching the best cost wins, so the
// result is deterministic for a given seed.
func orderRing(transitions [][]int64, k int, restarts int, seed int64) ([]int, Stats) {
	identity := make([]int, k)
	for i := range identity {
		identity[i] = i
	}
	initialCost := ringCost(transitions, identity, k)

	best := localSearch(transitions, identity, k)
	bestCost := ringCost(transitions, best, k)

	for r := 0; r < restarts; r++ {
		rng := rngFromSeed(deriveSeed(seed, uint64(r)+2))
		start := shuffledRange(k, rng)
		candidate := localSearch(transitions, start, k)
		cost := ringCost(transitions, candidate, k)
		if cost < bestCost {
			best = candidate
			bestCost = cost
		}
	}
	return best, Stats{InitialCost: initialCost, FinalCost: bestCost}
}

func localSearch(transitions [][]int64, start []int, k int) []int {
	positions := make([]int, k)
	copy(positions, start)
	cost := ringCost(transitions, positions, k)

	for pass := 0; pass < maxOrderingPasses; pass++ {
		improved := false
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				positions[i], positions[j] = positions[j], positions[i]
				trial := ringCost(transitions, positions, k)
				if trial < cost {
					cost = trial
					improved = true
					continue
				}
				positions[i], positions[j] = positions[j], positions[i]
			}
		}
		if !improved {
			break
		}
	}
	return positions
}

func ringCost(transitions [][]int64, positions []int, k int) int64 {
	var cost int64
	for g := 0; g < k; g++ {
		for h := 0; h < k; h++ {
			count := transitions[g][h]
			if count == 0 {
				continue
			}
			cost += count * int64(Distance(positions[g], positions[h], k))
		}
	}
	return cost
}
