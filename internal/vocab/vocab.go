// Package vocab reduces a raw token corpus to a fixed, frequency-ranked
// vocabulary. The vocabulary is immutable once built; tokens outside it are
// treated as out-of-palette by every downstream consumer.
package vocab

import (
	"errors"
	"fmt"
	"sort"

	"github.com/stvadams-research/voynichMS-sub006/internal/corpus"
)

// ErrInsufficientCorpus is returned when the requested vocabulary size
// exceeds the number of distinct tokens in the corpus.
var ErrInsufficientCorpus = errors.New("vocab: insufficient corpus")

// Vocabulary is an ordered set of tokens, descending by corpus frequency,
// ties broken by first occurrence.
type Vocabulary struct {
	tokens []string
	counts []int
	ranks  map[string]int
	total  int
}

// Clamp builds a vocabulary of exactly n tokens.
func Clamp(records []corpus.Record, n int) (*Vocabulary, error) {
	ranked, total := rankTokens(records)
	if n > len(ranked) {
		return nil, fmt.Errorf("%w: requested %d tokens, corpus has %d distinct", ErrInsufficientCorpus, n, len(ranked))
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: requested %d tokens", ErrInsufficientCorpus, n)
	}
	return build(ranked[:n], total), nil
}

// ClampCoverage builds the smallest vocabulary whose tokens cover at least
// the given fraction of total corpus occurrences.
func ClampCoverage(records []corpus.Record, fraction float64) (*Vocabulary, error) {
	ranked, total := rankTokens(records)
	if len(ranked) == 0 {
		return nil, fmt.Errorf("%w: empty corpus", ErrInsufficientCorpus)
	}
	if fraction <= 0 || fraction > 1 {
		return nil, fmt.Errorf("vocab: coverage fraction %v out of (0, 1]", fraction)
	}

	need := int(float64(total)*fraction + 0.5)
	covered := 0
	n := 0
	for n < len(ranked) && covered < need {
		covered += ranked[n].count
		n++
	}
	return build(ranked[:n], total), nil
}

// Size returns the number of vocabulary tokens.
func (v *Vocabulary) Size() int { return len(v.tokens) }

// Token returns the token at the given rank.
func (v *Vocabulary) Token(rank int) string { return v.tokens[rank] }

// Tokens returns the tokens in rank order. The slice is a copy.
func (v *Vocabulary) Tokens() []string {
	out := make([]string, len(v.tokens))
	copy(out, v.tokens)
	return out
}

// Count returns the corpus frequency of the token at the given rank.
func (v *Vocabulary) Count(rank int) int { return v.counts[rank] }

// Rank returns the frequency rank of a token and whether it is in the
// vocabulary. Rank 0 is the most frequent token.
func (v *Vocabulary) Rank(token string) (int, bool) {
	rank, ok := v.ranks[token]
	return rank, ok
}

// TotalOccurrences returns the size of the corpus the vocabulary was built
// from, counting every occurrence including out-of-palette tokens.
func (v *Vocabulary) TotalOccurrences() int { return v.total }

// Coverage returns the fraction of corpus occurrences the vocabulary covers.
func (v *Vocabulary) Coverage() float64 {
	if v.total == 0 {
		return 0
	}
	covered := 0
	for _, count := range v.counts {
		covered += count
	}
	return float64(covered) / float64(v.total)
}

type rankedToken struct {
	token string
	count int
	first int
}

func rankTokens(records []corpus.Record) ([]rankedToken, int) {
	counts := make(map[string]int)
	firsts := make(map[string]int)
	for i, record := range records {
		if _, seen := counts[record.Token]; !seen {
			firsts[record.Token] = i
		}
		counts[record.Token]++
	}

	ranked := make([]rankedToken, 0, len(counts))
	for token, count := range counts {
		ranked = append(ranked, rankedToken{token: token, count: count, first: firsts[token]})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].first < ranked[j].first
	})
	return ranked, len(records)
}

func build(ranked []rankedToken, total int) *Vocabulary {
	v := &Vocabulary{
		tokens: make([]string, len(ranked)),
		counts: make([]int, len(ranked)),
		ranks:  make(map[string]int, len(ranked)),
		total:  total,
	}
	for i, entry := range ranked {
		v.tokens[i] = entry.token
		v.counts[i] = entry.count
		v.ranks[entry.token] = i
	}
	return v
}
