// Package corpus ingests transcription sources into token records.
//
// A transcription line has the shape
//
//	<f1r.P.3>  daiin chedy qokeedy
//
// where the locus marker identifies the folio section and line, and the
// remainder is a whitespace-separated token stream. Character-level
// canonicalization (line endings, interior runs of whitespace) happens here;
// everything downstream sees clean records only.
package corpus

// Record is one token occurrence with its position in the source.
type Record struct {
	Token   string `json:"token"`
	Section string `json:"section"`
	Line    string `json:"line"`
}

// Sections returns the distinct section ids in first-appearance order.
func Sections(records []Record) []string {
	seen := make(map[string]bool)
	sections := make([]string, 0)
	for _, record := range records {
		if seen[record.Section] {
			continue
		}
		seen[record.Section] = true
		sections = append(sections, record.Section)
	}
	return sections
}

// Tokens returns the token stream without positional information.
func Tokens(records []Record) []string {
	tokens := make([]string, 0, len(records))
	for _, record := range records {
		tokens = append(tokens, record.Token)
	}
	return tokens
}

// Pair is one adjacent (current, next) transition within a single line.
// Transitions never cross line boundaries.
type Pair struct {
	Current Record
	Next    Record
}

// Pairs returns all within-line adjacent transitions in corpus order.
func Pairs(records []Record) []Pair {
	pairs := make([]Pair, 0, len(records))
	for i := 0; i+1 < len(records); i++ {
		if records[i].Section != records[i+1].Section || records[i].Line != records[i+1].Line {
			continue
		}
		pairs = append(pairs, Pair{Current: records[i], Next: records[i+1]})
	}
	return pairs
}
