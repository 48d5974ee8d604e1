package corpus

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseReader reads one transcription source and returns its token records.
// Blank lines and lines starting with '#' are skipped. Any other line must
// begin with a <locus> marker; a line without one is malformed and rejected
// with its position.
func ParseReader(r io.Reader, name string) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	records := make([]Record, 0)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := normalizeLine(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		locus, rest, err := splitLocus(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}

		section := sectionOf(locus)
		for _, token := range strings.Fields(rest) {
			records = append(records, Record{
				Token:   token,
				Section: section,
				Line:    locus,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return records, nil
}

// splitLocus separates the <locus> marker from the token remainder.
func splitLocus(line string) (locus string, rest string, err error) {
	if !strings.HasPrefix(line, "<") {
		return "", "", fmt.Errorf("missing locus marker")
	}
	end := strings.IndexByte(line, '>')
	if end < 0 {
		return "", "", fmt.Errorf("unterminated locus marker")
	}
	locus = strings.TrimSpace(line[1:end])
	if locus == "" {
		return "", "", fmt.Errorf("empty locus marker")
	}
	return locus, line[end+1:], nil
}

// sectionOf derives the section id from a locus: the text before the first
// dot, so <f1r.P.3> belongs to section f1r.
func sectionOf(locus string) string {
	if i := strings.IndexByte(locus, '.'); i >= 0 {
		return locus[:i]
	}
	return locus
}

func normalizeLine(input string) string {
	value := strings.ReplaceAll(input, "\t", " ")
	return strings.TrimSpace(value)
}
