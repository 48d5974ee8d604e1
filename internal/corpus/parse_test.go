package corpus

import (
	"strings"
	"testing"
)

func TestParseReader(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"# transcription header",
		"",
		"<f1r.P.1>  daiin chedy qokeedy",
		"<f1r.P.2>\tshedy  qokaiin",
		"<f2v.T.1> otedy",
	}, "\n")

	records, err := ParseReader(strings.NewReader(input), "test.txt")
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}

	if len(records) != 6 {
		t.Fatalf("records = %d, want 6", len(records))
	}

	first := records[0]
	if first.Token != "daiin" || first.Section != "f1r" || first.Line != "f1r.P.1" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	last := records[5]
	if last.Token != "otedy" || last.Section != "f2v" || last.Line != "f2v.T.1" {
		t.Fatalf("unexpected last record: %+v", last)
	}
}

func TestParseReader_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "no locus", input: "daiin chedy"},
		{name: "unterminated", input: "<f1r.P.1 daiin"},
		{name: "empty locus", input: "<>  daiin"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseReader(strings.NewReader(tt.input), "bad.txt"); err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
		})
	}
}

func TestSectionsAndPairs(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"<f1r.P.1>  a b c",
		"<f1r.P.2>  d e",
		"<f2v.P.1>  f g",
	}, "\n")
	records, err := ParseReader(strings.NewReader(input), "test.txt")
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}

	sections := Sections(records)
	if len(sections) != 2 || sections[0] != "f1r" || sections[1] != "f2v" {
		t.Fatalf("sections = %v", sections)
	}

	// Adjacent pairs never cross line boundaries: a-b b-c d-e f-g.
	pairs := Pairs(records)
	if len(pairs) != 4 {
		t.Fatalf("pairs = %d, want 4", len(pairs))
	}
	if pairs[2].Current.Token != "d" || pairs[2].Next.Token != "e" {
		t.Fatalf("unexpected pair: %+v", pairs[2])
	}
}
