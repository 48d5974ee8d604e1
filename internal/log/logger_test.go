package log

import (
	"bytes"
	"testing"
)

func TestPrintf_Enabled(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Enabled: true, W: &buf}

	l.Printf("vocabulary: %d tokens", 1500)

	want := "vocabulary: 1500 tokens\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintf_Disabled(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Enabled: false, W: &buf}

	l.Printf("vocabulary: %d tokens", 1500)

	if got := buf.String(); got != "" {
		t.Errorf("expected no output, got %q", got)
	}
}

func TestPrintf_NilReceiver(t *testing.T) {
	var l *Logger
	l.Printf("must not panic")
}
