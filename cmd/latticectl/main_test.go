package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_UsageAndUnknown(t *testing.T) {
	t.Parallel()

	if code := run(nil); code != 0 {
		t.Fatalf("empty args exit = %d, want 0", code)
	}
	if code := run([]string{"unknown"}); code != 2 {
		t.Fatalf("unknown command exit = %d, want 2", code)
	}
}

func TestRun_FlagValidation(t *testing.T) {
	t.Parallel()

	if code := run([]string{"build"}); code != 2 {
		t.Fatalf("build without flags exit = %d, want 2", code)
	}
	if code := run([]string{"score"}); code != 2 {
		t.Fatalf("score without flags exit = %d, want 2", code)
	}
	if code := run([]string{"generate"}); code != 2 {
		t.Fatalf("generate without flags exit = %d, want 2", code)
	}
}

// writeFixture lays out a config and a transcription file with enough
// structure for a full build.
func writeFixture(t *testing.T) (configPath, corpusPath string) {
	t.Helper()
	dir := t.TempDir()

	tokens := []string{
		"daiin", "chedy", "qokeedy", "shedy", "qokaiin", "chol",
		"dain", "shol", "qokedy", "otedy", "okaiin", "cheol",
	}
	var sb strings.Builder
	for s := 0; s < 3; s++ {
		section := fmt.Sprintf("f%dr", s+1)
		for line := 1; line <= 6; line++ {
			fmt.Fprintf(&sb, "<%s.P.%d>", section, line)
			for pos := 0; pos < 9; pos++ {
				fmt.Fprintf(&sb, " %s", tokens[(s*3+line*5+pos)%len(tokens)])
			}
			sb.WriteByte('\n')
		}
	}
	corpusPath = filepath.Join(dir, "transcription.txt")
	if err := os.WriteFile(corpusPath, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	config := strings.TrimSpace(`
vocabulary_size: 12
window_count: 4
min_fold_transitions: 4
seed: 42
`) + "\n"
	configPath = filepath.Join(dir, "engine.yml")
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath, corpusPath
}

func TestRunBuild_WritesArtifacts(t *testing.T) {
	t.Parallel()

	configPath, corpusPath := writeFixture(t)
	outDir := filepath.Join(t.TempDir(), "out")

	code := run([]string{"build", "--config", configPath, "--out", outDir, "--quiet", corpusPath})
	if code != 0 {
		t.Fatalf("build exit = %d, want 0", code)
	}
	assertExists(t, filepath.Join(outDir, "model.json"))
	assertExists(t, filepath.Join(outDir, "membership.jsonl"))
	assertExists(t, filepath.Join(outDir, "lattice.jsonl"))
	assertExists(t, filepath.Join(outDir, "build-report.json"))
}

func TestRunScoreAndGenerate(t *testing.T) {
	t.Parallel()

	configPath, corpusPath := writeFixture(t)
	outDir := filepath.Join(t.TempDir(), "out")
	if code := run([]string{"build", "--config", configPath, "--out", outDir, "--quiet", corpusPath}); code != 0 {
		t.Fatalf("build exit = %d, want 0", code)
	}
	modelPath := filepath.Join(outDir, "model.json")

	if code := run([]string{"score", "--model", modelPath, "--format", "json", corpusPath}); code != 0 {
		t.Fatalf("score exit = %d, want 0", code)
	}

	if code := run([]string{"generate", "--model", modelPath, "--seed", "7", "--lines", "3"}); code != 0 {
		t.Fatalf("generate exit = %d, want 0", code)
	}

	// No --seed flag at all: the run must refuse rather than default.
	if code := run([]string{"generate", "--model", modelPath, "--lines", "3"}); code != 2 {
		t.Fatalf("seedless generate exit = %d, want 2", code)
	}
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file %s: %v", path, err)
	}
}
