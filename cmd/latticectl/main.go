package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"

	"github.com/stvadams-research/voynichMS-sub006/internal/config"
	"github.com/stvadams-research/voynichMS-sub006/internal/corpus"
	"github.com/stvadams-research/voynichMS-sub006/internal/engine"
	"github.com/stvadams-research/voynichMS-sub006/internal/generate"
	"github.com/stvadams-research/voynichMS-sub006/internal/lattice"
	"github.com/stvadams-research/voynichMS-sub006/internal/log"
	"github.com/stvadams-research/voynichMS-sub006/internal/output"
	"github.com/stvadams-research/voynichMS-sub006/internal/score"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

const usageText = `Usage: latticectl <command> [flags]

Commands:
  build      Build a calibrated lattice model from transcription files
  score      Score a corpus against a built model
  generate   Emit synthetic token lines from a built model
  version    Print version and exit

Global flags:
  -h, --help      Show this help

Run 'latticectl <command> --help' for more information on a command.
`

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usageText)
		return 0
	}

	switch args[0] {
	case "--help", "-h":
		fmt.Fprint(os.Stderr, usageText)
		return 0
	case "build":
		return runBuild(args[1:])
	case "score":
		return runScore(args[1:])
	case "generate":
		return runGenerate(args[1:])
	case "version":
		printVersion()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "latticectl: unknown command %q\n\n%s", args[0], usageText)
		return 2
	}
}

func printVersion() {
	version := "(devel)"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	fmt.Printf("latticectl %s\n", version)
}

// runBuild implements the "build" subcommand: corpus in, model artifacts out.
func runBuild(args []string) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	var (
		configPath  string
		sourcesPath string
		outDir      string
		quiet       bool
	)

	fs.StringVarP(&configPath, "config", "c", "", "Engine config yaml (seed is required)")
	fs.StringVar(&sourcesPath, "sources", "", "Source set yaml; positional files are used instead when omitted")
	fs.StringVarP(&outDir, "out", "o", "", "Output directory for model artifacts")
	fs.BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: latticectl build [flags] [files...]\n\n"+
			"Build a calibrated lattice model and write its artifacts:\n"+
			"model.json, membership.jsonl, lattice.jsonl, build-report.json.\n\n"+
			"Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if configPath == "" || outDir == "" {
		fmt.Fprintf(os.Stderr, "latticectl: build requires --config and --out\n")
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fail(err)
	}

	records, err := loadRecords(sourcesPath, fs.Args())
	if err != nil {
		return fail(err)
	}

	logger := &log.Logger{Enabled: !quiet, W: os.Stderr}
	runID := uuid.NewString()
	logger.Printf("build run %s: %d records", runID, len(records))

	model, report, buildErr := engine.Build(cfg, records, logger)
	if buildErr != nil && model == nil {
		return fail(buildErr)
	}

	artifacts := []struct {
		name  string
		write func(string) error
	}{
		{"model.json", func(p string) error { return lattice.WriteModel(p, model) }},
		{"membership.jsonl", func(p string) error { return lattice.WriteMembership(p, model) }},
		{"lattice.jsonl", func(p string) error { return lattice.WriteLatticeMap(p, model) }},
		{"build-report.json", func(p string) error { return lattice.WriteJSON(p, report) }},
	}
	for _, artifact := range artifacts {
		path := filepath.Join(outDir, artifact.name)
		if err := artifact.write(path); err != nil {
			return fail(err)
		}
		logger.Printf("wrote %s", path)
	}

	// A calibration data shortfall still produced a usable model; report it
	// after the artifacts land so partial results are inspectable.
	if buildErr != nil {
		return fail(buildErr)
	}
	return 0
}

// runScore implements the "score" subcommand.
func runScore(args []string) int {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	var (
		modelPath string
		mask      int
		perLine   bool
		format    string
	)

	fs.StringVarP(&modelPath, "model", "m", "", "Path to model.json from a build run")
	fs.IntVar(&mask, "mask", 0, "Constant offset added to every prediction")
	fs.BoolVar(&perLine, "per-line", false, "Include per-transition diagnostics")
	fs.StringVarP(&format, "format", "f", "text", "Output format: text, json")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: latticectl score [flags] <files...>\n\n"+
			"Score transcription files against a built model and report the\n"+
			"admissibility category counts.\n\n"+
			"Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if modelPath == "" {
		fmt.Fprintf(os.Stderr, "latticectl: score requires --model\n")
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "latticectl: score requires at least one corpus file\n")
		return 2
	}

	model, err := lattice.ReadModel(modelPath)
	if err != nil {
		return fail(err)
	}
	records, err := corpus.ReadFiles(fs.Args())
	if err != nil {
		return fail(err)
	}

	result := score.Score(model, records, score.Options{Mask: mask, Diagnostics: perLine})
	report := output.NewReport(uuid.NewString(), modelPath, mask, result)

	var formatter output.Formatter
	switch format {
	case "json":
		formatter = &output.JSONFormatter{}
	case "text":
		formatter = &output.TextFormatter{}
	default:
		fmt.Fprintf(os.Stderr, "latticectl: unknown format %q\n", format)
		return 2
	}
	if err := formatter.Format(os.Stdout, report); err != nil {
		return fail(err)
	}
	return 0
}

// runGenerate implements the "generate" subcommand.
func runGenerate(args []string) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	var (
		modelPath   string
		seed        int64
		lines       int
		minTokens   int
		maxTokens   int
		startWindow int
		tolerance   string
		bias        string
	)

	fs.StringVarP(&modelPath, "model", "m", "", "Path to model.json from a build run")
	fs.Int64Var(&seed, "seed", 0, "Generation seed (required)")
	fs.IntVarP(&lines, "lines", "n", 10, "Number of lines to generate")
	fs.IntVar(&minTokens, "min-tokens", 4, "Minimum tokens per line")
	fs.IntVar(&maxTokens, "max-tokens", 10, "Maximum tokens per line")
	fs.IntVar(&startWindow, "start-window", 0, "Fixed start window; sampled from the model when omitted")
	fs.StringVar(&tolerance, "tolerance", "strict", "Drift tolerance: strict, extended")
	fs.StringVar(&bias, "bias", "frequency", "Candidate bias: frequency, uniform, rank")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: latticectl generate [flags]\n\n"+
			"Emit synthetic token lines by constrained traversal of a built\n"+
			"model. The seed is required; identical inputs reproduce identical\n"+
			"output.\n\n"+
			"Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if modelPath == "" {
		fmt.Fprintf(os.Stderr, "latticectl: generate requires --model\n")
		return 2
	}

	model, err := lattice.ReadModel(modelPath)
	if err != nil {
		return fail(err)
	}

	params := generate.Params{
		Lines:            lines,
		MinTokensPerLine: minTokens,
		MaxTokensPerLine: maxTokens,
		Tolerance:        generate.Tolerance(tolerance),
		Bias:             generate.Bias(bias),
	}
	// Zero is a valid seed; only an absent flag means missing.
	if fs.Changed("seed") {
		params.Seed = &seed
	}
	if fs.Changed("start-window") {
		params.StartWindow = &startWindow
	}

	generated, err := generate.Run(model, params)
	if err != nil {
		return fail(err)
	}
	for _, line := range generated {
		fmt.Println(strings.Join(line, " "))
	}
	return 0
}

// loadRecords reads the corpus either from a source set config or from
// explicit positional file paths.
func loadRecords(sourcesPath string, files []string) ([]corpus.Record, error) {
	if sourcesPath != "" {
		if len(files) > 0 {
			return nil, errors.New("pass either --sources or positional files, not both")
		}
		set, err := corpus.LoadSourceSet(sourcesPath)
		if err != nil {
			return nil, err
		}
		return corpus.Collect(set)
	}
	if len(files) == 0 {
		return nil, errors.New("build requires --sources or positional corpus files")
	}
	return corpus.ReadFiles(files)
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "latticectl: %v\n", err)
	return 2
}
