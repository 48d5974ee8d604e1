package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
)

// Collect gathers token records from all configured sources. Files are
// visited in sorted path order so the record stream is reproducible.
func Collect(cfg *SourceSet) ([]Record, error) {
	if cfg == nil {
		return nil, fmt.Errorf("source set is required")
	}

	ignore, err := compileIgnore(cfg.Ignore)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0)
	for _, source := range cfg.Sources {
		sourceRecords, err := collectFromSource(source, ignore)
		if err != nil {
			return nil, err
		}
		records = append(records, sourceRecords...)
	}
	return records, nil
}

// ReadFiles parses explicit transcription file paths in the given order.
func ReadFiles(paths []string) ([]Record, error) {
	records := make([]Record, 0)
	for _, path := range paths {
		fileRecords, err := readFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, fileRecords...)
	}
	return records, nil
}

func collectFromSource(source Source, ignore []glob.Glob) ([]Record, error) {
	info, err := os.Stat(source.Root)
	if err != nil {
		return nil, fmt.Errorf("stat source root %s: %w", source.Root, err)
	}
	if !info.IsDir() {
		return readFile(source.Root)
	}

	paths := make([]string, 0)
	err = filepath.WalkDir(source.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(source.Root, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		if !matchesAny(source.Include, rel) {
			return nil
		}
		if matchesAny(source.Exclude, rel) {
			return nil
		}
		if isIgnored(ignore, path, rel) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk source %s: %w", source.Name, err)
	}

	sort.Strings(paths)

	records := make([]Record, 0)
	for _, path := range paths {
		fileRecords, err := readFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, fileRecords...)
	}
	return records, nil
}

func readFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()
	return ParseReader(file, path)
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func compileIgnore(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile ignore pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

func isIgnored(ignore []glob.Glob, path string, rel string) bool {
	base := filepath.Base(path)
	for _, g := range ignore {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

// normalizeRoot keeps relative roots anchored at the config file directory,
// matching how the config loader resolves them.
func normalizeRoot(configDir string, root string) string {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		trimmed = "."
	}
	if !filepath.IsAbs(trimmed) {
		trimmed = filepath.Join(configDir, trimmed)
	}
	return trimmed
}
