package lattice

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteModel writes the model as an indented JSON document.
func WriteModel(path string, m *Model) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	content, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	content = append(content, '\n')
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// ReadModel loads a model written by WriteModel and rebuilds its token
// index. The loaded model is validated before use.
func ReadModel(path string) (*Model, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("parse model json: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	m.index()
	return &m, nil
}

// WriteMembership writes the window-membership table as JSONL.
func WriteMembership(path string, m *Model) error {
	return writeJSONL(path, func(encode func(any) error) error {
		for _, row := range m.MembershipRows() {
			if err := encode(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteLatticeMap writes the lattice-map table as JSONL.
func WriteLatticeMap(path string, m *Model) error {
	return writeJSONL(path, func(encode func(any) error) error {
		for _, row := range m.LatticeRows() {
			if err := encode(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteJSON writes an arbitrary report as an indented JSON document.
func WriteJSON(path string, value any) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	content, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	content = append(content, '\n')
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func writeJSONL(path string, emit func(encode func(any) error) error) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	if err := emit(encoder.Encode); err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
