package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Export writes models as one JSON array with no trailing newline. A nil or
// empty slice is written as []. indent selects pretty printing with two
// spaces.
func Export(w io.Writer, models []Model, indent bool) error {
	if models == nil {
		models = []Model{}
	}

	// Attributes are always an array, never null.
	normalized := make([]Model, len(models))
	for i, m := range models {
		normalized[i] = m.Clone()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(normalized); err != nil {
		return fmt.Errorf("model: encode: %w", err)
	}

	if _, err := w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))); err != nil {
		return fmt.Errorf("model: write: %w", err)
	}
	return nil
}

// WriteFile exports models to path, creating parent directories.
func WriteFile(path string, models []Model, indent bool) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("model: create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("model: create output: %w", err)
	}
	if err := Export(f, models, indent); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("model: close output: %w", err)
	}
	return nil
}

// Decode reads a JSON array written by Export.
func Decode(r io.Reader) ([]Model, error) {
	var models []Model
	if err := json.NewDecoder(r).Decode(&models); err != nil {
		return nil, fmt.Errorf("model: decode: %w", err)
	}
	for i := range models {
		if models[i].Attributes == nil {
			models[i].Attributes = []Attribute{}
		}
	}
	return models, nil
}

// ReadFile reads models exported to path.
func ReadFile(path string) ([]Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}
