package ast

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ArtifactVersion is written into every saved translation unit.
const ArtifactVersion = 1

// artifactExtensions are the file suffixes recognized as saved units.
var artifactExtensions = []string{".ast.json", ".ast"}

// IsArtifactPath reports whether path names a saved translation unit.
func IsArtifactPath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range artifactExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

type artifact struct {
	Version  int              `json:"version"`
	MainFile string           `json:"main_file"`
	Cursors  []artifactCursor `json:"cursors"`
}

type artifactCursor struct {
	ID       int    `json:"id"`
	Parent   int    `json:"parent"`
	Kind     Kind   `json:"kind"`
	Spelling string `json:"spelling,omitempty"`
	Type     string `json:"type,omitempty"`
	Extent   Extent `json:"extent"`
	Args     int    `json:"args,omitempty"`
	Semantic *int   `json:"semantic,omitempty"`
	External bool   `json:"external,omitempty"`
}

// WriteArtifact serializes tu. Cursor ids are stable for a given tree, so
// the output is deterministic.
func WriteArtifact(w io.Writer, tu *TranslationUnit) error {
	a := artifact{
		Version:  ArtifactVersion,
		MainFile: tu.mainFile,
		Cursors:  make([]artifactCursor, 0, len(tu.cursors)),
	}

	for _, c := range tu.cursors {
		if c == tu.root {
			continue
		}
		rec := artifactCursor{
			ID:       c.id,
			Parent:   -1,
			Kind:     c.kind,
			Spelling: c.spelling,
			Type:     c.typ,
			Extent:   c.extent,
			Args:     c.numArgs,
			External: c.external,
		}
		if c.parent != nil {
			rec.Parent = c.parent.id
		}
		// Only record semantic parents that differ from the lexical default.
		if c.semantic != nil && c.semantic != c.lexical {
			id := c.semantic.id
			rec.Semantic = &id
		}
		a.Cursors = append(a.Cursors, rec)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("ast: encode artifact: %w", err)
	}
	return nil
}

// WriteArtifactFile writes tu to path.
func WriteArtifactFile(path string, tu *TranslationUnit) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("ast: create artifact directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ast: create artifact: %w", err)
	}
	if err := WriteArtifact(f, tu); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadArtifact decodes a translation unit written by WriteArtifact.
func ReadArtifact(r io.Reader) (*TranslationUnit, error) {
	var a artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("ast: decode artifact: %w", err)
	}
	if a.Version != ArtifactVersion {
		return nil, fmt.Errorf("ast: unsupported artifact version %d", a.Version)
	}
	if a.MainFile == "" {
		return nil, fmt.Errorf("ast: artifact has no main file")
	}

	b := NewBuilder(a.MainFile)
	byID := map[int]*Cursor{0: b.Root()}

	for _, rec := range a.Cursors {
		if _, dup := byID[rec.ID]; dup {
			return nil, fmt.Errorf("ast: duplicate cursor id %d", rec.ID)
		}
		n := Node{Kind: rec.Kind, Spelling: rec.Spelling, Type: rec.Type, Extent: rec.Extent}

		var c *Cursor
		switch {
		case rec.Parent < 0 && rec.External:
			c = b.AddExternal(n)
		case rec.Parent < 0:
			return nil, fmt.Errorf("ast: cursor %d has no parent", rec.ID)
		default:
			parent, ok := byID[rec.Parent]
			if !ok {
				return nil, fmt.Errorf("ast: cursor %d references unknown parent %d", rec.ID, rec.Parent)
			}
			c = b.Add(parent, n)
		}
		byID[rec.ID] = c
	}

	// Arguments and semantic parents may point forward, so link them once
	// every cursor exists.
	for _, rec := range a.Cursors {
		c := byID[rec.ID]
		if rec.Args > 0 {
			b.SetArguments(c, rec.Args)
		}
		if rec.Semantic != nil {
			owner, ok := byID[*rec.Semantic]
			if !ok {
				return nil, fmt.Errorf("ast: cursor %d references unknown semantic parent %d", rec.ID, *rec.Semantic)
			}
			b.SetSemanticParent(c, owner)
		}
	}

	return b.Finish(), nil
}

// ReadArtifactFile reads a translation unit from path.
func ReadArtifactFile(path string) (*TranslationUnit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ast: open artifact: %w", err)
	}
	defer f.Close()
	return ReadArtifact(f)
}
