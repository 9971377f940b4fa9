package schema

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"tabspec/internal/dtype"
)

// Specification keys.
const (
	KeyPath           = "path"
	KeyDelimiter      = "delimiter"
	KeySep            = "sep"
	KeyDtypes         = "dtypes"
	KeyNrows          = "nrows"
	KeyNcols          = "ncols"
	KeyColumnRules    = "column_rules"
	KeyDropDuplicates = "drop_duplicates"
)

// Specification is one dataset's user-authored specification, as loosely
// typed as the document it came from. Values are checked by the Validator.
type Specification map[string]any

// Document is a specification document: dataset name -> specification.
type Document map[string]Specification

// Clone returns a copy of the specification whose top-level values may be
// replaced without affecting s.
func (s Specification) Clone() Specification {
	if s == nil {
		return nil
	}

	return maps.Clone(s)
}

// UnmarshalYAML implements yaml.Unmarshaler. The dtypes mapping is decoded
// into dtype.Pairs so that column order survives a load and its tokens are
// only checked when the specification is validated.
func (s *Specification) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: dataset specification must be a mapping", node.Line)
	}

	out := make(Specification, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return fmt.Errorf("line %d: invalid specification key: %w", node.Content[i].Line, err)
		}

		valNode := node.Content[i+1]

		if key == KeyDtypes && valNode.Kind == yaml.MappingNode {
			var pairs dtype.Pairs
			if err := valNode.Decode(&pairs); err != nil {
				return fmt.Errorf("line %d: %w", valNode.Line, err)
			}

			out[key] = pairs

			continue
		}

		var val any
		if err := valNode.Decode(&val); err != nil {
			return fmt.Errorf("line %d: %w", valNode.Line, err)
		}

		out[key] = val
	}

	*s = out

	return nil
}

// Names returns the dataset names in the document, sorted.
func (d Document) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// LoadFile loads and parses a specification document from the given path.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read specification file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Document. An empty document yields an empty,
// non-nil Document.
func Parse(data []byte) (Document, error) {
	var doc Document

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse specification YAML: %w", err)
	}

	if doc == nil {
		doc = Document{}
	}

	for name, spec := range doc {
		if spec == nil {
			return nil, fmt.Errorf("dataset %q has an empty specification", name)
		}
	}

	return doc, nil
}

// Marshal serializes a Document to YAML.
func Marshal(doc Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// WriteFile writes a Document to the given path, replacing its contents.
func WriteFile(doc Document, path string) error {
	data, err := Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal specification: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write specification file %s: %w", path, err)
	}

	return nil
}

// UpdateFile performs a read-merge-write of one dataset entry: the document at
// path is loaded, update is applied to it, and the result is written back.
// Concurrent writers are not coordinated; the last write wins.
func UpdateFile(path string, update func(Document) error) error {
	doc, err := LoadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if doc == nil {
		doc = Document{}
	}

	if err := update(doc); err != nil {
		return err
	}

	return WriteFile(doc, path)
}
