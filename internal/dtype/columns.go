package dtype

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Column is one declared column and its type.
type Column struct {
	Name string
	Type DType
}

// Columns is an ordered column -> type mapping. Order follows the document,
// which is the order the columns are requested from the reader.
type Columns []Column

// Names returns the column names in order.
func (c Columns) Names() []string {
	out := make([]string, len(c))
	for i, col := range c {
		out[i] = col.Name
	}

	return out
}

// Lookup returns the declared type for name.
func (c Columns) Lookup(name string) (DType, bool) {
	for _, col := range c {
		if col.Name == name {
			return col.Type, true
		}
	}

	return 0, false
}

// Map returns the columns as an unordered map.
func (c Columns) Map() map[string]DType {
	out := make(map[string]DType, len(c))
	for _, col := range c {
		out[col.Name] = col.Type
	}

	return out
}

// Split separates date columns from the rest, keeping order in both halves.
func (c Columns) Split() (rest Columns, dates []string) {
	rest = Columns{}

	for _, col := range c {
		if col.Type == Date {
			dates = append(dates, col.Name)
			continue
		}

		rest = append(rest, col)
	}

	return rest, dates
}

// Clone returns an independent copy.
func (c Columns) Clone() Columns {
	if c == nil {
		return nil
	}

	return append(Columns{}, c...)
}

// UnmarshalYAML implements yaml.Unmarshaler, keeping the mapping order.
func (c *Columns) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.New("expected a mapping of column name to type")
	}

	out := make(Columns, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var name string
		if err := node.Content[i].Decode(&name); err != nil {
			return fmt.Errorf("invalid column name: %w", err)
		}

		var t DType
		if err := node.Content[i+1].Decode(&t); err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}

		out = append(out, Column{Name: name, Type: t})
	}

	*c = out

	return nil
}

// MarshalYAML implements yaml.Marshaler, writing a mapping in column order.
func (c Columns) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, col := range c {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: col.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: col.Type.Token()},
		)
	}

	return node, nil
}
