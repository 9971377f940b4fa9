package dtype

import (
	"errors"

	"gopkg.in/yaml.v3"
)

// Pair is one column declaration exactly as written in a document, before
// its key and type token have been checked.
type Pair struct {
	Key   any
	Value any
}

// Pairs is an ordered list of undecoded column declarations. Documents are
// decoded into Pairs so that a bad token is reported when the declaration is
// resolved, not when the document is read.
type Pairs []Pair

// UnmarshalYAML implements yaml.Unmarshaler, keeping the mapping order.
func (p *Pairs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.New("expected a mapping of column name to type")
	}

	out := make(Pairs, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var key, value any

		if err := node.Content[i].Decode(&key); err != nil {
			return err
		}

		if err := node.Content[i+1].Decode(&value); err != nil {
			return err
		}

		out = append(out, Pair{Key: key, Value: value})
	}

	*p = out

	return nil
}

// MarshalYAML implements yaml.Marshaler, writing a mapping in declaration order.
func (p Pairs) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, pair := range p {
		var k, v yaml.Node

		if err := k.Encode(pair.Key); err != nil {
			return nil, err
		}

		if err := v.Encode(pair.Value); err != nil {
			return nil, err
		}

		node.Content = append(node.Content, &k, &v)
	}

	return node, nil
}
