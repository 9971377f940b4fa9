// Package dtype defines the closed set of column data types a dataset
// specification may declare.
package dtype

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:generate go tool stringer -type=DType -output=dtype_string.go

type DType int

const (
	_ DType = iota // zero value is invalid

	Integer
	Float
	Text
	Date

	// Total is the number of declared types plus the invalid zero value.
	Total = int(iota)
)

// tokens maps every accepted spelling to its type. The first spelling listed
// in canonical is the one written back to documents.
var tokens = map[string]DType{
	"int":      Integer,
	"integer":  Integer,
	"int64":    Integer,
	"float":    Float,
	"float64":  Float,
	"double":   Float,
	"str":      Text,
	"string":   Text,
	"text":     Text,
	"date":     Date,
	"datetime": Date,
}

var canonical = map[DType]string{
	Integer: "int",
	Float:   "float",
	Text:    "str",
	Date:    "date",
}

// IsValid reports whether t is one of the declared types.
func (t DType) IsValid() bool {
	_, ok := canonical[t]
	return ok
}

// IsNumber reports whether values of t are numeric.
func (t DType) IsNumber() bool {
	return t == Integer || t == Float
}

// Token returns the canonical document spelling of t, e.g. "int".
func (t DType) Token() string {
	if tok, ok := canonical[t]; ok {
		return tok
	}

	return t.String()
}

// Parse resolves a document token to a type. Matching is case-insensitive.
func Parse(token string) (DType, error) {
	t, ok := tokens[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return 0, fmt.Errorf("unsupported data type %q (expected one of %s)", token, strings.Join(Tokens(), ", "))
	}

	return t, nil
}

// Tokens returns the canonical tokens, sorted.
func Tokens() []string {
	out := make([]string, 0, len(canonical))
	for _, tok := range canonical {
		out = append(out, tok)
	}

	sort.Strings(out)

	return out
}

// UnmarshalYAML implements yaml.Unmarshaler for a single type token.
func (t *DType) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected a type name, got %v", node.Kind)
	}

	parsed, err := Parse(node.Value)
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (t DType) MarshalYAML() (any, error) {
	return t.Token(), nil
}
