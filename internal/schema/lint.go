package schema

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"tabspec/internal/diagnostic"
	"tabspec/internal/dtype"
)

//go:embed document.schema.json
var documentSchema string

// Lint checks a whole document: its shape against the document JSON schema,
// then every dataset through a Validator, including its parser arguments.
// Unknown specification keys are reported as warnings.
func Lint(doc Document) (*diagnostic.Diagnostics, error) {
	res := &diagnostic.Diagnostics{}

	schemaLoader := gojsonschema.NewStringLoader(documentSchema)

	sch, err := gojsonschema.NewSchema(schemaLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to compile document schema: %w", err)
	}

	result, err := sch.Validate(gojsonschema.NewGoLoader(plainDocument(doc)))
	if err != nil {
		return nil, fmt.Errorf("failed to check document schema: %w", err)
	}

	for _, re := range result.Errors() {
		dataset, fieldPath := splitField(re.Field())

		if re.Type() == "additional_property_not_allowed" {
			res.AddWarning("unknown_field", re.Description(), dataset, fieldPath)
			continue
		}

		res.AddError("schema_violation", re.Description(), dataset, fieldPath)
	}

	for _, name := range doc.Names() {
		v, err := New(Options{Specification: doc[name], Name: name})
		if err != nil {
			mergeInto(res, err)
			continue
		}

		args, err := v.ParserArgs()
		if err != nil {
			mergeInto(res, err)
			continue
		}

		res.AddInfo("valid", fmt.Sprintf("%d file(s) to read", len(args)), name, "")
	}

	return res, nil
}

// splitField turns a gojsonschema field path like "iris.nrows.0" into the
// dataset and the field within it.
func splitField(f string) (string, string) {
	if f == "" || f == "(root)" {
		return "", ""
	}

	dataset, rest, _ := strings.Cut(f, ".")

	return dataset, rest
}

// plainDocument converts a Document to plain maps and slices for JSON
// encoding. Ordered dtype declarations become maps keyed by their printed key.
func plainDocument(doc Document) map[string]any {
	out := make(map[string]any, len(doc))

	for name, spec := range doc {
		m := make(map[string]any, len(spec))

		for k, v := range spec {
			m[k] = plainValue(v)
		}

		out[name] = m
	}

	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case dtype.Pairs:
		m := make(map[string]any, len(t))
		for _, p := range t {
			m[fmt.Sprint(p.Key)] = plainValue(p.Value)
		}

		return m
	case dtype.Columns:
		m := make(map[string]any, len(t))
		for _, c := range t {
			m[c.Name] = c.Type.Token()
		}

		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = plainValue(val)
		}

		return m
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = plainValue(val)
		}

		return m
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = plainValue(t[i])
		}

		return out
	default:
		return v
	}
}
