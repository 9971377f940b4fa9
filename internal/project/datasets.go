package project

import (
	"errors"
	"fmt"

	"tabspec/internal/schema"
)

// ErrDatasetExists is returned when adding a dataset that is already described.
var ErrDatasetExists = errors.New("dataset already exists")

// AddDataset validates spec and adds it as dataset to the specification
// document of project.
func (s *Store) AddDataset(project, dataset string, spec schema.Specification) error {
	specfile, err := s.Specfile(project)
	if err != nil {
		return err
	}

	if _, err := schema.New(schema.Options{Specification: spec, Name: dataset}); err != nil {
		return err
	}

	return schema.UpdateFile(specfile, func(doc schema.Document) error {
		if _, ok := doc[dataset]; ok {
			return fmt.Errorf("%w: %s in %s", ErrDatasetExists, dataset, specfile)
		}

		doc[dataset] = spec.Clone()

		return nil
	})
}

// RemoveDataset removes dataset from the specification document of project
// and reports whether it was described.
func (s *Store) RemoveDataset(project, dataset string) (bool, error) {
	specfile, err := s.Specfile(project)
	if err != nil {
		return false, err
	}

	found := false

	err = schema.UpdateFile(specfile, func(doc schema.Document) error {
		_, found = doc[dataset]
		delete(doc, dataset)

		return nil
	})
	if err != nil {
		return false, err
	}

	return found, nil
}

// GetSchemaSpecs returns the specifications of project as written in its
// document. A non-empty dataset restricts the result to that dataset.
func (s *Store) GetSchemaSpecs(project, dataset string) (schema.Document, error) {
	specfile, err := s.Specfile(project)
	if err != nil {
		return nil, err
	}

	doc, err := schema.LoadFile(specfile)
	if err != nil {
		return nil, err
	}

	if dataset == "" {
		return doc, nil
	}

	spec, ok := doc[dataset]
	if !ok {
		return nil, fmt.Errorf("dataset %q is not described in %s", dataset, specfile)
	}

	return schema.Document{dataset: spec}, nil
}

// SetSchemaSpecs merges specs into the document entry of dataset. The merged
// specification is validated before it is written; a nil value removes a key.
func (s *Store) SetSchemaSpecs(project, dataset string, specs map[string]any) error {
	specfile, err := s.Specfile(project)
	if err != nil {
		return err
	}

	v, err := schema.FromSpecfile(specfile, dataset)
	if err != nil {
		return err
	}

	return v.SetParserArgs(specs, true)
}
