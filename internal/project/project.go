package project

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"tabspec/internal/clean"
	"tabspec/internal/common"
	"tabspec/internal/diagnostic"
	"tabspec/internal/schema"
	"tabspec/internal/table"
)

// Project is a loaded specification document with a validator per dataset.
type Project struct {
	name       string
	specfile   string
	validators map[string]*schema.Validator
	logger     *slog.Logger
	readOpts   []table.Option
}

// Option configures a Project.
type Option func(*Project)

// WithLogger sets the logger used while loading datasets.
func WithLogger(l *slog.Logger) Option {
	return func(p *Project) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithReadOptions passes options to the table reader.
func WithReadOptions(opts ...table.Option) Option {
	return func(p *Project) { p.readOpts = append(p.readOpts, opts...) }
}

// Open looks project name up in store and loads its specification document.
func Open(store *Store, name string, opts ...Option) (*Project, error) {
	specfile, err := store.Specfile(name)
	if err != nil {
		return nil, err
	}

	return New(name, specfile, opts...)
}

// New loads the specification document at specfile. Every dataset in it is
// validated.
func New(name, specfile string, opts ...Option) (*Project, error) {
	p := &Project{
		name:       name,
		specfile:   specfile,
		validators: map[string]*schema.Validator{},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	doc, err := schema.LoadFile(specfile)
	if err != nil {
		return nil, err
	}

	for _, ds := range doc.Names() {
		v, err := schema.New(schema.Options{Specification: doc[ds], Specfile: specfile, Name: ds})
		if err != nil {
			return nil, err
		}

		p.validators[ds] = v
	}

	p.logger.Debug("opened project", "project", name, "specfile", specfile, "datasets", len(p.validators))

	return p, nil
}

// Name returns the project name.
func (p *Project) Name() string { return p.name }

// Specfile returns the specification document path.
func (p *Project) Specfile() string { return p.specfile }

// DatasetNames returns the dataset names, sorted.
func (p *Project) DatasetNames() []string {
	out := make([]string, 0, len(p.validators))
	for name := range p.validators {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

// Validator returns the validator of dataset.
func (p *Project) Validator(dataset string) (*schema.Validator, error) {
	v, ok := p.validators[dataset]
	if !ok {
		return nil, diagnostic.NewValidationError("unknown_dataset",
			fmt.Sprintf("project %s has no dataset %q", p.name, dataset), dataset, "",
			common.Closest(dataset, p.DatasetNames(), 3)...)
	}

	return v, nil
}

// GetDatasetSpecs returns the parser arguments of dataset, shaped as by
// schema.Validator.ToDict.
func (p *Project) GetDatasetSpecs(dataset string) (any, error) {
	v, err := p.Validator(dataset)
	if err != nil {
		return nil, err
	}

	return v.ToDict()
}

// GetProjectSpecs returns the parser arguments of every dataset.
func (p *Project) GetProjectSpecs() (map[string]any, error) {
	out := make(map[string]any, len(p.validators))

	for _, name := range p.DatasetNames() {
		specs, err := p.GetDatasetSpecs(name)
		if err != nil {
			return nil, err
		}

		out[name] = specs
	}

	return out, nil
}

// SetDatasetSpecs overrides specification keys of dataset. See
// schema.Validator.SetParserArgs.
func (p *Project) SetDatasetSpecs(dataset string, specs map[string]any, writeToFile bool) error {
	v, err := p.Validator(dataset)
	if err != nil {
		return err
	}

	return v.SetParserArgs(specs, writeToFile)
}

// LoadDataset reads every file of dataset, concatenates them in path order
// and applies the dataset's cleaning rules. Reader warnings are returned
// alongside the frame.
func (p *Project) LoadDataset(dataset string) (*table.Frame, *diagnostic.Diagnostics, error) {
	v, err := p.Validator(dataset)
	if err != nil {
		return nil, nil, err
	}

	args, err := v.ParserArgs()
	if err != nil {
		return nil, nil, err
	}

	cleaner, err := clean.FromSpecification(v.Specification(), p.logger)
	if err != nil {
		return nil, nil, attributeTo(err, dataset)
	}

	opts := append([]table.Option{table.WithLogger(p.logger)}, p.readOpts...)

	frame, res, err := table.ReadAll(args, v.NcolsAt, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load dataset %s: %w", dataset, err)
	}

	for i := range res.Warnings {
		if res.Warnings[i].Dataset == "" {
			res.Warnings[i].Dataset = dataset
		}
	}

	read := frame.NumRows()

	frame, err = cleaner.Clean(frame)
	if err != nil {
		return nil, nil, attributeTo(err, dataset)
	}

	res.AddInfo("loaded", fmt.Sprintf("%d of %d rows kept after cleaning", frame.NumRows(), read), dataset, "")

	p.logger.Info("loaded dataset", "project", p.name, "dataset", dataset,
		"rows", frame.NumRows(), "columns", frame.NumCols(), "warnings", len(res.Warnings))

	return frame, res, nil
}

// LoadDatasets loads every dataset of the project.
func (p *Project) LoadDatasets() (map[string]*table.Frame, *diagnostic.Diagnostics, error) {
	out := make(map[string]*table.Frame, len(p.validators))
	res := &diagnostic.Diagnostics{}

	for _, name := range p.DatasetNames() {
		frame, d, err := p.LoadDataset(name)
		if err != nil {
			return nil, nil, err
		}

		res.Merge(*d)
		out[name] = frame
	}

	return out, res, nil
}

// attributeTo attributes a validation error to dataset.
func attributeTo(err error, dataset string) error {
	var ve *diagnostic.ValidationError
	if errors.As(err, &ve) {
		return ve.Attribute(dataset, "")
	}

	return err
}
