package schema

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"

	"tabspec/internal/common"
	"tabspec/internal/constraint"
	"tabspec/internal/diagnostic"
	"tabspec/internal/dtype"
)

// Options selects how a Validator obtains its specification.
type Options struct {
	// Specification is used as given when set.
	Specification Specification
	// Specfile is the document the specification is read from when
	// Specification is nil, and the write target of SetParserArgs.
	Specfile string
	// Name is the dataset's key in Specfile.
	Name string
}

// Validator validates one dataset specification and derives its parser
// arguments. path, delimiter, nrows and ncols are checked when the validator
// is built and on every assignment; dtypes are checked when first derived.
// Derived values are cached until one of their inputs is reassigned.
type Validator struct {
	specfile string
	name     string
	spec     Specification

	paths     []string
	multifile bool
	delimiter string
	nrows     counts
	ncols     counts

	memo memo
}

// counts is a natural-number field that is either one value or a list
// parallel to the dataset's paths.
type counts struct {
	values []int
	list   bool
}

// at returns the count for file i, or 0 when the field is not declared.
func (c counts) at(i int) int {
	switch {
	case len(c.values) == 0:
		return 0
	case c.list:
		return c.values[i]
	default:
		return c.values[0]
	}
}

// New builds a Validator. See Options for the construction modes.
func New(opts Options) (*Validator, error) {
	v := &Validator{name: opts.Name}

	if opts.Specfile != "" {
		p, err := constraint.AbsoluteFilePath(opts.Specfile, true)
		if err != nil {
			return nil, v.attribute(err, "specfile")
		}

		v.specfile = p
	}

	switch {
	case opts.Specification != nil:
		v.spec = opts.Specification.Clone()
	case v.specfile != "" && opts.Name != "":
		doc, err := LoadFile(v.specfile)
		if err != nil {
			return nil, err
		}

		spec, ok := doc[opts.Name]
		if !ok {
			return nil, diagnostic.NewValidationError("unknown_dataset",
				fmt.Sprintf("dataset %q is not described in %s", opts.Name, v.specfile), opts.Name, "",
				common.Closest(opts.Name, doc.Names(), 3)...)
		}

		v.spec = spec.Clone()
	case v.specfile != "":
		return nil, diagnostic.NewValidationError("missing_name",
			"a dataset name is required along with the specification file", "", "name")
	case opts.Name != "":
		return nil, diagnostic.NewValidationError("missing_specfile",
			"a specification file is required along with the dataset name", opts.Name, "specfile")
	default:
		return nil, diagnostic.NewValidationError("missing_specification",
			"either a specification or a specification file and dataset name are required", "", "")
	}

	r, err := v.resolve(v.spec)
	if err != nil {
		return nil, err
	}

	v.apply(r)

	return v, nil
}

// FromDict builds a Validator from a specification mapping with no file linkage.
func FromDict(spec Specification) (*Validator, error) {
	if spec == nil {
		spec = Specification{}
	}

	return New(Options{Specification: spec})
}

// FromSpecfile builds a Validator for dataset name described in the document at path.
func FromSpecfile(path, name string) (*Validator, error) {
	return New(Options{Specfile: path, Name: name})
}

// Name returns the dataset name, if known.
func (v *Validator) Name() string { return v.name }

// Specfile returns the specification document path, if any.
func (v *Validator) Specfile() string { return v.specfile }

// Specification returns a copy of the effective specification.
func (v *Validator) Specification() Specification { return v.spec.Clone() }

// IsMultifile reports whether path was declared as a list.
func (v *Validator) IsMultifile() bool { return v.multifile }

// Paths returns the validated file paths in declaration order.
func (v *Validator) Paths() []string { return slices.Clone(v.paths) }

// Delimiter returns the validated delimiter.
func (v *Validator) Delimiter() string { return v.delimiter }

// Nrows returns the declared row counts: nil when undeclared, one value when
// scalar, otherwise one per path.
func (v *Validator) Nrows() []int { return slices.Clone(v.nrows.values) }

// Ncols returns the declared column counts, shaped like Nrows.
func (v *Validator) Ncols() []int { return slices.Clone(v.ncols.values) }

// NcolsAt returns the declared column count for file i, or 0.
func (v *Validator) NcolsAt(i int) int { return v.ncols.at(i) }

// SetPath assigns path, validating it first.
func (v *Validator) SetPath(value any) error {
	paths, isList, err := constraint.OneOrMany(value, constraint.PathElement(true))
	if err != nil {
		return v.attribute(err, KeyPath)
	}

	v.paths, v.multifile = paths, isList
	v.spec[KeyPath] = pathValue(paths, isList)
	v.memo.touch(fieldPath)

	return nil
}

// SetDelimiter assigns the delimiter, validating it first.
func (v *Validator) SetDelimiter(value any) error {
	d, err := parseDelimiter(value)
	if err != nil {
		return v.attribute(err, KeyDelimiter)
	}

	v.delimiter = d
	v.spec[KeyDelimiter] = d
	delete(v.spec, KeySep)
	v.memo.touch(fieldDelimiter)

	return nil
}

// SetNrows assigns nrows; nil removes the row cap.
func (v *Validator) SetNrows(value any) error {
	c, err := parseCounts(value)
	if err != nil {
		return v.attribute(err, KeyNrows)
	}

	v.nrows = c
	setOrDelete(v.spec, KeyNrows, value)
	v.memo.touch(fieldNrows)

	return nil
}

// SetNcols assigns ncols; nil removes it.
func (v *Validator) SetNcols(value any) error {
	c, err := parseCounts(value)
	if err != nil {
		return v.attribute(err, KeyNcols)
	}

	v.ncols = c
	setOrDelete(v.spec, KeyNcols, value)
	v.memo.touch(fieldNcols)

	return nil
}

// SetDtypes assigns the column type mapping, validating it first.
func (v *Validator) SetDtypes(value any) error {
	cols, err := constraint.TypedColumnMapping(value)
	if err != nil {
		return v.attribute(err, KeyDtypes)
	}

	v.spec[KeyDtypes] = cols
	v.memo.touch(fieldDtypes)

	return nil
}

// Dtypes returns the declared columns and types, date columns included.
func (v *Validator) Dtypes() (dtype.Columns, error) {
	val, err := v.memo.get("dtypes", []field{fieldDtypes}, func() (any, error) {
		cols, err := constraint.TypedColumnMapping(v.spec[KeyDtypes])
		if err != nil {
			return nil, v.attribute(err, KeyDtypes)
		}

		return cols, nil
	})
	if err != nil {
		return nil, err
	}

	return val.(dtype.Columns).Clone(), nil
}

// ColumnNames returns the declared column names, date columns included.
func (v *Validator) ColumnNames() ([]string, error) {
	val, err := v.memo.get("colnames", []field{fieldDtypes}, func() (any, error) {
		cols, err := v.Dtypes()
		if err != nil {
			return nil, err
		}

		return cols.Names(), nil
	})
	if err != nil {
		return nil, err
	}

	return slices.Clone(val.([]string)), nil
}

// ParserArgs returns the reader arguments: one entry for a single-file
// dataset, one per file in path order for a multi-file dataset.
func (v *Validator) ParserArgs() ([]ParserArgs, error) {
	deps := []field{fieldPath, fieldDelimiter, fieldNrows, fieldNcols, fieldDtypes}

	val, err := v.memo.get("parser_args", deps, v.deriveParserArgs)
	if err != nil {
		return nil, err
	}

	return cloneArgs(val.([]ParserArgs)), nil
}

// ToDict returns the parser arguments as keyword mappings: a single
// map[string]any, or a []map[string]any for a multi-file dataset.
func (v *Validator) ToDict() (any, error) {
	args, err := v.ParserArgs()
	if err != nil {
		return nil, err
	}

	if !v.multifile {
		return args[0].ToMap(), nil
	}

	out := make([]map[string]any, len(args))
	for i, a := range args {
		out[i] = a.ToMap()
	}

	return out, nil
}

func (v *Validator) deriveParserArgs() (any, error) {
	cols, err := v.Dtypes()
	if err != nil {
		return nil, err
	}

	usecols, err := v.ColumnNames()
	if err != nil {
		return nil, err
	}

	res := &diagnostic.Diagnostics{}
	checkParallel(res, KeyNrows, v.nrows, v.paths, v.multifile)
	checkParallel(res, KeyNcols, v.ncols, v.paths, v.multifile)

	if err := res.Error(); err != nil {
		return nil, v.attribute(err, "")
	}

	rest, dates := cols.Split()

	out := make([]ParserArgs, len(v.paths))
	for i, p := range v.paths {
		out[i] = ParserArgs{
			FilepathOrBuffer: p,
			Sep:              v.delimiter,
			Dtype:            rest.Map(),
			Usecols:          slices.Clone(usecols),
			Nrows:            v.nrows.at(i),
			ParseDates:       slices.Clone(dates),
		}
	}

	return out, nil
}

// SetParserArgs overrides specification keys for the lifetime of the
// validator. Parser argument names are accepted as aliases (sep,
// filepath_or_buffer, dtype); usecols and parse_dates are derived and
// rejected. A nil value removes the key. The update is all or nothing.
//
// With writeToFile the merged specification replaces this dataset's entry in
// the specification document; other entries are left as they are on disk.
func (v *Validator) SetParserArgs(newspecs map[string]any, writeToFile bool) error {
	candidate := v.spec.Clone()
	res := &diagnostic.Diagnostics{}
	dtypesAssigned := false

	for key, val := range newspecs {
		specKey, ok := specKeyFor(key)
		if !ok {
			res.AddError("derived_field",
				fmt.Sprintf("%s is derived from dtypes and cannot be set", key), v.name, key)

			continue
		}

		if specKey == KeyDelimiter {
			delete(candidate, KeySep)
		}

		if specKey == KeyDtypes && val != nil {
			dtypesAssigned = true
		}

		setOrDelete(candidate, specKey, val)
	}

	if err := res.Error(); err != nil {
		return err
	}

	r, err := v.resolve(candidate)
	if err != nil {
		return err
	}

	if dtypesAssigned {
		cols, err := constraint.TypedColumnMapping(candidate[KeyDtypes])
		if err != nil {
			return v.attribute(err, KeyDtypes)
		}

		candidate[KeyDtypes] = cols
	}

	v.spec = candidate
	v.apply(r)
	v.memo.touch(fieldPath, fieldDelimiter, fieldNrows, fieldNcols, fieldDtypes)

	if writeToFile {
		return v.persist()
	}

	return nil
}

// persist replaces this dataset's entry in the specification document.
func (v *Validator) persist() error {
	if v.specfile == "" {
		return diagnostic.NewValidationError("no_specfile",
			"cannot write specification: no specification file is linked", v.name, "specfile")
	}

	if v.name == "" {
		return diagnostic.NewValidationError("missing_name",
			"cannot write specification: the dataset has no name", "", "name")
	}

	spec := v.spec.Clone()

	return UpdateFile(v.specfile, func(doc Document) error {
		doc[v.name] = spec
		return nil
	})
}

type resolved struct {
	paths     []string
	multifile bool
	delimiter string
	nrows     counts
	ncols     counts
}

// resolve validates the eagerly checked fields of spec without touching v.
func (v *Validator) resolve(spec Specification) (resolved, error) {
	var r resolved

	res := &diagnostic.Diagnostics{}

	pathOK := false

	if raw, ok := spec[KeyPath]; !ok || raw == nil {
		res.AddError("missing_field", "specification must declare path", v.name, KeyPath)
	} else if paths, isList, err := constraint.OneOrMany(raw, constraint.PathElement(true)); err != nil {
		mergeInto(res, v.attribute(err, KeyPath))
	} else {
		r.paths, r.multifile = paths, isList
		pathOK = true
	}

	if d, err := delimiterOf(spec); err != nil {
		mergeInto(res, v.attribute(err, KeyDelimiter))
	} else {
		r.delimiter = d
	}

	var err error

	if r.nrows, err = parseCounts(spec[KeyNrows]); err != nil {
		mergeInto(res, v.attribute(err, KeyNrows))
	}

	if r.ncols, err = parseCounts(spec[KeyNcols]); err != nil {
		mergeInto(res, v.attribute(err, KeyNcols))
	}

	if pathOK {
		checkParallel(res, KeyNrows, r.nrows, r.paths, r.multifile)
		checkParallel(res, KeyNcols, r.ncols, r.paths, r.multifile)
	}

	if err := res.Error(); err != nil {
		return resolved{}, v.attribute(err, "")
	}

	return r, nil
}

func (v *Validator) apply(r resolved) {
	v.paths = r.paths
	v.multifile = r.multifile
	v.delimiter = r.delimiter
	v.nrows = r.nrows
	v.ncols = r.ncols
}

func (v *Validator) attribute(err error, fieldName string) error {
	var ve *diagnostic.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	return ve.Attribute(v.name, fieldName)
}

// checkParallel reports a list-valued count whose length does not match path.
// A scalar count applies to every file.
func checkParallel(res *diagnostic.Diagnostics, key string, c counts, paths []string, multifile bool) {
	if !c.list {
		return
	}

	if !multifile {
		res.AddError("length_mismatch",
			fmt.Sprintf("%s is a list of %d but path is a single file", key, len(c.values)), "", key)

		return
	}

	if len(c.values) != len(paths) {
		res.AddError("length_mismatch",
			fmt.Sprintf("%s has %d entries but path has %d", key, len(c.values), len(paths)), "", key)
	}
}

func parseCounts(value any) (counts, error) {
	if value == nil {
		return counts{}, nil
	}

	values, isList, err := constraint.OneOrMany(value, constraint.NaturalElement)
	if err != nil {
		return counts{}, err
	}

	return counts{values: values, list: isList}, nil
}

func delimiterOf(spec Specification) (string, error) {
	d, hasDelim := spec[KeyDelimiter]
	s, hasSep := spec[KeySep]

	switch {
	case !hasDelim && !hasSep:
		return "", diagnostic.NewValidationError("missing_field", "specification must declare delimiter", "", KeyDelimiter)
	case hasDelim && hasSep:
		a, errA := parseDelimiter(d)
		b, errB := parseDelimiter(s)

		if errA == nil && errB == nil && a != b {
			return "", diagnostic.NewValidationError("conflicting_fields",
				fmt.Sprintf("delimiter %q and sep %q disagree", a, b), "", KeyDelimiter)
		}
	case hasSep:
		d = s
	}

	return parseDelimiter(d)
}

func parseDelimiter(value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", diagnostic.NewValidationError("bad_delimiter",
			fmt.Sprintf("delimiter must be a string, got %T %v", value, value), "", "")
	}

	if s == `\t` {
		s = "\t"
	}

	if utf8.RuneCountInString(s) != 1 || s == "\n" || s == "\r" || s == `"` {
		return "", diagnostic.NewValidationError("bad_delimiter",
			fmt.Sprintf("delimiter must be a single character other than a newline or quote, got %q", s), "", "")
	}

	return s, nil
}

func specKeyFor(key string) (string, bool) {
	switch key {
	case ArgFilepathOrBuffer:
		return KeyPath, true
	case ArgSep:
		return KeyDelimiter, true
	case ArgDtype:
		return KeyDtypes, true
	case ArgUsecols, ArgParseDates:
		return "", false
	default:
		return key, true
	}
}

func pathValue(paths []string, isList bool) any {
	if isList {
		return slices.Clone(paths)
	}

	return paths[0]
}

func setOrDelete(spec Specification, key string, value any) {
	if value == nil {
		delete(spec, key)
		return
	}

	spec[key] = value
}

func mergeInto(res *diagnostic.Diagnostics, err error) {
	var ve *diagnostic.ValidationError
	if errors.As(err, &ve) {
		res.Merge(ve.Diagnostics)
		return
	}

	res.AddError("invalid", err.Error(), "", "")
}
