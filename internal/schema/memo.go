package schema

// field identifies an assignable input of a Validator.
type field int

const (
	fieldPath field = iota
	fieldDelimiter
	fieldNrows
	fieldNcols
	fieldDtypes

	fieldCount
)

// memo caches derived values. Each entry remembers the version of every
// field it was computed from and is recomputed once any of them moves.
type memo struct {
	versions [fieldCount]uint64
	entries  map[string]*memoEntry
}

type memoEntry struct {
	deps  []field
	seen  [fieldCount]uint64
	value any
	err   error
}

// touch records an assignment to f, invalidating every entry that depends on it.
func (m *memo) touch(fields ...field) {
	for _, f := range fields {
		m.versions[f]++
	}
}

func (m *memo) fresh(e *memoEntry) bool {
	for _, f := range e.deps {
		if e.seen[f] != m.versions[f] {
			return false
		}
	}

	return true
}

// get returns the cached value for key, computing it when missing or stale.
// Errors are cached like values: a derivation that failed keeps failing until
// one of its inputs is reassigned.
func (m *memo) get(key string, deps []field, compute func() (any, error)) (any, error) {
	if m.entries == nil {
		m.entries = map[string]*memoEntry{}
	}

	if e, ok := m.entries[key]; ok && m.fresh(e) {
		return e.value, e.err
	}

	e := &memoEntry{deps: deps}
	for _, f := range deps {
		e.seen[f] = m.versions[f]
	}

	e.value, e.err = compute()
	m.entries[key] = e

	return e.value, e.err
}
