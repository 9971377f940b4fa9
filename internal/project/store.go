package project

import (
	"errors"
	"fmt"
	"path/filepath"

	"gopkg.in/ini.v1"

	"tabspec/internal/config"
)

const keySpecfile = "specfile"

var (
	// ErrMissingProject is returned when a project is not registered.
	ErrMissingProject = errors.New("project not found")
	// ErrProjectExists is returned when adding a project that is registered.
	ErrProjectExists = errors.New("project already exists")
)

// Entry is one registered project.
type Entry struct {
	Name     string
	Specfile string
}

// Store is the project configuration file: one section per project, holding
// the absolute path of the project's specification document. Every operation
// reads the file afresh and writes it back whole.
type Store struct {
	path string
}

// OpenStore returns the store located by settings. The file need not exist
// yet; it is created by the first write.
func OpenStore(settings config.Settings) *Store {
	path, _ := settings.Locate()
	return NewStore(path)
}

// NewStore returns the store at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the configuration file path.
func (s *Store) Path() string { return s.path }

func (s *Store) load() (*ini.File, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{Loose: true}, s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project config %s: %w", s.path, err)
	}

	return cfg, nil
}

func (s *Store) save(cfg *ini.File) error {
	if err := cfg.SaveTo(s.path); err != nil {
		return fmt.Errorf("failed to write project config %s: %w", s.path, err)
	}

	return nil
}

// Specfile returns the specification document of project name.
func (s *Store) Specfile(name string) (string, error) {
	cfg, err := s.load()
	if err != nil {
		return "", err
	}

	sec, err := cfg.GetSection(name)
	if err != nil || name == ini.DefaultSection {
		return "", fmt.Errorf("%w: %s", ErrMissingProject, name)
	}

	return sec.Key(keySpecfile).String(), nil
}

// Projects lists the registered projects in file order.
func (s *Store) Projects() ([]Entry, error) {
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}

	var out []Entry

	for _, sec := range cfg.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}

		out = append(out, Entry{Name: sec.Name(), Specfile: sec.Key(keySpecfile).String()})
	}

	return out, nil
}

// Add registers project name with the given specification document.
func (s *Store) Add(name, specfile string) error {
	if name == "" || name == ini.DefaultSection {
		return fmt.Errorf("invalid project name %q", name)
	}

	if !filepath.IsAbs(specfile) {
		return fmt.Errorf("specification file %q is not an absolute path", specfile)
	}

	cfg, err := s.load()
	if err != nil {
		return err
	}

	if cfg.HasSection(name) {
		return fmt.Errorf("%w: %s", ErrProjectExists, name)
	}

	sec, err := cfg.NewSection(name)
	if err != nil {
		return fmt.Errorf("failed to add project %s: %w", name, err)
	}

	sec.Key(keySpecfile).SetValue(specfile)

	return s.save(cfg)
}

// Remove unregisters project name and reports whether it was registered.
func (s *Store) Remove(name string) (bool, error) {
	cfg, err := s.load()
	if err != nil {
		return false, err
	}

	if name == ini.DefaultSection || !cfg.HasSection(name) {
		return false, nil
	}

	cfg.DeleteSection(name)

	return true, s.save(cfg)
}

// SetSpecfile points project name at another specification document.
func (s *Store) SetSpecfile(name, specfile string) error {
	if !filepath.IsAbs(specfile) {
		return fmt.Errorf("specification file %q is not an absolute path", specfile)
	}

	cfg, err := s.load()
	if err != nil {
		return err
	}

	if name == ini.DefaultSection || !cfg.HasSection(name) {
		return fmt.Errorf("%w: %s", ErrMissingProject, name)
	}

	cfg.Section(name).Key(keySpecfile).SetValue(specfile)

	return s.save(cfg)
}
