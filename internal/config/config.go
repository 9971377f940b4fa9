// Package config resolves where the project configuration file lives and how
// verbose logging is. Settings come from the environment, optionally seeded
// from a .env file, and are passed explicitly to the code that needs them.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "TABSPEC"
	// DefaultConfigName is the project configuration file looked up when
	// TABSPEC_CONFIG is not set.
	DefaultConfigName = "tabspec.conf"

	keyConfig   = "config"
	keyLogLevel = "log_level"
)

// Settings locate the project configuration file.
type Settings struct {
	// ConfigName is a file name searched in SearchDirs, or an absolute path.
	ConfigName string
	// SearchDirs are searched in order.
	SearchDirs []string
	LogLevel   slog.Level
}

// Default returns settings that look for DefaultConfigName in the working
// directory, then the home directory.
func Default() Settings {
	return Settings{ConfigName: DefaultConfigName, SearchDirs: defaultDirs(), LogLevel: slog.LevelInfo}
}

// Load reads TABSPEC_CONFIG and TABSPEC_LOG_LEVEL from the environment. The
// given env files (".env" when none) are loaded first when they exist; they
// never override variables already set.
func Load(envFiles ...string) (Settings, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("failed to load env file: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetDefault(keyConfig, DefaultConfigName)
	v.SetDefault(keyLogLevel, "info")
	v.AutomaticEnv()

	s := Default()
	s.ConfigName = v.GetString(keyConfig)

	if err := s.LogLevel.UnmarshalText([]byte(v.GetString(keyLogLevel))); err != nil {
		return Settings{}, fmt.Errorf("invalid %s_LOG_LEVEL: %w", EnvPrefix, err)
	}

	return s, nil
}

// Locate returns the configuration file path. The first existing candidate
// wins; when none exists the candidate in the last search directory is
// returned with found set to false.
func (s Settings) Locate() (path string, found bool) {
	if filepath.IsAbs(s.ConfigName) {
		_, err := os.Stat(s.ConfigName)
		return s.ConfigName, err == nil
	}

	for _, dir := range s.SearchDirs {
		p := filepath.Join(dir, s.ConfigName)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}

	if len(s.SearchDirs) == 0 {
		return s.ConfigName, false
	}

	return filepath.Join(s.SearchDirs[len(s.SearchDirs)-1], s.ConfigName), false
}

// Logger returns a text logger writing to w at the configured level.
func (s Settings) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: s.LogLevel}))
}

func defaultDirs() []string {
	var dirs []string

	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}

	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}

	return dirs
}
