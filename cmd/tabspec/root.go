package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"tabspec/internal/config"
	"tabspec/internal/project"
)

type app struct {
	settings config.Settings
	store    *project.Store
	logger   *slog.Logger
}

func newRootCmd(settings config.Settings) *cobra.Command {
	a := &app{settings: settings}

	root := &cobra.Command{
		Use:           "tabspec",
		Short:         "Schema-driven loader for delimited datasets",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.logger = a.settings.Logger(cmd.ErrOrStderr())
			a.store = project.OpenStore(a.settings)
		},
	}

	root.AddCommand(
		a.listCmd(),
		a.addCmd(),
		a.removeCmd(),
		a.setSchemaCmd(),
		a.addDatasetCmd(),
		a.removeDatasetCmd(),
		a.setSpecsCmd(),
		a.showCmd(),
		a.loadCmd(),
		a.lintCmd(),
	)

	return root
}

// missingProject prints the registration hint when err is ErrMissingProject
// and swallows it; other errors are returned as they are.
func missingProject(cmd *cobra.Command, name string, err error) error {
	if !errors.Is(err, project.ErrMissingProject) {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"Project %s not found in the configuration. Please use\n    $ tabspec add\nto register the project.\n", name)

	return nil
}

func absPaths(paths []string) ([]string, error) {
	out := make([]string, len(paths))

	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}

		out[i] = abs
	}

	return out, nil
}
