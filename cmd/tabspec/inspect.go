package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tabspec/internal/diagnostic"
	"tabspec/internal/project"
	"tabspec/internal/schema"
	"tabspec/internal/table"
)

func (a *app) showCmd() *cobra.Command {
	var (
		dataset string
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "show PROJECT_NAME",
		Short: "Print the reader arguments of a project's datasets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Open(a.store, args[0], project.WithLogger(a.logger))
			if err != nil {
				return missingProject(cmd, args[0], err)
			}

			var specs any
			if dataset != "" {
				specs, err = p.GetDatasetSpecs(dataset)
			} else {
				specs, err = p.GetProjectSpecs()
			}

			if err != nil {
				return err
			}

			if debug {
				spew.Fdump(cmd.OutOrStdout(), specs)
				return nil
			}

			data, err := yaml.Marshal(specs)
			if err != nil {
				return fmt.Errorf("failed to render specs: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	cmd.Flags().StringVarP(&dataset, "dataset", "d", "", "only this dataset")
	cmd.Flags().BoolVar(&debug, "debug", false, "dump Go values instead of YAML")

	return cmd
}

func (a *app) loadCmd() *cobra.Command {
	var (
		dataset string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "load PROJECT_NAME",
		Short: "Load and clean a dataset, optionally exporting it to parquet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Open(a.store, args[0], project.WithLogger(a.logger))
			if err != nil {
				return missingProject(cmd, args[0], err)
			}

			frame, res, err := p.LoadDataset(dataset)
			if err != nil {
				return err
			}

			printDiagnostics(cmd, res)
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded dataset %s: %d rows, %d columns\n",
				dataset, frame.NumRows(), frame.NumCols())

			if out == "" {
				return nil
			}

			paths, err := absPaths([]string{out})
			if err != nil {
				return err
			}

			if err := table.WriteParquet(frame, paths[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", paths[0])

			return nil
		},
	}

	cmd.Flags().StringVarP(&dataset, "dataset", "d", "", "dataset name")
	cmd.Flags().StringVarP(&out, "out", "o", "", "parquet file to write")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func (a *app) lintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint SPECFILE",
		Short: "Check a specification document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := schema.LoadFile(args[0])
			if err != nil {
				return err
			}

			res, err := schema.Lint(doc)
			if err != nil {
				return err
			}

			printDiagnostics(cmd, res)

			if res.HasErrors() {
				return fmt.Errorf("%s: %d errors", args[0], len(res.Errors))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])

			return nil
		},
	}
}

func printDiagnostics(cmd *cobra.Command, res *diagnostic.Diagnostics) {
	for _, group := range [][]diagnostic.Diagnostic{res.Errors, res.Warnings, res.Infos} {
		for _, d := range group {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", d.Severity, d)
		}
	}
}
