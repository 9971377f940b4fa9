package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tabspec/internal/common"
	"tabspec/internal/schema"
)

type datasetFlags struct {
	project   string
	paths     []string
	delimiter string
	nrows     int
}

func (f *datasetFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.project, "project", "p", "", "project name")
	cmd.Flags().StringSliceVar(&f.paths, "path", nil, "data file; repeat for a multi-file dataset")
	cmd.Flags().StringVar(&f.delimiter, "dlm", "", "field delimiter")
	cmd.Flags().IntVar(&f.nrows, "nrows", 0, "rows to read per file")
	_ = cmd.MarkFlagRequired("project")
}

// specs returns the specification keys set on the command line.
func (f *datasetFlags) specs(cmd *cobra.Command) (map[string]any, error) {
	out := map[string]any{}

	if cmd.Flags().Changed("path") {
		paths, err := absPaths(f.paths)
		if err != nil {
			return nil, err
		}

		if common.IsSingle(paths) {
			out[schema.KeyPath] = paths[0]
		} else {
			out[schema.KeyPath] = paths
		}
	}

	if cmd.Flags().Changed("dlm") {
		out[schema.KeyDelimiter] = f.delimiter
	}

	if cmd.Flags().Changed("nrows") {
		out[schema.KeyNrows] = f.nrows
	}

	return out, nil
}

func (a *app) addDatasetCmd() *cobra.Command {
	var f datasetFlags

	cmd := &cobra.Command{
		Use:   "add-dataset DATASET_NAME",
		Short: "Add a dataset to a project's specification document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := f.specs(cmd)
			if err != nil {
				return err
			}

			err = a.store.AddDataset(f.project, args[0], schema.Specification(specs))

			return missingProject(cmd, f.project, err)
		},
	}

	f.bind(cmd)
	_ = cmd.MarkFlagRequired("path")
	_ = cmd.MarkFlagRequired("dlm")

	return cmd
}

func (a *app) removeDatasetCmd() *cobra.Command {
	var projectName string

	cmd := &cobra.Command{
		Use:   "remove-dataset DATASET_NAME",
		Short: "Remove a dataset from a project's specification document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.store.RemoveDataset(projectName, args[0])
			if err != nil {
				return missingProject(cmd, projectName, err)
			}

			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removing the dataset %s failed.\n", args[0])
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "project name")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func (a *app) setSpecsCmd() *cobra.Command {
	var (
		f       datasetFlags
		dataset string
	)

	cmd := &cobra.Command{
		Use:   "set-specs",
		Short: "Change a dataset's specification in place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			specs, err := f.specs(cmd)
			if err != nil {
				return err
			}

			if len(specs) == 0 {
				return fmt.Errorf("nothing to set: pass --path, --dlm or --nrows")
			}

			return missingProject(cmd, f.project, a.store.SetSchemaSpecs(f.project, dataset, specs))
		},
	}

	f.bind(cmd)
	cmd.Flags().StringVarP(&dataset, "dataset", "d", "", "dataset name")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}
