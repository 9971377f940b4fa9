package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			projects, err := a.store.Projects()
			if err != nil {
				return err
			}

			for _, p := range projects {
				fmt.Fprintf(cmd.OutOrStdout(), "Project %s with specfile at %s\n", p.Name, p.Specfile)
			}

			return nil
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add PROJECT_NAME PROJECT_SPECFILE",
		Short: "Register a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			paths, err := absPaths(args[1:])
			if err != nil {
				return err
			}

			return a.store.Add(args[0], paths[0])
		},
	}
}

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove PROJECT_NAME",
		Short: "Unregister a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.store.Remove(args[0])
			if err != nil {
				return err
			}

			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removing the project %s failed.\n", args[0])
			}

			return nil
		},
	}
}

func (a *app) setSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-schema PROJECT_NAME SCHEMA_FPATH",
		Short: "Point a project at another specification document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := absPaths(args[1:])
			if err != nil {
				return err
			}

			return missingProject(cmd, args[0], a.store.SetSpecfile(args[0], paths[0]))
		},
	}
}
