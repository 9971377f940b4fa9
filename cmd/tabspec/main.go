// Package main provides the CLI entrypoint for tabspec.
//
// tabspec manages projects: named specification documents that describe how
// delimited data files are parsed. It can:
//   - Register, list and remove projects
//   - Add, remove and edit dataset specifications
//   - Print the reader arguments derived from a specification
//   - Load a dataset, clean it and export it to parquet
//   - Lint a specification document
package main

import (
	"fmt"
	"os"

	"tabspec/internal/config"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := newRootCmd(settings).Execute(); err != nil {
		os.Exit(1)
	}
}
