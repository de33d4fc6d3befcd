// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Command specgraph is the thin CLI surface spec.md §6 names: a single
// `validate` subcommand built on github.com/spf13/cobra, the pack's
// cobra-based CLI convention (ternarybob-quaero's cmd/quaero, upbound-up's
// go.mod). Config-file loading and any other packaging concern is
// explicitly out of scope (spec.md §1) and left to a host.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
	}
	os.Exit(exitCodeOf(err))
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "specgraph",
		Short: "Workspace-scale static analyzer for OpenAPI documents",
		// main prints non-empty error messages itself.
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCmd())
	return root
}
