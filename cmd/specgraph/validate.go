// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specgraph/specgraph/internal/diagnostics"
	"github.com/specgraph/specgraph/internal/rules"
	"github.com/specgraph/specgraph/internal/rules/builtin"
	"github.com/specgraph/specgraph/internal/workspace"
)

func init() {
	cobra.EnableCommandSorting = true
}

// severityRank mirrors rules.Severity's ordering so --severity=min can
// compare a requested floor against a diagnostic's actual severity.
var severityRank = map[string]int{
	"error":       int(rules.SeverityError),
	"warn":        int(rules.SeverityWarning),
	"warning":     int(rules.SeverityWarning),
	"info":        int(rules.SeverityInformation),
	"information": int(rules.SeverityInformation),
	"hint":        int(rules.SeverityHint),
}

func newValidateCmd() *cobra.Command {
	var severityFloor string
	var ruleFilter []string
	var ruleOverrides []string

	cmd := &cobra.Command{
		Use:   "validate [paths...]",
		Short: "Load and lint OpenAPI documents, reporting diagnostics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, severityFloor, ruleFilter, ruleOverrides)
		},
	}
	cmd.Flags().StringVar(&severityFloor, "severity", "hint", "minimum severity to report: error|warn|info|hint")
	cmd.Flags().StringSliceVar(&ruleFilter, "rules", nil, "restrict to these rule IDs (default: all built-in rules)")
	cmd.Flags().StringSliceVar(&ruleOverrides, "rule-severity", nil, "override a rule's severity, as ruleId=off|error|warn|info|hint (repeatable)")
	return cmd
}

// parseOverrides turns a repeated --rule-severity ruleId=value flag into
// a rules.Overrides map, the engine-consumed form of spec.md §6's
// workspace-config `rulesOverrides`.
func parseOverrides(raw []string) (rules.Overrides, error) {
	overrides := rules.Overrides{}
	for _, entry := range raw {
		id, value, ok := strings.Cut(entry, "=")
		if !ok || id == "" || value == "" {
			return nil, fmt.Errorf("invalid --rule-severity %q: want ruleId=off|error|warn|info|hint", entry)
		}
		overrides[id] = value
	}
	return overrides, nil
}

// runValidate implements spec.md §6's CLI surface: exit 0 clean, 1
// warnings-only, 2 errors present, 3 invocation error.
func runValidate(cmd *cobra.Command, paths []string, severityFloor string, ruleFilter, ruleOverrides []string) error {
	floor, ok := severityRank[severityFloor]
	if !ok {
		return fmt.Errorf("invalid --severity %q: must be one of error, warn, info, hint", severityFloor)
	}

	overrides, err := parseOverrides(ruleOverrides)
	if err != nil {
		return err
	}

	selected := builtin.All()
	if len(ruleFilter) > 0 {
		want := map[string]bool{}
		for _, id := range ruleFilter {
			want[id] = true
		}
		var filtered []rules.Rule
		for _, r := range selected {
			if want[r.ID] {
				filtered = append(filtered, r)
			}
		}
		selected = filtered
	}

	ws := workspace.New(nil)
	for _, p := range paths {
		if err := loadPath(ws, p); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "specgraph: %v\n", err)
			return errInvocation
		}
	}

	engine := rules.NewEngine(selected...).WithOverrides(overrides)
	agg := ws.Validate(engine)

	var errorCount, warnCount int
	all := agg.All()
	for _, uri := range sortedURIs(agg) {
		for _, d := range all[uri] {
			if d.Severity > floor {
				continue
			}
			printDiagnostic(cmd, d)
			switch d.Severity {
			case int(rules.SeverityError):
				errorCount++
			case int(rules.SeverityWarning):
				warnCount++
			}
		}
	}

	switch {
	case errorCount > 0:
		return errWithCode(2)
	case warnCount > 0:
		return errWithCode(1)
	default:
		return nil
	}
}

func loadPath(ws *workspace.Workspace, p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return ws.LoadFS(p, os.DirFS(p))
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	ws.Load("file://"+abs, data)
	return nil
}

func printDiagnostic(cmd *cobra.Command, d diagnostics.Diagnostic) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s:%d:%d: %s [%s]\n",
		d.URI, d.Range.Start.Line+1, d.Range.Start.Character+1, d.Message, d.RuleID)
}

// cmdExitError carries an explicit process exit code through cobra's
// RunE error path without printing a redundant "Error:" line for
// non-invocation failures (severity-driven exit codes are not errors).
type cmdExitError struct {
	code int
}

func (e *cmdExitError) Error() string { return "" }

func errWithCode(code int) error {
	return &cmdExitError{code: code}
}

var errInvocation = &cmdExitError{code: 3}

// exitCodeOf extracts the process exit code intended for err, defaulting
// to 3 (invocation error) for anything unrecognized.
func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if ce, ok := err.(*cmdExitError); ok {
		return ce.code
	}
	return 3
}

func sortedURIs(agg *diagnostics.Aggregator) []string {
	all := agg.All()
	out := make([]string, 0, len(all))
	for uri := range all {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}
