// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package builtin ships the small set of default rules the engine runs
// out of the box: one worked example per end-to-end scenario the system
// must support.
package builtin

import (
	"regexp"
	"strings"

	"github.com/specgraph/specgraph/internal/project"
	"github.com/specgraph/specgraph/internal/rules"
)

var kebabCaseSegment = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// PathKebabCase flags a path template whose literal segments are not
// kebab-case. Template parameters ("{id}") are left unchecked.
var PathKebabCase = rules.Rule{
	ID:              "path-kebab-case",
	Title:           "path segments should be kebab-case",
	DefaultSeverity: rules.SeverityInformation,
	Visitor: rules.Visitor{
		PathItem: func(ctx *rules.Context, ref *project.PathItemRef) {
			for _, seg := range strings.Split(strings.Trim(ref.Path, "/"), "/") {
				if seg == "" || strings.HasPrefix(seg, "{") {
					continue
				}
				if !kebabCaseSegment.MatchString(seg) {
					ctx.ReportKey(ref.URI, ref.Node, "path \""+ref.Path+"\" should be kebab-case")
					return
				}
			}
		},
	},
}
