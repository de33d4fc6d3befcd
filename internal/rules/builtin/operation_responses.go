// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package builtin

import (
	"fmt"
	"strings"

	"github.com/specgraph/specgraph/internal/project"
	"github.com/specgraph/specgraph/internal/rules"
)

// requiredStatusCodes is the baseline set of status codes a well-formed
// operation is expected to document, per spec.md §8's worked example.
var requiredStatusCodes = []string{"400", "401", "403", "429", "500"}

// OperationResponses flags an operation whose `responses` map is missing
// any of the baseline status codes, listing exactly which ones.
var OperationResponses = rules.Rule{
	ID:              "operation-responses",
	Title:           "operation should document common error responses",
	DefaultSeverity: rules.SeverityError,
	Visitor: rules.Visitor{
		Operation: func(ctx *rules.Context, ref *project.OperationRef) {
			responses := ref.Node.Child("responses")
			if responses == nil {
				return
			}
			var missing []string
			for _, code := range requiredStatusCodes {
				if !responses.HasKey(code) {
					missing = append(missing, code)
				}
			}
			if len(missing) == 0 {
				return
			}
			ctx.ReportKey(ref.URI, responses, fmt.Sprintf("missing responses: [%s]", strings.Join(missing, ", ")))
		},
	},
}
