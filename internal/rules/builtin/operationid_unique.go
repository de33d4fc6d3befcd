// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package builtin

import (
	"fmt"

	"github.com/specgraph/specgraph/internal/project"
	"github.com/specgraph/specgraph/internal/rules"
)

// OperationIDUnique flags every occurrence of an operationId declared
// more than once across the workspace, using the cross-document
// OperationIdIndex rather than the per-operation Operation visitor alone
// so duplicates spanning separate files are still caught.
var OperationIDUnique = rules.Rule{
	ID:              "operationid-unique",
	Title:           "operationId must be unique across the workspace",
	DefaultSeverity: rules.SeverityError,
	Visitor: rules.Visitor{
		Operation: func(ctx *rules.Context, ref *project.OperationRef) {
			if ref.OperationID == "" {
				return
			}
			occ := ctx.Project().OperationIDs.Occurrences(ref.OperationID)
			if len(occ) <= 1 {
				return
			}
			ctx.Report(ref.URI, ref.Node,
				fmt.Sprintf("duplicate operationId %q (%d occurrences)", ref.OperationID, len(occ)))
		},
	},
}
