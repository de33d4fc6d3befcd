// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package builtin implements SPEC_FULL.md §5.10: the built-in rule set
// that exercises the engine's full visitor contract end to end, covering
// every worked scenario in spec.md §8.
package builtin

import "github.com/specgraph/specgraph/internal/rules"

// All returns every built-in rule, in a stable, deterministic order
// suitable for passing straight to rules.NewEngine.
func All() []rules.Rule {
	return []rules.Rule{
		PathKebabCase,
		OperationIDUnique,
		RefCycle,
		OperationResponses,
		DocumentASCII,
		SchemaShape,
		SchemaPatternValid,
	}
}
