// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package builtin

import (
	"github.com/specgraph/specgraph/internal/diagnostics"
	"github.com/specgraph/specgraph/internal/loader"
	"github.com/specgraph/specgraph/internal/rules"
)

// DocumentASCII flags every non-ASCII character found in a document's raw
// text, one diagnostic per offending rune, per spec.md §8's worked
// example ("a YAML file containing the character é at byte offset 42").
var DocumentASCII = rules.Rule{
	ID:              "document-ascii",
	Title:           "document must contain only ASCII characters",
	DefaultSeverity: rules.SeverityError,
	Visitor: rules.Visitor{
		Document: func(ctx *rules.Context, uri string, doc *loader.Document) {
			text := doc.RawText
			for i := 0; i < len(text); {
				b := text[i]
				if b < 0x80 {
					i++
					continue
				}
				n := runeByteLen(b)
				if n == 0 {
					n = 1
				}
				start := ctx.Locate(uri, i)
				end := ctx.Locate(uri, i+n)
				ctx.ReportAt(uri, diagnostics.Range{
					Start: diagnostics.Position{Line: start.Line, Character: start.Column},
					End:   diagnostics.Position{Line: end.Line, Character: end.Column},
				}, "Only ASCII characters are allowed")
				i += n
			}
		},
	},
}

func runeByteLen(b byte) int {
	switch {
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}
