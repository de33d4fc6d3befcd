// Copyright 2022 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package loader

import "gopkg.in/yaml.v3"

// scalarEnd returns the best-effort byte offset immediately after a
// scalar token that starts at `start`. yaml.v3 only gives us a start
// position per node, so block literal/folded scalars (the "|"/">"
// styles) are approximated by scanning to the next unindented line;
// everything else is computed precisely from the token's own text.
func scalarEnd(text []byte, start int, node *yaml.Node) int {
	switch node.Style {
	case yaml.SingleQuotedStyle:
		return singleQuotedEnd(text, start)
	case yaml.DoubleQuotedStyle:
		return doubleQuotedEnd(text, start)
	case yaml.LiteralStyle, yaml.FoldedStyle:
		return blockScalarEnd(text, start)
	default:
		return plainScalarEnd(text, start, node)
	}
}

func plainScalarEnd(text []byte, start int, node *yaml.Node) int {
	if node.Tag == "!!str" || node.Tag == "" || node.Tag == "!!null" || node.Tag == "!!bool" || node.Tag == "!!int" || node.Tag == "!!float" {
		// Plain scalars in flow or block context end at the first
		// unescaped ',', ']', '}', '#', newline, a ':' followed by
		// whitespace (the key/value indicator), or end of text, JSON
		// strings end at byte length of Value since flow-JSON needs no
		// unescaping beyond quotes (handled above).
		i := start
		for i < len(text) {
			c := text[i]
			if c == '\n' || c == '#' {
				break
			}
			if c == ',' || c == ']' || c == '}' {
				break
			}
			if c == ':' && (i+1 >= len(text) || text[i+1] == ' ' || text[i+1] == '\t' || text[i+1] == '\n' || text[i+1] == '\r') {
				break
			}
			i++
		}
		end := i
		for end > start && (text[end-1] == ' ' || text[end-1] == '\t' || text[end-1] == '\r') {
			end--
		}
		if end <= start {
			return start + len(node.Value)
		}
		return end
	}
	return start + len(node.Value)
}

func singleQuotedEnd(text []byte, start int) int {
	if start >= len(text) || text[start] != '\'' {
		return start
	}
	i := start + 1
	for i < len(text) {
		if text[i] == '\'' {
			if i+1 < len(text) && text[i+1] == '\'' {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return len(text)
}

func doubleQuotedEnd(text []byte, start int) int {
	if start >= len(text) || text[start] != '"' {
		return start
	}
	i := start + 1
	for i < len(text) {
		if text[i] == '\\' {
			i += 2
			continue
		}
		if text[i] == '"' {
			return i + 1
		}
		i++
	}
	return len(text)
}

// blockScalarEnd scans forward from the header line of a "|" or ">" block
// scalar until it finds a line that is less indented than the block's
// first content line, or end of text.
func blockScalarEnd(text []byte, start int) int {
	// advance to end of header line
	i := start
	for i < len(text) && text[i] != '\n' {
		i++
	}
	if i >= len(text) {
		return len(text)
	}
	i++ // past the newline
	firstContentIndent := -1
	lastNonBlank := i
	for i < len(text) {
		lineStart := i
		indent := 0
		for i < len(text) && text[i] == ' ' {
			indent++
			i++
		}
		blank := i >= len(text) || text[i] == '\n'
		if !blank {
			if firstContentIndent == -1 {
				firstContentIndent = indent
			} else if indent < firstContentIndent {
				return lineStart
			}
		}
		for i < len(text) && text[i] != '\n' {
			i++
		}
		if !blank {
			lastNonBlank = i
		}
		if i < len(text) {
			i++
		}
	}
	return lastNonBlank
}
