// Copyright 2022 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package pointer implements RFC-6901 JSON Pointer manipulation and the
// $ref resolution rules used across the engine: same-document fragments,
// external http(s) references, and relative file references.
package pointer

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

// Root is the canonical pointer for a document's root node.
const Root = "#"

// Escape applies RFC-6901 escaping to a single reference-token: '~' becomes
// '~0' and '/' becomes '~1'. Order matters: '~' must be escaped first.
func Escape(tok string) string {
	tok = strings.ReplaceAll(tok, "~", "~0")
	tok = strings.ReplaceAll(tok, "/", "~1")
	return tok
}

// Unescape reverses Escape: '~1' becomes '/' and '~0' becomes '~'.
func Unescape(tok string) string {
	tok = strings.ReplaceAll(tok, "~1", "/")
	tok = strings.ReplaceAll(tok, "~0", "~")
	return tok
}

// Split decomposes a JSON Pointer (with or without the leading '#') into
// its unescaped reference tokens. Split("#") and Split("") both return an
// empty slice, representing the document root.
func Split(ptr string) []string {
	ptr = strings.TrimPrefix(ptr, "#")
	if ptr == "" {
		return nil
	}
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return nil
	}
	parts := strings.Split(ptr, "/")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = Unescape(p)
	}
	return out
}

// Join builds a canonical "#/a/b/0" pointer string from unescaped
// reference tokens. Join(nil) returns Root.
func Join(segments []string) string {
	if len(segments) == 0 {
		return Root
	}
	var b strings.Builder
	b.WriteString("#")
	for _, s := range segments {
		b.WriteString("/")
		b.WriteString(Escape(s))
	}
	return b.String()
}

// Append returns a new pointer formed by appending a single token (a
// property name or, for array indices, its decimal string form) to ptr.
func Append(ptr string, token string) string {
	return Join(append(Split(ptr), token))
}

// AppendIndex is a convenience wrapper around Append for array indices.
func AppendIndex(ptr string, index int) string {
	return Append(ptr, strconv.Itoa(index))
}

// Kind classifies how a $ref string must be resolved.
type Kind int

const (
	// KindSameDocument is a "#/..." fragment-only reference.
	KindSameDocument Kind = iota
	// KindExternal is an absolute http(s) URI.
	KindExternal
	// KindRelativeFile is a relative (or absolute) filesystem path, with an
	// optional "#/..." fragment.
	KindRelativeFile
)

// Resolved is the result of resolving a $ref string against the URI of
// the document that contains it.
type Resolved struct {
	Kind     Kind
	URI      string // absolute/canonical URI of the target document
	Fragment string // "#/..." pointer within that document, Root if absent
}

// Resolve implements spec.md §4.2: $ref strings beginning with "#" are
// same-document; "http://" or "https://" are external; anything else is
// resolved as a relative filesystem path against the directory of
// fromURI, with the fragment (if any) preserved.
func Resolve(fromURI, ref string) Resolved {
	if ref == "" {
		return Resolved{Kind: KindSameDocument, URI: fromURI, Fragment: Root}
	}
	if strings.HasPrefix(ref, "#") {
		frag := ref
		if frag == "" {
			frag = Root
		}
		return Resolved{Kind: KindSameDocument, URI: fromURI, Fragment: normalizeFragment(frag)}
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		target, frag := splitFragment(ref)
		return Resolved{Kind: KindExternal, URI: target, Fragment: normalizeFragment(frag)}
	}

	target, frag := splitFragment(ref)
	abs := resolveRelative(fromURI, target)
	return Resolved{Kind: KindRelativeFile, URI: abs, Fragment: normalizeFragment(frag)}
}

func normalizeFragment(frag string) string {
	if frag == "" {
		return Root
	}
	if !strings.HasPrefix(frag, "#") {
		frag = "#" + frag
	}
	return Join(Split(frag))
}

func splitFragment(ref string) (target, fragment string) {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		return ref[:i], ref[i:]
	}
	return ref, ""
}

// resolveRelative canonicalizes a relative filesystem reference against
// the directory containing fromURI, so that two different relative
// spellings of the same file always compare equal. The scheme (if any) of
// fromURI is preserved on the result, so "file:///a/root.yaml" plus
// "./frag.yaml" resolves to "file:///a/frag.yaml" rather than losing its
// scheme and becoming incomparable to other "file://" document keys.
func resolveRelative(fromURI, rel string) string {
	if rel == "" {
		return canonicalizeURI(fromURI)
	}
	if u, err := url.Parse(rel); err == nil && u.IsAbs() {
		return canonicalizeURI(rel)
	}
	scheme, pathPart := splitScheme(fromURI)
	if path.IsAbs(rel) {
		return canonicalizeURI(scheme + rel)
	}
	dir := path.Dir(pathPart)
	joined := path.Join(dir, rel)
	return canonicalizeURI(scheme + joined)
}

// splitScheme splits a "scheme://host"-prefixed URI into its scheme
// prefix (including "://") and the remaining path; a bare filesystem
// path (no "://") returns an empty scheme.
func splitScheme(uri string) (scheme, pathPart string) {
	if i := strings.Index(uri, "://"); i >= 0 {
		return uri[:i+3], uri[i+3:]
	}
	return "", uri
}

// canonicalizeURI slash-normalizes and percent-decodes (where safe) a URI
// or path so that repeated resolutions of the same file always produce an
// identical comparison key, as required by spec.md §4.2.
func canonicalizeURI(uri string) string {
	if strings.Contains(uri, "://") {
		u, err := url.Parse(uri)
		if err != nil {
			return path.Clean(uri)
		}
		u.Path = path.Clean(u.Path)
		return u.String()
	}
	if decoded, err := url.PathUnescape(uri); err == nil {
		uri = decoded
	}
	return path.Clean(uri)
}
