// Package ident maps arbitrary human-readable names to identifiers and
// labels that are safe to embed in generated diagram text.
package ident

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Namespace is prepended to every generated identifier so output can never
// collide with the diagram language's own syntax tokens.
const Namespace = "mbd_"

// maxLabelLen bounds display labels before the ellipsis marker is applied.
const maxLabelLen = 50

// mermaidReserved is the closed keyword set of the target diagram language.
// A sanitized name that lowercases to one of these gets a disambiguating
// marker before the namespace prefix is applied.
var mermaidReserved = map[string]bool{
	"end": true, "graph": true, "subgraph": true, "style": true,
	"class": true, "click": true, "call": true, "direction": true,
	"tb": true, "td": true, "bt": true, "rl": true, "lr": true,
}

// SanitizeID converts a raw component name into a safe identifier. The result
// contains only [A-Za-z0-9_], never starts with a digit, never matches a
// diagram keyword, and is never empty: degenerate inputs fall back to a short
// content-derived hash so distinct inputs do not collide silently.
//
// SanitizeID is a pure function. Cross-component uniqueness is the diagram
// renderer's responsibility, layered on top by index suffixing.
func SanitizeID(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	id := b.String()

	if id == "" {
		id = "h" + contentHash(raw)
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "n" + id
	}
	if mermaidReserved[strings.ToLower(id)] {
		id = "kw_" + id
	}
	return Namespace + id
}

// SanitizeLabel makes a display label safe for the diagram syntax: quotes
// and newlines are neutralized and the result is truncated to a bounded
// length with an ellipsis marker. This is a display transform, not an
// identity transform.
func SanitizeLabel(raw string) string {
	s := strings.NewReplacer(
		"\"", "'",
		"`", "'",
		"\r\n", " ",
		"\n", " ",
		"\r", " ",
	).Replace(raw)

	runes := []rune(s)
	if len(runes) > maxLabelLen {
		s = string(runes[:maxLabelLen]) + "..."
	}
	return s
}

func contentHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}
