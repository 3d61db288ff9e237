// Package mermaid deterministically renders a validated architecture graph
// into a Mermaid flowchart document. Rendering never fails: per-element
// errors degrade to diagnostics and placeholder output, never to an empty or
// syntactically broken diagram.
package mermaid

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/ident"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/schema"
)

// Header declares a left-to-right directed graph; every rendered document
// starts with it.
const Header = "graph LR"

// maxEncodedURL is the practical ceiling for the hosted renderer; longer
// documents need local rendering.
const maxEncodedURL = 50000

// Render converts a graph into Mermaid text. The output always contains the
// header line; a graph with zero usable components yields a single
// placeholder node so the document stays syntactically valid.
func Render(g *schema.ArchitectureGraph) (string, []schema.Diagnostic) {
	var b strings.Builder
	var diags []schema.Diagnostic

	b.WriteString(Header)
	b.WriteByte('\n')

	if g == nil {
		b.WriteString("    " + ident.Namespace + "empty[\"no architecture\"]\n")
		return b.String(), append(diags, schema.Diagnostic{Stage: "diagram", Message: "nil graph"})
	}

	// Node identifiers must be globally unique: sanitization alone may
	// collide (distinct names stripping to the same identifier, or the
	// oracle emitting duplicate names), so collisions get the component's
	// index appended.
	ids := make([]string, len(g.Components))
	taken := make(map[string]bool, len(g.Components))
	byName := make(map[string]string, len(g.Components))

	for i, comp := range g.Components {
		id := ident.SanitizeID(comp.Name)
		if taken[id] {
			id = fmt.Sprintf("%s_%d", id, i)
		}
		taken[id] = true
		ids[i] = id
		if _, dup := byName[comp.Name]; !dup {
			byName[comp.Name] = id
		}
	}

	nodes := 0
	for i, comp := range g.Components {
		label := ident.SanitizeLabel(comp.Name)
		if label == "" {
			label = ids[i]
		}
		kind := comp.Kind()
		if kind.IsContainer() {
			label += "<br/>" + string(kind)
		}
		b.WriteString("    ")
		b.WriteString(ids[i])
		b.WriteString(nodeShape(kind, label))
		b.WriteByte('\n')
		nodes++
	}

	if nodes == 0 {
		b.WriteString("    " + ident.Namespace + "empty[\"no components\"]\n")
	}

	for i, conn := range g.Connections {
		src, ok := resolve(conn.Source, taken, byName)
		if !ok {
			diags = append(diags, schema.Diagnostic{
				Stage:   "diagram",
				Element: fmt.Sprintf("connections[%d]", i),
				Message: fmt.Sprintf("unknown source %q, edge omitted", conn.Source),
			})
			continue
		}
		dst, ok := resolve(conn.Destination, taken, byName)
		if !ok {
			diags = append(diags, schema.Diagnostic{
				Stage:   "diagram",
				Element: fmt.Sprintf("connections[%d]", i),
				Message: fmt.Sprintf("unknown destination %q, edge omitted", conn.Destination),
			})
			continue
		}

		b.WriteString("    ")
		b.WriteString(src)
		if conn.Label != "" {
			b.WriteString(" -->|")
			b.WriteString(ident.SanitizeLabel(conn.Label))
			b.WriteString("| ")
		} else {
			b.WriteString(" --> ")
		}
		b.WriteString(dst)
		b.WriteByte('\n')
	}

	return b.String(), diags
}

// resolve maps a connection endpoint ("Name/Port") to a node identifier.
// The port suffix is informational here and stripped. Lookup is first by
// sanitized identifier, then a fallback by original component name for
// components whose identifier was index-suffixed.
func resolve(endpoint string, taken map[string]bool, byName map[string]string) (string, bool) {
	base := endpoint
	if i := strings.IndexByte(endpoint, '/'); i >= 0 {
		base = endpoint[:i]
	}
	base = strings.TrimSpace(base)
	if base == "" {
		return "", false
	}

	id := ident.SanitizeID(base)
	if taken[id] {
		return id, true
	}
	if id, ok := byName[base]; ok {
		return id, true
	}
	return "", false
}

// nodeShape selects the Mermaid node syntax for a block kind. The switch is
// exhaustive over the closed set; anything else renders as a plain box.
func nodeShape(kind schema.BlockType, label string) string {
	q := "\"" + label + "\""
	switch kind {
	case schema.BlockInport:
		return "([" + q + "])"
	case schema.BlockOutport:
		return "((" + q + "))"
	case schema.BlockSubsystem:
		return "[[" + q + "]]"
	case schema.BlockModelReference:
		return "[[" + q + "]]"
	case schema.BlockStateflowChart:
		return "{" + q + "}"
	case schema.BlockSwitch:
		return "{" + q + "}"
	case schema.BlockSum, schema.BlockProduct:
		return "((" + q + "))"
	case schema.BlockGain, schema.BlockIntegrator, schema.BlockConstant,
		schema.BlockScope, schema.BlockSaturation:
		return "[" + q + "]"
	default:
		return "[" + q + "]"
	}
}

// LiveURL encodes a rendered diagram into a hosted image-renderer URL.
// Documents whose encoding exceeds the endpoint's practical limit return an
// error; callers should fall back to local rendering.
func LiveURL(diagram string) (string, error) {
	encoded := base64.URLEncoding.EncodeToString([]byte(diagram))
	if len(encoded) > maxEncodedURL {
		return "", fmt.Errorf("mermaid: encoded diagram is %d bytes, too large for the hosted renderer", len(encoded))
	}
	return "https://mermaid.ink/img/" + encoded, nil
}
