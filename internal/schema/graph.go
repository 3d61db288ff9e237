// Package schema defines the architecture graph produced by the oracle and
// consumed by the renderers, together with the validation and decoding logic
// that turns untrusted candidate values into graphs.
package schema

import (
	"encoding/json"
	"fmt"
)

// ArchitectureGraph is the root artifact of a pipeline run. It is built once,
// treated as immutable during rendering, and discarded after the artifacts
// are produced.
type ArchitectureGraph struct {
	SystemName  string       `json:"system_name"`
	Components  []Component  `json:"components"`
	Connections []Connection `json:"connections,omitempty"`
}

// Component is a single block in the architecture.
type Component struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Parameters map[string]string `json:"parameters,omitempty"`
	// Position is (left, top, right, bottom) when present; length other
	// than 4 means no explicit placement and the renderers fall back to
	// the deterministic grid.
	Position []float64 `json:"position,omitempty"`
}

// HasPosition reports whether the component carries an explicit placement.
func (c Component) HasPosition() bool { return len(c.Position) == 4 }

// Kind resolves the component's raw type string against the closed block set.
func (c Component) Kind() BlockType { return ParseBlockType(c.Type) }

// Connection is a directed signal route. Source and Destination are formatted
// "ComponentName/PortNumber"; the port suffix is stripped by the diagram
// renderer and preserved by the build-script renderer.
type Connection struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Label       string `json:"label,omitempty"`
}

// Diagnostic records a non-fatal element-level anomaly encountered while
// decoding or rendering. Diagnostics never abort processing.
type Diagnostic struct {
	Stage   string `json:"stage"`
	Element string `json:"element,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Element == "" {
		return fmt.Sprintf("[%s] %s", d.Stage, d.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Stage, d.Element, d.Message)
}

// Decode converts a validated candidate value into an ArchitectureGraph.
// It is deliberately lenient: malformed components and connections are
// skipped with a diagnostic instead of failing the whole graph, scalar
// parameter values are stringified, and both system_name and systemName
// spellings are accepted.
func Decode(candidate any) (*ArchitectureGraph, []Diagnostic) {
	var diags []Diagnostic

	obj, ok := candidate.(map[string]any)
	if !ok {
		return nil, append(diags, Diagnostic{Stage: "decode", Message: "candidate is not an object"})
	}

	g := &ArchitectureGraph{SystemName: stringField(obj, "system_name", "systemName", "name")}

	comps, _ := obj["components"].([]any)
	for i, raw := range comps {
		m, ok := raw.(map[string]any)
		if !ok {
			diags = append(diags, Diagnostic{
				Stage:   "decode",
				Element: fmt.Sprintf("components[%d]", i),
				Message: "not an object, skipped",
			})
			continue
		}
		comp := Component{
			Name: stringField(m, "name"),
			Type: stringField(m, "type"),
		}
		if params, ok := m["parameters"].(map[string]any); ok {
			comp.Parameters = make(map[string]string, len(params))
			for k, v := range params {
				comp.Parameters[k] = scalarString(v)
			}
		}
		if pos, ok := m["position"].([]any); ok {
			tuple := make([]float64, 0, len(pos))
			numeric := true
			for _, p := range pos {
				n, ok := p.(float64)
				if !ok {
					numeric = false
					break
				}
				tuple = append(tuple, n)
			}
			if numeric && len(tuple) == 4 {
				comp.Position = tuple
			} else {
				diags = append(diags, Diagnostic{
					Stage:   "decode",
					Element: fmt.Sprintf("components[%d]", i),
					Message: "position is not a numeric 4-tuple, using grid layout",
				})
			}
		}
		g.Components = append(g.Components, comp)
	}

	conns, _ := obj["connections"].([]any)
	for i, raw := range conns {
		m, ok := raw.(map[string]any)
		if !ok {
			diags = append(diags, Diagnostic{
				Stage:   "decode",
				Element: fmt.Sprintf("connections[%d]", i),
				Message: "not an object, skipped",
			})
			continue
		}
		conn := Connection{
			Source:      stringField(m, "source", "src"),
			Destination: stringField(m, "destination", "dst"),
			Label:       stringField(m, "label", "signal"),
		}
		if conn.Source == "" && conn.Destination == "" {
			diags = append(diags, Diagnostic{
				Stage:   "decode",
				Element: fmt.Sprintf("connections[%d]", i),
				Message: "missing source and destination, skipped",
			})
			continue
		}
		g.Connections = append(g.Connections, conn)
	}

	return g, diags
}

// Encode serializes a graph to the pretty-printed UTF-8 export format.
// Re-loading the output through Validate and Decode yields a graph that
// renders identically to the original.
func Encode(g *ArchitectureGraph) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("schema: nil graph")
	}
	return json.MarshalIndent(g, "", "  ")
}

// Load parses exported graph bytes through the same validator used for
// oracle output, so both provenances behave identically downstream.
func Load(data []byte) (*ArchitectureGraph, []Diagnostic, error) {
	var candidate any
	if err := json.Unmarshal(data, &candidate); err != nil {
		return nil, nil, fmt.Errorf("schema: parsing graph file: %w", err)
	}
	if ok, reason := Validate(candidate); !ok {
		return nil, nil, fmt.Errorf("schema: invalid graph file: %s", reason)
	}
	g, diags := Decode(candidate)
	return g, diags, nil
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s := scalarString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; keep integers clean.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		return ""
	}
}
