// Package matlab deterministically renders a validated architecture graph
// into a sequential MATLAB build script for Simulink. Every block and line
// statement is wrapped in its own try/catch so one bad name or illegal
// library path cannot abort the whole script; the renderer itself never
// fails past its contract boundary.
package matlab

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/schema"
)

// DefaultModelName is used when the system name sanitizes to nothing.
const DefaultModelName = "GenAI_Model"

// Grid layout constants for components without an explicit position:
// a fixed origin, four columns per row, one cell per unplaced component.
const (
	gridOriginX = 40
	gridOriginY = 40
	gridStepX   = 180
	gridStepY   = 100
	gridColumns = 4
	blockWidth  = 120
	blockHeight = 60
)

// libraryPaths maps the closed block set to canonical Simulink library
// locations. Unknown types fall back to a generic subsystem container.
var libraryPaths = map[schema.BlockType]string{
	schema.BlockGain:           "simulink/Math Operations/Gain",
	schema.BlockSum:            "simulink/Math Operations/Add",
	schema.BlockProduct:        "simulink/Math Operations/Product",
	schema.BlockIntegrator:     "simulink/Continuous/Integrator",
	schema.BlockInport:         "simulink/Sources/In1",
	schema.BlockOutport:        "simulink/Sinks/Out1",
	schema.BlockSubsystem:      "built-in/Subsystem",
	schema.BlockModelReference: "simulink/Ports & Subsystems/Model",
	schema.BlockStateflowChart: "sflib/Chart",
	schema.BlockConstant:       "simulink/Sources/Constant",
	schema.BlockScope:          "simulink/Sinks/Scope",
	schema.BlockSwitch:         "simulink/Signal Routing/Switch",
	schema.BlockSaturation:     "simulink/Discontinuities/Saturation",
}

const fallbackLibraryPath = "built-in/Subsystem"

// Render converts a graph into build-script text using the current time for
// the header comment, the script's only non-deterministic substring.
func Render(g *schema.ArchitectureGraph) (string, []schema.Diagnostic) {
	return RenderAt(g, time.Now().UTC())
}

// RenderAt is Render with an explicit generation timestamp.
func RenderAt(g *schema.ArchitectureGraph, now time.Time) (script string, diags []schema.Diagnostic) {
	// Outer fault boundary: an unexpected condition degrades to a
	// comment-only script instead of escaping the contract.
	defer func() {
		if r := recover(); r != nil {
			script = fmt.Sprintf("%% build script generation failed: %v\n", r)
			diags = append(diags, schema.Diagnostic{Stage: "script", Message: fmt.Sprintf("renderer panic: %v", r)})
		}
	}()

	if g == nil {
		return "% build script generation failed: no architecture graph\n",
			[]schema.Diagnostic{{Stage: "script", Message: "nil graph"}}
	}

	model := SanitizeModelName(g.SystemName)

	var b strings.Builder
	fmt.Fprintf(&b, "%% Auto-generated Simulink build script for: %s\n", model)
	fmt.Fprintf(&b, "%% Generated: %s\n", now.Format(time.RFC3339))
	b.WriteString("bdclose all; clear; clc;\n")
	fmt.Fprintf(&b, "new_system('%s');\n", model)
	fmt.Fprintf(&b, "open_system('%s');\n", model)
	b.WriteString("\n% Blocks\n")

	names := make(map[string]bool, len(g.Components))
	gridCell := 0
	for i, comp := range g.Components {
		name := sanitizeBlockName(comp.Name)
		if name == "" {
			name = fmt.Sprintf("Block_%d", i+1)
			diags = append(diags, schema.Diagnostic{
				Stage:   "script",
				Element: fmt.Sprintf("components[%d]", i),
				Message: fmt.Sprintf("unusable block name %q, renamed %s", comp.Name, name),
			})
		}
		if names[name] {
			name = fmt.Sprintf("%s_%d", name, i)
		}
		names[name] = true

		lib, ok := libraryPaths[comp.Kind()]
		if !ok {
			lib = fallbackLibraryPath
			diags = append(diags, schema.Diagnostic{
				Stage:   "script",
				Element: name,
				Message: fmt.Sprintf("unknown block type %q, using %s", comp.Type, fallbackLibraryPath),
			})
		}

		path := model + "/" + name

		b.WriteString("try\n")
		fmt.Fprintf(&b, "    add_block('%s', '%s');\n", lib, path)

		for _, key := range sortedKeys(comp.Parameters) {
			fmt.Fprintf(&b, "    set_param('%s', '%s', '%s');\n",
				path, escapeQuotes(key), escapeQuotes(comp.Parameters[key]))
		}

		var pos string
		if comp.HasPosition() {
			pos = formatPosition(comp.Position)
		} else {
			pos = gridPosition(gridCell)
			gridCell++
		}
		fmt.Fprintf(&b, "    set_param('%s', 'Position', [%s]);\n", path, pos)

		b.WriteString("catch err\n")
		fmt.Fprintf(&b, "    disp(['skipped block %s: ' err.message]);\n", name)
		b.WriteString("end\n")
	}

	b.WriteString("\n% Connections\n")
	for i, conn := range g.Connections {
		src := sanitizeEndpoint(conn.Source)
		dst := sanitizeEndpoint(conn.Destination)
		if src == "" || dst == "" {
			diags = append(diags, schema.Diagnostic{
				Stage:   "script",
				Element: fmt.Sprintf("connections[%d]", i),
				Message: "empty endpoint after sanitization, line omitted",
			})
			continue
		}
		// Dangling endpoints are still emitted: the try/catch makes the
		// statement fail in Simulink, not at generation time.
		fmt.Fprintf(&b, "try add_line('%s', '%s', '%s', 'autorouting', 'on'); catch; end\n",
			model, src, dst)
	}

	b.WriteString("\nsave_system;\n")
	fmt.Fprintf(&b, "disp('Build complete: %s');\n", model)

	return b.String(), diags
}

// SanitizeModelName produces a MATLAB-safe model name: whitespace becomes
// underscores, everything outside [A-Za-z0-9_] is stripped, a leading digit
// is guarded, and a fully degenerate name falls back to DefaultModelName.
func SanitizeModelName(raw string) string {
	name := filterName(raw)
	if name == "" {
		return DefaultModelName
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "M" + name
	}
	return name
}

func sanitizeBlockName(raw string) string {
	return strings.Trim(filterName(raw), "_")
}

func filterName(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r == ' ' || r == '\t':
			b.WriteByte('_')
		case r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sanitizeEndpoint cleans one side of a connection while preserving the
// "/port" suffix verbatim.
func sanitizeEndpoint(endpoint string) string {
	name := endpoint
	port := ""
	if i := strings.LastIndexByte(endpoint, '/'); i >= 0 {
		name, port = endpoint[:i], endpoint[i:]
	}
	name = sanitizeBlockName(name)
	if name == "" {
		return ""
	}
	return name + port
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escapeQuotes(s string) string {
	// MATLAB doubles single quotes inside char literals.
	return strings.ReplaceAll(s, "'", "''")
}

func formatPosition(pos []float64) string {
	parts := make([]string, len(pos))
	for i, p := range pos {
		parts[i] = strconv.FormatFloat(p, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}

// gridPosition computes the deterministic fallback placement for the n-th
// component lacking an explicit position.
func gridPosition(cell int) string {
	col := cell % gridColumns
	row := cell / gridColumns
	left := gridOriginX + col*gridStepX
	top := gridOriginY + row*gridStepY
	return fmt.Sprintf("%d, %d, %d, %d", left, top, left+blockWidth, top+blockHeight)
}
