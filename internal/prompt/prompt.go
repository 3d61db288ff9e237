// Package prompt composes the instruction text sent to the oracle. Two fixed
// templates exist, selected by the declared input kind; the schema and
// instruction portion is never truncated, only the user-supplied tail.
package prompt

import (
	"fmt"
	"path/filepath"
	"strings"
)

// InputKind selects the analysis template.
type InputKind string

const (
	KindCode         InputKind = "code"
	KindRequirements InputKind = "requirements"
)

// MaxInputChars caps the user-supplied input tail. Truncation happens at a
// character boundary and never touches the instruction portion.
const MaxInputChars = 12000

var codeExtensions = map[string]bool{
	".c": true, ".cc": true, ".cpp": true, ".cxx": true,
	".h": true, ".hh": true, ".hpp": true,
}

var documentExtensions = map[string]bool{
	".txt": true, ".md": true, ".pdf": true,
	".doc": true, ".docx": true, ".rtf": true,
}

// DetectKind decides the input kind by a simple majority vote over the
// uploaded file extensions. Ties and unknown extensions default to
// requirements analysis.
func DetectKind(filenames []string) InputKind {
	code, docs := 0, 0
	for _, name := range filenames {
		ext := strings.ToLower(filepath.Ext(name))
		switch {
		case codeExtensions[ext]:
			code++
		case documentExtensions[ext]:
			docs++
		}
	}
	if code > docs {
		return KindCode
	}
	return KindRequirements
}

const schemaSection = `OUTPUT FORMAT:
Output ONLY a valid JSON object. No markdown fences, no prose.

JSON SCHEMA:
{
  "system_name": "String (top level model name, no spaces)",
  "components": [
    {
      "name": "String (unique block name)",
      "type": "String (one of: Inport, Outport, Gain, Sum, Integrator, Subsystem, StateflowChart, ModelReference, Constant, Scope, Product, Switch, Saturation)",
      "parameters": { "Key": "Value" },
      "position": [left, top, right, bottom]
    }
  ],
  "connections": [
    { "source": "BlockName/1", "destination": "BlockName/1", "label": "optional signal name" }
  ]
}`

const workedExample = `EXAMPLE:
{
  "system_name": "Speed_Control",
  "components": [
    { "name": "SpeedIn", "type": "Inport" },
    { "name": "Gain1", "type": "Gain", "parameters": { "Gain": "2.0" } },
    { "name": "SpeedOut", "type": "Outport" }
  ],
  "connections": [
    { "source": "SpeedIn/1", "destination": "Gain1/1" },
    { "source": "Gain1/1", "destination": "SpeedOut/1" }
  ]
}`

const codeInstructions = `You are a senior Model-Based Design architect. Analyze the legacy C/C++
source below and design a Simulink/Stateflow architecture for it.

MAPPING RULES:
1. Functions and classes map to Subsystem or ModelReference blocks.
2. Global state read/written at the boundary maps to Inport/Outport blocks.
3. Arithmetic (PID terms, feedforward, scaling) maps to Gain/Sum/Product blocks.
4. Branching and state logic (if/else chains, switch) maps to Switch or StateflowChart.
5. Accumulation and numeric integration maps to Integrator blocks.
6. Produce between 5 and 10 components. A single-block answer is not an architecture.`

const requirementsInstructions = `You are a senior Model-Based Design architect. Analyze the natural-language
system requirements below and design a Simulink/Stateflow architecture.

MAPPING RULES:
1. Each external input or sensor signal maps to an Inport block.
2. Each actuator, output, or display maps to an Outport or Scope block.
3. Computation steps (control laws, filters, scaling) map to Gain/Sum/Product/Integrator blocks.
4. Modal or conditional behavior maps to Switch or StateflowChart blocks.
5. Cohesive requirement groups map to Subsystem blocks.
6. Produce between 4 and 8 components. A single-block answer is not an architecture.`

// Build composes the full prompt for the given input kind and user text.
func Build(kind InputKind, inputText string) string {
	return BuildWithContext(kind, inputText, "", nil)
}

// BuildWithContext additionally threads retry feedback (the extraction or
// validation failure of the previous attempt) and worked examples retrieved
// from past runs into the prompt. The instruction and schema sections are
// fixed; only the user input is length-capped.
func BuildWithContext(kind InputKind, inputText, feedback string, examples []string) string {
	var b strings.Builder

	if kind == KindCode {
		b.WriteString(codeInstructions)
	} else {
		b.WriteString(requirementsInstructions)
	}
	b.WriteString("\n\n")
	b.WriteString(schemaSection)
	b.WriteString("\n\n")
	b.WriteString(workedExample)

	for i, ex := range examples {
		b.WriteString(fmt.Sprintf("\n\nPAST ARCHITECTURE %d (for style reference only):\n", i+1))
		b.WriteString(truncate(ex, MaxInputChars/4))
	}

	if feedback != "" {
		b.WriteString("\n\nYOUR PREVIOUS ANSWER WAS REJECTED:\n")
		b.WriteString(feedback)
		b.WriteString("\nCorrect the problem and answer again with only the JSON object.")
	}

	b.WriteString("\n\nUSER INPUT DATA:\n")
	b.WriteString(truncate(inputText, MaxInputChars))

	return b.String()
}

// truncate cuts s at a rune boundary after max characters, appending a
// marker so the oracle knows the input was incomplete.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "\n... [input truncated]"
}
