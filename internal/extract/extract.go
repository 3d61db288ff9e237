// Package extract recovers a structured candidate value from the oracle's
// raw text reply. The oracle is prompted, not programmed: despite the
// instructions it intermittently wraps its JSON in markdown fences or prose,
// so extraction is an explicit ordered list of fallback parse strategies
// rather than a single parse call.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/llm"
)

// Result is a successfully extracted candidate value, tagged with the
// strategy that produced it.
type Result struct {
	Value    any
	Strategy string
}

// Failure is returned when no strategy could coerce the reply into a
// structured value. The raw text is retained for diagnostics.
type Failure struct {
	Raw       string
	Attempted []string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("extract: no strategy succeeded (tried %s)", strings.Join(f.Attempted, ", "))
}

type strategy struct {
	name  string
	apply func(string) (string, bool)
}

// Strategies run in order; each is attempted only if the previous failed.
var strategies = []strategy{
	{"direct", func(s string) (string, bool) { return s, true }},
	{"fences", stripFences},
	{"object", outermost('{', '}')},
	{"array", outermost('[', ']')},
}

// Extract coerces raw oracle text into a structured value. On total failure
// it returns a *Failure error carrying the raw reply.
func Extract(raw string) (*Result, error) {
	cleaned := llm.StripThinkingTags(raw)

	fail := &Failure{Raw: raw}
	for _, st := range strategies {
		candidate, ok := st.apply(cleaned)
		if !ok {
			fail.Attempted = append(fail.Attempted, st.name)
			continue
		}
		var value any
		if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &value); err != nil {
			fail.Attempted = append(fail.Attempted, st.name)
			continue
		}
		return &Result{Value: value, Strategy: st.name}, nil
	}
	return nil, fail
}

// stripFences removes the outermost markdown code fence pair, tolerating a
// language tag on the opening fence. Reports false when no fence is present
// (the direct strategy already covered that text).
func stripFences(s string) (string, bool) {
	lines := strings.Split(s, "\n")

	start := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			start = i
			break
		}
	}
	if start == -1 {
		return "", false
	}

	end := len(lines)
	for i := len(lines) - 1; i > start; i-- {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			end = i
			break
		}
	}
	return strings.Join(lines[start+1:end], "\n"), true
}

// outermost returns a strategy scanning for the first open delimiter and the
// last matching close delimiter, the outermost-value heuristic for replies
// that bury JSON inside prose.
func outermost(open, close byte) func(string) (string, bool) {
	return func(s string) (string, bool) {
		first := strings.IndexByte(s, open)
		last := strings.LastIndexByte(s, close)
		if first == -1 || last <= first {
			return "", false
		}
		return s[first : last+1], true
	}
}
