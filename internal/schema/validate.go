package schema

import "fmt"

// Validate checks a candidate value (typically freshly extracted from oracle
// output, or loaded from an exported graph file) against the graph shape.
// Checks run in order and short-circuit on the first failure, returning a
// human-readable reason. Malformed-but-navigable input never panics; element
// level checks on connections are deferred to rendering, which tolerates bad
// elements individually.
func Validate(candidate any) (bool, string) {
	obj, ok := candidate.(map[string]any)
	if !ok {
		return false, fmt.Sprintf("candidate is %T, expected a JSON object", candidate)
	}

	if stringField(obj, "system_name", "systemName", "name") == "" {
		return false, "missing system_name field"
	}

	comps, ok := obj["components"]
	if !ok {
		return false, "missing components field"
	}
	list, ok := comps.([]any)
	if !ok {
		return false, fmt.Sprintf("components is %T, expected an array", comps)
	}

	for i, raw := range list {
		m, ok := raw.(map[string]any)
		if !ok {
			return false, fmt.Sprintf("components[%d] is %T, expected an object", i, raw)
		}
		if stringField(m, "name") == "" {
			return false, fmt.Sprintf("components[%d] has no name", i)
		}
		if stringField(m, "type") == "" {
			return false, fmt.Sprintf("components[%d] has no type", i)
		}
	}

	if conns, ok := obj["connections"]; ok {
		if _, ok := conns.([]any); !ok {
			return false, fmt.Sprintf("connections is %T, expected an array", conns)
		}
	}

	return true, ""
}
