package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

func mustParse(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("test fixture is not valid JSON: %v", err)
	}
	return v
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		json   string
		wantOK bool
		reason string
	}{
		{
			"valid minimal",
			`{"system_name": "S", "components": [{"name": "A", "type": "Gain"}]}`,
			true, "",
		},
		{
			"valid with connections",
			`{"system_name": "S", "components": [{"name": "A", "type": "Gain"}], "connections": []}`,
			true, "",
		},
		{
			"camelCase system name accepted",
			`{"systemName": "S", "components": []}`,
			true, "",
		},
		{
			"missing system name",
			`{"components": []}`,
			false, "system_name",
		},
		{
			"missing components",
			`{"system_name": "S"}`,
			false, "components",
		},
		{
			"components not an array",
			`{"system_name": "S", "components": "none"}`,
			false, "expected an array",
		},
		{
			"component without name",
			`{"system_name": "S", "components": [{"type": "Gain"}]}`,
			false, "no name",
		},
		{
			"component without type",
			`{"system_name": "S", "components": [{"name": "A"}]}`,
			false, "no type",
		},
		{
			"connections not an array",
			`{"system_name": "S", "components": [], "connections": {}}`,
			false, "expected an array",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := Validate(mustParse(t, tt.json))
			if ok != tt.wantOK {
				t.Fatalf("Validate = %v (%q), want %v", ok, reason, tt.wantOK)
			}
			if !ok && !strings.Contains(reason, tt.reason) {
				t.Errorf("reason %q does not mention %q", reason, tt.reason)
			}
		})
	}
}

func TestValidateNonObject(t *testing.T) {
	for _, v := range []any{"text", []any{}, 42.0, nil} {
		if ok, _ := Validate(v); ok {
			t.Errorf("Validate(%v) accepted a non-object", v)
		}
	}
}

func TestDecodeFull(t *testing.T) {
	candidate := mustParse(t, `{
		"system_name": "Cruise",
		"components": [
			{"name": "SpeedIn", "type": "Inport", "position": [10, 20, 40, 50]},
			{"name": "Ctrl", "type": "Gain", "parameters": {"Gain": 2.5, "Enabled": true, "Mode": "fast", "Count": 3}}
		],
		"connections": [
			{"source": "SpeedIn/1", "destination": "Ctrl/1", "label": "speed"}
		]
	}`)

	g, diags := Decode(candidate)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if g.SystemName != "Cruise" {
		t.Errorf("system name = %q", g.SystemName)
	}
	if len(g.Components) != 2 || len(g.Connections) != 1 {
		t.Fatalf("got %d components, %d connections", len(g.Components), len(g.Connections))
	}

	if !g.Components[0].HasPosition() {
		t.Error("explicit position lost")
	}
	params := g.Components[1].Parameters
	if params["Gain"] != "2.5" || params["Enabled"] != "true" || params["Mode"] != "fast" || params["Count"] != "3" {
		t.Errorf("parameter stringification wrong: %v", params)
	}
	if g.Connections[0].Label != "speed" {
		t.Errorf("label = %q", g.Connections[0].Label)
	}
}

func TestDecodeSkipsMalformedElements(t *testing.T) {
	candidate := mustParse(t, `{
		"system_name": "S",
		"components": [
			{"name": "Good", "type": "Gain"},
			"not an object",
			{"name": "BadPos", "type": "Sum", "position": [1, 2]}
		],
		"connections": [
			{"source": "Good/1", "destination": "BadPos/1"},
			42,
			{"label": "orphan"}
		]
	}`)

	g, diags := Decode(candidate)
	if len(g.Components) != 2 {
		t.Errorf("expected 2 usable components, got %d", len(g.Components))
	}
	if g.Components[1].HasPosition() {
		t.Error("short position tuple should be dropped")
	}
	if len(g.Connections) != 1 {
		t.Errorf("expected 1 usable connection, got %d", len(g.Connections))
	}
	// One each for: non-object component, short position tuple, non-object
	// connection, connection with no endpoints.
	if len(diags) != 4 {
		t.Errorf("expected 4 diagnostics, got %d: %v", len(diags), diags)
	}
}

func TestEncodeLoadRoundTrip(t *testing.T) {
	g := &ArchitectureGraph{
		SystemName: "RoundTrip",
		Components: []Component{
			{Name: "In", Type: "Inport"},
			{Name: "K", Type: "Gain", Parameters: map[string]string{"Gain": "3"}, Position: []float64{1, 2, 3, 4}},
		},
		Connections: []Connection{
			{Source: "In/1", Destination: "K/1", Label: "u"},
		},
	}

	data, err := Encode(g)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	loaded, diags, err := Load(data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if loaded.SystemName != g.SystemName {
		t.Errorf("system name = %q", loaded.SystemName)
	}
	if len(loaded.Components) != 2 || len(loaded.Connections) != 1 {
		t.Fatalf("shape lost in round trip")
	}
	if !loaded.Components[1].HasPosition() {
		t.Error("position lost in round trip")
	}
	if loaded.Components[1].Parameters["Gain"] != "3" {
		t.Error("parameters lost in round trip")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	if _, _, err := Load([]byte("not json")); err == nil {
		t.Error("expected parse error")
	}
	if _, _, err := Load([]byte(`{"components": []}`)); err == nil {
		t.Error("expected validation error for missing system_name")
	}
}

func TestParseBlockType(t *testing.T) {
	tests := []struct {
		in   string
		want BlockType
	}{
		{"Gain", BlockGain},
		{"StateflowChart", BlockStateflowChart},
		{"Saturation", BlockSaturation},
		{"Relay", BlockOther},
		{"", BlockOther},
		{"gain", BlockOther}, // type matching is exact
	}
	for _, tt := range tests {
		if got := ParseBlockType(tt.in); got != tt.want {
			t.Errorf("ParseBlockType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsContainer(t *testing.T) {
	containers := map[BlockType]bool{
		BlockSubsystem:      true,
		BlockModelReference: true,
		BlockStateflowChart: true,
	}
	for _, bt := range KnownBlockTypes {
		if bt.IsContainer() != containers[bt] {
			t.Errorf("%v.IsContainer() = %v", bt, bt.IsContainer())
		}
	}
	if BlockOther.IsContainer() {
		t.Error("Other must not be a container")
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Stage: "decode", Element: "components[1]", Message: "skipped"}
	if d.String() != "[decode] components[1]: skipped" {
		t.Errorf("got %q", d.String())
	}
	d2 := Diagnostic{Stage: "diagram", Message: "nil graph"}
	if d2.String() != "[diagram] nil graph" {
		t.Errorf("got %q", d2.String())
	}
}
