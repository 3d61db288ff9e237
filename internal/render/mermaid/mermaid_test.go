package mermaid

import (
	"strings"
	"testing"

	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/schema"
)

func cruiseGraph() *schema.ArchitectureGraph {
	return &schema.ArchitectureGraph{
		SystemName: "Cruise_Control",
		Components: []schema.Component{
			{Name: "SpeedIn", Type: "Inport"},
			{Name: "Controller", Type: "Subsystem"},
			{Name: "ThrottleOut", Type: "Outport"},
		},
		Connections: []schema.Connection{
			{Source: "SpeedIn/1", Destination: "Controller/1", Label: "speed"},
			{Source: "Controller/1", Destination: "ThrottleOut/1"},
		},
	}
}

func TestRenderScenario(t *testing.T) {
	doc, diags := Render(cruiseGraph())
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if !strings.HasPrefix(doc, Header+"\n") {
		t.Errorf("document must start with %q", Header)
	}
	for _, want := range []string{
		`mbd_SpeedIn(["SpeedIn"])`,
		`mbd_Controller[["Controller<br/>Subsystem"]]`,
		`mbd_ThrottleOut(("ThrottleOut"))`,
		"mbd_SpeedIn -->|speed| mbd_Controller",
		"mbd_Controller --> mbd_ThrottleOut",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}
}

func TestRenderNilGraph(t *testing.T) {
	doc, diags := Render(nil)
	if !strings.HasPrefix(doc, Header) {
		t.Error("even the nil-graph document carries the header")
	}
	if !strings.Contains(doc, "no architecture") {
		t.Errorf("expected placeholder node, got:\n%s", doc)
	}
	if len(diags) != 1 {
		t.Errorf("expected one diagnostic, got %v", diags)
	}
}

func TestRenderEmptyGraph(t *testing.T) {
	doc, _ := Render(&schema.ArchitectureGraph{SystemName: "Empty"})
	if !strings.Contains(doc, "no components") {
		t.Errorf("expected placeholder node for zero components:\n%s", doc)
	}
}

func TestRenderDuplicateNames(t *testing.T) {
	g := &schema.ArchitectureGraph{
		SystemName: "Dup",
		Components: []schema.Component{
			{Name: "Pump", Type: "Gain"},
			{Name: "Pump", Type: "Gain"},
		},
	}
	doc, _ := Render(g)
	if !strings.Contains(doc, "mbd_Pump[") {
		t.Error("first Pump should keep the plain identifier")
	}
	if !strings.Contains(doc, "mbd_Pump_1[") {
		t.Errorf("second Pump should be index-suffixed:\n%s", doc)
	}
}

func TestRenderDanglingEdge(t *testing.T) {
	g := cruiseGraph()
	g.Connections = append(g.Connections, schema.Connection{Source: "Ghost/1", Destination: "SpeedIn/1"})

	doc, diags := Render(g)
	if strings.Contains(doc, "Ghost") {
		t.Error("dangling edge must be omitted from the document")
	}
	found := false
	for _, d := range diags {
		if strings.Contains(d.Message, "Ghost") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a diagnostic naming the unknown endpoint, got %v", diags)
	}
	// The valid edges survive.
	if !strings.Contains(doc, "mbd_SpeedIn -->|speed| mbd_Controller") {
		t.Error("valid edges must survive a dangling one")
	}
}

func TestRenderLabelQuoting(t *testing.T) {
	g := &schema.ArchitectureGraph{
		SystemName: "Q",
		Components: []schema.Component{
			{Name: `Say "Hello"`, Type: "Constant"},
		},
	}
	doc, _ := Render(g)
	if strings.Contains(doc, `"Say "Hello""`) {
		t.Error("double quotes must not survive inside a quoted label")
	}
	if !strings.Contains(doc, "Say 'Hello'") {
		t.Errorf("expected apostrophe-neutralized label:\n%s", doc)
	}
}

func TestRenderReservedName(t *testing.T) {
	g := &schema.ArchitectureGraph{
		SystemName: "R",
		Components: []schema.Component{{Name: "end", Type: "Gain"}},
	}
	doc, _ := Render(g)
	if !strings.Contains(doc, "mbd_kw_end") {
		t.Errorf("reserved word must be marked:\n%s", doc)
	}
}

func TestRenderDeterministic(t *testing.T) {
	a, _ := Render(cruiseGraph())
	b, _ := Render(cruiseGraph())
	if a != b {
		t.Error("same graph must render to identical documents")
	}
}

func TestLiveURL(t *testing.T) {
	doc, _ := Render(cruiseGraph())
	url, err := LiveURL(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(url, "https://mermaid.ink/img/") {
		t.Errorf("unexpected URL: %s", url)
	}
}

func TestLiveURLTooLarge(t *testing.T) {
	if _, err := LiveURL(strings.Repeat("x", maxEncodedURL)); err == nil {
		t.Error("expected error for oversized document")
	}
}
