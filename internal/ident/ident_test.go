package ident

import (
	"strings"
	"testing"
)

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Controller", "mbd_Controller"},
		{"spaces stripped", "PID Controller", "mbd_PIDController"},
		{"punctuation stripped", "Sensor-Input (raw)", "mbd_SensorInputraw"},
		{"underscore kept", "speed_in", "mbd_speed_in"},
		{"leading digit guarded", "3PhaseInverter", "mbd_n3PhaseInverter"},
		{"reserved keyword marked", "end", "mbd_kw_end"},
		{"reserved keyword case-insensitive", "Graph", "mbd_kw_Graph"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeID(tt.in); got != tt.want {
				t.Errorf("SanitizeID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeIDDegenerate(t *testing.T) {
	a := SanitizeID("!!!")
	b := SanitizeID("???")

	if !strings.HasPrefix(a, Namespace+"h") {
		t.Errorf("expected hash fallback with namespace, got %q", a)
	}
	if a == b {
		t.Errorf("distinct degenerate inputs collided: %q", a)
	}
	// Same input, same hash.
	if a != SanitizeID("!!!") {
		t.Error("hash fallback is not deterministic")
	}
}

func TestSanitizeIDNeverEmpty(t *testing.T) {
	for _, in := range []string{"", " ", "---", "日本語"} {
		got := SanitizeID(in)
		if got == Namespace || got == "" {
			t.Errorf("SanitizeID(%q) produced empty identifier", in)
		}
	}
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"quotes become apostrophes", `say "hi"`, "say 'hi'"},
		{"backticks become apostrophes", "a `b` c", "a 'b' c"},
		{"newlines flattened", "line1\nline2", "line1 line2"},
		{"crlf flattened", "line1\r\nline2", "line1 line2"},
		{"short untouched", "Motor", "Motor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeLabel(tt.in); got != tt.want {
				t.Errorf("SanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeLabelTruncation(t *testing.T) {
	long := strings.Repeat("x", 80)
	got := SanitizeLabel(long)
	if got != strings.Repeat("x", 50)+"..." {
		t.Errorf("expected 50 chars plus ellipsis, got %q (len %d)", got, len(got))
	}

	exact := strings.Repeat("y", 50)
	if SanitizeLabel(exact) != exact {
		t.Error("label at the limit should not be truncated")
	}
}
