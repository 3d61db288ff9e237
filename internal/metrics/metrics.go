// Package metrics accumulates per-run pipeline measurements.
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// RunMetrics collects counters and timings for one conversion run. Safe for
// concurrent use.
type RunMetrics struct {
	mu sync.Mutex

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     string    `json:"status"`
	Attempts   int       `json:"attempts"`

	Components  int `json:"components"`
	Connections int `json:"connections"`
	Diagnostics int `json:"diagnostics"`

	OracleInputTokens  int `json:"oracle_input_tokens"`
	OracleOutputTokens int `json:"oracle_output_tokens"`

	StageDurations map[string]time.Duration `json:"stage_durations"`
}

// NewRun starts a metrics record stamped with the current time.
func NewRun() *RunMetrics {
	return &RunMetrics{
		StartedAt:      time.Now().UTC(),
		StageDurations: make(map[string]time.Duration),
	}
}

// ObserveStage records the elapsed time of one stage, accumulating across
// attempts.
func (m *RunMetrics) ObserveStage(stage string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StageDurations[stage] += d
}

// AddTokens accumulates oracle token usage.
func (m *RunMetrics) AddTokens(input, output int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OracleInputTokens += input
	m.OracleOutputTokens += output
}

// Finish stamps the record with final status and graph shape.
func (m *RunMetrics) Finish(status string, attempts, components, connections, diagnostics int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FinishedAt = time.Now().UTC()
	m.Status = status
	m.Attempts = attempts
	m.Components = components
	m.Connections = connections
	m.Diagnostics = diagnostics
}

// JSON renders the record as indented JSON.
func (m *RunMetrics) JSON() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return json.MarshalIndent(m, "", "  ")
}

// PrintSummary writes a human-readable report.
func (m *RunMetrics) PrintSummary(w io.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fmt.Fprintf(w, "Run: %s (%d attempt(s), %s)\n", m.Status, m.Attempts, m.FinishedAt.Sub(m.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(w, "  graph: %d components, %d connections, %d diagnostics\n", m.Components, m.Connections, m.Diagnostics)
	if m.OracleInputTokens > 0 || m.OracleOutputTokens > 0 {
		fmt.Fprintf(w, "  tokens: %d in / %d out\n", m.OracleInputTokens, m.OracleOutputTokens)
	}
	for stage, d := range m.StageDurations {
		fmt.Fprintf(w, "  %s: %s\n", stage, d.Round(time.Millisecond))
	}
}
