package temporal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/docs"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/pipeline"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/prompt"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/render/matlab"
)

// ConversionInput is one file to convert.
type ConversionInput struct {
	InputPath string
	OutputDir string
}

// ConversionResult is the serializable outcome of one conversion.
type ConversionResult struct {
	InputPath   string
	RunID       string
	SystemName  string
	Attempts    int
	Diagnostics int
	Artifacts   []string
	Error       string
}

// Dependencies holds shared resources injected into activities.
type Dependencies struct {
	Session *pipeline.Session
}

var deps *Dependencies

// SetDependencies injects shared resources (called during worker setup).
func SetDependencies(d *Dependencies) {
	deps = d
}

// ConvertActivity runs the full conversion for one file and writes the three
// artifacts (graph JSON, Mermaid diagram, MATLAB script) to the output dir.
func ConvertActivity(ctx context.Context, input ConversionInput) (ConversionResult, error) {
	result := ConversionResult{InputPath: input.InputPath}

	text, errs := docs.LoadInputs([]string{input.InputPath})
	if text == "" {
		return result, fmt.Errorf("loading %s: %v", input.InputPath, errs)
	}

	kind := prompt.DetectKind([]string{input.InputPath})
	run, err := deps.Session.Run(ctx, pipeline.Input{Kind: kind, Text: text})
	if run != nil {
		result.RunID = run.RunID
		result.Attempts = run.Attempts
		result.Diagnostics = len(run.Diagnostics)
	}
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}
	result.SystemName = run.Graph.SystemName

	base := matlab.SanitizeModelName(run.Graph.SystemName)
	if input.OutputDir != "" {
		if err := os.MkdirAll(input.OutputDir, 0o755); err != nil {
			return result, fmt.Errorf("creating output dir: %w", err)
		}
		artifacts := map[string][]byte{
			base + ".json": run.GraphJSON,
			base + ".mmd":  []byte(run.Diagram),
			base + ".m":    []byte(run.Script),
		}
		for name, data := range artifacts {
			path := filepath.Join(input.OutputDir, uniqueName(input.OutputDir, name))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return result, fmt.Errorf("writing %s: %w", path, err)
			}
			result.Artifacts = append(result.Artifacts, path)
		}
	}
	return result, nil
}

// uniqueName avoids clobbering artifacts when two inputs sanitize to the same
// model name.
func uniqueName(dir, name string) string {
	if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
	}
}
