// Package docs loads input files for conversion: source code and requirement
// documents, normalized to plain UTF-8 text.
package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExtractionError reports a file whose content could not be used.
type ExtractionError struct {
	Path   string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %s", e.Path, e.Reason)
}

// Extractor turns one file's raw bytes into text.
type Extractor interface {
	// Extensions lists the lowercase file extensions this extractor handles,
	// dot included.
	Extensions() []string

	// Extract converts raw content to text.
	Extract(path string, data []byte) (string, error)
}

var registry = map[string]Extractor{}

// Register installs an extractor for its extensions, replacing any previous
// handler.
func Register(e Extractor) {
	for _, ext := range e.Extensions() {
		registry[strings.ToLower(ext)] = e
	}
}

func init() {
	Register(plainText{})
}

// plainText handles source code and text-like documents. Invalid UTF-8
// sequences are dropped rather than failing the file.
type plainText struct{}

func (plainText) Extensions() []string {
	return []string{
		".c", ".cc", ".cpp", ".cxx", ".h", ".hh", ".hpp",
		".txt", ".md", ".rtf",
	}
}

func (plainText) Extract(path string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &ExtractionError{Path: path, Reason: "empty file"}
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// Load reads and extracts one file.
func Load(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	extractor, ok := registry[ext]
	if !ok {
		return "", &ExtractionError{Path: path, Reason: fmt.Sprintf("unsupported file type %q", ext)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return extractor.Extract(path, data)
}

// LoadInputs extracts every file and concatenates the results, each preceded
// by a header naming its source file. Files that fail extraction are skipped
// and reported; at least one file must succeed.
func LoadInputs(paths []string) (string, []error) {
	var b strings.Builder
	var errs []error
	loaded := 0
	for _, path := range paths {
		text, err := Load(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if loaded > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "// FILE: %s\n", filepath.Base(path))
		b.WriteString(text)
		loaded++
	}
	if loaded == 0 {
		errs = append(errs, fmt.Errorf("no usable input files among %d given", len(paths)))
		return "", errs
	}
	return b.String(), errs
}
