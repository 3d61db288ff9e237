package vector

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/llm"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/schema"
)

// Indexer embeds accepted graphs into the repository and retrieves similar
// ones as prompt examples.
type Indexer struct {
	provider llm.Provider
	repo     Repository
}

// NewIndexer creates an Indexer.
func NewIndexer(provider llm.Provider, repo Repository) *Indexer {
	return &Indexer{provider: provider, repo: repo}
}

// IndexGraph embeds a summary of an accepted graph and stores it.
func (ix *Indexer) IndexGraph(ctx context.Context, runID string, g *schema.ArchitectureGraph) error {
	text := Summarize(g)
	vectors, err := ix.provider.Embed(ctx, []string{text})
	if err != nil {
		return fmt.Errorf("embedding graph summary: %w", err)
	}
	if len(vectors) != 1 {
		return fmt.Errorf("embedding count mismatch: got %d, want 1", len(vectors))
	}
	return ix.repo.Upsert(ctx, Document{
		ID:         uuid.NewString(),
		RunID:      runID,
		SystemName: g.SystemName,
		Text:       text,
	}, vectors[0])
}

// SearchSimilar embeds the input text and returns summaries of the most
// similar stored graphs, for inclusion in the oracle prompt.
func (ix *Indexer) SearchSimilar(ctx context.Context, input string, limit int) ([]string, error) {
	vectors, err := ix.provider.Embed(ctx, []string{input})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want 1", len(vectors))
	}
	results, err := ix.repo.Search(ctx, vectors[0], limit)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Document.Text
	}
	return texts, nil
}

// Summarize produces the compact text form of a graph that gets embedded:
// system name, then one line per component and connection.
func Summarize(g *schema.ArchitectureGraph) string {
	var b strings.Builder
	b.WriteString("System: ")
	b.WriteString(g.SystemName)
	b.WriteByte('\n')
	for _, comp := range g.Components {
		fmt.Fprintf(&b, "Component: %s (%s)\n", comp.Name, comp.Type)
	}
	for _, conn := range g.Connections {
		fmt.Fprintf(&b, "Connection: %s -> %s", conn.Source, conn.Destination)
		if conn.Label != "" {
			fmt.Fprintf(&b, " [%s]", conn.Label)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
