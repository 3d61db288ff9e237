// Package vector provides similarity search over previously accepted
// architecture graphs, used to enrich oracle prompts with worked examples.
package vector

import "context"

// Document is one indexable graph summary.
type Document struct {
	ID         string
	RunID      string
	SystemName string
	// Text is the embedded content: a compact description of the graph.
	Text string
}

// SearchResult is a scored match from similarity search.
type SearchResult struct {
	Document Document
	Score    float32
}

// Repository stores embeddings and answers nearest-neighbor queries.
type Repository interface {
	// Upsert inserts or replaces a document with its embedding.
	Upsert(ctx context.Context, doc Document, embedding []float32) error

	// Search returns up to limit documents nearest to the query embedding.
	Search(ctx context.Context, embedding []float32, limit int) ([]SearchResult, error)

	// Close releases the underlying connection.
	Close() error
}
