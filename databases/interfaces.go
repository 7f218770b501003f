// Package databases adapts the three vector-store backend families named in
// spec §4.4 behind one DatabaseProvider interface, so the retrieval client in
// package context can query any of them without knowing which is configured.
package databases

import "context"

// SearchResult is one retrieved document (spec §4.4).
type SearchResult struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]interface{}
}

// DatabaseProvider queries a vector store for documents relevant to an
// already-embedded query.
type DatabaseProvider interface {
	// Query returns up to topK results with Score >= minScore, ordered by
	// descending score.
	Query(ctx context.Context, embedding []float64, topK int, minScore float64) ([]SearchResult, error)
	Close() error
}

// Embedder turns a query string into a vector via an external embedding
// service (spec §4.4).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}
