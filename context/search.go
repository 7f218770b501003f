package context

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentrelay/agentrelay/config"
	"github.com/agentrelay/agentrelay/databases"
)

const defaultContextHeader = "Relevant context:\n\n"

// SearchEngine is the retrieval client (spec §4.4): embed the query, ask the
// configured vector-store backend for matches, and format the survivors into
// a single context string ready to splice into a system prompt.
type SearchEngine struct {
	db       databases.DatabaseProvider
	embedder databases.Embedder
	cfg      config.RetrievalConfig
}

func NewSearchEngine(db databases.DatabaseProvider, embedder databases.Embedder, cfg config.RetrievalConfig) *SearchEngine {
	return &SearchEngine{db: db, embedder: embedder, cfg: cfg}
}

// NewSearchEngineFromConfig builds the backend and embedder named in cfg and
// wires them into a SearchEngine.
func NewSearchEngineFromConfig(cfg config.RetrievalConfig) (*SearchEngine, error) {
	db, err := databases.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("search engine: %w", err)
	}
	embedder := databases.NewHTTPEmbedder(cfg.Embedder)
	return NewSearchEngine(db, embedder, cfg), nil
}

// Search embeds query, retrieves up to topK documents scoring at least
// minScore, and returns them ordered by descending score. A failure to embed
// is returned as an error so the caller (the agent loop) can fall back to
// its base system prompt rather than fail the turn (spec §4.4, §7).
func (s *SearchEngine) Search(ctx context.Context, query string, topK int) ([]databases.SearchResult, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: embedding query: %w", err)
	}

	results, err := s.db.Query(ctx, embedding, topK, s.cfg.MinScore)
	if err != nil {
		return nil, fmt.Errorf("search: querying backend: %w", err)
	}

	return results, nil
}

// Close releases the underlying vector-store connection.
func (s *SearchEngine) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// FormatContext joins the selected documents' content and applies the
// configured template, or the default header when none is set (spec §4.4).
func FormatContext(results []databases.SearchResult, template string) string {
	if len(results) == 0 {
		return ""
	}

	contents := make([]string, 0, len(results))
	for _, r := range results {
		contents = append(contents, r.Content)
	}
	joined := strings.Join(contents, "\n\n---\n\n")

	if template == "" {
		return defaultContextHeader + joined
	}
	return strings.ReplaceAll(template, "{{context}}", joined)
}
