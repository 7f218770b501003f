package databases

import (
	"context"
	"fmt"
	"sync"

	"github.com/pinecone-io/go-pinecone/pinecone"

	"github.com/agentrelay/agentrelay/config"
)

// PineconeProvider is the cloud, namespace-aware backend (spec §4.4 Backend A).
// It resolves the index's host lazily on first query and caches the
// connection, since DescribeIndex is a control-plane call we don't want to
// repeat on every retrieval.
type PineconeProvider struct {
	client    *pinecone.Client
	indexName string
	namespace string

	mu   sync.Mutex
	conn *pinecone.IndexConnection
}

func NewPineconeProvider(cfg config.RetrievalConfig) (*PineconeProvider, error) {
	if cfg.Connection == nil || cfg.Connection.APIKey == "" {
		return nil, fmt.Errorf("pinecone: connection.apiKey is required")
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: cfg.Connection.APIKey})
	if err != nil {
		return nil, fmt.Errorf("pinecone: creating client: %w", err)
	}

	return &PineconeProvider{client: client, indexName: cfg.Index, namespace: cfg.Namespace}, nil
}

func (p *PineconeProvider) connection(ctx context.Context) (*pinecone.IndexConnection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		return p.conn, nil
	}

	idx, err := p.client.DescribeIndex(ctx, p.indexName)
	if err != nil {
		return nil, fmt.Errorf("pinecone: describing index %q: %w", p.indexName, err)
	}

	conn, err := p.client.Index(pinecone.NewIndexConnParams{Host: idx.Host, Namespace: p.namespace})
	if err != nil {
		return nil, fmt.Errorf("pinecone: opening connection to %q: %w", p.indexName, err)
	}

	p.conn = conn
	return conn, nil
}

func (p *PineconeProvider) Query(ctx context.Context, embedding []float64, topK int, minScore float64) ([]SearchResult, error) {
	conn, err := p.connection(ctx)
	if err != nil {
		return nil, err
	}

	vector := make([]float32, len(embedding))
	for i, v := range embedding {
		vector[i] = float32(v)
	}

	resp, err := conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone: querying index %q: %w", p.indexName, err)
	}

	results := make([]SearchResult, 0, len(resp.Matches))
	for _, match := range resp.Matches {
		score := float64(match.Score)
		if score < minScore {
			continue
		}

		metadata := map[string]interface{}{}
		content := ""
		if match.Vector != nil && match.Vector.Metadata != nil {
			metadata = match.Vector.Metadata.AsMap()
			if text, ok := metadata["content"].(string); ok && text != "" {
				content = text
			} else if text, ok := metadata["text"].(string); ok {
				content = text
			}
		}

		id := ""
		if match.Vector != nil {
			id = match.Vector.Id
		}

		results = append(results, SearchResult{ID: id, Content: content, Score: score, Metadata: metadata})
	}

	return results, nil
}

func (p *PineconeProvider) Close() error { return nil }
