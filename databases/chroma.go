package databases

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/agentrelay/agentrelay/config"
)

// ChromaProvider is the HTTP collection backend (spec §4.4 Backend B): a
// single POST per query, with results returned as parallel arrays rather
// than a list of records.
type ChromaProvider struct {
	baseURL    string
	collection string
	headers    map[string]string
	client     *http.Client
}

func NewChromaProvider(cfg config.RetrievalConfig) (*ChromaProvider, error) {
	if cfg.Connection == nil || cfg.Connection.BaseURL == "" {
		return nil, fmt.Errorf("chroma: connection.baseUrl is required")
	}
	return &ChromaProvider{
		baseURL:    cfg.Connection.BaseURL,
		collection: cfg.Index,
		headers:    cfg.Connection.Headers,
		client:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type chromaQueryRequest struct {
	QueryEmbeddings [][]float64 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
}

type chromaQueryResponse struct {
	IDs       [][]string                 `json:"ids"`
	Documents [][]string                 `json:"documents"`
	Distances [][]float64                `json:"distances"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
}

func (c *ChromaProvider) Query(ctx context.Context, embedding []float64, topK int, minScore float64) ([]SearchResult, error) {
	body, err := json.Marshal(chromaQueryRequest{QueryEmbeddings: [][]float64{embedding}, NResults: topK})
	if err != nil {
		return nil, fmt.Errorf("chroma: encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/query", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("chroma: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chroma: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chroma: unexpected status %d", resp.StatusCode)
	}

	var parsed chromaQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("chroma: decoding response: %w", err)
	}
	if len(parsed.IDs) == 0 {
		return nil, nil
	}

	ids, docs, distances := parsed.IDs[0], parsed.Documents[0], parsed.Distances[0]
	var metadatas []map[string]interface{}
	if len(parsed.Metadatas) > 0 {
		metadatas = parsed.Metadatas[0]
	}

	results := make([]SearchResult, 0, len(ids))
	for i := range ids {
		score := 1 / (1 + distances[i])
		if score < minScore {
			continue
		}
		var metadata map[string]interface{}
		if i < len(metadatas) {
			metadata = metadatas[i]
		}
		content := ""
		if i < len(docs) {
			content = docs[i]
		}
		results = append(results, SearchResult{ID: ids[i], Content: content, Score: score, Metadata: metadata})
	}

	return results, nil
}

func (c *ChromaProvider) Close() error { return nil }
