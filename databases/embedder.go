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

// HTTPEmbedder calls an external embedding service shaped like Gemini's
// embedContent endpoint (spec §4.4): POST {content:{parts:[{text}]}}, read
// embedding.values back.
type HTTPEmbedder struct {
	baseURL string
	apiKey  string
	headers map[string]string
	client  *http.Client
}

func NewHTTPEmbedder(cfg *config.ProviderConfig) *HTTPEmbedder {
	e := &HTTPEmbedder{client: &http.Client{Timeout: 30 * time.Second}}
	if cfg != nil {
		e.baseURL = cfg.BaseURL
		e.apiKey = cfg.APIKey
		e.headers = cfg.Headers
	}
	return e
}

type embedContentRequest struct {
	Content embedContent `json:"content"`
}

type embedContent struct {
	Parts []embedPart `json:"parts"`
}

type embedPart struct {
	Text string `json:"text"`
}

type embedContentResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(embedContentRequest{Content: embedContent{Parts: []embedPart{{Text: text}}}})
	if err != nil {
		return nil, fmt.Errorf("embedder: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedder: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("x-goog-api-key", e.apiKey)
	}
	for k, v := range e.headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedder: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedder: unexpected status %d", resp.StatusCode)
	}

	var parsed embedContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("embedder: decoding response: %w", err)
	}
	if len(parsed.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embedder: response contained no embedding values")
	}

	return parsed.Embedding.Values, nil
}
