package databases

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/agentrelay/agentrelay/config"
)

// PgvectorProvider is the SQL-extension backend (spec §4.4 Backend C). The
// sidecar HTTP path is primary: when Connection.BaseURL is a sidecar URL,
// every query is a single POST. When it is instead a postgres DSN, queries
// run directly against the pgvector extension over database/sql. Neither
// configured means retrieval degrades to an empty result with a warning,
// matching the spec's "log a warning and return empty" behavior.
type PgvectorProvider struct {
	table      string
	sidecarURL string
	headers    map[string]string
	httpClient *http.Client

	db *sql.DB
}

func NewPgvectorProvider(cfg config.RetrievalConfig) (*PgvectorProvider, error) {
	p := &PgvectorProvider{table: cfg.Index, httpClient: &http.Client{Timeout: 30 * time.Second}}

	if cfg.Connection == nil || cfg.Connection.BaseURL == "" {
		return p, nil
	}

	conn := cfg.Connection.BaseURL
	if strings.HasPrefix(conn, "postgres://") || strings.HasPrefix(conn, "postgresql://") {
		db, err := sql.Open("postgres", conn)
		if err != nil {
			return nil, fmt.Errorf("pgvector: opening connection: %w", err)
		}
		p.db = db
		return p, nil
	}

	p.sidecarURL = conn
	p.headers = cfg.Connection.Headers
	return p, nil
}

type pgvectorSidecarRequest struct {
	Table    string    `json:"table"`
	Embedding []float64 `json:"embedding"`
	TopK     int       `json:"topK"`
	MinScore float64   `json:"minScore"`
}

func (p *PgvectorProvider) Query(ctx context.Context, embedding []float64, topK int, minScore float64) ([]SearchResult, error) {
	switch {
	case p.sidecarURL != "":
		return p.querySidecar(ctx, embedding, topK, minScore)
	case p.db != nil:
		return p.queryDirect(ctx, embedding, topK, minScore)
	default:
		slog.Warn("pgvector: no connection configured, returning empty results", "table", p.table)
		return nil, nil
	}
}

func (p *PgvectorProvider) querySidecar(ctx context.Context, embedding []float64, topK int, minScore float64) ([]SearchResult, error) {
	body, err := json.Marshal(pgvectorSidecarRequest{Table: p.table, Embedding: embedding, TopK: topK, MinScore: minScore})
	if err != nil {
		return nil, fmt.Errorf("pgvector: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.sidecarURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("pgvector: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pgvector: sidecar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pgvector: sidecar returned status %d", resp.StatusCode)
	}

	var results []SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("pgvector: decoding sidecar response: %w", err)
	}
	return results, nil
}

func (p *PgvectorProvider) queryDirect(ctx context.Context, embedding []float64, topK int, minScore float64) ([]SearchResult, error) {
	vectorLiteral := vectorToLiteral(embedding)

	query := fmt.Sprintf(
		`SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
		 FROM %s
		 WHERE 1 - (embedding <=> $1) >= $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		p.table,
	)

	rows, err := p.db.QueryContext(ctx, query, vectorLiteral, minScore, topK)
	if err != nil {
		return nil, fmt.Errorf("pgvector: querying %q: %w", p.table, err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			id, content string
			metadataRaw []byte
			score       float64
		)
		if err := rows.Scan(&id, &content, &metadataRaw, &score); err != nil {
			return nil, fmt.Errorf("pgvector: scanning row: %w", err)
		}

		var metadata map[string]interface{}
		if len(metadataRaw) > 0 {
			_ = json.Unmarshal(metadataRaw, &metadata)
		}

		results = append(results, SearchResult{ID: id, Content: content, Score: score, Metadata: metadata})
	}

	return results, rows.Err()
}

func vectorToLiteral(embedding []float64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%g", v)
	}
	b.WriteByte(']')
	return b.String()
}

func (p *PgvectorProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}
