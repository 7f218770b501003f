package databases

import (
	"fmt"

	"github.com/agentrelay/agentrelay/config"
)

// NewProvider builds the vector-store backend named by cfg.Provider (spec §4.4).
func NewProvider(cfg config.RetrievalConfig) (DatabaseProvider, error) {
	switch cfg.Provider {
	case config.RetrievalPineconeish:
		return NewPineconeProvider(cfg)
	case config.RetrievalChromaish:
		return NewChromaProvider(cfg)
	case config.RetrievalPgvectorish:
		return NewPgvectorProvider(cfg)
	default:
		return nil, fmt.Errorf("databases: unknown retrieval provider %q", cfg.Provider)
	}
}
