package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// LoadDirectory reads every *.json file directly inside dir, parses it as
// one AgentConfig, applies defaults and validates it. A missing directory is
// not an error — it yields an empty slice, since a deployment may run with
// zero configured agents. Files fail loudly and name themselves so a typo in
// one agent's config doesn't silently drop it. A duplicate path across two
// files is fatal, since the registry keys agents by path (spec §4.1).
func LoadDirectory(dir string) ([]AgentConfig, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading directory %q: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	configs := make([]AgentConfig, 0, len(names))
	seenPaths := make(map[string]string, len(names))

	for _, name := range names {
		full := filepath.Join(dir, name)
		raw, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", full, err)
		}

		expanded, err := ExpandEnvVarsInJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("config: expanding env vars in %s: %w", full, err)
		}

		var cfg AgentConfig
		if err := json.Unmarshal(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", full, err)
		}
		cfg.SourceFile = full
		cfg.SetDefaults()

		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config: invalid agent config in %s: %w", full, err)
		}

		if prior, exists := seenPaths[cfg.Path]; exists {
			return nil, fmt.Errorf("config: duplicate agent path %q in %s (already declared in %s)", cfg.Path, full, prior)
		}
		seenPaths[cfg.Path] = full

		configs = append(configs, cfg)
	}

	return configs, nil
}
