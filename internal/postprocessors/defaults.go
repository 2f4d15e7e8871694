package postprocessors

import (
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
	"github.com/glossa-labs/glossa-cli/internal/postprocessors/cleanup"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
// Processors needing live collaborators (the LLM repair step) are built
// by the composition root instead.
func RegisterDefaults(r *Registry) {
	r.Register("cleanup", buildCleanup)
}

// buildCleanup creates the whitespace cleanup processor from generic
// config. Supported config keys:
//   - max_blank_lines (int): Consecutive blank lines to keep (default: 1)
func buildCleanup(cfg map[string]any) (driven.PageProcessor, error) {
	var opts []cleanup.Option

	if cfg != nil {
		if _, ok := cfg["max_blank_lines"]; ok {
			opts = append(opts, cleanup.WithMaxBlankLines(getIntFromConfig(cfg, "max_blank_lines")))
		}
	}

	return cleanup.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
