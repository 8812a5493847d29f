package preflight

import (
	"context"

	"mailsift/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckGmailCredentials(cfg.Gmail))
	results = append(results, CheckPrompts(cfg))
	results = append(results, CheckLLM(ctx, "Analysis LLM", cfg.LLM))

	if structurerUsesDistinctLLM(cfg) {
		results = append(results, CheckLLM(ctx, "Structurer LLM", cfg.StructurerLLM()))
	}

	return results
}

// structurerUsesDistinctLLM returns true when the structurer config resolves
// to a different API key or base URL than the analysis model. When they're
// identical, the analysis check already covers it.
func structurerUsesDistinctLLM(cfg *config.Config) bool {
	resolved := cfg.StructurerLLM()
	return resolved.APIKey != cfg.LLM.APIKey || resolved.BaseURL != cfg.LLM.BaseURL
}
