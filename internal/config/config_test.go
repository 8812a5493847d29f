package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mailsift/internal/config"
)

func TestLoadDefaultConfigUsesEnvAPIKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("MAILSIFT_LLM_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "mailsift", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7519" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.LLM.APIKey != "test-key" {
		t.Fatalf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Workflow.OverfetchMultiplier != 3 || cfg.Workflow.OverfetchCap != 100 {
		t.Fatalf("unexpected overfetch defaults: %d / %d", cfg.Workflow.OverfetchMultiplier, cfg.Workflow.OverfetchCap)
	}
	if cfg.Workflow.RetentionHours != 24 {
		t.Fatalf("unexpected retention: %d", cfg.Workflow.RetentionHours)
	}
	if cfg.Journal.Enabled {
		t.Fatal("journal should be disabled by default")
	}
}

func TestLoadAppliesFileOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `
[paths]
api_bind = "0.0.0.0:9100"

[llm]
api_key = "sk-test"
model = "openai/gpt-4o"

[structurer]
model = "llama-3.1-8b-instant"

[workflow]
overfetch_cap = 40

[[senders]]
id = "haro"
name = "HARO"
email = "haro@helpareporter.com"
prompt_key = "haro_opportunities"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Paths.APIBind != "0.0.0.0:9100" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Workflow.OverfetchCap != 40 {
		t.Fatalf("unexpected overfetch cap: %d", cfg.Workflow.OverfetchCap)
	}
	if cfg.Workflow.OverfetchMultiplier != 3 {
		t.Fatalf("multiplier default lost: %d", cfg.Workflow.OverfetchMultiplier)
	}

	sender, ok := cfg.SenderByID("haro")
	if !ok {
		t.Fatal("sender haro not found")
	}
	if sender.Email != "haro@helpareporter.com" {
		t.Fatalf("unexpected sender email: %q", sender.Email)
	}

	structurer := cfg.StructurerLLM()
	if structurer.APIKey != "sk-test" {
		t.Fatalf("structurer should inherit llm api key, got %q", structurer.APIKey)
	}
	if structurer.Model != "llama-3.1-8b-instant" {
		t.Fatalf("unexpected structurer model: %q", structurer.Model)
	}
}

func TestValidateRejectsBadSenders(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = "k"
	cfg.Senders = []config.Sender{
		{ID: "a", Email: "a@example.com", PromptKey: "p"},
		{ID: "a", Email: "b@example.com", PromptKey: "p"},
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate sender id") {
		t.Fatalf("expected duplicate sender error, got %v", err)
	}
}

func TestValidateRejectsMissingAPIKey(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing llm api key")
	}
}

func TestSampleConfigParses(t *testing.T) {
	if !strings.Contains(config.SampleConfig(), "[workflow]") {
		t.Fatal("sample config missing workflow section")
	}
}
