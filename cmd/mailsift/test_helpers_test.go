package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mailsift/internal/config"
	"mailsift/internal/daemon"
	"mailsift/internal/llm"
	"mailsift/internal/logging"
	"mailsift/internal/mail"
	"mailsift/internal/prompts"
	"mailsift/internal/tasks"
	"mailsift/internal/workflow"
)

type stubSource struct {
	messages []mail.Message
}

func (s *stubSource) Fetch(context.Context, string, int) ([]mail.Message, error) {
	return s.messages, nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) Complete(_ context.Context, _, userPrompt string) (string, error) {
	return "analysis of: " + userPrompt, nil
}

type stubStructurer struct{}

func (stubStructurer) Structure(_ context.Context, markdown string) llm.Structured {
	return llm.Structured{Text: `{"done":true}`}
}

type cliTestEnv struct {
	cfg        *config.Config
	store      *tasks.Store
	daemon     *daemon.Daemon
	apiAddr    string
	configPath string
}

func setupCLITestEnv(t *testing.T, messages []mail.Message) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))

	cfg := config.Default()
	cfg.LLM.APIKey = "test-key"
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Senders = []config.Sender{{
		ID:        "f5bot",
		Name:      "F5Bot",
		Email:     "admin@f5bot.com",
		PromptKey: "f5bot_reddit",
	}}

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, &cfg)

	store := tasks.NewStore()
	catalog, err := prompts.Load("")
	if err != nil {
		t.Fatalf("load prompts: %v", err)
	}
	logger := logging.NewNop()
	runner := workflow.NewRunner(&cfg, store, &stubSource{messages: messages}, stubAnalyzer{}, stubStructurer{}, catalog, nil, logger)
	d, err := daemon.New(&cfg, store, runner, nil, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		cancel()
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		d.Stop()
		d.Close()
	})

	return &cliTestEnv{
		cfg:        &cfg,
		store:      store,
		daemon:     d,
		apiAddr:    d.APIAddr(),
		configPath: configPath,
	}
}

func runCLI(t *testing.T, args []string, addr, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if addr != "" {
		flags = append(flags, "--addr", addr)
	}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nlog_dir = %q\napi_bind = %q\n\n[llm]\napi_key = %q\n\n[[senders]]\nid = %q\nname = %q\nemail = %q\nprompt_key = %q\n",
		cfg.Paths.LogDir,
		cfg.Paths.APIBind,
		cfg.LLM.APIKey,
		cfg.Senders[0].ID,
		cfg.Senders[0].Name,
		cfg.Senders[0].Email,
		cfg.Senders[0].PromptKey,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func sampleMessages() []mail.Message {
	return []mail.Message{
		{
			ThreadID:    "t1",
			Position:    1,
			ThreadTotal: 1,
			Subject:     "Keyword hits",
			From:        "F5Bot <admin@f5bot.com>",
			Date:        "Mon, 24 Aug 2026 09:00:00 +0000",
			Body:        "someone mentioned your project",
		},
		{
			ThreadID:    "t2",
			Position:    1,
			ThreadTotal: 1,
			Subject:     "More keyword hits",
			From:        "F5Bot <admin@f5bot.com>",
			Date:        "Tue, 25 Aug 2026 09:00:00 +0000",
			Body:        "another mention",
		},
	}
}
