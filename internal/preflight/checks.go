package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"mailsift/internal/config"
	"mailsift/internal/llm"
	"mailsift/internal/prompts"
)

// CheckLLM verifies that the model API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt.
func CheckLLM(ctx context.Context, name string, cfg config.LLM) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.ConfigFrom(cfg))
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckGmailCredentials verifies the OAuth credential and token files exist.
// It does not issue a network call; an expired token surfaces as a fetch
// failure at run time.
func CheckGmailCredentials(cfg config.Gmail) Result {
	const name = "Gmail credentials"

	if _, err := os.Stat(cfg.CredentialsFile); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.CredentialsFile, err)}
	}
	if _, err := os.Stat(cfg.TokenFile); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v; run the authorization flow)", cfg.TokenFile, err)}
	}
	return Result{Name: name, Passed: true, Detail: "credential and token files present"}
}

// CheckPrompts verifies the prompt catalog loads and every configured sender's
// prompt key resolves.
func CheckPrompts(cfg *config.Config) Result {
	const name = "Prompt catalog"

	catalog, err := prompts.Load(cfg.Prompts.Path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	var missing []string
	for _, sender := range cfg.Senders {
		if _, err := catalog.Lookup(sender.PromptKey); err != nil {
			missing = append(missing, fmt.Sprintf("%s (sender %s)", sender.PromptKey, sender.ID))
		}
	}
	if len(missing) > 0 {
		return Result{Name: name, Detail: "unresolved prompt keys: " + strings.Join(missing, ", ")}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d prompts loaded", len(catalog.Keys()))}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func summarizeLLMError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "http 401"), strings.Contains(msg, "http 403"):
		return "auth failed (invalid api key)"
	case strings.Contains(msg, "http 404"):
		return "endpoint not found (check base_url)"
	case strings.Contains(msg, "context deadline exceeded"):
		return "timed out"
	default:
		return msg
	}
}
