package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Gmail contains credential locations for the mail source.
type Gmail struct {
	CredentialsFile string `toml:"credentials_file"`
	TokenFile       string `toml:"token_file"`
}

// LLM contains connection settings for the analysis model.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Structurer contains connection settings for the cheap model that converts
// markdown analysis into JSON. Fields left empty fall back to [llm] values.
type Structurer struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Workflow contains orchestration tuning knobs.
type Workflow struct {
	// OverfetchMultiplier scales the requested thread limit when querying the
	// mail source; the source ranks threads by the matched message's date, so
	// reading extra threads compensates for the skew before reranking.
	OverfetchMultiplier int `toml:"overfetch_multiplier"`
	// OverfetchCap bounds the over-fetched thread count.
	OverfetchCap int `toml:"overfetch_cap"`
	// RetentionHours is the task eviction window.
	RetentionHours int `toml:"retention_hours"`
	// EvictionSweepMinutes is the interval between background eviction sweeps.
	EvictionSweepMinutes int `toml:"eviction_sweep_minutes"`
	DefaultThreadLimit   int `toml:"default_thread_limit"`
	DefaultBatchSize     int `toml:"default_batch_size"`
}

// Journal contains settings for the optional per-batch artifact journal.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Prompts contains the prompt catalog location. An empty path uses the
// embedded defaults.
type Prompts struct {
	Path string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Sender describes one configured mail sender available for analysis.
type Sender struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Email       string `toml:"email"`
	Description string `toml:"description"`
	PromptKey   string `toml:"prompt_key"`
}

// Config encapsulates all configuration values for mailsift.
//
// Configuration sections by subsystem:
//   - Paths: log directory and API bind address
//   - Gmail: OAuth credential and token file locations
//   - LLM: analysis model connection settings
//   - Structurer: cheap model for markdown-to-JSON conversion
//   - Workflow: over-fetch tuning and task retention
//   - Journal: optional SQLite artifact journal
//   - Prompts: prompt catalog file override
//   - Logging: log format and level
//   - Senders: the senders the API accepts for analysis
type Config struct {
	Paths      Paths      `toml:"paths"`
	Gmail      Gmail      `toml:"gmail"`
	LLM        LLM        `toml:"llm"`
	Structurer Structurer `toml:"structurer"`
	Workflow   Workflow   `toml:"workflow"`
	Journal    Journal    `toml:"journal"`
	Prompts    Prompts    `toml:"prompts"`
	Logging    Logging    `toml:"logging"`
	Senders    []Sender   `toml:"senders"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mailsift/config.toml")
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the embedded sample configuration to the given path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves ~ and relative segments into an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mailsift.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) != "" {
		dirs = append(dirs, filepath.Dir(c.Journal.Path))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SenderByID returns the configured sender matching the supplied identifier.
func (c *Config) SenderByID(id string) (Sender, bool) {
	id = strings.TrimSpace(id)
	for _, sender := range c.Senders {
		if sender.ID == id {
			return sender, true
		}
	}
	return Sender{}, false
}

// StructurerLLM resolves the structurer connection settings, falling back to
// the primary LLM block for unset fields.
func (c *Config) StructurerLLM() LLM {
	resolved := LLM{
		APIKey:         c.Structurer.APIKey,
		BaseURL:        c.Structurer.BaseURL,
		Model:          c.Structurer.Model,
		Referer:        c.LLM.Referer,
		Title:          c.LLM.Title,
		TimeoutSeconds: c.Structurer.TimeoutSeconds,
	}
	if resolved.APIKey == "" {
		resolved.APIKey = c.LLM.APIKey
	}
	if resolved.BaseURL == "" {
		resolved.BaseURL = c.LLM.BaseURL
	}
	if resolved.Model == "" {
		resolved.Model = c.LLM.Model
	}
	if resolved.TimeoutSeconds <= 0 {
		resolved.TimeoutSeconds = defaultStructurerTimeoutSeconds
	}
	return resolved
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
