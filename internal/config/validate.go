package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateSenders(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/mailsift/config.toml"
		}
		return fmt.Errorf("llm.api_key is required. Set MAILSIFT_LLM_API_KEY env var or edit %s (create with 'mailsift config init')", defaultPath)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.overfetch_multiplier":   c.Workflow.OverfetchMultiplier,
		"workflow.overfetch_cap":          c.Workflow.OverfetchCap,
		"workflow.retention_hours":        c.Workflow.RetentionHours,
		"workflow.eviction_sweep_minutes": c.Workflow.EvictionSweepMinutes,
		"workflow.default_thread_limit":   c.Workflow.DefaultThreadLimit,
		"workflow.default_batch_size":     c.Workflow.DefaultBatchSize,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateSenders() error {
	seen := make(map[string]struct{}, len(c.Senders))
	for _, sender := range c.Senders {
		if sender.ID == "" {
			return errors.New("senders entries require an id")
		}
		if _, dup := seen[sender.ID]; dup {
			return fmt.Errorf("duplicate sender id %q", sender.ID)
		}
		seen[sender.ID] = struct{}{}
		if sender.Email == "" {
			return fmt.Errorf("sender %q requires an email", sender.ID)
		}
		if sender.PromptKey == "" {
			return fmt.Errorf("sender %q requires a prompt_key", sender.ID)
		}
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
