package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeGmail(); err != nil {
		return err
	}
	c.normalizeLLM()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	if err := c.normalizePrompts(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeSenders()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeGmail() error {
	var err error
	if strings.TrimSpace(c.Gmail.CredentialsFile) == "" {
		c.Gmail.CredentialsFile = defaultGmailCredentialsFile
	}
	if c.Gmail.CredentialsFile, err = expandPath(c.Gmail.CredentialsFile); err != nil {
		return fmt.Errorf("gmail.credentials_file: %w", err)
	}
	if strings.TrimSpace(c.Gmail.TokenFile) == "" {
		c.Gmail.TokenFile = defaultGmailTokenFile
	}
	if c.Gmail.TokenFile, err = expandPath(c.Gmail.TokenFile); err != nil {
		return fmt.Errorf("gmail.token_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("MAILSIFT_LLM_API_KEY"); ok {
			c.LLM.APIKey = value
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.Structurer.BaseURL = strings.TrimSpace(c.Structurer.BaseURL)
	c.Structurer.Model = strings.TrimSpace(c.Structurer.Model)
}

func (c *Config) normalizeJournal() error {
	var err error
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = defaultJournalPath
	}
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizePrompts() error {
	c.Prompts.Path = strings.TrimSpace(c.Prompts.Path)
	if c.Prompts.Path == "" {
		return nil
	}
	expanded, err := expandPath(c.Prompts.Path)
	if err != nil {
		return fmt.Errorf("prompts.path: %w", err)
	}
	c.Prompts.Path = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeSenders() {
	for i := range c.Senders {
		c.Senders[i].ID = strings.TrimSpace(c.Senders[i].ID)
		c.Senders[i].Email = strings.TrimSpace(c.Senders[i].Email)
		c.Senders[i].PromptKey = strings.TrimSpace(c.Senders[i].PromptKey)
	}
}
