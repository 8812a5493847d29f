package config

const (
	defaultLogDir                   = "~/.local/share/mailsift/logs"
	defaultAPIBind                  = "127.0.0.1:7519"
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
	defaultGmailCredentialsFile     = "~/.config/mailsift/credentials.json"
	defaultGmailTokenFile           = "~/.config/mailsift/token.json"
	defaultLLMBaseURL               = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel                 = "openai/gpt-4o-mini"
	defaultLLMTimeoutSeconds        = 180
	defaultLLMReferer               = "https://github.com/mailsift/mailsift"
	defaultLLMTitle                 = "Mailsift Analyzer"
	defaultStructurerModel          = "meta-llama/llama-3.1-8b-instruct"
	defaultStructurerTimeoutSeconds = 30
	defaultOverfetchMultiplier      = 3
	defaultOverfetchCap             = 100
	defaultRetentionHours           = 24
	defaultEvictionSweepMinutes     = 60
	defaultThreadLimit              = 50
	defaultBatchSize                = 5
	defaultJournalPath              = "~/.local/share/mailsift/journal.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Gmail: Gmail{
			CredentialsFile: defaultGmailCredentialsFile,
			TokenFile:       defaultGmailTokenFile,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Structurer: Structurer{
			Model:          defaultStructurerModel,
			TimeoutSeconds: defaultStructurerTimeoutSeconds,
		},
		Workflow: Workflow{
			OverfetchMultiplier:  defaultOverfetchMultiplier,
			OverfetchCap:         defaultOverfetchCap,
			RetentionHours:       defaultRetentionHours,
			EvictionSweepMinutes: defaultEvictionSweepMinutes,
			DefaultThreadLimit:   defaultThreadLimit,
			DefaultBatchSize:     defaultBatchSize,
		},
		Journal: Journal{
			Path: defaultJournalPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
