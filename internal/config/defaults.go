package config

const (
	defaultConfigPath            = "~/.config/tubecron/config.toml"
	defaultStateDir              = "~/.local/share/tubecron"
	defaultTranscriptsDir        = "~/.local/share/tubecron/transcripts"
	defaultVaultDir              = "~/Documents/Obsidian/YouTube"
	defaultCredentialsFile       = "~/.config/tubecron/credentials/client_secret.json"
	defaultTokenFile             = "~/.config/tubecron/tokens/token.json"
	defaultBatchSize             = 10
	defaultChunkSize             = 12000
	defaultRetryAttempts         = 3
	defaultRetryBaseDelaySeconds = 4
	defaultRetryMaxDelaySeconds  = 10
	defaultMaxTokens             = 500
	defaultTemperature           = 0.3
	defaultLLMProvider           = ProviderOpenAI
	defaultOllamaHost            = "http://localhost:11434"
	defaultLLMReferer            = "https://github.com/tubecron/tubecron"
	defaultLLMTitle              = "tubecron"
	defaultLLMTimeoutSeconds     = 120
	defaultYouTubeAPIBaseURL     = "https://youtube.googleapis.com"
	defaultYouTubePageSize       = 50
	defaultTranscriptAPIURL      = ""
	defaultTranscriptTimeout     = 60
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultNotifyRequestTimeout  = 10
)

// Supported summarization providers.
const (
	ProviderOpenAI     = "openai"
	ProviderOllama     = "ollama"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
)

var defaultModels = map[string]string{
	ProviderOpenAI:     "gpt-3.5-turbo-16k",
	ProviderOllama:     "mistral",
	ProviderOpenRouter: "google/gemini-2.5-flash",
	ProviderAnthropic:  "claude-3-5-haiku-latest",
}

var defaultBaseURLs = map[string]string{
	ProviderOpenAI:     "https://api.openai.com/v1/chat/completions",
	ProviderOpenRouter: "https://openrouter.ai/api/v1/chat/completions",
}

var apiKeyEnv = map[string]string{
	ProviderOpenAI:     "OPENAI_API_KEY",
	ProviderOpenRouter: "OPENROUTER_API_KEY",
	ProviderAnthropic:  "ANTHROPIC_API_KEY",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:        defaultStateDir,
			TranscriptsDir:  defaultTranscriptsDir,
			VaultDir:        defaultVaultDir,
			CredentialsFile: defaultCredentialsFile,
			TokenFile:       defaultTokenFile,
		},
		Pipeline: Pipeline{
			BatchSize: defaultBatchSize,
		},
		Summary: Summary{
			ChunkSize:             defaultChunkSize,
			RetryAttempts:         defaultRetryAttempts,
			RetryBaseDelaySeconds: defaultRetryBaseDelaySeconds,
			RetryMaxDelaySeconds:  defaultRetryMaxDelaySeconds,
			MaxTokens:             defaultMaxTokens,
			Temperature:           defaultTemperature,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			OllamaHost:     defaultOllamaHost,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		YouTube: YouTube{
			APIBaseURL: defaultYouTubeAPIBaseURL,
			PageSize:   defaultYouTubePageSize,
		},
		Transcripts: Transcripts{
			APIURL:         defaultTranscriptAPIURL,
			TimeoutSeconds: defaultTranscriptTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			PassSummary:    true,
			NotePublished:  false,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
