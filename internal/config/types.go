package config

// ProviderType identifies a code-generation provider. Both speak the
// OpenAI chat-completions protocol; OpenRouter differs only in base URL.
type ProviderType string

const (
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
)

// Config is the top-level vibeframe configuration, corresponding to
// .vibeframe.yml.
type Config struct {
	Port             int          `yaml:"port" koanf:"port"`
	DataDir          string       `yaml:"data_dir" koanf:"data_dir"`
	Provider         ProviderType `yaml:"provider" koanf:"provider"`
	Model            string       `yaml:"model" koanf:"model"`
	AllowAll         bool         `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	MobileBreakpoint int          `yaml:"mobile_breakpoint" koanf:"mobile_breakpoint"`
}
