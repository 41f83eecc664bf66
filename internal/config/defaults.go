package config

// providerBaseURLs maps each provider to its API endpoint. Empty means
// the client library default.
var providerBaseURLs = map[ProviderType]string{
	ProviderOpenAI:     "",
	ProviderOpenRouter: "https://openrouter.ai/api/v1",
}

// BaseURL returns the chat-completions endpoint for the configured
// provider.
func (c *Config) BaseURL() string {
	return providerBaseURLs[c.Provider]
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:             8777,
		DataDir:          ".vibeframe",
		Provider:         ProviderOpenAI,
		Model:            "gpt-4o",
		AllowAll:         false,
		MobileBreakpoint: 768,
	}
}
