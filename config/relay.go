package config

import "github.com/joho/godotenv"

// RelayServerConfig configures the standalone CORS relay process.
type RelayServerConfig struct {
	Port              string
	OpenAIUpstream    string
	AnthropicUpstream string
	GoogleUpstream    string
	Log               LogConfig
}

func LoadRelay() *RelayServerConfig {
	_ = godotenv.Load()

	return &RelayServerConfig{
		Port:              getEnv("RELAY_PORT", "3001"),
		OpenAIUpstream:    getEnv("RELAY_OPENAI_UPSTREAM", ""),
		AnthropicUpstream: getEnv("RELAY_ANTHROPIC_UPSTREAM", ""),
		GoogleUpstream:    getEnv("RELAY_GOOGLE_UPSTREAM", ""),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getBoolEnv("LOG_PRETTY", getEnv("APP_ENV", "production") == "development"),
		},
	}
}
