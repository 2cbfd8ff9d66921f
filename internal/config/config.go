package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level gateway configuration loaded from YAML.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	LLM      LLMConfig      `yaml:"llm"`
	Channels ChannelsConfig `yaml:"channels"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Tools    ToolsConfig    `yaml:"tools"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RedisConfig holds the connection settings for the TTL stores.
// An empty Addr means redis is not used and the in-memory stores take over.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LLMConfig configures the classifier fallback and chat model.
type LLMConfig struct {
	Provider       string `yaml:"provider"` // "openai-compatible" or "ollama"
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ChannelsConfig enables/configures the inbound channels.
type ChannelsConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	WebChat  WebChatConfig  `yaml:"webchat"`
}

// TelegramConfig holds the bot token. The TELEGRAM_BOT_TOKEN environment
// variable overrides the file value so the token stays out of config files.
type TelegramConfig struct {
	Token string `yaml:"token"`
}

// WebChatConfig holds the websocket chat port. Zero disables the channel.
type WebChatConfig struct {
	Port int `yaml:"port"`
}

// DispatchConfig holds the turn-dispatch tunables.
type DispatchConfig struct {
	ContextTTLSeconds     int    `yaml:"context_ttl_seconds"`
	PendingTTLSeconds     int    `yaml:"pending_ttl_seconds"`
	SubgraphTimeoutSecs   int    `yaml:"subgraph_timeout_seconds"`
	ReaperSchedule        string `yaml:"reaper_schedule"`
	ConfidenceThreshold   float64 `yaml:"confidence_threshold"`
}

// ToolsConfig holds the external tool API settings. An empty base URL
// disables the tool; its handler then degrades to the fallback reply.
type ToolsConfig struct {
	Weather WeatherToolConfig `yaml:"weather"`
	Rail    APIToolConfig     `yaml:"rail"`
	Places  APIToolConfig     `yaml:"places"`
	News    APIToolConfig     `yaml:"news"`
}

// WeatherToolConfig points at an open-meteo compatible pair of
// geocoding and forecast endpoints. Neither needs an API key.
type WeatherToolConfig struct {
	ForecastURL string `yaml:"forecast_url"`
	GeocodeURL  string `yaml:"geocode_url"`
}

// APIToolConfig is the common shape for keyed JSON tool APIs.
type APIToolConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Load reads and parses the config file, applies defaults and env overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 9002
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 10
	}
	if c.Dispatch.ContextTTLSeconds == 0 {
		c.Dispatch.ContextTTLSeconds = 600
	}
	if c.Dispatch.PendingTTLSeconds == 0 {
		c.Dispatch.PendingTTLSeconds = 600
	}
	if c.Dispatch.SubgraphTimeoutSecs == 0 {
		c.Dispatch.SubgraphTimeoutSecs = 30
	}
	if c.Dispatch.ReaperSchedule == "" {
		c.Dispatch.ReaperSchedule = "@every 5m"
	}
	if c.Dispatch.ConfidenceThreshold == 0 {
		c.Dispatch.ConfidenceThreshold = 0.6
	}
	if c.Tools.Weather.ForecastURL == "" {
		c.Tools.Weather.ForecastURL = "https://api.open-meteo.com/v1/forecast"
	}
	if c.Tools.Weather.GeocodeURL == "" {
		c.Tools.Weather.GeocodeURL = "https://geocoding-api.open-meteo.com/v1/search"
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Channels.Telegram.Token = v
	}
	if v := os.Getenv("SAHAY_LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("SAHAY_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
}

// Validate checks the configuration for values that would make startup unsafe.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.LLM.Provider != "" {
		switch c.LLM.Provider {
		case "openai-compatible", "ollama":
		default:
			return fmt.Errorf("unsupported llm provider: %s", c.LLM.Provider)
		}
		if c.LLM.BaseURL == "" {
			return fmt.Errorf("llm provider %s requires base_url", c.LLM.Provider)
		}
	}
	if c.Dispatch.ContextTTLSeconds < 0 || c.Dispatch.PendingTTLSeconds < 0 {
		return fmt.Errorf("store TTLs must be non-negative")
	}
	if c.Dispatch.ConfidenceThreshold < 0 || c.Dispatch.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be within [0,1]")
	}
	return nil
}

// ContextTTL returns the context cache TTL as a duration.
func (c *Config) ContextTTL() time.Duration {
	return time.Duration(c.Dispatch.ContextTTLSeconds) * time.Second
}

// PendingTTL returns the pending-action TTL as a duration.
func (c *Config) PendingTTL() time.Duration {
	return time.Duration(c.Dispatch.PendingTTLSeconds) * time.Second
}

// SubgraphTimeout returns the nested sub-graph execution ceiling.
func (c *Config) SubgraphTimeout() time.Duration {
	return time.Duration(c.Dispatch.SubgraphTimeoutSecs) * time.Second
}

// LLMTimeout returns the timeout for one LLM call.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}
