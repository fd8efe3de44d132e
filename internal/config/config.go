package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TOOLCALL"

type Config struct {
	Backend      string          `mapstructure:"backend"`
	Model        string          `mapstructure:"model"`
	Prompt       string          `mapstructure:"prompt"`
	SystemPrompt string          `mapstructure:"system_prompt"`
	Ollama       OllamaConfig    `mapstructure:"ollama"`
	OpenAI       OpenAIConfig    `mapstructure:"openai"`
	HTTP         HTTPConfig      `mapstructure:"http"`
	Tools        ToolsConfig     `mapstructure:"tools"`
	Log          LogConfig       `mapstructure:"log"`
	Telemetry    TelemetryConfig `mapstructure:"telemetry"`
}

type OllamaConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"api_key"`
}

type OpenAIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ToolsConfig names the tools offered to the model on each request.
type ToolsConfig struct {
	FirstTurn []string `mapstructure:"first_turn"`
	FinalTurn []string `mapstructure:"final_turn"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

// Load reads configuration from path (optional) and TOOLCALL_* environment
// variables, e.g. TOOLCALL_OLLAMA_HOST for ollama.host.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("backend", "ollama")
	v.SetDefault("model", "")
	v.SetDefault("prompt", "Turn on the lights")
	v.SetDefault("system_prompt", "")
	v.SetDefault("ollama.host", "http://localhost:11434")
	v.SetDefault("ollama.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("http.timeout", 5*time.Minute)
	v.SetDefault("tools.first_turn", []string{"control"})
	v.SetDefault("tools.final_turn", []string{"control"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4317")
	v.SetDefault("telemetry.service_name", "toolcall")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case "ollama", "openai":
	default:
		return fmt.Errorf("backend must be ollama or openai, got %q", c.Backend)
	}
	if strings.TrimSpace(c.Prompt) == "" {
		return errors.New("prompt is required")
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Telemetry.Enabled && strings.TrimSpace(c.Telemetry.Endpoint) == "" {
		return errors.New("telemetry.endpoint is required when telemetry is enabled")
	}
	return nil
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
