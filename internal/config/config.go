// Package config provides configuration loading and validation for the audit service and CLI.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonathan/presence-audit/internal/export"
	"github.com/jonathan/presence-audit/internal/llm"
	"github.com/jonathan/presence-audit/internal/sanitize"
)

// Config is the full runtime configuration. Every key can be set in a YAML file
// or through the environment with dots replaced by underscores, e.g. SERVER_PORT.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Sanitize SanitizeConfig `mapstructure:"sanitize"`
	Progress ProgressConfig `mapstructure:"progress"`
	PDF      PDFConfig      `mapstructure:"pdf"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
	RateLimit    int           `mapstructure:"rate_limit"` // audits per minute per client
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

type GeminiConfig struct {
	// APIKey is the deployment default; a stored preference overrides it.
	APIKey         string  `mapstructure:"api_key"`
	Provider       string  `mapstructure:"provider"`
	Model          string  `mapstructure:"model"`
	Search         bool    `mapstructure:"search"`
	ThinkingBudget int32   `mapstructure:"thinking_budget"`
	Temperature    float32 `mapstructure:"temperature"`
}

type SanitizeConfig struct {
	Mode  string `mapstructure:"mode"`
	Scrub bool   `mapstructure:"scrub"`
}

type ProgressConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type PDFConfig struct {
	Engine        string        `mapstructure:"engine"`
	MarginMM      float64       `mapstructure:"margin_mm"`
	Scale         float64       `mapstructure:"scale"`
	Format        string        `mapstructure:"format"`
	PageBreakMode string        `mapstructure:"page_break_mode"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	// Generation with search and thinking routinely takes over a minute.
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.provider", string(llm.ProviderGenAI))
	v.SetDefault("gemini.model", "")
	v.SetDefault("gemini.search", true)
	v.SetDefault("gemini.thinking_budget", 8192)
	v.SetDefault("gemini.temperature", 0)

	v.SetDefault("sanitize.mode", string(sanitize.ModePattern))
	v.SetDefault("sanitize.scrub", true)

	v.SetDefault("progress.interval", 1500*time.Millisecond)

	v.SetDefault("pdf.engine", string(export.EngineChromedp))
	v.SetDefault("pdf.margin_mm", 10.0)
	v.SetDefault("pdf.scale", 1.0)
	v.SetDefault("pdf.format", string(export.FormatA4))
	v.SetDefault("pdf.page_break_mode", string(export.BreakCSS))
	v.SetDefault("pdf.timeout", 60*time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("database.url", "")
}

// Load reads configuration from path (YAML) layered over defaults and the environment.
// An empty path looks for audit.yaml in ./configs and the working directory and
// silently falls back to defaults when none exists.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("audit")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// A missing API key is not an error: sessions may supply their own.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 1 and 65535")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("config error: 'server.rate_limit' must be non-negative")
	}
	switch llm.Provider(c.Gemini.Provider) {
	case llm.ProviderGenAI, llm.ProviderGemini:
	default:
		return fmt.Errorf("config error: unknown 'gemini.provider' %q", c.Gemini.Provider)
	}
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		return fmt.Errorf("config error: 'gemini.temperature' must be between 0 and 2")
	}
	if _, err := sanitize.ParseMode(c.Sanitize.Mode); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Progress.Interval <= 0 {
		return fmt.Errorf("config error: 'progress.interval' must be positive")
	}
	switch export.Engine(strings.ToLower(c.PDF.Engine)) {
	case export.EngineChromedp, export.EngineRod, export.EngineNone:
	default:
		return fmt.Errorf("config error: unknown 'pdf.engine' %q", c.PDF.Engine)
	}
	if err := c.PDFOptions().Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// LLM returns the model configuration selected by the gemini section.
func (c *Config) LLM() *llm.Config {
	cfg := llm.DefaultConfig().WithProvider(llm.Provider(c.Gemini.Provider))
	if c.Gemini.Model != "" {
		cfg = cfg.WithModel(llm.TierStandard, c.Gemini.Model)
	}
	return cfg
}

// GenerateOptions returns the per-call options for audit generation.
func (c *Config) GenerateOptions() llm.GenerateOptions {
	return llm.GenerateOptions{
		Tier:           llm.TierStandard,
		Search:         c.Gemini.Search,
		ThinkingBudget: c.Gemini.ThinkingBudget,
		Temperature:    c.Gemini.Temperature,
	}
}

// Pipeline returns the sanitizer pipeline. Validate has already rejected bad modes.
func (c *Config) Pipeline() sanitize.Pipeline {
	mode, err := sanitize.ParseMode(c.Sanitize.Mode)
	if err != nil {
		mode = sanitize.ModePattern
	}
	return sanitize.Pipeline{Mode: mode, Scrub: c.Sanitize.Scrub}
}

// PDFOptions returns the rendering options from the pdf section.
func (c *Config) PDFOptions() export.PDFOptions {
	return export.PDFOptions{
		MarginMM:      c.PDF.MarginMM,
		Scale:         c.PDF.Scale,
		Format:        export.PageFormat(strings.ToLower(c.PDF.Format)),
		PageBreakMode: export.PageBreakMode(strings.ToLower(c.PDF.PageBreakMode)),
	}
}
