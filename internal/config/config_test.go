package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/presence-audit/internal/export"
	"github.com/jonathan/presence-audit/internal/llm"
	"github.com/jonathan/presence-audit/internal/sanitize"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Gemini.Search)
	assert.Equal(t, int32(8192), cfg.Gemini.ThinkingBudget)
	assert.Equal(t, 1500*time.Millisecond, cfg.Progress.Interval)
	assert.Equal(t, export.DefaultPDFOptions(), cfg.PDFOptions())
	assert.Equal(t, sanitize.DefaultPipeline(), cfg.Pipeline())
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
gemini:
  provider: generative-ai
  model: gemini-2.5-pro
  search: false
sanitize:
  mode: structural
pdf:
  engine: rod
  margin_mm: 12.5
  format: letter
  page_break_mode: avoid-all
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Gemini.Search)
	assert.Equal(t, sanitize.ModeStructural, cfg.Pipeline().Mode)

	llmCfg := cfg.LLM()
	assert.Equal(t, llm.ProviderGemini, llmCfg.Provider)
	assert.Equal(t, "gemini-2.5-pro", llmCfg.GetModel(llm.TierStandard))

	opts := cfg.PDFOptions()
	assert.Equal(t, 12.5, opts.MarginMM)
	assert.Equal(t, export.FormatLetter, opts.Format)
	assert.Equal(t, export.BreakAvoidAll, opts.PageBreakMode)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "postgres://localhost/audits")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env-key", cfg.Gemini.APIKey)
	assert.Equal(t, "postgres://localhost/audits", cfg.Database.URL)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/audit.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"negative rate limit", func(c *Config) { c.Server.RateLimit = -1 }, "server.rate_limit"},
		{"unknown provider", func(c *Config) { c.Gemini.Provider = "openai" }, "gemini.provider"},
		{"temperature out of range", func(c *Config) { c.Gemini.Temperature = 3 }, "gemini.temperature"},
		{"unknown sanitize mode", func(c *Config) { c.Sanitize.Mode = "aggressive" }, "config error"},
		{"zero interval", func(c *Config) { c.Progress.Interval = 0 }, "progress.interval"},
		{"unknown engine", func(c *Config) { c.PDF.Engine = "wkhtmltopdf" }, "pdf.engine"},
		{"bad scale", func(c *Config) { c.PDF.Scale = 5 }, "scale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGenerateOptions(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	opts := cfg.GenerateOptions()
	assert.Equal(t, llm.TierStandard, opts.Tier)
	assert.True(t, opts.Search)
	assert.Equal(t, int32(8192), opts.ThinkingBudget)
}
