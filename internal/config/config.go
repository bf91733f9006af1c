// Package config reads settings for both binaries from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// Sidekick configures the terminal session and its agent.
type Sidekick struct {
	Provider        Provider `env:"SIDEKICK_PROVIDER" envDefault:"anthropic"`
	AnthropicAPIKey string   `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string   `env:"SIDEKICK_ANTHROPIC_MODEL" envDefault:"claude-3-7-sonnet-latest"`
	OpenAIAPIKey    string   `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string   `env:"OPENAI_BASE_URL"`
	OpenAIModel     string   `env:"SIDEKICK_OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	MaxTokens     int64 `env:"SIDEKICK_MAX_TOKENS" envDefault:"1024"`
	MaxIterations int   `env:"SIDEKICK_MAX_ITERATIONS" envDefault:"3"`
	// History budget in heuristic tokens; 0 sends the whole history.
	TokenBudget int `env:"SIDEKICK_TOKEN_BUDGET" envDefault:"8000"`

	AskCriterion   bool   `env:"SIDEKICK_ASK_CRITERION" envDefault:"true"`
	TranscriptPath string `env:"SIDEKICK_TRANSCRIPT"`

	Log
	Telemetry
}

// APIKey returns the key for the selected provider.
func (c *Sidekick) APIKey() string {
	if c.Provider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.AnthropicAPIKey
}

// Model returns the model name for the selected provider.
func (c *Sidekick) Model() string {
	if c.Provider == ProviderOpenAI {
		return c.OpenAIModel
	}
	return c.AnthropicModel
}

// I18nFix configures the locale workaround utility.
type I18nFix struct {
	// Launch plan override; empty uses the built-in plan.
	PlanPath     string        `env:"I18NFIX_PLAN"`
	BrowserDelay time.Duration `env:"I18NFIX_BROWSER_DELAY" envDefault:"3s"`
	OpenBrowser  bool          `env:"I18NFIX_OPEN_BROWSER" envDefault:"true"`
	// Extra cache directories removed in addition to the built-in list,
	// separated like PATH (":" on Unix, ";" on Windows).
	ExtraCacheDirs string `env:"I18NFIX_EXTRA_CACHE_DIRS"`

	Log
}

// CacheDirs splits ExtraCacheDirs with the platform list separator.
func (c *I18nFix) CacheDirs() []string {
	var dirs []string
	for _, d := range filepath.SplitList(c.ExtraCacheDirs) {
		if d = strings.TrimSpace(d); d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

type Log struct {
	File  string `env:"SIDEKICK_LOG_FILE" envDefault:".agent/sidekick.log"`
	Level string `env:"SIDEKICK_LOG_LEVEL" envDefault:"info"`
}

type Telemetry struct {
	ObserveJSON  bool   `env:"SIDEKICK_OBSERVE_JSON"`
	ArtifactsDir string `env:"SIDEKICK_ARTIFACTS_DIR" envDefault:".agent"`
}

// LoadSidekick reads a Sidekick config. envFiles are loaded first without
// overriding variables that are already set; missing files are ignored.
func LoadSidekick(envFiles ...string) (*Sidekick, error) {
	if err := loadDotEnv(envFiles); err != nil {
		return nil, err
	}
	cfg := &Sidekick{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Provider = Provider(strings.ToLower(string(cfg.Provider)))
	switch cfg.Provider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if cfg.MaxIterations < 1 {
		return nil, fmt.Errorf("SIDEKICK_MAX_ITERATIONS must be >= 1, got %d", cfg.MaxIterations)
	}
	return cfg, nil
}

// LoadI18nFix reads an I18nFix config the same way as LoadSidekick.
func LoadI18nFix(envFiles ...string) (*I18nFix, error) {
	if err := loadDotEnv(envFiles); err != nil {
		return nil, err
	}
	cfg := &I18nFix{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(files []string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}
