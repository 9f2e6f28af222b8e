// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port            int           `yaml:"port"             env:"HTTP_PORT"`
	APIPrefix       string        `yaml:"api_prefix"       env:"API_PREFIX"`
	RequestTimeout  time.Duration `yaml:"request_timeout"  env:"HTTP_REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string      `yaml:"allowed_origins"  env:"HTTP_ALLOWED_ORIGINS" envSeparator:","`
}

type LogConfig struct {
	Level    string `yaml:"level"    env:"LOG_LEVEL"`  // trace|debug|info|warn|error
	Format   string `yaml:"format"   env:"LOG_FORMAT"` // json|console
	Sampling bool   `yaml:"sampling" env:"LOG_SAMPLING"`
}

type DatabaseConfig struct {
	URL         string `yaml:"url"       env:"DATABASE_URL"`
	MaxConns    int32  `yaml:"max_conns" env:"DATABASE_MAX_CONNS"`
	SkipMigrate bool   `yaml:"skip_migrate" env:"DATABASE_SKIP_MIGRATE"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"      env:"REDIS_URL"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db"       env:"REDIS_DB"`
	TTL      time.Duration `yaml:"ttl"      env:"REDIS_TTL"`
}

type AIConfig struct {
	Provider        string        `yaml:"provider"         env:"AI_PROVIDER"` // openai|gemini|noop
	OpenAIKey       string        `yaml:"openai_key"       env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string        `yaml:"openai_base_url"  env:"OPENAI_BASE_URL"`
	GeminiKey       string        `yaml:"gemini_key"       env:"GEMINI_API_KEY"`
	GeminiURL       string        `yaml:"gemini_url"       env:"GEMINI_BASE_URL"`
	DefaultModel    string        `yaml:"default_model"    env:"AI_DEFAULT_MODEL"`
	GuideModel      string        `yaml:"guide_model"      env:"AI_GUIDE_MODEL"`
	ConcurrentLimit int           `yaml:"concurrent_limit" env:"AI_CONCURRENT_LIMIT"` // max concurrent AI calls
	CallTimeout     time.Duration `yaml:"call_timeout"     env:"AI_CALL_TIMEOUT"`
	MaxOutputTokens int           `yaml:"max_output_tokens" env:"AI_MAX_OUTPUT_TOKENS"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl"  env:"JWT_TOKEN_TTL"`
	Issuer    string        `yaml:"issuer"     env:"JWT_ISSUER"`
}

type JobsConfig struct {
	Workers          int           `yaml:"workers"            env:"JOBS_WORKERS"`
	FinalizeTimeout  time.Duration `yaml:"finalize_timeout"   env:"JOBS_FINALIZE_TIMEOUT"`
	SubmitRateLimit  int           `yaml:"submit_rate_limit"  env:"JOBS_SUBMIT_RATE_LIMIT"` // per user per window, 0 disables
	SubmitRateWindow time.Duration `yaml:"submit_rate_window" env:"JOBS_SUBMIT_RATE_WINDOW"`
	OrphanAfter      time.Duration `yaml:"orphan_after"       env:"JOBS_ORPHAN_AFTER"`
	OrphanInterval   time.Duration `yaml:"orphan_interval"    env:"JOBS_ORPHAN_INTERVAL"`
}

type AdminConfig struct {
	APIKey string `yaml:"api_key" env:"ADMIN_API_KEY"`
}

type TelegramConfig struct {
	Token    string  `yaml:"token"     env:"TELEGRAM_TOKEN"`
	AdminIDs []int64 `yaml:"admin_ids" env:"TELEGRAM_ADMIN_IDS" envSeparator:","`
}

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Auth     AuthConfig     `yaml:"auth"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Admin    AdminConfig    `yaml:"admin"`
	Telegram TelegramConfig `yaml:"telegram"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path (optional when it does not exist),
// loads a .env file if present, applies environment overrides, then defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// env-only deployments
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.APIPrefix == "" {
		c.HTTP.APIPrefix = "/api"
	}
	c.HTTP.APIPrefix = "/" + strings.Trim(c.HTTP.APIPrefix, "/")
	if c.HTTP.RequestTimeout <= 0 {
		c.HTTP.RequestTimeout = 60 * time.Second
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"*"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	c.Redis.TTL = normalizeTTL(c.Redis.TTL)

	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.Provider == "" {
		switch {
		case c.AI.OpenAIKey != "":
			c.AI.Provider = "openai"
		case c.AI.GeminiKey != "":
			c.AI.Provider = "gemini"
		case c.Runtime.Dev:
			c.AI.Provider = "noop"
		}
	}
	if c.AI.DefaultModel == "" {
		if c.AI.Provider == "gemini" {
			c.AI.DefaultModel = "gemini-2.0-flash"
		} else {
			c.AI.DefaultModel = "gpt-4o-mini"
		}
	}
	if c.AI.GuideModel == "" {
		c.AI.GuideModel = c.AI.DefaultModel
	}
	if c.AI.ConcurrentLimit <= 0 {
		c.AI.ConcurrentLimit = 16
	}
	if c.AI.CallTimeout <= 0 {
		c.AI.CallTimeout = 90 * time.Second
	}
	if c.AI.MaxOutputTokens <= 0 {
		c.AI.MaxOutputTokens = 2048
	}

	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 7 * 24 * time.Hour
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "ai-tutor-backend"
	}

	if c.Jobs.Workers <= 0 {
		c.Jobs.Workers = 4
	}
	if c.Jobs.FinalizeTimeout <= 0 {
		c.Jobs.FinalizeTimeout = 10 * time.Second
	}
	if c.Jobs.SubmitRateWindow <= 0 {
		c.Jobs.SubmitRateWindow = time.Hour
	}
	if c.Jobs.OrphanAfter <= 0 {
		c.Jobs.OrphanAfter = 15 * time.Minute
	}
	if c.Jobs.OrphanInterval <= 0 {
		c.Jobs.OrphanInterval = time.Minute
	}
}

// Validate performs minimal validation of required settings.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Auth.JWTSecret == "" {
		if !c.Runtime.Dev {
			return errors.New("auth.jwt_secret is required")
		}
		c.Auth.JWTSecret = "dev-insecure-secret"
	}
	switch c.AI.Provider {
	case "openai":
		if c.AI.OpenAIKey == "" {
			return errors.New("ai.openai_key is required for provider openai")
		}
	case "gemini":
		if c.AI.GeminiKey == "" {
			return errors.New("ai.gemini_key is required for provider gemini")
		}
	case "noop":
		if !c.Runtime.Dev {
			return errors.New("ai.provider noop is only allowed in dev mode")
		}
	case "":
		return errors.New("no AI provider configured: set ai.openai_key or ai.gemini_key")
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
