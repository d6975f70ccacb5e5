package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v4"
)

const (
	ProviderWorkflow   = "workflow"
	ProviderOpenRouter = "openrouter"
)

type Config struct {
	Port           string `yaml:"port"`
	GRPCHealthPort string `yaml:"grpc_health_port"`
	DatabaseURL    string `yaml:"database_url"`
	DatabaseConns  int    `yaml:"database_max_conns"`
	RedisURL       string `yaml:"redis_url"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`

	JWTSecret     string `yaml:"jwt_secret"`
	JWTIssuer     string `yaml:"jwt_issuer"`
	JWTTTLMinutes int    `yaml:"jwt_ttl_minutes"`

	Workflow   WorkflowConfig   `yaml:"workflow"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	// OptimizerProvider and ParserProvider are "workflow" or "openrouter".
	OptimizerProvider string `yaml:"optimizer_provider"`
	ParserProvider    string `yaml:"parser_provider"`

	Uploads UploadsConfig `yaml:"uploads"`
	Notices NoticesConfig `yaml:"notices"`

	PublicCacheTTLSeconds int `yaml:"public_cache_ttl_seconds"`
}

type WorkflowConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type OpenRouterConfig struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	AppTitle string `yaml:"app_title"`
	Referer  string `yaml:"referer"`
}

type UploadsConfig struct {
	Dir          string `yaml:"dir"`
	MaxBytes     int64  `yaml:"max_bytes"`
	ExcerptChars int    `yaml:"excerpt_chars"`
}

// NoticesConfig sets how long editor notices stay visible.
type NoticesConfig struct {
	SuccessMS     int `yaml:"success_ms"`
	LowEmphasisMS int `yaml:"low_emphasis_ms"`
	// Editor sessions unused for this long are dropped. Zero keeps them.
	SessionIdleMinutes int `yaml:"session_idle_minutes"`
}

func defaults() Config {
	return Config{
		Port:          "8080",
		LogLevel:      "info",
		LogFormat:     "text",
		JWTSecret:     "dev-secret-change",
		JWTIssuer:     "nodalcv",
		JWTTTLMinutes: 60,
		Workflow: WorkflowConfig{
			BaseURL:        "http://localhost:5678",
			TimeoutSeconds: 60,
		},
		OpenRouter:            OpenRouterConfig{AppTitle: "NodalCV"},
		OptimizerProvider:     ProviderWorkflow,
		ParserProvider:        ProviderWorkflow,
		Uploads:               UploadsConfig{Dir: "uploads", MaxBytes: 15 << 20, ExcerptChars: 8000},
		Notices:               NoticesConfig{SuccessMS: 5000, LowEmphasisMS: 3000, SessionIdleMinutes: 60},
		PublicCacheTTLSeconds: 300,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (config.yaml by default, optional), then environment
// variables. A .env file is loaded into the environment first if present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	path := getEnv("CONFIG_FILE", "config.yaml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	overrideString(&cfg.Port, "PORT")
	overrideString(&cfg.GRPCHealthPort, "GRPC_HEALTH_PORT")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideInt(&cfg.DatabaseConns, "DATABASE_MAX_CONNS")
	overrideString(&cfg.RedisURL, "REDIS_URL")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.LogFormat, "LOG_FORMAT")
	overrideString(&cfg.JWTSecret, "JWT_SECRET")
	overrideString(&cfg.JWTIssuer, "JWT_ISSUER")
	overrideInt(&cfg.JWTTTLMinutes, "JWT_TTL_MINUTES")
	overrideString(&cfg.Workflow.BaseURL, "WORKFLOW_BASE_URL")
	overrideString(&cfg.Workflow.APIKey, "WORKFLOW_API_KEY")
	overrideInt(&cfg.Workflow.TimeoutSeconds, "WORKFLOW_TIMEOUT_SECONDS")
	overrideString(&cfg.OpenRouter.APIKey, "OPENROUTER_API_KEY")
	overrideString(&cfg.OpenRouter.BaseURL, "OPENROUTER_BASE_URL")
	overrideString(&cfg.OpenRouter.Model, "OPENROUTER_MODEL")
	overrideString(&cfg.OpenRouter.AppTitle, "OPENROUTER_APP_TITLE")
	overrideString(&cfg.OpenRouter.Referer, "OPENROUTER_REFERER")
	overrideString(&cfg.OptimizerProvider, "OPTIMIZER_PROVIDER")
	overrideString(&cfg.ParserProvider, "PARSER_PROVIDER")
	overrideString(&cfg.Uploads.Dir, "UPLOADS_DIR")
	overrideInt64(&cfg.Uploads.MaxBytes, "UPLOADS_MAX_BYTES")
	overrideInt(&cfg.Uploads.ExcerptChars, "UPLOADS_EXCERPT_CHARS")
	overrideInt(&cfg.Notices.SuccessMS, "NOTICE_SUCCESS_MS")
	overrideInt(&cfg.Notices.LowEmphasisMS, "NOTICE_LOW_EMPHASIS_MS")
	overrideInt(&cfg.Notices.SessionIdleMinutes, "EDITOR_SESSION_IDLE_MINUTES")
	overrideInt(&cfg.PublicCacheTTLSeconds, "PUBLIC_CACHE_TTL_SECONDS")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	for name, p := range map[string]string{"optimizer_provider": c.OptimizerProvider, "parser_provider": c.ParserProvider} {
		if p != ProviderWorkflow && p != ProviderOpenRouter {
			return fmt.Errorf("%s: unknown provider %q", name, p)
		}
	}
	if c.Workflow.BaseURL == "" {
		return errors.New("workflow.base_url is required")
	}
	return nil
}

func (c Config) JWTTTL() time.Duration { return time.Duration(c.JWTTTLMinutes) * time.Minute }

func (c Config) WorkflowTimeout() time.Duration {
	return time.Duration(c.Workflow.TimeoutSeconds) * time.Second
}

func (c Config) PublicCacheTTL() time.Duration {
	return time.Duration(c.PublicCacheTTLSeconds) * time.Second
}

func (n NoticesConfig) Success() time.Duration { return time.Duration(n.SuccessMS) * time.Millisecond }

func (n NoticesConfig) LowEmphasis() time.Duration {
	return time.Duration(n.LowEmphasisMS) * time.Millisecond
}

func (n NoticesConfig) SessionIdle() time.Duration {
	return time.Duration(n.SessionIdleMinutes) * time.Minute
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func overrideInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}
