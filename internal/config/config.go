package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the tutor server.
type Config struct {
	// Service Configuration
	ServiceName      string        `env:"SERVICE_NAME" envDefault:"tutor-server"`
	ServiceNamespace string        `env:"SERVICE_NAMESPACE" envDefault:"tutor"`
	Environment      string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort         int           `env:"HTTP_PORT" envDefault:"8080"`
	PprofPort        int           `env:"PPROF_PORT" envDefault:"6060"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"console"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database
	DatabaseURL    string        `env:"DATABASE_URL,notEmpty"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Model backend
	ModelBaseURL   string        `env:"MODEL_BASE_URL" envDefault:"http://localhost:8001/v1"`
	ModelAPIKey    string        `env:"MODEL_API_KEY"`
	ModelName      string        `env:"MODEL_NAME" envDefault:"llama-3-8b-instruct"`
	ModelTimeout   time.Duration `env:"MODEL_TIMEOUT" envDefault:"30s"`
	MaxReplyTokens int           `env:"MAX_REPLY_TOKENS" envDefault:"50"`

	// Tutor persona. PERSONA_FILE points at an optional YAML file that
	// overrides both the persona text and the reply token budget.
	Persona     string `env:"PERSONA"`
	PersonaFile string `env:"PERSONA_FILE"`

	// Static assets served for any non-chat route
	StaticDir string `env:"STATIC_DIR" envDefault:"public"`
	IndexFile string `env:"INDEX_FILE" envDefault:"index.html"`

	// Observability
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders  string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if strings.TrimSpace(cfg.PersonaFile) != "" {
		persona, err := LoadPersonaConfig(cfg.PersonaFile)
		if err != nil {
			return nil, fmt.Errorf("load persona config: %w", err)
		}
		if persona.Persona != "" {
			cfg.Persona = persona.Persona
		}
		if persona.MaxReplyTokens > 0 {
			cfg.MaxReplyTokens = persona.MaxReplyTokens
		}
	}
	if strings.TrimSpace(cfg.Persona) == "" {
		cfg.Persona = DefaultPersona
	}
	if cfg.MaxReplyTokens <= 0 {
		cfg.MaxReplyTokens = DefaultMaxReplyTokens
	}

	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// PprofAddr returns the pprof listen address.
func (c *Config) PprofAddr() string {
	return fmt.Sprintf("localhost:%d", c.PprofPort)
}

var Version = "dev"
