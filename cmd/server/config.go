package main

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config is loaded from the environment. Flat keys keep deployment simple;
// everything has a working default except the signing key and runtime URL.
type Config struct {
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	ToolsAddr string `env:"TOOLS_ADDR" envDefault:":8090"`

	DSN string `env:"DATABASE_DSN" envDefault:"file:supportdesk.db?cache=shared"`

	SigningKey     string `env:"AUTH_SIGNING_KEY"`
	SigningMethod  string `env:"AUTH_SIGNING_METHOD" envDefault:"HS256"`
	AuthScheme     string `env:"AUTH_SCHEME" envDefault:"bearer"`
	ContextKey     string `env:"AUTH_CONTEXT_KEY" envDefault:"auth_user"`
	UserIDFallback bool   `env:"AUTH_USER_ID_FALLBACK" envDefault:"true"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	RuntimeURL    string        `env:"AGENT_RUNTIME_URL"`
	RuntimeAPIKey string        `env:"AGENT_RUNTIME_API_KEY"`
	RuntimeModel  string        `env:"AGENT_RUNTIME_MODEL" envDefault:"gpt-4.1-mini"`
	StreamTimeout time.Duration `env:"AGENT_STREAM_TIMEOUT" envDefault:"5m"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) GetSigningKey() string {
	return c.SigningKey
}

func (c *Config) GetSigningMethod() string {
	return c.SigningMethod
}

func (c *Config) GetAuthScheme() string {
	return c.AuthScheme
}

func (c *Config) GetContextKey() string {
	return c.ContextKey
}

func (c *Config) GetUserIDFallback() bool {
	return c.UserIDFallback
}
