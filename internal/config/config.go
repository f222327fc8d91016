package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Storage backends the client can use for study sets.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
// The server and the client each validate only the sections they use.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Client   ClientConfig   `mapstructure:"client"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel       string   `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	AllowedOrigins []string `mapstructure:"allowed_origins"  validate:"required,min=1"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes" validate:"required,gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=44640"`
	BCryptCost           int    `mapstructure:"bcrypt_cost"            validate:"required,gte=4,lte=31"`
}

// TokenLifetime returns the configured token lifetime as a duration.
func (a AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(a.TokenLifetimeMinutes) * time.Minute
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"      validate:"required"`
	ModelName         string `mapstructure:"model_name"          validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0,lte=60"`
}

// ClientConfig contains the settings of the study client.
type ClientConfig struct {
	APIBase                string `mapstructure:"api_base"                 validate:"required,url"`
	Storage                string `mapstructure:"storage"                  validate:"required,oneof=postgres memory"`
	SessionFile            string `mapstructure:"session_file"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	RequestTimeoutSeconds  int    `mapstructure:"request_timeout_seconds"  validate:"required,gt=0"`
	NotificationTTLSeconds int    `mapstructure:"notification_ttl_seconds" validate:"required,gt=0"`
}

// RequestTimeout returns the per-request timeout for calls to the generation service.
func (c ClientConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// NotificationTTL returns how long a notification stays visible.
func (c ClientConfig) NotificationTTL() time.Duration {
	return time.Duration(c.NotificationTTLSeconds) * time.Second
}

// ValidateServer checks every section the generation backend needs.
func (c *Config) ValidateServer() error {
	return validateSections(
		section{"server", c.Server},
		section{"database", c.Database},
		section{"auth", c.Auth},
		section{"llm", c.LLM},
	)
}

// ValidateClient checks the client section, and the database section when the
// client talks to Postgres directly.
func (c *Config) ValidateClient() error {
	sections := []section{{"client", c.Client}}
	if c.Client.Storage == StoragePostgres {
		sections = append(sections, section{"database", c.Database})
	}
	return validateSections(sections...)
}

type section struct {
	name  string
	value interface{}
}

func validateSections(sections ...section) error {
	validate := validator.New()
	for _, s := range sections {
		if err := validate.Struct(s.value); err != nil {
			return fmt.Errorf("invalid %s configuration: %w", s.name, err)
		}
	}
	return nil
}
