// Package config provides configuration management using the Singleton pattern.
// It loads configuration from environment variables, an optional .env file and
// config.yaml using Viper.
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/hpn/hpn-quill/internal/domain"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Configuration holds all application configuration values.
type Configuration struct {
	// Server configuration
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Providers configuration
	Providers ProvidersConfig `json:"providers" mapstructure:"providers"`

	// Draft store configuration
	Store StoreConfig `json:"store" mapstructure:"store"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	// Host is the server bind address.
	Host string `json:"host" mapstructure:"host"`

	// Port is the server port number.
	Port int `json:"port" mapstructure:"port"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeoutSeconds int `json:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeoutSeconds int `json:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" mapstructure:"shutdown_timeout_seconds"`

	// AllowedOrigins is the CORS allow list. "*" allows any origin.
	AllowedOrigins []string `json:"allowed_origins" mapstructure:"allowed_origins"`
}

// ProvidersConfig holds per-vendor settings.
type ProvidersConfig struct {
	// Default is the provider active when a session starts.
	Default string `json:"default" mapstructure:"default"`

	OpenAI    ProviderConfig `json:"openai" mapstructure:"openai"`
	Anthropic ProviderConfig `json:"anthropic" mapstructure:"anthropic"`
	Gemini    ProviderConfig `json:"gemini" mapstructure:"gemini"`
}

// ProviderConfig holds one vendor's connection settings.
type ProviderConfig struct {
	// APIKey is read from the vendor's conventional environment variable.
	// It is never serialized.
	APIKey string `json:"-" mapstructure:"api_key"`

	// Model overrides the adapter's default model.
	Model string `json:"model" mapstructure:"model"`

	// BaseURL overrides the vendor endpoint.
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// TimeoutSeconds bounds a single generation call.
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// Timeout returns TimeoutSeconds as a duration.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// StoreConfig selects where saved drafts live.
type StoreConfig struct {
	// Backend is one of file, sqlite, memory.
	Backend string `json:"backend" mapstructure:"backend"`

	// Path is a directory for the file backend and a database file for sqlite.
	Path string `json:"path" mapstructure:"path"`

	// SaveTimeoutSeconds bounds each write of the draft list.
	SaveTimeoutSeconds int `json:"save_timeout_seconds" mapstructure:"save_timeout_seconds"`
}

// SaveTimeout returns SaveTimeoutSeconds as a duration, 5s when unset.
func (s StoreConfig) SaveTimeout() time.Duration {
	if s.SaveTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.SaveTimeoutSeconds) * time.Second
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" mapstructure:"level"`

	// Format is the log format (json, text).
	Format string `json:"format" mapstructure:"format"`

	// OutputPath is the file path for log output (empty for stderr).
	OutputPath string `json:"output_path" mapstructure:"output_path"`
}

// configInstance holds the singleton configuration instance.
var (
	configInstance *Configuration
	configOnce     sync.Once
	configErr      error
)

// GetConfigWithPath returns the singleton Configuration instance, loading it
// from configPath on first call. An empty path searches the default locations.
// Returns an error if configuration loading fails.
func GetConfigWithPath(configPath string) (*Configuration, error) {
	configOnce.Do(func() {
		configInstance, configErr = loadConfig(configPath)
	})
	return configInstance, configErr
}

// ResetConfig resets the singleton instance.
// This is primarily used for testing purposes.
func ResetConfig() {
	configOnce = sync.Once{}
	configInstance = nil
	configErr = nil
}

// Validate validates the configuration and returns an error if required fields are missing.
// Missing provider credentials are not an error here; they surface per request.
func (c *Configuration) Validate() error {
	var validationErrors []string

	// Validate server configuration
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		validationErrors = append(validationErrors, "server.port must be between 1 and 65535")
	}

	// Validate providers
	if _, err := domain.ParseProviderID(c.Providers.Default); err != nil {
		validationErrors = append(validationErrors, (&InvalidValueError{
			Key:           "providers.default",
			Value:         c.Providers.Default,
			AllowedValues: providerNames(),
		}).Error())
	}

	for id, p := range c.providerMap() {
		if p.TimeoutSeconds < 0 {
			validationErrors = append(validationErrors, fmt.Sprintf("providers.%s.timeout_seconds cannot be negative", id))
		}
	}

	// Validate store
	switch c.Store.Backend {
	case StoreFile, StoreSQLite:
		if c.Store.Path == "" {
			validationErrors = append(validationErrors, (&MissingKeyError{Key: "store.path"}).Error())
		}
	case StoreMemory:
	default:
		validationErrors = append(validationErrors, (&InvalidValueError{
			Key:           "store.backend",
			Value:         c.Store.Backend,
			AllowedValues: []string{StoreFile, StoreSQLite, StoreMemory},
		}).Error())
	}

	if c.Store.SaveTimeoutSeconds < 0 {
		validationErrors = append(validationErrors, "store.save_timeout_seconds cannot be negative")
	}

	// Validate logging configuration
	if c.Logging.Level != "" && !isValidLogLevel(c.Logging.Level) {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.level '%s' is invalid, must be one of: debug, info, warn, error",
			c.Logging.Level,
		))
	}

	if len(validationErrors) > 0 {
		return &ValidationError{Errors: validationErrors}
	}

	return nil
}

// isValidLogLevel checks if the log level is valid.
func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func providerNames() []string {
	names := make([]string, 0, len(domain.Providers()))
	for _, p := range domain.Providers() {
		names = append(names, p.String())
	}
	return names
}

func (c *Configuration) providerMap() map[domain.ProviderID]ProviderConfig {
	return map[domain.ProviderID]ProviderConfig{
		domain.ProviderOpenAI:    c.Providers.OpenAI,
		domain.ProviderAnthropic: c.Providers.Anthropic,
		domain.ProviderGemini:    c.Providers.Gemini,
	}
}

// Provider returns the settings for provider.
func (c *Configuration) Provider(provider domain.ProviderID) ProviderConfig {
	return c.providerMap()[provider]
}

// DefaultProvider returns the configured starting provider.
func (c *Configuration) DefaultProvider() domain.ProviderID {
	p, err := domain.ParseProviderID(c.Providers.Default)
	if err != nil {
		return domain.DefaultProvider
	}
	return p
}
