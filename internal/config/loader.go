// Package config provides configuration management using the Singleton pattern.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultConfigName = "config"
	defaultConfigType = "yaml"
	envPrefix         = "HPN_QUILL"

	// EnvDotenvFile names an alternative .env file to load before anything else.
	EnvDotenvFile = "HPN_QUILL_ENV_FILE"
)

// credentialEnv maps each provider key to the vendor's conventional variable.
var credentialEnv = map[string]string{
	"providers.openai.api_key":    "OPENAI_API_KEY",
	"providers.anthropic.api_key": "ANTHROPIC_API_KEY",
	"providers.gemini.api_key":    "GEMINI_API_KEY",
}

// loadConfig loads the configuration from environment variables and files.
// Priority order (highest to lowest):
// 1. Environment variables (prefixed with HPN_QUILL_, plus vendor *_API_KEY)
// 2. .env file in the working directory
// 3. config.yaml
// 4. Default values
func loadConfig(configPath string) (*Configuration, error) {
	if err := loadDotenv(); err != nil {
		return nil, &ConfigError{Op: "dotenv", Err: err}
	}

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure Viper
	v.SetConfigName(defaultConfigName)
	v.SetConfigType(defaultConfigType)

	// Add config search paths
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.hpn-quill")
	}

	// Enable environment variable override
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, env := range credentialEnv {
		if err := v.BindEnv(key, env); err != nil {
			return nil, &ConfigError{Op: "bind_env", Err: err}
		}
	}

	// Read configuration file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ConfigError{
				Op:  "read",
				Err: fmt.Errorf("failed to read config file: %w", err),
			}
		}
	}

	// Unmarshal configuration
	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{
			Op:  "unmarshal",
			Err: fmt.Errorf("failed to unmarshal config: %w", err),
		}
	}

	cfg.Store.Path = expandHome(cfg.Store.Path)
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath(cfg.Store.Backend)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.write_timeout_seconds", 60)
	v.SetDefault("server.shutdown_timeout_seconds", 15)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Provider defaults
	v.SetDefault("providers.default", "openai")
	for _, name := range []string{"openai", "anthropic", "gemini"} {
		v.SetDefault("providers."+name+".model", "")
		v.SetDefault("providers."+name+".base_url", "")
		v.SetDefault("providers."+name+".timeout_seconds", 30)
	}

	// Store defaults
	v.SetDefault("store.backend", StoreFile)
	v.SetDefault("store.path", "")
	v.SetDefault("store.save_timeout_seconds", 5)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "")
}

// loadDotenv loads HPN_QUILL_ENV_FILE, or .env when unset. Existing
// environment variables are never overwritten and a missing file is fine.
func loadDotenv() error {
	path := os.Getenv(EnvDotenvFile)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func defaultStorePath(backend string) string {
	base := filepath.Join(homeDir(), ".hpn-quill")
	switch backend {
	case StoreSQLite:
		return filepath.Join(base, "quill.db")
	case StoreFile:
		return filepath.Join(base, "drafts")
	default:
		return ""
	}
}

func expandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
