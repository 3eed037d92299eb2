package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Logging     LoggingConfig
	Environment string
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MaxIdle        int
}

type AuthConfig struct {
	// APIKeyHeader is the request header carrying the opaque access key.
	APIKeyHeader string
	// BootstrapAdminKey, when set, authenticates as the root user even
	// before any user row exists. Empty disables the bootstrap path.
	BootstrapAdminKey string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment. A SECRETS_JSON blob (a
// flat JSON object of key/value pairs) takes precedence over individual
// env vars for the secrets it contains.
func Load() (Config, error) {
	secrets, err := loadSecrets(os.Getenv("SECRETS_JSON"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			URL:            secretOr(secrets, "DATABASE_URL", getEnv("DATABASE_URL", "")),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
			MaxIdle:        getEnvInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
		},
		Auth: AuthConfig{
			APIKeyHeader:      getEnv("API_KEY_HEADER", "X-API-Key"),
			BootstrapAdminKey: secretOr(secrets, "BOOTSTRAP_ADMIN_KEY", getEnv("BOOTSTRAP_ADMIN_KEY", "")),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func loadSecrets(blob string) (map[string]string, error) {
	if blob == "" {
		return nil, nil
	}
	secrets := map[string]string{}
	if err := json.Unmarshal([]byte(blob), &secrets); err != nil {
		return nil, fmt.Errorf("parse SECRETS_JSON: %w", err)
	}
	return secrets, nil
}

func secretOr(secrets map[string]string, key, fallback string) string {
	if value, ok := secrets[key]; ok && value != "" {
		return value
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
