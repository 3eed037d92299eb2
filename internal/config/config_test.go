package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("SECRETS_JSON", "")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SECRETS_JSON", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/meridian")
	t.Setenv("SERVER_HOST", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("API_KEY_HEADER", "")
	t.Setenv("BOOTSTRAP_ADMIN_KEY", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "X-API-Key", cfg.Auth.APIKeyHeader)
	assert.Empty(t, cfg.Auth.BootstrapAdminKey)
	assert.Equal(t, 25, cfg.Database.MaxConnections)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SECRETS_JSON", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/meridian")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("API_KEY_HEADER", "X-Access-Key")
	t.Setenv("BOOTSTRAP_ADMIN_KEY", "bootstrap-secret")
	t.Setenv("ENVIRONMENT", "test")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "X-Access-Key", cfg.Auth.APIKeyHeader)
	assert.Equal(t, "bootstrap-secret", cfg.Auth.BootstrapAdminKey)
	assert.Equal(t, "test", cfg.Environment)
}

func TestLoadSecretsBlobWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/from-env")
	t.Setenv("BOOTSTRAP_ADMIN_KEY", "from-env")
	t.Setenv("SECRETS_JSON", `{"DATABASE_URL":"postgres://localhost/from-secrets","BOOTSTRAP_ADMIN_KEY":"from-secrets"}`)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/from-secrets", cfg.Database.URL)
	assert.Equal(t, "from-secrets", cfg.Auth.BootstrapAdminKey)
}

func TestLoadSecretsBlobInvalid(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/meridian")
	t.Setenv("SECRETS_JSON", "{not-json")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRETS_JSON")
}
