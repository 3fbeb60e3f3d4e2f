package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cargo-relay.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 6001, cfg.Port)
	assert.Equal(t, "http", cfg.Protocol)
	assert.Equal(t, "/api/user/me", cfg.UserEndpoint)
	assert.Equal(t, "redis", cfg.Database.Driver)
	assert.True(t, cfg.Subscribers.HTTP)
	assert.True(t, cfg.Subscribers.Redis)
	assert.False(t, cfg.Subscribers.NATS)
	assert.Equal(t, "transport-coords", cfg.Telemetry.Event)
	assert.Equal(t, 60*time.Second, cfg.Telemetry.FlushInterval)
	assert.False(t, cfg.APIOriginAllow.AllowCors)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `{
		"port": 7002,
		"devMode": true,
		"authHost": "http://identity.internal",
		"subscribers": {"http": true, "redis": false, "nats": true}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7002, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "http://identity.internal", cfg.AuthHost)
	assert.False(t, cfg.Subscribers.Redis)
	assert.True(t, cfg.Subscribers.NATS)
	// Untouched sections keep their defaults.
	assert.Equal(t, "/api/user/me", cfg.UserEndpoint)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfigFile(t, `{"port": 7002, "hosst": "typo"}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hosst")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"port out of range", `{"port": 70000}`},
		{"bad protocol", `{"protocol": "gopher"}`},
		{"bad auth host", `{"authHost": "not a url"}`},
		{"bad database driver", `{"databaseConfig": {"driver": "postgres"}}`},
		{"relative user endpoint", `{"userEndpoint": "api/user/me"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AUTH_HOST", "http://identity.example")
	t.Setenv("RELAY_PORT", "9001")
	t.Setenv("RELAY_DEV_MODE", "true")
	t.Setenv("TELEMETRY_FLUSH_INTERVAL", "30s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://identity.example", cfg.AuthHost)
	assert.Equal(t, 9001, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 30*time.Second, cfg.Telemetry.FlushInterval)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("RELAY_PORT", "9001")
	path := writeConfigFile(t, `{"port": 7002}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Port)
}

func TestLoadIgnoresMalformedEnvValues(t *testing.T) {
	t.Setenv("RELAY_PORT", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 6001, cfg.Port)
}
