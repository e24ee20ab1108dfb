package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, StoreOxiDB, cfg.Store)
	assert.Equal(t, 3, cfg.PoolSize)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store: sqlite
sqlite_dsn: ":memory:"
addr: ":9000"
pool_size: 5
shutdown_timeout: 30s
`), 0o644))

	t.Setenv("FORMS_ADDR", ":9100")
	t.Setenv("FORMS_POOL_SIZE", "not-a-number")
	t.Setenv("FORMS_SHUTDOWN_TIMEOUT", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, ":memory:", cfg.SQLiteDSN)
	assert.Equal(t, ":9100", cfg.HTTPAddr)
	assert.Equal(t, 5, cfg.PoolSize)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store", func(c *Config) { c.Store = "mongo" }},
		{"zero pool", func(c *Config) { c.PoolSize = 0 }},
		{"postgres without dsn", func(c *Config) { c.Store = StorePostgres }},
		{"empty secret", func(c *Config) { c.JWTSecret = "" }},
		{"no shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
