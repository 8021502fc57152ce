package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andrebq/packbox/store"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "packbox.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
bind = "127.0.0.1:9000"
db_driver = "pgx"
db_dsn = "postgres://packbox@localhost/packbox"
token_ttl = "15m"
metrics = false
cors_origins = ["https://example.com"]
`)
	cfg, err := LoadFile(path, Defaults())
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.Bind)
	require.Equal(t, store.DriverPostgres, cfg.DBDriver)
	require.Equal(t, 15*time.Minute, cfg.TokenTTL)
	require.False(t, cfg.Metrics)
	require.Equal(t, []string{"https://example.com"}, cfg.CORSOrigins)
	// keys absent from the file keep their base value
	require.Equal(t, Defaults().CacheTTL, cfg.CacheTTL)
	require.Equal(t, Defaults().LogLevel, cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"), Defaults())
	require.Error(t, err)

	_, err = LoadFile(writeConfig(t, `unknown_key = 1`), Defaults())
	require.Error(t, err)

	_, err = LoadFile(writeConfig(t, `token_ttl = "soon"`), Defaults())
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"bind":    func(c *Config) { c.Bind = "" },
		"driver":  func(c *Config) { c.DBDriver = "mysql" },
		"dsn":     func(c *Config) { c.DBDSN = "" },
		"secret":  func(c *Config) { c.SecretEnv = "" },
		"token":   func(c *Config) { c.TokenTTL = 0 },
		"cache":   func(c *Config) { c.CacheTTL = -time.Second },
		"workers": func(c *Config) { c.KDFWorkers = -1 },
	} {
		cfg := Defaults()
		mutate(&cfg)
		require.Error(t, cfg.Validate(), name)
	}
	cfg := Defaults()
	cfg.DBDriver = "mysql"
	var unsupported store.UnsupportedDriver
	require.ErrorAs(t, cfg.Validate(), &unsupported)
}
