package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the default config location at an empty directory.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 8787, cfg.OAuth.RedirectPort)
	assert.Equal(t, "https://api.lucid.co", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Minute, cfg.API.Timeout)
	assert.Equal(t, 2.0, cfg.API.RequestsPerSecond)
	assert.Equal(t, 2<<20, cfg.Import.MaxDocumentBytes)
	assert.Equal(t, 4, cfg.Import.Concurrency)
	assert.True(t, cfg.Import.Validate)
	assert.True(t, cfg.Images.Process)
	assert.Equal(t, 1000, cfg.Images.TileSize)
	assert.Equal(t, BackendFile, cfg.Cache.Backend)
	assert.Equal(t, 7*24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, BackendFile, cfg.Ledger.Backend)
	assert.Equal(t, "lucidpack", cfg.Mongo.Database)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)

	tests := []struct {
		env   string
		val   string
		field func(Config) any
		want  any
	}{
		{"LUCIDPACK_OAUTH_CLIENT_ID", "abc", func(c Config) any { return c.OAuth.ClientID }, "abc"},
		{"LUCIDPACK_IMPORT_CONCURRENCY", "9", func(c Config) any { return c.Import.Concurrency }, 9},
		{"LUCIDPACK_IMPORT_VALIDATE", "false", func(c Config) any { return c.Import.Validate }, false},
		{"LUCIDPACK_API_TIMEOUT", "45s", func(c Config) any { return c.API.Timeout }, 45 * time.Second},
		{"LUCIDPACK_CACHE_BACKEND", "redis", func(c Config) any { return c.Cache.Backend }, BackendRedis},
		{"LUCIDPACK_IMAGES_GRAYSCALE", "true", func(c Config) any { return c.Images.Grayscale }, true},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			v, err := New("")
			require.NoError(t, err)
			cfg, err := Load(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.field(cfg))
		})
	}
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[import]
concurrency = 2
debug_dir = "/tmp/lucid-debug"

[ledger]
backend = "mongo"

[mongo]
uri = "mongodb://localhost:27017"
`), 0600))

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Import.Concurrency)
	assert.Equal(t, "/tmp/lucid-debug", cfg.Import.DebugDir)
	assert.Equal(t, BackendMongo, cfg.Ledger.Backend)
	assert.Equal(t, 2<<20, cfg.Import.MaxDocumentBytes, "unset keys keep defaults")

	t.Setenv("LUCIDPACK_IMPORT_CONCURRENCY", "6")
	v, err = New(path)
	require.NoError(t, err)
	cfg, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Import.Concurrency, "env beats file")
}

func TestLoadDefaultFile(t *testing.T) {
	isolate(t)
	path, err := DefaultPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte("[images]\ntile_size = 512\n"), 0600))

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Images.TileSize)
}

func TestNewExplicitMissing(t *testing.T) {
	isolate(t)
	_, err := New(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestNewBadFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[import\n"), 0600))
	_, err := New(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)
	v, err := New("")
	require.NoError(t, err)
	base, err := Load(v)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"cache backend", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"ledger backend", func(c *Config) { c.Ledger.Backend = "sqlite" }, "ledger.backend"},
		{"mongo without uri", func(c *Config) { c.Ledger.Backend = BackendMongo }, "mongo.uri"},
		{"concurrency", func(c *Config) { c.Import.Concurrency = 0 }, "import.concurrency"},
		{"max bytes", func(c *Config) { c.Import.MaxDocumentBytes = 0 }, "max_document_bytes"},
		{"tile size", func(c *Config) { c.Images.TileSize = -1 }, "tile_size"},
		{"port", func(c *Config) { c.OAuth.RedirectPort = 70000 }, "redirect_port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	require.NoError(t, WriteDefault(path, false))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	assert.Error(t, WriteDefault(path, false), "existing file is kept")
	assert.NoError(t, WriteDefault(path, true))

	fromFile, err := New(path)
	require.NoError(t, err)
	got, err := Load(fromFile)
	require.NoError(t, err)

	defaults, err := New("")
	require.NoError(t, err)
	want, err := Load(defaults)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMarshalMasksSecrets(t *testing.T) {
	isolate(t)
	t.Setenv("LUCIDPACK_OAUTH_CLIENT_SECRET", "s3cret")
	v, err := New("")
	require.NoError(t, err)

	data, err := Marshal(v, true)
	require.NoError(t, err)

	var out map[string]map[string]any
	require.NoError(t, toml.Unmarshal(data, &out))
	assert.Equal(t, "****", out["oauth"]["client_secret"])
	assert.Equal(t, "10m0s", out["api"]["timeout"])

	data, err = Marshal(v, false)
	require.NoError(t, err)
	assert.Contains(t, string(data), "s3cret")
}
