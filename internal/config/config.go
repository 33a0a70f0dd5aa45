// Package config loads lucidpack's settings.
//
// Values come, highest precedence first, from command-line flags bound by
// the CLI, LUCIDPACK_* environment variables (LUCIDPACK_IMPORT_CONCURRENCY
// for import.concurrency), the TOML config file and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "LUCIDPACK"

// Backend names.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config holds all runtime configuration.
type Config struct {
	OAuth  OAuthConfig  `mapstructure:"oauth"`
	API    APIConfig    `mapstructure:"api"`
	Import ImportConfig `mapstructure:"import"`
	Images ImagesConfig `mapstructure:"images"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Ledger LedgerConfig `mapstructure:"ledger"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
}

// OAuthConfig identifies the registered OAuth client.
type OAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectPort int    `mapstructure:"redirect_port"`
}

// APIConfig configures the upload client.
type APIConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// ImportConfig configures splitting and the partition fan-out.
type ImportConfig struct {
	MaxDocumentBytes int    `mapstructure:"max_document_bytes"`
	Concurrency      int    `mapstructure:"concurrency"`
	Validate         bool   `mapstructure:"validate"`
	DebugDir         string `mapstructure:"debug_dir"`
	WorkDir          string `mapstructure:"work_dir"`
}

// ImagesConfig configures image processing.
type ImagesConfig struct {
	Process   bool `mapstructure:"process"`
	Grayscale bool `mapstructure:"grayscale"`
	TileSize  int  `mapstructure:"tile_size"`
}

// CacheConfig selects the processed image cache.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	Dir     string        `mapstructure:"dir"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RedisConfig locates the Redis cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LedgerConfig selects where upload history is kept.
type LedgerConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// MongoConfig locates the MongoDB ledger.
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("oauth.client_id", "")
	v.SetDefault("oauth.client_secret", "")
	v.SetDefault("oauth.redirect_port", 8787)

	v.SetDefault("api.base_url", "https://api.lucid.co")
	v.SetDefault("api.timeout", 10*time.Minute)
	v.SetDefault("api.requests_per_second", 2.0)

	v.SetDefault("import.max_document_bytes", 2<<20)
	v.SetDefault("import.concurrency", 4)
	v.SetDefault("import.validate", true)
	v.SetDefault("import.debug_dir", "")
	v.SetDefault("import.work_dir", "")

	v.SetDefault("images.process", true)
	v.SetDefault("images.grayscale", false)
	v.SetDefault("images.tile_size", 1000)

	v.SetDefault("cache.backend", BackendFile)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.ttl", 7*24*time.Hour)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("ledger.backend", BackendFile)
	v.SetDefault("ledger.path", "")

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "lucidpack")
	v.SetDefault("mongo.collection", "uploads")
}

// DefaultPath returns ~/.config/lucidpack/config.toml, or the OS
// equivalent.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "lucidpack", "config.toml"), nil
}

// New returns a viper instance with defaults, environment binding and the
// config file read in. An empty path uses [DefaultPath], which may be
// missing; an explicit path must exist.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("toml")

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return v, nil
		}
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return v, nil
		}
		return nil, fmt.Errorf("config file: %w", err)
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	if !slices.Contains([]string{BackendFile, BackendRedis, BackendNone}, c.Cache.Backend) {
		return fmt.Errorf("cache.backend: unknown backend %q (file, redis, none)", c.Cache.Backend)
	}
	if !slices.Contains([]string{BackendFile, BackendMongo, BackendNone}, c.Ledger.Backend) {
		return fmt.Errorf("ledger.backend: unknown backend %q (file, mongo, none)", c.Ledger.Backend)
	}
	if c.Ledger.Backend == BackendMongo && c.Mongo.URI == "" {
		return fmt.Errorf("ledger.backend is mongo but mongo.uri is empty")
	}
	if c.Import.Concurrency < 1 {
		return fmt.Errorf("import.concurrency must be at least 1, got %d", c.Import.Concurrency)
	}
	if c.Import.MaxDocumentBytes < 1 {
		return fmt.Errorf("import.max_document_bytes must be positive, got %d", c.Import.MaxDocumentBytes)
	}
	if c.Images.TileSize < 1 {
		return fmt.Errorf("images.tile_size must be positive, got %d", c.Images.TileSize)
	}
	if c.OAuth.RedirectPort < 0 || c.OAuth.RedirectPort > 65535 {
		return fmt.Errorf("oauth.redirect_port out of range: %d", c.OAuth.RedirectPort)
	}
	return nil
}
