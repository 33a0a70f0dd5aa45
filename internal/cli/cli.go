// Package cli implements the lucidpack command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matzehuels/lucidpack/internal/config"
	"github.com/matzehuels/lucidpack/pkg/buildinfo"
	"github.com/matzehuels/lucidpack/pkg/bundle"
	"github.com/matzehuels/lucidpack/pkg/cache"
	"github.com/matzehuels/lucidpack/pkg/ledger"
	"github.com/matzehuels/lucidpack/pkg/lucidapi"
	"github.com/matzehuels/lucidpack/pkg/observability"
	"github.com/matzehuels/lucidpack/pkg/pipeline"
	"github.com/matzehuels/lucidpack/pkg/raster"
	"github.com/matzehuels/lucidpack/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "lucidpack"

	// redisPrefix namespaces processed images in a shared Redis.
	redisPrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the --config flag; empty means the default location.
	ConfigPath string

	v   *viper.Viper
	cfg config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "lucidpack builds Lucid standard-import documents and uploads them",
		Long: `lucidpack turns TOML manifests and Graphviz graphs into Lucid standard-import
bundles. Documents too large for one upload are split by page into several
documents, which are bundled and uploaded concurrently.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default ~/.config/lucidpack/config.toml)")

	root.AddCommand(c.importCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.bundleCommand())
	root.AddCommand(c.loginCommand())
	root.AddCommand(c.logoutCommand())
	root.AddCommand(c.whoamiCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration once per process and registers the
// logging hooks.
func (c *CLI) loadConfig() error {
	if c.v != nil {
		return nil
	}
	v, err := config.New(c.ConfigPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	c.v, c.cfg = v, cfg

	hooks := &logHooks{logger: c.Logger}
	observability.SetImportHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The returned cleanup
// closes the cache and the ledger.
func (c *CLI) newRunner(ctx context.Context, upload bool) (*pipeline.Runner, func(), error) {
	var images bundle.Expander
	closers := []func(){}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if c.cfg.Images.Process {
		ch, err := c.newCache(ctx)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = ch.Close() })
		p := raster.NewProcessor(ch, c.cfg.Images.Grayscale, c.cfg.Images.TileSize, c.Logger)
		p.TTL = c.cfg.Cache.TTL
		images = p
	}

	asm := bundle.NewAssembler(c.cfg.Import.WorkDir, images, c.Logger)

	var up pipeline.Uploader
	var store ledger.Store = ledger.Nop{}
	if upload {
		up = c.newClient()
		s, err := c.newLedger(ctx)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = s.Close(context.Background()) })
		store = s
	}

	return pipeline.NewRunner(asm, up, store, c.Logger), cleanup, nil
}

// importOptions maps the configuration onto pipeline options.
func (c *CLI) importOptions(title string) pipeline.Options {
	return pipeline.Options{
		Title:          title,
		MaxBytes:       c.cfg.Import.MaxDocumentBytes,
		Concurrency:    c.cfg.Import.Concurrency,
		SkipValidation: !c.cfg.Import.Validate,
		DebugDir:       c.cfg.Import.DebugDir,
		Logger:         c.Logger,
	}
}

func (c *CLI) newClient() *lucidapi.Client {
	return lucidapi.NewClient(lucidapi.Config{
		BaseURL:           c.cfg.API.BaseURL,
		Timeout:           c.cfg.API.Timeout,
		RequestsPerSecond: c.cfg.API.RequestsPerSecond,
		Logger:            c.Logger,
	})
}

// newCache opens the processed image cache selected by cache.backend.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.cfg.Redis.Addr,
			Password: c.cfg.Redis.Password,
			DB:       c.cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return cache.NewScoped(rc, redisPrefix), nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("image cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// newLedger opens the upload history selected by ledger.backend.
func (c *CLI) newLedger(ctx context.Context) (ledger.Store, error) {
	switch c.cfg.Ledger.Backend {
	case config.BackendNone:
		return ledger.Nop{}, nil
	case config.BackendMongo:
		return ledger.NewMongoStore(ctx, ledger.MongoConfig{
			URI:        c.cfg.Mongo.URI,
			Database:   c.cfg.Mongo.Database,
			Collection: c.cfg.Mongo.Collection,
		})
	default:
		path := c.cfg.Ledger.Path
		if path == "" {
			var err error
			if path, err = ledger.DefaultPath(); err != nil {
				return nil, fmt.Errorf("ledger path: %w", err)
			}
		}
		return ledger.NewFileStore(path)
	}
}

// =============================================================================
// Sessions
// =============================================================================

func (c *CLI) oauthConfig() lucidapi.OAuthConfig {
	return lucidapi.OAuthConfig{
		ClientID:     c.cfg.OAuth.ClientID,
		ClientSecret: c.cfg.OAuth.ClientSecret,
	}
}

// session returns the stored login, refreshed if it has expired.
func (c *CLI) session(ctx context.Context) (*session.Session, error) {
	store, err := session.NewFileStore("")
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	provider := session.NewOAuthProvider(store, session.DefaultID, c.oauthConfig().OAuth2(), c.Logger)
	sess, err := provider.Session(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w (run '%s login' first)", err, appName)
	}
	return sess, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns cache.dir, or the OS cache directory.
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	return cache.DefaultDir()
}
