package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lucidpack/pkg/cache"
	"github.com/matzehuels/lucidpack/pkg/ledger"
	"github.com/matzehuels/lucidpack/pkg/observability"
	"github.com/matzehuels/lucidpack/pkg/session"
)

const testManifest = `title = "Service Map"

[[page]]
title = "Overview"

[[page.shape]]
key = "api"
type = "rectangle"
x = 0
y = 0
w = 160
h = 80
text = "API"

[[page.shape]]
key = "db"
type = "rectangle"
x = 240
y = 0
w = 160
h = 80
text = "DB"

[[page.line]]
from = "api"
to = "db"
`

// isolate points every user directory at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	t.Cleanup(observability.Reset)
	return home
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with args.
func run(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, log.InfoLevel).RootCommand()

	want := []string{"import", "dot", "bundle", "login", "logout", "whoami", "history", "cache", "config", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestBundleCommand(t *testing.T) {
	home := isolate(t)
	cfg := writeFile(t, filepath.Join(home, "config.toml"), "[images]\nprocess = false\n")
	src := writeFile(t, filepath.Join(home, "map.toml"), testManifest)
	out := filepath.Join(home, "dist")

	if err := run(t, "--config", cfg, "bundle", src, "--out", out); err != nil {
		t.Fatalf("bundle: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "service-map.lucid")); err != nil {
		t.Errorf("archive not written: %v", err)
	}
}

func TestBundleCommandTitleOverride(t *testing.T) {
	home := isolate(t)
	cfg := writeFile(t, filepath.Join(home, "config.toml"), "[images]\nprocess = false\n")
	src := writeFile(t, filepath.Join(home, "map.toml"), testManifest)
	out := filepath.Join(home, "dist")

	if err := run(t, "--config", cfg, "bundle", src, "--out", out, "--title", "Q3 Plan"); err != nil {
		t.Fatalf("bundle: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "q3-plan.lucid")); err != nil {
		t.Errorf("archive not written under the override title: %v", err)
	}
}

func TestBundleCommandBadManifest(t *testing.T) {
	home := isolate(t)
	cfg := writeFile(t, filepath.Join(home, "config.toml"), "")
	src := writeFile(t, filepath.Join(home, "bad.toml"), "[[page]]\ntitle = \"no document title\"\n")

	err := run(t, "--config", cfg, "bundle", src, "--out", filepath.Join(home, "dist"))
	if err == nil || !strings.Contains(err.Error(), "title") {
		t.Errorf("bundle of manifest without title = %v", err)
	}
}

func TestImportRequiresLogin(t *testing.T) {
	home := isolate(t)
	cfg := writeFile(t, filepath.Join(home, "config.toml"), "")
	src := writeFile(t, filepath.Join(home, "map.toml"), testManifest)

	err := run(t, "--config", cfg, "import", src)
	if err == nil || !strings.Contains(err.Error(), "login") {
		t.Errorf("import without a session = %v, want a login hint", err)
	}
}

func TestImportUploadsAndRecords(t *testing.T) {
	home := isolate(t)

	var uploads int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer stored-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		n := atomic.AddInt32(&uploads, 1)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"editUrl": fmt.Sprintf("https://lucid.app/lucidchart/%d/edit", n),
		})
	}))
	defer srv.Close()

	store, err := session.NewFileStore(filepath.Join(home, ".config", "lucidpack", "sessions"))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(context.Background(), &session.Session{ID: session.DefaultID, AccessToken: "stored-token"}); err != nil {
		t.Fatal(err)
	}

	history := filepath.Join(home, "history.jsonl")
	cfg := writeFile(t, filepath.Join(home, "config.toml"), fmt.Sprintf(`[api]
base_url = %q

[images]
process = false

[ledger]
backend = "file"
path = %q
`, srv.URL, history))
	src := writeFile(t, filepath.Join(home, "map.toml"), testManifest)

	if err := run(t, "--config", cfg, "import", src); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := atomic.LoadInt32(&uploads); got != 1 {
		t.Errorf("uploads = %d, want 1", got)
	}

	fs, err := ledger.NewFileStore(history)
	if err != nil {
		t.Fatal(err)
	}
	recs, err := fs.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("ledger has %d records, want 1", len(recs))
	}
	if recs[0].Title != "Service Map" || recs[0].Part != 0 || recs[0].EditURL != "https://lucid.app/lucidchart/1/edit" {
		t.Errorf("record = %+v", recs[0])
	}
}

func TestCacheClear(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, "images")
	cfg := writeFile(t, filepath.Join(home, "config.toml"), fmt.Sprintf("[cache]\ndir = %q\n", dir))

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "raster:abc", []byte("png"), 0); err != nil {
		t.Fatal(err)
	}

	if err := run(t, "--config", cfg, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, ok, _ := fc.Get(ctx, "raster:abc"); ok {
		t.Error("entry survived cache clear")
	}
}

func TestConfigInitSkipsLoading(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "fresh", "config.toml")

	if err := run(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "max_document_bytes") {
		t.Errorf("default config missing import settings:\n%s", data)
	}

	if err := run(t, "--config", path, "config", "init"); err == nil {
		t.Error("config init overwrote an existing file without --force")
	}
	if err := run(t, "--config", path, "config", "show"); err != nil {
		t.Errorf("config show on the written file: %v", err)
	}
}

func TestUnknownCacheBackend(t *testing.T) {
	home := isolate(t)
	cfg := writeFile(t, filepath.Join(home, "config.toml"), "[cache]\nbackend = \"memcached\"\n")

	if err := run(t, "--config", cfg, "cache", "path"); err == nil {
		t.Error("unknown cache backend accepted")
	}
}
