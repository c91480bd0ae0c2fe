package di

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-zoe/internal/cache"
	"github.com/goliatone/go-zoe/internal/generator"
	"github.com/goliatone/go-zoe/internal/siteconfig"
	"github.com/goliatone/go-zoe/internal/storage"
	"github.com/goliatone/go-zoe/pkg/interfaces"
	"github.com/goliatone/go-zoe/pkg/testsupport"
)

type nopProvider struct{}

func (nopProvider) GetLogger(string) interfaces.Logger { return nil }

func newSiteDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testsupport.WriteFiles(t, root, map[string]string{
		"content/posts/hello.md":      "---\ntitle: Hello\ndate: 2024-02-01\ntags: [go]\n---\nFirst *post*.\n",
		"content/pages/about.md":      "---\ntitle: About\n---\nAbout us.\n",
		"content/changelog/v1.0.0.md": "---\ndate: 2024-01-10\n---\nInitial release.\n",
		"public/robots-extra.txt":     "extra",
	})
	return root
}

func TestNewContainerRequiresConfig(t *testing.T) {
	if _, err := NewContainer(context.Background(), nil); err == nil {
		t.Fatal("expected error without configuration")
	}
}

func TestContainerBuildsSite(t *testing.T) {
	root := newSiteDir(t)
	cfg := &siteconfig.Config{Title: "Zoe", URL: "https://example.com"}
	cfg.Remote.Disabled = true

	mem := storage.NewMemory()
	c, err := NewContainer(context.Background(), cfg,
		WithRoot(root),
		WithGetenv(func(string) string { return "" }),
		WithLoggerProvider(nopProvider{}),
		WithoutRemoteCache(),
		WithStorage(mem),
	)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if c.ResponseCache() != nil {
		t.Fatal("expected no response cache")
	}

	result, err := c.GeneratorService().Build(context.Background(), generator.BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.PagesBuilt == 0 {
		t.Fatal("expected pages")
	}

	for _, name := range []string{
		"index.html",
		"blog/hello/index.html",
		"about/index.html",
		"changelog/1-0-0/index.html",
		"robots-extra.txt",
		"assets/highlight.css",
	} {
		if ok, _ := mem.Exists(context.Background(), name); !ok {
			t.Fatalf("expected %s in output, have %v", name, mem.Names())
		}
	}
	post, err := mem.ReadFile(context.Background(), "blog/hello/index.html")
	if err != nil {
		t.Fatalf("read post: %v", err)
	}
	if !strings.Contains(string(post), "<em>post</em>") {
		t.Fatalf("expected rendered markdown in post:\n%s", post)
	}
}

func TestContainerOpensDefaultResponseCache(t *testing.T) {
	root := t.TempDir()
	cfg := &siteconfig.Config{Title: "Zoe"}

	c, err := NewContainer(context.Background(), cfg,
		WithRoot(root),
		WithGetenv(func(string) string { return "" }),
		WithLoggerProvider(nopProvider{}),
	)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if c.ResponseCache() == nil {
		t.Fatal("expected response cache to be opened")
	}
	if _, err := os.Stat(filepath.Join(root, siteconfig.DefaultCacheDir, RemoteCacheFile)); err != nil {
		t.Fatalf("expected cache database under the cache dir: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if c.ResponseCache() != nil {
		t.Fatal("expected cache to be released on close")
	}
}

func TestContainerResolvesOutputUnderRoot(t *testing.T) {
	root := t.TempDir()
	cfg := &siteconfig.Config{Title: "Zoe"}
	cfg.Build.OutputDir = "dist"

	c, err := NewContainer(context.Background(), cfg,
		WithRoot(root),
		WithLoggerProvider(nopProvider{}),
		WithoutRemoteCache(),
	)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	dir, ok := c.Storage().(*storage.Dir)
	if !ok {
		t.Fatalf("expected directory storage, got %T", c.Storage())
	}
	if dir.Root() != filepath.Join(root, "dist") {
		t.Fatalf("expected output under root, got %s", dir.Root())
	}
	if c.GitSync() == nil || c.Themes() == nil || c.Routes() == nil {
		t.Fatal("expected services to be wired")
	}
}

func TestContainerUsesInjectedBunDB(t *testing.T) {
	root := t.TempDir()
	db := testsupport.NewBunDB(t)
	cfg := &siteconfig.Config{Title: "Zoe"}

	c, err := NewContainer(context.Background(), cfg,
		WithRoot(root),
		WithLoggerProvider(nopProvider{}),
		WithBunDB(db),
	)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if c.ResponseCache() == nil {
		t.Fatal("expected response cache on the injected database")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("injected database must stay open: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, siteconfig.DefaultCacheDir, RemoteCacheFile)); !os.IsNotExist(err) {
		t.Fatalf("expected no cache file when a database is injected, got %v", err)
	}
}

func TestContainerPurgesExpiredResponses(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t)
	cfg := &siteconfig.Config{Title: "Zoe"}
	cfg.Remote.CacheTTL = time.Hour

	fetchedAt := time.Now().Add(-2 * CacheRetention(cfg.Remote.CacheTTL))
	seed, err := cache.NewStore(ctx, db, cache.WithClock(func() time.Time { return fetchedAt }))
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	const expired, recent = "https://api.github.com/repos/a/b/releases", "https://api.github.com/repos/a/c/releases"
	if err := seed.Store(ctx, expired, []byte("[]")); err != nil {
		t.Fatalf("seed expired: %v", err)
	}
	fetchedAt = time.Now().Add(-time.Hour)
	if err := seed.Store(ctx, recent, []byte("[]")); err != nil {
		t.Fatalf("seed recent: %v", err)
	}

	c, err := NewContainer(ctx, cfg,
		WithRoot(t.TempDir()),
		WithLoggerProvider(nopProvider{}),
		WithBunDB(db),
	)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if got, _ := c.ResponseCache().Lookup(ctx, expired); got != nil {
		t.Fatal("expected expired response to be purged on open")
	}
	if got, _ := c.ResponseCache().Lookup(ctx, recent); got == nil {
		t.Fatal("expected recent response to survive")
	}
}

func TestCacheRetention(t *testing.T) {
	cases := []struct {
		ttl  time.Duration
		want time.Duration
	}{
		{ttl: 0, want: MinCacheRetention},
		{ttl: time.Hour, want: MinCacheRetention},
		{ttl: 12 * time.Hour, want: 12 * time.Hour * CacheRetentionFactor},
	}
	for _, tc := range cases {
		if got := CacheRetention(tc.ttl); got != tc.want {
			t.Fatalf("CacheRetention(%s) = %s, want %s", tc.ttl, got, tc.want)
		}
	}
}
