// Package di wires the site services from a loaded configuration.
package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-zoe/internal/cache"
	"github.com/goliatone/go-zoe/internal/changelog"
	"github.com/goliatone/go-zoe/internal/content"
	"github.com/goliatone/go-zoe/internal/generator"
	"github.com/goliatone/go-zoe/internal/gitsync"
	"github.com/goliatone/go-zoe/internal/helpqa"
	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/internal/logging/gologger"
	"github.com/goliatone/go-zoe/internal/markdown"
	"github.com/goliatone/go-zoe/internal/projects"
	"github.com/goliatone/go-zoe/internal/releases"
	"github.com/goliatone/go-zoe/internal/remote"
	"github.com/goliatone/go-zoe/internal/routes"
	"github.com/goliatone/go-zoe/internal/siteconfig"
	"github.com/goliatone/go-zoe/internal/storage"
	"github.com/goliatone/go-zoe/internal/templates"
	"github.com/goliatone/go-zoe/internal/themes"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

// RemoteCacheFile is the default response cache database, relative to the
// build cache directory.
const RemoteCacheFile = "remote.db"

// Responses older than CacheRetentionFactor times the cache TTL, and never
// less than MinCacheRetention, are purged when the response cache opens.
const (
	CacheRetentionFactor = 24
	MinCacheRetention    = 7 * 24 * time.Hour
)

var errConfigRequired = errors.New("di: site configuration is required")

// Container owns the services of one site.
type Container struct {
	Config *siteconfig.Config

	root           string
	getenv         func(string) string
	loggerProvider interfaces.LoggerProvider
	httpClient     *http.Client
	bunDB          *bun.DB
	responseCache  remote.ResponseCache
	noRemoteCache  bool
	cacheService   repocache.CacheService
	keySerializer  repocache.KeySerializer
	storage        interfaces.OutputStorage
	template       interfaces.TemplateRenderer
	public         fs.FS

	cacheStore *cache.Store
	markdown   *markdown.Renderer
	remote     *remote.Client
	content    *content.Loader
	releases   *releases.Service
	help       *helpqa.Service
	projects   *projects.Service
	themes     *themes.Catalog
	routes     *routes.Table
	syncer     *gitsync.Syncer
	generator  generator.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithRoot sets the project directory. Relative config paths resolve against it.
func WithRoot(root string) Option {
	return func(c *Container) {
		c.root = root
	}
}

// WithGetenv overrides environment lookups.
func WithGetenv(getenv func(string) string) Option {
	return func(c *Container) {
		if getenv != nil {
			c.getenv = getenv
		}
	}
}

// WithLoggerProvider overrides the go-logger backed provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithHTTPClient replaces the client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		c.httpClient = client
	}
}

// WithBunDB stores remote responses in an existing database instead of the
// default SQLite file. The caller keeps ownership of db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithResponseCache replaces the persisted response cache entirely.
func WithResponseCache(rc remote.ResponseCache) Option {
	return func(c *Container) {
		c.responseCache = rc
	}
}

// WithoutRemoteCache disables the persisted response cache.
func WithoutRemoteCache() Option {
	return func(c *Container) {
		c.noRemoteCache = true
	}
}

// WithCache decorates the response repository with a query cache.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithStorage overrides the output storage. Defaults to the build output dir.
func WithStorage(store interfaces.OutputStorage) Option {
	return func(c *Container) {
		c.storage = store
	}
}

// WithTemplate overrides the template renderer.
func WithTemplate(tr interfaces.TemplateRenderer) Option {
	return func(c *Container) {
		c.template = tr
	}
}

// WithPublicFS overrides the directory copied verbatim into the output.
func WithPublicFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.public = fsys
	}
}

// NewContainer wires every service for cfg. The configuration is normalised
// in place.
func NewContainer(ctx context.Context, cfg *siteconfig.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, errConfigRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg.Normalize()

	c := &Container{
		Config: cfg,
		root:   ".",
		getenv: os.Getenv,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRemote(ctx)

	renderer := markdown.NewRenderer(markdown.Options{
		Highlight:  cfg.Markdown.HighlightEnabled(),
		LightStyle: cfg.Markdown.LightStyle,
		DarkStyle:  cfg.Markdown.DarkStyle,
		Safe:       cfg.Markdown.Safe,
		HardWraps:  cfg.Markdown.HardWraps,
		Logger:     logging.MarkdownLogger(c.loggerProvider),
	})
	c.markdown = renderer

	c.content = content.NewLoader(content.Options{
		Config:   cfg,
		Root:     c.root,
		Getenv:   c.getenv,
		Renderer: renderer,
		Logger:   logging.ContentLogger(c.loggerProvider),
	})

	remoteLogger := logging.RemoteLogger(c.loggerProvider)
	github := c.remote.GitHub()
	c.releases = releases.NewService(releases.Options{
		GitHub:   github,
		Gitee:    c.remote.Gitee(),
		Renderer: renderer,
		Logger:   remoteLogger,
	})
	c.help = helpqa.NewService(helpqa.Options{
		Config:   cfg.HelpQA,
		GitHub:   github,
		Renderer: renderer,
		Logger:   remoteLogger,
	})
	c.projects = projects.NewService(github, remoteLogger)

	catalog, err := themes.NewCatalog(logging.ModuleLogger(c.loggerProvider, "zoe.themes"))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("di: themes: %w", err)
	}
	c.themes = catalog

	table, err := routes.New(cfg)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("di: routes: %w", err)
	}
	c.routes = table

	if c.template == nil {
		tr, err := templates.New(templates.Options{
			Dir:    c.path(cfg.Build.TemplatesDir),
			URLs:   table,
			Logger: logging.ModuleLogger(c.loggerProvider, "zoe.templates"),
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("di: templates: %w", err)
		}
		c.template = tr
	}

	outputDir := c.path(cfg.Build.OutputDir)
	if c.storage == nil {
		c.storage = storage.NewDir(outputDir)
	}
	if c.public == nil {
		c.public = os.DirFS(c.path(cfg.Build.PublicDir))
	}

	c.syncer = gitsync.NewSyncer(gitsync.Options{
		Config: cfg,
		Root:   c.root,
		Getenv: c.getenv,
		Logger: logging.GitSyncLogger(c.loggerProvider),
	})

	c.generator = generator.NewService(generator.Dependencies{
		Config:   cfg,
		Content:  c.content,
		Releases: c.releases,
		Help:     c.help,
		Projects: c.projects,
		Changelog: &changelogSource{
			cfg:      cfg,
			root:     c.root,
			getenv:   c.getenv,
			github:   github,
			renderer: renderer,
			logger:   logging.ContentLogger(c.loggerProvider),
		},
		Themes:     catalog,
		Routes:     table,
		Renderer:   c.template,
		Storage:    c.storage,
		Stylesheet: renderer,
		Public:     c.public,
		OutputDir:  outputDir,
		Logger:     logging.GeneratorLogger(c.loggerProvider),
	})

	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	settings := c.Config.Logging
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     settings.Level,
		Format:    settings.Format,
		AddSource: settings.AddSource,
		Focus:     settings.Focus,
	})
	if err != nil {
		return fmt.Errorf("di: logger: %w", err)
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureCacheDefaults() {
	if c.cacheService != nil {
		if c.keySerializer == nil {
			c.keySerializer = repocache.NewDefaultKeySerializer()
		}
		return
	}
	if c.noRemoteCache || c.Config.Remote.NoCache {
		return
	}
	cfg := repocache.DefaultConfig()
	if ttl := c.Config.Remote.CacheTTL; ttl > 0 {
		cfg.TTL = ttl
	}
	service, err := repocache.NewCacheService(cfg)
	if err != nil {
		logging.CacheLogger(c.loggerProvider).Warn("cache.query_cache.disabled", "error", err)
		return
	}
	c.cacheService = service
	c.keySerializer = repocache.NewDefaultKeySerializer()
}

// configureRemote builds the API client. A cache that cannot be opened is
// logged and the client runs without one.
func (c *Container) configureRemote(ctx context.Context) {
	settings := c.Config.Remote
	logger := logging.RemoteLogger(c.loggerProvider)

	rc := c.responseCache
	if rc == nil && !c.noRemoteCache && !settings.NoCache {
		store, err := c.openCacheStore(ctx)
		if err != nil {
			logging.CacheLogger(c.loggerProvider).Warn("cache.open.failed", "error", err)
		} else {
			c.cacheStore = store
			rc = store
			c.purgeCache(ctx, store)
		}
	}

	opts := []remote.Option{
		remote.WithLogger(logger),
		remote.WithHTTPClient(c.httpClient),
	}
	if rc != nil {
		opts = append(opts, remote.WithCache(rc))
	}
	c.remote = remote.NewClient(remote.Config{
		GitHubAPI:   settings.GitHubAPI,
		GiteeAPI:    settings.GiteeAPI,
		UserAgent:   settings.UserAgent,
		Timeout:     settings.Timeout,
		CacheTTL:    settings.CacheTTL,
		GitHubToken: strings.TrimSpace(c.getenv("GITHUB_TOKEN")),
		GiteeToken:  strings.TrimSpace(c.getenv("GITEE_TOKEN")),
		Disabled:    settings.Disabled,
	}, opts...)
}

// CacheRetention returns how long cached responses are kept for ttl.
func CacheRetention(ttl time.Duration) time.Duration {
	if retention := ttl * CacheRetentionFactor; retention > MinCacheRetention {
		return retention
	}
	return MinCacheRetention
}

func (c *Container) purgeCache(ctx context.Context, store *cache.Store) {
	retention := CacheRetention(c.Config.Remote.CacheTTL)
	if _, err := store.Purge(ctx, retention); err != nil {
		logging.CacheLogger(c.loggerProvider).Warn("cache.purge.failed", "error", err, "retention", retention)
	}
}

func (c *Container) openCacheStore(ctx context.Context) (*cache.Store, error) {
	opts := []cache.Option{cache.WithLogger(logging.CacheLogger(c.loggerProvider))}
	if c.cacheService != nil {
		opts = append(opts, cache.WithQueryCache(c.cacheService, c.keySerializer))
	}
	if c.bunDB != nil {
		return cache.NewStore(ctx, c.bunDB, opts...)
	}
	path := strings.TrimSpace(c.Config.Remote.CacheDB)
	switch {
	case path == cache.MemoryPath:
	case path == "":
		path = filepath.Join(c.path(c.Config.Build.CacheDir), RemoteCacheFile)
	default:
		path = c.path(path)
	}
	return cache.Open(ctx, path, opts...)
}

func (c *Container) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.root, p)
}

// Close releases the response cache when the container opened it.
func (c *Container) Close() error {
	if c.cacheStore == nil {
		return nil
	}
	err := c.cacheStore.Close()
	c.cacheStore = nil
	return err
}

// Root returns the project directory.
func (c *Container) Root() string { return c.root }

// LoggerProvider returns the provider used for module loggers.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// GeneratorService returns the static build service.
func (c *Container) GeneratorService() generator.Service { return c.generator }

// GitSync returns the git content syncer.
func (c *Container) GitSync() *gitsync.Syncer { return c.syncer }

// ContentLoader returns the local content loader.
func (c *Container) ContentLoader() *content.Loader { return c.content }

// MarkdownRenderer returns the shared Markdown renderer.
func (c *Container) MarkdownRenderer() *markdown.Renderer { return c.markdown }

// RemoteClient returns the GitHub/Gitee API client.
func (c *Container) RemoteClient() *remote.Client { return c.remote }

// ResponseCache returns the opened response cache, or nil.
func (c *Container) ResponseCache() *cache.Store { return c.cacheStore }

// Themes returns the built-in theme catalog.
func (c *Container) Themes() *themes.Catalog { return c.themes }

// Routes returns the site route table.
func (c *Container) Routes() *routes.Table { return c.routes }

// Storage returns the output storage.
func (c *Container) Storage() interfaces.OutputStorage { return c.storage }

// TemplateRenderer returns the page renderer.
func (c *Container) TemplateRenderer() interfaces.TemplateRenderer { return c.template }

// changelogSource resolves content directories on every call so entries from
// freshly synced git sources are picked up.
type changelogSource struct {
	cfg      *siteconfig.Config
	root     string
	getenv   func(string) string
	github   changelog.ReleaseLister
	renderer interfaces.MarkdownRenderer
	logger   interfaces.Logger
}

func (s *changelogSource) All(ctx context.Context) ([]*changelog.Entry, error) {
	resolved := content.ResolveDirs(s.cfg, s.root, s.getenv)
	dirs := make([]string, 0, len(resolved))
	for _, dir := range resolved {
		dirs = append(dirs, dir.Path)
	}
	svc := changelog.NewService(changelog.Options{
		Config:   s.cfg,
		Dirs:     dirs,
		GitHub:   s.github,
		Renderer: s.renderer,
		Logger:   s.logger,
	})
	return svc.All(ctx)
}
