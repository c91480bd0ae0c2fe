// Package zoe builds a static personal site (blog, projects, releases,
// changelog and help pages) from Markdown content and a YAML configuration.
package zoe

import (
	"context"
	"net/http"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-zoe/internal/commands"
	sitecmd "github.com/goliatone/go-zoe/internal/commands/site"
	"github.com/goliatone/go-zoe/internal/content"
	"github.com/goliatone/go-zoe/internal/di"
	"github.com/goliatone/go-zoe/internal/generator"
	"github.com/goliatone/go-zoe/internal/gitsync"
	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/internal/themes"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

// GeneratorService exports the static build contract.
type GeneratorService = generator.Service

// BuildOptions and BuildResult describe one generator run.
type (
	BuildOptions = generator.BuildOptions
	BuildResult  = generator.BuildResult
)

// SyncResult reports what happened to one git content source.
type SyncResult = gitsync.Result

// Library is the loaded local content.
type Library = content.Library

// Command messages accepted by the handlers returned from Commands.
type (
	BuildSiteCommand   = sitecmd.BuildSiteCommand
	SyncContentCommand = sitecmd.SyncContentCommand
	CleanSiteCommand   = sitecmd.CleanSiteCommand
	ResultEnvelope     = sitecmd.ResultEnvelope
)

// Option customises the module wiring.
type Option = di.Option

// WithRoot sets the project directory.
func WithRoot(root string) Option { return di.WithRoot(root) }

// WithGetenv overrides environment lookups (GITHUB_TOKEN, ZOE_ENV, ...).
func WithGetenv(getenv func(string) string) Option { return di.WithGetenv(getenv) }

// WithLoggerProvider replaces the go-logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return di.WithLoggerProvider(provider)
}

// WithHTTPClient replaces the client used for GitHub and Gitee calls.
func WithHTTPClient(client *http.Client) Option { return di.WithHTTPClient(client) }

// WithBunDB keeps the response cache in an existing database.
func WithBunDB(db *bun.DB) Option { return di.WithBunDB(db) }

// WithStorage overrides where generated files are written.
func WithStorage(store interfaces.OutputStorage) Option { return di.WithStorage(store) }

// WithoutRemoteCache disables the persisted API response cache.
func WithoutRemoteCache() Option { return di.WithoutRemoteCache() }

// Commands groups the site command handlers.
type Commands struct {
	Build *sitecmd.BuildSiteHandler
	Sync  *sitecmd.SyncContentHandler
	Clean *sitecmd.CleanSiteHandler
}

// Module is the top level site runtime façade.
type Module struct {
	container *di.Container
	commands  *Commands
}

// New wires a module for cfg.
func New(cfg *Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(context.Background(), cfg, opts...)
	if err != nil {
		return nil, err
	}

	logger := func(module string) interfaces.Logger {
		return commands.CommandLogger(container.LoggerProvider(), module)
	}
	service := container.GeneratorService()
	syncer := container.GitSync()
	gates := sitecmd.FeatureGates{}

	return &Module{
		container: container,
		commands: &Commands{
			Build: sitecmd.NewBuildSiteHandler(service, syncer, logger("site"), gates),
			Sync:  sitecmd.NewSyncContentHandler(syncer, logger("sync")),
			Clean: sitecmd.NewCleanSiteHandler(service, logger("site"), gates),
		},
	}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Config returns the normalised site configuration.
func (m *Module) Config() *Config {
	return m.container.Config
}

// Generator returns the static build service.
func (m *Module) Generator() GeneratorService {
	return m.container.GeneratorService()
}

// GitSync returns the git content syncer.
func (m *Module) GitSync() *gitsync.Syncer {
	return m.container.GitSync()
}

// Content loads the local content library.
func (m *Module) Content(ctx context.Context) (*Library, error) {
	return m.container.ContentLoader().Load(ctx)
}

// Themes returns the built-in theme catalog.
func (m *Module) Themes() *themes.Catalog {
	return m.container.Themes()
}

// Commands returns the command handlers.
func (m *Module) Commands() *Commands {
	return m.commands
}

// Logger returns a module scoped logger from the configured provider.
func (m *Module) Logger(module string) interfaces.Logger {
	return logging.ModuleLogger(m.container.LoggerProvider(), module)
}

// Close releases resources held by the module.
func (m *Module) Close() error {
	return m.container.Close()
}
