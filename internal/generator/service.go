package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"runtime"
	"time"

	"github.com/goliatone/go-zoe/internal/changelog"
	"github.com/goliatone/go-zoe/internal/content"
	"github.com/goliatone/go-zoe/internal/helpqa"
	"github.com/goliatone/go-zoe/internal/identity"
	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/internal/projects"
	"github.com/goliatone/go-zoe/internal/releases"
	"github.com/goliatone/go-zoe/internal/routes"
	"github.com/goliatone/go-zoe/internal/siteconfig"
	"github.com/goliatone/go-zoe/internal/themes"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled  = errors.New("generator: service disabled")
	errRendererRequired = errors.New("generator: template renderer is required")
	errContentRequired  = errors.New("generator: content source is required")
	errRoutesRequired   = errors.New("generator: route table is required")
	errConfigRequired   = errors.New("generator: site config is required")
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// BuildOptions narrows the behaviour of a generator run.
type BuildOptions struct {
	// Force rewrites outputs even when the manifest says they are unchanged.
	Force bool
	// IncludeDrafts renders unpublished posts and the drafts listing.
	IncludeDrafts bool
	// DryRun renders everything but writes nothing.
	DryRun bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	ID            string
	PagesBuilt    int
	PagesSkipped  int
	AssetsBuilt   int
	AssetsSkipped int
	Removed       []string
	Duration      time.Duration
	Rendered      []RenderedPage
	Diagnostics   []RenderDiagnostic
	Errors        []error
	DryRun        bool
}

// ContentSource loads the local content library.
type ContentSource interface {
	Load(ctx context.Context) (*content.Library, error)
}

// ReleaseSource fetches releases for the configured repositories.
type ReleaseSource interface {
	Fetch(ctx context.Context, sources []siteconfig.ReleaseSource) ([]*releases.Release, error)
}

// HelpSource loads the help catalog.
type HelpSource interface {
	Enabled() bool
	Load(ctx context.Context) (*helpqa.Catalog, error)
}

// ProjectSource lists remote repositories.
type ProjectSource interface {
	List(ctx context.Context, cfg *siteconfig.ProjectsConfig) ([]*projects.Project, error)
}

// ChangelogSource returns the merged changelog.
type ChangelogSource interface {
	All(ctx context.Context) ([]*changelog.Entry, error)
}

// ThemeResolver picks the site theme.
type ThemeResolver interface {
	Resolve(name string) *themes.Theme
}

// Dependencies lists the services required by the generator. Remote sources
// are optional; a nil source leaves its section empty.
type Dependencies struct {
	Config     *siteconfig.Config
	Content    ContentSource
	Releases   ReleaseSource
	Help       HelpSource
	Projects   ProjectSource
	Changelog  ChangelogSource
	Themes     ThemeResolver
	Routes     *routes.Table
	Renderer   interfaces.TemplateRenderer
	Storage    interfaces.OutputStorage
	Stylesheet interfaces.StylesheetProvider
	// Public is copied verbatim into the output root.
	Public fs.FS
	// OutputDir only seeds the build identifier.
	OutputDir string
	Logger    interfaces.Logger
}

// NewService wires a generator implementation with the provided dependencies.
func NewService(deps Dependencies) Service {
	return &service{
		deps:   deps,
		logger: logging.Fallback(deps.Logger),
		now:    time.Now,
	}
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	deps   Dependencies
	logger interfaces.Logger
	now    func() time.Time
}

type disabledService struct{}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	start := s.now()
	if !opts.IncludeDrafts && s.deps.Config.Build.Drafts {
		opts.IncludeDrafts = true
	}
	result := &BuildResult{
		ID:     identity.BuildUUID(s.deps.OutputDir, start.UnixNano()).String(),
		DryRun: opts.DryRun,
	}
	logger := logging.WithFields(s.logger, map[string]any{"build_id": result.ID})
	logger.Info("generator.build.start", "dry_run", opts.DryRun, "force", opts.Force, "drafts", opts.IncludeDrafts)

	data, err := s.loadData(ctx, logger, opts)
	if err != nil {
		return nil, err
	}
	info := BuildInfo{ID: result.ID, GeneratedAt: start, Drafts: opts.IncludeDrafts}
	jobs, planErrs := s.plan(data, info)
	result.Errors = append(result.Errors, planErrs...)

	rendered, diagnostics, renderErrs := s.renderAll(ctx, logger, jobs)
	result.Diagnostics = diagnostics
	result.Errors = append(result.Errors, renderErrs...)
	if err := ctx.Err(); err != nil {
		result.Duration = time.Since(start)
		return result, err
	}

	assets, assetErrs := s.siteArtifacts(ctx, data, rendered, info)
	result.Errors = append(result.Errors, assetErrs...)

	if opts.DryRun {
		result.Rendered = rendered
		result.PagesBuilt = len(rendered)
		result.AssetsBuilt = len(assets)
		result.Duration = time.Since(start)
		logger.Info("generator.build.dry_run", "pages", result.PagesBuilt, "assets", result.AssetsBuilt, "errors", len(result.Errors))
		return result, joinErrors(result.Errors)
	}

	writer := newArtifactWriter(s.deps.Storage, logger)
	summary, err := writer.persist(ctx, rendered, assets, persistOptions{
		force:       opts.Force || !s.deps.Config.Build.IncrementalEnabled(),
		buildID:     result.ID,
		generatedAt: start,
	})
	if err != nil {
		result.Errors = append(result.Errors, err)
	}
	for i := range rendered {
		if out, ok := summary.pages[rendered[i].Output]; ok {
			rendered[i].Skipped = out
		}
	}
	result.Rendered = rendered
	result.PagesBuilt = summary.pagesBuilt
	result.PagesSkipped = summary.pagesSkipped
	result.AssetsBuilt = summary.assetsBuilt
	result.AssetsSkipped = summary.assetsSkipped
	result.Removed = summary.removed
	result.Duration = time.Since(start)

	logger.Info("generator.build.complete",
		"pages_built", result.PagesBuilt,
		"pages_skipped", result.PagesSkipped,
		"assets_built", result.AssetsBuilt,
		"assets_skipped", result.AssetsSkipped,
		"removed", len(result.Removed),
		"errors", len(result.Errors),
		"duration", result.Duration,
	)
	return result, joinErrors(result.Errors)
}

// Clean removes every generated file from the output storage.
func (s *service) Clean(ctx context.Context) error {
	if s.deps.Storage == nil {
		return nil
	}
	if err := s.deps.Storage.Clean(ctx); err != nil {
		return err
	}
	s.logger.Info("generator.clean.complete")
	return nil
}

func (s *service) validate() error {
	switch {
	case s.deps.Config == nil:
		return errConfigRequired
	case s.deps.Renderer == nil:
		return errRendererRequired
	case s.deps.Content == nil:
		return errContentRequired
	case s.deps.Routes == nil:
		return errRoutesRequired
	}
	return nil
}

func (s *service) effectiveWorkerCount(jobs int) int {
	workers := s.deps.Config.Build.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if jobs > 0 && workers > jobs {
		return jobs
	}
	return workers
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}
