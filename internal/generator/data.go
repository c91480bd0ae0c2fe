package generator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-zoe/internal/changelog"
	"github.com/goliatone/go-zoe/internal/content"
	"github.com/goliatone/go-zoe/internal/helpqa"
	"github.com/goliatone/go-zoe/internal/projects"
	"github.com/goliatone/go-zoe/internal/releases"
	"github.com/goliatone/go-zoe/internal/themes"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

// siteData is everything one build renders from.
type siteData struct {
	library   *content.Library
	releases  []*releases.Release
	help      *helpqa.Catalog
	repos     []*projects.Project
	changelog []*changelog.Entry
	theme     *themes.Theme
	drafts    bool
}

// loadData reads the local library, then fetches the remote sections
// concurrently. A failing remote section is logged and left empty.
func (s *service) loadData(ctx context.Context, logger interfaces.Logger, opts BuildOptions) (*siteData, error) {
	library, err := s.deps.Content.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("generator: load content: %w", err)
	}
	if library == nil {
		library = content.NewLibrary(nil, nil, nil, nil)
	}

	data := &siteData{library: library, drafts: opts.IncludeDrafts}
	if s.deps.Themes != nil {
		data.theme = s.deps.Themes.Resolve(s.deps.Config.Theme)
	}

	cfg := s.deps.Config
	group, gctx := errgroup.WithContext(ctx)

	if s.deps.Releases != nil && len(cfg.ReleaseRepo) > 0 {
		group.Go(func() error {
			list, err := s.deps.Releases.Fetch(gctx, cfg.ReleaseRepo)
			if err != nil {
				logger.Warn("generator.releases.failed", "error", err)
				return nil
			}
			data.releases = list
			return nil
		})
	}
	if s.deps.Help != nil && s.deps.Help.Enabled() {
		group.Go(func() error {
			catalog, err := s.deps.Help.Load(gctx)
			if err != nil {
				logger.Warn("generator.helpqa.failed", "error", err)
				return nil
			}
			data.help = catalog
			return nil
		})
	}
	if s.deps.Projects != nil && cfg.ProjectsEnabled() {
		group.Go(func() error {
			repos, err := s.deps.Projects.List(gctx, cfg.Projects)
			if err != nil {
				logger.Warn("generator.projects.failed", "error", err)
				return nil
			}
			data.repos = repos
			return nil
		})
	}
	if s.deps.Changelog != nil {
		group.Go(func() error {
			entries, err := s.deps.Changelog.All(gctx)
			if err != nil {
				logger.Warn("generator.changelog.failed", "error", err)
				return nil
			}
			data.changelog = entries
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug("generator.data.loaded",
		"posts", len(library.Posts(opts.IncludeDrafts)),
		"pages", len(library.Pages()),
		"releases", len(data.releases),
		"repos", len(data.repos),
		"changelog", len(data.changelog),
	)
	return data, nil
}
