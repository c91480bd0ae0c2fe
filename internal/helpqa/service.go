package helpqa

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/internal/remote"
	"github.com/goliatone/go-zoe/internal/siteconfig"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

// IssueTracker lists repository labels and issues.
type IssueTracker interface {
	Labels(ctx context.Context, repo string) ([]remote.GitHubLabel, error)
	Issues(ctx context.Context, repo string) ([]remote.GitHubIssue, error)
}

// Options configure a Service.
type Options struct {
	Config   *siteconfig.HelpQAConfig
	GitHub   IssueTracker
	Renderer interfaces.MarkdownRenderer
	Logger   interfaces.Logger
}

// Service builds a help catalog from GitHub issues.
type Service struct {
	cfg      *siteconfig.HelpQAConfig
	github   IssueTracker
	renderer interfaces.MarkdownRenderer
	logger   interfaces.Logger
}

func NewService(opts Options) *Service {
	return &Service{
		cfg:      opts.Config,
		github:   opts.GitHub,
		renderer: opts.Renderer,
		logger:   logging.Fallback(opts.Logger),
	}
}

// Enabled reports whether a help repository is configured.
func (s *Service) Enabled() bool {
	return s.cfg != nil && strings.TrimSpace(s.cfg.Repo) != ""
}

// Load fetches labels and issues concurrently. Fetch failures are logged and
// leave their half of the catalog empty; unsupported providers yield an
// empty catalog.
func (s *Service) Load(ctx context.Context) (*Catalog, error) {
	if !s.Enabled() {
		return NewCatalog(nil, nil), nil
	}
	repo := strings.TrimSpace(s.cfg.Repo)
	provider := strings.ToLower(s.cfg.Provider)
	if provider != "" && provider != siteconfig.DefaultProvider {
		s.logger.Warn("helpqa.provider.unsupported", "provider", provider, "repo", repo)
		return NewCatalog(nil, nil), nil
	}
	if s.github == nil {
		return NewCatalog(nil, nil), nil
	}

	prefix := s.cfg.LabelPrefix
	var (
		labels []remote.GitHubLabel
		issues []remote.GitHubIssue
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		list, err := s.github.Labels(groupCtx, repo)
		if err != nil {
			s.logger.Warn("helpqa.labels.fetch_failed", "repo", repo, "error", err)
			return nil
		}
		labels = list
		return nil
	})
	group.Go(func() error {
		list, err := s.github.Issues(groupCtx, repo)
		if err != nil {
			s.logger.Warn("helpqa.issues.fetch_failed", "repo", repo, "error", err)
			return nil
		}
		issues = list
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	categories := make([]*Category, 0, len(labels))
	for _, label := range labels {
		if category, ok := ParseCategory(label, prefix); ok {
			categories = append(categories, category)
		}
	}
	items := make([]*Item, 0, len(issues))
	for _, issue := range issues {
		if item, ok := ParseItem(issue, prefix, s.cfg.State); ok {
			items = append(items, item)
		}
	}
	s.render(ctx, items)

	s.logger.Debug("helpqa.load.complete", "repo", repo, "categories", len(categories), "items", len(items))
	return NewCatalog(categories, items), nil
}

func (s *Service) render(ctx context.Context, items []*Item) {
	if s.renderer == nil {
		return
	}
	for _, item := range items {
		html, err := s.renderer.Render(ctx, []byte(item.Body))
		if err != nil {
			s.logger.Warn("helpqa.render.failed", "number", item.Number, "error", err)
			continue
		}
		item.HTML = string(html)
	}
}
