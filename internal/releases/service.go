package releases

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/internal/remote"
	"github.com/goliatone/go-zoe/internal/siteconfig"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

// GitHubLister lists GitHub releases.
type GitHubLister interface {
	Releases(ctx context.Context, repo string) ([]remote.GitHubRelease, error)
}

// GiteeLister lists Gitee releases.
type GiteeLister interface {
	Releases(ctx context.Context, repo string) ([]remote.GiteeRelease, error)
}

// Options configure a Service.
type Options struct {
	GitHub   GitHubLister
	Gitee    GiteeLister
	Renderer interfaces.MarkdownRenderer
	Logger   interfaces.Logger
}

// Service fetches releases from every configured source.
type Service struct {
	github   GitHubLister
	gitee    GiteeLister
	renderer interfaces.MarkdownRenderer
	logger   interfaces.Logger
}

func NewService(opts Options) *Service {
	return &Service{
		github:   opts.GitHub,
		gitee:    opts.Gitee,
		renderer: opts.Renderer,
		logger:   logging.Fallback(opts.Logger),
	}
}

// Fetch loads every source concurrently. Results keep source order; a source
// that fails is logged and contributes nothing.
func (s *Service) Fetch(ctx context.Context, sources []siteconfig.ReleaseSource) ([]*Release, error) {
	results := make([][]*Release, len(sources))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, source := range sources {
		group.Go(func() error {
			releases, err := s.fetchSource(groupCtx, source)
			if err != nil {
				s.logger.Warn("releases.fetch.failed",
					"provider", source.Provider,
					"repo", source.Repo,
					"error", err,
				)
				return nil
			}
			results[i] = releases
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []*Release
	for _, releases := range results {
		all = append(all, releases...)
	}
	s.render(ctx, all)
	s.logger.Debug("releases.fetch.complete", "sources", len(sources), "releases", len(all))
	return all, nil
}

func (s *Service) fetchSource(ctx context.Context, source siteconfig.ReleaseSource) ([]*Release, error) {
	repo := strings.TrimSpace(source.Repo)
	switch provider := strings.ToLower(source.Provider); provider {
	case "", ProviderGitHub:
		if s.github == nil {
			return nil, nil
		}
		list, err := s.github.Releases(ctx, repo)
		if err != nil {
			return nil, err
		}
		return AdaptGitHub(list, repo, source.AssetRegexPatterns), nil
	case ProviderGitee:
		if s.gitee == nil {
			return nil, nil
		}
		list, err := s.gitee.Releases(ctx, repo)
		if err != nil {
			return nil, err
		}
		return AdaptGitee(list, repo, source.AssetRegexPatterns), nil
	default:
		s.logger.Warn("releases.provider.unsupported", "provider", provider, "repo", repo)
		return nil, nil
	}
}

func (s *Service) render(ctx context.Context, releases []*Release) {
	if s.renderer == nil {
		return
	}
	for _, release := range releases {
		if release.Note == "" {
			continue
		}
		html, err := s.renderer.Render(ctx, []byte(release.Note))
		if err != nil {
			s.logger.Warn("releases.render.failed", "repo", release.Repo, "version", release.Version, "error", err)
			continue
		}
		release.NoteHTML = string(html)
	}
}

// Latest returns the first release that is not a prerelease, or the first
// release of any kind when includePrerelease is set.
func Latest(releases []*Release, includePrerelease bool) *Release {
	for _, release := range releases {
		if includePrerelease || !release.Prerelease {
			return release
		}
	}
	return nil
}

var majorMinor = regexp.MustCompile(`v?(\d+)\.(\d+)`)

// OtherGroup collects releases without a major.minor version.
const OtherGroup = "other"

// GroupByVersion groups releases by major.minor in first-seen order.
func GroupByVersion(releases []*Release) []VersionGroup {
	var groups []VersionGroup
	index := make(map[string]int)
	for _, release := range releases {
		key := OtherGroup
		if match := majorMinor.FindStringSubmatch(release.Version); match != nil {
			key = match[1] + "." + match[2]
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, VersionGroup{Key: key})
		}
		groups[i].Releases = append(groups[i].Releases, release)
	}
	return groups
}
