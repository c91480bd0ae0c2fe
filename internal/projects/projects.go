package projects

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/internal/remote"
	"github.com/goliatone/go-zoe/internal/siteconfig"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

// Project is a public GitHub repository listed on the projects page.
type Project struct {
	ID          string
	Name        string
	Title       string
	Description string
	URL         string
	Homepage    string
	Repo        string
	Language    string
	Stars       int
	Forks       int
	Topics      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Owner       string
	OwnerAvatar string
}

// Adapt converts an API repository into a Project.
func Adapt(repo remote.GitHubRepo) *Project {
	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}
	return &Project{
		ID:          strconv.FormatInt(repo.ID, 10),
		Name:        repo.Name,
		Title:       repo.Name,
		Description: remote.StringValue(repo.Description),
		URL:         repo.HTMLURL,
		Homepage:    remote.StringValue(repo.Homepage),
		Repo:        repo.FullName,
		Language:    remote.StringValue(repo.Language),
		Stars:       repo.StargazersCount,
		Forks:       repo.ForksCount,
		Topics:      topics,
		CreatedAt:   repo.CreatedAt,
		UpdatedAt:   repo.UpdatedAt,
		Owner:       repo.Owner.Login,
		OwnerAvatar: repo.Owner.AvatarURL,
	}
}

// HasTopic reports whether the repository carries topic, ignoring case.
func HasTopic(repo remote.GitHubRepo, topic string) bool {
	for _, t := range repo.Topics {
		if strings.EqualFold(t, topic) {
			return true
		}
	}
	return false
}

// RepoSource lists and searches GitHub repositories.
type RepoSource interface {
	UserRepos(ctx context.Context, owner string) ([]remote.GitHubRepo, error)
	SearchRepos(ctx context.Context, q string) (*remote.GitHubSearchResult, error)
}

// Service lists repositories of the configured owners.
type Service struct {
	github RepoSource
	logger interfaces.Logger
}

func NewService(github RepoSource, logger interfaces.Logger) *Service {
	return &Service{github: github, logger: logging.Fallback(logger)}
}

// List fetches every owner concurrently, drops forks and archived
// repositories, applies the optional topic filter and orders by stars.
// Owners that fail are logged and skipped.
func (s *Service) List(ctx context.Context, cfg *siteconfig.ProjectsConfig) ([]*Project, error) {
	if cfg == nil || len(cfg.Owners) == 0 || s.github == nil {
		return nil, nil
	}
	if provider := strings.ToLower(cfg.Provider); provider != "" && provider != siteconfig.DefaultProvider {
		s.logger.Warn("projects.provider.unsupported", "provider", provider)
		return nil, nil
	}

	perOwner := make([][]remote.GitHubRepo, len(cfg.Owners))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, owner := range cfg.Owners {
		group.Go(func() error {
			repos, err := s.github.UserRepos(groupCtx, owner)
			if err != nil {
				s.logger.Warn("projects.owner.fetch_failed", "owner", owner, "error", err)
				return nil
			}
			perOwner[i] = repos
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var repos []remote.GitHubRepo
	for _, list := range perOwner {
		for _, repo := range list {
			if repo.Fork || repo.Archived {
				continue
			}
			if cfg.Tag != "" && !HasTopic(repo, cfg.Tag) {
				continue
			}
			repos = append(repos, repo)
		}
	}
	sort.SliceStable(repos, func(i, j int) bool {
		return repos[i].StargazersCount > repos[j].StargazersCount
	})

	out := make([]*Project, len(repos))
	for i, repo := range repos {
		out[i] = Adapt(repo)
	}
	s.logger.Debug("projects.list.complete", "owners", len(cfg.Owners), "projects", len(out))
	return out, nil
}

// SearchQuery appends topic: and user: qualifiers to query.
func SearchQuery(query, topic, user string) string {
	q := query
	if topic != "" {
		q += " topic:" + topic
	}
	if user != "" {
		q += " user:" + user
	}
	return q
}

// Search runs a repository search. Failures are logged and yield no results.
func (s *Service) Search(ctx context.Context, query, topic, user string) []*Project {
	if s.github == nil {
		return nil
	}
	q := SearchQuery(query, topic, user)
	result, err := s.github.SearchRepos(ctx, q)
	if err != nil {
		s.logger.Warn("projects.search.failed", "query", q, "error", err)
		return nil
	}
	out := make([]*Project, 0, len(result.Items))
	for _, repo := range result.Items {
		out = append(out, Adapt(repo))
	}
	return out
}
