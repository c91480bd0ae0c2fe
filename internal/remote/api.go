package remote

import (
	"context"
	"net/url"
	"strings"
)

const (
	githubAccept = "application/vnd.github.v3+json"
	giteeAccept  = "application/json"
)

// GitHubAPI wraps the GitHub REST endpoints used by the site.
type GitHubAPI struct {
	client *Client
	base   string
}

func (g *GitHubAPI) get(ctx context.Context, path string, query url.Values, out any) error {
	target := g.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return g.client.getJSON(ctx, g.client.github, target, target, map[string]string{"Accept": githubAccept}, out)
}

// Releases lists the releases of owner/repo.
func (g *GitHubAPI) Releases(ctx context.Context, repo string) ([]GitHubRelease, error) {
	var releases []GitHubRelease
	if err := g.get(ctx, "/repos/"+repo+"/releases", nil, &releases); err != nil {
		return nil, err
	}
	return releases, nil
}

// Labels lists the labels of owner/repo.
func (g *GitHubAPI) Labels(ctx context.Context, repo string) ([]GitHubLabel, error) {
	var labels []GitHubLabel
	if err := g.get(ctx, "/repos/"+repo+"/labels", nil, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// Issues lists up to 100 issues in any state.
func (g *GitHubAPI) Issues(ctx context.Context, repo string) ([]GitHubIssue, error) {
	query := url.Values{}
	query.Set("state", "all")
	query.Set("per_page", "100")
	var issues []GitHubIssue
	if err := g.get(ctx, "/repos/"+repo+"/issues", query, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// UserRepos lists public repositories of owner, most recently updated first.
func (g *GitHubAPI) UserRepos(ctx context.Context, owner string) ([]GitHubRepo, error) {
	query := url.Values{}
	query.Set("type", "public")
	query.Set("sort", "updated")
	query.Set("per_page", "100")
	var repos []GitHubRepo
	if err := g.get(ctx, "/users/"+url.PathEscape(owner)+"/repos", query, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// SearchRepos runs a repository search sorted by stars.
func (g *GitHubAPI) SearchRepos(ctx context.Context, q string) (*GitHubSearchResult, error) {
	query := url.Values{}
	query.Set("q", q)
	query.Set("sort", "stars")
	query.Set("per_page", "30")
	var result GitHubSearchResult
	if err := g.get(ctx, "/search/repositories", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GiteeAPI wraps the Gitee v5 endpoints used by the site.
type GiteeAPI struct {
	client *Client
	base   string
}

// Releases lists the releases of owner/repo. The access token is appended to
// the request but never becomes part of the cache key.
func (g *GiteeAPI) Releases(ctx context.Context, repo string) ([]GiteeRelease, error) {
	key := g.base + "/repos/" + repo + "/releases"
	target := key
	if token := g.client.cfg.GiteeToken; token != "" {
		target += "?access_token=" + url.QueryEscape(token)
	}
	var releases []GiteeRelease
	if err := g.client.getJSON(ctx, g.client.http, key, target, map[string]string{"Accept": giteeAccept}, &releases); err != nil {
		return nil, err
	}
	return releases, nil
}

func trimBase(base, fallback string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = fallback
	}
	return strings.TrimRight(base, "/")
}

// redact hides access tokens in logged URLs.
func redact(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	query := parsed.Query()
	if query.Get("access_token") == "" {
		return raw
	}
	query.Set("access_token", "REDACTED")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
