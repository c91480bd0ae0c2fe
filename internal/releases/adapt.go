package releases

import (
	"sort"
	"strconv"

	"github.com/goliatone/go-zoe/internal/remote"
)

// FromGitHub adapts a GitHub release. Drafts yield nil.
func FromGitHub(release remote.GitHubRelease, repo string, patterns map[string]string) *Release {
	if release.Draft {
		return nil
	}
	published := release.CreatedAt
	if release.PublishedAt != nil {
		published = *release.PublishedAt
	}
	out := adapt(release.Body, release.Name, release.TagName, release.Assets, patterns)
	out.Provider = ProviderGitHub
	out.ID = strconv.FormatInt(release.ID, 10)
	out.Repo = repo
	out.CreatedAt = release.CreatedAt
	out.PublishedAt = published
	out.Prerelease = release.Prerelease
	return out
}

// FromGitee adapts a Gitee release. Gitee has no publish time, so the
// creation time is used for both. Drafts yield nil.
func FromGitee(release remote.GiteeRelease, repo string, patterns map[string]string) *Release {
	if release.Draft {
		return nil
	}
	out := adapt(release.Body, release.Name, release.TagName, release.Assets, patterns)
	out.Provider = ProviderGitee
	out.ID = strconv.FormatInt(release.ID, 10)
	out.Repo = repo
	out.CreatedAt = release.CreatedAt
	out.PublishedAt = release.CreatedAt
	out.Prerelease = release.Prerelease
	return out
}

func adapt(body, name, tag string, assets []remote.GitHubAsset, patterns map[string]string) *Release {
	meta := ParseMeta(body)
	matched := MatchAssets(assets, patterns)

	out := &Release{
		Title:   name,
		Version: tag,
		Note:    StripMeta(body),
		Assets:  matched,
		Meta:    meta,
	}
	if out.Title == "" {
		out.Title = tag
	}
	if meta != nil {
		for key, value := range meta.Assets {
			matched[key] = value
		}
		if meta.Version != "" {
			out.Version = meta.Version
		}
		out.URLs = meta.URLs
	}
	return out
}

// AdaptGitHub adapts a GitHub listing, dropping drafts.
func AdaptGitHub(list []remote.GitHubRelease, repo string, patterns map[string]string) []*Release {
	out := make([]*Release, 0, len(list))
	for _, item := range list {
		if release := FromGitHub(item, repo, patterns); release != nil {
			out = append(out, release)
		}
	}
	return out
}

// AdaptGitee adapts a Gitee listing, dropping drafts and ordering by creation
// time, newest first.
func AdaptGitee(list []remote.GiteeRelease, repo string, patterns map[string]string) []*Release {
	out := make([]*Release, 0, len(list))
	for _, item := range list {
		if release := FromGitee(item, repo, patterns); release != nil {
			out = append(out, release)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
