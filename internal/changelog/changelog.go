package changelog

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/internal/markdown"
	"github.com/goliatone/go-zoe/internal/remote"
	"github.com/goliatone/go-zoe/internal/siteconfig"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

// Dir is the changelog sub directory of a content dir.
const Dir = "changelog"

// PrereleaseTag marks entries built from GitHub prereleases.
const PrereleaseTag = "预发布"

const dateLayout = "2006-01-02"

// Source values for Entry.Source.
const (
	SourceLocal  = "local"
	SourceGitHub = "github"
)

// Entry is one changelog version.
type Entry struct {
	Slug     string
	Version  string
	Title    string
	Date     string
	Breaking bool
	Tags     []string
	Content  string
	HTML     string
	Source   string
}

// Time parses Date, returning the zero time when it is not a date.
func (e *Entry) Time() time.Time {
	t, _ := markdown.ParseDate(e.Date)
	return t
}

// DefaultTitle is the title used when an entry has none.
func DefaultTitle(version string) string {
	return "版本 " + version
}

// LoadLocal reads changelog/*.md and *.mdx (non-recursive) from every dir.
// Files that cannot be read are passed to onError and skipped.
func LoadLocal(dirs []string, onError func(path string, err error)) []*Entry {
	var entries []*Entry
	for _, dir := range dirs {
		files, err := markdown.ScanFiles(filepath.Join(dir, Dir), false)
		if err != nil {
			if onError != nil {
				onError(dir, err)
			}
			continue
		}
		for _, file := range files {
			doc, err := markdown.LoadDocument(file)
			if err != nil {
				if onError != nil {
					onError(file, err)
				}
				continue
			}
			entries = append(entries, fromDocument(doc))
		}
	}
	sortEntries(entries)
	return entries
}

func fromDocument(doc *markdown.Document) *Entry {
	meta := doc.FrontMatter
	filename := filepath.Base(doc.Path)

	version := meta.String("version")
	if version == "" {
		version = ParseVersionFromFilename(filename)
	}
	if version == "" {
		version = doc.Name()
	}

	date := doc.ModTime.Format(dateLayout)
	if t, ok := meta.Time("date"); ok {
		date = t.Format(dateLayout)
	} else if raw := meta.String("date"); raw != "" {
		date = raw
	}

	breaking, _ := meta.Bool("breaking")
	tags := meta.Strings("tags")
	if tags == nil {
		tags = []string{}
	}

	title := meta.String("title")
	if title == "" {
		title = DefaultTitle(version)
	}

	return &Entry{
		Slug:     Slug(version),
		Version:  version,
		Title:    title,
		Date:     date,
		Breaking: breaking,
		Tags:     tags,
		Content:  string(doc.Body),
		Source:   SourceLocal,
	}
}

// FromGitHubReleases converts releases into entries. Prereleases are dropped
// unless includePrerelease is set.
func FromGitHubReleases(releases []remote.GitHubRelease, includePrerelease bool) []*Entry {
	entries := make([]*Entry, 0, len(releases))
	for _, release := range releases {
		if release.Prerelease && !includePrerelease {
			continue
		}
		title := release.Name
		if title == "" {
			title = DefaultTitle(release.TagName)
		}
		date := ""
		if release.PublishedAt != nil {
			date = release.PublishedAt.UTC().Format(dateLayout)
		}
		tags := []string{}
		if release.Prerelease {
			tags = append(tags, PrereleaseTag)
		}
		entries = append(entries, &Entry{
			Slug:     Slug(release.TagName),
			Version:  release.TagName,
			Title:    title,
			Date:     date,
			Breaking: strings.Contains(strings.ToLower(release.Body), "breaking"),
			Tags:     tags,
			Content:  release.Body,
			Source:   SourceGitHub,
		})
	}
	return entries
}

// Merge combines local and remote entries. A remote entry whose version
// matches a local one (case-insensitively) is dropped.
func Merge(local, remoteEntries []*Entry) []*Entry {
	seen := make(map[string]struct{}, len(local))
	out := make([]*Entry, 0, len(local)+len(remoteEntries))
	for _, entry := range local {
		seen[strings.ToLower(entry.Version)] = struct{}{}
		out = append(out, entry)
	}
	for _, entry := range remoteEntries {
		if _, ok := seen[strings.ToLower(entry.Version)]; ok {
			continue
		}
		out = append(out, entry)
	}
	sortEntries(out)
	return out
}

func sortEntries(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return CompareVersions(entries[i].Version, entries[j].Version) < 0
	})
}

// ReleaseLister lists GitHub releases for a repository.
type ReleaseLister interface {
	Releases(ctx context.Context, repo string) ([]remote.GitHubRelease, error)
}

// Options configure a Service.
type Options struct {
	Config   *siteconfig.Config
	Dirs     []string
	GitHub   ReleaseLister
	Renderer interfaces.MarkdownRenderer
	Logger   interfaces.Logger
}

// Service loads and merges changelog entries.
type Service struct {
	cfg      siteconfig.ChangelogConfig
	dirs     []string
	github   ReleaseLister
	renderer interfaces.MarkdownRenderer
	logger   interfaces.Logger
}

func NewService(opts Options) *Service {
	s := &Service{
		dirs:     opts.Dirs,
		github:   opts.GitHub,
		renderer: opts.Renderer,
		logger:   logging.Fallback(opts.Logger),
	}
	if opts.Config != nil && opts.Config.Changelog != nil {
		s.cfg = *opts.Config.Changelog
	}
	return s
}

// All returns local entries merged with GitHub releases when a changelog
// repository is configured. GitHub failures are logged and the local list is
// returned unchanged.
func (s *Service) All(ctx context.Context) ([]*Entry, error) {
	local := LoadLocal(s.dirs, func(path string, err error) {
		s.logger.Warn("changelog.file.load_failed", "path", path, "error", err)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var remoteEntries []*Entry
	if gh := s.cfg.GitHub; gh != nil && strings.TrimSpace(gh.Repo) != "" && s.github != nil {
		repo := strings.TrimSpace(gh.Repo)
		releases, err := s.github.Releases(ctx, repo)
		if err != nil {
			s.logger.Warn("changelog.github.fetch_failed", "repo", repo, "error", err)
		} else {
			remoteEntries = FromGitHubReleases(releases, gh.IncludePrerelease)
		}
	}

	entries := Merge(local, remoteEntries)
	s.render(ctx, entries)
	s.logger.Debug("changelog.load.complete", "local", len(local), "remote", len(remoteEntries), "total", len(entries))
	return entries, nil
}

// BySlug returns the entry with the given slug.
func (s *Service) BySlug(ctx context.Context, slug string) (*Entry, bool, error) {
	entries, err := s.All(ctx)
	if err != nil {
		return nil, false, err
	}
	entry, ok := FindBySlug(entries, slug)
	return entry, ok, nil
}

// ByVersion returns the entry for version, ignoring case and a "v" prefix.
func (s *Service) ByVersion(ctx context.Context, version string) (*Entry, bool, error) {
	entries, err := s.All(ctx)
	if err != nil {
		return nil, false, err
	}
	entry, ok := FindByVersion(entries, version)
	return entry, ok, nil
}

func FindBySlug(entries []*Entry, slug string) (*Entry, bool) {
	for _, entry := range entries {
		if entry.Slug == slug {
			return entry, true
		}
	}
	return nil, false
}

func FindByVersion(entries []*Entry, version string) (*Entry, bool) {
	want := normalizeVersion(version)
	for _, entry := range entries {
		if normalizeVersion(entry.Version) == want {
			return entry, true
		}
	}
	return nil, false
}

func (s *Service) render(ctx context.Context, entries []*Entry) {
	if s.renderer == nil {
		return
	}
	for _, entry := range entries {
		html, err := s.renderer.Render(ctx, []byte(entry.Content))
		if err != nil {
			s.logger.Warn("changelog.render.failed", "version", entry.Version, "error", err)
			continue
		}
		entry.HTML = string(html)
	}
}
