package routes

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"
	"github.com/goliatone/go-zoe/internal/siteconfig"
)

// Route names registered on the site group.
const (
	Home            = "home"
	Blog            = "blog"
	BlogPage        = "blog_page"
	BlogPost        = "blog_post"
	BlogTags        = "blog_tags"
	BlogTag         = "blog_tag"
	BlogArchives    = "blog_archives"
	BlogDrafts      = "blog_drafts"
	Projects        = "projects"
	Releases        = "releases"
	Changelog       = "changelog"
	ChangelogEntry  = "changelog_entry"
	Help            = "help"
	HelpCategory    = "help_category"
	HelpItem        = "help_item"
	Pricing         = "pricing"
	Page            = "page"
	Collection      = "collection"
	CollectionEntry = "collection_entry"
	RSS             = "rss"
	Sitemap         = "sitemap"
	NotFound        = "not_found"
)

// GroupName is the urlkit group holding every site route.
const GroupName = "site"

// PlaceholderBaseURL stands in for the site URL when none is configured.
// Built URLs are reduced to their path in that case.
const PlaceholderBaseURL = "http://zoe.invalid"

var ErrUnknownRoute = errors.New("routes: unknown route")

// Table is the route set of a site. It is safe for concurrent use.
type Table struct {
	manager       *urlkit.RouteManager
	siteURL       string
	basePrefix    string
	trailingSlash bool

	mu      sync.RWMutex
	group   *urlkit.Group
	entries map[string]string
}

// New builds the route table from the site configuration.
func New(cfg *siteconfig.Config) (*Table, error) {
	if cfg == nil {
		return nil, errors.New("routes: config is required")
	}

	siteURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	baseURL := siteURL
	basePrefix := ""
	if baseURL == "" {
		baseURL = PlaceholderBaseURL
	} else {
		parsed, err := url.Parse(siteURL)
		if err != nil {
			return nil, fmt.Errorf("routes: parse site url: %w", err)
		}
		basePrefix = strings.TrimRight(parsed.Path, "/")
	}

	entries := Paths(cfg)
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    GroupName,
				BaseURL: baseURL,
				Paths:   entries,
			},
		},
	})

	table := &Table{
		manager:       manager,
		siteURL:       siteURL,
		basePrefix:    basePrefix,
		trailingSlash: cfg.Build.TrailingSlashEnabled(),
		entries:       entries,
	}
	if _, err := table.siteGroup(); err != nil {
		return nil, err
	}
	return table, nil
}

// Paths returns the route patterns for cfg keyed by route name.
func Paths(cfg *siteconfig.Config) map[string]string {
	blog := "/" + strings.Trim(cfg.Blog.BasePath, "/")
	if blog == "/" {
		blog = siteconfig.DefaultBlogBasePath
	}
	rss := "/" + strings.TrimLeft(cfg.RSS.Path, "/")
	if rss == "/" {
		rss = siteconfig.DefaultRSSPath
	}

	return map[string]string{
		Home:            "/",
		Blog:            blog,
		BlogPage:        blog + "/page/:page",
		BlogPost:        blog + "/:slug",
		BlogTags:        blog + "/tags",
		BlogTag:         blog + "/tag/:slug",
		BlogArchives:    blog + "/archives",
		BlogDrafts:      blog + "/drafts",
		Projects:        "/projects",
		Releases:        "/releases",
		Changelog:       "/changelog",
		ChangelogEntry:  "/changelog/:slug",
		Help:            "/help",
		HelpCategory:    "/help/categories/:id",
		HelpItem:        "/help/item/:id",
		Pricing:         "/pricing",
		Page:            "/:slug",
		Collection:      "/:collection",
		CollectionEntry: "/:collection/:slug",
		RSS:             rss,
		Sitemap:         "/sitemap.xml",
		NotFound:        "/404.html",
	}
}

// Has reports whether name is a registered route.
func (t *Table) Has(name string) bool {
	if t == nil {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[name]
	return ok
}

// Path returns the site relative path of the named route. Directory routes
// end with "/" when trailing slashes are enabled.
func (t *Table) Path(name string, params map[string]any) (string, error) {
	if t == nil {
		return "", errors.New("routes: table not configured")
	}
	if !t.Has(name) {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}

	group, err := t.siteGroup()
	if err != nil {
		return "", err
	}
	builder, err := safeBuilder(group, name)
	if err != nil {
		return "", err
	}
	for key, val := range params {
		builder.WithParam(key, val)
	}
	built, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("routes: build %s: %w", name, err)
	}

	p, err := t.relativePath(built)
	if err != nil {
		return "", fmt.Errorf("routes: build %s: %w", name, err)
	}
	if strings.Contains(p, "/:") {
		return "", fmt.Errorf("routes: build %s: missing parameter in %q", name, p)
	}
	return t.finish(p), nil
}

// Href returns the path prefixed with the site URL's own path, which is what
// links inside the generated pages use.
func (t *Table) Href(name string, params map[string]any) (string, error) {
	p, err := t.Path(name, params)
	if err != nil {
		return "", err
	}
	return t.basePrefix + p, nil
}

// URL returns the absolute URL of the named route. Without a site URL it
// returns the site relative path.
func (t *Table) URL(name string, params map[string]any) (string, error) {
	p, err := t.Path(name, params)
	if err != nil {
		return "", err
	}
	return t.Absolute(p), nil
}

// Absolute joins a site relative path onto the site URL.
func (t *Table) Absolute(p string) string {
	if t == nil || t.siteURL == "" {
		return p
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	return t.siteURL + "/" + strings.TrimLeft(p, "/")
}

// Rel prefixes a site relative path with the site URL's own path.
func (t *Table) Rel(p string) string {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	prefix := ""
	if t != nil {
		prefix = t.basePrefix
	}
	return prefix + "/" + strings.TrimLeft(p, "/")
}

// SiteURL returns the configured site URL without a trailing slash.
func (t *Table) SiteURL() string {
	if t == nil {
		return ""
	}
	return t.siteURL
}

// TrailingSlash reports whether directory routes end with "/".
func (t *Table) TrailingSlash() bool {
	return t != nil && t.trailingSlash
}

// OutputFile maps a route path to the file written under the output dir.
func (t *Table) OutputFile(p string) string {
	return OutputFile(p)
}

// OutputFile maps a route path to a slash separated file name relative to
// the output dir: "/x/" becomes "x/index.html", "/" becomes "index.html" and
// "/x" becomes "x.html". Paths with an extension are kept.
func OutputFile(p string) string {
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" || p == "/" {
		return "index.html"
	}

	dir := strings.HasSuffix(p, "/")
	clean := strings.TrimPrefix(path.Clean("/"+p), "/")
	if clean == "" {
		return "index.html"
	}
	if dir {
		return clean + "/index.html"
	}
	if path.Ext(clean) != "" {
		return clean
	}
	return clean + ".html"
}

func (t *Table) finish(p string) string {
	if p == "" {
		p = "/"
	}
	if p == "/" {
		return p
	}
	p = strings.TrimRight(p, "/")
	if t.trailingSlash && path.Ext(p) == "" {
		return p + "/"
	}
	return p
}

func (t *Table) relativePath(built string) (string, error) {
	parsed, err := url.Parse(built)
	if err != nil {
		return "", err
	}
	p := parsed.Path
	if t.basePrefix != "" {
		p = strings.TrimPrefix(p, t.basePrefix)
	}
	return path.Clean("/" + p), nil
}

func (t *Table) siteGroup() (*urlkit.Group, error) {
	t.mu.RLock()
	group := t.group
	t.mu.RUnlock()
	if group != nil {
		return group, nil
	}

	group, err := lookupGroup(t.manager, GroupName)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.group = group
	t.mu.Unlock()
	return group, nil
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, errors.New("routes: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			builder = nil
			err = fmt.Errorf("routes: urlkit builder panic: %v", rec)
		}
	}()
	builder = group.Builder(route)
	return builder, nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, errors.New("routes: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("routes: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, nil
}
