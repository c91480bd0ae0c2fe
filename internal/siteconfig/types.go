package siteconfig

import (
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// FileName is the site configuration file looked up in the project root.
const FileName = "zoe-site.yaml"

// Config mirrors zoe-site.yaml.
type Config struct {
	Title        string            `yaml:"title" json:"title"`
	Description  string            `yaml:"description,omitempty" json:"description,omitempty"`
	URL          string            `yaml:"url,omitempty" json:"url,omitempty"`
	Logo         string            `yaml:"logo,omitempty" json:"logo,omitempty"`
	Lang         string            `yaml:"lang,omitempty" json:"lang,omitempty"`
	Version      string            `yaml:"version,omitempty" json:"version,omitempty"`
	Author       *Author           `yaml:"author,omitempty" json:"author,omitempty"`
	Organization *Organization     `yaml:"organization,omitempty" json:"organization,omitempty"`
	Copyright    *Copyright        `yaml:"copyright,omitempty" json:"copyright,omitempty"`
	PrimaryColor string            `yaml:"primaryColor,omitempty" json:"primaryColor,omitempty"`
	Theme        string            `yaml:"theme,omitempty" json:"theme,omitempty"`
	Navs         []NavItem         `yaml:"navs,omitempty" json:"navs,omitempty"`
	Links        []Link            `yaml:"links,omitempty" json:"links,omitempty"`
	Socials      map[string]string `yaml:"socials,omitempty" json:"socials,omitempty"`

	Blog         BlogConfig         `yaml:"blog,omitempty" json:"blog"`
	ContentDirs  []string           `yaml:"contentDirs,omitempty" json:"contentDirs,omitempty"`
	ContentTypes []ContentType      `yaml:"contentTypes,omitempty" json:"contentTypes,omitempty"`
	GitContent   []GitContentSource `yaml:"gitContent,omitempty" json:"gitContent,omitempty"`

	RSS       RSSConfig        `yaml:"rss,omitempty" json:"rss"`
	Comments  *CommentsConfig  `yaml:"comments,omitempty" json:"comments,omitempty"`
	Analytics *AnalyticsConfig `yaml:"analytics,omitempty" json:"analytics,omitempty"`
	Pricing   *PricingConfig   `yaml:"pricing,omitempty" json:"pricing,omitempty"`

	ReleaseRepo ReleaseSources   `yaml:"releaseRepo,omitempty" json:"releaseRepo,omitempty"`
	HelpQA      *HelpQAConfig    `yaml:"helpqa,omitempty" json:"helpqa,omitempty"`
	Changelog   *ChangelogConfig `yaml:"changelog,omitempty" json:"changelog,omitempty"`
	Projects    *ProjectsConfig  `yaml:"projects,omitempty" json:"projects,omitempty"`

	Build    BuildConfig    `yaml:"build,omitempty" json:"build"`
	Logging  LoggingConfig  `yaml:"logging,omitempty" json:"logging"`
	Remote   RemoteConfig   `yaml:"remote,omitempty" json:"remote"`
	Markdown MarkdownConfig `yaml:"markdown,omitempty" json:"markdown"`
}

// Author describes the site owner.
type Author struct {
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	Email    string `yaml:"email,omitempty" json:"email,omitempty"`
	Homepage string `yaml:"homepage,omitempty" json:"homepage,omitempty"`
	Avatar   string `yaml:"avatar,omitempty" json:"avatar,omitempty"`
	Minibio  string `yaml:"minibio,omitempty" json:"minibio,omitempty"`
	GitHub   string `yaml:"github,omitempty" json:"github,omitempty"`
	Twitter  string `yaml:"twitter,omitempty" json:"twitter,omitempty"`
	Facebook string `yaml:"facebook,omitempty" json:"facebook,omitempty"`
	Telegram string `yaml:"telegram,omitempty" json:"telegram,omitempty"`
	LinkedIn string `yaml:"linkedin,omitempty" json:"linkedin,omitempty"`
	WeChat   string `yaml:"wechat,omitempty" json:"wechat,omitempty"`
}

type Organization struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	URL  string `yaml:"url,omitempty" json:"url,omitempty"`
	Logo string `yaml:"logo,omitempty" json:"logo,omitempty"`
}

type Copyright struct {
	From     string `yaml:"from,omitempty" json:"from,omitempty"`
	Holder   string `yaml:"holder,omitempty" json:"holder,omitempty"`
	Location string `yaml:"location,omitempty" json:"location,omitempty"`
	Content  string `yaml:"content,omitempty" json:"content,omitempty"`
}

// NavItem is a header navigation entry. Items nest for dropdown menus.
type NavItem struct {
	Title       string    `yaml:"title" json:"title"`
	Href        string    `yaml:"href,omitempty" json:"href,omitempty"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Items       []NavItem `yaml:"items,omitempty" json:"items,omitempty"`
}

// Link is a footer link.
type Link struct {
	Title string `yaml:"title" json:"title"`
	Href  string `yaml:"href" json:"href"`
}

type BlogConfig struct {
	Title        string `yaml:"title,omitempty" json:"title,omitempty"`
	Description  string `yaml:"description,omitempty" json:"description,omitempty"`
	BasePath     string `yaml:"basePath,omitempty" json:"basePath,omitempty"`
	PostsPerPage int    `yaml:"postsPerPage,omitempty" json:"postsPerPage,omitempty"`
}

// ContentType declares an extra collection of Markdown entries rendered under
// its own route prefix.
type ContentType struct {
	Name     string `yaml:"name" json:"name"`
	Path     string `yaml:"path" json:"path"`
	Template string `yaml:"template,omitempty" json:"template,omitempty"`
}

// GitContentSource is a repository whose files are merged into the content
// directories after a sync.
type GitContentSource struct {
	Name     string   `yaml:"name" json:"name"`
	Remote   string   `yaml:"remote" json:"remote"`
	Branch   string   `yaml:"branch,omitempty" json:"branch,omitempty"`
	Patterns []string `yaml:"patterns,omitempty" json:"patterns,omitempty"`
	Local    string   `yaml:"local,omitempty" json:"local,omitempty"`
}

type RSSConfig struct {
	Enabled bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty" json:"path,omitempty"`
	Title   string `yaml:"title,omitempty" json:"title,omitempty"`
}

// CommentsConfig selects the third-party comment widget rendered on posts.
type CommentsConfig struct {
	Provider   string `yaml:"provider,omitempty" json:"provider,omitempty"`
	Repo       string `yaml:"repo,omitempty" json:"repo,omitempty"`
	RepoID     string `yaml:"repoId,omitempty" json:"repoId,omitempty"`
	Category   string `yaml:"category,omitempty" json:"category,omitempty"`
	CategoryID string `yaml:"categoryId,omitempty" json:"categoryId,omitempty"`
	Mapping    string `yaml:"mapping,omitempty" json:"mapping,omitempty"`
	Shortname  string `yaml:"shortname,omitempty" json:"shortname,omitempty"`
	IssueTerm  string `yaml:"issueTerm,omitempty" json:"issueTerm,omitempty"`
	Label      string `yaml:"label,omitempty" json:"label,omitempty"`
}

type AnalyticsConfig struct {
	GoogleID        string `yaml:"googleId,omitempty" json:"googleId,omitempty"`
	PlausibleDomain string `yaml:"plausibleDomain,omitempty" json:"plausibleDomain,omitempty"`
}

type PricingConfig struct {
	Enabled        bool          `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Title          string        `yaml:"title,omitempty" json:"title,omitempty"`
	Description    string        `yaml:"description,omitempty" json:"description,omitempty"`
	YearlyDiscount float64       `yaml:"yearlyDiscount,omitempty" json:"yearlyDiscount,omitempty"`
	ShowToggle     bool          `yaml:"showToggle,omitempty" json:"showToggle,omitempty"`
	Plans          []PricingPlan `yaml:"plans,omitempty" json:"plans,omitempty"`
}

type PricingPlan struct {
	ID            string           `yaml:"id" json:"id"`
	Name          string           `yaml:"name" json:"name"`
	Description   string           `yaml:"description,omitempty" json:"description,omitempty"`
	Price         Price            `yaml:"price" json:"price"`
	PriceUnit     string           `yaml:"priceUnit,omitempty" json:"priceUnit,omitempty"`
	OriginalPrice float64          `yaml:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	Currency      string           `yaml:"currency,omitempty" json:"currency,omitempty"`
	Features      []PricingFeature `yaml:"features,omitempty" json:"features,omitempty"`
	CTA           string           `yaml:"cta,omitempty" json:"cta,omitempty"`
	CTALink       string           `yaml:"ctaLink,omitempty" json:"ctaLink,omitempty"`
	Popular       bool             `yaml:"popular,omitempty" json:"popular,omitempty"`
	Badge         string           `yaml:"badge,omitempty" json:"badge,omitempty"`
}

type PricingFeature struct {
	Name     string       `yaml:"name" json:"name"`
	Included FeatureValue `yaml:"included" json:"included"`
	Tooltip  string       `yaml:"tooltip,omitempty" json:"tooltip,omitempty"`
}

// ReleaseSource points at a repository whose releases are listed on the
// releases page.
type ReleaseSource struct {
	Provider           string            `yaml:"provider,omitempty" json:"provider,omitempty"`
	Repo               string            `yaml:"repo" json:"repo"`
	AssetRegexPatterns map[string]string `yaml:"assetRegexPatterns,omitempty" json:"assetRegexPatterns,omitempty"`
}

type HelpQAConfig struct {
	Provider    string `yaml:"provider,omitempty" json:"provider,omitempty"`
	Repo        string `yaml:"repo" json:"repo"`
	LabelPrefix string `yaml:"labelPrefix,omitempty" json:"labelPrefix,omitempty"`
	State       string `yaml:"state,omitempty" json:"state,omitempty"`
}

type ChangelogConfig struct {
	Title       string           `yaml:"title,omitempty" json:"title,omitempty"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty"`
	GitHub      *ChangelogGitHub `yaml:"github,omitempty" json:"github,omitempty"`
}

type ChangelogGitHub struct {
	Repo              string `yaml:"repo" json:"repo"`
	IncludePrerelease bool   `yaml:"includePrerelease,omitempty" json:"includePrerelease,omitempty"`
}

// ProjectsConfig lists public repositories of the given owners on the
// projects page, optionally filtered by topic.
type ProjectsConfig struct {
	Provider string   `yaml:"provider,omitempty" json:"provider,omitempty"`
	Tag      string   `yaml:"tag,omitempty" json:"tag,omitempty"`
	Owners   []string `yaml:"owners,omitempty" json:"owners,omitempty"`
}

// BuildConfig controls where and how the static output is produced.
type BuildConfig struct {
	OutputDir     string `yaml:"outputDir,omitempty" json:"outputDir,omitempty"`
	PublicDir     string `yaml:"publicDir,omitempty" json:"publicDir,omitempty"`
	TemplatesDir  string `yaml:"templatesDir,omitempty" json:"templatesDir,omitempty"`
	CacheDir      string `yaml:"cacheDir,omitempty" json:"cacheDir,omitempty"`
	Workers       int    `yaml:"workers,omitempty" json:"workers,omitempty"`
	Incremental   *bool  `yaml:"incremental,omitempty" json:"incremental,omitempty"`
	Drafts        bool   `yaml:"drafts,omitempty" json:"drafts,omitempty"`
	TrailingSlash *bool  `yaml:"trailingSlash,omitempty" json:"trailingSlash,omitempty"`
	UseExample    bool   `yaml:"useExample,omitempty" json:"useExample,omitempty"`
}

// IncrementalEnabled reports whether unchanged outputs may be skipped.
func (b BuildConfig) IncrementalEnabled() bool {
	return b.Incremental == nil || *b.Incremental
}

// TrailingSlashEnabled reports whether directory routes end with "/".
func (b BuildConfig) TrailingSlashEnabled() bool {
	return b.TrailingSlash == nil || *b.TrailingSlash
}

type LoggingConfig struct {
	Level     string   `yaml:"level,omitempty" json:"level,omitempty"`
	Format    string   `yaml:"format,omitempty" json:"format,omitempty"`
	AddSource bool     `yaml:"addSource,omitempty" json:"addSource,omitempty"`
	Focus     []string `yaml:"focus,omitempty" json:"focus,omitempty"`
}

// RemoteConfig tunes GitHub/Gitee API access.
type RemoteConfig struct {
	Disabled  bool          `yaml:"disabled,omitempty" json:"disabled,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	CacheTTL  time.Duration `yaml:"cacheTTL,omitempty" json:"cacheTTL,omitempty"`
	CacheDB   string        `yaml:"cacheDB,omitempty" json:"cacheDB,omitempty"`
	NoCache   bool          `yaml:"noCache,omitempty" json:"noCache,omitempty"`
	UserAgent string        `yaml:"userAgent,omitempty" json:"userAgent,omitempty"`
	GitHubAPI string        `yaml:"githubAPI,omitempty" json:"githubAPI,omitempty"`
	GiteeAPI  string        `yaml:"giteeAPI,omitempty" json:"giteeAPI,omitempty"`
}

type MarkdownConfig struct {
	Highlight  *bool  `yaml:"highlight,omitempty" json:"highlight,omitempty"`
	LightStyle string `yaml:"lightStyle,omitempty" json:"lightStyle,omitempty"`
	DarkStyle  string `yaml:"darkStyle,omitempty" json:"darkStyle,omitempty"`
	Safe       bool   `yaml:"safe,omitempty" json:"safe,omitempty"`
	HardWraps  bool   `yaml:"hardWraps,omitempty" json:"hardWraps,omitempty"`
}

// HighlightEnabled reports whether code blocks are syntax highlighted.
func (m MarkdownConfig) HighlightEnabled() bool {
	return m.Highlight == nil || *m.Highlight
}

// Defaults applied by Normalize.
const (
	DefaultLang           = "en"
	DefaultContentDir     = "content"
	DefaultBlogBasePath   = "/blog"
	DefaultBlogTitle      = "Blog"
	DefaultPostsPerPage   = 10
	DefaultRSSPath        = "/rss.xml"
	DefaultGitBranch      = "main"
	DefaultProvider       = "github"
	DefaultLabelPrefix    = "help"
	DefaultTheme          = "default"
	DefaultOutputDir      = "out"
	DefaultPublicDir      = "public"
	DefaultTemplatesDir   = "templates"
	DefaultCacheDir       = ".cache"
	DefaultUserAgent      = "go-zoe"
	DefaultRemoteTimeout  = 15 * time.Second
	DefaultRemoteCacheTTL = time.Hour
	DefaultLightStyle     = "github"
	DefaultDarkStyle      = "github-dark"
	DefaultGitHubAPI      = "https://api.github.com"
	DefaultGiteeAPI       = "https://gitee.com/api/v5"
	DefaultCurrency       = "¥"
	DefaultPriceUnit      = "/月"
	DefaultGiscusCategory = "Announcements"
	DefaultGiscusMapping  = "pathname"
)

// Normalize fills unset fields with their defaults.
func (c *Config) Normalize() {
	if c == nil {
		return
	}
	if c.Lang == "" {
		c.Lang = DefaultLang
	}
	if c.Theme == "" {
		c.Theme = DefaultTheme
	}
	if len(c.ContentDirs) == 0 {
		c.ContentDirs = []string{DefaultContentDir}
	}

	if c.Blog.BasePath == "" {
		c.Blog.BasePath = DefaultBlogBasePath
	}
	if c.Blog.Title == "" {
		c.Blog.Title = DefaultBlogTitle
	}
	if c.Blog.PostsPerPage == 0 {
		c.Blog.PostsPerPage = DefaultPostsPerPage
	}
	if c.RSS.Path == "" {
		c.RSS.Path = DefaultRSSPath
	}

	for i := range c.GitContent {
		if c.GitContent[i].Branch == "" {
			c.GitContent[i].Branch = DefaultGitBranch
		}
	}
	for i := range c.ReleaseRepo {
		if c.ReleaseRepo[i].Provider == "" {
			c.ReleaseRepo[i].Provider = DefaultProvider
		}
	}
	if c.HelpQA != nil {
		if c.HelpQA.Provider == "" {
			c.HelpQA.Provider = DefaultProvider
		}
		if c.HelpQA.LabelPrefix == "" {
			c.HelpQA.LabelPrefix = DefaultLabelPrefix
		}
	}
	if c.Projects != nil && c.Projects.Provider == "" {
		c.Projects.Provider = DefaultProvider
	}
	if c.Comments != nil && c.Comments.Provider == "giscus" {
		if c.Comments.Category == "" {
			c.Comments.Category = DefaultGiscusCategory
		}
		if c.Comments.Mapping == "" {
			c.Comments.Mapping = DefaultGiscusMapping
		}
	}
	if c.Pricing != nil {
		for i := range c.Pricing.Plans {
			plan := &c.Pricing.Plans[i]
			if plan.Currency == "" {
				plan.Currency = DefaultCurrency
			}
			if plan.PriceUnit == "" {
				plan.PriceUnit = DefaultPriceUnit
			}
		}
	}

	c.Build.normalize()
	c.Remote.normalize()
	if c.Markdown.LightStyle == "" {
		c.Markdown.LightStyle = DefaultLightStyle
	}
	if c.Markdown.DarkStyle == "" {
		c.Markdown.DarkStyle = DefaultDarkStyle
	}
}

func (b *BuildConfig) normalize() {
	if b.OutputDir == "" {
		b.OutputDir = DefaultOutputDir
	}
	if b.PublicDir == "" {
		b.PublicDir = DefaultPublicDir
	}
	if b.TemplatesDir == "" {
		b.TemplatesDir = DefaultTemplatesDir
	}
	if b.CacheDir == "" {
		b.CacheDir = DefaultCacheDir
	}
	if b.Workers <= 0 {
		b.Workers = runtime.NumCPU()
	}
}

func (r *RemoteConfig) normalize() {
	if r.Timeout <= 0 {
		r.Timeout = DefaultRemoteTimeout
	}
	if r.CacheTTL <= 0 {
		r.CacheTTL = DefaultRemoteCacheTTL
	}
	if r.UserAgent == "" {
		r.UserAgent = DefaultUserAgent
	}
	if r.GitHubAPI == "" {
		r.GitHubAPI = DefaultGitHubAPI
	}
	if r.GiteeAPI == "" {
		r.GiteeAPI = DefaultGiteeAPI
	}
}

// SiteMetadata is the subset of the configuration used for document heads
// and feeds.
type SiteMetadata struct {
	Title       string
	Description string
	URL         string
	Logo        string
	Lang        string
	Author      *Author
}

// SiteMetadata returns SEO metadata with the language defaulting to "en".
func (c *Config) SiteMetadata() SiteMetadata {
	lang := c.Lang
	if lang == "" {
		lang = DefaultLang
	}
	return SiteMetadata{
		Title:       c.Title,
		Description: c.Description,
		URL:         c.URL,
		Logo:        c.Logo,
		Lang:        lang,
		Author:      c.Author,
	}
}

// PricingEnabled reports whether the pricing page should be generated.
func (c *Config) PricingEnabled() bool {
	return c.Pricing != nil && c.Pricing.Enabled && len(c.Pricing.Plans) > 0
}

// HelpQAEnabled reports whether a help repository is configured.
func (c *Config) HelpQAEnabled() bool {
	return c.HelpQA != nil && c.HelpQA.Repo != ""
}

// ProjectsEnabled reports whether remote project listings are configured.
func (c *Config) ProjectsEnabled() bool {
	return c.Projects != nil && len(c.Projects.Owners) > 0
}

// GitContentDirName is the directory under the cache dir holding clones.
const GitContentDirName = "git-content"

// GitContentPath returns where source is checked out: its local override
// (relative to root when not absolute) or <root>/<cacheDir>/git-content/<name>.
func (c *Config) GitContentPath(root string, source GitContentSource) string {
	if local := strings.TrimSpace(source.Local); local != "" {
		if filepath.IsAbs(local) {
			return filepath.Clean(local)
		}
		return filepath.Join(root, local)
	}
	cacheDir := c.Build.CacheDir
	if cacheDir == "" {
		cacheDir = DefaultCacheDir
	}
	if !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(root, cacheDir)
	}
	return filepath.Join(cacheDir, GitContentDirName, source.Name)
}
