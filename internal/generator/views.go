package generator

import (
	"time"

	"github.com/goliatone/go-zoe/internal/changelog"
	"github.com/goliatone/go-zoe/internal/content"
	"github.com/goliatone/go-zoe/internal/helpqa"
	"github.com/goliatone/go-zoe/internal/projects"
	"github.com/goliatone/go-zoe/internal/releases"
	"github.com/goliatone/go-zoe/internal/siteconfig"
	"github.com/goliatone/go-zoe/internal/themes"
)

// Page kinds. Each kind renders with the template of the same name unless a
// page picks a more specific one.
const (
	KindHome           = "home"
	KindBlog           = "blog"
	KindPost           = "post"
	KindTags           = "tags"
	KindTag            = "tag"
	KindArchives       = "archives"
	KindDrafts         = "drafts"
	KindProjects       = "projects"
	KindReleases       = "releases"
	KindChangelog      = "changelog"
	KindChangelogEntry = "changelog-entry"
	KindHelp           = "help"
	KindHelpCategory   = "help-category"
	KindHelpItem       = "help-item"
	KindPricing        = "pricing"
	KindPage           = "page"
	KindCollection     = "collection"
	KindEntry          = "collection-entry"
	KindNotFound       = "404"
)

// View is the data every page template receives.
type View struct {
	Site  *siteconfig.Config
	Meta  PageMeta
	Kind  string
	Path  string
	URL   string
	Theme *themes.Theme
	Build BuildInfo
	Data  any
}

// PageMeta feeds the document head.
type PageMeta struct {
	Title       string
	Description string
	Canonical   string
	Image       string
	Type        string
	NoIndex     bool
}

// BuildInfo describes the running build.
type BuildInfo struct {
	ID          string
	GeneratedAt time.Time
	Drafts      bool
}

// Pagination links a paginated listing.
type Pagination struct {
	Page       int
	TotalPages int
	PrevURL    string
	NextURL    string
}

type HomeView struct {
	Posts    []*content.Post
	Projects []*content.Project
	Repos    []*projects.Project
}

type BlogView struct {
	Title       string
	Description string
	Posts       []*content.Post
	Pagination  Pagination
}

type PostView struct {
	Post     *content.Post
	Prev     *content.Post
	Next     *content.Post
	Comments *siteconfig.CommentsConfig
}

type TagsView struct {
	Tags []content.TagCount
}

type TagView struct {
	Tag   content.Tag
	Posts []*content.Post
}

type ArchivesView struct {
	Archives []content.Archive
}

type DraftsView struct {
	Posts []*content.Post
}

type ProjectsView struct {
	Projects []*content.Project
	Repos    []*projects.Project
}

type ReleasesView struct {
	Latest *releases.Release
	Groups []releases.VersionGroup
}

type ChangelogView struct {
	Title       string
	Description string
	Entries     []*changelog.Entry
}

type ChangelogEntryView struct {
	Entry *changelog.Entry
}

type HelpView struct {
	Categories []*helpqa.Category
	Pinned     []*helpqa.Item
	Items      []*helpqa.Item
}

type HelpCategoryView struct {
	Category *helpqa.Category
	Items    []*helpqa.Item
}

type HelpItemView struct {
	Item *helpqa.Item
}

// PlanView pairs a pricing plan with its derived yearly price.
type PlanView struct {
	Plan      siteconfig.PricingPlan
	Yearly    float64
	HasYearly bool
}

type PricingView struct {
	Pricing *siteconfig.PricingConfig
	Plans   []PlanView
}

type PageView struct {
	Page *content.Page
}

type CollectionView struct {
	Collection *content.Collection
}

type EntryView struct {
	Collection *content.Collection
	Entry      *content.Entry
}
