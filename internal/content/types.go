package content

import (
	"time"

	"github.com/goliatone/go-zoe/internal/markdown"
)

// Tag is a post tag with its URL slug.
type Tag struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TagCount is a tag with the number of published posts using it.
type TagCount struct {
	Tag
	Count int `json:"count"`
}

// Post is a blog entry read from posts/.
type Post struct {
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Excerpt      string    `json:"excerpt,omitempty"`
	Date         time.Time `json:"date"`
	ModifiedDate time.Time `json:"modifiedDate"`
	Tags         []Tag     `json:"tags,omitempty"`
	Banner       string    `json:"banner,omitempty"`
	Published    bool      `json:"published"`
	Pinned       bool      `json:"pinned"`
	ReadingTime  int       `json:"readingTime"`
	Content      string    `json:"-"`
	HTML         string    `json:"-"`

	SourcePath  string               `json:"-"`
	FrontMatter markdown.FrontMatter `json:"-"`
}

// HasTag reports whether the post carries the tag with the given slug.
func (p *Post) HasTag(slug string) bool {
	for _, tag := range p.Tags {
		if tag.Slug == slug {
			return true
		}
	}
	return false
}

// Page is a standalone page read from pages/.
type Page struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Layout      string `json:"layout"`
	Container   string `json:"container,omitempty"`
	IsMDX       bool   `json:"isMdx"`
	Content     string `json:"-"`
	HTML        string `json:"-"`

	SourcePath  string               `json:"-"`
	ModTime     time.Time            `json:"-"`
	FrontMatter markdown.FrontMatter `json:"-"`
}

// Project is a showcase entry read from projects/.
type Project struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Repo        string   `json:"repo,omitempty"`
	URL         string   `json:"url,omitempty"`
	Banner      string   `json:"banner,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Featured    bool     `json:"featured"`
	Content     string   `json:"-"`
	HTML        string   `json:"-"`

	SourcePath string    `json:"-"`
	ModTime    time.Time `json:"-"`
}

// Entry belongs to a custom collection declared in contentTypes.
type Entry struct {
	Collection  string    `json:"collection"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Template    string    `json:"template,omitempty"`
	Content     string    `json:"-"`
	HTML        string    `json:"-"`

	SourcePath  string               `json:"-"`
	FrontMatter markdown.FrontMatter `json:"-"`
}

// Archive groups published posts by year.
type Archive struct {
	Year  int     `json:"year"`
	Posts []*Post `json:"posts"`
}

// Collection is a custom content type with its entries.
type Collection struct {
	Name     string
	Template string
	Entries  []*Entry
}
