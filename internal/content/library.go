package content

import (
	"sort"
	"strings"
)

// Library is the immutable result of a content scan.
type Library struct {
	posts       []*Post
	pages       []*Page
	projects    []*Project
	collections map[string]*Collection
	order       []string
	dirs        []Dir
}

// NewLibrary builds a Library and applies the canonical orderings: posts are
// pinned first then newest first, projects are featured first.
func NewLibrary(posts []*Post, pages []*Page, projects []*Project, collections []*Collection) *Library {
	lib := &Library{
		posts:       append([]*Post(nil), posts...),
		pages:       append([]*Page(nil), pages...),
		projects:    append([]*Project(nil), projects...),
		collections: make(map[string]*Collection, len(collections)),
	}

	sort.SliceStable(lib.posts, func(i, j int) bool {
		a, b := lib.posts[i], lib.posts[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		return a.Date.After(b.Date)
	})
	sort.SliceStable(lib.projects, func(i, j int) bool {
		return lib.projects[i].Featured && !lib.projects[j].Featured
	})

	for _, collection := range collections {
		if collection == nil {
			continue
		}
		sort.SliceStable(collection.Entries, func(i, j int) bool {
			return collection.Entries[i].Date.After(collection.Entries[j].Date)
		})
		lib.collections[collection.Name] = collection
		lib.order = append(lib.order, collection.Name)
	}
	return lib
}

// Dirs returns the directories the library was read from.
func (l *Library) Dirs() []Dir {
	return append([]Dir(nil), l.dirs...)
}

// Posts returns published posts, or every post when includeDrafts is set.
func (l *Library) Posts(includeDrafts bool) []*Post {
	out := make([]*Post, 0, len(l.posts))
	for _, post := range l.posts {
		if includeDrafts || post.Published {
			out = append(out, post)
		}
	}
	return out
}

// PostBySlug finds a post, drafts included.
func (l *Library) PostBySlug(slug string) (*Post, bool) {
	for _, post := range l.posts {
		if post.Slug == slug {
			return post, true
		}
	}
	return nil, false
}

// Drafts returns unpublished posts.
func (l *Library) Drafts() []*Post {
	var out []*Post
	for _, post := range l.posts {
		if !post.Published {
			out = append(out, post)
		}
	}
	return out
}

// Archives groups published posts by year, newest year first.
func (l *Library) Archives() []Archive {
	byYear := map[int]*Archive{}
	var years []int
	for _, post := range l.Posts(false) {
		year := post.Date.Year()
		archive, ok := byYear[year]
		if !ok {
			archive = &Archive{Year: year}
			byYear[year] = archive
			years = append(years, year)
		}
		archive.Posts = append(archive.Posts, post)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	out := make([]Archive, 0, len(years))
	for _, year := range years {
		archive := byYear[year]
		sort.SliceStable(archive.Posts, func(i, j int) bool {
			return archive.Posts[i].Date.After(archive.Posts[j].Date)
		})
		out = append(out, *archive)
	}
	return out
}

// Tags counts tags across published posts. The first spelling seen for a
// slug is kept. Results are ordered by count, then name.
func (l *Library) Tags() []TagCount {
	index := map[string]int{}
	var out []TagCount
	for _, post := range l.Posts(false) {
		for _, tag := range post.Tags {
			if i, ok := index[tag.Slug]; ok {
				out[i].Count++
				continue
			}
			index[tag.Slug] = len(out)
			out = append(out, TagCount{Tag: tag, Count: 1})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.Compare(out[i].Name, out[j].Name) < 0
	})
	return out
}

// PostsByTag returns published posts tagged with slug.
func (l *Library) PostsByTag(slug string) []*Post {
	var out []*Post
	for _, post := range l.Posts(false) {
		if post.HasTag(slug) {
			out = append(out, post)
		}
	}
	return out
}

func (l *Library) Pages() []*Page {
	return append([]*Page(nil), l.pages...)
}

func (l *Library) PageBySlug(slug string) (*Page, bool) {
	for _, page := range l.pages {
		if page.Slug == slug {
			return page, true
		}
	}
	return nil, false
}

func (l *Library) Projects() []*Project {
	return append([]*Project(nil), l.projects...)
}

func (l *Library) ProjectBySlug(slug string) (*Project, bool) {
	for _, project := range l.projects {
		if project.Slug == slug {
			return project, true
		}
	}
	return nil, false
}

// Collections returns custom collections in configuration order.
func (l *Library) Collections() []*Collection {
	out := make([]*Collection, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.collections[name])
	}
	return out
}

// Collection returns the named custom collection.
func (l *Library) Collection(name string) (*Collection, bool) {
	collection, ok := l.collections[name]
	return collection, ok
}
