package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-zoe/internal/changelog"
	"github.com/goliatone/go-zoe/internal/content"
	"github.com/goliatone/go-zoe/internal/releases"
	"github.com/goliatone/go-zoe/internal/routes"
)

const (
	homePostCount    = 3
	homeProjectCount = 3
)

// pageJob is one page to render.
type pageJob struct {
	kind     string
	route    string
	path     string
	output   string
	template string
	lastMod  time.Time
	view     View
}

type planner struct {
	s       *service
	data    *siteData
	info    BuildInfo
	jobs    []pageJob
	outputs map[string]string
	errs    []error
}

// plan lays out every page of the site. Fixed routes are planned before
// custom pages so they win when a page slug collides with them.
func (s *service) plan(data *siteData, info BuildInfo) ([]pageJob, []error) {
	p := &planner{s: s, data: data, info: info, outputs: map[string]string{}}

	p.home()
	p.blog()
	p.posts()
	p.tags()
	p.add(KindArchives, routes.BlogArchives, nil, "", PageMeta{Title: "Archives"}, time.Time{},
		ArchivesView{Archives: data.library.Archives()})
	if data.drafts {
		p.add(KindDrafts, routes.BlogDrafts, nil, "", PageMeta{Title: "Drafts", NoIndex: true}, time.Time{},
			DraftsView{Posts: data.library.Drafts()})
	}
	p.add(KindProjects, routes.Projects, nil, "", PageMeta{Title: "Projects"}, time.Time{},
		ProjectsView{Projects: data.library.Projects(), Repos: data.repos})
	p.releases()
	p.changelog()
	p.help()
	p.pricing()
	p.pages()
	p.collections()
	p.add(KindNotFound, routes.NotFound, nil, "", PageMeta{Title: "Not found", NoIndex: true}, time.Time{}, nil)

	return p.jobs, p.errs
}

func (p *planner) add(kind, route string, params map[string]any, template string, meta PageMeta, lastMod time.Time, data any) {
	table := p.s.deps.Routes
	sitePath, err := table.Path(route, params)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("generator: plan %s: %w", kind, err))
		return
	}
	output := routes.OutputFile(sitePath)
	if owner, ok := p.outputs[output]; ok {
		p.s.logger.Warn("generator.plan.duplicate_output", "output", output, "kept", owner, "dropped", kind)
		return
	}
	p.outputs[output] = kind

	if template == "" {
		template = kind
	}
	absolute := table.Absolute(sitePath)
	if meta.Canonical == "" {
		meta.Canonical = absolute
	}
	if meta.Type == "" {
		meta.Type = "website"
	}

	p.jobs = append(p.jobs, pageJob{
		kind:     kind,
		route:    route,
		path:     sitePath,
		output:   output,
		template: template,
		lastMod:  lastMod,
		view: View{
			Site:  p.s.deps.Config,
			Meta:  meta,
			Kind:  kind,
			Path:  sitePath,
			URL:   absolute,
			Theme: p.data.theme,
			Build: p.info,
			Data:  data,
		},
	})
}

func (p *planner) home() {
	cfg := p.s.deps.Config
	lib := p.data.library
	view := HomeView{
		Posts:    head(lib.Posts(false), homePostCount),
		Projects: head(lib.Projects(), homeProjectCount),
		Repos:    head(p.data.repos, homeProjectCount),
	}
	p.add(KindHome, routes.Home, nil, "", PageMeta{Description: cfg.Description, Image: cfg.Logo}, time.Time{}, view)
}

func (p *planner) blog() {
	cfg := p.s.deps.Config
	posts := p.data.library.Posts(false)
	perPage := cfg.Blog.PostsPerPage
	if perPage <= 0 {
		perPage = len(posts)
	}
	total := 1
	if perPage > 0 && len(posts) > perPage {
		total = (len(posts) + perPage - 1) / perPage
	}

	for page := 1; page <= total; page++ {
		start := (page - 1) * perPage
		end := start + perPage
		if end > len(posts) || perPage == 0 {
			end = len(posts)
		}
		view := BlogView{
			Title:       cfg.Blog.Title,
			Description: cfg.Blog.Description,
			Posts:       posts[start:end],
			Pagination: Pagination{
				Page:       page,
				TotalPages: total,
				PrevURL:    p.blogPageHref(page - 1),
				NextURL:    p.blogPageHref(page + 1),
			},
		}
		if page == total {
			view.Pagination.NextURL = ""
		}
		meta := PageMeta{Title: cfg.Blog.Title, Description: cfg.Blog.Description}
		if page == 1 {
			p.add(KindBlog, routes.Blog, nil, "", meta, time.Time{}, view)
			continue
		}
		meta.Title = fmt.Sprintf("%s (%d/%d)", cfg.Blog.Title, page, total)
		p.add(KindBlog, routes.BlogPage, map[string]any{"page": page}, "", meta, time.Time{}, view)
	}
}

func (p *planner) blogPageHref(page int) string {
	if page < 1 {
		return ""
	}
	table := p.s.deps.Routes
	var (
		href string
		err  error
	)
	if page == 1 {
		href, err = table.Href(routes.Blog, nil)
	} else {
		href, err = table.Href(routes.BlogPage, map[string]any{"page": page})
	}
	if err != nil {
		return ""
	}
	return href
}

// posts plans one page per post. Previous points at the next older published
// post and Next at the next newer one; drafts get neither.
func (p *planner) posts() {
	lib := p.data.library
	published := lib.Posts(false)
	index := make(map[string]int, len(published))
	for i, post := range published {
		index[post.Slug] = i
	}

	for _, post := range lib.Posts(p.data.drafts) {
		view := PostView{Post: post, Comments: p.s.deps.Config.Comments}
		if i, ok := index[post.Slug]; ok {
			if i+1 < len(published) {
				view.Prev = published[i+1]
			}
			if i > 0 {
				view.Next = published[i-1]
			}
		}
		meta := PageMeta{
			Title:       post.Title,
			Description: firstNonEmpty(post.Description, post.Excerpt),
			Image:       post.Banner,
			Type:        "article",
			NoIndex:     !post.Published,
		}
		lastMod := post.ModifiedDate
		if lastMod.IsZero() {
			lastMod = post.Date
		}
		p.add(KindPost, routes.BlogPost, map[string]any{"slug": post.Slug}, "", meta, lastMod, view)
	}
}

func (p *planner) tags() {
	lib := p.data.library
	tags := lib.Tags()
	p.add(KindTags, routes.BlogTags, nil, "", PageMeta{Title: "Tags"}, time.Time{}, TagsView{Tags: tags})
	for _, tag := range tags {
		p.add(KindTag, routes.BlogTag, map[string]any{"slug": tag.Slug}, "",
			PageMeta{Title: "#" + tag.Name}, time.Time{},
			TagView{Tag: tag.Tag, Posts: lib.PostsByTag(tag.Slug)})
	}
}

func (p *planner) releases() {
	if len(p.s.deps.Config.ReleaseRepo) == 0 {
		return
	}
	list := p.data.releases
	view := ReleasesView{
		Latest: releases.Latest(list, false),
		Groups: releases.GroupByVersion(list),
	}
	p.add(KindReleases, routes.Releases, nil, "", PageMeta{Title: "Releases"}, time.Time{}, view)
}

func (p *planner) changelog() {
	cfg := p.s.deps.Config
	entries := p.data.changelog
	if cfg.Changelog == nil && len(entries) == 0 {
		return
	}
	title, description := "Changelog", ""
	if cfg.Changelog != nil {
		title = firstNonEmpty(cfg.Changelog.Title, title)
		description = cfg.Changelog.Description
	}
	p.add(KindChangelog, routes.Changelog, nil, "", PageMeta{Title: title, Description: description}, time.Time{},
		ChangelogView{Title: title, Description: description, Entries: entries})
	for _, entry := range entries {
		p.add(KindChangelogEntry, routes.ChangelogEntry, map[string]any{"slug": entry.Slug}, "",
			PageMeta{Title: changelogTitle(entry)}, entry.Time(),
			ChangelogEntryView{Entry: entry})
	}
}

func changelogTitle(entry *changelog.Entry) string {
	if entry.Title != "" {
		return entry.Title
	}
	return changelog.DefaultTitle(entry.Version)
}

func (p *planner) help() {
	catalog := p.data.help
	if !p.s.deps.Config.HelpQAEnabled() || catalog == nil {
		return
	}
	p.add(KindHelp, routes.Help, nil, "", PageMeta{Title: "Help"}, time.Time{}, HelpView{
		Categories: catalog.Categories(),
		Pinned:     catalog.Pinned(),
		Items:      catalog.Items(),
	})
	for _, category := range catalog.Categories() {
		p.add(KindHelpCategory, routes.HelpCategory, map[string]any{"id": category.ID}, "",
			PageMeta{Title: category.Name, Description: category.Description}, time.Time{},
			HelpCategoryView{Category: category, Items: catalog.ByCategory(category.ID)})
	}
	for _, item := range catalog.Items() {
		p.add(KindHelpItem, routes.HelpItem, map[string]any{"id": item.ID}, "",
			PageMeta{Title: item.Title, Type: "article"}, item.CreatedAt,
			HelpItemView{Item: item})
	}
}

func (p *planner) pricing() {
	cfg := p.s.deps.Config
	if !cfg.PricingEnabled() {
		return
	}
	plans := make([]PlanView, 0, len(cfg.Pricing.Plans))
	for _, plan := range cfg.Pricing.Plans {
		yearly, ok := plan.Price.Yearly(cfg.Pricing.YearlyDiscount)
		plans = append(plans, PlanView{Plan: plan, Yearly: yearly, HasYearly: ok})
	}
	p.add(KindPricing, routes.Pricing, nil, "",
		PageMeta{Title: firstNonEmpty(cfg.Pricing.Title, "Pricing"), Description: cfg.Pricing.Description}, time.Time{},
		PricingView{Pricing: cfg.Pricing, Plans: plans})
}

// pages plans standalone pages. A page with layout "x" renders with the
// "page-x" template when one exists.
func (p *planner) pages() {
	for _, page := range p.data.library.Pages() {
		template := KindPage
		if layout := strings.TrimSpace(page.Layout); layout != "" {
			if name := KindPage + "-" + layout; p.s.deps.Renderer.Has(name) {
				template = name
			}
		}
		p.add(KindPage, routes.Page, map[string]any{"slug": page.Slug}, template,
			PageMeta{Title: page.Title, Description: page.Description}, page.ModTime,
			PageView{Page: page})
	}
}

func (p *planner) collections() {
	for _, collection := range p.data.library.Collections() {
		p.add(KindCollection, routes.Collection, map[string]any{"collection": collection.Name}, "",
			PageMeta{Title: collection.Name}, time.Time{},
			CollectionView{Collection: collection})
		for _, entry := range collection.Entries {
			p.add(KindEntry, routes.CollectionEntry, map[string]any{"collection": collection.Name, "slug": entry.Slug},
				p.entryTemplate(collection, entry),
				PageMeta{Title: entry.Title, Description: entry.Description, Type: "article"}, entry.Date,
				EntryView{Collection: collection, Entry: entry})
		}
	}
}

func (p *planner) entryTemplate(collection *content.Collection, entry *content.Entry) string {
	for _, name := range []string{entry.Template, collection.Template} {
		if name = strings.TrimSpace(name); name != "" && p.s.deps.Renderer.Has(name) {
			return name
		}
	}
	return KindEntry
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
