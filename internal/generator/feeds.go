package generator

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-zoe/internal/content"
	"github.com/goliatone/go-zoe/internal/routes"
)

const maxFeedItems = 20

const atomNamespace = "http://www.w3.org/2005/Atom"

type feedItem struct {
	Title       string
	Link        string
	Description string
	Categories  []string
	PublishedAt time.Time
}

// buildRSS renders the RSS 2.0 document of the latest published posts.
func (s *service) buildRSS(posts []*content.Post, generatedAt time.Time) (string, error) {
	cfg := s.deps.Config
	table := s.deps.Routes

	feedPath, err := table.Path(routes.RSS, nil)
	if err != nil {
		return "", err
	}
	home, err := table.URL(routes.Home, nil)
	if err != nil {
		return "", err
	}

	latest := append([]*content.Post(nil), posts...)
	sort.SliceStable(latest, func(i, j int) bool {
		return latest[i].Date.After(latest[j].Date)
	})
	latest = head(latest, maxFeedItems)

	items := make([]feedItem, 0, len(latest))
	for _, post := range latest {
		link, err := table.URL(routes.BlogPost, map[string]any{"slug": post.Slug})
		if err != nil {
			return "", err
		}
		item := feedItem{
			Title:       post.Title,
			Link:        link,
			Description: firstNonEmpty(post.Description, post.Excerpt),
			PublishedAt: post.Date,
		}
		for _, tag := range post.Tags {
			item.Categories = append(item.Categories, tag.Name)
		}
		items = append(items, item)
	}

	title := firstNonEmpty(cfg.RSS.Title, cfg.Title+" RSS Feed")
	lang := firstNonEmpty(cfg.Lang, "en")

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<rss version="2.0" xmlns:atom="%s">`+"\n", atomNamespace))
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", cdata(title)))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", escapeXML(home)))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", cdata(cfg.Description)))
	builder.WriteString(fmt.Sprintf("    <language>%s</language>\n", escapeXML(lang)))
	builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", generatedAt.UTC().Format(time.RFC1123Z)))
	builder.WriteString(fmt.Sprintf(`    <atom:link href="%s" rel="self" type="application/rss+xml"/>`+"\n", escapeXML(table.Absolute(feedPath))))
	for _, item := range items {
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", cdata(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf(`      <guid isPermaLink="true">%s</guid>`+"\n", escapeXML(item.Link)))
		if item.Description != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", cdata(item.Description)))
		}
		if !item.PublishedAt.IsZero() {
			builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", item.PublishedAt.UTC().Format(time.RFC1123Z)))
		}
		for _, category := range item.Categories {
			builder.WriteString(fmt.Sprintf("      <category>%s</category>\n", escapeXML(category)))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString("</rss>\n")
	return builder.String(), nil
}

func escapeXML(value string) string {
	return html.EscapeString(value)
}

// cdata wraps value in a CDATA section, splitting any "]]>" it contains.
func cdata(value string) string {
	return "<![CDATA[" + strings.ReplaceAll(value, "]]>", "]]]]><![CDATA[>") + "]]>"
}
