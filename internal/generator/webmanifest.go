package generator

import (
	"github.com/goccy/go-json"

	"github.com/goliatone/go-zoe/internal/routes"
)

const (
	webManifestFile     = "manifest.webmanifest"
	defaultManifestLang = "zh-CN"
	defaultBackground   = "#ffffff"
	defaultThemeColor   = "#000000"
)

type webManifest struct {
	Name                      string                `json:"name"`
	ShortName                 string                `json:"short_name"`
	Description               string                `json:"description,omitempty"`
	StartURL                  string                `json:"start_url"`
	Display                   string                `json:"display"`
	BackgroundColor           string                `json:"background_color"`
	ThemeColor                string                `json:"theme_color"`
	Orientation               string                `json:"orientation"`
	Icons                     []webManifestIcon     `json:"icons"`
	Categories                []string              `json:"categories"`
	Lang                      string                `json:"lang"`
	Scope                     string                `json:"scope"`
	PreferRelatedApplications bool                  `json:"prefer_related_applications"`
	Shortcuts                 []webManifestShortcut `json:"shortcuts,omitempty"`
}

type webManifestIcon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type,omitempty"`
	Purpose string `json:"purpose"`
}

type webManifestShortcut struct {
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// buildWebManifest describes the site as an installable web app. Colors come
// from the light palette of the active theme.
func (s *service) buildWebManifest(data *siteData) ([]byte, error) {
	cfg := s.deps.Config
	table := s.deps.Routes

	background, themeColor := defaultBackground, defaultThemeColor
	if data.theme != nil {
		background = firstNonEmpty(data.theme.Light.Background, background)
		themeColor = firstNonEmpty(data.theme.Light.Primary, themeColor)
	}
	themeColor = firstNonEmpty(cfg.PrimaryColor, themeColor)

	var icons []webManifestIcon
	if cfg.Logo != "" {
		icons = append(icons, webManifestIcon{Src: table.Rel(cfg.Logo), Sizes: "any", Purpose: "any"})
	}
	icons = append(icons,
		webManifestIcon{Src: table.Rel("/icons/icon-192x192.png"), Sizes: "192x192", Type: "image/png", Purpose: "any maskable"},
		webManifestIcon{Src: table.Rel("/icons/icon-512x512.png"), Sizes: "512x512", Type: "image/png", Purpose: "any maskable"},
	)

	manifest := webManifest{
		Name:                      cfg.Title,
		ShortName:                 cfg.Title,
		Description:               cfg.Description,
		StartURL:                  table.Rel("/"),
		Display:                   "standalone",
		BackgroundColor:           background,
		ThemeColor:                themeColor,
		Orientation:               "portrait-primary",
		Icons:                     icons,
		Categories:                []string{"website", "blog"},
		Lang:                      firstNonEmpty(cfg.Lang, defaultManifestLang),
		Scope:                     table.Rel("/"),
		PreferRelatedApplications: false,
	}
	if href, err := table.Href(routes.Blog, nil); err == nil {
		manifest.Shortcuts = append(manifest.Shortcuts, webManifestShortcut{
			Name: "博客", ShortName: "博客", Description: firstNonEmpty(cfg.Blog.Description, cfg.Blog.Title), URL: href,
		})
	}
	if href, err := table.Href(routes.Projects, nil); err == nil {
		manifest.Shortcuts = append(manifest.Shortcuts, webManifestShortcut{
			Name: "项目", ShortName: "项目", URL: href,
		})
	}
	return json.MarshalIndent(manifest, "", "  ")
}
