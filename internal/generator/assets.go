package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/goliatone/go-zoe/internal/routes"
)

const (
	themeStylesheet     = "assets/theme.css"
	highlightStylesheet = "assets/highlight.css"
	robotsFile          = "robots.txt"
)

// siteArtifacts produces every non page output: feeds, sitemap, robots,
// web manifest, stylesheets and the public directory.
func (s *service) siteArtifacts(ctx context.Context, data *siteData, pages []RenderedPage, info BuildInfo) ([]artifact, []error) {
	cfg := s.deps.Config
	table := s.deps.Routes
	var (
		out  []artifact
		errs []error
	)

	if cfg.RSS.Enabled {
		feedPath, err := table.Path(routes.RSS, nil)
		if err == nil {
			var doc string
			doc, err = s.buildRSS(data.library.Posts(false), info.GeneratedAt)
			if err == nil {
				out = append(out, artifact{Path: routes.OutputFile(feedPath), Data: []byte(doc), Category: categoryFeed})
			}
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("generator: rss: %w", err))
		}
	}

	sitemapPath, err := table.Path(routes.Sitemap, nil)
	if err != nil {
		errs = append(errs, fmt.Errorf("generator: sitemap: %w", err))
	} else {
		out = append(out,
			artifact{Path: routes.OutputFile(sitemapPath), Data: []byte(s.buildSitemap(pages, info.GeneratedAt)), Category: categorySitemap},
			artifact{Path: robotsFile, Data: []byte(buildRobots(table.Absolute(sitemapPath))), Category: categoryRobots},
		)
	}

	manifest, err := s.buildWebManifest(data)
	if err != nil {
		errs = append(errs, fmt.Errorf("generator: web manifest: %w", err))
	} else {
		out = append(out, artifact{Path: webManifestFile, Data: manifest, Category: categoryWebManifest})
	}

	if data.theme != nil {
		out = append(out, artifact{Path: themeStylesheet, Data: []byte(data.theme.CSS(cfg.PrimaryColor)), Category: categoryAsset})
	}
	if s.deps.Stylesheet != nil && cfg.Markdown.HighlightEnabled() {
		css, err := s.deps.Stylesheet.Stylesheet()
		if err != nil {
			errs = append(errs, fmt.Errorf("generator: highlight stylesheet: %w", err))
		} else if len(css) > 0 {
			out = append(out, artifact{Path: highlightStylesheet, Data: css, Category: categoryAsset})
		}
	}

	public, err := s.publicFiles(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	out = append(out, public...)
	return out, errs
}

// publicFiles reads the public directory. Generated files take precedence
// over public files with the same name.
func (s *service) publicFiles(ctx context.Context) ([]artifact, error) {
	if s.deps.Public == nil {
		return nil, nil
	}
	var out []artifact
	err := fs.WalkDir(s.deps.Public, ".", func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			if name == "." && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if strings.HasPrefix(path.Base(name), ".") || name == manifestFileName {
			return nil
		}
		data, err := fs.ReadFile(s.deps.Public, name)
		if err != nil {
			return err
		}
		out = append(out, artifact{Path: name, Data: data, Category: categoryPublic})
		return nil
	})
	if err != nil {
		return out, fmt.Errorf("generator: copy public files: %w", err)
	}
	return out, nil
}
