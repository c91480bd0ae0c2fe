package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-zoe/pkg/interfaces"
)

type writeCategory string

const (
	categoryPage        writeCategory = "page"
	categoryAsset       writeCategory = "asset"
	categoryPublic      writeCategory = "public"
	categoryFeed        writeCategory = "feed"
	categorySitemap     writeCategory = "sitemap"
	categoryRobots      writeCategory = "robots"
	categoryWebManifest writeCategory = "webmanifest"
)

// artifact is a generated non page file.
type artifact struct {
	Path     string
	Data     []byte
	Category writeCategory
}

type persistOptions struct {
	force       bool
	buildID     string
	generatedAt time.Time
}

type persistSummary struct {
	pagesBuilt    int
	pagesSkipped  int
	assetsBuilt   int
	assetsSkipped int
	removed       []string
	// pages maps page outputs to whether they were skipped.
	pages map[string]bool
}

// artifactWriter persists build outputs through OutputStorage and keeps the
// incremental manifest in sync with what was written.
type artifactWriter struct {
	storage interfaces.OutputStorage
	logger  interfaces.Logger
}

func newArtifactWriter(storage interfaces.OutputStorage, logger interfaces.Logger) *artifactWriter {
	return &artifactWriter{storage: storage, logger: logger}
}

func (w *artifactWriter) persist(ctx context.Context, pages []RenderedPage, assets []artifact, opts persistOptions) (persistSummary, error) {
	summary := persistSummary{pages: make(map[string]bool, len(pages))}
	if w.storage == nil {
		return summary, errors.New("generator: output storage is required")
	}

	previous := w.loadManifest(ctx)
	next := newBuildManifest()
	next.BuildID = opts.buildID
	next.GeneratedAt = opts.generatedAt
	current := map[string]struct{}{}

	var errs []error
	for _, page := range pages {
		entry := manifestOutput{
			Path:     page.Output,
			Category: string(categoryPage),
			Route:    page.Path,
			Template: page.Template,
			Checksum: page.Checksum,
			Size:     int64(len(page.HTML)),
		}
		current[page.Output] = struct{}{}
		skipped, err := w.write(ctx, previous, next, entry, []byte(page.HTML), opts)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		summary.pages[page.Output] = skipped
		if skipped {
			summary.pagesSkipped++
		} else {
			summary.pagesBuilt++
		}
	}

	for _, asset := range assets {
		if _, ok := current[asset.Path]; ok {
			w.logger.Warn("generator.write.shadowed", "path", asset.Path, "category", asset.Category)
			continue
		}
		entry := manifestOutput{
			Path:     asset.Path,
			Category: string(asset.Category),
			Checksum: computeHash(asset.Data),
			Size:     int64(len(asset.Data)),
		}
		current[asset.Path] = struct{}{}
		skipped, err := w.write(ctx, previous, next, entry, asset.Data, opts)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if skipped {
			summary.assetsSkipped++
		} else {
			summary.assetsBuilt++
		}
	}

	for _, stale := range previous.stale(current) {
		if err := w.storage.Remove(ctx, stale); err != nil {
			errs = append(errs, fmt.Errorf("generator: remove stale %s: %w", stale, err))
			continue
		}
		w.logger.Debug("generator.write.removed", "path", stale)
		summary.removed = append(summary.removed, stale)
	}

	if err := w.saveManifest(ctx, next); err != nil {
		errs = append(errs, err)
	}
	return summary, errors.Join(errs...)
}

// write stores data unless the manifest shows an identical copy that still
// exists. It reports whether the write was skipped.
func (w *artifactWriter) write(ctx context.Context, previous, next *buildManifest, entry manifestOutput, data []byte, opts persistOptions) (bool, error) {
	if strings.TrimSpace(entry.Path) == "" {
		return false, errors.New("generator: write requires path")
	}
	if !opts.force && previous.unchanged(entry.Path, entry.Checksum) {
		exists, err := w.storage.Exists(ctx, entry.Path)
		if err == nil && exists {
			old, _ := previous.lookup(entry.Path)
			entry.WrittenAt = old.WrittenAt
			next.set(entry)
			return true, nil
		}
	}
	if err := w.storage.WriteFile(ctx, entry.Path, data); err != nil {
		return false, fmt.Errorf("generator: write %s: %w", entry.Path, err)
	}
	entry.WrittenAt = opts.generatedAt
	next.set(entry)
	return false, nil
}

// loadManifest returns the previous manifest, or an empty one when it is
// missing or unreadable.
func (w *artifactWriter) loadManifest(ctx context.Context) *buildManifest {
	exists, err := w.storage.Exists(ctx, manifestFileName)
	if err != nil || !exists {
		return newBuildManifest()
	}
	data, err := w.storage.ReadFile(ctx, manifestFileName)
	if err != nil {
		w.logger.Warn("generator.manifest.read_failed", "error", err)
		return newBuildManifest()
	}
	manifest, err := parseManifest(data)
	if err != nil {
		w.logger.Warn("generator.manifest.invalid", "error", err)
		return newBuildManifest()
	}
	return manifest
}

func (w *artifactWriter) saveManifest(ctx context.Context, manifest *buildManifest) error {
	data, err := manifest.marshal()
	if err != nil {
		return fmt.Errorf("generator: encode manifest: %w", err)
	}
	if err := w.storage.WriteFile(ctx, manifestFileName, data); err != nil {
		return fmt.Errorf("generator: write manifest: %w", err)
	}
	return nil
}
