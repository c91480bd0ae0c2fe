package generator

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

// RenderedPage captures the rendered HTML output for a page.
type RenderedPage struct {
	Kind     string
	Route    string
	Path     string
	Output   string
	Template string
	HTML     string
	Checksum string
	LastMod  time.Time
	NoIndex  bool
	Duration time.Duration
	// Skipped is set after persisting when the output was already current.
	Skipped bool
}

// RenderDiagnostic records rendering timing and errors for individual pages.
type RenderDiagnostic struct {
	Kind     string
	Route    string
	Path     string
	Template string
	Duration time.Duration
	Err      error
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	err        error
}

// renderAll executes every job on a bounded worker pool. Results are sorted
// by output so repeated builds produce identical ordering.
func (s *service) renderAll(ctx context.Context, logger interfaces.Logger, jobs []pageJob) ([]RenderedPage, []RenderDiagnostic, []error) {
	var (
		mu          sync.Mutex
		rendered    = make([]RenderedPage, 0, len(jobs))
		diagnostics = make([]RenderDiagnostic, 0, len(jobs))
		errs        []error
	)

	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		diagnostics = append(diagnostics, outcome.diagnostic)
		if outcome.err != nil {
			errs = append(errs, outcome.err)
			return
		}
		rendered = append(rendered, outcome.page)
	}

	cancelled := func(job pageJob) renderOutcome {
		return renderOutcome{
			diagnostic: RenderDiagnostic{
				Kind:     job.kind,
				Route:    job.route,
				Path:     job.path,
				Template: job.template,
				Err:      ctx.Err(),
			},
			err: ctx.Err(),
		}
	}

	workerCount := s.effectiveWorkerCount(len(jobs))
	if workerCount <= 1 || len(jobs) <= 1 {
		for _, job := range jobs {
			select {
			case <-ctx.Done():
				collect(cancelled(job))
				return rendered, diagnostics, errs
			default:
				collect(s.renderPage(logger, job))
			}
		}
	} else {
		queue := make(chan pageJob)
		var wg sync.WaitGroup
		for i := 0; i < workerCount; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for job := range queue {
					select {
					case <-ctx.Done():
						collect(cancelled(job))
					default:
						collect(s.renderPage(logger, job))
					}
				}
			}()
		}
	feed:
		for _, job := range jobs {
			select {
			case <-ctx.Done():
				break feed
			case queue <- job:
			}
		}
		close(queue)
		wg.Wait()
	}

	sort.Slice(rendered, func(i, j int) bool { return rendered[i].Output < rendered[j].Output })
	sort.Slice(diagnostics, func(i, j int) bool { return diagnostics[i].Path < diagnostics[j].Path })
	return rendered, diagnostics, errs
}

func (s *service) renderPage(logger interfaces.Logger, job pageJob) renderOutcome {
	start := time.Now()
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{
			Kind:     job.kind,
			Route:    job.route,
			Path:     job.path,
			Template: job.template,
		},
	}

	var buf bytes.Buffer
	err := s.deps.Renderer.Render(job.template, job.view, &buf)
	duration := time.Since(start)
	outcome.diagnostic.Duration = duration
	if err != nil {
		wrapped := fmt.Errorf("generator: render %s with %s: %w", job.path, job.template, err)
		logging.WithRoute(logger, job.path).Error("generator.render.failed", "template", job.template, "error", err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	html := buf.String()
	outcome.page = RenderedPage{
		Kind:     job.kind,
		Route:    job.route,
		Path:     job.path,
		Output:   job.output,
		Template: job.template,
		HTML:     html,
		Checksum: computeHash(buf.Bytes()),
		LastMod:  job.lastMod,
		NoIndex:  job.view.Meta.NoIndex,
		Duration: duration,
	}
	return outcome
}
