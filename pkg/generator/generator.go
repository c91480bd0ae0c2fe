// Package generator exposes the static build API for hosts that wire their
// own content and template sources instead of using zoe.New.
package generator

import internal "github.com/goliatone/go-zoe/internal/generator"

type (
	Service          = internal.Service
	BuildOptions     = internal.BuildOptions
	BuildResult      = internal.BuildResult
	RenderedPage     = internal.RenderedPage
	RenderDiagnostic = internal.RenderDiagnostic
	Dependencies     = internal.Dependencies
	ContentSource    = internal.ContentSource
	ReleaseSource    = internal.ReleaseSource
	HelpSource       = internal.HelpSource
	ProjectSource    = internal.ProjectSource
	ChangelogSource  = internal.ChangelogSource
	ThemeResolver    = internal.ThemeResolver
	View             = internal.View
	PageMeta         = internal.PageMeta
)

var ErrServiceDisabled = internal.ErrServiceDisabled

// ManifestFile is written to the output root to track incremental builds.
const ManifestFile = internal.ManifestFile

// NewService wires a generator with the supplied dependencies.
func NewService(deps Dependencies) Service {
	return internal.NewService(deps)
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return internal.NewDisabledService()
}
