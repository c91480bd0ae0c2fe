package sitecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-zoe/internal/generator"
	"github.com/goliatone/go-zoe/internal/gitsync"
)

const (
	buildSiteMessageType   = "zoe.site.build"
	syncContentMessageType = "zoe.site.sync"
	cleanSiteMessageType   = "zoe.site.clean"
)

// ResultCallback receives build results. It is optional and runs
// synchronously inside the handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a site command.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Sync     []gitsync.Result
	Metadata map[string]any
}

// BuildSiteCommand renders the site into the output directory. Sync refreshes
// git content sources first.
type BuildSiteCommand struct {
	Force          bool           `json:"force,omitempty"`
	IncludeDrafts  bool           `json:"include_drafts,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	Sync           bool           `json:"sync,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate rejects a dry run that would still touch the git cache.
func (m BuildSiteCommand) Validate() error {
	errs := validation.Errors{}
	if m.DryRun && m.Sync {
		errs["sync"] = validation.NewError("zoe.site.build.sync_dry_run", "sync cannot be combined with dry_run")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SyncContentCommand clones or updates git content sources. An empty Sources
// list means every configured source.
type SyncContentCommand struct {
	Sources        []string       `json:"sources,omitempty"`
	Force          bool           `json:"force,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (SyncContentCommand) Type() string { return syncContentMessageType }

// Validate ensures source names are not blank.
func (m SyncContentCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Sources, validation.Each(validation.By(notBlank))),
	)
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("zoe.site.sync.source_invalid", "sources must not contain empty values")
	}
	return nil
}

// CleanSiteCommand empties the output directory.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }

// FeatureGates exposes runtime switches used to guard handler execution.
type FeatureGates struct {
	GeneratorEnabled func() bool
}

func (g FeatureGates) generatorEnabled() bool {
	if g.GeneratorEnabled == nil {
		return true
	}
	return g.GeneratorEnabled()
}
