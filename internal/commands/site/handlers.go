package sitecmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-zoe/internal/commands"
	"github.com/goliatone/go-zoe/internal/generator"
	"github.com/goliatone/go-zoe/internal/gitsync"
	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/internal/siteconfig"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

// ContentSyncer refreshes git content sources. *gitsync.Syncer satisfies it.
type ContentSyncer interface {
	Sources() []siteconfig.GitContentSource
	SyncAll(ctx context.Context, sources []siteconfig.GitContentSource, force bool) []gitsync.Result
}

// BuildSiteHandler runs generator builds through the shared command handler.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the generator service.
// syncer may be nil when the site has no git content.
func NewBuildSiteHandler(service generator.Service, syncer ContentSyncer, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := logging.Fallback(logger)

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil || !gates.generatorEnabled() {
			return commands.ServiceUnavailable(generator.ErrServiceDisabled)
		}

		var synced []gitsync.Result
		if msg.Sync && syncer != nil {
			synced = syncer.SyncAll(ctx, syncer.Sources(), msg.Force)
			for _, failure := range failedResults(synced) {
				baseLogger.Warn("site.build.sync_failed", "source", failure.Name, "error", failure.Err)
			}
		}

		result, err := service.Build(ctx, generator.BuildOptions{
			Force:         msg.Force,
			IncludeDrafts: msg.IncludeDrafts,
			DryRun:        msg.DryRun,
		})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Sync:   synced,
			Metadata: map[string]any{
				"operation": "build",
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("site.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if msg.Force {
				fields["force"] = true
			}
			if msg.IncludeDrafts {
				fields["drafts"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.Sync {
				fields["sync"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DefaultSyncCron is the schedule used when the sync handler is registered
// with a cron runner.
const DefaultSyncCron = "@hourly"

// SyncContentHandler refreshes git content sources.
type SyncContentHandler struct {
	inner *commands.Handler[SyncContentCommand]
	cron  command.HandlerConfig
}

// ErrUnknownSource is returned when a requested source is not configured.
var ErrUnknownSource = errors.New("sitecmd: unknown git content source")

// NewSyncContentHandler constructs a handler backed by syncer. The command
// fails when any selected source fails to sync.
func NewSyncContentHandler(syncer ContentSyncer, logger interfaces.Logger, opts ...commands.HandlerOption[SyncContentCommand]) *SyncContentHandler {
	baseLogger := logging.Fallback(logger)

	exec := func(ctx context.Context, msg SyncContentCommand) error {
		if syncer == nil {
			return commands.ServiceUnavailable(fmt.Errorf("sitecmd: git sync is not configured"))
		}
		sources, err := selectSources(syncer.Sources(), msg.Sources)
		if err != nil {
			return err
		}
		results := syncer.SyncAll(ctx, sources, msg.Force)
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Sync: results,
			Metadata: map[string]any{
				"operation": "sync",
				"sources":   len(sources),
			},
		})
		if failed := failedResults(results); len(failed) > 0 {
			names := make([]string, 0, len(failed))
			for _, result := range failed {
				names = append(names, result.Name)
			}
			return fmt.Errorf("sitecmd: sync failed for %s: %w", strings.Join(names, ", "), failed[0].Err)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SyncContentCommand]{
		commands.WithLogger[SyncContentCommand](baseLogger),
		commands.WithOperation[SyncContentCommand]("site.sync"),
		commands.WithMessageFields(func(msg SyncContentCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.Sources) > 0 {
				fields["sources"] = strings.Join(msg.Sources, ",")
			}
			if msg.Force {
				fields["force"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SyncContentCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncContentHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
		cron:  command.HandlerConfig{Expression: DefaultSyncCron},
	}
}

// Execute satisfies command.Commander[SyncContentCommand].
func (h *SyncContentHandler) Execute(ctx context.Context, msg SyncContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// WithCronExpression overrides the cron schedule. Blank values are ignored.
func (h *SyncContentHandler) WithCronExpression(expression string) *SyncContentHandler {
	if trimmed := strings.TrimSpace(expression); trimmed != "" {
		h.cron.Expression = trimmed
	}
	return h
}

// CronHandler satisfies command.CronCommand. Scheduled runs sync every
// source that is due.
func (h *SyncContentHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), SyncContentCommand{})
	}
}

// CronOptions satisfies command.CronCommand.
func (h *SyncContentHandler) CronOptions() command.HandlerConfig {
	return h.cron
}

// CleanSiteHandler empties the output directory.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler constructs a handler that cleans generator output.
func NewCleanSiteHandler(service generator.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	baseLogger := logging.Fallback(logger)

	exec := func(ctx context.Context, _ CleanSiteCommand) error {
		if service == nil || !gates.generatorEnabled() {
			return commands.ServiceUnavailable(generator.ErrServiceDisabled)
		}
		return service.Clean(ctx)
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](baseLogger),
		commands.WithOperation[CleanSiteCommand]("site.clean"),
		commands.WithTelemetry(commands.DefaultTelemetry[CleanSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// selectSources keeps the configured order. Names match case-insensitively.
func selectSources(all []siteconfig.GitContentSource, names []string) ([]siteconfig.GitContentSource, error) {
	if len(names) == 0 {
		return all, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[strings.ToLower(strings.TrimSpace(name))] = false
	}
	selected := make([]siteconfig.GitContentSource, 0, len(names))
	for _, source := range all {
		key := strings.ToLower(source.Name)
		if _, ok := wanted[key]; ok {
			wanted[key] = true
			selected = append(selected, source)
		}
	}
	for _, name := range names {
		if !wanted[strings.ToLower(strings.TrimSpace(name))] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSource, strings.TrimSpace(name))
		}
	}
	return selected, nil
}

func failedResults(results []gitsync.Result) []gitsync.Result {
	var failed []gitsync.Result
	for _, result := range results {
		if result.Action == gitsync.ActionFailed {
			failed = append(failed, result)
		}
	}
	return failed
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
