package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-zoe"
)

func buildCmd(flags *rootFlags) *cobra.Command {
	var msg zoe.BuildSiteCommand

	c := &cobra.Command{
		Use:   "build",
		Short: "Render the site into the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			msg.ResultCallback = func(env zoe.ResultEnvelope) {
				printSync(out, env.Sync)
				printBuild(out, env.Result)
			}
			return withModule(flags, func(res *moduleResources) error {
				return res.handlers.build.Execute(cmd.Context(), msg)
			})
		},
	}

	c.Flags().BoolVar(&msg.Force, "force", false, "rewrite every output, ignoring the incremental manifest")
	c.Flags().BoolVar(&msg.IncludeDrafts, "drafts", false, "render unpublished posts")
	c.Flags().BoolVar(&msg.DryRun, "dry-run", false, "render without writing files")
	c.Flags().BoolVar(&msg.Sync, "sync", false, "sync git content sources before building")
	return c
}

func printBuild(w io.Writer, result *zoe.BuildResult) {
	if result == nil {
		return
	}
	mode := "build"
	if result.DryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(w, "%s %s: %d pages written, %d unchanged; %d assets written, %d unchanged; %d removed in %s\n",
		mode, result.ID, result.PagesBuilt, result.PagesSkipped,
		result.AssetsBuilt, result.AssetsSkipped, len(result.Removed), result.Duration.Round(time.Millisecond))
	for _, diag := range result.Diagnostics {
		if diag.Err != nil {
			fmt.Fprintf(w, "  error %s (%s): %v\n", diag.Path, diag.Template, diag.Err)
		}
	}
}

func printSync(w io.Writer, results []zoe.SyncResult) {
	for _, result := range results {
		if result.Err != nil {
			fmt.Fprintf(w, "sync %s: %s: %v\n", result.Name, result.Action, result.Err)
			continue
		}
		fmt.Fprintf(w, "sync %s: %s %s\n", result.Name, result.Action, result.Path)
	}
}
