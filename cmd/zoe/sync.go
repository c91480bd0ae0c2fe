package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-zoe"
)

func syncCmd(flags *rootFlags) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "sync [names...]",
		Short: "Clone or update git content sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			msg := zoe.SyncContentCommand{
				Sources: args,
				Force:   force,
				ResultCallback: func(env zoe.ResultEnvelope) {
					printSync(out, env.Sync)
				},
			}
			return withModule(flags, func(res *moduleResources) error {
				return res.handlers.sync.Execute(cmd.Context(), msg)
			})
		},
	}

	c.Flags().BoolVar(&force, "force", false, "sync even when a checkout is fresh")
	return c
}
