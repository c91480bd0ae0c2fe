package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-zoe"
)

func cleanCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove everything from the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withModule(flags, func(res *moduleResources) error {
				if err := res.handlers.clean.Execute(cmd.Context(), zoe.CleanSiteCommand{}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleaned %s\n", res.outputDir)
				return nil
			})
		},
	}
}
