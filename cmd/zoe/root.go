package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	root      string
	env       string
	logLevel  string
	logFormat string
}

func (f *rootFlags) moduleOptions() moduleOptions {
	return moduleOptions{
		root:      f.root,
		env:       f.env,
		logLevel:  f.logLevel,
		logFormat: f.logFormat,
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "zoe",
		Short:         "Static site generator for personal sites and blogs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.root, "root", ".", "project directory containing zoe-site.yaml")
	cmd.PersistentFlags().StringVar(&flags.env, "env", "", "configuration overlay (zoe-site.<env>.yaml); defaults to $ZOE_ENV")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: trace|debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format: console|json|pretty")

	cmd.AddCommand(
		buildCmd(flags),
		syncCmd(flags),
		cleanCmd(flags),
		serveCmd(flags),
		themesCmd(),
		versionCmd(),
	)
	return cmd
}

// withModule builds the module, runs fn and closes the module.
func withModule(flags *rootFlags, fn func(*moduleResources) error) (err error) {
	resources, err := moduleBuilder(flags.moduleOptions())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resources.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(resources)
}
