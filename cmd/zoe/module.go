package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-zoe"
)

type buildHandler interface {
	Execute(ctx context.Context, msg zoe.BuildSiteCommand) error
}

type syncHandler interface {
	Execute(ctx context.Context, msg zoe.SyncContentCommand) error
}

type cleanHandler interface {
	Execute(ctx context.Context, msg zoe.CleanSiteCommand) error
}

type handlerSet struct {
	build buildHandler
	sync  syncHandler
	clean cleanHandler
}

type moduleOptions struct {
	root      string
	env       string
	logLevel  string
	logFormat string
}

type moduleResources struct {
	handlers  handlerSet
	outputDir string
	close     func() error
}

func (r *moduleResources) Close() error {
	if r == nil || r.close == nil {
		return nil
	}
	return r.close()
}

// moduleBuilder is replaced in tests.
var moduleBuilder = buildModule

func buildModule(opts moduleOptions) (*moduleResources, error) {
	root := opts.root
	if root == "" {
		root = "."
	}
	cfg, err := zoe.LoadConfig(context.Background(), zoe.LoadOptions{Root: root, Env: opts.env})
	if err != nil {
		return nil, err
	}
	if level := strings.TrimSpace(opts.logLevel); level != "" {
		cfg.Logging.Level = level
	}
	if format := strings.TrimSpace(opts.logFormat); format != "" {
		cfg.Logging.Format = format
	}

	module, err := zoe.New(cfg, zoe.WithRoot(root))
	if err != nil {
		return nil, err
	}

	outputDir := module.Config().Build.OutputDir
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(root, outputDir)
	}

	commands := module.Commands()
	return &moduleResources{
		handlers: handlerSet{
			build: commands.Build,
			sync:  commands.Sync,
			clean: commands.Clean,
		},
		outputDir: outputDir,
		close:     module.Close,
	}, nil
}
