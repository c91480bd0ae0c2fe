package zoe

import (
	"context"

	"github.com/goliatone/go-zoe/internal/siteconfig"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

// Config is the decoded zoe-site.yaml document.
type Config = siteconfig.Config

// ConfigFile is the site configuration file name.
const ConfigFile = siteconfig.FileName

// LoadOptions selects the project directory and environment overlay.
type LoadOptions struct {
	Root string
	Env  string
	// SkipDotenv leaves .env files alone.
	SkipDotenv bool
	Logger     interfaces.Logger
}

// LoadConfig reads .env files and the site configuration from opts.Root.
func LoadConfig(ctx context.Context, opts LoadOptions) (*Config, error) {
	if !opts.SkipDotenv {
		if err := siteconfig.LoadEnv(opts.Root); err != nil {
			return nil, err
		}
	}
	return siteconfig.Load(ctx, siteconfig.Options{
		Root:   opts.Root,
		Env:    opts.Env,
		Logger: opts.Logger,
	})
}

// ParseConfig decodes a configuration document without overlays.
func ParseConfig(source []byte) (*Config, error) {
	return siteconfig.Parse(source)
}
