package siteconfig

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

// EnvVar selects the overlay file zoe-site.<env>.yaml.
const EnvVar = "ZOE_ENV"

// Options control how Load finds and layers configuration files.
type Options struct {
	// Root is the project directory. Defaults to the working directory.
	Root string
	// Env selects zoe-site.<env>.yaml. Defaults to $ZOE_ENV.
	Env string
	// FS overrides the filesystem rooted at Root.
	FS     fs.FS
	Logger interfaces.Logger
}

// Load reads zoe-site.yaml, deep merges the optional environment and local
// overlays, validates the merged document, interpolates ${zoe.*}
// references and decodes the result.
func Load(ctx context.Context, opts Options) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := logging.Fallback(opts.Logger)

	root := opts.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("siteconfig: resolve working directory: %w", err)
		}
		root = wd
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = os.DirFS(root)
	}

	document, err := readDocument(fsys, FileName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, filepath.Join(root, FileName))
		}
		return nil, err
	}

	env := strings.TrimSpace(opts.Env)
	if env == "" {
		env = strings.TrimSpace(os.Getenv(EnvVar))
	}
	for _, name := range overlayNames(env) {
		overlay, err := readDocument(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		logger.Debug("config.overlay.applied", "file", name)
		document = DeepMerge(document, overlay)
	}

	resolved, _ := Interpolate(document, document).(map[string]any)

	if err := ValidateDocument(resolved); err != nil {
		return nil, err
	}

	cfg, err := Decode(resolved)
	if err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("config.loaded", "title", cfg.Title, "theme", cfg.Theme)
	return cfg, nil
}

// Decode converts a raw document into a Config without applying defaults.
func Decode(document map[string]any) (*Config, error) {
	encoded, err := yaml.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(encoded, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return &cfg, nil
}

// Parse decodes YAML source into a normalized Config. It applies
// interpolation but does not read overlays.
func Parse(source []byte) (*Config, error) {
	document, err := decodeDocument(source)
	if err != nil {
		return nil, err
	}
	resolved, _ := Interpolate(document, document).(map[string]any)
	cfg, err := Decode(resolved)
	if err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

func overlayNames(env string) []string {
	names := make([]string, 0, 2)
	if env != "" {
		names = append(names, "zoe-site."+env+".yaml")
	}
	return append(names, "zoe-site.local.yaml")
}

func readDocument(fsys fs.FS, name string) (map[string]any, error) {
	source, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	document, err := decodeDocument(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return document, nil
}

func decodeDocument(source []byte) (map[string]any, error) {
	document := map[string]any{}
	if err := yaml.Unmarshal(source, &document); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if document == nil {
		document = map[string]any{}
	}
	return document, nil
}
