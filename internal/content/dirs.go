package content

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-zoe/internal/siteconfig"
)

// ExampleContentDir is the bundled sample content used in development.
const ExampleContentDir = "_example/content"

// Dir is a content directory together with its origin.
type Dir struct {
	Path string
	// Source is "local", "example" or the git source name.
	Source string
	// Patterns optionally restrict which files (relative to Path) are read.
	Patterns []string
}

// ResolveDirs returns the directories scanned for content. Example content
// replaces the configured directories when requested through the
// environment and it is not empty. Git directories are appended when their
// checkout exists.
func ResolveDirs(cfg *siteconfig.Config, root string, getenv func(string) string) []Dir {
	if getenv == nil {
		getenv = os.Getenv
	}

	var dirs []Dir
	example := filepath.Join(root, ExampleContentDir)
	if useExample(cfg, getenv) && hasContent(example) {
		dirs = append(dirs, Dir{Path: example, Source: "example"})
	} else {
		contentDirs := cfg.ContentDirs
		if len(contentDirs) == 0 {
			contentDirs = []string{siteconfig.DefaultContentDir}
		}
		for _, dir := range contentDirs {
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(root, dir)
			}
			dirs = append(dirs, Dir{Path: dir, Source: "local"})
		}
	}

	for _, source := range cfg.GitContent {
		local := cfg.GitContentPath(root, source)
		if info, err := os.Stat(local); err != nil || !info.IsDir() {
			continue
		}
		dirs = append(dirs, Dir{
			Path:     local,
			Source:   source.Name,
			Patterns: append([]string(nil), source.Patterns...),
		})
	}
	return dirs
}

func useExample(cfg *siteconfig.Config, getenv func(string) string) bool {
	if cfg.Build.UseExample {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(getenv(siteconfig.EnvUseExampleContent)), "true") {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(getenv(siteconfig.EnvVar)), "development")
}

// hasContent reports whether dir has at least one non-empty subdirectory.
func hasContent(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		children, err := os.ReadDir(filepath.Join(dir, entry.Name()))
		if err == nil && len(children) > 0 {
			return true
		}
	}
	return false
}

// Allows reports whether the file at rel (slash separated, relative to the
// directory) passes the directory's include patterns.
func (d Dir) Allows(rel string) bool {
	if len(d.Patterns) == 0 {
		return true
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range d.Patterns {
		if matchPattern(strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(pattern)), "./"), rel) {
			return true
		}
	}
	return false
}

// matchPattern matches glob patterns where "**" spans any number of
// directories.
func matchPattern(pattern, name string) bool {
	if pattern == "" {
		return false
	}
	prefix, rest, ok := strings.Cut(pattern, "**")
	if !ok {
		matched, _ := path.Match(pattern, name)
		return matched
	}
	if !strings.HasPrefix(name, prefix) {
		return false
	}
	remainder := strings.TrimPrefix(name, prefix)
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return true
	}
	segments := strings.Split(remainder, "/")
	for i := range segments {
		if matchPattern(rest, strings.Join(segments[i:], "/")) {
			return true
		}
	}
	return false
}
