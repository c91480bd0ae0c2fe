package markdown

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Document is a Markdown file split into metadata and body.
type Document struct {
	Path        string
	FrontMatter FrontMatter
	Body        []byte
	ModTime     time.Time
	IsMDX       bool
}

// Name returns the file name without directory and extension.
func (d *Document) Name() string {
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsMarkdownFile reports whether name has a .md or .mdx extension.
func IsMarkdownFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".mdx":
		return true
	default:
		return false
	}
}

// ScanFiles lists Markdown files under dir in lexical order. A missing
// directory yields an empty list.
func ScanFiles(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("markdown scan %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return fs.SkipDir
			}
			return nil
		}
		if IsMarkdownFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("markdown scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// LoadDocument reads and parses the Markdown file at path.
func LoadDocument(path string) (*Document, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("markdown read %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("markdown stat %s: %w", path, err)
	}
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Document{
		Path:        path,
		FrontMatter: meta,
		Body:        body,
		ModTime:     info.ModTime(),
		IsMDX:       strings.EqualFold(filepath.Ext(path), ".mdx"),
	}, nil
}
