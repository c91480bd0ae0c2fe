// Package storage persists generated site artifacts.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/goliatone/go-zoe/pkg/interfaces"
)

var ErrInvalidPath = errors.New("storage: invalid path")

// cleanName validates a slash separated relative name and rejects anything
// escaping the storage root.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	clean := path.Clean("/" + name)
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return clean, nil
}

// Dir writes artifacts below a root directory. Files are replaced atomically.
type Dir struct {
	root string
}

var _ interfaces.OutputStorage = (*Dir)(nil)

// NewDir returns storage rooted at root. The directory is created lazily.
func NewDir(root string) *Dir {
	return &Dir{root: filepath.Clean(root)}
}

// Root returns the output directory.
func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) resolve(name string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.root, filepath.FromSlash(clean)), nil
}

func (d *Dir) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := d.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("storage: create dir for %s: %w", name, err)
	}
	if err := atomic.WriteFile(target, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	return nil
}

func (d *Dir) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(target)
}

// Remove deletes name and prunes parent directories left empty. A missing
// file is not an error.
func (d *Dir) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := d.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove %s: %w", name, err)
	}
	for dir := filepath.Dir(target); dir != d.root && strings.HasPrefix(dir, d.root); dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			break
		}
	}
	return nil
}

func (d *Dir) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	target, err := d.resolve(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(target)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Clean removes everything inside the root but keeps the root itself.
func (d *Dir) Clean(ctx context.Context) error {
	entries, err := os.ReadDir(d.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("storage: read %s: %w", d.root, err)
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.RemoveAll(filepath.Join(d.root, entry.Name())); err != nil {
			return fmt.Errorf("storage: clean %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Memory keeps artifacts in memory. It backs dry runs and tests.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ interfaces.OutputStorage = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{files: map[string][]byte{}}
}

func (m *Memory) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.files[clean] = append([]byte(nil), data...)
	m.mu.Unlock()
	return nil
}

func (m *Memory) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[clean]
	if !ok {
		return nil, fmt.Errorf("storage: read %s: %w", name, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Remove(_ context.Context, name string) error {
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.files, clean)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Exists(_ context.Context, name string) (bool, error) {
	clean, err := cleanName(name)
	if err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[clean]
	return ok, nil
}

func (m *Memory) Clean(context.Context) error {
	m.mu.Lock()
	m.files = map[string][]byte{}
	m.mu.Unlock()
	return nil
}

// Names lists stored files sorted.
func (m *Memory) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
