package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-zoe/internal/storage"
)

func TestDirWriteReadRemove(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "out")
	dir := storage.NewDir(root)

	if err := dir.WriteFile(ctx, "blog/hello/index.html", []byte("<p>hi</p>")); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := dir.ReadFile(ctx, "blog/hello/index.html")
	if err != nil || string(data) != "<p>hi</p>" {
		t.Fatalf("unexpected read %q (%v)", data, err)
	}
	ok, err := dir.Exists(ctx, "blog/hello/index.html")
	if err != nil || !ok {
		t.Fatalf("expected file to exist (%v)", err)
	}

	if err := dir.Remove(ctx, "blog/hello/index.html"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "blog")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected empty parents to be pruned, got %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("root must survive pruning: %v", err)
	}
	if err := dir.Remove(ctx, "missing.html"); err != nil {
		t.Fatalf("removing a missing file should succeed: %v", err)
	}
}

func TestDirRejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "out")
	dir := storage.NewDir(root)

	if err := dir.WriteFile(ctx, "../../escape.txt", []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.txt")); err != nil {
		t.Fatalf("expected path to be confined to root: %v", err)
	}
	if err := dir.WriteFile(ctx, "", []byte("x")); !errors.Is(err, storage.ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
}

func TestDirCleanKeepsRoot(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "out")
	dir := storage.NewDir(root)

	if err := dir.Clean(ctx); err != nil {
		t.Fatalf("clean of missing root: %v", err)
	}
	for _, name := range []string{"index.html", "assets/theme.css"} {
		if err := dir.WriteFile(ctx, name, []byte("x")); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := dir.Clean(ctx); err != nil {
		t.Fatalf("clean: %v", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty root, got %d entries", len(entries))
	}
}

func TestMemoryReadMissing(t *testing.T) {
	mem := storage.NewMemory()
	if _, err := mem.ReadFile(context.Background(), "missing"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist error, got %v", err)
	}
}
