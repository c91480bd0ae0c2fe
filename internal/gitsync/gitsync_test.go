package gitsync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/goliatone/go-zoe/internal/siteconfig"
)

func newSyncer(t *testing.T, root string, now time.Time, env map[string]string) *Syncer {
	t.Helper()
	cfg := &siteconfig.Config{}
	cfg.Normalize()
	return NewSyncer(Options{
		Config: cfg,
		Root:   root,
		Getenv: func(key string) string { return env[key] },
		Now:    func() time.Time { return now },
	})
}

func TestLocalPath(t *testing.T) {
	root := t.TempDir()
	s := newSyncer(t, root, time.Now(), nil)

	got := s.LocalPath(siteconfig.GitContentSource{Name: "docs"})
	want := filepath.Join(root, ".cache", "git-content", "docs")
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got := s.LocalPath(siteconfig.GitContentSource{Name: "docs", Local: "vendor/docs"}); got != filepath.Join(root, "vendor", "docs") {
		t.Fatalf("unexpected local override %s", got)
	}
}

func writeMarker(t *testing.T, dir, name string, mod time.Time) {
	t.Helper()
	path := filepath.Join(dir, ".git", name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func TestNeedsSync(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newSyncer(t, root, now, nil)
	source := siteconfig.GitContentSource{Name: "docs"}
	dir := s.LocalPath(source)

	if !s.NeedsSync(source) {
		t.Fatal("expected missing checkout to need sync")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if !s.NeedsSync(source) {
		t.Fatal("expected checkout without marker to need sync")
	}

	writeMarker(t, dir, "FETCH_HEAD", now.Add(-2*time.Hour))
	if !s.NeedsSync(source) {
		t.Fatal("expected stale marker to need sync")
	}

	writeMarker(t, dir, StampFile, now.Add(-10*time.Minute))
	if s.NeedsSync(source) {
		t.Fatal("expected fresh stamp to skip sync")
	}
}

func TestSyncAllSkipsFreshSources(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	s := newSyncer(t, root, now, nil)
	source := siteconfig.GitContentSource{Name: "docs", Remote: "https://example.invalid/docs.git"}
	writeMarker(t, s.LocalPath(source), StampFile, now)

	results := s.SyncAll(context.Background(), []siteconfig.GitContentSource{source}, false)
	if len(results) != 1 || results[0].Action != ActionSkipped || results[0].Err != nil {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestSyncAllReportsCloneFailure(t *testing.T) {
	root := t.TempDir()
	s := newSyncer(t, root, time.Now(), nil)
	source := siteconfig.GitContentSource{Name: "broken", Remote: filepath.Join(root, "does-not-exist"), Branch: "main"}

	results := s.SyncAll(context.Background(), []siteconfig.GitContentSource{source}, false)
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].Action != ActionFailed || results[0].Err == nil {
		t.Fatalf("expected failure, got %+v", results[0])
	}
	if _, err := os.Stat(s.LocalPath(source)); !os.IsNotExist(err) {
		t.Fatalf("expected partial checkout to be removed, stat err %v", err)
	}
}

func TestSyncRefusesNonRepositoryDir(t *testing.T) {
	root := t.TempDir()
	s := newSyncer(t, root, time.Now(), nil)
	source := siteconfig.GitContentSource{Name: "docs", Local: "docs", Remote: "https://example.invalid/docs.git"}
	dir := s.LocalPath(source)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "keep.md"), []byte("mine"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := s.Sync(context.Background(), source)
	if !errors.Is(err, ErrNotRepository) || result.Action != ActionFailed {
		t.Fatalf("expected ErrNotRepository, got %v (%+v)", err, result)
	}
	if _, err := os.Stat(filepath.Join(dir, "keep.md")); err != nil {
		t.Fatalf("expected user files to be kept: %v", err)
	}
}

func TestAuthUsesGitHubToken(t *testing.T) {
	s := newSyncer(t, t.TempDir(), time.Now(), map[string]string{siteconfig.EnvGitHubToken: "secret"})

	auth, ok := s.auth("https://github.com/acme/docs.git").(*githttp.BasicAuth)
	if !ok || auth.Password != "secret" {
		t.Fatalf("expected basic auth with token, got %#v", auth)
	}
	if s.auth("git@github.com:acme/docs.git") != nil {
		t.Fatal("expected ssh remote to skip token auth")
	}
	if s.auth("https://gitlab.com/acme/docs.git") != nil {
		t.Fatal("expected non-github remote to skip token auth")
	}
}
