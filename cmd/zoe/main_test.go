package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-zoe"
	"github.com/goliatone/go-zoe/internal/routes"
	"github.com/goliatone/go-zoe/internal/siteconfig"
)

type stubBuildHandler struct {
	calls int
	last  zoe.BuildSiteCommand
}

func (s *stubBuildHandler) Execute(_ context.Context, msg zoe.BuildSiteCommand) error {
	s.calls++
	s.last = msg
	if msg.ResultCallback != nil {
		envelope := zoe.ResultEnvelope{
			Result: &zoe.BuildResult{
				ID:         "build-1",
				PagesBuilt: 4,
				Duration:   120 * time.Millisecond,
				DryRun:     msg.DryRun,
			},
			Metadata: map[string]any{"operation": "build"},
		}
		if msg.Sync {
			envelope.Sync = []zoe.SyncResult{{Name: "notes", Path: ".cache/git/notes", Action: "cloned"}}
		}
		msg.ResultCallback(envelope)
	}
	return nil
}

type stubSyncHandler struct {
	last zoe.SyncContentCommand
	err  error
}

func (s *stubSyncHandler) Execute(_ context.Context, msg zoe.SyncContentCommand) error {
	s.last = msg
	if msg.ResultCallback != nil {
		results := make([]zoe.SyncResult, 0, len(msg.Sources))
		for _, name := range msg.Sources {
			results = append(results, zoe.SyncResult{Name: name, Path: "/tmp/" + name, Action: "updated"})
		}
		msg.ResultCallback(zoe.ResultEnvelope{Sync: results})
	}
	return s.err
}

type stubCleanHandler struct {
	calls int
}

func (s *stubCleanHandler) Execute(context.Context, zoe.CleanSiteCommand) error {
	s.calls++
	return nil
}

type stubs struct {
	build  *stubBuildHandler
	sync   *stubSyncHandler
	clean  *stubCleanHandler
	opts   moduleOptions
	closed int
}

func installStubs(t *testing.T) *stubs {
	t.Helper()
	s := &stubs{
		build: &stubBuildHandler{},
		sync:  &stubSyncHandler{},
		clean: &stubCleanHandler{},
	}
	original := moduleBuilder
	moduleBuilder = func(opts moduleOptions) (*moduleResources, error) {
		s.opts = opts
		return &moduleResources{
			handlers:  handlerSet{build: s.build, sync: s.sync, clean: s.clean},
			outputDir: "dist",
			close: func() error {
				s.closed++
				return nil
			},
		}, nil
	}
	t.Cleanup(func() { moduleBuilder = original })
	return s
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildCommandPassesFlags(t *testing.T) {
	s := installStubs(t)

	out, err := execute(t, "--root", "site", "--env", "prod", "--log-level", "debug", "build", "--force", "--drafts", "--sync")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.build.calls != 1 {
		t.Fatalf("expected one build call, got %d", s.build.calls)
	}
	msg := s.build.last
	if !msg.Force || !msg.IncludeDrafts || !msg.Sync || msg.DryRun {
		t.Fatalf("unexpected build message: %+v", msg)
	}
	if s.opts.root != "site" || s.opts.env != "prod" || s.opts.logLevel != "debug" {
		t.Fatalf("unexpected module options: %+v", s.opts)
	}
	if s.closed != 1 {
		t.Fatalf("expected module to be closed once, got %d", s.closed)
	}
	for _, want := range []string{"sync notes: cloned", "build build-1: 4 pages written"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBuildCommandDryRun(t *testing.T) {
	s := installStubs(t)

	out, err := execute(t, "build", "--dry-run")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !s.build.last.DryRun {
		t.Fatalf("expected dry run flag")
	}
	if !strings.HasPrefix(out, "dry-run build-1") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestSyncCommandForwardsNames(t *testing.T) {
	s := installStubs(t)

	out, err := execute(t, "sync", "--force", "docs", "notes")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if got := strings.Join(s.sync.last.Sources, ","); got != "docs,notes" {
		t.Fatalf("unexpected sources %q", got)
	}
	if !s.sync.last.Force {
		t.Fatalf("expected force flag")
	}
	if !strings.Contains(out, "sync docs: updated /tmp/docs") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestSyncCommandReturnsHandlerError(t *testing.T) {
	s := installStubs(t)
	s.sync.err = errors.New("boom")

	if _, err := execute(t, "sync"); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected handler error, got %v", err)
	}
	if s.closed != 1 {
		t.Fatalf("module must be closed on failure")
	}
}

func TestCleanCommand(t *testing.T) {
	s := installStubs(t)

	out, err := execute(t, "clean")
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if s.clean.calls != 1 {
		t.Fatalf("expected clean to run once, got %d", s.clean.calls)
	}
	if strings.TrimSpace(out) != "cleaned dist" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestModuleBuilderErrorStopsCommand(t *testing.T) {
	original := moduleBuilder
	moduleBuilder = func(moduleOptions) (*moduleResources, error) {
		return nil, errors.New("no config")
	}
	t.Cleanup(func() { moduleBuilder = original })

	if _, err := execute(t, "build"); err == nil || err.Error() != "no config" {
		t.Fatalf("expected builder error, got %v", err)
	}
}

func TestThemesCommandListsCatalog(t *testing.T) {
	out, err := execute(t, "themes")
	if err != nil {
		t.Fatalf("themes: %v", err)
	}
	if !strings.HasPrefix(out, "default") {
		t.Fatalf("expected default theme first:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "zoe dev" {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestSiteRouterServesFilesAndNotFound(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "about"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "about", "index.html"), []byte("about page"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "404.html"), []byte("missing page"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	router := newSiteRouter(dir)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/about/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "about page") {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope/", nil))
	if rec.Code != http.StatusNotFound || rec.Body.String() != "missing page" {
		t.Fatalf("unexpected not found response %d %q", rec.Code, rec.Body.String())
	}
}

func TestSiteRouterServesPagesWithoutTrailingSlash(t *testing.T) {
	off := false
	cfg := &siteconfig.Config{Title: "Zoe"}
	cfg.Build.TrailingSlash = &off
	cfg.Normalize()
	table, err := routes.New(cfg)
	if err != nil {
		t.Fatalf("routes: %v", err)
	}

	dir := t.TempDir()
	pages := map[string]map[string]any{
		routes.BlogPost: {"slug": "hello"},
		routes.Page:     {"slug": "about"},
		routes.Home:     nil,
	}
	links := map[string]string{}
	for name, params := range pages {
		link, err := table.Path(name, params)
		if err != nil {
			t.Fatalf("path %s: %v", name, err)
		}
		output := filepath.Join(dir, filepath.FromSlash(table.OutputFile(link)))
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(output, []byte("page "+name), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		links[name] = link
	}
	router := newSiteRouter(dir)

	cases := []struct {
		path   string
		status int
		body   string
	}{
		{path: links[routes.BlogPost], status: http.StatusOK, body: "page " + routes.BlogPost},
		{path: links[routes.Page], status: http.StatusOK, body: "page " + routes.Page},
		{path: links[routes.Home], status: http.StatusOK, body: "page " + routes.Home},
		{path: "/blog/missing", status: http.StatusNotFound},
		{path: "/blog/hello.txt", status: http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != tc.status {
			t.Fatalf("GET %s: expected %d, got %d", tc.path, tc.status, rec.Code)
		}
		if tc.body != "" && rec.Body.String() != tc.body {
			t.Fatalf("GET %s: unexpected body %q", tc.path, rec.Body.String())
		}
	}
}
