// Package gitsync keeps git content sources checked out under the project
// cache so their Markdown files can be read like local content.
package gitsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/natefinch/atomic"

	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/internal/siteconfig"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

// Sync actions reported in Result.Action.
const (
	ActionCloned  = "cloned"
	ActionUpdated = "updated"
	ActionSkipped = "skipped"
	ActionFailed  = "failed"
)

const (
	// StampFile is written inside .git after every successful sync.
	StampFile = "zoe-sync"
	// DefaultMaxAge is how long a checkout stays fresh.
	DefaultMaxAge = time.Hour
	remoteName    = "origin"
)

// ErrNotRepository is returned when a checkout path exists but is not a git
// working tree.
var ErrNotRepository = errors.New("gitsync: path exists and is not a git repository")

// Result reports what happened to one source.
type Result struct {
	Name   string
	Path   string
	Action string
	Err    error
}

// Options configure a Syncer.
type Options struct {
	Config *siteconfig.Config
	Root   string
	Getenv func(string) string
	Logger interfaces.Logger
	MaxAge time.Duration
	Now    func() time.Time
}

// Syncer clones and updates git content sources.
type Syncer struct {
	cfg    *siteconfig.Config
	root   string
	getenv func(string) string
	logger interfaces.Logger
	maxAge time.Duration
	now    func() time.Time
}

func NewSyncer(opts Options) *Syncer {
	s := &Syncer{
		cfg:    opts.Config,
		root:   opts.Root,
		getenv: opts.Getenv,
		logger: logging.Fallback(opts.Logger),
		maxAge: opts.MaxAge,
		now:    opts.Now,
	}
	if s.cfg == nil {
		s.cfg = &siteconfig.Config{}
	}
	if s.getenv == nil {
		s.getenv = os.Getenv
	}
	if s.maxAge <= 0 {
		s.maxAge = DefaultMaxAge
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Sources returns the configured git sources.
func (s *Syncer) Sources() []siteconfig.GitContentSource {
	return s.cfg.GitContent
}

// LocalPath is where source is checked out.
func (s *Syncer) LocalPath(source siteconfig.GitContentSource) string {
	return s.cfg.GitContentPath(s.root, source)
}

// NeedsSync reports whether source is missing, has never been synced, or
// was last synced longer ago than the max age. Both .git/FETCH_HEAD and the
// sync stamp count as markers; the newest wins.
func (s *Syncer) NeedsSync(source siteconfig.GitContentSource) bool {
	path := s.LocalPath(source)
	if _, err := os.Stat(path); err != nil {
		return true
	}
	last, ok := lastSync(path)
	if !ok {
		return true
	}
	return s.now().Sub(last) > s.maxAge
}

func lastSync(path string) (time.Time, bool) {
	var newest time.Time
	found := false
	for _, marker := range []string{"FETCH_HEAD", StampFile} {
		info, err := os.Stat(filepath.Join(path, ".git", marker))
		if err != nil {
			continue
		}
		if !found || info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		found = true
	}
	return newest, found
}

// Sync updates an existing checkout or clones a fresh one. When an update
// fails the checkout is removed and cloned again.
func (s *Syncer) Sync(ctx context.Context, source siteconfig.GitContentSource) (Result, error) {
	path := s.LocalPath(source)
	result := Result{Name: source.Name, Path: path}
	logger := logging.WithSourceContext(s.logger, source.Name, path)
	branch := source.Branch
	if branch == "" {
		branch = siteconfig.DefaultGitBranch
	}
	auth := s.auth(source.Remote)

	if isRepository(path) {
		err := s.update(ctx, path, branch, auth)
		if err == nil {
			result.Action = ActionUpdated
			logger.Info("gitsync.source.updated", "branch", branch)
			return result, s.stamp(path)
		}
		logger.Warn("gitsync.source.update_failed", "branch", branch, "error", err)
		if err := os.RemoveAll(path); err != nil {
			result.Action = ActionFailed
			result.Err = fmt.Errorf("gitsync: remove %s: %w", path, err)
			return result, result.Err
		}
	} else if !emptyOrMissing(path) {
		result.Action = ActionFailed
		result.Err = fmt.Errorf("%w: %s", ErrNotRepository, path)
		return result, result.Err
	}

	if err := s.clone(ctx, path, source.Remote, branch, auth); err != nil {
		_ = os.RemoveAll(path)
		result.Action = ActionFailed
		result.Err = fmt.Errorf("gitsync: clone %s: %w", source.Name, err)
		return result, result.Err
	}
	result.Action = ActionCloned
	logger.Info("gitsync.source.cloned", "branch", branch)
	return result, s.stamp(path)
}

// SyncAll syncs sources one after another. Fresh sources are skipped unless
// force is set; failures are logged and reported without stopping the run.
func (s *Syncer) SyncAll(ctx context.Context, sources []siteconfig.GitContentSource, force bool) []Result {
	results := make([]Result, 0, len(sources))
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Name: source.Name, Path: s.LocalPath(source), Action: ActionFailed, Err: err})
			continue
		}
		if !force && !s.NeedsSync(source) {
			s.logger.Debug("gitsync.source.fresh", "source", source.Name)
			results = append(results, Result{Name: source.Name, Path: s.LocalPath(source), Action: ActionSkipped})
			continue
		}
		result, err := s.Sync(ctx, source)
		if err != nil {
			s.logger.Error("gitsync.source.failed", "source", source.Name, "error", err)
			result.Action = ActionFailed
			result.Err = err
		}
		results = append(results, result)
	}
	return results
}

func (s *Syncer) clone(ctx context.Context, path, remote, branch string, auth transport.AuthMethod) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	_, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
		URL:           remote,
		Auth:          auth,
		RemoteName:    remoteName,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Depth:         1,
	})
	return err
}

func (s *Syncer) update(ctx context.Context, path, branch string, auth transport.AuthMethod) error {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return err
	}
	refSpec := gitconfig.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", branch, remoteName, branch))
	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteName,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Auth:       auth,
		Depth:      1,
		Force:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetch: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Force:  true,
	}); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName:    remoteName,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Depth:         1,
		Auth:          auth,
		Force:         true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pull: %w", err)
	}
	return nil
}

func (s *Syncer) stamp(path string) error {
	target := filepath.Join(path, ".git", StampFile)
	if err := atomic.WriteFile(target, strings.NewReader(s.now().UTC().Format(time.RFC3339))); err != nil {
		return fmt.Errorf("gitsync: write stamp: %w", err)
	}
	return nil
}

// auth returns token credentials for HTTPS GitHub remotes when GITHUB_TOKEN
// is set.
func (s *Syncer) auth(remote string) transport.AuthMethod {
	token := strings.TrimSpace(s.getenv(siteconfig.EnvGitHubToken))
	if token == "" || !isGitHubHTTPS(remote) {
		return nil
	}
	return &githttp.BasicAuth{Username: "x-access-token", Password: token}
}

func isGitHubHTTPS(remote string) bool {
	return strings.HasPrefix(strings.ToLower(remote), "https://github.com/")
}

func isRepository(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

func emptyOrMissing(path string) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		return errors.Is(err, os.ErrNotExist)
	}
	return len(entries) == 0
}
