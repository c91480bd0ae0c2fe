package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-zoe/internal/identity"
	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/internal/remote"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var _ remote.ResponseCache = (*Store)(nil)

// Store persists remote responses and satisfies remote.ResponseCache.
type Store struct {
	db     *bun.DB
	repo   *BunResponseRepository
	owned  bool
	now    func() time.Time
	logger interfaces.Logger

	cacheService cache.CacheService
	serializer   cache.KeySerializer
}

// Option customises a Store.
type Option func(*Store)

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		s.logger = logging.Fallback(logger)
	}
}

// WithQueryCache decorates the repository with go-repository-cache.
func WithQueryCache(service cache.CacheService, serializer cache.KeySerializer) Option {
	return func(s *Store) {
		s.cacheService = service
		s.serializer = serializer
	}
}

// WithClock overrides the time source used for fetched_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens (or creates) the SQLite database at path and ensures the schema.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("cache: database path is required")
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("cache: create database dir: %w", err)
		}
	}

	sqlDB, err := openSQL(path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)

	store, err := NewStore(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.owned = true
	return store, nil
}

// NewStore wraps an existing bun database. The caller keeps ownership of db.
func NewStore(ctx context.Context, db *bun.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, errors.New("cache: bun db is required")
	}
	s := &Store{
		db:     db,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	s.repo = NewBunResponseRepositoryWithCache(db, s.cacheService, s.serializer)
	return s, nil
}

// EnsureSchema creates the remote_responses table when missing.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*RemoteResponse)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("cache: create remote_responses: %w", err)
	}
	return nil
}

// Lookup returns the cached response for url, or (nil, nil) when absent.
func (s *Store) Lookup(ctx context.Context, url string) (*remote.CachedResponse, error) {
	record, err := s.repo.GetByURL(ctx, url)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	return &remote.CachedResponse{
		URL:       record.URL,
		Body:      record.Body,
		FetchedAt: record.FetchedAt,
	}, nil
}

// Store inserts or refreshes the cached body for url.
func (s *Store) Store(ctx context.Context, url string, body []byte) error {
	now := s.now().UTC()
	existing, err := s.repo.GetByURL(ctx, url)
	if err != nil {
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		_, err = s.repo.Create(ctx, &RemoteResponse{
			ID:        identity.RemoteResponseUUID(url),
			URL:       url,
			Body:      body,
			Status:    200,
			FetchedAt: now,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err == nil {
			s.logger.Debug("cache.response.created", "url", url, "bytes", len(body))
		}
		return err
	}

	existing.Body = body
	existing.Status = 200
	existing.FetchedAt = now
	existing.UpdatedAt = now
	if _, err := s.repo.Update(ctx, existing); err != nil {
		return err
	}
	s.logger.Debug("cache.response.updated", "url", url, "bytes", len(body))
	return nil
}

// Purge deletes responses fetched before now-olderThan and reports how many
// rows were removed.
func (s *Store) Purge(ctx context.Context, olderThan time.Duration) (int, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := s.now().Add(-olderThan)
	removed := 0
	for _, record := range records {
		if !record.FetchedAt.Before(cutoff) {
			continue
		}
		if err := s.repo.Delete(ctx, record); err != nil {
			return removed, err
		}
		removed++
	}
	if removed > 0 {
		s.logger.Info("cache.purge.completed", "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}

// DB exposes the underlying database.
func (s *Store) DB() *bun.DB {
	return s.db
}

// Close releases the database when the store opened it.
func (s *Store) Close() error {
	if s == nil || !s.owned {
		return nil
	}
	return s.db.Close()
}
