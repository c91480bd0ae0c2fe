package cache

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NotFoundError is returned when no cached response exists for a key.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NewRemoteResponseRepository creates the base repository for cached responses.
func NewRemoteResponseRepository(db *bun.DB) repository.Repository[*RemoteResponse] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*RemoteResponse]{
		NewRecord:          func() *RemoteResponse { return &RemoteResponse{} },
		GetID:              func(r *RemoteResponse) uuid.UUID { return r.ID },
		SetID:              func(r *RemoteResponse, id uuid.UUID) { r.ID = id },
		GetIdentifier:      func() string { return "url" },
		GetIdentifierValue: func(r *RemoteResponse) string { return r.URL },
	})
}

// BunResponseRepository wraps the bun repository with optional query caching.
type BunResponseRepository struct {
	repo repository.Repository[*RemoteResponse]
}

// NewBunResponseRepository creates a response repository without caching.
func NewBunResponseRepository(db *bun.DB) *BunResponseRepository {
	return NewBunResponseRepositoryWithCache(db, nil, nil)
}

// NewBunResponseRepositoryWithCache creates a response repository with caching support.
func NewBunResponseRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunResponseRepository {
	base := NewRemoteResponseRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunResponseRepository{repo: base}
}

func (r *BunResponseRepository) GetByURL(ctx context.Context, url string) (*RemoteResponse, error) {
	record, err := r.repo.GetByIdentifier(ctx, url)
	if err != nil {
		return nil, mapRepositoryError(err, "remote response", url)
	}
	return record, nil
}

func (r *BunResponseRepository) Create(ctx context.Context, record *RemoteResponse) (*RemoteResponse, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, "remote response", record.URL)
	}
	return created, nil
}

func (r *BunResponseRepository) Update(ctx context.Context, record *RemoteResponse) (*RemoteResponse, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns("body", "status", "fetched_at", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "remote response", record.URL)
	}
	return updated, nil
}

func (r *BunResponseRepository) List(ctx context.Context) ([]*RemoteResponse, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("url ASC")
	}))
	return records, err
}

func (r *BunResponseRepository) Delete(ctx context.Context, record *RemoteResponse) error {
	return mapRepositoryError(r.repo.Delete(ctx, record), "remote response", record.URL)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
