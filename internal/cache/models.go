package cache

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RemoteResponse is a cached API response body keyed by request URL.
type RemoteResponse struct {
	bun.BaseModel `bun:"table:remote_responses,alias:rr"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	URL       string    `bun:"url,notnull,unique" json:"url"`
	Body      []byte    `bun:"body" json:"body"`
	Status    int       `bun:"status,notnull,default:200" json:"status"`
	FetchedAt time.Time `bun:"fetched_at,notnull" json:"fetched_at"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}
