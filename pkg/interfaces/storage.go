package interfaces

import "context"

// OutputStorage persists generated artifacts. Paths are slash separated and
// relative to the storage root.
type OutputStorage interface {
	WriteFile(ctx context.Context, name string, data []byte) error
	ReadFile(ctx context.Context, name string) ([]byte, error)
	Remove(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	Clean(ctx context.Context) error
}
