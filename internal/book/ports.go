package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book document storage. Every method is
// a single round-trip to the store.
type Repository interface {
	// Insert stores doc and returns it with its generated identifier.
	Insert(ctx context.Context, doc Document) (Document, error)
	// Find returns every document matching f, or an empty slice.
	Find(ctx context.Context, f Filter) ([]Document, error)
	// FindOne returns one document matching f, or ErrNotFound.
	FindOne(ctx context.Context, f Filter) (Document, error)
	// UpdateByID merges patch into the document with the given id and
	// returns the updated document, or ErrNotFound.
	UpdateByID(ctx context.Context, id string, patch Document) (Document, error)
	// UpdateOne merges patch into one document matching f and returns the
	// updated document, or ErrNotFound.
	UpdateOne(ctx context.Context, f Filter, patch Document) (Document, error)
	// DeleteByID removes the document with the given id, or returns ErrNotFound.
	DeleteByID(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
