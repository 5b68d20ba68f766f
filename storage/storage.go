package storage

import "context"

// Store persists a single document of type T.
type Store[T any] interface {
	// With loads the document and passes it to fn read-only.
	With(ctx context.Context, fn func(*T) error) error
	// Update loads the document, lets fn mutate it and writes it back
	// when fn succeeds.
	Update(ctx context.Context, fn func(*T) error) error
}

// Initer is implemented by documents that need their maps allocated after
// loading. Stores call Init on every load.
type Initer interface {
	Init()
}
