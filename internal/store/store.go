// Package store provides generic document persistence and search over a
// named Elasticsearch index with a configurable identifier field.
package store

import "context"

// Document is a schemaless document as stored in the index.
type Document map[string]any

// Result is a paginated search result envelope. Total is the full match
// count, not the number of items on the returned page.
type Result struct {
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
	Items []Document `json:"items"`
}

// DocumentStore defines generic CRUD and search operations over a document collection.
// It abstracts the underlying search engine and its error types.
type DocumentStore interface {
	// Create persists a new document keyed by its identifier field and waits
	// for it to become visible to reads. Missing created_at/updated_at are
	// stamped with the current UTC time.
	Create(ctx context.Context, doc Document) (Document, error)

	// Update applies a partial merge to an existing document and returns the
	// full merged document. Nil-valued fields are dropped from the partial.
	// Returns ErrNotFound if no document exists with the given id.
	Update(ctx context.Context, id string, partial Document) (Document, error)

	// Delete removes a document by its identifier.
	// Returns ErrNotFound if no document exists with the given id.
	Delete(ctx context.Context, id string) error

	// Get retrieves a document by its identifier.
	// Returns ErrNotFound if no document exists with the given id.
	Get(ctx context.Context, id string) (Document, error)

	// Exists reports whether a document with the given id exists.
	// A missing document is not an error.
	Exists(ctx context.Context, id string) (bool, error)

	// Search executes a structured query with offset (page-1)*size and limit size.
	Search(ctx context.Context, body Document, page, size int) (*Result, error)

	// MaxField returns the maximum value of a numeric field across the index.
	// An empty or missing index yields 0.
	MaxField(ctx context.Context, field string) (int64, error)
}
