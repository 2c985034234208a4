package catalog

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Store lookups that match no record.
	ErrNotFound = errors.New("item not found")

	// ErrDuplicateKey is returned when an insert reuses an existing natural key.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")
)

// Store is the storage contract the catalog core depends on.
// Implementations translate Predicate trees into their own query language and
// must treat a blank ExternalUID as "no natural key" (never unique-checked).
type Store interface {
	FindByUID(ctx context.Context, uid string) (Item, error)
	FindByID(ctx context.Context, id string) (Item, error)

	// Insert assigns ID, CreatedAt and UpdatedAt on item.
	Insert(ctx context.Context, item *Item) error

	// UpdateByUID overwrites every imported field of the record keyed by uid.
	// ID and CreatedAt of the stored record are kept and copied back into item.
	UpdateByUID(ctx context.Context, uid string, item *Item) error

	FindMany(ctx context.Context, p Predicate, page Page) ([]Item, error)
	Count(ctx context.Context, p Predicate) (int64, error)

	// Distinct returns sorted distinct non-empty values of a string field
	// among the records matching p.
	Distinct(ctx context.Context, f Field, p Predicate) ([]string, error)

	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)

	// DeleteAll removes every record. Callers gate it behind explicit confirmation.
	DeleteAll(ctx context.Context) (int64, error)
}
