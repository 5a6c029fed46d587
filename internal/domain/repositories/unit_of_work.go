package repositories

import (
	"context"
)

// UnitOfWork runs a group of repository calls atomically.
type UnitOfWork interface {
	// Do runs fn inside a transaction carried by the context passed to fn.
	// Calling Do again with that context joins the open transaction.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
