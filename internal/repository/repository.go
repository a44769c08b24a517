// Package repository handles all interactions with the entity store.
//
// It contains the SQL for every entity kind and exposes it through the
// EntityStore contract, abstracting the driver (pgx or database/sql) away
// from the service layer.
package repository

import (
	"context"

	"github.com/deppfellow/pixelmags/internal/model"
)

// EntityStore is the authoritative store for one entity kind.
//
// Insert refuses records that already carry an id (*errs.ConflictError) and
// Update refuses unknown ids (*errs.NotFoundError). Both return the store's
// canonical row, so generated and defaulted columns are visible to callers.
// DeleteByID reports whether a row was removed; deleting an unknown id is not an error.
type EntityStore[R model.Record] interface {
	Insert(ctx context.Context, record R) (R, error)
	Update(ctx context.Context, record R) (R, error)
	FindByID(ctx context.Context, id int64) (R, error)
	FindAll(ctx context.Context) ([]R, error)
	FindAllWhere(ctx context.Context, filter string) ([]R, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}
