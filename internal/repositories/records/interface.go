// Package records persists journal event rows. Rows are opaque here: the
// repository never looks inside Data.
package records

import (
	"context"

	"github.com/dmitrijs2005/loadlog/internal/models"
)

// Repository stores models.Record rows keyed by ID.
//
// GetAll returns rows newest first (date descending, ties broken by ID
// descending). Get and Delete report a missing ID with common.ErrNotFound.
// BulkPut writes all rows or none. Count reports every stored row, including
// any GetAll had to skip because it could not be read back.
type Repository interface {
	Get(ctx context.Context, id string) (*models.Record, error)
	Put(ctx context.Context, rec *models.Record) error
	BulkPut(ctx context.Context, recs []models.Record) error
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]models.Record, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
