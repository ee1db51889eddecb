package repository

import (
	"context"

	"github.com/and161185/shelf-keeper/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ItemTemplateRepository provides CRUD access to item templates and their
// ordered attribute cross-references.
type ItemTemplateRepository interface {
	// GetAll returns all item templates ordered by name, each with its
	// attributes in persisted show-order.
	GetAll(ctx context.Context) ([]model.ItemTemplate, error)

	// Upsert writes the template row and rewrites its cross-reference and
	// link rows in one transaction. Partial writes are never observable.
	Upsert(ctx context.Context, t *model.ItemTemplate) error

	// Delete removes the template; cross-reference and link rows go with it.
	Delete(ctx context.Context, id uuid.UUID) error
}
