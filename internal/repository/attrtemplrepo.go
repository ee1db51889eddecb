// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/shelf-keeper/internal/model"
	"github.com/gofrs/uuid/v5"
)

// AttrTemplateRepository provides CRUD access to attribute templates.
type AttrTemplateRepository interface {
	// GetAll returns all attribute templates ordered by name.
	GetAll(ctx context.Context) ([]model.AttrTemplate, error)

	// Upsert inserts the template or overwrites all non-key fields of an
	// existing row with the same id, as a single statement.
	Upsert(ctx context.Context, t *model.AttrTemplate) error

	// Delete removes the template. Fails with errs.ErrDependenciesExist when
	// item templates still reference it.
	Delete(ctx context.Context, id uuid.UUID) error
}
