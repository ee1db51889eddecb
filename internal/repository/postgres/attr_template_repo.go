package postgres

import (
	"context"
	"fmt"

	"github.com/and161185/shelf-keeper/internal/errs"
	"github.com/and161185/shelf-keeper/internal/model"
	"github.com/gofrs/uuid/v5"
)

// AttrTemplateRepo implements AttrTemplateRepository using PostgreSQL.
type AttrTemplateRepo struct{ db *DB }

// NewAttrTemplateRepo constructs an attribute template repository.
func NewAttrTemplateRepo(db *DB) *AttrTemplateRepo { return &AttrTemplateRepo{db: db} }

// GetAll returns all attribute templates ordered by name (id breaks ties).
func (r *AttrTemplateRepo) GetAll(ctx context.Context) ([]model.AttrTemplate, error) {
	const q = `
SELECT id, name, description, value_type, default_value, required
FROM attr_templates
ORDER BY name ASC, id ASC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AttrTemplate
	for rows.Next() {
		var (
			t  model.AttrTemplate
			vt string
		)
		if err = rows.Scan(&t.ID, &t.Name, &t.Description, &vt, &t.DefaultValue, &t.Required); err != nil {
			return nil, err
		}
		t.ValueType = model.ParseValueType(vt)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Upsert inserts the template or overwrites all non-key fields of the row
// with the same id. One statement, no read-then-write.
func (r *AttrTemplateRepo) Upsert(ctx context.Context, t *model.AttrTemplate) error {
	const q = `
INSERT INTO attr_templates (id, name, description, value_type, default_value, required)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE
SET name=EXCLUDED.name, description=EXCLUDED.description, value_type=EXCLUDED.value_type,
    default_value=EXCLUDED.default_value, required=EXCLUDED.required`
	_, err := r.db.Pool.Exec(ctx, q, t.ID, t.Name, t.Description, t.ValueType.String(), t.DefaultValue, t.Required)
	if isUniqueViolation(err) {
		// id conflicts are handled by the upsert; only name is left to collide
		return fmt.Errorf("%w: name", errs.ErrAlreadyExists)
	}
	return err
}

// Delete removes the template. Referencing cross-reference or listing rows
// block the delete instead of cascading.
func (r *AttrTemplateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM attr_templates WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errs.ErrDependenciesExist
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
