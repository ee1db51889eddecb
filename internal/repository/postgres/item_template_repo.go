package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/and161185/shelf-keeper/internal/errs"
	"github.com/and161185/shelf-keeper/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// ItemTemplateRepo implements ItemTemplateRepository using PostgreSQL.
type ItemTemplateRepo struct{ db *DB }

// NewItemTemplateRepo constructs an item template repository.
func NewItemTemplateRepo(db *DB) *ItemTemplateRepo { return &ItemTemplateRepo{db: db} }

// GetAll reconstructs item templates from a single driving join. Rows arrive
// ordered by template name, then show_index, so appending attributes in row
// order yields the persisted attribute order without a secondary sort.
// Templates without attributes survive the outer join with an empty list.
func (r *ItemTemplateRepo) GetAll(ctx context.Context) ([]model.ItemTemplate, error) {
	const q = `
SELECT it.id, it.name, it.description,
       lat.id, lat.name, lat.description, lat.value_type, lat.default_value, lat.required,
       at.id, at.name, at.description, at.value_type, at.default_value, at.required
FROM item_templates it
LEFT JOIN attr_templates lat ON lat.id = it.listing_attr_template_id
LEFT JOIN item_template_attr_xref x ON x.item_template_id = it.id
LEFT JOIN attr_templates at ON at.id = x.attr_template_id
ORDER BY it.name ASC, x.show_index ASC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ItemTemplate
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			id         uuid.UUID
			name, desc string

			latID                                 *uuid.UUID
			latName, latDesc, latType, latDefault *string
			latReq                                *bool

			aID                           *uuid.UUID
			aName, aDesc, aType, aDefault *string
			aReq                          *bool
		)
		if err = rows.Scan(
			&id, &name, &desc,
			&latID, &latName, &latDesc, &latType, &latDefault, &latReq,
			&aID, &aName, &aDesc, &aType, &aDefault, &aReq,
		); err != nil {
			return nil, err
		}

		i, ok := index[id]
		if !ok {
			t := model.ItemTemplate{
				ID:          id,
				Name:        name,
				Description: desc,
				Attributes:  []model.AttrTemplate{},
			}
			if latID != nil {
				t.ListingAttr = model.AttrTemplate{
					ID:           *latID,
					Name:         *latName,
					Description:  *latDesc,
					ValueType:    model.ParseValueType(*latType),
					DefaultValue: *latDefault,
					Required:     *latReq,
				}
			}
			out = append(out, t)
			i = len(out) - 1
			index[id] = i
		}
		if aID != nil {
			out[i].Attributes = append(out[i].Attributes, model.AttrTemplate{
				ID:           *aID,
				Name:         *aName,
				Description:  *aDesc,
				ValueType:    model.ParseValueType(*aType),
				DefaultValue: *aDefault,
				Required:     *aReq,
			})
		}
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if err = r.loadLinks(ctx, out, index); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// loadLinks attaches link rows to the already-grouped templates.
func (r *ItemTemplateRepo) loadLinks(ctx context.Context, out []model.ItemTemplate, index map[uuid.UUID]int) error {
	const q = `
SELECT item_template_id, name, linked_item_template_id
FROM item_template_links
ORDER BY item_template_id ASC, name ASC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			owner, target uuid.UUID
			name          string
		)
		if err = rows.Scan(&owner, &name, &target); err != nil {
			return err
		}
		if i, ok := index[owner]; ok {
			out[i].Links = append(out[i].Links, model.TemplateLink{Name: name, ItemTemplateID: target})
		}
	}
	return rows.Err()
}

// Upsert writes the template row, then rewrites all of its cross-reference
// and link rows, in one transaction. Delete-then-reinsert instead of diffing:
// every update rewrites the full set, which keeps the ordering logic trivial
// at the cost of write amplification.
func (r *ItemTemplateRepo) Upsert(ctx context.Context, t *model.ItemTemplate) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const upsertTmpl = `
INSERT INTO item_templates (id, name, description, listing_attr_template_id)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO UPDATE
SET name=EXCLUDED.name, description=EXCLUDED.description,
    listing_attr_template_id=EXCLUDED.listing_attr_template_id`
	if _, err = tx.Exec(ctx, upsertTmpl, t.ID, t.Name, t.Description, nullableID(t.ListingAttr.ID)); err != nil {
		if isUniqueViolation(err) {
			err = fmt.Errorf("%w: name", errs.ErrAlreadyExists)
		}
		return err
	}

	// No-op for a fresh id; clears the previous ordering otherwise.
	if _, err = tx.Exec(ctx, `DELETE FROM item_template_attr_xref WHERE item_template_id=$1`, t.ID); err != nil {
		return err
	}
	const insXref = `
INSERT INTO item_template_attr_xref (item_template_id, attr_template_id, show_index)
VALUES ($1,$2,$3)`
	for i := range t.Attributes {
		if _, err = tx.Exec(ctx, insXref, t.ID, t.Attributes[i].ID, i+1); err != nil {
			err = fmt.Errorf("attribute[%d]: %w", i, err)
			return err
		}
	}

	if _, err = tx.Exec(ctx, `DELETE FROM item_template_links WHERE item_template_id=$1`, t.ID); err != nil {
		return err
	}
	const insLink = `
INSERT INTO item_template_links (item_template_id, name, linked_item_template_id)
VALUES ($1,$2,$3)`
	for i := range t.Links {
		if _, err = tx.Exec(ctx, insLink, t.ID, t.Links[i].Name, t.Links[i].ItemTemplateID); err != nil {
			err = fmt.Errorf("link[%d]: %w", i, err)
			return err
		}
	}
	return nil
}

// Delete removes the template row; cross-reference and link rows are removed
// by ON DELETE CASCADE in the same implicit transaction.
func (r *ItemTemplateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM item_templates WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// nullableID maps the sentinel id to SQL NULL.
func nullableID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}
