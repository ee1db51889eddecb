package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/and161185/shelf-keeper/internal/errs"
	"github.com/and161185/shelf-keeper/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var itemJoinCols = []string{
	"id", "name", "description",
	"lat_id", "lat_name", "lat_description", "lat_value_type", "lat_default_value", "lat_required",
	"a_id", "a_name", "a_description", "a_value_type", "a_default_value", "a_required",
}

// ptr builds typed pointer cells for the nullable join columns.
func ptr[T any](v T) *T { return &v }

func TestItemTemplateRepo_GetAll_GroupsAndOrders(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewItemTemplateRepo(db)

	boxID := uuid.Must(uuid.NewV4())
	toolID := uuid.Must(uuid.NewV4())
	attrA := uuid.Must(uuid.NewV4())
	attrB := uuid.Must(uuid.NewV4())

	// rows arrive name-ordered, xref rows show_index-ordered inside a template
	rows := pgxmock.NewRows(itemJoinCols).
		AddRow(boxID, "box", "plain box",
			(*uuid.UUID)(nil), (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), (*bool)(nil),
			(*uuid.UUID)(nil), (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), (*bool)(nil)).
		AddRow(toolID, "tool", "",
			ptr(attrA), ptr("label"), ptr(""), ptr("text"), ptr(""), ptr(true),
			ptr(attrA), ptr("label"), ptr(""), ptr("text"), ptr(""), ptr(true)).
		AddRow(toolID, "tool", "",
			ptr(attrA), ptr("label"), ptr(""), ptr("text"), ptr(""), ptr(true),
			ptr(attrB), ptr("bought"), ptr(""), ptr("date"), ptr("2020"), ptr(false))

	mock.ExpectQuery(`SELECT it.id, it.name, it.description`).
		WillReturnRows(rows)

	links := pgxmock.NewRows([]string{"item_template_id", "name", "linked_item_template_id"}).
		AddRow(toolID, "stored in", boxID)
	mock.ExpectQuery(`SELECT item_template_id, name, linked_item_template_id FROM item_template_links`).
		WillReturnRows(links)

	out, err := r.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)

	require.Equal(t, "box", out[0].Name)
	require.Empty(t, out[0].Attributes)
	require.Equal(t, uuid.Nil, out[0].ListingAttr.ID)
	require.Empty(t, out[0].Links)

	require.Equal(t, "tool", out[1].Name)
	require.Equal(t, attrA, out[1].ListingAttr.ID)
	require.Equal(t, "label", out[1].ListingAttr.Name)
	require.Len(t, out[1].Attributes, 2)
	require.Equal(t, attrA, out[1].Attributes[0].ID)
	require.Equal(t, attrB, out[1].Attributes[1].ID)
	require.Equal(t, model.ValueTypeDate, out[1].Attributes[1].ValueType)
	require.Equal(t, []model.TemplateLink{{Name: "stored in", ItemTemplateID: boxID}}, out[1].Links)
}

func TestItemTemplateRepo_GetAll_QueryErr(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewItemTemplateRepo(db)

	mock.ExpectQuery(`SELECT it.id, it.name, it.description`).
		WillReturnError(errors.New("q-fail"))

	_, err := r.GetAll(context.Background())
	require.Error(t, err)
}

func TestItemTemplateRepo_GetAll_LinksQueryErr(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewItemTemplateRepo(db)

	mock.ExpectQuery(`SELECT it.id, it.name, it.description`).
		WillReturnRows(pgxmock.NewRows(itemJoinCols))
	mock.ExpectQuery(`SELECT item_template_id, name, linked_item_template_id FROM item_template_links`).
		WillReturnError(errors.New("links-fail"))

	_, err := r.GetAll(context.Background())
	require.Error(t, err)
}

func TestItemTemplateRepo_Upsert_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewItemTemplateRepo(db)

	id := uuid.Must(uuid.NewV4())
	attrA := uuid.Must(uuid.NewV4())
	attrB := uuid.Must(uuid.NewV4())
	boxID := uuid.Must(uuid.NewV4())

	tpl := &model.ItemTemplate{
		ID:          id,
		Name:        "tool",
		Description: "hand tool",
		ListingAttr: model.AttrTemplate{ID: attrA},
		Attributes:  []model.AttrTemplate{{ID: attrA}, {ID: attrB}},
		Links:       []model.TemplateLink{{Name: "stored in", ItemTemplateID: boxID}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO item_templates \(id, name, description, listing_attr_template_id\)`).
		WithArgs(id, "tool", "hand tool", attrA).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM item_template_attr_xref WHERE item_template_id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO item_template_attr_xref \(item_template_id, attr_template_id, show_index\)`).
		WithArgs(id, attrA, 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO item_template_attr_xref \(item_template_id, attr_template_id, show_index\)`).
		WithArgs(id, attrB, 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM item_template_links WHERE item_template_id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO item_template_links \(item_template_id, name, linked_item_template_id\)`).
		WithArgs(id, "stored in", boxID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, r.Upsert(context.Background(), tpl))
}

func TestItemTemplateRepo_Upsert_Reorder_RewritesXref(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewItemTemplateRepo(db)

	id := uuid.Must(uuid.NewV4())
	attrA := uuid.Must(uuid.NewV4())
	attrB := uuid.Must(uuid.NewV4())

	// [B, A]: the old rows go away wholesale, show_index restarts at 1
	tpl := &model.ItemTemplate{
		ID:         id,
		Name:       "tool",
		Attributes: []model.AttrTemplate{{ID: attrB}, {ID: attrA}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO item_templates`).
		WithArgs(id, "tool", "", nil).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM item_template_attr_xref WHERE item_template_id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`INSERT INTO item_template_attr_xref`).
		WithArgs(id, attrB, 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO item_template_attr_xref`).
		WithArgs(id, attrA, 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM item_template_links WHERE item_template_id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	require.NoError(t, r.Upsert(context.Background(), tpl))
}

func TestItemTemplateRepo_Upsert_NameTaken(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewItemTemplateRepo(db)

	id := uuid.Must(uuid.NewV4())
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO item_templates`).
		WithArgs(id, "tool", "", nil).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := r.Upsert(context.Background(), &model.ItemTemplate{ID: id, Name: "tool"})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestItemTemplateRepo_Upsert_XrefInsertErr_RollsBack(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewItemTemplateRepo(db)

	id := uuid.Must(uuid.NewV4())
	attrA := uuid.Must(uuid.NewV4())
	missing := uuid.Must(uuid.NewV4())

	tpl := &model.ItemTemplate{
		ID:         id,
		Name:       "tool",
		Attributes: []model.AttrTemplate{{ID: attrA}, {ID: missing}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO item_templates`).
		WithArgs(id, "tool", "", nil).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM item_template_attr_xref WHERE item_template_id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO item_template_attr_xref`).
		WithArgs(id, attrA, 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO item_template_attr_xref`).
		WithArgs(id, missing, 2).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	err := r.Upsert(context.Background(), tpl)
	require.Error(t, err)
	require.ErrorContains(t, err, "attribute[1]")
}

func TestItemTemplateRepo_Upsert_BeginErr(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewItemTemplateRepo(db)

	mock.ExpectBegin().WillReturnError(errors.New("boom"))
	err := r.Upsert(context.Background(), &model.ItemTemplate{ID: uuid.Must(uuid.NewV4()), Name: "x"})
	require.Error(t, err)
}

func TestItemTemplateRepo_Upsert_CommitErr(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewItemTemplateRepo(db)

	id := uuid.Must(uuid.NewV4())
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO item_templates`).
		WithArgs(id, "tool", "", nil).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM item_template_attr_xref WHERE item_template_id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM item_template_links WHERE item_template_id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit().WillReturnError(errors.New("commit-fail"))

	err := r.Upsert(context.Background(), &model.ItemTemplate{ID: id, Name: "tool"})
	require.Error(t, err)
}

func TestItemTemplateRepo_Delete_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewItemTemplateRepo(db)

	id := uuid.Must(uuid.NewV4())
	mock.ExpectExec(`DELETE FROM item_templates WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, r.Delete(context.Background(), id))
}

func TestItemTemplateRepo_Delete_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewItemTemplateRepo(db)

	id := uuid.Must(uuid.NewV4())
	mock.ExpectExec(`DELETE FROM item_templates WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.ErrorIs(t, r.Delete(context.Background(), id), errs.ErrNotFound)
}
