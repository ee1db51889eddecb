// Package service contains the application service for template management.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/shelf-keeper/internal/model"
	"github.com/and161185/shelf-keeper/internal/repository"
)

// TemplateService defines management operations over attribute and item templates.
type TemplateService interface {
	// UpsertAttrTemplate saves the template, assigning a fresh id when needed.
	UpsertAttrTemplate(ctx context.Context, t *model.AttrTemplate) (uuid.UUID, error)
	// GetAllAttrTemplates returns all attribute templates ordered by name.
	GetAllAttrTemplates(ctx context.Context) ([]model.AttrTemplate, error)
	// DeleteAttrTemplate removes an attribute template.
	DeleteAttrTemplate(ctx context.Context, id uuid.UUID) error
	// UpsertItemTemplate saves the template and its attribute order atomically.
	UpsertItemTemplate(ctx context.Context, t *model.ItemTemplate) (uuid.UUID, error)
	// GetAllItemTemplates returns all item templates ordered by name.
	GetAllItemTemplates(ctx context.Context) ([]model.ItemTemplate, error)
	// DeleteItemTemplate removes an item template.
	DeleteItemTemplate(ctx context.Context, id uuid.UUID) error
}

// IDFunc produces fresh identifiers for first saves.
type IDFunc func() (uuid.UUID, error)

type TemplateServiceImpl struct {
	attrs repository.AttrTemplateRepository
	items repository.ItemTemplateRepository
	newID IDFunc
}

// NewTemplateService constructs TemplateService. A nil newID falls back to
// time-ordered UUIDs.
func NewTemplateService(attrs repository.AttrTemplateRepository, items repository.ItemTemplateRepository, newID IDFunc) *TemplateServiceImpl {
	if newID == nil {
		newID = func() (uuid.UUID, error) { return uuid.NewV7() }
	}
	return &TemplateServiceImpl{attrs: attrs, items: items, newID: newID}
}

// UpsertAttrTemplate assigns an id on first save and delegates to the repository.
func (s *TemplateServiceImpl) UpsertAttrTemplate(ctx context.Context, t *model.AttrTemplate) (uuid.UUID, error) {
	if t == nil {
		return uuid.Nil, errors.New("validation: nil template")
	}
	if t.Name == "" {
		return uuid.Nil, errors.New("validation: empty name")
	}
	if t.ID == uuid.Nil {
		id, err := s.newID()
		if err != nil {
			return uuid.Nil, err
		}
		t.ID = id
	}
	if err := s.attrs.Upsert(ctx, t); err != nil {
		return uuid.Nil, err
	}
	return t.ID, nil
}

// GetAllAttrTemplates lists attribute templates.
func (s *TemplateServiceImpl) GetAllAttrTemplates(ctx context.Context) ([]model.AttrTemplate, error) {
	return s.attrs.GetAll(ctx)
}

// DeleteAttrTemplate removes an attribute template by id.
func (s *TemplateServiceImpl) DeleteAttrTemplate(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.New("validation: empty id")
	}
	return s.attrs.Delete(ctx, id)
}

// UpsertItemTemplate validates structural invariants the repository does not
// enforce, assigns an id on first save, and delegates.
// Validation rules:
// - every attribute has a non-nil id, no attribute id repeats
// - the listing attribute is either unset or one of the attributes
// - every link has a name and a non-nil target id
func (s *TemplateServiceImpl) UpsertItemTemplate(ctx context.Context, t *model.ItemTemplate) (uuid.UUID, error) {
	if t == nil {
		return uuid.Nil, errors.New("validation: nil template")
	}
	if t.Name == "" {
		return uuid.Nil, errors.New("validation: empty name")
	}
	seen := make(map[uuid.UUID]struct{}, len(t.Attributes))
	for i := range t.Attributes {
		id := t.Attributes[i].ID
		if id == uuid.Nil {
			return uuid.Nil, fmt.Errorf("validation: attribute[%d] empty id", i)
		}
		if _, dup := seen[id]; dup {
			return uuid.Nil, fmt.Errorf("validation: attribute[%d] duplicate id %s", i, id)
		}
		seen[id] = struct{}{}
	}
	if t.ListingAttr.ID != uuid.Nil {
		if _, ok := seen[t.ListingAttr.ID]; !ok {
			return uuid.Nil, errors.New("validation: listing attribute not among attributes")
		}
	}
	for i := range t.Links {
		if t.Links[i].Name == "" {
			return uuid.Nil, fmt.Errorf("validation: link[%d] empty name", i)
		}
		if t.Links[i].ItemTemplateID == uuid.Nil {
			return uuid.Nil, fmt.Errorf("validation: link[%d] empty target id", i)
		}
	}
	if t.ID == uuid.Nil {
		id, err := s.newID()
		if err != nil {
			return uuid.Nil, err
		}
		t.ID = id
	}
	if err := s.items.Upsert(ctx, t); err != nil {
		return uuid.Nil, err
	}
	return t.ID, nil
}

// GetAllItemTemplates lists item templates.
func (s *TemplateServiceImpl) GetAllItemTemplates(ctx context.Context) ([]model.ItemTemplate, error) {
	return s.items.GetAll(ctx)
}

// DeleteItemTemplate removes an item template by id.
func (s *TemplateServiceImpl) DeleteItemTemplate(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.New("validation: empty id")
	}
	return s.items.Delete(ctx, id)
}
