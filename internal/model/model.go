// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// ValueType is the closed set of attribute value kinds. It serializes to a
// short lowercase token in storage.
type ValueType string

// Known value type tokens.
const (
	ValueTypeText     ValueType = "text"
	ValueTypeNumeric  ValueType = "numeric"
	ValueTypeBoolean  ValueType = "boolean"
	ValueTypeDate     ValueType = "date"
	ValueTypeDateTime ValueType = "datetime"
)

// ParseValueType maps a stored token to a ValueType. Unrecognized tokens map
// to ValueTypeText so that old or hand-edited rows never break reads.
func ParseValueType(s string) ValueType {
	switch ValueType(s) {
	case ValueTypeNumeric, ValueTypeBoolean, ValueTypeDate, ValueTypeDateTime:
		return ValueType(s)
	default:
		return ValueTypeText
	}
}

// String returns the storage token.
func (v ValueType) String() string { return string(v) }

// AttrTemplate is a reusable definition of one named, typed field.
// DefaultValue is raw text; it is interpreted per ValueType only at coercion
// time, never at storage time.
type AttrTemplate struct {
	ID           uuid.UUID // uuid.Nil until first save
	Name         string    // unique
	Description  string
	ValueType    ValueType
	DefaultValue string
	Required     bool
}

// TemplateLink is a named relation from one item template to another.
type TemplateLink struct {
	Name           string
	ItemTemplateID uuid.UUID
}

// ItemTemplate is a named composite type built from attribute templates.
// Attributes order is significant and persisted as a dense 1-based
// show-order. ListingAttr is the attribute shown in list/summary views; it
// is either the zero value or one of Attributes (callers enforce this, the
// repository stores whatever it is given).
type ItemTemplate struct {
	ID          uuid.UUID // uuid.Nil until first save
	Name        string    // unique
	Description string
	ListingAttr AttrTemplate
	Attributes  []AttrTemplate
	Links       []TemplateLink
}

// Attribute is the closed union of typed attribute values produced by
// coercing a template's default. Variants are plain values, not persisted
// entities.
type Attribute interface {
	attribute()
}

// TextAttribute holds a free-text value.
type TextAttribute struct {
	ID         uuid.UUID
	Name       string
	Value      string
	TemplateID uuid.UUID // originating AttrTemplate
	OwnerID    uuid.UUID // owning item instance; unassigned at coercion
}

// NumericAttribute holds an exact decimal value.
type NumericAttribute struct {
	ID         uuid.UUID
	Name       string
	Value      decimal.Decimal
	TemplateID uuid.UUID
	OwnerID    uuid.UUID
}

// BooleanAttribute holds a flag value.
type BooleanAttribute struct {
	ID         uuid.UUID
	Name       string
	Value      bool
	TemplateID uuid.UUID
	OwnerID    uuid.UUID
}

// DateAttribute holds a calendar date (UTC midnight).
type DateAttribute struct {
	ID         uuid.UUID
	Name       string
	Value      time.Time
	TemplateID uuid.UUID
	OwnerID    uuid.UUID
}

// DateTimeAttribute holds a point in time.
type DateTimeAttribute struct {
	ID         uuid.UUID
	Name       string
	Value      time.Time
	TemplateID uuid.UUID
	OwnerID    uuid.UUID
}

func (TextAttribute) attribute()     {}
func (NumericAttribute) attribute()  {}
func (BooleanAttribute) attribute()  {}
func (DateAttribute) attribute()     {}
func (DateTimeAttribute) attribute() {}
