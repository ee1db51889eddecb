// Package convert materializes template default values into typed attributes.
package convert

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/and161185/shelf-keeper/internal/model"
)

// fallbackDate is substituted when a date default cannot be parsed.
var fallbackDate = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// Coercer converts raw template defaults into typed attribute values.
// Conversions never fail: malformed defaults degrade to a logged fallback so
// that template rendering survives bad historical data.
type Coercer struct {
	logger *zap.Logger
}

// New constructs a Coercer. A nil logger is replaced with a no-op logger.
func New(logger *zap.Logger) *Coercer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coercer{logger: logger}
}

// FromTemplate dispatches on the template's value type and returns the
// matching Attribute variant with an unassigned id and owner.
func (c *Coercer) FromTemplate(t model.AttrTemplate) model.Attribute {
	switch t.ValueType {
	case model.ValueTypeNumeric:
		return c.Numeric(t)
	case model.ValueTypeBoolean:
		return c.Boolean(t)
	case model.ValueTypeDate:
		return c.Date(t)
	case model.ValueTypeDateTime:
		return c.DateTime(t)
	default:
		return c.Text(t)
	}
}

// Text copies the default verbatim.
func (c *Coercer) Text(t model.AttrTemplate) model.TextAttribute {
	return model.TextAttribute{Name: t.Name, Value: t.DefaultValue, TemplateID: t.ID}
}

// Numeric parses the default as an exact decimal, falling back to zero.
func (c *Coercer) Numeric(t model.AttrTemplate) model.NumericAttribute {
	d, err := decimal.NewFromString(t.DefaultValue)
	if err != nil {
		c.logger.Warn("bad numeric default, using zero",
			zap.String("template", t.Name),
			zap.String("default", t.DefaultValue),
			zap.Error(err),
		)
		d = decimal.Zero
	}
	return model.NumericAttribute{Name: t.Name, Value: d, TemplateID: t.ID}
}

// Boolean is true only for the exact literal "true".
func (c *Coercer) Boolean(t model.AttrTemplate) model.BooleanAttribute {
	return model.BooleanAttribute{Name: t.Name, Value: t.DefaultValue == "true", TemplateID: t.ID}
}

// Date parses the default as a bare year and yields January 1st of that
// year, falling back to a fixed date.
func (c *Coercer) Date(t model.AttrTemplate) model.DateAttribute {
	year, err := strconv.Atoi(t.DefaultValue)
	if err != nil || year < 1 || year > 9999 {
		c.logger.Warn("bad date default, using fallback",
			zap.String("template", t.Name),
			zap.String("default", t.DefaultValue),
			zap.Time("fallback", fallbackDate),
		)
		return model.DateAttribute{Name: t.Name, Value: fallbackDate, TemplateID: t.ID}
	}
	v := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return model.DateAttribute{Name: t.Name, Value: v, TemplateID: t.ID}
}

// DateTime parses the default as RFC 3339, falling back to the current time.
// The fallback is wall-clock on purpose: a stale default should render as
// "now", not as a fixed sentinel in the past.
func (c *Coercer) DateTime(t model.AttrTemplate) model.DateTimeAttribute {
	v, err := time.Parse(time.RFC3339, t.DefaultValue)
	if err != nil {
		c.logger.Warn("bad datetime default, using current time",
			zap.String("template", t.Name),
			zap.String("default", t.DefaultValue),
		)
		v = time.Now().UTC()
	}
	return model.DateTimeAttribute{Name: t.Name, Value: v, TemplateID: t.ID}
}
