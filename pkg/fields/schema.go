// Package fields declares table columns as data and validates rows against them.
package fields

import (
	"github.com/go-faster/errors"

	"github.com/iota-uz/suggestion-admin/pkg/serrors"
)

type Rule string

const (
	RuleNone                Rule = ""
	RuleRequired            Rule = "required"
	RuleOneOf               Rule = "oneof"
	RulePositive            Rule = "positive"
	RuleNonNegative         Rule = "nonnegative"
	RuleOptionalNonNegative Rule = "optional_nonnegative"
)

// Mode selects which rule set applies: bulk submit or single-row save.
type Mode int

const (
	ModeSubmit Mode = iota
	ModeSave
)

var (
	ErrUnknownField = serrors.NewError("FIELD_UNKNOWN", "unknown field", "Fields.Errors.Unknown")
	ErrDerivedField = serrors.NewError("FIELD_DERIVED", "field is derived and cannot be edited", "Fields.Errors.Derived")
	ErrKindMismatch = serrors.NewError("FIELD_KIND_MISMATCH", "value kind does not match field", "Fields.Errors.Kind")
	ErrInvalidValue = serrors.NewError("FIELD_INVALID_VALUE", "value cannot be parsed for field", "Fields.Errors.Invalid")
)

type Descriptor struct {
	Name  string
	Label string
	Kind  Kind
	Rule  Rule
	// SaveRule overrides Rule for ModeSave when set.
	SaveRule Rule
	Options  []string
	// Derived fields are written only by reference derivation.
	Derived bool
	// Tagged fields are rendered as colored tags.
	Tagged bool
	// InheritFromPrevious seeds a new row with the previous row's value.
	InheritFromPrevious bool
	// Default seeds a new row when there is nothing to inherit.
	Default Value
}

func (d Descriptor) rule(mode Mode) Rule {
	if mode == ModeSave && d.SaveRule != RuleNone {
		return d.SaveRule
	}
	return d.Rule
}

func (d Descriptor) zero() Value {
	if d.Default.Valid && d.Default.Kind == d.Kind {
		return d.Default
	}
	return Absent(d.Kind)
}

type Schema struct {
	Name   string
	Fields []Descriptor
	// KeyField is the column whose selection drives reference derivation.
	KeyField string
	// FilterField is the categorical column used by filtered reloads.
	FilterField string

	index map[string]int
}

func NewSchema(name string, descriptors ...Descriptor) *Schema {
	s := &Schema{
		Name:   name,
		Fields: descriptors,
		index:  make(map[string]int, len(descriptors)),
	}
	for i, d := range descriptors {
		s.index[d.Name] = i
	}
	return s
}

func (s *Schema) WithKeyField(name string) *Schema {
	s.KeyField = name
	return s
}

func (s *Schema) WithFilterField(name string) *Schema {
	s.FilterField = name
	return s
}

func (s *Schema) Field(name string) (Descriptor, bool) {
	i, ok := s.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return s.Fields[i], true
}

func (s *Schema) Names() []string {
	out := make([]string, len(s.Fields))
	for i, d := range s.Fields {
		out[i] = d.Name
	}
	return out
}

// Blank returns the values of a freshly added row. prev is the row above it, or nil.
func (s *Schema) Blank(prev Values) Values {
	out := make(Values, len(s.Fields))
	for _, d := range s.Fields {
		if d.InheritFromPrevious && prev != nil {
			if v, ok := prev[d.Name]; ok && v.Valid {
				out[d.Name] = v
				continue
			}
		}
		out[d.Name] = d.zero()
	}
	return out
}

// CheckWritable reports whether a user edit may set name to v.
func (s *Schema) CheckWritable(name string, v Value) error {
	d, ok := s.Field(name)
	if !ok {
		return errors.Wrap(ErrUnknownField.WithTemplateData(map[string]string{"field": name}), s.Name)
	}
	if d.Derived {
		return errors.Wrap(ErrDerivedField.WithTemplateData(map[string]string{"field": name}), s.Name)
	}
	if v.Kind != d.Kind {
		return errors.Wrap(ErrKindMismatch.WithTemplateData(map[string]string{
			"field": name,
			"want":  d.Kind.String(),
			"got":   v.Kind.String(),
		}), s.Name)
	}
	return nil
}

// Parse converts raw input for the named field.
func (s *Schema) Parse(name, raw string) (Value, error) {
	d, ok := s.Field(name)
	if !ok {
		return Value{}, ErrUnknownField.WithTemplateData(map[string]string{"field": name})
	}
	v, err := ParseValue(d.Kind, raw)
	if err != nil {
		return Value{}, errors.Wrap(ErrInvalidValue.WithTemplateData(map[string]string{
			"field": name,
			"value": raw,
		}), err.Error())
	}
	return v, nil
}

// Derive maps reference attributes onto the schema's derived fields.
// Attributes with no matching derived field are ignored; derived fields
// with no attribute are left out so the row keeps its prior value.
func (s *Schema) Derive(attrs map[string]string) Values {
	out := Values{}
	for _, d := range s.Fields {
		if !d.Derived {
			continue
		}
		raw, ok := attrs[d.Name]
		if !ok {
			continue
		}
		v, err := ParseValue(d.Kind, raw)
		if err != nil {
			continue
		}
		out[d.Name] = v
	}
	return out
}

// HasDerived reports whether any column depends on KeyField.
func (s *Schema) HasDerived() bool {
	for _, d := range s.Fields {
		if d.Derived {
			return true
		}
	}
	return false
}
