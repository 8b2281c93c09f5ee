// Package rowset is the ordered, locally editable collection of table rows.
package rowset

import (
	"github.com/go-faster/errors"

	"github.com/iota-uz/suggestion-admin/pkg/fields"
	"github.com/iota-uz/suggestion-admin/pkg/serrors"
)

var (
	ErrRowNotFound     = serrors.NewError("ROW_NOT_FOUND", "row not found", "Rows.Errors.NotFound")
	ErrRemoteIDChanged = serrors.NewError("ROW_REMOTE_ID_CHANGED", "remote id is immutable once set", "Rows.Errors.RemoteID")
)

type Row struct {
	LocalKey  int           `json:"key"`
	RemoteID  string        `json:"id,omitempty"`
	Values    fields.Values `json:"-"`
	CreatedAt string        `json:"createdAt,omitempty"`
	UpdatedAt string        `json:"updatedAt,omitempty"`
}

func (r Row) RowKey() int                { return r.LocalKey }
func (r Row) FieldValues() fields.Values { return r.Values }
func (r Row) Persisted() bool            { return r.RemoteID != "" }

func (r Row) Clone() Row {
	r.Values = r.Values.Clone()
	return r
}

// Collection keeps insertion order. Local keys come from a counter that
// only grows, so a key is never handed out twice by the same collection.
type Collection struct {
	schema  *fields.Schema
	rows    []Row
	nextKey int
}

func New(schema *fields.Schema) *Collection {
	return &Collection{schema: schema}
}

func (c *Collection) Schema() *fields.Schema {
	return c.schema
}

func (c *Collection) Len() int {
	return len(c.rows)
}

// Add appends a blank row and returns a copy of it.
func (c *Collection) Add() Row {
	var prev fields.Values
	if n := len(c.rows); n > 0 {
		prev = c.rows[n-1].Values
	}
	row := Row{
		LocalKey: c.allocKey(),
		Values:   c.schema.Blank(prev),
	}
	c.rows = append(c.rows, row)
	return row.Clone()
}

// Remove drops the row with key. It reports whether a row was removed.
func (c *Collection) Remove(key int) bool {
	i := c.indexOf(key)
	if i < 0 {
		return false
	}
	c.rows = append(c.rows[:i], c.rows[i+1:]...)
	return true
}

// SetField applies a user edit. Derived columns are refused.
func (c *Collection) SetField(key int, name string, v fields.Value) error {
	i := c.indexOf(key)
	if i < 0 {
		return errors.Wrapf(ErrRowNotFound, "key %d", key)
	}
	if err := c.schema.CheckWritable(name, v); err != nil {
		return err
	}
	c.rows[i].Values[name] = v
	return nil
}

// ApplyDerivation overwrites the derived columns present in derived and
// leaves every other column alone.
func (c *Collection) ApplyDerivation(key int, derived fields.Values) error {
	i := c.indexOf(key)
	if i < 0 {
		return errors.Wrapf(ErrRowNotFound, "key %d", key)
	}
	applyDerived(c.schema, c.rows[i].Values, derived)
	return nil
}

// Replace stores row over the existing row with the same local key.
func (c *Collection) Replace(row Row) error {
	i := c.indexOf(row.LocalKey)
	if i < 0 {
		return errors.Wrapf(ErrRowNotFound, "key %d", row.LocalKey)
	}
	if cur := c.rows[i].RemoteID; cur != "" && cur != row.RemoteID {
		return errors.Wrapf(ErrRemoteIDChanged, "key %d: %s -> %s", row.LocalKey, cur, row.RemoteID)
	}
	c.rows[i] = row.Clone()
	return nil
}

// ReplaceAll discards every local row and loads rows in the given order
// under fresh local keys.
func (c *Collection) ReplaceAll(rows []Row) {
	next := make([]Row, 0, len(rows))
	for _, r := range rows {
		r = r.Clone()
		if r.Values == nil {
			r.Values = fields.Values{}
		}
		r.LocalKey = c.allocKey()
		next = append(next, r)
	}
	c.rows = next
}

func (c *Collection) Get(key int) (Row, bool) {
	i := c.indexOf(key)
	if i < 0 {
		return Row{}, false
	}
	return c.rows[i].Clone(), true
}

func (c *Collection) FindRemote(id string) (Row, bool) {
	if id == "" {
		return Row{}, false
	}
	for _, r := range c.rows {
		if r.RemoteID == id {
			return r.Clone(), true
		}
	}
	return Row{}, false
}

// Rows returns copies in display order.
func (c *Collection) Rows() []Row {
	out := make([]Row, len(c.rows))
	for i, r := range c.rows {
		out[i] = r.Clone()
	}
	return out
}

func (c *Collection) allocKey() int {
	k := c.nextKey
	c.nextKey++
	return k
}

func (c *Collection) indexOf(key int) int {
	for i, r := range c.rows {
		if r.LocalKey == key {
			return i
		}
	}
	return -1
}

func applyDerived(schema *fields.Schema, dst, derived fields.Values) {
	for name, v := range derived {
		d, ok := schema.Field(name)
		if !ok || !d.Derived || d.Kind != v.Kind {
			continue
		}
		dst[name] = v
	}
}

// ApplyDerivedTo is the same cascade for rows held outside a Collection,
// such as an edit working copy.
func ApplyDerivedTo(schema *fields.Schema, row *Row, derived fields.Values) {
	if row.Values == nil {
		row.Values = fields.Values{}
	}
	applyDerived(schema, row.Values, derived)
}
