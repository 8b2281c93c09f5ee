// Package reference holds the read-only lookup list that drives derived columns.
package reference

import (
	"github.com/go-faster/errors"
	"github.com/tidwall/gjson"
)

var ErrNotArray = errors.New("reference: payload is not a JSON array")

type Attributes map[string]string

type Entry struct {
	Key        string
	Attributes Attributes
}

// Catalog is immutable after construction. Duplicate keys are kept; the
// first one in load order is the one Resolve returns.
type Catalog struct {
	entries []Entry
	first   map[string]int
}

func NewCatalog(entries []Entry) *Catalog {
	c := &Catalog{
		entries: make([]Entry, len(entries)),
		first:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		c.entries[i] = Entry{Key: e.Key, Attributes: copyAttrs(e.Attributes)}
		if _, seen := c.first[e.Key]; !seen {
			c.first[e.Key] = i
		}
	}
	return c
}

func (c *Catalog) Resolve(key string) (Attributes, bool) {
	if c == nil {
		return nil, false
	}
	i, ok := c.first[key]
	if !ok {
		return nil, false
	}
	return copyAttrs(c.entries[i].Attributes), true
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Keys lists entry keys in load order, duplicates included.
func (c *Catalog) Keys() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Key
	}
	return out
}

// Parse reads a JSON array of objects. keyField names the member used as the
// entry key; every other scalar member becomes an attribute. Objects without
// the key member are skipped.
func Parse(raw []byte, keyField string) ([]Entry, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("reference: invalid JSON")
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsArray() {
		return nil, ErrNotArray
	}
	var out []Entry
	doc.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		key := item.Get(keyField)
		if !key.Exists() || key.Type == gjson.Null {
			return true
		}
		attrs := Attributes{}
		item.ForEach(func(name, val gjson.Result) bool {
			if name.String() == keyField || val.IsObject() || val.IsArray() || val.Type == gjson.Null {
				return true
			}
			attrs[name.String()] = val.String()
			return true
		})
		out = append(out, Entry{Key: key.String(), Attributes: attrs})
		return true
	})
	return out, nil
}

func copyAttrs(a Attributes) Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
