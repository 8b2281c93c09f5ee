package rowset

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/iota-uz/suggestion-admin/pkg/fields"
)

const (
	idMember        = "id"
	createdAtMember = "createdAt"
	updatedAtMember = "updatedAt"
)

// EncodeRow writes the schema columns of values as a JSON object in column
// order. Absent values are left out rather than sent as null.
func EncodeRow(schema *fields.Schema, values fields.Values) ([]byte, error) {
	raw := []byte("{}")
	for _, d := range schema.Fields {
		v := values.Get(d.Name)
		if !v.Valid {
			continue
		}
		var err error
		raw, err = sjson.SetBytes(raw, d.Name, v.Any())
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s", d.Name)
		}
	}
	return raw, nil
}

// EncodeRows builds the bulk payload: one object per row, in order.
func EncodeRows(schema *fields.Schema, rows []Row) ([]byte, error) {
	raw := []byte("[]")
	for _, r := range rows {
		obj, err := EncodeRow(schema, r.Values)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", r.LocalKey)
		}
		raw, err = sjson.SetRawBytes(raw, "-1", obj)
		if err != nil {
			return nil, errors.Wrapf(err, "append row %d", r.LocalKey)
		}
	}
	return raw, nil
}

// DecodeRows reads a server listing. Local keys are left zero; ReplaceAll
// assigns them.
func DecodeRows(schema *fields.Schema, raw []byte) ([]Row, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("rowset: invalid JSON listing")
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsArray() {
		return nil, errors.New("rowset: listing is not an array")
	}
	var out []Row
	doc.ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			out = append(out, decodeRow(schema, item))
		}
		return true
	})
	return out, nil
}

// DecodeRow reads a single object, as returned by an update. ok is false
// when raw is empty or not an object.
func DecodeRow(schema *fields.Schema, raw []byte) (Row, bool) {
	if len(strings.TrimSpace(string(raw))) == 0 || !gjson.ValidBytes(raw) {
		return Row{}, false
	}
	item := gjson.ParseBytes(raw)
	if !item.IsObject() {
		return Row{}, false
	}
	return decodeRow(schema, item), true
}

func decodeRow(schema *fields.Schema, item gjson.Result) Row {
	row := Row{
		Values:    make(fields.Values, len(schema.Fields)),
		RemoteID:  scalar(item.Get(idMember)),
		CreatedAt: scalar(item.Get(createdAtMember)),
		UpdatedAt: scalar(item.Get(updatedAtMember)),
	}
	for _, d := range schema.Fields {
		row.Values[d.Name] = decodeValue(d.Kind, item.Get(d.Name))
	}
	return row
}

func decodeValue(kind fields.Kind, r gjson.Result) fields.Value {
	if !r.Exists() || r.Type == gjson.Null {
		return fields.Absent(kind)
	}
	if kind == fields.KindString {
		return fields.Text(r.String())
	}
	switch r.Type {
	case gjson.Number:
		return fields.Number(r.Int())
	case gjson.String:
		n, err := strconv.ParseInt(strings.TrimSpace(r.Str), 10, 64)
		if err != nil {
			return fields.Absent(kind)
		}
		return fields.Number(n)
	default:
		return fields.Absent(kind)
	}
}

func scalar(r gjson.Result) string {
	if !r.Exists() || r.Type == gjson.Null {
		return ""
	}
	return r.String()
}
