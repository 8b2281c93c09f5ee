package fields

import (
	"strconv"
	"strings"
)

type Kind int

const (
	KindString Kind = iota
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	default:
		return "unknown"
	}
}

// Value holds one cell. Valid=false means absent (null in JSON).
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Valid bool
}

func Text(s string) Value {
	return Value{Kind: KindString, Str: s, Valid: true}
}

func Number(n int64) Value {
	return Value{Kind: KindInt, Int: n, Valid: true}
}

func Absent(kind Kind) Value {
	return Value{Kind: kind}
}

// Any returns the JSON-ready form, nil when absent.
func (v Value) Any() any {
	if !v.Valid {
		return nil
	}
	if v.Kind == KindInt {
		return v.Int
	}
	return v.Str
}

func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	if v.Kind == KindInt {
		return strconv.FormatInt(v.Int, 10)
	}
	return v.Str
}

func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind || v.Valid != o.Valid {
		return false
	}
	if !v.Valid {
		return true
	}
	if v.Kind == KindInt {
		return v.Int == o.Int
	}
	return v.Str == o.Str
}

// ParseValue converts raw user input into a Value of the given kind.
// Blank input for an integer field is absent, not zero.
func ParseValue(kind Kind, raw string) (Value, error) {
	if kind == KindString {
		return Text(raw), nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Absent(KindInt), nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Value{}, err
	}
	return Number(n), nil
}

// Values is one row's cells keyed by field name.
type Values map[string]Value

func (v Values) Get(name string) Value {
	return v[name]
}

func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
