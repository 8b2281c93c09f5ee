package fields

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

var validate = validator.New()

// Record is anything the validator can read a row from.
type Record interface {
	RowKey() int
	FieldValues() Values
}

type Violation struct {
	RowKey  int    `json:"row_key"`
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func (v Violation) Error() string {
	return fmt.Sprintf("row %d: %s", v.RowKey, v.Message)
}

// Result lists violations in row order, then column order.
type Result struct {
	Violations []Violation `json:"violations"`
}

func (r Result) OK() bool {
	return len(r.Violations) == 0
}

func (r Result) ByRow() map[int][]Violation {
	out := make(map[int][]Violation)
	for _, v := range r.Violations {
		out[v.RowKey] = append(out[v.RowKey], v)
	}
	return out
}

// Err folds every violation into one error, nil when the result is OK.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	var merr *multierror.Error
	for _, v := range r.Violations {
		merr = multierror.Append(merr, v)
	}
	return merr
}

// Validate checks every record and returns all violations together.
func Validate[R Record](s *Schema, mode Mode, records []R) Result {
	var res Result
	for _, rec := range records {
		res.Violations = append(res.Violations, s.ValidateRow(rec.RowKey(), rec.FieldValues(), mode)...)
	}
	return res
}

func (s *Schema) ValidateRow(key int, values Values, mode Mode) []Violation {
	var out []Violation
	for _, d := range s.Fields {
		rule := d.rule(mode)
		tag, ok := check(d, rule, values.Get(d.Name))
		if ok {
			continue
		}
		out = append(out, Violation{
			RowKey:  key,
			Field:   d.Name,
			Tag:     tag,
			Message: message(d, rule, tag),
		})
	}
	return out
}

func check(d Descriptor, rule Rule, v Value) (string, bool) {
	switch rule {
	case RuleNone:
		return "", true
	case RuleRequired:
		if !v.Valid {
			return "required", false
		}
		return firstTag(validate.Var(v.Str, "required"))
	case RuleOneOf:
		if !v.Valid {
			return "required", false
		}
		return firstTag(validate.Var(v.Str, "required,oneof="+strings.Join(d.Options, " ")))
	case RulePositive:
		if !v.Valid {
			return "required", false
		}
		return firstTag(validate.Var(v.Int, "gte=1"))
	case RuleNonNegative:
		if !v.Valid {
			return "required", false
		}
		return firstTag(validate.Var(v.Int, "gte=0"))
	case RuleOptionalNonNegative:
		if !v.Valid {
			return "", true
		}
		return firstTag(validate.Var(v.Int, "gte=0"))
	default:
		return "rule", false
	}
}

func firstTag(err error) (string, bool) {
	if err == nil {
		return "", true
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return errs[0].Tag(), false
	}
	return "invalid", false
}

func message(d Descriptor, rule Rule, tag string) string {
	label := d.Label
	if label == "" {
		label = d.Name
	}
	switch tag {
	case "required":
		return label + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", label, strings.Join(d.Options, ", "))
	case "gte":
		if rule == RulePositive {
			return label + " must be at least 1"
		}
		return label + " must be at least 0"
	default:
		return label + " is invalid"
	}
}
