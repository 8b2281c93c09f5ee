package serrors

import (
	"fmt"
	"sort"
	"strings"
)

// BaseError is a coded error that can be rendered into an API envelope.
type BaseError struct {
	Code         string
	Message      string
	LocaleKey    string
	TemplateData map[string]string
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	if len(e.TemplateData) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.TemplateData))
	for k, v := range e.TemplateData {
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, ", "))
}

// Is matches any *BaseError carrying the same code, so sentinel values
// survive WithTemplateData copies.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	cp := *e
	cp.TemplateData = make(map[string]string, len(data))
	for k, v := range data {
		cp.TemplateData[k] = v
	}
	return &cp
}

// ValidationErrors maps a field name to its failure.
type ValidationErrors map[string]*BaseError

func NewFieldRequiredError(field, localeKey string) *BaseError {
	return NewError("FIELD_REQUIRED", field+" is required", localeKey).
		WithTemplateData(map[string]string{"field": field})
}

// Messages flattens the map for JSON responses.
func (v ValidationErrors) Messages() map[string]string {
	out := make(map[string]string, len(v))
	for field, err := range v {
		out[field] = err.Message
	}
	return out
}
