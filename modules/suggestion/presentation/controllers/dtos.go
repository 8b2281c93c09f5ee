package controllers

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/form"
	"github.com/go-playground/validator/v10"
)

var (
	formDecoder = form.NewDecoder()
	validate    = validator.New()
)

// SetFieldsDTO carries raw cell input keyed by column name. As a form it
// is sent as fields[orgName]=...&fields[displayOrder]=...
type SetFieldsDTO struct {
	Fields map[string]string `json:"fields" form:"fields" validate:"required,min=1,dive,keys,required,endkeys"`
}

type SelectDTO struct {
	Key string `json:"key" form:"key" validate:"required"`
}

func (d *SelectDTO) Normalize() {
	d.Key = strings.TrimSpace(d.Key)
}

const maxFormMemory = 1 << 20

// decodeBody reads a JSON, url-encoded or multipart body into dst and
// validates it.
func decodeBody(r *http.Request, dst any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		parse := r.ParseForm
		if mediaType == "multipart/form-data" {
			parse = func() error { return r.ParseMultipartForm(maxFormMemory) }
		}
		if err := parse(); err != nil {
			return errors.Wrap(err, "parse form")
		}
		if err := formDecoder.Decode(dst, r.PostForm); err != nil {
			return errors.Wrap(err, "decode form")
		}
	default:
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return errors.Wrap(err, "decode json")
		}
	}
	if n, ok := dst.(interface{ Normalize() }); ok {
		n.Normalize()
	}
	return validate.Struct(dst)
}
