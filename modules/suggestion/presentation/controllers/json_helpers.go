package controllers

import (
	"errors"
	"net/http"

	"github.com/iota-uz/suggestion-admin/modules/suggestion/presentation/mappers"
	"github.com/iota-uz/suggestion-admin/modules/suggestion/services"
	"github.com/iota-uz/suggestion-admin/pkg/composables"
	"github.com/iota-uz/suggestion-admin/pkg/editstate"
	"github.com/iota-uz/suggestion-admin/pkg/fields"
	"github.com/iota-uz/suggestion-admin/pkg/gateway"
	"github.com/iota-uz/suggestion-admin/pkg/httpapi"
	"github.com/iota-uz/suggestion-admin/pkg/rowset"
	"github.com/iota-uz/suggestion-admin/pkg/serrors"
	"github.com/iota-uz/suggestion-admin/pkg/tablectl"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if err := httpapi.WriteJSON(w, status, payload); err != nil {
		panic(err)
	}
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code string, message string, opts ...httpapi.ErrorOption) {
	if id, ok := composables.UseRequestID(r.Context()); ok {
		opts = append(opts, httpapi.WithRequestID(id))
	}
	if err := httpapi.WriteError(w, status, code, message, opts...); err != nil {
		panic(err)
	}
}

// writeTableError maps controller errors onto HTTP statuses.
func writeTableError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *tablectl.ValidationError
	if errors.As(err, &verr) {
		writeAPIError(w, r, http.StatusUnprocessableEntity, tablectl.ErrValidation.Code, verr.Error(),
			httpapi.WithDetails(mappers.ViolationsToViewModels(verr.Result)))
		return
	}

	var remote *gateway.RemoteError
	switch {
	case errors.Is(err, tablectl.ErrRemote):
		message := err.Error()
		if errors.As(err, &remote) {
			message = remote.Message
		}
		writeAPIError(w, r, http.StatusBadGateway, tablectl.ErrRemote.Code, message)
		return
	case errors.Is(err, rowset.ErrRowNotFound), errors.Is(err, services.ErrUnknownTable):
		writeCoded(w, r, http.StatusNotFound, err)
		return
	case errors.Is(err, fields.ErrDerivedField),
		errors.Is(err, fields.ErrUnknownField),
		errors.Is(err, fields.ErrKindMismatch),
		errors.Is(err, fields.ErrInvalidValue):
		writeCoded(w, r, http.StatusBadRequest, err)
		return
	case errors.Is(err, tablectl.ErrBusy),
		errors.Is(err, tablectl.ErrReadOnly),
		errors.Is(err, tablectl.ErrNoPending),
		errors.Is(err, editstate.ErrAlreadyEditing),
		errors.Is(err, editstate.ErrNotPersisted),
		errors.Is(err, editstate.ErrNotEditing):
		writeCoded(w, r, http.StatusConflict, err)
		return
	}

	composables.UseLogger(r.Context()).WithError(err).Error("table request failed")
	writeAPIError(w, r, http.StatusInternalServerError, httpapi.CodeInternal, "internal error")
}

func writeCoded(w http.ResponseWriter, r *http.Request, status int, err error) {
	var base *serrors.BaseError
	code := "ERROR"
	if errors.As(err, &base) {
		code = base.Code
	}
	writeAPIError(w, r, status, code, err.Error())
}
