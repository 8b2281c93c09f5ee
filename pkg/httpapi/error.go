// Package httpapi writes the JSON envelopes shared by every API handler.
package httpapi

import (
	"encoding/json"
	"net/http"
)

const (
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
)

// ErrorEnvelope is the body of every non-2xx admin API response.
type ErrorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
	// Details carries structured failure data such as per-row violations.
	Details any `json:"details,omitempty"`
}

type ErrorOption func(*ErrorEnvelope)

// WithMeta adds key to the envelope meta. Empty values are skipped.
func WithMeta(key, value string) ErrorOption {
	return func(e *ErrorEnvelope) {
		if value == "" {
			return
		}
		if e.Meta == nil {
			e.Meta = make(map[string]string, 1)
		}
		e.Meta[key] = value
	}
}

func WithRequestID(id string) ErrorOption {
	return WithMeta("request_id", id)
}

func WithDetails(details any) ErrorOption {
	return func(e *ErrorEnvelope) {
		e.Details = details
	}
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, opts ...ErrorOption) error {
	env := &ErrorEnvelope{Code: code, Message: message}
	for _, opt := range opts {
		opt(env)
	}
	return WriteJSON(w, status, env)
}

func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = WriteError(w, http.StatusNotFound, CodeNotFound, "route not found", WithMeta("path", r.URL.Path))
	})
}

func MethodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = WriteError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", WithMeta("method", r.Method))
	})
}
