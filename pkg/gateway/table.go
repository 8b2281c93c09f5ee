package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Endpoints addresses one collection on the backend.
type Endpoints struct {
	// Collection is the list/bulk path, e.g. /api/v1/suggestion_org.
	// Row paths are Collection + "/" + id.
	Collection string
	// Reference is the lookup list path; empty when the table has none.
	Reference string
	// FilterParam is the query parameter carrying the categorical filter.
	FilterParam string
}

// Table is the backend of a single collection.
type Table struct {
	client    *Client
	endpoints Endpoints
	retryBase time.Duration
}

func NewTable(client *Client, endpoints Endpoints) *Table {
	return &Table{client: client, endpoints: endpoints, retryBase: 250 * time.Millisecond}
}

func (t *Table) Endpoints() Endpoints {
	return t.endpoints
}

// List fetches the collection, narrowed by filter when it is not empty.
func (t *Table) List(ctx context.Context, filter string) ([]byte, error) {
	var q url.Values
	if f := strings.TrimSpace(filter); f != "" && t.endpoints.FilterParam != "" {
		q = url.Values{t.endpoints.FilterParam: []string{f}}
	}
	return t.client.do(ctx, http.MethodGet, t.endpoints.Collection, q, nil)
}

// Create posts the whole collection in one request.
func (t *Table) Create(ctx context.Context, payload []byte) error {
	_, err := t.client.do(ctx, http.MethodPost, t.endpoints.Collection, nil, payload)
	return err
}

// Update puts one row and returns whatever the backend answered with.
func (t *Table) Update(ctx context.Context, id string, payload []byte) ([]byte, error) {
	path, err := t.rowPath(id)
	if err != nil {
		return nil, err
	}
	return t.client.do(ctx, http.MethodPut, path, nil, payload)
}

func (t *Table) Delete(ctx context.Context, id string) error {
	path, err := t.rowPath(id)
	if err != nil {
		return err
	}
	_, err = t.client.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// Reference fetches the lookup list, retrying transient failures.
func (t *Table) Reference(ctx context.Context) ([]byte, error) {
	if t.endpoints.Reference == "" {
		return []byte("[]"), nil
	}
	return retryRead(ctx, referenceAttempts, t.retryBase, func() ([]byte, error) {
		return t.client.do(ctx, http.MethodGet, t.endpoints.Reference, nil, nil)
	})
}

func (t *Table) rowPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("gateway: row id is required")
	}
	return strings.TrimRight(t.endpoints.Collection, "/") + "/" + id, nil
}
