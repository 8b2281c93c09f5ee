package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method    string
	path      string
	query     string
	body      string
	requestID string
}

func newTestTable(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Table, *[]recorded) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recorded{
			method:    r.Method,
			path:      r.URL.Path,
			query:     r.URL.RawQuery,
			body:      string(body),
			requestID: r.Header.Get("X-Request-ID"),
		})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Options{BaseURL: srv.URL, RequestIDHeader: "X-Request-ID", Timeout: 5 * time.Second})
	require.NoError(t, err)
	table := NewTable(client, Endpoints{
		Collection:  "/api/records",
		Reference:   "/api/records/reference",
		FilterParam: "serviceType",
	})
	table.retryBase = time.Millisecond
	return table, &calls
}

func TestNewClient_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Options{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestTable_ListWithFilter(t *testing.T) {
	t.Parallel()

	table, calls := newTestTable(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1}]`))
	})

	raw, err := table.List(context.Background(), "CARD")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(raw))

	_, err = table.List(context.Background(), "  ")
	require.NoError(t, err)

	require.Len(t, *calls, 2)
	assert.Equal(t, "serviceType=CARD", (*calls)[0].query)
	assert.Empty(t, (*calls)[1].query)
	assert.NotEmpty(t, (*calls)[0].requestID)
}

func TestTable_Writes(t *testing.T) {
	t.Parallel()

	table, calls := newTestTable(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			_, _ = w.Write([]byte(`{"id":9,"title":"saved"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	require.NoError(t, table.Create(ctx, []byte(`[{"title":"a"}]`)))
	resp, err := table.Update(ctx, "9", []byte(`{"title":"saved"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":9,"title":"saved"}`, string(resp))
	require.NoError(t, table.Delete(ctx, "9"))

	require.Len(t, *calls, 3)
	assert.Equal(t, recorded{method: http.MethodPost, path: "/api/records", body: `[{"title":"a"}]`}, strip((*calls)[0]))
	assert.Equal(t, recorded{method: http.MethodPut, path: "/api/records/9", body: `{"title":"saved"}`}, strip((*calls)[1]))
	assert.Equal(t, recorded{method: http.MethodDelete, path: "/api/records/9"}, strip((*calls)[2]))
}

func TestTable_RowIDRequired(t *testing.T) {
	t.Parallel()

	table, calls := newTestTable(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.Error(t, table.Delete(context.Background(), " "))
	_, err := table.Update(context.Background(), "", nil)
	assert.Error(t, err)
	assert.Empty(t, *calls)
}

func TestTable_RemoteError(t *testing.T) {
	t.Parallel()

	table, _ := newTestTable(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"DUPLICATE","message":"org code taken"}`))
	})

	err := table.Create(context.Background(), []byte(`[]`))
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusConflict, remote.Status)
	assert.Equal(t, "DUPLICATE", remote.Code)
	assert.Equal(t, "org code taken", remote.Message)
}

func TestTable_RemoteErrorPlainBody(t *testing.T) {
	t.Parallel()

	table, _ := newTestTable(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := table.Delete(context.Background(), "1")
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "boom", remote.Message)
}

func TestTable_ReferenceRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var hits int32
	table, _ := newTestTable(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"orgName":"A"}]`))
	})

	raw, err := table.Reference(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"orgName":"A"}]`, string(raw))
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestTable_ReferenceStopsOnClientError(t *testing.T) {
	t.Parallel()

	var hits int32
	table, _ := newTestTable(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := table.Reference(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestTable_NoReferenceEndpoint(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Options{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	raw, err := NewTable(client, Endpoints{Collection: "/api/records"}).Reference(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{attempts: 0, want: 0},
		{attempts: 1, want: 100 * time.Millisecond},
		{attempts: 2, want: 200 * time.Millisecond},
		{attempts: 3, want: 400 * time.Millisecond},
		{attempts: 10, want: time.Second},
	}
	for _, tc := range cases {
		if got := backoff(tc.attempts, 100*time.Millisecond, time.Second); got != tc.want {
			t.Fatalf("attempts=%d: want %s got %s", tc.attempts, tc.want, got)
		}
	}
}

func strip(r recorded) recorded {
	r.requestID = ""
	r.query = ""
	return r
}
