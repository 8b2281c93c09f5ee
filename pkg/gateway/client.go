// Package gateway talks to the record backend over HTTP.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// RemoteError is a non-2xx answer from the backend.
type RemoteError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend status=%d code=%s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend status=%d: %s", e.Status, e.Message)
}

type Options struct {
	BaseURL         string
	Authorization   string
	RequestIDHeader string
	// Timeout of zero leaves requests unbounded.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logrus.Entry
}

type Client struct {
	baseURL         *url.URL
	authorization   string
	requestIDHeader string
	httpClient      *http.Client
	log             *logrus.Entry
}

func NewClient(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("gateway: invalid base url %q", raw)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = newHTTPClient(opts.Timeout)
	}
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Client{
		baseURL:         u,
		authorization:   strings.TrimSpace(opts.Authorization),
		requestIDHeader: opts.RequestIDHeader,
		httpClient:      hc,
		log:             log.WithField("component", "gateway"),
	}, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// do sends body as JSON and returns the raw response body of a 2xx answer.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	if c.requestIDHeader != "" {
		req.Header.Set(c.requestIDHeader, requestID)
	}
	if c.authorization != "" {
		req.Header.Set("Authorization", c.authorization)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	log := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       u.Path,
		"request-id": requestID,
	})
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("backend request failed")
		return nil, errors.Wrapf(err, "%s %s", method, u.Path)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	log = log.WithFields(logrus.Fields{
		"status-code": resp.StatusCode,
		"duration":    time.Since(start),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("backend rejected request")
		remote := &RemoteError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, remote); err != nil || strings.TrimSpace(remote.Message) == "" {
			remote.Message = strings.TrimSpace(string(respBody))
		}
		if remote.Message == "" {
			remote.Message = http.StatusText(resp.StatusCode)
		}
		return nil, remote
	}
	log.Debug("backend request completed")
	return respBody, nil
}
