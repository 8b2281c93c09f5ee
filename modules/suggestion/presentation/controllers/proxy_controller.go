package controllers

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/suggestion-admin/pkg/application"
	"github.com/iota-uz/suggestion-admin/pkg/composables"
)

type ProxyOptions struct {
	// Prefix is the local path forwarded unchanged to Target.
	Prefix        string
	Target        *url.URL
	Authorization string
}

// ProxyController forwards browser calls under Prefix to the backend so the
// admin UI and the API share one origin.
type ProxyController struct {
	prefix string
	proxy  *httputil.ReverseProxy
}

func NewProxyController(opts ProxyOptions) application.Controller {
	target := opts.Target
	auth := opts.Authorization
	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			if auth != "" && pr.Out.Header.Get("Authorization") == "" {
				pr.Out.Header.Set("Authorization", auth)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			composables.UseLogger(r.Context()).WithError(err).WithField("path", r.URL.Path).Warn("proxy request failed")
			writeAPIError(w, r, http.StatusBadGateway, "BACKEND_UNAVAILABLE", "backend is unavailable")
		},
	}
	return &ProxyController{
		prefix: "/" + strings.Trim(opts.Prefix, "/"),
		proxy:  proxy,
	}
}

func (c *ProxyController) Key() string {
	return c.prefix
}

func (c *ProxyController) Register(r *mux.Router) {
	r.PathPrefix(c.prefix + "/").Handler(c.proxy)
}
