package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/suggestion-admin/pkg/application"
)

const DefaultPath = "/debug/prometheus"

type PrometheusOptions struct {
	Path string
	// Gatherer defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// Logger receives collection errors; scraping continues past them.
	Logger logrus.FieldLogger
}

type PrometheusController struct {
	path    string
	handler http.Handler
}

func NewPrometheusController(opts PrometheusOptions) application.Controller {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	handlerOpts := promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError}
	if opts.Logger != nil {
		handlerOpts.ErrorLog = opts.Logger.WithField("component", "prometheus")
	}
	return &PrometheusController{
		path:    opts.Path,
		handler: promhttp.HandlerFor(opts.Gatherer, handlerOpts),
	}
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	r.Handle(c.path, c.handler).Methods(http.MethodGet, http.MethodHead)
}
