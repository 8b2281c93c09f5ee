package server

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/iota-uz/suggestion-admin/pkg/application"
	"github.com/iota-uz/suggestion-admin/pkg/configuration"
	"github.com/iota-uz/suggestion-admin/pkg/httpapi"
	"github.com/iota-uz/suggestion-admin/pkg/middleware"
	"github.com/iota-uz/suggestion-admin/pkg/routing"
	"github.com/iota-uz/suggestion-admin/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Entrypoint    string
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	classifier, err := Classifier(conf, options.Entrypoint)
	if err != nil {
		return nil, err
	}

	loggerOpts := middleware.DefaultLoggerOptions()
	loggerOpts.RequestIDHeader = conf.RequestIDHeader
	loggerOpts.JSONPrefixes = classifier.Prefixes(routing.RouteClassAdminAPI, routing.RouteClassProxy)
	loggerOpts.Classify = func(path string) string {
		return string(classifier.ClassifyPath(path))
	}

	middlewares := []mux.MiddlewareFunc{
		// creates the root span for each request
		middleware.WithLogger(options.Logger, loggerOpts),
		middleware.Cors(conf.CORSOrigins...),
	}
	if conf.RateLimit.Enabled {
		middlewares = append(middlewares, middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerPeriod: conf.RateLimit.GlobalRPS,
			Store:             rateLimitStore(options.Logger, conf.RateLimit),
			Skip: func(r *http.Request) bool {
				switch classifier.ClassifyPath(r.URL.Path) {
				case routing.RouteClassOps, routing.RouteClassWebsocket:
					return true
				}
				return false
			},
		}))
	}
	app.RegisterMiddleware(middlewares...)

	return server.NewHTTPServer(
		app,
		httpapi.NotFound(),
		httpapi.MethodNotAllowed(),
	), nil
}

func rateLimitStore(logger *logrus.Logger, opts configuration.RateLimitOptions) limiter.Store {
	if opts.Storage != "redis" {
		return middleware.NewMemoryStore()
	}
	store, err := middleware.NewRedisStore(opts.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
		return middleware.NewMemoryStore()
	}
	return store
}

// Classifier loads the route allowlist of entrypoint and adds the prefixes
// that come from configuration.
func Classifier(conf *configuration.Configuration, entrypoint string) (*routing.Classifier, error) {
	rules, err := routing.LoadAllowlist("", entrypoint)
	if err != nil {
		return nil, errors.Wrap(err, "routing allowlist")
	}
	if conf.Backend.ProxyPrefix != "" {
		rules = append(rules, routing.AllowlistRule{Prefix: conf.Backend.ProxyPrefix, Class: routing.RouteClassProxy})
	}
	if conf.Prometheus.Path != "" {
		rules = append(rules, routing.AllowlistRule{Prefix: conf.Prometheus.Path, Class: routing.RouteClassOps})
	}
	return routing.NewClassifier(rules), nil
}
