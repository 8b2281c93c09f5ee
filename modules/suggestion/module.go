package suggestion

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/suggestion-admin/modules/suggestion/presentation/controllers"
	"github.com/iota-uz/suggestion-admin/modules/suggestion/presentation/mappers"
	"github.com/iota-uz/suggestion-admin/modules/suggestion/services"
	"github.com/iota-uz/suggestion-admin/pkg/application"
	"github.com/iota-uz/suggestion-admin/pkg/configuration"
	"github.com/iota-uz/suggestion-admin/pkg/gateway"
	"github.com/iota-uz/suggestion-admin/pkg/tablectl"
)

type ModuleOptions struct {
	Backend         configuration.BackendOptions
	RequestIDHeader string
	// HTTPClient overrides the backend transport; nil builds one from Backend.Timeout.
	HTTPClient *http.Client
}

func NewModule(opts *ModuleOptions) application.Module {
	return &Module{options: opts}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	log := logrus.NewEntry(app.Logger()).WithField("module", m.Name())
	backend := m.options.Backend

	client, err := gateway.NewClient(gateway.Options{
		BaseURL:         backend.URL,
		Authorization:   backend.Authorization,
		RequestIDHeader: m.options.RequestIDHeader,
		Timeout:         backend.Timeout,
		HTTPClient:      m.options.HTTPClient,
		Logger:          log,
	})
	if err != nil {
		return errors.Wrap(err, "backend client")
	}

	defs := Tables(backend.ReferencePath)
	tables := make([]*tablectl.Controller, 0, len(defs))
	for _, def := range defs {
		tables = append(tables, tablectl.New(tablectl.Options{
			Schema:           def.Schema,
			Remote:           gateway.NewTable(client, def.Endpoints),
			Logger:           log,
			Events:           app.EventPublisher(),
			DefaultReference: def.Defaults,
			AfterSubmit:      def.AfterSubmit,
		}))
	}
	app.RegisterServices(services.NewTableService(log, tables...))

	app.RegisterControllers(
		controllers.NewTableAPIController(app),
		controllers.NewTagController(app),
		controllers.NewHealthController(app),
		controllers.NewLiveController(app),
	)
	if prefix := strings.Trim(backend.ProxyPrefix, "/"); prefix != "" {
		target, err := url.Parse(backend.URL)
		if err != nil {
			return errors.Wrap(err, "proxy target")
		}
		app.RegisterControllers(controllers.NewProxyController(controllers.ProxyOptions{
			Prefix:        prefix,
			Target:        target,
			Authorization: backend.Authorization,
		}))
	}

	if hub := app.Websocket(); hub != nil {
		app.EventPublisher().Subscribe(func(e *tablectl.SyncEvent) {
			payload, err := json.Marshal(mappers.SyncEventToViewModel(e))
			if err != nil {
				log.WithError(err).Warn("sync event not broadcast")
				return
			}
			hub.Broadcast(e.Table, payload)
		})
	}
	return nil
}

func (m *Module) Name() string {
	return "suggestion"
}
