package modules

import (
	"github.com/iota-uz/suggestion-admin/modules/suggestion"
	"github.com/iota-uz/suggestion-admin/pkg/application"
	"github.com/iota-uz/suggestion-admin/pkg/configuration"
)

func BuiltInModules(conf *configuration.Configuration) []application.Module {
	return []application.Module{
		suggestion.NewModule(&suggestion.ModuleOptions{
			Backend:         conf.Backend,
			RequestIDHeader: conf.RequestIDHeader,
		}),
	}
}

func Load(app application.Application, externalModules ...application.Module) error {
	return app.RegisterModules(externalModules...)
}
