package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/iota-uz/suggestion-admin/internal/server"
	"github.com/iota-uz/suggestion-admin/modules"
	"github.com/iota-uz/suggestion-admin/modules/suggestion/services"
	"github.com/iota-uz/suggestion-admin/pkg/application"
	"github.com/iota-uz/suggestion-admin/pkg/configuration"
	"github.com/iota-uz/suggestion-admin/pkg/eventbus"
	"github.com/iota-uz/suggestion-admin/pkg/metrics"
)

const warmupTimeout = 15 * time.Second

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := application.New(&application.ApplicationOptions{
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
		Huber: application.NewHub(&application.HuberOptions{
			Logger: logger,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		}),
	})
	if err := modules.Load(app, modules.BuiltInModules(conf)...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	if conf.Prometheus.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder, err := metrics.NewSyncRecorder(registry)
		if err != nil {
			log.Fatalf("failed to register metrics: %v", err)
		}
		recorder.Subscribe(app.EventPublisher())
		app.RegisterControllers(metrics.NewPrometheusController(metrics.PrometheusOptions{
			Path:     conf.Prometheus.Path,
			Gatherer: registry,
			Logger:   logger,
		}))
	}

	// Tables that fail to warm up start on their defaults and can be
	// reloaded from the UI.
	warmupCtx, cancel := context.WithTimeout(ctx, warmupTimeout)
	tables := app.Service(services.TableService{}).(*services.TableService)
	if err := tables.Warmup(warmupCtx); err != nil {
		logger.WithError(err).Warn("starting with incomplete tables")
	}
	cancel()

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Entrypoint:    "server",
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := serverInstance.Start(ctx, conf.SocketAddress); err != nil && err != http.ErrServerClosed {
		log.Fatalf("failed to start server: %v", err)
	}
}
