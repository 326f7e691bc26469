package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"codeassist/internal/codeassist"
	"codeassist/internal/gateway/config"
	"codeassist/internal/gateway/handler"
	"codeassist/internal/gateway/middleware"
	"codeassist/internal/gateway/server"
	"codeassist/internal/llm"
	"codeassist/internal/observability"
)

type App struct {
	server *server.Server
	stores *gatewayStores
	client llm.Client
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	// Provider availability is decided once here and never re-checked.
	client, avail, err := llm.New(context.Background(), cfg.LLM, log.Default(), metrics)
	if err != nil {
		log.Printf("llm: %v; continuing without a provider", err)
	}
	if avail.Configured() {
		log.Printf("llm: provider=%s", avail.Provider())
	} else {
		log.Printf("llm: unavailable (%s); serving heuristic and fallback results", avail.Reason())
	}

	stores, err := initStores(cfg)
	if err != nil {
		if client != nil {
			_ = client.Close()
		}
		return nil, err
	}

	svc := codeassist.NewService(codeassist.NewGateway(client, avail, log.Default()), metrics)
	code := handler.NewCodeHandler(svc, stores.analyses, stores.usage, stores.docs)
	router := server.NewRouter(code, server.RouterConfig{
		ClientURL:     cfg.ClientURL,
		FreeTierLimit: cfg.FreeTierLimit,
		BodyLimit:     middleware.DefaultBodyLimit,
		Gatherer:      registry,
		Usage:         stores.usage,
	})

	return &App{
		server: server.New(cfg.Port, router),
		stores: stores,
		client: client,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if a.client != nil {
		err = errors.Join(err, a.client.Close())
	}
	return errors.Join(err, a.stores.Close())
}
