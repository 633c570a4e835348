// Package app contains the application setup for the catalog service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/akulikov/gocatalog/internal/config"
	"github.com/akulikov/gocatalog/internal/product"
	"github.com/akulikov/gocatalog/internal/sequence"
	"github.com/akulikov/gocatalog/internal/store"
	"github.com/akulikov/gocatalog/internal/transport/rest"
	"github.com/akulikov/gocatalog/pkg/server"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type Dependencies struct {
	Products     product.LifecycleService
	Query        product.Searcher
	Store        *store.Store
	Bootstrapper *sequence.Bootstrapper
	Logger       *slog.Logger
}

func SetupDependencies(es *elasticsearch.Client, rdb *redis.Client, logger *slog.Logger) *Dependencies {
	productStore := store.NewStore(es, product.Index, product.IDField, logger)
	productSeq := sequence.New(rdb, product.SequenceKey, logger)

	bootstrapper := sequence.NewBootstrapper([]sequence.Mapping{
		{
			Key:     product.SequenceKey,
			Field:   "product_id",
			Source:  productStore,
			Counter: productSeq,
		},
	}, logger)

	return &Dependencies{
		Products:     product.NewService(productStore, productSeq, logger),
		Query:        product.NewQueryService(productStore, logger),
		Store:        productStore,
		Bootstrapper: bootstrapper,
		Logger:       logger,
	}
}

// InitStorage prepares the backing stores before the service accepts traffic:
// it creates the products index when absent and reconciles the ID sequence
// against the documents already in the store. Any failure here must abort
// startup, a miscounted sequence risks silent product_id collisions.
func InitStorage(ctx context.Context, deps *Dependencies) error {
	if err := deps.Store.EnsureIndex(ctx, product.IndexMapping); err != nil {
		return fmt.Errorf("failed to ensure products index: %w", err)
	}
	if err := deps.Bootstrapper.Run(ctx); err != nil {
		return fmt.Errorf("failed to bootstrap sequences: %w", err)
	}
	return nil
}

// SetupHttpHandler initializes the HTTP router and routes for the catalog service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the catalog service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.Products, deps.Query, deps.Logger)
	productHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the catalog service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
