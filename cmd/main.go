package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"product-catalog-browser/internal/api"
	"product-catalog-browser/internal/catalog"
	"product-catalog-browser/internal/config"
	"product-catalog-browser/internal/query"
	"product-catalog-browser/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/text/language"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	defaultAppName = "ProductCatalogBrowser" // App name for logger
)

// closers collects the connections opened for the selected catalog source.
type closers struct {
	postgres *store.PostgresSource
	mongo    *mongo.Client
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found or failed to load, relying on system environment")
	}
	logger := log.New(os.Stdout, fmt.Sprintf("[%s] ", defaultAppName), log.LstdFlags|log.Lshortfile|log.Lmicroseconds)
	logger.Println("INFO: Starting service...")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("FATAL: Error loading configuration: %v", err)
	}
	logger.Printf("INFO: Configuration loaded for APP_ENV: %s, LogLevel: %s", cfg.AppEnv, cfg.LogLevel)

	// --- Catalog Snapshot ---
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	source, conns, err := openSource(loadCtx, cfg, logger)
	if err != nil {
		cancelLoad()
		logger.Fatalf("FATAL: Failed to open catalog source %q: %v", cfg.Catalog.Source, err)
	}
	snapshot, err := catalog.LoadSnapshot(loadCtx, source)
	cancelLoad()
	if err != nil {
		logger.Fatalf("FATAL: %v", err)
	}
	logger.Printf("INFO: Catalog snapshot loaded from %s source with %d products", cfg.Catalog.Source, snapshot.Len())

	locale, err := language.Parse(cfg.Catalog.Locale)
	if err != nil {
		logger.Printf("WARN: Unknown CATALOG_LOCALE %q, falling back to English collation: %v", cfg.Catalog.Locale, err)
		locale = language.English
	}
	engine := catalog.NewEngine(snapshot, catalog.Options{
		ListDelay:   cfg.Catalog.ListDelay,
		LookupDelay: cfg.Catalog.LookupDelay,
		Locale:      locale,
	})
	parser := query.NewParser(cfg.Catalog.MaxLimit)

	// --- Setup & Start HTTP Server ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, logger, cfg.HttpServer.TimeoutRequest)
	api.RegisterHealthCheck(httpRouter, defaultAppName, snapshot.Len)
	api.NewHTTPHandler(engine, parser).RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		logger.Printf("INFO: HTTP server listening on port %s", cfg.HttpServer.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("FATAL: HTTP server ListenAndServe error: %v", err)
		}
		logger.Println("INFO: HTTP server has stopped.")
	}()

	// --- Setup & Start gRPC Server ---
	var grpcServer *grpc.Server
	if cfg.GrpcServer.Enabled {
		grpcServer = setupGRPCServer(logger, api.NewGRPCHandler(engine, parser))
		grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
		if err != nil {
			logger.Fatalf("FATAL: Failed to listen for gRPC on port %s: %v", cfg.GrpcServer.Port, err)
		}

		go func() {
			logger.Printf("INFO: gRPC server listening on port %s", cfg.GrpcServer.Port)
			if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				logger.Fatalf("FATAL: gRPC server Serve error: %v", err)
			}
			logger.Println("INFO: gRPC server has stopped.")
		}()
	} else {
		logger.Println("INFO: gRPC server disabled by GRPC_SERVER_ENABLED=false")
	}

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(logger, httpServer, grpcServer, conns, shutdownComplete)

	<-shutdownComplete
	logger.Println("INFO: Service shutdown sequence finished.")
}

// openSource builds the CatalogSource named by CATALOG_SOURCE. Connections it
// opens are returned so shutdown can release them.
func openSource(ctx context.Context, cfg *config.Config, logger *log.Logger) (store.CatalogSource, closers, error) {
	switch cfg.Catalog.Source {
	case store.SourceFixture:
		if cfg.Catalog.FixturePath == "" {
			logger.Println("INFO: Using built-in product fixture")
		} else {
			logger.Printf("INFO: Using product fixture at %s", cfg.Catalog.FixturePath)
		}
		return store.NewFixtureSource(cfg.Catalog.FixturePath), closers{}, nil

	case store.SourcePostgres:
		db, err := sql.Open("postgres", cfg.Postgres.DSN())
		if err != nil {
			return nil, closers{}, fmt.Errorf("failed to initialize database connection: %w", err)
		}
		src := store.NewPostgresSource(db, cfg.Postgres.Schema, cfg.Postgres.Table)
		if err := src.Ping(ctx); err != nil {
			_ = src.Close()
			return nil, closers{}, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Println("INFO: Database connection established successfully.")
		return src, closers{postgres: src}, nil

	case store.SourceMongo:
		client, err := store.ConnectMongo(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, closers{}, err
		}
		logger.Printf("INFO: Connected to MongoDB database %s", cfg.Mongo.Database)
		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		return store.NewMongoSource(coll), closers{mongo: client}, nil

	default:
		return nil, closers{}, fmt.Errorf("%w: %s", store.ErrUnknownSource, cfg.Catalog.Source)
	}
}

func setupBaseMiddleware(router *chi.Mux, logger *log.Logger, requestTimeout time.Duration) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeout))
	logger.Println("INFO: Base HTTP middleware registered.")
}

func setupGRPCServer(logger *log.Logger, grpcAPIHandler *api.GRPCHandler) *grpc.Server {
	s := grpc.NewServer(grpc.UnaryInterceptor(api.RequestIDInterceptor(logger)))

	api.RegisterProductCatalogServer(s, grpcAPIHandler)
	logger.Println("INFO: ProductCatalog gRPC service registered.")

	grpc_health_v1.RegisterHealthServer(s, health.NewServer())
	logger.Println("INFO: gRPC health check service registered.")

	reflection.Register(s)
	logger.Println("INFO: gRPC reflection service registered.")

	return s
}

func waitForShutdown(
	logger *log.Logger,
	httpServer *http.Server,
	grpcServer *grpc.Server,
	conns closers,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-sigChan
	logger.Printf("INFO: Received signal: %s. Starting graceful shutdown...", receivedSignal)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	stoppedGrpc := make(chan struct{})
	if grpcServer != nil {
		logger.Println("INFO: Attempting to gracefully shut down gRPC server...")
		go func() {
			grpcServer.GracefulStop()
			close(stoppedGrpc)
		}()
	} else {
		close(stoppedGrpc)
	}

	logger.Println("INFO: Attempting to gracefully shut down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("WARN: HTTP server graceful shutdown failed: %v", err)
	} else {
		logger.Println("INFO: HTTP server gracefully shut down.")
	}

	select {
	case <-stoppedGrpc:
		logger.Println("INFO: gRPC server gracefully shut down.")
	case <-shutdownCtx.Done():
		logger.Printf("WARN: gRPC server graceful shutdown timed out: %v", shutdownCtx.Err())
		grpcServer.Stop()
		logger.Println("INFO: gRPC server forced stop.")
	}

	if conns.postgres != nil {
		if err := conns.postgres.Close(); err != nil {
			logger.Printf("WARN: Error closing database connection: %v", err)
		}
	}
	if conns.mongo != nil {
		if err := conns.mongo.Disconnect(shutdownCtx); err != nil {
			logger.Printf("WARN: Error disconnecting from MongoDB: %v", err)
		}
	}

	logger.Println("INFO: Graceful shutdown sequence completed.")
}
