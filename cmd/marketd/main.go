// @title craftmart marketplace API
// @version 1.0
// @description Catalog, orders and custom orders of the handmade goods marketplace.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"craftmart/internal/config"
	"craftmart/internal/events"
	httpapi "craftmart/internal/http"
	"craftmart/internal/logging"
	"craftmart/internal/repository"
	"craftmart/internal/seed"
	"craftmart/internal/service"
	"craftmart/internal/telemetry"

	_ "craftmart/docs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	shutdownTracing, err := telemetry.Setup("craftmart-marketd", cfg.TraceStdout)
	if err != nil {
		logger.Fatal("Failed to set up tracing", zap.Error(err))
	}

	repos, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open store", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer closeStore()

	var pub events.Publisher = events.Nop{}
	if cfg.KafkaEnabled() {
		pub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	}
	defer pub.Close()

	authSvc := service.NewAuthService(repos.Users, cfg.JWTSecret, cfg.JWTTTL)
	productsSvc := service.NewProductService(repos.Products, repos.Categories, repos.Users)
	ordersSvc := service.NewOrderService(repos.Products, repos.Users, repos.Orders, repos.Tx, pub, logger)
	customSvc := service.NewCustomOrderService(repos.Users, repos.CustomOrders, repos.Tx, pub, logger)

	if cfg.SeedFile != "" || cfg.DBDriver == "memory" {
		f, err := seed.Load(cfg.SeedFile)
		if err != nil {
			logger.Fatal("Failed to read seed", zap.Error(err))
		}
		if _, err := seed.Apply(context.Background(), f, authSvc, productsSvc, logger); err != nil {
			logger.Fatal("Failed to apply seed", zap.Error(err))
		}
	}

	srv := httpapi.NewServer(httpapi.Services{
		Auth:         authSvc,
		Products:     productsSvc,
		Orders:       ordersSvc,
		CustomOrders: customSvc,
	}, httpapi.Options{Logger: logger, CORSOrigins: cfg.CORSOrigins})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(srv.Engine(), "marketd"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening",
			zap.String("addr", httpServer.Addr),
			zap.String("store", cfg.DBDriver),
			zap.Bool("kafka", cfg.KafkaEnabled()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("Tracer shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func openStore(cfg *config.Config) (repository.Repos, func(), error) {
	if cfg.DBDriver == "sqlite" {
		store, err := repository.OpenSQLite(cfg.DBSource)
		if err != nil {
			return repository.Repos{}, nil, err
		}
		return store.Repos(), func() { _ = store.Close() }, nil
	}
	return repository.NewMemory(), func() {}, nil
}
