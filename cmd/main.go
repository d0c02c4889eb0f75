package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"paygate/handler"
	"paygate/infra/config"
	"paygate/infra/logger"
	"paygate/infra/middle"
	"paygate/infra/opensearch"
	"paygate/provider"

	// Register the shipped gateway adapters
	_ "paygate/provider/alipay"
	_ "paygate/provider/stripe"
	_ "paygate/provider/wechat"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	logger.InitGlobalLogger()
	cfg := config.GetAppConfig()

	// Optional OpenSearch event sink
	var events provider.EventLogger
	if cfg.EnableLogging {
		osClient, err := opensearch.NewClient(cfg)
		if err != nil {
			logger.Warn("OpenSearch unavailable, continuing without event logging", logger.LogContext{
				Fields: map[string]any{"error": err.Error()},
			})
		} else {
			events = opensearch.NewLogger(osClient)
		}
	}

	// Gateway configuration store, SQLite-backed when possible
	storage, err := config.NewSQLiteStorage(cfg.SQLitePath)
	if err != nil {
		logger.Warn("SQLite unavailable, gateway configs are memory-only", logger.LogContext{
			Fields: map[string]any{"error": err.Error()},
		})
		storage = nil
	}
	store := config.NewGatewayStore(storage)

	// Bring up adapters for every persisted configuration
	service := provider.NewPaymentService(events)
	for _, name := range store.Providers() {
		providerCfg, err := store.GetConfig(name)
		if err != nil {
			continue
		}
		if err := service.AddProvider(name, providerCfg); err != nil {
			logger.Warn("Skipping provider with unusable configuration", logger.LogContext{
				Provider: name,
				Fields:   map[string]any{"error": err.Error()},
			})
		}
	}

	paymentHandler := handler.NewPaymentHandler(service, config.App().Validator)
	notifyHandler := handler.NewNotifyHandler(service, nil)
	configHandler := handler.NewConfigHandler(service, store)
	healthHandler := handler.NewHealthHandler(service)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler.Health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/pay/{provider}", paymentHandler.ProcessPayment)
		r.Post("/notify/{provider}", notifyHandler.HandleNotify)
		r.Get("/notify/{provider}", notifyHandler.HandleNotify)
		r.Get("/providers", configHandler.GetProviders)
		r.Route("/config/{provider}", func(r chi.Router) {
			r.Get("/form", configHandler.GetForm)
			r.Post("/", configHandler.SetConfig)
			r.Delete("/", configHandler.DeleteConfig)
		})
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("paygate listening", logger.LogContext{
			Fields: map[string]any{"port": cfg.Port},
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	if storage != nil {
		_ = storage.Close()
	}
}
