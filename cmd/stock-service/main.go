package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	catalogevents "github.com/vaxstock/vaxstock-backend/internal/catalog/events"
	cataloghandler "github.com/vaxstock/vaxstock-backend/internal/catalog/handler"
	catalogrepo "github.com/vaxstock/vaxstock-backend/internal/catalog/repository"
	historyconsumers "github.com/vaxstock/vaxstock-backend/internal/history/consumers"
	historyhandler "github.com/vaxstock/vaxstock-backend/internal/history/handler"
	historyrepo "github.com/vaxstock/vaxstock-backend/internal/history/repository"
	inventoryevents "github.com/vaxstock/vaxstock-backend/internal/inventory/events"
	inventoryhandler "github.com/vaxstock/vaxstock-backend/internal/inventory/handler"
	inventoryrepo "github.com/vaxstock/vaxstock-backend/internal/inventory/repository"
	ordersevents "github.com/vaxstock/vaxstock-backend/internal/orders/events"
	ordershandler "github.com/vaxstock/vaxstock-backend/internal/orders/handler"
	ordersrepo "github.com/vaxstock/vaxstock-backend/internal/orders/repository"
	reconcilehandler "github.com/vaxstock/vaxstock-backend/internal/reconcile/handler"
	reconcilesvc "github.com/vaxstock/vaxstock-backend/internal/reconcile/service"
	reportshandler "github.com/vaxstock/vaxstock-backend/internal/reports/handler"
	reportssvc "github.com/vaxstock/vaxstock-backend/internal/reports/service"
	"github.com/vaxstock/vaxstock-backend/pkg/config"
	"github.com/vaxstock/vaxstock-backend/pkg/database"
	"github.com/vaxstock/vaxstock-backend/pkg/httputil"
	"github.com/vaxstock/vaxstock-backend/pkg/logger"
	"github.com/vaxstock/vaxstock-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("stock-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("stock-service", cfg.Server.Environment)
	log.Info().Msg("starting Stock Service")

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// The broker is optional: publishers are nil-safe, so the service
	// keeps serving without the audit trail when RabbitMQ is down.
	var rmq *messaging.RabbitMQ
	var catalogPublisher *catalogevents.CatalogEventPublisher
	var orderPublisher *ordersevents.OrderEventPublisher
	var inventoryPublisher *inventoryevents.InventoryEventPublisher

	rmq, err = messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ unavailable, events disabled")
		rmq = nil
	}

	if rmq != nil {
		defer rmq.Close()

		catalogPublisher, err = catalogevents.NewCatalogEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create catalog event publisher")
		}
		orderPublisher, err = ordersevents.NewOrderEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create order event publisher")
		}
		inventoryPublisher, err = inventoryevents.NewInventoryEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create inventory event publisher")
		}
	}

	// Repositories
	itemRepo := catalogrepo.NewItemRepository(db)
	orderRepo := ordersrepo.NewOrderRepository(db)
	entryRepo := inventoryrepo.NewEntryRepository(db)
	historyRepo := historyrepo.NewHistoryRepository(db)

	// Services
	reconcileService := reconcilesvc.NewReconcileService(itemRepo, orderRepo, entryRepo, log)
	reportService := reportssvc.NewReportService(reconcileService, itemRepo, entryRepo, log)

	// Handlers
	itemHandler := cataloghandler.NewItemHandler(itemRepo, catalogPublisher, log)
	orderHandler := ordershandler.NewOrderHandler(orderRepo, orderPublisher, log)
	entryHandler := inventoryhandler.NewEntryHandler(entryRepo, inventoryPublisher, log)
	reconcileHandler := reconcilehandler.NewReconcileHandler(reconcileService, log)
	reportHandler := reportshandler.NewReportHandler(reportService, log)
	historyHandler := historyhandler.NewHistoryHandler(historyRepo, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if rmq != nil {
		historyConsumer, err := historyconsumers.NewEventConsumer(rmq, historyRepo, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create history consumer")
		}
		if err := historyConsumer.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start history consumer")
		}
	}

	// Router
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Account-ID", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httputil.AccountMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":   "healthy",
			"service":  "stock-service",
			"database": db.Health(r.Context()),
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Catalog
		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemHandler.List)
			r.Post("/", itemHandler.Create)
			r.Put("/reorder", itemHandler.Reorder)
			r.Get("/{id}", itemHandler.Get)
			r.Put("/{id}", itemHandler.Update)
			r.Delete("/{id}", itemHandler.Delete)
			r.Get("/{id}/configs", itemHandler.GetConfigs)
			r.Put("/{id}/configs/{month}", itemHandler.UpdateConfig)
		})

		// Orders
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderHandler.List)
			r.Post("/", orderHandler.Create)
			r.Get("/{id}", orderHandler.Get)
			r.Put("/{id}", orderHandler.Update)
			r.Delete("/{id}", orderHandler.Delete)
			r.Post("/{id}/receive", orderHandler.Receive)
			r.Put("/{id}/receipt", orderHandler.UpdateReceipt)
		})

		// Stock recording
		r.Route("/inventory", func(r chi.Router) {
			r.Get("/entries", entryHandler.ListEntries)
			r.Put("/entries", entryHandler.UpsertEntry)
			r.Get("/dates", entryHandler.ListDates)
			r.Put("/dates/{month}", entryHandler.UpsertDates)
			r.Put("/production/{month}", entryHandler.UpsertProduction)
		})

		// Reconciliation engine
		r.Route("/reconcile", func(r chi.Router) {
			r.Get("/chain", reconcileHandler.Chain)
			r.Get("/panorama", reconcileHandler.Panorama)
			r.Get("/breakdown", reconcileHandler.Breakdown)
		})

		// Derived reports
		r.Route("/reports", func(r chi.Router) {
			r.Get("/fiscal", reportHandler.Fiscal)
			r.Get("/dashboard", reportHandler.Dashboard)
		})

		// Audit trail
		r.Get("/history", historyHandler.List)
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Stop the consumer before the server drains
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
