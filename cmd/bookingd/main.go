package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"

	"booking-wizard/internal/application/payment"
	"booking-wizard/internal/application/wizard"
	"booking-wizard/internal/common/configs"
	"booking-wizard/internal/common/health"
	"booking-wizard/internal/common/logger"
	"booking-wizard/internal/common/metrics"
	"booking-wizard/internal/domain/events"
	"booking-wizard/internal/infrastructure/bookingstore"
	"booking-wizard/internal/infrastructure/catalogclient"
	"booking-wizard/internal/infrastructure/dlq"
	"booking-wizard/internal/infrastructure/eventbus"
	httphandler "booking-wizard/internal/infrastructure/http"
	"booking-wizard/internal/infrastructure/mock"
)

func main() {
	configs.LoadEnv()

	l, err := logger.NewZapLogger(configs.GetLogLevel(), os.Getenv("GIN_MODE") == "release")
	if err != nil {
		os.Exit(1)
	}
	defer l.Sync()

	// Initialize Event Store
	var eventStore bookingstore.EventStore
	if os.Getenv(configs.DatabaseURLEnvKey) != "" {
		pgStore, err := bookingstore.NewPostgresEventStore(configs.GetDatabaseURL())
		if err != nil {
			l.Error("Failed to initialize event store", logger.Field{Key: "error", Value: err})
			os.Exit(1)
		}
		defer pgStore.Close()
		eventStore = pgStore
	} else {
		l.Warn("DATABASE_URL not set, using in-memory event store")
		eventStore = bookingstore.NewInMemoryEventStore()
	}

	// Initialize Event Bus
	eventBus, err := eventbus.NewEventBus()
	if err != nil {
		l.Error("Failed to initialize event bus", logger.Field{Key: "error", Value: err})
		os.Exit(1)
	}
	defer eventBus.Close()

	// Load the catalog before serving; a fetch failure degrades to the
	// bundled fallback so startup never blocks on the endpoint
	catalogStore := catalogclient.NewStore(configs.GetCatalogEndpoint(), l)
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := catalogStore.Load(loadCtx); err != nil {
		l.Warn("Catalog degraded to bundled fallback", logger.Field{Key: "error", Value: err})
	}
	loadCancel()

	collector := metrics.NewInMemoryCollector()

	wizardService := wizard.NewService(
		catalogStore,
		eventStore,
		eventBus,
		mock.NewMockOTPProvider(),
		l,
		collector,
		wizard.Callbacks{},
	)

	paymentService := payment.NewService(
		wizardService,
		mock.NewMockPaymentGateway(),
		eventStore,
		dlq.NewInMemoryDLQ(),
		l,
	)

	// Completed loads and reloads reprice every live session
	catalogStore.SetOnLoad(func() { wizardService.RecomputeAll(context.Background()) })

	sessionHandler := httphandler.NewSessionHandler(wizardService, paymentService, catalogStore)
	healthChecker := health.NewServiceHealthChecker(catalogStore)

	router := setupRouter(sessionHandler, healthChecker, collector)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go startEventConsumers(ctx, eventBus, l)

	server := &http.Server{
		Addr:    ":" + configs.GetPort(),
		Handler: router,
	}

	l.Info("Starting booking wizard service", logger.Field{Key: "port", Value: configs.GetPort()})

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Error("Server failed", logger.Field{Key: "error", Value: err})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error("Server forced to shutdown", logger.Field{Key: "error", Value: err})
	}
}

func setupRouter(h *httphandler.SessionHandler, hc health.HealthChecker, collector *metrics.InMemoryCollector) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, hc.Check(c.Request.Context()))
	})
	router.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, collector.Snapshot())
	})

	api := router.Group("/api/v1")
	{
		api.POST("/sessions", h.CreateSession)
		api.GET("/sessions/:id", h.GetSession)
		api.PATCH("/sessions/:id/form", h.UpdateForm)
		api.POST("/sessions/:id/next", h.NextStep)
		api.POST("/sessions/:id/previous", h.PreviousStep)
		api.POST("/sessions/:id/reset", h.ResetSession)
		api.POST("/sessions/:id/otp/send", h.SendOTP)
		api.POST("/sessions/:id/otp/verify", h.VerifyOTP)
		api.POST("/sessions/:id/payment", h.ProcessPayment)
		api.POST("/sessions/:id/payment/retry", h.RetryPayment)
		api.GET("/catalog", h.GetCatalog)
		api.POST("/catalog/reload", h.ReloadCatalog)
	}

	return router
}

// startEventConsumers tails the booking topic for operational logging.
func startEventConsumers(ctx context.Context, eventBus eventbus.EventBus, l logger.Logger) {
	err := eventBus.SubscribeWithGroupID(ctx, configs.TopicBookings, configs.ServiceNameBooking, func(ctx context.Context, event events.Event) error {
		if event.Type() == "BookingSubmitted" || event.Type() == "PaymentFailed" {
			l.Info("Booking lifecycle event",
				logger.Field{Key: "event_type", Value: event.Type()},
				logger.Field{Key: "session_id", Value: event.SessionID()})
		}
		return nil
	})
	if err != nil {
		l.Error("Failed to subscribe to booking events", logger.Field{Key: "error", Value: err})
	}
}
