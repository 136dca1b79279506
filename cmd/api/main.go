package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/emirhangull/Train-DB-APP/internal/api"
	"github.com/emirhangull/Train-DB-APP/internal/api/handler"
	apimiddleware "github.com/emirhangull/Train-DB-APP/internal/api/middleware"
	"github.com/emirhangull/Train-DB-APP/internal/application"
	"github.com/emirhangull/Train-DB-APP/internal/config"
	"github.com/emirhangull/Train-DB-APP/internal/infrastructure/postgres"
	redisinfra "github.com/emirhangull/Train-DB-APP/internal/infrastructure/redis"
	"github.com/emirhangull/Train-DB-APP/internal/pkg/logger"
	"github.com/emirhangull/Train-DB-APP/internal/pkg/metrics"
	"github.com/emirhangull/Train-DB-APP/internal/worker"
)

func main() {
	cfg := config.Load()
	logger.Set(logger.NewLogger(cfg.Env))
	defer logger.Sync()

	m := metrics.Init()

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	// Redis is optional; without it the occupancy cache is skipped and
	// every availability query hits the database.
	var occupancy *redisinfra.OccupancyCache
	var cachePinger handler.Pinger
	redisClient := redisinfra.NewClient(&cfg.Redis)
	if err := redisinfra.Ping(context.Background(), redisClient); err != nil {
		logger.Warn("redis unavailable, occupancy cache disabled", zap.Error(err))
		redisClient.Close()
		redisClient = nil
	} else {
		occupancy = redisinfra.NewOccupancyCache(redisClient)
		cachePinger = handler.PingerFunc(func(ctx context.Context) error {
			return redisinfra.Ping(ctx, redisClient)
		})
		defer redisClient.Close()
	}

	txManager := postgres.NewTxManager(db)
	stationRepo := postgres.NewStationRepository(db)
	trainRepo := postgres.NewTrainRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	passengerRepo := postgres.NewPassengerRepository(db)
	reservationRepo := postgres.NewReservationRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	catalogService := application.NewCatalogService(stationRepo, trainRepo, tripRepo, ticketRepo, occupancy)
	bookingService := application.NewBookingService(txManager, reservationRepo, ticketRepo, paymentRepo, passengerRepo, tripRepo, occupancy)
	reportService := application.NewReportService(tripRepo, ticketRepo, paymentRepo)

	healthHandler := handler.NewHealthHandler(handler.PingerFunc(func(ctx context.Context) error {
		return postgres.Ping(ctx, db)
	}), cachePinger)
	stationHandler := handler.NewStationHandler(catalogService)
	trainHandler := handler.NewTrainHandler(catalogService)
	tripHandler := handler.NewTripHandler(catalogService)
	reservationHandler := handler.NewReservationHandler(bookingService)
	passengerHandler := handler.NewPassengerHandler(bookingService)
	reportHandler := handler.NewReportHandler(reportService)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	apimiddleware.SetupMiddleware(e)
	e.Use(apimiddleware.PrometheusMiddleware(m))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), apimiddleware.MetricsBasicAuth())

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/stations", stationHandler.Create)
	v1.GET("/stations", stationHandler.List)
	v1.GET("/stations/:id", stationHandler.GetByID)
	v1.PUT("/stations/:id", stationHandler.Update)
	v1.DELETE("/stations/:id", stationHandler.Delete)

	v1.POST("/trains", trainHandler.Create)
	v1.GET("/trains", trainHandler.List)
	v1.GET("/trains/:id", trainHandler.GetByID)
	v1.PUT("/trains/:id", trainHandler.Update)
	v1.DELETE("/trains/:id", trainHandler.Delete)

	v1.POST("/trips", tripHandler.Create)
	v1.GET("/trips", tripHandler.List)
	v1.GET("/trips/search", tripHandler.Search)
	v1.GET("/trips/:id", tripHandler.GetByID)
	v1.GET("/trips/:id/seats", tripHandler.SeatMap)
	v1.GET("/trips/:id/seats/held", tripHandler.CountHeldSeats)
	v1.DELETE("/trips/:id", tripHandler.Delete)

	v1.POST("/reservations", reservationHandler.Create)
	v1.GET("/reservations", reservationHandler.List)
	v1.GET("/reservations/:locator", reservationHandler.GetByLocator)
	v1.POST("/reservations/:id/payment", reservationHandler.Pay)
	v1.GET("/reservations/:id/payment", reservationHandler.GetPayment)
	v1.POST("/reservations/:id/cancel", reservationHandler.Cancel)

	v1.GET("/passengers", passengerHandler.List)
	v1.GET("/passengers/:id", passengerHandler.GetByID)

	v1.GET("/reports/occupancy", reportHandler.Occupancy)
	v1.GET("/reports/revenue", reportHandler.Revenue)
	v1.GET("/reports/tickets", reportHandler.TicketStats)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	var canceller *worker.StaleReservationCanceller
	if cfg.Worker.Interval > 0 {
		canceller = worker.NewStaleReservationCanceller(bookingService, cfg.Worker.Interval, cfg.Worker.MaxAge)
		go canceller.Start(workerCtx)
	}

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server start failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	if canceller != nil {
		canceller.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped")
}
