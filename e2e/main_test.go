package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/emirhangull/Train-DB-APP/internal/api"
	"github.com/emirhangull/Train-DB-APP/internal/api/handler"
	"github.com/emirhangull/Train-DB-APP/internal/api/middleware"
	"github.com/emirhangull/Train-DB-APP/internal/application"
	"github.com/emirhangull/Train-DB-APP/internal/config"
	"github.com/emirhangull/Train-DB-APP/internal/infrastructure/postgres"
	redisinfra "github.com/emirhangull/Train-DB-APP/internal/infrastructure/redis"
)

// TestServer wraps the router so tests can issue requests without a
// listening socket.
type TestServer struct {
	Echo *echo.Echo
}

// Request marshals body (when non-nil) and routes the request through
// the full middleware chain.
func (s *TestServer) Request(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

var (
	testServer  *TestServer
	testDB      *sqlx.DB
	redisClient *redis.Client
)

// TestMain starts one shared server for the whole package. When the
// database is not reachable the package exits cleanly so unit test runs
// are not blocked by missing infrastructure.
func TestMain(m *testing.M) {
	cfg := config.Load()

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		os.Exit(0)
	}
	testDB = db

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "../migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		db.Close()
		os.Exit(0)
	}

	// The occupancy cache is optional in production and in tests alike.
	var occupancy *redisinfra.OccupancyCache
	var cachePinger handler.Pinger
	rc := redisinfra.NewClient(&cfg.Redis)
	if err := redisinfra.Ping(context.Background(), rc); err != nil {
		rc.Close()
	} else {
		redisClient = rc
		occupancy = redisinfra.NewOccupancyCache(rc)
		cachePinger = handler.PingerFunc(func(ctx context.Context) error {
			return redisinfra.Ping(ctx, rc)
		})
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
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)

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

	testServer = &TestServer{Echo: e}

	code := m.Run()

	cleanupTables()
	if redisClient != nil {
		redisClient.Close()
	}
	db.Close()

	os.Exit(code)
}

func cleanupTables() {
	testDB.Exec("TRUNCATE TABLE payments, tickets, reservations, passengers, trips, trains, stations RESTART IDENTITY CASCADE")
	if redisClient != nil {
		redisClient.FlushDB(context.Background())
	}
}

// getTestServer returns the shared server with fresh tables.
func getTestServer(t *testing.T) *TestServer {
	t.Helper()
	if testServer == nil {
		t.Skip("test environment unavailable")
	}
	cleanupTables()
	return testServer
}
