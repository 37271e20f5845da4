package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/distributed-ticket-reservation/internal/config"
	"github.com/iliyamo/distributed-ticket-reservation/internal/database"
	"github.com/iliyamo/distributed-ticket-reservation/internal/handler"
	appmw "github.com/iliyamo/distributed-ticket-reservation/internal/middleware"
	"github.com/iliyamo/distributed-ticket-reservation/internal/protocol"
	"github.com/iliyamo/distributed-ticket-reservation/internal/queue"
	"github.com/iliyamo/distributed-ticket-reservation/internal/registry"
	"github.com/iliyamo/distributed-ticket-reservation/internal/repository"
	"github.com/iliyamo/distributed-ticket-reservation/internal/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	var dsn string
	switch cfg.DBDriver {
	case "mysql":
		dsn = database.MySQLDSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	default:
		dsn = database.SQLiteDSN(cfg.DBPath)
	}
	db, err := database.Open(cfg.DBDriver, dsn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.EnsureSchema(ctx, db, cfg.DBDriver); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	if err := database.Seed(ctx, db); err != nil {
		log.Fatalf("seed database: %v", err)
	}

	customers := repository.NewCustomerRepo(db)
	films := repository.NewFilmRepo(db)
	sessions := repository.NewSessionRepo(db)
	purchases := repository.NewPurchaseRepo(db, customers)

	var pub *queue.Publisher
	if cfg.RabbitURL != "" {
		pub, err = queue.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Printf("rabbitmq unavailable, purchase events disabled: %v", err)
		} else {
			defer pub.Close()
			go queue.StartPurchaseConsumer(cfg.RabbitURL)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.HTTPErrorHandler = errorHandler

	catalogCache := appmw.NewRedisCache(config.LoadCacheConfig(), config.NewRedisClient())
	h := handler.NewReservationHandler(films, sessions, purchases, pub)
	router.RegisterRoutes(e, h, catalogCache)

	if !registerService(cfg) {
		log.Printf("running unregistered; clients will not discover this instance")
	}

	log.Printf("reservation service listening on :%s (driver=%s)", cfg.Port, cfg.DBDriver)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// registerService announces this instance to the name registry. Failure
// is logged but never aborts startup; the service still answers direct
// requests.
func registerService(cfg config.Config) bool {
	port := cfg.ServicePort()
	if port == 0 {
		log.Printf("register service: port %q is not numeric", cfg.Port)
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := registry.NewClient(cfg.RegistryAddr).Register(ctx, cfg.ServiceName, cfg.ServiceHost, port); err != nil {
		log.Printf("register service: %v", err)
		return false
	}
	log.Printf("registered %q as %s:%d", cfg.ServiceName, cfg.ServiceHost, port)
	return true
}

// errorHandler turns any error that escapes a handler, panics included,
// into the generic envelope so internals never leak to clients.
func errorHandler(err error, c echo.Context) {
	c.Logger().Errorf("unhandled error: %v", err)
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
	}
	_ = c.JSON(code, protocol.Error("internal server error"))
}
