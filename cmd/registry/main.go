package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/distributed-ticket-reservation/internal/config"
	"github.com/iliyamo/distributed-ticket-reservation/internal/registry"
)

// The name registry runs as its own process so services and clients can
// find each other without hardcoded addresses. State is in-memory;
// services re-register after a registry restart.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	registry.NewHandler(registry.New()).Routes(e)

	log.Printf("name registry listening on :%s", cfg.RegistryPort)
	if err := e.Start(":" + cfg.RegistryPort); err != nil {
		log.Fatalf("registry stopped: %v", err)
	}
}
