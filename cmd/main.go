package main

import (
	"context"
	"fmt"
	"io"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"sorteo/internal/config"
	"sorteo/internal/handlers"
	"sorteo/internal/services"
	"sorteo/internal/store"
)

func main() {
	defer logger.Init("sorteo", true, false, io.Discard).Close()

	// 1. Load the configuration (env vars, with a local .env if present)
	cfg := config.Load()

	// 2. Open the reservation store (JSON document, or Postgres)
	st, err := newStore(cfg)
	if err != nil {
		logger.Fatalf("Failed to open store: %v", err)
	}

	// 3. Initialize the Reservation Service
	reservationService := services.NewReservationService(st, cfg.TotalNumbers)

	// 4. Initialize the HTTP Handler
	httpHandler := handlers.NewHTTPHandler(reservationService)

	// 5. Set up the Gin router
	r := gin.Default()
	r.Use(cors.Default())
	r.Use(handlers.RequestID())

	// 6. Register the API routes
	httpHandler.RegisterRoutes(r)

	// 7. Run the server
	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Infof("Server starting on http://localhost%s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("Failed to run server: %v", err)
	}
}

func newStore(cfg *config.Config) (store.Store, error) {
	if cfg.Storage == config.StoragePostgres {
		pg, err := store.NewPGStore(cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
		logger.Infof("Using Postgres store at %s:%d", cfg.DB.Host, cfg.DB.Port)
		return pg, nil
	}
	logger.Infof("Using file store at %s", cfg.ReservasPath)
	return store.NewFileStore(cfg.ReservasPath), nil
}
