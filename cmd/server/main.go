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

	"github.com/pocketfin/pocketfin-backend/internal/adapter/httpapi"
	"github.com/pocketfin/pocketfin-backend/internal/adapter/repository/postgres"
	"github.com/pocketfin/pocketfin-backend/internal/adapter/repository/sqlite"
	"github.com/pocketfin/pocketfin-backend/internal/config"
	"github.com/pocketfin/pocketfin-backend/internal/domain"
	"github.com/pocketfin/pocketfin-backend/internal/usecase/movement"
	"github.com/pocketfin/pocketfin-backend/internal/usecase/reserve"
	"github.com/pocketfin/pocketfin-backend/internal/usecase/space"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// 1. Setup storage
	var (
		spaceRepo    domain.SpaceRepository
		reserveRepo  domain.ReserveRepository
		movementRepo domain.MovementRepository
	)

	switch cfg.DBDriver {
	case "sqlite":
		db, err := sqlite.NewDB(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open sqlite database: %v", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		spaceRepo = sqlite.NewSpaceRepository(db)
		reserveRepo = sqlite.NewReserveRepository(db)
		movementRepo = sqlite.NewMovementRepository(db)
	case "postgres":
		db, err := postgres.NewDB(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		spaceRepo = postgres.NewSpaceRepository(db)
		reserveRepo = postgres.NewReserveRepository(db)
		movementRepo = postgres.NewMovementRepository(db)
	default:
		log.Fatalf("Unknown DB_DRIVER %q (use postgres or sqlite)", cfg.DBDriver)
	}

	// 2. Initialize services
	gate := space.NewGate(spaceRepo)
	spaceService := space.NewService(spaceRepo)
	reserveService := reserve.NewService(reserveRepo, spaceRepo, gate)
	movementService := movement.NewService(reserveRepo, movementRepo, gate)

	// 3. Start HTTP server
	handler := httpapi.NewHandler(spaceService, reserveService, movementService)
	router := httpapi.NewRouter(handler, []byte(cfg.JWTSecret), cfg.AllowedOrigins)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("HTTP server listening on %s (driver: %s)", cfg.HTTPAddr, cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// 4. Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
