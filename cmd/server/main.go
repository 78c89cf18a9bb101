package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/FaizaanMd/cinema-booking/internal/catalog"
	"github.com/FaizaanMd/cinema-booking/internal/config"
	"github.com/FaizaanMd/cinema-booking/internal/database"
	"github.com/FaizaanMd/cinema-booking/internal/handler"
	"github.com/FaizaanMd/cinema-booking/internal/middleware"
	"github.com/FaizaanMd/cinema-booking/internal/queue"
	"github.com/FaizaanMd/cinema-booking/internal/repository"
	"github.com/FaizaanMd/cinema-booking/internal/reservation"
	"github.com/FaizaanMd/cinema-booking/internal/router"
	"github.com/FaizaanMd/cinema-booking/internal/session"
)

func main() {
	cfg := config.Load()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	cat := catalog.Default()
	checks := map[string]handler.Check{}

	storage, db := openStorage(ctx, cfg)
	if db != nil {
		defer db.Close()
		checks["mysql"] = db.PingContext
	}
	store := reservation.NewStore(storage)
	if cfg.SeedDemoData {
		// MySQL keeps seeded rows across restarts.
		for _, r := range reservation.DemoReservations() {
			if err := store.Seed(ctx, r); err != nil && !errors.Is(err, reservation.ErrDuplicateID) {
				log.Fatalf("seed reservations: %v", err)
			}
		}
	}

	var rdb *redis.Client
	if cfg.RedisEnabled {
		if rdb = config.NewRedisClient(); rdb == nil {
			log.Printf("redis unavailable; cache and rate limiting disabled")
		} else {
			defer rdb.Close()
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}
	}
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		events = queue.NewRabbitPublisher(cfg.AMQPURL)
		if cfg.RunConsumer {
			consumer := queue.NewConsumer(cfg.AMQPURL, cfg.EventLogDir)
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("reservation-consumer stopped: %v", err)
				}
			}()
		}
	}

	codec := session.NewCodec(cfg.SessionSecret, cfg.SessionTTL)
	var submitted session.Ledger = session.NewMemoryLedger()
	if rdb != nil {
		submitted = session.NewRedisLedger(rdb, "booking:submitted")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.HeaderBookingToken},
		ExposeHeaders: []string{middleware.HeaderBookingToken, middleware.HeaderCache},
	}))

	router.RegisterRoutes(e, &handler.Readiness{Checks: checks, Timeout: 2 * time.Second})
	router.RegisterCatalog(e, handler.NewCatalogHandler(cat), cache)
	router.RegisterBooking(e, handler.NewBookingHandler(cat, store, codec, submitted, events), codec, limiter)
	router.RegisterReservations(e, handler.NewReservationHandler(store, events), limiter)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Printf("listening on %s (env=%s, storage=%s)", srv.Addr, cfg.Env, cfg.StorageBackend)
		if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	log.Println("server stopped")
}

// openStorage picks the reservation backend.  The returned *sql.DB is nil
// for the in-memory backend.
func openStorage(ctx context.Context, cfg config.Config) (reservation.Storage, *sql.DB) {
	if cfg.StorageBackend != config.BackendMySQL {
		return reservation.NewMemoryStorage(), nil
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	repo := repository.NewReservationRepo(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("mysql schema: %v", err)
	}
	return repo, db
}
