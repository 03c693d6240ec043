package main // Entry point package

import (
	"context"   // startup timeouts and shutdown signalling
	"errors"    // distinguish a clean server close
	"log"       // Logging library
	"net/http"  // http.ErrServerClosed
	"os"        // signals
	"os/signal" // graceful shutdown
	"syscall"   // SIGTERM
	"time"      // shutdown timeout

	"github.com/joho/godotenv"    // .env loader for local runs
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/mercado-storefront/internal/catalog"    // built-in product list
	"github.com/iliyamo/mercado-storefront/internal/config"     // Internal config loader
	"github.com/iliyamo/mercado-storefront/internal/database"   // connection and schema
	"github.com/iliyamo/mercado-storefront/internal/handler"    // HTTP handlers
	"github.com/iliyamo/mercado-storefront/internal/queue"      // order events
	"github.com/iliyamo/mercado-storefront/internal/repository" // SQL stores
	"github.com/iliyamo/mercado-storefront/internal/router"     // Internal router setup
	"github.com/iliyamo/mercado-storefront/internal/service"    // sessions, cart, checkout
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env: .env not loaded: %v", err)
	}
	cfg := config.Load() // Load environment config

	dialect, err := database.ParseDialect(cfg.DBDriver)
	if err != nil {
		log.Fatal(err)
	}
	db, err := database.Open(database.Options{
		Driver: dialect,
		User:   cfg.DBUser,
		Pass:   cfg.DBPass,
		Host:   cfg.DBHost,
		Port:   cfg.DBPort,
		Name:   cfg.DBName,
		Path:   cfg.DBPath,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := database.Migrate(bootCtx, db, dialect); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepo(db, dialect)
	sessions := service.NewSessionManager(users, repository.NewSessionRepo(db, dialect), cfg.BcryptCost, cfg.SessionTTL)
	if err := sessions.SeedAdmin(bootCtx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("seed admin: %v", err)
	}
	cancel()

	cat := catalog.New()
	cart := service.NewCartManager(cat)

	var publisher service.EventPublisher
	if cfg.RabbitURL != "" {
		publisher = queue.NewPublisher(cfg.RabbitURL)
		consumer := queue.NewOrderConsumer(cfg.RabbitURL, cfg.OrderLogPath)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("order-consumer stopped: %v", err)
			}
		}()
	} else {
		log.Printf("RABBITMQ_URL not set; order events disabled")
	}
	checkout := service.NewOrchestrator(cart, repository.NewOrderRepo(db, dialect), publisher)

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}

	e := echo.New() // Create Echo instance
	router.Setup(e, sessions)
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(sessions, cfg.Env == "prod"), config.LoadRateLimitConfig(), rdb)
	router.RegisterStore(e, handler.NewStoreHandler(cat, cart, checkout), config.LoadCacheConfig(), rdb)
	router.RegisterOrders(e, handler.NewOrderHandler(repository.NewOrderRepo(db, dialect)))
	router.RegisterPages(e, cfg.StaticDir)

	addr := ":" + cfg.Port // Address string with port
	log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, dialect)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) { // Start HTTP server
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	checkout.Close() // no new events; flush queued ones
}
