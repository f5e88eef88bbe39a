package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"festival-tickets/internal/cart"
	cartapi "festival-tickets/internal/cart/api"
	cartredis "festival-tickets/internal/cart/redis"
	"festival-tickets/internal/catalog"
	catalogapi "festival-tickets/internal/catalog/api"
	catalogdb "festival-tickets/internal/catalog/db"
	"festival-tickets/internal/checkout"
	checkoutapi "festival-tickets/internal/checkout/api"
	"festival-tickets/internal/config"
	"festival-tickets/internal/database/migrations"
	"festival-tickets/internal/logger"
	"festival-tickets/internal/payment"
	promodb "festival-tickets/internal/promo/db"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	appLogger := logger.NewLogger()
	ctx := context.Background()

	// --- PostgreSQL Setup ---
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Database.Username, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	connector := pgdriver.NewConnector(pgdriver.WithDSN(dsn))
	sqldb := sql.OpenDB(connector)
	defer sqldb.Close()
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		appLogger.Fatal("DB", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.Up(); err != nil {
		appLogger.Fatal("DB", fmt.Sprintf("Migrations failed: %v", err))
	}

	// --- Redis Setup ---
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Fatal("REDIS", fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	// --- Stripe Setup ---
	payment.InitStripe(cfg.Stripe.SecretKey)

	// --- Initialize Dependencies ---
	catalogService := catalog.NewService(&catalogdb.DB{Bun: bunDB})
	cartStore := cartredis.NewStore(redisClient, cfg.Cart.TTL, appLogger)
	cartService := cart.NewService(cartStore, appLogger)
	promoStore := &promodb.DB{Bun: bunDB}
	gateway := payment.NewStripeGateway(appLogger)
	checkoutService := checkout.NewService(cartService, promoStore, gateway, appLogger)

	catalogHandler := &catalogapi.Handler{Catalog: catalogService}
	cartHandler := &cartapi.Handler{Carts: cartService, Catalog: catalogService}
	checkoutHandler := &checkoutapi.Handler{Service: checkoutService}

	// --- Setup Router ---
	r := chi.NewRouter()

	r.Get("/api/v1/ticket-types", catalogHandler.GetTicketTypes)
	r.Get("/api/v1/cart", cartHandler.GetCart)
	r.Put("/api/v1/cart/items", cartHandler.SetQuantity)
	r.Delete("/api/v1/cart", cartHandler.ClearCart)
	r.Post("/api/v1/promo/validate", checkoutHandler.ValidatePromo)
	r.Post("/api/v1/checkout", checkoutHandler.Checkout)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("SERVER", fmt.Sprintf("Shop service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("SERVER", "Shutdown signal received, cleaning up...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		appLogger.Fatal("SERVER", fmt.Sprintf("Server forced to shutdown: %v", err))
	}
	appLogger.Info("SERVER", "Server exited gracefully")
}
