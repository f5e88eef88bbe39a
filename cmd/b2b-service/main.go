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
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"festival-tickets/internal/b2b"
	b2bapi "festival-tickets/internal/b2b/api"
	b2bdb "festival-tickets/internal/b2b/db"
	b2bkafka "festival-tickets/internal/b2b/kafka"
	catalogdb "festival-tickets/internal/catalog/db"
	"festival-tickets/internal/config"
	"festival-tickets/internal/database/migrations"
	"festival-tickets/internal/invoice"
	"festival-tickets/internal/kafka"
	"festival-tickets/internal/logger"
	"festival-tickets/internal/payment"
	"festival-tickets/internal/tickets"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	appLogger := logger.NewLogger()

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

	// --- Kafka Setup ---
	if cfg.Kafka.Enabled {
		topics := []string{cfg.Kafka.Topics.OrderEvents, cfg.Kafka.Topics.TicketDelivery}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			appLogger.Warn("KAFKA", fmt.Sprintf("Topic bootstrap failed: %v", err))
		}
	}
	producer := b2bkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.OrderEvents)
	defer producer.Close()

	// --- Stripe Setup ---
	payment.InitStripe(cfg.Stripe.SecretKey)

	// --- Initialize Dependencies ---
	dbLayer := &b2bdb.DB{Bun: bunDB}
	catalogStore := &catalogdb.DB{Bun: bunDB}
	invoices := invoice.NewGenerator(cfg.B2B.InvoiceDir, cfg.B2B.InvoiceBase, appLogger)
	issuer := tickets.NewIssuer(cfg.B2B.TicketSecret)
	deliverer := tickets.NewKafkaDeliverer(cfg.Kafka.Brokers, cfg.Kafka.Topics.TicketDelivery, appLogger)
	ticketService := tickets.NewService(issuer, deliverer)
	gateway := payment.NewStripeGateway(appLogger)

	orderService := b2b.NewService(dbLayer, catalogStore, producer, invoices, ticketService, gateway, cfg.B2B.MinQuantity, appLogger)
	handler := &b2bapi.Handler{Orders: orderService}

	// --- Setup Router ---
	r := chi.NewRouter()

	r.Post("/api/v1/b2b/quote", handler.Quote)
	r.Post("/api/v1/b2b/orders", handler.CreateOrder)
	r.Get("/api/v1/b2b/orders/{orderId}", handler.GetOrder)
	r.Post("/api/v1/b2b/orders/{orderId}/invoice", handler.GenerateInvoice)
	r.Post("/api/v1/b2b/orders/{orderId}/pay", handler.MarkPaid)
	r.Post("/api/v1/b2b/orders/{orderId}/tickets", handler.GenerateTickets)
	r.Post("/api/v1/b2b/orders/{orderId}/send", handler.SendTickets)
	r.Post("/api/v1/b2b/orders/{orderId}/complete", handler.Complete)
	r.Post("/api/v1/b2b/orders/{orderId}/cancel", handler.Cancel)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("SERVER", fmt.Sprintf("B2B service running on %s", cfg.Server.Port))
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
