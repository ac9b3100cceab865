package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antonminaichev/gophershop/internal/category"
	"github.com/antonminaichev/gophershop/internal/health"
	"github.com/antonminaichev/gophershop/internal/logger"
	"github.com/antonminaichev/gophershop/internal/metrics"
	"github.com/antonminaichev/gophershop/internal/order"
	"github.com/antonminaichev/gophershop/internal/product"
	"github.com/antonminaichev/gophershop/internal/review"
	"github.com/antonminaichev/gophershop/internal/router"
	storage "github.com/antonminaichev/gophershop/internal/storage/postgres"
	"github.com/antonminaichev/gophershop/internal/user"
)

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}

func run() error {
	cfg, err := NewConfig()
	if err != nil {
		log.Fatal(err)
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := storage.NewPostgresStorage(cfg.DatabaseConnection)
	if err != nil {
		log.Fatalf("Failed to initialize Postgres storage: %v", err)
	}
	if err := store.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Warning: failed to close storage: %v", err)
		}
	}()

	userSvc := user.NewService(store, []byte(cfg.JWTSecret), cfg.JWTTTL)
	categorySvc := category.NewService(store)
	productSvc := product.NewService(store, store)
	orderSvc := order.NewService(store)
	reviewSvc := review.NewService(store, store)

	handlers := router.Handlers{
		User:     user.NewHandler(userSvc),
		Category: category.NewHandler(categorySvc),
		Product:  product.NewHandler(productSvc),
		Order:    order.NewHandler(orderSvc),
		Review:   review.NewHandler(reviewSvc),
		Health:   health.NewHandler(store),
	}

	m := metrics.NewServerMetrics("gophershop")
	r := router.NewRouter(handlers, []byte(cfg.JWTSecret), store, m)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
	return nil
}
