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

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/tanakrit/installment-tracker/internal/config"
	"github.com/tanakrit/installment-tracker/internal/handler"
	"github.com/tanakrit/installment-tracker/internal/repository"
	"github.com/tanakrit/installment-tracker/internal/service"
	"github.com/tanakrit/installment-tracker/pkg/response"
)

func main() {
	// Load .env before viper reads the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	saleRepo := repository.NewSaleRepository(db)
	cardRepo := repository.NewCardRepository(db)

	// Initialize services
	saleService := service.NewSaleService(saleRepo, redisClient, cfg)
	cardService := service.NewCardService(cardRepo, redisClient, cfg)
	dashboardService := service.NewDashboardService(saleRepo, redisClient, cfg)

	saleHandler := handler.NewSaleHandler(saleService)
	cardHandler := handler.NewCardHandler(cardService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(saleHandler, cardHandler, dashboardHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	saleHandler *handler.SaleHandler,
	cardHandler *handler.CardHandler,
	dashboardHandler *handler.DashboardHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/sales", saleHandler.CreateSale).Methods("POST")
	api.HandleFunc("/sales", saleHandler.ListSales).Methods("GET")
	api.HandleFunc("/sales/{saleId}", saleHandler.GetSale).Methods("GET")
	api.HandleFunc("/sales/{saleId}", saleHandler.UpdateSale).Methods("PUT")
	api.HandleFunc("/sales/{saleId}", saleHandler.DeleteSale).Methods("DELETE")
	api.HandleFunc("/sales/{saleId}/payment", saleHandler.RecordPayment).Methods("POST")

	api.HandleFunc("/credit-cards", cardHandler.CreateCard).Methods("POST")
	api.HandleFunc("/credit-cards", cardHandler.ListCards).Methods("GET")
	api.HandleFunc("/credit-cards/{cardId}", cardHandler.GetCard).Methods("GET")
	api.HandleFunc("/credit-cards/{cardId}", cardHandler.UpdateCard).Methods("PUT")
	api.HandleFunc("/credit-cards/{cardId}", cardHandler.DeleteCard).Methods("DELETE")
	api.HandleFunc("/credit-cards/{cardId}/payment", cardHandler.RecordRepayment).Methods("POST")
	api.HandleFunc("/credit-cards/{cardId}/payment", cardHandler.ListRepayments).Methods("GET")

	api.HandleFunc("/dashboard", dashboardHandler.Summary).Methods("GET")

	return router
}
