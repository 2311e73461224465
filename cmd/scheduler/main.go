package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/tanakrit/installment-tracker/internal/config"
	"github.com/tanakrit/installment-tracker/internal/repository"
	"github.com/tanakrit/installment-tracker/internal/service"
)

func main() {
	log.Println("Starting installment scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	saleRepo := repository.NewSaleRepository(db)
	saleService := service.NewSaleService(saleRepo, redisClient, cfg)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone: %v", err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	setupCronJobs(c, cfg, saleService)

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, saleService *service.SaleService) {
	// Daily sweep at midnight: re-reconcile sales so overdue statuses track
	// the calendar without waiting for the next payment.
	_, err := c.AddFunc("0 0 0 * * *", func() {
		log.Println("Running daily status refresh job...")
		refreshStatuses(saleService)
	})
	if err != nil {
		log.Printf("Error scheduling status refresh job: %v", err)
	}

	// Morning reminder at 9 AM: log sales with installments coming due.
	_, err = c.AddFunc("0 0 9 * * *", func() {
		log.Println("Running payment reminder job...")
		sendPaymentReminders(cfg, saleService)
	})
	if err != nil {
		log.Printf("Error scheduling payment reminder job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}

func refreshStatuses(saleService *service.SaleService) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	updated, err := saleService.RefreshStatuses(ctx, time.Now())
	if err != nil {
		log.Printf("Status refresh failed: %v", err)
		return
	}
	log.Printf("Status refresh complete, %d sale(s) updated", updated)
}

func sendPaymentReminders(cfg *config.Config, saleService *service.SaleService) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	window := time.Duration(cfg.Scheduler.ReminderDaysAhead) * 24 * time.Hour
	due, err := saleService.DueSoon(ctx, time.Now(), window)
	if err != nil {
		log.Printf("Reminder job failed: %v", err)
		return
	}

	for _, sale := range due {
		log.Printf("Reminder: %s (%s) has an installment due within %d day(s)",
			sale.Name, sale.Phone, cfg.Scheduler.ReminderDaysAhead)
	}
	log.Printf("Reminder job complete, %d sale(s) due soon", len(due))
}
