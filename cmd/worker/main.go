package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/m04kA/SMC-EventBooking/internal/bootstrap"
	"github.com/m04kA/SMC-EventBooking/internal/config"
	bookingRepo "github.com/m04kA/SMC-EventBooking/internal/infra/storage/booking"
	notificationServiceClient "github.com/m04kA/SMC-EventBooking/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-EventBooking/internal/ledger"
	"github.com/m04kA/SMC-EventBooking/internal/notifier"
	"github.com/m04kA/SMC-EventBooking/internal/reconciliation"
	"github.com/m04kA/SMC-EventBooking/pkg/logger"
	"github.com/m04kA/SMC-EventBooking/pkg/metrics"
)

// Воркер сверки: дописывает в базу оплаты, которые HTTP-процесс не смог записать
func main() {
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-EventBooking reconciliation worker...")

	// Воркер не поднимает HTTP, метрики собирает только API-процесс
	var metricsCollector *metrics.Metrics

	database, err := bootstrap.OpenDatabase(cfg.Database, metricsCollector)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Info("Connected to database")

	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    logger.NewTemporalAdapter(log),
	})
	if err != nil {
		log.Fatal("Failed to create Temporal client: %v", err)
	}
	defer temporalClient.Close()
	log.Info("Connected to Temporal (%s, namespace=%s)", cfg.Temporal.HostPort, cfg.Temporal.Namespace)

	bookingRepository := bookingRepo.NewRepository(database.Executor)
	bookingLedger := ledger.New(bookingRepository, database.TxManager)
	notificationClient := notificationServiceClient.NewClient(cfg.NotificationService.URL, cfg.NotificationService.TimeoutDuration())
	bookingNotifier := notifier.New(notificationClient, cfg.Notifications.AdminUserID, metricsCollector, log)

	taskQueue := cfg.Temporal.TaskQueue
	if taskQueue == "" {
		taskQueue = reconciliation.DefaultTaskQueue
	}

	w := worker.New(temporalClient, taskQueue, worker.Options{})
	reconciliation.Register(w, reconciliation.NewActivities(bookingLedger, bookingNotifier, log))

	if err := w.Start(); err != nil {
		log.Fatal("Failed to start worker: %v", err)
	}
	log.Info("Worker started on task queue %s", taskQueue)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down worker...")
	w.Stop()
	log.Info("Worker stopped")
}
