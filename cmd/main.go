package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.temporal.io/sdk/client"

	assignPartnerHandler "github.com/m04kA/SMC-EventBooking/internal/api/handlers/assign_partner"
	balancePaymentHandler "github.com/m04kA/SMC-EventBooking/internal/api/handlers/balance_payment"
	bookingWizardHandler "github.com/m04kA/SMC-EventBooking/internal/api/handlers/booking_wizard"
	cancelBookingHandler "github.com/m04kA/SMC-EventBooking/internal/api/handlers/cancel_booking"
	getBookingHandler "github.com/m04kA/SMC-EventBooking/internal/api/handlers/get_booking"
	getInvoicePDFHandler "github.com/m04kA/SMC-EventBooking/internal/api/handlers/get_invoice_pdf"
	getUserBookingsHandler "github.com/m04kA/SMC-EventBooking/internal/api/handlers/get_user_bookings"
	listBookingsHandler "github.com/m04kA/SMC-EventBooking/internal/api/handlers/list_bookings"
	updateAssignmentStatusHandler "github.com/m04kA/SMC-EventBooking/internal/api/handlers/update_assignment_status"
	updateBookingStatusHandler "github.com/m04kA/SMC-EventBooking/internal/api/handlers/update_booking_status"
	wizardPaymentHandler "github.com/m04kA/SMC-EventBooking/internal/api/handlers/wizard_payment"
	"github.com/m04kA/SMC-EventBooking/internal/api/middleware"
	"github.com/m04kA/SMC-EventBooking/internal/bootstrap"
	"github.com/m04kA/SMC-EventBooking/internal/config"
	"github.com/m04kA/SMC-EventBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-EventBooking/internal/infra/storage/booking"
	catalogServiceClient "github.com/m04kA/SMC-EventBooking/internal/integrations/catalogservice"
	formServiceClient "github.com/m04kA/SMC-EventBooking/internal/integrations/formservice"
	notificationServiceClient "github.com/m04kA/SMC-EventBooking/internal/integrations/notificationservice"
	paymentGatewayClient "github.com/m04kA/SMC-EventBooking/internal/integrations/paymentgateway"
	userServiceClient "github.com/m04kA/SMC-EventBooking/internal/integrations/userservice"
	"github.com/m04kA/SMC-EventBooking/internal/ledger"
	"github.com/m04kA/SMC-EventBooking/internal/notifier"
	"github.com/m04kA/SMC-EventBooking/internal/payment"
	"github.com/m04kA/SMC-EventBooking/internal/reconciliation"
	bookingsService "github.com/m04kA/SMC-EventBooking/internal/service/bookings"
	payBalanceUC "github.com/m04kA/SMC-EventBooking/internal/usecase/pay_balance"
	submitBookingUC "github.com/m04kA/SMC-EventBooking/internal/usecase/submit_booking"
	wizardFlowUC "github.com/m04kA/SMC-EventBooking/internal/usecase/wizard_flow"
	"github.com/m04kA/SMC-EventBooking/internal/wizard"
	"github.com/m04kA/SMC-EventBooking/pkg/logger"
	"github.com/m04kA/SMC-EventBooking/pkg/metrics"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-EventBooking...")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	database, err := bootstrap.OpenDatabase(cfg.Database, metricsCollector)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Фоновые задачи живут до сигнала завершения
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Инициализируем интеграционных клиентов
	userClient := userServiceClient.NewClient(cfg.UserService.URL, cfg.UserService.TimeoutDuration(), log)
	formClient := formServiceClient.NewClient(cfg.FormService.URL, cfg.FormService.TimeoutDuration())
	catalogClient := catalogServiceClient.NewClient(cfg.CatalogService.URL, cfg.CatalogService.TimeoutDuration())
	notificationClient := notificationServiceClient.NewClient(cfg.NotificationService.URL, cfg.NotificationService.TimeoutDuration())
	gatewayClient := paymentGatewayClient.NewClient(
		cfg.PaymentGateway.URL,
		cfg.PaymentGateway.APIKey,
		time.Duration(cfg.PaymentGateway.Timeout)*time.Second,
	)
	log.Info("Integration clients initialized (UserService=%s, FormService=%s, CatalogService=%s, NotificationService=%s, PaymentGateway=%s)",
		cfg.UserService.URL, cfg.FormService.URL, cfg.CatalogService.URL, cfg.NotificationService.URL, cfg.PaymentGateway.URL)

	// Temporal: ленивое подключение, HTTP API поднимается и без кластера
	temporalClient, err := client.NewLazyClient(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    logger.NewTemporalAdapter(log),
	})
	if err != nil {
		log.Fatal("Failed to create Temporal client: %v", err)
	}
	defer temporalClient.Close()

	// Хранилище мастеров и платежный адаптер
	wizardStore := wizard.NewStore(time.Duration(cfg.Wizard.TTL) * time.Second)
	go wizardStore.RunSweeper(bgCtx, time.Duration(cfg.Wizard.SweepInterval)*time.Second)

	paymentAdapter := payment.NewAdapter(gatewayClient, cfg.PaymentGateway.PublishableKey, metricsCollector, log)

	// Репозитории и сервисы
	bookingRepository := bookingRepo.NewRepository(database.Executor)
	bookingLedger := ledger.New(bookingRepository, database.TxManager)
	bookingNotifier := notifier.New(notificationClient, cfg.Notifications.AdminUserID, metricsCollector, log)
	reconciler := reconciliation.NewStarter(temporalClient, cfg.Temporal.TaskQueue, metricsCollector, log)

	bookingSvc := bookingsService.NewService(bookingRepository, database.TxManager, log)

	// Инициализируем use cases
	wizardFlowUseCase := wizardFlowUC.NewUseCase(wizardStore, catalogClient, formClient, log)
	submitBookingUseCase := submitBookingUC.NewUseCase(
		wizardStore,
		paymentAdapter,
		bookingLedger,
		userClient,
		bookingNotifier,
		reconciler,
		metricsCollector,
		log,
		cfg.Wizard.RedirectDelayDuration(),
	)
	payBalanceUseCase := payBalanceUC.NewUseCase(
		bookingRepository,
		paymentAdapter,
		bookingLedger,
		bookingNotifier,
		reconciler,
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	bookingWizard := bookingWizardHandler.NewHandler(wizardFlowUseCase, log)
	wizardPayment := wizardPaymentHandler.NewHandler(submitBookingUseCase, log)
	balancePayment := balancePaymentHandler.NewHandler(payBalanceUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	assignPartner := assignPartnerHandler.NewHandler(bookingSvc, log)
	updateAssignmentStatus := updateAssignmentStatusHandler.NewHandler(bookingSvc, log)
	getInvoicePDF := getInvoicePDFHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Metrics middleware и endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix, все маршруты требуют JWT
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth([]byte(cfg.Auth.JWTSecret)))

	// --- Мастер бронирования ---
	api.HandleFunc("/wizards", bookingWizard.Start).Methods(http.MethodPost)
	api.HandleFunc("/wizards/{wizardId}", bookingWizard.Get).Methods(http.MethodGet)
	api.HandleFunc("/wizards/{wizardId}", bookingWizard.Discard).Methods(http.MethodDelete)
	api.HandleFunc("/wizards/{wizardId}/fields", bookingWizard.SetFields).Methods(http.MethodPatch)
	api.HandleFunc("/wizards/{wizardId}/next", bookingWizard.Next).Methods(http.MethodPost)
	api.HandleFunc("/wizards/{wizardId}/previous", bookingWizard.Previous).Methods(http.MethodPost)

	// --- Оплата первого платежа и создание бронирования ---
	api.HandleFunc("/wizards/{wizardId}/payment", wizardPayment.Open).Methods(http.MethodPost)
	api.HandleFunc("/wizards/{wizardId}/payment/{orderId}/complete", wizardPayment.Complete).Methods(http.MethodPost)
	api.HandleFunc("/wizards/{wizardId}/payment/{orderId}/dismiss", wizardPayment.Dismiss).Methods(http.MethodPost)

	// --- Бронирования ---
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/invoices/{invoiceId}/pdf", getInvoicePDF.Handle).Methods(http.MethodGet)

	// --- Доплата по бронированию ---
	api.HandleFunc("/bookings/{bookingId}/balance-payment", balancePayment.Open).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/balance-payment/{orderId}/complete", balancePayment.Complete).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/balance-payment/{orderId}/dismiss", balancePayment.Dismiss).Methods(http.MethodPost)

	// --- Исполнение заказа партнером ---
	api.Handle("/bookings/{bookingId}/assignment/status",
		middleware.RequireRole(domain.RolePartner, domain.RoleAdmin)(http.HandlerFunc(updateAssignmentStatus.Handle)),
	).Methods(http.MethodPut)

	// --- Администрирование ---
	api.Handle("/bookings",
		middleware.RequireRole(domain.RoleAdmin, domain.RolePartner)(http.HandlerFunc(listBookings.Handle)),
	).Methods(http.MethodGet)

	admin := api.PathPrefix("").Subrouter()
	admin.Use(middleware.RequireRole(domain.RoleAdmin))
	admin.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPut)
	admin.HandleFunc("/bookings/{bookingId}/assignment", assignPartner.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем очистку мастеров
	stopBackground()

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
