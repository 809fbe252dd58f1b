package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/m04kA/SMC-BookingCalendar/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-BookingCalendar/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-BookingCalendar/internal/api/handlers/get_available_slots"
	getBookedIntervalsHandler "github.com/m04kA/SMC-BookingCalendar/internal/api/handlers/get_booked_intervals"
	getBookingHandler "github.com/m04kA/SMC-BookingCalendar/internal/api/handlers/get_booking"
	getMonthAvailabilityHandler "github.com/m04kA/SMC-BookingCalendar/internal/api/handlers/get_month_availability"
	getScheduleHandler "github.com/m04kA/SMC-BookingCalendar/internal/api/handlers/get_schedule"
	getUserBookingsHandler "github.com/m04kA/SMC-BookingCalendar/internal/api/handlers/get_user_bookings"
	updateScheduleHandler "github.com/m04kA/SMC-BookingCalendar/internal/api/handlers/update_schedule"
	"github.com/m04kA/SMC-BookingCalendar/internal/api/middleware"
	"github.com/m04kA/SMC-BookingCalendar/internal/config"
	availabilityCache "github.com/m04kA/SMC-BookingCalendar/internal/infra/cache/availability"
	bookingRepo "github.com/m04kA/SMC-BookingCalendar/internal/infra/storage/booking"
	scheduleRepo "github.com/m04kA/SMC-BookingCalendar/internal/infra/storage/schedule"
	businessServiceClient "github.com/m04kA/SMC-BookingCalendar/internal/integrations/businessservice"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-BookingCalendar/internal/service/bookings"
	scheduleService "github.com/m04kA/SMC-BookingCalendar/internal/service/schedule"
	createBookingUC "github.com/m04kA/SMC-BookingCalendar/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-BookingCalendar/internal/usecase/get_available_slots"
	getMonthAvailabilityUC "github.com/m04kA/SMC-BookingCalendar/internal/usecase/get_month_availability"
	"github.com/m04kA/SMC-BookingCalendar/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingCalendar/pkg/logger"
	"github.com/m04kA/SMC-BookingCalendar/pkg/metrics"
	"github.com/m04kA/SMC-BookingCalendar/pkg/txmanager"
)

// cache общий контракт Redis кэша и заглушки
type cache interface {
	createBookingUC.AvailabilityCache
	getMonthAvailabilityUC.MonthCache
	InvalidateBusiness(ctx context.Context, businessID int64) error
}

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

	log.Info("Starting SMC-BookingCalendar...")

	location, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		log.Fatal("Invalid booking.timezone %q: %v", cfg.Booking.Timezone, err)
	}

	// Инициализируем метрики (если включены); nil отключает их во всех слоях
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Кэш доступности по месяцам
	var monthCache cache = availabilityCache.Nop{}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			// Без кэша сервис работает, просто медленнее
			log.Warn("Redis at %s unavailable, availability cache disabled: %v", cfg.Redis.Addr, err)
		} else {
			monthCache = availabilityCache.NewCache(rdb, time.Duration(cfg.Redis.TTL)*time.Second, location, metricsCollector)
			log.Info("Availability cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
		}
	}

	// Инициализируем интеграционных клиентов
	businessClient := businessServiceClient.NewClient(
		cfg.BusinessService.URL,
		time.Duration(cfg.BusinessService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (BusinessService=%s timeout=%ds)",
		cfg.BusinessService.URL, cfg.BusinessService.Timeout)

	// Инициализируем репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)

	// Инициализируем сервисы
	generator := availability.NewGenerator(log)
	scheduleSvc := scheduleService.NewService(scheduleRepository, businessClient, monthCache, txMgr, log)
	bookingSvc := bookingsService.NewService(bookingRepository, businessClient, monthCache, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		scheduleSvc,
		businessClient,
		generator,
		monthCache,
		txMgr,
		createBookingUC.Settings{
			GranularityMinutes: cfg.Booking.GranularityMinutes,
			AdvanceBookingDays: cfg.Booking.AdvanceBookingDays,
			MinNoticeMinutes:   cfg.Booking.MinNoticeMinutes,
		},
		metricsCollector,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		scheduleSvc,
		businessClient,
		generator,
		getAvailableSlotsUC.Settings{
			GranularityMinutes: cfg.Booking.GranularityMinutes,
			AdvanceBookingDays: cfg.Booking.AdvanceBookingDays,
			MinNoticeMinutes:   cfg.Booking.MinNoticeMinutes,
		},
		metricsCollector,
		log,
	)

	getMonthAvailabilityUseCase := getMonthAvailabilityUC.NewUseCase(
		bookingRepository,
		scheduleSvc,
		businessClient,
		generator,
		monthCache,
		getMonthAvailabilityUC.Settings{
			GranularityMinutes: cfg.Booking.GranularityMinutes,
			AdvanceBookingDays: cfg.Booking.AdvanceBookingDays,
			MinNoticeMinutes:   cfg.Booking.MinNoticeMinutes,
			Location:           location,
		},
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, location, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, location, log)
	getMonthAvailability := getMonthAvailabilityHandler.NewHandler(getMonthAvailabilityUseCase, log)
	getBookedIntervals := getBookedIntervalsHandler.NewHandler(bookingSvc, location, log)
	getSchedule := getScheduleHandler.NewHandler(scheduleSvc, log)
	updateSchedule := updateScheduleHandler.NewHandler(scheduleSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации, с ограничением частоты)
	// ============================================================

	public := api.PathPrefix("/businesses/{businessId}").Subrouter()
	if cfg.RateLimit.Enabled {
		public.Use(middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Middleware)
		log.Info("Rate limit enabled for public routes (%.1f rps, burst %d)", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// Недельное расписание бизнеса или сотрудника
	public.HandleFunc("/schedule", getSchedule.Handle).Methods(http.MethodGet)

	// Занятые интервалы за день или месяц
	public.HandleFunc("/booked-intervals", getBookedIntervals.Handle).Methods(http.MethodGet)

	// Свободные слоты на день
	public.HandleFunc("/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Доступность по дням месяца
	public.HandleFunc("/month-availability", getMonthAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Управление бизнесом (для менеджеров) ---
	protected.HandleFunc("/businesses/{businessId}/schedule", updateSchedule.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      middleware.CORS(cfg.CORS.AllowedOrigins)(r),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

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
