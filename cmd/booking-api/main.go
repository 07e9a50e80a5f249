package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"agenda-service/internal/handlers"
	"agenda-service/internal/intake"
	"agenda-service/internal/outbox"
	"agenda-service/internal/slots"
	"agenda-service/internal/storage"
	"agenda-service/libs/auth"
	"agenda-service/libs/config"
	"agenda-service/libs/db"
	"agenda-service/libs/httpx"
	"agenda-service/libs/kafkax"
	otelx "agenda-service/libs/otel"
	"agenda-service/libs/runtime"
)

func main() {
	service := config.String("SERVICE_NAME", "booking-api")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	jwtSecret := config.String("JWT_SECRET", "")
	var jwks *auth.JWKSClient
	if url := config.String("JWKS_URL", ""); url != "" {
		jwks = auth.NewJWKSClient(url, time.Duration(config.Int("JWKS_CACHE_TTL_SECONDS", 300))*time.Second)
	}
	verifier := auth.NewVerifier(jwtSecret, jwks)

	outboxRepo := outbox.NewRepository(pool)
	customers := storage.NewCustomerRepository(pool)
	services := storage.NewServiceRepository(pool)
	appointments := storage.NewAppointmentRepository(pool, outboxRepo)

	intakeSvc := intake.NewService(customers, services, appointments, logger, intake.Config{
		RejectPastDates: config.Bool("INTAKE_REJECT_PAST_DATES", false),
	})

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: time.Duration(config.Int("OUTBOX_POLL_SECONDS", 2)) * time.Second,
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	windows, err := slots.ParseWindows(config.String("BOOKING_WINDOWS", "08:00-12:00,13:00-18:00"))
	if err != nil {
		logger.Error("invalid BOOKING_WINDOWS", "err", err)
		panic(err)
	}
	slotStep := time.Duration(config.Int("SLOT_STEP_MINUTES", 30)) * time.Minute

	bookingHandler := handlers.NewBookingHandler(intakeSvc, verifier, logger)
	webhookHandler := handlers.NewWebhookHandler(intakeSvc, config.String("WEBHOOK_SHARED_SECRET", ""), logger)
	catalogHandler := handlers.NewCatalogHandler(services, appointments, windows, slotStep, logger)
	adminHandler := handlers.NewAdminHandler(appointments, customers, logger)
	portalHandler := handlers.NewPortalHandler(appointments, logger)
	authHandler := handlers.NewAuthHandler(handlers.StaffCredential{
		Email: config.String("STAFF_EMAIL", ""),
		Hash:  config.String("STAFF_PASSWORD_HASH", ""),
		Name:  config.String("STAFF_NAME", "Staff"),
	}, jwtSecret, time.Duration(config.Int("STAFF_TOKEN_TTL_MINUTES", 480))*time.Minute, logger)

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if kafkaBrokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)})
	}
	mux := runtime.NewBaseMux(readyChecks...)

	requireStaff := handlers.RequireStaff(verifier)
	requireAuth := handlers.RequireAuth(verifier)

	mux.HandleFunc("/api/v1/public/booking-requests", bookingHandler.Submit)
	mux.HandleFunc("/api/v1/webhooks/booking", webhookHandler.Submit)
	mux.HandleFunc("/api/v1/public/services", catalogHandler.ListServices)
	mux.HandleFunc("/api/v1/public/slots", catalogHandler.ListSlots)
	mux.HandleFunc("/api/v1/auth/login", authHandler.Login)
	mux.Handle("/api/v1/appointments", requireStaff(http.HandlerFunc(adminHandler.ListAppointments)))
	mux.Handle("/api/v1/appointments/status", requireStaff(http.HandlerFunc(adminHandler.UpdateStatus)))
	mux.Handle("/api/v1/customers", requireStaff(http.HandlerFunc(adminHandler.ListCustomers)))
	mux.Handle("/api/v1/me/appointments", requireAuth(http.HandlerFunc(portalHandler.MyAppointments)))

	bodyLimit := int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))
	requestTimeout := time.Duration(config.Int("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second
	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 60)

	var rateLimitMW httpx.Middleware
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl"))
		rateLimitMW = rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
		rateLimitMW = rl.Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	handler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   config.List("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods:   config.List("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"),
			AllowedHeaders:   config.List("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id,X-Webhook-Secret"),
			AllowCredentials: config.Bool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           time.Duration(config.Int("CORS_MAX_AGE_SECONDS", 600)) * time.Second,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(bodyLimit),
		httpx.WithTimeout(requestTimeout),
		rateLimitMW,
	)
	handler = otelhttp.NewHandler(handler, service)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
