package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/ermradulsharma/pahadigo-sub000/internal/apps"
	"github.com/ermradulsharma/pahadigo-sub000/internal/apps/inquiries"
	"github.com/ermradulsharma/pahadigo-sub000/internal/apps/marketing"
	"github.com/ermradulsharma/pahadigo-sub000/internal/apps/reference"
	"github.com/ermradulsharma/pahadigo-sub000/internal/apps/reviews"
	"github.com/ermradulsharma/pahadigo-sub000/internal/audit"
	"github.com/ermradulsharma/pahadigo-sub000/internal/config"
	"github.com/ermradulsharma/pahadigo-sub000/internal/database"
	"github.com/ermradulsharma/pahadigo-sub000/internal/events"
	"github.com/ermradulsharma/pahadigo-sub000/internal/gateway"
	"github.com/ermradulsharma/pahadigo-sub000/internal/handlers"
	"github.com/ermradulsharma/pahadigo-sub000/internal/logging"
	"github.com/ermradulsharma/pahadigo-sub000/internal/middleware"
	"github.com/ermradulsharma/pahadigo-sub000/internal/notify"
	"github.com/ermradulsharma/pahadigo-sub000/internal/otp"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
	"github.com/ermradulsharma/pahadigo-sub000/internal/routes"
	"github.com/ermradulsharma/pahadigo-sub000/internal/scheduler"
	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
	"github.com/ermradulsharma/pahadigo-sub000/internal/storage"
	"github.com/ermradulsharma/pahadigo-sub000/internal/voucher"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}
	if cfg.VoucherSecret == "" {
		cfg.VoucherSecret = cfg.JWTSecret
	}
	if cfg.IsProduction() && cfg.OTPMasterEnabled {
		slog.Warn("OTP_MASTER_ENABLED is ignored in production")
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.MigrateCore(); err != nil {
		slog.Error("core migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.StdoutHandler(),
		pgLogHandler,
	)))

	// Redis holds OTP codes; the server cannot issue logins without it.
	if err := database.ConnectRedis(cfg); err != nil {
		slog.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	// Audit trail: MongoDB when configured, PostgreSQL otherwise
	var auditSink audit.Sink = audit.NewGormSink(database.DB)
	if cfg.MongoURI != "" {
		client, err := database.ConnectMongo(cfg.MongoURI)
		if err != nil {
			slog.Error("mongo unavailable, audit log stays in postgres", "error", err)
		} else {
			defer func() { _ = client.Disconnect(context.Background()) }()
			sink := audit.NewMongoSink(client.Database(cfg.MongoDatabase).Collection("audit_logs"))
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := sink.EnsureIndexes(ctx); err != nil {
				slog.Warn("mongo audit indexes not created", "error", err)
			}
			cancel()
			auditSink = sink
		}
	}
	auditLogger := audit.NewLogger(auditSink)

	// Domain events (optional)
	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.RabbitMQURL)
		if err != nil {
			slog.Error("rabbitmq unavailable, events disabled", "error", err)
		} else {
			defer amqpPublisher.Close()
			publisher = amqpPublisher
		}
	}

	// Uploaded documents and images
	store, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
	if err != nil {
		slog.Error("upload directory unusable", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewUserRepository(database.DB)
	tokenRepo := repository.NewRefreshTokenRepository(database.DB)
	vendorRepo := repository.NewVendorRepository(database.DB)
	catalogRepo := repository.NewCatalogRepository(database.DB)
	bookingRepo := repository.NewBookingRepository(database.DB)

	// Services
	settingsService := services.NewSettingsService(repository.NewSettingsRepository(database.DB), cfg, auditLogger)
	moderationService := services.NewModerationService()

	otpOpts := otp.Options{TTL: cfg.OTPTTL, DispatchTimeout: cfg.ExternalTimeout}
	if cfg.MasterOTPAllowed() {
		otpOpts.MasterCode = cfg.OTPMasterCode
	}
	otpIssuer := otp.NewIssuer(
		otp.NewRedisStore(database.Redis, cfg.OTPMaxAttempts),
		notify.NewOTPDispatcher(settingsService, notify.NewMailer(), notify.NewMSG91(""), !cfg.IsProduction()),
		otpOpts,
	)
	socialVerifier := services.NewSocialVerifier(
		services.NewJWKSClient(services.GoogleJWKSURL, cfg.ExternalTimeout),
		services.NewJWKSClient(services.AppleJWKSURL, cfg.ExternalTimeout),
		"",
		cfg.ExternalTimeout,
	)
	authService := services.NewAuthService(userRepo, tokenRepo, otpIssuer, socialVerifier, settingsService, cfg)
	userService := services.NewUserService(userRepo, tokenRepo)
	vendorService := services.NewVendorService(vendorRepo, store, auditLogger, publisher, cfg.VendorApprovalRequiresVerifiedDocs)
	catalogService := services.NewCatalogService(catalogRepo, vendorRepo)
	policyService := services.NewPolicyService(repository.NewPolicyRepository(database.DB), auditLogger)
	adminService := services.NewAdminService(repository.NewStatsRepository(database.DB), auditLogger, cfg.Currency)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			slog.Error("admin bootstrap failed", "error", err)
		}
		cancel()
	}

	// Register plugins
	marketingPlugin := marketing.New(database.DB, auditLogger)
	plugins := []apps.Plugin{
		marketingPlugin,
		reference.New(database.DB),
		inquiries.New(database.DB, moderationService, auditLogger),
		reviews.New(database.DB, bookingRepo, moderationService),
	}

	// Migrate plugin models
	for _, p := range plugins {
		if models := p.Models(); len(models) > 0 {
			if err := database.MigrateModels(models); err != nil {
				slog.Error("plugin migration failed", "plugin", p.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("plugin migrated", "plugin", p.ID(), "models", len(models))
		}
	}

	bookingService := services.NewBookingService(services.BookingDeps{
		Bookings:      bookingRepo,
		Catalog:       catalogRepo,
		Users:         userRepo,
		Vendors:       vendorRepo,
		Gateway:       gateway.NewRazorpay("", cfg.ExternalTimeout),
		Credentials:   settingsService,
		Coupons:       marketingPlugin.Coupons(),
		Audit:         auditLogger,
		Events:        publisher,
		Vouchers:      voucher.NewRenderer(cfg.VoucherSecret),
		Currency:      cfg.Currency,
		PaymentWindow: cfg.BookingPaymentWindow,
	})

	// Scheduled jobs (IST)
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		slog.Warn("timezone data missing, scheduling in UTC", "error", err)
		loc = time.UTC
	}
	jobs := scheduler.New(loc)
	for _, job := range scheduler.MarketplaceJobs(bookingService, database.DB, cfg.LogRetentionDays) {
		if err := jobs.Add(job); err != nil {
			slog.Error("job registration failed", "job", job.Name, "error", err)
			os.Exit(1)
		}
	}
	jobs.Start()

	// Handlers
	h := routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		User:    handlers.NewUserHandler(userService),
		Vendor:  handlers.NewVendorHandler(vendorService, catalogService, bookingService),
		Catalog: handlers.NewCatalogHandler(catalogService),
		Booking: handlers.NewBookingHandler(bookingService),
		Admin: handlers.NewAdminHandler(handlers.AdminDeps{
			Admin:    adminService,
			Users:    userService,
			Vendors:  vendorService,
			Bookings: bookingService,
			Settings: settingsService,
			Policies: policyService,
		}),
		Policy: handlers.NewPolicyHandler(policyService),
		Health: handlers.NewHealthHandler(database.Ping, database.PingRedis),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	app.Static("/uploads", cfg.UploadDir)

	// Routes
	routes.Setup(app, cfg, userRepo, h, plugins)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	jobs.Stop(stopCtx)
	cancel()

	otpIssuer.Wait()
	auditLogger.Flush()
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)
	database.Close()

	slog.Info("server stopped")
}
