package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "toolrent-backend/internal/api/grpc"
	httpapi "toolrent-backend/internal/api/http"
	"toolrent-backend/internal/config"
	"toolrent-backend/internal/jobs"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/payment"
	"toolrent-backend/internal/reliability/circuitbreaker"
	"toolrent-backend/internal/repository"
	"toolrent-backend/internal/repository/memory"
	"toolrent-backend/internal/repository/postgres"
	"toolrent-backend/internal/scheduler"
	"toolrent-backend/internal/security"
	"toolrent-backend/internal/service"

	"github.com/redis/go-redis/v9"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	envFile := flag.String("env", ".env", "Optional .env file loaded before the configuration")
	flag.Parse()

	if err := config.LoadEnv(*envFile); err != nil {
		log.Fatalf("Failed to load env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Toolrent Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Repositories
	var (
		toolRepo  repository.ToolRepository
		rentRepo  repository.RentRepository
		orderRepo repository.OrderRepository
		checks    []grpcapi.Check
	)
	switch cfg.Storage.Type {
	case config.StorageTypeMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		toolRepo, rentRepo, orderRepo = store.ToolRepository, store.RentRepository, store.OrderRepository
	default:
		logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
		db := openDatabase(ctx, cfg)
		defer db.Close()
		store := postgres.NewStore(db)
		toolRepo, rentRepo, orderRepo = store.ToolRepository, store.RentRepository, store.OrderRepository
		checks = append(checks, grpcapi.Check{Name: "postgres", Probe: db.PingContext})
	}

	// Capture lock
	var locker payment.CaptureLocker
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Invalid redis url: %v", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		locker = payment.NewRedisLocker(rdb)
		checks = append(checks, grpcapi.Check{Name: "redis", Probe: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		logger.Info("Using redis capture lock", "addr", opts.Addr)
	} else {
		logger.Warn("No redis configured, capture lock is local to this process")
		locker = payment.NewLocalLocker()
	}

	// Payment provider
	paypalGateway, err := payment.NewPayPalGateway(payment.PayPalConfig{
		ClientID: cfg.PayPal.ClientID,
		Secret:   cfg.PayPal.Secret,
		APIBase:  cfg.PayPal.APIBase,
	})
	if err != nil {
		logger.Error("Failed to initialize payment gateway", "error", err)
		log.Fatalf("Failed to initialize payment gateway: %v", err)
	}
	gateway := payment.WithCircuitBreaker(paypalGateway, circuitbreaker.New(5, 2, 30*time.Second))

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())

	// Initialize Services
	toolSvc := service.NewToolService(toolRepo)
	rentalSvc := service.NewRentalService(rentRepo, toolRepo, service.NewBookingValidator(time.Now))
	orchestrator := service.NewCaptureOrchestrator(rentRepo, nil)
	paymentSvc := service.NewPaymentService(gateway, locker, orderRepo, rentRepo, toolRepo, orchestrator,
		service.PaymentURLs{ReturnURL: cfg.PaymentReturnURL(), CancelURL: cfg.PayPal.CancelURL},
		cfg.CaptureLockTTL())
	finishSvc := service.NewFinishService(rentRepo, time.Now)

	// The standalone cronjob cannot see an in-memory store, so sweep in-process instead
	if cfg.Storage.Type == config.StorageTypeMemory {
		sched, err := scheduler.NewScheduler(jobs.NewJobRunner(&jobs.Services{Finish: finishSvc}, cfg))
		if err != nil {
			log.Fatalf("Failed to create scheduler: %v", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// Set up HTTP server
	router := httpapi.NewRouter(httpapi.Handlers{
		Tools:    httpapi.NewToolHandler(toolSvc),
		Rents:    httpapi.NewRentHandler(rentalSvc),
		Payments: httpapi.NewPaymentHandler(paymentSvc, cfg.PayPal.Currency),
	}, tokenManager)

	httpServer := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}
	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Set up gRPC health server
	var grpcStop func()
	if addr := cfg.GetGRPCAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", addr)
			log.Fatalf("Failed to listen: %v", err)
		}
		grpcServer, healthServer := grpcapi.NewServer()
		go grpcapi.NewHealthUpdater(healthServer, 10*time.Second, checks...).Run(ctx)
		go func() {
			logger.Info("gRPC health server listening", "address", addr)
			if err := grpcServer.Serve(lis); err != nil {
				errCh <- err
			}
		}()
		grpcStop = grpcServer.GracefulStop
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		logger.Error("Server error", "error", err)
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	if grpcStop != nil {
		grpcStop()
	}
	logger.Info("Toolrent Backend stopped. Goodbye!")
}

func openDatabase(ctx context.Context, cfg *config.Config) *sql.DB {
	logger.Debug("Connecting to database...", "host", cfg.Database.Host, "database", cfg.Database.Database)
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), postgres.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime(),
	})
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
		logger.Info("Database schema applied")
	}
	return db
}
