package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	api "toolshare-backend/internal/api/grpc"
	"toolshare-backend/internal/api/grpc/interceptor"
	httpapi "toolshare-backend/internal/api/http"
	"toolshare-backend/internal/broker/kafka"
	"toolshare-backend/internal/categorizer"
	"toolshare-backend/internal/config"
	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"
	"toolshare-backend/internal/repository/memory"
	"toolshare-backend/internal/repository/postgres"
	"toolshare-backend/internal/security"
	"toolshare-backend/internal/service"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
)

// defaultCategories seed the in-memory store so a local server is usable out of the box.
var defaultCategories = []domain.Category{
	{ID: 1, Name: "Hand Tools", DefaultRiskTier: 1, RiskDailyFeeCents: 150, DeductibleCents: 2500,
		Keywords: []string{"hammer", "wrench", "rake", "shovel", "ladder", "clamp"}},
	{ID: 2, Name: "Power Tools", DefaultRiskTier: 2, RiskDailyFeeCents: 400, DeductibleCents: 7500,
		Keywords: []string{"drill", "saw", "sander", "grinder", "cordless", "nailer"}},
	{ID: 3, Name: "Heavy Equipment", DefaultRiskTier: 3, RiskDailyFeeCents: 900, DeductibleCents: 25000,
		Keywords: []string{"excavator", "generator", "tiller", "compactor", "lift", "trailer"}},
}

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting ToolShare booking backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetServerAddress(), "http_address", cfg.GetHTTPAddress())

	ctx := context.Background()

	// Initialize Repositories
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize store", "error", err)
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer closeStore()

	// Category suggestion
	categories, err := store.Categories.List(ctx)
	if err != nil {
		logger.Error("Failed to load categories", "error", err)
		log.Fatalf("Failed to load categories: %v", err)
	}
	suggester := categorizer.NewKeywordSuggester(categories, cfg.Booking.SuggestMinConfidence)

	// Initialize event sinks
	sinks := service.MultiSink{service.NewMessagingService(store.Chats)}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, nil)
		if err != nil {
			logger.Error("Failed to connect to kafka", "error", err, "brokers", cfg.Kafka.Brokers)
			log.Fatalf("Failed to connect to kafka: %v", err)
		}
		publisher := kafka.NewPublisher(producer, cfg.Kafka.Topic)
		defer publisher.Close()
		sinks = append(sinks, publisher)
		logger.Info("Publishing booking events to kafka", "topic", cfg.Kafka.Topic)
	}
	if cfg.SendGrid.Enabled {
		sinks = append(sinks, service.NewEmailService(store.Users, cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName))
		logger.Info("Email notifications enabled", "from", cfg.SendGrid.FromEmail)
	}

	// Initialize Services
	bookingSvc := service.NewBookingService(
		store.Listings,
		store.Rentals,
		store.Blackouts,
		store.Users,
		store.Tx,
		sinks,
		cfg.Booking.PlatformDepositCents,
	)
	listingSvc := service.NewListingService(store.Listings, store.Categories, suggester)
	availabilitySvc := service.NewAvailabilityService(store.Listings, store.Blackouts, store.Tx)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	authInterceptor := interceptor.NewAuthInterceptor(tokenManager)

	// Set up gRPC server
	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	s := grpc.NewServer(
		grpc.UnaryInterceptor(authInterceptor.Unary()),
	)

	// Register services
	api.RegisterBookingServer(s, api.NewBookingHandler(bookingSvc))
	api.RegisterListingServer(s, api.NewListingHandler(listingSvc, availabilitySvc))

	// Register reflection service for grpcurl
	reflection.Register(s)

	// Set up HTTP server for the query API
	var httpServer *http.Server
	if cfg.Server.HTTPPort > 0 {
		router := mux.NewRouter()
		httpapi.RegisterQueryRoutes(router, httpapi.NewQueryHandler(bookingSvc, listingSvc, availabilitySvc, cfg.Booking.AvailabilityDays), tokenManager)
		httpServer = &http.Server{Addr: cfg.GetHTTPAddress(), Handler: router, ReadHeaderTimeout: 10 * time.Second}

		go func() {
			logger.Info("HTTP query API listening", "address", httpServer.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", "error", err)
			}
		}()
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		logger.Info("Shutting down...")
		if httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		}
		s.GracefulStop()
	}()

	logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
	if err := s.Serve(lis); err != nil {
		logger.Error("Failed to serve gRPC", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}

// openStore connects the configured repository backend.
func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, func(), error) {
	if cfg.Store.Type == config.StoreTypeMemory {
		logger.Warn("Using in-memory store; data is lost on restart")
		db := memory.New()
		for _, c := range defaultCategories {
			db.AddCategory(c)
		}
		return db.Store(), func() {}, nil
	}

	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
		logger.Info("Database schema applied")
	}
	return postgres.NewStore(db), func() { db.Close() }, nil
}
