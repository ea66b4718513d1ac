package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	fleethttp "github.com/paklog/fleet-service/internal/api/http"
	"github.com/paklog/fleet-service/internal/application"
	mongoRepo "github.com/paklog/fleet-service/internal/infrastructure/mongodb"
	"github.com/paklog/fleet-service/pkg/cloudevents"
	"github.com/paklog/fleet-service/pkg/kafka"
	"github.com/paklog/fleet-service/pkg/logging"
	"github.com/paklog/fleet-service/pkg/metrics"
	"github.com/paklog/fleet-service/pkg/middleware"
	"github.com/paklog/fleet-service/pkg/outbox"
	"github.com/paklog/fleet-service/pkg/tracing"
)

const serviceName = "fleet-service"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting Fleet Service API")

	config := loadConfig()
	ctx := context.Background()

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		// Continue without tracing
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Initialize Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// Connect to MongoDB
	connectCtx, cancelConnect := context.WithTimeout(ctx, 10*time.Second)
	defer cancelConnect()

	clientOptions := options.Client().
		ApplyURI(config.MongoURI).
		SetMinPoolSize(10).
		SetMaxPoolSize(100)

	mongoClient, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.WithError(err).Error("Failed to disconnect from MongoDB")
		}
	}()

	if err := mongoClient.Ping(connectCtx, nil); err != nil {
		logger.WithError(err).Error("Failed to ping MongoDB")
		os.Exit(1)
	}
	logger.Info("Connected to MongoDB", "database", config.MongoDatabase)

	db := mongoClient.Database(config.MongoDatabase)

	// Kafka producer and CloudEvents factory
	producer := kafka.NewProducer(config.Kafka)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	eventFactory := cloudevents.NewEventFactory(cloudevents.SourceFleetService)

	// Repositories
	robotRepo := mongoRepo.NewRobotRepository(db, eventFactory)
	taskRepo := mongoRepo.NewTaskRepository(db)
	stationRepo := mongoRepo.NewStationRepository(db)
	fleetRepo := mongoRepo.NewFleetRepository(db, eventFactory)

	// Outbox publisher drains the robot repo's outbox (shared collection)
	outboxPublisher := outbox.NewPublisher(
		robotRepo.GetOutboxRepository(),
		producer,
		logger,
		m,
		&outbox.PublisherConfig{
			PollInterval: 1 * time.Second,
			BatchSize:    100,
		},
	)
	if err := outboxPublisher.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start outbox publisher")
		os.Exit(1)
	}
	defer outboxPublisher.Stop()
	logger.Info("Outbox publisher started")

	// Path planner client with circuit breaker
	plannerClient := application.NewPathPlanningClient(config.PathPlannerURL, logger)

	// Application service
	fleetService := application.NewFleetApplicationService(
		robotRepo,
		taskRepo,
		stationRepo,
		fleetRepo,
		plannerClient,
		logger,
		m,
	)

	// HTTP layer
	handlers := fleethttp.NewHandlers(fleetService, logger)

	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))

	fleethttp.SetupRoutes(router, handlers, m, func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return mongoClient.Ping(pingCtx, nil)
	})

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr     string
	MongoURI       string
	MongoDatabase  string
	Kafka          *kafka.Config
	PathPlannerURL string
}

func loadConfig() *Config {
	kafkaConfig := kafka.DefaultConfig()
	kafkaConfig.Brokers = []string{getEnv("KAFKA_BROKERS", "localhost:9092")}

	return &Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":8080"),
		MongoURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "fleet_db"),
		Kafka:          kafkaConfig,
		PathPlannerURL: getEnv("PATH_PLANNER_URL", "http://path-planner:8090"),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
