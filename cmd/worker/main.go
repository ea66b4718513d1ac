package main

import (
	"context"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/paklog/fleet-service/internal/activities"
	"github.com/paklog/fleet-service/internal/application"
	mongoRepo "github.com/paklog/fleet-service/internal/infrastructure/mongodb"
	"github.com/paklog/fleet-service/internal/workflows"
	"github.com/paklog/fleet-service/pkg/cloudevents"
	"github.com/paklog/fleet-service/pkg/kafka"
	"github.com/paklog/fleet-service/pkg/logging"
	"github.com/paklog/fleet-service/pkg/metrics"
	"github.com/paklog/fleet-service/pkg/outbox"
)

const serviceName = "fleet-worker"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting Fleet Temporal Worker")

	mongoURI := getEnv("MONGODB_URI", "mongodb://localhost:27017")
	dbName := getEnv("MONGODB_DATABASE", "fleet_db")
	temporalHost := getEnv("TEMPORAL_HOST", "localhost:7233")
	temporalNamespace := getEnv("TEMPORAL_NAMESPACE", "default")
	pathPlannerURL := getEnv("PATH_PLANNER_URL", "http://path-planner:8090")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(mongoURI).
		SetMinPoolSize(5).
		SetMaxPoolSize(50)

	mongoClient, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.WithError(err).Error("Failed to disconnect from MongoDB")
		}
	}()

	if err := mongoClient.Ping(ctx, nil); err != nil {
		logger.WithError(err).Error("Failed to ping MongoDB")
		os.Exit(1)
	}
	logger.Info("Connected to MongoDB", "database", dbName)

	db := mongoClient.Database(dbName)

	// Metrics registry for activity counters
	m := metrics.New(metrics.DefaultConfig(serviceName))

	// Kafka producer and outbox publisher so domain events written by
	// activities still reach their topics
	kafkaConfig := kafka.DefaultConfig()
	kafkaConfig.Brokers = []string{getEnv("KAFKA_BROKERS", "localhost:9092")}
	producer := kafka.NewProducer(kafkaConfig)
	defer producer.Close()

	eventFactory := cloudevents.NewEventFactory(cloudevents.SourceFleetService)

	robotRepo := mongoRepo.NewRobotRepository(db, eventFactory)
	taskRepo := mongoRepo.NewTaskRepository(db)
	stationRepo := mongoRepo.NewStationRepository(db)
	fleetRepo := mongoRepo.NewFleetRepository(db, eventFactory)

	outboxPublisher := outbox.NewPublisher(
		robotRepo.GetOutboxRepository(),
		producer,
		logger,
		m,
		outbox.DefaultPublisherConfig(),
	)
	if err := outboxPublisher.Start(context.Background()); err != nil {
		logger.WithError(err).Error("Failed to start outbox publisher")
		os.Exit(1)
	}
	defer outboxPublisher.Stop()

	plannerClient := application.NewPathPlanningClient(pathPlannerURL, logger)

	fleetService := application.NewFleetApplicationService(
		robotRepo,
		taskRepo,
		stationRepo,
		fleetRepo,
		plannerClient,
		logger,
		m,
	)

	fleetActivities := activities.NewFleetActivities(fleetService, m)

	temporalClient, err := client.Dial(client.Options{
		HostPort:  temporalHost,
		Namespace: temporalNamespace,
	})
	if err != nil {
		logger.WithError(err).Error("Failed to create Temporal client")
		os.Exit(1)
	}
	defer temporalClient.Close()

	logger.Info("Connected to Temporal", "host", temporalHost, "namespace", temporalNamespace)

	w := worker.New(temporalClient, workflows.FleetTaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.TaskAssignmentWorkflow)
	w.RegisterWorkflow(workflows.ChargingWorkflow)

	w.RegisterActivity(fleetActivities.SelectOptimalRobot)
	w.RegisterActivity(fleetActivities.AssignTaskToRobot)
	w.RegisterActivity(fleetActivities.EnqueueRobotForCharging)
	w.RegisterActivity(fleetActivities.AdmitRobotForCharging)
	w.RegisterActivity(fleetActivities.ReleaseRobotFromCharging)

	logger.Info("Starting fleet worker", "taskQueue", workflows.FleetTaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.WithError(err).Error("Failed to start worker")
		os.Exit(1)
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
