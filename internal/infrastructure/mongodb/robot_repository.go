package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/paklog/fleet-service/internal/domain"
	"github.com/paklog/fleet-service/pkg/cloudevents"
	"github.com/paklog/fleet-service/pkg/kafka"
	"github.com/paklog/fleet-service/pkg/outbox"
	outboxMongo "github.com/paklog/fleet-service/pkg/outbox/mongodb"
)

// RobotRepository implements domain.RobotRepository using MongoDB
type RobotRepository struct {
	collection   *mongo.Collection
	db           *mongo.Database
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *cloudevents.EventFactory
}

// NewRobotRepository creates a new RobotRepository
func NewRobotRepository(db *mongo.Database, eventFactory *cloudevents.EventFactory) *RobotRepository {
	collection := db.Collection("robots")
	outboxRepo := outboxMongo.NewOutboxRepository(db)

	repo := &RobotRepository{
		collection:   collection,
		db:           db,
		outboxRepo:   outboxRepo,
		eventFactory: eventFactory,
	}
	repo.ensureIndexes(context.Background())
	_ = outboxRepo.EnsureIndexes(context.Background())

	return repo
}

func (r *RobotRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "robotId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "capabilities", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "lastHeartbeat", Value: 1}},
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save persists a robot with its domain events in a single transaction
func (r *RobotRepository) Save(ctx context.Context, robot *domain.Robot) error {
	robot.UpdatedAt = time.Now()
	domainEvents := robot.DrainEvents()

	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		opts := options.Update().SetUpsert(true)
		filter := bson.M{"robotId": robot.RobotID}
		update := bson.M{"$set": robot}

		if _, err := r.collection.UpdateOne(sessCtx, filter, update, opts); err != nil {
			return nil, fmt.Errorf("failed to save robot: %w", err)
		}

		if len(domainEvents) > 0 {
			outboxEvents := make([]*outbox.OutboxEvent, 0, len(domainEvents))

			for _, event := range domainEvents {
				var cloudEvent *cloudevents.FleetCloudEvent
				switch e := event.(type) {
				case *domain.RobotRegisteredEvent:
					cloudEvent = r.eventFactory.CreateEvent(sessCtx, e.EventType(), "robot/"+e.RobotID, e)
				case *domain.RobotTaskAssignedEvent:
					cloudEvent = r.eventFactory.CreateEvent(sessCtx, e.EventType(), "robot/"+e.RobotID, e)
				case *domain.RobotTaskStartedEvent:
					cloudEvent = r.eventFactory.CreateEvent(sessCtx, e.EventType(), "robot/"+e.RobotID, e)
				case *domain.RobotTaskCompletedEvent:
					cloudEvent = r.eventFactory.CreateEvent(sessCtx, e.EventType(), "robot/"+e.RobotID, e)
				case *domain.RobotTaskFailedEvent:
					cloudEvent = r.eventFactory.CreateEvent(sessCtx, e.EventType(), "robot/"+e.RobotID, e)
				case *domain.BatteryLowEvent:
					cloudEvent = r.eventFactory.CreateEvent(sessCtx, e.EventType(), "robot/"+e.RobotID, e)
				case *domain.ChargingStartedEvent:
					cloudEvent = r.eventFactory.CreateEvent(sessCtx, e.EventType(), "robot/"+e.RobotID, e)
				case *domain.ChargingCompletedEvent:
					cloudEvent = r.eventFactory.CreateEvent(sessCtx, e.EventType(), "robot/"+e.RobotID, e)
				case *domain.RobotMaintenanceRequiredEvent:
					cloudEvent = r.eventFactory.CreateEvent(sessCtx, e.EventType(), "robot/"+e.RobotID, e)
				default:
					continue
				}
				cloudEvent.RobotID = robot.RobotID

				outboxEvent, err := outbox.NewOutboxEventFromCloudEvent(
					robot.RobotID,
					"Robot",
					kafka.Topics.RobotEvents,
					cloudEvent,
				)
				if err != nil {
					return nil, fmt.Errorf("failed to create outbox event: %w", err)
				}

				outboxEvents = append(outboxEvents, outboxEvent)
			}

			if len(outboxEvents) > 0 {
				if err := r.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
					return nil, fmt.Errorf("failed to save outbox events: %w", err)
				}
			}
		}

		return nil, nil
	})

	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// FindByID retrieves a robot by its ID
func (r *RobotRepository) FindByID(ctx context.Context, robotID string) (*domain.Robot, error) {
	filter := bson.M{"robotId": robotID}

	var robot domain.Robot
	err := r.collection.FindOne(ctx, filter).Decode(&robot)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &robot, nil
}

// FindAll retrieves all robots
func (r *RobotRepository) FindAll(ctx context.Context) ([]*domain.Robot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "robotId", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var robots []*domain.Robot
	if err := cursor.All(ctx, &robots); err != nil {
		return nil, err
	}

	return robots, nil
}

// FindByStatus retrieves robots by lifecycle status
func (r *RobotRepository) FindByStatus(ctx context.Context, status domain.RobotStatus) ([]*domain.Robot, error) {
	filter := bson.M{"status": status}
	opts := options.Find().SetSort(bson.D{{Key: "robotId", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var robots []*domain.Robot
	if err := cursor.All(ctx, &robots); err != nil {
		return nil, err
	}

	return robots, nil
}

// FindByCapability retrieves robots that carry a capability
func (r *RobotRepository) FindByCapability(ctx context.Context, capability domain.RobotCapability) ([]*domain.Robot, error) {
	filter := bson.M{"capabilities": capability}
	opts := options.Find().SetSort(bson.D{{Key: "robotId", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var robots []*domain.Robot
	if err := cursor.All(ctx, &robots); err != nil {
		return nil, err
	}

	return robots, nil
}

// CountByStatus counts robots by lifecycle status
func (r *RobotRepository) CountByStatus(ctx context.Context, status domain.RobotStatus) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": status})
}

// GetOutboxRepository returns the outbox repository backing this service
func (r *RobotRepository) GetOutboxRepository() outbox.Repository {
	return r.outboxRepo
}
