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

// FleetRepository implements domain.FleetRepository using MongoDB
type FleetRepository struct {
	collection   *mongo.Collection
	db           *mongo.Database
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *cloudevents.EventFactory
}

// NewFleetRepository creates a new FleetRepository
func NewFleetRepository(db *mongo.Database, eventFactory *cloudevents.EventFactory) *FleetRepository {
	repo := &FleetRepository{
		collection:   db.Collection("fleets"),
		db:           db,
		outboxRepo:   outboxMongo.NewOutboxRepository(db),
		eventFactory: eventFactory,
	}
	repo.ensureIndexes(context.Background())

	return repo
}

func (r *FleetRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "fleetId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save persists a fleet with its domain events in a single transaction.
// Member robots are persisted separately through the robot repository; only
// the fleet document and its membership list are written here.
func (r *FleetRepository) Save(ctx context.Context, fleet *domain.Fleet) error {
	fleet.UpdatedAt = time.Now()
	domainEvents := fleet.DrainEvents()

	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		opts := options.Update().SetUpsert(true)
		filter := bson.M{"fleetId": fleet.FleetID}
		update := bson.M{"$set": fleet}

		if _, err := r.collection.UpdateOne(sessCtx, filter, update, opts); err != nil {
			return nil, fmt.Errorf("failed to save fleet: %w", err)
		}

		if len(domainEvents) > 0 {
			outboxEvents := make([]*outbox.OutboxEvent, 0, len(domainEvents))

			for _, event := range domainEvents {
				e, ok := event.(*domain.FleetRebalancedEvent)
				if !ok {
					continue
				}
				cloudEvent := r.eventFactory.CreateEvent(sessCtx, e.EventType(), "fleet/"+e.FleetID, e)

				outboxEvent, err := outbox.NewOutboxEventFromCloudEvent(
					fleet.FleetID,
					"Fleet",
					kafka.Topics.FleetEvents,
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

// FindByID retrieves a fleet by its ID. The caller is responsible for
// loading member robots and attaching them with AttachRobots.
func (r *FleetRepository) FindByID(ctx context.Context, fleetID string) (*domain.Fleet, error) {
	filter := bson.M{"fleetId": fleetID}

	var fleet domain.Fleet
	err := r.collection.FindOne(ctx, filter).Decode(&fleet)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &fleet, nil
}
