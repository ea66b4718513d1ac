package mongodb

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/paklog/fleet-service/internal/domain"
)

// StationRepository implements domain.ChargingStationRepository using MongoDB
type StationRepository struct {
	collection *mongo.Collection
}

// NewStationRepository creates a new StationRepository
func NewStationRepository(db *mongo.Database) *StationRepository {
	repo := &StationRepository{
		collection: db.Collection("charging_stations"),
	}
	repo.ensureIndexes(context.Background())

	return repo
}

func (r *StationRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "stationId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "availableSlots", Value: -1}},
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save persists a charging station
func (r *StationRepository) Save(ctx context.Context, station *domain.ChargingStation) error {
	station.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"stationId": station.StationID}
	update := bson.M{"$set": station}

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save charging station: %w", err)
	}
	return nil
}

// FindByID retrieves a charging station by its ID
func (r *StationRepository) FindByID(ctx context.Context, stationID string) (*domain.ChargingStation, error) {
	filter := bson.M{"stationId": stationID}

	var station domain.ChargingStation
	err := r.collection.FindOne(ctx, filter).Decode(&station)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &station, nil
}

// FindAll retrieves all charging stations
func (r *StationRepository) FindAll(ctx context.Context) ([]*domain.ChargingStation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "stationId", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stations []*domain.ChargingStation
	if err := cursor.All(ctx, &stations); err != nil {
		return nil, err
	}

	return stations, nil
}

// FindNearest retrieves the station closest to the given position. Ties are
// broken by station ID since FindAll returns stations in ID order.
func (r *StationRepository) FindNearest(ctx context.Context, position domain.RobotPosition) (*domain.ChargingStation, error) {
	stations, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var nearest *domain.ChargingStation
	best := math.MaxFloat64
	for _, station := range stations {
		distance := station.Location.DistanceTo(position)
		if distance < best {
			best = distance
			nearest = station
		}
	}

	return nearest, nil
}
