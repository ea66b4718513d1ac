package domain

import "context"

// RobotRepository persists Robot aggregates. Save must also hand the drained
// domain events to the outbound event store in the same transaction.
// Finders return (nil, nil) when the aggregate does not exist.
type RobotRepository interface {
	Save(ctx context.Context, robot *Robot) error
	FindByID(ctx context.Context, robotID string) (*Robot, error)
	FindAll(ctx context.Context) ([]*Robot, error)
	FindByStatus(ctx context.Context, status RobotStatus) ([]*Robot, error)
	FindByCapability(ctx context.Context, capability RobotCapability) ([]*Robot, error)
	CountByStatus(ctx context.Context, status RobotStatus) (int64, error)
}

// TaskRepository persists RobotTask aggregates
type TaskRepository interface {
	Save(ctx context.Context, task *RobotTask) error
	FindByID(ctx context.Context, taskID string) (*RobotTask, error)
	FindByStatus(ctx context.Context, status TaskStatus) ([]*RobotTask, error)
	FindByRobotID(ctx context.Context, robotID string) ([]*RobotTask, error)
	FindPending(ctx context.Context, limit int) ([]*RobotTask, error)
}

// ChargingStationRepository persists ChargingStation aggregates
type ChargingStationRepository interface {
	Save(ctx context.Context, station *ChargingStation) error
	FindByID(ctx context.Context, stationID string) (*ChargingStation, error)
	FindAll(ctx context.Context) ([]*ChargingStation, error)
	FindNearest(ctx context.Context, position RobotPosition) (*ChargingStation, error)
}

// FleetRepository persists Fleet aggregates
type FleetRepository interface {
	Save(ctx context.Context, fleet *Fleet) error
	FindByID(ctx context.Context, fleetID string) (*Fleet, error)
}
