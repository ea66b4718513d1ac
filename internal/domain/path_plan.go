package domain

import (
	"context"
	"time"
)

// PathPlan is a planned route through the warehouse
type PathPlan struct {
	Waypoints            []RobotPosition `bson:"waypoints" json:"waypoints"`
	TotalDistance        float64         `bson:"totalDistance" json:"totalDistance"`
	EstimatedTimeSeconds float64         `bson:"estimatedTimeSeconds" json:"estimatedTimeSeconds"`
	PlannedAt            time.Time       `bson:"plannedAt" json:"plannedAt"`
}

// NewPathPlan creates a validated path plan
func NewPathPlan(waypoints []RobotPosition, totalDistance, estimatedTimeSeconds float64) (*PathPlan, error) {
	if len(waypoints) == 0 {
		return nil, NewInvalidArgument("path plan requires at least one waypoint")
	}
	if totalDistance < 0 {
		return nil, NewInvalidArgument("path total distance must not be negative, got %.2f", totalDistance)
	}
	if estimatedTimeSeconds < 0 {
		return nil, NewInvalidArgument("path estimated time must not be negative, got %.2f", estimatedTimeSeconds)
	}
	return &PathPlan{
		Waypoints:            waypoints,
		TotalDistance:        totalDistance,
		EstimatedTimeSeconds: estimatedTimeSeconds,
		PlannedAt:            time.Now(),
	}, nil
}

// Destination returns the final waypoint of the plan
func (p *PathPlan) Destination() RobotPosition {
	return p.Waypoints[len(p.Waypoints)-1]
}

// PassesThrough reports whether any waypoint is within the safety margin of
// the given position.
func (p *PathPlan) PassesThrough(position RobotPosition, safetyMargin float64) bool {
	for _, wp := range p.Waypoints {
		if wp.IsTooCloseTo(position, safetyMargin) {
			return true
		}
	}
	return false
}

// PathPlanningService computes and validates routes. Implementations are
// external to the fleet core; callers must tolerate failure and fall back to
// a degraded plan rather than abort task handling.
type PathPlanningService interface {
	CalculatePath(ctx context.Context, start, goal RobotPosition, blocked []RobotPosition, zones []TrafficZone) (*PathPlan, error)
	ValidatePath(ctx context.Context, plan *PathPlan, occupied []RobotPosition) (bool, error)
	RecalculatePath(ctx context.Context, current *PathPlan, position RobotPosition, avoid []RobotPosition) (*PathPlan, error)
}
