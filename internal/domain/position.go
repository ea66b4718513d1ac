package domain

import "math"

// Warehouse coordinate bounds in meters
const (
	MinCoordinate = 0.0
	MaxCoordinate = 10000.0
)

// RobotPosition is an immutable position within the warehouse grid.
// Heading is in degrees, [0, 360).
type RobotPosition struct {
	X       float64 `bson:"x" json:"x"`
	Y       float64 `bson:"y" json:"y"`
	Heading float64 `bson:"heading" json:"heading"`
}

// NewRobotPosition creates a validated position
func NewRobotPosition(x, y, heading float64) (RobotPosition, error) {
	if x < MinCoordinate || x > MaxCoordinate {
		return RobotPosition{}, NewInvalidArgument("x coordinate %.2f out of range [%.0f, %.0f]", x, MinCoordinate, MaxCoordinate)
	}
	if y < MinCoordinate || y > MaxCoordinate {
		return RobotPosition{}, NewInvalidArgument("y coordinate %.2f out of range [%.0f, %.0f]", y, MinCoordinate, MaxCoordinate)
	}
	if heading < 0 || heading >= 360 {
		return RobotPosition{}, NewInvalidArgument("heading %.2f out of range [0, 360)", heading)
	}
	return RobotPosition{X: x, Y: y, Heading: heading}, nil
}

// DistanceTo returns the Euclidean distance to another position
func (p RobotPosition) DistanceTo(other RobotPosition) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// IsTooCloseTo reports whether another position is within the safety margin
func (p RobotPosition) IsTooCloseTo(other RobotPosition, safetyMargin float64) bool {
	return p.DistanceTo(other) < safetyMargin
}
