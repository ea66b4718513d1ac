package domain

// TrafficZoneType classifies a zone's traffic rules
type TrafficZoneType string

const (
	ZoneOpen         TrafficZoneType = "open"
	ZoneRestricted   TrafficZoneType = "restricted"
	ZoneNoGo         TrafficZoneType = "no_go"
	ZoneChargingArea TrafficZoneType = "charging_area"
	ZoneLoadingDock  TrafficZoneType = "loading_dock"
)

// TrafficZone is a circular region of the warehouse floor with traffic rules
// applied by the path planner.
type TrafficZone struct {
	ZoneID    string          `bson:"zoneId" json:"zoneId"`
	Center    RobotPosition   `bson:"center" json:"center"`
	Radius    float64         `bson:"radius" json:"radius"`
	Type      TrafficZoneType `bson:"type" json:"type"`
	MaxRobots int             `bson:"maxRobots" json:"maxRobots"`
	Active    bool            `bson:"active" json:"active"`
}

// NewTrafficZone creates a validated traffic zone
func NewTrafficZone(zoneID string, center RobotPosition, radius float64, zoneType TrafficZoneType, maxRobots int) (TrafficZone, error) {
	if zoneID == "" {
		return TrafficZone{}, NewInvalidArgument("zone id is required")
	}
	if radius <= 0 {
		return TrafficZone{}, NewInvalidArgument("zone radius must be positive, got %.2f", radius)
	}
	if maxRobots < 0 {
		return TrafficZone{}, NewInvalidArgument("zone max robots must not be negative, got %d", maxRobots)
	}
	return TrafficZone{
		ZoneID:    zoneID,
		Center:    center,
		Radius:    radius,
		Type:      zoneType,
		MaxRobots: maxRobots,
		Active:    true,
	}, nil
}

// Contains reports whether a position lies inside the zone
func (z TrafficZone) Contains(position RobotPosition) bool {
	return z.Center.DistanceTo(position) <= z.Radius
}

// IsTraversable reports whether robots may enter the zone at all
func (z TrafficZone) IsTraversable() bool {
	return !z.Active || z.Type != ZoneNoGo
}
