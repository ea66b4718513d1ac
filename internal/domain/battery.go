package domain

// BatteryHealthStatus classifies a battery percentage
type BatteryHealthStatus string

const (
	BatteryCritical BatteryHealthStatus = "critical"
	BatteryLow      BatteryHealthStatus = "low"
	BatteryMarginal BatteryHealthStatus = "marginal"
	BatteryNormal   BatteryHealthStatus = "normal"
	BatteryFull     BatteryHealthStatus = "full"
)

// Battery policy thresholds (percent)
const (
	emergencyChargeThreshold = 10
	chargeThreshold          = 20
	marginalThreshold        = 30
	fullThreshold            = 80
	taskMinimumCharge        = 30
	travelBufferCharge       = 5
)

// BatteryLevel is an immutable battery charge percentage [0, 100]
type BatteryLevel struct {
	Percentage int `bson:"percentage" json:"percentage"`
}

// NewBatteryLevel creates a validated battery level
func NewBatteryLevel(percentage int) (BatteryLevel, error) {
	if percentage < 0 || percentage > 100 {
		return BatteryLevel{}, NewInvalidArgument("battery percentage %d out of range [0, 100]", percentage)
	}
	return BatteryLevel{Percentage: percentage}, nil
}

// FullBattery returns a battery at 100%
func FullBattery() BatteryLevel {
	return BatteryLevel{Percentage: 100}
}

// HealthStatus derives the health classification from the percentage
func (b BatteryLevel) HealthStatus() BatteryHealthStatus {
	switch {
	case b.Percentage <= emergencyChargeThreshold:
		return BatteryCritical
	case b.Percentage <= chargeThreshold:
		return BatteryLow
	case b.Percentage < marginalThreshold:
		return BatteryMarginal
	case b.Percentage < fullThreshold:
		return BatteryNormal
	default:
		return BatteryFull
	}
}

// IsSufficientForTask reports whether the charge allows accepting a new task
func (b BatteryLevel) IsSufficientForTask() bool {
	return b.Percentage > taskMinimumCharge
}

// NeedsCharging reports whether the robot should be routed to a charger
func (b BatteryLevel) NeedsCharging() bool {
	return b.Percentage <= chargeThreshold
}

// NeedsEmergencyCharging reports whether the charge is critically low
func (b BatteryLevel) NeedsEmergencyCharging() bool {
	return b.Percentage <= emergencyChargeThreshold
}

// HasTravelBuffer reports whether enough charge remains to reach a charger
func (b BatteryLevel) HasTravelBuffer() bool {
	return b.Percentage > travelBufferCharge
}
