package application

import "time"

// PositionDTO is the transport representation of a position
type PositionDTO struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// RobotDTO is the transport representation of a robot
type RobotDTO struct {
	RobotID       string             `json:"robotId"`
	Model         string             `json:"model"`
	Status        string             `json:"status"`
	Position      PositionDTO        `json:"position"`
	Battery       int                `json:"battery"`
	BatteryStatus string             `json:"batteryStatus"`
	CurrentTaskID *string            `json:"currentTaskId,omitempty"`
	Capabilities  []string           `json:"capabilities"`
	HealthMetrics map[string]float64 `json:"healthMetrics,omitempty"`
	Available     bool               `json:"available"`
	LastHeartbeat time.Time          `json:"lastHeartbeat"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// TaskDTO is the transport representation of a task
type TaskDTO struct {
	TaskID             string                 `json:"taskId"`
	RobotID            *string                `json:"robotId,omitempty"`
	Type               string                 `json:"type"`
	Priority           string                 `json:"priority"`
	Origin             PositionDTO            `json:"origin"`
	Destination        PositionDTO            `json:"destination"`
	RequiredCapability string                 `json:"requiredCapability"`
	Payload            map[string]interface{} `json:"payload,omitempty"`
	Status             string                 `json:"status"`
	FailureReason      *string                `json:"failureReason,omitempty"`
	CreatedAt          time.Time              `json:"createdAt"`
	AssignedAt         *time.Time             `json:"assignedAt,omitempty"`
	StartedAt          *time.Time             `json:"startedAt,omitempty"`
	CompletedAt        *time.Time             `json:"completedAt,omitempty"`
}

// StationDTO is the transport representation of a charging station
type StationDTO struct {
	StationID       string      `json:"stationId"`
	Location        PositionDTO `json:"location"`
	Capacity        int         `json:"capacity"`
	AvailableSlots  int         `json:"availableSlots"`
	Queue           []string    `json:"queue"`
	ChargingRobots  []string    `json:"chargingRobots"`
	UtilizationRate float64     `json:"utilizationRate"`
}

// QueuePositionDTO reports a robot's standing at a station
type QueuePositionDTO struct {
	StationID            string `json:"stationId"`
	RobotID              string `json:"robotId"`
	Position             int    `json:"position"`
	EstimatedWaitMinutes int    `json:"estimatedWaitMinutes"`
}

// ReleaseChargingResultDTO reports the outcome of releasing a charging slot
type ReleaseChargingResultDTO struct {
	StationID       string `json:"stationId"`
	ReleasedRobotID string `json:"releasedRobotId"`
	PromotedRobotID string `json:"promotedRobotId,omitempty"`
}

// FleetStatusDTO is a point-in-time summary of the fleet
type FleetStatusDTO struct {
	FleetID          string     `json:"fleetId"`
	TotalRobots      int        `json:"totalRobots"`
	IdleRobots       int        `json:"idleRobots"`
	ExecutingRobots  int        `json:"executingRobots"`
	ChargingRobots   int        `json:"chargingRobots"`
	MaintenanceCount int        `json:"maintenanceCount"`
	ErrorCount       int        `json:"errorCount"`
	OfflineCount     int        `json:"offlineCount"`
	UtilizationRate  float64    `json:"utilizationRate"`
	Healthy          bool       `json:"healthy"`
	NeedsRebalancing bool       `json:"needsRebalancing"`
	LastRebalanceAt  *time.Time `json:"lastRebalanceAt,omitempty"`
}

// RebalanceResultDTO reports the outcome of a rebalance request
type RebalanceResultDTO struct {
	FleetID    string         `json:"fleetId"`
	Rebalanced bool           `json:"rebalanced"`
	Status     FleetStatusDTO `json:"status"`
}

// PathPlanDTO is the transport representation of a path plan
type PathPlanDTO struct {
	Waypoints            []PositionDTO `json:"waypoints"`
	TotalDistance        float64       `json:"totalDistance"`
	EstimatedTimeSeconds float64       `json:"estimatedTimeSeconds"`
	PlannedAt            time.Time     `json:"plannedAt"`
}

// PathValidationDTO reports whether a plan is still safe to follow
type PathValidationDTO struct {
	Valid bool `json:"valid"`
}
