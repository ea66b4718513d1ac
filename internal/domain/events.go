package domain

import "time"

// Domain event type identifiers
const (
	EventTypeRobotRegistered     = "fleet.robot.registered"
	EventTypeTaskAssigned        = "fleet.robot.task-assigned"
	EventTypeTaskStarted         = "fleet.robot.task-started"
	EventTypeTaskCompleted       = "fleet.robot.task-completed"
	EventTypeTaskFailed          = "fleet.robot.task-failed"
	EventTypeBatteryLow          = "fleet.robot.battery-low"
	EventTypeChargingStarted     = "fleet.robot.charging-started"
	EventTypeChargingCompleted   = "fleet.robot.charging-completed"
	EventTypeMaintenanceRequired = "fleet.robot.maintenance-required"
	EventTypeFleetRebalanced     = "fleet.rebalanced"
)

// DomainEvent is implemented by every event emitted by the fleet aggregates.
// The set of implementations is closed; consumers may switch exhaustively
// over the types in this file.
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// RobotRegisteredEvent is emitted when a robot joins the fleet
type RobotRegisteredEvent struct {
	RobotID      string            `json:"robotId"`
	Model        string            `json:"model"`
	Position     RobotPosition     `json:"position"`
	Capabilities []RobotCapability `json:"capabilities"`
	Timestamp    time.Time         `json:"timestamp"`
}

func (e *RobotRegisteredEvent) EventType() string     { return EventTypeRobotRegistered }
func (e *RobotRegisteredEvent) OccurredAt() time.Time { return e.Timestamp }

// RobotTaskAssignedEvent is emitted when a task is assigned to a robot
type RobotTaskAssignedEvent struct {
	RobotID   string    `json:"robotId"`
	TaskID    string    `json:"taskId"`
	TaskType  TaskType  `json:"taskType"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *RobotTaskAssignedEvent) EventType() string     { return EventTypeTaskAssigned }
func (e *RobotTaskAssignedEvent) OccurredAt() time.Time { return e.Timestamp }

// RobotTaskStartedEvent is emitted when a robot begins executing its task
type RobotTaskStartedEvent struct {
	RobotID   string    `json:"robotId"`
	TaskID    string    `json:"taskId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *RobotTaskStartedEvent) EventType() string     { return EventTypeTaskStarted }
func (e *RobotTaskStartedEvent) OccurredAt() time.Time { return e.Timestamp }

// RobotTaskCompletedEvent is emitted when a robot completes its task
type RobotTaskCompletedEvent struct {
	RobotID   string    `json:"robotId"`
	TaskID    string    `json:"taskId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *RobotTaskCompletedEvent) EventType() string     { return EventTypeTaskCompleted }
func (e *RobotTaskCompletedEvent) OccurredAt() time.Time { return e.Timestamp }

// RobotTaskFailedEvent is emitted when a robot abandons its task
type RobotTaskFailedEvent struct {
	RobotID   string    `json:"robotId"`
	TaskID    string    `json:"taskId"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *RobotTaskFailedEvent) EventType() string     { return EventTypeTaskFailed }
func (e *RobotTaskFailedEvent) OccurredAt() time.Time { return e.Timestamp }

// BatteryLowEvent is emitted when a battery check crosses the charging
// thresholds. Emergency marks the critical (≤10%) level.
type BatteryLowEvent struct {
	RobotID    string    `json:"robotId"`
	Percentage int       `json:"percentage"`
	Emergency  bool      `json:"emergency"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e *BatteryLowEvent) EventType() string     { return EventTypeBatteryLow }
func (e *BatteryLowEvent) OccurredAt() time.Time { return e.Timestamp }

// ChargingStartedEvent is emitted when a robot enters the charging state
type ChargingStartedEvent struct {
	RobotID   string    `json:"robotId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *ChargingStartedEvent) EventType() string     { return EventTypeChargingStarted }
func (e *ChargingStartedEvent) OccurredAt() time.Time { return e.Timestamp }

// ChargingCompletedEvent is emitted when a robot finishes charging
type ChargingCompletedEvent struct {
	RobotID   string    `json:"robotId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *ChargingCompletedEvent) EventType() string     { return EventTypeChargingCompleted }
func (e *ChargingCompletedEvent) OccurredAt() time.Time { return e.Timestamp }

// RobotMaintenanceRequiredEvent is emitted when a health check trips the
// maintenance heuristic
type RobotMaintenanceRequiredEvent struct {
	RobotID   string             `json:"robotId"`
	Metrics   map[string]float64 `json:"metrics"`
	Timestamp time.Time          `json:"timestamp"`
}

func (e *RobotMaintenanceRequiredEvent) EventType() string     { return EventTypeMaintenanceRequired }
func (e *RobotMaintenanceRequiredEvent) OccurredAt() time.Time { return e.Timestamp }

// FleetRebalancedEvent is emitted when the fleet detects workload imbalance
type FleetRebalancedEvent struct {
	FleetID         string    `json:"fleetId"`
	RobotCount      int       `json:"robotCount"`
	UtilizationRate float64   `json:"utilizationRate"`
	Timestamp       time.Time `json:"timestamp"`
}

func (e *FleetRebalancedEvent) EventType() string     { return EventTypeFleetRebalanced }
func (e *FleetRebalancedEvent) OccurredAt() time.Time { return e.Timestamp }
