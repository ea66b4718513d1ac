package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RobotStatus represents the robot lifecycle state
type RobotStatus string

const (
	RobotStatusIdle        RobotStatus = "idle"
	RobotStatusExecuting   RobotStatus = "executing"
	RobotStatusCharging    RobotStatus = "charging"
	RobotStatusMaintenance RobotStatus = "maintenance"
	RobotStatusError       RobotStatus = "error"
	RobotStatusOffline     RobotStatus = "offline"
)

// Health metric keys read by the maintenance heuristic
const (
	MetricErrorCount  = "errorCount"
	MetricTemperature = "temperature"
)

// Maintenance heuristic thresholds
const (
	maxErrorCount  = 10.0
	maxTemperature = 80.0
)

// Robot is the aggregate root for a single robot's operational state
type Robot struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	RobotID       string             `bson:"robotId" json:"robotId"`
	Model         string             `bson:"model" json:"model"`
	Status        RobotStatus        `bson:"status" json:"status"`
	Position      RobotPosition      `bson:"position" json:"position"`
	Battery       BatteryLevel       `bson:"battery" json:"battery"`
	CurrentTaskID *string            `bson:"currentTaskId,omitempty" json:"currentTaskId,omitempty"`
	Capabilities  []RobotCapability  `bson:"capabilities" json:"capabilities"`
	HealthMetrics map[string]float64 `bson:"healthMetrics" json:"healthMetrics"`
	LastHeartbeat time.Time          `bson:"lastHeartbeat" json:"lastHeartbeat"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`

	DomainEvents []DomainEvent `bson:"-" json:"-"`
}

// NewRobot registers a new robot. The battery starts at 100% and the robot
// enters the idle state ready for assignment.
func NewRobot(robotID, model string, position RobotPosition, capabilities []RobotCapability) (*Robot, error) {
	if robotID == "" {
		return nil, NewInvalidArgument("robot id is required")
	}
	if model == "" {
		return nil, NewInvalidArgument("robot model is required")
	}
	if len(capabilities) == 0 {
		return nil, NewInvalidArgument("robot requires at least one capability")
	}
	for _, c := range capabilities {
		if _, err := ParseCapability(string(c)); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	robot := &Robot{
		RobotID:       robotID,
		Model:         model,
		Status:        RobotStatusIdle,
		Position:      position,
		Battery:       FullBattery(),
		Capabilities:  capabilities,
		HealthMetrics: make(map[string]float64),
		LastHeartbeat: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	robot.addEvent(&RobotRegisteredEvent{
		RobotID:      robotID,
		Model:        model,
		Position:     position,
		Capabilities: capabilities,
		Timestamp:    now,
	})

	return robot, nil
}

// AssignTask reserves the robot for a task. The task aggregate itself is not
// mutated; callers must also invoke RobotTask.Assign.
func (r *Robot) AssignTask(task *RobotTask) error {
	if r.Status != RobotStatusIdle {
		return NewInvalidState("robot %s is not idle (status: %s)", r.RobotID, r.Status)
	}
	if !r.Battery.IsSufficientForTask() {
		return NewInvalidState("robot %s battery too low for task (%d%%)", r.RobotID, r.Battery.Percentage)
	}
	if !r.HasCapability(task.RequiredCapability) {
		return NewInvalidState("robot %s lacks required capability %s", r.RobotID, task.RequiredCapability)
	}

	taskID := task.TaskID
	r.CurrentTaskID = &taskID
	r.Status = RobotStatusExecuting
	r.touch()

	r.addEvent(&RobotTaskAssignedEvent{
		RobotID:   r.RobotID,
		TaskID:    task.TaskID,
		TaskType:  task.Type,
		Timestamp: time.Now(),
	})

	return nil
}

// StartTask signals that the robot has begun executing its current task
func (r *Robot) StartTask() error {
	if r.Status != RobotStatusExecuting || r.CurrentTaskID == nil {
		return NewInvalidState("robot %s has no task to start (status: %s)", r.RobotID, r.Status)
	}

	r.touch()
	r.addEvent(&RobotTaskStartedEvent{
		RobotID:   r.RobotID,
		TaskID:    *r.CurrentTaskID,
		Timestamp: time.Now(),
	})

	return nil
}

// CompleteTask clears the current task and returns the robot to idle
func (r *Robot) CompleteTask() error {
	if r.CurrentTaskID == nil {
		return NewInvalidState("robot %s has no task to complete", r.RobotID)
	}

	taskID := *r.CurrentTaskID
	r.CurrentTaskID = nil
	r.Status = RobotStatusIdle
	r.touch()

	r.addEvent(&RobotTaskCompletedEvent{
		RobotID:   r.RobotID,
		TaskID:    taskID,
		Timestamp: time.Now(),
	})

	return nil
}

// FailTask abandons the current task and puts the robot in the error state
func (r *Robot) FailTask(reason string) error {
	if r.CurrentTaskID == nil {
		return NewInvalidState("robot %s has no task to fail", r.RobotID)
	}

	taskID := *r.CurrentTaskID
	r.CurrentTaskID = nil
	r.Status = RobotStatusError
	r.touch()

	r.addEvent(&RobotTaskFailedEvent{
		RobotID:   r.RobotID,
		TaskID:    taskID,
		Reason:    reason,
		Timestamp: time.Now(),
	})

	return nil
}

// CheckBatteryLevel evaluates the charging thresholds and emits a
// BatteryLowEvent when they are crossed. Repeated calls at low battery
// re-emit; consumers must de-duplicate if needed.
func (r *Robot) CheckBatteryLevel() {
	if r.Battery.NeedsEmergencyCharging() {
		r.addEvent(&BatteryLowEvent{
			RobotID:    r.RobotID,
			Percentage: r.Battery.Percentage,
			Emergency:  true,
			Timestamp:  time.Now(),
		})
		return
	}
	if r.Battery.NeedsCharging() {
		r.addEvent(&BatteryLowEvent{
			RobotID:    r.RobotID,
			Percentage: r.Battery.Percentage,
			Emergency:  false,
			Timestamp:  time.Now(),
		})
	}
}

// SendToCharging transitions the robot into the charging state. A critically
// low robot preempts its in-flight task; a healthy robot with an active task
// is refused.
func (r *Robot) SendToCharging() error {
	if r.Status == RobotStatusCharging {
		return NewInvalidState("robot %s is already charging", r.RobotID)
	}
	if r.CurrentTaskID != nil {
		if !r.Battery.NeedsEmergencyCharging() {
			return NewInvalidState("robot %s has a task in progress", r.RobotID)
		}
		if err := r.FailTask("Emergency charging required"); err != nil {
			return err
		}
	}

	r.Status = RobotStatusCharging
	r.touch()
	r.addEvent(&ChargingStartedEvent{
		RobotID:   r.RobotID,
		Timestamp: time.Now(),
	})

	return nil
}

// CompleteCharging resets the battery to full and returns the robot to idle
func (r *Robot) CompleteCharging() error {
	if r.Status != RobotStatusCharging {
		return NewInvalidState("robot %s is not charging (status: %s)", r.RobotID, r.Status)
	}

	r.Battery = FullBattery()
	r.Status = RobotStatusIdle
	r.touch()
	r.addEvent(&ChargingCompletedEvent{
		RobotID:   r.RobotID,
		Timestamp: time.Now(),
	})

	return nil
}

// UpdatePosition records the robot's reported position (heartbeat path)
func (r *Robot) UpdatePosition(position RobotPosition) {
	r.Position = position
	r.LastHeartbeat = time.Now()
	r.touch()
}

// UpdateBatteryLevel records the reported battery charge and evaluates the
// charging thresholds
func (r *Robot) UpdateBatteryLevel(percentage int) error {
	battery, err := NewBatteryLevel(percentage)
	if err != nil {
		return err
	}

	r.Battery = battery
	r.LastHeartbeat = time.Now()
	r.touch()
	r.CheckBatteryLevel()

	return nil
}

// UpdateHealthMetric records a single health metric reading
func (r *Robot) UpdateHealthMetric(key string, value float64) {
	if r.HealthMetrics == nil {
		r.HealthMetrics = make(map[string]float64)
	}
	r.HealthMetrics[key] = value
	r.touch()
}

// PerformHealthCheck refreshes the heartbeat and applies the maintenance
// heuristic over the health metric map. Missing metrics default to zero.
func (r *Robot) PerformHealthCheck() {
	r.LastHeartbeat = time.Now()
	r.touch()

	errorCount := r.HealthMetrics[MetricErrorCount]
	temperature := r.HealthMetrics[MetricTemperature]

	if errorCount > maxErrorCount || temperature > maxTemperature {
		r.Status = RobotStatusMaintenance
		metrics := make(map[string]float64, len(r.HealthMetrics))
		for k, v := range r.HealthMetrics {
			metrics[k] = v
		}
		r.addEvent(&RobotMaintenanceRequiredEvent{
			RobotID:   r.RobotID,
			Metrics:   metrics,
			Timestamp: time.Now(),
		})
	}
}

// MarkOffline takes the robot out of service unconditionally
func (r *Robot) MarkOffline() {
	r.Status = RobotStatusOffline
	r.touch()
}

// MarkOnline returns an offline robot to idle; a no-op in any other state
func (r *Robot) MarkOnline() {
	if r.Status != RobotStatusOffline {
		return
	}
	r.Status = RobotStatusIdle
	r.LastHeartbeat = time.Now()
	r.touch()
}

// IsAvailable reports whether the robot can accept a new task
func (r *Robot) IsAvailable() bool {
	return r.Status == RobotStatusIdle && r.Battery.IsSufficientForTask() && r.IsHealthy()
}

// IsHealthy reports whether the robot is in an operable state
func (r *Robot) IsHealthy() bool {
	return r.Status != RobotStatusError &&
		r.Status != RobotStatusMaintenance &&
		r.Status != RobotStatusOffline
}

// HasCapability reports whether the robot carries the given capability
func (r *Robot) HasCapability(capability RobotCapability) bool {
	for _, c := range r.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// IsHeartbeatStale reports whether the robot has not reported within maxAge
func (r *Robot) IsHeartbeatStale(maxAge time.Duration) bool {
	return time.Since(r.LastHeartbeat) > maxAge
}

// DrainEvents returns the accumulated domain events in emission order and
// clears the buffer.
func (r *Robot) DrainEvents() []DomainEvent {
	events := r.DomainEvents
	r.DomainEvents = nil
	return events
}

func (r *Robot) addEvent(event DomainEvent) {
	r.DomainEvents = append(r.DomainEvents, event)
}

func (r *Robot) touch() {
	r.UpdatedAt = time.Now()
}
