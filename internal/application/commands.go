package application

// PositionInput carries raw coordinates from the transport layer
type PositionInput struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// RegisterRobotCommand registers a new robot in the fleet
type RegisterRobotCommand struct {
	RobotID      string
	Model        string
	Position     PositionInput
	Capabilities []string
}

// RecordHeartbeatCommand records a robot's periodic status report
type RecordHeartbeatCommand struct {
	RobotID           string
	Position          PositionInput
	BatteryPercentage int
	HealthMetrics     map[string]float64
}

// PerformHealthCheckCommand runs the maintenance heuristic on a robot
type PerformHealthCheckCommand struct {
	RobotID string
}

// MarkRobotOfflineCommand takes a robot out of service
type MarkRobotOfflineCommand struct {
	RobotID string
}

// MarkRobotOnlineCommand returns an offline robot to service
type MarkRobotOnlineCommand struct {
	RobotID string
}

// CreateTaskCommand creates a new pending task
type CreateTaskCommand struct {
	TaskID             string
	Type               string
	Priority           string
	Origin             PositionInput
	Destination        PositionInput
	RequiredCapability string
	Payload            map[string]interface{}
}

// AssignTaskCommand assigns a task to a robot. When RobotID is empty the
// optimal robot is selected automatically.
type AssignTaskCommand struct {
	TaskID  string
	RobotID string
}

// StartTaskCommand moves an assigned task into execution
type StartTaskCommand struct {
	TaskID string
}

// CompleteTaskCommand finishes an in-progress task
type CompleteTaskCommand struct {
	TaskID string
}

// FailTaskCommand aborts a task with a reason
type FailTaskCommand struct {
	TaskID string
	Reason string
}

// CancelTaskCommand withdraws a task
type CancelTaskCommand struct {
	TaskID string
}

// RegisterStationCommand registers a charging station
type RegisterStationCommand struct {
	StationID string
	Location  PositionInput
	Capacity  int
}

// EnqueueChargingCommand sends a robot to charge. When StationID is empty the
// nearest station is selected.
type EnqueueChargingCommand struct {
	RobotID   string
	StationID string
}

// StartChargingCommand admits a queued robot into a free slot
type StartChargingCommand struct {
	StationID string
	RobotID   string
}

// ReleaseChargingCommand frees a charging slot and completes the robot's charge
type ReleaseChargingCommand struct {
	StationID string
	RobotID   string
}

// CalculatePathCommand requests a path between two positions
type CalculatePathCommand struct {
	Start   PositionInput
	Goal    PositionInput
	Blocked []PositionInput
}

// ValidatePathCommand checks a plan against currently occupied positions
type ValidatePathCommand struct {
	Plan     PathPlanDTO
	Occupied []PositionInput
}

// GetRobotQuery retrieves a robot by ID
type GetRobotQuery struct {
	RobotID string
}

// ListRobotsQuery lists robots with optional status or capability filters
type ListRobotsQuery struct {
	Status     string
	Capability string
}

// GetTaskQuery retrieves a task by ID
type GetTaskQuery struct {
	TaskID string
}

// ListTasksQuery lists tasks by status
type ListTasksQuery struct {
	Status string
}

// GetStationQuery retrieves a charging station by ID
type GetStationQuery struct {
	StationID string
}

// QueuePositionQuery retrieves a robot's position in a station queue
type QueuePositionQuery struct {
	StationID string
	RobotID   string
}

// FindNearestRobotQuery finds the closest available robot with a capability
type FindNearestRobotQuery struct {
	Position   PositionInput
	Capability string
}
