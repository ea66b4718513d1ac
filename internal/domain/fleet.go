package domain

import (
	"math"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fleet utilization and imbalance policy
const (
	imbalanceThresholdPercent = 20.0
	targetUtilization         = 0.85
	utilizationTolerance      = 0.15
)

// FleetHealthStatus is a point-in-time summary of the fleet
type FleetHealthStatus struct {
	TotalRobots      int     `json:"totalRobots"`
	IdleRobots       int     `json:"idleRobots"`
	ExecutingRobots  int     `json:"executingRobots"`
	ChargingRobots   int     `json:"chargingRobots"`
	MaintenanceCount int     `json:"maintenanceCount"`
	ErrorCount       int     `json:"errorCount"`
	OfflineCount     int     `json:"offlineCount"`
	UtilizationRate  float64 `json:"utilizationRate"`
	Healthy          bool    `json:"healthy"`
}

// Fleet is the aggregate root composing the robots it exclusively owns.
// Metrics are recomputed on every membership change.
type Fleet struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	FleetID         string             `bson:"fleetId" json:"fleetId"`
	RobotIDs        []string           `bson:"robotIds" json:"robotIds"`
	ActiveTaskCount int                `bson:"activeTaskCount" json:"activeTaskCount"`
	IdleRobotCount  int                `bson:"idleRobotCount" json:"idleRobotCount"`
	UtilizationRate float64            `bson:"utilizationRate" json:"utilizationRate"`
	LastRebalanceAt *time.Time         `bson:"lastRebalanceAt,omitempty" json:"lastRebalanceAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`

	robots       map[string]*Robot
	DomainEvents []DomainEvent `bson:"-" json:"-"`

	mu sync.Mutex
}

// NewFleet creates an empty fleet
func NewFleet(fleetID string) (*Fleet, error) {
	if fleetID == "" {
		return nil, NewInvalidArgument("fleet id is required")
	}

	now := time.Now()
	return &Fleet{
		FleetID:   fleetID,
		RobotIDs:  []string{},
		robots:    make(map[string]*Robot),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AttachRobots rehydrates the fleet's robot set after loading from storage.
// It replaces the in-memory robot map and refreshes metrics without
// emitting events.
func (f *Fleet) AttachRobots(robots []*Robot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.robots = make(map[string]*Robot, len(robots))
	for _, robot := range robots {
		f.robots[robot.RobotID] = robot
	}
	f.syncRobotIDs()
	f.recalculateMetrics()
}

// AddRobot places a robot under the fleet's ownership
func (f *Fleet) AddRobot(robot *Robot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if robot == nil {
		return NewInvalidArgument("robot is required")
	}
	if _, exists := f.robots[robot.RobotID]; exists {
		return NewInvalidState("robot %s already belongs to fleet %s", robot.RobotID, f.FleetID)
	}

	f.robots[robot.RobotID] = robot
	f.syncRobotIDs()
	f.recalculateMetrics()
	return nil
}

// RemoveRobot releases a robot from the fleet
func (f *Fleet) RemoveRobot(robotID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.robots[robotID]; !exists {
		return NewInvalidState("robot %s does not belong to fleet %s", robotID, f.FleetID)
	}

	delete(f.robots, robotID)
	f.syncRobotIDs()
	f.recalculateMetrics()
	return nil
}

// Robot returns an owned robot by id
func (f *Fleet) Robot(robotID string) (*Robot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	robot, ok := f.robots[robotID]
	return robot, ok
}

// RobotCount returns the number of owned robots
func (f *Fleet) RobotCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.robots)
}

// Robots returns the owned robots ordered by robot id
func (f *Fleet) Robots() []*Robot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.robotsSorted()
}

// RobotsByStatus returns the owned robots in the given state, ordered by id
func (f *Fleet) RobotsByStatus(status RobotStatus) []*Robot {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*Robot
	for _, robot := range f.robotsSorted() {
		if robot.Status == status {
			matched = append(matched, robot)
		}
	}
	return matched
}

// AvailableRobots returns robots able to accept a task, optionally filtered
// by capability (empty capability matches all), ordered by id.
func (f *Fleet) AvailableRobots(capability RobotCapability) []*Robot {
	f.mu.Lock()
	defer f.mu.Unlock()

	var available []*Robot
	for _, robot := range f.robotsSorted() {
		if !robot.IsAvailable() {
			continue
		}
		if capability != "" && !robot.HasCapability(capability) {
			continue
		}
		available = append(available, robot)
	}
	return available
}

// RecalculateMetrics refreshes the derived idle/active/utilization counters
func (f *Fleet) RecalculateMetrics() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recalculateMetrics()
}

// NeedsRebalancing reports whether the workload spread across robots exceeds
// the imbalance threshold.
func (f *Fleet) NeedsRebalancing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.needsRebalancing()
}

// RebalanceWorkload recomputes metrics and, if the fleet is imbalanced,
// stamps the rebalance time and emits a FleetRebalancedEvent. Actual task
// redistribution is the caller's responsibility. Returns whether a rebalance
// was signalled.
func (f *Fleet) RebalanceWorkload() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.recalculateMetrics()
	if !f.needsRebalancing() {
		return false
	}

	now := time.Now()
	f.LastRebalanceAt = &now
	f.UpdatedAt = now
	f.DomainEvents = append(f.DomainEvents, &FleetRebalancedEvent{
		FleetID:         f.FleetID,
		RobotCount:      len(f.robots),
		UtilizationRate: f.UtilizationRate,
		Timestamp:       now,
	})
	return true
}

// FindNearestAvailableRobot returns the available robot with the given
// capability closest to target. Ties break toward the lexicographically
// smallest robot id. Returns nil if no robot qualifies.
func (f *Fleet) FindNearestAvailableRobot(target RobotPosition, capability RobotCapability) *Robot {
	f.mu.Lock()
	defer f.mu.Unlock()

	var nearest *Robot
	best := math.MaxFloat64
	for _, robot := range f.robotsSorted() {
		if !robot.IsAvailable() || !robot.HasCapability(capability) {
			continue
		}
		if d := robot.Position.DistanceTo(target); d < best {
			best = d
			nearest = robot
		}
	}
	return nearest
}

// IsUtilizationHealthy reports whether utilization sits near the target band
func (f *Fleet) IsUtilizationHealthy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return math.Abs(f.UtilizationRate-targetUtilization) < utilizationTolerance
}

// HealthStatus returns a point-in-time summary of the fleet
func (f *Fleet) HealthStatus() FleetHealthStatus {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.recalculateMetrics()
	status := FleetHealthStatus{
		TotalRobots:     len(f.robots),
		UtilizationRate: f.UtilizationRate,
	}
	for _, robot := range f.robots {
		switch robot.Status {
		case RobotStatusIdle:
			status.IdleRobots++
		case RobotStatusExecuting:
			status.ExecutingRobots++
		case RobotStatusCharging:
			status.ChargingRobots++
		case RobotStatusMaintenance:
			status.MaintenanceCount++
		case RobotStatusError:
			status.ErrorCount++
		case RobotStatusOffline:
			status.OfflineCount++
		}
	}
	status.Healthy = math.Abs(f.UtilizationRate-targetUtilization) < utilizationTolerance
	return status
}

// DrainEvents returns the accumulated domain events in emission order and
// clears the buffer.
func (f *Fleet) DrainEvents() []DomainEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := f.DomainEvents
	f.DomainEvents = nil
	return events
}

// recalculateMetrics updates the derived counters. Callers hold the lock.
func (f *Fleet) recalculateMetrics() {
	idle := 0
	executing := 0
	for _, robot := range f.robots {
		switch robot.Status {
		case RobotStatusIdle:
			idle++
		case RobotStatusExecuting:
			executing++
		}
	}

	f.IdleRobotCount = idle
	f.ActiveTaskCount = executing
	if len(f.robots) == 0 {
		f.UtilizationRate = 0
	} else {
		f.UtilizationRate = float64(executing) / float64(len(f.robots))
	}
	f.UpdatedAt = time.Now()
}

// needsRebalancing evaluates the workload imbalance. Callers hold the lock.
func (f *Fleet) needsRebalancing() bool {
	if len(f.robots) < 2 {
		return false
	}

	maxWorkload := 0
	minWorkload := 0
	for _, robot := range f.robots {
		if robot.CurrentTaskID != nil {
			maxWorkload++
		}
		if robot.IsAvailable() && robot.CurrentTaskID == nil {
			minWorkload++
		}
	}

	if maxWorkload == 0 {
		return false
	}

	imbalance := float64(maxWorkload-minWorkload) / float64(maxWorkload) * 100
	return imbalance > imbalanceThresholdPercent
}

// syncRobotIDs mirrors the robot map keys into the persisted id list.
// Callers hold the lock.
func (f *Fleet) syncRobotIDs() {
	ids := make([]string, 0, len(f.robots))
	for id := range f.robots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	f.RobotIDs = ids
}

// robotsSorted returns the robots ordered by id. Callers hold the lock.
func (f *Fleet) robotsSorted() []*Robot {
	ids := make([]string, 0, len(f.robots))
	for id := range f.robots {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	robots := make([]*Robot, 0, len(ids))
	for _, id := range ids {
		robots = append(robots, f.robots[id])
	}
	return robots
}
