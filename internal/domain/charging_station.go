package domain

import (
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultChargeDurationMinutes is the assumed average full-charge time used
// by the wait-time estimate.
const DefaultChargeDurationMinutes = 30

// ChargingStation is the aggregate root for a bounded charging resource with
// FIFO admission. Invariant: AvailableSlots + len(ChargingRobots) == Capacity,
// and a robot id appears in at most one of queue or charging set.
type ChargingStation struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"-"`
	StationID      string               `bson:"stationId" json:"stationId"`
	Location       RobotPosition        `bson:"location" json:"location"`
	Capacity       int                  `bson:"capacity" json:"capacity"`
	AvailableSlots int                  `bson:"availableSlots" json:"availableSlots"`
	Queue          []string             `bson:"queue" json:"queue"`
	ChargingRobots map[string]time.Time `bson:"chargingRobots" json:"chargingRobots"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`

	mu sync.Mutex
}

// NewChargingStation creates a station with all slots free
func NewChargingStation(stationID string, location RobotPosition, capacity int) (*ChargingStation, error) {
	if stationID == "" {
		return nil, NewInvalidArgument("station id is required")
	}
	if capacity <= 0 {
		return nil, NewInvalidArgument("station capacity must be positive, got %d", capacity)
	}

	now := time.Now()
	return &ChargingStation{
		StationID:      stationID,
		Location:       location,
		Capacity:       capacity,
		AvailableSlots: capacity,
		Queue:          []string{},
		ChargingRobots: make(map[string]time.Time),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// AddToQueue appends a robot to the FIFO waiting queue
func (s *ChargingStation) AddToQueue(robotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if robotID == "" {
		return NewInvalidArgument("robot id is required")
	}
	if _, charging := s.ChargingRobots[robotID]; charging {
		return NewInvalidState("robot %s is already charging at station %s", robotID, s.StationID)
	}
	if s.queuePosition(robotID) > 0 {
		return NewInvalidState("robot %s is already queued at station %s", robotID, s.StationID)
	}

	s.Queue = append(s.Queue, robotID)
	s.UpdatedAt = time.Now()
	return nil
}

// StartCharging admits a robot into a free slot. The robot must be queued
// (it is removed from the queue) or already charging (idempotent re-entry).
func (s *ChargingStation) StartCharging(robotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startCharging(robotID)
}

func (s *ChargingStation) startCharging(robotID string) error {
	if _, charging := s.ChargingRobots[robotID]; charging {
		return nil
	}
	if s.AvailableSlots <= 0 {
		return NewInvalidState("station %s has no available slots", s.StationID)
	}
	if s.queuePosition(robotID) <= 0 {
		return NewInvalidState("robot %s is not queued at station %s", robotID, s.StationID)
	}

	s.removeFromQueue(robotID)
	s.ChargingRobots[robotID] = time.Now()
	s.AvailableSlots--
	s.UpdatedAt = time.Now()
	return nil
}

// ReleaseRobot frees a charging slot and cascades admission: the head of the
// queue, if any, is immediately started on the freed slot. Returns the id of
// the promoted robot, or empty if the queue was empty.
func (s *ChargingStation) ReleaseRobot(robotID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, charging := s.ChargingRobots[robotID]; !charging {
		return "", NewInvalidState("robot %s is not charging at station %s", robotID, s.StationID)
	}

	delete(s.ChargingRobots, robotID)
	s.AvailableSlots++
	s.UpdatedAt = time.Now()

	if len(s.Queue) == 0 {
		return "", nil
	}

	next := s.Queue[0]
	if err := s.startCharging(next); err != nil {
		return "", err
	}
	return next, nil
}

// QueuePosition returns 0 if the robot is charging, its 1-based FIFO position
// if queued, and -1 if the station does not know the robot.
func (s *ChargingStation) QueuePosition(robotID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, charging := s.ChargingRobots[robotID]; charging {
		return 0
	}
	return s.queuePosition(robotID)
}

// EstimateWaitTime returns a coarse wait estimate in minutes, assuming the
// default charge duration amortized over station capacity.
func (s *ChargingStation) EstimateWaitTime(robotID string) int {
	position := s.QueuePosition(robotID)
	if position <= 0 {
		return 0
	}
	return (position - 1) * (DefaultChargeDurationMinutes / s.Capacity)
}

// UtilizationRate returns the fraction of occupied slots
func (s *ChargingStation) UtilizationRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.Capacity-s.AvailableSlots) / float64(s.Capacity)
}

// IsRobotCharging reports whether the robot currently occupies a slot
func (s *ChargingStation) IsRobotCharging(robotID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, charging := s.ChargingRobots[robotID]
	return charging
}

// ChargingDuration returns how long the robot has been charging, or zero if
// it is not charging.
func (s *ChargingStation) ChargingDuration(robotID string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, charging := s.ChargingRobots[robotID]
	if !charging {
		return 0
	}
	return time.Since(start)
}

// QueueLength returns the number of waiting robots
func (s *ChargingStation) QueueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Queue)
}

// queuePosition returns the 1-based FIFO position, or -1 if absent.
// Callers hold the lock.
func (s *ChargingStation) queuePosition(robotID string) int {
	for i, id := range s.Queue {
		if id == robotID {
			return i + 1
		}
	}
	return -1
}

func (s *ChargingStation) removeFromQueue(robotID string) {
	for i, id := range s.Queue {
		if id == robotID {
			s.Queue = append(s.Queue[:i], s.Queue[i+1:]...)
			return
		}
	}
}
