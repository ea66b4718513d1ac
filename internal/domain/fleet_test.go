package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createFleetRobot(t *testing.T, robotID string, x, y float64) *Robot {
	t.Helper()
	robot, err := NewRobot(robotID, "AMR-500", RobotPosition{X: x, Y: y}, []RobotCapability{CapabilityPicker})
	require.NoError(t, err)
	robot.DrainEvents()
	return robot
}

func assignFleetTask(t *testing.T, robot *Robot, taskID string) {
	t.Helper()
	task, err := NewRobotTask(taskID, TaskTypePick, PriorityNormal, RobotPosition{}, RobotPosition{X: 1, Y: 1}, CapabilityPicker, nil)
	require.NoError(t, err)
	require.NoError(t, robot.AssignTask(task))
}

func TestNewFleet(t *testing.T) {
	fleet, err := NewFleet("fleet-main")
	require.NoError(t, err)
	assert.Equal(t, 0, fleet.RobotCount())
	assert.Empty(t, fleet.RobotIDs)

	_, err = NewFleet("")
	assert.True(t, IsInvalidArgument(err))
}

func TestFleetMembership(t *testing.T) {
	fleet, err := NewFleet("fleet-main")
	require.NoError(t, err)

	robot := createFleetRobot(t, "robot-001", 0, 0)
	require.NoError(t, fleet.AddRobot(robot))
	assert.Equal(t, []string{"robot-001"}, fleet.RobotIDs)

	assert.True(t, IsInvalidState(fleet.AddRobot(robot)))
	assert.True(t, IsInvalidArgument(fleet.AddRobot(nil)))

	require.NoError(t, fleet.RemoveRobot("robot-001"))
	assert.Empty(t, fleet.RobotIDs)
	assert.True(t, IsInvalidState(fleet.RemoveRobot("robot-001")))
}

func TestFleetUtilization(t *testing.T) {
	fleet, err := NewFleet("fleet-main")
	require.NoError(t, err)

	robots := []*Robot{
		createFleetRobot(t, "robot-001", 0, 0),
		createFleetRobot(t, "robot-002", 10, 10),
		createFleetRobot(t, "robot-003", 20, 20),
		createFleetRobot(t, "robot-004", 30, 30),
	}
	assignFleetTask(t, robots[0], "task-001")
	assignFleetTask(t, robots[1], "task-002")
	fleet.AttachRobots(robots)

	assert.Equal(t, 0.5, fleet.UtilizationRate)
	assert.Equal(t, 2, fleet.ActiveTaskCount)
	assert.Equal(t, 2, fleet.IdleRobotCount)

	status := fleet.HealthStatus()
	assert.Equal(t, 4, status.TotalRobots)
	assert.Equal(t, 2, status.ExecutingRobots)
	assert.Equal(t, 2, status.IdleRobots)
	// |0.5 - 0.85| >= 0.15
	assert.False(t, status.Healthy)
}

func TestFleetNeedsRebalancing(t *testing.T) {
	t.Run("Balanced workload", func(t *testing.T) {
		fleet, err := NewFleet("fleet-main")
		require.NoError(t, err)

		robots := []*Robot{
			createFleetRobot(t, "robot-001", 0, 0),
			createFleetRobot(t, "robot-002", 1, 1),
		}
		assignFleetTask(t, robots[0], "task-001")
		fleet.AttachRobots(robots)

		assert.False(t, fleet.NeedsRebalancing())
		assert.False(t, fleet.RebalanceWorkload())
		assert.Empty(t, fleet.DrainEvents())
	})

	t.Run("Imbalanced workload signals rebalance", func(t *testing.T) {
		fleet, err := NewFleet("fleet-main")
		require.NoError(t, err)

		robots := []*Robot{
			createFleetRobot(t, "robot-001", 0, 0),
			createFleetRobot(t, "robot-002", 1, 1),
			createFleetRobot(t, "robot-003", 2, 2),
		}
		assignFleetTask(t, robots[0], "task-001")
		assignFleetTask(t, robots[1], "task-002")
		fleet.AttachRobots(robots)

		assert.True(t, fleet.NeedsRebalancing())
		assert.True(t, fleet.RebalanceWorkload())
		assert.NotNil(t, fleet.LastRebalanceAt)

		events := fleet.DrainEvents()
		require.Len(t, events, 1)
		rebalanced, ok := events[0].(*FleetRebalancedEvent)
		require.True(t, ok)
		assert.Equal(t, "fleet-main", rebalanced.FleetID)
	})

	t.Run("Single robot never rebalances", func(t *testing.T) {
		fleet, err := NewFleet("fleet-main")
		require.NoError(t, err)

		robot := createFleetRobot(t, "robot-001", 0, 0)
		assignFleetTask(t, robot, "task-001")
		fleet.AttachRobots([]*Robot{robot})

		assert.False(t, fleet.NeedsRebalancing())
	})

	t.Run("No active tasks never rebalances", func(t *testing.T) {
		fleet, err := NewFleet("fleet-main")
		require.NoError(t, err)

		fleet.AttachRobots([]*Robot{
			createFleetRobot(t, "robot-001", 0, 0),
			createFleetRobot(t, "robot-002", 1, 1),
		})

		assert.False(t, fleet.NeedsRebalancing())
	})
}

func TestFleetFindNearestAvailableRobot(t *testing.T) {
	fleet, err := NewFleet("fleet-main")
	require.NoError(t, err)

	near := createFleetRobot(t, "robot-002", 10, 10)
	far := createFleetRobot(t, "robot-001", 100, 100)
	busy := createFleetRobot(t, "robot-003", 5, 5)
	assignFleetTask(t, busy, "task-001")
	fleet.AttachRobots([]*Robot{near, far, busy})

	found := fleet.FindNearestAvailableRobot(RobotPosition{X: 12, Y: 12}, CapabilityPicker)
	require.NotNil(t, found)
	assert.Equal(t, "robot-002", found.RobotID)

	// No robot with the capability
	assert.Nil(t, fleet.FindNearestAvailableRobot(RobotPosition{}, CapabilitySorter))
}

func TestFleetFindNearestTieBreaksOnID(t *testing.T) {
	fleet, err := NewFleet("fleet-main")
	require.NoError(t, err)

	// Equidistant from the target; the lexicographically smaller id wins
	fleet.AttachRobots([]*Robot{
		createFleetRobot(t, "robot-b", 10, 0),
		createFleetRobot(t, "robot-a", 0, 10),
	})

	found := fleet.FindNearestAvailableRobot(RobotPosition{X: 0, Y: 0}, CapabilityPicker)
	require.NotNil(t, found)
	assert.Equal(t, "robot-a", found.RobotID)
}

func TestFleetAvailableRobots(t *testing.T) {
	fleet, err := NewFleet("fleet-main")
	require.NoError(t, err)

	idle := createFleetRobot(t, "robot-001", 0, 0)
	charging := createFleetRobot(t, "robot-002", 1, 1)
	require.NoError(t, charging.SendToCharging())
	fleet.AttachRobots([]*Robot{idle, charging})

	available := fleet.AvailableRobots("")
	require.Len(t, available, 1)
	assert.Equal(t, "robot-001", available[0].RobotID)

	assert.Empty(t, fleet.AvailableRobots(CapabilityLifter))
}
