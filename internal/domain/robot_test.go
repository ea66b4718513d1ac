package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPosition(t *testing.T, x, y float64) RobotPosition {
	t.Helper()
	position, err := NewRobotPosition(x, y, 0)
	require.NoError(t, err)
	return position
}

func createTestRobot(t *testing.T, robotID string) *Robot {
	t.Helper()
	robot, err := NewRobot(robotID, "AMR-500", createTestPosition(t, 10, 10), []RobotCapability{CapabilityPicker, CapabilityTransporter})
	require.NoError(t, err)
	robot.DrainEvents()
	return robot
}

func createTestTask(t *testing.T, taskID string) *RobotTask {
	t.Helper()
	task, err := NewRobotTask(taskID, TaskTypePick, PriorityNormal, createTestPosition(t, 5, 5), createTestPosition(t, 50, 50), CapabilityPicker, nil)
	require.NoError(t, err)
	return task
}

func TestNewRobot(t *testing.T) {
	tests := []struct {
		name         string
		robotID      string
		model        string
		capabilities []RobotCapability
		expectError  bool
	}{
		{name: "Valid robot", robotID: "robot-001", model: "AMR-500", capabilities: []RobotCapability{CapabilityPicker}, expectError: false},
		{name: "Missing id", robotID: "", model: "AMR-500", capabilities: []RobotCapability{CapabilityPicker}, expectError: true},
		{name: "Missing model", robotID: "robot-001", model: "", capabilities: []RobotCapability{CapabilityPicker}, expectError: true},
		{name: "No capabilities", robotID: "robot-001", model: "AMR-500", capabilities: nil, expectError: true},
		{name: "Unknown capability", robotID: "robot-001", model: "AMR-500", capabilities: []RobotCapability{"flying"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			robot, err := NewRobot(tt.robotID, tt.model, RobotPosition{X: 1, Y: 1}, tt.capabilities)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, robot)
			} else {
				require.NoError(t, err)
				assert.Equal(t, RobotStatusIdle, robot.Status)
				assert.Equal(t, 100, robot.Battery.Percentage)
				assert.Nil(t, robot.CurrentTaskID)

				events := robot.DrainEvents()
				require.Len(t, events, 1)
				registered, ok := events[0].(*RobotRegisteredEvent)
				require.True(t, ok)
				assert.Equal(t, tt.robotID, registered.RobotID)
			}
		})
	}
}

func TestRobotAssignTask(t *testing.T) {
	t.Run("Assigns to idle robot", func(t *testing.T) {
		robot := createTestRobot(t, "robot-001")
		task := createTestTask(t, "task-001")

		require.NoError(t, robot.AssignTask(task))
		assert.Equal(t, RobotStatusExecuting, robot.Status)
		require.NotNil(t, robot.CurrentTaskID)
		assert.Equal(t, "task-001", *robot.CurrentTaskID)

		events := robot.DrainEvents()
		require.Len(t, events, 1)
		assigned, ok := events[0].(*RobotTaskAssignedEvent)
		require.True(t, ok)
		assert.Equal(t, "task-001", assigned.TaskID)
	})

	t.Run("Rejects busy robot", func(t *testing.T) {
		robot := createTestRobot(t, "robot-001")
		require.NoError(t, robot.AssignTask(createTestTask(t, "task-001")))

		err := robot.AssignTask(createTestTask(t, "task-002"))
		assert.True(t, IsInvalidState(err))
	})

	t.Run("Rejects low battery", func(t *testing.T) {
		robot := createTestRobot(t, "robot-001")
		require.NoError(t, robot.UpdateBatteryLevel(30))

		err := robot.AssignTask(createTestTask(t, "task-001"))
		assert.True(t, IsInvalidState(err))
	})

	t.Run("Rejects missing capability", func(t *testing.T) {
		robot := createTestRobot(t, "robot-001")
		task, err := NewRobotTask("task-001", TaskTypeSort, PriorityNormal, createTestPosition(t, 5, 5), createTestPosition(t, 50, 50), CapabilitySorter, nil)
		require.NoError(t, err)

		err = robot.AssignTask(task)
		assert.True(t, IsInvalidState(err))
	})
}

func TestRobotTaskLifecycle(t *testing.T) {
	robot := createTestRobot(t, "robot-001")
	task := createTestTask(t, "task-001")

	require.NoError(t, robot.AssignTask(task))
	require.NoError(t, robot.StartTask())
	require.NoError(t, robot.CompleteTask())

	assert.Equal(t, RobotStatusIdle, robot.Status)
	assert.Nil(t, robot.CurrentTaskID)

	events := robot.DrainEvents()
	require.Len(t, events, 3)
	assert.IsType(t, &RobotTaskAssignedEvent{}, events[0])
	assert.IsType(t, &RobotTaskStartedEvent{}, events[1])
	assert.IsType(t, &RobotTaskCompletedEvent{}, events[2])
}

func TestRobotFailTask(t *testing.T) {
	robot := createTestRobot(t, "robot-001")
	require.NoError(t, robot.AssignTask(createTestTask(t, "task-001")))
	robot.DrainEvents()

	require.NoError(t, robot.FailTask("obstacle detected"))
	assert.Equal(t, RobotStatusError, robot.Status)
	assert.Nil(t, robot.CurrentTaskID)

	events := robot.DrainEvents()
	require.Len(t, events, 1)
	failed, ok := events[0].(*RobotTaskFailedEvent)
	require.True(t, ok)
	assert.Equal(t, "obstacle detected", failed.Reason)

	assert.Error(t, robot.FailTask("again"))
}

func TestRobotSendToCharging(t *testing.T) {
	t.Run("Idle robot charges", func(t *testing.T) {
		robot := createTestRobot(t, "robot-001")

		require.NoError(t, robot.SendToCharging())
		assert.Equal(t, RobotStatusCharging, robot.Status)

		events := robot.DrainEvents()
		require.Len(t, events, 1)
		assert.IsType(t, &ChargingStartedEvent{}, events[0])
	})

	t.Run("Refuses healthy robot with task", func(t *testing.T) {
		robot := createTestRobot(t, "robot-001")
		require.NoError(t, robot.AssignTask(createTestTask(t, "task-001")))

		err := robot.SendToCharging()
		assert.True(t, IsInvalidState(err))
		assert.Equal(t, RobotStatusExecuting, robot.Status)
	})

	t.Run("Emergency preempts the current task", func(t *testing.T) {
		robot := createTestRobot(t, "robot-001")
		require.NoError(t, robot.AssignTask(createTestTask(t, "task-001")))
		robot.Battery = BatteryLevel{Percentage: 8}
		robot.DrainEvents()

		require.NoError(t, robot.SendToCharging())
		assert.Equal(t, RobotStatusCharging, robot.Status)
		assert.Nil(t, robot.CurrentTaskID)

		events := robot.DrainEvents()
		require.Len(t, events, 2)
		failed, ok := events[0].(*RobotTaskFailedEvent)
		require.True(t, ok)
		assert.Equal(t, "task-001", failed.TaskID)
		assert.Equal(t, "Emergency charging required", failed.Reason)
		assert.IsType(t, &ChargingStartedEvent{}, events[1])
	})

	t.Run("Rejects already charging", func(t *testing.T) {
		robot := createTestRobot(t, "robot-001")
		require.NoError(t, robot.SendToCharging())

		err := robot.SendToCharging()
		assert.True(t, IsInvalidState(err))
	})
}

func TestRobotCompleteCharging(t *testing.T) {
	robot := createTestRobot(t, "robot-001")
	require.NoError(t, robot.UpdateBatteryLevel(15))
	require.NoError(t, robot.SendToCharging())
	robot.DrainEvents()

	require.NoError(t, robot.CompleteCharging())
	assert.Equal(t, RobotStatusIdle, robot.Status)
	assert.Equal(t, 100, robot.Battery.Percentage)

	events := robot.DrainEvents()
	require.Len(t, events, 1)
	assert.IsType(t, &ChargingCompletedEvent{}, events[0])

	assert.Error(t, robot.CompleteCharging())
}

func TestRobotUpdateBatteryLevelEmitsLowEvents(t *testing.T) {
	tests := []struct {
		name        string
		percentage  int
		expectEvent bool
		emergency   bool
	}{
		{name: "Healthy charge", percentage: 60, expectEvent: false},
		{name: "Low charge", percentage: 18, expectEvent: true, emergency: false},
		{name: "Critical charge", percentage: 7, expectEvent: true, emergency: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			robot := createTestRobot(t, "robot-001")
			require.NoError(t, robot.UpdateBatteryLevel(tt.percentage))

			events := robot.DrainEvents()
			if !tt.expectEvent {
				assert.Empty(t, events)
				return
			}
			require.Len(t, events, 1)
			low, ok := events[0].(*BatteryLowEvent)
			require.True(t, ok)
			assert.Equal(t, tt.percentage, low.Percentage)
			assert.Equal(t, tt.emergency, low.Emergency)
		})
	}
}

func TestRobotPerformHealthCheck(t *testing.T) {
	tests := []struct {
		name              string
		metrics           map[string]float64
		expectMaintenance bool
	}{
		{name: "No metrics", metrics: nil, expectMaintenance: false},
		{name: "Healthy metrics", metrics: map[string]float64{MetricErrorCount: 3, MetricTemperature: 55}, expectMaintenance: false},
		{name: "Boundary values pass", metrics: map[string]float64{MetricErrorCount: 10, MetricTemperature: 80}, expectMaintenance: false},
		{name: "Error count exceeded", metrics: map[string]float64{MetricErrorCount: 11}, expectMaintenance: true},
		{name: "Overheating", metrics: map[string]float64{MetricTemperature: 80.5}, expectMaintenance: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			robot := createTestRobot(t, "robot-001")
			for k, v := range tt.metrics {
				robot.UpdateHealthMetric(k, v)
			}

			robot.PerformHealthCheck()

			if tt.expectMaintenance {
				assert.Equal(t, RobotStatusMaintenance, robot.Status)
				events := robot.DrainEvents()
				require.Len(t, events, 1)
				assert.IsType(t, &RobotMaintenanceRequiredEvent{}, events[0])
			} else {
				assert.Equal(t, RobotStatusIdle, robot.Status)
				assert.Empty(t, robot.DrainEvents())
			}
		})
	}
}

func TestRobotOfflineOnline(t *testing.T) {
	robot := createTestRobot(t, "robot-001")

	robot.MarkOffline()
	assert.Equal(t, RobotStatusOffline, robot.Status)
	assert.False(t, robot.IsAvailable())

	robot.MarkOnline()
	assert.Equal(t, RobotStatusIdle, robot.Status)

	// MarkOnline is a no-op for a robot that is not offline
	require.NoError(t, robot.SendToCharging())
	robot.MarkOnline()
	assert.Equal(t, RobotStatusCharging, robot.Status)
}

func TestRobotIsAvailable(t *testing.T) {
	robot := createTestRobot(t, "robot-001")
	assert.True(t, robot.IsAvailable())

	require.NoError(t, robot.UpdateBatteryLevel(25))
	assert.False(t, robot.IsAvailable())

	require.NoError(t, robot.UpdateBatteryLevel(90))
	robot.MarkOffline()
	assert.False(t, robot.IsAvailable())
}

func TestRobotIsHeartbeatStale(t *testing.T) {
	robot := createTestRobot(t, "robot-001")
	assert.False(t, robot.IsHeartbeatStale(time.Minute))

	robot.LastHeartbeat = time.Now().Add(-2 * time.Minute)
	assert.True(t, robot.IsHeartbeatStale(time.Minute))
}

func TestRobotDrainEventsClearsBuffer(t *testing.T) {
	robot := createTestRobot(t, "robot-001")
	require.NoError(t, robot.AssignTask(createTestTask(t, "task-001")))

	assert.Len(t, robot.DrainEvents(), 1)
	assert.Empty(t, robot.DrainEvents())
}
