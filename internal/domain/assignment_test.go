package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanRobotAcceptTask(t *testing.T) {
	assigner := NewTaskAssignmentService()
	task := createTestTask(t, "task-001")

	t.Run("Available robot with capability", func(t *testing.T) {
		robot := createTestRobot(t, "robot-001")
		assert.True(t, assigner.CanRobotAcceptTask(robot, task))
	})

	t.Run("Busy robot refused", func(t *testing.T) {
		robot := createTestRobot(t, "robot-001")
		require.NoError(t, robot.AssignTask(createTestTask(t, "task-other")))
		assert.False(t, assigner.CanRobotAcceptTask(robot, task))
	})

	t.Run("Missing capability refused", func(t *testing.T) {
		robot, err := NewRobot("robot-001", "AMR-500", RobotPosition{}, []RobotCapability{CapabilitySorter})
		require.NoError(t, err)
		assert.False(t, assigner.CanRobotAcceptTask(robot, task))
	})
}

func TestFindOptimalRobot(t *testing.T) {
	assigner := NewTaskAssignmentService()

	task, err := NewRobotTask("task-001", TaskTypePick, PriorityNormal, RobotPosition{X: 0, Y: 0}, RobotPosition{X: 50, Y: 50}, CapabilityPicker, nil)
	require.NoError(t, err)

	t.Run("Picks nearest qualifying robot", func(t *testing.T) {
		near := createTestRobot(t, "robot-near")
		near.Position = RobotPosition{X: 1, Y: 1}
		far := createTestRobot(t, "robot-far")
		far.Position = RobotPosition{X: 100, Y: 100}

		optimal := assigner.FindOptimalRobot(task, []*Robot{far, near})
		require.NotNil(t, optimal)
		assert.Equal(t, "robot-near", optimal.RobotID)
	})

	t.Run("Skips unavailable robots", func(t *testing.T) {
		busy := createTestRobot(t, "robot-busy")
		busy.Position = RobotPosition{X: 1, Y: 1}
		require.NoError(t, busy.AssignTask(createTestTask(t, "task-other")))
		idle := createTestRobot(t, "robot-idle")
		idle.Position = RobotPosition{X: 100, Y: 100}

		optimal := assigner.FindOptimalRobot(task, []*Robot{busy, idle})
		require.NotNil(t, optimal)
		assert.Equal(t, "robot-idle", optimal.RobotID)
	})

	t.Run("Nil when nothing qualifies", func(t *testing.T) {
		low := createTestRobot(t, "robot-low")
		require.NoError(t, low.UpdateBatteryLevel(20))

		assert.Nil(t, assigner.FindOptimalRobot(task, []*Robot{low}))
		assert.Nil(t, assigner.FindOptimalRobot(task, nil))
	})

	t.Run("Tie breaks toward earliest candidate", func(t *testing.T) {
		first := createTestRobot(t, "robot-a")
		first.Position = RobotPosition{X: 10, Y: 0}
		second := createTestRobot(t, "robot-b")
		second.Position = RobotPosition{X: 0, Y: 10}

		optimal := assigner.FindOptimalRobot(task, []*Robot{first, second})
		require.NotNil(t, optimal)
		assert.Equal(t, "robot-a", optimal.RobotID)
	})
}

func BenchmarkFindOptimalRobot(b *testing.B) {
	assigner := NewTaskAssignmentService()

	task, err := NewRobotTask("task-001", TaskTypePick, PriorityNormal, RobotPosition{X: 500, Y: 500}, RobotPosition{X: 900, Y: 900}, CapabilityPicker, nil)
	if err != nil {
		b.Fatal(err)
	}

	robots := make([]*Robot, 0, 500)
	for i := 0; i < 500; i++ {
		robot, err := NewRobot(fmt.Sprintf("robot-%03d", i), "AMR-500", RobotPosition{X: float64(i), Y: float64(i)}, []RobotCapability{CapabilityPicker})
		if err != nil {
			b.Fatal(err)
		}
		robots = append(robots, robot)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		assigner.FindOptimalRobot(task, robots)
	}
}
