package domain

import "math"

// TaskAssignmentService selects the best robot for a task. It is stateless;
// callers pass the candidate snapshot and must handle the stale-selection
// race (the chosen robot may reject AssignTask with an invalid-state error)
// by retrying selection.
type TaskAssignmentService struct{}

// NewTaskAssignmentService creates a TaskAssignmentService
func NewTaskAssignmentService() *TaskAssignmentService {
	return &TaskAssignmentService{}
}

// CanRobotAcceptTask reports whether a robot qualifies for a task
func (s *TaskAssignmentService) CanRobotAcceptTask(robot *Robot, task *RobotTask) bool {
	return robot.IsAvailable() && robot.HasCapability(task.RequiredCapability)
}

// FindOptimalRobot returns the qualifying robot nearest to the task origin,
// or nil if none qualifies. Ties break toward the earliest candidate in the
// input order.
func (s *TaskAssignmentService) FindOptimalRobot(task *RobotTask, robots []*Robot) *Robot {
	var optimal *Robot
	best := math.MaxFloat64

	for _, robot := range robots {
		if !s.CanRobotAcceptTask(robot, task) {
			continue
		}
		if d := robot.Position.DistanceTo(task.Origin); d < best {
			best = d
			optimal = robot
		}
	}

	return optimal
}
