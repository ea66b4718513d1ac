package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// FleetTaskQueue is the Temporal task queue for fleet workflows
const FleetTaskQueue = "fleet-task-queue"

const (
	defaultAssignmentAttempts = 5
	noCandidateBackoff        = 30 * time.Second
)

// TaskAssignmentInput is the input for the task assignment workflow
type TaskAssignmentInput struct {
	TaskID      string `json:"taskId"`
	MaxAttempts int    `json:"maxAttempts,omitempty"`
}

// TaskAssignmentResult is the result of the task assignment workflow
type TaskAssignmentResult struct {
	TaskID   string `json:"taskId"`
	RobotID  string `json:"robotId,omitempty"`
	Status   string `json:"status"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error,omitempty"`
}

// RobotSelection is the outcome of the robot selection activity
type RobotSelection struct {
	RobotID string `json:"robotId,omitempty"`
}

// AssignmentOutcome is the outcome of the assignment activity. A conflict
// means the selected robot was taken between selection and assignment; the
// workflow re-selects rather than failing.
type AssignmentOutcome struct {
	Assigned bool   `json:"assigned"`
	Conflict bool   `json:"conflict"`
	Error    string `json:"error,omitempty"`
}

// TaskAssignmentWorkflow selects the optimal robot for a task and assigns it,
// retrying selection when no candidate is available or the selection went
// stale before the assignment landed.
func TaskAssignmentWorkflow(ctx workflow.Context, input TaskAssignmentInput) (*TaskAssignmentResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting task assignment workflow", "taskId", input.TaskID)

	maxAttempts := input.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultAssignmentAttempts
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	result := &TaskAssignmentResult{
		TaskID: input.TaskID,
		Status: "pending",
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt

		var selection RobotSelection
		err := workflow.ExecuteActivity(ctx, "SelectOptimalRobot", input.TaskID).Get(ctx, &selection)
		if err != nil {
			result.Status = "failed"
			result.Error = err.Error()
			return result, fmt.Errorf("robot selection failed: %w", err)
		}

		if selection.RobotID == "" {
			logger.Info("No robot available, backing off", "taskId", input.TaskID, "attempt", attempt)
			if err := workflow.Sleep(ctx, noCandidateBackoff); err != nil {
				return result, err
			}
			continue
		}

		var outcome AssignmentOutcome
		err = workflow.ExecuteActivity(ctx, "AssignTaskToRobot", AssignTaskActivityInput{
			TaskID:  input.TaskID,
			RobotID: selection.RobotID,
		}).Get(ctx, &outcome)
		if err != nil {
			result.Status = "failed"
			result.Error = err.Error()
			return result, fmt.Errorf("assignment failed: %w", err)
		}

		if outcome.Conflict {
			logger.Info("Selection went stale, re-selecting",
				"taskId", input.TaskID,
				"robotId", selection.RobotID,
				"attempt", attempt,
			)
			continue
		}

		if outcome.Assigned {
			result.RobotID = selection.RobotID
			result.Status = "assigned"
			logger.Info("Task assigned", "taskId", input.TaskID, "robotId", selection.RobotID)
			return result, nil
		}
	}

	result.Status = "unassigned"
	result.Error = fmt.Sprintf("no robot assigned after %d attempts", maxAttempts)
	logger.Warn("Task assignment exhausted", "taskId", input.TaskID, "attempts", maxAttempts)
	return result, nil
}

// AssignTaskActivityInput is the input for the assignment activity
type AssignTaskActivityInput struct {
	TaskID  string `json:"taskId"`
	RobotID string `json:"robotId"`
}
