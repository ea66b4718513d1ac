package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/paklog/fleet-service/internal/application"
	"github.com/paklog/fleet-service/internal/workflows"
	"github.com/paklog/fleet-service/pkg/errors"
	"github.com/paklog/fleet-service/pkg/metrics"
)

// FleetActivities wraps the application service for Temporal workflows
type FleetActivities struct {
	service *application.FleetApplicationService
	metrics *metrics.Metrics
}

// NewFleetActivities creates a new FleetActivities
func NewFleetActivities(service *application.FleetApplicationService, m *metrics.Metrics) *FleetActivities {
	return &FleetActivities{
		service: service,
		metrics: m,
	}
}

// SelectOptimalRobot picks the best candidate robot for a task. An empty
// robot ID in the result means no robot is available right now.
func (a *FleetActivities) SelectOptimalRobot(ctx context.Context, taskID string) (*workflows.RobotSelection, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Selecting robot for task", "taskId", taskID)

	robot, err := a.service.SelectOptimalRobot(ctx, taskID)
	if err != nil {
		a.metrics.RecordActivityCompleted("SelectOptimalRobot", false)
		return nil, fmt.Errorf("failed to select robot for task %s: %w", taskID, err)
	}

	a.metrics.RecordActivityCompleted("SelectOptimalRobot", true)
	if robot == nil {
		return &workflows.RobotSelection{}, nil
	}
	return &workflows.RobotSelection{RobotID: robot.RobotID}, nil
}

// AssignTaskToRobot assigns a task to the selected robot. A conflict, raised
// when the robot was taken between selection and assignment, is reported in
// the outcome so the workflow can re-select instead of retrying blindly.
func (a *FleetActivities) AssignTaskToRobot(ctx context.Context, input workflows.AssignTaskActivityInput) (*workflows.AssignmentOutcome, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Assigning task", "taskId", input.TaskID, "robotId", input.RobotID)

	_, err := a.service.AssignTask(ctx, application.AssignTaskCommand{
		TaskID:  input.TaskID,
		RobotID: input.RobotID,
	})
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.CodeConflict {
			logger.Warn("Assignment conflict", "taskId", input.TaskID, "robotId", input.RobotID, "error", appErr.Message)
			a.metrics.RecordActivityCompleted("AssignTaskToRobot", true)
			return &workflows.AssignmentOutcome{Conflict: true, Error: appErr.Message}, nil
		}
		a.metrics.RecordActivityCompleted("AssignTaskToRobot", false)
		return nil, fmt.Errorf("failed to assign task %s to robot %s: %w", input.TaskID, input.RobotID, err)
	}

	a.metrics.RecordActivityCompleted("AssignTaskToRobot", true)
	return &workflows.AssignmentOutcome{Assigned: true}, nil
}

// EnqueueRobotForCharging places a robot in a station's charging queue. With
// no station named the nearest station to the robot is used.
func (a *FleetActivities) EnqueueRobotForCharging(ctx context.Context, input workflows.ChargingInput) (*workflows.ChargingQueueStatus, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Enqueueing robot for charging", "robotId", input.RobotID, "stationId", input.StationID)

	position, err := a.service.EnqueueForCharging(ctx, application.EnqueueChargingCommand{
		RobotID:   input.RobotID,
		StationID: input.StationID,
	})
	if err != nil {
		a.metrics.RecordActivityCompleted("EnqueueRobotForCharging", false)
		return nil, fmt.Errorf("failed to enqueue robot %s: %w", input.RobotID, err)
	}

	a.metrics.RecordActivityCompleted("EnqueueRobotForCharging", true)
	return &workflows.ChargingQueueStatus{
		StationID:            position.StationID,
		Position:             position.Position,
		EstimatedWaitMinutes: position.EstimatedWaitMinutes,
		Admitted:             position.Position == 0,
	}, nil
}

// AdmitRobotForCharging tries to move a queued robot into a free slot. When
// the station has no free slot or the robot is not at the head of the queue
// the outcome reports the current position instead of failing.
func (a *FleetActivities) AdmitRobotForCharging(ctx context.Context, input workflows.StartChargingActivityInput) (*workflows.ChargingQueueStatus, error) {
	logger := activity.GetLogger(ctx)

	position, err := a.service.QueuePosition(ctx, application.QueuePositionQuery{
		StationID: input.StationID,
		RobotID:   input.RobotID,
	})
	if err != nil {
		a.metrics.RecordActivityCompleted("AdmitRobotForCharging", false)
		return nil, fmt.Errorf("failed to check queue position: %w", err)
	}

	// Already in a slot, nothing to admit
	if position.Position == 0 {
		a.metrics.RecordActivityCompleted("AdmitRobotForCharging", true)
		return &workflows.ChargingQueueStatus{
			StationID: input.StationID,
			Admitted:  true,
		}, nil
	}

	_, err = a.service.StartCharging(ctx, application.StartChargingCommand{
		StationID: input.StationID,
		RobotID:   input.RobotID,
	})
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.CodeConflict {
			logger.Info("Robot not admitted yet",
				"robotId", input.RobotID,
				"stationId", input.StationID,
				"position", position.Position,
			)
			a.metrics.RecordActivityCompleted("AdmitRobotForCharging", true)
			return &workflows.ChargingQueueStatus{
				StationID:            input.StationID,
				Position:             position.Position,
				EstimatedWaitMinutes: position.EstimatedWaitMinutes,
			}, nil
		}
		a.metrics.RecordActivityCompleted("AdmitRobotForCharging", false)
		return nil, fmt.Errorf("failed to start charging robot %s: %w", input.RobotID, err)
	}

	logger.Info("Robot admitted to charging slot", "robotId", input.RobotID, "stationId", input.StationID)
	a.metrics.RecordActivityCompleted("AdmitRobotForCharging", true)
	return &workflows.ChargingQueueStatus{
		StationID: input.StationID,
		Admitted:  true,
	}, nil
}

// ReleaseRobotFromCharging frees the robot's slot and reports the queued
// robot promoted into it, if any
func (a *FleetActivities) ReleaseRobotFromCharging(ctx context.Context, input workflows.StartChargingActivityInput) (*workflows.ChargingReleaseStatus, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Releasing robot from charging", "robotId", input.RobotID, "stationId", input.StationID)

	result, err := a.service.ReleaseFromCharging(ctx, application.ReleaseChargingCommand{
		StationID: input.StationID,
		RobotID:   input.RobotID,
	})
	if err != nil {
		a.metrics.RecordActivityCompleted("ReleaseRobotFromCharging", false)
		return nil, fmt.Errorf("failed to release robot %s: %w", input.RobotID, err)
	}

	a.metrics.RecordActivityCompleted("ReleaseRobotFromCharging", true)
	return &workflows.ChargingReleaseStatus{
		PromotedRobotID: result.PromotedRobotID,
	}, nil
}
