package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	defaultChargeMinutes    = 30
	chargingPollInterval    = time.Minute
	maxChargingAdmissionTry = 60
)

// ChargingInput is the input for the charging workflow
type ChargingInput struct {
	RobotID       string `json:"robotId"`
	StationID     string `json:"stationId,omitempty"`
	ChargeMinutes int    `json:"chargeMinutes,omitempty"`
}

// ChargingResult is the result of the charging workflow
type ChargingResult struct {
	RobotID         string `json:"robotId"`
	StationID       string `json:"stationId"`
	PromotedRobotID string `json:"promotedRobotId,omitempty"`
	Status          string `json:"status"`
	Error           string `json:"error,omitempty"`
}

// ChargingQueueStatus is the outcome of the enqueue and admission activities
type ChargingQueueStatus struct {
	StationID            string `json:"stationId"`
	Position             int    `json:"position"`
	EstimatedWaitMinutes int    `json:"estimatedWaitMinutes"`
	Admitted             bool   `json:"admitted"`
}

// ChargingReleaseStatus is the outcome of the release activity
type ChargingReleaseStatus struct {
	PromotedRobotID string `json:"promotedRobotId,omitempty"`
}

// StartChargingActivityInput is the input for the admission activity
type StartChargingActivityInput struct {
	StationID string `json:"stationId"`
	RobotID   string `json:"robotId"`
}

// ChargingWorkflow walks a robot through a full charge cycle: enqueue at a
// station, wait for a free slot, charge for the configured duration, then
// release the slot so the next queued robot is admitted.
func ChargingWorkflow(ctx workflow.Context, input ChargingInput) (*ChargingResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting charging workflow", "robotId", input.RobotID, "stationId", input.StationID)

	chargeMinutes := input.ChargeMinutes
	if chargeMinutes <= 0 {
		chargeMinutes = defaultChargeMinutes
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

	result := &ChargingResult{
		RobotID: input.RobotID,
		Status:  "queued",
	}

	var queued ChargingQueueStatus
	err := workflow.ExecuteActivity(ctx, "EnqueueRobotForCharging", input).Get(ctx, &queued)
	if err != nil {
		result.Status = "failed"
		result.Error = err.Error()
		return result, fmt.Errorf("enqueue failed: %w", err)
	}
	result.StationID = queued.StationID

	admitted := false
	for attempt := 0; attempt < maxChargingAdmissionTry; attempt++ {
		var admission ChargingQueueStatus
		err := workflow.ExecuteActivity(ctx, "AdmitRobotForCharging", StartChargingActivityInput{
			StationID: result.StationID,
			RobotID:   input.RobotID,
		}).Get(ctx, &admission)
		if err != nil {
			result.Status = "failed"
			result.Error = err.Error()
			return result, fmt.Errorf("admission failed: %w", err)
		}

		if admission.Admitted {
			admitted = true
			break
		}

		logger.Info("Waiting for charging slot",
			"robotId", input.RobotID,
			"stationId", result.StationID,
			"position", admission.Position,
		)
		if err := workflow.Sleep(ctx, chargingPollInterval); err != nil {
			return result, err
		}
	}

	if !admitted {
		result.Status = "failed"
		result.Error = "no charging slot became available"
		return result, nil
	}

	result.Status = "charging"
	logger.Info("Robot charging", "robotId", input.RobotID, "stationId", result.StationID, "minutes", chargeMinutes)

	if err := workflow.Sleep(ctx, time.Duration(chargeMinutes)*time.Minute); err != nil {
		return result, err
	}

	var release ChargingReleaseStatus
	err = workflow.ExecuteActivity(ctx, "ReleaseRobotFromCharging", StartChargingActivityInput{
		StationID: result.StationID,
		RobotID:   input.RobotID,
	}).Get(ctx, &release)
	if err != nil {
		result.Status = "failed"
		result.Error = err.Error()
		return result, fmt.Errorf("release failed: %w", err)
	}

	result.PromotedRobotID = release.PromotedRobotID
	result.Status = "completed"
	logger.Info("Charging completed",
		"robotId", input.RobotID,
		"stationId", result.StationID,
		"promotedRobotId", release.PromotedRobotID,
	)
	return result, nil
}
