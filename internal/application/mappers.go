package application

import (
	"sort"

	"github.com/paklog/fleet-service/internal/domain"
)

// ToPositionDTO maps a domain position to its DTO
func ToPositionDTO(p domain.RobotPosition) PositionDTO {
	return PositionDTO{X: p.X, Y: p.Y, Heading: p.Heading}
}

// ToRobotDTO maps a robot aggregate to its DTO
func ToRobotDTO(robot *domain.Robot) *RobotDTO {
	capabilities := make([]string, len(robot.Capabilities))
	for i, c := range robot.Capabilities {
		capabilities[i] = string(c)
	}

	return &RobotDTO{
		RobotID:       robot.RobotID,
		Model:         robot.Model,
		Status:        string(robot.Status),
		Position:      ToPositionDTO(robot.Position),
		Battery:       robot.Battery.Percentage,
		BatteryStatus: string(robot.Battery.HealthStatus()),
		CurrentTaskID: robot.CurrentTaskID,
		Capabilities:  capabilities,
		HealthMetrics: robot.HealthMetrics,
		Available:     robot.IsAvailable(),
		LastHeartbeat: robot.LastHeartbeat,
		CreatedAt:     robot.CreatedAt,
		UpdatedAt:     robot.UpdatedAt,
	}
}

// ToRobotDTOs maps a slice of robots
func ToRobotDTOs(robots []*domain.Robot) []RobotDTO {
	dtos := make([]RobotDTO, len(robots))
	for i, robot := range robots {
		dtos[i] = *ToRobotDTO(robot)
	}
	return dtos
}

// ToTaskDTO maps a task aggregate to its DTO
func ToTaskDTO(task *domain.RobotTask) *TaskDTO {
	return &TaskDTO{
		TaskID:             task.TaskID,
		RobotID:            task.RobotID,
		Type:               string(task.Type),
		Priority:           string(task.Priority),
		Origin:             ToPositionDTO(task.Origin),
		Destination:        ToPositionDTO(task.Destination),
		RequiredCapability: string(task.RequiredCapability),
		Payload:            task.Payload,
		Status:             string(task.Status),
		FailureReason:      task.FailureReason,
		CreatedAt:          task.CreatedAt,
		AssignedAt:         task.AssignedAt,
		StartedAt:          task.StartedAt,
		CompletedAt:        task.CompletedAt,
	}
}

// ToTaskDTOs maps a slice of tasks
func ToTaskDTOs(tasks []*domain.RobotTask) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = *ToTaskDTO(task)
	}
	return dtos
}

// ToStationDTO maps a charging station aggregate to its DTO
func ToStationDTO(station *domain.ChargingStation) *StationDTO {
	charging := make([]string, 0, len(station.ChargingRobots))
	for robotID := range station.ChargingRobots {
		charging = append(charging, robotID)
	}
	sort.Strings(charging)

	queue := station.Queue
	if queue == nil {
		queue = []string{}
	}

	return &StationDTO{
		StationID:       station.StationID,
		Location:        ToPositionDTO(station.Location),
		Capacity:        station.Capacity,
		AvailableSlots:  station.AvailableSlots,
		Queue:           queue,
		ChargingRobots:  charging,
		UtilizationRate: station.UtilizationRate(),
	}
}

// ToFleetStatusDTO maps a fleet health summary to its DTO
func ToFleetStatusDTO(fleet *domain.Fleet, status domain.FleetHealthStatus) FleetStatusDTO {
	return FleetStatusDTO{
		FleetID:          fleet.FleetID,
		TotalRobots:      status.TotalRobots,
		IdleRobots:       status.IdleRobots,
		ExecutingRobots:  status.ExecutingRobots,
		ChargingRobots:   status.ChargingRobots,
		MaintenanceCount: status.MaintenanceCount,
		ErrorCount:       status.ErrorCount,
		OfflineCount:     status.OfflineCount,
		UtilizationRate:  status.UtilizationRate,
		Healthy:          status.Healthy,
		NeedsRebalancing: fleet.NeedsRebalancing(),
		LastRebalanceAt:  fleet.LastRebalanceAt,
	}
}

// ToPathPlanDTO maps a path plan to its DTO
func ToPathPlanDTO(plan *domain.PathPlan) *PathPlanDTO {
	waypoints := make([]PositionDTO, len(plan.Waypoints))
	for i, wp := range plan.Waypoints {
		waypoints[i] = ToPositionDTO(wp)
	}

	return &PathPlanDTO{
		Waypoints:            waypoints,
		TotalDistance:        plan.TotalDistance,
		EstimatedTimeSeconds: plan.EstimatedTimeSeconds,
		PlannedAt:            plan.PlannedAt,
	}
}

// toDomainPositions converts raw position inputs, validating each
func toDomainPositions(inputs []PositionInput) ([]domain.RobotPosition, error) {
	positions := make([]domain.RobotPosition, len(inputs))
	for i, in := range inputs {
		p, err := domain.NewRobotPosition(in.X, in.Y, in.Heading)
		if err != nil {
			return nil, err
		}
		positions[i] = p
	}
	return positions, nil
}

// toDomainPathPlan converts a path plan DTO back into the domain type
func toDomainPathPlan(dto PathPlanDTO) (*domain.PathPlan, error) {
	waypoints := make([]domain.RobotPosition, len(dto.Waypoints))
	for i, wp := range dto.Waypoints {
		p, err := domain.NewRobotPosition(wp.X, wp.Y, wp.Heading)
		if err != nil {
			return nil, err
		}
		waypoints[i] = p
	}
	return domain.NewPathPlan(waypoints, dto.TotalDistance, dto.EstimatedTimeSeconds)
}
