package application

import (
	"context"
	"fmt"

	"github.com/paklog/fleet-service/internal/domain"
	"github.com/paklog/fleet-service/pkg/errors"
	"github.com/paklog/fleet-service/pkg/logging"
	"github.com/paklog/fleet-service/pkg/metrics"
)

// DefaultFleetID identifies the single fleet this service manages
const DefaultFleetID = "fleet-main"

const defaultPendingTaskLimit = 50

// FleetApplicationService handles fleet orchestration use cases
type FleetApplicationService struct {
	robots   domain.RobotRepository
	tasks    domain.TaskRepository
	stations domain.ChargingStationRepository
	fleets   domain.FleetRepository
	assigner *domain.TaskAssignmentService
	planner  domain.PathPlanningService
	logger   *logging.Logger
	metrics  *metrics.Metrics
}

// NewFleetApplicationService creates a new FleetApplicationService
func NewFleetApplicationService(
	robots domain.RobotRepository,
	tasks domain.TaskRepository,
	stations domain.ChargingStationRepository,
	fleets domain.FleetRepository,
	planner domain.PathPlanningService,
	logger *logging.Logger,
	m *metrics.Metrics,
) *FleetApplicationService {
	return &FleetApplicationService{
		robots:   robots,
		tasks:    tasks,
		stations: stations,
		fleets:   fleets,
		assigner: domain.NewTaskAssignmentService(),
		planner:  planner,
		logger:   logger,
		metrics:  m,
	}
}

// mapDomainError translates domain errors into transport-level AppErrors
func mapDomainError(err error) error {
	if domain.IsInvalidArgument(err) {
		return errors.ErrValidation(err.Error())
	}
	if domain.IsInvalidState(err) {
		return errors.ErrConflict(err.Error())
	}
	return err
}

// RegisterRobot registers a new robot and adds it to the fleet
func (s *FleetApplicationService) RegisterRobot(ctx context.Context, cmd RegisterRobotCommand) (*RobotDTO, error) {
	existing, err := s.robots.FindByID(ctx, cmd.RobotID)
	if err != nil {
		return nil, fmt.Errorf("failed to check robot: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("robot %s is already registered", cmd.RobotID))
	}

	position, err := domain.NewRobotPosition(cmd.Position.X, cmd.Position.Y, cmd.Position.Heading)
	if err != nil {
		return nil, mapDomainError(err)
	}

	capabilities := make([]domain.RobotCapability, 0, len(cmd.Capabilities))
	for _, c := range cmd.Capabilities {
		capability, err := domain.ParseCapability(c)
		if err != nil {
			return nil, mapDomainError(err)
		}
		capabilities = append(capabilities, capability)
	}

	robot, err := domain.NewRobot(cmd.RobotID, cmd.Model, position, capabilities)
	if err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.robots.Save(ctx, robot); err != nil {
		s.logger.WithError(err).Error("Failed to save robot", "robotId", cmd.RobotID)
		return nil, fmt.Errorf("failed to save robot: %w", err)
	}

	if err := s.syncFleetMembership(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to sync fleet membership", "robotId", cmd.RobotID)
	}

	s.logger.Info("Registered robot", "robotId", cmd.RobotID, "model", cmd.Model)
	return ToRobotDTO(robot), nil
}

// GetRobot retrieves a robot by ID
func (s *FleetApplicationService) GetRobot(ctx context.Context, query GetRobotQuery) (*RobotDTO, error) {
	robot, err := s.findRobot(ctx, query.RobotID)
	if err != nil {
		return nil, err
	}
	return ToRobotDTO(robot), nil
}

// ListRobots lists robots with optional status or capability filters
func (s *FleetApplicationService) ListRobots(ctx context.Context, query ListRobotsQuery) ([]RobotDTO, error) {
	var robots []*domain.Robot
	var err error

	switch {
	case query.Status != "":
		robots, err = s.robots.FindByStatus(ctx, domain.RobotStatus(query.Status))
	case query.Capability != "":
		capability, parseErr := domain.ParseCapability(query.Capability)
		if parseErr != nil {
			return nil, mapDomainError(parseErr)
		}
		robots, err = s.robots.FindByCapability(ctx, capability)
	default:
		robots, err = s.robots.FindAll(ctx)
	}

	if err != nil {
		s.logger.WithError(err).Error("Failed to list robots")
		return nil, fmt.Errorf("failed to list robots: %w", err)
	}

	return ToRobotDTOs(robots), nil
}

// RecordHeartbeat records a robot's position, battery, and health metrics
func (s *FleetApplicationService) RecordHeartbeat(ctx context.Context, cmd RecordHeartbeatCommand) (*RobotDTO, error) {
	robot, err := s.findRobot(ctx, cmd.RobotID)
	if err != nil {
		return nil, err
	}

	position, err := domain.NewRobotPosition(cmd.Position.X, cmd.Position.Y, cmd.Position.Heading)
	if err != nil {
		return nil, mapDomainError(err)
	}

	robot.UpdatePosition(position)
	if err := robot.UpdateBatteryLevel(cmd.BatteryPercentage); err != nil {
		return nil, mapDomainError(err)
	}
	for key, value := range cmd.HealthMetrics {
		robot.UpdateHealthMetric(key, value)
	}

	if robot.Battery.NeedsEmergencyCharging() {
		s.metrics.RecordBatteryLow(true)
	} else if robot.Battery.NeedsCharging() {
		s.metrics.RecordBatteryLow(false)
	}

	if err := s.robots.Save(ctx, robot); err != nil {
		s.logger.WithError(err).Error("Failed to save robot", "robotId", cmd.RobotID)
		return nil, fmt.Errorf("failed to save robot: %w", err)
	}

	return ToRobotDTO(robot), nil
}

// PerformHealthCheck runs the maintenance heuristic on a robot
func (s *FleetApplicationService) PerformHealthCheck(ctx context.Context, cmd PerformHealthCheckCommand) (*RobotDTO, error) {
	robot, err := s.findRobot(ctx, cmd.RobotID)
	if err != nil {
		return nil, err
	}

	robot.PerformHealthCheck()

	if err := s.robots.Save(ctx, robot); err != nil {
		s.logger.WithError(err).Error("Failed to save robot", "robotId", cmd.RobotID)
		return nil, fmt.Errorf("failed to save robot: %w", err)
	}

	if robot.Status == domain.RobotStatusMaintenance {
		s.logger.Warn("Robot requires maintenance", "robotId", cmd.RobotID, "metrics", robot.HealthMetrics)
	}

	return ToRobotDTO(robot), nil
}

// MarkRobotOffline takes a robot out of service
func (s *FleetApplicationService) MarkRobotOffline(ctx context.Context, cmd MarkRobotOfflineCommand) (*RobotDTO, error) {
	robot, err := s.findRobot(ctx, cmd.RobotID)
	if err != nil {
		return nil, err
	}

	robot.MarkOffline()

	if err := s.robots.Save(ctx, robot); err != nil {
		return nil, fmt.Errorf("failed to save robot: %w", err)
	}

	s.logger.Info("Marked robot offline", "robotId", cmd.RobotID)
	return ToRobotDTO(robot), nil
}

// MarkRobotOnline returns an offline robot to service
func (s *FleetApplicationService) MarkRobotOnline(ctx context.Context, cmd MarkRobotOnlineCommand) (*RobotDTO, error) {
	robot, err := s.findRobot(ctx, cmd.RobotID)
	if err != nil {
		return nil, err
	}

	robot.MarkOnline()

	if err := s.robots.Save(ctx, robot); err != nil {
		return nil, fmt.Errorf("failed to save robot: %w", err)
	}

	s.logger.Info("Marked robot online", "robotId", cmd.RobotID)
	return ToRobotDTO(robot), nil
}

// CreateTask creates a new pending task
func (s *FleetApplicationService) CreateTask(ctx context.Context, cmd CreateTaskCommand) (*TaskDTO, error) {
	existing, err := s.tasks.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to check task: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("task %s already exists", cmd.TaskID))
	}

	origin, err := domain.NewRobotPosition(cmd.Origin.X, cmd.Origin.Y, cmd.Origin.Heading)
	if err != nil {
		return nil, mapDomainError(err)
	}
	destination, err := domain.NewRobotPosition(cmd.Destination.X, cmd.Destination.Y, cmd.Destination.Heading)
	if err != nil {
		return nil, mapDomainError(err)
	}

	task, err := domain.NewRobotTask(
		cmd.TaskID,
		domain.TaskType(cmd.Type),
		domain.TaskPriority(cmd.Priority),
		origin,
		destination,
		domain.RobotCapability(cmd.RequiredCapability),
		cmd.Payload,
	)
	if err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		s.logger.WithError(err).Error("Failed to save task", "taskId", cmd.TaskID)
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	s.metrics.RecordTaskCreated(cmd.Type, cmd.Priority)
	s.logger.Info("Created task", "taskId", cmd.TaskID, "type", cmd.Type, "priority", cmd.Priority)
	return ToTaskDTO(task), nil
}

// GetTask retrieves a task by ID
func (s *FleetApplicationService) GetTask(ctx context.Context, query GetTaskQuery) (*TaskDTO, error) {
	task, err := s.findTask(ctx, query.TaskID)
	if err != nil {
		return nil, err
	}
	return ToTaskDTO(task), nil
}

// ListTasks lists tasks by status; pending tasks when no status is given
func (s *FleetApplicationService) ListTasks(ctx context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	var tasks []*domain.RobotTask
	var err error

	if query.Status == "" {
		tasks, err = s.tasks.FindPending(ctx, defaultPendingTaskLimit)
	} else {
		tasks, err = s.tasks.FindByStatus(ctx, domain.TaskStatus(query.Status))
	}

	if err != nil {
		s.logger.WithError(err).Error("Failed to list tasks")
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return ToTaskDTOs(tasks), nil
}

// AssignTask assigns a task to a robot. When no robot is named the optimal
// candidate is selected by capability, availability, and distance to origin.
// Both aggregates are mutated in memory before either is persisted.
func (s *FleetApplicationService) AssignTask(ctx context.Context, cmd AssignTaskCommand) (*TaskDTO, error) {
	task, err := s.findTask(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}

	var robot *domain.Robot
	if cmd.RobotID != "" {
		robot, err = s.findRobot(ctx, cmd.RobotID)
		if err != nil {
			return nil, err
		}
	} else {
		candidates, err := s.robots.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load robots: %w", err)
		}
		robot = s.assigner.FindOptimalRobot(task, candidates)
		if robot == nil {
			return nil, errors.ErrConflict(fmt.Sprintf("no robot available for task %s", cmd.TaskID))
		}
	}

	if err := robot.AssignTask(task); err != nil {
		return nil, mapDomainError(err)
	}
	if err := task.Assign(robot.RobotID); err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.robots.Save(ctx, robot); err != nil {
		s.logger.WithError(err).Error("Failed to save robot", "robotId", robot.RobotID)
		return nil, fmt.Errorf("failed to save robot: %w", err)
	}
	if err := s.tasks.Save(ctx, task); err != nil {
		s.logger.WithError(err).Error("Failed to save task", "taskId", cmd.TaskID)
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	s.metrics.RecordTaskAssigned()
	s.logger.Info("Assigned task", "taskId", cmd.TaskID, "robotId", robot.RobotID)
	return ToTaskDTO(task), nil
}

// SelectOptimalRobot picks the best robot for a task without assigning it.
// Returns nil when no robot can take the task right now.
func (s *FleetApplicationService) SelectOptimalRobot(ctx context.Context, taskID string) (*RobotDTO, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.robots.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load robots: %w", err)
	}

	robot := s.assigner.FindOptimalRobot(task, candidates)
	if robot == nil {
		return nil, nil
	}
	return ToRobotDTO(robot), nil
}

// StartTask moves an assigned task into execution
func (s *FleetApplicationService) StartTask(ctx context.Context, cmd StartTaskCommand) (*TaskDTO, error) {
	task, err := s.findTask(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}
	if task.RobotID == nil {
		return nil, errors.ErrConflict(fmt.Sprintf("task %s has no assigned robot", cmd.TaskID))
	}

	robot, err := s.findRobot(ctx, *task.RobotID)
	if err != nil {
		return nil, err
	}

	if err := robot.StartTask(); err != nil {
		return nil, mapDomainError(err)
	}
	if err := task.Start(); err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.robots.Save(ctx, robot); err != nil {
		return nil, fmt.Errorf("failed to save robot: %w", err)
	}
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	s.logger.Info("Started task", "taskId", cmd.TaskID, "robotId", robot.RobotID)
	return ToTaskDTO(task), nil
}

// CompleteTask finishes an in-progress task and frees its robot
func (s *FleetApplicationService) CompleteTask(ctx context.Context, cmd CompleteTaskCommand) (*TaskDTO, error) {
	task, err := s.findTask(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}

	if err := task.Complete(); err != nil {
		return nil, mapDomainError(err)
	}

	if task.RobotID != nil {
		robot, err := s.findRobot(ctx, *task.RobotID)
		if err != nil {
			return nil, err
		}
		if err := robot.CompleteTask(); err != nil {
			return nil, mapDomainError(err)
		}
		if err := s.robots.Save(ctx, robot); err != nil {
			return nil, fmt.Errorf("failed to save robot: %w", err)
		}
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	s.metrics.RecordTaskFinished(string(domain.TaskStatusCompleted))
	s.logger.Info("Completed task", "taskId", cmd.TaskID, "duration", task.Duration().String())
	return ToTaskDTO(task), nil
}

// FailTask aborts a task and puts its robot in the error state
func (s *FleetApplicationService) FailTask(ctx context.Context, cmd FailTaskCommand) (*TaskDTO, error) {
	task, err := s.findTask(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}

	if err := task.Fail(cmd.Reason); err != nil {
		return nil, mapDomainError(err)
	}

	if task.RobotID != nil {
		robot, err := s.findRobot(ctx, *task.RobotID)
		if err != nil {
			return nil, err
		}
		if robot.CurrentTaskID != nil && *robot.CurrentTaskID == task.TaskID {
			if err := robot.FailTask(cmd.Reason); err != nil {
				return nil, mapDomainError(err)
			}
			if err := s.robots.Save(ctx, robot); err != nil {
				return nil, fmt.Errorf("failed to save robot: %w", err)
			}
		}
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	s.metrics.RecordTaskFinished(string(domain.TaskStatusFailed))
	s.logger.Warn("Failed task", "taskId", cmd.TaskID, "reason", cmd.Reason)
	return ToTaskDTO(task), nil
}

// CancelTask withdraws a task. A robot still executing the task keeps it
// until it reports completion or failure.
func (s *FleetApplicationService) CancelTask(ctx context.Context, cmd CancelTaskCommand) (*TaskDTO, error) {
	task, err := s.findTask(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}

	if err := task.Cancel(); err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	if task.RobotID != nil {
		s.logger.Warn("Cancelled task still held by robot", "taskId", cmd.TaskID, "robotId", *task.RobotID)
	}

	s.metrics.RecordTaskFinished(string(domain.TaskStatusCancelled))
	s.logger.Info("Cancelled task", "taskId", cmd.TaskID)
	return ToTaskDTO(task), nil
}

// RegisterStation registers a charging station
func (s *FleetApplicationService) RegisterStation(ctx context.Context, cmd RegisterStationCommand) (*StationDTO, error) {
	existing, err := s.stations.FindByID(ctx, cmd.StationID)
	if err != nil {
		return nil, fmt.Errorf("failed to check station: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("station %s is already registered", cmd.StationID))
	}

	location, err := domain.NewRobotPosition(cmd.Location.X, cmd.Location.Y, cmd.Location.Heading)
	if err != nil {
		return nil, mapDomainError(err)
	}

	station, err := domain.NewChargingStation(cmd.StationID, location, cmd.Capacity)
	if err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.stations.Save(ctx, station); err != nil {
		s.logger.WithError(err).Error("Failed to save station", "stationId", cmd.StationID)
		return nil, fmt.Errorf("failed to save station: %w", err)
	}

	s.logger.Info("Registered charging station", "stationId", cmd.StationID, "capacity", cmd.Capacity)
	return ToStationDTO(station), nil
}

// GetStation retrieves a charging station by ID
func (s *FleetApplicationService) GetStation(ctx context.Context, query GetStationQuery) (*StationDTO, error) {
	station, err := s.findStation(ctx, query.StationID)
	if err != nil {
		return nil, err
	}
	return ToStationDTO(station), nil
}

// ListStations retrieves all charging stations
func (s *FleetApplicationService) ListStations(ctx context.Context) ([]StationDTO, error) {
	stations, err := s.stations.FindAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list stations")
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}

	dtos := make([]StationDTO, len(stations))
	for i, station := range stations {
		dtos[i] = *ToStationDTO(station)
	}
	return dtos, nil
}

// EnqueueForCharging sends a robot to a station's queue. An emergency-level
// robot preempts its in-flight task; the abandoned task is failed alongside.
func (s *FleetApplicationService) EnqueueForCharging(ctx context.Context, cmd EnqueueChargingCommand) (*QueuePositionDTO, error) {
	robot, err := s.findRobot(ctx, cmd.RobotID)
	if err != nil {
		return nil, err
	}

	var station *domain.ChargingStation
	if cmd.StationID != "" {
		station, err = s.findStation(ctx, cmd.StationID)
		if err != nil {
			return nil, err
		}
	} else {
		station, err = s.stations.FindNearest(ctx, robot.Position)
		if err != nil {
			return nil, fmt.Errorf("failed to find nearest station: %w", err)
		}
		if station == nil {
			return nil, errors.ErrNotFound("charging station")
		}
	}

	preemptedTaskID := robot.CurrentTaskID

	if err := robot.SendToCharging(); err != nil {
		return nil, mapDomainError(err)
	}
	if err := station.AddToQueue(robot.RobotID); err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.robots.Save(ctx, robot); err != nil {
		return nil, fmt.Errorf("failed to save robot: %w", err)
	}
	if err := s.stations.Save(ctx, station); err != nil {
		return nil, fmt.Errorf("failed to save station: %w", err)
	}

	// Emergency preemption abandoned the robot's task; fail the task aggregate too
	if preemptedTaskID != nil && robot.CurrentTaskID == nil {
		task, err := s.tasks.FindByID(ctx, *preemptedTaskID)
		if err != nil {
			return nil, fmt.Errorf("failed to load preempted task: %w", err)
		}
		if task != nil && !task.IsTerminal() {
			if err := task.Fail("Emergency charging required"); err == nil {
				if err := s.tasks.Save(ctx, task); err != nil {
					return nil, fmt.Errorf("failed to save preempted task: %w", err)
				}
				s.metrics.RecordTaskFinished(string(domain.TaskStatusFailed))
			}
		}
	}

	s.metrics.SetChargingQueueLength(station.StationID, station.QueueLength())
	s.logger.Info("Enqueued robot for charging", "robotId", cmd.RobotID, "stationId", station.StationID)

	return &QueuePositionDTO{
		StationID:            station.StationID,
		RobotID:              robot.RobotID,
		Position:             station.QueuePosition(robot.RobotID),
		EstimatedWaitMinutes: station.EstimateWaitTime(robot.RobotID),
	}, nil
}

// StartCharging admits a queued robot into a free slot
func (s *FleetApplicationService) StartCharging(ctx context.Context, cmd StartChargingCommand) (*StationDTO, error) {
	station, err := s.findStation(ctx, cmd.StationID)
	if err != nil {
		return nil, err
	}

	if err := station.StartCharging(cmd.RobotID); err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.stations.Save(ctx, station); err != nil {
		return nil, fmt.Errorf("failed to save station: %w", err)
	}

	s.metrics.SetChargingQueueLength(station.StationID, station.QueueLength())
	s.logger.Info("Robot started charging", "robotId", cmd.RobotID, "stationId", cmd.StationID)
	return ToStationDTO(station), nil
}

// ReleaseFromCharging frees a slot, completes the robot's charge, and reports
// the queued robot promoted into the freed slot, if any.
func (s *FleetApplicationService) ReleaseFromCharging(ctx context.Context, cmd ReleaseChargingCommand) (*ReleaseChargingResultDTO, error) {
	station, err := s.findStation(ctx, cmd.StationID)
	if err != nil {
		return nil, err
	}
	robot, err := s.findRobot(ctx, cmd.RobotID)
	if err != nil {
		return nil, err
	}

	promoted, err := station.ReleaseRobot(cmd.RobotID)
	if err != nil {
		return nil, mapDomainError(err)
	}
	if err := robot.CompleteCharging(); err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.stations.Save(ctx, station); err != nil {
		return nil, fmt.Errorf("failed to save station: %w", err)
	}
	if err := s.robots.Save(ctx, robot); err != nil {
		return nil, fmt.Errorf("failed to save robot: %w", err)
	}

	s.metrics.SetChargingQueueLength(station.StationID, station.QueueLength())
	s.logger.Info("Released robot from charging",
		"robotId", cmd.RobotID,
		"stationId", cmd.StationID,
		"promotedRobotId", promoted,
	)

	return &ReleaseChargingResultDTO{
		StationID:       cmd.StationID,
		ReleasedRobotID: cmd.RobotID,
		PromotedRobotID: promoted,
	}, nil
}

// QueuePosition reports a robot's standing at a station
func (s *FleetApplicationService) QueuePosition(ctx context.Context, query QueuePositionQuery) (*QueuePositionDTO, error) {
	station, err := s.findStation(ctx, query.StationID)
	if err != nil {
		return nil, err
	}

	return &QueuePositionDTO{
		StationID:            query.StationID,
		RobotID:              query.RobotID,
		Position:             station.QueuePosition(query.RobotID),
		EstimatedWaitMinutes: station.EstimateWaitTime(query.RobotID),
	}, nil
}

// GetFleetStatus returns a point-in-time summary of the fleet
func (s *FleetApplicationService) GetFleetStatus(ctx context.Context) (*FleetStatusDTO, error) {
	fleet, err := s.loadFleet(ctx)
	if err != nil {
		return nil, err
	}

	status := fleet.HealthStatus()
	s.publishFleetGauges(status)

	dto := ToFleetStatusDTO(fleet, status)
	return &dto, nil
}

// RebalanceFleet recomputes fleet metrics and signals a rebalance when the
// workload spread exceeds the imbalance threshold
func (s *FleetApplicationService) RebalanceFleet(ctx context.Context) (*RebalanceResultDTO, error) {
	fleet, err := s.loadFleet(ctx)
	if err != nil {
		return nil, err
	}

	rebalanced := fleet.RebalanceWorkload()
	if rebalanced {
		if err := s.fleets.Save(ctx, fleet); err != nil {
			return nil, fmt.Errorf("failed to save fleet: %w", err)
		}
		s.metrics.RecordFleetRebalance()
		s.logger.Info("Fleet rebalance signalled", "fleetId", fleet.FleetID, "utilization", fleet.UtilizationRate)
	}

	status := fleet.HealthStatus()
	s.publishFleetGauges(status)

	return &RebalanceResultDTO{
		FleetID:    fleet.FleetID,
		Rebalanced: rebalanced,
		Status:     ToFleetStatusDTO(fleet, status),
	}, nil
}

// FindNearestRobot finds the closest available robot with a capability
func (s *FleetApplicationService) FindNearestRobot(ctx context.Context, query FindNearestRobotQuery) (*RobotDTO, error) {
	target, err := domain.NewRobotPosition(query.Position.X, query.Position.Y, query.Position.Heading)
	if err != nil {
		return nil, mapDomainError(err)
	}
	capability, err := domain.ParseCapability(query.Capability)
	if err != nil {
		return nil, mapDomainError(err)
	}

	fleet, err := s.loadFleet(ctx)
	if err != nil {
		return nil, err
	}

	robot := fleet.FindNearestAvailableRobot(target, capability)
	if robot == nil {
		return nil, errors.ErrNotFound("available robot")
	}

	return ToRobotDTO(robot), nil
}

// CalculatePath requests a path plan between two positions
func (s *FleetApplicationService) CalculatePath(ctx context.Context, cmd CalculatePathCommand) (*PathPlanDTO, error) {
	start, err := domain.NewRobotPosition(cmd.Start.X, cmd.Start.Y, cmd.Start.Heading)
	if err != nil {
		return nil, mapDomainError(err)
	}
	goal, err := domain.NewRobotPosition(cmd.Goal.X, cmd.Goal.Y, cmd.Goal.Heading)
	if err != nil {
		return nil, mapDomainError(err)
	}
	blocked, err := toDomainPositions(cmd.Blocked)
	if err != nil {
		return nil, mapDomainError(err)
	}

	plan, err := s.planner.CalculatePath(ctx, start, goal, blocked, nil)
	if err != nil {
		s.logger.WithError(err).Error("Failed to calculate path")
		return nil, fmt.Errorf("failed to calculate path: %w", err)
	}

	return ToPathPlanDTO(plan), nil
}

// ValidatePath checks a plan against currently occupied positions
func (s *FleetApplicationService) ValidatePath(ctx context.Context, cmd ValidatePathCommand) (*PathValidationDTO, error) {
	plan, err := toDomainPathPlan(cmd.Plan)
	if err != nil {
		return nil, mapDomainError(err)
	}
	occupied, err := toDomainPositions(cmd.Occupied)
	if err != nil {
		return nil, mapDomainError(err)
	}

	valid, err := s.planner.ValidatePath(ctx, plan, occupied)
	if err != nil {
		s.logger.WithError(err).Error("Failed to validate path")
		return nil, fmt.Errorf("failed to validate path: %w", err)
	}

	return &PathValidationDTO{Valid: valid}, nil
}

// findRobot loads a robot or returns a not-found error
func (s *FleetApplicationService) findRobot(ctx context.Context, robotID string) (*domain.Robot, error) {
	robot, err := s.robots.FindByID(ctx, robotID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get robot", "robotId", robotID)
		return nil, fmt.Errorf("failed to get robot: %w", err)
	}
	if robot == nil {
		return nil, errors.ErrNotFoundWithID("robot", robotID)
	}
	return robot, nil
}

// findTask loads a task or returns a not-found error
func (s *FleetApplicationService) findTask(ctx context.Context, taskID string) (*domain.RobotTask, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get task", "taskId", taskID)
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, errors.ErrNotFoundWithID("task", taskID)
	}
	return task, nil
}

// findStation loads a station or returns a not-found error
func (s *FleetApplicationService) findStation(ctx context.Context, stationID string) (*domain.ChargingStation, error) {
	station, err := s.stations.FindByID(ctx, stationID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get station", "stationId", stationID)
		return nil, fmt.Errorf("failed to get station: %w", err)
	}
	if station == nil {
		return nil, errors.ErrNotFoundWithID("charging station", stationID)
	}
	return station, nil
}

// loadFleet loads the managed fleet, creating it on first use, and attaches
// the current robot set
func (s *FleetApplicationService) loadFleet(ctx context.Context) (*domain.Fleet, error) {
	fleet, err := s.fleets.FindByID(ctx, DefaultFleetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fleet: %w", err)
	}
	if fleet == nil {
		fleet, err = domain.NewFleet(DefaultFleetID)
		if err != nil {
			return nil, err
		}
	}

	robots, err := s.robots.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load robots: %w", err)
	}
	fleet.AttachRobots(robots)

	return fleet, nil
}

// syncFleetMembership refreshes the persisted fleet membership list
func (s *FleetApplicationService) syncFleetMembership(ctx context.Context) error {
	fleet, err := s.loadFleet(ctx)
	if err != nil {
		return err
	}
	return s.fleets.Save(ctx, fleet)
}

// publishFleetGauges mirrors fleet counters into Prometheus gauges
func (s *FleetApplicationService) publishFleetGauges(status domain.FleetHealthStatus) {
	s.metrics.SetRobotsByStatus(string(domain.RobotStatusIdle), status.IdleRobots)
	s.metrics.SetRobotsByStatus(string(domain.RobotStatusExecuting), status.ExecutingRobots)
	s.metrics.SetRobotsByStatus(string(domain.RobotStatusCharging), status.ChargingRobots)
	s.metrics.SetRobotsByStatus(string(domain.RobotStatusMaintenance), status.MaintenanceCount)
	s.metrics.SetRobotsByStatus(string(domain.RobotStatusError), status.ErrorCount)
	s.metrics.SetRobotsByStatus(string(domain.RobotStatusOffline), status.OfflineCount)
	s.metrics.SetFleetUtilization(status.UtilizationRate)
}
