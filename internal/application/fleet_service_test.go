package application

import (
	"context"
	"io"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paklog/fleet-service/internal/domain"
	"github.com/paklog/fleet-service/pkg/errors"
	"github.com/paklog/fleet-service/pkg/logging"
	"github.com/paklog/fleet-service/pkg/metrics"
)

// In-memory repositories for exercising the application service without MongoDB

type fakeRobotRepo struct {
	robots map[string]*domain.Robot
}

func newFakeRobotRepo() *fakeRobotRepo {
	return &fakeRobotRepo{robots: make(map[string]*domain.Robot)}
}

func (r *fakeRobotRepo) Save(ctx context.Context, robot *domain.Robot) error {
	robot.DrainEvents()
	r.robots[robot.RobotID] = robot
	return nil
}

func (r *fakeRobotRepo) FindByID(ctx context.Context, robotID string) (*domain.Robot, error) {
	return r.robots[robotID], nil
}

func (r *fakeRobotRepo) FindAll(ctx context.Context) ([]*domain.Robot, error) {
	ids := make([]string, 0, len(r.robots))
	for id := range r.robots {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	robots := make([]*domain.Robot, 0, len(ids))
	for _, id := range ids {
		robots = append(robots, r.robots[id])
	}
	return robots, nil
}

func (r *fakeRobotRepo) FindByStatus(ctx context.Context, status domain.RobotStatus) ([]*domain.Robot, error) {
	all, _ := r.FindAll(ctx)
	var matched []*domain.Robot
	for _, robot := range all {
		if robot.Status == status {
			matched = append(matched, robot)
		}
	}
	return matched, nil
}

func (r *fakeRobotRepo) FindByCapability(ctx context.Context, capability domain.RobotCapability) ([]*domain.Robot, error) {
	all, _ := r.FindAll(ctx)
	var matched []*domain.Robot
	for _, robot := range all {
		if robot.HasCapability(capability) {
			matched = append(matched, robot)
		}
	}
	return matched, nil
}

func (r *fakeRobotRepo) CountByStatus(ctx context.Context, status domain.RobotStatus) (int64, error) {
	matched, _ := r.FindByStatus(ctx, status)
	return int64(len(matched)), nil
}

type fakeTaskRepo struct {
	tasks map[string]*domain.RobotTask
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*domain.RobotTask)}
}

func (r *fakeTaskRepo) Save(ctx context.Context, task *domain.RobotTask) error {
	r.tasks[task.TaskID] = task
	return nil
}

func (r *fakeTaskRepo) FindByID(ctx context.Context, taskID string) (*domain.RobotTask, error) {
	return r.tasks[taskID], nil
}

func (r *fakeTaskRepo) FindByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.RobotTask, error) {
	var matched []*domain.RobotTask
	for _, task := range r.tasks {
		if task.Status == status {
			matched = append(matched, task)
		}
	}
	return matched, nil
}

func (r *fakeTaskRepo) FindByRobotID(ctx context.Context, robotID string) ([]*domain.RobotTask, error) {
	var matched []*domain.RobotTask
	for _, task := range r.tasks {
		if task.RobotID != nil && *task.RobotID == robotID {
			matched = append(matched, task)
		}
	}
	return matched, nil
}

func (r *fakeTaskRepo) FindPending(ctx context.Context, limit int) ([]*domain.RobotTask, error) {
	pending, _ := r.FindByStatus(ctx, domain.TaskStatusPending)
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

type fakeStationRepo struct {
	stations map[string]*domain.ChargingStation
}

func newFakeStationRepo() *fakeStationRepo {
	return &fakeStationRepo{stations: make(map[string]*domain.ChargingStation)}
}

func (r *fakeStationRepo) Save(ctx context.Context, station *domain.ChargingStation) error {
	r.stations[station.StationID] = station
	return nil
}

func (r *fakeStationRepo) FindByID(ctx context.Context, stationID string) (*domain.ChargingStation, error) {
	return r.stations[stationID], nil
}

func (r *fakeStationRepo) FindAll(ctx context.Context) ([]*domain.ChargingStation, error) {
	ids := make([]string, 0, len(r.stations))
	for id := range r.stations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	stations := make([]*domain.ChargingStation, 0, len(ids))
	for _, id := range ids {
		stations = append(stations, r.stations[id])
	}
	return stations, nil
}

func (r *fakeStationRepo) FindNearest(ctx context.Context, position domain.RobotPosition) (*domain.ChargingStation, error) {
	all, _ := r.FindAll(ctx)
	var nearest *domain.ChargingStation
	best := math.MaxFloat64
	for _, station := range all {
		if d := station.Location.DistanceTo(position); d < best {
			best = d
			nearest = station
		}
	}
	return nearest, nil
}

type fakeFleetRepo struct {
	fleets map[string]*domain.Fleet
}

func newFakeFleetRepo() *fakeFleetRepo {
	return &fakeFleetRepo{fleets: make(map[string]*domain.Fleet)}
}

func (r *fakeFleetRepo) Save(ctx context.Context, fleet *domain.Fleet) error {
	fleet.DrainEvents()
	r.fleets[fleet.FleetID] = fleet
	return nil
}

func (r *fakeFleetRepo) FindByID(ctx context.Context, fleetID string) (*domain.Fleet, error) {
	return r.fleets[fleetID], nil
}

type fakePlanner struct{}

func (p *fakePlanner) CalculatePath(ctx context.Context, start, goal domain.RobotPosition, blocked []domain.RobotPosition, zones []domain.TrafficZone) (*domain.PathPlan, error) {
	distance := start.DistanceTo(goal)
	return domain.NewPathPlan([]domain.RobotPosition{start, goal}, distance, distance/1.5)
}

func (p *fakePlanner) ValidatePath(ctx context.Context, plan *domain.PathPlan, occupied []domain.RobotPosition) (bool, error) {
	for _, position := range occupied {
		if plan.PassesThrough(position, 1.0) {
			return false, nil
		}
	}
	return true, nil
}

func (p *fakePlanner) RecalculatePath(ctx context.Context, current *domain.PathPlan, position domain.RobotPosition, avoid []domain.RobotPosition) (*domain.PathPlan, error) {
	return p.CalculatePath(ctx, position, current.Destination(), avoid, nil)
}

type serviceFixture struct {
	service  *FleetApplicationService
	robots   *fakeRobotRepo
	tasks    *fakeTaskRepo
	stations *fakeStationRepo
	fleets   *fakeFleetRepo
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	logger := logging.New(&logging.Config{
		Level:       logging.LevelError,
		ServiceName: "fleet-service-test",
		Output:      io.Discard,
	})

	robots := newFakeRobotRepo()
	tasks := newFakeTaskRepo()
	stations := newFakeStationRepo()
	fleets := newFakeFleetRepo()

	service := NewFleetApplicationService(
		robots,
		tasks,
		stations,
		fleets,
		&fakePlanner{},
		logger,
		metrics.New(metrics.DefaultConfig("fleet-service-test")),
	)

	return &serviceFixture{
		service:  service,
		robots:   robots,
		tasks:    tasks,
		stations: stations,
		fleets:   fleets,
	}
}

func (f *serviceFixture) registerRobot(t *testing.T, robotID string, x, y float64, capabilities ...string) *RobotDTO {
	t.Helper()
	if len(capabilities) == 0 {
		capabilities = []string{"picker", "transporter"}
	}
	robot, err := f.service.RegisterRobot(context.Background(), RegisterRobotCommand{
		RobotID:      robotID,
		Model:        "AMR-500",
		Position:     PositionInput{X: x, Y: y},
		Capabilities: capabilities,
	})
	require.NoError(t, err)
	return robot
}

func (f *serviceFixture) createTask(t *testing.T, taskID string) *TaskDTO {
	t.Helper()
	task, err := f.service.CreateTask(context.Background(), CreateTaskCommand{
		TaskID:             taskID,
		Type:               "pick",
		Priority:           "normal",
		Origin:             PositionInput{X: 5, Y: 5},
		Destination:        PositionInput{X: 50, Y: 50},
		RequiredCapability: "picker",
	})
	require.NoError(t, err)
	return task
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestRegisterRobot(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	robot := f.registerRobot(t, "robot-001", 10, 10)
	assert.Equal(t, "idle", robot.Status)
	assert.Equal(t, 100, robot.Battery)
	assert.True(t, robot.Available)

	t.Run("Duplicate rejected", func(t *testing.T) {
		_, err := f.service.RegisterRobot(ctx, RegisterRobotCommand{
			RobotID:      "robot-001",
			Model:        "AMR-500",
			Position:     PositionInput{X: 1, Y: 1},
			Capabilities: []string{"picker"},
		})
		assertAppErrorCode(t, err, errors.CodeConflict)
	})

	t.Run("Unknown capability rejected", func(t *testing.T) {
		_, err := f.service.RegisterRobot(ctx, RegisterRobotCommand{
			RobotID:      "robot-002",
			Model:        "AMR-500",
			Position:     PositionInput{X: 1, Y: 1},
			Capabilities: []string{"flying"},
		})
		assertAppErrorCode(t, err, errors.CodeValidationError)
	})

	t.Run("Fleet membership synced", func(t *testing.T) {
		fleet, err := f.fleets.FindByID(ctx, DefaultFleetID)
		require.NoError(t, err)
		require.NotNil(t, fleet)
		assert.Contains(t, fleet.RobotIDs, "robot-001")
	})
}

func TestRecordHeartbeat(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.registerRobot(t, "robot-001", 10, 10)

	robot, err := f.service.RecordHeartbeat(ctx, RecordHeartbeatCommand{
		RobotID:           "robot-001",
		Position:          PositionInput{X: 20, Y: 30, Heading: 90},
		BatteryPercentage: 45,
		HealthMetrics:     map[string]float64{"temperature": 42},
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, robot.Position.X)
	assert.Equal(t, 45, robot.Battery)
	assert.Equal(t, 42.0, robot.HealthMetrics["temperature"])

	_, err = f.service.RecordHeartbeat(ctx, RecordHeartbeatCommand{
		RobotID:  "robot-999",
		Position: PositionInput{X: 1, Y: 1},
	})
	assertAppErrorCode(t, err, errors.CodeNotFound)
}

func TestPerformHealthCheck(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.registerRobot(t, "robot-001", 10, 10)

	_, err := f.service.RecordHeartbeat(ctx, RecordHeartbeatCommand{
		RobotID:           "robot-001",
		Position:          PositionInput{X: 10, Y: 10},
		BatteryPercentage: 90,
		HealthMetrics:     map[string]float64{"errorCount": 12},
	})
	require.NoError(t, err)

	robot, err := f.service.PerformHealthCheck(ctx, PerformHealthCheckCommand{RobotID: "robot-001"})
	require.NoError(t, err)
	assert.Equal(t, "maintenance", robot.Status)
	assert.False(t, robot.Available)
}

func TestAssignTask(t *testing.T) {
	t.Run("Explicit robot", func(t *testing.T) {
		f := newServiceFixture(t)
		f.registerRobot(t, "robot-001", 10, 10)
		f.createTask(t, "task-001")

		task, err := f.service.AssignTask(context.Background(), AssignTaskCommand{TaskID: "task-001", RobotID: "robot-001"})
		require.NoError(t, err)
		assert.Equal(t, "assigned", task.Status)
		require.NotNil(t, task.RobotID)
		assert.Equal(t, "robot-001", *task.RobotID)

		robot, err := f.robots.FindByID(context.Background(), "robot-001")
		require.NoError(t, err)
		assert.Equal(t, domain.RobotStatusExecuting, robot.Status)
	})

	t.Run("Auto-selects nearest robot", func(t *testing.T) {
		f := newServiceFixture(t)
		f.registerRobot(t, "robot-far", 900, 900)
		f.registerRobot(t, "robot-near", 6, 6)
		f.createTask(t, "task-001")

		task, err := f.service.AssignTask(context.Background(), AssignTaskCommand{TaskID: "task-001"})
		require.NoError(t, err)
		require.NotNil(t, task.RobotID)
		assert.Equal(t, "robot-near", *task.RobotID)
	})

	t.Run("No candidate conflicts", func(t *testing.T) {
		f := newServiceFixture(t)
		f.createTask(t, "task-001")

		_, err := f.service.AssignTask(context.Background(), AssignTaskCommand{TaskID: "task-001"})
		assertAppErrorCode(t, err, errors.CodeConflict)
	})

	t.Run("Busy robot conflicts", func(t *testing.T) {
		f := newServiceFixture(t)
		f.registerRobot(t, "robot-001", 10, 10)
		f.createTask(t, "task-001")
		f.createTask(t, "task-002")

		_, err := f.service.AssignTask(context.Background(), AssignTaskCommand{TaskID: "task-001", RobotID: "robot-001"})
		require.NoError(t, err)
		_, err = f.service.AssignTask(context.Background(), AssignTaskCommand{TaskID: "task-002", RobotID: "robot-001"})
		assertAppErrorCode(t, err, errors.CodeConflict)
	})
}

func TestSelectOptimalRobot(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.createTask(t, "task-001")

	robot, err := f.service.SelectOptimalRobot(ctx, "task-001")
	require.NoError(t, err)
	assert.Nil(t, robot)

	f.registerRobot(t, "robot-001", 10, 10)
	robot, err = f.service.SelectOptimalRobot(ctx, "task-001")
	require.NoError(t, err)
	require.NotNil(t, robot)
	assert.Equal(t, "robot-001", robot.RobotID)
}

func TestTaskExecutionFlow(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.registerRobot(t, "robot-001", 10, 10)
	f.createTask(t, "task-001")

	_, err := f.service.AssignTask(ctx, AssignTaskCommand{TaskID: "task-001", RobotID: "robot-001"})
	require.NoError(t, err)

	task, err := f.service.StartTask(ctx, StartTaskCommand{TaskID: "task-001"})
	require.NoError(t, err)
	assert.Equal(t, "in_progress", task.Status)

	task, err = f.service.CompleteTask(ctx, CompleteTaskCommand{TaskID: "task-001"})
	require.NoError(t, err)
	assert.Equal(t, "completed", task.Status)

	robot, err := f.robots.FindByID(ctx, "robot-001")
	require.NoError(t, err)
	assert.Equal(t, domain.RobotStatusIdle, robot.Status)
	assert.Nil(t, robot.CurrentTaskID)
}

func TestFailTaskReconcilesRobot(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.registerRobot(t, "robot-001", 10, 10)
	f.createTask(t, "task-001")

	_, err := f.service.AssignTask(ctx, AssignTaskCommand{TaskID: "task-001", RobotID: "robot-001"})
	require.NoError(t, err)
	_, err = f.service.StartTask(ctx, StartTaskCommand{TaskID: "task-001"})
	require.NoError(t, err)

	task, err := f.service.FailTask(ctx, FailTaskCommand{TaskID: "task-001", Reason: "obstacle"})
	require.NoError(t, err)
	assert.Equal(t, "failed", task.Status)

	robot, err := f.robots.FindByID(ctx, "robot-001")
	require.NoError(t, err)
	assert.Equal(t, domain.RobotStatusError, robot.Status)
}

func TestCancelTaskLeavesRobotUntouched(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.registerRobot(t, "robot-001", 10, 10)
	f.createTask(t, "task-001")

	_, err := f.service.AssignTask(ctx, AssignTaskCommand{TaskID: "task-001", RobotID: "robot-001"})
	require.NoError(t, err)

	task, err := f.service.CancelTask(ctx, CancelTaskCommand{TaskID: "task-001"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", task.Status)

	// The robot keeps its slot until it reports completion or failure
	robot, err := f.robots.FindByID(ctx, "robot-001")
	require.NoError(t, err)
	assert.Equal(t, domain.RobotStatusExecuting, robot.Status)
}

func TestEnqueueForCharging(t *testing.T) {
	t.Run("Named station", func(t *testing.T) {
		f := newServiceFixture(t)
		ctx := context.Background()
		f.registerRobot(t, "robot-001", 10, 10)
		_, err := f.service.RegisterStation(ctx, RegisterStationCommand{
			StationID: "station-001",
			Location:  PositionInput{X: 100, Y: 100},
			Capacity:  2,
		})
		require.NoError(t, err)

		position, err := f.service.EnqueueForCharging(ctx, EnqueueChargingCommand{RobotID: "robot-001", StationID: "station-001"})
		require.NoError(t, err)
		assert.Equal(t, "station-001", position.StationID)
		assert.Equal(t, 1, position.Position)

		robot, err := f.robots.FindByID(ctx, "robot-001")
		require.NoError(t, err)
		assert.Equal(t, domain.RobotStatusCharging, robot.Status)
	})

	t.Run("Falls back to nearest station", func(t *testing.T) {
		f := newServiceFixture(t)
		ctx := context.Background()
		f.registerRobot(t, "robot-001", 10, 10)
		_, err := f.service.RegisterStation(ctx, RegisterStationCommand{
			StationID: "station-far",
			Location:  PositionInput{X: 900, Y: 900},
			Capacity:  2,
		})
		require.NoError(t, err)
		_, err = f.service.RegisterStation(ctx, RegisterStationCommand{
			StationID: "station-near",
			Location:  PositionInput{X: 15, Y: 15},
			Capacity:  2,
		})
		require.NoError(t, err)

		position, err := f.service.EnqueueForCharging(ctx, EnqueueChargingCommand{RobotID: "robot-001"})
		require.NoError(t, err)
		assert.Equal(t, "station-near", position.StationID)
	})

	t.Run("Emergency preempts the in-flight task", func(t *testing.T) {
		f := newServiceFixture(t)
		ctx := context.Background()
		f.registerRobot(t, "robot-001", 10, 10)
		f.createTask(t, "task-001")
		_, err := f.service.RegisterStation(ctx, RegisterStationCommand{
			StationID: "station-001",
			Location:  PositionInput{X: 100, Y: 100},
			Capacity:  2,
		})
		require.NoError(t, err)

		_, err = f.service.AssignTask(ctx, AssignTaskCommand{TaskID: "task-001", RobotID: "robot-001"})
		require.NoError(t, err)
		_, err = f.service.StartTask(ctx, StartTaskCommand{TaskID: "task-001"})
		require.NoError(t, err)

		// Critically low battery triggers preemption on enqueue
		robot, err := f.robots.FindByID(ctx, "robot-001")
		require.NoError(t, err)
		robot.Battery = domain.BatteryLevel{Percentage: 8}

		_, err = f.service.EnqueueForCharging(ctx, EnqueueChargingCommand{RobotID: "robot-001", StationID: "station-001"})
		require.NoError(t, err)

		task, err := f.tasks.FindByID(ctx, "task-001")
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusFailed, task.Status)
		require.NotNil(t, task.FailureReason)
		assert.Equal(t, "Emergency charging required", *task.FailureReason)

		robot, err = f.robots.FindByID(ctx, "robot-001")
		require.NoError(t, err)
		assert.Equal(t, domain.RobotStatusCharging, robot.Status)
	})

	t.Run("Healthy robot with task refused", func(t *testing.T) {
		f := newServiceFixture(t)
		ctx := context.Background()
		f.registerRobot(t, "robot-001", 10, 10)
		f.createTask(t, "task-001")
		_, err := f.service.RegisterStation(ctx, RegisterStationCommand{
			StationID: "station-001",
			Location:  PositionInput{X: 100, Y: 100},
			Capacity:  2,
		})
		require.NoError(t, err)

		_, err = f.service.AssignTask(ctx, AssignTaskCommand{TaskID: "task-001", RobotID: "robot-001"})
		require.NoError(t, err)

		_, err = f.service.EnqueueForCharging(ctx, EnqueueChargingCommand{RobotID: "robot-001", StationID: "station-001"})
		assertAppErrorCode(t, err, errors.CodeConflict)
	})
}

func TestChargingAdmissionAndRelease(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.registerRobot(t, "robot-001", 10, 10)
	f.registerRobot(t, "robot-002", 11, 11)
	_, err := f.service.RegisterStation(ctx, RegisterStationCommand{
		StationID: "station-001",
		Location:  PositionInput{X: 100, Y: 100},
		Capacity:  1,
	})
	require.NoError(t, err)

	_, err = f.service.EnqueueForCharging(ctx, EnqueueChargingCommand{RobotID: "robot-001", StationID: "station-001"})
	require.NoError(t, err)
	_, err = f.service.EnqueueForCharging(ctx, EnqueueChargingCommand{RobotID: "robot-002", StationID: "station-001"})
	require.NoError(t, err)

	station, err := f.service.StartCharging(ctx, StartChargingCommand{StationID: "station-001", RobotID: "robot-001"})
	require.NoError(t, err)
	assert.Equal(t, 0, station.AvailableSlots)
	assert.Equal(t, []string{"robot-001"}, station.ChargingRobots)

	// No slot left for the second robot
	_, err = f.service.StartCharging(ctx, StartChargingCommand{StationID: "station-001", RobotID: "robot-002"})
	assertAppErrorCode(t, err, errors.CodeConflict)

	queue, err := f.service.QueuePosition(ctx, QueuePositionQuery{StationID: "station-001", RobotID: "robot-002"})
	require.NoError(t, err)
	assert.Equal(t, 1, queue.Position)

	// Release cascades admission to the queue head
	result, err := f.service.ReleaseFromCharging(ctx, ReleaseChargingCommand{StationID: "station-001", RobotID: "robot-001"})
	require.NoError(t, err)
	assert.Equal(t, "robot-002", result.PromotedRobotID)

	robot, err := f.robots.FindByID(ctx, "robot-001")
	require.NoError(t, err)
	assert.Equal(t, domain.RobotStatusIdle, robot.Status)
	assert.Equal(t, 100, robot.Battery.Percentage)
}

func TestGetFleetStatus(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.registerRobot(t, "robot-001", 10, 10)
	f.registerRobot(t, "robot-002", 20, 20)
	f.createTask(t, "task-001")

	_, err := f.service.AssignTask(ctx, AssignTaskCommand{TaskID: "task-001", RobotID: "robot-001"})
	require.NoError(t, err)

	status, err := f.service.GetFleetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultFleetID, status.FleetID)
	assert.Equal(t, 2, status.TotalRobots)
	assert.Equal(t, 1, status.ExecutingRobots)
	assert.Equal(t, 1, status.IdleRobots)
	assert.Equal(t, 0.5, status.UtilizationRate)
}

func TestRebalanceFleet(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.registerRobot(t, "robot-001", 10, 10)
	f.registerRobot(t, "robot-002", 20, 20)
	f.registerRobot(t, "robot-003", 30, 30)
	f.createTask(t, "task-001")
	f.createTask(t, "task-002")

	result, err := f.service.RebalanceFleet(ctx)
	require.NoError(t, err)
	assert.False(t, result.Rebalanced)

	_, err = f.service.AssignTask(ctx, AssignTaskCommand{TaskID: "task-001", RobotID: "robot-001"})
	require.NoError(t, err)
	_, err = f.service.AssignTask(ctx, AssignTaskCommand{TaskID: "task-002", RobotID: "robot-002"})
	require.NoError(t, err)

	result, err = f.service.RebalanceFleet(ctx)
	require.NoError(t, err)
	assert.True(t, result.Rebalanced)
	assert.NotNil(t, result.Status.LastRebalanceAt)
}

func TestFindNearestRobot(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.registerRobot(t, "robot-far", 900, 900)
	f.registerRobot(t, "robot-near", 10, 10)

	robot, err := f.service.FindNearestRobot(ctx, FindNearestRobotQuery{
		Position:   PositionInput{X: 12, Y: 12},
		Capability: "picker",
	})
	require.NoError(t, err)
	assert.Equal(t, "robot-near", robot.RobotID)

	_, err = f.service.FindNearestRobot(ctx, FindNearestRobotQuery{
		Position:   PositionInput{X: 12, Y: 12},
		Capability: "sorter",
	})
	assertAppErrorCode(t, err, errors.CodeNotFound)
}

func TestCalculateAndValidatePath(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	plan, err := f.service.CalculatePath(ctx, CalculatePathCommand{
		Start: PositionInput{X: 0, Y: 0},
		Goal:  PositionInput{X: 30, Y: 40},
	})
	require.NoError(t, err)
	require.Len(t, plan.Waypoints, 2)
	assert.Equal(t, 50.0, plan.TotalDistance)

	validation, err := f.service.ValidatePath(ctx, ValidatePathCommand{
		Plan:     *plan,
		Occupied: []PositionInput{{X: 30, Y: 40}},
	})
	require.NoError(t, err)
	assert.False(t, validation.Valid)

	validation, err = f.service.ValidatePath(ctx, ValidatePathCommand{
		Plan:     *plan,
		Occupied: []PositionInput{{X: 500, Y: 500}},
	})
	require.NoError(t, err)
	assert.True(t, validation.Valid)
}

func TestListTasksAndRobots(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.registerRobot(t, "robot-001", 10, 10, "picker")
	f.registerRobot(t, "robot-002", 20, 20, "sorter")
	f.createTask(t, "task-001")

	robots, err := f.service.ListRobots(ctx, ListRobotsQuery{Capability: "sorter"})
	require.NoError(t, err)
	require.Len(t, robots, 1)
	assert.Equal(t, "robot-002", robots[0].RobotID)

	robots, err = f.service.ListRobots(ctx, ListRobotsQuery{Status: "idle"})
	require.NoError(t, err)
	assert.Len(t, robots, 2)

	tasks, err := f.service.ListTasks(ctx, ListTasksQuery{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "task-001", tasks[0].TaskID)
}
