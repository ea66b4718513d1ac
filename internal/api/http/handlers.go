package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paklog/fleet-service/internal/application"
	"github.com/paklog/fleet-service/pkg/errors"
	"github.com/paklog/fleet-service/pkg/logging"
)

// Handlers holds the HTTP handlers for the fleet service
type Handlers struct {
	service *application.FleetApplicationService
	logger  *logging.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(service *application.FleetApplicationService, logger *logging.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  logger,
	}
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	appErr := errors.FromError(err)
	c.JSON(appErr.HTTPStatus, appErr)
}

// RegisterRobotRequest represents the request body for registering a robot
type RegisterRobotRequest struct {
	RobotID      string                    `json:"robotId" binding:"required"`
	Model        string                    `json:"model" binding:"required"`
	Position     application.PositionInput `json:"position"`
	Capabilities []string                  `json:"capabilities" binding:"required"`
}

// RegisterRobot handles POST /api/v1/robots
func (h *Handlers) RegisterRobot(c *gin.Context) {
	var req RegisterRobotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	robot, err := h.service.RegisterRobot(c.Request.Context(), application.RegisterRobotCommand{
		RobotID:      req.RobotID,
		Model:        req.Model,
		Position:     req.Position,
		Capabilities: req.Capabilities,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, robot)
}

// GetRobot handles GET /api/v1/robots/:robotId
func (h *Handlers) GetRobot(c *gin.Context) {
	robot, err := h.service.GetRobot(c.Request.Context(), application.GetRobotQuery{
		RobotID: c.Param("robotId"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, robot)
}

// ListRobots handles GET /api/v1/robots
func (h *Handlers) ListRobots(c *gin.Context) {
	robots, err := h.service.ListRobots(c.Request.Context(), application.ListRobotsQuery{
		Status:     c.Query("status"),
		Capability: c.Query("capability"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"robots": robots, "count": len(robots)})
}

// HeartbeatRequest represents the request body for a robot heartbeat
type HeartbeatRequest struct {
	Position      application.PositionInput `json:"position"`
	Battery       int                       `json:"battery"`
	HealthMetrics map[string]float64        `json:"healthMetrics,omitempty"`
}

// RecordHeartbeat handles POST /api/v1/robots/:robotId/heartbeat
func (h *Handlers) RecordHeartbeat(c *gin.Context) {
	var req HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	robot, err := h.service.RecordHeartbeat(c.Request.Context(), application.RecordHeartbeatCommand{
		RobotID:           c.Param("robotId"),
		Position:          req.Position,
		BatteryPercentage: req.Battery,
		HealthMetrics:     req.HealthMetrics,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, robot)
}

// PerformHealthCheck handles POST /api/v1/robots/:robotId/health-check
func (h *Handlers) PerformHealthCheck(c *gin.Context) {
	robot, err := h.service.PerformHealthCheck(c.Request.Context(), application.PerformHealthCheckCommand{
		RobotID: c.Param("robotId"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, robot)
}

// MarkRobotOffline handles POST /api/v1/robots/:robotId/offline
func (h *Handlers) MarkRobotOffline(c *gin.Context) {
	robot, err := h.service.MarkRobotOffline(c.Request.Context(), application.MarkRobotOfflineCommand{
		RobotID: c.Param("robotId"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, robot)
}

// MarkRobotOnline handles POST /api/v1/robots/:robotId/online
func (h *Handlers) MarkRobotOnline(c *gin.Context) {
	robot, err := h.service.MarkRobotOnline(c.Request.Context(), application.MarkRobotOnlineCommand{
		RobotID: c.Param("robotId"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, robot)
}

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	TaskID             string                    `json:"taskId" binding:"required"`
	Type               string                    `json:"type" binding:"required"`
	Priority           string                    `json:"priority" binding:"required"`
	Origin             application.PositionInput `json:"origin"`
	Destination        application.PositionInput `json:"destination"`
	RequiredCapability string                    `json:"requiredCapability" binding:"required"`
	Payload            map[string]interface{}    `json:"payload,omitempty"`
}

// CreateTask handles POST /api/v1/tasks
func (h *Handlers) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), application.CreateTaskCommand{
		TaskID:             req.TaskID,
		Type:               req.Type,
		Priority:           req.Priority,
		Origin:             req.Origin,
		Destination:        req.Destination,
		RequiredCapability: req.RequiredCapability,
		Payload:            req.Payload,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// GetTask handles GET /api/v1/tasks/:taskId
func (h *Handlers) GetTask(c *gin.Context) {
	task, err := h.service.GetTask(c.Request.Context(), application.GetTaskQuery{
		TaskID: c.Param("taskId"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// ListTasks handles GET /api/v1/tasks
func (h *Handlers) ListTasks(c *gin.Context) {
	tasks, err := h.service.ListTasks(c.Request.Context(), application.ListTasksQuery{
		Status: c.Query("status"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

// AssignTaskRequest represents the request body for assigning a task
type AssignTaskRequest struct {
	RobotID string `json:"robotId"`
}

// AssignTask handles POST /api/v1/tasks/:taskId/assign
func (h *Handlers) AssignTask(c *gin.Context) {
	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.AssignTask(c.Request.Context(), application.AssignTaskCommand{
		TaskID:  c.Param("taskId"),
		RobotID: req.RobotID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// StartTask handles POST /api/v1/tasks/:taskId/start
func (h *Handlers) StartTask(c *gin.Context) {
	task, err := h.service.StartTask(c.Request.Context(), application.StartTaskCommand{
		TaskID: c.Param("taskId"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// CompleteTask handles POST /api/v1/tasks/:taskId/complete
func (h *Handlers) CompleteTask(c *gin.Context) {
	task, err := h.service.CompleteTask(c.Request.Context(), application.CompleteTaskCommand{
		TaskID: c.Param("taskId"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// FailTaskRequest represents the request body for failing a task
type FailTaskRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// FailTask handles POST /api/v1/tasks/:taskId/fail
func (h *Handlers) FailTask(c *gin.Context) {
	var req FailTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.FailTask(c.Request.Context(), application.FailTaskCommand{
		TaskID: c.Param("taskId"),
		Reason: req.Reason,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// CancelTask handles POST /api/v1/tasks/:taskId/cancel
func (h *Handlers) CancelTask(c *gin.Context) {
	task, err := h.service.CancelTask(c.Request.Context(), application.CancelTaskCommand{
		TaskID: c.Param("taskId"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// RegisterStationRequest represents the request body for registering a station
type RegisterStationRequest struct {
	StationID string                    `json:"stationId" binding:"required"`
	Location  application.PositionInput `json:"location"`
	Capacity  int                       `json:"capacity" binding:"required"`
}

// RegisterStation handles POST /api/v1/stations
func (h *Handlers) RegisterStation(c *gin.Context) {
	var req RegisterStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	station, err := h.service.RegisterStation(c.Request.Context(), application.RegisterStationCommand{
		StationID: req.StationID,
		Location:  req.Location,
		Capacity:  req.Capacity,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, station)
}

// GetStation handles GET /api/v1/stations/:stationId
func (h *Handlers) GetStation(c *gin.Context) {
	station, err := h.service.GetStation(c.Request.Context(), application.GetStationQuery{
		StationID: c.Param("stationId"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, station)
}

// ListStations handles GET /api/v1/stations
func (h *Handlers) ListStations(c *gin.Context) {
	stations, err := h.service.ListStations(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stations": stations, "count": len(stations)})
}

// EnqueueChargingRequest represents the request body for queueing a robot
type EnqueueChargingRequest struct {
	RobotID   string `json:"robotId" binding:"required"`
	StationID string `json:"stationId"`
}

// EnqueueForCharging handles POST /api/v1/stations/queue
func (h *Handlers) EnqueueForCharging(c *gin.Context) {
	var req EnqueueChargingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	position, err := h.service.EnqueueForCharging(c.Request.Context(), application.EnqueueChargingCommand{
		RobotID:   req.RobotID,
		StationID: req.StationID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, position)
}

// StartChargingRequest represents the request body for starting a charge
type StartChargingRequest struct {
	RobotID string `json:"robotId" binding:"required"`
}

// StartCharging handles POST /api/v1/stations/:stationId/start-charging
func (h *Handlers) StartCharging(c *gin.Context) {
	var req StartChargingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	station, err := h.service.StartCharging(c.Request.Context(), application.StartChargingCommand{
		StationID: c.Param("stationId"),
		RobotID:   req.RobotID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, station)
}

// ReleaseChargingRequest represents the request body for releasing a slot
type ReleaseChargingRequest struct {
	RobotID string `json:"robotId" binding:"required"`
}

// ReleaseFromCharging handles POST /api/v1/stations/:stationId/release
func (h *Handlers) ReleaseFromCharging(c *gin.Context) {
	var req ReleaseChargingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.ReleaseFromCharging(c.Request.Context(), application.ReleaseChargingCommand{
		StationID: c.Param("stationId"),
		RobotID:   req.RobotID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// QueuePosition handles GET /api/v1/stations/:stationId/queue/:robotId
func (h *Handlers) QueuePosition(c *gin.Context) {
	position, err := h.service.QueuePosition(c.Request.Context(), application.QueuePositionQuery{
		StationID: c.Param("stationId"),
		RobotID:   c.Param("robotId"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, position)
}

// GetFleetStatus handles GET /api/v1/fleet/status
func (h *Handlers) GetFleetStatus(c *gin.Context) {
	status, err := h.service.GetFleetStatus(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// RebalanceFleet handles POST /api/v1/fleet/rebalance
func (h *Handlers) RebalanceFleet(c *gin.Context) {
	result, err := h.service.RebalanceFleet(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// NearestRobotRequest represents the request body for the nearest-robot query
type NearestRobotRequest struct {
	Position   application.PositionInput `json:"position"`
	Capability string                    `json:"capability" binding:"required"`
}

// FindNearestRobot handles POST /api/v1/fleet/nearest-robot
func (h *Handlers) FindNearestRobot(c *gin.Context) {
	var req NearestRobotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	robot, err := h.service.FindNearestRobot(c.Request.Context(), application.FindNearestRobotQuery{
		Position:   req.Position,
		Capability: req.Capability,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, robot)
}

// CalculatePathRequest represents the request body for path calculation
type CalculatePathRequest struct {
	Start   application.PositionInput   `json:"start"`
	Goal    application.PositionInput   `json:"goal"`
	Blocked []application.PositionInput `json:"blocked,omitempty"`
}

// CalculatePath handles POST /api/v1/paths/calculate
func (h *Handlers) CalculatePath(c *gin.Context) {
	var req CalculatePathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.service.CalculatePath(c.Request.Context(), application.CalculatePathCommand{
		Start:   req.Start,
		Goal:    req.Goal,
		Blocked: req.Blocked,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// ValidatePathRequest represents the request body for path validation
type ValidatePathRequest struct {
	Plan     application.PathPlanDTO     `json:"plan"`
	Occupied []application.PositionInput `json:"occupied,omitempty"`
}

// ValidatePath handles POST /api/v1/paths/validate
func (h *Handlers) ValidatePath(c *gin.Context) {
	var req ValidatePathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.ValidatePath(c.Request.Context(), application.ValidatePathCommand{
		Plan:     req.Plan,
		Occupied: req.Occupied,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
