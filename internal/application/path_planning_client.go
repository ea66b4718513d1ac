package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/paklog/fleet-service/internal/domain"
	"github.com/paklog/fleet-service/pkg/logging"
	"github.com/paklog/fleet-service/pkg/resilience"
)

// Average robot travel speed in meters per second, used by the fallback plan
const defaultRobotSpeed = 1.5

// Minimum clearance between a path waypoint and an occupied position
const pathSafetyMargin = 1.0

// PathPlanningClient calls the external path planner over HTTP. Planner
// failures degrade to a straight-line plan so task handling never blocks on
// the planner.
type PathPlanningClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger
}

// NewPathPlanningClient creates a new PathPlanningClient
func NewPathPlanningClient(baseURL string, logger *logging.Logger) *PathPlanningClient {
	return &PathPlanningClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		breaker: resilience.NewCircuitBreaker(
			resilience.DefaultCircuitBreakerConfig("path-planner"),
			logger.Logger,
		),
		logger: logger,
	}
}

type planRequest struct {
	Start   domain.RobotPosition   `json:"start"`
	Goal    domain.RobotPosition   `json:"goal"`
	Blocked []domain.RobotPosition `json:"blocked,omitempty"`
	Zones   []domain.TrafficZone   `json:"zones,omitempty"`
}

type planResponse struct {
	Waypoints            []domain.RobotPosition `json:"waypoints"`
	TotalDistance        float64                `json:"totalDistance"`
	EstimatedTimeSeconds float64                `json:"estimatedTimeSeconds"`
}

// CalculatePath requests a plan from the planner, falling back to a
// straight-line plan on any failure
func (c *PathPlanningClient) CalculatePath(ctx context.Context, start, goal domain.RobotPosition, blocked []domain.RobotPosition, zones []domain.TrafficZone) (*domain.PathPlan, error) {
	result, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		return c.requestPlan(ctx, planRequest{
			Start:   start,
			Goal:    goal,
			Blocked: blocked,
			Zones:   zones,
		})
	})
	if err != nil {
		c.logger.WithError(err).Warn("Path planner unavailable, using straight-line fallback")
		return straightLinePlan(start, goal)
	}

	return result.(*domain.PathPlan), nil
}

// ValidatePath checks the plan's waypoints against occupied positions
func (c *PathPlanningClient) ValidatePath(ctx context.Context, plan *domain.PathPlan, occupied []domain.RobotPosition) (bool, error) {
	if plan == nil {
		return false, domain.NewInvalidArgument("path plan is required")
	}

	for _, position := range occupied {
		if plan.PassesThrough(position, pathSafetyMargin) {
			return false, nil
		}
	}
	return true, nil
}

// RecalculatePath replans from the robot's current position to the original
// destination, avoiding the given positions
func (c *PathPlanningClient) RecalculatePath(ctx context.Context, current *domain.PathPlan, position domain.RobotPosition, avoid []domain.RobotPosition) (*domain.PathPlan, error) {
	if current == nil {
		return nil, domain.NewInvalidArgument("current path plan is required")
	}
	return c.CalculatePath(ctx, position, current.Destination(), avoid, nil)
}

func (c *PathPlanningClient) requestPlan(ctx context.Context, request planRequest) (*domain.PathPlan, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/paths/calculate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build plan request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("planner request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("planner returned status %d", resp.StatusCode)
	}

	var planResp planResponse
	if err := json.NewDecoder(resp.Body).Decode(&planResp); err != nil {
		return nil, fmt.Errorf("failed to decode plan response: %w", err)
	}

	return domain.NewPathPlan(planResp.Waypoints, planResp.TotalDistance, planResp.EstimatedTimeSeconds)
}

// straightLinePlan is the degraded plan: direct travel from start to goal
func straightLinePlan(start, goal domain.RobotPosition) (*domain.PathPlan, error) {
	distance := start.DistanceTo(goal)
	return domain.NewPathPlan(
		[]domain.RobotPosition{start, goal},
		distance,
		distance/defaultRobotSpeed,
	)
}
