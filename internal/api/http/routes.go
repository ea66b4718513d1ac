package http

import (
	"github.com/gin-gonic/gin"

	"github.com/paklog/fleet-service/pkg/metrics"
	"github.com/paklog/fleet-service/pkg/middleware"
)

// SetupRoutes configures all HTTP routes for the fleet service
func SetupRoutes(router *gin.Engine, handlers *Handlers, m *metrics.Metrics, readinessCheck func() error) {
	router.GET("/health", middleware.HealthCheck("fleet-service"))
	router.GET("/ready", middleware.ReadinessCheck("fleet-service", readinessCheck))
	router.GET("/metrics", middleware.MetricsEndpoint(m))
	router.NoRoute(middleware.NoRoute())

	v1 := router.Group("/api/v1")
	{
		robots := v1.Group("/robots")
		{
			robots.POST("", handlers.RegisterRobot)
			robots.GET("", handlers.ListRobots)
			robots.GET("/:robotId", handlers.GetRobot)
			robots.POST("/:robotId/heartbeat", handlers.RecordHeartbeat)
			robots.POST("/:robotId/health-check", handlers.PerformHealthCheck)
			robots.POST("/:robotId/offline", handlers.MarkRobotOffline)
			robots.POST("/:robotId/online", handlers.MarkRobotOnline)
		}

		tasks := v1.Group("/tasks")
		{
			tasks.POST("", handlers.CreateTask)
			tasks.GET("", handlers.ListTasks)
			tasks.GET("/:taskId", handlers.GetTask)
			tasks.POST("/:taskId/assign", handlers.AssignTask)
			tasks.POST("/:taskId/start", handlers.StartTask)
			tasks.POST("/:taskId/complete", handlers.CompleteTask)
			tasks.POST("/:taskId/fail", handlers.FailTask)
			tasks.POST("/:taskId/cancel", handlers.CancelTask)
		}

		stations := v1.Group("/stations")
		{
			stations.POST("", handlers.RegisterStation)
			stations.GET("", handlers.ListStations)
			stations.POST("/queue", handlers.EnqueueForCharging)
			stations.GET("/:stationId", handlers.GetStation)
			stations.POST("/:stationId/start-charging", handlers.StartCharging)
			stations.POST("/:stationId/release", handlers.ReleaseFromCharging)
			stations.GET("/:stationId/queue/:robotId", handlers.QueuePosition)
		}

		fleet := v1.Group("/fleet")
		{
			fleet.GET("/status", handlers.GetFleetStatus)
			fleet.POST("/rebalance", handlers.RebalanceFleet)
			fleet.POST("/nearest-robot", handlers.FindNearestRobot)
		}

		paths := v1.Group("/paths")
		{
			paths.POST("/calculate", handlers.CalculatePath)
			paths.POST("/validate", handlers.ValidatePath)
		}
	}
}
