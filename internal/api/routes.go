package api

import "crossline-worker-go/internal/api/middleware"

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.RequestContext())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthHandler.WorkerInfo)
	s.router.GET("/health", s.healthHandler.HealthCheck)
	s.router.GET("/stats", s.statsHandler.GetAllStats)

	cameras := s.router.Group("/cameras")
	{
		cameras.GET("", s.cameraHandler.ListCameras)
		cameras.POST("", s.cameraHandler.AddCamera)
		cameras.GET("/:camera_id", s.cameraHandler.GetCamera)
		cameras.PUT("/:camera_id", s.cameraHandler.UpdateCamera)
		cameras.DELETE("/:camera_id", s.cameraHandler.RemoveCamera)
		cameras.POST("/:camera_id/enable", s.cameraHandler.EnableCamera)
		cameras.POST("/:camera_id/disable", s.cameraHandler.DisableCamera)
		cameras.PUT("/:camera_id/line", s.cameraHandler.SetLine)
		cameras.GET("/:camera_id/frame", s.cameraHandler.GetLatestFrame)
		cameras.GET("/:camera_id/status", s.cameraHandler.GetCameraStatus)
		cameras.GET("/:camera_id/stats", s.statsHandler.GetStats)
		cameras.GET("/:camera_id/events", s.statsHandler.GetEvents)
	}
}
