// internal/web/server.go
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"netwatch/internal/config"
	"netwatch/internal/database"
	"netwatch/internal/metrics"
	"netwatch/internal/monitoring"
)

type Server struct {
	config  *config.Config
	store   database.Store
	engine  *monitoring.Engine
	metrics *metrics.Collector
	router  *gin.Engine
	hub     *wsHub
	server  *http.Server
}

func NewServer(cfg *config.Config, store database.Store, engine *monitoring.Engine, collector *metrics.Collector) *Server {
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	server := &Server{
		config:  cfg,
		store:   store,
		engine:  engine,
		metrics: collector,
		router:  router,
		hub:     newWSHub(collector),
	}

	engine.SetCycleHook(server.hub.BroadcastCycle)
	server.setupRoutes()
	return server
}

func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	logrus.WithField("port", s.config.Server.Port).Info("Starting web server")

	go s.updateMetricsRoutine(ctx)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/equipment", s.listEquipment)
		api.GET("/equipment/:id", s.getEquipment)
		api.POST("/equipment", s.createEquipment)
		api.PUT("/equipment/:id", s.updateEquipment)
		api.DELETE("/equipment/:id", s.deleteEquipment)
		api.POST("/equipment/:id/active", s.setEquipmentActive)
		api.POST("/equipment/:id/check", s.checkEquipment)

		api.GET("/equipment/:id/ports", s.listPorts)
		api.POST("/equipment/:id/ports", s.createPort)
		api.DELETE("/equipment/:id/ports/:portID", s.deletePort)

		api.GET("/checks", s.listChecks)

		api.GET("/alerts", s.listAlerts)
		api.POST("/alerts/:id/resolve", s.resolveAlert)
		api.GET("/alerts/export", s.exportAlerts)

		api.GET("/stats", s.listStats)
		api.GET("/stats/daily", s.getDailyStat)
		api.POST("/stats/compute", s.computeStats)
		api.GET("/reports/availability", s.availabilityReport)

		api.GET("/surveillance", s.surveillanceStatus)
		api.POST("/surveillance/start", s.startSurveillance)
		api.POST("/surveillance/stop", s.stopSurveillance)

		api.GET("/health", s.healthCheck)
	}

	s.router.GET("/ws", s.handleWebSocket)

	if s.config.Prometheus.Enabled {
		s.router.GET(s.config.Prometheus.MetricsPath, gin.WrapH(promhttp.Handler()))
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	resp := gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   "1.0.0",
	}

	if ms, ok := s.store.(database.MaintenanceStore); ok {
		stats, err := ms.GetDatabaseStats(c.Request.Context())
		if err != nil {
			logrus.WithError(err).Warn("Failed to collect database stats")
		} else {
			resp["database"] = stats
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) updateMetricsRoutine(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.metrics.UpdateSystemMetrics(ctx); err != nil {
				logrus.WithError(err).Error("Failed to update system metrics")
			}
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
