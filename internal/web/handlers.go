// internal/web/handlers.go - REST API handlers
package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"netwatch/internal/database"
)

func (s *Server) listEquipment(c *gin.Context) {
	filters := database.EquipmentFilters{
		Type: database.EquipmentType(c.Query("type")),
	}
	if v := c.Query("active"); v != "" {
		active := v == "true"
		filters.Active = &active
	}

	equipment, err := s.store.ListEquipment(c.Request.Context(), filters)
	if err != nil {
		logrus.WithError(err).Error("Failed to list equipment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list equipment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  equipment,
		"count": len(equipment),
	})
}

func (s *Server) getEquipment(c *gin.Context) {
	eq, err := s.store.GetEquipment(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Equipment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get equipment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": eq})
}

func (s *Server) createEquipment(c *gin.Context) {
	var req database.Equipment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" || req.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and address are required"})
		return
	}
	if !database.ValidEquipmentType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid equipment type"})
		return
	}

	req.Active = true
	if err := s.store.CreateEquipment(c.Request.Context(), &req); err != nil {
		logrus.WithError(err).Error("Failed to create equipment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create equipment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": req})
}

func (s *Server) updateEquipment(c *gin.Context) {
	existing, err := s.store.GetEquipment(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Equipment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get equipment"})
		return
	}

	var req database.Equipment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type != "" && !database.ValidEquipmentType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid equipment type"})
		return
	}

	req.ID = existing.ID
	req.CreatedAt = existing.CreatedAt
	if req.Name == "" {
		req.Name = existing.Name
	}
	if req.Address == "" {
		req.Address = existing.Address
	}
	if req.Type == "" {
		req.Type = existing.Type
	}

	if err := s.store.UpdateEquipment(c.Request.Context(), &req); err != nil {
		logrus.WithError(err).Error("Failed to update equipment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update equipment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": req})
}

func (s *Server) deleteEquipment(c *gin.Context) {
	if err := s.store.DeleteEquipment(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Equipment not found"})
			return
		}
		logrus.WithError(err).Error("Failed to delete equipment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete equipment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) setEquipmentActive(c *gin.Context) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eq, err := s.store.GetEquipment(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Equipment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get equipment"})
		return
	}

	eq.Active = req.Active
	if err := s.store.UpdateEquipment(c.Request.Context(), eq); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update equipment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": eq})
}

func (s *Server) checkEquipment(c *gin.Context) {
	summary, err := s.engine.Checker().CheckOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Equipment not found"})
			return
		}
		logrus.WithError(err).Error("On-demand check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Check failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (s *Server) listPorts(c *gin.Context) {
	ports, err := s.store.ListMonitoredPorts(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list ports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  ports,
		"count": len(ports),
	})
}

func (s *Server) createPort(c *gin.Context) {
	var req database.MonitoredPort
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Port < 1 || req.Port > 65535 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "port must be between 1 and 65535"})
		return
	}

	if _, err := s.store.GetEquipment(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Equipment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get equipment"})
		return
	}

	req.EquipmentID = c.Param("id")
	if err := s.store.CreateMonitoredPort(c.Request.Context(), &req); err != nil {
		logrus.WithError(err).Error("Failed to create monitored port")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create port"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": req})
}

func (s *Server) deletePort(c *gin.Context) {
	if err := s.store.DeleteMonitoredPort(c.Request.Context(), c.Param("id"), c.Param("portID")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Port not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete port"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) listChecks(c *gin.Context) {
	filters := database.CheckFilters{
		EquipmentID: c.Query("equipment_id"),
		Type:        database.CheckType(c.Query("type")),
		Limit:       100,
	}
	if v := c.Query("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			filters.Limit = limit
		}
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.To = &t
		}
	}

	checks, err := s.store.ListChecks(c.Request.Context(), filters)
	if err != nil {
		logrus.WithError(err).Error("Failed to list checks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list checks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  checks,
		"count": len(checks),
	})
}

func (s *Server) listAlerts(c *gin.Context) {
	filters := database.AlertFilters{
		EquipmentID: c.Query("equipment_id"),
		Level:       database.AlertLevel(c.Query("level")),
		Status:      database.AlertStatus(c.Query("status")),
		Limit:       100,
	}
	if v := c.Query("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			filters.Limit = limit
		}
	}

	alerts, err := s.store.ListAlerts(c.Request.Context(), filters)
	if err != nil {
		logrus.WithError(err).Error("Failed to list alerts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list alerts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  alerts,
		"count": len(alerts),
	})
}

func (s *Server) resolveAlert(c *gin.Context) {
	var req struct {
		ResolvedBy string `json:"resolved_by"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.ResolvedBy == "" {
		req.ResolvedBy = "operator"
	}

	if err := s.store.ResolveAlert(c.Request.Context(), c.Param("id"), req.ResolvedBy); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		logrus.WithError(err).Error("Failed to resolve alert")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve alert"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}

func (s *Server) listStats(c *gin.Context) {
	filters := database.StatFilters{
		EquipmentID: c.Query("equipment_id"),
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
			filters.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
			filters.To = &t
		}
	}

	stats, err := s.store.ListDailyStats(c.Request.Context(), filters)
	if err != nil {
		logrus.WithError(err).Error("Failed to list daily stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  stats,
		"count": len(stats),
	})
}

func (s *Server) getDailyStat(c *gin.Context) {
	equipmentID := c.Query("equipment_id")
	date := c.Query("date")
	if equipmentID == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "equipment_id and date are required"})
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	stat, err := s.store.GetDailyStat(c.Request.Context(), equipmentID, date)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No stats for that equipment and date"})
			return
		}
		logrus.WithError(err).Error("Failed to get daily stat")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stat})
}

func (s *Server) computeStats(c *gin.Context) {
	day := time.Now()
	if v := c.Query("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	if err := s.engine.Stats().ComputeDailyStats(c.Request.Context(), day); err != nil {
		logrus.WithError(err).Error("Failed to compute daily stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "computed", "date": database.DateKey(day)})
}

func (s *Server) surveillanceStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.engine.SurveillanceService().Status()})
}

func (s *Server) startSurveillance(c *gin.Context) {
	var req struct {
		Interval string `json:"interval"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	interval := s.config.Monitoring.Interval
	if req.Interval != "" {
		d, err := time.ParseDuration(req.Interval)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interval"})
			return
		}
		interval = d
	}

	if !s.engine.SurveillanceService().Start(interval) {
		c.JSON(http.StatusConflict, gin.H{"error": "Surveillance already running"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s.engine.SurveillanceService().Status()})
}

func (s *Server) stopSurveillance(c *gin.Context) {
	if !s.engine.SurveillanceService().Stop() {
		c.JSON(http.StatusConflict, gin.H{"error": "Surveillance not running"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}
