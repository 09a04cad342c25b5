// internal/web/reports.go - alert exports and availability reports
package web

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"netwatch/internal/database"
)

// exportAlerts streams the filtered alert list as CSV or JSON for
// offline analysis.
func (s *Server) exportAlerts(c *gin.Context) {
	filters := database.AlertFilters{
		EquipmentID: c.Query("equipment_id"),
		Level:       database.AlertLevel(c.Query("level")),
		Status:      database.AlertStatus(c.Query("status")),
	}

	alerts, err := s.store.ListAlerts(c.Request.Context(), filters)
	if err != nil {
		logrus.WithError(err).Error("Failed to export alerts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export alerts"})
		return
	}

	filename := fmt.Sprintf("alerts_%s", time.Now().Format("20060102_150405"))

	if c.DefaultQuery("format", "csv") == "json" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.json", filename))
		c.JSON(http.StatusOK, alerts)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))

	w := csv.NewWriter(c.Writer)
	w.Write([]string{"id", "equipment_id", "level", "title", "message", "status", "created_at", "resolved_at", "resolved_by"})
	for _, a := range alerts {
		resolvedAt := ""
		if a.ResolvedAt != nil {
			resolvedAt = a.ResolvedAt.Format(time.RFC3339)
		}
		w.Write([]string{
			a.ID,
			a.EquipmentID,
			string(a.Level),
			a.Title,
			a.Message,
			string(a.Status),
			a.CreatedAt.Format(time.RFC3339),
			resolvedAt,
			a.ResolvedBy,
		})
	}
	w.Flush()
}

type availabilityEntry struct {
	EquipmentID     string  `json:"equipment_id"`
	Name            string  `json:"name"`
	Days            int     `json:"days"`
	AvailabilityPct float64 `json:"availability_pct"`
}

// availabilityReport averages daily availability per equipment over a
// date range and ranks the fleet from most to least available.
func (s *Server) availabilityReport(c *gin.Context) {
	ctx := c.Request.Context()

	filters := database.StatFilters{}
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

	equipment, err := s.store.ListEquipment(ctx, database.EquipmentFilters{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list equipment"})
		return
	}

	names := make(map[string]string, len(equipment))
	for _, eq := range equipment {
		names[eq.ID] = eq.Name
	}

	stats, err := s.store.ListDailyStats(ctx, filters)
	if err != nil {
		logrus.WithError(err).Error("Failed to load daily stats for report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, st := range stats {
		sums[st.EquipmentID] += st.AvailabilityPct
		counts[st.EquipmentID]++
	}

	entries := make([]availabilityEntry, 0, len(sums))
	var globalSum float64
	for id, sum := range sums {
		avg := sum / float64(counts[id])
		globalSum += avg
		entries = append(entries, availabilityEntry{
			EquipmentID:     id,
			Name:            names[id],
			Days:            counts[id],
			AvailabilityPct: avg,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AvailabilityPct != entries[j].AvailabilityPct {
			return entries[i].AvailabilityPct > entries[j].AvailabilityPct
		}
		return entries[i].Name < entries[j].Name
	})

	var global float64
	if len(entries) > 0 {
		global = globalSum / float64(len(entries))
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   entries,
		"count":  len(entries),
		"global": global,
	})
}
