// internal/monitoring/alerts.go - alert creation and retention cleanup
package monitoring

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"netwatch/internal/database"
	"netwatch/internal/metrics"
)

// AlertManager persists alerts raised by the health checker and runs
// the periodic retention purge of old checks and resolved alerts.
type AlertManager struct {
	store   database.Store
	metrics *metrics.Collector
}

func NewAlertManager(store database.Store, collector *metrics.Collector) *AlertManager {
	return &AlertManager{
		store:   store,
		metrics: collector,
	}
}

// Raise records a new open alert for the given equipment. Every call
// produces a new row; repeated failures produce repeated alerts.
func (am *AlertManager) Raise(ctx context.Context, equipmentID string, level database.AlertLevel, title, message string) error {
	alert := &database.Alert{
		EquipmentID: equipmentID,
		Level:       level,
		Title:       title,
		Message:     message,
		Status:      database.AlertOpen,
		CreatedAt:   time.Now(),
	}
	if err := am.store.InsertAlert(ctx, alert); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"equipment": equipmentID,
		"level":     level,
		"title":     title,
	}).Warn("Alert raised")

	if am.metrics != nil {
		am.metrics.RecordAlert(level)
	}
	return nil
}

// SchedulePeriodicPurge deletes checks and resolved alerts older than
// the retention window once per day until the context is cancelled.
func (am *AlertManager) SchedulePeriodicPurge(ctx context.Context, retention time.Duration) {
	ms, ok := am.store.(database.MaintenanceStore)
	if !ok {
		logrus.Warn("Store does not support maintenance operations, skipping retention purge")
		return
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	am.purge(ctx, ms, retention)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			am.purge(ctx, ms, retention)
		}
	}
}

func (am *AlertManager) purge(ctx context.Context, ms database.MaintenanceStore, retention time.Duration) {
	cutoff := time.Now().Add(-retention)

	checks, err := ms.DeleteChecksBefore(ctx, cutoff)
	if err != nil {
		logrus.WithError(err).Error("Failed to purge old checks")
	}
	alerts, err := ms.DeleteResolvedAlertsBefore(ctx, cutoff)
	if err != nil {
		logrus.WithError(err).Error("Failed to purge resolved alerts")
	}

	if checks > 0 || alerts > 0 {
		logrus.WithFields(logrus.Fields{
			"checks": checks,
			"alerts": alerts,
			"cutoff": cutoff.Format(time.RFC3339),
		}).Info("Retention purge completed")
	}
}
