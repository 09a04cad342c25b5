// internal/database/boltstore_maintenance.go - retention and housekeeping
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"
)

// MaintenanceStore extends Store with the retention operations driven by
// the periodic cleanup job.
type MaintenanceStore interface {
	Store

	// DeleteChecksBefore removes check rows older than cutoff.
	DeleteChecksBefore(ctx context.Context, cutoff time.Time) (int, error)

	// DeleteResolvedAlertsBefore removes resolved alerts older than cutoff.
	// Open alerts are never purged.
	DeleteResolvedAlertsBefore(ctx context.Context, cutoff time.Time) (int, error)

	GetDatabaseStats(ctx context.Context) (*DatabaseStats, error)
}

// DatabaseStats summarizes bucket sizes for the health endpoint.
type DatabaseStats struct {
	TotalEquipment  int   `json:"total_equipment"`
	TotalPorts      int   `json:"total_ports"`
	TotalChecks     int   `json:"total_checks"`
	TotalAlerts     int   `json:"total_alerts"`
	TotalDailyStats int   `json:"total_daily_stats"`
	DatabaseSize    int64 `json:"database_size_bytes"`
}

func (s *BoltStore) DeleteChecksBefore(ctx context.Context, cutoff time.Time) (int, error) {
	deleted := 0

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(ChecksBucket)
		cursor := b.Cursor()
		var keysToDelete [][]byte

		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var check CheckResult
			if err := json.Unmarshal(v, &check); err != nil {
				continue
			}
			if check.Timestamp.Before(cutoff) {
				keysToDelete = append(keysToDelete, copyBytes(k))
			}
		}

		for _, key := range keysToDelete {
			if err := b.Delete(key); err != nil {
				logrus.WithError(err).Error("Failed to delete check entry")
				continue
			}
			deleted++
		}
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to delete old checks: %w", err)
	}

	if deleted > 0 {
		logrus.WithFields(logrus.Fields{
			"deleted_count": deleted,
			"cutoff_time":   cutoff,
		}).Info("Deleted old check entries")
	}

	return deleted, nil
}

func (s *BoltStore) DeleteResolvedAlertsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	deleted := 0

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(AlertsBucket)
		cursor := b.Cursor()
		var keysToDelete [][]byte

		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var alert Alert
			if err := json.Unmarshal(v, &alert); err != nil {
				continue
			}
			if alert.Status == AlertResolved && alert.CreatedAt.Before(cutoff) {
				keysToDelete = append(keysToDelete, copyBytes(k))
			}
		}

		for _, key := range keysToDelete {
			if err := b.Delete(key); err != nil {
				logrus.WithError(err).Error("Failed to delete alert entry")
				continue
			}
			deleted++
		}
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to delete old alerts: %w", err)
	}

	if deleted > 0 {
		logrus.WithFields(logrus.Fields{
			"deleted_count": deleted,
			"cutoff_time":   cutoff,
		}).Info("Deleted old resolved alerts")
	}

	return deleted, nil
}

func (s *BoltStore) GetDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		stats.TotalEquipment = tx.Bucket(EquipmentBucket).Stats().KeyN
		stats.TotalPorts = tx.Bucket(PortsBucket).Stats().KeyN
		stats.TotalChecks = tx.Bucket(ChecksBucket).Stats().KeyN
		stats.TotalAlerts = tx.Bucket(AlertsBucket).Stats().KeyN
		stats.TotalDailyStats = tx.Bucket(StatsBucket).Stats().KeyN
		stats.DatabaseSize = tx.Size()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect database stats: %w", err)
	}

	return stats, nil
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
