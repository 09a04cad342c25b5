// internal/monitoring/stats.go - daily availability aggregation
package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"netwatch/internal/database"
)

// StatsAggregator folds a day's check rows into one DailyStat per
// equipment. Recomputing a day overwrites the previous row, so the
// aggregation can run repeatedly for the same date.
type StatsAggregator struct {
	store database.Store
}

func NewStatsAggregator(store database.Store) *StatsAggregator {
	return &StatsAggregator{store: store}
}

// ComputeDailyStats aggregates all checks recorded on the given day,
// one stat row per equipment. Every equipment gets a row, including
// inactive ones and those with no checks that day.
func (sa *StatsAggregator) ComputeDailyStats(ctx context.Context, day time.Time) error {
	equipment, err := sa.store.ListEquipment(ctx, database.EquipmentFilters{})
	if err != nil {
		return fmt.Errorf("failed to list equipment: %w", err)
	}

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	// AddDate lands on the next calendar midnight even across DST shifts.
	to := from.AddDate(0, 0, 1)

	for _, eq := range equipment {
		checks, err := sa.store.ListChecks(ctx, database.CheckFilters{
			EquipmentID: eq.ID,
			From:        &from,
			To:          &to,
		})
		if err != nil {
			logrus.WithError(err).WithField("equipment", eq.Name).Error("Failed to load checks for aggregation")
			continue
		}

		stat := aggregate(eq.ID, from, checks)
		if err := sa.store.UpsertDailyStat(ctx, stat); err != nil {
			logrus.WithError(err).WithField("equipment", eq.Name).Error("Failed to store daily stat")
			continue
		}
	}

	logrus.WithFields(logrus.Fields{
		"date":      database.DateKey(day),
		"equipment": len(equipment),
	}).Info("Daily statistics computed")
	return nil
}

// aggregate builds a single DailyStat from one equipment's checks.
// Availability is 0 when there are no checks, and the response time
// average covers only checks that carry a measurement.
func aggregate(equipmentID string, day time.Time, checks []database.CheckResult) *database.DailyStat {
	stat := &database.DailyStat{
		EquipmentID: equipmentID,
		Date:        day,
	}

	var rttSum float64
	var rttCount int
	for _, c := range checks {
		stat.Total++
		switch c.Outcome {
		case database.OutcomeOK:
			stat.OK++
		case database.OutcomeWarning:
			stat.Warning++
		case database.OutcomeCritical:
			stat.Critical++
		}
		if c.ResponseTimeMS != nil {
			rttSum += *c.ResponseTimeMS
			rttCount++
		}
	}

	if stat.Total > 0 {
		stat.AvailabilityPct = 100 * float64(stat.OK) / float64(stat.Total)
	}
	if rttCount > 0 {
		avg := rttSum / float64(rttCount)
		stat.AvgResponseMS = &avg
	}
	return stat
}
