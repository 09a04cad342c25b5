// internal/monitoring/checker.go - health check execution across the fleet
package monitoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"netwatch/internal/database"
	"netwatch/internal/metrics"
)

// Summary is the per-target result returned by RunAllChecks. Only the
// ping outcome is reported; port results are persisted but not returned.
type Summary struct {
	EquipmentID string           `json:"equipment_id"`
	Name        string           `json:"name"`
	Address     string           `json:"address"`
	Outcome     database.Outcome `json:"outcome"`
}

// HealthChecker probes every active equipment and its monitored ports,
// persisting one check row per probe and raising alerts on failures.
type HealthChecker struct {
	store   database.Store
	alerts  *AlertManager
	prober  Prober
	metrics *metrics.Collector
	workers int
}

func NewHealthChecker(store database.Store, alerts *AlertManager, prober Prober, collector *metrics.Collector, workers int) *HealthChecker {
	if workers < 1 {
		workers = 1
	}
	return &HealthChecker{
		store:   store,
		alerts:  alerts,
		prober:  prober,
		metrics: collector,
		workers: workers,
	}
}

// RunAllChecks probes all active equipment concurrently. Each target's
// check cycle is isolated: probe or persistence failures are logged and
// skip only that target, never the whole run.
func (hc *HealthChecker) RunAllChecks(ctx context.Context) []Summary {
	active := true
	equipment, err := hc.store.ListEquipment(ctx, database.EquipmentFilters{Active: &active})
	if err != nil {
		logrus.WithError(err).Error("Failed to load active equipment")
		return nil
	}
	if len(equipment) == 0 {
		return nil
	}

	workers := hc.workers
	if workers > len(equipment) {
		workers = len(equipment)
	}

	jobs := make(chan database.Equipment)
	results := make(chan Summary, len(equipment))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for eq := range jobs {
				results <- hc.checkEquipment(ctx, eq)
			}
		}()
	}

	for _, eq := range equipment {
		jobs <- eq
	}
	close(jobs)
	wg.Wait()
	close(results)

	summaries := make([]Summary, 0, len(equipment))
	for s := range results {
		summaries = append(summaries, s)
	}
	return summaries
}

// CheckOne runs a single equipment's check cycle on demand.
func (hc *HealthChecker) CheckOne(ctx context.Context, equipmentID string) (*Summary, error) {
	eq, err := hc.store.GetEquipment(ctx, equipmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load equipment %s: %w", equipmentID, err)
	}

	summary := hc.checkEquipment(ctx, *eq)
	return &summary, nil
}

// checkEquipment runs the ping-then-ports sequence for one target. The
// sequence is sequential within a target so port alerts reference the
// same check cycle.
func (hc *HealthChecker) checkEquipment(ctx context.Context, eq database.Equipment) Summary {
	summary := Summary{
		EquipmentID: eq.ID,
		Name:        eq.Name,
		Address:     eq.Address,
	}

	start := time.Now()
	ping := hc.prober.Ping(ctx, eq.Address)
	pingDuration := time.Since(start)
	summary.Outcome = ping.Outcome

	check := &database.CheckResult{
		EquipmentID:    eq.ID,
		Type:           database.CheckPing,
		Outcome:        ping.Outcome,
		ResponseTimeMS: ping.ResponseTimeMS,
		Message:        ping.Message,
		Timestamp:      time.Now(),
	}
	if err := hc.store.InsertCheck(ctx, check); err != nil {
		logrus.WithError(err).WithField("equipment", eq.Name).Error("Failed to store ping check")
		return summary
	}

	if hc.metrics != nil {
		hc.metrics.RecordCheck(eq.Name, database.CheckPing, ping.Outcome, pingDuration)
		hc.metrics.UpdateEquipmentStatus(eq.Name, string(eq.Type), ping.Outcome)
	}

	if ping.Outcome == database.OutcomeCritical {
		hc.raise(ctx, eq.ID,
			fmt.Sprintf("%s unreachable", eq.Name),
			fmt.Sprintf("no ping reply from %s", eq.Address))
	}

	ports, err := hc.store.ListMonitoredPorts(ctx, eq.ID)
	if err != nil {
		logrus.WithError(err).WithField("equipment", eq.Name).Error("Failed to load monitored ports")
		return summary
	}

	for _, p := range ports {
		portStart := time.Now()
		outcome := hc.prober.Port(ctx, eq.Address, p.Port)
		portDuration := time.Since(portStart)

		portCheck := &database.CheckResult{
			EquipmentID: eq.ID,
			Type:        database.CheckPort,
			Outcome:     outcome,
			Message:     fmt.Sprintf("Port %d", p.Port),
			Timestamp:   time.Now(),
		}
		if err := hc.store.InsertCheck(ctx, portCheck); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"equipment": eq.Name,
				"port":      p.Port,
			}).Error("Failed to store port check")
			return summary
		}

		if hc.metrics != nil {
			hc.metrics.RecordCheck(eq.Name, database.CheckPort, outcome, portDuration)
		}

		if outcome == database.OutcomeCritical {
			hc.raise(ctx, eq.ID,
				fmt.Sprintf("Port %d closed", p.Port),
				fmt.Sprintf("port %d is unreachable on %s", p.Port, eq.Name))
		}
	}

	return summary
}

func (hc *HealthChecker) raise(ctx context.Context, equipmentID, title, message string) {
	if err := hc.alerts.Raise(ctx, equipmentID, database.LevelCritical, title, message); err != nil {
		logrus.WithError(err).WithField("title", title).Error("Failed to raise alert")
	}
}
