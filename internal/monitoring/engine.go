// internal/monitoring/engine.go
package monitoring

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"netwatch/internal/config"
	"netwatch/internal/database"
	"netwatch/internal/metrics"
)

// Engine wires the prober, checker, alert manager, stats aggregator,
// scheduler and surveillance service together and owns their lifecycle.
type Engine struct {
	config       *config.Config
	store        database.Store
	metrics      *metrics.Collector
	checker      *HealthChecker
	alertManager *AlertManager
	statsAgg     *StatsAggregator
	scheduler    *Scheduler
	surveillance *Surveillance

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

func NewEngine(cfg *config.Config, store database.Store, collector *metrics.Collector) *Engine {
	prober := NewNetProber(cfg.Monitoring.PingTimeout, cfg.Monitoring.PortTimeout)

	alertManager := NewAlertManager(store, collector)
	checker := NewHealthChecker(store, alertManager, prober, collector, cfg.Monitoring.Workers)
	statsAgg := NewStatsAggregator(store)
	scheduler := NewScheduler(checker, statsAgg, cfg.Monitoring.Interval, cfg.Monitoring.StatsTime)

	return &Engine{
		config:       cfg,
		store:        store,
		metrics:      collector,
		checker:      checker,
		alertManager: alertManager,
		statsAgg:     statsAgg,
		scheduler:    scheduler,
		surveillance: NewSurveillance(checker),
	}
}

// Start launches the scheduler and retention purge. It returns once
// both are running; the work continues until Stop or parent context
// cancellation.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.running = true
	e.mu.Unlock()

	logrus.Info("Starting monitoring engine")

	go e.alertManager.SchedulePeriodicPurge(runCtx, e.config.Database.HistoryRetention)
	go func() {
		if err := e.scheduler.Run(runCtx); err != nil {
			logrus.WithError(err).Error("Scheduler exited with error")
		}
	}()

	if e.metrics != nil {
		if err := e.metrics.UpdateSystemMetrics(runCtx); err != nil {
			logrus.WithError(err).Warn("Failed to update system metrics")
		}
	}
	return nil
}

func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}

	logrus.Info("Stopping monitoring engine")
	e.surveillance.Stop()
	e.cancel()
	e.running = false
}

// SetCycleHook registers a callback invoked after every scheduled or
// surveillance check cycle.
func (e *Engine) SetCycleHook(fn func([]Summary)) {
	e.scheduler.SetCycleHook(fn)
	e.surveillance.SetCycleHook(fn)
}

func (e *Engine) Checker() *HealthChecker            { return e.checker }
func (e *Engine) Stats() *StatsAggregator            { return e.statsAgg }
func (e *Engine) SurveillanceService() *Surveillance { return e.surveillance }
