// internal/monitoring/surveillance.go - operator-driven continuous checks
package monitoring

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Surveillance runs the health check cycle on its own ticker,
// independently of the scheduler, for operator-driven continuous
// watching. Start and Stop are idempotent.
type Surveillance struct {
	checker *HealthChecker
	onCycle func([]Summary)

	mu        sync.Mutex
	cancel    context.CancelFunc
	interval  time.Duration
	startedAt time.Time
}

// SurveillanceStatus is the externally visible state of the service.
type SurveillanceStatus struct {
	Running   bool       `json:"running"`
	Interval  string     `json:"interval,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

func NewSurveillance(checker *HealthChecker) *Surveillance {
	return &Surveillance{checker: checker}
}

// SetCycleHook registers a callback invoked after each surveillance
// cycle with that cycle's summaries.
func (sv *Surveillance) SetCycleHook(fn func([]Summary)) {
	sv.onCycle = fn
}

// Start begins continuous checking at the given interval. Returns
// false without side effects when surveillance is already running.
func (sv *Surveillance) Start(interval time.Duration) bool {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if sv.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	sv.cancel = cancel
	sv.interval = interval
	sv.startedAt = time.Now()

	go sv.loop(ctx, interval)
	logrus.WithField("interval", interval).Info("Surveillance started")
	return true
}

// Stop halts continuous checking. Returns false when surveillance is
// not running.
func (sv *Surveillance) Stop() bool {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if sv.cancel == nil {
		return false
	}

	sv.cancel()
	sv.cancel = nil
	logrus.Info("Surveillance stopped")
	return true
}

func (sv *Surveillance) Status() SurveillanceStatus {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if sv.cancel == nil {
		return SurveillanceStatus{}
	}
	started := sv.startedAt
	return SurveillanceStatus{
		Running:   true,
		Interval:  sv.interval.String(),
		StartedAt: &started,
	}
}

func (sv *Surveillance) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sv.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sv.runCycle(ctx)
		}
	}
}

func (sv *Surveillance) runCycle(ctx context.Context) {
	summaries := sv.checker.RunAllChecks(ctx)
	if sv.onCycle != nil {
		sv.onCycle(summaries)
	}
}
