// internal/monitoring/scheduler.go - periodic check and stats triggers
package monitoring

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"netwatch/internal/database"
)

const pollInterval = time.Second

// Scheduler drives the two recurring triggers: the health check cycle
// every interval, and the daily statistics aggregation at a fixed wall
// clock time. Each trigger runs on its own goroutine with a 1s polling
// cadence, so a slow cycle delays only its own trigger.
type Scheduler struct {
	checker  *HealthChecker
	stats    *StatsAggregator
	interval time.Duration
	statsAt  string
	onCycle  func([]Summary)
}

func NewScheduler(checker *HealthChecker, stats *StatsAggregator, interval time.Duration, statsAt string) *Scheduler {
	return &Scheduler{
		checker:  checker,
		stats:    stats,
		interval: interval,
		statsAt:  statsAt,
	}
}

// SetCycleHook registers a callback invoked after every completed
// health check cycle with that cycle's summaries.
func (s *Scheduler) SetCycleHook(fn func([]Summary)) {
	s.onCycle = fn
}

// Run blocks until the context is cancelled. The first health check
// cycle fires immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	hour, minute, err := ParseClockTime(s.statsAt)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"interval":   s.interval,
		"stats_time": s.statsAt,
	}).Info("Scheduler started")

	done := make(chan struct{}, 2)

	go func() {
		s.healthLoop(ctx)
		done <- struct{}{}
	}()
	go func() {
		s.statsLoop(ctx, hour, minute)
		done <- struct{}{}
	}()

	<-done
	<-done
	logrus.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) healthLoop(ctx context.Context) {
	s.runHealthCycle(ctx)
	next := time.Now().Add(s.interval)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !time.Now().Before(next) {
				s.runHealthCycle(ctx)
				next = time.Now().Add(s.interval)
			}
		}
	}
}

func (s *Scheduler) statsLoop(ctx context.Context, hour, minute int) {
	next := NextDailyRun(time.Now(), hour, minute)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !time.Now().Before(next) {
				if err := s.stats.ComputeDailyStats(ctx, time.Now()); err != nil {
					logrus.WithError(err).Error("Daily statistics aggregation failed")
				}
				next = NextDailyRun(time.Now(), hour, minute)
			}
		}
	}
}

func (s *Scheduler) runHealthCycle(ctx context.Context) {
	start := time.Now()
	summaries := s.checker.RunAllChecks(ctx)

	ok := 0
	for _, sum := range summaries {
		if sum.Outcome == database.OutcomeOK {
			ok++
		}
	}
	logrus.WithFields(logrus.Fields{
		"targets":  len(summaries),
		"ok":       ok,
		"failed":   len(summaries) - ok,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("Check cycle completed")

	if s.onCycle != nil {
		s.onCycle(summaries)
	}
}

// ParseClockTime parses a "HH:MM" wall clock time.
func ParseClockTime(value string) (hour, minute int, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock time %q, expected HH:MM", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in clock time %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in clock time %q", value)
	}
	return hour, minute, nil
}

// NextDailyRun returns the next occurrence of hour:minute strictly
// after now, in now's location.
func NextDailyRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
