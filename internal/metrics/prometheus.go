// internal/metrics/prometheus.go
package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"netwatch/internal/database"
)

var (
	CheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netwatch_check_duration_seconds",
			Help:    "Time spent executing checks",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"equipment", "check_type", "outcome"},
	)

	CheckTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netwatch_checks_total",
			Help: "Total number of checks executed",
		},
		[]string{"equipment", "check_type", "outcome"},
	)

	EquipmentStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netwatch_equipment_status",
			Help: "Current equipment status (0=OK, 1=Warning, 2=Critical)",
		},
		[]string{"equipment", "type"},
	)

	AlertTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netwatch_alerts_total",
			Help: "Total number of alerts raised",
		},
		[]string{"level"},
	)

	ActiveEquipment = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netwatch_active_equipment_total",
			Help: "Number of active equipment being monitored",
		},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netwatch_websocket_connections_active",
			Help: "Number of active WebSocket connections",
		},
	)
)

type Collector struct {
	store database.Store
}

func NewCollector(store database.Store) *Collector {
	return &Collector{store: store}
}

func (c *Collector) RecordCheck(equipment string, checkType database.CheckType, outcome database.Outcome, duration time.Duration) {
	label := strings.ToLower(string(outcome))
	CheckDuration.WithLabelValues(equipment, string(checkType), label).Observe(duration.Seconds())
	CheckTotal.WithLabelValues(equipment, string(checkType), label).Inc()
}

func (c *Collector) UpdateEquipmentStatus(equipment, equipmentType string, outcome database.Outcome) {
	EquipmentStatus.WithLabelValues(equipment, equipmentType).Set(outcomeValue(outcome))
}

func (c *Collector) RecordAlert(level database.AlertLevel) {
	AlertTotal.WithLabelValues(strings.ToLower(string(level))).Inc()
}

func (c *Collector) UpdateSystemMetrics(ctx context.Context) error {
	active := true
	equipment, err := c.store.ListEquipment(ctx, database.EquipmentFilters{Active: &active})
	if err != nil {
		return err
	}
	ActiveEquipment.Set(float64(len(equipment)))
	return nil
}

func (c *Collector) RecordWebSocketConnection(delta int) {
	WebSocketConnections.Add(float64(delta))
}

func outcomeValue(outcome database.Outcome) float64 {
	switch outcome {
	case database.OutcomeOK:
		return 0
	case database.OutcomeWarning:
		return 1
	default:
		return 2
	}
}
