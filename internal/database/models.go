// internal/database/models.go
package database

import (
	"time"
)

// EquipmentType classifies a monitored device.
type EquipmentType string

const (
	TypeServer      EquipmentType = "server"
	TypeRouter      EquipmentType = "router"
	TypeSwitch      EquipmentType = "switch"
	TypeFirewall    EquipmentType = "firewall"
	TypeAccessPoint EquipmentType = "access_point"
)

// ValidEquipmentType reports whether t is one of the known device types.
func ValidEquipmentType(t EquipmentType) bool {
	switch t {
	case TypeServer, TypeRouter, TypeSwitch, TypeFirewall, TypeAccessPoint:
		return true
	}
	return false
}

// CheckType identifies which probe produced a check row.
type CheckType string

const (
	CheckPing CheckType = "ping"
	CheckPort CheckType = "port"
)

// Outcome is the tri-state result of a probe. WARNING is reserved for
// threshold-based classification and is currently never produced.
type Outcome string

const (
	OutcomeOK       Outcome = "OK"
	OutcomeWarning  Outcome = "WARNING"
	OutcomeCritical Outcome = "CRITICAL"
)

// AlertLevel is the severity of an alert row.
type AlertLevel string

const (
	LevelInfo     AlertLevel = "INFO"
	LevelWarning  AlertLevel = "WARNING"
	LevelCritical AlertLevel = "CRITICAL"
)

// AlertStatus tracks the alert lifecycle. The engine only ever creates
// open alerts; resolution happens through the operator API.
type AlertStatus string

const (
	AlertOpen     AlertStatus = "open"
	AlertResolved AlertStatus = "resolved"
)

type Equipment struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Type      EquipmentType `json:"type"`
	Address   string        `json:"address"`
	OS        string        `json:"os"`
	Location  string        `json:"location"`
	Active    bool          `json:"active"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type MonitoredPort struct {
	ID          string `json:"id"`
	EquipmentID string `json:"equipment_id"`
	Port        int    `json:"port"`
	Service     string `json:"service"`
	Description string `json:"description"`
}

// CheckResult is one persisted probe execution. Rows are append-only;
// the engine never updates or deletes them outside retention cleanup.
type CheckResult struct {
	ID             string    `json:"id"`
	EquipmentID    string    `json:"equipment_id"`
	Type           CheckType `json:"check_type"`
	Outcome        Outcome   `json:"outcome"`
	ResponseTimeMS *float64  `json:"response_time_ms,omitempty"`
	Message        string    `json:"message,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type Alert struct {
	ID          string      `json:"id"`
	EquipmentID string      `json:"equipment_id"`
	Level       AlertLevel  `json:"level"`
	Title       string      `json:"title"`
	Message     string      `json:"message"`
	Status      AlertStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	ResolvedAt  *time.Time  `json:"resolved_at,omitempty"`
	ResolvedBy  string      `json:"resolved_by,omitempty"`
}

// DailyStat is the per-equipment, per-day aggregate of check outcomes.
// One row per (equipment, date); recomputation overwrites the row.
type DailyStat struct {
	ID              string    `json:"id"`
	EquipmentID     string    `json:"equipment_id"`
	Date            time.Time `json:"date"`
	Total           int       `json:"total"`
	OK              int       `json:"ok"`
	Warning         int       `json:"warning"`
	Critical        int       `json:"critical"`
	AvailabilityPct float64   `json:"availability_pct"`
	AvgResponseMS   *float64  `json:"avg_response_ms,omitempty"`
}

type EquipmentFilters struct {
	Type   EquipmentType
	Active *bool
}

type CheckFilters struct {
	EquipmentID string
	Type        CheckType
	From        *time.Time
	To          *time.Time
	Limit       int
}

type AlertFilters struct {
	EquipmentID string
	Level       AlertLevel
	Status      AlertStatus
	Limit       int
}

type StatFilters struct {
	EquipmentID string
	From        *time.Time
	To          *time.Time
}

// DateKey renders a timestamp as the day key used for daily stats.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
