// internal/database/store.go
package database

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations used by the engine and the
// operator API. The engine only creates check/alert rows and upserts
// daily stats; equipment and port mutation belongs to the registry side.
type Store interface {
	// Equipment registry
	ListEquipment(ctx context.Context, filters EquipmentFilters) ([]Equipment, error)
	GetEquipment(ctx context.Context, id string) (*Equipment, error)
	CreateEquipment(ctx context.Context, eq *Equipment) error
	UpdateEquipment(ctx context.Context, eq *Equipment) error
	DeleteEquipment(ctx context.Context, id string) error

	// Monitored ports
	ListMonitoredPorts(ctx context.Context, equipmentID string) ([]MonitoredPort, error)
	CreateMonitoredPort(ctx context.Context, p *MonitoredPort) error
	DeleteMonitoredPort(ctx context.Context, equipmentID, id string) error

	// Check log (append-only)
	InsertCheck(ctx context.Context, check *CheckResult) error
	ListChecks(ctx context.Context, filters CheckFilters) ([]CheckResult, error)

	// Alerts: the engine inserts, the operator surface resolves.
	InsertAlert(ctx context.Context, alert *Alert) error
	ListAlerts(ctx context.Context, filters AlertFilters) ([]Alert, error)
	ResolveAlert(ctx context.Context, id, resolvedBy string) error

	// Daily stats, keyed by (equipment, date)
	UpsertDailyStat(ctx context.Context, stat *DailyStat) error
	GetDailyStat(ctx context.Context, equipmentID string, dateKey string) (*DailyStat, error)
	ListDailyStats(ctx context.Context, filters StatFilters) ([]DailyStat, error)

	Close() error
}
