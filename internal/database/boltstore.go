// internal/database/boltstore.go - BoltDB implementation of Store
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var (
	EquipmentBucket = []byte("equipments")
	PortsBucket     = []byte("ports")
	ChecksBucket    = []byte("checks")
	AlertsBucket    = []byte("alerts")
	StatsBucket     = []byte("daily_stats")
)

// BoltStore persists all monitoring data in a single BoltDB file.
//
// Key layout:
//
//	equipments:  <id>
//	ports:       <equipmentID>:<id>
//	checks:      <equipmentID>:<unixnano %020d>:<id>   (time-ordered per equipment)
//	alerts:      <unixnano %020d>:<id>                 (time-ordered)
//	daily_stats: <equipmentID>:<YYYY-MM-DD>
//
// The daily_stats key makes the upsert a plain Put: recomputing a day
// overwrites the row instead of duplicating it.
type BoltStore struct {
	db   *bbolt.DB
	path string
}

func NewBoltStore(path string) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB: %w", err)
	}

	store := &BoltStore{db: db, path: path}

	if err := store.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return store, nil
}

func (s *BoltStore) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{EquipmentBucket, PortsBucket, ChecksBucket, AlertsBucket, StatsBucket}
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
}

func (s *BoltStore) ListEquipment(ctx context.Context, filters EquipmentFilters) ([]Equipment, error) {
	var equipment []Equipment

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(EquipmentBucket)
		return b.ForEach(func(k, v []byte) error {
			var eq Equipment
			if err := json.Unmarshal(v, &eq); err != nil {
				return fmt.Errorf("failed to unmarshal equipment %s: %w", k, err)
			}

			if filters.Type != "" && eq.Type != filters.Type {
				return nil
			}
			if filters.Active != nil && eq.Active != *filters.Active {
				return nil
			}

			equipment = append(equipment, eq)
			return nil
		})
	})

	return equipment, err
}

func (s *BoltStore) GetEquipment(ctx context.Context, id string) (*Equipment, error) {
	var eq Equipment

	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(EquipmentBucket).Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &eq)
	})

	if err != nil {
		return nil, err
	}
	return &eq, nil
}

func (s *BoltStore) CreateEquipment(ctx context.Context, eq *Equipment) error {
	if eq.ID == "" {
		eq.ID = uuid.New().String()
	}
	eq.CreatedAt = time.Now()
	eq.UpdatedAt = eq.CreatedAt

	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(eq)
		if err != nil {
			return fmt.Errorf("failed to marshal equipment: %w", err)
		}
		return tx.Bucket(EquipmentBucket).Put([]byte(eq.ID), data)
	})
}

func (s *BoltStore) UpdateEquipment(ctx context.Context, eq *Equipment) error {
	eq.UpdatedAt = time.Now()

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(EquipmentBucket)
		if b.Get([]byte(eq.ID)) == nil {
			return ErrNotFound
		}
		data, err := json.Marshal(eq)
		if err != nil {
			return fmt.Errorf("failed to marshal equipment: %w", err)
		}
		return b.Put([]byte(eq.ID), data)
	})
}

// DeleteEquipment removes the equipment and its monitored ports. Check
// history and alerts are kept; retention cleanup prunes them later.
func (s *BoltStore) DeleteEquipment(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(EquipmentBucket)
		if b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		if err := b.Delete([]byte(id)); err != nil {
			return err
		}

		ports := tx.Bucket(PortsBucket)
		c := ports.Cursor()
		prefix := []byte(id + ":")
		var keys [][]byte
		for k, _ := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, _ = c.Next() {
			keys = append(keys, copyBytes(k))
		}
		for _, k := range keys {
			if err := ports.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) ListMonitoredPorts(ctx context.Context, equipmentID string) ([]MonitoredPort, error) {
	var ports []MonitoredPort

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(PortsBucket).Cursor()
		prefix := []byte(equipmentID + ":")
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
			var p MonitoredPort
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("failed to unmarshal port %s: %w", k, err)
			}
			ports = append(ports, p)
		}
		return nil
	})

	return ports, err
}

func (s *BoltStore) CreateMonitoredPort(ctx context.Context, p *MonitoredPort) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(EquipmentBucket).Get([]byte(p.EquipmentID)) == nil {
			return ErrNotFound
		}
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal port: %w", err)
		}
		key := fmt.Sprintf("%s:%s", p.EquipmentID, p.ID)
		return tx.Bucket(PortsBucket).Put([]byte(key), data)
	})
}

func (s *BoltStore) DeleteMonitoredPort(ctx context.Context, equipmentID, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(PortsBucket)
		key := []byte(fmt.Sprintf("%s:%s", equipmentID, id))
		if b.Get(key) == nil {
			return ErrNotFound
		}
		return b.Delete(key)
	})
}

func (s *BoltStore) InsertCheck(ctx context.Context, check *CheckResult) error {
	if check.ID == "" {
		check.ID = uuid.New().String()
	}
	if check.Timestamp.IsZero() {
		check.Timestamp = time.Now()
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(check)
		if err != nil {
			return fmt.Errorf("failed to marshal check: %w", err)
		}
		key := checkKey(check.EquipmentID, check.Timestamp, check.ID)
		return tx.Bucket(ChecksBucket).Put([]byte(key), data)
	})
}

func checkKey(equipmentID string, ts time.Time, id string) string {
	return fmt.Sprintf("%s:%020d:%s", equipmentID, ts.UnixNano(), id)
}

// ListChecks returns matching checks in chronological order. When a
// limit is set, the most recent rows are kept.
func (s *BoltStore) ListChecks(ctx context.Context, filters CheckFilters) ([]CheckResult, error) {
	var checks []CheckResult

	collect := func(v []byte) error {
		var check CheckResult
		if err := json.Unmarshal(v, &check); err != nil {
			return nil // skip malformed entries
		}
		if filters.Type != "" && check.Type != filters.Type {
			return nil
		}
		if filters.From != nil && check.Timestamp.Before(*filters.From) {
			return nil
		}
		if filters.To != nil && !check.Timestamp.Before(*filters.To) {
			return nil
		}
		checks = append(checks, check)
		return nil
	}

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(ChecksBucket)
		if filters.EquipmentID != "" {
			c := b.Cursor()
			prefix := []byte(filters.EquipmentID + ":")
			for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
				if err := collect(v); err != nil {
					return err
				}
			}
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			return collect(v)
		})
	})
	if err != nil {
		return nil, err
	}

	// The global scan walks keys in equipment-ID order, not time order.
	sort.Slice(checks, func(i, j int) bool {
		return checks[i].Timestamp.Before(checks[j].Timestamp)
	})

	if filters.Limit > 0 && len(checks) > filters.Limit {
		checks = checks[len(checks)-filters.Limit:]
	}
	return checks, nil
}

func (s *BoltStore) InsertAlert(ctx context.Context, alert *Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	if alert.Status == "" {
		alert.Status = AlertOpen
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(alert)
		if err != nil {
			return fmt.Errorf("failed to marshal alert: %w", err)
		}
		key := fmt.Sprintf("%020d:%s", alert.CreatedAt.UnixNano(), alert.ID)
		return tx.Bucket(AlertsBucket).Put([]byte(key), data)
	})
}

// ListAlerts returns matching alerts, most recent first.
func (s *BoltStore) ListAlerts(ctx context.Context, filters AlertFilters) ([]Alert, error) {
	var alerts []Alert

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(AlertsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var alert Alert
			if err := json.Unmarshal(v, &alert); err != nil {
				continue
			}
			if filters.EquipmentID != "" && alert.EquipmentID != filters.EquipmentID {
				continue
			}
			if filters.Level != "" && alert.Level != filters.Level {
				continue
			}
			if filters.Status != "" && alert.Status != filters.Status {
				continue
			}
			alerts = append(alerts, alert)
			if filters.Limit > 0 && len(alerts) >= filters.Limit {
				return nil
			}
		}
		return nil
	})

	return alerts, err
}

func (s *BoltStore) ResolveAlert(ctx context.Context, id, resolvedBy string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(AlertsBucket)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if !strings.HasSuffix(string(k), ":"+id) {
				continue
			}
			var alert Alert
			if err := json.Unmarshal(v, &alert); err != nil {
				return fmt.Errorf("failed to unmarshal alert %s: %w", k, err)
			}
			now := time.Now()
			alert.Status = AlertResolved
			alert.ResolvedAt = &now
			alert.ResolvedBy = resolvedBy

			data, err := json.Marshal(&alert)
			if err != nil {
				return fmt.Errorf("failed to marshal alert: %w", err)
			}
			return b.Put(k, data)
		}
		return ErrNotFound
	})
}

// UpsertDailyStat writes the (equipment, date) row, replacing any prior
// values. The row ID is kept stable across recomputations.
func (s *BoltStore) UpsertDailyStat(ctx context.Context, stat *DailyStat) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(StatsBucket)
		key := []byte(fmt.Sprintf("%s:%s", stat.EquipmentID, DateKey(stat.Date)))

		if existing := b.Get(key); existing != nil {
			var prior DailyStat
			if err := json.Unmarshal(existing, &prior); err == nil {
				stat.ID = prior.ID
			}
		}
		if stat.ID == "" {
			stat.ID = uuid.New().String()
		}

		data, err := json.Marshal(stat)
		if err != nil {
			return fmt.Errorf("failed to marshal daily stat: %w", err)
		}
		return b.Put(key, data)
	})
}

func (s *BoltStore) GetDailyStat(ctx context.Context, equipmentID string, dateKey string) (*DailyStat, error) {
	var stat DailyStat

	err := s.db.View(func(tx *bbolt.Tx) error {
		key := []byte(fmt.Sprintf("%s:%s", equipmentID, dateKey))
		v := tx.Bucket(StatsBucket).Get(key)
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &stat)
	})

	if err != nil {
		return nil, err
	}
	return &stat, nil
}

func (s *BoltStore) ListDailyStats(ctx context.Context, filters StatFilters) ([]DailyStat, error) {
	var stats []DailyStat

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(StatsBucket)
		return b.ForEach(func(k, v []byte) error {
			var stat DailyStat
			if err := json.Unmarshal(v, &stat); err != nil {
				return nil
			}
			if filters.EquipmentID != "" && stat.EquipmentID != filters.EquipmentID {
				return nil
			}
			if filters.From != nil && stat.Date.Before(*filters.From) {
				return nil
			}
			if filters.To != nil && stat.Date.After(*filters.To) {
				return nil
			}
			stats = append(stats, stat)
			return nil
		})
	})

	return stats, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
