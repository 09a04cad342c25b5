// internal/monitoring/stats_test.go
package monitoring

import (
	"context"
	"testing"
	"time"

	"netwatch/internal/database"
)

func seedChecks(store *fakeStore, equipmentID string, day time.Time, outcomes []database.Outcome, rtts []*float64) {
	for i, outcome := range outcomes {
		store.checks = append(store.checks, database.CheckResult{
			EquipmentID:    equipmentID,
			Type:           database.CheckPing,
			Outcome:        outcome,
			ResponseTimeMS: rtts[i],
			Timestamp:      day.Add(time.Duration(i) * time.Hour),
		})
	}
}

func TestComputeDailyStats(t *testing.T) {
	store := newFakeStore()
	store.equipment = []database.Equipment{
		{ID: "e1", Name: "core-switch", Active: true},
	}

	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.Local)
	outcomes := make([]database.Outcome, 0, 10)
	rtts := make([]*float64, 0, 10)
	for i := 0; i < 8; i++ {
		outcomes = append(outcomes, database.OutcomeOK)
		rtts = append(rtts, floatPtr(2.0))
	}
	outcomes = append(outcomes, database.OutcomeCritical, database.OutcomeCritical)
	rtts = append(rtts, nil, nil)
	seedChecks(store, "e1", day, outcomes, rtts)

	agg := NewStatsAggregator(store)
	if err := agg.ComputeDailyStats(context.Background(), day); err != nil {
		t.Fatalf("ComputeDailyStats failed: %v", err)
	}

	stat, err := store.GetDailyStat(context.Background(), "e1", "2026-08-28")
	if err != nil {
		t.Fatalf("stat row missing: %v", err)
	}
	if stat.Total != 10 || stat.OK != 8 || stat.Critical != 2 || stat.Warning != 0 {
		t.Errorf("unexpected counts: %+v", stat)
	}
	if stat.AvailabilityPct != 80.0 {
		t.Errorf("expected 80%% availability, got %v", stat.AvailabilityPct)
	}
	if stat.AvgResponseMS == nil || *stat.AvgResponseMS != 2.0 {
		t.Errorf("average should cover only measured checks, got %v", stat.AvgResponseMS)
	}
	if stat.OK+stat.Warning+stat.Critical != stat.Total {
		t.Errorf("outcome counts do not sum to total: %+v", stat)
	}
}

func TestComputeDailyStatsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.equipment = []database.Equipment{{ID: "e1", Name: "fw", Active: true}}

	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.Local)
	seedChecks(store, "e1", day,
		[]database.Outcome{database.OutcomeOK, database.OutcomeCritical},
		[]*float64{floatPtr(1.0), nil})

	agg := NewStatsAggregator(store)
	for i := 0; i < 2; i++ {
		if err := agg.ComputeDailyStats(context.Background(), day); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}

	stats, err := store.ListDailyStats(context.Background(), database.StatFilters{EquipmentID: "e1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 {
		t.Fatalf("recompute should not duplicate rows, got %d", len(stats))
	}

	first, _ := store.GetDailyStat(context.Background(), "e1", "2026-08-28")
	if err := agg.ComputeDailyStats(context.Background(), day); err != nil {
		t.Fatal(err)
	}
	second, _ := store.GetDailyStat(context.Background(), "e1", "2026-08-28")
	if first.ID != second.ID {
		t.Errorf("row ID should be stable across recomputes: %s vs %s", first.ID, second.ID)
	}
	if first.Total != second.Total || first.OK != second.OK ||
		first.AvailabilityPct != second.AvailabilityPct ||
		*first.AvgResponseMS != *second.AvgResponseMS {
		t.Errorf("recompute changed the row: %+v vs %+v", first, second)
	}
}

func TestComputeDailyStatsEmptyDay(t *testing.T) {
	store := newFakeStore()
	store.equipment = []database.Equipment{
		{ID: "e1", Name: "idle-box", Active: false},
	}

	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.Local)
	agg := NewStatsAggregator(store)
	if err := agg.ComputeDailyStats(context.Background(), day); err != nil {
		t.Fatal(err)
	}

	stat, err := store.GetDailyStat(context.Background(), "e1", "2026-08-28")
	if err != nil {
		t.Fatalf("inactive equipment should still get a stat row: %v", err)
	}
	if stat.Total != 0 || stat.AvailabilityPct != 0 {
		t.Errorf("empty day should be all zeroes: %+v", stat)
	}
	if stat.AvgResponseMS != nil {
		t.Errorf("empty day should have no average, got %v", *stat.AvgResponseMS)
	}
}

func TestComputeDailyStatsCoversDSTTransitionDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 2026-11-01 is 25 hours long in this zone; a fixed 24h window
	// would cut off the last hour of the day.
	day := time.Date(2026, 11, 1, 0, 0, 0, 0, loc)
	lateCheck := time.Date(2026, 11, 1, 23, 30, 0, 0, loc)

	store := newFakeStore()
	store.equipment = []database.Equipment{{ID: "e1", Name: "sw", Active: true}}
	store.checks = append(store.checks, database.CheckResult{
		EquipmentID: "e1",
		Type:        database.CheckPing,
		Outcome:     database.OutcomeOK,
		Timestamp:   lateCheck,
	})

	agg := NewStatsAggregator(store)
	if err := agg.ComputeDailyStats(context.Background(), day); err != nil {
		t.Fatal(err)
	}

	stat, err := store.GetDailyStat(context.Background(), "e1", "2026-11-01")
	if err != nil {
		t.Fatal(err)
	}
	if stat.Total != 1 {
		t.Errorf("late check on the long day should count, got %+v", stat)
	}
}

func TestComputeDailyStatsExcludesOtherDays(t *testing.T) {
	store := newFakeStore()
	store.equipment = []database.Equipment{{ID: "e1", Name: "sw", Active: true}}

	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.Local)
	seedChecks(store, "e1", day, []database.Outcome{database.OutcomeOK}, []*float64{floatPtr(1.0)})
	store.checks = append(store.checks, database.CheckResult{
		EquipmentID: "e1",
		Type:        database.CheckPing,
		Outcome:     database.OutcomeCritical,
		Timestamp:   day.Add(-time.Minute),
	}, database.CheckResult{
		EquipmentID: "e1",
		Type:        database.CheckPing,
		Outcome:     database.OutcomeCritical,
		Timestamp:   day.Add(24 * time.Hour),
	})

	agg := NewStatsAggregator(store)
	if err := agg.ComputeDailyStats(context.Background(), day); err != nil {
		t.Fatal(err)
	}

	stat, err := store.GetDailyStat(context.Background(), "e1", "2026-08-28")
	if err != nil {
		t.Fatal(err)
	}
	if stat.Total != 1 || stat.Critical != 0 {
		t.Errorf("neighboring days leaked into the aggregate: %+v", stat)
	}
}
