// Package valuation provides the monthly valuation snapshot timeline.
package valuation

import (
	"time"

	"recusto/internal/core/types"
)

// Snapshot is one month-end valuation row. Immutable once appended.
type Snapshot struct {
	MonthEnd      time.Time
	CorrectedCost types.Money
	OriginalCost  types.Money
}

// Timeline is an append-only log of month-end ledger totals. Append order
// follows the driver's chronological traversal and is not re-validated here.
type Timeline struct {
	snapshots []Snapshot
}

// NewTimeline creates an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// RecordMonthEnd appends one snapshot keyed by the last calendar day of the
// given month.
func (t *Timeline) RecordMonthEnd(month time.Month, year int, correctedCost, originalCost types.Money) {
	t.snapshots = append(t.snapshots, Snapshot{
		MonthEnd:      LastDayOfMonth(month, year),
		CorrectedCost: correctedCost,
		OriginalCost:  originalCost,
	})
}

// Snapshots returns the appended snapshots in order.
func (t *Timeline) Snapshots() []Snapshot {
	return t.snapshots
}

// Len returns the number of snapshots.
func (t *Timeline) Len() int {
	return len(t.snapshots)
}

// LastDayOfMonth returns midnight UTC on the month's last calendar day.
func LastDayOfMonth(month time.Month, year int) time.Time {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}
