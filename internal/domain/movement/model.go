// Package movement provides the stock movement model for cost reconciliation.
package movement

import (
	"sort"
	"time"

	"recusto/internal/core/types"
)

// Record is one raw stock movement row as fetched from the source ERP feed.
// Costs arrive as floats because that is how the ERP stores them; the
// classifier converts them to decimal before any arithmetic happens.
type Record struct {
	MovementID        int64      `db:"movement_id"`
	MovementDate      time.Time  `db:"movement_date"`
	ProductionOrderID *int64     `db:"production_order_id"`
	EntryDate         *time.Time `db:"entry_date"`
	DocumentNumber    string     `db:"document_number"`
	History           string     `db:"movement_history"`
	ItemID            int64      `db:"item_id"`
	ItemDescription   string     `db:"item_description"`
	Quantity          float64    `db:"quantity"`
	AverageCost       float64    `db:"average_cost"`
	TotalCost         float64    `db:"total_cost"`
}

// Movement is one inventory transaction with derived flags and mutable
// correction state. Identity (ID and the raw fields) is immutable; the cost
// fields are rewritten during reconciliation.
type Movement struct {
	ID                int64
	MovementDate      time.Time
	EntryDate         *time.Time
	ProductionOrderID *int64
	DocumentNumber    string
	History           string
	ItemID            int64
	ItemDescription   string

	Quantity    types.Quantity
	TotalCost   types.Money
	AverageCost types.Money

	// OriginalCost is the cost as recorded by the ERP, captured before any
	// override is applied. Never rewritten.
	OriginalCost types.Money

	// CostOverride is an externally supplied authoritative cost, if any.
	CostOverride *types.Money

	// EffectiveDate is the entry date when present, else the movement date.
	// Procurement-linked movements may be recorded with a lag relative to
	// their true economic date, so all ordering and month-bucketing uses this.
	EffectiveDate time.Time

	// Derived flags, computed once by Classify and never mutated.
	IsDismantling           bool
	IsDismantlingInput      bool
	IsDismantlingOutput     bool
	IsProductionOrder       bool
	IsProductionOrderInput  bool
	IsProductionOrderOutput bool
	IsEntry                 bool
	IsInventoryCount        bool

	// DismantlingGroupID is assigned by AssignDismantlingGroups.
	DismantlingGroupID *int64

	// CostAlreadyCorrect flips to true exactly once, when the cost is final.
	CostAlreadyCorrect bool
}

// SortChronological orders movements by (effective date, id), stable.
// The order is fixed before any correction begins and never changes mid-pass.
func SortChronological(ms []*Movement) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].EffectiveDate.Equal(ms[j].EffectiveDate) {
			return ms[i].ID < ms[j].ID
		}
		return ms[i].EffectiveDate.Before(ms[j].EffectiveDate)
	})
}
