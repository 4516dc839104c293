// Package stock provides the running weighted-average cost ledger.
package stock

import (
	"sort"

	"recusto/internal/core/apperror"
	"recusto/internal/core/types"
	"recusto/internal/domain/movement"
)

// Position is the inventory position of one item. Owned exclusively by the
// Ledger; callers get the pointer for reading only.
type Position struct {
	ItemID            int64
	Description       string
	Quantity          types.Quantity
	TotalCost         types.Money
	OriginalTotalCost types.Money

	// AverageCost == TotalCost/Quantity when Quantity != 0, else zero.
	AverageCost types.Money
}

// Ledger maintains per-item weighted-average inventory positions. Single
// writer: the reconciliation driver mutates it movement by movement.
type Ledger struct {
	positions map[int64]*Position
	order     []int64

	// anomalyThreshold is the relative cost deviation above which an
	// inventory-count movement's corrected cost is rejected in favor of
	// the original.
	anomalyThreshold types.Money
}

// NewLedger creates an empty ledger with the given anomaly guard threshold.
func NewLedger(anomalyThreshold types.Money) *Ledger {
	return &Ledger{
		positions:        make(map[int64]*Position),
		anomalyThreshold: anomalyThreshold,
	}
}

// Has reports whether the item exists in the ledger.
func (l *Ledger) Has(itemID int64) bool {
	_, ok := l.positions[itemID]
	return ok
}

// NewItem creates a position with zero quantity and costs.
func (l *Ledger) NewItem(itemID int64, description string) error {
	if l.Has(itemID) {
		return apperror.NewDuplicateItem(itemID)
	}
	l.positions[itemID] = &Position{
		ItemID:      itemID,
		Description: description,
	}
	l.order = append(l.order, itemID)
	return nil
}

// Seed creates a position with an opening balance. Average cost is derived,
// never taken as input.
func (l *Ledger) Seed(itemID int64, description string, qty types.Quantity, totalCost, originalTotalCost types.Money) error {
	if l.Has(itemID) {
		return apperror.NewDuplicateItem(itemID)
	}
	p := &Position{
		ItemID:            itemID,
		Description:       description,
		Quantity:          qty,
		TotalCost:         totalCost,
		OriginalTotalCost: originalTotalCost,
	}
	p.recalculateAverage()
	l.positions[itemID] = p
	l.order = append(l.order, itemID)
	return nil
}

// Lookup returns the position for an item.
func (l *Ledger) Lookup(itemID int64) (*Position, error) {
	p, ok := l.positions[itemID]
	if !ok {
		return nil, apperror.NewUnknownItem(itemID)
	}
	return p, nil
}

// ApplyTransaction adds a movement's quantity and costs to an item's position
// and recomputes the weighted average.
func (l *Ledger) ApplyTransaction(itemID int64, qty types.Quantity, cost, originalCost types.Money) error {
	p, err := l.Lookup(itemID)
	if err != nil {
		return err
	}
	p.Quantity += qty
	p.TotalCost = p.TotalCost.Add(cost)
	p.OriginalTotalCost = p.OriginalTotalCost.Add(originalCost)
	p.recalculateAverage()
	return nil
}

// ApplyMovement applies a resolved movement to the ledger, creating the item
// on first sight. Inventory-count movements whose corrected cost deviates from
// the original beyond the threshold revert to the original cost before
// application: a count adjustment repriced three orders of magnitude away is a
// clerical error, not a valuation signal.
func (l *Ledger) ApplyMovement(m *movement.Movement) error {
	if !l.Has(m.ItemID) {
		if err := l.NewItem(m.ItemID, m.ItemDescription); err != nil {
			return err
		}
	}

	// Relative deviation is undefined for a zero original cost; the guard
	// is skipped in that case.
	if m.IsInventoryCount && !m.OriginalCost.IsZero() {
		deviation := m.OriginalCost.Sub(m.TotalCost).Div(m.OriginalCost).Abs()
		if deviation.GreaterThan(l.anomalyThreshold) {
			m.TotalCost = m.OriginalCost
		}
	}

	return l.ApplyTransaction(m.ItemID, m.Quantity, m.TotalCost, m.OriginalCost)
}

// TotalCost returns the ledger-wide corrected cost sum.
func (l *Ledger) TotalCost() types.Money {
	total := types.Zero()
	for _, p := range l.positions {
		total = total.Add(p.TotalCost)
	}
	return total
}

// TotalOriginalCost returns the ledger-wide original cost sum.
func (l *Ledger) TotalOriginalCost() types.Money {
	total := types.Zero()
	for _, p := range l.positions {
		total = total.Add(p.OriginalTotalCost)
	}
	return total
}

// Len returns the number of items in the ledger.
func (l *Ledger) Len() int {
	return len(l.positions)
}

// Positions returns all positions sorted by item id.
func (l *Ledger) Positions() []*Position {
	ids := make([]int64, len(l.order))
	copy(ids, l.order)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*Position, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.positions[id])
	}
	return out
}

func (p *Position) recalculateAverage() {
	if p.Quantity.IsZero() {
		p.AverageCost = types.Zero()
		return
	}
	p.AverageCost = p.TotalCost.Div(p.Quantity.Decimal())
}
