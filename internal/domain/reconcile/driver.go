package reconcile

import (
	"context"
	"fmt"

	"recusto/internal/core/apperror"
	"recusto/internal/domain/movement"
	"recusto/internal/domain/registers/stock"
	"recusto/internal/domain/valuation"
	"recusto/pkg/logger"
)

// Engine drives the reconciliation pass. Single-threaded, fully deterministic:
// one forward sweep in fixed chronological order, no concurrent mutation of
// the ledger or the movement set.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Run corrects every movement's cost and applies it to the ledger, recording a
// timeline snapshot at each month boundary. The movement slice is reordered
// (stable, by effective date then id) and its elements are mutated in place.
//
// Every error aborts the pass: later totals depend on every prior movement
// being correctly resolved, so nothing is caught or retried here.
func (e *Engine) Run(ctx context.Context, ms []*movement.Movement, ledger *stock.Ledger, timeline *valuation.Timeline) error {
	movement.SortChronological(ms)

	groups := movement.AssignDismantlingGroups(ms)
	orders := movement.IndexProductionOrders(ms)

	logger.Info(ctx, "starting reconciliation pass",
		"movements", len(ms),
		"dismantling_groups", len(groups),
		"production_orders", len(orders),
		"seeded_items", ledger.Len(),
	)

	var last *movement.Movement
	for _, m := range ms {
		// Month close: snapshot before the first movement of the new month.
		if last != nil && !sameMonth(last, m) {
			timeline.RecordMonthEnd(
				last.EffectiveDate.Month(), last.EffectiveDate.Year(),
				ledger.TotalCost(), ledger.TotalOriginalCost(),
			)
		}
		last = m

		if err := e.resolve(ctx, m, groups, orders, ledger); err != nil {
			return fmt.Errorf("resolve movement %d: %w", m.ID, err)
		}

		if err := ledger.ApplyMovement(m); err != nil {
			return fmt.Errorf("apply movement %d: %w", m.ID, err)
		}
	}

	// No trailing snapshot for the final open month: the input stream is
	// bounded and callers wanting one must take it explicitly.

	logger.Info(ctx, "reconciliation pass finished",
		"movements", len(ms),
		"items", ledger.Len(),
		"snapshots", timeline.Len(),
		"corrected_cost_total", ledger.TotalCost(),
		"original_cost_total", ledger.TotalOriginalCost(),
	)
	return nil
}

// resolve finalizes the movement's cost. Fires at most once per movement: a
// movement already marked correct keeps its current cost as-is.
func (e *Engine) resolve(ctx context.Context, m *movement.Movement, groups, orders map[int64][]*movement.Movement, ledger *stock.Ledger) error {
	if m.CostAlreadyCorrect {
		return nil
	}

	switch {
	case m.IsDismantling:
		if m.DismantlingGroupID == nil {
			return apperror.NewInternal(fmt.Errorf("dismantling movement %d has no group", m.ID))
		}
		return e.resolveDismantling(ctx, *m.DismantlingGroupID, groups[*m.DismantlingGroupID], ledger)
	case m.IsProductionOrder:
		return e.resolveProductionOrder(ctx, *m.ProductionOrderID, orders[*m.ProductionOrderID], ledger)
	default:
		return correctFromLedger(m, ledger)
	}
}

// correctFromLedger reprices an individual movement at the ledger's current
// average cost for its item.
func correctFromLedger(m *movement.Movement, ledger *stock.Ledger) error {
	if m.CostAlreadyCorrect {
		return apperror.NewAlreadyCorrected(m.ID)
	}
	pos, err := ledger.Lookup(m.ItemID)
	if err != nil {
		return err
	}
	m.TotalCost = pos.AverageCost.Mul(m.Quantity.Decimal())
	m.AverageCost = pos.AverageCost
	m.CostAlreadyCorrect = true
	return nil
}

func sameMonth(a, b *movement.Movement) bool {
	return a.EffectiveDate.Month() == b.EffectiveDate.Month() &&
		a.EffectiveDate.Year() == b.EffectiveDate.Year()
}
