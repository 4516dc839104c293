package reconcile

import (
	"context"

	"recusto/internal/core/apperror"
	"recusto/internal/core/types"
	"recusto/internal/domain/movement"
	"recusto/internal/domain/registers/stock"
	"recusto/pkg/logger"
)

// resolveDismantling revalues one dismantling event: inputs are repriced at
// the ledger's current average for their item, and the liberated value is
// distributed to outputs proportionally to their original cost. Mutates the
// member movements in place; ledger application happens later, uniformly, in
// the driver.
func (e *Engine) resolveDismantling(ctx context.Context, groupID int64, members []*movement.Movement, ledger *stock.Ledger) error {
	if allResolved(members) {
		logger.Debug(ctx, "dismantling group already resolved", "group_id", groupID)
		return nil
	}

	var inputs, outputs []*movement.Movement
	for _, m := range members {
		switch {
		case m.IsDismantlingInput:
			inputs = append(inputs, m)
		case m.IsDismantlingOutput:
			outputs = append(outputs, m)
		}
	}

	if len(inputs) == 0 || len(outputs) == 0 {
		return apperror.NewIncompleteGroup("dismantling", groupID,
			"dismantling must have both input and output movements")
	}

	// A member that is neither input nor output (zero cost) stays unresolved
	// and would re-trigger resolution; skip once all participants are final.
	if allResolved(inputs) && allResolved(outputs) {
		return nil
	}

	liberated, err := priceInputsAtAverage(inputs, ledger)
	if err != nil {
		return err
	}

	if err := distributeToOutputs("dismantling", groupID, outputs, liberated); err != nil {
		return err
	}

	logger.Debug(ctx, "resolved dismantling group",
		"group_id", groupID,
		"inputs", len(inputs),
		"outputs", len(outputs),
		"liberated_value", liberated,
	)
	return nil
}

// resolveProductionOrder revalues one production order. Same shape as
// dismantling resolution, but selection is by order id and an output-less
// order is tolerated unless configured otherwise: the consumed value then
// simply leaves the ledger with the inputs.
func (e *Engine) resolveProductionOrder(ctx context.Context, orderID int64, members []*movement.Movement, ledger *stock.Ledger) error {
	if allResolved(members) {
		logger.Debug(ctx, "production order already resolved", "production_order_id", orderID)
		return nil
	}

	var inputs, outputs []*movement.Movement
	for _, m := range members {
		switch {
		case m.IsProductionOrderInput:
			inputs = append(inputs, m)
		case m.IsProductionOrderOutput:
			outputs = append(outputs, m)
		}
	}

	if len(inputs) == 0 {
		return apperror.NewIncompleteGroup("production_order", orderID,
			"production order must have input movements")
	}
	if len(outputs) == 0 && e.cfg.RequireProductionOutputs {
		return apperror.NewIncompleteGroup("production_order", orderID,
			"production order must have output movements")
	}

	if allResolved(inputs) && allResolved(outputs) {
		return nil
	}

	liberated, err := priceInputsAtAverage(inputs, ledger)
	if err != nil {
		return err
	}

	if len(outputs) > 0 {
		if err := distributeToOutputs("production_order", orderID, outputs, liberated); err != nil {
			return err
		}
	} else {
		logger.Warn(ctx, "production order has no outputs, consumed value not redistributed",
			"production_order_id", orderID,
			"liberated_value", liberated,
		)
	}

	logger.Debug(ctx, "resolved production order",
		"production_order_id", orderID,
		"inputs", len(inputs),
		"outputs", len(outputs),
	)
	return nil
}

// priceInputsAtAverage reprices inputs at the current ledger average and
// returns the liberated value: the positive total removed from stock.
func priceInputsAtAverage(inputs []*movement.Movement, ledger *stock.Ledger) (types.Money, error) {
	liberated := types.Zero()
	for _, in := range inputs {
		pos, err := ledger.Lookup(in.ItemID)
		if err != nil {
			return types.Zero(), err
		}
		in.TotalCost = pos.AverageCost.Mul(in.Quantity.Decimal())
		in.AverageCost = pos.AverageCost
		in.CostAlreadyCorrect = true
		liberated = liberated.Add(in.TotalCost.Neg())
	}
	return liberated, nil
}

// distributeToOutputs splits the liberated value across outputs proportionally
// to their original cost. The participation base must be non-zero: dividing by
// a zero sum is a data defect, not a valuation.
func distributeToOutputs(kind string, groupID int64, outputs []*movement.Movement, liberated types.Money) error {
	base := types.Zero()
	for _, out := range outputs {
		base = base.Add(out.OriginalCost)
	}
	if base.IsZero() {
		return apperror.NewIncompleteGroup(kind, groupID,
			"output movements have zero summed original cost")
	}

	for _, out := range outputs {
		participation := out.OriginalCost.Div(base)
		out.TotalCost = liberated.Mul(participation)
		if out.Quantity.IsZero() {
			out.AverageCost = types.Zero()
		} else {
			out.AverageCost = out.TotalCost.Div(out.Quantity.Decimal())
		}
		out.CostAlreadyCorrect = true
	}
	return nil
}

func allResolved(ms []*movement.Movement) bool {
	for _, m := range ms {
		if !m.CostAlreadyCorrect {
			return false
		}
	}
	return true
}
