// Package reconcile provides the cost-correction engine: a single forward
// sweep over chronologically ordered movements that revalues dismantling
// groups and production orders against a running weighted-average ledger.
package reconcile

import (
	"recusto/internal/core/types"
)

// Config holds engine behavior knobs.
type Config struct {
	// AnomalyThreshold is the relative deviation above which an
	// inventory-count movement's corrected cost reverts to the original.
	AnomalyThreshold types.Money

	// RequireProductionOutputs makes an output-less production order fail
	// with INCOMPLETE_GROUP instead of letting the consumed value leave
	// the ledger with the inputs.
	RequireProductionOutputs bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		AnomalyThreshold:         types.NewMoney(10.0),
		RequireProductionOutputs: false,
	}
}
