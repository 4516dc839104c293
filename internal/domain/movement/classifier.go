package movement

import (
	"strings"

	"recusto/internal/core/types"
)

// History/document markers used by the source ERP (Portuguese).
const (
	markerDismantling    = "DESMONTE"    // document number: disassembly event
	markerRequisition    = "REQUISICAO"  // history: raw material requisition
	markerOrderClose     = "ENC"         // history: production order close (with markerOrder)
	markerOrder          = "ORDEM"       // history: production order close (with markerOrderClose)
	markerEntry          = "RECEBIMENTO" // history: procurement receipt
	markerInventoryCount = "INVENT"      // history: inventory count adjustment
)

// Classify derives a Movement from a raw feed record and an optional override
// cost. Pure function of its inputs: all flags are computed here, once, and
// the caller never recomputes them.
func Classify(rec Record, override *types.Money) *Movement {
	document := strings.ToUpper(rec.DocumentNumber)
	history := strings.ToUpper(rec.History)

	totalCost := types.NewMoney(rec.TotalCost)

	m := &Movement{
		ID:                rec.MovementID,
		MovementDate:      rec.MovementDate,
		EntryDate:         rec.EntryDate,
		ProductionOrderID: rec.ProductionOrderID,
		DocumentNumber:    rec.DocumentNumber,
		History:           rec.History,
		ItemID:            rec.ItemID,
		ItemDescription:   rec.ItemDescription,
		Quantity:          types.NewQuantityFromFloat64(rec.Quantity),
		TotalCost:         totalCost,
		AverageCost:       types.NewMoney(rec.AverageCost),
		OriginalCost:      totalCost,
	}

	m.EffectiveDate = m.MovementDate
	if m.EntryDate != nil {
		m.EffectiveDate = *m.EntryDate
	}

	m.IsDismantling = strings.Contains(document, markerDismantling)
	m.IsDismantlingInput = m.IsDismantling && totalCost.IsNegative()
	m.IsDismantlingOutput = m.IsDismantling && totalCost.IsPositive()

	m.IsProductionOrder = rec.ProductionOrderID != nil
	m.IsProductionOrderInput = m.IsProductionOrder && strings.Contains(history, markerRequisition)
	m.IsProductionOrderOutput = m.IsProductionOrder &&
		strings.Contains(history, markerOrderClose) && strings.Contains(history, markerOrder)

	m.IsEntry = strings.Contains(history, markerEntry)
	m.IsInventoryCount = strings.Contains(history, markerInventoryCount)

	// The override is authoritative: it replaces the working cost immediately,
	// after OriginalCost has captured the raw value.
	if override != nil {
		v := *override
		m.CostOverride = &v
		m.TotalCost = v
	}

	m.CostAlreadyCorrect = m.CostOverride != nil || m.IsEntry

	return m
}
