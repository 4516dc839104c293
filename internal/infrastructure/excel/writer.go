package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"recusto/internal/domain/movement"
	"recusto/internal/domain/registers/stock"
	"recusto/internal/domain/valuation"
)

const dateLayout = "2006-01-02"

// Writer produces the three reconciliation reports. Every workbook carries
// the batch run id in its document properties so a report can be traced back
// to the run that produced it.
type Writer struct {
	runID string
}

// NewWriter creates a report writer tagged with the run id.
func NewWriter(runID string) *Writer {
	return &Writer{runID: runID}
}

// WriteTimeline writes the monthly valuation snapshots.
func (w *Writer) WriteTimeline(path string, snapshots []valuation.Snapshot) error {
	f := w.newWorkbook("stock_resume")

	writeRow(f, "stock_resume", 1, "month_end_date", "corrected_cost", "original_cost")
	for i, s := range snapshots {
		writeRow(f, "stock_resume", i+2,
			s.MonthEnd.Format(dateLayout),
			s.CorrectedCost.InexactFloat64(),
			s.OriginalCost.InexactFloat64(),
		)
	}

	return save(f, path)
}

// WriteLedger writes the final per-item positions.
func (w *Writer) WriteLedger(path string, positions []*stock.Position) error {
	f := w.newWorkbook("final_stock")

	writeRow(f, "final_stock", 1,
		"item_id", "description", "quantity", "average_cost", "total_cost", "original_total_cost")
	for i, p := range positions {
		writeRow(f, "final_stock", i+2,
			p.ItemID,
			p.Description,
			p.Quantity.Float64(),
			p.AverageCost.InexactFloat64(),
			p.TotalCost.InexactFloat64(),
			p.OriginalTotalCost.InexactFloat64(),
		)
	}

	return save(f, path)
}

// WriteMovements writes the annotated movement log: every input movement with
// its derived flags and final corrected cost fields.
func (w *Writer) WriteMovements(path string, ms []*movement.Movement) error {
	f := w.newWorkbook("stock_movements")

	writeRow(f, "stock_movements", 1,
		"movement_id", "effective_date", "movement_date", "entry_date",
		"production_order_id", "dismantling_id", "document_number", "movement_history",
		"item_id", "item_description", "quantity",
		"total_cost", "average_cost", "original_cost", "correct_cost",
		"is_dismantling", "is_dismantling_input", "is_dismantling_output",
		"is_production_order", "is_production_order_input", "is_production_order_output",
		"is_entry", "is_inventory_count", "cost_already_correct",
	)

	for i, m := range ms {
		var entryDate, orderID, groupID, override any
		if m.EntryDate != nil {
			entryDate = m.EntryDate.Format(dateLayout)
		}
		if m.ProductionOrderID != nil {
			orderID = *m.ProductionOrderID
		}
		if m.DismantlingGroupID != nil {
			groupID = *m.DismantlingGroupID
		}
		if m.CostOverride != nil {
			override = m.CostOverride.InexactFloat64()
		}

		writeRow(f, "stock_movements", i+2,
			m.ID,
			m.EffectiveDate.Format(dateLayout),
			m.MovementDate.Format(dateLayout),
			entryDate,
			orderID,
			groupID,
			m.DocumentNumber,
			m.History,
			m.ItemID,
			m.ItemDescription,
			m.Quantity.Float64(),
			m.TotalCost.InexactFloat64(),
			m.AverageCost.InexactFloat64(),
			m.OriginalCost.InexactFloat64(),
			override,
			m.IsDismantling,
			m.IsDismantlingInput,
			m.IsDismantlingOutput,
			m.IsProductionOrder,
			m.IsProductionOrderInput,
			m.IsProductionOrderOutput,
			m.IsEntry,
			m.IsInventoryCount,
			m.CostAlreadyCorrect,
		)
	}

	return save(f, path)
}

func (w *Writer) newWorkbook(sheet string) *excelize.File {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheet)
	if w.runID != "" {
		_ = f.SetDocProps(&excelize.DocProperties{
			Creator:     "recusto",
			Description: "reconciliation run " + w.runID,
		})
	}
	return f
}

func writeRow(f *excelize.File, sheet string, rowNo int, values ...any) {
	for col, v := range values {
		cellName, err := excelize.CoordinatesToCellName(col+1, rowNo)
		if err != nil {
			continue
		}
		_ = f.SetCellValue(sheet, cellName, v)
	}
}

func save(f *excelize.File, path string) error {
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return f.Close()
}
