// Package excel loads reconciliation inputs from and writes reports to xlsx
// workbooks.
package excel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"recusto/internal/core/types"
)

// Default workbook layout, matching the authoring convention for the inputs.
const (
	OverridesSheet     = "correct_movements_costs"
	StartingStockSheet = "start_stock"
)

// StartingStockRow is one opening ledger position read from a workbook.
// Average cost is derived by the ledger, never read.
type StartingStockRow struct {
	ItemID            int64
	Description       string
	Quantity          types.Quantity
	TotalCost         types.Money
	OriginalTotalCost types.Money
}

// LoadOverrides reads {movement_id, correct_cost} rows. The result is
// left-joined onto the feed by the caller: movements without a row here get
// no override.
func LoadOverrides(path, sheet string) (map[int64]types.Money, error) {
	rows, cols, err := readSheet(path, sheet)
	if err != nil {
		return nil, err
	}

	idCol, err := cols.index("movement_id")
	if err != nil {
		return nil, err
	}
	costCol, err := cols.index("correct_cost")
	if err != nil {
		return nil, err
	}

	overrides := make(map[int64]types.Money, len(rows))
	for i, row := range rows {
		id, err := cellInt64(row, idCol)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: movement_id: %w", sheet, i+2, err)
		}
		cost, err := cellMoney(row, costCol)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: correct_cost: %w", sheet, i+2, err)
		}
		overrides[id] = cost
	}
	return overrides, nil
}

// LoadStartingStock reads the opening inventory rows that seed the ledger.
func LoadStartingStock(path, sheet string) ([]StartingStockRow, error) {
	rows, cols, err := readSheet(path, sheet)
	if err != nil {
		return nil, err
	}

	idCol, err := cols.index("item_id")
	if err != nil {
		return nil, err
	}
	descCol, err := cols.index("description")
	if err != nil {
		return nil, err
	}
	qtyCol, err := cols.index("quantity")
	if err != nil {
		return nil, err
	}
	costCol, err := cols.index("total_cost")
	if err != nil {
		return nil, err
	}
	origCol, err := cols.index("original_total_cost")
	if err != nil {
		return nil, err
	}

	out := make([]StartingStockRow, 0, len(rows))
	for i, row := range rows {
		id, err := cellInt64(row, idCol)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: item_id: %w", sheet, i+2, err)
		}
		qty, err := cellQuantity(row, qtyCol)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: quantity: %w", sheet, i+2, err)
		}
		cost, err := cellMoney(row, costCol)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: total_cost: %w", sheet, i+2, err)
		}
		orig, err := cellMoney(row, origCol)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: original_total_cost: %w", sheet, i+2, err)
		}

		out = append(out, StartingStockRow{
			ItemID:            id,
			Description:       cell(row, descCol),
			Quantity:          qty,
			TotalCost:         cost,
			OriginalTotalCost: orig,
		})
	}
	return out, nil
}

// --- sheet plumbing ---

type header map[string]int

func (h header) index(name string) (int, error) {
	idx, ok := h[name]
	if !ok {
		return 0, fmt.Errorf("missing column %q", name)
	}
	return idx, nil
}

// readSheet returns the data rows and a name->index header map.
func readSheet(path, sheet string) ([][]string, header, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	cols := make(header, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return rows[1:], cols, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func cellInt64(row []string, idx int) (int64, error) {
	s := cell(row, idx)
	if s == "" {
		return 0, fmt.Errorf("empty cell")
	}
	// Spreadsheets hand back integer ids as float text now and then.
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return int64(f), nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func cellMoney(row []string, idx int) (types.Money, error) {
	s := cell(row, idx)
	if s == "" {
		return types.Zero(), fmt.Errorf("empty cell")
	}
	return types.NewMoneyFromString(s)
}

func cellQuantity(row []string, idx int) (types.Quantity, error) {
	return types.NewQuantityFromString(cell(row, idx))
}
