package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recusto/internal/core/apperror"
	"recusto/internal/domain/movement"
	"recusto/internal/domain/registers/stock"
	"recusto/internal/domain/valuation"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRun_DismantlingScenario(t *testing.T) {
	ledger := stock.NewLedger(money(10))
	require.NoError(t, ledger.Seed(1, "item one", qty(10), money(100), money(100))) // avg 10

	override := money(-44)
	ms := []*movement.Movement{
		// Consumption with authoritative override: applied as-is.
		movement.Classify(movement.Record{
			MovementID:   1,
			MovementDate: date(2024, time.January, 5),
			ItemID:       1,
			Quantity:     -4,
			TotalCost:    -40,
		}, &override),
		// Dismantling burst: one input, one output.
		movement.Classify(movement.Record{
			MovementID:     2,
			MovementDate:   date(2024, time.January, 6),
			DocumentNumber: "DESMONTE 7",
			ItemID:         1,
			Quantity:       -2,
			TotalCost:      -20,
		}, nil),
		movement.Classify(movement.Record{
			MovementID:      3,
			MovementDate:    date(2024, time.January, 7),
			DocumentNumber:  "DESMONTE 7",
			ItemID:          2,
			ItemDescription: "item two",
			Quantity:        2,
			TotalCost:       30,
		}, nil),
	}

	timeline := valuation.NewTimeline()
	require.NoError(t, NewEngine(DefaultConfig()).Run(context.Background(), ms, ledger, timeline))

	// After the override movement: qty 6, total 56, avg 56/6.
	// The dismantling input liberates 2 * 56/6 and the single output takes it all.
	liberated := money(56).Div(money(6)).Mul(money(2))

	assertClose(t, ms[1].TotalCost, liberated.Neg(), "input cost")
	assertClose(t, ms[2].TotalCost, liberated, "output cost")
	assertClose(t, ms[2].AverageCost, liberated.Div(money(2)), "output average")

	one, err := ledger.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, qty(4), one.Quantity)
	assertClose(t, one.TotalCost, money(56).Sub(liberated), "item one total")

	two, err := ledger.Lookup(2)
	require.NoError(t, err)
	assert.Equal(t, qty(2), two.Quantity)
	assertClose(t, two.TotalCost, liberated, "item two total")
	assert.Equal(t, "item two", two.Description)

	// All in one month: no snapshot.
	assert.Zero(t, timeline.Len())
	for _, m := range ms {
		assert.True(t, m.CostAlreadyCorrect, "movement %d must be final", m.ID)
	}
}

func TestRun_MonthlySnapshotCount(t *testing.T) {
	ledger := stock.NewLedger(money(10))

	// Receipts are already correct and seed their items on application.
	mk := func(id int64, d time.Time, cost float64) *movement.Movement {
		return movement.Classify(movement.Record{
			MovementID:      id,
			MovementDate:    d,
			History:         "RECEBIMENTO",
			ItemID:          id,
			ItemDescription: "item",
			Quantity:        1,
			TotalCost:       cost,
		}, nil)
	}

	ms := []*movement.Movement{
		mk(1, date(2024, time.January, 10), 10),
		mk(2, date(2024, time.January, 20), 20),
		mk(3, date(2024, time.March, 5), 30),
	}

	timeline := valuation.NewTimeline()
	require.NoError(t, NewEngine(DefaultConfig()).Run(context.Background(), ms, ledger, timeline))

	// Exactly one snapshot: January, closed at the gap to March. No entry for
	// March itself (no trailing snapshot for the final open month).
	require.Equal(t, 1, timeline.Len())
	snap := timeline.Snapshots()[0]
	assert.True(t, snap.MonthEnd.Equal(date(2024, time.January, 31)), "keyed at %v", snap.MonthEnd)
	// Snapshot taken at month close, before the March movement was applied.
	assert.True(t, snap.CorrectedCost.Equal(money(30)), "corrected = %s", snap.CorrectedCost)
	assert.True(t, snap.OriginalCost.Equal(money(30)), "original = %s", snap.OriginalCost)
}

func TestRun_DeterministicOrdering(t *testing.T) {
	ledger := stock.NewLedger(money(10))
	d := date(2024, time.June, 1)

	mk := func(id int64) *movement.Movement {
		return movement.Classify(movement.Record{
			MovementID:      id,
			MovementDate:    d,
			History:         "RECEBIMENTO",
			ItemID:          1,
			ItemDescription: "item",
			Quantity:        1,
			TotalCost:       10,
		}, nil)
	}

	// Deliberately out of id order.
	ms := []*movement.Movement{mk(3), mk(1), mk(2)}

	require.NoError(t, NewEngine(DefaultConfig()).Run(context.Background(), ms, ledger, valuation.NewTimeline()))

	assert.Equal(t, int64(1), ms[0].ID)
	assert.Equal(t, int64(2), ms[1].ID)
	assert.Equal(t, int64(3), ms[2].ID)
}

func TestRun_IndividualCorrectionUsesRunningAverage(t *testing.T) {
	ledger := stock.NewLedger(money(10))
	require.NoError(t, ledger.Seed(1, "widget", qty(8), money(40), money(40))) // avg 5

	m := movement.Classify(movement.Record{
		MovementID:   1,
		MovementDate: date(2024, time.May, 2),
		ItemID:       1,
		Quantity:     -3,
		TotalCost:    -99, // recorded cost is wrong
	}, nil)

	require.NoError(t, NewEngine(DefaultConfig()).Run(context.Background(), []*movement.Movement{m}, ledger, valuation.NewTimeline()))

	assertClose(t, m.TotalCost, money(-15), "corrected cost")
	assertClose(t, m.AverageCost, money(5), "average")
	assert.True(t, m.CostAlreadyCorrect)

	pos, err := ledger.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, qty(5), pos.Quantity)
	assertClose(t, pos.TotalCost, money(25), "remaining value")
}

func TestRun_UnknownItemAbortsPass(t *testing.T) {
	ledger := stock.NewLedger(money(10))

	// Individual correction of an item the ledger has never seen.
	m := movement.Classify(movement.Record{
		MovementID:   1,
		MovementDate: date(2024, time.May, 2),
		ItemID:       999,
		Quantity:     -3,
		TotalCost:    -9,
	}, nil)

	err := NewEngine(DefaultConfig()).Run(context.Background(), []*movement.Movement{m}, ledger, valuation.NewTimeline())
	require.Error(t, err)
	assert.True(t, apperror.IsUnknownItem(err))
}

func TestCorrectFromLedger_AlreadyCorrected(t *testing.T) {
	ledger := stock.NewLedger(money(10))
	m := &movement.Movement{ID: 42, ItemID: 1, CostAlreadyCorrect: true}

	err := correctFromLedger(m, ledger)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyCorrected))
}
