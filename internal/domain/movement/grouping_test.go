package movement

import (
	"testing"
	"time"
)

// dismantling builds a minimal dismantling member for grouping tests.
func dismantling(id int64, day int, input bool) *Movement {
	return &Movement{
		ID:                  id,
		EffectiveDate:       date(2024, time.January, day),
		IsDismantling:       true,
		IsDismantlingInput:  input,
		IsDismantlingOutput: !input,
	}
}

func groupOf(t *testing.T, m *Movement) int64 {
	t.Helper()
	if m.DismantlingGroupID == nil {
		t.Fatalf("movement %d has no dismantling group", m.ID)
	}
	return *m.DismantlingGroupID
}

func TestAssignDismantlingGroups_InputAfterOutputOpensNewGroup(t *testing.T) {
	ms := []*Movement{
		dismantling(1, 1, true),  // input      -> opens group 1
		dismantling(2, 2, false), // output     -> stays in group 1
		dismantling(3, 3, true),  // input after output -> opens group 3
		dismantling(4, 4, false), // output     -> stays in group 3
	}

	groups := AssignDismantlingGroups(ms)

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if g := groupOf(t, ms[0]); g != 1 {
		t.Errorf("movement 1 group = %d, want 1", g)
	}
	if g := groupOf(t, ms[1]); g != 1 {
		t.Errorf("movement 2 group = %d, want 1", g)
	}
	if g := groupOf(t, ms[2]); g != 3 {
		t.Errorf("movement 3 group = %d, want 3", g)
	}
	if g := groupOf(t, ms[3]); g != 3 {
		t.Errorf("movement 4 group = %d, want 3", g)
	}
}

func TestAssignDismantlingGroups_ConsecutiveInputsStayTogether(t *testing.T) {
	ms := []*Movement{
		dismantling(10, 1, true),
		dismantling(11, 2, true),
		dismantling(12, 3, false),
		dismantling(13, 4, false),
	}

	groups := AssignDismantlingGroups(ms)

	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	for _, m := range ms {
		if g := groupOf(t, m); g != 10 {
			t.Errorf("movement %d group = %d, want 10", m.ID, g)
		}
	}
	if len(groups[10]) != 4 {
		t.Errorf("group 10 has %d members, want 4", len(groups[10]))
	}
}

func TestAssignDismantlingGroups_SkipsNonDismantling(t *testing.T) {
	plain := &Movement{ID: 5, EffectiveDate: date(2024, time.January, 2)}
	ms := []*Movement{
		dismantling(4, 1, true),
		plain,
		dismantling(6, 3, false),
	}

	groups := AssignDismantlingGroups(ms)

	if plain.DismantlingGroupID != nil {
		t.Error("non-dismantling movement must not get a group id")
	}
	if len(groups[4]) != 2 {
		t.Errorf("group 4 has %d members, want 2", len(groups[4]))
	}
}

func TestIndexProductionOrders(t *testing.T) {
	orderA, orderB := int64(100), int64(200)
	ms := []*Movement{
		{ID: 1, ProductionOrderID: &orderA},
		{ID: 2, ProductionOrderID: &orderB},
		{ID: 3, ProductionOrderID: &orderA},
		{ID: 4},
	}

	orders := IndexProductionOrders(ms)

	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	if len(orders[orderA]) != 2 || orders[orderA][0].ID != 1 || orders[orderA][1].ID != 3 {
		t.Errorf("order %d members wrong: %+v", orderA, orders[orderA])
	}
	if len(orders[orderB]) != 1 {
		t.Errorf("order %d has %d members, want 1", orderB, len(orders[orderB]))
	}
}
