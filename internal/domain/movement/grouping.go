package movement

// AssignDismantlingGroups partitions dismantling movements into sequential
// dismantling events and assigns each member the opening movement's id as
// group id. Movements must already be in chronological order.
//
// One physical disassembly is a burst of input consumptions followed by output
// productions. The first input arriving after outputs have started closes the
// previous event and opens the next; consecutive inputs before any output stay
// together, and outputs stay attached until a new input arrives after one.
//
// Returns an index from group id to member movements, in chronological order.
func AssignDismantlingGroups(ms []*Movement) map[int64][]*Movement {
	groups := make(map[int64][]*Movement)

	var currentGroupID *int64
	lastWasOutput := false

	for _, m := range ms {
		if !m.IsDismantling {
			continue
		}

		if currentGroupID == nil || (m.IsDismantlingInput && lastWasOutput) {
			id := m.ID
			currentGroupID = &id
			lastWasOutput = false
		}
		if m.IsDismantlingOutput {
			lastWasOutput = true
		}

		id := *currentGroupID
		m.DismantlingGroupID = &id
		groups[id] = append(groups[id], m)
	}

	return groups
}

// IndexProductionOrders groups production-order movements by order id,
// preserving chronological order within each order.
func IndexProductionOrders(ms []*Movement) map[int64][]*Movement {
	orders := make(map[int64][]*Movement)
	for _, m := range ms {
		if m.ProductionOrderID == nil {
			continue
		}
		orders[*m.ProductionOrderID] = append(orders[*m.ProductionOrderID], m)
	}
	return orders
}
