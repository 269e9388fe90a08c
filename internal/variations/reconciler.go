package variations

import "fmt"

// PlaceholderSequence hands out SKUs for variations synthesized during
// reconciliation. The "pending-" prefix keeps them apart from real backend
// SKUs and the counter keeps them unique for the life of one edit session.
type PlaceholderSequence struct {
	next int
}

func (s *PlaceholderSequence) Next() string {
	s.next++
	return fmt.Sprintf("pending-%04d", s.next)
}

// ReconcileResult is the outcome of one reconciliation pass.
type ReconcileResult struct {
	// Merged is the updated variation list, in combination order.
	Merged []Variation
	// Removed holds variations whose combination no longer exists, in their
	// previous list order.
	Removed []Variation
	// Created counts the freshly synthesized entries in Merged.
	Created int
}

// Reconcile merges freshly generated combinations against the current
// variation list. Combinations that match an existing variation carry it
// forward field-for-field; combinations with no match get a blank variation
// with default fields and a placeholder SKU; variations whose combination
// disappeared end up in Removed.
//
// Reconciling the same combinations against a previous Merged result is a
// no-op: every slot matches and is carried forward unchanged.
func Reconcile(combos []Combination, current []Variation, skus *PlaceholderSequence) ReconcileResult {
	index := make(map[CombinationKey]Variation, len(current))
	for _, v := range current {
		if _, ok := index[v.Key()]; !ok {
			index[v.Key()] = v
		}
	}

	matched := make(map[CombinationKey]struct{}, len(combos))
	merged := make([]Variation, 0, len(combos))
	created := 0

	for _, combo := range combos {
		key := combo.Key()
		if v, ok := index[key]; ok {
			if _, seen := matched[key]; !seen {
				matched[key] = struct{}{}
				merged = append(merged, v.clone())
				continue
			}
		}
		merged = append(merged, Variation{
			SKU:               skus.Next(),
			Quantity:          0,
			LowStockThreshold: DefaultLowStockThreshold,
			Status:            StatusActive,
			Attributes:        combo.clone(),
		})
		created++
	}

	var removed []Variation
	for _, v := range current {
		if _, ok := matched[v.Key()]; !ok {
			removed = append(removed, v.clone())
		}
	}

	return ReconcileResult{Merged: merged, Removed: removed, Created: created}
}
