package variations

// Generate computes the full ordered set of attribute-value combinations for
// the given selections. Only selections flagged for variations contribute a
// dimension; a flagged selection with no values fails the whole pass, so the
// result is always a complete Cartesian product or nothing.
//
// Output order is deterministic: attributes in attach order, values in
// selection order. Callers (placeholder SKU numbering, tests) rely on this.
func Generate(selections []AttributeSelection) ([]Combination, error) {
	participating := make([]AttributeSelection, 0, len(selections))
	for _, sel := range selections {
		if !sel.UsedForVariations {
			continue
		}
		if len(sel.SelectedValueIDs) == 0 {
			return nil, &IncompleteAttributeError{AttributeID: sel.AttributeID, Name: sel.Name}
		}
		participating = append(participating, sel)
	}
	if len(participating) == 0 {
		return nil, &NoVariationAttributesError{}
	}

	total := 1
	for _, sel := range participating {
		total *= len(sel.SelectedValueIDs)
	}

	combos := make([]Combination, 0, total)
	current := make(Combination, 0, len(participating))

	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(participating) {
			combos = append(combos, current.clone())
			return
		}
		sel := participating[depth]
		for _, valueID := range sel.SelectedValueIDs {
			current = append(current, AttributePair{AttributeID: sel.AttributeID, ValueID: valueID})
			walk(depth + 1)
			current = current[:len(current)-1]
		}
	}
	walk(0)

	return combos, nil
}
