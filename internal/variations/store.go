package variations

// VariationStore owns the authoritative variation list for one edit session.
// The list is only ever replaced wholesale (by a reconcile pass) or edited
// one variation at a time; both paths enforce the no-duplicate-combination
// invariant.
type VariationStore struct {
	variations []Variation
	ledger     *DeletionLedger
}

func NewVariationStore(ledger *DeletionLedger) *VariationStore {
	return &VariationStore{ledger: ledger}
}

// Replace sets the authoritative list. The incoming list is rejected outright
// if two entries share a combination key.
func (s *VariationStore) Replace(variations []Variation) error {
	seen := make(map[CombinationKey]struct{}, len(variations))
	next := make([]Variation, len(variations))
	for i, v := range variations {
		key := v.Key()
		if _, ok := seen[key]; ok {
			return &DuplicateCombinationError{Key: key}
		}
		seen[key] = struct{}{}
		next[i] = v.clone()
	}
	s.variations = next
	return nil
}

// List returns a copy of the current list in order.
func (s *VariationStore) List() []Variation {
	out := make([]Variation, len(s.variations))
	for i, v := range s.variations {
		out[i] = v.clone()
	}
	return out
}

func (s *VariationStore) Len() int {
	return len(s.variations)
}

// Get returns the variation for a combination key.
func (s *VariationStore) Get(key CombinationKey) (Variation, error) {
	for _, v := range s.variations {
		if v.Key() == key {
			return v.clone(), nil
		}
	}
	return Variation{}, &NotFoundError{Kind: "variation", ID: string(key)}
}

// Update applies a partial edit to one variation's editable fields and
// returns the updated variation.
func (s *VariationStore) Update(key CombinationKey, patch VariationPatch) (Variation, error) {
	for i := range s.variations {
		if s.variations[i].Key() == key {
			patch.apply(&s.variations[i])
			return s.variations[i].clone(), nil
		}
	}
	return Variation{}, &NotFoundError{Kind: "variation", ID: string(key)}
}

// Remove deletes one variation directly (the manual path, independent of
// regeneration). A persisted id is pushed to the deletion ledger first.
func (s *VariationStore) Remove(key CombinationKey) error {
	for i := range s.variations {
		if s.variations[i].Key() != key {
			continue
		}
		if s.variations[i].Persisted() {
			s.ledger.Record(*s.variations[i].ID)
		}
		s.variations = append(s.variations[:i], s.variations[i+1:]...)
		return nil
	}
	return &NotFoundError{Kind: "variation", ID: string(key)}
}
