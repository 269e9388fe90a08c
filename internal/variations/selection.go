package variations

import (
	"context"

	"github.com/google/uuid"
)

// Catalog is the read-only attribute/value catalog selections are validated
// against. Implementations are expected to be tenant-scoped already.
type Catalog interface {
	// ValueIDs returns the full defined value id list for an attribute.
	ValueIDs(ctx context.Context, attributeID uuid.UUID) ([]uuid.UUID, error)
}

// AttributeSelection is one attribute attached to a product together with the
// subset of its values chosen by the user.
type AttributeSelection struct {
	AttributeID       uuid.UUID   `json:"attributeId"`
	Name              string      `json:"name"`
	SelectedValueIDs  []uuid.UUID `json:"selectedValueIds"`
	UsedForVariations bool        `json:"usedForVariations"`
	VisibleOnProduct  bool        `json:"visibleOnProduct"`
}

func (s AttributeSelection) clone() AttributeSelection {
	out := s
	out.SelectedValueIDs = make([]uuid.UUID, len(s.SelectedValueIDs))
	copy(out.SelectedValueIDs, s.SelectedValueIDs)
	return out
}

// SelectionSet owns the attributes attached to one product, in attach order.
// Attach order is significant: it decides the dimension order of generated
// combinations.
type SelectionSet struct {
	selections []AttributeSelection
}

func NewSelectionSet() *SelectionSet {
	return &SelectionSet{}
}

// Attach adds an attribute to the set. New attributes are visible on the
// product page but do not contribute variation dimensions until the flag is
// switched on explicitly.
func (s *SelectionSet) Attach(attributeID uuid.UUID, name string, valueIDs []uuid.UUID) error {
	if s.find(attributeID) != nil {
		return &DuplicateAttributeError{AttributeID: attributeID, Name: name}
	}
	s.selections = append(s.selections, AttributeSelection{
		AttributeID:      attributeID,
		Name:             name,
		SelectedValueIDs: dedupeIDs(valueIDs),
		VisibleOnProduct: true,
	})
	return nil
}

// Detach removes an attribute entirely. Variations referencing it stay in the
// store untouched; the next generation pass reconciles them away.
func (s *SelectionSet) Detach(attributeID uuid.UUID) error {
	for i, sel := range s.selections {
		if sel.AttributeID == attributeID {
			s.selections = append(s.selections[:i], s.selections[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{Kind: "attribute", ID: attributeID.String()}
}

// SetSelectedValues replaces the selected-value set for one attribute after
// validating every id against the catalog.
func (s *SelectionSet) SetSelectedValues(ctx context.Context, catalog Catalog, attributeID uuid.UUID, valueIDs []uuid.UUID) error {
	sel := s.find(attributeID)
	if sel == nil {
		return &NotFoundError{Kind: "attribute", ID: attributeID.String()}
	}

	valueIDs = dedupeIDs(valueIDs)

	defined, err := catalog.ValueIDs(ctx, attributeID)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]struct{}, len(defined))
	for _, id := range defined {
		known[id] = struct{}{}
	}
	var unknown []uuid.UUID
	for _, id := range valueIDs {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return &UnknownValueError{AttributeID: attributeID, Name: sel.Name, ValueIDs: unknown}
	}

	sel.SelectedValueIDs = valueIDs
	return nil
}

// SetUsedForVariations flips the dimension-contribution flag. It never
// triggers regeneration on its own.
func (s *SelectionSet) SetUsedForVariations(attributeID uuid.UUID, used bool) error {
	sel := s.find(attributeID)
	if sel == nil {
		return &NotFoundError{Kind: "attribute", ID: attributeID.String()}
	}
	sel.UsedForVariations = used
	return nil
}

// SetVisibleOnProduct flips the display-only flag.
func (s *SelectionSet) SetVisibleOnProduct(attributeID uuid.UUID, visible bool) error {
	sel := s.find(attributeID)
	if sel == nil {
		return &NotFoundError{Kind: "attribute", ID: attributeID.String()}
	}
	sel.VisibleOnProduct = visible
	return nil
}

// Selections returns a copy of the set in attach order.
func (s *SelectionSet) Selections() []AttributeSelection {
	out := make([]AttributeSelection, len(s.selections))
	for i, sel := range s.selections {
		out[i] = sel.clone()
	}
	return out
}

func (s *SelectionSet) Len() int {
	return len(s.selections)
}

func (s *SelectionSet) find(attributeID uuid.UUID) *AttributeSelection {
	for i := range s.selections {
		if s.selections[i].AttributeID == attributeID {
			return &s.selections[i]
		}
	}
	return nil
}

// restore seeds the set from persisted selections, preserving stored flags.
func (s *SelectionSet) restore(selections []AttributeSelection) error {
	for _, sel := range selections {
		if s.find(sel.AttributeID) != nil {
			return &DuplicateAttributeError{AttributeID: sel.AttributeID, Name: sel.Name}
		}
		restored := sel.clone()
		restored.SelectedValueIDs = dedupeIDs(restored.SelectedValueIDs)
		s.selections = append(s.selections, restored)
	}
	return nil
}

// dedupeIDs drops repeated ids, keeping first-occurrence order so generation
// stays deterministic.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
