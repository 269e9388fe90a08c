package variations

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DuplicateAttributeError is returned when attaching an attribute that is
// already part of the selection set.
type DuplicateAttributeError struct {
	AttributeID uuid.UUID
	Name        string
}

func (e *DuplicateAttributeError) Error() string {
	return fmt.Sprintf("attribute %q (%s) is already attached", e.Name, e.AttributeID)
}

// UnknownValueError is returned when selected value ids are not part of the
// attribute's defined value list.
type UnknownValueError struct {
	AttributeID uuid.UUID
	Name        string
	ValueIDs    []uuid.UUID
}

func (e *UnknownValueError) Error() string {
	ids := make([]string, len(e.ValueIDs))
	for i, id := range e.ValueIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("attribute %q (%s) has no value(s) %s", e.Name, e.AttributeID, strings.Join(ids, ", "))
}

// IncompleteAttributeError is returned by generation when an attribute is
// flagged for variations but has no selected values.
type IncompleteAttributeError struct {
	AttributeID uuid.UUID
	Name        string
}

func (e *IncompleteAttributeError) Error() string {
	return fmt.Sprintf("attribute %q (%s) is used for variations but has no selected values", e.Name, e.AttributeID)
}

// NoVariationAttributesError is returned by generation when no attribute
// contributes a dimension to the Cartesian product.
type NoVariationAttributesError struct{}

func (e *NoVariationAttributesError) Error() string {
	return "no attributes are flagged for variations"
}

// DuplicateCombinationError is returned when a variation list would contain
// two entries addressing the same combination.
type DuplicateCombinationError struct {
	Key CombinationKey
}

func (e *DuplicateCombinationError) Error() string {
	return fmt.Sprintf("duplicate variation for combination %q", e.Key)
}

// NotFoundError is returned when the attribute or variation an operation
// targets does not exist in the session.
type NotFoundError struct {
	Kind string // "attribute" or "variation"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}
