package variations

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// AttributePair binds one attribute dimension to a chosen value.
type AttributePair struct {
	AttributeID uuid.UUID `json:"attributeId"`
	ValueID     uuid.UUID `json:"attributeValueId"`
}

// Combination is one Cartesian-product tuple of attribute-value choices, one
// pair per contributing attribute, ordered by attribute attach order.
type Combination []AttributePair

// CombinationKey is the canonical identity of a combination. Two combinations
// address the same variation slot iff their keys are equal.
type CombinationKey string

// Key canonicalizes the combination: pairs sorted by attribute id, then joined.
// Ids are UUIDs, so the separator characters cannot appear inside them.
func (c Combination) Key() CombinationKey {
	pairs := make([]AttributePair, len(c))
	copy(pairs, c)
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].AttributeID.String() < pairs[j].AttributeID.String()
	})

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.AttributeID.String() + "=" + p.ValueID.String()
	}
	return CombinationKey(strings.Join(parts, "|"))
}

func (c Combination) clone() Combination {
	out := make(Combination, len(c))
	copy(out, c)
	return out
}
