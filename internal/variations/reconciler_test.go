package variations

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// ===========================================
// Reconcile Tests
// ===========================================

func TestReconcile_AllNew(t *testing.T) {
	selections := []AttributeSelection{
		makeSelection("Size", 2, true),
		makeSelection("Color", 2, true),
	}
	combos, err := Generate(selections)
	assert.NoError(t, err)

	var skus PlaceholderSequence
	result := Reconcile(combos, nil, &skus)

	assert.Len(t, result.Merged, 4)
	assert.Equal(t, 4, result.Created)
	assert.Empty(t, result.Removed)

	for i, v := range result.Merged {
		assert.Nil(t, v.ID)
		assert.Equal(t, 0, v.Quantity)
		assert.Equal(t, DefaultLowStockThreshold, v.LowStockThreshold)
		assert.Equal(t, StatusActive, v.Status)
		assert.Equal(t, combos[i].Key(), v.Key())
	}

	// Placeholder SKUs are sequential and unique
	assert.Equal(t, "pending-0001", result.Merged[0].SKU)
	assert.Equal(t, "pending-0002", result.Merged[1].SKU)
	assert.Equal(t, "pending-0003", result.Merged[2].SKU)
	assert.Equal(t, "pending-0004", result.Merged[3].SKU)
}

func TestReconcile_Idempotent(t *testing.T) {
	selections := []AttributeSelection{
		makeSelection("Size", 3, true),
	}
	combos, err := Generate(selections)
	assert.NoError(t, err)

	var skus PlaceholderSequence
	first := Reconcile(combos, nil, &skus)
	second := Reconcile(combos, first.Merged, &skus)

	assert.Equal(t, first.Merged, second.Merged)
	assert.Equal(t, 0, second.Created)
	assert.Empty(t, second.Removed)
}

func TestReconcile_PreservesEdits(t *testing.T) {
	selections := []AttributeSelection{
		makeSelection("Size", 2, true),
	}
	combos, err := Generate(selections)
	assert.NoError(t, err)

	var skus PlaceholderSequence
	first := Reconcile(combos, nil, &skus)

	// Operator edits the first variation
	edited := first.Merged
	edited[0].SKU = "TSHIRT-S"
	edited[0].Price = "19.99"
	edited[0].Quantity = 42

	second := Reconcile(combos, edited, &skus)

	assert.Equal(t, "TSHIRT-S", second.Merged[0].SKU)
	assert.Equal(t, "19.99", second.Merged[0].Price)
	assert.Equal(t, 42, second.Merged[0].Quantity)
	assert.Equal(t, 0, second.Created)
}

func TestReconcile_ExpandedSelection(t *testing.T) {
	size := makeSelection("Size", 2, true)
	combos, err := Generate([]AttributeSelection{size})
	assert.NoError(t, err)

	var skus PlaceholderSequence
	first := Reconcile(combos, nil, &skus)

	// A third size is selected; the two existing slots must carry forward
	size.SelectedValueIDs = append(size.SelectedValueIDs, uuid.New())
	expanded, err := Generate([]AttributeSelection{size})
	assert.NoError(t, err)

	second := Reconcile(expanded, first.Merged, &skus)

	assert.Len(t, second.Merged, 3)
	assert.Equal(t, 1, second.Created)
	assert.Empty(t, second.Removed)
	assert.Equal(t, first.Merged[0].SKU, second.Merged[0].SKU)
	assert.Equal(t, first.Merged[1].SKU, second.Merged[1].SKU)
	assert.Equal(t, "pending-0003", second.Merged[2].SKU)
}

func TestReconcile_DetectsRemovals(t *testing.T) {
	size := makeSelection("Size", 3, true)
	combos, err := Generate([]AttributeSelection{size})
	assert.NoError(t, err)

	var skus PlaceholderSequence
	first := Reconcile(combos, nil, &skus)

	// The second variation was already persisted on the backend
	persistedID := uuid.New()
	current := first.Merged
	current[1].ID = &persistedID

	// Deselect the second value
	size.SelectedValueIDs = append(size.SelectedValueIDs[:1], size.SelectedValueIDs[2])
	narrowed, err := Generate([]AttributeSelection{size})
	assert.NoError(t, err)

	second := Reconcile(narrowed, current, &skus)

	assert.Len(t, second.Merged, 2)
	assert.Equal(t, 0, second.Created)
	assert.Len(t, second.Removed, 1)
	assert.Equal(t, &persistedID, second.Removed[0].ID)
}

func TestReconcile_RemovedKeepsPreviousListOrder(t *testing.T) {
	size := makeSelection("Size", 4, true)
	combos, err := Generate([]AttributeSelection{size})
	assert.NoError(t, err)

	var skus PlaceholderSequence
	first := Reconcile(combos, nil, &skus)

	// Keep only the first value; three variations disappear
	size.SelectedValueIDs = size.SelectedValueIDs[:1]
	narrowed, err := Generate([]AttributeSelection{size})
	assert.NoError(t, err)

	second := Reconcile(narrowed, first.Merged, &skus)

	assert.Len(t, second.Removed, 3)
	assert.Equal(t, first.Merged[1].SKU, second.Removed[0].SKU)
	assert.Equal(t, first.Merged[2].SKU, second.Removed[1].SKU)
	assert.Equal(t, first.Merged[3].SKU, second.Removed[2].SKU)
}

func TestReconcile_PlaceholderCounterSpansPasses(t *testing.T) {
	size := makeSelection("Size", 1, true)
	combos, err := Generate([]AttributeSelection{size})
	assert.NoError(t, err)

	var skus PlaceholderSequence
	first := Reconcile(combos, nil, &skus)
	assert.Equal(t, "pending-0001", first.Merged[0].SKU)

	// Swap in a different value; the counter keeps climbing so placeholder
	// SKUs never collide within a session
	size.SelectedValueIDs = []uuid.UUID{uuid.New()}
	swapped, err := Generate([]AttributeSelection{size})
	assert.NoError(t, err)

	second := Reconcile(swapped, first.Merged, &skus)
	assert.Equal(t, "pending-0002", second.Merged[0].SKU)
}
