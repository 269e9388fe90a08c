package variations

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// Helper to build a selection with n fresh value ids
func makeSelection(name string, valueCount int, used bool) AttributeSelection {
	values := make([]uuid.UUID, valueCount)
	for i := range values {
		values[i] = uuid.New()
	}
	return AttributeSelection{
		AttributeID:       uuid.New(),
		Name:              name,
		SelectedValueIDs:  values,
		UsedForVariations: used,
		VisibleOnProduct:  true,
	}
}

// ===========================================
// Generate Tests
// ===========================================

func TestGenerate_CartesianProduct(t *testing.T) {
	selections := []AttributeSelection{
		makeSelection("Size", 2, true),
		makeSelection("Color", 3, true),
		makeSelection("Material", 2, true),
	}

	combos, err := Generate(selections)

	assert.NoError(t, err)
	assert.Len(t, combos, 12)

	// Every combination carries one pair per attribute
	for _, combo := range combos {
		assert.Len(t, combo, 3)
	}

	// All combinations are distinct
	seen := make(map[CombinationKey]struct{})
	for _, combo := range combos {
		seen[combo.Key()] = struct{}{}
	}
	assert.Len(t, seen, 12)
}

func TestGenerate_DeterministicOrder(t *testing.T) {
	size := makeSelection("Size", 2, true)
	color := makeSelection("Color", 2, true)
	selections := []AttributeSelection{size, color}

	combos, err := Generate(selections)

	assert.NoError(t, err)
	assert.Len(t, combos, 4)

	// First attribute varies slowest, second fastest:
	// (S0,C0) (S0,C1) (S1,C0) (S1,C1)
	assert.Equal(t, size.SelectedValueIDs[0], combos[0][0].ValueID)
	assert.Equal(t, color.SelectedValueIDs[0], combos[0][1].ValueID)
	assert.Equal(t, size.SelectedValueIDs[0], combos[1][0].ValueID)
	assert.Equal(t, color.SelectedValueIDs[1], combos[1][1].ValueID)
	assert.Equal(t, size.SelectedValueIDs[1], combos[2][0].ValueID)
	assert.Equal(t, color.SelectedValueIDs[0], combos[2][1].ValueID)
	assert.Equal(t, size.SelectedValueIDs[1], combos[3][0].ValueID)
	assert.Equal(t, color.SelectedValueIDs[1], combos[3][1].ValueID)
}

func TestGenerate_SkipsNonParticipatingAttributes(t *testing.T) {
	selections := []AttributeSelection{
		makeSelection("Size", 2, true),
		makeSelection("Brand", 4, false), // display-only
	}

	combos, err := Generate(selections)

	assert.NoError(t, err)
	assert.Len(t, combos, 2)
	for _, combo := range combos {
		assert.Len(t, combo, 1)
	}
}

func TestGenerate_DisplayOnlyWithoutValuesIsIgnored(t *testing.T) {
	selections := []AttributeSelection{
		makeSelection("Size", 2, true),
		makeSelection("Brand", 0, false),
	}

	combos, err := Generate(selections)

	assert.NoError(t, err)
	assert.Len(t, combos, 2)
}

func TestGenerate_IncompleteAttribute(t *testing.T) {
	size := makeSelection("Size", 2, true)
	color := makeSelection("Color", 0, true)
	selections := []AttributeSelection{size, color}

	combos, err := Generate(selections)

	assert.Nil(t, combos)
	var incomplete *IncompleteAttributeError
	assert.True(t, errors.As(err, &incomplete))
	assert.Equal(t, color.AttributeID, incomplete.AttributeID)
	assert.Contains(t, err.Error(), "Color")
}

func TestGenerate_NoVariationAttributes(t *testing.T) {
	selections := []AttributeSelection{
		makeSelection("Brand", 3, false),
	}

	combos, err := Generate(selections)

	assert.Nil(t, combos)
	var noAttrs *NoVariationAttributesError
	assert.True(t, errors.As(err, &noAttrs))
}

func TestGenerate_EmptySelectionSet(t *testing.T) {
	combos, err := Generate(nil)

	assert.Nil(t, combos)
	var noAttrs *NoVariationAttributesError
	assert.True(t, errors.As(err, &noAttrs))
}

func TestGenerate_SingleAttribute(t *testing.T) {
	size := makeSelection("Size", 3, true)

	combos, err := Generate([]AttributeSelection{size})

	assert.NoError(t, err)
	assert.Len(t, combos, 3)
	for i, combo := range combos {
		assert.Equal(t, size.AttributeID, combo[0].AttributeID)
		assert.Equal(t, size.SelectedValueIDs[i], combo[0].ValueID)
	}
}
