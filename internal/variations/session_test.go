package variations

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCatalog is a mock implementation of Catalog
type MockCatalog struct {
	mock.Mock
}

// Ensure MockCatalog implements the interface
var _ Catalog = (*MockCatalog)(nil)

func (m *MockCatalog) ValueIDs(ctx context.Context, attributeID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, attributeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// ===========================================
// Selection Tests
// ===========================================

func TestSession_AttachDefaults(t *testing.T) {
	s := NewSession("tenant-123", uuid.New(), new(MockCatalog))
	attributeID := uuid.New()

	err := s.AttachAttribute(attributeID, "Color", []uuid.UUID{uuid.New()})

	assert.NoError(t, err)
	selections := s.Selections()
	assert.Len(t, selections, 1)
	assert.Equal(t, "Color", selections[0].Name)
	assert.True(t, selections[0].VisibleOnProduct)
	assert.False(t, selections[0].UsedForVariations)
}

func TestSession_AttachDuplicate(t *testing.T) {
	s := NewSession("tenant-123", uuid.New(), new(MockCatalog))
	attributeID := uuid.New()

	assert.NoError(t, s.AttachAttribute(attributeID, "Color", nil))
	err := s.AttachAttribute(attributeID, "Color", nil)

	var dup *DuplicateAttributeError
	assert.True(t, errors.As(err, &dup))
	assert.Equal(t, attributeID, dup.AttributeID)
	assert.Len(t, s.Selections(), 1)
}

func TestSession_SetSelectedValuesValidatesAgainstCatalog(t *testing.T) {
	ctx := context.Background()
	catalog := new(MockCatalog)
	s := NewSession("tenant-123", uuid.New(), catalog)

	attributeID := uuid.New()
	redID := uuid.New()
	blueID := uuid.New()
	bogusID := uuid.New()

	assert.NoError(t, s.AttachAttribute(attributeID, "Color", nil))
	catalog.On("ValueIDs", ctx, attributeID).Return([]uuid.UUID{redID, blueID}, nil)

	err := s.SetSelectedValues(ctx, attributeID, []uuid.UUID{redID, bogusID})

	var unknown *UnknownValueError
	assert.True(t, errors.As(err, &unknown))
	assert.Equal(t, []uuid.UUID{bogusID}, unknown.ValueIDs)
	// The selection is untouched on failure
	assert.Empty(t, s.Selections()[0].SelectedValueIDs)

	assert.NoError(t, s.SetSelectedValues(ctx, attributeID, []uuid.UUID{redID, blueID}))
	assert.Equal(t, []uuid.UUID{redID, blueID}, s.Selections()[0].SelectedValueIDs)
	catalog.AssertExpectations(t)
}

func TestSession_DetachUnknownAttribute(t *testing.T) {
	s := NewSession("tenant-123", uuid.New(), new(MockCatalog))

	err := s.DetachAttribute(uuid.New())

	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, "attribute", notFound.Kind)
}

// ===========================================
// Generation Tests
// ===========================================

// attachParticipating attaches an attribute, selects values and flags it for
// variations, bypassing catalog validation
func attachParticipating(t *testing.T, s *Session, name string, valueCount int) AttributeSelection {
	t.Helper()
	sel := makeSelection(name, valueCount, true)
	assert.NoError(t, s.AttachAttribute(sel.AttributeID, sel.Name, sel.SelectedValueIDs))
	assert.NoError(t, s.SetUsedForVariations(sel.AttributeID, true))
	return sel
}

func TestSession_GenerateVariations(t *testing.T) {
	s := NewSession("tenant-123", uuid.New(), new(MockCatalog))
	attachParticipating(t, s, "Size", 2)
	attachParticipating(t, s, "Color", 3)

	summary, err := s.GenerateVariations()

	assert.NoError(t, err)
	assert.Equal(t, 6, summary.Generated)
	assert.Equal(t, 6, summary.Created)
	assert.Equal(t, 0, summary.Carried)
	assert.Equal(t, 0, summary.Removed)
	assert.Len(t, s.Variations(), 6)
}

func TestSession_RegenerateCarriesEdits(t *testing.T) {
	s := NewSession("tenant-123", uuid.New(), new(MockCatalog))
	attachParticipating(t, s, "Size", 2)

	_, err := s.GenerateVariations()
	assert.NoError(t, err)

	key := s.Variations()[0].Key()
	sku := "TSHIRT-S"
	_, err = s.UpdateVariation(key, VariationPatch{SKU: &sku})
	assert.NoError(t, err)

	summary, err := s.GenerateVariations()
	assert.NoError(t, err)
	assert.Equal(t, 2, summary.Carried)
	assert.Equal(t, 0, summary.Created)

	carried, err := s.store.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, "TSHIRT-S", carried.SKU)
}

func TestSession_GenerateFailureLeavesSessionUntouched(t *testing.T) {
	s := NewSession("tenant-123", uuid.New(), new(MockCatalog))
	attachParticipating(t, s, "Size", 2)

	_, err := s.GenerateVariations()
	assert.NoError(t, err)
	before := s.Variations()

	// Flag an attribute for variations without selecting values
	emptyID := uuid.New()
	assert.NoError(t, s.AttachAttribute(emptyID, "Color", nil))
	assert.NoError(t, s.SetUsedForVariations(emptyID, true))

	summary, err := s.GenerateVariations()

	assert.Nil(t, summary)
	var incomplete *IncompleteAttributeError
	assert.True(t, errors.As(err, &incomplete))
	assert.Equal(t, emptyID, incomplete.AttributeID)

	// Working list and ledger are exactly as before the failed pass
	assert.Equal(t, before, s.Variations())
	assert.Empty(t, s.DeletedVariationIDs())
}

func TestSession_GenerateLedgersRemovedPersisted(t *testing.T) {
	s := NewSession("tenant-123", uuid.New(), new(MockCatalog))
	sel := attachParticipating(t, s, "Size", 2)

	persistedID := uuid.New()
	existing := Variation{
		ID:  &persistedID,
		SKU: "OLD-SKU",
		Attributes: Combination{
			{AttributeID: sel.AttributeID, ValueID: uuid.New()}, // value no longer selected
		},
		Status: StatusActive,
	}
	assert.NoError(t, s.store.Replace([]Variation{existing}))

	summary, err := s.GenerateVariations()

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Removed)
	assert.Equal(t, []uuid.UUID{persistedID}, s.DeletedVariationIDs())
}

// ===========================================
// Save Payload Tests
// ===========================================

func TestSession_BuildSavePayload(t *testing.T) {
	s := NewSession("tenant-123", uuid.New(), new(MockCatalog))
	size := attachParticipating(t, s, "Size", 2)

	// Display-only attribute must not appear in the payload
	brand := makeSelection("Brand", 2, false)
	assert.NoError(t, s.AttachAttribute(brand.AttributeID, brand.Name, brand.SelectedValueIDs))

	_, err := s.GenerateVariations()
	assert.NoError(t, err)

	// Remove one persisted variation manually
	persistedID := uuid.New()
	list := s.Variations()
	list[0].ID = &persistedID
	assert.NoError(t, s.store.Replace(list))
	assert.NoError(t, s.RemoveVariation(list[0].Key()))

	payload := s.BuildSavePayload()

	assert.Len(t, payload.Attributes, 1)
	assert.Equal(t, size.AttributeID, payload.Attributes[0].AttributeID)
	assert.Equal(t, size.SelectedValueIDs, payload.Attributes[0].AttributeValueIDs)

	assert.Len(t, payload.Variations, 1)
	assert.Equal(t, list[1].SKU, payload.Variations[0].SKU)

	assert.Equal(t, []uuid.UUID{persistedID}, payload.DeleteVariationIDs)
}

func TestSession_LoadRestoresPersistedState(t *testing.T) {
	s := NewSession("tenant-123", uuid.New(), new(MockCatalog))

	sel := makeSelection("Size", 2, true)
	persistedID := uuid.New()
	existing := Variation{
		ID:  &persistedID,
		SKU: "TSHIRT-S",
		Attributes: Combination{
			{AttributeID: sel.AttributeID, ValueID: sel.SelectedValueIDs[0]},
		},
		Status: StatusActive,
	}

	err := s.Load([]AttributeSelection{sel}, []Variation{existing})

	assert.NoError(t, err)
	assert.Len(t, s.Selections(), 1)
	assert.True(t, s.Selections()[0].UsedForVariations)
	assert.Len(t, s.Variations(), 1)
	assert.Equal(t, "TSHIRT-S", s.Variations()[0].SKU)
	assert.Empty(t, s.DeletedVariationIDs())
}
