package variations

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func makeVariation(sku string) Variation {
	return Variation{
		SKU:               sku,
		Quantity:          0,
		LowStockThreshold: DefaultLowStockThreshold,
		Status:            StatusActive,
		Attributes: Combination{
			{AttributeID: uuid.New(), ValueID: uuid.New()},
		},
	}
}

// ===========================================
// VariationStore Tests
// ===========================================

func TestStore_ReplaceRejectsDuplicateCombination(t *testing.T) {
	store := NewVariationStore(NewDeletionLedger())

	v := makeVariation("A-1")
	dup := v.clone()
	dup.SKU = "A-2"

	err := store.Replace([]Variation{v, dup})

	var dupErr *DuplicateCombinationError
	assert.True(t, errors.As(err, &dupErr))
	assert.Equal(t, v.Key(), dupErr.Key)
	assert.Equal(t, 0, store.Len())
}

func TestStore_ListReturnsCopies(t *testing.T) {
	store := NewVariationStore(NewDeletionLedger())
	assert.NoError(t, store.Replace([]Variation{makeVariation("A-1")}))

	list := store.List()
	list[0].SKU = "mutated"

	fresh := store.List()
	assert.Equal(t, "A-1", fresh[0].SKU)
}

func TestStore_Update(t *testing.T) {
	store := NewVariationStore(NewDeletionLedger())
	v := makeVariation("A-1")
	assert.NoError(t, store.Replace([]Variation{v}))

	price := "12.50"
	quantity := 7
	status := StatusInactive
	updated, err := store.Update(v.Key(), VariationPatch{
		Price:    &price,
		Quantity: &quantity,
		Status:   &status,
	})

	assert.NoError(t, err)
	assert.Equal(t, "12.50", updated.Price)
	assert.Equal(t, 7, updated.Quantity)
	assert.Equal(t, StatusInactive, updated.Status)
	// Untouched fields survive
	assert.Equal(t, "A-1", updated.SKU)
	assert.Equal(t, DefaultLowStockThreshold, updated.LowStockThreshold)
}

func TestStore_UpdateUnknownKey(t *testing.T) {
	store := NewVariationStore(NewDeletionLedger())

	_, err := store.Update(CombinationKey("missing"), VariationPatch{})

	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, "variation", notFound.Kind)
}

func TestStore_RemoveUnpersisted(t *testing.T) {
	ledger := NewDeletionLedger()
	store := NewVariationStore(ledger)
	v := makeVariation("A-1")
	assert.NoError(t, store.Replace([]Variation{v}))

	assert.NoError(t, store.Remove(v.Key()))
	assert.Equal(t, 0, store.Len())
	// No backend id, nothing to ledger
	assert.Equal(t, 0, ledger.Len())
}

func TestStore_RemovePersistedRecordsDeletion(t *testing.T) {
	ledger := NewDeletionLedger()
	store := NewVariationStore(ledger)

	v := makeVariation("A-1")
	persistedID := uuid.New()
	v.ID = &persistedID
	assert.NoError(t, store.Replace([]Variation{v}))

	assert.NoError(t, store.Remove(v.Key()))
	assert.True(t, ledger.Contains(persistedID))
}

func TestStore_Get(t *testing.T) {
	store := NewVariationStore(NewDeletionLedger())
	v := makeVariation("A-1")
	assert.NoError(t, store.Replace([]Variation{v}))

	got, err := store.Get(v.Key())
	assert.NoError(t, err)
	assert.Equal(t, "A-1", got.SKU)

	_, err = store.Get(CombinationKey("missing"))
	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

// ===========================================
// DeletionLedger Tests
// ===========================================

func TestLedger_RecordIsIdempotent(t *testing.T) {
	ledger := NewDeletionLedger()
	id := uuid.New()

	ledger.Record(id)
	ledger.Record(id)

	assert.Equal(t, 1, ledger.Len())
	assert.True(t, ledger.Contains(id))
}

func TestLedger_SnapshotIsStable(t *testing.T) {
	ledger := NewDeletionLedger()
	for i := 0; i < 10; i++ {
		ledger.Record(uuid.New())
	}

	first := ledger.Snapshot()
	second := ledger.Snapshot()

	assert.Len(t, first, 10)
	assert.Equal(t, first, second)
	// Snapshot does not drain the ledger
	assert.Equal(t, 10, ledger.Len())
}

func TestLedger_Reset(t *testing.T) {
	ledger := NewDeletionLedger()
	id := uuid.New()
	ledger.Record(id)

	ledger.Reset()

	assert.Equal(t, 0, ledger.Len())
	assert.False(t, ledger.Contains(id))
}
