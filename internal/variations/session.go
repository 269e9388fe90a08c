package variations

import (
	"context"

	"github.com/google/uuid"
)

// Session is the edit-session arena for one product: the attribute selection
// set, the working variation list and the deletion ledger, owned together so
// a generation pass can be atomic. Sessions are not safe for concurrent use;
// the session manager serializes access to each one.
type Session struct {
	TenantID  string
	ProductID uuid.UUID

	selections *SelectionSet
	store      *VariationStore
	ledger     *DeletionLedger
	skus       PlaceholderSequence
	catalog    Catalog
}

func NewSession(tenantID string, productID uuid.UUID, catalog Catalog) *Session {
	ledger := NewDeletionLedger()
	return &Session{
		TenantID:   tenantID,
		ProductID:  productID,
		selections: NewSelectionSet(),
		store:      NewVariationStore(ledger),
		ledger:     ledger,
		catalog:    catalog,
	}
}

// Load seeds a fresh session with persisted state.
func (s *Session) Load(selections []AttributeSelection, variations []Variation) error {
	if err := s.selections.restore(selections); err != nil {
		return err
	}
	return s.store.Replace(variations)
}

// AttachAttribute adds an attribute to the product's attribute set.
func (s *Session) AttachAttribute(attributeID uuid.UUID, name string, valueIDs []uuid.UUID) error {
	return s.selections.Attach(attributeID, name, valueIDs)
}

// DetachAttribute removes an attribute. Existing variations keep their stale
// dimension until the next generation pass reconciles them away.
func (s *Session) DetachAttribute(attributeID uuid.UUID) error {
	return s.selections.Detach(attributeID)
}

// SetSelectedValues replaces an attribute's selected values, validated
// against the catalog.
func (s *Session) SetSelectedValues(ctx context.Context, attributeID uuid.UUID, valueIDs []uuid.UUID) error {
	return s.selections.SetSelectedValues(ctx, s.catalog, attributeID, valueIDs)
}

// SetUsedForVariations flips the dimension-contribution flag.
func (s *Session) SetUsedForVariations(attributeID uuid.UUID, used bool) error {
	return s.selections.SetUsedForVariations(attributeID, used)
}

// SetVisibleOnProduct flips the display-only flag.
func (s *Session) SetVisibleOnProduct(attributeID uuid.UUID, visible bool) error {
	return s.selections.SetVisibleOnProduct(attributeID, visible)
}

// Selections returns the current attribute selections in attach order.
func (s *Session) Selections() []AttributeSelection {
	return s.selections.Selections()
}

// Variations returns the current working variation list.
func (s *Session) Variations() []Variation {
	return s.store.List()
}

// DeletedVariationIDs returns the ledger snapshot.
func (s *Session) DeletedVariationIDs() []uuid.UUID {
	return s.ledger.Snapshot()
}

// GenerateSummary describes the outcome of one generation pass.
type GenerateSummary struct {
	Generated int `json:"generated"`
	Created   int `json:"created"`
	Carried   int `json:"carried"`
	Removed   int `json:"removed"`
}

// GenerateVariations recomputes the combination set from the current
// selections and reconciles it against the working list. The pass is atomic:
// on any error the store, ledger and placeholder counter are untouched.
func (s *Session) GenerateVariations() (*GenerateSummary, error) {
	combos, err := Generate(s.selections.Selections())
	if err != nil {
		return nil, err
	}

	seq := s.skus
	result := Reconcile(combos, s.store.List(), &seq)
	if err := s.store.Replace(result.Merged); err != nil {
		return nil, err
	}
	s.skus = seq

	for _, v := range result.Removed {
		if v.Persisted() {
			s.ledger.Record(*v.ID)
		}
	}

	return &GenerateSummary{
		Generated: len(combos),
		Created:   result.Created,
		Carried:   len(result.Merged) - result.Created,
		Removed:   len(result.Removed),
	}, nil
}

// UpdateVariation applies a partial edit to one working variation.
func (s *Session) UpdateVariation(key CombinationKey, patch VariationPatch) (Variation, error) {
	return s.store.Update(key, patch)
}

// RemoveVariation removes one working variation; a persisted id lands in the
// ledger.
func (s *Session) RemoveVariation(key CombinationKey) error {
	return s.store.Remove(key)
}

// SavePayload is the wire shape handed to the persistence collaborator on
// save: the participating selections, the surviving variation list and the
// explicit delete instructions.
type SavePayload struct {
	Attributes         []SelectionPayload `json:"attributes"`
	Variations         []VariationPayload `json:"variations"`
	DeleteVariationIDs []uuid.UUID        `json:"delete_variation_ids"`
}

// SelectionPayload is one participating attribute and its chosen value ids.
type SelectionPayload struct {
	AttributeID       uuid.UUID   `json:"attribute_id"`
	AttributeValueIDs []uuid.UUID `json:"attribute_value_ids"`
}

// VariationPayload is the persistence form of one variation.
type VariationPayload struct {
	ID                *uuid.UUID      `json:"id,omitempty"`
	SKU               string          `json:"sku"`
	Price             string          `json:"price"`
	SalePrice         string          `json:"sale_price"`
	Quantity          int             `json:"quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	Status            VariationStatus `json:"status"`
	Attributes        []PairPayload   `json:"attributes"`
	Image             *string         `json:"image,omitempty"`
}

// PairPayload is one attribute-value binding on the wire.
type PairPayload struct {
	AttributeID uuid.UUID `json:"attribute_id"`
	ValueID     uuid.UUID `json:"attribute_value_id"`
}

// BuildSavePayload serializes the session for the backend. Variations whose
// id has been ledgered are excluded from the upsert list.
func (s *Session) BuildSavePayload() SavePayload {
	selections := s.selections.Selections()
	attrs := make([]SelectionPayload, 0, len(selections))
	for _, sel := range selections {
		if !sel.UsedForVariations {
			continue
		}
		attrs = append(attrs, SelectionPayload{
			AttributeID:       sel.AttributeID,
			AttributeValueIDs: sel.SelectedValueIDs,
		})
	}

	working := s.store.List()
	vars := make([]VariationPayload, 0, len(working))
	for _, v := range working {
		if v.Persisted() && s.ledger.Contains(*v.ID) {
			continue
		}
		pairs := make([]PairPayload, len(v.Attributes))
		for i, p := range v.Attributes {
			pairs[i] = PairPayload{AttributeID: p.AttributeID, ValueID: p.ValueID}
		}
		vars = append(vars, VariationPayload{
			ID:                v.ID,
			SKU:               v.SKU,
			Price:             v.Price,
			SalePrice:         v.SalePrice,
			Quantity:          v.Quantity,
			LowStockThreshold: v.LowStockThreshold,
			Status:            v.Status,
			Attributes:        pairs,
			Image:             v.Image,
		})
	}

	return SavePayload{
		Attributes:         attrs,
		Variations:         vars,
		DeleteVariationIDs: s.ledger.Snapshot(),
	}
}
