package variations

import (
	"sort"

	"github.com/google/uuid"
)

// DeletionLedger accumulates the ids of persisted variations removed during
// an edit session. The backend has no concept of diffing the variation list,
// so deletions have to be spelled out on save. The ledger is append-only for
// the life of the session; a re-generated combination always gets a fresh
// variation, never a resurrected one.
type DeletionLedger struct {
	ids map[uuid.UUID]struct{}
}

func NewDeletionLedger() *DeletionLedger {
	return &DeletionLedger{ids: make(map[uuid.UUID]struct{})}
}

// Record adds an id to the ledger. Recording the same id twice is a no-op.
func (l *DeletionLedger) Record(id uuid.UUID) {
	l.ids[id] = struct{}{}
}

// Contains reports whether an id has been recorded.
func (l *DeletionLedger) Contains(id uuid.UUID) bool {
	_, ok := l.ids[id]
	return ok
}

func (l *DeletionLedger) Len() int {
	return len(l.ids)
}

// Snapshot returns the recorded ids in stable order without clearing them.
func (l *DeletionLedger) Snapshot() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(l.ids))
	for id := range l.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// Reset clears the ledger. Only called when the edit session itself is reset.
func (l *DeletionLedger) Reset() {
	l.ids = make(map[uuid.UUID]struct{})
}
