package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/sheikh-saqib/payments-engine/internal/interfaces"
	"github.com/sheikh-saqib/payments-engine/internal/models"
)

// MemorySnapshotStore keeps client snapshots per run in memory.
// It is safe for concurrent use.
type MemorySnapshotStore struct {
	mu   sync.Mutex                           // protects runs
	runs map[uuid.UUID][]models.ClientSnapshot // snapshots keyed by run id
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{
		runs: make(map[uuid.UUID][]models.ClientSnapshot),
	}
}

// SaveSnapshots stores a copy of the snapshots, replacing any earlier save
// of the same run.
func (m *MemorySnapshotStore) SaveSnapshots(_ context.Context, runID uuid.UUID, snapshots []models.ClientSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]models.ClientSnapshot, len(snapshots))
	copy(copied, snapshots)
	m.runs[runID] = copied
	return nil
}

// GetSnapshots returns a copy so callers can't modify stored state.
func (m *MemorySnapshotStore) GetSnapshots(_ context.Context, runID uuid.UUID) ([]models.ClientSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.runs[runID]
	copied := make([]models.ClientSnapshot, len(stored))
	copy(copied, stored)
	return copied, nil
}

// Compile-time check: ensure MemorySnapshotStore implements SnapshotStore
var _ interfaces.SnapshotStore = (*MemorySnapshotStore)(nil)
