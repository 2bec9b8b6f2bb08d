package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/payments-engine/internal/amount"
	"github.com/sheikh-saqib/payments-engine/internal/models"
)

func TestMemorySnapshotStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySnapshotStore()
	runID := uuid.New()

	snapshots := []models.ClientSnapshot{
		{ClientID: 1, Available: amount.MustParse("1"), Total: amount.MustParse("1")},
		{ClientID: 2, Held: amount.MustParse("2"), Total: amount.MustParse("2"), Locked: true},
	}
	require.NoError(t, store.SaveSnapshots(ctx, runID, snapshots))

	// the store must not alias the caller's slice
	snapshots[0].Locked = true

	got, err := store.GetSnapshots(ctx, runID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[0].Locked)

	got[1].ClientID = 99
	again, err := store.GetSnapshots(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, models.ClientID(2), again[1].ClientID)

	other, err := store.GetSnapshots(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}
