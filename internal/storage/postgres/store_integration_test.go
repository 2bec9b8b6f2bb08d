package postgres

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/payments-engine/internal/amount"
	"github.com/sheikh-saqib/payments-engine/internal/models"
)

const dsnEnv = "PAYMENTS_ENGINE_TEST_POSTGRES_DSN"

func TestPostgresSnapshotStore_Integration(t *testing.T) {
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresSnapshotStore(db)
	require.NoError(t, store.EnsureSchema(ctx))

	runID := uuid.New()
	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM client_balances WHERE run_id = $1`, runID)
	})

	snapshots := []models.ClientSnapshot{
		{
			ClientID:  1,
			Available: amount.MustParse("3"),
			Held:      amount.MustParse("1.0001"),
			Total:     amount.MustParse("4.0001"),
		},
		{
			ClientID:  math.MaxUint16,
			Available: amount.Amount(math.MaxUint64),
			Total:     amount.Amount(math.MaxUint64),
			Locked:    true,
		},
	}
	require.NoError(t, store.SaveSnapshots(ctx, runID, snapshots))

	got, err := store.GetSnapshots(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, snapshots, got)

	// the primary key rejects a second save of the same run
	assert.Error(t, store.SaveSnapshots(ctx, runID, snapshots))
	got, err = store.GetSnapshots(ctx, runID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
