// Package engine runs one pass of the payments engine: it folds a CSV
// transaction stream into client balances, writes them as CSV and hands
// them to the configured sinks.
package engine

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/payments-engine/internal/csvio"
	"github.com/sheikh-saqib/payments-engine/internal/interfaces"
	"github.com/sheikh-saqib/payments-engine/internal/ledger"
	"github.com/sheikh-saqib/payments-engine/internal/models/events"
)

type Engine struct {
	store     interfaces.SnapshotStore  // optional
	publisher interfaces.EventPublisher // optional
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// Summary describes a finished run.
type Summary struct {
	RunID uuid.UUID
	Stats ledger.Stats
}

func New(store interfaces.SnapshotStore, publisher interfaces.EventPublisher, logger *zap.SugaredLogger) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Run folds every transaction from in, hands the balances to the sinks and
// writes them to out last, so a failing run produces no output.
func (e *Engine) Run(ctx context.Context, in io.Reader, out io.Writer) (Summary, error) {
	summary := Summary{RunID: uuid.New()}
	logger := e.logger.With("run", summary.RunID.String())

	router := ledger.NewRouter(logger)
	reader := csvio.NewReader(in)
	for {
		tx, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, errors.Wrap(err, "reading transactions")
		}
		if err := router.Apply(tx); err != nil {
			return summary, err
		}
	}

	snapshots, err := router.Snapshot()
	if err != nil {
		return summary, errors.Wrap(err, "rendering balances")
	}
	summary.Stats = router.Stats()

	if e.store != nil {
		if err := e.store.SaveSnapshots(ctx, summary.RunID, snapshots); err != nil {
			return summary, errors.Wrap(err, "storing balances")
		}
		logger.Infow("stored balances", "clients", len(snapshots))
	}

	if e.publisher != nil {
		at := e.now().UTC()
		for _, s := range snapshots {
			event := events.NewClientSnapshotted(summary.RunID, s, at)
			key := strconv.FormatUint(uint64(s.ClientID), 10)
			if err := e.publisher.Publish(ctx, key, event); err != nil {
				return summary, errors.Wrapf(err, "publishing client %d", s.ClientID)
			}
		}
		logger.Infow("published balances", "clients", len(snapshots))
	}

	if err := csvio.NewWriter(out).WriteAll(snapshots); err != nil {
		return summary, errors.Wrap(err, "writing balances")
	}

	logger.Infow("run finished",
		"events", summary.Stats.Events,
		"applied", summary.Stats.Applied,
		"ignored", summary.Stats.IgnoredTotal(),
		"clients", summary.Stats.Clients,
	)
	return summary, nil
}
