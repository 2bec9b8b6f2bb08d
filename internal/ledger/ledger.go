package ledger

import (
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/payments-engine/internal/models"
)

// Stats counts what the router did with the events it was given.
type Stats struct {
	Events  int
	Applied int
	Ignored map[Outcome]int
	Clients int
}

// IgnoredTotal is the number of events dropped as inconsistent.
func (s Stats) IgnoredTotal() int {
	n := 0
	for _, c := range s.Ignored {
		n += c
	}
	return n
}

// Router owns one Client ledger per client id and applies events to them
// in arrival order. Ledgers are created on first reference.
//
// A Router is not safe for concurrent use. Events of one client must be
// applied in order; ledgers of different clients share nothing, so a
// parallel ingester could shard routers by client id.
type Router struct {
	clients map[models.ClientID]*Client
	stats   Stats
	logger  *zap.SugaredLogger
}

func NewRouter(logger *zap.SugaredLogger) *Router {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Router{
		clients: make(map[models.ClientID]*Client),
		stats:   Stats{Ignored: make(map[Outcome]int)},
		logger:  logger,
	}
}

// Apply routes tx to its client's ledger. Events the ledger ignores are
// logged and counted; only fatal errors are returned.
func (r *Router) Apply(tx models.Transaction) error {
	r.stats.Events++

	client, ok := r.clients[tx.ClientID]
	if !ok {
		client = NewClient()
		r.clients[tx.ClientID] = client
	}

	outcome, err := client.Apply(tx)
	if err != nil {
		return errors.Wrapf(err, "applying %s tx %d for client %d", tx.Kind, tx.TxID, tx.ClientID)
	}

	if outcome != Applied {
		r.stats.Ignored[outcome]++
		r.logger.Debugw("ignored transaction",
			"type", string(tx.Kind),
			"client", tx.ClientID,
			"tx", tx.TxID,
			"reason", string(outcome),
		)
		return nil
	}
	r.stats.Applied++
	return nil
}

// Snapshot drains the router and returns one record per client, ordered by
// client id. Calling it again returns nothing until new events arrive.
func (r *Router) Snapshot() ([]models.ClientSnapshot, error) {
	ids := make([]models.ClientID, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	snapshots := make([]models.ClientSnapshot, 0, len(ids))
	for _, id := range ids {
		s, err := r.clients[id].Snapshot(id)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}

	r.stats.Clients += len(r.clients)
	r.clients = make(map[models.ClientID]*Client)
	return snapshots, nil
}

// Stats returns a copy of the router counters.
func (r *Router) Stats() Stats {
	s := r.stats
	s.Ignored = make(map[Outcome]int, len(r.stats.Ignored))
	for k, v := range r.stats.Ignored {
		s.Ignored[k] = v
	}
	return s
}
