package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/payments-engine/internal/amount"
	"github.com/sheikh-saqib/payments-engine/internal/interfaces"
	"github.com/sheikh-saqib/payments-engine/internal/models"
)

const table = "client_balances"

type PostgresSnapshotStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresSnapshotStore(db *sql.DB) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{
		db:  db,
		now: time.Now,
	}
}

// Open connects with the lib/pq driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pinging postgres")
	}
	return db, nil
}

func (p *PostgresSnapshotStore) EnsureSchema(ctx context.Context) error {
	const query = `CREATE TABLE IF NOT EXISTS client_balances (
	run_id     UUID          NOT NULL,
	client_id  INTEGER       NOT NULL,
	available  NUMERIC(24,4) NOT NULL,
	held       NUMERIC(24,4) NOT NULL,
	total      NUMERIC(24,4) NOT NULL,
	locked     BOOLEAN       NOT NULL,
	created_at TIMESTAMPTZ   NOT NULL,
	PRIMARY KEY (run_id, client_id)
)`

	_, err := p.db.ExecContext(ctx, query)
	return errors.Wrap(err, "creating client_balances")
}

// SaveSnapshots bulk loads one run with COPY inside a single transaction.
func (p *PostgresSnapshotStore) SaveSnapshots(ctx context.Context, runID uuid.UUID, snapshots []models.ClientSnapshot) (err error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	stmt, err := dbTx.PrepareContext(ctx, pq.CopyIn(table,
		"run_id", "client_id", "available", "held", "total", "locked", "created_at"))
	if err != nil {
		return errors.Wrap(err, "preparing copy")
	}

	createdAt := p.now().UTC()
	for _, s := range snapshots {
		_, err = stmt.ExecContext(ctx,
			runID,
			int(s.ClientID),
			s.Available.Decimal(),
			s.Held.Decimal(),
			s.Total.Decimal(),
			s.Locked,
			createdAt,
		)
		if err != nil {
			stmt.Close()
			return errors.Wrapf(err, "copying client %d", s.ClientID)
		}
	}

	// an argument-less Exec flushes the COPY buffer
	if _, err = stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return errors.Wrap(err, "flushing copy")
	}
	if err = stmt.Close(); err != nil {
		return errors.Wrap(err, "closing copy")
	}

	return errors.Wrap(dbTx.Commit(), "committing snapshots")
}

func (p *PostgresSnapshotStore) GetSnapshots(ctx context.Context, runID uuid.UUID) ([]models.ClientSnapshot, error) {
	const query = `SELECT client_id, available, held, total, locked FROM client_balances
	WHERE run_id = $1 ORDER BY client_id`

	rows, err := p.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, errors.Wrap(err, "querying client balances")
	}
	defer rows.Close()

	var snapshots []models.ClientSnapshot
	for rows.Next() {
		var (
			clientID             int
			available, held, tot decimal.Decimal
			s                    models.ClientSnapshot
		)
		if err := rows.Scan(&clientID, &available, &held, &tot, &s.Locked); err != nil {
			return nil, errors.Wrap(err, "scanning client balance")
		}

		s.ClientID = models.ClientID(clientID)
		if s.Available, err = amount.FromDecimal(available); err != nil {
			return nil, err
		}
		if s.Held, err = amount.FromDecimal(held); err != nil {
			return nil, err
		}
		if s.Total, err = amount.FromDecimal(tot); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating client balances")
	}
	return snapshots, nil
}

var _ interfaces.SnapshotStore = (*PostgresSnapshotStore)(nil)
