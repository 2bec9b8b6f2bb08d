package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/payments-engine/internal/models"
)

type ClientSnapshotted struct {
	RunID      uuid.UUID       `json:"run_id"`
	ClientID   uint16          `json:"client_id"`
	Available  decimal.Decimal `json:"available"`
	Held       decimal.Decimal `json:"held"`
	Total      decimal.Decimal `json:"total"`
	Locked     bool            `json:"locked"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewClientSnapshotted(runID uuid.UUID, s models.ClientSnapshot, at time.Time) ClientSnapshotted {
	return ClientSnapshotted{
		RunID:      runID,
		ClientID:   uint16(s.ClientID),
		Available:  s.Available.Decimal(),
		Held:       s.Held.Decimal(),
		Total:      s.Total.Decimal(),
		Locked:     s.Locked,
		OccurredAt: at,
	}
}
