package ledger

import (
	"github.com/pkg/errors"

	"github.com/sheikh-saqib/payments-engine/internal/amount"
	"github.com/sheikh-saqib/payments-engine/internal/models"
)

var ErrMissingAmount = errors.New("missing amount")

// Outcome tells what a client ledger did with an event. Everything except
// Applied means the event was ignored as inconsistent upstream data.
type Outcome string

const (
	Applied            Outcome = "applied"
	Frozen             Outcome = "account frozen"
	DuplicateDeposit   Outcome = "duplicate deposit"
	InsufficientFunds  Outcome = "insufficient funds"
	UnknownTransaction Outcome = "unknown transaction"
	AlreadyDisputed    Outcome = "already disputed"
	ChargedBack        Outcome = "charged back"
	NotDisputed        Outcome = "not disputed"
)

// Client is the balance state machine of a single client.
type Client struct {
	available amount.Amount
	held      amount.Amount
	frozen    bool

	// every accepted deposit, never deleted; a charged back deposit is kept
	// with a zero amount so it can't be disputed again
	deposits map[models.TxID]amount.Amount
	// deposits under an open dispute, always a subset of non-zero deposits
	disputes map[models.TxID]struct{}
}

func NewClient() *Client {
	return &Client{
		deposits: make(map[models.TxID]amount.Amount),
		disputes: make(map[models.TxID]struct{}),
	}
}

// Apply runs one event through the state machine. Inconsistent events are
// reported through the Outcome with a nil error. Errors are fatal: a missing
// or malformed amount, or an arithmetic overflow/underflow. A failing event
// leaves the ledger unchanged.
func (c *Client) Apply(tx models.Transaction) (Outcome, error) {
	switch tx.Kind {
	case models.Deposit:
		amt, err := parseAmount(tx)
		if err != nil {
			return "", err
		}
		return c.deposit(tx.TxID, amt)
	case models.Withdrawal:
		amt, err := parseAmount(tx)
		if err != nil {
			return "", err
		}
		return c.withdraw(amt)
	case models.Dispute:
		return c.dispute(tx.TxID)
	case models.Resolve:
		return c.resolve(tx.TxID)
	case models.ChargeBack:
		return c.chargeBack(tx.TxID)
	}
	return "", errors.Wrapf(models.ErrUnknownKind, "%q", tx.Kind)
}

func parseAmount(tx models.Transaction) (amount.Amount, error) {
	if tx.Amount == "" {
		return amount.Zero, errors.Wrapf(ErrMissingAmount, "%s tx %d", tx.Kind, tx.TxID)
	}
	return amount.Parse(tx.Amount)
}

func (c *Client) deposit(id models.TxID, amt amount.Amount) (Outcome, error) {
	if c.frozen {
		return Frozen, nil
	}
	if _, ok := c.deposits[id]; ok {
		return DuplicateDeposit, nil
	}

	available, err := c.available.Add(amt)
	if err != nil {
		return "", errors.Wrap(err, "crediting available funds")
	}

	c.deposits[id] = amt
	c.available = available
	return Applied, nil
}

func (c *Client) withdraw(amt amount.Amount) (Outcome, error) {
	if c.frozen {
		return Frozen, nil
	}
	if c.available < amt {
		return InsufficientFunds, nil
	}

	available, err := c.available.Sub(amt)
	if err != nil {
		return "", errors.Wrap(err, "debiting available funds")
	}

	c.available = available
	return Applied, nil
}

func (c *Client) dispute(id models.TxID) (Outcome, error) {
	amt, ok := c.deposits[id]
	switch {
	case !ok:
		return UnknownTransaction, nil
	case amt.IsZero():
		return ChargedBack, nil
	}
	if _, ok := c.disputes[id]; ok {
		return AlreadyDisputed, nil
	}

	held, err := c.held.Add(amt)
	if err != nil {
		return "", errors.Wrap(err, "holding disputed funds")
	}
	available, err := c.available.Sub(amt)
	if err != nil {
		return "", errors.Wrap(err, "releasing disputed funds from available")
	}

	c.disputes[id] = struct{}{}
	c.held = held
	c.available = available
	return Applied, nil
}

func (c *Client) resolve(id models.TxID) (Outcome, error) {
	if _, ok := c.disputes[id]; !ok {
		return NotDisputed, nil
	}
	amt := c.deposits[id]

	available, err := c.available.Add(amt)
	if err != nil {
		return "", errors.Wrap(err, "returning resolved funds")
	}
	held, err := c.held.Sub(amt)
	if err != nil {
		return "", errors.Wrap(err, "releasing held funds")
	}

	delete(c.disputes, id)
	c.available = available
	c.held = held
	return Applied, nil
}

func (c *Client) chargeBack(id models.TxID) (Outcome, error) {
	if _, ok := c.disputes[id]; !ok {
		return NotDisputed, nil
	}
	amt := c.deposits[id]

	held, err := c.held.Sub(amt)
	if err != nil {
		return "", errors.Wrap(err, "charging back held funds")
	}

	delete(c.disputes, id)
	c.deposits[id] = amount.Zero
	c.held = held
	c.frozen = true
	return Applied, nil
}

// Snapshot renders the client's final balances.
func (c *Client) Snapshot(id models.ClientID) (models.ClientSnapshot, error) {
	total, err := c.available.Add(c.held)
	if err != nil {
		return models.ClientSnapshot{}, errors.Wrapf(err, "totalling client %d", id)
	}

	return models.ClientSnapshot{
		ClientID:  id,
		Available: c.available,
		Held:      c.held,
		Total:     total,
		Locked:    c.frozen,
	}, nil
}
