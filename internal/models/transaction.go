package models

import (
	"strings"

	"github.com/pkg/errors"
)

type ClientID uint16

type TxID uint32

// TransactionKind is the type column of an input row.
type TransactionKind string

const (
	Deposit    TransactionKind = "deposit"
	Withdrawal TransactionKind = "withdrawal"
	Dispute    TransactionKind = "dispute"
	Resolve    TransactionKind = "resolve"
	ChargeBack TransactionKind = "chargeback"
)

var ErrUnknownKind = errors.New("unknown transaction type")

// ParseTransactionKind matches the type column case-insensitively.
func ParseTransactionKind(s string) (TransactionKind, error) {
	kind := TransactionKind(strings.ToLower(s))
	switch kind {
	case Deposit, Withdrawal, Dispute, Resolve, ChargeBack:
		return kind, nil
	}
	return "", errors.Wrapf(ErrUnknownKind, "%q", s)
}

// RequiresAmount reports whether rows of this kind must carry an amount.
func (k TransactionKind) RequiresAmount() bool {
	return k == Deposit || k == Withdrawal
}

// Transaction is one decoded event of the input stream.
// For deposits and withdrawals TxID identifies the event itself, for
// disputes, resolves and chargebacks it references an earlier deposit.
type Transaction struct {
	Kind     TransactionKind
	ClientID ClientID
	TxID     TxID
	Amount   string // raw amount text, empty when absent
}
