package models

import "github.com/sheikh-saqib/payments-engine/internal/amount"

// ClientSnapshot is the final balance record of one client
type ClientSnapshot struct {
	ClientID  ClientID      // which client this record belongs to
	Available amount.Amount // funds the client may withdraw
	Held      amount.Amount // funds frozen by open disputes
	Total     amount.Amount // available + held
	Locked    bool          // set once a chargeback happened
}
