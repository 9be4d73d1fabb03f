// Package events publishes ledger changes for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Kind names a ledger event.
type Kind string

const (
	KindTransactionCreated  Kind = "transaction.created"
	KindTransactionsDeleted Kind = "transactions.deleted"
)

// LedgerEvent describes one committed change to a user's ledger.
type LedgerEvent struct {
	Kind           Kind            `json:"event"`
	UserID         string          `json:"user_id"`
	TransactionIDs []string        `json:"transaction_ids"`
	Type           string          `json:"type"`
	FactID         string          `json:"fact_id"`
	Amount         decimal.Decimal `json:"amount"`
	Budget         decimal.Decimal `json:"budget"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// ToJSON encodes the event as a message body.
func (e LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes a message body.
func FromJSON(body []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Publisher delivers ledger events. Callers publish only after the
// change has committed.
type Publisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, LedgerEvent) error { return nil }
