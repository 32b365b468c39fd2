package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	TransferCompleted = "transfer.completed"
	TransferLockedOut = "transfer.locked_out"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// TransferCompletedEvent is published exactly once per settled transfer, at
// PIN acceptance. Subscribers use it as the cue to debit the balance.
type TransferCompletedEvent struct {
	TransactionID string          `json:"transactionId"`
	PayTag        string          `json:"payTag"`
	RecipientName string          `json:"recipientName"`
	Amount        decimal.Decimal `json:"amount"`
}

// TransferLockedOutEvent is published when a draft is discarded after
// repeated failed PIN attempts.
type TransferLockedOutEvent struct {
	PayTag   string `json:"payTag"`
	Attempts int    `json:"attempts"`
}
