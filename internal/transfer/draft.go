package transfer

import "github.com/shopspring/decimal"

// State of the authorization session.
type State string

const (
	StateIdle      State = "idle"
	StateForm      State = "form"
	StateConfirm   State = "confirm"
	StatePin       State = "pin"
	StateSuccess   State = "success"
	StateLockedOut State = "locked_out"
)

// draft is the mutable working state of an in-progress transfer. Amount
// input stays raw until AdvanceToConfirm parses and locks it in.
type draft struct {
	payTag        string
	recipientName string
	rawAmount     string
	amount        decimal.Decimal
	memo          string
}

// Snapshot is the caller-facing view of the session: current state, draft
// fields, and the last error. It shares no memory with the session.
type Snapshot struct {
	State         State  `json:"state"`
	PayTag        string `json:"payTag,omitempty"`
	RecipientName string `json:"recipientName,omitempty"`
	Amount        string `json:"amount,omitempty"`
	Memo          string `json:"memo,omitempty"`
	LastError     *Error `json:"lastError,omitempty"`
}
