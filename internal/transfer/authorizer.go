// Package transfer implements the transfer authorization state machine:
// form → confirm → pin → success, with a per-draft lockout after repeated
// failed PIN attempts. One Authorizer owns one active session; collaborators
// (recipient directory, PIN verifier, ledger) are injected.
package transfer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hellouniverse/transfer-service/internal/events"
	"github.com/hellouniverse/transfer-service/internal/ledger"
	"github.com/shopspring/decimal"
)

const maxPinAttempts = 3

// RecipientResolver is the directory collaborator. A miss is (_, false, nil).
type RecipientResolver interface {
	Resolve(ctx context.Context, tag string) (name string, ok bool, err error)
}

// PinVerifier is the credential collaborator. The authorizer owns retry
// counting, not the verifier.
type PinVerifier interface {
	Verify(ctx context.Context, secret string) (bool, error)
}

// SettlementLedger receives exactly one record per accepted authorization.
type SettlementLedger interface {
	Append(e ledger.Entry) ledger.Record
}

// Publisher receives lifecycle events. May be nil.
type Publisher interface {
	Publish(eventType string, data any)
}

// Options tune the session timers. Zero values take the defaults: 2s
// success settle, 3s lockout grace, 5s collaborator call timeout.
type Options struct {
	SettleDelay  time.Duration
	LockoutDelay time.Duration
	CallTimeout  time.Duration
}

// Authorizer is the state machine for one authorization session. All
// operations are serialized under one mutex; a collaborator call in flight
// blocks the session, so no interleaved transition can observe partial
// state.
type Authorizer struct {
	directory RecipientResolver
	pins      PinVerifier
	ledger    SettlementLedger
	publisher Publisher

	settleDelay  time.Duration
	lockoutDelay time.Duration
	callTimeout  time.Duration

	mu       sync.Mutex
	state    State
	draft    draft
	attempts int
	lastErr  *Error

	// gen invalidates scheduled teardowns: a timer captured with an older
	// generation must not touch a newer session.
	gen   uint64
	timer *time.Timer
}

func New(directory RecipientResolver, pins PinVerifier, led SettlementLedger, publisher Publisher, opts Options) *Authorizer {
	if opts.SettleDelay == 0 {
		opts.SettleDelay = 2 * time.Second
	}
	if opts.LockoutDelay == 0 {
		opts.LockoutDelay = 3 * time.Second
	}
	if opts.CallTimeout == 0 {
		opts.CallTimeout = 5 * time.Second
	}
	return &Authorizer{
		directory:    directory,
		pins:         pins,
		ledger:       led,
		publisher:    publisher,
		settleDelay:  opts.SettleDelay,
		lockoutDelay: opts.LockoutDelay,
		callTimeout:  opts.CallTimeout,
		state:        StateIdle,
	}
}

// Start begins a fresh session, aborting any active one. Pending teardown
// timers are cancelled; a committed record from a prior success stays
// committed.
func (a *Authorizer) Start() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
	a.state = StateForm
	return a.snapshotLocked()
}

// Cancel discards the draft and attempt state and returns to idle. Valid
// from any state.
func (a *Authorizer) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
}

// ResolveRecipient looks the tag up in the directory. Resolution is a
// sub-step within form: neither success nor failure transitions state.
func (a *Authorizer) ResolveRecipient(ctx context.Context, tag string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateForm {
		return errInvalidState("recipient can only be resolved on the form step")
	}

	a.draft.payTag = tag
	a.draft.recipientName = ""
	if !strings.HasPrefix(tag, "@") {
		return a.failLocked(&Error{Code: CodeInvalidFormat, Message: "PayTag must start with @"})
	}

	ctx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()
	name, ok, err := a.directory.Resolve(ctx, strings.ToLower(tag))
	if err != nil {
		return a.failLocked(&Error{Code: CodeDirectoryUnavailable, Message: "Recipient lookup is unavailable, try again"})
	}
	if !ok {
		return a.failLocked(&Error{Code: CodeRecipientNotFound, Message: "User not found"})
	}

	a.draft.recipientName = name
	a.lastErr = nil
	return nil
}

// SetAmount records the raw amount input. Parsing happens on
// AdvanceToConfirm so that a half-typed value never crashes the session.
func (a *Authorizer) SetAmount(raw string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateForm {
		return errInvalidState("amount can only be set on the form step")
	}
	a.draft.rawAmount = raw
	a.draft.amount = decimal.Decimal{} // unlock any previously validated amount
	return nil
}

func (a *Authorizer) SetMemo(text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateForm {
		return errInvalidState("memo can only be set on the form step")
	}
	a.draft.memo = text
	return nil
}

// AdvanceToConfirm validates the draft against the available balance and
// moves to the confirm step. Any precondition failure keeps the session on
// the form step.
func (a *Authorizer) AdvanceToConfirm(availableBalance decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateForm {
		return errInvalidState("can only advance from the form step")
	}

	if a.draft.recipientName == "" {
		return a.failLocked(&Error{Code: CodeMissingRecipient, Message: "Please find a valid recipient"})
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(a.draft.rawAmount))
	if err != nil || !amount.IsPositive() {
		return a.failLocked(&Error{Code: CodeInvalidAmount, Message: "Please enter a valid amount"})
	}
	if amount.GreaterThan(availableBalance) {
		return a.failLocked(&Error{Code: CodeInsufficientBalance, Message: "Insufficient balance"})
	}

	a.draft.amount = amount
	a.lastErr = nil
	a.state = StateConfirm
	return nil
}

// Confirm locks the reviewed draft in and opens the PIN challenge. The
// attempt counter starts at zero for every challenge.
func (a *Authorizer) Confirm() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateConfirm {
		return errInvalidState("can only confirm from the confirm step")
	}
	a.attempts = 0
	a.lastErr = nil
	a.state = StatePin
	return nil
}

// Back returns from the confirm step to the form with the draft intact.
func (a *Authorizer) Back() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateConfirm {
		return errInvalidState("can only go back from the confirm step")
	}
	a.lastErr = nil
	a.state = StateForm
	return nil
}

// SubmitPin checks the secret with the verifier. Acceptance commits exactly
// one ledger record and enters success; the third rejection locks the draft
// out. Both terminal outcomes schedule a cancellable teardown back to idle.
func (a *Authorizer) SubmitPin(ctx context.Context, secret string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateLockedOut {
		return a.failLocked(lockedOutError())
	}
	if a.state != StatePin {
		return errInvalidState("no PIN challenge is active")
	}

	ctx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()
	accepted, err := a.pins.Verify(ctx, secret)
	if err != nil {
		// Verifier trouble is not a failed attempt.
		return a.failLocked(&Error{Code: CodeVerificationUnavailable, Message: "PIN verification is unavailable, try again"})
	}

	if accepted {
		rec := a.ledger.Append(ledger.Entry{
			Direction:     ledger.DirectionSent,
			Amount:        a.draft.amount,
			RecipientName: a.draft.recipientName,
			RecipientTag:  a.draft.payTag,
			Memo:          a.draft.memo,
			Status:        ledger.StatusCompleted,
		})
		if a.publisher != nil {
			a.publisher.Publish(events.TransferCompleted, events.TransferCompletedEvent{
				TransactionID: rec.ID,
				PayTag:        rec.RecipientTag,
				RecipientName: rec.RecipientName,
				Amount:        rec.Amount,
			})
		}
		a.lastErr = nil
		a.state = StateSuccess
		a.scheduleTeardownLocked(a.settleDelay)
		return nil
	}

	a.attempts++
	if a.attempts >= maxPinAttempts {
		a.state = StateLockedOut
		if a.publisher != nil {
			a.publisher.Publish(events.TransferLockedOut, events.TransferLockedOutEvent{
				PayTag:   a.draft.payTag,
				Attempts: a.attempts,
			})
		}
		a.scheduleTeardownLocked(a.lockoutDelay)
		return a.failLocked(lockedOutError())
	}
	remaining := maxPinAttempts - a.attempts
	return a.failLocked(&Error{
		Code:              CodeIncorrectPin,
		Message:           fmt.Sprintf("Incorrect PIN. %d attempts remaining.", remaining),
		RemainingAttempts: remaining,
	})
}

// Snapshot returns the observable session state.
func (a *Authorizer) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Authorizer) snapshotLocked() Snapshot {
	s := Snapshot{
		State:         a.state,
		PayTag:        a.draft.payTag,
		RecipientName: a.draft.recipientName,
		Amount:        a.draft.rawAmount,
		Memo:          a.draft.memo,
	}
	if !a.draft.amount.IsZero() {
		s.Amount = a.draft.amount.String()
	}
	if a.lastErr != nil {
		errCopy := *a.lastErr
		s.LastError = &errCopy
	}
	return s
}

func (a *Authorizer) failLocked(e *Error) error {
	a.lastErr = e
	return e
}

func lockedOutError() *Error {
	return &Error{Code: CodeLockedOut, Message: "Too many incorrect attempts. Transaction capability temporarily locked."}
}

// resetLocked discards the draft, attempt state, and any pending teardown.
// The generation bump keeps an already-fired timer from resetting the next
// session.
func (a *Authorizer) resetLocked() {
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.draft = draft{}
	a.attempts = 0
	a.lastErr = nil
	a.state = StateIdle
}

func (a *Authorizer) scheduleTeardownLocked(delay time.Duration) {
	gen := a.gen
	a.timer = time.AfterFunc(delay, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.gen != gen {
			return
		}
		a.resetLocked()
	})
}
