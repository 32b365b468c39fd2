// Package account is the surrounding account context that owns the
// available balance. The authorizer only reads the balance for validation;
// the debit happens here, cued by the transfer.completed event.
package account

import (
	"errors"
	"log"
	"sync"

	"github.com/hellouniverse/transfer-service/internal/events"
	"github.com/shopspring/decimal"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

type Account struct {
	mu      sync.Mutex
	balance decimal.Decimal
}

func New(opening decimal.Decimal) *Account {
	return &Account{balance: opening}
}

func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

func (a *Account) Debit(amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if amount.GreaterThan(a.balance) {
		return ErrInsufficientFunds
	}
	a.balance = a.balance.Sub(amount)
	return nil
}

func (a *Account) Credit(amount decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = a.balance.Add(amount)
}

// SubscribeTo debits the account whenever a transfer settles. The
// authorizer validated the amount against the balance before the PIN step,
// so a failed debit indicates a bug and is only logged.
func (a *Account) SubscribeTo(bus *events.Bus) {
	bus.Subscribe(events.TransferCompleted, func(event events.Event) {
		data, ok := event.Data.(events.TransferCompletedEvent)
		if !ok {
			log.Printf("account: unexpected payload for %s event", event.Type)
			return
		}
		if err := a.Debit(data.Amount); err != nil {
			log.Printf("account: debit for transaction %s failed: %v", data.TransactionID, err)
		}
	})
}
