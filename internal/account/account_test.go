package account

import (
	"testing"

	"github.com/hellouniverse/transfer-service/internal/events"
	"github.com/shopspring/decimal"
)

func TestDebitAndCredit(t *testing.T) {
	a := New(decimal.RequireFromString("100.00"))

	if err := a.Debit(decimal.RequireFromString("40.00")); err != nil {
		t.Fatalf("unexpected debit error: %v", err)
	}
	if got := a.Balance(); !got.Equal(decimal.RequireFromString("60.00")) {
		t.Errorf("expected balance 60.00, got %s", got)
	}

	a.Credit(decimal.RequireFromString("15.50"))
	if got := a.Balance(); !got.Equal(decimal.RequireFromString("75.50")) {
		t.Errorf("expected balance 75.50, got %s", got)
	}
}

func TestDebitBeyondBalanceFails(t *testing.T) {
	a := New(decimal.RequireFromString("10.00"))
	if err := a.Debit(decimal.RequireFromString("10.01")); err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if got := a.Balance(); !got.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("failed debit must not change the balance, got %s", got)
	}
}

func TestSettlementEventDebitsAccount(t *testing.T) {
	bus := events.NewBus()
	a := New(decimal.RequireFromString("15750.50"))
	a.SubscribeTo(bus)

	bus.Publish(events.TransferCompleted, events.TransferCompletedEvent{
		TransactionID: "txn-abc",
		PayTag:        "@sarah_j",
		RecipientName: "Sarah Johnson",
		Amount:        decimal.RequireFromString("1250.00"),
	})

	if got := a.Balance(); !got.Equal(decimal.RequireFromString("14500.50")) {
		t.Errorf("expected balance 14500.50 after settlement, got %s", got)
	}
}

func TestLockoutEventLeavesBalanceAlone(t *testing.T) {
	bus := events.NewBus()
	a := New(decimal.RequireFromString("100.00"))
	a.SubscribeTo(bus)

	bus.Publish(events.TransferLockedOut, events.TransferLockedOutEvent{PayTag: "@sarah_j", Attempts: 3})

	if got := a.Balance(); !got.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("lockout must not touch the balance, got %s", got)
	}
}
