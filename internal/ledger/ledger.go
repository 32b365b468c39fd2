// Package ledger holds the session's append-only log of settled transfers.
// Records are immutable once appended; ordering is most recent first.
package ledger

import (
	"iter"
	"sync"
	"time"

	"github.com/hellouniverse/transfer-service/internal/utils"
	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

// Entry is the caller-supplied portion of a record. The ledger assigns the
// ID and timestamp on append.
type Entry struct {
	Direction     Direction
	Amount        decimal.Decimal
	RecipientName string
	RecipientTag  string
	Memo          string
	Status        Status
}

// Record is a settled transfer. Never mutated after Append returns it.
type Record struct {
	ID            string          `json:"id"`
	Direction     Direction       `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	RecipientName string          `json:"recipientName"`
	RecipientTag  string          `json:"payTag"`
	Memo          string          `json:"memo,omitempty"`
	CreatedAt     time.Time       `json:"createdTimestamp"`
	Status        Status          `json:"status"`
}

// Ledger is safe for concurrent use: appends are serialized, and readers
// iterate over a snapshot so a partial record is never visible.
type Ledger struct {
	mu      sync.RWMutex
	records []Record // insertion order; iterated newest first
	ids     map[string]struct{}
}

func New() *Ledger {
	return &Ledger{ids: make(map[string]struct{})}
}

// Append stores the entry as an immutable record and returns it. The
// assigned ID is unique within the ledger even under rapid successive
// appends; the crypto/rand source does not depend on clock resolution.
func (l *Ledger) Append(e Entry) Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := utils.GenerateID("txn")
	for {
		if _, dup := l.ids[id]; !dup {
			break
		}
		id = utils.GenerateID("txn")
	}

	rec := Record{
		ID:            id,
		Direction:     e.Direction,
		Amount:        e.Amount,
		RecipientName: e.RecipientName,
		RecipientTag:  e.RecipientTag,
		Memo:          e.Memo,
		CreatedAt:     time.Now().UTC(),
		Status:        e.Status,
	}
	l.ids[id] = struct{}{}
	l.records = append(l.records, rec)
	return rec
}

// Recent returns a lazy, restartable sequence of at most n records, most
// recent first. n larger than the ledger yields everything; n <= 0 yields
// nothing. Each restart re-snapshots the ledger.
func (l *Ledger) Recent(n int) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		snap := l.snapshot()
		count := n
		if count > len(snap) {
			count = len(snap)
		}
		for i := 0; i < count; i++ {
			if !yield(snap[len(snap)-1-i]) {
				return
			}
		}
	}
}

// All returns the full sequence, most recent first.
func (l *Ledger) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		snap := l.snapshot()
		for i := len(snap) - 1; i >= 0; i-- {
			if !yield(snap[i]) {
				return
			}
		}
	}
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

func (l *Ledger) snapshot() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snap := make([]Record, len(l.records))
	copy(snap, l.records)
	return snap
}
