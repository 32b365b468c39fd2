package ledger

import (
	"iter"
	"testing"

	"github.com/shopspring/decimal"
)

func testEntry(memo string) Entry {
	return Entry{
		Direction:     DirectionSent,
		Amount:        decimal.RequireFromString("10.00"),
		RecipientName: "Sarah Johnson",
		RecipientTag:  "@sarah_j",
		Memo:          memo,
		Status:        StatusCompleted,
	}
}

func collect(seq iter.Seq[Record]) []Record {
	var out []Record
	for r := range seq {
		out = append(out, r)
	}
	return out
}

func TestRecentOrderingAndTruncation(t *testing.T) {
	l := New()
	l.Append(testEntry("r1"))
	l.Append(testEntry("r2"))
	l.Append(testEntry("r3"))

	tests := []struct {
		name      string
		n         int
		wantMemos []string
	}{
		{name: "all records newest first", n: 3, wantMemos: []string{"r3", "r2", "r1"}},
		{name: "truncated to n", n: 2, wantMemos: []string{"r3", "r2"}},
		{name: "n beyond size returns all", n: 10, wantMemos: []string{"r3", "r2", "r1"}},
		{name: "zero yields nothing", n: 0, wantMemos: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(l.Recent(tt.n))
			if len(got) != len(tt.wantMemos) {
				t.Fatalf("expected %d records, got %d", len(tt.wantMemos), len(got))
			}
			for i, want := range tt.wantMemos {
				if got[i].Memo != want {
					t.Errorf("position %d: expected %q, got %q", i, want, got[i].Memo)
				}
			}
		})
	}

	if l.Len() != 3 {
		t.Errorf("reads must not mutate the ledger, Len=%d", l.Len())
	}
}

func TestRecentIsRestartable(t *testing.T) {
	l := New()
	l.Append(testEntry("r1"))
	l.Append(testEntry("r2"))

	seq := l.Recent(2)
	first := collect(seq)
	second := collect(seq)
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected both passes to yield 2 records, got %d and %d", len(first), len(second))
	}
	if first[0].ID != second[0].ID {
		t.Error("restarted sequence diverged from the first pass")
	}
}

func TestRecentStopsOnEarlyBreak(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		l.Append(testEntry("x"))
	}
	count := 0
	for range l.Recent(5) {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Fatalf("expected iteration to stop at 2, got %d", count)
	}
}

func TestAllMatchesRecentOverFullSize(t *testing.T) {
	l := New()
	l.Append(testEntry("r1"))
	l.Append(testEntry("r2"))

	all := collect(l.All())
	recent := collect(l.Recent(l.Len()))
	if len(all) != len(recent) {
		t.Fatalf("All and Recent(Len) disagree: %d vs %d", len(all), len(recent))
	}
	for i := range all {
		if all[i].ID != recent[i].ID {
			t.Errorf("position %d: %q vs %q", i, all[i].ID, recent[i].ID)
		}
	}
}

func TestAppendAssignsUniqueIDs(t *testing.T) {
	l := New()
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		rec := l.Append(testEntry("x"))
		if rec.ID == "" {
			t.Fatal("record ID must not be empty")
		}
		if seen[rec.ID] {
			t.Fatalf("duplicate ID %q after %d rapid appends", rec.ID, i+1)
		}
		seen[rec.ID] = true
	}
}

func TestAppendReturnsStoredRecord(t *testing.T) {
	l := New()
	rec := l.Append(testEntry("coffee"))
	if rec.CreatedAt.IsZero() {
		t.Error("expected a timestamp on the stored record")
	}
	if rec.Direction != DirectionSent || rec.Status != StatusCompleted {
		t.Errorf("entry fields not carried over: %+v", rec)
	}

	stored := collect(l.Recent(1))
	if len(stored) != 1 || stored[0].ID != rec.ID {
		t.Fatalf("returned record does not match stored record")
	}
}
