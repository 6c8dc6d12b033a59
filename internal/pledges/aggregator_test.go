package pledges

import (
	"context"
	"errors"
	"slices"
	"testing"

	apperrors "github.com/julianstephens/stackspledge/internal/errors"
	"github.com/julianstephens/stackspledge/internal/ledger/ledgertest"
	"github.com/julianstephens/stackspledge/internal/models"
)

func seedLedger(t *testing.T, count int) *ledgertest.Fake {
	t.Helper()
	fake := ledgertest.New()
	for i := 0; i < count; i++ {
		fake.Seed("SPCREATOR", "pledge", models.CategoryGeneral)
	}
	return fake
}

func ids(pledges []models.Pledge) []uint64 {
	out := make([]uint64, len(pledges))
	for i, p := range pledges {
		out[i] = p.ID
	}
	return out
}

func TestIDRange(t *testing.T) {
	tests := []struct {
		name     string
		count    uint64
		n        int
		expected []uint64
	}{
		{name: "empty ledger", count: 0, n: 50, expected: nil},
		{name: "fewer than page", count: 3, n: 50, expected: []uint64{3, 2, 1}},
		{name: "exact page", count: 3, n: 3, expected: []uint64{3, 2, 1}},
		{name: "more than page", count: 10, n: 3, expected: []uint64{10, 9, 8}},
		{name: "page of one", count: 7, n: 1, expected: []uint64{7}},
		{name: "zero page", count: 7, n: 0, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Collect(IDRange(tt.count, tt.n))
			if !slices.Equal(got, tt.expected) {
				t.Errorf("IDRange(%d, %d) = %v, want %v", tt.count, tt.n, got, tt.expected)
			}
			// Restartable
			if again := slices.Collect(IDRange(tt.count, tt.n)); !slices.Equal(again, got) {
				t.Errorf("second pass = %v, want %v", again, got)
			}
		})
	}
}

func TestAggregator_EmptyLedger(t *testing.T) {
	fake := seedLedger(t, 0)
	got, err := NewAggregator(fake, 1).Fetch(context.Background(), 50)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Fetch() = %v, want empty", ids(got))
	}
	if fake.PledgeCalls != 0 {
		t.Errorf("point reads = %d, want 0", fake.PledgeCalls)
	}
}

func TestAggregator_ThreePledges(t *testing.T) {
	fake := seedLedger(t, 3)
	got, err := NewAggregator(fake, 1).Fetch(context.Background(), 50)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if want := []uint64{3, 2, 1}; !slices.Equal(ids(got), want) {
		t.Errorf("Fetch() = %v, want %v", ids(got), want)
	}
}

func TestAggregator_BoundsAndOrder(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		for count := 0; count <= 12; count++ {
			for n := 1; n <= 14; n += 3 {
				fake := seedLedger(t, count)
				// Punch holes at every fourth id
				for id := uint64(4); id <= uint64(count); id += 4 {
					fake.Remove(id)
				}

				got, err := NewAggregator(fake, concurrency).Fetch(context.Background(), n)
				if err != nil {
					t.Fatalf("Fetch(C=%d, N=%d) error = %v", count, n, err)
				}
				if len(got) > n {
					t.Errorf("Fetch(C=%d, N=%d) returned %d records", count, n, len(got))
				}

				lower := 1
				if count-n+1 > 1 {
					lower = count - n + 1
				}
				for i, p := range got {
					if int(p.ID) < lower || int(p.ID) > count {
						t.Errorf("C=%d N=%d: id %d outside [%d, %d]", count, n, p.ID, lower, count)
					}
					if p.ID%4 == 0 {
						t.Errorf("C=%d N=%d: hole %d was returned", count, n, p.ID)
					}
					if i > 0 && got[i-1].ID <= p.ID {
						t.Errorf("C=%d N=%d: not strictly descending %v", count, n, ids(got))
					}
				}
			}
		}
	}
}

func TestAggregator_PointReadFailureIsSkipped(t *testing.T) {
	fake := seedLedger(t, 5)
	fake.PledgeErr[4] = errors.New("connection reset")

	got, err := NewAggregator(fake, 2).Fetch(context.Background(), 50)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if want := []uint64{5, 3, 2, 1}; !slices.Equal(ids(got), want) {
		t.Errorf("Fetch() = %v, want %v", ids(got), want)
	}
	if fake.PledgeCalls != 5 {
		t.Errorf("point reads = %d, want 5 (no abort, no retry)", fake.PledgeCalls)
	}
}

func TestAggregator_CountFailure(t *testing.T) {
	fake := seedLedger(t, 5)
	fake.CountErr = errors.New("gateway timeout")

	got, err := NewAggregator(fake, 1).Fetch(context.Background(), 50)
	if !apperrors.IsRemote(err) {
		t.Fatalf("Fetch() error = %v, want RemoteCallError", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Fetch() = %v, want empty non-nil slice", got)
	}
	if fake.PledgeCalls != 0 {
		t.Errorf("point reads = %d, want 0", fake.PledgeCalls)
	}
}

func TestAggregator_DefaultPageSize(t *testing.T) {
	fake := seedLedger(t, 60)
	got, err := NewAggregator(fake, 0).Fetch(context.Background(), 0)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 50 || got[0].ID != 60 || got[49].ID != 11 {
		t.Errorf("Fetch() returned %d records from %d to %d", len(got), got[0].ID, got[len(got)-1].ID)
	}
}
