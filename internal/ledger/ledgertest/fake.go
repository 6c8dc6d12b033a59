// Package ledgertest provides an in-memory ledger that enforces the pledge
// contract's rules, for tests.
package ledgertest

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	apperrors "github.com/julianstephens/stackspledge/internal/errors"
	"github.com/julianstephens/stackspledge/internal/ledger"
	"github.com/julianstephens/stackspledge/internal/models"
)

type vouchKey struct {
	id      uint64
	voucher string
}

// Fake is a ledger.Ledger backed by memory. Writes apply immediately unless
// Hold is set, in which case they queue until Flush or Drop.
type Fake struct {
	mu sync.Mutex

	pledges  []models.Pledge
	vouched  map[vouchKey]bool
	balances map[string]int64
	height   int64
	txSeq    int
	queued   []func() error

	// Hold queues accepted writes instead of applying them
	Hold bool
	// MaxMessageLength makes create reject longer messages with u104 (0 = no limit)
	MaxMessageLength int
	// Paused makes every write fail with u110
	Paused bool

	// Injected failures
	CountErr      error
	PledgeErr     map[uint64]error
	HasVouchedErr error
	WriteErr      error

	// Call counters
	CountCalls      int
	PledgeCalls     int
	HasVouchedCalls int
	WriteCalls      int
}

func New() *Fake {
	return &Fake{
		vouched:   make(map[vouchKey]bool),
		balances:  make(map[string]int64),
		PledgeErr: make(map[uint64]error),
		height:    100,
	}
}

// Seed appends a pledge as if created by creator, returning its id.
func (f *Fake) Seed(creator, message string, category models.Category) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLocked(creator, message, category)
}

// Remove turns id into a hole so get-pledge returns none.
func (f *Fake) Remove(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id >= 1 && int(id) <= len(f.pledges) {
		f.pledges[id-1].ID = 0
	}
}

// SetBalance sets an account's balance in micro-STX.
func (f *Fake) SetBalance(address string, microSTX int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[address] = microSTX
}

// Pledge returns the ledger's copy of id.
func (f *Fake) Pledge(id uint64) (models.Pledge, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id < 1 || int(id) > len(f.pledges) || f.pledges[id-1].ID == 0 {
		return models.Pledge{}, false
	}
	return f.pledges[id-1], true
}

// Flush applies queued writes in submission order.
func (f *Fake) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, apply := range f.queued {
		_ = apply()
	}
	f.queued = nil
}

// Drop discards queued writes, as if the transactions never confirmed.
func (f *Fake) Drop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued = nil
}

func (f *Fake) addLocked(creator, message string, category models.Category) uint64 {
	f.height++
	id := uint64(len(f.pledges) + 1)
	f.pledges = append(f.pledges, models.Pledge{
		ID:        id,
		Creator:   creator,
		Message:   message,
		Category:  models.Category(category.Truncated()),
		CreatedAt: f.height,
	})
	return id
}

func (f *Fake) GetPledgeCount(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CountCalls++
	if f.CountErr != nil {
		return 0, apperrors.Remote(ledger.FnGetPledgeCount, f.CountErr)
	}
	return uint64(len(f.pledges)), nil
}

func (f *Fake) GetPledge(ctx context.Context, id uint64) (*models.Pledge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PledgeCalls++
	if err := f.PledgeErr[id]; err != nil {
		return nil, apperrors.Remote(ledger.FnGetPledge, err)
	}
	if id < 1 || int(id) > len(f.pledges) || f.pledges[id-1].ID == 0 {
		return nil, apperrors.ErrNotFound
	}
	p := f.pledges[id-1]
	if p.CompletedAt != nil {
		ts := *p.CompletedAt
		p.CompletedAt = &ts
	}
	return &p, nil
}

func (f *Fake) HasVouched(ctx context.Context, id uint64, voucher string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.HasVouchedCalls++
	if f.HasVouchedErr != nil {
		return false, apperrors.Remote(ledger.FnHasVouched, f.HasVouchedErr)
	}
	return f.vouched[vouchKey{id, voucher}], nil
}

func (f *Fake) CreatePledge(ctx context.Context, sender, message string, category models.Category) (string, error) {
	return f.submit(ledger.FnCreatePledge, func() error {
		if f.MaxMessageLength > 0 && utf8.RuneCountInString(message) > f.MaxMessageLength {
			return ledger.ContractErrorFor(ledger.ErrCodeInvalidMessage)
		}
		if message == "" {
			return ledger.ContractErrorFor(ledger.ErrCodeInvalidMessage)
		}
		return nil
	}, func() error {
		f.addLocked(sender, message, category)
		return nil
	})
}

func (f *Fake) VouchForPledge(ctx context.Context, sender string, id uint64) (string, error) {
	check := func() error {
		p, ok := f.lookupLocked(id)
		switch {
		case !ok:
			return ledger.ContractErrorFor(ledger.ErrCodeNotFound)
		case p.Creator == sender:
			return ledger.ContractErrorFor(ledger.ErrCodeSelfVouch)
		case p.Completed:
			return ledger.ContractErrorFor(ledger.ErrCodeAlreadyCompleted)
		case f.vouched[vouchKey{id, sender}]:
			return ledger.ContractErrorFor(ledger.ErrCodeAlreadyVouched)
		}
		return nil
	}
	return f.submit(ledger.FnVouchForPledge, check, func() error {
		if err := check(); err != nil {
			return err
		}
		f.vouched[vouchKey{id, sender}] = true
		f.pledges[id-1].Vouches++
		return nil
	})
}

func (f *Fake) CompletePledge(ctx context.Context, sender string, id uint64) (string, error) {
	check := func() error {
		p, ok := f.lookupLocked(id)
		switch {
		case !ok:
			return ledger.ContractErrorFor(ledger.ErrCodeNotFound)
		case p.Creator != sender:
			return ledger.ContractErrorFor(ledger.ErrCodeUnauthorized)
		case p.Completed:
			return ledger.ContractErrorFor(ledger.ErrCodeAlreadyCompleted)
		}
		return nil
	}
	return f.submit(ledger.FnCompletePledge, check, func() error {
		if err := check(); err != nil {
			return err
		}
		f.height++
		ts := f.height
		f.pledges[id-1].Completed = true
		f.pledges[id-1].CompletedAt = &ts
		return nil
	})
}

func (f *Fake) Balance(ctx context.Context, address string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.balances[address]
	if !ok {
		return 0, apperrors.Remote("balance", fmt.Errorf("unknown account %s", address))
	}
	return n, nil
}

func (f *Fake) lookupLocked(id uint64) (models.Pledge, bool) {
	if id < 1 || int(id) > len(f.pledges) || f.pledges[id-1].ID == 0 {
		return models.Pledge{}, false
	}
	return f.pledges[id-1], true
}

func (f *Fake) submit(op string, check, apply func() error) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.WriteCalls++

	if f.WriteErr != nil {
		return "", apperrors.Remote(op, f.WriteErr)
	}
	if f.Paused {
		return "", apperrors.Remote(op, ledger.ContractErrorFor(ledger.ErrCodeContractPaused))
	}
	if err := check(); err != nil {
		return "", apperrors.Remote(op, err)
	}

	f.txSeq++
	txid := fmt.Sprintf("0x%064x", f.txSeq)
	if f.Hold {
		f.queued = append(f.queued, apply)
	} else if err := apply(); err != nil {
		return "", apperrors.Remote(op, err)
	}
	return txid, nil
}

var _ ledger.Ledger = (*Fake)(nil)
var _ ledger.BalanceReader = (*Fake)(nil)
