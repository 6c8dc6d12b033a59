// Package ledger talks to the pledge contract through a JSON-RPC gateway.
//
// Reads are read-only contract calls. Writes are broadcast by the gateway on
// behalf of the sender address and return a transaction id as soon as the
// transaction is accepted into the mempool, not when it is confirmed.
package ledger

import (
	"context"

	"github.com/julianstephens/stackspledge/internal/models"
)

// Contract function names
const (
	FnCreatePledge   = "create-pledge"
	FnVouchForPledge = "vouch-for-pledge"
	FnCompletePledge = "complete-pledge"
	FnGetPledge      = "get-pledge"
	FnGetPledgeCount = "get-pledge-count"
	FnHasVouched     = "has-vouched"
)

// Reader is the read-only half of the contract surface.
type Reader interface {
	// GetPledgeCount returns the highest assigned pledge id.
	GetPledgeCount(ctx context.Context) (uint64, error)
	// GetPledge returns apperrors.ErrNotFound when the ledger holds no pledge with id.
	GetPledge(ctx context.Context, id uint64) (*models.Pledge, error)
	HasVouched(ctx context.Context, id uint64, voucher string) (bool, error)
}

// Writer submits state-changing contract calls and returns the transaction id.
type Writer interface {
	CreatePledge(ctx context.Context, sender, message string, category models.Category) (string, error)
	VouchForPledge(ctx context.Context, sender string, id uint64) (string, error)
	CompletePledge(ctx context.Context, sender string, id uint64) (string, error)
}

// Ledger is the full contract surface used by the pledge service.
type Ledger interface {
	Reader
	Writer
}

// BalanceReader looks up an account's STX balance in micro-STX.
type BalanceReader interface {
	Balance(ctx context.Context, address string) (int64, error)
}
