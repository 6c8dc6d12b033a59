package pledges

import (
	"context"
	"errors"
	"iter"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/stackspledge/internal/constants"
	apperrors "github.com/julianstephens/stackspledge/internal/errors"
	"github.com/julianstephens/stackspledge/internal/ledger"
	"github.com/julianstephens/stackspledge/internal/logger"
	"github.com/julianstephens/stackspledge/internal/models"
)

// IDRange yields the newest n ids of a ledger holding count pledges, from
// count down to max(1, count-n+1). Each call to the returned sequence starts over.
func IDRange(count uint64, n int) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		if count == 0 || n < 1 {
			return
		}
		start := uint64(1)
		if count > uint64(n) {
			start = count - uint64(n) + 1
		}
		for id := count; id >= start; id-- {
			if !yield(id) {
				return
			}
		}
	}
}

// Aggregator rebuilds the newest page of pledges from point reads.
type Aggregator struct {
	reader      ledger.Reader
	concurrency int
}

// NewAggregator reads with at most concurrency point reads in flight (minimum 1).
func NewAggregator(reader ledger.Reader, concurrency int) *Aggregator {
	if concurrency < 1 {
		concurrency = constants.DefaultConcurrency
	}
	return &Aggregator{reader: reader, concurrency: concurrency}
}

// Fetch returns up to n pledges in strictly descending id order. Ids the ledger
// reports as absent are skipped, and a failed point read is logged and treated
// the same way. A failed count query returns an empty result and the error.
func (a *Aggregator) Fetch(ctx context.Context, n int) ([]models.Pledge, error) {
	if n < 1 {
		n = constants.DefaultPageSize
	}

	count, err := a.reader.GetPledgeCount(ctx)
	if err != nil {
		logger.Error("Failed to fetch pledge count", "error", err)
		return []models.Pledge{}, apperrors.Remote(ledger.FnGetPledgeCount, err)
	}

	span := n
	if count < uint64(n) {
		span = int(count)
	}
	slots := make([]*models.Pledge, span)

	g := new(errgroup.Group)
	g.SetLimit(a.concurrency)

	i := 0
	for id := range IDRange(count, n) {
		slot := i
		g.Go(func() error {
			p, err := a.reader.GetPledge(ctx, id)
			switch {
			case errors.Is(err, apperrors.ErrNotFound):
				logger.Debug("Pledge id is a hole", "id", id)
			case err != nil:
				logger.Warn("Failed to fetch pledge", "id", id, "error", err)
			default:
				slots[slot] = p
			}
			return nil
		})
		i++
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return []models.Pledge{}, err
	}

	out := make([]models.Pledge, 0, span)
	for _, p := range slots {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}
