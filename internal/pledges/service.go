package pledges

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julianstephens/stackspledge/internal/constants"
	apperrors "github.com/julianstephens/stackspledge/internal/errors"
	"github.com/julianstephens/stackspledge/internal/ledger"
	"github.com/julianstephens/stackspledge/internal/logger"
	"github.com/julianstephens/stackspledge/internal/models"
)

// Notifier receives the short messages shown to the user after each operation.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// SessionSource reports the current wallet session.
type SessionSource interface {
	Current() models.Session
}

// Tracker records accepted writes so their confirmation can be followed.
type Tracker interface {
	Track(models.Transaction)
}

// Result describes an accepted write.
type Result struct {
	TxID string
}

type Options struct {
	// PageSize is the number of newest pledges a refresh reads
	PageSize int
	// Concurrency bounds the point reads in flight during a refresh
	Concurrency int
	Notifier    Notifier
	Tracker     Tracker
	// Now stamps optimistic completions
	Now func() time.Time
}

// Service runs the user's actions against the ledger and keeps the collection
// patched between refreshes.
type Service struct {
	ledger     ledger.Ledger
	collection *Collection
	aggregator *Aggregator
	sessions   SessionSource
	notify     Notifier
	tracker    Tracker
	pageSize   int
	now        func() time.Time
}

func NewService(l ledger.Ledger, c *Collection, sessions SessionSource, opts Options) *Service {
	if opts.PageSize < 1 {
		opts.PageSize = constants.DefaultPageSize
	}
	if opts.Notifier == nil {
		opts.Notifier = discardNotifier{}
	}
	if opts.Tracker == nil {
		opts.Tracker = discardTracker{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		ledger:     l,
		collection: c,
		aggregator: NewAggregator(l, opts.Concurrency),
		sessions:   sessions,
		notify:     opts.Notifier,
		tracker:    opts.Tracker,
		pageSize:   opts.PageSize,
		now:        opts.Now,
	}
}

func (s *Service) Collection() *Collection {
	return s.collection
}

// Session returns the wallet session writes are submitted with
func (s *Service) Session() models.Session {
	return s.sessions.Current()
}

// Refresh re-reads the newest page from the ledger and applies it. On a count
// failure the collection is emptied and the error is reported.
func (s *Service) Refresh(ctx context.Context) ([]models.Pledge, error) {
	token := s.collection.BeginRefresh()
	fetched, err := s.aggregator.Fetch(ctx, s.pageSize)
	if err != nil {
		if ctx.Err() == nil {
			s.collection.ApplyRefresh(token, nil)
		}
		s.notify.Error("Failed to fetch pledges")
		return s.collection.Snapshot(), err
	}

	if !s.collection.ApplyRefresh(token, fetched) {
		logger.Debug("Discarded stale refresh", "token", token)
	}
	return s.collection.Snapshot(), nil
}

// ValidateMessage applies the client-side bounds to a pledge message.
func ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: message is required", apperrors.ErrInvalidMessage)
	}
	if n := utf8.RuneCountInString(message); n > constants.MaxMessageLength {
		return fmt.Errorf("%w: message is %d characters, the limit is %d", apperrors.ErrInvalidMessage, n, constants.MaxMessageLength)
	}
	return nil
}

func (s *Service) session() (models.Session, error) {
	sess := s.sessions.Current()
	if !sess.Active() {
		return sess, apperrors.ErrUnauthenticated
	}
	return sess, nil
}

func (s *Service) fail(err error, fallback string) error {
	s.notify.Error(apperrors.Notice(err, fallback))
	return err
}

// Create submits a new pledge. The ledger assigns the id, so the collection is
// left alone until the next refresh.
func (s *Service) Create(ctx context.Context, message string, category models.Category) (Result, error) {
	sess, err := s.session()
	if err != nil {
		return Result{}, s.fail(err, "")
	}
	message = strings.TrimSpace(message)
	if err := ValidateMessage(message); err != nil {
		return Result{}, s.fail(err, "")
	}
	category, ok := models.ParseCategory(string(category))
	if !ok {
		return Result{}, s.fail(fmt.Errorf("%w %q, choose one of %s", apperrors.ErrInvalidCategory, category, models.CategoryList()), "")
	}

	txid, err := s.ledger.CreatePledge(ctx, sess.Address, message, category)
	if err != nil {
		logger.Error("Failed to create pledge", "address", sess.Address, "error", err)
		return Result{}, s.fail(apperrors.Remote(ledger.FnCreatePledge, err), "Failed to create pledge")
	}

	s.track(models.ActionCreate, 0, sess.Address, txid)
	logger.Info("Pledge submitted", "address", sess.Address, "txid", txid)
	s.notify.Success("Pledge created! Waiting for confirmation...")
	return Result{TxID: txid}, nil
}

// Vouch checks for a prior vouch, submits one, and adds it to the cached count.
func (s *Service) Vouch(ctx context.Context, id uint64) (Result, error) {
	sess, err := s.session()
	if err != nil {
		return Result{}, s.fail(err, "")
	}

	already, err := s.ledger.HasVouched(ctx, id, sess.Address)
	if err != nil {
		logger.Error("Failed to check vouch status", "id", id, "address", sess.Address, "error", err)
		return Result{}, s.fail(apperrors.Remote(ledger.FnHasVouched, err), "Failed to vouch")
	}
	if already {
		return Result{}, s.fail(apperrors.ErrDuplicateVouch, "")
	}

	txid, err := s.ledger.VouchForPledge(ctx, sess.Address, id)
	if err != nil {
		logger.Error("Failed to vouch", "id", id, "address", sess.Address, "error", err)
		return Result{}, s.fail(apperrors.Remote(ledger.FnVouchForPledge, err), "Failed to vouch")
	}

	s.collection.IncrementVouches(id)
	s.track(models.ActionVouch, id, sess.Address, txid)
	logger.Info("Vouch submitted", "id", id, "address", sess.Address, "txid", txid)
	s.notify.Success("Vouch submitted!")
	return Result{TxID: txid}, nil
}

// Complete submits a completion for a cached pledge owned by the session's address.
func (s *Service) Complete(ctx context.Context, id uint64) (Result, error) {
	sess, err := s.session()
	if err != nil {
		return Result{}, s.fail(err, "")
	}

	cached, ok := s.collection.Get(id)
	if !ok {
		return Result{}, s.fail(apperrors.ErrNotFound, "")
	}
	if cached.Creator != sess.Address {
		return Result{}, s.fail(apperrors.ErrUnauthorized, "")
	}

	submittedAt := s.now()
	txid, err := s.ledger.CompletePledge(ctx, sess.Address, id)
	if err != nil {
		logger.Error("Failed to complete pledge", "id", id, "address", sess.Address, "error", err)
		return Result{}, s.fail(apperrors.Remote(ledger.FnCompletePledge, err), "Failed to complete")
	}

	s.collection.MarkCompleted(id, submittedAt)
	s.track(models.ActionComplete, id, sess.Address, txid)
	logger.Info("Completion submitted", "id", id, "address", sess.Address, "txid", txid)
	s.notify.Success("Pledge completed!")
	return Result{TxID: txid}, nil
}

func (s *Service) track(action models.Action, id uint64, address, txid string) {
	now := s.now()
	s.tracker.Track(models.Transaction{
		TxID:        txid,
		Action:      action,
		PledgeID:    id,
		Address:     address,
		Status:      models.TxPending,
		SubmittedAt: now,
		UpdatedAt:   now,
	})
}

type discardTracker struct{}

func (discardTracker) Track(models.Transaction) {}

type discardNotifier struct{}

func (discardNotifier) Success(string) {}
func (discardNotifier) Error(string)   {}
