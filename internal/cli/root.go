package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/stackspledge/internal/config"
	"github.com/julianstephens/stackspledge/internal/keyring"
	"github.com/julianstephens/stackspledge/internal/ledger"
	"github.com/julianstephens/stackspledge/internal/logger"
	"github.com/julianstephens/stackspledge/internal/models"
	"github.com/julianstephens/stackspledge/internal/pledges"
	"github.com/julianstephens/stackspledge/internal/session"
	"github.com/julianstephens/stackspledge/internal/storage"
)

// TxWatcher follows submitted transactions until they settle
type TxWatcher interface {
	Watch(ctx context.Context, txids []string, fn func(ledger.TxEvent) bool) error
}

type Context struct {
	Store  storage.Provider
	Config config.Config
	Out    io.Writer
	Err    io.Writer

	Ledger   ledger.Ledger
	Balances ledger.BalanceReader
	Watcher  TxWatcher
	Now      func() time.Time
	// Notify overrides the console notifier, as the TUI does
	Notify pledges.Notifier

	sessions *session.Manager
}

// NewContext wires the gateway client from cfg. A missing API key is fine for
// public gateways, so keyring problems are only logged.
func NewContext(store storage.Provider, cfg config.Config) *Context {
	apiKey, err := keyring.ResolveAPIKey()
	if err != nil {
		logger.Warn("Gateway API key unavailable", "error", err)
	}
	client := ledger.NewClient(cfg, apiKey)
	return &Context{
		Store:    store,
		Config:   cfg,
		Out:      os.Stdout,
		Err:      os.Stderr,
		Ledger:   client,
		Balances: client,
		Watcher:  ledger.NewWatcher(cfg.EventsURL, apiKey),
		Now:      time.Now,
	}
}

// Sessions returns the wallet session manager, loading the persisted session
// on first use. The store must already be loaded.
func (c *Context) Sessions() (*session.Manager, error) {
	if c.sessions != nil {
		return c.sessions, nil
	}
	m, err := session.NewManager(c.Store, c.Config.Network)
	if err != nil {
		return nil, err
	}
	c.sessions = m
	return m, nil
}

// Notifier prints operation outcomes to the console
func (c *Context) Notifier() pledges.Notifier {
	if c.Notify != nil {
		return c.Notify
	}
	return &ConsoleNotifier{Out: c.Out, Err: c.Err}
}

// LoadCollection seeds a collection from the last saved snapshot
func (c *Context) LoadCollection() (*pledges.Collection, storage.Snapshot, error) {
	snap, err := c.Store.LoadSnapshot()
	if err != nil {
		return nil, snap, fmt.Errorf("failed to load cached pledges: %w", err)
	}
	col := pledges.NewCollection()
	col.Replace(snap.Pledges)
	return col, snap, nil
}

// SaveCollection persists the collection as the new snapshot
func (c *Context) SaveCollection(col *pledges.Collection) {
	if err := c.Store.SaveSnapshot(col.Snapshot(), c.now()); err != nil {
		logger.Warn("Failed to save pledge snapshot", "error", err)
	}
}

// NewService builds a pledge service over col for the current session
func (c *Context) NewService(col *pledges.Collection, pageSize int) (*pledges.Service, error) {
	sessions, err := c.Sessions()
	if err != nil {
		return nil, err
	}
	if pageSize < 1 {
		pageSize = c.Config.PageSize
	}
	return pledges.NewService(c.Ledger, col, sessions, pledges.Options{
		PageSize:    pageSize,
		Concurrency: c.Config.ReadConcurrency,
		Notifier:    c.Notifier(),
		Tracker:     StoreTracker{Store: c.Store},
		Now:         c.now,
	}), nil
}

func (c *Context) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// StoreTracker records accepted writes in the transactions table
type StoreTracker struct {
	Store storage.Provider
}

func (t StoreTracker) Track(tx models.Transaction) {
	if err := t.Store.RecordTransaction(tx); err != nil {
		logger.Warn("Failed to record transaction", "txid", tx.TxID, "error", err)
	}
}

// Printf writes to the context's output
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// Println writes a line to the context's output
func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}
