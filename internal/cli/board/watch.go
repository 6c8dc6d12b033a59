package board

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/julianstephens/stackspledge/internal/cli"
	"github.com/julianstephens/stackspledge/internal/ledger"
	"github.com/julianstephens/stackspledge/internal/logger"
)

type WatchCmd struct {
	TxIDs []string `arg:"" optional:"" name:"txid" help:"Transactions to follow (defaults to all pending)."`
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	txids := c.TxIDs
	if len(txids) == 0 {
		pending, err := ctx.Store.GetPendingTransactions()
		if err != nil {
			return err
		}
		for _, tx := range pending {
			txids = append(txids, tx.TxID)
		}
	}
	if len(txids) == 0 {
		ctx.Println("No pending transactions.")
		return nil
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx.Printf("Watching %d transaction(s). Press Ctrl+C to stop.\n", len(txids))
	err := ctx.Watcher.Watch(sigCtx, txids, func(ev ledger.TxEvent) bool {
		ctx.Printf("%s  %s\n", ev.TxID, ev.Status)
		if ev.Final() {
			if err := ctx.Store.UpdateTransactionStatus(ev.TxID, ev.Status, ctx.Now()); err != nil {
				logger.Debug("Untracked transaction settled", "txid", ev.TxID, "error", err)
			}
		}
		return true
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
