package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/stackspledge/internal/ledger"
	"github.com/julianstephens/stackspledge/internal/logger"
	"github.com/julianstephens/stackspledge/internal/models"
)

type refreshedMsg struct {
	pledges []models.Pledge
	err     error
}

type balanceMsg struct {
	address string
	micro   int64
}

// writeDoneMsg follows a vouch, completion or creation. The service has
// already raised the notice.
type writeDoneMsg struct {
	action models.Action
	txid   string
	err    error
}

type txSettledMsg struct {
	event ledger.TxEvent
}

type pendingMsg struct {
	txs []models.Transaction
}

func (m Model) refreshCmd() tea.Cmd {
	svc := m.service
	ctx := m.ctx
	return func() tea.Msg {
		pledges, err := svc.Refresh(ctx)
		return refreshedMsg{pledges: pledges, err: err}
	}
}

func (m Model) balanceCmd() tea.Cmd {
	address := m.session().Address
	if address == "" || m.balances == nil {
		return nil
	}
	r := m.balances
	ctx := m.ctx
	return func() tea.Msg {
		return balanceMsg{address: address, micro: ledger.BalanceOrZero(ctx, r, address)}
	}
}

func (m Model) vouchCmd(id uint64) tea.Cmd {
	svc := m.service
	ctx := m.ctx
	return func() tea.Msg {
		res, err := svc.Vouch(ctx, id)
		return writeDoneMsg{action: models.ActionVouch, txid: res.TxID, err: err}
	}
}

func (m Model) completeCmd(id uint64) tea.Cmd {
	svc := m.service
	ctx := m.ctx
	return func() tea.Msg {
		res, err := svc.Complete(ctx, id)
		return writeDoneMsg{action: models.ActionComplete, txid: res.TxID, err: err}
	}
}

func (m Model) createCmd(message string, category models.Category) tea.Cmd {
	svc := m.service
	ctx := m.ctx
	return func() tea.Msg {
		res, err := svc.Create(ctx, message, category)
		return writeDoneMsg{action: models.ActionCreate, txid: res.TxID, err: err}
	}
}

func (m Model) pendingCmd() tea.Cmd {
	if m.txs == nil {
		return nil
	}
	txs := m.txs
	return func() tea.Msg {
		pending, err := txs.GetPendingTransactions()
		if err != nil {
			logger.Warn("Failed to load pending transactions", "error", err)
			return nil
		}
		return pendingMsg{txs: pending}
	}
}

// watchCmd follows one transaction and reports its final status. Watch
// failures are logged; the next manual refresh still reconciles the board.
func (m Model) watchCmd(txid string) tea.Cmd {
	if m.watcher == nil || txid == "" {
		return nil
	}
	w := m.watcher
	ctx := m.ctx
	return func() tea.Msg {
		var settled *ledger.TxEvent
		err := w.Watch(ctx, []string{txid}, func(ev ledger.TxEvent) bool {
			if ev.Final() {
				settled = &ev
				return false
			}
			return true
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Transaction watch failed", "txid", txid, "error", err)
		}
		if settled == nil {
			return nil
		}
		return txSettledMsg{event: *settled}
	}
}
