package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/stackspledge/internal/constants"
	apperrors "github.com/julianstephens/stackspledge/internal/errors"
	"github.com/julianstephens/stackspledge/internal/logger"
	"github.com/julianstephens/stackspledge/internal/models"
	"github.com/julianstephens/stackspledge/internal/tui/components/pledgelist"
)

// chromeHeight is the rows taken by the header, tabs, notice line and help
const chromeHeight = 7

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		bodyHeight := max(msg.Height-chromeHeight-v, 1)
		m.allList.SetSize(msg.Width-h, bodyHeight)
		m.mineList.SetSize(msg.Width-h, bodyHeight)
		m.statsModel.SetSize(msg.Width-h, bodyHeight)
		return m, nil

	case noticeMsg:
		n := Notice(msg)
		m.notice = &n
		return m, m.notices.wait()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshedMsg:
		m.loading = false
		if msg.err != nil {
			logger.Warn("Refresh failed", "error", msg.err)
		}
		m.syncViews()
		return m, nil

	case balanceMsg:
		if msg.address == m.session().Address {
			m.balance = msg.micro
			m.hasBalance = true
		}
		return m, nil

	case writeDoneMsg:
		m.loading = false
		m.syncViews()
		if msg.err != nil {
			return m, nil
		}
		cmds := []tea.Cmd{m.pendingCmd(), m.balanceCmd()}
		if msg.action == models.ActionCreate {
			m.loading = true
			cmds = append(cmds, m.refreshCmd())
		}
		return m, tea.Batch(cmds...)

	case pendingMsg:
		m.statsModel.SetPending(msg.txs)
		var cmds []tea.Cmd
		for _, tx := range msg.txs {
			if m.watching[tx.TxID] {
				continue
			}
			m.watching[tx.TxID] = true
			cmds = append(cmds, m.watchCmd(tx.TxID))
		}
		return m, tea.Batch(cmds...)

	case txSettledMsg:
		return m, m.handleSettled(msg)

	case pledgelist.NewPledgeMsg:
		return m, m.openCreate()

	case pledgelist.VouchMsg:
		m.loading = true
		return m, m.vouchCmd(msg.ID)

	case pledgelist.CompleteMsg:
		return m, m.openConfirmComplete(msg.ID)
	}

	switch m.state {
	case constants.StateCreate, constants.StateConnect, constants.StateConfirmComplete:
		return m, m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok && !m.filtering() {
		if handled, cmd := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StatePledges:
		m.allList, cmd = m.allList.Update(msg)
	case constants.StateMine:
		m.mineList, cmd = m.mineList.Update(msg)
	case constants.StateStats:
		m.statsModel, cmd = m.statsModel.Update(msg)
	}
	return m, cmd
}

func (m Model) filtering() bool {
	switch m.state {
	case constants.StatePledges:
		return m.allList.Filtering()
	case constants.StateMine:
		return m.mineList.Filtering()
	}
	return false
}

// handleKey runs the board-wide bindings. Unhandled keys fall through to the
// active tab.
func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.cancel()
		return true, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		m.state = nextTab(m.state, 1)
		return true, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.state = nextTab(m.state, -1)
		return true, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return true, nil
	case key.Matches(msg, m.keys.Refresh):
		if m.loading {
			return true, nil
		}
		m.loading = true
		return true, tea.Batch(m.refreshCmd(), m.balanceCmd())
	case key.Matches(msg, m.keys.Connect):
		return true, m.openConnect()
	case key.Matches(msg, m.keys.Disconnect):
		if !m.session().Active() {
			return true, nil
		}
		if err := m.sessions.Disconnect(); err != nil {
			logger.Error("Failed to disconnect", "error", err)
			m.setNotice("Failed to disconnect", true)
			return true, nil
		}
		m.hasBalance = false
		m.setNotice("Wallet disconnected", false)
		m.syncViews()
		return true, nil
	case key.Matches(msg, m.keys.New, m.keys.Vouch, m.keys.Complete):
		if !m.session().Active() {
			m.setNotice(apperrors.Notice(apperrors.ErrUnauthenticated, "")+" (press w)", true)
			return true, nil
		}
		if m.loading && !key.Matches(msg, m.keys.New) {
			return true, nil
		}
	}
	return false, nil
}

func nextTab(current constants.SessionState, step int) constants.SessionState {
	idx := 0
	for i, t := range tabs {
		if t.state == current {
			idx = i
		}
	}
	idx = (idx + step + len(tabs)) % len(tabs)
	return tabs[idx].state
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = &Notice{Text: text, Error: isErr}
}

func (m *Model) openForm(state constants.SessionState, form *huh.Form) tea.Cmd {
	if m.state != constants.StateCreate && m.state != constants.StateConnect && m.state != constants.StateConfirmComplete {
		m.previousState = m.state
	}
	m.state = state
	m.form = form
	return m.form.Init()
}

func (m *Model) openCreate() tea.Cmd {
	m.createForm = &CreateFormModel{Category: models.CategoryGeneral}
	return m.openForm(constants.StateCreate, newCreateForm(m.createForm))
}

func (m *Model) openConnect() tea.Cmd {
	m.connectForm = &ConnectFormModel{WalletType: models.WalletCLI}
	return m.openForm(constants.StateConnect, newConnectForm(m.connectForm, m.network))
}

func (m *Model) openConfirmComplete(id uint64) tea.Cmd {
	p, ok := m.service.Collection().Get(id)
	if !ok {
		m.setNotice(apperrors.Notice(apperrors.ErrNotFound, ""), true)
		return nil
	}
	m.completeID = id
	m.confirmForm = &ConfirmFormModel{}
	return m.openForm(constants.StateConfirmComplete, newConfirmCompleteForm(m.confirmForm, p))
}

func (m *Model) closeForm() {
	m.state = m.previousState
	m.form = nil
}

// updateForm drives whichever form is open and applies it once submitted
func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.closeForm()
		return nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		state := m.state
		m.closeForm()
		cmds = append(cmds, m.submitForm(state))
	case huh.StateAborted:
		m.closeForm()
	}
	return tea.Batch(cmds...)
}

func (m *Model) submitForm(state constants.SessionState) tea.Cmd {
	switch state {
	case constants.StateCreate:
		m.loading = true
		return m.createCmd(m.createForm.Message, m.createForm.Category)

	case constants.StateConnect:
		sess, err := m.sessions.Connect(m.connectForm.Address, m.connectForm.WalletType)
		if err != nil {
			m.setNotice(err.Error(), true)
			return nil
		}
		m.hasBalance = false
		m.setNotice(fmt.Sprintf("Connected as %s", models.TruncateAddress(sess.Address, 4)), false)
		m.syncViews()
		return m.balanceCmd()

	case constants.StateConfirmComplete:
		if !m.confirmForm.Confirmed {
			return nil
		}
		m.loading = true
		return m.completeCmd(m.completeID)
	}
	return nil
}

func (m *Model) handleSettled(msg txSettledMsg) tea.Cmd {
	ev := msg.event
	delete(m.watching, ev.TxID)
	if m.txs != nil {
		if err := m.txs.UpdateTransactionStatus(ev.TxID, ev.Status, m.now()); err != nil {
			logger.Debug("Untracked transaction settled", "txid", ev.TxID, "error", err)
		}
	}
	if ev.Succeeded() {
		m.setNotice(fmt.Sprintf("Transaction %s confirmed", models.TruncateAddress(ev.TxID, 6)), false)
	} else {
		m.setNotice(fmt.Sprintf("Transaction %s failed: %s", models.TruncateAddress(ev.TxID, 6), ev.Status), true)
	}
	m.loading = true
	return tea.Batch(m.refreshCmd(), m.balanceCmd(), m.pendingCmd())
}
