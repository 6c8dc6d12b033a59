package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/stackspledge/internal/constants"
	"github.com/julianstephens/stackspledge/internal/models"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case constants.StatePledges:
		content = docStyle.Render(m.allList.View())
	case constants.StateMine:
		content = docStyle.Render(m.mineList.View())
	case constants.StateStats:
		content = docStyle.Render(m.statsModel.View())
	case constants.StateCreate:
		content = docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.form.View(),
			warningStyle.Render(feeNote(models.ActionCreate)),
		))
	case constants.StateConnect, constants.StateConfirmComplete:
		content = docStyle.Render(m.form.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		m.viewTabs(),
		content,
		m.viewNotice(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	title := "Stacks Pledge"
	if m.network != "" {
		title += " · " + m.network
	}

	sess := m.session()
	var wallet string
	switch {
	case !sess.Active():
		wallet = warningStyle.Render("wallet not connected")
	case m.hasBalance:
		wallet = fmt.Sprintf("%s · %s STX", models.TruncateAddress(sess.Address, 4), models.FormatSTX(m.balance))
	default:
		wallet = models.TruncateAddress(sess.Address, 4)
	}

	status := ""
	if m.loading {
		status = " " + m.spinner.View()
	}
	return headerStyle.Render(title + " · " + wallet + status)
}

func (m Model) viewTabs() string {
	active := m.state
	if !isTab(active) {
		active = m.previousState
	}
	var rendered []string
	for _, t := range tabs {
		if t.state == active {
			rendered = append(rendered, activeTabStyle.Render(t.title))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(t.title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func isTab(s constants.SessionState) bool {
	for _, t := range tabs {
		if t.state == s {
			return true
		}
	}
	return false
}

func (m Model) viewNotice() string {
	if m.notice == nil {
		return ""
	}
	if m.notice.Error {
		return dangerStyle.Render("✗ " + m.notice.Text)
	}
	return successStyle.Render("✓ " + m.notice.Text)
}

func feeNote(a models.Action) string {
	return fmt.Sprintf("Fee: %s STX plus %s STX network fee", models.FormatSTX(a.ContractFee()), models.FormatSTX(a.TxFee()))
}
