package stats

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/stackspledge/internal/models"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(20)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			MarginTop(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

var feeActions = []models.Action{models.ActionCreate, models.ActionVouch, models.ActionComplete}

type Model struct {
	viewport viewport.Model
	stats    models.Stats
	user     *models.UserStats
	pending  []models.Transaction
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetStats replaces the figures. user is nil while no wallet is connected.
func (m *Model) SetStats(s models.Stats, user *models.UserStats) {
	m.stats = s
	m.user = user
	m.Render()
}

func (m *Model) SetPending(txs []models.Transaction) {
	m.pending = txs
	m.Render()
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

func (m *Model) Render() {
	var b strings.Builder

	b.WriteString(headingStyle.Render("Board") + "\n")
	b.WriteString(row("Total pledges", fmt.Sprint(m.stats.Total)))
	b.WriteString(row("Vouches", fmt.Sprint(m.stats.Vouches)))
	b.WriteString(row("Completed", fmt.Sprint(m.stats.Completed)))
	b.WriteString(row("Active", fmt.Sprint(m.stats.Active)))

	b.WriteString(headingStyle.Render("You") + "\n")
	if m.user == nil {
		b.WriteString(mutedStyle.Render("Connect a wallet to see your activity.") + "\n")
	} else {
		b.WriteString(row("Pledges created", fmt.Sprint(m.user.PledgesCreated)))
		b.WriteString(row("Pledges completed", fmt.Sprint(m.user.PledgesCompleted)))
		b.WriteString(row("Vouches received", fmt.Sprint(m.user.VouchesReceived)))
		b.WriteString(row("Fees paid", models.FormatSTX(m.user.TotalFeesPaid)+" STX"))
	}

	b.WriteString(headingStyle.Render("Fees") + "\n")
	for _, a := range feeActions {
		b.WriteString(row(string(a), fmt.Sprintf("%s STX + %s STX network",
			models.FormatSTX(a.ContractFee()), models.FormatSTX(a.TxFee()))))
	}

	if len(m.pending) > 0 {
		b.WriteString(headingStyle.Render("Pending transactions") + "\n")
		for _, tx := range m.pending {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("%s  %s #%d", models.TruncateAddress(tx.TxID, 8), tx.Action, tx.PledgeID)) + "\n")
		}
	}

	m.viewport.SetContent(b.String())
}
