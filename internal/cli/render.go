package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/stackspledge/internal/models"
)

var (
	idStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mineStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// RenderPledge formats one pledge as two lines. address marks the viewer's own
// pledges and is optional.
func RenderPledge(p models.Pledge, address string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s %s  %s  %s  %s",
		idStyle.Render(fmt.Sprintf("#%d", p.ID)),
		p.Category.Emoji(),
		string(p.Category),
		dimStyle.Render(models.TruncateAddress(p.Creator, 4)),
		dimStyle.Render(models.FormatTimestamp(p.CreatedAt)),
		pluralize(p.Vouches, "vouch", "vouches"),
	)
	if p.Completed {
		b.WriteString("  " + completedStyle.Render("✓ completed"))
	}
	if p.IsCreator(address) {
		b.WriteString("  " + mineStyle.Render("(yours)"))
	}
	b.WriteString("\n    " + p.Message)
	return b.String()
}

// RenderStats formats the collection counters shown under the list
func RenderStats(s models.Stats) string {
	return fmt.Sprintf("Total: %d  Vouches: %d  Completed: %d  Active: %d",
		s.Total, s.Vouches, s.Completed, s.Active)
}

func pluralize(n uint64, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
