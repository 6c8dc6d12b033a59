package pledgelist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/stackspledge/internal/models"
)

type NewPledgeMsg struct{}

type VouchMsg struct {
	ID uint64
}

type CompleteMsg struct {
	ID uint64
}

type Item struct {
	Pledge models.Pledge
	// Viewer is the connected address, empty when disconnected
	Viewer string
}

func (i Item) Title() string {
	title := fmt.Sprintf("#%d %s %s", i.Pledge.ID, i.Pledge.Category.Emoji(), i.Pledge.Message)
	if i.Pledge.Completed {
		title = "✓ " + title
	}
	return title
}

func (i Item) Description() string {
	parts := []string{
		string(i.Pledge.Category),
		models.TruncateAddress(i.Pledge.Creator, 4),
		models.FormatTimestamp(i.Pledge.CreatedAt),
		vouchLabel(i.Pledge.Vouches),
	}
	if i.Pledge.IsCreator(i.Viewer) {
		parts = append(parts, "yours")
	}
	return strings.Join(parts, " | ")
}

func (i Item) FilterValue() string {
	return i.Pledge.Message + " " + string(i.Pledge.Category)
}

func vouchLabel(n uint64) string {
	if n == 1 {
		return "1 vouch"
	}
	return fmt.Sprintf("%d vouches", n)
}

type KeyMap struct {
	New      key.Binding
	Vouch    key.Binding
	Complete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new pledge"),
		),
		Vouch: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "vouch"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "complete"),
		),
	}
}

type Model struct {
	list   list.Model
	keys   KeyMap
	viewer string
	empty  string
}

// New builds a list titled title. empty is shown when there is nothing to list.
func New(title, empty string, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.New, keys.Vouch, keys.Complete}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys, empty: empty}
}

// SetPledges replaces the items, keeping the cursor on the same pledge when it
// is still listed.
func (m *Model) SetPledges(pledges []models.Pledge, viewer string) {
	var selected uint64
	if p, ok := m.Selected(); ok {
		selected = p.ID
	}
	m.viewer = viewer

	items := make([]list.Item, len(pledges))
	cursor := 0
	for i, p := range pledges {
		items[i] = Item{Pledge: p, Viewer: viewer}
		if p.ID == selected {
			cursor = i
		}
	}
	m.list.SetItems(items)
	if len(items) > 0 {
		m.list.Select(cursor)
	}
}

// Selected returns the pledge under the cursor
func (m Model) Selected() (models.Pledge, bool) {
	i, ok := m.list.SelectedItem().(Item)
	if !ok {
		return models.Pledge{}, false
	}
	return i.Pledge, true
}

func (m Model) Len() int {
	return len(m.list.Items())
}

// Filtering reports whether the filter input owns the keyboard
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.New):
			return m, func() tea.Msg { return NewPledgeMsg{} }
		case key.Matches(msg, m.keys.Vouch):
			if p, ok := m.Selected(); ok && p.CanVouch(m.viewer) {
				return m, func() tea.Msg { return VouchMsg{ID: p.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Complete):
			if p, ok := m.Selected(); ok && p.CanComplete(m.viewer) {
				return m, func() tea.Msg { return CompleteMsg{ID: p.ID} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  " + m.empty
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
