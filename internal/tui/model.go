package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/stackspledge/internal/constants"
	"github.com/julianstephens/stackspledge/internal/ledger"
	"github.com/julianstephens/stackspledge/internal/models"
	"github.com/julianstephens/stackspledge/internal/pledges"
	"github.com/julianstephens/stackspledge/internal/session"
	"github.com/julianstephens/stackspledge/internal/tui/components/pledgelist"
	"github.com/julianstephens/stackspledge/internal/tui/components/stats"
)

// Watcher follows submitted transactions until they settle
type Watcher interface {
	Watch(ctx context.Context, txids []string, fn func(ledger.TxEvent) bool) error
}

// TxStore keeps the submitted transactions the board is waiting on
type TxStore interface {
	GetPendingTransactions() ([]models.Transaction, error)
	UpdateTransactionStatus(txid, status string, at time.Time) error
}

type Options struct {
	Service  *pledges.Service
	Sessions *session.Manager
	Balances ledger.BalanceReader
	Watcher  Watcher
	Txs      TxStore
	// Notices must be the notifier the service was built with
	Notices *Notifier
	Network string
	Now     func() time.Time
}

var tabs = []struct {
	title string
	state constants.SessionState
}{
	{"Pledges", constants.StatePledges},
	{"Mine", constants.StateMine},
	{"Stats", constants.StateStats},
}

type Model struct {
	service  *pledges.Service
	sessions *session.Manager
	balances ledger.BalanceReader
	watcher  Watcher
	txs      TxStore
	notices  *Notifier
	network  string
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	spinner       spinner.Model
	allList       pledgelist.Model
	mineList      pledgelist.Model
	statsModel    stats.Model
	form          *huh.Form
	createForm    *CreateFormModel
	connectForm   *ConnectFormModel
	confirmForm   *ConfirmFormModel
	completeID    uint64
	watching      map[string]bool
	notice        *Notice
	balance       int64
	hasBalance    bool
	loading       bool
	quitting      bool
	width         int
	height        int
}

func NewModel(opts Options) Model {
	if opts.Notices == nil {
		opts.Notices = NewNotifier()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		service:    opts.Service,
		sessions:   opts.Sessions,
		balances:   opts.Balances,
		watcher:    opts.Watcher,
		txs:        opts.Txs,
		notices:    opts.Notices,
		network:    opts.Network,
		now:        opts.Now,
		ctx:        ctx,
		cancel:     cancel,
		state:      constants.StatePledges,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		spinner:    sp,
		allList:    pledgelist.New("Pledges", "No pledges yet. Press 'n' to make the first one.", 0, 0),
		mineList:   pledgelist.New("Mine", "You have no pledges. Press 'n' to make one.", 0, 0),
		statsModel: stats.New(0, 0),
		watching:   make(map[string]bool),
		loading:    true,
	}
	m.syncViews()
	return m
}

func (m Model) session() models.Session {
	if m.sessions == nil {
		return models.Session{}
	}
	return m.sessions.Current()
}

// syncViews rebuilds the lists and stats from the cached collection
func (m *Model) syncViews() {
	address := m.session().Address
	col := m.service.Collection()

	m.allList.SetPledges(col.Snapshot(), address)
	m.mineList.SetPledges(col.ByCreator(address), address)

	var user *models.UserStats
	if address != "" {
		us := col.UserStats(address)
		user = &us
	}
	m.statsModel.SetStats(col.Stats(), user)
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	switch m.state {
	case constants.StatePledges:
		keys = append(keys, m.keys.New, m.keys.Vouch)
	case constants.StateMine:
		keys = append(keys, m.keys.New, m.keys.Complete)
	}
	if m.session().Active() {
		keys = append(keys, m.keys.Disconnect)
	} else {
		keys = append(keys, m.keys.Connect)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Enter}
	wallet := []key.Binding{m.keys.Connect, m.keys.Disconnect}

	var actions []key.Binding
	switch m.state {
	case constants.StatePledges:
		actions = []key.Binding{m.keys.New, m.keys.Vouch}
	case constants.StateMine:
		actions = []key.Binding{m.keys.New, m.keys.Complete}
	}

	return [][]key.Binding{global, navigation, actions, wallet}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.refreshCmd(),
		m.balanceCmd(),
		m.pendingCmd(),
		m.notices.wait(),
	)
}
