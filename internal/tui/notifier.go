package tui

import tea "github.com/charmbracelet/bubbletea"

const noticeBuffer = 16

// Notice is a message raised by the pledge service
type Notice struct {
	Text  string
	Error bool
}

// Notifier forwards service notifications to the running program. Sends never
// block; when the buffer is full the notice is dropped.
type Notifier struct {
	ch chan Notice
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan Notice, noticeBuffer)}
}

func (n *Notifier) Success(msg string) {
	n.push(Notice{Text: msg})
}

func (n *Notifier) Error(msg string) {
	n.push(Notice{Text: msg, Error: true})
}

func (n *Notifier) push(v Notice) {
	select {
	case n.ch <- v:
	default:
	}
}

type noticeMsg Notice

// wait returns a command that delivers the next notice
func (n *Notifier) wait() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-n.ch)
	}
}
