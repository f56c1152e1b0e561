package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgnsrekt/readaloud/tts"
)

type sessionChangedMsg tts.Snapshot

// notifier forwards session snapshots to the program in order. Only the
// latest pending snapshot is kept, so a burst of word events never blocks
// the session.
type notifier struct {
	ch chan tts.Snapshot
}

func newNotifier() *notifier {
	return &notifier{ch: make(chan tts.Snapshot, 1)}
}

func (n *notifier) notify(s tts.Snapshot) {
	for {
		select {
		case n.ch <- s:
			return
		default:
			select {
			case <-n.ch:
			default:
			}
		}
	}
}

// forward sends snapshots to p until the channel is closed.
func (n *notifier) forward(p *tea.Program) {
	for s := range n.ch {
		p.Send(sessionChangedMsg(s))
	}
}
