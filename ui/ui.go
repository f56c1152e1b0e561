// Package ui is the terminal reader: keys drive a playback session and the
// sentence being spoken is highlighted as it advances.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/wordwrap"

	"github.com/dgnsrekt/readaloud/tts"
)

const statusBarHeight = 1

// Controller is the part of a playback session the reader drives.
type Controller interface {
	StartReading(text string)
	TogglePause()
	RestartSentence()
	RestartParagraph()
	NextSentence()
	Stop()
	Snapshot() tts.Snapshot
}

// NewProgram builds the reader for raw text and subscribes it to session
// changes. Reading starts when the program starts.
func NewProgram(cfg Config, session *tts.Session, raw string) *tea.Program {
	log.Debug("starting reader", "title", cfg.Title, "high_perf_pager", cfg.HighPerformancePager)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(newModel(cfg, session, raw), opts...)

	n := newNotifier()
	session.OnChange(n.notify)
	go n.forward(p)
	return p
}

type model struct {
	cfg      Config
	ctl      Controller
	raw      string
	keys     keyMap
	help     help.Model
	viewport viewport.Model
	snap     tts.Snapshot
	width    int
	height   int
	ready    bool
}

func newModel(cfg Config, ctl Controller, raw string) model {
	vp := viewport.New(0, 0)
	vp.HighPerformanceRendering = cfg.HighPerformancePager
	return model{
		cfg:      cfg,
		ctl:      ctl,
		raw:      raw,
		keys:     newKeyMap(),
		help:     help.New(),
		viewport: vp,
	}
}

func (m model) Init() tea.Cmd {
	return m.read
}

// read starts reading from the top and reports the resulting state.
func (m model) read() tea.Msg {
	m.ctl.StartReading(m.raw)
	return sessionChangedMsg(m.ctl.Snapshot())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.setSize()
		m.render()

	case sessionChangedMsg:
		// The read command and the notifier both deliver snapshots; keep
		// the newest.
		if msg.Seq < m.snap.Seq {
			break
		}
		m.snap = tts.Snapshot(msg)
		m.render()

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey maps bindings to session commands. Commands return quickly;
// the resulting state arrives as a sessionChangedMsg.
func (m *model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctl.Stop()
		return tea.Quit, true
	case key.Matches(msg, m.keys.TogglePause):
		m.ctl.TogglePause()
	case key.Matches(msg, m.keys.RestartSentence):
		m.ctl.RestartSentence()
	case key.Matches(msg, m.keys.RestartParagraph):
		m.ctl.RestartParagraph()
	case key.Matches(msg, m.keys.NextSentence):
		m.ctl.NextSentence()
	case key.Matches(msg, m.keys.Stop):
		m.ctl.Stop()
	case key.Matches(msg, m.keys.Read):
		return m.read, true
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.setSize()
	default:
		return nil, false
	}
	return nil, true
}

func (m *model) setSize() {
	m.help.Width = m.width
	m.viewport.Width = m.width
	m.viewport.Height = max(0, m.height-statusBarHeight-lipgloss.Height(m.help.View(m.keys)))
}

func (m *model) wrapWidth() int {
	if m.cfg.Width > 0 && m.cfg.Width < m.width {
		return m.cfg.Width
	}
	return max(1, m.width)
}

// render redraws the text and keeps the highlighted sentence in view.
func (m *model) render() {
	if !m.ready {
		return
	}
	width := m.wrapWidth()
	if m.snap.Text == "" {
		m.viewport.SetContent(wordwrap.String(m.raw, width))
		return
	}

	var start, end int
	if m.snap.State != tts.StateStopped && m.snap.Sentence < len(m.snap.Sentences) {
		b := m.snap.Sentences[m.snap.Sentence]
		start, end = b.Start, b.End
	}
	m.viewport.SetContent(wordwrap.String(highlight(m.snap.Text, start, end, highlightStyle(m.cfg.HighlightColor)), width))

	line := strings.Count(wordwrap.String(m.snap.Text[:start], width), "\n")
	if line < m.viewport.YOffset || line >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(max(0, line-m.viewport.Height/3))
	}
}

// highlight styles text[start:end]. Each line is styled on its own so the
// style does not pad lines into a block.
func highlight(text string, start, end int, style lipgloss.Style) string {
	if start >= end || start < 0 || end > len(text) {
		return text
	}
	lines := strings.Split(text[start:end], "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = style.Render(l)
		}
	}
	return text[:start] + strings.Join(lines, "\n") + text[end:]
}

func (m model) View() string {
	if !m.ready {
		return "\n  Loading…"
	}
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")
	fmt.Fprint(&b, statusBar(m.cfg.Title, m.snap, m.width))
	if h := m.help.View(m.keys); h != "" {
		fmt.Fprint(&b, "\n"+h)
	}
	return b.String()
}
