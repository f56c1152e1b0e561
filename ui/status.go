package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/sentence"
)

func stateLabel(s tts.StateType) string {
	switch s {
	case tts.StatePlaying:
		return "▶ " + s.String()
	case tts.StatePaused:
		return "⏸ " + s.String()
	default:
		return "■ " + s.String()
	}
}

// position reports "sentence k/N  paragraph k/N".
func position(snap tts.Snapshot) string {
	if len(snap.Sentences) == 0 {
		return ""
	}
	return fmt.Sprintf("sentence %d/%d  paragraph %d/%d",
		snap.Sentence+1, len(snap.Sentences), snap.Paragraph+1, len(snap.Paragraphs))
}

// note describes the document and voice.
func note(title string, snap tts.Snapshot) string {
	var parts []string
	if title != "" {
		parts = append(parts, title)
	}
	if snap.Text != "" {
		words := len(sentence.WordStarts(snap.Text))
		parts = append(parts, humanize.Comma(int64(words))+" words")
	}
	voice := snap.Preferences.VoiceName
	if voice == "" {
		voice = "default voice"
	}
	parts = append(parts, voice)
	if snap.Preferences.Rate > 0 {
		parts = append(parts, fmt.Sprintf("%.1fx", snap.Preferences.Rate))
	}
	return strings.Join(parts, " · ")
}

func statusBar(title string, snap tts.Snapshot, width int) string {
	state := stateStyles[snap.State.String()].Render(stateLabel(snap.State))
	pos := ""
	if p := position(snap); p != "" {
		pos = positionStyle.Render(p)
	}

	if ansi.PrintableRuneWidth(state)+ansi.PrintableRuneWidth(pos) > width {
		pos = ""
	}
	avail := max(0, width-ansi.PrintableRuneWidth(state)-ansi.PrintableRuneWidth(pos))
	n := truncate.StringWithTail(" "+note(title, snap)+" ", uint(avail), ellipsis) //nolint:gosec
	padding := strings.Repeat(" ", max(0, avail-runewidth.StringWidth(n)))

	return state + statusBarStyle.Render(n+padding) + pos
}
