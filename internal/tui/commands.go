package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"stocksage/internal/export"
)

const (
	copiedText       = "✅ Conversation copied to clipboard! You can now paste it anywhere."
	copyFailedText   = "❌ Failed to copy to clipboard. Please try downloading instead."
	nothingToExport  = "Start a conversation to export."
	sharingText      = "Sharing conversation..."
	shareUnavailable = "Sharing is not configured."
	linkCopiedText   = "✅ Share link copied to clipboard!"
	linkFailedText   = "❌ Failed to copy link. Please copy it manually from the status line."
	noShareLink      = "Share the conversation first with /share."
)

var commands = map[string]bool{
	"/quit":   true,
	"/exit":   true,
	"/key":    true,
	"/export": true,
	"/copy":   true,
	"/share":  true,
	"/link":   true,
}

// isCommand reports whether the input names a slash command. Anything else,
// including text that merely starts with a slash, is a question.
func isCommand(text string) bool {
	fields := strings.Fields(text)
	return len(fields) > 0 && commands[fields[0]]
}

func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit

	case "/key":
		if err := m.client.ClearCredential(); err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.lastShareURL = ""
		m.clearStatus()
		m.focusForView()
		m.refreshTranscript()
		return m, nil

	case "/export":
		m.exportTo(args)
		return m, nil

	case "/copy":
		m.copyToClipboard()
		return m, nil

	case "/share":
		return m.share(strings.Join(args, " "))

	case "/link":
		m.copyShareLink()
		return m, nil
	}

	m.setError(fmt.Sprintf("Unknown command %s", name))
	return m, nil
}

func (m *Model) exportTo(args []string) {
	if len(args) == 0 {
		m.setError("Usage: /export json|csv|txt [dir]")
		return
	}
	format, err := export.ParseFormat(args[0])
	if err != nil {
		m.setError(err.Error())
		return
	}
	dir := m.opts.ExportDir
	if len(args) > 1 {
		dir = args[1]
	}

	path, err := export.WriteFile(dir, format, m.client.Messages(), m.opts.Now())
	switch {
	case errors.Is(err, export.ErrNoMessages):
		m.setError(nothingToExport)
	case err != nil:
		m.opts.Logger.Error().Err(err).Str("dir", dir).Msg("export conversation failed")
		m.setError(err.Error())
	default:
		m.setStatus("📥 Exported to " + path)
	}
}

func (m *Model) copyToClipboard() {
	text, err := export.ClipboardText(m.client.Messages(), m.opts.Now())
	if err != nil {
		m.setError(nothingToExport)
		return
	}
	if m.opts.Clipboard == nil {
		m.setError(copyFailedText)
		return
	}
	if err := m.opts.Clipboard(text); err != nil {
		m.opts.Logger.Warn().Err(err).Msg("clipboard write failed")
		m.setError(copyFailedText)
		return
	}
	m.setStatus(copiedText)
}

func (m *Model) copyShareLink() {
	if m.lastShareURL == "" {
		m.setError(noShareLink)
		return
	}
	if m.opts.Clipboard == nil {
		m.setError(linkFailedText)
		return
	}
	if err := m.opts.Clipboard(m.lastShareURL); err != nil {
		m.opts.Logger.Warn().Err(err).Msg("clipboard write failed")
		m.setError(linkFailedText)
		return
	}
	m.setStatus(linkCopiedText)
}

func (m Model) share(title string) (tea.Model, tea.Cmd) {
	messages, err := export.SharedMessages(m.client.Messages())
	if err != nil {
		m.setError("Start a conversation to share.")
		return m, nil
	}
	if m.opts.Sharer == nil {
		m.setError(shareUnavailable)
		return m, nil
	}

	m.setStatus(sharingText)
	sharer := m.opts.Sharer
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), shareTimeout)
		defer cancel()
		resp, err := sharer.Create(ctx, messages, title)
		return shareMsg{resp: resp, err: err}
	}
}
