// Package tui is the terminal front-end of the chat client.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"stocksage/internal/ai"
	"stocksage/internal/chat"
	"stocksage/internal/model"
	"stocksage/internal/shareapi"
)

const (
	loadingText  = "Analyzing market data..."
	shareTimeout = 30 * time.Second
	headerLines  = 2
	footerLines  = 4
)

var quickPrompts = []string{
	"What's your analysis of Apple (AAPL) stock?",
	"What are the key market trends this week?",
	"Explain technical analysis basics",
	"What should I know about dividend investing?",
}

// Sharer publishes a conversation through the share server.
type Sharer interface {
	Create(ctx context.Context, messages []model.SharedMessage, title string) (*shareapi.CreateResponse, error)
}

type Options struct {
	Sharer    Sharer
	Clipboard func(string) error
	ExportDir string
	Logger    zerolog.Logger
	Now       func() time.Time
}

type completionMsg struct {
	reply string
	err   error
}

type shareMsg struct {
	resp *shareapi.CreateResponse
	err  error
}

type Model struct {
	client *chat.Client
	opts   Options

	keyInput   textinput.Model
	chatInput  textinput.Model
	spinner    spinner.Model
	transcript viewport.Model

	lastShareURL string
	status       string
	statusError  bool
	width        int
	height       int
	quitting     bool
}

func NewModel(client *chat.Client, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	ki := textinput.New()
	ki.Placeholder = "Enter your OpenAI API key (sk-...)"
	ki.EchoMode = textinput.EchoPassword
	ki.EchoCharacter = '•'
	ki.CharLimit = 200

	ci := textinput.New()
	ci.Placeholder = "Ask about stocks, market analysis, trading strategies... (Press Enter to send)"
	ci.CharLimit = 4000

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		client:     client,
		opts:       opts,
		keyInput:   ki,
		chatInput:  ci,
		spinner:    sp,
		transcript: viewport.New(100, 20),
		width:      100,
		height:     30,
	}
	m.focusForView()
	m.refreshTranscript()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.transcript.Width = msg.Width
		m.transcript.Height = max(1, msg.Height-headerLines-footerLines)
		m.chatInput.Width = max(10, msg.Width-4)
		m.refreshTranscript()
		return m, nil

	case completionMsg:
		m.client.Finish(msg.reply, msg.err)
		if msg.err != nil {
			m.opts.Logger.Warn().Err(msg.err).Str("kind", ai.KindOf(msg.err).String()).Msg("completion failed")
		}
		m.refreshTranscript()
		return m, nil

	case shareMsg:
		if msg.err != nil {
			m.opts.Logger.Error().Err(msg.err).Msg("share conversation failed")
			m.setError("❌ Failed to share conversation: " + msg.err.Error())
			return m, nil
		}
		m.lastShareURL = msg.resp.ShareURL
		m.setStatus(fmt.Sprintf("🔗 Shared (expires in %s): %s  /link copies it", msg.resp.ExpiresIn, msg.resp.ShareURL))
		return m, nil

	case spinner.TickMsg:
		if !m.client.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.client.View() == chat.ViewCredential {
			return m.updateCredential(msg)
		}
		return m.updateChat(msg)
	}
	return m, nil
}

func (m Model) updateCredential(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.quitting = true
		return m, tea.Quit

	case "enter":
		if err := m.client.SaveCredential(m.keyInput.Value()); err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.keyInput.Reset()
		m.setStatus("API key saved.")
		m.focusForView()
		m.refreshTranscript()
		return m, nil
	}

	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := m.chatInput.Value()
		if isCommand(text) {
			m.chatInput.Reset()
			m.client.SetInput("")
			return m.runCommand(strings.TrimSpace(text))
		}

		turn, ok := m.client.Begin(text)
		if !ok {
			return m, nil
		}
		m.chatInput.Reset()
		m.clearStatus()
		m.refreshTranscript()
		return m, tea.Batch(m.complete(turn), m.spinner.Tick)

	case "f1", "f2", "f3", "f4":
		if len(m.client.Messages()) == 0 {
			prompt := quickPrompts[int(msg.String()[1]-'1')]
			m.chatInput.SetValue(prompt)
			m.chatInput.CursorEnd()
			m.client.SetInput(prompt)
		}
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	m.client.SetInput(m.chatInput.Value())
	return m, cmd
}

// complete runs the completion off the event loop; the result comes back as a
// completionMsg. The request runs until the completer answers.
func (m Model) complete(turn chat.Turn) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		reply, err := client.Complete(context.Background(), turn)
		return completionMsg{reply: reply, err: err}
	}
}

func (m *Model) focusForView() {
	if m.client.View() == chat.ViewCredential {
		m.chatInput.Blur()
		m.keyInput.Focus()
		return
	}
	m.keyInput.Blur()
	m.chatInput.Focus()
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusError = false
}

func (m *Model) setError(text string) {
	m.status = text
	m.statusError = true
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusError = false
}

func (m *Model) refreshTranscript() {
	m.transcript.SetContent(m.renderMessages())
	m.transcript.GotoBottom()
}

func (m Model) renderMessages() string {
	messages := m.client.Messages()
	if len(messages) == 0 {
		var b strings.Builder
		b.WriteString(titleStyle.Render("Welcome to StockSage AI") + "\n")
		b.WriteString("Ask me about stocks, market trends, technical analysis, or investment strategies!\n\n")
		for i, prompt := range quickPrompts {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  F%d  %s", i+1, prompt)) + "\n")
		}
		return b.String()
	}

	width := max(20, m.width-2)
	body := lipgloss.NewStyle().Width(width)
	var b strings.Builder
	for _, msg := range messages {
		header := assistantRoleStyle.Render("StockSage AI")
		if msg.Role == model.RoleUser {
			header = userRoleStyle.Render("You")
		}
		b.WriteString(header + " " + dimStyle.Render(msg.Timestamp.Format("3:04:05 PM")) + "\n")
		b.WriteString(body.Render(msg.Content) + "\n\n")
	}
	return b.String()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.client.View() == chat.ViewCredential {
		return m.viewCredential()
	}
	return m.viewChat()
}

func (m Model) viewCredential() string {
	content := strings.Join([]string{
		titleStyle.Render("📈 StockSage AI"),
		"",
		"Your AI-powered stock market analysis assistant. Enter your OpenAI API key to access professional financial insights and market analysis.",
		"",
		m.keyInput.View(),
		"",
		dimStyle.Render("How to get your API key:"),
		dimStyle.Render("1. Go to https://platform.openai.com/api-keys"),
		dimStyle.Render("2. Sign in or create an OpenAI account"),
		dimStyle.Render("3. Click \"Create new secret key\""),
		dimStyle.Render("4. Copy the key and paste it above"),
		"",
		m.renderStatus(),
		helpStyle.Render("Enter: start stock analysis  Esc: quit"),
	}, "\n")

	box := credentialBoxStyle.Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) viewChat() string {
	count := len(m.client.Messages())
	header := titleStyle.Render("📈 StockSage AI") + subtitleStyle.Render(" - Market Analysis")
	if count > 0 {
		header += dimStyle.Render(fmt.Sprintf("  (%d messages)", count))
	}

	var b strings.Builder
	b.WriteString(header + "\n\n")
	b.WriteString(m.transcript.View() + "\n")
	if m.client.Busy() {
		b.WriteString(m.spinner.View() + " " + dimStyle.Render(loadingText) + "\n")
	} else {
		b.WriteString(m.renderStatus() + "\n")
	}
	b.WriteString(m.chatInput.View() + "\n")
	b.WriteString(helpStyle.Render("Enter: analyze  /export json|csv|txt [dir]  /copy  /share [title]  /link  /key  /quit"))
	return b.String()
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusError {
		return statusErrorStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}

// Status returns the current notification line.
func (m Model) Status() string {
	return m.status
}
