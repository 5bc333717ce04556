package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	voicechat "github.com/RockInMyHead/windexs-ai-learn-sub000/core"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/events"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#3C6E71")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFCC00"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4444"))

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9FD8CB"))

	interimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

type transcriptLine struct {
	speaker string
	text    string
}

type model struct {
	engine  *voicechat.Engine
	eventCh <-chan events.Event

	spinner  spinner.Model
	viewport viewport.Model
	ready    bool
	width    int

	phase       voicechat.Phase
	interim     string
	lines       []transcriptLine
	lastError   string
	micMuted    bool
	soundMuted  bool
	sessionFrom time.Time
}

type engineEventMsg struct {
	event events.Event
}

type tickMsg time.Time

func newModel(engine *voicechat.Engine, eventCh <-chan events.Event) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#3C6E71"))

	return model{
		engine:      engine,
		eventCh:     eventCh,
		spinner:     s,
		phase:       voicechat.PhaseListening,
		sessionFrom: time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvents(), tick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "m":
			m.micMuted = !m.micMuted
			m.engine.SetMicEnabled(!m.micMuted)
		case "s":
			m.soundMuted = !m.soundMuted
			m.engine.SetSoundEnabled(!m.soundMuted)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		height := msg.Height - 7
		if height < 3 {
			height = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.refreshViewport()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case engineEventMsg:
		m = m.handleEvent(msg.event)
		cmds = append(cmds, m.listenForEvents())

	case tickMsg:
		cmds = append(cmds, tick())
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleEvent(event events.Event) model {
	switch e := event.(type) {
	case events.SessionPhaseChanged:
		m.phase = voicechat.Phase(e.To)
	case events.UserTranscriptInterim:
		m.interim = e.Transcript
	case events.UserTranscriptFinal:
		m.interim = ""
		m.lines = append(m.lines, transcriptLine{speaker: "user", text: e.Transcript})
		m.refreshViewport()
	case events.AssistantResponseFinal:
		m.lines = append(m.lines, transcriptLine{speaker: "assistant", text: e.Text})
		m.refreshViewport()
	case events.UserBargeIn:
		m.lines = append(m.lines, transcriptLine{speaker: "note", text: "перебивание: " + e.Transcript})
		m.refreshViewport()
	case events.SessionError:
		m.lastError = fmt.Sprintf("%s: %v", e.Category, e.Err)
	}
	return m
}

func (m *model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.viewport.Width - 4
	if width < 10 {
		width = 10
	}

	var b strings.Builder
	for _, line := range m.lines {
		switch line.speaker {
		case "user":
			b.WriteString(userStyle.Render("Ты: "))
			b.WriteString(wordwrap.String(line.text, width))
		case "assistant":
			b.WriteString(assistantStyle.Render("Эма: "))
			b.WriteString(wordwrap.String(line.text, width))
		default:
			b.WriteString(statusStyle.Render(wordwrap.String("· "+line.text, width)))
		}
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Урок русского · голосовой режим"))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")

	if m.ready {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	if m.interim != "" {
		b.WriteString(interimStyle.Render("… " + m.interim))
		b.WriteString("\n")
	}
	if m.lastError != "" {
		b.WriteString(errorStyle.Render("⚠ " + m.lastError))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("m: микрофон  s: звук  q: выход"))
	return b.String()
}

func (m model) renderStatus() string {
	parts := []string{
		statusStyle.Render("Время: " + formatDuration(time.Since(m.sessionFrom))),
	}

	switch m.phase {
	case voicechat.PhaseListening:
		parts = append(parts, activeStyle.Render("Слушаю"))
	case voicechat.PhaseTranscribing, voicechat.PhaseAwaitingResponse:
		parts = append(parts, m.spinner.View()+" "+activeStyle.Render("Думаю"))
	case voicechat.PhaseSpeaking:
		parts = append(parts, activeStyle.Render("Говорю"))
	case voicechat.PhaseError:
		parts = append(parts, errorStyle.Render("Ошибка"))
	default:
		parts = append(parts, statusStyle.Render(string(m.phase)))
	}

	if m.micMuted {
		parts = append(parts, mutedStyle.Render("Микрофон выключен"))
	}
	if m.soundMuted {
		parts = append(parts, mutedStyle.Render("Звук выключен"))
	}

	return strings.Join(parts, "  │  ")
}

func (m model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		return engineEventMsg{event: <-m.eventCh}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", d/time.Minute, (d%time.Minute)/time.Second)
}
