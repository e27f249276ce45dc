// Package inspector is a terminal console for a live bridged web view. It
// shows the page's bridge traffic and navigation, and sends messages and
// navigation commands back.
package inspector

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-drift/webbridge/pkg/platform"
)

// maxLogLines bounds the log kept in memory.
const maxLogLines = 500

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5A56E0")).Padding(0, 1)
	timeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	kindStyle = map[EventKind]lipgloss.Style{
		EventMessage:    lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		EventNavigation: lipgloss.NewStyle().Foreground(lipgloss.Color("#3C7DD9")),
		EventError:      lipgloss.NewStyle().Foreground(lipgloss.Color("#E84855")),
		EventSent:       lipgloss.NewStyle().Foreground(lipgloss.Color("#F2C14E")),
		EventStatus:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
)

// eventMsg wraps an Event arriving from the feed.
type eventMsg Event

// Model is the Bubble Tea model of the inspector.
type Model struct {
	target platform.WebViewCommands
	feed   *Feed
	title  string

	input textinput.Model
	help  help.Model
	keys  KeyMap

	log    []Event
	width  int
	height int
}

// New returns an inspector driving target and showing events from feed.
func New(title string, target platform.WebViewCommands, feed *Feed) Model {
	input := textinput.New()
	input.Placeholder = "message for the page"
	input.Prompt = "› "
	input.Focus()

	return Model{
		target: target,
		feed:   feed,
		title:  title,
		input:  input,
		help:   help.New(),
		keys:   DefaultKeyMap(),
		width:  80,
		height: 24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent)
}

func (m Model) waitForEvent() tea.Msg {
	return eventMsg(<-m.feed.ch)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case eventMsg:
		m.append(Event(msg))
		return m, m.waitForEvent

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Send):
			m.send()
			return m, nil
		case key.Matches(msg, m.keys.Back):
			m.command("back", m.target.GoBack)
			return m, nil
		case key.Matches(msg, m.keys.Forward):
			m.command("forward", m.target.GoForward)
			return m, nil
		case key.Matches(msg, m.keys.Reload):
			m.command("reload", m.target.Reload)
			return m, nil
		case key.Matches(msg, m.keys.Stop):
			m.command("stop", m.target.StopLoading)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) send() {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return
	}
	if err := m.target.SendToBridge(text); err != nil {
		m.append(Event{Kind: EventError, Text: err.Error()})
		return
	}
	m.append(Event{Kind: EventSent, Text: text})
	m.input.Reset()
}

func (m *Model) command(name string, run func() error) {
	if err := run(); err != nil {
		m.append(Event{Kind: EventError, Text: fmt.Sprintf("%s: %v", name, err)})
		return
	}
	m.append(Event{Kind: EventStatus, Text: name})
}

func (m *Model) append(ev Event) {
	m.log = append(m.log, ev)
	if over := len(m.log) - maxLogLines; over > 0 {
		m.log = append(m.log[:0:0], m.log[over:]...)
	}
}

// Log returns the events shown so far, oldest first.
func (m Model) Log() []Event {
	return m.log
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	// Title, blank line, input and help take five rows.
	rows := max(m.height-5, 1)
	start := max(len(m.log)-rows, 0)
	for _, ev := range m.log[start:] {
		stamp := ""
		if !ev.Time.IsZero() {
			stamp = timeStyle.Render(ev.Time.Format("15:04:05")) + " "
		}
		kind := kindStyle[ev.Kind].Render(fmt.Sprintf("%-4s", ev.Kind))
		b.WriteString(stamp + kind + " " + ev.Text + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
