package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Iron-Ham/stagehand/internal/event"
	"github.com/Iron-Ham/stagehand/internal/scene"
	"github.com/Iron-Ham/stagehand/internal/util"
)

// DefaultTickInterval is how often the model ticks the host.
const DefaultTickInterval = 50 * time.Millisecond

// recentEvents is how many bus events the status area keeps.
const recentEvents = 4

// Host is what the model drives once per tick.
type Host interface {
	Tick()
	Bus() *event.Bus
	Transition() (scene.Transition, bool)
}

type tickMsg time.Time

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// eventLog keeps the last few formatted bus events.
type eventLog struct {
	lines []string
}

func (l *eventLog) add(e event.Event) {
	l.lines = append(l.lines, event.Format(e))
	if len(l.lines) > recentEvents {
		l.lines = l.lines[len(l.lines)-recentEvents:]
	}
}

// Model is the bubbletea model hosting the stage.
type Model struct {
	host     Host
	stage    *Stage
	interval time.Duration
	bar      progress.Model
	log      *eventLog
	subID    string

	width    int
	height   int
	quitting bool
}

// NewModel creates a model that ticks host every interval and renders stage.
func NewModel(host Host, stage *Stage, interval time.Duration) Model {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	m := Model{
		host:     host,
		stage:    stage,
		interval: interval,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		log:      &eventLog{},
	}
	m.subID = host.Bus().SubscribeAll(m.log.add)
	return m
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tick(m.interval)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, msg.Width/3)
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		m.host.Tick()
		return m, tick(m.interval)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m.quit()
	}
	if top := m.stage.Top(); top != nil && top.HandleKey(key) {
		return m, nil
	}
	if key == "q" {
		return m.quit()
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.host.Bus().Unsubscribe(m.subID)
	return m, tea.Quit
}

// View renders the stage and the status area.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(m.stage.Render())
	sb.WriteString("\n")
	sb.WriteString(StatusBar.Width(max(20, m.width)).Render(m.status()))
	return sb.String()
}

func (m Model) status() string {
	var lines []string
	if tr, ok := m.host.Transition(); ok {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Center,
			Warning.Render(fmt.Sprintf("%s %s ", tr.Kind, tr.Scene)),
			m.bar.ViewAs(tr.Progress),
			Muted.Render(fmt.Sprintf(" %3.0f%%", tr.Progress*100)),
		))
	} else {
		lines = append(lines, Muted.Render("idle"))
	}
	for _, l := range m.log.lines {
		lines = append(lines, util.FitWidth(Muted.Render(l), m.width))
	}
	lines = append(lines, HelpKey.Render("↑/↓")+Muted.Render(" move  ")+
		HelpKey.Render("←/→")+Muted.Render(" adjust  ")+
		HelpKey.Render("enter")+Muted.Render(" select  ")+
		HelpKey.Render("q")+Muted.Render(" quit"))
	return strings.Join(lines, "\n")
}

// Run starts the terminal UI and blocks until the user quits. It refuses to
// start when stdout is not a terminal.
func Run(host Host, stage *Stage, interval time.Duration) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stagehand run requires an interactive terminal")
	}
	p := tea.NewProgram(NewModel(host, stage, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
