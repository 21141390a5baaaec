package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/craftkit/web-runtime/reload"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	fullStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	styleOnlyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type monitorModel struct {
	srv     *reload.Server
	cfg     *reload.Config
	log     viewport.Model
	lines   []string
	clients int
	err     error
	ready   bool
}

type triggerMsg struct {
	kind reload.Kind
}

type serverErrMsg struct {
	err error
}

type tickMsg time.Time

func newMonitorModel(cfg *reload.Config, srv *reload.Server) *monitorModel {
	return &monitorModel{srv: srv, cfg: cfg}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *monitorModel) Init() tea.Cmd {
	return tick()
}

func (m *monitorModel) appendLine(line string) {
	stamp := time.Now().Format("15:04:05")
	m.lines = append(m.lines, helpStyle.Render(stamp)+" "+line)
	if len(m.lines) > 500 {
		m.lines = m.lines[len(m.lines)-500:]
	}
	if m.ready {
		m.log.SetContent(strings.Join(m.lines, "\n"))
		m.log.GotoBottom()
	}
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.srv.Trigger(reload.KindFull)
		case "s":
			m.srv.Trigger(reload.KindStyle)
		default:
			if m.ready {
				var cmd tea.Cmd
				m.log, cmd = m.log.Update(msg)
				return m, cmd
			}
		}

	case tea.WindowSizeMsg:
		headerHeight := 4
		footerHeight := 2
		if !m.ready {
			m.log = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
			m.log.SetContent(strings.Join(m.lines, "\n"))
		} else {
			m.log.Width = msg.Width
			m.log.Height = msg.Height - headerHeight - footerHeight
		}

	case triggerMsg:
		if msg.kind == reload.KindStyle {
			m.appendLine(styleOnlyStyle.Render("style reload") +
				fmt.Sprintf(" -> %d client(s)", m.clients))
		} else {
			m.appendLine(fullStyle.Render("full reload") +
				fmt.Sprintf(" -> %d client(s)", m.clients))
		}

	case serverErrMsg:
		m.err = msg.err
		return m, tea.Quit

	case tickMsg:
		if b := m.srv.Broadcaster(); b != nil {
			n := b.ClientCount()
			if n != m.clients {
				if n > m.clients {
					m.appendLine(statusStyle.Render("client connected"))
				} else {
					m.appendLine(statusStyle.Render("client disconnected"))
				}
				m.clients = n
			}
		}
		return m, tick()
	}

	return m, nil
}

func (m *monitorModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("craft-dev"))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(fmt.Sprintf("ws://%s/ws", m.cfg.Addr)))
	b.WriteString(statusStyle.Render(fmt.Sprintf("  clients: %d", m.clients)))
	b.WriteString(statusStyle.Render(fmt.Sprintf("  debounce: %s", m.cfg.Debounce)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("watching " + strings.Join(m.cfg.Roots, ", ")))
	b.WriteString("\n\n")
	if m.ready {
		b.WriteString(m.log.View())
	}
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	}
	b.WriteString(helpStyle.Render("r: reload  s: style reload  up/down: scroll  q: quit"))
	return b.String()
}

func runInteractive(cfg *reload.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := reload.NewServer(cfg, zap.NewNop())
	m := newMonitorModel(cfg, srv)
	p := tea.NewProgram(m, tea.WithAltScreen())

	srv.OnTrigger = func(kind reload.Kind) {
		p.Send(triggerMsg{kind: kind})
	}
	go func() {
		if err := srv.Run(ctx); err != nil && err != context.Canceled {
			p.Send(serverErrMsg{err: err})
		}
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(*monitorModel); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
