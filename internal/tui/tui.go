// Package tui provides a terminal front end for the weather panel.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"weather-panel/internal/panel"
	"weather-panel/internal/ui"
	"weather-panel/internal/weather"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// fetchDoneMsg is delivered when a started request has finished.
type fetchDoneMsg struct {
	place string
	err   error
}

type palette struct {
	fg, bg, muted, accent lipgloss.Color
}

var (
	lightPalette = palette{fg: "#1f2933", bg: "#f0f4f8", muted: "#616e7c", accent: "#2680c2"}
	darkPalette  = palette{fg: "#f0f4f8", bg: "#102a43", muted: "#9fb3c8", accent: "#62b0e8"}
)

// Model is the bubbletea model. All weather state lives in the panel; the
// model only translates key presses and renders the current view.
type Model struct {
	panel   *panel.Panel
	timeout time.Duration
	width   int
	height  int
}

func New(p *panel.Panel, timeout time.Duration) Model {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return Model{panel: p, timeout: timeout}
}

// Init starts the startup fetch for the default city.
func (m Model) Init() tea.Cmd {
	req, ok := m.panel.StartInit()
	if !ok {
		return nil
	}
	return m.run(req)
}

func (m Model) run(req *panel.Request) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fetchDoneMsg{place: req.Place(), err: req.Run(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case fetchDoneMsg:
		// the panel already holds the outcome; re-rendering is enough
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	query := m.panel.View().Query
	box := ui.NewSearchBox(query, m.panel.UpdateQuery, func() {
		if req, ok := m.panel.StartSearch(); ok {
			cmd = m.run(req)
		}
	})

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyF1:
		m.panel.SetUnit(weather.Metric)
	case tea.KeyF2:
		m.panel.SetUnit(weather.Imperial)
	case tea.KeyF3:
		m.panel.ToggleTheme()
	case tea.KeyEnter:
		box.Key("enter")
	case tea.KeyBackspace:
		if query != "" {
			runes := []rune(query)
			box.Input(string(runes[:len(runes)-1]))
		}
	case tea.KeyCtrlU:
		box.Input("")
	case tea.KeySpace:
		box.Input(query + " ")
	case tea.KeyRunes:
		box.Input(query + string(msg.Runes))
	}
	return m, cmd
}

func (m Model) View() string {
	view := m.panel.View()
	page := ui.Present(view)
	colors := lightPalette
	if view.Dark {
		colors = darkPalette
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(colors.accent)
	muted := lipgloss.NewStyle().Foreground(colors.muted)

	var b strings.Builder
	b.WriteString(title.Render(page.Title))
	b.WriteString("  ")
	b.WriteString(muted.Render(unitLabel(view.Unit) + " · " + page.Theme))
	b.WriteString("\n\n")
	b.WriteString(ui.NewSearchBox(page.Query, nil, nil).Line(true))
	b.WriteString("\n\n")

	results := strings.TrimRight(ui.Text(page), "\n")
	if results != "" {
		b.WriteString(results)
		b.WriteString("\n\n")
	}
	b.WriteString(muted.Render("F1 metric · F2 imperial · F3 theme · ctrl+u clear · esc quit"))

	frame := lipgloss.NewStyle().
		Foreground(colors.fg).
		Background(colors.bg).
		Padding(1, 2)
	if m.width > 0 {
		frame = frame.Width(m.width)
	}
	if m.height > 0 {
		frame = frame.Height(m.height)
	}
	return frame.Render(b.String())
}

func unitLabel(unit weather.Unit) string {
	return "°" + unit.TemperatureSuffix()
}

// Run shows the panel in the terminal until the user quits or ctx ends.
func Run(ctx context.Context, p *panel.Panel, timeout time.Duration) error {
	program := tea.NewProgram(New(p, timeout), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
