// internal/cli/viewer.go
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/benchviolin/internal/report"
)

// viewState represents the current screen of the viewer.
type viewState int

const (
	// viewSessions lists the sessions of the export.
	viewSessions viewState = iota
	// viewCases shows the case table of the selected session.
	viewCases
	// viewSamples shows the per-epoch samples of the selected case.
	viewSamples
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	headerStyle = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// model is the Bubble Tea model of the results viewer.
type model struct {
	export report.Export
	state  viewState

	sessionList list.Model
	caseTable   table.Model
	viewport    viewport.Model

	// Index of the session shown in viewCases and viewSamples.
	session int
	// Index of the case shown in viewSamples.
	caseIdx int

	width, height int
}

// item is a session entry in the list.
type item struct {
	title string
	desc  string
	// Position of the session in the export.
	index int
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

func newModel(e report.Export) *model {
	items := make([]list.Item, len(e.Sessions))
	for i, s := range e.Sessions {
		items[i] = item{title: s.Config.Title, desc: sessionDescription(s), index: i}
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Benchmark sessions"
	if !e.GeneratedAt.IsZero() {
		l.Title += " (" + e.GeneratedAt.Format(time.DateTime) + ")"
	}

	t := table.New(table.WithColumns(caseColumns(false)), table.WithFocused(true), table.WithHeight(10))
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return &model{
		export:      e,
		state:       viewSessions,
		sessionList: l,
		caseTable:   t,
		viewport:    viewport.New(80, 10),
	}
}

func sessionDescription(s report.SessionExport) string {
	mode := "absolute"
	if s.Config.Relative {
		mode = "relative"
	}
	return fmt.Sprintf("%d cases, %d epochs, %s, per %s", len(s.Cases), s.Config.Epochs, mode, s.Config.Unit)
}

func caseColumns(relative bool) []table.Column {
	cols := []table.Column{}
	if relative {
		cols = append(cols, table.Column{Title: "relative", Width: 10})
	}
	return append(cols,
		table.Column{Title: "median ns", Width: 14},
		table.Column{Title: "err%", Width: 8},
		table.Column{Title: "epochs", Width: 7},
		table.Column{Title: "benchmark", Width: 30},
	)
}

func caseRows(s report.SessionExport) []table.Row {
	rows := make([]table.Row, 0, len(s.Cases))
	for _, c := range s.Cases {
		var row table.Row
		if s.Config.Relative {
			row = append(row, formatOptional(c.Ratio, 100, "%.1f%%"))
		}
		row = append(row,
			formatOptional(c.Median, 1e9, "%.2f"),
			formatOptional(c.PercentageError, 100, "%.2f%%"),
			fmt.Sprint(len(c.Samples)),
			c.Name,
		)
		rows = append(rows, row)
	}
	return rows
}

func formatOptional(v *float64, scale float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v*scale)
}

// sampleText lists every epoch of c.
func sampleText(c report.CaseExport, unit string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %14s %14s %14s\n", "epoch", "iterations", "elapsed", "ns/"+unit)
	for i, s := range c.Samples {
		perUnit := 0.0
		if i < len(c.Elapsed) {
			perUnit = c.Elapsed[i] * 1e9
		}
		fmt.Fprintf(&b, "%-6d %14d %14s %14.2f\n", i, s.Iterations, s.Elapsed, perUnit)
	}
	if len(c.Counters) > 0 {
		b.WriteString("\ncounters per " + unit + " (instructions, branch misses, cache misses)\n")
		for i, ctr := range c.Counters {
			fmt.Fprintf(&b, "%-6d %14.2f %14.4f %14.4f\n", i, ctr.Instructions, ctr.BranchMisses, ctr.CacheMisses)
		}
	}
	return b.String()
}

// Init implements tea.Model.
func (m *model) Init() tea.Cmd { return nil }

// Update handles key presses and window resizes.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering() && msg.String() != "ctrl+c" {
			// Keys edit the filter until it is applied.
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc", "backspace":
			if m.state > viewSessions {
				m.state--
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.sessionList.SetSize(msg.Width-4, msg.Height-2)
		m.caseTable.SetWidth(msg.Width - 2)
		m.caseTable.SetHeight(max(msg.Height-6, 3))
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 3)
		return m, nil
	}

	switch m.state {
	case viewSessions:
		wasFiltering := m.filtering()
		m.sessionList, cmd = m.sessionList.Update(msg)
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" && !wasFiltering {
			if it, ok := m.sessionList.SelectedItem().(item); ok {
				m.openSession(it.index)
			}
		}

	case viewCases:
		m.caseTable, cmd = m.caseTable.Update(msg)
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
			m.openCase(m.caseTable.Cursor())
		}

	case viewSamples:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m *model) filtering() bool {
	return m.state == viewSessions && m.sessionList.FilterState() == list.Filtering
}

func (m *model) openSession(i int) {
	if i < 0 || i >= len(m.export.Sessions) {
		return
	}
	s := m.export.Sessions[i]
	m.session = i
	// Rows must be cleared before the column count changes.
	m.caseTable.SetRows(nil)
	m.caseTable.SetColumns(caseColumns(s.Config.Relative))
	m.caseTable.SetRows(caseRows(s))
	m.caseTable.SetCursor(0)
	m.state = viewCases
}

func (m *model) openCase(i int) {
	cases := m.export.Sessions[m.session].Cases
	if i < 0 || i >= len(cases) {
		return
	}
	m.caseIdx = i
	m.viewport.SetContent(sampleText(cases[i], m.export.Sessions[m.session].Config.Unit))
	m.viewport.GotoTop()
	m.state = viewSamples
}

// View renders the current screen.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.state {
	case viewSessions:
		return lipgloss.NewStyle().Margin(1, 2).Render(m.sessionList.View())

	case viewCases:
		s := m.export.Sessions[m.session]
		var b strings.Builder
		b.WriteString(titleStyle.Render(s.Config.Title))
		if m.export.Host.CPUModel != "" {
			b.WriteString(helpStyle.Render("  " + m.export.Host.String()))
		}
		b.WriteString("\n\n" + m.caseTable.View() + "\n")
		b.WriteString(helpStyle.Render(" enter: samples, esc: sessions, q: quit"))
		return b.String()

	case viewSamples:
		s := m.export.Sessions[m.session]
		c := s.Cases[m.caseIdx]
		status := lipgloss.JoinHorizontal(lipgloss.Top,
			headerStyle.Render("Session: "+s.Config.Title),
			headerStyle.MarginLeft(1).Render("Case: "+c.Name),
		)
		return status + helpStyle.Render(" (esc to go back, q to quit)") + "\n\n" + m.viewport.View()

	default:
		return "Unknown state"
	}
}

// LoadExport reads a JSON export written by `benchviolin run --json`.
func LoadExport(path string) (report.Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return report.Export{}, fmt.Errorf("could not open results file: %w", err)
	}
	defer f.Close()
	return report.ReadJSON(f)
}

// StartViewer opens the results file at path and runs the interactive
// viewer until the user quits.
func StartViewer(path string) error {
	e, err := LoadExport(path)
	if err != nil {
		return err
	}
	if len(e.Sessions) == 0 {
		return fmt.Errorf("%s contains no sessions", path)
	}
	p := tea.NewProgram(newModel(e), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
