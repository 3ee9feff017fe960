package monitor

import (
	"fmt"
	"maps"
	"slices"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mdouchement/fans"
)

type model struct {
	source  string
	table   table.Model
	reports map[fans.Select]fans.Report
}

func newTUI(source string) *model {
	columns := []table.Column{
		{Title: "Fans", Width: 10},
		{Title: "Connection", Width: 14},
		{Title: "Mode", Width: 18},
		{Title: "Speeds", Width: 20},
		{Title: "Power", Width: 20},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		Foreground(lipgloss.Color("#00afff")).
		BorderForeground(lipgloss.Color("#00afff")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffff")).
		Bold(false)
	t.SetStyles(s)

	return &model{
		source:  source,
		table:   t,
		reports: make(map[fans.Select]fans.Report),
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(msg.Height - 1)
	case fans.Report:
		m.update(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	return m.table.View() + "\n" + m.source
}

func (m *model) update(r fans.Report) {
	m.reports[r.Select] = r
	m.table.SetRows(m.rows())
}

func (m *model) rows() []table.Row {
	rows := make([]table.Row, 0, len(m.reports))
	for _, s := range slices.Sorted(maps.Keys(m.reports)) {
		r := m.reports[s]
		rows = append(rows, table.Row{
			fmt.Sprintf("fan%d", r.Select),
			r.Connection.String(),
			r.Mode.String(),
			fmt.Sprintf("%4d RPM (%3d%%)", r.RPM, r.DutyCycle),
			fmt.Sprintf("%6d mV %5d mA", r.Voltage, r.Current),
		})
	}

	return rows
}
