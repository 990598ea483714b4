package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	titleStyle    = lipgloss.NewStyle().Bold(true)
)

// noneLabel is the extra entry shown for optional columns.
const noneLabel = "(none)"

// ColumnPickerModel is the bubbletea model for selecting one column
// from a file header.
type ColumnPickerModel struct {
	title    string
	options  []string
	cursor   int
	selected string
}

// NewColumnPickerModel creates a picker over the given column names.
// allowNone appends a "(none)" entry that selects the empty string.
func NewColumnPickerModel(title string, columns []string, allowNone bool) ColumnPickerModel {
	options := make([]string, 0, len(columns)+1)
	options = append(options, columns...)
	if allowNone {
		options = append(options, noneLabel)
	}
	return ColumnPickerModel{
		title:   title,
		options: options,
	}
}

func (m ColumnPickerModel) Init() tea.Cmd {
	return nil
}

func (m ColumnPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter":
			choice := m.options[m.cursor]
			if choice != noneLabel {
				m.selected = choice
			}
			return m, tea.Quit
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ColumnPickerModel) View() string {
	s := titleStyle.Render("? "+m.title) + "\n\n"

	for i, opt := range m.options {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		s += fmt.Sprintf("%s%s\n", cursor, style.Render(opt))
	}

	s += "\n(up/down to navigate, enter to select, q to cancel)\n"
	return s
}

// Selected returns the selected column name, empty for none/cancel.
func (m ColumnPickerModel) Selected() string {
	return m.selected
}

// RunColumnPicker displays the picker and returns the chosen column.
func RunColumnPicker(title string, columns []string, allowNone bool) (string, error) {
	model := NewColumnPickerModel(title, columns, allowNone)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	return finalModel.(ColumnPickerModel).Selected(), nil
}
