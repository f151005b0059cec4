// Package tui provides interactive terminal UI components using BubbleTea.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/klauern/ctxsync/internal/model"
)

// SourceChoice is one selectable tool in the source picker.
type SourceChoice struct {
	Tool        model.Tool
	DisplayName string
	// Changed marks tools whose targets drifted since the last sync.
	Changed bool
}

// SourcePickerResult contains the outcome of the picker interaction.
type SourcePickerResult struct {
	// Selected is false when the user quit without choosing.
	Selected bool
	Source   model.Tool
}

// sourcePickerKeyMap defines the key bindings for the source picker.
type sourcePickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

func defaultSourcePickerKeyMap() sourcePickerKeyMap {
	return sourcePickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Styles for the source picker TUI.
var sourcePickerStyles = struct {
	Title    lipgloss.Style
	Help     lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Changed  lipgloss.Style
	Status   lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Item:     lipgloss.NewStyle().Padding(0, 2),
	Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 2),
	Changed:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
}

// SourcePickerModel is the BubbleTea model for choosing the source of truth
// when resolving a conflict manually.
type SourcePickerModel struct {
	choices  []SourceChoice
	cursor   int
	keys     sourcePickerKeyMap
	result   SourcePickerResult
	quitting bool
}

// NewSourcePickerModel creates a picker over the given choices. The cursor
// starts on the first changed tool so the likely source is one keypress away.
func NewSourcePickerModel(choices []SourceChoice) SourcePickerModel {
	m := SourcePickerModel{
		choices: choices,
		keys:    defaultSourcePickerKeyMap(),
	}
	for i, c := range choices {
		if c.Changed {
			m.cursor = i
			break
		}
	}
	return m
}

// Init implements tea.Model.
func (m SourcePickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m SourcePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Select):
		if len(m.choices) == 0 {
			m.quitting = true
			return m, tea.Quit
		}
		m.result = SourcePickerResult{
			Selected: true,
			Source:   m.choices[m.cursor].Tool,
		}
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m SourcePickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(sourcePickerStyles.Title.Render("Resolve Conflict - Select Source of Truth"))
	b.WriteString("\n\n")

	for i, choice := range m.choices {
		label := choice.DisplayName
		if label == "" {
			label = string(choice.Tool)
		}
		if choice.Changed {
			label += " " + sourcePickerStyles.Changed.Render("(modified)")
		}

		var line string
		if i == m.cursor {
			line = sourcePickerStyles.Selected.Render(fmt.Sprintf("> %s", label))
		} else {
			line = sourcePickerStyles.Item.Render(fmt.Sprintf("  %s", label))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sourcePickerStyles.Status.Render("The selected tool's context overwrites every other tool"))
	b.WriteString("\n")
	b.WriteString(sourcePickerStyles.Help.Render("↑/↓ navigate • enter select • q quit"))

	return b.String()
}

// Result returns the outcome of the user interaction.
func (m SourcePickerModel) Result() SourcePickerResult {
	return m.result
}

// RunSourcePicker runs the interactive source picker and returns the result.
func RunSourcePicker(choices []SourceChoice) (SourcePickerResult, error) {
	picker := NewSourcePickerModel(choices)
	finalModel, err := tea.NewProgram(picker, tea.WithAltScreen()).Run()
	if err != nil {
		return SourcePickerResult{}, err
	}

	if m, ok := finalModel.(SourcePickerModel); ok {
		return m.Result(), nil
	}

	return SourcePickerResult{}, nil
}
