package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Choice is one selectable entry in the entity picker.
type Choice struct {
	Label       string
	Description string
}

// Picker is a multi-select list for choosing which entities to push.
type Picker struct {
	title     string
	choices   []Choice
	checked   []bool
	cursor    int
	keyMap    pickerKeyMap
	submitted bool
	cancelled bool
}

type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	All    key.Binding
	Submit key.Binding
	Quit   key.Binding
}

func defaultPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		All: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle all"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q/esc", "quit"),
		),
	}
}

// NewPicker creates a picker with every choice pre-selected, matching the
// default push behavior of taking all entities.
func NewPicker(title string, choices []Choice) Picker {
	checked := make([]bool, len(choices))
	for i := range checked {
		checked[i] = true
	}
	return Picker{
		title:   title,
		choices: choices,
		checked: checked,
		keyMap:  defaultPickerKeyMap(),
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keyMap.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, p.keyMap.Down):
			if p.cursor < len(p.choices)-1 {
				p.cursor++
			}
		case key.Matches(msg, p.keyMap.Toggle):
			if p.cursor < len(p.checked) {
				p.checked[p.cursor] = !p.checked[p.cursor]
			}
		case key.Matches(msg, p.keyMap.All):
			all := true
			for _, c := range p.checked {
				if !c {
					all = false
					break
				}
			}
			for i := range p.checked {
				p.checked[i] = !all
			}
		case key.Matches(msg, p.keyMap.Submit):
			p.submitted = true
			return p, tea.Quit
		case key.Matches(msg, p.keyMap.Quit):
			p.cancelled = true
			return p, tea.Quit
		}
	}
	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(p.title))
	b.WriteString("\n\n")

	for i, choice := range p.choices {
		symbol := SymbolUnselected
		if p.checked[i] {
			symbol = SymbolSelected
		}

		style := UnselectedStyle
		cursor := "  "
		if i == p.cursor {
			style = SelectedStyle
			cursor = "> "
		}

		b.WriteString(cursor)
		b.WriteString(style.Render(symbol + " " + choice.Label))
		b.WriteString("\n")

		if choice.Description != "" {
			b.WriteString(DescriptionStyle.Render(choice.Description))
			b.WriteString("\n")
		}
	}

	b.WriteString(HelpStyle.Render("\n↑/↓ navigate • space toggle • a all • enter confirm • q quit"))
	return b.String()
}

// Cancelled returns true if the user quit without confirming.
func (p Picker) Cancelled() bool {
	return p.cancelled
}

// Submitted returns true if the user confirmed the selection.
func (p Picker) Submitted() bool {
	return p.submitted
}

// Selected returns the labels of the checked choices, in list order.
func (p Picker) Selected() []string {
	var selected []string
	for i, choice := range p.choices {
		if p.checked[i] {
			selected = append(selected, choice.Label)
		}
	}
	return selected
}

// RunPicker runs the picker to completion on the terminal. The second
// return is false when the user cancelled instead of confirming.
func RunPicker(title string, choices []Choice) ([]string, bool, error) {
	program := tea.NewProgram(NewPicker(title, choices))
	final, err := program.Run()
	if err != nil {
		return nil, false, fmt.Errorf("entity picker failed: %w", err)
	}

	picker, ok := final.(Picker)
	if !ok || picker.Cancelled() {
		return nil, false, nil
	}
	return picker.Selected(), true, nil
}
