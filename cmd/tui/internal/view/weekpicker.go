package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carlosandre007/escala/internal/calendar"
)

// Jump is a predefined or custom week selection.
type Jump int

const (
	JumpThisWeek Jump = iota
	JumpLastWeek
	JumpNextWeek
	JumpCustom
)

func (j Jump) String() string {
	switch j {
	case JumpThisWeek:
		return "This Week"
	case JumpLastWeek:
		return "Last Week"
	case JumpNextWeek:
		return "Next Week"
	case JumpCustom:
		return "Pick a Date"
	}

	return "Unknown"
}

// WeekSelectedMsg is emitted when the user has picked a week. Ref is any
// day inside it.
type WeekSelectedMsg struct {
	Ref calendar.Date
}

type pickerState int

const (
	pickerStateSelect pickerState = iota
	pickerStateCustom
)

// WeekPicker lets the operator jump to another week.
type WeekPicker struct {
	state    pickerState
	selected Jump
	today    calendar.Date

	dateInput textinput.Model

	err error
}

func NewWeekPicker(today calendar.Date) WeekPicker {
	di := textinput.New()
	di.Placeholder = "YYYY-MM-DD"
	di.CharLimit = 10
	di.Width = 12
	di.Prompt = "Date: "

	return WeekPicker{
		state:     pickerStateSelect,
		selected:  JumpThisWeek,
		today:     today,
		dateInput: di,
	}
}

func (m WeekPicker) Update(msg tea.Msg) (WeekPicker, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case pickerStateSelect:
			return m.updateSelect(msg)
		case pickerStateCustom:
			return m.updateCustom(msg)
		}
	}

	return m, nil
}

func (m WeekPicker) updateSelect(msg tea.KeyMsg) (WeekPicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > JumpThisWeek {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < JumpCustom {
			m.selected++
		}
	case tea.KeyEnter:
		ref := m.today

		switch m.selected {
		case JumpCustom:
			m.state = pickerStateCustom
			m.dateInput.Focus()

			return m, textinput.Blink
		case JumpLastWeek:
			ref = ref.AddDays(-7)
		case JumpNextWeek:
			ref = ref.AddDays(7)
		}

		return m, selectWeek(ref)
	}

	return m, nil
}

func (m WeekPicker) updateCustom(msg tea.KeyMsg) (WeekPicker, tea.Cmd) {
	switch msg.String() {
	case "enter":
		ref, err := calendar.Parse(m.dateInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid date (YYYY-MM-DD)")
			return m, nil
		}

		m.err = nil

		return m, selectWeek(ref)
	case "esc":
		m.state = pickerStateSelect
		m.err = nil

		return m, nil
	}

	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)

	return m, cmd
}

func selectWeek(ref calendar.Date) tea.Cmd {
	return func() tea.Msg {
		return WeekSelectedMsg{Ref: ref}
	}
}

func (m WeekPicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == pickerStateCustom {
		return fmt.Sprintf("Go to the week of:\n\n%s\n\n(Enter to confirm, Esc to back)%s", m.dateInput.View(), errStr)
	}

	s := "Go to:\n\n"
	for j := JumpThisWeek; j <= JumpCustom; j++ {
		cursor := " "
		if m.selected == j {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, j.String())
	}

	s += "\n(Enter to select, Esc to back)"

	return s + errStr
}

// IsSelecting reports whether the picker is on its list rather than the date input.
func (m WeekPicker) IsSelecting() bool {
	return m.state == pickerStateSelect
}

func (m *WeekPicker) Reset(today calendar.Date) {
	m.state = pickerStateSelect
	m.selected = JumpThisWeek
	m.today = today
	m.err = nil
	m.dateInput.SetValue("")
	m.dateInput.Blur()
}
