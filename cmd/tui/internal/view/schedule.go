package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/carlosandre007/escala/internal/calendar"
	"github.com/carlosandre007/escala/internal/charge"
	"github.com/carlosandre007/escala/internal/scheduler"
)

type scheduleState int

const (
	scheduleStateBrowse scheduleState = iota
	scheduleStateAdd
	scheduleStateDelete
	scheduleStateJump
)

const columnWidth = 20

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	todayStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	settledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	columnStyle   = lipgloss.NewStyle().
			Width(columnWidth).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderRight(true)
)

// ScheduleModel is the weekly board: seven day columns, toggling charges
// between pending and settled.
type ScheduleModel struct {
	CommonModel
	svc *scheduler.Service

	state scheduleState
	week  *scheduler.WeekView
	today calendar.Date
	day   int
	row   int

	form          *huh.Form
	formValues    *chargeFormValues
	confirmDelete *bool
	picker        WeekPicker

	loading bool
	err     error
	status  string

	// focus is the charge the cursor follows across reloads.
	focus uuid.UUID
}

func NewScheduleModel(svc *scheduler.Service) ScheduleModel {
	today := svc.Today()

	return ScheduleModel{
		svc:     svc,
		today:   today,
		day:     int(today.Weekday()),
		picker:  NewWeekPicker(today),
		loading: true,
	}
}

func (m ScheduleModel) Title() string { return "Weekly Schedule" }
func (m ScheduleModel) ShortHelp() string {
	switch m.state {
	case scheduleStateAdd, scheduleStateDelete:
		return "Navigate form | Esc: cancel"
	case scheduleStateJump:
		return "Enter: go | Esc: cancel"
	}

	return "←/→ day | ↑/↓ charge | space: settle/unsettle | a: add | d: delete | n/p: week | t: today | g: go to | r: refresh | Esc: back"
}

func (m ScheduleModel) Init() tea.Cmd {
	return m.loadWeekCmd(m.today)
}

func (m ScheduleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case weekLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.week = msg.week
		m.followFocus()
		m.clampCursor()

		if n := countDrift(msg.drift); n > 0 {
			note := fmt.Sprintf("%d charge(s) differed from the saved state; showing saved state", n)
			m.status = strings.TrimSpace(m.status + " " + note)
		}

		return m, nil

	case mutationDoneMsg:
		m.status = msg.describe()
		m.focus = msg.id
		return m, m.refreshCmd()

	case WeekSelectedMsg:
		m.state = scheduleStateBrowse
		m.loading = true

		return m, m.loadWeekCmd(msg.Ref)

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil
	}

	switch m.state {
	case scheduleStateBrowse:
		return m.updateBrowse(msg)
	case scheduleStateAdd:
		return m.updateAdd(msg)
	case scheduleStateDelete:
		return m.updateDelete(msg)
	case scheduleStateJump:
		return m.updateJump(msg)
	}

	return m, nil
}

func (m ScheduleModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.week == nil {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.err = nil
			m.loading = true

			return m, m.refreshCmd()
		}

		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "left", "h":
		if m.day > 0 {
			m.day--
			m.row = 0
		}
	case "right", "l":
		if m.day < len(m.week.Window)-1 {
			m.day++
			m.row = 0
		}
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(m.week.Day(m.day))-1 {
			m.row++
		}
	case "n", "]":
		m.loading = true
		return m, m.loadWeekCmd(m.week.Window.Next().Start())
	case "p", "[":
		m.loading = true
		return m, m.loadWeekCmd(m.week.Window.Prev().Start())
	case "t":
		m.today = m.svc.Today()
		m.day = int(m.today.Weekday())
		m.loading = true

		return m, m.loadWeekCmd(m.today)
	case "g":
		m.picker.Reset(m.svc.Today())
		m.state = scheduleStateJump
	case "r":
		m.status = ""
		return m, m.refreshCmd()
	case " ", "enter":
		return m.toggle()
	case "a":
		return m.enterAddMode()
	case "d":
		return m.enterDeleteMode()
	}

	return m, nil
}

// toggle flips the selected charge in the local view right away and sends
// the write; the board is reconciled with the store once it returns.
func (m ScheduleModel) toggle() (tea.Model, tea.Cmd) {
	c := m.selected()
	if c == nil {
		return m, nil
	}

	now := m.svc.Now()

	if c.IsSettled() {
		m.week = m.week.WithStatus(c.ID, charge.StatusPending, now)
		m.status = fmt.Sprintf("Undoing %s...", c.ClientName)

		return m, m.unsettleCmd(c)
	}

	m.week = m.week.WithStatus(c.ID, charge.StatusSettled, now)
	m.status = fmt.Sprintf("Settling %s...", c.ClientName)

	return m, m.settleCmd(c)
}

func (m ScheduleModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.formValues = newChargeFormValues(m.week.Window[m.day])
	m.form = newChargeForm(m.formValues)
	m.state = scheduleStateAdd

	return m, m.form.Init()
}

func (m ScheduleModel) enterDeleteMode() (tea.Model, tea.Cmd) {
	c := m.selected()
	if c == nil {
		return m, nil
	}

	m.confirmDelete = new(false)
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Delete %s (%s) due %s?", c.ClientName, FormatAmount(c.Amount), c.DueDate)).
				Description("Any later occurrence already created is kept.").
				Value(m.confirmDelete),
		),
	).WithWidth(45).WithShowHelp(false)
	m.state = scheduleStateDelete

	return m, m.form.Init()
}

func (m ScheduleModel) updateForm(msg tea.Msg) (ScheduleModel, tea.Cmd, bool) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = scheduleStateBrowse
		m.form = nil

		return m, nil, false
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	return m, cmd, m.form.State == huh.StateCompleted
}

func (m ScheduleModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd, done := m.updateForm(msg)
	if !done {
		return m, cmd
	}

	m.state = scheduleStateBrowse
	m.form = nil

	params, err := m.formValues.params()
	if err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
		return m, nil
	}

	return m, m.createCmd(params)
}

func (m ScheduleModel) updateDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd, done := m.updateForm(msg)
	if !done {
		return m, cmd
	}

	m.state = scheduleStateBrowse
	m.form = nil

	c := m.selected()
	if m.confirmDelete == nil || !*m.confirmDelete || c == nil {
		return m, nil
	}

	return m, m.deleteCmd(c)
}

func (m ScheduleModel) updateJump(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" && m.picker.IsSelecting() {
		m.state = scheduleStateBrowse
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m ScheduleModel) selected() *charge.Charge {
	if m.week == nil {
		return nil
	}

	charges := m.week.Day(m.day)
	if m.row < 0 || m.row >= len(charges) {
		return nil
	}

	return charges[m.row]
}

// followFocus moves the cursor onto the focused charge when it is in the
// loaded week.
func (m *ScheduleModel) followFocus() {
	if m.focus == uuid.Nil {
		return
	}

	defer func() { m.focus = uuid.Nil }()

	c := m.week.Find(m.focus)
	if c == nil {
		return
	}

	day := m.week.Window.Index(c.DueDate)
	if day < 0 {
		return
	}

	m.day = day

	for i, dc := range m.week.Day(day) {
		if dc.ID == c.ID {
			m.row = i
		}
	}
}

func (m *ScheduleModel) clampCursor() {
	if n := len(m.week.Day(m.day)); m.row >= n {
		m.row = max(n-1, 0)
	}
}

func (m ScheduleModel) View() string {
	if m.loading && m.week == nil {
		return lipgloss.NewStyle().Padding(2).Render("Loading schedule...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\n(r to retry, Esc to back)", m.err))
	}

	w := m.week.Window
	title := headerStyle.Render(fmt.Sprintf("Week of %s to %s", w.Start(), w.End()))

	// Narrow terminals page through the week a few days at a time.
	from, to := visibleDays(m.Columns(columnWidth+1, len(w)), m.day, len(w))

	columns := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		columns = append(columns, m.renderDay(i, w[i]))
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, columns...)

	s := m.week.Summary
	totals := fmt.Sprintf(
		"Expected %s   Received %s   Outstanding %s   (%d/%d settled)",
		FormatAmount(s.Total),
		settledStyle.Render(FormatAmount(s.Settled)),
		FormatAmount(s.Outstanding),
		s.SettledCount, s.Count,
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(title),
		board,
		lipgloss.NewStyle().PaddingTop(1).Render(totals),
	)

	switch {
	case m.state == scheduleStateJump:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel("", m.picker.View()))
	case m.form != nil:
		heading := "New Charge"
		if m.state == scheduleStateDelete {
			heading = "Delete Charge"
		}

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel(heading, m.form.View()))
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	help := lipgloss.NewStyle().Faint(true).PaddingTop(1).Render(m.ShortHelp())

	return lipgloss.NewStyle().Padding(1).Render(content + "\n" + help)
}

func (m ScheduleModel) renderDay(i int, d calendar.Date) string {
	title := FormatDay(d)
	if d == m.today {
		title = todayStyle.Render(title)
	}

	lines := []string{title, ""}

	charges := m.week.Day(i)
	if len(charges) == 0 {
		lines = append(lines, lipgloss.NewStyle().Faint(true).Render("-"))
	}

	for j, c := range charges {
		line := chargeLine(c)

		switch {
		case i == m.day && j == m.row && m.state == scheduleStateBrowse:
			line = selectedStyle.Render(line)
		case c.IsSettled():
			line = settledStyle.Render(line)
		default:
			line = pendingStyle.Render(line)
		}

		lines = append(lines, line)
	}

	return columnStyle.Render(strings.Join(lines, "\n"))
}

func chargeLine(c *charge.Charge) string {
	mark := "○"
	if c.IsSettled() {
		mark = "●"
	}

	name := c.ClientName
	if limit := columnWidth - 12; len([]rune(name)) > limit {
		name = string([]rune(name)[:limit-1]) + "…"
	}

	line := fmt.Sprintf("%s %s %s", mark, name, FormatAmount(c.Amount))
	if c.Recurrence.Repeats() {
		line += " ↻"
	}

	return line
}

func panel(heading, body string) string {
	if heading != "" {
		body = heading + "\n\n" + body
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(48).
		Render(body)
}

// visibleDays returns the half-open range of day indexes shown when only n
// columns fit, keeping day on screen.
func visibleDays(n, day, total int) (int, int) {
	if n >= total {
		return 0, total
	}

	from := (day / n) * n

	return from, min(from+n, total)
}

func countDrift(drift []scheduler.Drift) int {
	n := 0

	for _, d := range drift {
		if d.Kind != scheduler.DriftAdded {
			n++
		}
	}

	return n
}

// Messages

type weekLoadedMsg struct {
	week  *scheduler.WeekView
	drift []scheduler.Drift
	err   error
}

type mutationDoneMsg struct {
	id     uuid.UUID
	action string
	client string
	detail string
	err    error
}

func (msg mutationDoneMsg) describe() string {
	if msg.err == nil {
		s := fmt.Sprintf("%s %s", msg.action, msg.client)
		if msg.detail != "" {
			s += ", " + msg.detail
		}

		return s
	}

	var partial *scheduler.PartialWriteError
	if errors.As(msg.err, &partial) {
		return errorStyle.Render(fmt.Sprintf("Only part of the change was saved: %v", msg.err))
	}

	if errors.Is(msg.err, charge.ErrConflict) {
		return errorStyle.Render(fmt.Sprintf("%s was changed elsewhere; reloaded", msg.client))
	}

	return errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
}

func (m ScheduleModel) loadWeekCmd(ref calendar.Date) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		week, err := m.svc.Week(ctx, ref)

		return weekLoadedMsg{week: week, err: err}
	}
}

// refreshCmd reloads the shown week and reports how the local board had
// drifted from the store.
func (m ScheduleModel) refreshCmd() tea.Cmd {
	local := m.week
	if local == nil {
		return m.loadWeekCmd(m.today)
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		week, drift, err := m.svc.Refresh(ctx, local)

		return weekLoadedMsg{week: week, drift: drift, err: err}
	}
}

func (m ScheduleModel) settleCmd(c *charge.Charge) tea.Cmd {
	id, client := c.ID, c.ClientName

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.svc.Settle(ctx, id)
		if err != nil {
			return mutationDoneMsg{action: "Settled", client: client, err: err}
		}

		detail := ""
		if res.Successor != nil {
			detail = fmt.Sprintf("next due %s", res.Successor.DueDate)
		}

		return mutationDoneMsg{id: id, action: "Settled", client: client, detail: detail}
	}
}

func (m ScheduleModel) unsettleCmd(c *charge.Charge) tea.Cmd {
	id, client := c.ID, c.ClientName

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.svc.Unsettle(ctx, id)
		if err != nil {
			return mutationDoneMsg{action: "Undid", client: client, err: err}
		}

		detail := ""

		switch {
		case res.Retracted:
			detail = fmt.Sprintf("removed the occurrence due %s", res.Successor.DueDate)
		case res.Successor != nil:
			detail = fmt.Sprintf("the occurrence due %s is still scheduled", res.Successor.DueDate)
		}

		return mutationDoneMsg{id: id, action: "Undid", client: client, detail: detail}
	}
}

func (m ScheduleModel) createCmd(params charge.CreateParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		c, err := m.svc.Create(ctx, params)
		if err != nil {
			return mutationDoneMsg{action: "Added", client: params.ClientName, err: err}
		}

		return mutationDoneMsg{id: c.ID, action: "Added", client: c.ClientName, detail: fmt.Sprintf("due %s", c.DueDate)}
	}
}

func (m ScheduleModel) deleteCmd(c *charge.Charge) tea.Cmd {
	id, client := c.ID, c.ClientName

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return mutationDoneMsg{action: "Deleted", client: client, err: m.svc.Delete(ctx, id)}
	}
}
