// Package tui is the terminal front end of the task list: a table of active
// tasks beside an edit form, driven by a tracker.Controller.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskmaster/tasklist/internal/application/tracker"
	"github.com/taskmaster/tasklist/internal/domain/entities"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
)

// Form fields in tab order. Notes is a textarea, the rest are text inputs.
const (
	fieldName = iota
	fieldCategory
	fieldPriority
	fieldDue
	fieldResurrect
	fieldNotes

	focusTable = -1
)

var fieldLabels = [fieldNotes + 1]string{"Name", "Category", "Priority", "Due", "Resurrect (days)", "Notes"}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	focusLabel = labelStyle.Foreground(lipgloss.Color("229")).Bold(true)
	paneStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

type loadedMsg struct {
	doc *entities.Document
	err error
}

type savedMsg struct {
	action string
	err    error
}

// Model is the bubbletea model.
type Model struct {
	ctx          context.Context
	ctrl         *tracker.Controller
	logger       *logger.Logger
	keys         KeyMap
	help         help.Model
	fetchTimeout time.Duration

	table  table.Model
	column table.Column
	inputs [fieldNotes]textinput.Model
	notes  textarea.Model
	focus  int

	status    string
	statusErr bool
	width     int
	height    int
}

// New builds the model. Nothing is fetched until the program calls Init.
func New(ctx context.Context, ctrl *tracker.Controller, appLogger *logger.Logger, fetchTimeout time.Duration) Model {
	m := Model{
		ctx:          ctx,
		ctrl:         ctrl,
		logger:       appLogger.WithComponent("tui"),
		keys:         DefaultKeyMap,
		help:         help.New(),
		fetchTimeout: fetchTimeout,
		focus:        focusTable,
		status:       "Loading…",
	}

	m.column = table.Column{Title: "Task", Width: 40}
	m.table = table.New(
		table.WithColumns([]table.Column{m.column}),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("86"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)

	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Width = 30
		m.inputs[i] = in
	}
	m.inputs[fieldPriority].CharLimit = 6
	m.inputs[fieldResurrect].CharLimit = 6
	m.inputs[fieldDue].Placeholder = tracker.DueDateLayout
	m.inputs[fieldCategory].ShowSuggestions = true
	m.inputs[fieldCategory].KeyMap.AcceptSuggestion = key.NewBinding(key.WithKeys("right"))

	m.notes = textarea.New()
	m.notes.ShowLineNumbers = false
	m.notes.CharLimit = 0
	m.notes.SetWidth(40)
	m.notes.SetHeight(6)

	m.refresh()
	return m
}

// Run starts the program and blocks until the user quits and every pending
// write has finished.
func Run(ctx context.Context, ctrl *tracker.Controller, appLogger *logger.Logger, fetchTimeout time.Duration) error {
	p := tea.NewProgram(New(ctx, ctrl, appLogger, fetchTimeout), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	ctrl.Wait()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.fetch()
}

func (m Model) fetch() tea.Cmd {
	parent, ctrl, timeout := m.ctx, m.ctrl, m.fetchTimeout
	return func() tea.Msg {
		ctx := parent
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(parent, timeout)
			defer cancel()
		}
		doc, err := ctrl.Fetch(ctx)
		return loadedMsg{doc: doc, err: err}
	}
}

func awaitWrite(action string, p *tracker.Pending) tea.Cmd {
	return func() tea.Msg {
		return savedMsg{action: action, err: p.Wait()}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case loadedMsg:
		// Apply logs a failed load; the screen just shows the empty list.
		_ = m.ctrl.Apply(msg.doc, msg.err)
		m.setStatus(fmt.Sprintf("Loaded %d tasks", m.ctrl.Table().Len()))
		m.refresh()
		m.focusTable()
		return m, nil

	case savedMsg:
		// Failed writes are logged by the controller and not reported here.
		if msg.err == nil {
			m.setStatus(msg.action + " saved")
		} else {
			m.setStatus("")
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Save):
		return m.save()
	case key.Matches(msg, m.keys.Complete):
		return m.complete()
	case key.Matches(msg, m.keys.ClearDue):
		m.ctrl.ClearDue()
		m.inputs[fieldDue].SetValue("")
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		return m, m.cycleFocus(1)
	case key.Matches(msg, m.keys.PrevField):
		return m, m.cycleFocus(-1)
	}

	if m.focus == focusTable {
		return m.handleTableKey(msg)
	}
	if key.Matches(msg, m.keys.BackToList) {
		m.focusTable()
		return m, nil
	}
	return m.updateFocused(msg)
}

func (m Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Select):
		if err := m.ctrl.SelectRow(m.table.Cursor()); err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.refresh()
		return m, m.focusField(fieldName)

	case key.Matches(msg, m.keys.New):
		id, err := m.ctrl.NewTask()
		if err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.logger.Debugw("Task created", "task_id", id)
		m.refresh()
		m.setStatus("New task")
		return m, m.focusField(fieldName)

	case key.Matches(msg, m.keys.Reload):
		m.setStatus("Loading…")
		return m, m.fetch()

	case key.Matches(msg, m.keys.Sort):
		col := tracker.Column(msg.String()[0] - '1')
		m.ctrl.ToggleSort(col)
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) save() (tea.Model, tea.Cmd) {
	m.commitInputs()
	p := m.ctrl.Save(m.ctx)

	if m.ctrl.Phase() == tracker.PhaseTaskSelected {
		// The form did not validate; keep editing.
		if err := p.Wait(); err != nil {
			m.setError("Not saved: " + err.Error())
		}
		return m, nil
	}

	m.setStatus("Saving…")
	m.refresh()
	m.focusTable()
	return m, awaitWrite("Tasks", p)
}

func (m Model) complete() (tea.Model, tea.Cmd) {
	if _, ok := m.ctrl.Selected(); !ok {
		m.setStatus("No task selected")
		return m, nil
	}

	p := m.ctrl.Complete(m.ctx)
	m.setStatus("Saving…")
	m.refresh()
	m.focusTable()
	return m, awaitWrite("Completion", p)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.focus == fieldNotes:
		m.notes, cmd = m.notes.Update(msg)
	case m.focus >= 0:
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	default:
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

// refresh copies the controller's table and form into the widgets.
func (m *Model) refresh() {
	view := m.ctrl.Table()

	rows := make([]table.Row, 0, view.Len())
	cursor := m.table.Cursor()
	for i, r := range view.Rows() {
		marker := "  "
		if r.Selected {
			marker = "▸ "
			cursor = i
		}
		rows = append(rows, table.Row{marker + r.Label()})
	}

	title := "Task"
	if col, order := view.Sort(); order != tracker.Unsorted {
		arrow := "↑"
		if order == tracker.Descending {
			arrow = "↓"
		}
		title = fmt.Sprintf("Task (%s %s)", col, arrow)
	}
	m.column.Title = title
	m.table.SetColumns([]table.Column{m.column})

	m.table.SetRows(rows)
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	m.table.SetCursor(cursor)

	form := m.ctrl.Form()
	m.inputs[fieldName].SetValue(form.Name)
	m.inputs[fieldCategory].SetValue(form.Category)
	m.inputs[fieldPriority].SetValue(form.Priority)
	m.inputs[fieldDue].SetValue(form.Due)
	m.inputs[fieldResurrect].SetValue(form.Resurrect)
	m.notes.SetValue(form.Notes)

	options := m.ctrl.CategoryOptions()
	suggestions := make([]string, 0, len(options))
	for _, o := range options {
		suggestions = append(suggestions, o.Value)
	}
	m.inputs[fieldCategory].SetSuggestions(suggestions)
}

func (m *Model) commitInputs() {
	form := m.ctrl.Form()
	form.Name = m.inputs[fieldName].Value()
	form.Category = m.inputs[fieldCategory].Value()
	form.Priority = m.inputs[fieldPriority].Value()
	form.Due = m.inputs[fieldDue].Value()
	form.Resurrect = m.inputs[fieldResurrect].Value()
	form.Notes = m.notes.Value()
}

func (m *Model) blurAll() {
	m.table.Blur()
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.notes.Blur()
}

func (m *Model) focusTable() {
	m.blurAll()
	m.focus = focusTable
	m.table.Focus()
}

func (m *Model) focusField(field int) tea.Cmd {
	m.blurAll()
	m.focus = field
	if field == fieldNotes {
		return m.notes.Focus()
	}
	return m.inputs[field].Focus()
}

func (m *Model) cycleFocus(delta int) tea.Cmd {
	// Positions run from focusTable through fieldNotes.
	n := fieldNotes + 2
	next := (m.focus+1+delta+n)%n - 1
	if next == focusTable {
		m.focusTable()
		return nil
	}
	return m.focusField(next)
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	tableHeight := m.height - 8
	if tableHeight < 5 {
		tableHeight = 5
	}
	m.table.SetHeight(tableHeight)

	tableWidth := m.width / 2
	if tableWidth < 20 {
		tableWidth = 20
	}
	m.column.Width = tableWidth - 4
	m.table.SetColumns([]table.Column{m.column})
	m.table.SetWidth(tableWidth)

	formWidth := m.width - tableWidth - 26
	if formWidth < 16 {
		formWidth = 16
	}
	for i := range m.inputs {
		m.inputs[i].Width = formWidth
	}
	m.notes.SetWidth(formWidth)
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(s string) {
	m.status, m.statusErr = s, true
	m.logger.Warnw("Status error", "message", s)
}

func (m Model) View() string {
	list := paneStyle.Render(m.table.View())

	var form []string
	for i, in := range m.inputs {
		label := labelStyle
		if m.focus == i {
			label = focusLabel
		}
		form = append(form, lipgloss.JoinHorizontal(lipgloss.Top, label.Render(fieldLabels[i]), in.View()))
	}
	label := labelStyle
	if m.focus == fieldNotes {
		label = focusLabel
	}
	form = append(form, label.Render(fieldLabels[fieldNotes]), m.notes.View())

	edit := paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left, form...))

	status := okStyle.Render(m.status)
	if m.statusErr {
		status = errStyle.Render(m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Tasks")+"  "+m.ctrl.Phase().String(),
		lipgloss.JoinHorizontal(lipgloss.Top, list, edit),
		status,
		m.help.ShortHelpView(m.keys.ShortHelp()),
	)
}
