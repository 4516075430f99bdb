package tracker

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/taskmaster/tasklist/internal/domain/entities"
)

// Column indexes the cells of a table row. Only ColumnName is meant for
// display; the rest are hidden values kept so the table can sort on them.
type Column int

const (
	ColumnName Column = iota
	ColumnCreated
	ColumnCategory
	ColumnPriority
	ColumnDue
	ColumnCompleted
	ColumnResurrect

	columnCount
)

var columnTitles = [columnCount]string{"Task", "Created", "Category", "Priority", "Due", "Completed", "Resurrect"}

func (c Column) String() string {
	if c < 0 || c >= columnCount {
		return "Column(" + strconv.Itoa(int(c)) + ")"
	}
	return columnTitles[c]
}

// ParseColumn looks a column up by its title, ignoring case.
func ParseColumn(s string) (Column, error) {
	for c := ColumnName; c < columnCount; c++ {
		if strings.EqualFold(columnTitles[c], strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown column %q", s)
}

// SortOrder is the direction of the active sort.
type SortOrder int

const (
	Unsorted SortOrder = iota
	Ascending
	Descending
)

func (o SortOrder) String() string {
	switch o {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	}
	return "unsorted"
}

// Row is one rendered task.
type Row struct {
	ID       entities.TaskID
	Cells    [columnCount]string
	Selected bool

	due float64
}

// Label is the visible text of the row: category glyph, two spaces, name.
func (r Row) Label() string {
	return r.Cells[ColumnName]
}

// TableView renders the active tasks of a State as sortable rows and tracks
// which row carries the selection marker.
type TableView struct {
	rows   []Row
	column Column
	order  SortOrder
}

// NewTableView returns an empty, unsorted table.
func NewTableView() *TableView {
	return &TableView{}
}

// Render rebuilds every row from state. Only tasks with a zero completion
// time are shown. Any selection marker is dropped and the current sort is
// re-applied.
func (v *TableView) Render(state *State) {
	categories := state.Categories()
	rows := make([]Row, 0, state.Len())

	for _, t := range state.Tasks() {
		if !t.IsActive() {
			continue
		}
		rows = append(rows, newRow(t, categories))
	}

	v.rows = rows
	v.applySort()
}

func newRow(t *entities.Task, categories entities.CategoryMapping) Row {
	r := Row{ID: t.ID, due: math.Inf(1)}
	r.Cells[ColumnName] = categories.Glyph(t.Category) + "  " + t.Name
	r.Cells[ColumnCreated] = t.ID.String()
	r.Cells[ColumnCategory] = t.Category
	r.Cells[ColumnPriority] = strconv.Itoa(int(t.Priority))
	r.Cells[ColumnDue] = t.DueTime.String()
	r.Cells[ColumnCompleted] = strconv.FormatInt(t.CompletionTime, 10)
	r.Cells[ColumnResurrect] = strconv.Itoa(int(t.DaysToResurrect))
	if ms, ok := t.DueTime.Millis(); ok {
		r.due = float64(ms)
	}
	return r
}

// Rows returns a copy of the rendered rows in display order.
func (v *TableView) Rows() []Row {
	out := make([]Row, len(v.rows))
	copy(out, v.rows)
	return out
}

// Len returns the number of rendered rows.
func (v *TableView) Len() int {
	return len(v.rows)
}

// Sort reports the active sort column and order.
func (v *TableView) Sort() (Column, SortOrder) {
	return v.column, v.order
}

// ToggleSort behaves like clicking a column header: a new column sorts
// ascending, the active column flips direction.
func (v *TableView) ToggleSort(c Column) {
	order := Ascending
	if c == v.column && v.order == Ascending {
		order = Descending
	}
	v.SortBy(c, order)
}

// SortBy sorts on column c in the given order.
func (v *TableView) SortBy(c Column, order SortOrder) {
	if c < 0 || c >= columnCount {
		return
	}
	v.column = c
	v.order = order
	v.applySort()
}

func (v *TableView) applySort() {
	if v.order == Unsorted {
		return
	}
	c, desc := v.column, v.order == Descending
	sort.SliceStable(v.rows, func(i, j int) bool {
		a, b := v.rows[i], v.rows[j]
		cmp := compareCells(c, a, b)
		if cmp == 0 {
			return a.ID < b.ID
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func compareCells(c Column, a, b Row) int {
	switch c {
	case ColumnName, ColumnCategory:
		return strings.Compare(strings.ToLower(a.Cells[c]), strings.ToLower(b.Cells[c]))
	case ColumnDue:
		return compareFloat(a.due, b.due)
	default:
		x, _ := strconv.ParseFloat(a.Cells[c], 64)
		y, _ := strconv.ParseFloat(b.Cells[c], 64)
		return compareFloat(x, y)
	}
}

func compareFloat(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// IDAt returns the task id embedded in row i.
func (v *TableView) IDAt(i int) (entities.TaskID, bool) {
	if i < 0 || i >= len(v.rows) {
		return 0, false
	}
	return v.rows[i].ID, true
}

// IndexOf returns the row index of the task, or -1.
func (v *TableView) IndexOf(id entities.TaskID) int {
	for i := range v.rows {
		if v.rows[i].ID == id {
			return i
		}
	}
	return -1
}

// Highlight moves the selection marker to the row of id. It reports false,
// leaving no row marked, when the task is not rendered.
func (v *TableView) Highlight(id entities.TaskID) bool {
	found := false
	for i := range v.rows {
		v.rows[i].Selected = v.rows[i].ID == id
		found = found || v.rows[i].Selected
	}
	return found
}

// ClearHighlight removes the selection marker.
func (v *TableView) ClearHighlight() {
	for i := range v.rows {
		v.rows[i].Selected = false
	}
}

// Highlighted returns the marked row, if any.
func (v *TableView) Highlighted() (Row, bool) {
	for _, r := range v.rows {
		if r.Selected {
			return r, true
		}
	}
	return Row{}, false
}

// CategoryOption is one entry of the category picker.
type CategoryOption struct {
	Value string
	Label string
}

// CategoryOptions lists the mapped categories ordered by key, labelled
// "glyph key".
func CategoryOptions(categories entities.CategoryMapping) []CategoryOption {
	keys := make([]string, 0, len(categories))
	for k := range categories {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]CategoryOption, 0, len(keys))
	for _, k := range keys {
		out = append(out, CategoryOption{Value: k, Label: categories[k] + " " + k})
	}
	return out
}
