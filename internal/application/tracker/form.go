package tracker

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/taskmaster/tasklist/internal/domain/entities"
)

// DueDateLayout is how due dates are shown in the form, e.g. "14 Nov 2023".
const DueDateLayout = "2 Jan 2006"

var dueDateLayouts = []string{
	DueDateLayout,
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02",
}

var formValidator = newFormValidator()

// newFormValidator adds an "integer" rule: a whole number that fits in an int.
func newFormValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
		_, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil
	})
	return v
}

// EditForm holds the editable fields of the selected task as text, the way
// input widgets hold them.
type EditForm struct {
	Name      string
	Category  string
	Priority  string `validate:"omitempty,integer"`
	Due       string
	Notes     string
	Resurrect string `validate:"omitempty,integer"`

	loc *time.Location
}

// NewEditForm returns a form in its reset state. Due dates are converted in
// loc, independent of the machine's local zone.
func NewEditForm(loc *time.Location) *EditForm {
	if loc == nil {
		loc = time.UTC
	}
	f := &EditForm{loc: loc}
	f.Reset()
	return f
}

// Location returns the reference time zone.
func (f *EditForm) Location() *time.Location {
	return f.loc
}

// Reset puts every field back to its default.
func (f *EditForm) Reset() {
	f.Name = ""
	f.Category = entities.DefaultCategory
	f.Priority = "0"
	f.Due = ""
	f.Notes = ""
	f.Resurrect = "0"
}

// ClearDue blanks the due date field.
func (f *EditForm) ClearDue() {
	f.Due = ""
}

// Populate copies t into the form.
func (f *EditForm) Populate(t *entities.Task) {
	f.Name = t.Name
	f.Category = t.Category
	f.Priority = strconv.Itoa(int(t.Priority))
	f.Due = FormatDueDate(t.DueTime, f.loc)
	f.Notes = t.Notes
	f.Resurrect = strconv.Itoa(int(t.DaysToResurrect))
}

// Validate checks the form without touching any task.
func (f *EditForm) Validate() error {
	if err := formValidator.Struct(f); err != nil {
		return fmt.Errorf("invalid form: %w", err)
	}
	if _, err := ParseDueDate(f.Due, f.loc); err != nil {
		return fmt.Errorf("invalid form: %w", err)
	}
	return nil
}

// Commit writes the form back into t. Nothing is written when the form does
// not validate.
func (f *EditForm) Commit(t *entities.Task) error {
	if err := f.Validate(); err != nil {
		return err
	}

	due, _ := ParseDueDate(f.Due, f.loc)

	t.Name = f.Name
	t.Category = f.Category
	t.Priority = entities.LenientInt(parseFormInt(f.Priority))
	t.DaysToResurrect = entities.LenientInt(parseFormInt(f.Resurrect))
	t.Notes = f.Notes
	t.DueTime = due
	return nil
}

func parseFormInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// FormatDueDate renders d as a calendar date in loc, or "" when there is no
// due date.
func FormatDueDate(d entities.DueTime, loc *time.Location) string {
	t, ok := d.Time()
	if !ok {
		return ""
	}
	return t.In(loc).Format(DueDateLayout)
}

// ParseDueDate converts a calendar date to midnight of that day in loc. A
// blank string means no due date.
func ParseDueDate(s string, loc *time.Location) (entities.DueTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return entities.NoDueDate(), nil
	}
	// en-GB renders September as "Sept"
	s = strings.Replace(s, "Sept ", "Sep ", 1)

	for _, layout := range dueDateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return entities.DueAt(t), nil
		}
	}
	return entities.NoDueDate(), fmt.Errorf("unrecognised due date %q", s)
}
