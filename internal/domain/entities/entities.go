package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Category and task defaults used when a task is created or a form is reset.
const (
	DefaultCategory   = "idk"
	DefaultTaskName   = "New thing"
	FallbackGlyph     = "❔"
	noDueDateInfinity = "Infinity"
)

// TaskID identifies a task. It is the task's creation time in milliseconds
// since the epoch and never changes once assigned.
type TaskID int64

// NewTaskID returns the identifier for a task created at t.
func NewTaskID(t time.Time) TaskID {
	return TaskID(t.UnixMilli())
}

// CreatedAt returns the creation time encoded in the identifier.
func (id TaskID) CreatedAt() time.Time {
	return time.UnixMilli(int64(id))
}

func (id TaskID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// DueTime is an optional due time. The zero value means "no due date" and is
// serialized as JSON null.
type DueTime struct {
	millis int64
	set    bool
}

// NoDueDate returns the empty due time.
func NoDueDate() DueTime {
	return DueTime{}
}

// DueAt returns a due time at t.
func DueAt(t time.Time) DueTime {
	return DueTime{millis: t.UnixMilli(), set: true}
}

// DueAtMillis returns a due time at ms milliseconds since the epoch.
func DueAtMillis(ms int64) DueTime {
	return DueTime{millis: ms, set: true}
}

// IsSet reports whether a due date is present.
func (d DueTime) IsSet() bool {
	return d.set
}

// Millis returns the due time in milliseconds and whether it is set.
func (d DueTime) Millis() (int64, bool) {
	return d.millis, d.set
}

// Time returns the due time and whether it is set.
func (d DueTime) Time() (time.Time, bool) {
	if !d.set {
		return time.Time{}, false
	}
	return time.UnixMilli(d.millis), true
}

func (d DueTime) String() string {
	if !d.set {
		return noDueDateInfinity
	}
	return strconv.FormatInt(d.millis, 10)
}

// MarshalJSON writes null for a missing due date and milliseconds otherwise.
func (d DueTime) MarshalJSON() ([]byte, error) {
	if !d.set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(d.millis, 10)), nil
}

// UnmarshalJSON accepts null, a number, or a string. The strings "" and
// "Infinity" mean no due date.
func (d *DueTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = DueTime{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" || s == noDueDateInfinity {
			*d = DueTime{}
			return nil
		}
		data = []byte(s)
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid due time %s: %w", data, err)
	}
	*d = DueTime{millis: int64(f), set: true}
	return nil
}

// LenientInt is an integer that also decodes from a numeric string. Browser
// forms historically wrote priority and resurrect values as strings.
type LenientInt int

func (n *LenientInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
		if len(data) == 0 {
			*n = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", data, err)
	}
	*n = LenientInt(f)
	return nil
}

// Task is one to-do item.
type Task struct {
	ID              TaskID     `json:"taskCreationTime"`
	Name            string     `json:"taskName"`
	Category        string     `json:"taskCategory"`
	Priority        LenientInt `json:"taskPriority"`
	DueTime         DueTime    `json:"taskDueTime"`
	CompletionTime  int64      `json:"taskCompletionTime"`
	Notes           string     `json:"taskNotes"`
	DaysToResurrect LenientInt `json:"daysToResurrect"`

	// Decoded tokens, written back while the value is unchanged.
	rawPriority  json.RawMessage
	rawResurrect json.RawMessage
}

type taskFields Task

type taskWire struct {
	taskFields
	Priority        json.RawMessage `json:"taskPriority,omitempty"`
	DaysToResurrect json.RawMessage `json:"daysToResurrect,omitempty"`
}

// UnmarshalJSON decodes a task and remembers how its numeric form fields
// were spelled.
func (t *Task) UnmarshalJSON(data []byte) error {
	var w taskWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Task(w.taskFields)

	if len(w.Priority) > 0 {
		if err := t.Priority.UnmarshalJSON(w.Priority); err != nil {
			return err
		}
		t.rawPriority = w.Priority
	}
	if len(w.DaysToResurrect) > 0 {
		if err := t.DaysToResurrect.UnmarshalJSON(w.DaysToResurrect); err != nil {
			return err
		}
		t.rawResurrect = w.DaysToResurrect
	}
	return nil
}

// MarshalJSON writes the task. Priority and days to resurrect keep their
// decoded spelling, such as "2", until the value changes.
func (t Task) MarshalJSON() ([]byte, error) {
	w := taskWire{
		taskFields:      taskFields(t),
		Priority:        keepToken(t.rawPriority, t.Priority),
		DaysToResurrect: keepToken(t.rawResurrect, t.DaysToResurrect),
	}
	return json.Marshal(w)
}

func keepToken(raw json.RawMessage, n LenientInt) json.RawMessage {
	if len(raw) > 0 {
		var decoded LenientInt
		if err := decoded.UnmarshalJSON(raw); err == nil && decoded == n {
			return raw
		}
	}
	return json.RawMessage(strconv.Itoa(int(n)))
}

// NewTask returns a task with default field values created at now.
func NewTask(now time.Time) *Task {
	return &Task{
		ID:       NewTaskID(now),
		Name:     DefaultTaskName,
		Category: DefaultCategory,
		DueTime:  NoDueDate(),
	}
}

// IsActive reports whether the task has not been completed.
func (t *Task) IsActive() bool {
	return t.CompletionTime == 0
}

// Complete marks the task completed at now. Completion is permanent.
func (t *Task) Complete(now time.Time) {
	ms := now.UnixMilli()
	if ms == 0 {
		ms = 1
	}
	t.CompletionTime = ms
}

// CategoryMapping maps a category key to its display glyph.
type CategoryMapping map[string]string

// Glyph returns the glyph for key, or the fallback glyph when unmapped.
func (m CategoryMapping) Glyph(key string) string {
	if g, ok := m[key]; ok && g != "" {
		return g
	}
	return FallbackGlyph
}

// Document is the unit of persistence: the whole task set and category table.
type Document struct {
	LastModified int64            `json:"lastModified"`
	Categories   CategoryMapping  `json:"categories"`
	Tasks        map[TaskID]*Task `json:"tasks"`
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		Categories: CategoryMapping{},
		Tasks:      map[TaskID]*Task{},
	}
}

// Normalize replaces nil maps with empty ones and drops nil task entries.
func (d *Document) Normalize() {
	if d.Categories == nil {
		d.Categories = CategoryMapping{}
	}
	if d.Tasks == nil {
		d.Tasks = map[TaskID]*Task{}
	}
	for id, t := range d.Tasks {
		if t == nil {
			delete(d.Tasks, id)
		}
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		LastModified: d.LastModified,
		Categories:   make(CategoryMapping, len(d.Categories)),
		Tasks:        make(map[TaskID]*Task, len(d.Tasks)),
	}
	for k, v := range d.Categories {
		out.Categories[k] = v
	}
	for id, t := range d.Tasks {
		if t == nil {
			continue
		}
		cp := *t
		out.Tasks[id] = &cp
	}
	return out
}

// Touch stamps the document with the modification time now.
func (d *Document) Touch(now time.Time) {
	d.LastModified = now.UnixMilli()
}

// ParseDocument decodes a serialized document. A document whose top level is
// not a JSON object is rejected.
func ParseDocument(data []byte) (*Document, error) {
	var doc *Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document is null")
	}
	doc.Normalize()
	return doc, nil
}

// Marshal serializes the document with two-space indentation.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
