package tracker

import (
	"sort"
	"time"

	"github.com/taskmaster/tasklist/internal/domain/entities"
)

// State is the client's in-memory copy of the task document. It is owned by
// a single Controller and only touched from the UI goroutine.
type State struct {
	doc *entities.Document
}

// NewState returns an empty state.
func NewState() *State {
	return &State{doc: entities.NewDocument()}
}

// Reset replaces the whole model with doc.
func (s *State) Reset(doc *entities.Document) {
	if doc == nil {
		doc = entities.NewDocument()
	}
	doc.Normalize()
	s.doc = doc
}

// Task returns the task with the given id.
func (s *State) Task(id entities.TaskID) (*entities.Task, bool) {
	t, ok := s.doc.Tasks[id]
	return t, ok
}

// Insert adds t, replacing any task with the same id.
func (s *State) Insert(t *entities.Task) {
	s.doc.Tasks[t.ID] = t
}

// Categories returns the category mapping.
func (s *State) Categories() entities.CategoryMapping {
	return s.doc.Categories
}

// Len returns the number of tasks, completed ones included.
func (s *State) Len() int {
	return len(s.doc.Tasks)
}

// Tasks returns all tasks ordered by id.
func (s *State) Tasks() []*entities.Task {
	out := make([]*entities.Task, 0, len(s.doc.Tasks))
	for _, t := range s.doc.Tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NextID returns an id for a task created at now that does not collide with
// any existing task.
func (s *State) NextID(now time.Time) entities.TaskID {
	id := entities.NewTaskID(now)
	for {
		if _, taken := s.doc.Tasks[id]; !taken {
			return id
		}
		id++
	}
}

// Snapshot returns a deep copy stamped with now, safe to hand to another
// goroutine.
func (s *State) Snapshot(now time.Time) *entities.Document {
	cp := s.doc.Clone()
	cp.Touch(now)
	return cp
}
