package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taskmaster/tasklist/internal/domain/entities"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
	"github.com/taskmaster/tasklist/internal/ports"
)

// Phase is the controller's position in the load/select/save cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoaded
	PhaseTaskSelected
	PhaseSaving
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoaded:
		return "loaded"
	case PhaseTaskSelected:
		return "task_selected"
	case PhaseSaving:
		return "saving"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Pending is the outcome of a write that was started but not awaited.
type Pending struct {
	done chan struct{}
	err  error
}

func resolved(err error) *Pending {
	p := &Pending{done: make(chan struct{}), err: err}
	close(p.done)
	return p
}

// Done is closed once the write has finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the write has finished and returns its error.
func (p *Pending) Wait() error {
	<-p.done
	return p.err
}

// Controller ties the in-memory model, the table and the edit form to the
// server. All methods must be called from one goroutine; only the network
// writes they start run concurrently, on private snapshots.
type Controller struct {
	transport ports.DocumentTransport
	clock     ports.Clock
	logger    *logger.Logger

	state *State
	table *TableView
	form  *EditForm

	phase       Phase
	selected    entities.TaskID
	hasSelected bool
	categories  []CategoryOption

	inflight sync.WaitGroup
	saving   atomic.Int32
}

// NewController creates a controller in the Idle phase. loc is the reference
// zone for due dates.
func NewController(transport ports.DocumentTransport, clock ports.Clock, loc *time.Location, appLogger *logger.Logger) *Controller {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &Controller{
		transport: transport,
		clock:     clock,
		logger:    appLogger.WithComponent("sync_controller"),
		state:     NewState(),
		table:     NewTableView(),
		form:      NewEditForm(loc),
	}
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// State returns the in-memory model.
func (c *Controller) State() *State { return c.state }

// Table returns the table view.
func (c *Controller) Table() *TableView { return c.table }

// Form returns the edit form.
func (c *Controller) Form() *EditForm { return c.form }

// CategoryOptions returns the category picker entries built at load time.
func (c *Controller) CategoryOptions() []CategoryOption { return c.categories }

// Selected returns the selected task id, if any.
func (c *Controller) Selected() (entities.TaskID, bool) {
	return c.selected, c.hasSelected
}

// SavesInFlight returns the number of writes not yet finished.
func (c *Controller) SavesInFlight() int {
	return int(c.saving.Load())
}

// Load fetches the document and renders it. On failure the model is left
// empty, the controller stays Idle and the error is logged and returned.
func (c *Controller) Load(ctx context.Context) error {
	return c.Apply(c.Fetch(ctx))
}

// Fetch retrieves the document without touching the model. It may run on any
// goroutine; its result is handed to Apply.
func (c *Controller) Fetch(ctx context.Context) (*entities.Document, error) {
	return c.transport.Fetch(ctx)
}

// Apply installs the result of Fetch.
func (c *Controller) Apply(doc *entities.Document, err error) error {
	if err == nil && doc == nil {
		err = &entities.ParseError{Source: "fetch", Err: errors.New("no document")}
	}
	if err != nil {
		c.logger.Errorw("Error loading tasks", "error", err)
		c.state.Reset(nil)
		c.categories = nil
		c.clearSelection()
		c.table.Render(c.state)
		c.phase = PhaseIdle
		return err
	}

	c.state.Reset(doc)
	c.categories = CategoryOptions(c.state.Categories())
	c.clearSelection()
	c.table.Render(c.state)
	c.phase = PhaseLoaded

	c.logger.Infow("Tasks loaded", "tasks", c.state.Len(), "active", c.table.Len())
	return nil
}

// Select makes id the selected task and copies it into the form. Any prior
// selection is dropped.
func (c *Controller) Select(id entities.TaskID) error {
	if c.phase == PhaseIdle {
		return entities.ErrNotLoaded
	}

	task, ok := c.state.Task(id)
	if !ok || !c.table.Highlight(id) {
		return fmt.Errorf("select %s: %w", id, entities.ErrTaskNotFound)
	}

	c.selected = id
	c.hasSelected = true
	c.form.Populate(task)
	c.phase = PhaseTaskSelected
	return nil
}

// SelectRow selects the task rendered at row i.
func (c *Controller) SelectRow(i int) error {
	id, ok := c.table.IDAt(i)
	if !ok {
		return fmt.Errorf("select row %d: %w", i, entities.ErrTaskNotFound)
	}
	return c.Select(id)
}

// Save commits the form into the selected task, starts a write of the whole
// model and re-renders without waiting for it. With no selection the commit
// is skipped but the write still happens. A failed write is only logged; the
// in-memory model stays authoritative until the next Load.
func (c *Controller) Save(ctx context.Context) *Pending {
	if c.phase == PhaseIdle {
		return resolved(entities.ErrNotLoaded)
	}

	c.phase = PhaseSaving

	if c.hasSelected {
		if task, ok := c.state.Task(c.selected); ok {
			if err := c.form.Commit(task); err != nil {
				c.logger.Warnw("Save skipped", "task_id", c.selected, "error", err)
				c.phase = PhaseTaskSelected
				return resolved(err)
			}
		}
	}

	pending := c.persist(ctx)

	c.clearSelection()
	c.table.Render(c.state)
	c.phase = PhaseLoaded
	return pending
}

// NewTask inserts a task with default values, selects it and sorts the
// table newest first so it is on top.
func (c *Controller) NewTask() (entities.TaskID, error) {
	if c.phase == PhaseIdle {
		return 0, entities.ErrNotLoaded
	}

	now := c.clock.Now()
	task := entities.NewTask(now)
	task.ID = c.state.NextID(now)
	c.state.Insert(task)

	c.table.Render(c.state)
	c.table.SortBy(ColumnCreated, Descending)

	if err := c.Select(task.ID); err != nil {
		return 0, err
	}
	return task.ID, nil
}

// Complete marks the selected task done, persists, clears the selection and
// resets the form. Without a selection it does nothing.
func (c *Controller) Complete(ctx context.Context) *Pending {
	if !c.hasSelected {
		return resolved(nil)
	}

	task, ok := c.state.Task(c.selected)
	if !ok {
		c.clearSelection()
		return resolved(fmt.Errorf("complete %s: %w", c.selected, entities.ErrTaskNotFound))
	}

	task.Complete(c.clock.Now())
	pending := c.persist(ctx)

	c.clearSelection()
	c.table.Render(c.state)
	c.form.Reset()
	c.phase = PhaseLoaded
	return pending
}

// ClearDue blanks the form's due date.
func (c *Controller) ClearDue() {
	c.form.ClearDue()
}

// ToggleSort sorts on column col as a header click would. The selection
// marker follows its row.
func (c *Controller) ToggleSort(col Column) {
	c.table.ToggleSort(col)
}

// SortBy sorts on column col in the given order.
func (c *Controller) SortBy(col Column, order SortOrder) {
	c.table.SortBy(col, order)
}

// Wait blocks until every write started so far has finished.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

func (c *Controller) persist(ctx context.Context) *Pending {
	snapshot := c.state.Snapshot(c.clock.Now())
	p := &Pending{done: make(chan struct{})}

	c.inflight.Add(1)
	c.saving.Add(1)
	go func() {
		defer c.inflight.Done()
		defer c.saving.Add(-1)
		defer close(p.done)

		if err := c.transport.Replace(ctx, snapshot); err != nil {
			c.logger.Errorw("Error saving tasks", "error", err, "tasks", len(snapshot.Tasks))
			p.err = err
			return
		}
		c.logger.Debugw("Tasks saved", "tasks", len(snapshot.Tasks), "last_modified", snapshot.LastModified)
	}()
	return p
}

func (c *Controller) clearSelection() {
	c.selected = 0
	c.hasSelected = false
	c.table.ClearHighlight()
}
