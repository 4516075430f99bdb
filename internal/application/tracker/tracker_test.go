package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/tasklist/internal/domain/entities"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeTransport stores the document as serialized bytes, like the server.
type fakeTransport struct {
	mu         sync.Mutex
	stored     []byte
	fetchErr   error
	replaceErr error
	replaces   int
}

func (f *fakeTransport) Fetch(ctx context.Context) (*entities.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	doc, err := entities.ParseDocument(f.stored)
	if err != nil {
		return nil, &entities.ParseError{Source: "fake", Err: err}
	}
	return doc, nil
}

func (f *fakeTransport) Replace(ctx context.Context, doc *entities.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaces++
	if f.replaceErr != nil {
		return f.replaceErr
	}
	b, err := doc.Marshal()
	if err != nil {
		return err
	}
	f.stored = b
	return nil
}

func (f *fakeTransport) document(t *testing.T) *entities.Document {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := entities.ParseDocument(f.stored)
	require.NoError(t, err)
	return doc
}

const payRentDocument = `{
  "lastModified": 1,
  "categories": {"bills": "💸"},
  "tasks": {
    "1000": {
      "taskCreationTime": 1000,
      "taskName": "Pay rent",
      "taskCategory": "bills",
      "taskPriority": 2,
      "taskDueTime": 1700000000000,
      "taskCompletionTime": 0,
      "taskNotes": "",
      "daysToResurrect": 0
    }
  }
}`

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func newTestController(t *testing.T, stored string) (*Controller, *fakeTransport, *fakeClock) {
	t.Helper()
	transport := &fakeTransport{stored: []byte(stored)}
	clock := &fakeClock{now: time.UnixMilli(1700000500000)}
	c := NewController(transport, clock, newYork(t), logger.NewNop())
	return c, transport, clock
}

func TestEndToEndPayRent(t *testing.T) {
	ctx := context.Background()
	c, transport, _ := newTestController(t, payRentDocument)

	require.NoError(t, c.Load(ctx))
	assert.Equal(t, PhaseLoaded, c.Phase())

	rows := c.Table().Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "💸  Pay rent", rows[0].Label())

	require.NoError(t, c.SelectRow(0))
	assert.Equal(t, PhaseTaskSelected, c.Phase())
	assert.Equal(t, "Pay rent", c.Form().Name)
	assert.Equal(t, "bills", c.Form().Category)
	assert.NotEmpty(t, c.Form().Due)

	require.NoError(t, c.Complete(ctx).Wait())
	c.Wait()

	stored := transport.document(t)
	assert.NotZero(t, stored.Tasks[1000].CompletionTime)
	assert.Equal(t, 0, c.Table().Len())

	require.NoError(t, c.Load(ctx))
	assert.Equal(t, 0, c.Table().Len())
}

func TestLoadFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("parse error leaves an empty model", func(t *testing.T) {
		c, _, _ := newTestController(t, `{"tasks":`)

		err := c.Load(ctx)
		require.Error(t, err)
		assert.True(t, entities.IsParseError(err))
		assert.Equal(t, PhaseIdle, c.Phase())
		assert.Equal(t, 0, c.State().Len())
		assert.Equal(t, 0, c.Table().Len())
	})

	t.Run("network error stays idle", func(t *testing.T) {
		c, transport, _ := newTestController(t, payRentDocument)
		transport.fetchErr = &entities.NetworkError{Method: "GET", URL: "/tasks", StatusCode: 500}

		err := c.Load(ctx)
		require.Error(t, err)
		assert.Equal(t, PhaseIdle, c.Phase())
		assert.ErrorIs(t, c.Select(1000), entities.ErrNotLoaded)
	})

	t.Run("saving before a load is refused", func(t *testing.T) {
		c, transport, _ := newTestController(t, payRentDocument)

		assert.ErrorIs(t, c.Save(ctx).Wait(), entities.ErrNotLoaded)
		assert.Equal(t, 0, transport.replaces)
	})
}

func TestCompletionFilter(t *testing.T) {
	doc := entities.NewDocument()
	for i := 1; i <= 6; i++ {
		task := &entities.Task{ID: entities.TaskID(i), Name: "t"}
		if i%2 == 0 {
			task.CompletionTime = int64(i)
		}
		doc.Tasks[task.ID] = task
	}
	b, err := doc.Marshal()
	require.NoError(t, err)

	c, _, _ := newTestController(t, string(b))
	require.NoError(t, c.Load(context.Background()))

	var shown []entities.TaskID
	for _, r := range c.Table().Rows() {
		shown = append(shown, r.ID)
	}
	assert.ElementsMatch(t, []entities.TaskID{1, 3, 5}, shown)
}

func TestSelectionExclusivity(t *testing.T) {
	doc := entities.NewDocument()
	for i := 1; i <= 4; i++ {
		doc.Tasks[entities.TaskID(i)] = &entities.Task{ID: entities.TaskID(i), Name: "t"}
	}
	b, err := doc.Marshal()
	require.NoError(t, err)

	c, _, _ := newTestController(t, string(b))
	require.NoError(t, c.Load(context.Background()))

	for _, i := range []int{0, 3, 1, 1, 2, 0} {
		require.NoError(t, c.SelectRow(i))
		c.ToggleSort(ColumnCreated)

		marked := 0
		for _, r := range c.Table().Rows() {
			if r.Selected {
				marked++
			}
		}
		assert.Equal(t, 1, marked)

		row, ok := c.Table().Highlighted()
		require.True(t, ok)
		id, _ := c.Selected()
		assert.Equal(t, id, row.ID)
	}

	assert.Error(t, c.SelectRow(99))
	assert.ErrorIs(t, c.Select(12345), entities.ErrTaskNotFound)
}

func TestSaveCommitsFormAndPersists(t *testing.T) {
	ctx := context.Background()
	c, transport, _ := newTestController(t, payRentDocument)
	require.NoError(t, c.Load(ctx))
	require.NoError(t, c.Select(1000))

	f := c.Form()
	f.Name = "Pay rent (Nov)"
	f.Priority = "3"
	f.Notes = "landlord"
	f.Resurrect = "30"
	f.Due = "1 Dec 2023"

	pending := c.Save(ctx)
	assert.Equal(t, PhaseLoaded, c.Phase())
	_, selected := c.Selected()
	assert.False(t, selected)
	assert.Equal(t, "💸  Pay rent (Nov)", c.Table().Rows()[0].Label())

	require.NoError(t, pending.Wait())

	task := transport.document(t).Tasks[1000]
	assert.Equal(t, "Pay rent (Nov)", task.Name)
	assert.Equal(t, entities.LenientInt(3), task.Priority)
	assert.Equal(t, "landlord", task.Notes)
	assert.Equal(t, entities.LenientInt(30), task.DaysToResurrect)

	due, ok := task.DueTime.Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, newYork(t)).UnixMilli(), due.UnixMilli())
}

func TestSaveWithoutSelectionStillPersists(t *testing.T) {
	ctx := context.Background()
	c, transport, _ := newTestController(t, payRentDocument)
	require.NoError(t, c.Load(ctx))

	c.Form().Name = "ignored"
	require.NoError(t, c.Save(ctx).Wait())

	assert.Equal(t, 1, transport.replaces)
	assert.Equal(t, "Pay rent", transport.document(t).Tasks[1000].Name)
}

func TestSaveInvalidFormIsSkipped(t *testing.T) {
	ctx := context.Background()
	c, transport, _ := newTestController(t, payRentDocument)
	require.NoError(t, c.Load(ctx))
	require.NoError(t, c.Select(1000))

	c.Form().Priority = "high"
	assert.Error(t, c.Save(ctx).Wait())
	assert.Equal(t, PhaseTaskSelected, c.Phase())
	assert.Equal(t, 0, transport.replaces)

	task, _ := c.State().Task(1000)
	assert.Equal(t, entities.LenientInt(2), task.Priority)
}

func TestFailedSaveKeepsModel(t *testing.T) {
	ctx := context.Background()
	c, transport, _ := newTestController(t, payRentDocument)
	require.NoError(t, c.Load(ctx))
	require.NoError(t, c.Select(1000))

	transport.replaceErr = &entities.NetworkError{Method: "PUT", URL: "/tasks", Err: errors.New("connection refused")}
	c.Form().Name = "edited"

	err := c.Save(ctx).Wait()
	assert.True(t, entities.IsNetworkError(err))

	task, _ := c.State().Task(1000)
	assert.Equal(t, "edited", task.Name)
	assert.Equal(t, "💸  edited", c.Table().Rows()[0].Label())
	assert.Equal(t, PhaseLoaded, c.Phase())
}

func TestNewTask(t *testing.T) {
	ctx := context.Background()
	c, _, clock := newTestController(t, payRentDocument)
	require.NoError(t, c.Load(ctx))

	id, err := c.NewTask()
	require.NoError(t, err)
	assert.Equal(t, entities.NewTaskID(clock.Now()), id)

	task, ok := c.State().Task(id)
	require.True(t, ok)
	assert.Equal(t, int64(0), task.CompletionTime)
	assert.Equal(t, entities.LenientInt(0), task.Priority)
	assert.Equal(t, "idk", task.Category)
	assert.False(t, task.DueTime.IsSet())

	assert.Equal(t, PhaseTaskSelected, c.Phase())
	selected, _ := c.Selected()
	assert.Equal(t, id, selected)

	col, order := c.Table().Sort()
	assert.Equal(t, ColumnCreated, col)
	assert.Equal(t, Descending, order)
	assert.Equal(t, id, c.Table().Rows()[0].ID)
	assert.True(t, c.Table().Rows()[0].Selected)
	assert.Equal(t, "❔  New thing", c.Table().Rows()[0].Label())

	assert.Equal(t, "New thing", c.Form().Name)
	assert.Equal(t, "", c.Form().Due)

	// Same clock tick: the id must still be unique.
	second, err := c.NewTask()
	require.NoError(t, err)
	assert.NotEqual(t, id, second)
	assert.Equal(t, 3, c.State().Len())
}

func TestCompleteWithoutSelectionIsNoop(t *testing.T) {
	ctx := context.Background()
	c, transport, _ := newTestController(t, payRentDocument)
	require.NoError(t, c.Load(ctx))

	require.NoError(t, c.Complete(ctx).Wait())
	assert.Equal(t, 0, transport.replaces)
	assert.Equal(t, 1, c.Table().Len())
}

func TestCompleteResetsForm(t *testing.T) {
	ctx := context.Background()
	c, _, clock := newTestController(t, payRentDocument)
	require.NoError(t, c.Load(ctx))
	require.NoError(t, c.Select(1000))

	require.NoError(t, c.Complete(ctx).Wait())

	task, _ := c.State().Task(1000)
	assert.Equal(t, clock.Now().UnixMilli(), task.CompletionTime)

	f := c.Form()
	assert.Equal(t, "", f.Name)
	assert.Equal(t, "idk", f.Category)
	assert.Equal(t, "0", f.Priority)
	assert.Equal(t, "", f.Due)
	assert.Equal(t, "0", f.Resurrect)
	assert.Equal(t, PhaseLoaded, c.Phase())
}

func TestOverlappingSavesAreNotBlocked(t *testing.T) {
	ctx := context.Background()
	c, transport, clock := newTestController(t, payRentDocument)
	require.NoError(t, c.Load(ctx))

	first := c.Save(ctx)
	clock.Advance(time.Second)
	second := c.Save(ctx)
	c.Wait()

	assert.NoError(t, first.Wait())
	assert.NoError(t, second.Wait())
	assert.Equal(t, 2, transport.replaces)
	assert.Equal(t, 0, c.SavesInFlight())
}

func TestSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	block := make(chan struct{})
	transport := &blockingTransport{fakeTransport: fakeTransport{stored: []byte(payRentDocument)}, release: block}
	c := NewController(transport, &fakeClock{now: time.UnixMilli(1700000500000)}, newYork(t), logger.NewNop())
	require.NoError(t, c.Load(ctx))
	require.NoError(t, c.Select(1000))

	c.Form().Name = "first"
	pending := c.Save(ctx)

	// Edit after the save was issued; the in-flight write must not see it.
	require.NoError(t, c.Select(1000))
	c.Form().Name = "second"
	require.NoError(t, c.Form().Commit(mustTask(t, c, 1000)))

	close(block)
	require.NoError(t, pending.Wait())
	assert.Equal(t, "first", transport.document(t).Tasks[1000].Name)
}

type blockingTransport struct {
	fakeTransport
	release chan struct{}
}

func (b *blockingTransport) Replace(ctx context.Context, doc *entities.Document) error {
	<-b.release
	return b.fakeTransport.Replace(ctx, doc)
}

func mustTask(t *testing.T, c *Controller, id entities.TaskID) *entities.Task {
	t.Helper()
	task, ok := c.State().Task(id)
	require.True(t, ok)
	return task
}

func TestCategoryOptions(t *testing.T) {
	c, _, _ := newTestController(t, `{"categories":{"home":"🏠","bills":"💸"},"tasks":{}}`)
	require.NoError(t, c.Load(context.Background()))

	assert.Equal(t, []CategoryOption{
		{Value: "bills", Label: "💸 bills"},
		{Value: "home", Label: "🏠 home"},
	}, c.CategoryOptions())
}

func TestClearDue(t *testing.T) {
	c, _, _ := newTestController(t, payRentDocument)
	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Select(1000))
	require.NotEmpty(t, c.Form().Due)

	c.ClearDue()
	require.NoError(t, c.Save(context.Background()).Wait())

	task, _ := c.State().Task(1000)
	assert.False(t, task.DueTime.IsSet())
}
