// Package grid drives inline editing of report entries: one row at a time is
// opened in an edit buffer and committed to or discarded against a remote store.
package grid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"oee-board/internal/storage"
)

var (
	ErrEditInProgress = errors.New("another row is being edited")
	ErrNotEditing     = errors.New("row is not being edited")
	ErrRowNotFound    = errors.New("row not found")
)

type EntryStore interface {
	ListEntries(ctx context.Context, reportID int64) ([]storage.ReportEntry, error)
	CreateEntry(ctx context.Context, reportID int64, u storage.EntryUpdate) (*storage.ReportEntry, error)
	UpdateEntry(ctx context.Context, id int64, u storage.EntryUpdate) (*storage.ReportEntry, error)
	DeleteEntry(ctx context.Context, id int64) error
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string, err error)
}

type State int

const (
	Idle State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "idle"
}

// NewRowDefaults are the placeholder values of a row created by Add.
func NewRowDefaults() storage.EntryUpdate {
	operator, machine, part, shift, good := "New Operator", "New Machine", "Part-New", "1", 0
	return storage.EntryUpdate{
		Operator:   &operator,
		Machine:    &machine,
		PartNumber: &part,
		Shift:      &shift,
		GoodCount:  &good,
	}
}

// Controller holds the rows of one report and at most one open edit.
// It is safe for concurrent use; remote calls run without holding the lock.
type Controller struct {
	store    EntryStore
	notify   Notifier
	log      *slog.Logger
	reportID int64

	mu          sync.Mutex
	rows        []storage.ReportEntry
	editing     int64
	form        Form
	highlighted int64
}

func New(store EntryStore, reportID int64, notify Notifier, log *slog.Logger) *Controller {
	return &Controller{
		store:    store,
		notify:   notify,
		log:      log.With(slog.Int64("report_id", reportID)),
		reportID: reportID,
		rows:     []storage.ReportEntry{},
	}
}

func (c *Controller) indexOf(id int64) int {
	return slices.IndexFunc(c.rows, func(e storage.ReportEntry) bool { return e.ID == id })
}

// Load fetches the rows of the report, newest first. Any open edit is discarded.
func (c *Controller) Load(ctx context.Context) error {
	const op = "grid.Load"

	entries, err := c.store.ListEntries(ctx, c.reportID)
	if err != nil {
		c.log.Error("failed to load entries", slog.String("op", op), slog.String("error", err.Error()))
		c.notify.Error("Failed to load report data", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b storage.ReportEntry) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if sorted == nil {
		sorted = []storage.ReportEntry{}
	}
	c.rows = sorted
	c.editing = 0
	c.form = nil

	return nil
}

// Edit opens row id in the edit buffer.
func (c *Controller) Edit(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.editing != 0 {
		if c.editing == id {
			return nil
		}
		return fmt.Errorf("grid.Edit: row %d: %w", c.editing, ErrEditInProgress)
	}

	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("grid.Edit: row %d: %w", id, ErrRowNotFound)
	}

	c.editing = id
	c.form = formFromEntry(c.rows[i])
	c.log.Debug("edit started", slog.Int64("entry_id", id))

	return nil
}

// Set writes one field of the edit buffer.
func (c *Controller) Set(field Field, value string) error {
	if _, ok := titles[field]; !ok {
		return fmt.Errorf("grid.Set: %w %q", ErrUnknownField, field)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.editing == 0 {
		return fmt.Errorf("grid.Set: %w", ErrNotEditing)
	}
	c.form[field] = value

	return nil
}

// Cancel discards the edit buffer. The row keeps its value.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.editing != 0 {
		c.log.Debug("edit cancelled", slog.Int64("entry_id", c.editing))
	}
	c.editing = 0
	c.form = nil
}

// Save validates the buffer of row id and commits it. The row is replaced
// locally before the remote update is sent; if the update fails the pre-edit
// row is put back. Any save that passes validation clears the new-row highlight.
// A *ValidationError leaves the row in edit mode and nothing is sent.
func (c *Controller) Save(ctx context.Context, id int64) error {
	const op = "grid.Save"

	c.mu.Lock()
	if c.editing != id {
		c.mu.Unlock()
		return fmt.Errorf("%s: row %d: %w", op, id, ErrNotEditing)
	}

	u, err := c.form.Validate()
	if err != nil {
		c.mu.Unlock()
		return err
	}

	i := c.indexOf(id)
	if i < 0 {
		c.editing, c.form = 0, nil
		c.mu.Unlock()
		return fmt.Errorf("%s: row %d: %w", op, id, ErrRowNotFound)
	}

	snapshot := c.rows[i]
	optimistic := snapshot
	u.Apply(&optimistic)
	c.rows[i] = optimistic
	c.editing, c.form = 0, nil
	c.highlighted = 0
	c.mu.Unlock()

	saved, err := c.store.UpdateEntry(ctx, id, u)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		if i := c.indexOf(id); i >= 0 {
			c.rows[i] = snapshot
		}
		c.log.Error("failed to save entry", slog.String("op", op), slog.Int64("entry_id", id), slog.String("error", err.Error()))
		c.notify.Error("Failed to save changes", err)
		return fmt.Errorf("%s: row %d: %w", op, id, err)
	}

	if i := c.indexOf(id); i >= 0 && saved != nil {
		c.rows[i] = *saved
	}
	c.notify.Success("Entry updated")

	return nil
}

// Add creates a placeholder row remotely, puts it on top and opens it for editing.
func (c *Controller) Add(ctx context.Context) (storage.ReportEntry, error) {
	const op = "grid.Add"

	c.mu.Lock()
	if c.editing != 0 {
		editing := c.editing
		c.mu.Unlock()
		return storage.ReportEntry{}, fmt.Errorf("%s: row %d: %w", op, editing, ErrEditInProgress)
	}
	c.mu.Unlock()

	created, err := c.store.CreateEntry(ctx, c.reportID, NewRowDefaults())
	if err != nil {
		c.log.Error("failed to add entry", slog.String("op", op), slog.String("error", err.Error()))
		c.notify.Error("Failed to add new entry", err)
		return storage.ReportEntry{}, fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.rows = slices.Insert(c.rows, 0, *created)
	c.highlighted = created.ID
	// An edit opened while the create was in flight keeps priority.
	if c.editing == 0 {
		c.editing = created.ID
		c.form = formFromEntry(*created)
	}
	c.notify.Success("New row added")

	return *created, nil
}

// Delete removes row id remotely and then locally. It is refused while a row is being edited.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	const op = "grid.Delete"

	c.mu.Lock()
	if c.editing != 0 {
		editing := c.editing
		c.mu.Unlock()
		return fmt.Errorf("%s: row %d: %w", op, editing, ErrEditInProgress)
	}
	if c.indexOf(id) < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%s: row %d: %w", op, id, ErrRowNotFound)
	}
	c.mu.Unlock()

	if err := c.store.DeleteEntry(ctx, id); err != nil {
		c.log.Error("failed to delete entry", slog.String("op", op), slog.Int64("entry_id", id), slog.String("error", err.Error()))
		c.notify.Error("Failed to delete entry", err)
		return fmt.Errorf("%s: row %d: %w", op, id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.rows = slices.DeleteFunc(c.rows, func(e storage.ReportEntry) bool { return e.ID == id })
	if c.highlighted == id {
		c.highlighted = 0
	}
	if c.editing == id {
		c.editing, c.form = 0, nil
	}
	c.notify.Success("Row deleted")

	return nil
}

// State reports the controller state and the id of the row being edited, if any.
func (c *Controller) State() (State, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.editing == 0 {
		return Idle, 0
	}
	return Editing, c.editing
}

func (c *Controller) Rows() []storage.ReportEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.rows)
}

// Form returns a copy of the edit buffer, nil when idle.
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.form == nil {
		return nil
	}
	return c.form.clone()
}

// Highlighted returns the id of the freshly added row, if it has not been saved yet.
func (c *Controller) Highlighted() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.highlighted, c.highlighted != 0
}

// CanEdit reports whether edit and delete triggers are enabled.
func (c *Controller) CanEdit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing == 0
}
