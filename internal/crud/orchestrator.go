package crud

// orchestrator.go composes the record form and the paginated table for one
// entity type: it owns the pagination state, fetches pages through the
// injected source, opens the form for edits, and invokes the injected
// update/delete operations, surfacing every outcome through the injected
// notification sink. No error escapes as a panic; mutation failures become
// destructive notifications and fetch failures degrade to an empty page.

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// ListResult is one page of records plus the total collection size.
type ListResult struct {
	Data  []Record
	Count int
}

// Source fetches one page of records. page is 1-based.
type Source func(ctx context.Context, page, perPage int) (ListResult, error)

// UpdateFunc applies a patch to the original record.
type UpdateFunc func(ctx context.Context, original, patch Record) error

// DeleteFunc removes a record.
type DeleteFunc func(ctx context.Context, rec Record) error

// Definition describes one entity type: how to display it, how to edit it,
// and the operations that back it. Definitions are declared by the caller
// and never mutated by the orchestrator.
type Definition struct {
	Key     string // stable identifier, e.g. "users"
	Title   string // singular display name, e.g. "User"
	Columns []ColumnSpec
	Fields  []FieldSpec
	Source  Source
	Update  UpdateFunc
	Delete  DeleteFunc
}

func (d Definition) validate() error {
	if d.Title == "" {
		return fmt.Errorf("crud: definition needs a title")
	}
	if d.Source == nil {
		return fmt.Errorf("crud: definition %q needs a source", d.Title)
	}
	return nil
}

// Orchestrator drives the CRUD lifecycle for one entity type. Page fetches
// are tagged with a monotonically increasing request id so a slow, stale
// fetch can never overwrite the result of a newer one; until a new page
// resolves, the previous page's rows stay on display.
type Orchestrator struct {
	def      Definition
	notifier Notifier

	mu    sync.Mutex // guards pager, table rows and caption
	seq   atomic.Uint64
	pager *Pagination
	table *Table
	form  *Form

	editing Record
	opCtx   context.Context // context of the in-flight user operation
}

// NewOrchestrator wires an orchestrator from an entity definition. A nil
// notifier discards all feedback.
func NewOrchestrator(def Definition, notifier Notifier) (*Orchestrator, error) {
	if err := def.validate(); err != nil {
		return nil, err
	}
	if notifier == nil {
		notifier = NopNotifier
	}

	o := &Orchestrator{
		def:      def,
		notifier: notifier,
		pager:    NewPagination(DefaultPerPage),
	}
	o.table = NewTable(def.Columns, o.pager, o.edit, o.deleteRecord)
	o.form = NewForm(def.Fields, o.submitEdit, WithFormTitle("Edit "+def.Title))
	o.refreshCaption()
	return o, nil
}

// Table exposes the table view for rendering.
func (o *Orchestrator) Table() *Table { return o.table }

// Form exposes the record form for rendering.
func (o *Orchestrator) Form() *Form { return o.form }

// Pagination exposes the pagination state.
func (o *Orchestrator) Pagination() *Pagination { return o.pager }

// Title returns the entity's singular display name.
func (o *Orchestrator) Title() string { return o.def.Title }

// Load fetches the current page. A result that resolves after a newer
// request was issued is discarded. On fetch failure the table shows an empty
// page and the error is returned for logging; there is no automatic retry.
func (o *Orchestrator) Load(ctx context.Context) error {
	o.mu.Lock()
	page, perPage := o.pager.Page(), o.pager.PerPage()
	o.mu.Unlock()

	id := o.seq.Add(1)
	res, err := o.def.Source(ctx, page, perPage)

	o.mu.Lock()
	defer o.mu.Unlock()
	if id != o.seq.Load() {
		// A newer fetch was issued while this one was in flight.
		return nil
	}
	if err != nil {
		o.table.SetRows(nil)
		o.pager.SetTotal(0)
		o.refreshCaptionLocked()
		return fmt.Errorf("crud: list %s: %w", strings.ToLower(o.def.Title), err)
	}

	o.table.SetRows(res.Data)
	o.pager.SetTotal(res.Count)
	o.refreshCaptionLocked()
	return nil
}

// SetPage moves to the given page and refetches.
func (o *Orchestrator) SetPage(ctx context.Context, page int) error {
	o.mu.Lock()
	o.pager.SetPage(page)
	o.mu.Unlock()
	return o.Load(ctx)
}

// SetPerPage switches the page size, resets to page 1 and refetches.
func (o *Orchestrator) SetPerPage(ctx context.Context, perPage int) error {
	o.mu.Lock()
	o.pager.SetPerPage(perPage)
	o.mu.Unlock()
	return o.Load(ctx)
}

// Edit opens the record form seeded with the record's current values.
// Opening a new edit discards any unsaved state of a previous one.
func (o *Orchestrator) Edit(rec Record) { o.edit(rec) }

// SetField updates one field of the open form, re-validating it.
func (o *Orchestrator) SetField(key string, value any) { o.form.Set(key, value) }

// Submit drives the form's submit path under the given context. It reports
// whether validation passed; mutation outcomes surface via the notifier.
func (o *Orchestrator) Submit(ctx context.Context) bool {
	o.opCtx = ctx
	defer func() { o.opCtx = nil }()
	return o.form.Submit()
}

// RequestDelete opens the table's confirmation gate for rec.
func (o *Orchestrator) RequestDelete(rec Record) { o.table.RequestDelete(rec) }

// ConfirmDelete confirms the pending delete under the given context.
func (o *Orchestrator) ConfirmDelete(ctx context.Context) {
	o.opCtx = ctx
	defer func() { o.opCtx = nil }()
	o.table.ConfirmDelete()
}

// CancelDelete abandons the pending delete. Not an error; nothing happens.
func (o *Orchestrator) CancelDelete() { o.table.CancelDelete() }

func (o *Orchestrator) edit(rec Record) {
	o.editing = rec.Clone()
	o.form.Open(rec)
}

// submitEdit is the form's submit callback. A returned error keeps the form
// open so the user can retry.
func (o *Orchestrator) submitEdit(data Record) error {
	ctx := o.ctx()

	if o.editing.ID() != "" {
		if err := o.def.Update(ctx, o.editing, data); err != nil {
			o.notifier.Notify(ctx, Notification{
				Kind:        NotifyDestructive,
				Title:       "Error updating " + strings.ToLower(o.def.Title),
				Description: err.Error(),
			})
			return err
		}

		label := data.Label()
		if label == "" {
			label = o.editing.Label()
		}
		o.notifier.Notify(ctx, Notification{
			Kind:        NotifySuccess,
			Title:       o.def.Title + " updated",
			Description: fmt.Sprintf("%s %s has been updated.", o.def.Title, label),
		})
	}

	o.editing = nil
	// Pessimistic refresh: re-read the page instead of patching rows locally.
	if err := o.Load(ctx); err != nil {
		return nil // the edit itself succeeded; the next load may recover
	}
	return nil
}

// deleteRecord is the delete gate's action, invoked only on confirmation.
func (o *Orchestrator) deleteRecord(rec Record) {
	ctx := o.ctx()

	if o.def.Delete == nil {
		return
	}
	if err := o.def.Delete(ctx, rec); err != nil {
		o.notifier.Notify(ctx, Notification{
			Kind:        NotifyDestructive,
			Title:       "Error deleting " + strings.ToLower(o.def.Title),
			Description: err.Error(),
		})
		return
	}

	o.notifier.Notify(ctx, Notification{
		Kind:        NotifySuccess,
		Title:       o.def.Title + " deleted",
		Description: fmt.Sprintf("%s %s has been deleted.", o.def.Title, rec.Label()),
	})

	// Pessimistic refresh here as well; rows are never spliced out locally.
	_ = o.Load(ctx)
}

// Caption returns the pluralized entity caption with the current count.
func (o *Orchestrator) Caption() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.table.Caption()
}

func (o *Orchestrator) refreshCaption() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.refreshCaptionLocked()
}

func (o *Orchestrator) refreshCaptionLocked() {
	o.table.SetCaption(fmt.Sprintf("%s (%d)", Pluralize(o.def.Title), o.pager.Total()))
}

func (o *Orchestrator) ctx() context.Context {
	if o.opCtx != nil {
		return o.opCtx
	}
	return context.Background()
}
