package crud

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notes...)
}

// fixedSource serves pages from an in-memory slice.
func fixedSource(records []Record) Source {
	return func(_ context.Context, page, perPage int) (ListResult, error) {
		start := (page - 1) * perPage
		if start > len(records) {
			start = len(records)
		}
		end := start + perPage
		if end > len(records) {
			end = len(records)
		}
		return ListResult{Data: records[start:end], Count: len(records)}, nil
	}
}

func userDef(source Source, update UpdateFunc, del DeleteFunc) Definition {
	return Definition{
		Key:   "users",
		Title: "User",
		Columns: []ColumnSpec{
			{Key: "email", Label: "Email", Kind: ColumnText},
		},
		Fields: []FieldSpec{
			{Key: "email", Label: "Email", Kind: FieldText, Pattern: EmailPattern},
		},
		Source: source,
		Update: update,
		Delete: del,
	}
}

func TestOrchestrator_LoadAndCaption(t *testing.T) {
	records := make([]Record, 12)
	for i := range records {
		records[i] = Record{"id": fmt.Sprintf("u-%d", i), "email": fmt.Sprintf("u%d@x.com", i)}
	}
	o, err := NewOrchestrator(userDef(fixedSource(records), nil, nil), nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := o.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := len(o.Table().Rows()); got != 10 {
		t.Errorf("rows on page 1 = %d, want 10", got)
	}
	if got := o.Caption(); got != "Users (12)" {
		t.Errorf("Caption() = %q, want %q", got, "Users (12)")
	}

	if err := o.SetPage(context.Background(), 2); err != nil {
		t.Fatalf("SetPage() error = %v", err)
	}
	if got := len(o.Table().Rows()); got != 2 {
		t.Errorf("rows on page 2 = %d, want 2", got)
	}
}

func TestOrchestrator_PerPageChangeResetsToFirstPage(t *testing.T) {
	o, err := NewOrchestrator(userDef(fixedSource(make([]Record, 60)), nil, nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	o.Load(ctx)
	o.SetPage(ctx, 3)
	o.SetPerPage(ctx, 25)

	if got := o.Pagination().Page(); got != 1 {
		t.Errorf("Page() after per-page change = %d, want 1", got)
	}
}

func TestOrchestrator_StaleFetchDiscarded(t *testing.T) {
	release := make(chan struct{})
	slowStarted := make(chan struct{})
	var calls int
	var mu sync.Mutex

	source := func(_ context.Context, page, perPage int) (ListResult, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(slowStarted)
			<-release // first fetch resolves late
			return ListResult{Data: []Record{{"email": "stale@x.com"}}, Count: 1}, nil
		}
		return ListResult{Data: []Record{{"email": "fresh@x.com"}}, Count: 1}, nil
	}

	o, err := NewOrchestrator(userDef(source, nil, nil), nil)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		o.Load(context.Background())
	}()

	<-slowStarted
	if err := o.Load(context.Background()); err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	close(release)
	wg.Wait()

	rows := o.Table().Rows()
	if len(rows) != 1 || rows[0]["email"] != "fresh@x.com" {
		t.Errorf("rows = %v, want the newer fetch's result", rows)
	}
}

func TestOrchestrator_FetchErrorShowsEmptyPage(t *testing.T) {
	source := func(context.Context, int, int) (ListResult, error) {
		return ListResult{}, errors.New("connection refused")
	}
	o, err := NewOrchestrator(userDef(source, nil, nil), nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := o.Load(context.Background()); err == nil {
		t.Error("Load() error = nil, want wrapped fetch error")
	}
	if got := len(o.Table().Rows()); got != 0 {
		t.Errorf("rows after fetch error = %d, want 0", got)
	}
	if got := o.Pagination().TotalPages(); got != 1 {
		t.Errorf("TotalPages() after fetch error = %d, want 1", got)
	}
}

func TestOrchestrator_EditSubmitUpdate(t *testing.T) {
	var gotOriginal, gotPatch Record
	update := func(_ context.Context, original, patch Record) error {
		gotOriginal, gotPatch = original, patch
		return nil
	}
	notifier := &recordingNotifier{}
	records := []Record{{"id": "u-1", "email": "old@x.com", "full_name": "Ada"}}

	o, err := NewOrchestrator(userDef(fixedSource(records), update, nil), notifier)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	o.Load(ctx)

	o.Edit(records[0])
	if !o.Form().IsOpen() {
		t.Fatal("form should open on Edit")
	}
	if o.Form().Value("email") != "old@x.com" {
		t.Error("form not seeded with the record's current values")
	}

	// Invalid value blocks the submit with an inline error.
	o.SetField("email", "not-an-email")
	if o.Submit(ctx) {
		t.Fatal("Submit accepted an invalid email")
	}
	if got := o.Form().Error("email"); got != "Invalid email address" {
		t.Errorf("inline error = %q, want %q", got, "Invalid email address")
	}

	// Corrected value goes through.
	o.SetField("email", "a@b.com")
	if !o.Submit(ctx) {
		t.Fatalf("Submit blocked, errors = %v", o.Form().Errors())
	}

	if gotOriginal.ID() != "u-1" {
		t.Errorf("update original = %v, want the record being edited", gotOriginal)
	}
	if diff := cmp.Diff("a@b.com", gotPatch["email"]); diff != "" {
		t.Errorf("update patch mismatch (-want +got):\n%s", diff)
	}
	if o.Form().IsOpen() {
		t.Error("form should close after a successful update")
	}

	notes := notifier.all()
	if len(notes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notes))
	}
	if notes[0].Kind != NotifySuccess || notes[0].Title != "User updated" {
		t.Errorf("notification = %+v, want success %q", notes[0], "User updated")
	}
}

func TestOrchestrator_UpdateFailureKeepsFormOpen(t *testing.T) {
	update := func(context.Context, Record, Record) error {
		return errors.New("email already in use")
	}
	notifier := &recordingNotifier{}
	records := []Record{{"id": "u-1", "email": "old@x.com"}}

	o, err := NewOrchestrator(userDef(fixedSource(records), update, nil), notifier)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	o.Load(ctx)
	o.Edit(records[0])
	o.SetField("email", "a@b.com")

	o.Submit(ctx)

	if !o.Form().IsOpen() {
		t.Error("form should stay open after a failed update")
	}
	if o.Form().Value("email") != "a@b.com" {
		t.Error("form state should survive the failure for retry")
	}

	notes := notifier.all()
	if len(notes) != 1 || notes[0].Kind != NotifyDestructive {
		t.Fatalf("notifications = %+v, want one destructive", notes)
	}
	if notes[0].Title != "Error updating user" {
		t.Errorf("title = %q, want %q", notes[0].Title, "Error updating user")
	}
	if notes[0].Description != "email already in use" {
		t.Errorf("description = %q, want the underlying message", notes[0].Description)
	}
}

func TestOrchestrator_DeleteFlow(t *testing.T) {
	var deleted []string
	del := func(_ context.Context, rec Record) error {
		deleted = append(deleted, rec.ID())
		return nil
	}
	notifier := &recordingNotifier{}
	records := []Record{{"id": "n-1", "title": "groceries"}}

	o, err := NewOrchestrator(userDef(fixedSource(records), nil, del), notifier)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	o.Load(ctx)

	o.RequestDelete(records[0])
	if len(deleted) != 0 {
		t.Fatal("delete ran before confirmation")
	}

	o.CancelDelete()
	o.ConfirmDelete(ctx) // nothing pending
	if len(deleted) != 0 {
		t.Fatal("delete ran after cancellation")
	}

	o.RequestDelete(records[0])
	o.ConfirmDelete(ctx)
	if len(deleted) != 1 || deleted[0] != "n-1" {
		t.Fatalf("deleted = %v, want [n-1]", deleted)
	}

	notes := notifier.all()
	if len(notes) != 1 || notes[0].Title != "User deleted" {
		t.Fatalf("notifications = %+v, want one %q", notes, "User deleted")
	}
}

func TestOrchestrator_DeleteFailureNotifies(t *testing.T) {
	del := func(context.Context, Record) error { return errors.New("forbidden") }
	notifier := &recordingNotifier{}

	o, err := NewOrchestrator(userDef(fixedSource(nil), nil, del), notifier)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	o.RequestDelete(Record{"id": "u-9"})
	o.ConfirmDelete(ctx)

	notes := notifier.all()
	if len(notes) != 1 || notes[0].Kind != NotifyDestructive {
		t.Fatalf("notifications = %+v, want one destructive", notes)
	}
	if notes[0].Description != "forbidden" {
		t.Errorf("description = %q, want underlying message", notes[0].Description)
	}
}

func TestOrchestrator_EditWithoutIDSkipsUpdate(t *testing.T) {
	update := func(context.Context, Record, Record) error {
		t.Fatal("update must not run for records without an id")
		return nil
	}
	o, err := NewOrchestrator(userDef(fixedSource(nil), update, nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	o.Edit(Record{"email": "a@b.com"})
	if !o.Submit(ctx) {
		t.Fatal("Submit blocked unexpectedly")
	}
	if o.Form().IsOpen() {
		t.Error("form should close after a no-op submit")
	}
}
